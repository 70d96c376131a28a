package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/history"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func section(b *strings.Builder, title string) {
	b.WriteString(headingStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", lipgloss.Width(title)))
	b.WriteString("\n")
}

// RenderAnalysis returns the styled text summary of an analysis.
// detailed adds the import statements of each occurrence and the reflective
// classes of dependencies.
func RenderAnalysis(analysis *domain.Analysis, detailed bool) string {
	if analysis == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("📊 Quarkus Migration Analysis"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 29))
	b.WriteString("\n\n")

	summary := []string{
		fmt.Sprintf("📂 Project: %s", analysis.ProjectIdentifier),
		fmt.Sprintf("☕ Java version: %s", analysis.JavaVersion),
	}
	if analysis.EntryPoint != nil {
		summary = append(summary, fmt.Sprintf("🚀 Entry point: %s", analysis.EntryPoint.ClassName))
	}
	summary = append(summary,
		fmt.Sprintf("📦 Dependencies: %d", analysis.DependencyCount()),
		fmt.Sprintf("🔍 Java classes scanned: %d", analysis.TotalClassesScanned),
		fmt.Sprintf("⛔ Blacklisted dependencies: %d", len(analysis.Blacklist)),
		fmt.Sprintf("⚠️  General issues: %d", len(analysis.GeneralIssues)),
	)
	if !analysis.FinishedAt.IsZero() {
		summary = append(summary, fmt.Sprintf("⏱️  Duration: %s", analysis.Duration().Round(time.Millisecond)))
	}
	if analysis.ResultsDir != "" {
		summary = append(summary, fmt.Sprintf("🗂️  Results: %s", analysis.ResultsDir))
	}
	b.WriteString(strings.Join(summary, "\n"))
	b.WriteString("\n\n")

	if len(analysis.Blacklist) > 0 {
		section(&b, "⛔ Dependency Blacklist")
		deps := append([]*domain.ProjectDependency(nil), analysis.Blacklist...)
		// Most used first
		sort.SliceStable(deps, func(i, j int) bool {
			return len(deps[i].Occurrences) > len(deps[j].Occurrences)
		})
		for _, dep := range deps {
			fmt.Fprintf(&b, "  • %s %s\n", dep.Coordinate, mutedStyle.Render(fmt.Sprintf("(%d occurrence(s))", len(dep.Occurrences))))
			if dep.BlacklistReason != "" {
				fmt.Fprintf(&b, "    📖 %s\n", dep.BlacklistReason)
			}
			if detailed {
				for _, occ := range dep.Occurrences {
					fmt.Fprintf(&b, "    📄 %s: %s\n", occ.File, strings.Join(occ.Imports, ", "))
				}
			}
		}
		b.WriteString("\n")
	} else {
		b.WriteString(okStyle.Render("✅ No blacklisted dependencies found."))
		b.WriteString("\n\n")
	}

	if len(analysis.GeneralIssues) > 0 {
		section(&b, "⚠️  General Issues")
		for _, issue := range analysis.GeneralIssues {
			fmt.Fprintf(&b, "  • %s: %s\n", issue.RuleID, issue.Description)
		}
		b.WriteString("\n")
	}

	if len(analysis.ReflectionInProject) > 0 || len(analysis.ReflectionInDependencies) > 0 {
		section(&b, "🪞 Reflection Usage")
		for _, r := range analysis.ReflectionInProject {
			fmt.Fprintf(&b, "  • %s %s\n", r.ClassName, mutedStyle.Render(r.Path))
		}
		for _, r := range analysis.ReflectionInDependencies {
			fmt.Fprintf(&b, "  • %s (%d class(es))\n", r.Artifact, len(r.Classes))
			if detailed {
				for _, c := range r.Classes {
					fmt.Fprintf(&b, "    - %s\n", c)
				}
			}
		}
		b.WriteString("\n")
	}
	if analysis.WithoutDependencies {
		b.WriteString(warnStyle.Render("Dependencies were not analyzed with MTA."))
		b.WriteString("\n\n")
	}

	if len(analysis.ConfigurationInjection) > 0 || len(analysis.ConfigurationProperties) > 0 {
		section(&b, "⚙️  Configuration Usage")
		for _, c := range analysis.ConfigurationInjection {
			fmt.Fprintf(&b, "  • @Value %s\n", c.ClassName)
		}
		for _, c := range analysis.ConfigurationProperties {
			fmt.Fprintf(&b, "  • @ConfigurationProperties %s\n", c.ClassName)
		}
		b.WriteString("\n")
	}

	if len(analysis.Failures) > 0 {
		section(&b, "❗ Analysis Failures")
		for _, f := range analysis.Failures {
			fmt.Fprintf(&b, "  • %s\n", f.Subject)
			fmt.Fprintf(&b, "    %s\n", warnStyle.Render(f.Description))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHistory returns a table of recorded runs
func RenderHistory(runs []history.Run) string {
	if len(runs) == 0 {
		return "No analysis runs recorded yet.\n"
	}
	var b strings.Builder
	section(&b, "🕘 Analysis History")
	for _, run := range runs {
		fmt.Fprintf(&b, "  %s  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04"), headingStyle.Render(run.ProjectIdentifier))
		fmt.Fprintf(&b, "    %s\n", mutedStyle.Render(fmt.Sprintf("%d dependencies, %d blacklisted, %d general issues, %d failures",
			run.Dependencies, run.Blacklisted, run.GeneralIssues, run.Failures)))
		fmt.Fprintf(&b, "    %s\n", run.ResultsDir)
	}
	return b.String()
}
