package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getlawrence/qmaid/internal/config"
	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/mta"
)

func newRulesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "rules [rule-id...]",
		Short: "Show the Maven coordinates and packages referenced by MTA rules",
		Long: `Rules reads the Quarkus rules of the MTA installation and the custom rules
directory and prints which Maven coordinates and packages each rule points at.
Issues of rules without coordinates or packages end up as general issues.`,
		RunE: runRules,
	}
	c.Flags().String("mta-home", "", "location of the MTA CLI installation")
	c.Flags().String("custom-rules", "", "directory with custom MTA rules")
	c.Flags().String("artifact", "", "only show rules referencing groupId:artifactId")
	return c
}

func runRules(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd.Context())
	outputFormat, _ := cmd.Flags().GetString("output")

	home := app.Config.MTA.Home
	if cmd.Flags().Changed("mta-home") {
		home, _ = cmd.Flags().GetString("mta-home")
	}
	custom := app.Config.MTA.CustomRules
	if cmd.Flags().Changed("custom-rules") {
		custom, _ = cmd.Flags().GetString("custom-rules")
	}

	executor := mta.NewExecutor(app.Commander, config.ExpandHome(home), config.ExpandHome(custom), app.Config.MTA.Targets, app.Logger)
	index, err := mta.LoadRules(executor.RuleDirs()...)
	if err != nil {
		app.Logger.Logf("Warning: %v\n", err)
	}

	if len(args) > 0 {
		selected := mta.RuleIndex{}
		for _, id := range args {
			if target, ok := index[id]; ok {
				selected[id] = target
			}
		}
		index = selected
	}

	if artifact, _ := cmd.Flags().GetString("artifact"); artifact != "" {
		coord, ok := domain.ParseCoordinate(artifact)
		if !ok {
			return fmt.Errorf("invalid artifact %q, expected groupId:artifactId", artifact)
		}
		selected := mta.RuleIndex{}
		for id, target := range index {
			for _, m := range target.MavenIdentifiers {
				if m.GroupID == coord.GroupID && m.ArtifactID == coord.ArtifactID {
					selected[id] = target
					break
				}
			}
		}
		index = selected
	}

	return writeValue(cmd, outputFormat, index, func() string {
		if len(index) == 0 {
			return "No rules found.\n"
		}
		var b strings.Builder
		for _, id := range index.RuleIDs() {
			target := index[id]
			fmt.Fprintf(&b, "%s\n", id)
			for _, m := range target.MavenIdentifiers {
				fmt.Fprintf(&b, "  📦 %s\n", m.Key())
			}
			for _, p := range target.Packages {
				fmt.Fprintf(&b, "  📥 %s\n", p)
			}
		}
		return b.String()
	})
}
