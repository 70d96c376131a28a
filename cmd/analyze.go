package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getlawrence/qmaid/internal/analyzer"
	"github.com/getlawrence/qmaid/internal/domain"
	"github.com/getlawrence/qmaid/internal/history"
	"github.com/getlawrence/qmaid/internal/logger"
	"github.com/getlawrence/qmaid/internal/mta"
	"github.com/getlawrence/qmaid/internal/report"
	"github.com/getlawrence/qmaid/internal/ui"
)

func newAnalyzeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a Spring Boot project for a migration to Quarkus",
		Long: `Analyze resolves the dependency tree of a Maven project, runs MTA against
the project sources and every dependency jar, and reports:
- dependencies with mandatory Quarkus migration issues and how often they are imported
- migration issues that could not be assigned to a dependency
- reflection usage in the project and its dependencies
- Spring configuration usage

Results are written to <results>/<timestamp>/report.html and report.json.

Example usage:
  qmaid analyze -p ./my-service
  qmaid analyze -p ./my-service -a ./my-service/src/main/java/com/example/App.java
  qmaid analyze -p ./my-service -m /opt/m2 -w
  qmaid analyze -p ./my-service --output json`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}

	c.Flags().StringP("project", "p", "", "Maven project location (mandatory)")
	c.Flags().StringP("app", "a", "", "Java file of the @SpringBootApplication class (detected when omitted)")
	c.Flags().StringP("maven-repo", "m", "", "local Maven repository (default ~/.m2/repository)")
	c.Flags().BoolP("without-dependencies", "w", false, "skip MTA analysis of dependency jars")
	c.Flags().String("results", "", "results root directory (default ./results)")
	c.Flags().String("mta-home", "", "location of the MTA CLI installation")
	c.Flags().String("custom-rules", "", "directory with custom MTA rules")
	c.Flags().Int("concurrency", 0, "number of dependency jars analyzed in parallel")
	c.Flags().Bool("offline", false, "never download artifacts from remote repositories")
	c.Flags().BoolP("detailed", "d", false, "show imports and reflective classes in the text output")
	c.Flags().Bool("no-history", false, "do not record the run in the history database")
	return c
}

func analyzeOptions(cmd *cobra.Command, app *AppConfig) analyzer.Options {
	opts := analyzer.OptionsFromConfig(app.Config)
	flags := cmd.Flags()

	opts.ProjectDir, _ = flags.GetString("project")
	opts.EntryPoint, _ = flags.GetString("app")
	if flags.Changed("maven-repo") {
		opts.MavenRepo, _ = flags.GetString("maven-repo")
	}
	if flags.Changed("without-dependencies") {
		opts.WithoutDependencies, _ = flags.GetBool("without-dependencies")
	}
	if flags.Changed("results") {
		opts.ResultsRoot, _ = flags.GetString("results")
	}
	if flags.Changed("mta-home") {
		opts.MTAHome, _ = flags.GetString("mta-home")
	}
	if flags.Changed("custom-rules") {
		opts.CustomRules, _ = flags.GetString("custom-rules")
	}
	if flags.Changed("concurrency") {
		opts.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("offline") {
		opts.Offline, _ = flags.GetBool("offline")
	}
	return opts
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd.Context())
	outputFormat, _ := cmd.Flags().GetString("output")
	detailed, _ := cmd.Flags().GetBool("detailed")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	opts := analyzeOptions(cmd, app)
	if err := opts.Validate(); err != nil {
		return withExitCode(err)
	}

	executor := mta.NewExecutor(app.Commander, opts.MTAHome, opts.CustomRules, opts.Targets, app.Logger)
	if err := executor.Check(); err != nil {
		app.Logger.Logf("Warning: %v. MTA results will be missing from the report.\n", err)
	}

	a := analyzer.New(app.Commander, app.Logger)
	var analysis *domain.Analysis
	analyze := func(ctx context.Context) error {
		var err error
		analysis, err = a.Analyze(ctx, opts)
		return err
	}

	var err error
	if outputFormat == "text" && logger.IsInteractive() && !app.Logger.Verbose() {
		err = ui.RunSpinner(cmd.Context(), "Analyzing project...", app.Logger, analyze)
	} else {
		err = analyze(cmd.Context())
	}
	if err != nil {
		return withExitCode(err)
	}

	generator, err := report.NewGenerator()
	if err != nil {
		return err
	}
	files, err := generator.Write(analysis.ResultsDir, analysis)
	if err != nil {
		return err
	}
	for _, f := range files {
		app.Logger.Debugf("Wrote %s", f)
	}

	if !noHistory {
		recordHistory(cmd.Context(), app.Logger, filepath.Dir(analysis.ResultsDir), analysis)
	}

	return writeAnalysis(cmd.OutOrStdout(), analysis, outputFormat, detailed)
}

// recordHistory stores the run. A broken history database does not fail the analysis.
func recordHistory(ctx context.Context, log logger.Logger, dir string, analysis *domain.Analysis) {
	store, err := history.Open(dir)
	if err != nil {
		log.Logf("Warning: could not open history database: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.Record(ctx, analysis); err != nil {
		log.Logf("Warning: could not record run: %v\n", err)
	}
}

func writeAnalysis(w io.Writer, analysis *domain.Analysis, format string, detailed bool) error {
	switch format {
	case "json", "yaml":
		return report.Encode(w, analysis, format)
	default:
		_, err := fmt.Fprint(w, ui.RenderAnalysis(analysis, detailed))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "📄 Report: %s\n", filepath.Join(analysis.ResultsDir, report.HTMLFile))
		return err
	}
}
