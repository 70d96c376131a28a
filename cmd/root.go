package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getlawrence/qmaid/internal/config"
	"github.com/getlawrence/qmaid/internal/logger"
	"github.com/getlawrence/qmaid/internal/mta"
)

type contextKey string

// Context key for configuration
const ConfigKey contextKey = "config"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qmaid",
		Short: "Quarkus migration aid for Spring Boot projects",
		Long: `qmaid analyzes a Spring Boot microservice built with Maven and reports
what stands in the way of a migration to Quarkus.

It resolves the dependency tree from the local Maven repository, runs the
Migration Toolkit for Applications (MTA) against the project and its
dependencies, and measures how often problematic dependencies are imported
by the project sources.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadAppConfig,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	root.PersistentFlags().StringP("output", "o", "text", "output format (text, json, yaml)")
	root.PersistentFlags().String("config", "", "config file (default .qmaid.yaml in the working or home directory)")

	root.AddCommand(newAnalyzeCmd(), newHistoryCmd(), newRulesCmd(), newInitCmd(), newVersionCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return ExecuteContext(context.Background(), NewAppConfig(mta.NewRealCommander()))
}

// ExecuteContext runs the root command with the given shared configuration
func ExecuteContext(ctx context.Context, app *AppConfig) error {
	return rootCmd.ExecuteContext(context.WithValue(ctx, ConfigKey, app))
}

func loadAppConfig(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd.Context())

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	if !cmd.Flags().Changed("output") && cfg.Output.Format != "" {
		if err := cmd.Flags().Set("output", cfg.Output.Format); err != nil {
			return err
		}
	}
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if app.Logger == nil {
		app.Logger = logger.NewWriterLogger(cmd.ErrOrStderr(), verbose)
	}
	return nil
}
