package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getlawrence/qmaid/internal/config"
	"github.com/getlawrence/qmaid/internal/history"
	"github.com/getlawrence/qmaid/internal/report"
	"github.com/getlawrence/qmaid/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List previous analysis runs",
		Long: `History lists the analysis runs recorded in <results>/history.db,
most recent first. Pass a run id to show the blacklist of that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
	c.Flags().String("results", "", "results root directory (default ./results)")
	c.Flags().IntP("limit", "n", 20, "maximum number of runs to list (0 for all)")
	return c
}

func runHistory(cmd *cobra.Command, args []string) error {
	app := appConfig(cmd.Context())
	outputFormat, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")

	dir := app.Config.Output.ResultsDir
	if cmd.Flags().Changed("results") {
		dir, _ = cmd.Flags().GetString("results")
	}
	dir = config.ExpandHome(dir)
	if _, err := os.Stat(filepath.Join(dir, history.FileName)); err != nil {
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderHistory(nil))
		return nil
	}

	store, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		run, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("run %s not found: %w", args[0], err)
		}
		return writeValue(cmd, outputFormat, run, func() string {
			out := ui.RenderHistory([]history.Run{*run})
			for _, b := range run.Blacklist {
				out += fmt.Sprintf("  • %s (%d occurrence(s)): %s\n", b.Coordinate, b.Occurrences, b.Reason)
			}
			return out
		})
	}

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return writeValue(cmd, outputFormat, runs, func() string { return ui.RenderHistory(runs) })
}

// writeValue prints v as json or yaml, or the text rendering
func writeValue(cmd *cobra.Command, format string, v interface{}, text func() string) error {
	w := cmd.OutOrStdout()
	switch format {
	case "json", "yaml":
		return report.Encode(w, v, format)
	default:
		_, err := fmt.Fprint(w, text())
		return err
	}
}
