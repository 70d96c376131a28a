package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/getlawrence/qmaid/internal/config"
)

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Long: `Init writes the default qmaid configuration to path (default .qmaid.yaml).
The format follows the file extension: .yaml, .yml, .toml or .json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	c.Flags().BoolP("force", "f", false, "overwrite an existing file")
	return c
}

func runInit(cmd *cobra.Command, args []string) error {
	path := ".qmaid.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	}
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s\n", path)
	return nil
}
