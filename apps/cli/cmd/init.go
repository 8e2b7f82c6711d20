package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/resptag/packages/core/config"
	"github.com/spf13/cobra"
)

var (
	forceInit  bool
	initFormat string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a resptag config file",
	Long: `Create a config file with default settings in the current directory.

This creates:
  - .resptag.yaml (or .resptag.json with --format json)

Examples:
  resptag init
  resptag init --format json
  resptag init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().StringVar(&initFormat, "format", "yaml", "Config format: yaml, json")
	rootCmd.AddCommand(initCmd)
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	var name string
	switch initFormat {
	case "yaml", "yml":
		name = ".resptag.yaml"
	case "json":
		name = ".resptag.json"
	default:
		return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("unknown format %q (expected yaml or json)", initFormat)}
	}
	configFile := filepath.Join(cwd, name)

	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{
		"User-Agent": "resptag/" + version,
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "Requests will be stored in %s\n", cfg.Database)

	return nil
}
