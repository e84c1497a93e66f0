package main

import (
	"github.com/spf13/cobra"

	"github.com/omarluq/lm-sidekick/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the configuration file without starting the server.
Checks syntax, required fields, and value ranges.`,
	RunE: runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = findConfigFile()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		cmd.Printf("✗ Config validation failed: %s\n", err)
		return err
	}

	if err := cfg.Validate(); err != nil {
		cmd.Printf("✗ Config validation failed: %s\n", err)
		return err
	}

	cmd.Printf("✓ %s is valid\n", configPath)

	return nil
}
