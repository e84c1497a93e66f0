// Package main is the entry point for lm-sidekick.
package main

import (
	"context"
	"os"

	"charm.land/fang/v2"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "config.yaml"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lm-sidekick",
	Short: "Local LLM sidekick for agent tool offloading",
	Long: `lm-sidekick fronts a local OpenAI-compatible backend (LM Studio) and
exposes task-offloading tools to an orchestrating agent: menial task
automation, context storage with summarization, paced batch processing,
and model management, all behind per-client rate limiting.`,
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file path (default: ./"+defaultConfigFile+" or ~/.config/lm-sidekick/"+defaultConfigFile+")")
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
