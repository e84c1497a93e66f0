package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// defaultConfigTemplate is the starter configuration written by
// "config init". Every value matches the built-in default, except
// server.listen which has no default and must be present.
const defaultConfigTemplate = `# lm-sidekick configuration

backend:
  host: localhost
  port: 1234
  # Starred in model listings and reported by health_check.
  recommended_model: qwen2.5-coder-32b-instruct-q4_k_m
  # health_timeout_ms: 5000
  # completion_timeout_ms: 30000
  # probe_timeout_ms: 10000

rate_limit:
  # sliding_window or token_bucket
  strategy: sliding_window
  max_requests: 30
  window_seconds: 60

context:
  # Maximum estimated tokens per stored context.
  max_tokens: 32000

batch:
  # Items per chunk when batch_process omits batch_size.
  size: 5
  # Wait between consecutive chunks.
  pacing_ms: 500

cache:
  # single (local ristretto) or disabled
  mode: single

health:
  failure_threshold: 5
  open_duration_ms: 30000
  half_open_probes: 3

server:
  listen: "127.0.0.1:8385"
  # auth:
  #   api_key: ${LM_SIDEKICK_API_KEY}
  max_concurrent: 32
  max_body_bytes: 1048576
  # enable_http2: true

logging:
  level: info
  format: json
`

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default config file",
	Long:  `Generate a default lm-sidekick configuration file at ~/.config/lm-sidekick/config.yaml`,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().StringP("output", "o", "", "output path (default: ~/.config/lm-sidekick/config.yaml)")
	configInitCmd.Flags().Bool("force", false, "overwrite existing config file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to get force flag: %w", err)
	}

	if output == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		output = filepath.Join(home, ".config", "lm-sidekick", defaultConfigFile)
	}

	if _, err := os.Stat(output); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", output)
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(output, []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cmd.Printf("✓ Config file created at %s\n", output)
	cmd.Println("\nNext steps:")
	cmd.Println("  1. Point backend.host/port at your LM Studio instance")
	cmd.Println("  2. Validate with: lm-sidekick config validate")
	cmd.Println("  3. Start the server: lm-sidekick serve")
	cmd.Println("  4. Register with Claude Code: lm-sidekick config cc init")

	return nil
}
