package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/omarluq/lm-sidekick/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check if the lm-sidekick server is running",
	Long: `Check the health of a running lm-sidekick server by querying its
/health endpoint.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = findConfigFile()
	}

	return checkStatusWithConfig(cmd, configPath)
}

// checkStatusWithConfig loads the config at configPath and probes the
// server's health endpoint.
func checkStatusWithConfig(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	healthURL := fmt.Sprintf("http://%s/health", cfg.Server.Listen)

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	//nolint:noctx // Simple health check doesn't need context propagation
	resp, err := client.Get(healthURL)
	if err != nil {
		cmd.Printf("✗ lm-sidekick is not running (%s)\n", cfg.Server.Listen)
		return fmt.Errorf("server not reachable: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode == http.StatusOK {
		cmd.Printf("✓ lm-sidekick is running (%s)\n", cfg.Server.Listen)
		return nil
	}

	cmd.Printf("✗ lm-sidekick returned unexpected status: %d\n", resp.StatusCode)

	return fmt.Errorf("health check failed with status %d", resp.StatusCode)
}
