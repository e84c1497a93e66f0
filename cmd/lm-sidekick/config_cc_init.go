package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var configCCInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure Claude Code to use lm-sidekick",
	Long:  `Add lm-sidekick environment variables to ~/.claude/settings.json`,
	RunE:  runConfigCCInit,
}

func init() {
	configCCCmd.AddCommand(configCCInitCmd)
	configCCInitCmd.Flags().String("sidekick-url", "http://127.0.0.1:8385", "lm-sidekick server URL")
	configCCInitCmd.Flags().String("api-key", "", "API key matching server.auth.api_key (omit when auth is disabled)")
}

func runConfigCCInit(cmd *cobra.Command, _ []string) error {
	sidekickURL, err := cmd.Flags().GetString("sidekick-url")
	if err != nil {
		return fmt.Errorf("failed to get sidekick-url flag: %w", err)
	}
	apiKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return fmt.Errorf("failed to get api-key flag: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	settingsPath, err := applySidekickConfig(home, sidekickURL, apiKey)
	if err != nil {
		return err
	}

	cmd.Printf("Claude Code configured to use lm-sidekick at %s\n", sidekickURL)
	cmd.Printf("Settings file: %s\n", settingsPath)
	cmd.Println("\nEnvironment variables added:")
	cmd.Printf("  LM_SIDEKICK_URL=%s\n", sidekickURL)
	if apiKey != "" {
		cmd.Println("  LM_SIDEKICK_API_KEY=<set>")
	}
	cmd.Println("\nRestart Claude Code for changes to take effect.")

	return nil
}

// applySidekickConfig edits the Claude Code settings document in place,
// preserving every unrelated key. Returns the path to the settings file.
func applySidekickConfig(home, sidekickURL, apiKey string) (string, error) {
	settingsPath := filepath.Clean(filepath.Join(home, ".claude", "settings.json"))

	doc := "{}"

	data, readErr := os.ReadFile(settingsPath)
	switch {
	case readErr == nil:
		if !gjson.ValidBytes(data) {
			return "", errors.New("failed to parse settings.json: not valid JSON")
		}
		doc = string(data)
	case !os.IsNotExist(readErr):
		return "", fmt.Errorf("failed to read settings.json: %w", readErr)
	}

	doc, err := sjson.Set(doc, "env.LM_SIDEKICK_URL", sidekickURL)
	if err != nil {
		return "", fmt.Errorf("failed to update settings: %w", err)
	}

	if apiKey != "" {
		doc, err = sjson.Set(doc, "env.LM_SIDEKICK_API_KEY", apiKey)
		if err != nil {
			return "", fmt.Errorf("failed to update settings: %w", err)
		}
	}

	dir := filepath.Dir(settingsPath)
	if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
		return "", fmt.Errorf("failed to create .claude directory: %w", mkdirErr)
	}

	if err := writeSettingsDoc(settingsPath, doc); err != nil {
		return "", err
	}

	return settingsPath, nil
}

// writeSettingsDoc reindents the edited document and writes it back.
func writeSettingsDoc(path, doc string) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(doc), "", "  "); err != nil {
		return fmt.Errorf("failed to format settings: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write settings.json: %w", err)
	}
	return nil
}
