package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var configCCRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove lm-sidekick configuration from Claude Code",
	Long:  `Remove lm-sidekick environment variables from ~/.claude/settings.json`,
	RunE:  runConfigCCRemove,
}

func init() {
	configCCCmd.AddCommand(configCCRemoveCmd)
}

// sidekickEnvVars are the environment variables that "config cc init"
// writes into Claude Code settings.
var sidekickEnvVars = []string{"LM_SIDEKICK_URL", "LM_SIDEKICK_API_KEY"}

func runConfigCCRemove(cmd *cobra.Command, _ []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	settingsPath := filepath.Clean(filepath.Join(home, ".claude", "settings.json"))

	data, err := os.ReadFile(settingsPath)
	if os.IsNotExist(err) {
		cmd.Println("No Claude Code settings found. Nothing to remove.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read settings.json: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("failed to parse settings.json: not valid JSON")
	}

	doc := string(data)

	if !gjson.Get(doc, "env").IsObject() {
		cmd.Println("No environment variables found in settings. Nothing to remove.")
		return nil
	}

	doc, removed, err := removeSidekickEnvVars(doc)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		cmd.Println("No lm-sidekick configuration found in Claude Code settings.")
		return nil
	}

	if err := writeSettingsDoc(settingsPath, doc); err != nil {
		return err
	}

	cmd.Println("Removed lm-sidekick configuration from Claude Code:")
	for _, key := range removed {
		cmd.Printf("  - %s\n", key)
	}
	cmd.Printf("\nSettings file: %s\n", settingsPath)
	cmd.Println("Restart Claude Code for changes to take effect.")

	return nil
}

// removeSidekickEnvVars deletes the sidekick keys from the document's env
// object, dropping the object itself once it is empty. Returns the edited
// document and the keys that were present.
func removeSidekickEnvVars(doc string) (string, []string, error) {
	var removed []string

	for _, key := range sidekickEnvVars {
		path := "env." + key
		if !gjson.Get(doc, path).Exists() {
			continue
		}

		edited, err := sjson.Delete(doc, path)
		if err != nil {
			return "", nil, fmt.Errorf("failed to update settings: %w", err)
		}
		doc = edited
		removed = append(removed, key)
	}

	if len(removed) > 0 && len(gjson.Get(doc, "env").Map()) == 0 {
		edited, err := sjson.Delete(doc, "env")
		if err != nil {
			return "", nil, fmt.Errorf("failed to update settings: %w", err)
		}
		doc = edited
	}

	return doc, removed, nil
}
