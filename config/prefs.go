// prefs.go persists lightweight user preferences between runs.
//
// Preferences are intentionally separate from askdb.yaml: the config file is
// declarative and often checked in, while preferences track what the user
// last selected in the REPL.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Preferences captures the sticky session choices.
type Preferences struct {
	Database  string `json:"database,omitempty"`
	LLM       string `json:"llm,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Clipboard *bool  `json:"clipboard,omitempty"`
}

func prefsPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "preferences.json"), nil
}

// LoadPreferences reads saved preferences; a missing or unreadable file
// yields the zero value so startup never fails on preferences.
func LoadPreferences() Preferences {
	var prefs Preferences
	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs)
	return prefs
}

// SavePreferences writes preferences to ~/.askdb/preferences.json.
func SavePreferences(prefs Preferences) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
