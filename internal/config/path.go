package config

import (
	"os"
	"path/filepath"
)

// DefaultPath is $XDG_CONFIG_HOME/commander/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "commander", "config.yaml")
}
