package monitor

import (
	"os"
	"path/filepath"
	"strings"
)

// Data-root resolution for the monitored tools. Each root honors the tool's
// own environment override and otherwise sits under the user's home
// directory.

func opencodeDataRoot() string {
	root := os.Getenv("OPENCODE_DATA_DIR")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		root = filepath.Join(home, ".local", "share", "opencode")
	}
	// Users sometimes point the override at the storage subdirectory
	// itself; accept that and step back up to the data root.
	if strings.EqualFold(filepath.Base(root), "storage") {
		root = filepath.Dir(root)
	}
	return root
}

func opencodeStorageRoot() string { return filepath.Join(opencodeDataRoot(), "storage") }
func opencodeMessageRoot() string { return filepath.Join(opencodeStorageRoot(), "message") }
func opencodePartRoot() string    { return filepath.Join(opencodeStorageRoot(), "part") }
func opencodeSessionRoot() string { return filepath.Join(opencodeStorageRoot(), "session") }
func opencodeProjectRoot() string { return filepath.Join(opencodeStorageRoot(), "project") }
func opencodeDBFile() string      { return filepath.Join(opencodeDataRoot(), "opencode.db") }

func codexSessionsRoot() string {
	base := os.Getenv("CODEX_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".codex")
	}
	return filepath.Join(base, "sessions")
}

// SessionsFolder returns the first monitored data root that exists on this
// machine (codex sessions, then opencode messages), for "open folder"
// affordances in the host shell. Empty when no tool has written anything.
func SessionsFolder() string {
	if root := codexSessionsRoot(); dirExists(root) {
		return root
	}
	if root := opencodeMessageRoot(); dirExists(root) {
		return root
	}
	return ""
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
