// Package settings manages the monitor's own host-state files: monitor
// toggles, repo bindings, desktop preferences, and layout documents. All
// files live under one directory and use JSON. Unlike the monitored tools'
// data, read failures here are operator-actionable, so write paths surface
// errors instead of swallowing them.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	monitorSettingsFile = "monitor-settings.json"
	repoBindingsFile    = "monitor-repo-bindings.json"
	desktopSettingsFile = "desktop-settings.json"
	layoutFile          = "layout.json"
	agentSeatsFile      = "agent-seats.json"
)

// Dir returns the settings directory, honoring the PIXEL_AGENTS_DIR
// override.
func Dir() string {
	if dir := os.Getenv("PIXEL_AGENTS_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".pixel-agents")
}

// MonitorSettings are the user-facing monitor toggles and intervals. The
// interval fields are advisory for the embedding shell's schedulers; the
// monitor itself only consults the enabled flags.
type MonitorSettings struct {
	Enabled              bool `json:"enabled"`
	EnableClaude         bool `json:"enableClaude"`
	EnableOpencode       bool `json:"enableOpencode"`
	EnableCodex          bool `json:"enableCodex"`
	EnableGit            bool `json:"enableGit"`
	EnablePr             bool `json:"enablePr"`
	FlushIntervalMs      int  `json:"flushIntervalMs"`
	SourcePollIntervalMs int  `json:"sourcePollIntervalMs"`
	GitPollIntervalMs    int  `json:"gitPollIntervalMs"`
	PrPollIntervalMs     int  `json:"prPollIntervalMs"`
	AgentLabelFontPx     int  `json:"agentLabelFontPx"`
	MaxIdleAgents        int  `json:"maxIdleAgents"`
}

func DefaultMonitorSettings() MonitorSettings {
	return MonitorSettings{
		Enabled:              true,
		EnableClaude:         true,
		EnableOpencode:       true,
		EnableCodex:          true,
		EnableGit:            true,
		EnablePr:             true,
		FlushIntervalMs:      1000,
		SourcePollIntervalMs: 2000,
		GitPollIntervalMs:    20000,
		PrPollIntervalMs:     90000,
		AgentLabelFontPx:     24,
		MaxIdleAgents:        3,
	}
}

// ReadMonitorSettings loads monitor settings, falling back to defaults when
// the file is missing or unreadable. A poll must never fail because of a
// bad settings file.
func ReadMonitorSettings() MonitorSettings {
	out := DefaultMonitorSettings()
	data, err := os.ReadFile(filepath.Join(Dir(), monitorSettingsFile))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return DefaultMonitorSettings()
	}
	return out
}

func WriteMonitorSettings(s MonitorSettings) error {
	return writeJSONFile(monitorSettingsFile, s)
}

// ReadRepoBindings loads the agent key to repository path bindings. Missing
// or unreadable files yield an empty map.
func ReadRepoBindings() map[string]string {
	out := make(map[string]string)
	data, err := os.ReadFile(filepath.Join(Dir(), repoBindingsFile))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return make(map[string]string)
	}
	return out
}

// BindRepo records (or, with an empty repoPath, removes) a binding from an
// agent key to a repository path.
func BindRepo(key, repoPath string) error {
	if key == "" {
		return fmt.Errorf("bind repo: empty agent key")
	}
	bindings := ReadRepoBindings()
	if repoPath == "" {
		delete(bindings, key)
	} else {
		bindings[key] = repoPath
	}
	return writeJSONFile(repoBindingsFile, bindings)
}

// DesktopSettings are shell-level preferences stored alongside the monitor
// settings.
type DesktopSettings struct {
	SoundEnabled bool `json:"soundEnabled"`
	DemoMode     bool `json:"demoMode"`
}

func ReadDesktopSettings() DesktopSettings {
	out := DesktopSettings{SoundEnabled: true}
	data, err := os.ReadFile(filepath.Join(Dir(), desktopSettingsFile))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return DesktopSettings{SoundEnabled: true}
	}
	return out
}

func WriteDesktopSettings(s DesktopSettings) error {
	return writeJSONFile(desktopSettingsFile, s)
}

// ReadLayout returns the raw layout document, or nil when none is stored.
func ReadLayout() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(Dir(), layoutFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

// ImportLayout validates and stores a layout document. Only version 1
// layouts with a tiles array are accepted.
func ImportLayout(data []byte) error {
	var doc struct {
		Version int   `json:"version"`
		Tiles   []any `json:"tiles"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("import layout: %w", err)
	}
	if doc.Version != 1 {
		return fmt.Errorf("import layout: unsupported version %d", doc.Version)
	}
	if doc.Tiles == nil {
		return fmt.Errorf("import layout: missing tiles")
	}
	return writeRawFile(layoutFile, data)
}

// ReadAgentSeats returns the raw seat assignment document, or nil when none
// is stored.
func ReadAgentSeats() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(Dir(), agentSeatsFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

// WriteAgentSeats stores the seat assignment document after checking it is
// a JSON object.
func WriteAgentSeats(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("write agent seats: %w", err)
	}
	return writeRawFile(agentSeatsFile, data)
}

func writeJSONFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeRawFile(name, data)
}

func writeRawFile(name string, data []byte) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
