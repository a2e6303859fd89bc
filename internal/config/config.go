package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Monitor MonitorConfig `yaml:"monitor"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// MonitorConfig carries the aging thresholds and per-source scan bounds.
// The defaults are the semantics the snapshot consumers rely on; the fields
// exist so an integrator can tune them, not so the shape of the state
// machine can change.
type MonitorConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`

	// Silence thresholds for the aging state machine.
	IdleAfter time.Duration `yaml:"idle_after"`
	DoneAfter time.Duration `yaml:"done_after"`

	// Per-source scan bounds.
	CodexTailBytes       int64 `yaml:"codex_tail_bytes"`
	MaxCodexFiles        int   `yaml:"max_codex_files"`
	MaxOpenCodeFiles     int   `yaml:"max_opencode_files"`
	MaxOpenCodePartFiles int   `yaml:"max_opencode_part_files"`
	MaxDBSessions        int   `yaml:"max_db_sessions"`
	MaxDBParts           int   `yaml:"max_db_parts"`

	// Display budgets.
	MaxTextChars    int `yaml:"max_text_chars"`
	MaxRecentEvents int `yaml:"max_recent_events"`

	// Consecutive scan failures before a source is reported failed.
	HealthWarningThreshold int `yaml:"health_warning_threshold"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
		Monitor: MonitorConfig{
			PollInterval:           2 * time.Second,
			IdleAfter:              20 * time.Second,
			DoneAfter:              90 * time.Second,
			CodexTailBytes:         65_536,
			MaxCodexFiles:          120,
			MaxOpenCodeFiles:       800,
			MaxOpenCodePartFiles:   900,
			MaxDBSessions:          800,
			MaxDBParts:             1500,
			MaxTextChars:           180,
			MaxRecentEvents:        20,
			HealthWarningThreshold: 3,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
