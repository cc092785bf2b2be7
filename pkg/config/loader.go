package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses the config file. A missing file is not an
// error: the sidebar runs fine on defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Sidebar.Width <= 0 {
		cfg.Sidebar.Width = 25
	}
	if cfg.Sidebar.CollapsedWidth <= 0 {
		cfg.Sidebar.CollapsedWidth = 6
	}
	if cfg.Sidebar.ToggleKey == "" {
		cfg.Sidebar.ToggleKey = "tab"
	}
	if cfg.Alerts.TickMs <= 0 {
		cfg.Alerts.TickMs = 1000
	}
	if cfg.Alerts.DefaultFlash == 0 {
		cfg.Alerts.DefaultFlash = 10
	}
	if cfg.Poll.FloorMs <= 0 {
		cfg.Poll.FloorMs = 50
	}
	if cfg.Poll.CeilingMs < cfg.Poll.FloorMs {
		cfg.Poll.CeilingMs = 2000
	}
	if cfg.Poll.Growth <= 1 {
		cfg.Poll.Growth = 1.5
	}
	if cfg.Colors.Fg == "" {
		cfg.Colors.Fg = "#cccccc"
	}
	if cfg.Colors.Bg == "" {
		cfg.Colors.Bg = "#1c1c1c"
	}
	if cfg.Colors.ActiveFg == "" {
		cfg.Colors.ActiveFg = "#1c1c1c"
	}
	if cfg.Colors.ActiveBg == "" {
		cfg.Colors.ActiveBg = "#cccccc"
	}
	if cfg.Colors.Success == "" {
		cfg.Colors.Success = "#27ae60"
	}
	if cfg.Colors.Failure == "" {
		cfg.Colors.Failure = "#e74c3c"
	}
	if cfg.Colors.Notify == "" {
		cfg.Colors.Notify = "#f39c12"
	}
	if cfg.Colors.Mode == "" {
		cfg.Colors.Mode = "#27ae60"
	}
	if cfg.Colors.Separator == "" {
		cfg.Colors.Separator = "#444444"
	}
}
