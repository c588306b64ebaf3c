// Package config handles configuration loading and defaults for lever.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/lever/config.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lever/internal/fsutil"
	"lever/internal/storage"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the directory holding lever-data.json
	DataDir string `yaml:"data_dir,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	// UX customizes user experience settings
	UX UXConfig `yaml:"ux,omitempty"`

	// Notifications configures desktop notifications
	Notifications NotificationConfig `yaml:"notifications,omitempty"`

	// Log configures the rotating log file
	Log LogConfig `yaml:"log,omitempty"`
}

// NotificationConfig defines desktop notification settings.
type NotificationConfig struct {
	// Enabled sends a notification when a focus session completes
	Enabled bool `yaml:"enabled,omitempty"`

	// Sound enables notification sounds
	Sound bool `yaml:"sound,omitempty"`
}

// LogConfig defines where lever logs and how the file rotates.
type LogConfig struct {
	// File is the log path; empty means <data dir>/lever.log
	File string `yaml:"file,omitempty"`

	// Level is one of debug, info, warn, error
	Level string `yaml:"level,omitempty"`

	MaxSizeMB  int `yaml:"max_size_mb,omitempty"`
	MaxBackups int `yaml:"max_backups,omitempty"`
	MaxAgeDays int `yaml:"max_age_days,omitempty"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Background color (hex)
	Background string `yaml:"background,omitempty"`

	// Text color (hex)
	Text string `yaml:"text,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	// Global keys
	Quit             string `yaml:"quit,omitempty"`               // default: "q,ctrl+c"
	Help             string `yaml:"help,omitempty"`               // default: "?"
	NewTask          string `yaml:"new_task,omitempty"`           // default: "ctrl+n"
	CompleteDay      string `yaml:"complete_day,omitempty"`       // default: "c"
	ToggleAntiVision string `yaml:"toggle_anti_vision,omitempty"` // default: "v"
	EditVision       string `yaml:"edit_vision,omitempty"`        // default: "V"
	EditAntiVision   string `yaml:"edit_anti_vision,omitempty"`   // default: "A"
	Export           string `yaml:"export,omitempty"`             // default: "e"

	// Navigation keys
	Up   string `yaml:"up,omitempty"`   // default: "k,up"
	Down string `yaml:"down,omitempty"` // default: "j,down"

	// Task keys
	AddTask    string `yaml:"add_task,omitempty"`    // default: "a"
	ToggleTask string `yaml:"toggle_task,omitempty"` // default: "d,enter"
	DeleteTask string `yaml:"delete_task,omitempty"` // default: "x"

	// Timer keys
	ToggleTimer string `yaml:"toggle_timer,omitempty"` // default: "space"
	ResetTimer  string `yaml:"reset_timer,omitempty"`  // default: "r"

	// Input keys
	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions asks before deleting a lever task
	ConfirmDeletions bool `yaml:"confirm_deletions,omitempty"` // default: true

	// ShowOnboarding runs the onboarding screen until it has been completed
	ShowOnboarding bool `yaml:"show_onboarding,omitempty"` // default: true

	// NarrowLayoutThreshold is the width below which panes stack
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 80
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: "",
		Theme: ThemeConfig{
			Primary:    "#F59E0B", // Amber
			Accent:     "#10B981", // Emerald
			Muted:      "#6B7280", // Gray
			Background: "",        // Terminal default
			Text:       "",        // Terminal default
		},
		Keys: KeysConfig{
			// Defaults are empty strings, which means use built-in defaults
		},
		UX: UXConfig{
			ConfirmDeletions:      true,
			ShowOnboarding:        true,
			NarrowLayoutThreshold: 80,
		},
		Notifications: NotificationConfig{
			Enabled: false,
			Sound:   false,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lever")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lever")
}

// Path returns the path to the config file, or "" when no home directory
// can be determined.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads configuration from path, merging with defaults. An empty
// path or a missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	// Merge user config with defaults (presence-aware for booleans)
	cfg.mergeFromYAML(&userCfg, &doc)

	return cfg, nil
}

// mergeNonEmpty applies non-empty values from other to c.
// It does not touch booleans; those need presence-aware merging.
func (c *Config) mergeNonEmpty(other *Config) {
	strs := []struct{ dst, src *string }{
		{&c.DataDir, &other.DataDir},

		{&c.Theme.Primary, &other.Theme.Primary},
		{&c.Theme.Accent, &other.Theme.Accent},
		{&c.Theme.Muted, &other.Theme.Muted},
		{&c.Theme.Background, &other.Theme.Background},
		{&c.Theme.Text, &other.Theme.Text},

		{&c.Keys.Quit, &other.Keys.Quit},
		{&c.Keys.Help, &other.Keys.Help},
		{&c.Keys.NewTask, &other.Keys.NewTask},
		{&c.Keys.CompleteDay, &other.Keys.CompleteDay},
		{&c.Keys.ToggleAntiVision, &other.Keys.ToggleAntiVision},
		{&c.Keys.EditVision, &other.Keys.EditVision},
		{&c.Keys.EditAntiVision, &other.Keys.EditAntiVision},
		{&c.Keys.Export, &other.Keys.Export},
		{&c.Keys.Up, &other.Keys.Up},
		{&c.Keys.Down, &other.Keys.Down},
		{&c.Keys.AddTask, &other.Keys.AddTask},
		{&c.Keys.ToggleTask, &other.Keys.ToggleTask},
		{&c.Keys.DeleteTask, &other.Keys.DeleteTask},
		{&c.Keys.ToggleTimer, &other.Keys.ToggleTimer},
		{&c.Keys.ResetTimer, &other.Keys.ResetTimer},
		{&c.Keys.Confirm, &other.Keys.Confirm},
		{&c.Keys.Cancel, &other.Keys.Cancel},

		{&c.Log.File, &other.Log.File},
		{&c.Log.Level, &other.Log.Level},
	}
	for _, s := range strs {
		if *s.src != "" {
			*s.dst = *s.src
		}
	}

	ints := []struct{ dst, src *int }{
		{&c.UX.NarrowLayoutThreshold, &other.UX.NarrowLayoutThreshold},
		{&c.Log.MaxSizeMB, &other.Log.MaxSizeMB},
		{&c.Log.MaxBackups, &other.Log.MaxBackups},
		{&c.Log.MaxAgeDays, &other.Log.MaxAgeDays},
	}
	for _, n := range ints {
		if *n.src > 0 {
			*n.dst = *n.src
		}
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a document we can't tell an explicit false from an absent key.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	bools := []struct {
		path     []string
		dst, src *bool
	}{
		{[]string{"ux", "confirm_deletions"}, &c.UX.ConfirmDeletions, &other.UX.ConfirmDeletions},
		{[]string{"ux", "show_onboarding"}, &c.UX.ShowOnboarding, &other.UX.ShowOnboarding},
		{[]string{"notifications", "enabled"}, &c.Notifications.Enabled, &other.Notifications.Enabled},
		{[]string{"notifications", "sound"}, &c.Notifications.Sound, &other.Notifications.Sound},
	}
	for _, b := range bools {
		if yamlHasPath(doc, b.path...) {
			*b.dst = *b.src
		}
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			if k.Kind == yaml.ScalarNode && k.Value == key {
				next = v
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes the configuration to path.
func (c *Config) SaveFile(path string) error {
	if path == "" {
		return nil
	}

	if err := fsutil.EnsureDir(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialize config: %w", err)
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DefaultDataDir()
	}
	return expandHome(c.DataDir)
}

// LogFile returns the resolved log file path.
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return filepath.Join(c.GetDataDir(), "lever.log")
	}
	return expandHome(c.Log.File)
}

func expandHome(p string) string {
	if p == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return p
	}

	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			trimmed := strings.TrimPrefix(p, "~/")
			trimmed = strings.TrimPrefix(trimmed, `~\`)
			return filepath.Join(home, trimmed)
		}
	}
	return p
}
