// Package config loads and persists the helltime configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OverlayPosition is a saved top-left coordinate for the overlay surface.
type OverlayPosition struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// OverlayConfig controls the toast surface's placement and appearance.
type OverlayConfig struct {
	// Position is the saved top-left corner. Nil means the overlay picks
	// a default near the top-right of the screen.
	Position *OverlayPosition `yaml:"position,omitempty"`
	// Scale multiplies the base surface size; clamped to [0.6, 2.0].
	Scale float64 `yaml:"scale"`
	// BackgroundColor is a hex color like "#0b1220".
	BackgroundColor string `yaml:"background_color"`
	// BackgroundAlpha is the surface opacity; clamped to [0.2, 1.0].
	BackgroundAlpha float64 `yaml:"background_alpha"`
	// Enabled gates whether toasts are shown at all.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// ScheduleConfig controls the event schedule fetcher.
type ScheduleConfig struct {
	URL             string `yaml:"url"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

// ReminderConfig controls the upcoming-event reminder loop.
type ReminderConfig struct {
	Enabled     *bool `yaml:"enabled,omitempty"`
	LeadSeconds int   `yaml:"lead_seconds"`
	PollSeconds int   `yaml:"poll_seconds"`
}

// TrayConfig controls the system tray icon.
type TrayConfig struct {
	// IconPaths are candidate icon files tried in order; a generated
	// fallback icon is used when none load.
	IconPaths []string `yaml:"icon_paths,omitempty"`
}

// Config is the root configuration document.
type Config struct {
	// HostWindowClass is the WM_CLASS of the game window the visibility
	// manager tracks.
	HostWindowClass string `yaml:"host_window_class"`
	// TrayDebounceMs is the duplicate-suppression window for tray clicks.
	TrayDebounceMs int `yaml:"tray_debounce_ms"`

	Overlay  OverlayConfig  `yaml:"overlay"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Reminder ReminderConfig `yaml:"reminder"`
	Tray     TrayConfig     `yaml:"tray"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	enabled := true
	return &Config{
		HostWindowClass: "helltime",
		TrayDebounceMs:  50,
		Overlay: OverlayConfig{
			Scale:           1.0,
			BackgroundColor: "#0b1220",
			BackgroundAlpha: 0.92,
			Enabled:         &enabled,
		},
		Schedule: ScheduleConfig{
			URL:             "https://helltides.com/api/schedule",
			CacheTTLSeconds: 30,
		},
		Reminder: ReminderConfig{
			Enabled:     &enabled,
			LeadSeconds: 300,
			PollSeconds: 30,
		},
	}
}

// DefaultConfigPath returns ~/.config/helltime/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "helltime", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from path. A missing file yields the
// defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration to the standard location, creating the
// directory if needed.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath writes the configuration to path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// normalize clamps out-of-range values back into their documented bounds
// and fills zero values with defaults.
func (c *Config) normalize() {
	if c.TrayDebounceMs <= 0 {
		c.TrayDebounceMs = 50
	}
	if c.Overlay.Scale == 0 {
		c.Overlay.Scale = 1.0
	}
	if c.Overlay.Scale < 0.6 {
		c.Overlay.Scale = 0.6
	}
	if c.Overlay.Scale > 2.0 {
		c.Overlay.Scale = 2.0
	}
	if c.Overlay.BackgroundAlpha == 0 {
		c.Overlay.BackgroundAlpha = 0.92
	}
	if c.Overlay.BackgroundAlpha < 0.2 {
		c.Overlay.BackgroundAlpha = 0.2
	}
	if c.Overlay.BackgroundAlpha > 1.0 {
		c.Overlay.BackgroundAlpha = 1.0
	}
	if c.Overlay.BackgroundColor == "" {
		c.Overlay.BackgroundColor = "#0b1220"
	}
	if c.Schedule.URL == "" {
		c.Schedule.URL = "https://helltides.com/api/schedule"
	}
	if c.Schedule.CacheTTLSeconds <= 0 {
		c.Schedule.CacheTTLSeconds = 30
	}
	if c.Reminder.LeadSeconds <= 0 {
		c.Reminder.LeadSeconds = 300
	}
	if c.Reminder.PollSeconds <= 0 {
		c.Reminder.PollSeconds = 30
	}
}

// BackgroundRGB parses Overlay.BackgroundColor into a 24-bit 0xRRGGBB
// value. Invalid input falls back to the default dark tone.
func (c *Config) BackgroundRGB() uint32 {
	rgb, err := ParseHexColor(c.Overlay.BackgroundColor)
	if err != nil {
		return 0x0b1220
	}
	return rgb
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into a 24-bit RGB value.
func ParseHexColor(s string) (uint32, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid hex color %q", s)
	}
	var rgb uint32
	for i := 0; i < 6; i++ {
		rgb <<= 4
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			rgb |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			rgb |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			rgb |= uint32(c-'A') + 10
		default:
			return 0, fmt.Errorf("invalid hex color %q", s)
		}
	}
	return rgb, nil
}

// OverlayEnabled reports whether toasts should be shown.
func (c *Config) OverlayEnabled() bool {
	return c.Overlay.Enabled == nil || *c.Overlay.Enabled
}

// ReminderEnabled reports whether the reminder loop should run.
func (c *Config) ReminderEnabled() bool {
	return c.Reminder.Enabled == nil || *c.Reminder.Enabled
}
