// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/hitotop/internal/gesture"
	"github.com/jmylchreest/hitotop/internal/theme"
)

// AppName names the config and data directories.
const AppName = "hitotop"

// Default configuration values.
const (
	DefaultInterval     = time.Hour
	DefaultTimeout      = 10 * time.Second
	DefaultMinInterval  = 2 * time.Second
	DefaultWidth        = 500
	DefaultHeight       = 80
	DefaultTopOffset    = 60
	DefaultFontSize     = 16
	DefaultCornerRadius = 10
	DefaultIconName     = "accessories-text-editor-symbolic"
	DefaultUserAgent    = "hitotop/1.0"
)

// Config represents the hitotop configuration.
// Loaded from ~/.config/hitotop/config.toml
type Config struct {
	Refresh   RefreshConfig   `toml:"refresh"`
	Network   NetworkConfig   `toml:"network"`
	Window    WindowConfig    `toml:"window"`
	Theme     ThemeConfig     `toml:"theme"`
	Gesture   GestureConfig   `toml:"gesture"`
	Tray      TrayConfig      `toml:"tray"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// RefreshConfig controls when quotes are fetched.
type RefreshConfig struct {
	Interval    Duration `toml:"interval"`     // Scheduled refresh period
	Timeout     Duration `toml:"timeout"`      // Per-endpoint request timeout
	MinInterval Duration `toml:"min_interval"` // Minimum spacing between fetches, 0 disables
}

// NetworkConfig contains HTTP client settings.
type NetworkConfig struct {
	VerifyTLS bool   `toml:"verify_tls"`
	UserAgent string `toml:"user_agent"`
}

// WindowConfig contains overlay window settings.
type WindowConfig struct {
	Width            int  `toml:"width"`
	Height           int  `toml:"height"`
	TopOffset        int  `toml:"top_offset"` // Initial distance from the top edge
	FontSize         int  `toml:"font_size"`
	CornerRadius     int  `toml:"corner_radius"`
	RememberPosition bool `toml:"remember_position"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// GestureConfig contains pointer gesture settings.
type GestureConfig struct {
	Modifier      string `toml:"modifier"`       // "ctrl", "alt", "shift" or "super"
	ReleasePolicy string `toml:"release_policy"` // "track" or "hold"
}

// TrayConfig contains status icon settings.
type TrayConfig struct {
	Enabled  bool   `toml:"enabled"`
	IconName string `toml:"icon_name"`
}

// ClipboardConfig holds clipboard settings.
type ClipboardConfig struct {
	Command string `toml:"command"` // System clipboard if empty
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Refresh: RefreshConfig{
			Interval:    Duration(DefaultInterval),
			Timeout:     Duration(DefaultTimeout),
			MinInterval: Duration(DefaultMinInterval),
		},
		Network: NetworkConfig{
			VerifyTLS: false,
			UserAgent: DefaultUserAgent,
		},
		Window: WindowConfig{
			Width:            DefaultWidth,
			Height:           DefaultHeight,
			TopOffset:        DefaultTopOffset,
			FontSize:         DefaultFontSize,
			CornerRadius:     DefaultCornerRadius,
			RememberPosition: true,
		},
		Theme: ThemeConfig{
			ColorScheme: string(theme.SchemeSystem),
		},
		Gesture: GestureConfig{
			Modifier:      "ctrl",
			ReleasePolicy: "track",
		},
		Tray: TrayConfig{
			Enabled:  true,
			IconName: DefaultIconName,
		},
		Clipboard: ClipboardConfig{
			Command: "",
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName, "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName)
}

// StatePath returns the path to the window state file.
func StatePath() string {
	return filepath.Join(DataPath(), "state.json")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Refresh.Interval.Duration() < time.Minute {
		return fmt.Errorf("refresh.interval must be at least 1m, got %s", c.Refresh.Interval)
	}
	if t := c.Refresh.Timeout.Duration(); t <= 0 || t > 2*time.Minute {
		return fmt.Errorf("refresh.timeout must be between 0 and 2m, got %s", c.Refresh.Timeout)
	}
	if c.Refresh.MinInterval.Duration() < 0 {
		return fmt.Errorf("refresh.min_interval must not be negative, got %s", c.Refresh.MinInterval)
	}

	if c.Window.Width < 100 || c.Window.Width > 4000 {
		return fmt.Errorf("window.width must be between 100 and 4000, got %d", c.Window.Width)
	}
	if c.Window.Height < 20 || c.Window.Height > 1000 {
		return fmt.Errorf("window.height must be between 20 and 1000, got %d", c.Window.Height)
	}
	if c.Window.TopOffset < 0 {
		return fmt.Errorf("window.top_offset must not be negative, got %d", c.Window.TopOffset)
	}
	if c.Window.FontSize < 6 || c.Window.FontSize > 96 {
		return fmt.Errorf("window.font_size must be between 6 and 96, got %d", c.Window.FontSize)
	}
	if c.Window.CornerRadius < 0 {
		return fmt.Errorf("window.corner_radius must not be negative, got %d", c.Window.CornerRadius)
	}

	if _, err := theme.ParseScheme(c.Theme.ColorScheme); err != nil {
		return fmt.Errorf("theme.color_scheme: %w", err)
	}
	if _, err := c.Gesture.Policy(); err != nil {
		return err
	}

	return nil
}

// Scheme returns the parsed color scheme, defaulting to system.
func (c ThemeConfig) Scheme() theme.Scheme {
	s, err := theme.ParseScheme(c.ColorScheme)
	if err != nil {
		return theme.SchemeSystem
	}
	return s
}

// Policy converts the gesture settings into a gesture.Policy.
func (g GestureConfig) Policy() (gesture.Policy, error) {
	mod, err := gesture.ParseModifier(g.Modifier)
	if err != nil {
		return gesture.Policy{}, fmt.Errorf("gesture.modifier: %w", err)
	}
	release, err := gesture.ParseReleasePolicy(g.ReleasePolicy)
	if err != nil {
		return gesture.Policy{}, fmt.Errorf("gesture.release_policy: %w", err)
	}
	return gesture.Policy{DragModifier: mod, Release: release}, nil
}

// Style returns the overlay style for the given text color.
func (w WindowConfig) Style(text theme.Color) theme.Style {
	return theme.Style{
		FontSize:     w.FontSize,
		CornerRadius: w.CornerRadius,
		Text:         text,
	}
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
