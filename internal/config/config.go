package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Fetching
	HTTPTimeout   time.Duration
	SettleTimeout time.Duration
	UserAgent     string
	Proxy         string

	// Browser
	BrowserHeadless bool
	ChromePath      string

	// Files
	SettingsPath string
	DataDir      string
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		HTTPTimeout:     DefaultHTTPTimeout,
		SettleTimeout:   DefaultSettleTimeout,
		UserAgent:       DefaultUserAgent,
		BrowserHeadless: DefaultBrowserHeadless,
		SettingsPath:    DefaultSettingsPath(),
		DataDir:         XDGDataDir(),
	}

	if v := os.Getenv("VAULTCRAWL_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("VAULTCRAWL_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("VAULTCRAWL_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}

	if cmd != nil {
		flags := cmd.Flags()
		if f := flags.Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := flags.Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := flags.Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				d, err := time.ParseDuration(s)
				if err != nil {
					return nil, fmt.Errorf("invalid --timeout: %w", err)
				}
				cfg.HTTPTimeout = d
			}
		}
		if f := flags.Lookup("settle-timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				d, err := time.ParseDuration(s)
				if err != nil {
					return nil, fmt.Errorf("invalid --settle-timeout: %w", err)
				}
				cfg.SettleTimeout = d
			}
		}
		if f := flags.Lookup("settings"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.SettingsPath = s
			}
		}
		if f := flags.Lookup("headful"); f != nil && f.Value.String() == "true" {
			cfg.BrowserHeadless = false
		}
		if f := flags.Lookup("json"); f != nil && f.Value.String() == "true" {
			cfg.JSONLog = true
		}
		if f := flags.Lookup("quiet"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "error"
		}
		if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
			cfg.LogLevel = "debug"
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// XDGDataDir returns the data directory holding the run history.
// On Linux: ~/.local/share/vaultcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the directory holding settings.yaml.
// On Linux: ~/.config/vaultcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultSettingsPath returns the settings file used when --settings is not given.
func DefaultSettingsPath() string {
	return filepath.Join(XDGConfigDir(), SettingsFileName)
}
