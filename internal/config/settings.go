package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is the settings file created inside the config directory.
const SettingsFileName = "settings.yaml"

// ErrSettingsNotFound is returned when the settings file does not exist.
var ErrSettingsNotFound = errors.New("settings file not found")

// ErrUnknownSetting is returned by Set for a key that does not exist.
var ErrUnknownSetting = errors.New("unknown setting")

// Settings are the user preferences that survive between runs.
type Settings struct {
	StartURL     string `yaml:"startUrl" json:"startUrl"`
	TargetFolder string `yaml:"targetFolder" json:"targetFolder"`
	MaxPages     int    `yaml:"maxPages" json:"maxPages"`
	SessionJSON  string `yaml:"storageStateJson,omitempty" json:"storageStateJson,omitempty"`
	Engine       string `yaml:"engine" json:"engine"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() *Settings {
	return &Settings{
		StartURL:     DefaultStartURL,
		TargetFolder: DefaultTargetFolder,
		MaxPages:     DefaultMaxPages,
		Engine:       DefaultEngine,
	}
}

// LoadSettingsFile reads path and merges it over the defaults.
// If the file does not exist, it returns ErrSettingsNotFound.
func LoadSettingsFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-chosen settings path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// LoadSettings is LoadSettingsFile with a missing file treated as defaults.
func LoadSettings(path string) (*Settings, error) {
	s, err := LoadSettingsFile(path)
	if errors.Is(err, ErrSettingsNotFound) {
		return DefaultSettings(), nil
	}
	return s, err
}

// Save writes the settings to path, creating the directory if needed.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

var settingSetters = map[string]func(s *Settings, value string) error{
	"startUrl": func(s *Settings, v string) error {
		s.StartURL = strings.TrimSpace(v)
		return nil
	},
	"targetFolder": func(s *Settings, v string) error {
		s.TargetFolder = strings.Trim(strings.TrimSpace(v), "/")
		return nil
	},
	"maxPages": func(s *Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return ErrInvalidMaxPages
		}
		s.MaxPages = n
		return nil
	},
	"storageStateJson": func(s *Settings, v string) error {
		s.SessionJSON = v
		return nil
	},
	"engine": func(s *Settings, v string) error {
		s.Engine = strings.ToLower(strings.TrimSpace(v))
		return nil
	},
}

// SettingKeys lists the keys accepted by Set
func SettingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set changes one setting by its YAML key. The settings are left untouched
// when the new value does not validate.
func (s *Settings) Set(key, value string) error {
	setter, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownSetting, key, strings.Join(SettingKeys(), ", "))
	}

	next := *s
	if err := setter(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}
