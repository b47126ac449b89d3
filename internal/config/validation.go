package config

import (
	"errors"
	"fmt"

	urlutil "github.com/law-makers/vaultcrawl/internal/utils/url"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

// Validation errors returned by validate and Settings.Validate.
var (
	ErrInvalidTimeout       = errors.New("invalid timeout: must be positive")
	ErrInvalidSettleTimeout = errors.New("invalid settle timeout: must be positive")
	ErrInvalidMaxPages      = fmt.Errorf("invalid max pages: must be between 1 and %d", MaxMaxPages)
	ErrInvalidEngine        = errors.New("invalid engine: must be dynamic or static")
	ErrInvalidStartURL      = errors.New("invalid start URL")
	ErrEmptyTargetFolder    = errors.New("target folder must not be empty")
)

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.SettleTimeout <= 0 {
		return ErrInvalidSettleTimeout
	}
	return nil
}

// Validate checks every persisted setting
func (s *Settings) Validate() error {
	if err := urlutil.ValidateURL(s.StartURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStartURL, err)
	}
	if s.TargetFolder == "" {
		return ErrEmptyTargetFolder
	}
	if s.MaxPages < 1 || s.MaxPages > MaxMaxPages {
		return ErrInvalidMaxPages
	}
	if !models.EngineKind(s.Engine).Valid() {
		return ErrInvalidEngine
	}
	return nil
}
