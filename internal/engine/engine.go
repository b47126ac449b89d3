// Package engine defines the page-fetching contract shared by the chromedp
// and plain-HTTP implementations.
package engine

import (
	"context"

	"github.com/law-makers/vaultcrawl/pkg/models"
)

// Browser starts browsing sessions. One session serves one crawl run.
type Browser interface {
	// NewSession acquires a fresh browsing context. The caller must Close it.
	NewSession(ctx context.Context) (Session, error)

	// Name returns the name of the implementation
	Name() string
}

// Session is a single browsing context: one tab, one cookie store.
type Session interface {
	// SetCookies installs cookies before the first navigation.
	SetCookies(ctx context.Context, cookies []Cookie) error

	// AddInitScript registers JavaScript that runs in every new document
	// before any of the page's own scripts.
	AddInitScript(ctx context.Context, source string) error

	// Open navigates to url, waits for the network to settle and returns the
	// cleaned content. Links are collected only when withLinks is set.
	Open(ctx context.Context, url string, withLinks bool) (*models.Page, error)

	// Close releases the browsing context.
	Close() error
}

// Cookie is the fetcher-facing cookie shape.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  float64
	HTTPOnly bool
	Secure   bool
	SameSite string
}
