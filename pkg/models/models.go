package models

import "time"

// Page is what a fetcher reports for one URL
type Page struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	ContentHTML string    `json:"content_html,omitempty"`
	Links       []string  `json:"links,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
	// ResponseTime is the navigate-to-extract duration in milliseconds.
	ResponseTime int64 `json:"response_time_ms"`
}

// CrawlMode selects how seed URLs are processed
type CrawlMode string

const (
	// ModeRecursive follows same-host links from the first seed.
	ModeRecursive CrawlMode = "recursive"
	// ModeSingle fetches each seed once and follows nothing.
	ModeSingle CrawlMode = "single"
)

// Valid reports whether m is a known mode
func (m CrawlMode) Valid() bool {
	return m == ModeRecursive || m == ModeSingle
}

// EngineKind selects the page fetcher implementation
type EngineKind string

const (
	EngineDynamic EngineKind = "dynamic"
	EngineStatic  EngineKind = "static"
)

// Valid reports whether k is a known engine
func (k EngineKind) Valid() bool {
	return k == EngineDynamic || k == EngineStatic
}
