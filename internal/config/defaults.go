package config

import "time"

// AppName is the application name used for XDG directory paths.
const AppName = "vaultcrawl"

// Default constants for application configuration
const (
	DefaultLogLevel        = "warn"
	DefaultJSONLog         = false
	DefaultUserAgent       = "VaultCrawl/1.0 (https://github.com/law-makers/vaultcrawl)"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultSettleTimeout   = 10 * time.Second
	DefaultBrowserHeadless = true
	DefaultServeAddr       = "127.0.0.1:3000"
)

// Defaults for persisted settings
const (
	DefaultStartURL     = "https://help.obsidian.md/Home"
	DefaultTargetFolder = "Scrapes/VaultScraper"
	DefaultMaxPages     = 50
	MaxMaxPages         = 200
	DefaultEngine       = "dynamic"
)
