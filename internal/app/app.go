// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/config"
	"github.com/law-makers/vaultcrawl/internal/crawl"
	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/engine/dynamic"
	"github.com/law-makers/vaultcrawl/internal/engine/static"
	"github.com/law-makers/vaultcrawl/internal/history"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

// ErrRunInProgress is returned when a crawl is requested while another one
// is still running in this process.
var ErrRunInProgress = errors.New("a crawl is already running")

// BrowserFactory builds the fetcher for one run.
type BrowserFactory func(kind models.EngineKind, headers map[string]string) engine.Browser

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config   *config.Config
	Settings *config.Settings
	Logger   *zerolog.Logger

	// NewBrowser is replaceable so runs can be exercised without Chrome.
	NewBrowser BrowserFactory

	runMu     sync.Mutex
	histMu    sync.Mutex
	history   *history.Store
	startTime time.Time
}

// ScrapeOptions tune one run beyond what the Request carries.
type ScrapeOptions struct {
	// Engine overrides the persisted engine setting when non-empty.
	Engine   models.EngineKind
	Headers  map[string]string
	Progress crawl.ProgressFunc
}

// New creates and initializes a new Application.
//
// It configures the global logger, then loads the persisted settings. A
// settings file that cannot be read is reported and replaced by defaults so
// that `settings reset` stays usable. The run history is opened lazily.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := SetupLogger(cfg, os.Stderr)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.SettingsPath).Msg("Failed to load settings, using defaults")
		settings = config.DefaultSettings()
	}
	logger.Debug().
		Str("path", cfg.SettingsPath).
		Str("engine", settings.Engine).
		Int("max_pages", settings.MaxPages).
		Msg("Settings loaded")

	a := &Application{
		Config:    cfg,
		Settings:  settings,
		Logger:    &logger,
		startTime: time.Now(),
	}
	a.NewBrowser = a.defaultBrowser

	logger.Debug().Msg("Application initialized successfully")
	return a, nil
}

// SetupLogger installs the global zerolog logger for cfg and returns it.
// Info logs stay hidden unless -v is used.
func SetupLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()

	log.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")
	return log.Logger
}

func (a *Application) defaultBrowser(kind models.EngineKind, headers map[string]string) engine.Browser {
	if kind == models.EngineStatic {
		return static.NewBrowser(static.Options{
			Timeout:   a.Config.HTTPTimeout,
			UserAgent: a.Config.UserAgent,
			Proxy:     a.Config.Proxy,
			Headers:   headers,
		})
	}
	return dynamic.NewBrowser(dynamic.BrowserOptions{
		Headless:          a.Config.BrowserHeadless,
		UserAgent:         a.Config.UserAgent,
		Proxy:             a.Config.Proxy,
		ChromePath:        a.Config.ChromePath,
		NavigationTimeout: a.Config.HTTPTimeout,
		SettleTimeout:     a.Config.SettleTimeout,
		Headers:           headers,
	})
}

// Scrape runs req with the persisted engine. It is what the trigger
// transport calls.
func (a *Application) Scrape(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
	return a.ScrapeWith(ctx, req, ScrapeOptions{})
}

// ScrapeWith runs req. Only one run may be active per process; a second
// caller gets ErrRunInProgress immediately.
func (a *Application) ScrapeWith(ctx context.Context, req crawl.Request, opts ScrapeOptions) ([]crawl.PageResult, error) {
	if !a.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer a.runMu.Unlock()

	kind := opts.Engine
	if kind == "" {
		kind = models.EngineKind(a.Settings.Engine)
	}
	if !kind.Valid() {
		return nil, engine.ConfigurationError(fmt.Sprintf("unknown engine %q (use dynamic or static)", kind), nil)
	}

	orchOpts := []crawl.Option{}
	if opts.Progress != nil {
		orchOpts = append(orchOpts, crawl.WithProgress(opts.Progress))
	}
	orch := crawl.New(a.NewBrowser(kind, opts.Headers), orchOpts...)
	return orch.Run(ctx, req)
}

// DefaultRequest builds a request from the persisted settings. With no urls
// it is the quick crawl of the start URL.
func (a *Application) DefaultRequest(urls []string) crawl.Request {
	req := crawl.Request{
		URLs:         urls,
		Mode:         models.ModeRecursive,
		MaxPages:     a.Settings.MaxPages,
		TargetFolder: a.Settings.TargetFolder,
		SessionJSON:  a.Settings.SessionJSON,
	}
	if len(req.URLs) == 0 {
		req.URLs = []string{a.Settings.StartURL}
	}
	return req
}

// SaveSettings persists the current settings
func (a *Application) SaveSettings() error {
	return a.Settings.Save(a.Config.SettingsPath)
}

// History opens the run history on first use.
func (a *Application) History() (*history.Store, error) {
	a.histMu.Lock()
	defer a.histMu.Unlock()

	if a.history != nil {
		return a.history, nil
	}
	store, err := history.Open(a.Config.DataDir)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug().Str("path", store.Path()).Msg("History store opened")
	a.history = store
	return store, nil
}

// RecordRun stores a finished run. Failures are logged only.
func (a *Application) RecordRun(ctx context.Context, run history.Run) {
	store, err := a.History()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to open history")
		return
	}
	if _, err := store.Record(ctx, run); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to record run")
	}
}

// Close gracefully shuts down the application and all its resources.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	a.histMu.Lock()
	defer a.histMu.Unlock()
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing history")
		}
		a.history = nil
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
