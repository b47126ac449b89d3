package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/vaultcrawl/internal/config"
	"github.com/law-makers/vaultcrawl/internal/crawl"
	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/history"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

type stubBrowser struct {
	release chan struct{}
	started chan struct{}
}

func (b *stubBrowser) Name() string { return "stub" }

func (b *stubBrowser) NewSession(ctx context.Context) (engine.Session, error) {
	return &stubSession{b: b}, nil
}

type stubSession struct{ b *stubBrowser }

func (s *stubSession) SetCookies(ctx context.Context, cookies []engine.Cookie) error { return nil }
func (s *stubSession) AddInitScript(ctx context.Context, source string) error       { return nil }
func (s *stubSession) Close() error                                                 { return nil }

func (s *stubSession) Open(ctx context.Context, url string, withLinks bool) (*models.Page, error) {
	if s.b.started != nil {
		close(s.b.started)
		s.b.started = nil
	}
	if s.b.release != nil {
		<-s.b.release
	}
	return &models.Page{URL: url, Title: "Home", ContentHTML: "<p>hi</p>"}, nil
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		LogLevel:      "error",
		HTTPTimeout:   time.Second,
		SettleTimeout: time.Second,
		SettingsPath:  filepath.Join(dir, "config", "settings.yaml"),
		DataDir:       filepath.Join(dir, "data"),
	}
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestNewUsesDefaultSettings(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, config.DefaultSettings(), a.Settings)

	req := a.DefaultRequest(nil)
	assert.Equal(t, []string{config.DefaultStartURL}, req.URLs)
	assert.Equal(t, models.ModeRecursive, req.Mode)
	assert.Equal(t, config.DefaultMaxPages, req.MaxPages)
	assert.Equal(t, config.DefaultTargetFolder, req.TargetFolder)
}

func TestSaveSettingsPersists(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Settings.Set("maxPages", "7"))
	require.NoError(t, a.SaveSettings())

	s, err := config.LoadSettings(a.Config.SettingsPath)
	require.NoError(t, err)
	assert.Equal(t, 7, s.MaxPages)
}

func TestScrapeSelectsEngine(t *testing.T) {
	a := newTestApp(t)
	var gotKind models.EngineKind
	var gotHeaders map[string]string
	a.NewBrowser = func(kind models.EngineKind, headers map[string]string) engine.Browser {
		gotKind, gotHeaders = kind, headers
		return &stubBrowser{}
	}

	results, err := a.Scrape(context.Background(), a.DefaultRequest([]string{"https://docs.example/Home"}))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.EngineDynamic, gotKind)

	_, err = a.ScrapeWith(context.Background(), crawl.Request{
		URLs: []string{"https://docs.example/Home"}, Mode: models.ModeSingle, MaxPages: 1, TargetFolder: "x",
	}, ScrapeOptions{Engine: models.EngineStatic, Headers: map[string]string{"X-A": "1"}})
	require.NoError(t, err)
	assert.Equal(t, models.EngineStatic, gotKind)
	assert.Equal(t, "1", gotHeaders["X-A"])

	_, err = a.ScrapeWith(context.Background(), a.DefaultRequest(nil), ScrapeOptions{Engine: "gecko"})
	assert.True(t, engine.IsConfiguration(err))
}

func TestScrapeRejectsConcurrentRun(t *testing.T) {
	a := newTestApp(t)
	b := &stubBrowser{release: make(chan struct{}), started: make(chan struct{})}
	started := b.started
	a.NewBrowser = func(models.EngineKind, map[string]string) engine.Browser { return b }

	done := make(chan error, 1)
	go func() {
		_, err := a.Scrape(context.Background(), a.DefaultRequest([]string{"https://docs.example/Home"}))
		done <- err
	}()

	<-started
	_, err := a.Scrape(context.Background(), a.DefaultRequest([]string{"https://docs.example/Other"}))
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(b.release)
	require.NoError(t, <-done)

	// the guard is released once the first run ends
	b.release = nil
	_, err = a.Scrape(context.Background(), a.DefaultRequest([]string{"https://docs.example/Home"}))
	assert.NoError(t, err)
}

func TestRecordRun(t *testing.T) {
	a := newTestApp(t)
	a.RecordRun(context.Background(), history.Run{Mode: "single", Seeds: []string{"https://a.example"}, MaxPages: 1})

	store, err := a.History()
	require.NoError(t, err)
	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSetupLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger(&config.Config{LogLevel: "debug", JSONLog: true}, &buf)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), `"message":"Logger initialized"`)

	SetupLogger(&config.Config{LogLevel: "warn"}, &buf)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}
