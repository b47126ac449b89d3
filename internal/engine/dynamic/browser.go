// internal/engine/dynamic/browser.go
package dynamic

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/config"
	"github.com/law-makers/vaultcrawl/internal/engine"
)

// BrowserOptions configures the headless browser
type BrowserOptions struct {
	Headless   bool
	UserAgent  string
	Proxy      string
	ChromePath string
	// NavigationTimeout bounds one Open call, settle wait included.
	NavigationTimeout time.Duration
	// SettleTimeout bounds the wait for network quiescence after load.
	SettleTimeout time.Duration
	// Headers are sent with every request the page makes.
	Headers   map[string]string
	ExtraArgs []chromedp.ExecAllocatorOption
}

// Browser starts one Chrome process per session
type Browser struct {
	opts BrowserOptions
}

// NewBrowser creates a Browser. Chrome is not started until NewSession.
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = config.DefaultHTTPTimeout
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = config.DefaultSettleTimeout
	}
	return &Browser{opts: opts}
}

// Name returns the name of this engine
func (b *Browser) Name() string {
	return "DynamicBrowser"
}

// AllocatorOptions builds the Chrome flag set shared by crawling and login
func AllocatorOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("safebrowsing-disable-auto-update", true),
		chromedp.Flag("disable-features", "site-per-process,TranslateUI"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
	}

	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	if chromePath := FindChrome(opts.ChromePath); chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(chromePath)}, allocOpts...)
	}

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	return append(allocOpts, opts.ExtraArgs...)
}

// NewSession launches Chrome with a single tab and prepares it for crawling.
// ctx only governs startup; the session lives until Close.
func (b *Browser) NewSession(ctx context.Context) (engine.Session, error) {
	start := time.Now()

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), AllocatorOptions(b.opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
		opts:        b.opts,
	}

	// The first Run allocates the browser, so it must use browserCtx itself
	// rather than a child with a deadline.
	startup := make(chan error, 1)
	go func() {
		tasks := chromedp.Tasks{
			network.Enable(),
			page.SetLifecycleEventsEnabled(true),
		}
		if len(b.opts.Headers) > 0 {
			headers := network.Headers{}
			for k, v := range b.opts.Headers {
				headers[k] = v
			}
			tasks = append(tasks, network.SetExtraHTTPHeaders(headers))
		}
		tasks = append(tasks, chromedp.Navigate("about:blank"))
		startup <- chromedp.Run(browserCtx, tasks)
	}()

	select {
	case err := <-startup:
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-ctx.Done():
		s.Close()
		return nil, fmt.Errorf("browser startup interrupted: %w", ctx.Err())
	}

	log.Debug().
		Dur("elapsed", time.Since(start)).
		Bool("headless", b.opts.Headless).
		Msg("Browser session ready")

	return s, nil
}
