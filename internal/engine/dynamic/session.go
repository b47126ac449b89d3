// internal/engine/dynamic/session.go
package dynamic

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/engine/extract"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

// collectLinksJS lists every anchor's resolved href in document order.
const collectLinksJS = `Array.from(document.querySelectorAll('a')).map(a => a.href)`

// Session is one Chrome tab driven through chromedp
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	opts        BrowserOptions

	mu     sync.Mutex
	closed bool
}

// SetCookies installs cookies into the browser's cookie store
func (s *Session) SetCookies(ctx context.Context, cookies []engine.Cookie) error {
	if err := s.usable(); err != nil {
		return err
	}

	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &expires
		}
		if c.SameSite != "" {
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		params = append(params, p)
	}

	return chromedp.Run(s.ctx, network.SetCookies(params))
}

// AddInitScript runs source in every new document before page scripts
func (s *Session) AddInitScript(ctx context.Context, source string) error {
	if err := s.usable(); err != nil {
		return err
	}

	return chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(source).Do(ctx)
		return err
	}))
}

// Open navigates to url, waits for the network to settle, then extracts
func (s *Session) Open(ctx context.Context, url string, withLinks bool) (*models.Page, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	start := time.Now()

	log.Debug().Str("url", url).Bool("links", withLinks).Msg("Opening page")

	runCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	c := chromedp.FromContext(s.ctx)
	if c == nil || c.Target == nil {
		return nil, engine.NavigationError(url, engine.ErrSessionClosed)
	}
	watcher := newSettleWatcher(cdp.FrameID(c.Target.TargetID))
	chromedp.ListenTarget(runCtx, watcher.handle)

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return nil, engine.NavigationError(url, err)
	}

	settle := time.NewTimer(s.opts.SettleTimeout)
	defer settle.Stop()
	select {
	case <-watcher.Idle():
	case <-settle.C:
		return nil, engine.NavigationError(url, engine.ErrSettleTimeout).
			WithDetail("settle_timeout", s.opts.SettleTimeout.String())
	case <-runCtx.Done():
		return nil, engine.NavigationError(url, runCtx.Err())
	}

	var title, outer string
	var links []string
	actions := []chromedp.Action{
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &outer, chromedp.ByQuery),
	}
	if withLinks {
		actions = append(actions, chromedp.Evaluate(collectLinksJS, &links))
	}
	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, engine.NavigationError(url, fmt.Errorf("failed to read page: %w", err))
	}

	content, err := extract.MainContentHTML(outer)
	if err != nil {
		return nil, engine.NavigationError(url, err)
	}

	p := &models.Page{
		URL:          url,
		Title:        strings.TrimSpace(title),
		ContentHTML:  content,
		Links:        links,
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
	}

	log.Debug().
		Str("url", url).
		Int64("response_time_ms", p.ResponseTime).
		Int("links", len(links)).
		Msg("Page settled")

	return p, nil
}

// Close shuts down the tab and the browser process. Safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.cancel()
	s.allocCancel()
	log.Debug().Msg("Browser session closed")
	return nil
}

func (s *Session) usable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return engine.ErrSessionClosed
	}
	return nil
}
