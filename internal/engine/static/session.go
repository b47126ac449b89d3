// internal/engine/static/session.go
package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"

	"github.com/law-makers/vaultcrawl/internal/config"
	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/engine/extract"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

// maxBodyBytes caps how much of a response is parsed.
const maxBodyBytes = 20 << 20

// Options configures the HTTP fetcher
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Proxy     string
	Headers   map[string]string
	// Transport overrides the default transport (tests).
	Transport http.RoundTripper
}

// Browser fetches pages with plain HTTP requests and parses them with
// goquery. No JavaScript runs, so it only suits server-rendered sites.
type Browser struct {
	opts Options
}

// NewBrowser creates a static Browser
func NewBrowser(opts Options) *Browser {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultHTTPTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	return &Browser{opts: opts}
}

// Name returns the name of this engine
func (b *Browser) Name() string {
	return "StaticBrowser"
}

// NewSession returns a session with its own cookie jar
func (b *Browser) NewSession(ctx context.Context) (engine.Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	transport := b.opts.Transport
	if transport == nil {
		t := &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		}
		if b.opts.Proxy != "" {
			proxyURL, err := url.Parse(b.opts.Proxy)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy URL: %w", err)
			}
			t.Proxy = http.ProxyURL(proxyURL)
		}
		transport = t
	}

	return &Session{
		client: &http.Client{
			Jar:       jar,
			Timeout:   b.opts.Timeout,
			Transport: transport,
		},
		jar:  jar,
		opts: b.opts,
	}, nil
}

// Session is a cookie-carrying HTTP client
type Session struct {
	client *http.Client
	jar    http.CookieJar
	opts   Options

	mu     sync.Mutex
	closed bool
}

// SetCookies adds cookies to the session jar
func (s *Session) SetCookies(ctx context.Context, cookies []engine.Cookie) error {
	if s.isClosed() {
		return engine.ErrSessionClosed
	}

	for _, c := range cookies {
		host := strings.TrimPrefix(c.Domain, ".")
		if host == "" {
			log.Warn().Str("cookie", c.Name).Msg("Cookie without domain skipped")
			continue
		}
		scheme := "http"
		if c.Secure {
			scheme = "https"
		}
		u := &url.URL{Scheme: scheme, Host: host, Path: c.Path}

		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if strings.HasPrefix(c.Domain, ".") {
			hc.Domain = host
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		switch c.SameSite {
		case "Strict":
			hc.SameSite = http.SameSiteStrictMode
		case "Lax":
			hc.SameSite = http.SameSiteLaxMode
		case "None":
			hc.SameSite = http.SameSiteNoneMode
		}
		s.jar.SetCookies(u, []*http.Cookie{hc})
	}
	return nil
}

// AddInitScript cannot be honoured without a JavaScript runtime; the script
// is dropped with a warning.
func (s *Session) AddInitScript(ctx context.Context, source string) error {
	if s.isClosed() {
		return engine.ErrSessionClosed
	}
	log.Warn().Int("bytes", len(source)).Msg("Static engine cannot run init scripts, localStorage injection skipped")
	return nil
}

// Open fetches url and extracts its content
func (s *Session) Open(ctx context.Context, pageURL string, withLinks bool) (*models.Page, error) {
	if s.isClosed() {
		return nil, engine.ErrSessionClosed
	}
	start := time.Now()

	log.Debug().Str("url", pageURL).Bool("links", withLinks).Msg("Fetching page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, engine.NavigationError(pageURL, err)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range s.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, engine.NavigationError(pageURL, err)
	}
	defer resp.Body.Close()

	doc, err := extract.ParseReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, engine.NavigationError(pageURL, err)
	}

	content, err := extract.MainContent(doc)
	if err != nil {
		return nil, engine.NavigationError(pageURL, err)
	}

	p := &models.Page{
		URL:          pageURL,
		Title:        extract.Title(doc),
		ContentHTML:  content,
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
	}
	if withLinks {
		p.Links = extract.Links(doc, resp.Request.URL.String())
	}

	log.Debug().
		Str("url", pageURL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", p.ResponseTime).
		Int("links", len(p.Links)).
		Msg("Fetch completed")

	return p, nil
}

// Close drops idle connections
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
