// Package crawl runs a crawl request: it owns the visited set, the page
// budget and the traversal order, and turns each fetched page into a note.
package crawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/auth"
	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/markdown"
	urlutil "github.com/law-makers/vaultcrawl/internal/utils/url"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

// ProgressFunc is called after every page with the result and the number of
// pages fetched so far.
type ProgressFunc func(result PageResult, pages int)

// Orchestrator executes crawl requests against a Browser.
type Orchestrator struct {
	browser  engine.Browser
	now      func() time.Time
	progress ProgressFunc
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithClock sets the clock used for the notes' created date.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithProgress registers a per-page callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// New creates an Orchestrator
func New(browser engine.Browser, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		browser: browser,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes req and returns one result per fetched page, in fetch order.
// Any failure aborts the run and discards every result collected so far.
func (o *Orchestrator) Run(ctx context.Context, req Request) ([]PageResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	snap, err := auth.ParseSnapshot(req.SessionJSON)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger := log.With().
		Str("mode", string(req.Mode)).
		Int("max_pages", req.MaxPages).
		Str("seed", req.URLs[0]).
		Logger()
	logger.Info().Int("seeds", len(req.URLs)).Str("engine", o.browser.Name()).Msg("Crawl started")

	sess, err := o.browser.NewSession(ctx)
	if err != nil {
		return nil, engine.NavigationError(req.URLs[0], fmt.Errorf("failed to open browsing session: %w", err))
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Failed to close browsing session")
		}
	}()

	if err := auth.Apply(ctx, sess, snap); err != nil {
		return nil, err
	}

	r := &run{
		orch:    o,
		req:     req,
		sess:    sess,
		visited: make(map[string]struct{}),
		paths:   make(map[string]struct{}),
	}

	switch req.Mode {
	case models.ModeSingle:
		err = r.single(ctx)
	default:
		err = r.recursive(ctx)
	}
	if err != nil {
		logger.Error().Err(err).Int("pages", r.pages).Msg("Crawl aborted")
		return nil, err
	}

	logger.Info().
		Int("pages", r.pages).
		Dur("elapsed", time.Since(start)).
		Msg("Crawl finished")
	return r.results, nil
}

// run holds the per-request state. It never outlives one Run call.
type run struct {
	orch    *Orchestrator
	req     Request
	sess    engine.Session
	visited map[string]struct{}
	paths   map[string]struct{}
	pages   int
	results []PageResult
}

func (r *run) budgetReached() bool {
	return r.pages >= r.req.MaxPages
}

func (r *run) seen(u string) bool {
	_, ok := r.visited[urlutil.Normalize(u)]
	return ok
}

func (r *run) single(ctx context.Context) error {
	for _, u := range r.req.URLs {
		if r.budgetReached() {
			log.Debug().Int("pages", r.pages).Msg("Page budget reached")
			return nil
		}
		if r.seen(u) {
			log.Debug().Str("url", u).Msg("Duplicate URL skipped")
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.visit(ctx, urlutil.Normalize(u), false); err != nil {
			return err
		}
	}
	return nil
}

// recursive walks same-host links depth-first from the first seed. The stack
// receives each page's links in reverse so the first reported link is
// explored next, the order plain recursion would produce.
func (r *run) recursive(ctx context.Context) error {
	seed := urlutil.Normalize(r.req.URLs[0])
	anchorURL, err := urlutil.ParseAbsolute(seed)
	if err != nil {
		return engine.ConfigurationError("invalid seed URL", err)
	}
	anchor := strings.ToLower(anchorURL.Hostname())

	stack := []string{seed}
	for len(stack) > 0 {
		if r.budgetReached() {
			log.Debug().Int("pages", r.pages).Int("pending", len(stack)).Msg("Page budget reached")
			return nil
		}

		candidate := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if r.seen(candidate) {
			continue
		}
		u, err := urlutil.ParseAbsolute(candidate)
		if err != nil {
			log.Debug().Str("url", candidate).Str("code", string(engine.ErrCodeMalformedURL)).Msg("Link skipped")
			continue
		}
		if strings.ToLower(u.Hostname()) != anchor {
			log.Debug().Str("url", candidate).Msg("Off-domain link skipped")
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := r.visit(ctx, candidate, true)
		if err != nil {
			return err
		}
		for i := len(page.Links) - 1; i >= 0; i-- {
			stack = append(stack, page.Links[i])
		}
	}
	return nil
}

// visit charges the budget, marks u visited, fetches and converts it.
func (r *run) visit(ctx context.Context, u string, withLinks bool) (*models.Page, error) {
	r.pages++
	r.visited[urlutil.Normalize(u)] = struct{}{}

	page, err := r.sess.Open(ctx, u, withLinks)
	if err != nil {
		if engine.CodeOf(err) == "" {
			err = engine.NavigationError(u, err)
		}
		return nil, err
	}

	body, err := markdown.Convert(page.ContentHTML, u)
	if err != nil {
		return nil, engine.NavigationError(u, err).WithDetail("stage", "transform")
	}

	result := PageResult{
		URL:      u,
		FilePath: markdown.NotePath(r.req.TargetFolder, page.Title),
		Content:  markdown.Document(page.Title, u, r.orch.now(), body),
		Success:  true,
	}
	if _, dup := r.paths[result.FilePath]; dup {
		log.Warn().Str("url", u).Str("path", result.FilePath).Msg("Another page in this run already uses this file name")
		result = PageResult{
			URL:   u,
			Error: fmt.Sprintf("duplicate file path %q", result.FilePath),
		}
	} else {
		r.paths[result.FilePath] = struct{}{}
	}

	r.results = append(r.results, result)
	log.Info().Str("url", u).Str("path", result.FilePath).Int("pages", r.pages).Msg("Page processed")
	if r.orch.progress != nil {
		r.orch.progress(result, r.pages)
	}
	return page, nil
}
