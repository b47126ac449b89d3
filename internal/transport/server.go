// Package transport exposes the crawler over HTTP so another process (an
// editor plugin, a script) can trigger runs and apply the results itself.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/law-makers/vaultcrawl/internal/app"
	"github.com/law-makers/vaultcrawl/internal/crawl"
	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/reqctx"
)

// maxRequestBytes caps the /scrape body; session snapshots can be large.
const maxRequestBytes = 8 << 20

const shutdownTimeout = 10 * time.Second

// Scraper runs one crawl request.
type Scraper interface {
	Scrape(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error)
}

// ScrapeResponse is the body of every /scrape reply.
type ScrapeResponse struct {
	Success   bool               `json:"success"`
	Data      []crawl.PageResult `json:"data,omitempty"`
	Error     string             `json:"error,omitempty"`
	Code      string             `json:"code,omitempty"`
	RequestID string             `json:"requestId,omitempty"`
}

// Server serves /ping and /scrape. It never writes notes; callers apply the
// returned results to their own vault.
type Server struct {
	scraper Scraper
	mux     *http.ServeMux
}

// NewServer creates a Server backed by s
func NewServer(s Scraper) *Server {
	srv := &Server{scraper: s, mux: http.NewServeMux()}
	srv.mux.HandleFunc("GET /ping", srv.handlePing)
	srv.mux.HandleFunc("POST /scrape", srv.handleScrape)
	return srv
}

// Handler returns the routes wrapped in request tagging.
func (s *Server) Handler() http.Handler {
	return reqctx.Middleware(s.mux)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := reqctx.Logger(ctx)

	var req crawl.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	logger.Info().Strs("urls", req.URLs).Str("mode", string(req.Mode)).Int("max_pages", req.MaxPages).Msg("Scrape requested")

	results, err := s.scraper.Scrape(ctx, req)
	if err != nil {
		s.fail(w, r, statusFor(err), err)
		return
	}
	if results == nil {
		results = []crawl.PageResult{}
	}

	logger.Info().Int("pages", len(results)).Msg("Scrape finished")
	writeJSON(w, http.StatusOK, ScrapeResponse{
		Success:   true,
		Data:      results,
		RequestID: reqctx.ID(ctx),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrRunInProgress):
		return http.StatusConflict
	case engine.IsConfiguration(err), engine.IsSession(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	ctx := r.Context()
	log.Warn().Err(reqctx.Tag(ctx, err)).Int("status", status).Msg("Scrape failed")

	writeJSON(w, status, ScrapeResponse{
		Error:     err.Error(),
		Code:      string(engine.CodeOf(err)),
		RequestID: reqctx.ID(ctx),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Msg("Trigger server listening")
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("Trigger server shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
