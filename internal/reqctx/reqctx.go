// Package reqctx tags trigger requests with an ID that follows them through
// logs and error responses.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Header carries a caller-chosen request ID, echoed on the response.
const Header = "X-Request-ID"

type ctxKey struct{}

// Request identifies one inbound call.
type Request struct {
	ID    string
	Start time.Time
}

func (r Request) Elapsed() time.Duration { return time.Since(r.Start) }

// With tags ctx with id, or with a random ID when id is empty.
func With(ctx context.Context, id string) context.Context {
	if id == "" {
		b := make([]byte, 8)
		_, _ = rand.Read(b)
		id = hex.EncodeToString(b)
	}
	return context.WithValue(ctx, ctxKey{}, Request{ID: id, Start: time.Now()})
}

// From returns the request ctx was tagged with. Untagged contexts report the
// ID "unknown".
func From(ctx context.Context) Request {
	if r, ok := ctx.Value(ctxKey{}).(Request); ok {
		return r
	}
	return Request{ID: "unknown", Start: time.Now()}
}

// ID is shorthand for From(ctx).ID.
func ID(ctx context.Context) string { return From(ctx).ID }

// Logger returns the global logger with the request ID attached.
func Logger(ctx context.Context) zerolog.Logger {
	return log.With().Str("request_id", ID(ctx)).Logger()
}

// Error carries the ID of the request an error belongs to.
type Error struct {
	ID  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("[%s] %v", e.ID, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Tag wraps err with the request ID from ctx.
func Tag(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &Error{ID: ID(ctx), Err: err}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware tags each request, echoes its ID in Header and logs the outcome
// at debug level.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := With(r.Context(), r.Header.Get(Header))
		req := From(ctx)
		w.Header().Set(Header, req.ID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		logger := Logger(ctx)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", req.Elapsed()).
			Msg("Request handled")
	})
}
