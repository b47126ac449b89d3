package reqctx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWith(t *testing.T) {
	if got := ID(With(context.Background(), "abc")); got != "abc" {
		t.Errorf("ID = %q, want abc", got)
	}
	if generated := ID(With(context.Background(), "")); len(generated) != 16 {
		t.Errorf("generated ID %q should be 16 hex chars", generated)
	}
	if got := ID(context.Background()); got != "unknown" {
		t.Errorf("untagged ID = %q, want unknown", got)
	}
}

func TestTag(t *testing.T) {
	base := errors.New("boom")
	err := Tag(With(context.Background(), "req-1"), base)

	if !errors.Is(err, base) {
		t.Error("tagged error should unwrap to the original error")
	}
	if !strings.HasPrefix(err.Error(), "[req-1] ") {
		t.Errorf("Error() = %q, want request ID prefix", err.Error())
	}
	var re *Error
	if !errors.As(err, &re) || re.ID != "req-1" {
		t.Errorf("errors.As failed or wrong ID: %+v", re)
	}
	if Tag(context.Background(), nil) != nil {
		t.Error("nil stays nil")
	}
}

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(Header, "caller-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "caller-7" {
		t.Errorf("handler saw ID %q", seen)
	}
	if rec.Header().Get(Header) != "caller-7" {
		t.Errorf("response header = %q", rec.Header().Get(Header))
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}
