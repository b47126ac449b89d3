package static

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/vaultcrawl/internal/engine"
)

func TestSession_Open_BasicHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `<!DOCTYPE html>
<html>
<head><title> Hello World </title></head>
<body>
	<nav><a href="/nav">Nav</a></nav>
	<main>
		<h1>Hello World</h1>
		<p>This is a test page.</p>
		<a href="/link1">Link 1</a>
		<a href="/link2#part">Link 2</a>
	</main>
	<footer>footer text</footer>
</body>
</html>`
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
	}))
	defer server.Close()

	b := NewBrowser(Options{Timeout: 5 * time.Second})
	sess, err := b.NewSession(context.Background())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer sess.Close()

	page, err := sess.Open(context.Background(), server.URL, true)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if page.Title != "Hello World" {
		t.Errorf("Expected title 'Hello World', got '%s'", page.Title)
	}
	if !strings.Contains(page.ContentHTML, "This is a test page.") {
		t.Errorf("content missing paragraph: %s", page.ContentHTML)
	}
	if strings.Contains(page.ContentHTML, "footer text") {
		t.Errorf("content should be scoped to main: %s", page.ContentHTML)
	}

	want := []string{server.URL + "/nav", server.URL + "/link1", server.URL + "/link2#part"}
	if len(page.Links) != len(want) {
		t.Fatalf("Expected %d links, got %v", len(want), page.Links)
	}
	for i := range want {
		if page.Links[i] != want[i] {
			t.Errorf("link %d: expected %s, got %s", i, want[i], page.Links[i])
		}
	}
}

func TestSession_Open_WithoutLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/x">x</a></body></html>`))
	}))
	defer server.Close()

	sess, _ := NewBrowser(Options{}).NewSession(context.Background())
	defer sess.Close()

	page, err := sess.Open(context.Background(), server.URL, false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(page.Links) != 0 {
		t.Fatalf("links should not be collected, got %v", page.Links)
	}
}

func TestSession_CookiesAndHeaders(t *testing.T) {
	var gotCookie, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("sid"); err == nil {
			gotCookie = c.Value
		}
		gotHeader = r.Header.Get("X-Test")
		w.Write([]byte(`<html><head><title>ok</title></head><body></body></html>`))
	}))
	defer server.Close()

	sess, _ := NewBrowser(Options{Headers: map[string]string{"X-Test": "yes"}}).NewSession(context.Background())
	defer sess.Close()

	err := sess.SetCookies(context.Background(), []engine.Cookie{{
		Name: "sid", Value: "abc", Domain: "127.0.0.1", Path: "/",
	}})
	if err != nil {
		t.Fatalf("SetCookies failed: %v", err)
	}

	if _, err := sess.Open(context.Background(), server.URL, false); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if gotCookie != "abc" {
		t.Errorf("expected cookie to be sent, got %q", gotCookie)
	}
	if gotHeader != "yes" {
		t.Errorf("expected custom header, got %q", gotHeader)
	}
}

func TestSession_Open_NetworkErrorIsNavigationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	sess, _ := NewBrowser(Options{Timeout: time.Second}).NewSession(context.Background())
	defer sess.Close()

	_, err := sess.Open(context.Background(), addr, false)
	if !engine.IsNavigation(err) {
		t.Fatalf("expected navigation error, got %v", err)
	}
}

func TestSession_ClosedSession(t *testing.T) {
	sess, _ := NewBrowser(Options{}).NewSession(context.Background())
	sess.Close()
	if err := sess.Close(); err != nil {
		t.Fatalf("second Close should be a no-op: %v", err)
	}
	if _, err := sess.Open(context.Background(), "http://127.0.0.1/", false); err != engine.ErrSessionClosed {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}
