package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/vaultcrawl/internal/app"
	"github.com/law-makers/vaultcrawl/internal/crawl"
	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/reqctx"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

type scraperFunc func(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error)

func (f scraperFunc) Scrape(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
	return f(ctx, req)
}

func newTestServer(t *testing.T, f scraperFunc) (*httptest.Server, *Client) {
	t.Helper()
	ts := httptest.NewServer(NewServer(f).Handler())
	t.Cleanup(ts.Close)
	return ts, NewClient(ts.URL+"/", 0)
}

func TestPing(t *testing.T) {
	ts, client := newTestServer(t, nil)
	require.NoError(t, client.Ping(context.Background()))

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(reqctx.Header))
}

func TestPingUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	err = NewClient("http://"+addr, time.Second).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestScrapeRoundTrip(t *testing.T) {
	var got crawl.Request
	_, client := newTestServer(t, func(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
		got = req
		return []crawl.PageResult{{
			URL:      "https://docs.example/Home",
			FilePath: "Notes/Home.md",
			Content:  "---\ntitle: \"Home\"\n---\n",
			Success:  true,
		}}, nil
	})

	req := crawl.Request{
		URLs:         []string{"https://docs.example/Home"},
		Mode:         models.ModeSingle,
		MaxPages:     3,
		TargetFolder: "Notes",
		SessionJSON:  `{"cookies":[]}`,
	}
	results, err := client.Scrape(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Notes/Home.md", results[0].FilePath)
	assert.Equal(t, req, got)
}

func TestScrapeWireFormat(t *testing.T) {
	ts, _ := newTestServer(t, func(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
		assert.Equal(t, []string{"https://a.example"}, req.URLs)
		assert.Equal(t, models.ModeRecursive, req.Mode)
		assert.Equal(t, 2, req.MaxPages)
		assert.Equal(t, "Out", req.TargetFolder)
		assert.Equal(t, "{}", req.SessionJSON)
		return nil, nil
	})

	body := `{"urls":["https://a.example"],"mode":"recursive","maxPages":2,"targetFolder":"Out","storageStateJson":"{}"}`
	resp, err := http.Post(ts.URL+"/scrape", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScrapeStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"configuration", engine.ConfigurationError("at least one URL is required", nil), http.StatusBadRequest},
		{"session", engine.SessionError("bad snapshot", nil), http.StatusBadRequest},
		{"busy", app.ErrRunInProgress, http.StatusConflict},
		{"navigation", engine.NavigationError("https://a.example", errors.New("timeout")), http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t, func(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
				return nil, tt.err
			})
			resp, err := http.Post(ts.URL+"/scrape", "application/json", strings.NewReader(`{"urls":[]}`))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestScrapeBadJSON(t *testing.T) {
	called := false
	ts, _ := newTestServer(t, func(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
		called = true
		return nil, nil
	})
	resp, err := http.Post(ts.URL+"/scrape", "application/json", strings.NewReader(`{"urls":`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, called)
}

func TestClientMapsRemoteErrors(t *testing.T) {
	var next error
	_, client := newTestServer(t, func(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
		return nil, next
	})

	next = engine.SessionError("bad snapshot", nil)
	_, err := client.Scrape(context.Background(), crawl.Request{})
	assert.True(t, engine.IsSession(err))

	next = app.ErrRunInProgress
	_, err = client.Scrape(context.Background(), crawl.Request{})
	assert.ErrorIs(t, err, app.ErrRunInProgress)

	next = errors.New("boom")
	_, err = client.Scrape(context.Background(), crawl.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(nil).Serve(ctx, ln) }()

	client := NewClient("http://"+ln.Addr().String(), time.Second)
	require.Eventually(t, func() bool { return client.Ping(context.Background()) == nil }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
