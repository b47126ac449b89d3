package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/law-makers/vaultcrawl/internal/app"
	"github.com/law-makers/vaultcrawl/internal/crawl"
	"github.com/law-makers/vaultcrawl/internal/engine"
	"github.com/law-makers/vaultcrawl/internal/retry"
)

const pingTimeout = 5 * time.Second

// Client submits crawl requests to a remote Server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Config
}

// NewClient creates a Client for baseURL. A zero timeout means none; crawls
// can take minutes.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Retry:      retry.DefaultConfig(),
	}
}

// Ping checks that the server is reachable. Connection failures are retried
// briefly so a server that is still starting is not reported as down.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var statusErr error
	err := retry.Do(ctx, c.Retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/ping", nil)
		if err != nil {
			return retry.Permanent(err)
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			statusErr = fmt.Errorf("server at %s answered ping with %s", c.BaseURL, resp.Status)
			return retry.Permanent(statusErr)
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case statusErr != nil:
		return statusErr
	default:
		return fmt.Errorf("server at %s is unreachable: %w", c.BaseURL, err)
	}
}

// Scrape submits req and waits for the results. Server-side configuration
// and session errors come back as the matching EngineError codes.
func (c *Client) Scrape(ctx context.Context, req crawl.Request) ([]crawl.PageResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	var out ScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid response from server (%s): %w", resp.Status, err)
	}

	if resp.StatusCode == http.StatusOK && out.Success {
		return out.Data, nil
	}
	return nil, remoteError(resp.StatusCode, out)
}

func remoteError(status int, out ScrapeResponse) error {
	msg := out.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	if status == http.StatusConflict {
		return fmt.Errorf("remote: %w", app.ErrRunInProgress)
	}
	if out.Code != "" {
		return engine.NewEngineError(engine.ErrorCode(out.Code), "remote scrape failed", errors.New(msg)).
			WithDetail("request_id", out.RequestID)
	}
	return fmt.Errorf("remote scrape failed (%d): %s", status, msg)
}
