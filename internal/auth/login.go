package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/engine/dynamic"
)

const defaultLoginTimeout = 5 * time.Minute

// storageScript returns the current origin's localStorage as an Origin.
const storageScript = `({
  origin: location.origin,
  localStorage: Object.keys(localStorage).map(k => ({ name: k, value: localStorage.getItem(k) }))
})`

// ErrNoDisplay is returned when a visible browser cannot be opened.
var ErrNoDisplay = errors.New("interactive login needs a display; import a storage-state file with 'vaultcrawl sessions import' instead")

// LoginOptions configures InteractiveLogin.
type LoginOptions struct {
	SessionName string
	URL         string

	// WaitSelector marks a signed-in page. When empty the operator confirms
	// by pressing Enter on Confirm.
	WaitSelector string
	Timeout      time.Duration

	// RemoteDebuggingPort exposes DevTools so the window can be driven from
	// another machine.
	RemoteDebuggingPort int
	ChromePath          string

	Confirm io.Reader
	Out     io.Writer
}

func (o *LoginOptions) defaults() error {
	if err := validateName(o.SessionName); err != nil {
		return err
	}
	if o.URL == "" {
		return errors.New("login URL is required")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultLoginTimeout
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Confirm == nil {
		o.Confirm = os.Stdin
	}
	return nil
}

func hasDisplay() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// InteractiveLogin opens a visible browser at opts.URL, waits for the
// operator to sign in, then captures every cookie plus the final origin's
// localStorage as a named session. The session is not saved.
func InteractiveLogin(ctx context.Context, opts LoginOptions) (*SessionData, error) {
	if err := opts.defaults(); err != nil {
		return nil, err
	}
	if opts.RemoteDebuggingPort == 0 && !hasDisplay() {
		return nil, ErrNoDisplay
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	browserCtx, closeBrowser := launchVisible(ctx, opts)
	defer closeBrowser()

	log.Info().Str("session", opts.SessionName).Str("url", opts.URL).Msg("Starting interactive login")
	fmt.Fprintln(opts.Out, "\nBrowser opened. Sign in, then come back here.")

	if err := chromedp.Run(browserCtx, network.Enable(), chromedp.Navigate(opts.URL)); err != nil {
		return nil, fmt.Errorf("open login page: %w", err)
	}
	if err := waitForLogin(browserCtx, opts); err != nil {
		return nil, err
	}

	snap, err := captureSnapshot(browserCtx)
	if err != nil {
		return nil, err
	}
	return NewSessionData(opts.SessionName, opts.URL, snap), nil
}

func launchVisible(ctx context.Context, opts LoginOptions) (context.Context, context.CancelFunc) {
	allocOpts := append(
		dynamic.AllocatorOptions(dynamic.BrowserOptions{ChromePath: opts.ChromePath}),
		chromedp.WindowSize(1280, 720),
	)
	if port := opts.RemoteDebuggingPort; port > 0 {
		allocOpts = append(allocOpts,
			chromedp.Flag("remote-debugging-port", strconv.Itoa(port)),
			chromedp.Flag("remote-debugging-address", "0.0.0.0"),
		)
		fmt.Fprintf(opts.Out, "\nDevTools listening on port %d (open chrome://inspect)\n", port)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

func waitForLogin(ctx context.Context, opts LoginOptions) error {
	if opts.WaitSelector == "" {
		fmt.Fprintln(opts.Out, "   Press Enter once you are signed in...")
		_, _ = bufio.NewReader(opts.Confirm).ReadString('\n')
		return nil
	}

	fmt.Fprintf(opts.Out, "   Waiting for %s\n", opts.WaitSelector)
	if err := chromedp.Run(ctx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", opts.WaitSelector, err)
	}
	return nil
}

func captureSnapshot(ctx context.Context) (*Snapshot, error) {
	var (
		cookies []*network.Cookie
		origin  Origin
	)
	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
		chromedp.Evaluate(storageScript, &origin),
	)
	if err != nil {
		return nil, fmt.Errorf("capture session state: %w", err)
	}
	if len(cookies) == 0 && len(origin.LocalStorage) == 0 {
		return nil, errors.New("no cookies or localStorage captured; the login may not have completed")
	}

	snap := &Snapshot{Cookies: FromNetworkCookies(cookies)}
	if len(origin.LocalStorage) > 0 {
		snap.Origins = []Origin{origin}
	}
	log.Info().
		Int("cookies", len(snap.Cookies)).
		Int("storage_entries", len(origin.LocalStorage)).
		Msg("Session state captured")
	return snap, nil
}

// FromNetworkCookies converts DevTools cookies to snapshot cookies.
func FromNetworkCookies(cookies []*network.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return out
}
