package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/engine"
)

func TestImportNetscape(t *testing.T) {
	in := strings.Join([]string{
		"# Netscape HTTP Cookie File",
		"",
		"#HttpOnly_.example.com\tTRUE\t/\tTRUE\t1893456000\tsid\tabc",
		"wiki.example.com\tFALSE\t/docs\tFALSE\t0\ttheme\tdark",
		"broken line",
	}, "\n")

	snap, err := importNetscape(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Cookies) != 2 {
		t.Fatalf("got %d cookies, want 2", len(snap.Cookies))
	}

	sid := snap.Cookies[0]
	if sid.Name != "sid" || sid.Value != "abc" || sid.Domain != ".example.com" || !sid.HTTPOnly || !sid.Secure || sid.Expires != 1893456000 {
		t.Errorf("unexpected first cookie: %+v", sid)
	}
	theme := snap.Cookies[1]
	if theme.Path != "/docs" || theme.Secure || theme.Expires != 0 {
		t.Errorf("unexpected second cookie: %+v", theme)
	}
}

func TestImportState(t *testing.T) {
	snap, err := importState(strings.NewReader(`{"origins":[{"origin":"https://a.example","localStorage":[{"name":"k","value":"v"}]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Empty() {
		t.Fatal("snapshot should not be empty")
	}

	_, err = importState(strings.NewReader(`{"cookies":`))
	if !engine.IsSession(err) {
		t.Errorf("malformed state should be a session error, got %v", err)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\n- item", 9)
	want := "one two\nthree\nfour\n\n- item"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}
}

func TestPrintFlagsAligns(t *testing.T) {
	var buf bytes.Buffer
	printFlagsTo(&buf, "  -v, --verbose   Enable debug logging\n      --json      Output JSON\n")
	out := buf.String()
	if !strings.Contains(out, "-v, --verbose") || !strings.Contains(out, "Enable debug logging") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected two lines, got %q", out)
	}
}

func TestPrintErrorNamesCode(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, engine.NavigationError("https://a.example", errors.New("timeout")))
	if !strings.Contains(buf.String(), "NAVIGATION:") || !strings.Contains(buf.String(), "https://a.example") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestContextApp(t *testing.T) {
	cmd := &cobra.Command{}
	if GetAppFromCmd(cmd) != nil {
		t.Fatal("expected no app on a fresh command")
	}
	cmd.SetContext(context.Background())
	SetApp(cmd, nil)
	if GetAppFromCmd(cmd) != nil {
		t.Fatal("expected nil app after clearing")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate long = %q", got)
	}
}
