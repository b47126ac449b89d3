// internal/cli/sessions_import.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/auth"
	"github.com/law-makers/vaultcrawl/internal/ui"
)

var (
	importURL    string
	importFormat string
)

// sessionsImportCmd represents the sessions import command
var sessionsImportCmd = &cobra.Command{
	Use:   "import <session-name>",
	Short: "Import a browser storage state as a session",
	Long: `Create a session from data exported from your own browser. Useful in headless
environments where the interactive login window cannot open.

Formats:
- state     storage-state JSON: {"cookies":[...],"origins":[{"origin":...,"localStorage":[...]}]}
- netscape  cookies.txt as written by curl and browser extensions`,
	Example: `  # Import a storage-state file
  $ vaultcrawl sessions import wiki --url=https://wiki.example.com < state.json

  # Import a cookies.txt export
  $ vaultcrawl sessions import wiki --url=https://wiki.example.com --format=netscape < cookies.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsImport,
}

func init() {
	sessionsCmd.AddCommand(sessionsImportCmd)

	sessionsImportCmd.Flags().StringVar(&importURL, "url", "", "Website URL for this session (required)")
	sessionsImportCmd.Flags().StringVar(&importFormat, "format", "state", "Import format: state, netscape")
	_ = sessionsImportCmd.MarkFlagRequired("url")
}

func runSessionsImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	name := args[0]

	var (
		snap *auth.Snapshot
		err  error
	)
	switch importFormat {
	case "state", "json":
		snap, err = importState(cmd.InOrStdin())
	case "netscape":
		snap, err = importNetscape(cmd.InOrStdin())
	default:
		return fmt.Errorf("unsupported format: %s (use: state, netscape)", importFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to import session: %w", err)
	}
	if snap.Empty() {
		return fmt.Errorf("no cookies or localStorage entries found in input")
	}

	session := auth.NewSessionData(name, importURL, snap)
	if err := auth.SaveSession(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(out, "\n%s\n", ui.Success(fmt.Sprintf("✅ Session '%s' created", name)))
	fmt.Fprintf(out, "   Cookies: %d   Origins: %d\n", len(snap.Cookies), len(snap.Origins))
	fmt.Fprintf(out, "   %s\n", expiryLine(session))
	fmt.Fprintf(out, "\nUse with:\n  vaultcrawl crawl <url> --session=%s\n\n", name)
	return nil
}

func importState(r io.Reader) (*auth.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return auth.ParseSnapshot(string(data))
}

// importNetscape reads the tab-separated cookies.txt format:
// domain, include-subdomains, path, secure, expiry (unix), name, value.
func importNetscape(r io.Reader) (*auth.Snapshot, error) {
	snap := &auth.Snapshot{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		httpOnly := false
		if rest, ok := strings.CutPrefix(line, "#HttpOnly_"); ok {
			line, httpOnly = rest, true
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			fields = strings.Fields(line)
		}
		if len(fields) < 7 {
			continue
		}

		c := auth.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    strings.Join(fields[6:], "\t"),
			HTTPOnly: httpOnly,
		}
		if exp, err := strconv.ParseFloat(fields[4], 64); err == nil && exp > 0 {
			c.Expires = exp
		}
		snap.Cookies = append(snap.Cookies, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}
