// internal/cli/sessions.go
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/auth"
	"github.com/law-makers/vaultcrawl/internal/ui"
)

var sessionsYes bool

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved authentication sessions",
	Long: `List, view, import and delete saved authentication sessions.

Sessions are stored in your OS keyring and hold the cookies and localStorage
entries applied before a crawl starts.`,
	Example: `  # List all saved sessions
  $ vaultcrawl sessions list

  # View details of a specific session
  $ vaultcrawl sessions view wiki

  # Delete a session
  $ vaultcrawl sessions delete old-wiki`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <session-name>",
	Short: "View details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsView,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsViewCmd, sessionsDeleteCmd)
	sessionsDeleteCmd.Flags().BoolVarP(&sessionsYes, "yes", "y", false, "Do not ask for confirmation")
}

// loadSessionForDisplay tolerates expiry so old sessions can still be inspected.
func loadSessionForDisplay(name string) (*auth.SessionData, error) {
	s, err := auth.LoadSession(name)
	if errors.Is(err, auth.ErrSessionExpired) {
		return s, nil
	}
	return s, err
}

func expiryLine(s *auth.SessionData) string {
	switch {
	case s.ExpiresAt.IsZero():
		return "no expiry"
	case time.Now().After(s.ExpiresAt):
		return fmt.Sprintf("⚠️  expired %s ago", time.Since(s.ExpiresAt).Round(time.Hour))
	default:
		return fmt.Sprintf("expires %s (in %s)", s.ExpiresAt.Format(time.RFC1123), time.Until(s.ExpiresAt).Round(time.Hour))
	}
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	sessions, err := auth.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(out, "\nNo saved sessions found.")
		fmt.Fprintln(out, "\nCreate a session with:")
		fmt.Fprintln(out, "  vaultcrawl login <url> --session=<name>")
		fmt.Fprintln(out, "  vaultcrawl sessions import <name> --url=<url> < state.json")
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintf(out, "\n%s\n\n", ui.Bold(fmt.Sprintf("📋 Saved Sessions (%d)", len(sessions))))
	for i, name := range sessions {
		fmt.Fprintf(out, "%d. %s\n", i+1, ui.Accent(name))

		session, err := loadSessionForDisplay(name)
		if err != nil {
			fmt.Fprintf(out, "   ⚠️  Error loading: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "   URL:     %s\n", session.URL)
		fmt.Fprintf(out, "   Cookies: %d   Origins: %d\n", len(session.Snapshot.Cookies), len(session.Snapshot.Origins))
		fmt.Fprintf(out, "   Created: %s, %s\n", session.CreatedAt.Format(time.RFC1123), expiryLine(session))
	}
	fmt.Fprintln(out)
	return nil
}

func runSessionsView(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	name := args[0]

	session, err := loadSessionForDisplay(name)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", name, err)
	}

	fmt.Fprintf(out, "\n%s\n\n", ui.Bold("🔍 Session Details: "+name))
	fmt.Fprintf(out, "Name:     %s\n", session.Name)
	fmt.Fprintf(out, "URL:      %s\n", session.URL)
	fmt.Fprintf(out, "Created:  %s\n", session.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(out, "Status:   %s\n", expiryLine(session))

	cookies := session.Snapshot.Cookies
	fmt.Fprintf(out, "\nCookies (%d):\n", len(cookies))
	for i, c := range cookies {
		if i >= 5 {
			fmt.Fprintf(out, "  ... and %d more\n", len(cookies)-5)
			break
		}
		fmt.Fprintf(out, "  • %s (domain: %s)\n", c.Name, c.Domain)
	}

	if len(session.Snapshot.Origins) > 0 {
		fmt.Fprintf(out, "\nlocalStorage:\n")
		for _, o := range session.Snapshot.Origins {
			fmt.Fprintf(out, "  • %s (%d entries)\n", o.Origin, len(o.LocalStorage))
		}
	}

	fmt.Fprintln(out)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	name := args[0]

	if !sessionsYes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("\n⚠️  Delete session '%s'? [y/N]: ", name)) {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	if err := auth.DeleteSession(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Fprintf(out, "\n%s\n\n", ui.Success(fmt.Sprintf("✓ Session '%s' deleted successfully.", name)))
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
