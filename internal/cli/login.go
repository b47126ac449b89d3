// internal/cli/login.go
package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/auth"
	"github.com/law-makers/vaultcrawl/internal/ui"
)

var (
	loginSession        string
	waitSelector        string
	loginTimeout        string
	remoteDebuggingPort int
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <url>",
	Short: "Interactively login to a website and save the session",
	Long: `Opens a visible browser window for you to log in to a website manually.
Afterwards the cookies and the page's localStorage are captured and stored
in your OS keyring as a named session.

Use the session with "crawl --session" to fetch pages behind the login.`,
	Example: `  # Login and wait for an element that only appears when signed in
  $ vaultcrawl login https://wiki.example.com/login --session wiki --wait "#dashboard"

  # Login in a dev container with remote debugging
  $ vaultcrawl login https://wiki.example.com/login --session wiki --remote-debug 9222

  # Crawl with the saved session
  $ vaultcrawl crawl https://wiki.example.com/Home --session wiki`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginSession, "session", "s", "", "Session name to save (required)")
	loginCmd.Flags().StringVarP(&waitSelector, "wait", "w", "", "CSS selector to wait for after login (e.g., '#dashboard')")
	loginCmd.Flags().StringVar(&loginTimeout, "login-timeout", "5m", "Timeout for login process")
	loginCmd.Flags().IntVar(&remoteDebuggingPort, "remote-debug", 0, "Enable Chrome remote debugging on this port (e.g., 9222)")
	_ = loginCmd.MarkFlagRequired("session")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a := appFor(cmd)
	url := args[0]
	out := cmd.OutOrStdout()

	timeout, err := time.ParseDuration(loginTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	log.Info().Str("url", url).Str("session", loginSession).Msg("Initiating login")

	fmt.Fprintf(out, "\n%s\n", ui.Bold("🔐 Interactive Login"))
	fmt.Fprintf(out, "%s\n\n", ui.Dim(rule))
	fmt.Fprintf(out, "  %s %s\n", ui.Bold("Session:"), loginSession)
	fmt.Fprintf(out, "  %s %s\n", ui.Bold("URL:"), url)
	if waitSelector != "" {
		fmt.Fprintf(out, "  %s %s\n", ui.Bold("Waiting:"), waitSelector)
	}
	fmt.Fprintf(out, "  %s %s\n\n", ui.Bold("Timeout:"), timeout)

	session, err := auth.InteractiveLogin(cmd.Context(), auth.LoginOptions{
		SessionName:         loginSession,
		URL:                 url,
		WaitSelector:        waitSelector,
		Timeout:             timeout,
		RemoteDebuggingPort: remoteDebuggingPort,
		ChromePath:          a.Config.ChromePath,
		Confirm:             cmd.InOrStdin(),
		Out:                 out,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := auth.SaveSession(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintln(out, ui.Success("\n✓ Session saved successfully!"))
	fmt.Fprintf(out, "\n%s\n", ui.Bold("Use it with:"))
	fmt.Fprintf(out, "  %s%s\n\n", ui.Accent("vaultcrawl crawl <url> --session="), loginSession)
	if !session.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Session expires: %s\n\n", session.ExpiresAt.Format(time.RFC1123))
	}
	return nil
}
