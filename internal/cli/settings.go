// internal/cli/settings.go
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/config"
	"github.com/law-makers/vaultcrawl/internal/ui"
	"github.com/law-makers/vaultcrawl/internal/utils/output"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change saved settings",
	Long: `Saved settings supply the defaults for "crawl" and for the trigger server:
start URL, target folder, page budget, session storage state and engine.`,
	Example: `  $ vaultcrawl settings show
  $ vaultcrawl settings set maxPages 100
  $ vaultcrawl settings set startUrl https://docs.example.com/Home
  $ vaultcrawl settings reset`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFor(cmd)
		if a.Config.JSONLog {
			return output.WriteJSON(cmd.OutOrStdout(), a.Settings)
		}
		printSettings(cmd.OutOrStdout(), a.Settings, a.Config.SettingsPath)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFor(cmd)
		if err := a.Settings.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := a.SaveSettings(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("✓ Saved "+args[0]))
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFor(cmd)
		a.Settings = config.DefaultSettings()
		if err := a.SaveSettings(); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("✓ Settings reset to defaults"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
}

func printSettings(w io.Writer, s *config.Settings, path string) {
	session := "(none)"
	if s.SessionJSON != "" {
		session = fmt.Sprintf("(%d bytes)", len(s.SessionJSON))
	}

	fmt.Fprintf(w, "\n%s\n", ui.Bold("Settings"))
	fmt.Fprintf(w, "%s\n", ui.Dim(path))
	fmt.Fprintf(w, "  %-18s %s\n", "startUrl", s.StartURL)
	fmt.Fprintf(w, "  %-18s %s\n", "targetFolder", s.TargetFolder)
	fmt.Fprintf(w, "  %-18s %d\n", "maxPages", s.MaxPages)
	fmt.Fprintf(w, "  %-18s %s\n", "engine", s.Engine)
	fmt.Fprintf(w, "  %-18s %s\n\n", "storageStateJson", session)
}
