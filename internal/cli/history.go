// internal/cli/history.go
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/history"
	"github.com/law-makers/vaultcrawl/internal/ui"
	"github.com/law-makers/vaultcrawl/internal/utils/output"
)

var (
	historyLimit    int
	historyMarkdown bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past crawls",
	Example: `  $ vaultcrawl history --limit 5
  $ vaultcrawl history --markdown > crawls.md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFor(cmd)
		store, err := a.History()
		if err != nil {
			return err
		}
		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		switch {
		case a.Config.JSONLog:
			return output.WriteJSON(w, runs)
		case historyMarkdown:
			return history.WriteReport(w, runs)
		}

		if len(runs) == 0 {
			fmt.Fprintln(w, "\nNo crawls recorded yet.")
			fmt.Fprintln(w)
			return nil
		}

		fmt.Fprintf(w, "\n%s\n", ui.Bold(fmt.Sprintf("Recent crawls (%d)", len(runs))))
		for _, r := range runs {
			status := ui.Status(r.Error == "", "failed")
			fmt.Fprintf(w, "  #%-4d %s  %-9s %3d/%-3d written %-3d skipped %-3d %s\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Mode,
				r.Pages, r.MaxPages, r.Written, r.Skipped, status)
			if len(r.Seeds) > 0 {
				fmt.Fprintf(w, "        %s\n", ui.Dim(r.Seeds[0]))
			}
		}
		fmt.Fprintln(w)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyMarkdown, "markdown", false, "Render as a Markdown table")
}
