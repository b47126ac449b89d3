// internal/cli/root.go
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/app"
	"github.com/law-makers/vaultcrawl/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vaultcrawl",
	Short: "Crawl documentation sites into Markdown notes",
	Long: `VaultCrawl fetches web pages, keeps their main content and saves each one as a
Markdown note with front matter inside a vault folder.

A recursive crawl follows same-host links depth-first from the first URL until
the page budget is spent. A single crawl fetches exactly the URLs given.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI with ctx as the base context for every command.
// This is called by main.main().
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

func init() {
	// The application is built lazily so -h and --version stay cheap.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.HTTPTimeout)
		defer cancel()
		_ = a.Close(ctx)
		SetApp(cmd, nil)
	}

	config.RegisterFlags(rootCmd)

	rootCmd.Flags().BoolP("help", "h", false, "Help for VaultCrawl")
	rootCmd.Flags().Bool("version", false, "Version for VaultCrawl")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}

// appFor returns the Application built in PersistentPreRunE.
func appFor(cmd *cobra.Command) *app.Application {
	a := GetAppFromCmd(cmd)
	if a == nil {
		// PersistentPreRunE always runs first; reaching this is a wiring bug.
		panic("application not initialized")
	}
	return a
}
