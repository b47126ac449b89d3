// internal/cli/serve.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/config"
	"github.com/law-makers/vaultcrawl/internal/transport"
	"github.com/law-makers/vaultcrawl/internal/ui"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger server",
	Long: `Start an HTTP server that crawls on request and returns the notes as JSON.

Endpoints:
- GET  /ping    liveness probe
- POST /scrape  {"urls":[...],"mode":"recursive|single","maxPages":N,"targetFolder":"...","storageStateJson":"..."}

The server never writes files. One crawl runs at a time; concurrent requests
get 409 Conflict.`,
	Example: `  # Listen on the default address
  $ vaultcrawl serve

  # Listen on all interfaces with the HTTP engine
  $ vaultcrawl settings set engine static
  $ vaultcrawl serve --addr 0.0.0.0:3000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFor(cmd)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n", ui.Bold("VaultCrawl server listening on"), ui.Accent("http://"+serveAddr))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", ui.Info("Press Ctrl+C to stop"))
		return transport.NewServer(a).ListenAndServe(cmd.Context(), serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultServeAddr, "Address to listen on")
}
