// internal/cli/crawl.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/vaultcrawl/internal/app"
	"github.com/law-makers/vaultcrawl/internal/auth"
	"github.com/law-makers/vaultcrawl/internal/crawl"
	"github.com/law-makers/vaultcrawl/internal/history"
	"github.com/law-makers/vaultcrawl/internal/sink"
	"github.com/law-makers/vaultcrawl/internal/transport"
	"github.com/law-makers/vaultcrawl/internal/ui"
	"github.com/law-makers/vaultcrawl/internal/utils/headers"
	"github.com/law-makers/vaultcrawl/internal/utils/output"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

var (
	crawlMode        string
	crawlMaxPages    int
	crawlTarget      string
	crawlVault       string
	crawlSession     string
	crawlSessionFile string
	crawlEngine      string
	crawlRemote      string
	crawlHeaders     []string
	crawlDryRun      bool
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl [urls...]",
	Short: "Crawl pages into Markdown notes",
	Long: `Fetch pages and save each one as a Markdown note under the target folder.

With no URLs the saved start URL is crawled recursively. Notes that already
exist are never overwritten; they are counted as skipped.`,
	Example: `  # Quick crawl of the saved start URL
  $ vaultcrawl crawl

  # Follow same-host links from a page, up to 20 pages
  $ vaultcrawl crawl https://docs.example.com/Home --max-pages 20

  # Fetch exactly these pages with the HTTP engine
  $ vaultcrawl crawl https://a.example.com/x https://b.example.com/y --mode single --engine static

  # Reuse a saved login
  $ vaultcrawl crawl https://wiki.example.com --session wiki

  # Let a running "vaultcrawl serve" do the fetching
  $ vaultcrawl crawl https://docs.example.com --remote http://127.0.0.1:3000`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVarP(&crawlMode, "mode", "m", "", "Crawl mode: recursive or single (default recursive)")
	crawlCmd.Flags().IntVarP(&crawlMaxPages, "max-pages", "n", 0, "Page budget for this run (default from settings)")
	crawlCmd.Flags().StringVarP(&crawlTarget, "target", "t", "", "Folder for notes, relative to the vault (default from settings)")
	crawlCmd.Flags().StringVar(&crawlVault, "vault", ".", "Vault root directory")
	crawlCmd.Flags().StringVarP(&crawlSession, "session", "s", "", "Name of a saved session to use")
	crawlCmd.Flags().StringVar(&crawlSessionFile, "session-file", "", "Storage-state JSON file to use")
	crawlCmd.Flags().StringVarP(&crawlEngine, "engine", "e", "", "Fetcher: dynamic (Chrome) or static (HTTP)")
	crawlCmd.Flags().StringVar(&crawlRemote, "remote", "", "Base URL of a vaultcrawl server to run the crawl")
	crawlCmd.Flags().StringArrayVarP(&crawlHeaders, "header", "H", nil, "Extra request header \"Name: value\" (repeatable)")
	crawlCmd.Flags().BoolVar(&crawlDryRun, "dry-run", false, "Crawl and report without writing notes")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	a := appFor(cmd)
	ctx := cmd.Context()
	jsonOut := a.Config.JSONLog

	req, err := buildCrawlRequest(a, args)
	if err != nil {
		return err
	}
	hdrs, err := headers.ParseHeaders(crawlHeaders)
	if err != nil {
		return err
	}

	run := history.Run{
		StartedAt: time.Now().UTC(),
		Mode:      string(req.Mode),
		Engine:    crawlEngine,
		Seeds:     req.URLs,
		MaxPages:  req.MaxPages,
	}
	if run.Engine == "" {
		run.Engine = a.Settings.Engine
	}
	if crawlRemote != "" {
		run.Engine = "remote"
	}

	var bar *progressbar.ProgressBar
	if !jsonOut && a.Config.LogLevel != "error" {
		bar = newProgressBar(os.Stderr, req.MaxPages)
	}

	results, err := scrape(ctx, a, req, hdrs, bar)
	if bar != nil {
		_ = bar.Finish()
	}

	var sum sink.Summary
	if err == nil && !crawlDryRun {
		sum, err = sink.NewVault(crawlVault).WriteAll(ctx, results)
	}

	run.FinishedAt = time.Now().UTC()
	run.Pages = len(results)
	run.Written = sum.Written
	run.Skipped = sum.Skipped
	if err != nil {
		run.Error = err.Error()
	}
	a.RecordRun(context.WithoutCancel(ctx), run)

	if jsonOut {
		res := output.Results{Success: err == nil, Data: results, Written: sum.Written, Skipped: sum.Skipped}
		if err != nil {
			res.Error = err.Error()
		}
		if werr := output.WriteJSON(cmd.OutOrStdout(), res); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		return err
	}

	printCrawlSummary(cmd.OutOrStdout(), results, sum, run.FinishedAt.Sub(run.StartedAt))
	return nil
}

// buildCrawlRequest merges flags over the persisted settings and collects
// the session snapshots to apply.
func buildCrawlRequest(a *app.Application, args []string) (crawl.Request, error) {
	req := a.DefaultRequest(args)
	if crawlMode != "" {
		req.Mode = models.CrawlMode(crawlMode)
	}
	if crawlMaxPages != 0 {
		req.MaxPages = crawlMaxPages
	}
	if crawlTarget != "" {
		req.TargetFolder = crawlTarget
	}

	snap, err := auth.ParseSnapshot(req.SessionJSON)
	if err != nil {
		return req, fmt.Errorf("saved session setting: %w", err)
	}

	if crawlSession != "" {
		stored, err := auth.LoadSession(crawlSession)
		switch {
		case errors.Is(err, auth.ErrSessionExpired):
			log.Warn().Str("session", crawlSession).Time("expired", stored.ExpiresAt).Msg("Session has expired, using it anyway")
		case err != nil:
			return req, fmt.Errorf("failed to load session '%s': %w", crawlSession, err)
		}
		snap = snap.Merge(&stored.Snapshot)
	}

	if crawlSessionFile != "" {
		data, err := os.ReadFile(crawlSessionFile)
		if err != nil {
			return req, fmt.Errorf("failed to read session file: %w", err)
		}
		fileSnap, err := auth.ParseSnapshot(string(data))
		if err != nil {
			return req, err
		}
		snap = snap.Merge(fileSnap)
	}

	if !snap.Empty() {
		if req.SessionJSON, err = snap.JSON(); err != nil {
			return req, err
		}
	}
	return req, nil
}

func scrape(ctx context.Context, a *app.Application, req crawl.Request, hdrs map[string]string, bar *progressbar.ProgressBar) ([]crawl.PageResult, error) {
	if crawlRemote != "" {
		if len(hdrs) > 0 || crawlEngine != "" {
			log.Warn().Msg("--header and --engine are ignored with --remote; the server uses its own settings")
		}
		client := transport.NewClient(crawlRemote, 0)
		if err := client.Ping(ctx); err != nil {
			return nil, err
		}
		log.Info().Str("server", crawlRemote).Msg("Submitting crawl to remote server")
		results, err := client.Scrape(ctx, req)
		if bar != nil && err == nil {
			_ = bar.Set(len(results))
		}
		return results, err
	}

	opts := app.ScrapeOptions{
		Engine:  models.EngineKind(crawlEngine),
		Headers: hdrs,
	}
	if bar != nil {
		opts.Progress = func(r crawl.PageResult, pages int) {
			bar.Describe(truncate(r.URL, 48))
			_ = bar.Set(pages)
		}
	}
	return a.ScrapeWith(ctx, req, opts)
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Crawling"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func printCrawlSummary(w io.Writer, results []crawl.PageResult, sum sink.Summary, elapsed time.Duration) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Crawl complete"))
	fmt.Fprintf(w, "%s\n", ui.Dim(rule))
	for _, r := range results {
		if r.Success {
			fmt.Fprintf(w, "  %s %s\n", ui.Success("✓"), r.FilePath)
		} else {
			fmt.Fprintf(w, "  %s %s %s\n", ui.Info("!"), r.URL, ui.Dim(r.Error))
		}
	}
	fmt.Fprintf(w, "\n  Processed: %d   Written: %s   Skipped: %d   (%s)\n\n",
		len(results), ui.Success(fmt.Sprint(sum.Written)), sum.Skipped, elapsed.Round(time.Millisecond))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
