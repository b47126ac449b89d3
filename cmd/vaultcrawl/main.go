// cmd/vaultcrawl/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// Cancelling stops a crawl before its next page and shuts the server down.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down gracefully...")
		cancel()
	}()

	code := cli.Execute(ctx)
	cancel()
	os.Exit(code)
}
