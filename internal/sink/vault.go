// Package sink persists crawl results as Markdown files in a vault folder.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/crawl"
	"github.com/law-makers/vaultcrawl/internal/engine"
)

// ErrExists is wrapped by the error returned when a note is already present.
var ErrExists = errors.New("file already exists")

// Summary counts what WriteAll did
type Summary struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ErrOutsideVault is returned for result paths that would leave the vault.
var ErrOutsideVault = errors.New("path escapes the vault")

// Vault writes notes below a root directory. An empty Root means the working
// directory.
type Vault struct {
	Root string
}

// NewVault creates a Vault rooted at root
func NewVault(root string) *Vault {
	return &Vault{Root: root}
}

// Path maps a result's slash-separated path into the vault. Absolute paths
// and paths that climb out of the root with ".." are rejected; results may
// come from a remote server.
func (v *Vault) Path(resultPath string) (string, error) {
	p := filepath.FromSlash(resultPath)
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("%w: %q", ErrOutsideVault, resultPath)
	}
	if v.Root == "" {
		return p, nil
	}
	return filepath.Join(v.Root, p), nil
}

type noteFile interface {
	WriteString(s string) (int, error)
	Close() error
}

// createNote opens path for writing and fails if it already exists.
var createNote = func(path string) (noteFile, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Write stores one successful result. An existing file is never touched:
// the call returns a SINK_CONFLICT error wrapping ErrExists instead.
func (v *Vault) Write(ctx context.Context, result crawl.PageResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !result.Success || result.FilePath == "" {
		return fmt.Errorf("refusing to write unsuccessful result for %s", result.URL)
	}

	path, err := v.Path(result.FilePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	f, err := createNote(path)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return engine.NewEngineError(engine.ErrCodeSinkConflict, "note already exists", ErrExists).
				WithDetail("path", path)
		}
		return fmt.Errorf("failed to create note: %w", err)
	}

	// A partial note would be skipped as existing on every later run.
	if _, err := f.WriteString(result.Content); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write note: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close note: %w", err)
	}

	log.Debug().Str("path", path).Int("bytes", len(result.Content)).Msg("Note written")
	return nil
}

// WriteAll stores every successful result, skipping notes that already
// exist. It stops at the first real I/O failure.
func (v *Vault) WriteAll(ctx context.Context, results []crawl.PageResult) (Summary, error) {
	var sum Summary
	for _, r := range results {
		if !r.Success {
			sum.Failed++
			continue
		}

		err := v.Write(ctx, r)
		switch {
		case err == nil:
			sum.Written++
		case errors.Is(err, ErrExists):
			sum.Skipped++
			log.Warn().Str("path", r.FilePath).Msg("Skipping, file already exists")
		default:
			return sum, err
		}
	}
	return sum, nil
}
