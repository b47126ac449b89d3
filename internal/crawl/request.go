package crawl

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/law-makers/vaultcrawl/internal/engine"
	urlutil "github.com/law-makers/vaultcrawl/internal/utils/url"
	"github.com/law-makers/vaultcrawl/pkg/models"
)

// Request describes one crawl run. The JSON names are the trigger
// transport's wire format.
type Request struct {
	URLs         []string         `json:"urls"`
	Mode         models.CrawlMode `json:"mode"`
	MaxPages     int              `json:"maxPages"`
	TargetFolder string           `json:"targetFolder"`
	SessionJSON  string           `json:"storageStateJson,omitempty"`
}

// PageResult is the outcome for one attempted page.
type PageResult struct {
	URL      string `json:"url"`
	FilePath string `json:"filePath"`
	Content  string `json:"finalContent"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Normalize trims seed URLs, drops blank ones and defaults the mode to recursive.
func (r Request) Normalize() Request {
	out := r
	out.URLs = make([]string, 0, len(r.URLs))
	for _, u := range r.URLs {
		if u = strings.TrimSpace(u); u != "" {
			out.URLs = append(out.URLs, u)
		}
	}
	if out.Mode == "" {
		out.Mode = models.ModeRecursive
	}
	return out
}

// Validate rejects requests that cannot start. Every returned error is a
// configuration error.
func (r Request) Validate() error {
	if len(r.URLs) == 0 {
		return engine.ConfigurationError("at least one URL is required", nil)
	}
	for i, u := range r.URLs {
		if err := urlutil.ValidateURL(u); err != nil {
			return engine.ConfigurationError(fmt.Sprintf("invalid seed URL #%d", i+1), err).
				WithDetail("url", u)
		}
	}
	if !r.Mode.Valid() {
		return engine.ConfigurationError(fmt.Sprintf("unknown mode %q (use recursive or single)", r.Mode), nil)
	}
	if r.TargetFolder != "" && !filepath.IsLocal(filepath.FromSlash(r.TargetFolder)) {
		return engine.ConfigurationError(fmt.Sprintf("target folder %q must be relative to the vault", r.TargetFolder), nil)
	}
	if r.MaxPages <= 0 {
		return engine.ConfigurationError(fmt.Sprintf("max pages must be positive, got %d", r.MaxPages), nil)
	}
	return nil
}
