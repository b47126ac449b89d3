package output

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/law-makers/vaultcrawl/internal/crawl"
)

// Results is the JSON document printed by `crawl --json`.
type Results struct {
	Success bool               `json:"success"`
	Data    []crawl.PageResult `json:"data"`
	Written int                `json:"written"`
	Skipped int                `json:"skipped"`
	Error   string             `json:"error,omitempty"`
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// SaveJSON writes v as indented JSON to path, creating its directory.
func SaveJSON(v any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
