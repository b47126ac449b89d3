package auth

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/law-makers/vaultcrawl/internal/engine"
	urlutil "github.com/law-makers/vaultcrawl/internal/utils/url"
)

// Snapshot is a serialized authentication state: cookies plus per-origin
// localStorage. The JSON shape is the browser "storage state" format, every
// top-level key optional.
type Snapshot struct {
	Cookies []Cookie `json:"cookies,omitempty"`
	Origins []Origin `json:"origins,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	URL      string  `json:"url,omitempty"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Origin holds the localStorage entries for one origin, in insertion order.
type Origin struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage,omitempty"`
}

// StorageEntry is one localStorage key/value pair.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParseSnapshot decodes raw snapshot JSON. Blank input yields (nil, nil);
// anything that is not valid JSON for the format is a session error.
func ParseSnapshot(raw string) (*Snapshot, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, engine.SessionError("failed to parse storage state JSON", err)
	}
	return &snap, nil
}

// Empty reports whether applying s would change nothing.
func (s *Snapshot) Empty() bool {
	if s == nil {
		return true
	}
	if len(s.Cookies) > 0 {
		return false
	}
	for _, o := range s.Origins {
		if len(o.LocalStorage) > 0 {
			return false
		}
	}
	return true
}

// JSON encodes s in the wire format.
func (s *Snapshot) JSON() (string, error) {
	if s == nil {
		return "", nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return string(data), nil
}

// Merge returns a snapshot holding s's cookies and origins followed by other's.
func (s *Snapshot) Merge(other *Snapshot) *Snapshot {
	out := &Snapshot{}
	for _, src := range []*Snapshot{s, other} {
		if src == nil {
			continue
		}
		out.Cookies = append(out.Cookies, src.Cookies...)
		out.Origins = append(out.Origins, src.Origins...)
	}
	return out
}

// NormalizeOrigin reduces a URL or origin string to scheme://host[:port],
// the form location.origin reports. Default ports are dropped.
func NormalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSuffix(raw, "/")
	}
	origin := (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
	return strings.TrimSuffix(urlutil.Normalize(origin), "/")
}
