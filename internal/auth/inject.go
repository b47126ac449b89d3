package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/vaultcrawl/internal/engine"
)

// Apply installs snap into sess. It must run before the session's first
// navigation. A nil or empty snapshot is a no-op.
func Apply(ctx context.Context, sess engine.Session, snap *Snapshot) error {
	if snap.Empty() {
		return nil
	}

	if cookies := EngineCookies(snap.Cookies); len(cookies) > 0 {
		if err := sess.SetCookies(ctx, cookies); err != nil {
			return engine.SessionError("failed to set session cookies", err)
		}
		log.Debug().Int("cookies", len(cookies)).Msg("Session cookies injected")
	}

	for _, origin := range snap.Origins {
		if len(origin.LocalStorage) == 0 {
			continue
		}
		script, err := LocalStorageScript(origin)
		if err != nil {
			return engine.SessionError("failed to build localStorage script", err).
				WithDetail("origin", origin.Origin)
		}
		if err := sess.AddInitScript(ctx, script); err != nil {
			return engine.SessionError("failed to register localStorage script", err).
				WithDetail("origin", origin.Origin)
		}
		log.Debug().
			Str("origin", NormalizeOrigin(origin.Origin)).
			Int("entries", len(origin.LocalStorage)).
			Msg("localStorage injection registered")
	}

	return nil
}

// LocalStorageScript returns JavaScript that writes origin's entries into
// localStorage, but only in documents whose location.origin matches.
func LocalStorageScript(origin Origin) (string, error) {
	target, err := json.Marshal(NormalizeOrigin(origin.Origin))
	if err != nil {
		return "", err
	}
	entries, err := json.Marshal(origin.LocalStorage)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`(() => {
  if (location.origin !== %s) return;
  for (const entry of %s) {
    try { localStorage.setItem(entry.name, entry.value); } catch (e) {}
  }
})();`, target, entries), nil
}

// EngineCookies converts snapshot cookies to the fetcher shape. Cookies that
// carry only a url get their domain and path from it.
func EngineCookies(cookies []Cookie) []engine.Cookie {
	out := make([]engine.Cookie, 0, len(cookies))
	for _, c := range cookies {
		domain, path := c.Domain, c.Path
		if domain == "" && c.URL != "" {
			if u, err := url.Parse(c.URL); err == nil {
				domain = u.Hostname()
				if path == "" {
					path = u.Path
				}
			}
		}
		if path == "" {
			path = "/"
		}
		out = append(out, engine.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: normalizeSameSite(c.SameSite),
		})
	}
	return out
}

func normalizeSameSite(s string) string {
	switch strings.ToLower(s) {
	case "strict":
		return "Strict"
	case "lax":
		return "Lax"
	case "none", "no_restriction":
		return "None"
	default:
		return ""
	}
}
