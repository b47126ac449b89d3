package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"

	"github.com/law-makers/vaultcrawl/internal/config"
)

// KeyringService is the service name sessions are stored under in the OS keyring.
const KeyringService = config.AppName

// indexKey holds the list of session names, since keyrings cannot enumerate.
const indexKey = "_sessions"

// ErrSessionExpired is returned alongside a session whose cookies have all expired.
var ErrSessionExpired = errors.New("session expired")

// SessionData is a named, stored session snapshot.
type SessionData struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Snapshot  Snapshot  `json:"snapshot"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// NewSessionData wraps snap under name. The session expires with its
// longest-lived cookie; session cookies alone never expire it.
func NewSessionData(name, url string, snap *Snapshot) *SessionData {
	s := &SessionData{Name: name, URL: url, CreatedAt: time.Now()}
	if snap != nil {
		s.Snapshot = *snap
	}

	var latest float64
	for _, c := range s.Snapshot.Cookies {
		latest = max(latest, c.Expires)
	}
	if latest > 0 {
		s.ExpiresAt = time.Unix(int64(latest), 0)
	}
	return s
}

// Expired reports whether the session has a known expiry in the past.
func (s *SessionData) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// backend persists serialized sessions by name.
type backend interface {
	get(name string) ([]byte, error)
	put(name string, data []byte) error
	remove(name string) error
	names() ([]string, error)
}

var (
	backendOnce   sync.Once
	activeBackend backend
)

// storage picks the keyring when it is usable. Headless hosts such as CI
// runners, or VAULTCRAWL_FILE_SESSIONS, fall back to files under the data dir.
func storage() backend {
	backendOnce.Do(func() {
		files := fileBackend{dir: filepath.Join(config.XDGDataDir(), "sessions")}
		if os.Getenv("VAULTCRAWL_FILE_SESSIONS") != "" || os.Getenv("CI") != "" || os.Getenv("CODESPACES") != "" {
			activeBackend = files
			return
		}
		probe := "_probe"
		if err := keyring.Set(KeyringService, probe, "ok"); err != nil {
			log.Debug().Err(err).Str("dir", files.dir).Msg("Keyring unavailable, storing sessions as files")
			activeBackend = files
			return
		}
		_ = keyring.Delete(KeyringService, probe)
		activeBackend = keyringBackend{}
	})
	return activeBackend
}

func validateName(name string) error {
	switch {
	case name == "":
		return errors.New("session name cannot be empty")
	case name == indexKey, strings.ContainsAny(name, `/\`), name == "." || name == "..":
		return fmt.Errorf("invalid session name %q", name)
	}
	return nil
}

// SaveSession stores session, replacing any session with the same name.
func SaveSession(session *SessionData) error {
	if err := validateName(session.Name); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := storage().put(session.Name, data); err != nil {
		return fmt.Errorf("save session %q: %w", session.Name, err)
	}
	return nil
}

// LoadSession reads the named session. An expired session is still returned,
// together with ErrSessionExpired.
func LoadSession(name string) (*SessionData, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := storage().get(name)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", name, err)
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", name, err)
	}
	if session.Expired(time.Now()) {
		return &session, ErrSessionExpired
	}
	return &session, nil
}

// DeleteSession removes the named session. Deleting a missing file session
// is not an error.
func DeleteSession(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := storage().remove(name); err != nil {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	return nil
}

// ListSessions returns the stored session names in sorted order.
func ListSessions() ([]string, error) {
	names, err := storage().names()
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

type fileBackend struct{ dir string }

func (f fileBackend) path(name string) string { return filepath.Join(f.dir, name+".json") }

func (f fileBackend) get(name string) ([]byte, error) { return os.ReadFile(f.path(name)) }

func (f fileBackend) put(name string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path(name), data, 0o600)
}

func (f fileBackend) remove(name string) error {
	if err := os.Remove(f.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f fileBackend) names() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".json"); ok && !e.IsDir() {
			names = append(names, n)
		}
	}
	return names, nil
}

type keyringBackend struct{}

func (keyringBackend) get(name string) ([]byte, error) {
	s, err := keyring.Get(KeyringService, name)
	return []byte(s), err
}

func (k keyringBackend) put(name string, data []byte) error {
	if err := keyring.Set(KeyringService, name, string(data)); err != nil {
		return err
	}
	return k.index(name, true)
}

func (k keyringBackend) remove(name string) error {
	if err := keyring.Delete(KeyringService, name); err != nil {
		return err
	}
	return k.index(name, false)
}

func (keyringBackend) names() ([]string, error) {
	raw, err := keyring.Get(KeyringService, indexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("decode session index: %w", err)
	}
	return names, nil
}

func (k keyringBackend) index(name string, present bool) error {
	names, err := k.names()
	if err != nil {
		return err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == name })
	if present {
		names = append(names, name)
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, indexKey, string(data))
}
