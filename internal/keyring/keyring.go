package keyring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	service = "moodlit"
	account = "session-cookie"

	// fallback file used when the OS keyring is unavailable (headless
	// boxes, CI); same trust level as the rest of the state directory
	fallbackFile = "session-cookie"
)

var (
	// ErrNotFound is returned when no session cookie is stored
	ErrNotFound = errors.New("session cookie not found")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Store saves the backend session cookie. The OS keyring is preferred;
// when it is unavailable the cookie goes to a 0600 file in configDir.
type Store struct {
	configDir string
}

func New(configDir string) *Store {
	return &Store{configDir: configDir}
}

// Get retrieves the stored session cookie.
func (s *Store) Get() (string, error) {
	v, err := keyring.Get(service, account)
	if err == nil {
		return v, nil
	}
	if err == keyring.ErrNotFound {
		return "", ErrNotFound
	}

	data, ferr := os.ReadFile(s.fallbackPath())
	if ferr != nil {
		if os.IsNotExist(ferr) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set stores the session cookie.
func (s *Store) Set(cookie string) error {
	if cookie == "" {
		return errors.New("session cookie cannot be empty")
	}
	if err := keyring.Set(service, account, cookie); err == nil {
		return nil
	}
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return fmt.Errorf("failed to store session cookie: %w", err)
	}
	if err := os.WriteFile(s.fallbackPath(), []byte(cookie), 0600); err != nil {
		return fmt.Errorf("failed to store session cookie: %w", err)
	}
	return nil
}

// Delete removes the stored session cookie from both backends. Missing
// entries are not an error; logout is best effort.
func (s *Store) Delete() error {
	// Keyring errors are ignored here; the backend may be unavailable and
	// the fallback file still needs cleaning up.
	_ = keyring.Delete(service, account)
	if err := os.Remove(s.fallbackPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session cookie: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is usable on this system.
// Best effort; a keyring that is available but empty still counts.
func IsAvailable() bool {
	_, err := keyring.Get(service, "test-availability")
	return err == nil || err == keyring.ErrNotFound
}

func (s *Store) fallbackPath() string {
	return filepath.Join(s.configDir, fallbackFile)
}
