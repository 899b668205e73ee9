package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wxlim/moodlit/internal/models"
)

// JSONStore keeps the flags in a plain JSON file. Useful for tests and for
// users who want greppable state.
type JSONStore struct {
	path  string
	flags map[string]string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	s.flags = make(map[string]string)
	return s.save()
}

func (s *JSONStore) Load() error {
	if s.flags != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.Init()
		}
		return fmt.Errorf("failed to read state: %w", err)
	}

	s.flags = make(map[string]string)
	if err := json.Unmarshal(data, &s.flags); err != nil {
		return fmt.Errorf("failed to parse state: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.flags, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

func (s *JSONStore) get(key string) (string, error) {
	if s.flags == nil {
		return "", fmt.Errorf("state not loaded")
	}
	v, ok := s.flags[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *JSONStore) set(key, value string) error {
	if s.flags == nil {
		return fmt.Errorf("state not loaded")
	}
	s.flags[key] = value
	return s.save()
}

func (s *JSONStore) delete(keys ...string) error {
	if s.flags == nil {
		return fmt.Errorf("state not loaded")
	}
	for _, key := range keys {
		delete(s.flags, key)
	}
	return s.save()
}

func (s *JSONStore) Session() (models.Session, error) {
	return readSession(s.get)
}

func (s *JSONStore) SaveSession(sess models.Session) error {
	return writeSession(s.set, sess)
}

func (s *JSONStore) ClearSession() error {
	return s.delete(keyIsLoggedIn, keyUserID, keyCounsellorID, keyShowEmotion)
}

func (s *JSONStore) HabitsMarker() (string, error) {
	v, err := s.get(keyHabitsSaved)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *JSONStore) SetHabitsMarker(ts string) error {
	return s.set(keyHabitsSaved, ts)
}

func (s *JSONStore) ClearHabitsMarker() error {
	return s.delete(keyHabitsSaved)
}

func (s *JSONStore) Path() string {
	return s.path
}
