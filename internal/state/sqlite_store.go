package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/wxlim/moodlit/internal/models"
)

// SQLiteStore keeps the flags in a single key/value table. It is the
// default store.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	s.db = db

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS flags (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create flags table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	// The state db is created on demand; a missing file is not an error
	// the way uninitialized task storage is, because an empty flag set
	// just means an anonymous session.
	return s.Init()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM flags WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLiteStore) set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO flags (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *SQLiteStore) delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(`DELETE FROM flags WHERE key = ?`, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Session() (models.Session, error) {
	return readSession(s.get)
}

func (s *SQLiteStore) SaveSession(sess models.Session) error {
	return writeSession(s.set, sess)
}

func (s *SQLiteStore) ClearSession() error {
	return s.delete(keyIsLoggedIn, keyUserID, keyCounsellorID, keyShowEmotion)
}

func (s *SQLiteStore) HabitsMarker() (string, error) {
	v, err := s.get(keyHabitsSaved)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *SQLiteStore) SetHabitsMarker(ts string) error {
	return s.set(keyHabitsSaved, ts)
}

func (s *SQLiteStore) ClearHabitsMarker() error {
	return s.delete(keyHabitsSaved)
}

func (s *SQLiteStore) Path() string {
	return s.path
}
