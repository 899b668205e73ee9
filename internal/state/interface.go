package state

import (
	"errors"

	"github.com/wxlim/moodlit/internal/models"
)

// ErrNotFound is returned when a flag has never been set.
var ErrNotFound = errors.New("state: not found")

// Provider persists the client-side session flags and the habits "last
// saved" marker. These are the moodlit analog of the web client's browser
// storage: trusted local UX state, never a source of truth.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Session flags
	Session() (models.Session, error)
	SaveSession(models.Session) error
	ClearSession() error

	// Habits marker: the raw LastSavedAt timestamp of the most recent
	// local habits save, used only to bridge the gap until the next
	// successful fetch confirms it server-side.
	HabitsMarker() (string, error)
	SetHabitsMarker(ts string) error
	ClearHabitsMarker() error

	Path() string
}

// New selects a store implementation based on the path extension, the same
// way the storage layer picks JSON for .json paths and SQLite otherwise.
func New(path string) Provider {
	if len(path) > 5 && path[len(path)-5:] == ".json" {
		return NewJSONStore(path)
	}
	return NewSQLiteStore(path)
}

// flag keys shared by both stores; names mirror the web client's storage keys
const (
	keyIsLoggedIn   = "is_logged_in"
	keyUserID       = "user_id"
	keyCounsellorID = "counsellor_id"
	keyShowEmotion  = "show_emotion"
	keyHabitsSaved  = "habits_last_saved"
)
