package state

import (
	"errors"

	"github.com/wxlim/moodlit/internal/models"
)

// readSession assembles a Session from individual flags. Missing flags are
// an anonymous session, not an error; the stores share this logic so both
// interpret a half-written flag set identically.
func readSession(get func(string) (string, error)) (models.Session, error) {
	var sess models.Session

	logged, err := get(keyIsLoggedIn)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return models.Session{}, err
	}
	sess.IsLoggedIn = logged == "true"

	if v, err := get(keyUserID); err == nil {
		sess.UserID = v
	} else if !errors.Is(err, ErrNotFound) {
		return models.Session{}, err
	}

	if v, err := get(keyCounsellorID); err == nil {
		sess.CounsellorID = v
	} else if !errors.Is(err, ErrNotFound) {
		return models.Session{}, err
	}

	if v, err := get(keyShowEmotion); err == nil {
		sess.ShowEmotion = v == "true"
	} else if !errors.Is(err, ErrNotFound) {
		return models.Session{}, err
	}

	return sess, nil
}

func writeSession(set func(string, string) error, sess models.Session) error {
	if err := set(keyIsLoggedIn, boolFlag(sess.IsLoggedIn)); err != nil {
		return err
	}
	if err := set(keyUserID, sess.UserID); err != nil {
		return err
	}
	if err := set(keyCounsellorID, sess.CounsellorID); err != nil {
		return err
	}
	return set(keyShowEmotion, boolFlag(sess.ShowEmotion))
}

func boolFlag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
