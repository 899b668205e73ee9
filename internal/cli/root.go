package cli

import (
	"errors"
	"fmt"

	"github.com/wxlim/moodlit/internal/api"
	"github.com/wxlim/moodlit/internal/config"
	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/keyring"
	"github.com/wxlim/moodlit/internal/logger"
	"github.com/wxlim/moodlit/internal/ml"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/state"
)

// Context carries the shared dependencies every command runs against.
type Context struct {
	Config  *config.Config
	State   state.Provider
	API     *api.Client
	ML      *ml.Client
	Cookies *keyring.Store
}

// clearAuth drops the local identity: session flags and stored cookie.
func (c *Context) clearAuth() error {
	if err := c.Cookies.Delete(); err != nil {
		logger.Warn("failed to delete session cookie", "err", err)
	}
	return c.State.ClearSession()
}

// session loads the persisted session flags.
func (c *Context) session() (models.Session, error) {
	if err := c.State.Load(); err != nil {
		return models.Session{}, err
	}
	return c.State.Session()
}

// requireUser applies the user guard before a user-only command runs.
func (c *Context) requireUser(route guard.Route) (models.Session, error) {
	sess, err := c.session()
	if err != nil {
		return models.Session{}, err
	}
	if d := guard.User(sess, route); !d.Allow {
		return models.Session{}, errors.New("not logged in as a user, run 'moodlit login' first")
	}
	return sess, nil
}

// requireCounsellor applies the counsellor guard.
func (c *Context) requireCounsellor(route guard.Route) (models.Session, error) {
	sess, err := c.session()
	if err != nil {
		return models.Session{}, err
	}
	if d := guard.Counsellor(sess, route); !d.Allow {
		return models.Session{}, errors.New("not logged in as a counsellor, run 'moodlit clogin' first")
	}
	return sess, nil
}

// handleAPIError converts client errors into terminal-friendly failures.
// 401/403 is the real authorization boundary: the advisory guard passed but
// the server disagreed, so the local flags are cleared.
func (c *Context) handleAPIError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrUnauthorized) {
		if cerr := c.clearAuth(); cerr != nil {
			logger.Warn("failed to clear session flags", "err", cerr)
		}
		return errors.New("your session has expired, please log in again")
	}
	return fmt.Errorf("%s", api.UserMessage(err))
}
