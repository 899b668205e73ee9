package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/wxlim/moodlit/internal/logger"
)

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	if err := ctx.State.Load(); err != nil {
		return err
	}

	// Best effort: local state is cleared whether or not the server heard us.
	callCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctx.API.Logout(callCtx); err != nil {
		logger.Warn("logout call failed, clearing local session anyway", "err", err)
	}

	if err := ctx.clearAuth(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	sess, err := ctx.session()
	if err != nil {
		return err
	}
	switch {
	case sess.IsUser():
		fmt.Printf("user %s\n", sess.UserID)
	case sess.IsCounsellor():
		fmt.Printf("counsellor %s\n", sess.CounsellorID)
	default:
		fmt.Println("not logged in")
	}
	return nil
}
