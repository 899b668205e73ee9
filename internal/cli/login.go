package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/logger"
)

type LoginCmd struct {
	Email string `arg:"" optional:"" help:"Account email. Prompted for when omitted."`
}

func (c *LoginCmd) Run(ctx *Context) error {
	return runLogin(ctx, c.Email, false)
}

// CLoginCmd is the counsellor login.
type CLoginCmd struct {
	Email string `arg:"" optional:"" help:"Counsellor email. Prompted for when omitted."`
}

func (c *CLoginCmd) Run(ctx *Context) error {
	return runLogin(ctx, c.Email, true)
}

func runLogin(ctx *Context, email string, counsellor bool) error {
	sess, err := ctx.session()
	if err != nil {
		return err
	}
	if d := guard.AntiLogin(sess, guard.RouteUserLogin); !d.Allow {
		return fmt.Errorf("already logged in, run 'moodlit logout' first")
	}

	var password string
	fields := []huh.Field{}
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(&email).
			Validate(func(s string) error {
				if !strings.Contains(s, "@") {
					return fmt.Errorf("enter a valid email address")
				}
				return nil
			}))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	login := ctx.API.UserLogin
	if counsellor {
		login = ctx.API.CounsellorLogin
	}

	newSess, err := login(context.Background(), email, password)
	if err != nil {
		// A failed login leaves no half-written identity behind.
		if cerr := ctx.State.ClearSession(); cerr != nil {
			logger.Warn("failed to clear session flags", "err", cerr)
		}
		return ctx.handleAPIError(err)
	}

	if err := ctx.State.SaveSession(newSess); err != nil {
		return err
	}

	if counsellor {
		fmt.Printf("Logged in as counsellor %s\n", newSess.CounsellorID)
	} else {
		fmt.Printf("Logged in as %s\n", newSess.UserID)
	}
	return nil
}
