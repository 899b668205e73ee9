package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/reconcile"
	"github.com/wxlim/moodlit/internal/sgtime"
)

type InvitesCmd struct{}

func (c *InvitesCmd) Run(ctx *Context) error {
	sess, err := ctx.session()
	if err != nil {
		return err
	}

	var requests []models.LinkRequest
	switch {
	case sess.IsUser():
		requests, err = ctx.API.UserLinkRequests(context.Background(), sess.UserID)
	case sess.IsCounsellor():
		requests, err = ctx.API.CounsellorLinkRequests(context.Background(), sess.CounsellorID)
	default:
		return errors.New("not logged in, run 'moodlit login' first")
	}
	if err != nil {
		return ctx.handleAPIError(err)
	}
	if len(requests) == 0 {
		fmt.Println("No invites")
		return nil
	}

	printInvites(requests, sess.IsCounsellor())
	return nil
}

type InviteSendCmd struct {
	UserID string `arg:"" help:"Journal user to invite."`
}

func (c *InviteSendCmd) Run(ctx *Context) error {
	sess, err := ctx.requireCounsellor(guard.RouteInvites)
	if err != nil {
		return err
	}

	if err := ctx.API.CreateLinkRequest(context.Background(), sess.CounsellorID, c.UserID); err != nil {
		return ctx.handleAPIError(err)
	}
	fmt.Printf("Invite sent to %s\n", c.UserID)
	return nil
}

type InviteApproveCmd struct {
	ID string `arg:"" help:"Invite ID."`
}

func (c *InviteApproveCmd) Run(ctx *Context) error {
	return runDecision(ctx, c.ID, true)
}

type InviteRejectCmd struct {
	ID string `arg:"" help:"Invite ID."`
}

func (c *InviteRejectCmd) Run(ctx *Context) error {
	return runDecision(ctx, c.ID, false)
}

func runDecision(ctx *Context, id string, approve bool) error {
	sess, err := ctx.requireUser(guard.RouteInvites)
	if err != nil {
		return err
	}

	decider := reconcile.NewDecider(ctx.API, sess.UserID)
	outcome, err := decider.Decide(context.Background(), models.LinkRequest{ID: id}, approve, confirmDecision)
	if err != nil {
		return ctx.handleAPIError(err)
	}

	switch outcome.Reason {
	case reconcile.ReasonStale:
		if outcome.CurrentStatus == models.StatusPending {
			fmt.Println("Invite not found, nothing submitted")
		} else {
			fmt.Printf("This invite was already %s, nothing submitted\n", outcome.CurrentStatus)
		}
	case reconcile.ReasonCancelled:
		fmt.Println("Cancelled")
	case reconcile.ReasonConflict:
		fmt.Printf("This invite was decided elsewhere in the meantime, it is now %s\n", outcome.CurrentStatus)
	default:
		fmt.Printf("Invite %s %s\n", id, outcome.CurrentStatus)
	}
	return nil
}

func confirmDecision(req models.LinkRequest, approve bool) bool {
	verb := "Approve"
	if !approve {
		verb = "Reject"
	}
	confirmed := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("%s invite from %s?", verb, req.CounsellorUser)).
		Description("An approved counsellor can see your journal and habit aggregates.").
		Value(&confirmed).
		Run()
	if err != nil {
		return false
	}
	return confirmed
}

func printInvites(requests []models.LinkRequest, counsellor bool) {
	fmt.Println("Invites:")
	for _, r := range requests {
		other := r.CounsellorUser
		if counsellor {
			other = r.JournalUser
		}
		fmt.Printf("  %s  %-9s %s (%s)\n", r.ID, r.Status, other, sgtime.FormatDate(r.RequestedAt))
	}
}
