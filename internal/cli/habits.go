package cli

import (
	"context"
	"fmt"

	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/logger"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/reconcile"
	"github.com/wxlim/moodlit/internal/sgtime"
)

type HabitsListCmd struct{}

func (c *HabitsListCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteHabits)
	if err != nil {
		return err
	}

	records, err := ctx.API.HabitsAll(context.Background(), sess.UserID)
	if err != nil {
		return ctx.handleAPIError(err)
	}
	if len(records) == 0 {
		fmt.Println("No habits logged yet")
		return nil
	}

	fmt.Println("Habits:")
	for _, r := range records {
		fmt.Printf("  %s  %s - sleep %.1fh, water %.1fL, work %.1fh\n",
			r.ID, sgtime.FormatDate(r.CreatedAt), r.SleepHours, r.WaterLitres, r.WorkHours)
	}
	return nil
}

type HabitsTodayCmd struct{}

func (c *HabitsTodayCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteHabits)
	if err != nil {
		return err
	}

	today := reconcile.NewHabitsToday(ctx.API.HabitsAll, ctx.State, nil)
	status, err := today.Refresh(context.Background(), sess.UserID)
	if err != nil {
		logger.Warn("habits fetch failed, using local marker", "err", err)
	}

	switch {
	case status.Logged && status.Degraded:
		fmt.Println("Habits logged today (server unreachable, going by the last local save)")
	case status.Logged:
		fmt.Println("Habits logged today")
	case status.Degraded:
		fmt.Println("Habits not logged today (server unreachable)")
	default:
		fmt.Println("Habits not logged today")
	}
	return nil
}

type HabitsLogCmd struct {
	Sleep float64 `short:"s" help:"Hours slept." required:""`
	Water float64 `short:"w" help:"Litres of water drunk." required:""`
	Work  float64 `short:"k" help:"Hours worked." required:""`
}

func (c *HabitsLogCmd) Validate() error {
	return validateHabits(c.Sleep, c.Water, c.Work)
}

func (c *HabitsLogCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteHabits)
	if err != nil {
		return err
	}

	record, err := ctx.API.SubmitHabits(context.Background(), models.HabitsInput{
		UserID:      sess.UserID,
		SleepHours:  c.Sleep,
		WaterLitres: c.Water,
		WorkHours:   c.Work,
	})
	if err != nil {
		return ctx.handleAPIError(err)
	}

	setHabitsMarker(ctx, record)
	fmt.Printf("Logged habits for %s\n", sgtime.FormatOrdinal(record.CreatedAt))
	return nil
}

type HabitsEditCmd struct {
	ID    string  `arg:"" help:"Record ID."`
	Sleep float64 `short:"s" help:"Hours slept." required:""`
	Water float64 `short:"w" help:"Litres of water drunk." required:""`
	Work  float64 `short:"k" help:"Hours worked." required:""`
}

func (c *HabitsEditCmd) Validate() error {
	return validateHabits(c.Sleep, c.Water, c.Work)
}

func (c *HabitsEditCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteHabits)
	if err != nil {
		return err
	}

	record, err := ctx.API.EditHabits(context.Background(), c.ID, models.HabitsInput{
		UserID:      sess.UserID,
		SleepHours:  c.Sleep,
		WaterLitres: c.Water,
		WorkHours:   c.Work,
	})
	if err != nil {
		return ctx.handleAPIError(err)
	}

	setHabitsMarker(ctx, record)
	fmt.Printf("Updated habits record %s\n", record.ID)
	return nil
}

type HabitsArchiveCmd struct {
	ID string `arg:"" help:"Record ID."`
}

func (c *HabitsArchiveCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteHabits)
	if err != nil {
		return err
	}

	// Fetch first so we know whether this was today's record: archiving
	// today's entry has to drop the local marker too, or "logged today"
	// would keep answering yes.
	record, err := ctx.API.Habit(context.Background(), c.ID, sess.UserID)
	if err != nil {
		return ctx.handleAPIError(err)
	}

	if err := ctx.API.ArchiveHabits(context.Background(), c.ID, sess.UserID); err != nil {
		return ctx.handleAPIError(err)
	}

	if sgtime.DayKey(record.CreatedAt) == sgtime.TodayKey(nil) {
		if err := ctx.State.ClearHabitsMarker(); err != nil {
			logger.Warn("failed to clear habits marker", "err", err)
		}
	}
	fmt.Printf("Archived habits record %s\n", c.ID)
	return nil
}

func validateHabits(sleep, water, work float64) error {
	if sleep < 0 || sleep > 24 {
		return fmt.Errorf("sleep hours must be between 0 and 24")
	}
	if water < 0 {
		return fmt.Errorf("water litres cannot be negative")
	}
	if work < 0 || work > 24 {
		return fmt.Errorf("work hours must be between 0 and 24")
	}
	return nil
}

// setHabitsMarker records the save locally so "logged today" flips
// immediately, before the next server fetch confirms it.
func setHabitsMarker(ctx *Context, record models.HabitsRecord) {
	ts := record.LastSavedAt
	if ts == "" {
		ts = record.CreatedAt
	}
	if err := ctx.State.SetHabitsMarker(ts); err != nil {
		logger.Warn("failed to set habits marker", "err", err)
	}
}
