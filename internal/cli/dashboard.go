package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wxlim/moodlit/internal/constants"
	"github.com/wxlim/moodlit/internal/dashboard"
	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/sgtime"
)

type DashboardCmd struct {
	Days int `short:"d" help:"Window size in days." default:"7"`
}

func (c *DashboardCmd) Validate() error {
	return validateDays(c.Days)
}

func (c *DashboardCmd) Run(ctx *Context) error {
	_, err := ctx.requireUser(guard.RouteDashboard)
	if err != nil {
		return err
	}

	data, err := ctx.API.DashboardWindow(context.Background(), c.Days)
	if err != nil {
		return ctx.handleAPIError(err)
	}

	from, to := windowBounds(data.Window, c.Days)
	fmt.Printf("Dashboard %s to %s\n\n", from.Format(constants.DateFormat), to.Format(constants.DateFormat))

	fmt.Println("Mood:")
	for _, row := range dashboard.MergeMoodSeries(from, to, data.Mood) {
		if row.AvgMood == nil {
			fmt.Printf("  %s  -\n", row.Date)
			continue
		}
		fmt.Printf("  %s  %.2f %s\n", row.Date, *row.AvgMood, moodBar(*row.AvgMood))
	}

	rows := dashboard.MergeEmotionTally(data.Emotions)
	fmt.Printf("\nEmotions (max %d):\n", dashboard.RadarMax(rows))
	for _, row := range rows {
		fmt.Printf("  %-10s %d\n", row.Emotion, row.Count)
	}
	return nil
}

type CDashboardCmd struct {
	Days int `short:"d" help:"Window size in days." default:"7"`
}

func (c *CDashboardCmd) Validate() error {
	return validateDays(c.Days)
}

func (c *CDashboardCmd) Run(ctx *Context) error {
	sess, err := ctx.requireCounsellor(guard.RouteCounsellorHome)
	if err != nil {
		return err
	}

	data, err := ctx.API.CounsellorDashboardWindow(context.Background(), c.Days, sess.CounsellorID)
	if err != nil {
		return ctx.handleAPIError(err)
	}
	if len(data.Clients) == 0 {
		fmt.Println("No linked clients yet")
		return nil
	}

	subjects := make([]string, 0, len(data.Clients))
	names := make(map[string]string, len(data.Clients))
	for _, cl := range data.Clients {
		subjects = append(subjects, cl.UserID)
		names[cl.UserID] = cl.Name
	}

	from, to := windowBounds(data.Window, c.Days)
	fmt.Printf("Clients dashboard %s to %s\n\n", from.Format(constants.DateFormat), to.Format(constants.DateFormat))

	fmt.Printf("Mood        %s\n", strings.Join(subjectHeader(subjects, names), "  "))
	for _, row := range dashboard.MergeMoodSeriesMulti(from, to, subjects, data.Mood) {
		cells := make([]string, 0, len(subjects))
		for _, s := range subjects {
			if v := row.BySubject[s]; v != nil {
				cells = append(cells, fmt.Sprintf("%5.2f", *v))
			} else {
				cells = append(cells, "    -")
			}
		}
		fmt.Printf("  %s  %s\n", row.Date, strings.Join(cells, "  "))
	}

	tally := dashboard.MergeEmotionTallyMulti(subjects, data.Emotions)
	fmt.Printf("\nEmotions (max %d):\n", dashboard.RadarMaxMulti(tally))
	for _, row := range tally {
		cells := make([]string, 0, len(subjects))
		for _, s := range subjects {
			cells = append(cells, fmt.Sprintf("%5d", row.BySubject[s]))
		}
		fmt.Printf("  %-10s  %s\n", row.Emotion, strings.Join(cells, "  "))
	}
	return nil
}

func validateDays(days int) error {
	if days < 1 || days > 365 {
		return fmt.Errorf("days must be between 1 and 365")
	}
	return nil
}

// windowBounds parses the server-reported window, falling back to a locally
// computed one when the payload omits or mangles it.
func windowBounds(w models.DashboardWindow, days int) (time.Time, time.Time) {
	from, okFrom := sgtime.Normalize(w.From)
	to, okTo := sgtime.Normalize(w.To)
	if okFrom && okTo {
		return from, to
	}
	now := time.Now().In(sgtime.SG)
	return now.AddDate(0, 0, -(days - 1)), now
}

func subjectHeader(subjects []string, names map[string]string) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		name := names[s]
		if name == "" {
			name = s
		}
		out = append(out, fmt.Sprintf("%5.5s", name))
	}
	return out
}

// moodBar renders a coarse 1..5 scale marker for terminal output.
func moodBar(avg float64) string {
	n := int(avg + 0.5)
	if n < 1 {
		n = 1
	} else if n > 5 {
		n = 5
	}
	return strings.Repeat("█", n)
}
