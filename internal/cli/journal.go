package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/ml"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/sgtime"
)

type JournalListCmd struct{}

func (c *JournalListCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteJournal)
	if err != nil {
		return err
	}

	entries, err := ctx.API.JournalAll(context.Background(), sess.UserID)
	if err != nil {
		return ctx.handleAPIError(err)
	}
	if len(entries) == 0 {
		fmt.Println("No journal entries yet")
		return nil
	}

	fmt.Println("Journal entries:")
	for _, e := range entries {
		fmt.Printf("  %s  %s - %s (%s)\n", e.EntryID, sgtime.FormatDateTime(e.CreatedAt), e.EntryTitle, e.Mood.Label())
	}
	return nil
}

type JournalViewCmd struct {
	ID string `arg:"" help:"Entry ID."`
}

func (c *JournalViewCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteJournal)
	if err != nil {
		return err
	}

	entry, err := ctx.API.JournalEntry(context.Background(), c.ID, sess.UserID)
	if err != nil {
		return ctx.handleAPIError(err)
	}

	fmt.Printf("%s\n", entry.EntryTitle)
	fmt.Printf("Written on %s\n", sgtime.FormatOrdinal(entry.CreatedAt))
	fmt.Printf("Mood: %s\n", entry.Mood.Label())
	if sess.ShowEmotion && len(entry.Emotions) > 0 {
		fmt.Printf("Emotions: %s\n", strings.Join(entry.Emotions, ", "))
	}
	fmt.Printf("\n%s\n", entry.EntryText)
	return nil
}

type JournalAddCmd struct {
	Title string `short:"t" help:"Entry title. Prompted for when omitted."`
}

func (c *JournalAddCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteJournalCompose)
	if err != nil {
		return err
	}

	title := c.Title
	var text string
	mood := models.MoodNeutral

	fields := []huh.Field{}
	if title == "" {
		fields = append(fields, huh.NewInput().
			Title("Title").
			Validate(notBlank("title")).
			Value(&title))
	}
	fields = append(fields,
		huh.NewText().
			Title("What's on your mind?").
			Validate(notBlank("entry text")).
			Value(&text),
		huh.NewSelect[models.Mood]().
			Title("Mood").
			Options(
				huh.NewOption(models.MoodVeryBad.Label(), models.MoodVeryBad),
				huh.NewOption(models.MoodBad.Label(), models.MoodBad),
				huh.NewOption(models.MoodNeutral.Label(), models.MoodNeutral),
				huh.NewOption(models.MoodGood.Label(), models.MoodGood),
				huh.NewOption(models.MoodVeryGood.Label(), models.MoodVeryGood),
			).
			Value(&mood))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	// Classification gates submission: an entry is never stored without
	// its emotion labels.
	emotions, err := ctx.ML.Predict(context.Background(), text)
	if err != nil {
		if errors.Is(err, ml.ErrPredictionFailed) {
			return fmt.Errorf("emotion analysis failed, entry not saved: %v", err)
		}
		return err
	}

	entry, err := ctx.API.SubmitJournal(context.Background(), models.JournalInput{
		UserID:     sess.UserID,
		Mood:       mood,
		EntryTitle: title,
		EntryText:  text,
		Emotions:   emotions,
	})
	if err != nil {
		return ctx.handleAPIError(err)
	}

	fmt.Printf("Saved entry %s\n", entry.EntryID)
	if sess.ShowEmotion {
		fmt.Printf("Emotions: %s\n", strings.Join(emotions, ", "))
	}
	return nil
}

type JournalArchiveCmd struct {
	ID string `arg:"" help:"Entry ID."`
}

func (c *JournalArchiveCmd) Run(ctx *Context) error {
	sess, err := ctx.requireUser(guard.RouteJournal)
	if err != nil {
		return err
	}

	if err := ctx.API.ArchiveJournal(context.Background(), c.ID, sess.UserID); err != nil {
		return ctx.handleAPIError(err)
	}
	fmt.Printf("Archived entry %s\n", c.ID)
	return nil
}

func notBlank(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}
