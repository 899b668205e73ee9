package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wxlim/moodlit/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	if err := ctx.State.Load(); err != nil {
		return err
	}

	deps := tui.Deps{
		Config:  ctx.Config,
		State:   ctx.State,
		API:     ctx.API,
		ML:      ctx.ML,
		Cookies: ctx.Cookies,
	}
	// Focus reporting drives the habits re-check when the terminal regains
	// focus.
	p := tea.NewProgram(tui.NewModel(deps), tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
	return nil
}
