package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/wxlim/moodlit/internal/api"
	"github.com/wxlim/moodlit/internal/cli"
	"github.com/wxlim/moodlit/internal/config"
	"github.com/wxlim/moodlit/internal/constants"
	"github.com/wxlim/moodlit/internal/keyring"
	"github.com/wxlim/moodlit/internal/logger"
	"github.com/wxlim/moodlit/internal/ml"
	"github.com/wxlim/moodlit/internal/state"
)

var CLI struct {
	Version kong.VersionFlag
	State   string `help:"State store path (.json selects the JSON store)." type:"path"`
	Debug   bool   `help:"Verbose logging to stderr."`

	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Login  cli.LoginCmd  `cmd:"" help:"Log in as a journal user."`
	Clogin cli.CLoginCmd `cmd:"" help:"Log in as a counsellor."`
	Logout cli.LogoutCmd `cmd:"" help:"Log out and clear the local session."`
	Whoami cli.WhoamiCmd `cmd:"" help:"Show the current identity."`

	Journal struct {
		List    cli.JournalListCmd    `cmd:"" help:"List journal entries." default:"1"`
		View    cli.JournalViewCmd    `cmd:"" help:"Show one entry."`
		Add     cli.JournalAddCmd     `cmd:"" help:"Write a new entry."`
		Archive cli.JournalArchiveCmd `cmd:"" help:"Archive an entry."`
	} `cmd:"" help:"Manage journal entries."`

	Habits struct {
		List    cli.HabitsListCmd    `cmd:"" help:"List habit records." default:"1"`
		Today   cli.HabitsTodayCmd   `cmd:"" help:"Check whether today's habits are logged."`
		Log     cli.HabitsLogCmd     `cmd:"" help:"Log today's habits."`
		Edit    cli.HabitsEditCmd    `cmd:"" help:"Edit a habit record."`
		Archive cli.HabitsArchiveCmd `cmd:"" help:"Archive a habit record."`
	} `cmd:"" help:"Manage habit logs."`

	Dashboard  cli.DashboardCmd  `cmd:"" help:"Show your mood and emotion dashboard."`
	Cdashboard cli.CDashboardCmd `cmd:"" help:"Show the counsellor clients dashboard."`

	Invites struct {
		List    cli.InvitesCmd       `cmd:"" help:"List invites." default:"1"`
		Send    cli.InviteSendCmd    `cmd:"" help:"Invite a journal user (counsellor only)."`
		Approve cli.InviteApproveCmd `cmd:"" help:"Approve a pending invite."`
		Reject  cli.InviteRejectCmd  `cmd:"" help:"Reject a pending invite."`
	} `cmd:"" help:"Manage counsellor link invites."`

	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks."`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Journaling and habit companion with mood dashboards"),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	cfg := config.Load()
	if CLI.State != "" {
		cfg.StatePath = CLI.State
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Debug("starting", "run", uuid.NewString(), "version", constants.Version)

	cookies := keyring.New(cfg.ConfigDir)
	appCtx := &cli.Context{
		Config:  cfg,
		State:   state.New(cfg.StatePath),
		API:     api.New(cfg.APIBaseURL, cookies, cfg.MutationTimeout),
		ML:      ml.New(cfg.MLBaseURL, cfg.MutationTimeout),
		Cookies: cookies,
	}
	defer func() {
		if err := appCtx.State.Close(); err != nil {
			logger.Warn("failed to close state store", "err", err)
		}
	}()

	return ctx.Run(appCtx)
}
