// Package tui is the full-screen interface: login, journal, habits,
// dashboard and invites in one bubbletea program. Navigation is gated by the
// advisory guards; data loads are asynchronous commands whose results flow
// back through Update.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/wxlim/moodlit/internal/api"
	"github.com/wxlim/moodlit/internal/config"
	"github.com/wxlim/moodlit/internal/constants"
	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/keyring"
	"github.com/wxlim/moodlit/internal/logger"
	"github.com/wxlim/moodlit/internal/ml"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/reconcile"
	"github.com/wxlim/moodlit/internal/state"
	"github.com/wxlim/moodlit/internal/tui/components/invitelist"
	"github.com/wxlim/moodlit/internal/tui/components/journallist"
)

type SessionState int

const (
	StateLogin SessionState = iota
	StateJournal
	StateJournalView
	StateCompose
	StateHabits
	StateHabitsForm
	StateDashboard
	StateInvites
	StateInviteSend
	StateConfirmDecision
	StateConfirmArchive
)

// Deps are the shared services the TUI runs against.
type Deps struct {
	Config  *config.Config
	State   state.Provider
	API     *api.Client
	ML      *ml.Client
	Cookies *keyring.Store
}

type LoginFormModel struct {
	Email      string
	Password   string
	Counsellor bool
}

type ComposeFormModel struct {
	Title string
	Text  string
	Mood  models.Mood
}

type HabitsFormModel struct {
	Sleep string
	Water string
	Work  string
	// EditID is set when the form edits an existing record.
	EditID string
}

type InviteFormModel struct {
	UserID string
}

type pendingDecision struct {
	Request models.LinkRequest
	Approve bool
}

type Model struct {
	deps    Deps
	session models.Session

	state         SessionState
	previousState SessionState
	returnTo      guard.Route

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	journalList journallist.Model
	inviteList  invitelist.Model

	form        *huh.Form
	loginForm   *LoginFormModel
	composeForm *ComposeFormModel
	habitsForm  *HabitsFormModel
	inviteForm  *InviteFormModel

	habitsToday *reconcile.HabitsToday
	decider     *reconcile.Decider

	entries      []models.JournalEntry
	viewingEntry models.JournalEntry
	habitsList   []models.HabitsRecord
	habitsStatus reconcile.HabitsStatus
	statusKnown  bool
	dashboard    models.Dashboard
	emotionTable table.Model
	invites      []models.LinkRequest

	pending        *pendingDecision
	pendingArchive string

	// viewCancel stops fetches for the view being left. viewGen stamps
	// each view's fetches; a completion carrying an older stamp belongs
	// to an abandoned screen and is dropped, cancelled or not.
	viewCtx    context.Context
	viewCancel context.CancelFunc
	viewGen    int

	errText  string
	infoText string
	loading  bool
	quitting bool
	width    int
	height   int
}

func NewModel(deps Deps) Model {
	sess, err := loadSession(deps.State)
	if err != nil {
		sess = models.Session{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		deps:         deps,
		session:      sess,
		state:        StateLogin,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		journalList:  journallist.New(nil, 0, 0),
		emotionTable: table.New(),
	}
	m.bindSession()
	return m
}

func loadSession(st state.Provider) (models.Session, error) {
	if err := st.Load(); err != nil {
		return models.Session{}, err
	}
	return st.Session()
}

// bindSession rebuilds the per-identity helpers after login, logout or a
// server-forced invalidation.
func (m *Model) bindSession() {
	m.habitsToday = reconcile.NewHabitsToday(m.deps.API.HabitsAll, m.deps.State, nil)
	m.decider = reconcile.NewDecider(m.deps.API, m.session.UserID)
	m.inviteList = invitelist.New(nil, m.session.IsCounsellor(), m.decider.Busy, 0, 0)
	m.statusKnown = false
	if m.session.IsUser() {
		m.state = StateJournal
	} else if m.session.IsCounsellor() {
		m.state = StateDashboard
	} else {
		m.state = StateLogin
		m.startLoginForm(false)
	}
}

func (m *Model) freshViewContext() context.Context {
	if m.viewCancel != nil {
		m.viewCancel()
	}
	m.viewGen++
	m.viewCtx, m.viewCancel = context.WithCancel(context.Background())
	return m.viewCtx
}

// clearCookie drops the stored session cookie, mirroring what the CLI does
// on logout and server-forced invalidation.
func (m *Model) clearCookie() {
	if m.deps.Cookies == nil {
		return
	}
	if err := m.deps.Cookies.Delete(); err != nil {
		logger.Warn("failed to delete session cookie", "err", err)
	}
}

// tabs lists the reachable top-level views for the current role.
func (m Model) tabs() []SessionState {
	if m.session.IsCounsellor() {
		return []SessionState{StateDashboard, StateInvites}
	}
	return []SessionState{StateJournal, StateHabits, StateDashboard, StateInvites}
}

func routeFor(s SessionState, counsellor bool) guard.Route {
	switch s {
	case StateLogin:
		return guard.RouteUserLogin
	case StateJournal, StateJournalView:
		return guard.RouteJournal
	case StateCompose:
		return guard.RouteJournalCompose
	case StateHabits, StateHabitsForm:
		return guard.RouteHabits
	case StateDashboard:
		if counsellor {
			return guard.RouteCounsellorHome
		}
		return guard.RouteDashboard
	case StateInvites:
		if counsellor {
			return guard.RouteClients
		}
		return guard.RouteInvites
	case StateInviteSend:
		return guard.RouteClients
	default:
		return guard.RouteUserHome
	}
}

// navigate applies the guard for the requested view and enters either it or
// the guard's redirect target, kicking off that view's initial load.
func (m *Model) navigate(target SessionState) tea.Cmd {
	route := routeFor(target, m.session.IsCounsellor())
	d := guard.For(m.session, route)
	if !d.Allow {
		switch d.RedirectTo {
		case guard.RouteUserLogin:
			m.returnTo = d.Return
			m.state = StateLogin
			m.startLoginForm(false)
			return nil
		case guard.RouteCounsellorLogin:
			m.returnTo = d.Return
			m.state = StateLogin
			m.startLoginForm(true)
			return nil
		default:
			// Anti-login bounce: an authenticated session lands on its home.
			if m.session.IsCounsellor() {
				target = StateDashboard
			} else {
				target = StateJournal
			}
		}
	}

	m.errText = ""
	m.infoText = ""
	m.state = target
	return m.enterView(target)
}

// enterView starts the loads the target screen needs.
func (m *Model) enterView(target SessionState) tea.Cmd {
	ctx := m.freshViewContext()
	switch target {
	case StateJournal:
		m.loading = true
		return tea.Batch(m.spinner.Tick, m.loadJournalCmd(ctx, m.session.UserID))
	case StateHabits:
		m.loading = true
		return tea.Batch(
			m.spinner.Tick,
			m.loadHabitsCmd(ctx, m.session.UserID),
			m.refreshHabitsCmd(ctx, m.session.UserID),
		)
	case StateDashboard:
		m.loading = true
		return tea.Batch(m.spinner.Tick, m.loadDashboardCmd(ctx, constants.DefaultDashboardDays))
	case StateInvites:
		m.loading = true
		return tea.Batch(m.spinner.Tick, m.loadInvitesCmd(ctx))
	default:
		return nil
	}
}

func (m *Model) startLoginForm(counsellor bool) {
	f := &LoginFormModel{Counsellor: counsellor}
	m.loginForm = f
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Log in as").
			Affirmative("Counsellor").
			Negative("Journal user").
			Value(&f.Counsellor),
		huh.NewInput().
			Title("Email").
			Value(&f.Email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&f.Password),
	))
}

func (m *Model) startComposeForm() {
	m.composeForm = &ComposeFormModel{Mood: models.MoodNeutral}
	m.form = buildComposeForm(m.composeForm)
}

// buildComposeForm binds a form to f, so a failed submit can re-present the
// same draft instead of losing it.
func buildComposeForm(f *ComposeFormModel) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Title").
			Value(&f.Title),
		huh.NewText().
			Title("What's on your mind?").
			Value(&f.Text),
		huh.NewSelect[models.Mood]().
			Title("Mood").
			Options(
				huh.NewOption(models.MoodVeryBad.Label(), models.MoodVeryBad),
				huh.NewOption(models.MoodBad.Label(), models.MoodBad),
				huh.NewOption(models.MoodNeutral.Label(), models.MoodNeutral),
				huh.NewOption(models.MoodGood.Label(), models.MoodGood),
				huh.NewOption(models.MoodVeryGood.Label(), models.MoodVeryGood),
			).
			Value(&f.Mood),
	))
}

func (m *Model) startInviteForm() {
	f := &InviteFormModel{}
	m.inviteForm = f
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Journal user ID to invite").
			Value(&f.UserID),
	))
}

func (m *Model) startHabitsForm(existing *models.HabitsRecord) {
	f := &HabitsFormModel{}
	if existing != nil {
		f.EditID = existing.ID
		f.Sleep = formatHours(existing.SleepHours)
		f.Water = formatHours(existing.WaterLitres)
		f.Work = formatHours(existing.WorkHours)
	}
	m.habitsForm = f
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Hours slept").
			Validate(validateHours(24)).
			Value(&f.Sleep),
		huh.NewInput().
			Title("Litres of water").
			Validate(validateHours(100)).
			Value(&f.Water),
		huh.NewInput().
			Title("Hours worked").
			Validate(validateHours(24)).
			Value(&f.Work),
	))
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateJournal:
		keys = append(keys, m.keys.Add, m.keys.Archive)
	case StateHabits:
		keys = append(keys, m.keys.Add, m.keys.Refresh)
	case StateInvites:
		if m.session.IsCounsellor() {
			keys = append(keys, m.keys.Add)
		} else {
			keys = append(keys, m.keys.Approve, m.keys.Reject)
		}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help},
		{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Back},
		{m.keys.Add, m.keys.Archive, m.keys.Approve, m.keys.Reject, m.keys.Refresh, m.keys.Logout},
	}
}

type initMsg struct{}

func (m Model) Init() tea.Cmd {
	if m.state == StateLogin {
		return m.form.Init()
	}
	// Re-entering with a persisted session goes straight to the home view;
	// the initial load is dispatched from Update so its context handle
	// survives.
	return func() tea.Msg { return initMsg{} }
}

func todayRecord(records []models.HabitsRecord, now func() time.Time) *models.HabitsRecord {
	for i := range records {
		ts := records[i].CreatedAt
		if ts == "" {
			ts = records[i].LastSavedAt
		}
		if sameDayAsToday(ts, now) {
			return &records[i]
		}
	}
	return nil
}
