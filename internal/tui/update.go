package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/wxlim/moodlit/internal/api"
	"github.com/wxlim/moodlit/internal/logger"
	"github.com/wxlim/moodlit/internal/ml"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/reconcile"
	"github.com/wxlim/moodlit/internal/sgtime"
	"github.com/wxlim/moodlit/internal/tui/components/invitelist"
	"github.com/wxlim/moodlit/internal/tui/components/journallist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.journalList.SetSize(msg.Width-4, msg.Height-6)
		m.inviteList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case initMsg:
		return m, m.enterView(m.state)

	case tea.FocusMsg, tea.ResumeMsg:
		// The "logged today" answer may have gone stale while the terminal
		// was in the background or the process suspended.
		if m.session.IsUser() {
			return m, m.refreshHabitsCmd(context.Background(), m.session.UserID)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case journallist.ComposeMsg:
		cmd := m.navigate(StateCompose)
		if m.state == StateCompose {
			m.startComposeForm()
			return m, tea.Batch(cmd, m.form.Init())
		}
		return m, cmd

	case journallist.OpenEntryMsg:
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadEntryCmd(m.freshViewContext(), msg.Entry.EntryID, m.session.UserID))

	case journallist.ArchiveEntryMsg:
		m.pendingArchive = msg.ID
		m.previousState = m.state
		m.state = StateConfirmArchive
		return m, nil

	case invitelist.DecideMsg:
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.checkInviteCmd(msg.Request, msg.Approve))

	case decisionCheckMsg:
		return m.onDecisionCheck(msg)

	case loginResultMsg:
		return m.onLoginResult(msg)
	case sessionClearedMsg:
		if msg.err != nil {
			logger.Warn("failed to clear session flags", "err", msg.err)
		}
		m.session = models.Session{}
		m.bindSession()
		return m, m.form.Init()
	case journalListMsg:
		if msg.gen != m.viewGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		m.errText = ""
		m.entries = msg.entries
		m.journalList.SetEntries(msg.entries)
		return m, nil
	case journalEntryMsg:
		if msg.gen != m.viewGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		m.errText = ""
		m.viewingEntry = msg.entry
		m.state = StateJournalView
		return m, nil
	case journalSavedMsg:
		return m.onJournalSaved(msg)
	case journalArchivedMsg:
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		m.infoText = "Entry archived"
		return m, m.navigate(StateJournal)
	case habitsStatusMsg:
		if errors.Is(msg.err, context.Canceled) {
			// A re-check torn down with its view says nothing about today.
			return m, nil
		}
		m.habitsStatus = msg.status
		m.statusKnown = true
		if msg.err != nil {
			logger.Warn("habits fetch failed, using local marker", "err", msg.err)
		}
		return m, nil
	case habitsListMsg:
		if msg.gen != m.viewGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		m.errText = ""
		m.habitsList = msg.records
		return m, nil
	case habitsSavedMsg:
		return m.onHabitsSaved(msg)
	case habitsArchivedMsg:
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		if msg.wasToday {
			if err := m.deps.State.ClearHabitsMarker(); err != nil {
				logger.Warn("failed to clear habits marker", "err", err)
			}
		}
		m.infoText = "Habits record archived"
		return m, m.navigate(StateHabits)
	case dashboardMsg:
		if msg.gen != m.viewGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		m.errText = ""
		m.dashboard = msg.data
		m.emotionTable = buildEmotionTable(msg.data, m.session.IsCounsellor())
		return m, nil
	case invitesMsg:
		if msg.gen != m.viewGen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		m.errText = ""
		m.invites = msg.requests
		m.inviteList.SetRequests(msg.requests)
		return m, nil
	case inviteSentMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.onLoadError(msg.err)
		}
		m.infoText = fmt.Sprintf("Invite sent to %s", msg.userID)
		return m, m.navigate(StateInvites)
	case decisionMsg:
		return m.onDecision(msg)

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	if m.inForm() && m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) inForm() bool {
	switch m.state {
	case StateLogin, StateCompose, StateHabitsForm, StateInviteSend:
		return true
	}
	return false
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		if m.viewCancel != nil {
			m.viewCancel()
		}
		return m, tea.Quit
	}

	if m.inForm() {
		return m.updateForm(msg)
	}

	switch m.state {
	case StateConfirmArchive:
		switch msg.String() {
		case "y", "enter":
			id := m.pendingArchive
			m.pendingArchive = ""
			m.state = m.previousState
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.archiveJournalCmd(id, m.session.UserID))
		case "n", "esc":
			m.pendingArchive = ""
			m.state = m.previousState
			return m, nil
		}
		return m, nil

	case StateConfirmDecision:
		switch msg.String() {
		case "y", "enter":
			p := m.pending
			m.pending = nil
			m.state = m.previousState
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.decideInviteCmd(p.Request, p.Approve))
		case "n", "esc":
			m.pending = nil
			m.state = m.previousState
			return m, nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Tab), key.Matches(msg, m.keys.ShiftTab):
		tabs := m.tabs()
		cur := 0
		for i, s := range tabs {
			if s == m.state {
				cur = i
				break
			}
		}
		if key.Matches(msg, m.keys.Tab) {
			cur = (cur + 1) % len(tabs)
		} else {
			cur = (cur - 1 + len(tabs)) % len(tabs)
		}
		return m, m.navigate(tabs[cur])

	case key.Matches(msg, m.keys.Logout):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.logoutCmd())
	}

	switch m.state {
	case StateJournalView:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, m.navigate(StateJournal)
		case key.Matches(msg, m.keys.Archive):
			m.pendingArchive = m.viewingEntry.EntryID
			m.previousState = StateJournal
			m.state = StateConfirmArchive
			return m, nil
		}
		return m, nil

	case StateJournal:
		var cmd tea.Cmd
		m.journalList, cmd = m.journalList.Update(msg)
		return m, cmd

	case StateHabits:
		switch {
		case key.Matches(msg, m.keys.Add):
			cmd := m.navigate(StateHabitsForm)
			if m.state == StateHabitsForm {
				// Editing today's record when one exists, logging otherwise.
				m.startHabitsForm(todayRecord(m.habitsList, time.Now))
				return m, tea.Batch(cmd, m.form.Init())
			}
			return m, cmd
		case key.Matches(msg, m.keys.Refresh):
			ctx := m.freshViewContext()
			m.loading = true
			return m, tea.Batch(
				m.spinner.Tick,
				m.loadHabitsCmd(ctx, m.session.UserID),
				m.refreshHabitsCmd(ctx, m.session.UserID),
			)
		}
		return m, nil

	case StateDashboard:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.enterView(StateDashboard)
		}
		return m, nil

	case StateInvites:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, m.enterView(StateInvites)
		case key.Matches(msg, m.keys.Add) && m.session.IsCounsellor():
			cmd := m.navigate(StateInviteSend)
			if m.state == StateInviteSend {
				m.startInviteForm()
				return m, tea.Batch(cmd, m.form.Init())
			}
			return m, cmd
		}
		var cmd tea.Cmd
		m.inviteList, cmd = m.inviteList.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.onFormCompleted(cmd)
	case huh.StateAborted:
		return m.onFormAborted()
	}
	return m, cmd
}

func (m Model) onFormCompleted(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateLogin:
		f := m.loginForm
		m.loading = true
		m.errText = ""
		return m, tea.Batch(cmd, m.spinner.Tick, m.loginCmd(f.Email, f.Password, f.Counsellor))

	case StateCompose:
		f := m.composeForm
		m.loading = true
		m.errText = ""
		in := models.JournalInput{
			UserID:     m.session.UserID,
			Mood:       f.Mood,
			EntryTitle: f.Title,
		}
		return m, tea.Batch(cmd, m.spinner.Tick, m.submitJournalCmd(in, f.Text))

	case StateHabitsForm:
		f := m.habitsForm
		sleep, _ := strconv.ParseFloat(f.Sleep, 64)
		water, _ := strconv.ParseFloat(f.Water, 64)
		work, _ := strconv.ParseFloat(f.Work, 64)
		m.loading = true
		m.errText = ""
		in := models.HabitsInput{
			UserID:      m.session.UserID,
			SleepHours:  sleep,
			WaterLitres: water,
			WorkHours:   work,
		}
		return m, tea.Batch(cmd, m.spinner.Tick, m.saveHabitsCmd(in, f.EditID))

	case StateInviteSend:
		f := m.inviteForm
		m.loading = true
		m.errText = ""
		return m, tea.Batch(cmd, m.spinner.Tick, m.sendInviteCmd(strings.TrimSpace(f.UserID)))
	}
	return m, cmd
}

func (m Model) onFormAborted() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateLogin:
		// Nowhere to go back to without a session.
		m.startLoginForm(m.loginForm != nil && m.loginForm.Counsellor)
		return m, m.form.Init()
	case StateCompose:
		return m, m.navigate(StateJournal)
	case StateHabitsForm:
		return m, m.navigate(StateHabits)
	case StateInviteSend:
		return m, m.navigate(StateInvites)
	}
	return m, nil
}

func (m Model) onLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		// A failed login leaves no half-written identity behind.
		if err := m.deps.State.ClearSession(); err != nil {
			logger.Warn("failed to clear session flags", "err", err)
		}
		m.errText = api.UserMessage(msg.err)
		m.startLoginForm(m.loginForm != nil && m.loginForm.Counsellor)
		return m, m.form.Init()
	}

	if err := m.deps.State.SaveSession(msg.sess); err != nil {
		logger.Warn("failed to persist session flags", "err", err)
	}
	m.session = msg.sess
	m.bindSession()

	// Resume the view the guard bounced us from, if it is still allowed.
	target := m.state
	if m.returnTo != "" {
		for _, s := range m.tabs() {
			if routeFor(s, m.session.IsCounsellor()) == m.returnTo {
				target = s
				break
			}
		}
		m.returnTo = ""
	}
	return m, m.navigate(target)
}

func (m Model) onJournalSaved(msg journalSavedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, ml.ErrPredictionFailed) {
			// The draft survives a classifier failure.
			m.errText = "Emotion analysis failed, your entry was not saved. Try again."
			m.state = StateCompose
			m.form = buildComposeForm(m.composeForm)
			return m, m.form.Init()
		}
		return m, m.onLoadError(msg.err)
	}
	m.infoText = "Entry saved"
	if m.session.ShowEmotion && len(msg.entry.Emotions) > 0 {
		m.infoText = fmt.Sprintf("Entry saved. Emotions: %s", strings.Join(msg.entry.Emotions, ", "))
	}
	return m, m.navigate(StateJournal)
}

func (m Model) onHabitsSaved(msg habitsSavedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		return m, m.onLoadError(msg.err)
	}

	ts := msg.record.LastSavedAt
	if ts == "" {
		ts = msg.record.CreatedAt
	}
	if err := m.deps.State.SetHabitsMarker(ts); err != nil {
		logger.Warn("failed to set habits marker", "err", err)
	}
	m.infoText = "Habits saved"
	return m, m.navigate(StateHabits)
}

// onDecisionCheck applies the pre-confirmation verify: a still-pending
// invite moves on to the confirm overlay with its fresh data, anything
// else is reported without confirming.
func (m Model) onDecisionCheck(msg decisionCheckMsg) (tea.Model, tea.Cmd) {
	if m.state != StateInvites {
		// The user navigated away while the check was in flight.
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		return m, m.onLoadError(msg.err)
	}

	if len(msg.outcome.Requests) > 0 {
		m.invites = msg.outcome.Requests
		m.inviteList.SetRequests(msg.outcome.Requests)
	}
	if msg.outcome.Reason == reconcile.ReasonStale {
		m.infoText = staleDecisionText(msg.outcome)
		return m, nil
	}

	m.pending = &pendingDecision{Request: msg.req, Approve: msg.approve}
	m.previousState = m.state
	m.state = StateConfirmDecision
	return m, nil
}

func (m Model) onDecision(msg decisionMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, reconcile.ErrDecisionInFlight) {
			m.infoText = "That invite is already being decided"
			return m, nil
		}
		return m, m.onLoadError(msg.err)
	}

	if len(msg.outcome.Requests) > 0 {
		m.invites = msg.outcome.Requests
		m.inviteList.SetRequests(msg.outcome.Requests)
	}
	switch msg.outcome.Reason {
	case reconcile.ReasonStale, reconcile.ReasonConflict:
		m.infoText = staleDecisionText(msg.outcome)
	default:
		m.infoText = fmt.Sprintf("Invite %s", msg.outcome.CurrentStatus)
	}
	return m, nil
}

func staleDecisionText(out reconcile.Outcome) string {
	if out.Reason == reconcile.ReasonStale && out.CurrentStatus == models.StatusPending {
		// The request vanished from the list without a known decision.
		return "That invite is no longer in your list, nothing was submitted"
	}
	return fmt.Sprintf("This invite was already decided elsewhere, it is now %s", out.CurrentStatus)
}

// onLoadError maps a fetch or submit failure onto the screen. 401/403 is
// session invalidation: flags are cleared and the login form comes up.
func (m *Model) onLoadError(err error) tea.Cmd {
	if errors.Is(err, api.ErrUnauthorized) {
		m.clearCookie()
		if cerr := m.deps.State.ClearSession(); cerr != nil {
			logger.Warn("failed to clear session flags", "err", cerr)
		}
		m.session = models.Session{}
		m.bindSession()
		m.errText = "Your session has expired, please log in again"
		return m.form.Init()
	}
	m.errText = api.UserMessage(err)
	return nil
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func validateHours(limit float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if v < 0 || v > limit {
			return fmt.Errorf("must be between 0 and %g", limit)
		}
		return nil
	}
}

func sameDayAsToday(ts string, now func() time.Time) bool {
	return sgtime.DayKey(ts) == sgtime.TodayKey(now)
}

