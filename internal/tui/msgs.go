package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/reconcile"
)

// Async results. Every fetch carries its error so Update stays the single
// place that decides what a failure means for the screen.

type sessionClearedMsg struct{ err error }

type loginResultMsg struct {
	sess models.Session
	err  error
}

type journalListMsg struct {
	entries []models.JournalEntry
	gen     int
	err     error
}

type journalEntryMsg struct {
	entry models.JournalEntry
	gen   int
	err   error
}

type journalSavedMsg struct {
	entry models.JournalEntry
	err   error
}

type journalArchivedMsg struct {
	id  string
	err error
}

type habitsStatusMsg struct {
	status reconcile.HabitsStatus
	err    error
}

type habitsListMsg struct {
	records []models.HabitsRecord
	gen     int
	err     error
}

type habitsSavedMsg struct {
	record models.HabitsRecord
	err    error
}

type habitsArchivedMsg struct {
	id       string
	wasToday bool
	err      error
}

type dashboardMsg struct {
	data models.Dashboard
	gen  int
	err  error
}

type invitesMsg struct {
	requests []models.LinkRequest
	gen      int
	err      error
}

type inviteSentMsg struct {
	userID string
	err    error
}

type decisionCheckMsg struct {
	req     models.LinkRequest
	approve bool
	outcome reconcile.Outcome
	err     error
}

type decisionMsg struct {
	id      string
	outcome reconcile.Outcome
	err     error
}

func (m *Model) loadJournalCmd(ctx context.Context, userID string) tea.Cmd {
	gen := m.viewGen
	return func() tea.Msg {
		entries, err := m.deps.API.JournalAll(ctx, userID)
		return journalListMsg{entries: entries, gen: gen, err: err}
	}
}

func (m *Model) loadEntryCmd(ctx context.Context, entryID, userID string) tea.Cmd {
	gen := m.viewGen
	return func() tea.Msg {
		entry, err := m.deps.API.JournalEntry(ctx, entryID, userID)
		return journalEntryMsg{entry: entry, gen: gen, err: err}
	}
}

// submitJournalCmd runs the classify-then-store pipeline. A classifier
// failure aborts before anything reaches the backend.
func (m *Model) submitJournalCmd(in models.JournalInput, text string) tea.Cmd {
	return func() tea.Msg {
		emotions, err := m.deps.ML.Predict(context.Background(), text)
		if err != nil {
			return journalSavedMsg{err: err}
		}
		in.Emotions = emotions
		in.EntryText = text
		entry, err := m.deps.API.SubmitJournal(context.Background(), in)
		return journalSavedMsg{entry: entry, err: err}
	}
}

func (m *Model) archiveJournalCmd(entryID, userID string) tea.Cmd {
	return func() tea.Msg {
		err := m.deps.API.ArchiveJournal(context.Background(), entryID, userID)
		return journalArchivedMsg{id: entryID, err: err}
	}
}

func (m *Model) refreshHabitsCmd(ctx context.Context, userID string) tea.Cmd {
	return func() tea.Msg {
		status, err := m.habitsToday.Refresh(ctx, userID)
		return habitsStatusMsg{status: status, err: err}
	}
}

func (m *Model) loadHabitsCmd(ctx context.Context, userID string) tea.Cmd {
	gen := m.viewGen
	return func() tea.Msg {
		records, err := m.deps.API.HabitsAll(ctx, userID)
		return habitsListMsg{records: records, gen: gen, err: err}
	}
}

func (m *Model) saveHabitsCmd(in models.HabitsInput, editID string) tea.Cmd {
	return func() tea.Msg {
		var (
			record models.HabitsRecord
			err    error
		)
		if editID != "" {
			record, err = m.deps.API.EditHabits(context.Background(), editID, in)
		} else {
			record, err = m.deps.API.SubmitHabits(context.Background(), in)
		}
		return habitsSavedMsg{record: record, err: err}
	}
}

func (m *Model) archiveHabitsCmd(record models.HabitsRecord, userID string, wasToday bool) tea.Cmd {
	return func() tea.Msg {
		err := m.deps.API.ArchiveHabits(context.Background(), record.ID, userID)
		return habitsArchivedMsg{id: record.ID, wasToday: wasToday, err: err}
	}
}

func (m *Model) loadDashboardCmd(ctx context.Context, days int) tea.Cmd {
	sess := m.session
	gen := m.viewGen
	return func() tea.Msg {
		var (
			data models.Dashboard
			err  error
		)
		if sess.IsCounsellor() {
			data, err = m.deps.API.CounsellorDashboardWindow(ctx, days, sess.CounsellorID)
		} else {
			data, err = m.deps.API.DashboardWindow(ctx, days)
		}
		return dashboardMsg{data: data, gen: gen, err: err}
	}
}

func (m *Model) loadInvitesCmd(ctx context.Context) tea.Cmd {
	sess := m.session
	gen := m.viewGen
	return func() tea.Msg {
		var (
			requests []models.LinkRequest
			err      error
		)
		if sess.IsCounsellor() {
			requests, err = m.deps.API.CounsellorLinkRequests(ctx, sess.CounsellorID)
		} else {
			requests, err = m.deps.API.UserLinkRequests(ctx, sess.UserID)
		}
		return invitesMsg{requests: requests, gen: gen, err: err}
	}
}

func (m *Model) sendInviteCmd(journalUserID string) tea.Cmd {
	counsellorID := m.session.CounsellorID
	return func() tea.Msg {
		err := m.deps.API.CreateLinkRequest(context.Background(), counsellorID, journalUserID)
		return inviteSentMsg{userID: journalUserID, err: err}
	}
}

// checkInviteCmd refetches and verifies an invite before the confirmation
// overlay comes up, so the user confirms against the server's current
// status rather than the rendered row.
func (m *Model) checkInviteCmd(req models.LinkRequest, approve bool) tea.Cmd {
	return func() tea.Msg {
		current, outcome, err := m.decider.Verify(context.Background(), req)
		return decisionCheckMsg{req: current, approve: approve, outcome: outcome, err: err}
	}
}

// decideInviteCmd submits a confirmed decision. The UI confirmed between
// verify and submit, so the decider's hook is nil; Decide still re-verifies
// before submitting.
func (m *Model) decideInviteCmd(req models.LinkRequest, approve bool) tea.Cmd {
	return func() tea.Msg {
		outcome, err := m.decider.Decide(context.Background(), req, approve, nil)
		return decisionMsg{id: req.ID, outcome: outcome, err: err}
	}
}

func (m *Model) loginCmd(email, password string, counsellor bool) tea.Cmd {
	return func() tea.Msg {
		login := m.deps.API.UserLogin
		if counsellor {
			login = m.deps.API.CounsellorLogin
		}
		sess, err := login(context.Background(), email, password)
		return loginResultMsg{sess: sess, err: err}
	}
}

func (m *Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		// Best effort server-side; local identity is cleared regardless.
		_ = m.deps.API.Logout(context.Background())
		m.clearCookie()
		return sessionClearedMsg{err: m.deps.State.ClearSession()}
	}
}
