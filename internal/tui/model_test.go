package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/wxlim/moodlit/internal/api"
	"github.com/wxlim/moodlit/internal/guard"
	"github.com/wxlim/moodlit/internal/keyring"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/reconcile"
	"github.com/wxlim/moodlit/internal/state"
	"github.com/wxlim/moodlit/internal/tui/components/invitelist"
)

func TestRouteFor(t *testing.T) {
	cases := []struct {
		state      SessionState
		counsellor bool
		want       guard.Route
	}{
		{StateJournal, false, guard.RouteJournal},
		{StateJournalView, false, guard.RouteJournal},
		{StateCompose, false, guard.RouteJournalCompose},
		{StateHabits, false, guard.RouteHabits},
		{StateHabitsForm, false, guard.RouteHabits},
		{StateDashboard, false, guard.RouteDashboard},
		{StateDashboard, true, guard.RouteCounsellorHome},
		{StateInvites, false, guard.RouteInvites},
		{StateInvites, true, guard.RouteClients},
		{StateLogin, false, guard.RouteUserLogin},
	}

	for _, tc := range cases {
		if got := routeFor(tc.state, tc.counsellor); got != tc.want {
			t.Errorf("routeFor(%d, %v) = %q, want %q", tc.state, tc.counsellor, got, tc.want)
		}
	}
}

func TestTabsByRole(t *testing.T) {
	user := Model{session: models.Session{IsLoggedIn: true, UserID: "u1"}}
	if got := len(user.tabs()); got != 4 {
		t.Errorf("user tabs = %d, want 4", got)
	}

	counsellor := Model{session: models.Session{IsLoggedIn: true, CounsellorID: "c1"}}
	tabs := counsellor.tabs()
	if len(tabs) != 2 {
		t.Fatalf("counsellor tabs = %d, want 2", len(tabs))
	}
	if tabs[0] != StateDashboard || tabs[1] != StateInvites {
		t.Errorf("counsellor tabs = %v, want dashboard then invites", tabs)
	}
}

func TestTodayRecord(t *testing.T) {
	now := func() time.Time {
		return time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	}

	records := []models.HabitsRecord{
		{ID: "old", CreatedAt: "2024-03-09T20:00:00+08:00"},
		{ID: "today", CreatedAt: "2024-03-10T20:00:00+08:00"},
	}
	got := todayRecord(records, now)
	if got == nil || got.ID != "today" {
		t.Fatalf("todayRecord = %+v, want the record from today", got)
	}

	// CreatedAt missing falls back to LastSavedAt.
	records = []models.HabitsRecord{
		{ID: "fallback", LastSavedAt: "2024-03-10T20:00:00+08:00"},
	}
	if got := todayRecord(records, now); got == nil || got.ID != "fallback" {
		t.Fatalf("todayRecord fallback = %+v, want the LastSavedAt match", got)
	}

	if got := todayRecord(nil, now); got != nil {
		t.Errorf("todayRecord(nil) = %+v, want nil", got)
	}
}

func TestScaled(t *testing.T) {
	if got := scaled(0, 10); got != 0 {
		t.Errorf("scaled(0, 10) = %d, want 0", got)
	}
	if got := scaled(10, 10); got != 20 {
		t.Errorf("scaled(10, 10) = %d, want 20", got)
	}
	// A non-zero count always shows at least one cell.
	if got := scaled(1, 1000); got != 1 {
		t.Errorf("scaled(1, 1000) = %d, want 1", got)
	}
	if got := scaled(5, 0); got != 20*5 {
		t.Errorf("scaled(5, 0) = %d, want clamped scale of 1", got)
	}
}

func TestStaleLoadResultDropped(t *testing.T) {
	m := Model{
		session: models.Session{IsLoggedIn: true, UserID: "u1"},
		state:   StateHabits,
		viewGen: 2,
		loading: true,
	}

	// The journal fetch we tabbed away from comes back cancelled. It must
	// not touch the habits view now on screen.
	next, _ := m.Update(journalListMsg{err: context.Canceled, gen: 1})
	m = next.(Model)
	if m.errText != "" {
		t.Errorf("abandoned fetch set errText = %q", m.errText)
	}
	if !m.loading {
		t.Error("abandoned fetch stopped the current view's loading state")
	}

	// A late success from the old view must not leak its data either.
	next, _ = m.Update(journalListMsg{entries: []models.JournalEntry{{EntryID: "e1"}}, gen: 1})
	m = next.(Model)
	if len(m.entries) != 0 {
		t.Errorf("abandoned fetch leaked %d entries", len(m.entries))
	}

	next, _ = m.Update(habitsListMsg{records: []models.HabitsRecord{{ID: "h1"}}, gen: 2})
	m = next.(Model)
	if m.loading {
		t.Error("current view's load did not clear the loading state")
	}
	if len(m.habitsList) != 1 {
		t.Errorf("habits records = %d, want 1", len(m.habitsList))
	}
}

func TestSuccessfulLoadClearsError(t *testing.T) {
	m := Model{
		session: models.Session{IsLoggedIn: true, UserID: "u1"},
		state:   StateHabits,
		viewGen: 1,
		errText: "Something went wrong, please try again",
	}

	next, _ := m.Update(habitsListMsg{records: []models.HabitsRecord{{ID: "h1"}}, gen: 1})
	m = next.(Model)
	if m.errText != "" {
		t.Errorf("errText = %q after a successful load, want it cleared", m.errText)
	}
}

func TestDecisionVerifiedBeforeConfirm(t *testing.T) {
	noneBusy := func(string) bool { return false }

	m := Model{
		session:    models.Session{IsLoggedIn: true, UserID: "u1"},
		state:      StateInvites,
		inviteList: invitelist.New(nil, false, noneBusy, 0, 0),
	}

	fresh := models.LinkRequest{ID: "r1", CounsellorUser: "c1", Status: models.StatusPending}
	next, _ := m.Update(decisionCheckMsg{
		req:     fresh,
		approve: true,
		outcome: reconcile.Outcome{CurrentStatus: models.StatusPending, Requests: []models.LinkRequest{fresh}},
	})
	m = next.(Model)
	if m.state != StateConfirmDecision {
		t.Fatalf("pending invite: state = %d, want the confirm overlay", m.state)
	}
	if m.pending == nil || m.pending.Request.ID != "r1" || !m.pending.Approve {
		t.Errorf("pending decision = %+v, want the fresh r1 approval", m.pending)
	}

	// Already decided elsewhere: the confirm overlay never comes up and
	// the list reflects the refetch.
	m = Model{
		session:    models.Session{IsLoggedIn: true, UserID: "u1"},
		state:      StateInvites,
		inviteList: invitelist.New(nil, false, noneBusy, 0, 0),
	}
	approved := models.LinkRequest{ID: "r2", CounsellorUser: "c2", Status: models.StatusApproved}
	next, _ = m.Update(decisionCheckMsg{
		req:     approved,
		approve: true,
		outcome: reconcile.Outcome{Reason: reconcile.ReasonStale, CurrentStatus: models.StatusApproved, Requests: []models.LinkRequest{approved}},
	})
	m = next.(Model)
	if m.state != StateInvites || m.pending != nil {
		t.Error("stale invite must not reach the confirm overlay")
	}
	if m.infoText == "" {
		t.Error("expected a message explaining why nothing was submitted")
	}
	if len(m.invites) != 1 || m.invites[0].Status != models.StatusApproved {
		t.Errorf("invites = %+v, want the refetched approved request", m.invites)
	}
}

func TestLogoutDeletesSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	dir := t.TempDir()
	cookies := keyring.New(dir)
	if err := cookies.Set("session=abc"); err != nil {
		t.Fatalf("seed cookie: %v", err)
	}
	st := state.New(filepath.Join(dir, "state.json"))
	if err := st.Load(); err != nil {
		t.Fatalf("load state: %v", err)
	}

	m := Model{deps: Deps{
		API:     api.New(srv.URL, cookies, time.Second),
		State:   st,
		Cookies: cookies,
	}}
	msg, ok := m.logoutCmd()().(sessionClearedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("logout result = %+v", msg)
	}
	if _, err := cookies.Get(); !errors.Is(err, keyring.ErrNotFound) {
		t.Errorf("cookie Get after logout = %v, want ErrNotFound", err)
	}
}
