package invitelist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/sgtime"
)

type DecideMsg struct {
	Request models.LinkRequest
	Approve bool
}

type Item struct {
	Request models.LinkRequest
	// Counsellor flips which side of the link the row names.
	Counsellor bool
	// Busy disables this row's actions while its decision is in flight.
	Busy bool
}

func (i Item) Title() string {
	who := i.Request.CounsellorUser
	if i.Counsellor {
		who = i.Request.JournalUser
	}
	if i.Busy {
		return who + " (deciding...)"
	}
	return who
}

func (i Item) Description() string {
	return fmt.Sprintf("%s | %s", i.Request.Status, sgtime.FormatDate(i.Request.RequestedAt))
}

func (i Item) FilterValue() string {
	if i.Counsellor {
		return i.Request.JournalUser
	}
	return i.Request.CounsellorUser
}

type KeyMap struct {
	Approve key.Binding
	Reject  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Approve: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "reject"),
		),
	}
}

type Model struct {
	list       list.Model
	keys       KeyMap
	counsellor bool
	busy       func(id string) bool
}

// New builds the invite list. busy reports whether a decision for a given
// invite is in flight; rows with a decision in flight keep rendering but
// stop emitting DecideMsg.
func New(requests []models.LinkRequest, counsellor bool, busy func(id string) bool, width, height int) Model {
	if busy == nil {
		busy = func(string) bool { return false }
	}
	m := Model{keys: DefaultKeyMap(), counsellor: counsellor, busy: busy}
	m.list = list.New(m.toItems(requests), list.NewDefaultDelegate(), width, height)
	m.list.Title = "Invites"
	m.list.SetShowTitle(false)
	m.list.SetShowHelp(false)

	keys := m.keys
	if !counsellor {
		m.list.AdditionalShortHelpKeys = func() []key.Binding {
			return []key.Binding{keys.Approve, keys.Reject}
		}
		m.list.AdditionalFullHelpKeys = func() []key.Binding {
			return []key.Binding{keys.Approve, keys.Reject}
		}
	}
	return m
}

func (m Model) toItems(requests []models.LinkRequest) []list.Item {
	items := make([]list.Item, len(requests))
	for i, r := range requests {
		items[i] = Item{Request: r, Counsellor: m.counsellor, Busy: m.busy(r.ID)}
	}
	return items
}

func (m *Model) SetRequests(requests []models.LinkRequest) {
	m.list.SetItems(m.toItems(requests))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering || m.counsellor {
			break
		}
		approve, matched := false, false
		switch {
		case key.Matches(msg, m.keys.Approve):
			approve, matched = true, true
		case key.Matches(msg, m.keys.Reject):
			matched = true
		}
		if matched {
			if i, ok := m.list.SelectedItem().(Item); ok {
				if i.Request.Status == models.StatusPending && !m.busy(i.Request.ID) {
					req := i.Request
					return m, func() tea.Msg { return DecideMsg{Request: req, Approve: approve} }
				}
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No invites."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
