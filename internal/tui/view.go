package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/wxlim/moodlit/internal/constants"
	"github.com/wxlim/moodlit/internal/dashboard"
	"github.com/wxlim/moodlit/internal/models"
	"github.com/wxlim/moodlit/internal/sgtime"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateLogin, StateCompose, StateHabitsForm:
		content = m.viewForm()
	case StateJournal:
		content = docStyle.Render(m.journalList.View())
	case StateJournalView:
		content = m.viewEntry()
	case StateHabits:
		content = m.viewHabits()
	case StateDashboard:
		content = m.viewDashboard()
	case StateInvites:
		content = docStyle.Render(m.inviteList.View())
	case StateInviteSend:
		content = m.viewForm()
	case StateConfirmArchive:
		content = m.viewConfirmArchive()
	case StateConfirmDecision:
		content = m.viewConfirmDecision()
	}

	sections := []string{m.viewTabs(), content}
	if status := m.viewStatus(); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	if m.state == StateLogin {
		return titleStyle.Render(" " + constants.AppName + " ")
	}

	titles := map[SessionState]string{
		StateJournal:   "Journal",
		StateHabits:    m.habitsTabTitle(),
		StateDashboard: "Dashboard",
		StateInvites:   "Invites",
	}

	active := m.state
	switch active {
	case StateJournalView, StateCompose:
		active = StateJournal
	case StateHabitsForm:
		active = StateHabits
	case StateInviteSend:
		active = StateInvites
	case StateConfirmArchive, StateConfirmDecision:
		active = m.previousState
	}

	var tabs []string
	for _, s := range m.tabs() {
		if s == active {
			tabs = append(tabs, activeTabStyle.Render(titles[s]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(titles[s]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// habitsTabTitle carries the reconciled "logged today" answer into the tab
// itself, so it is visible from every screen.
func (m Model) habitsTabTitle() string {
	if !m.statusKnown {
		return "Habits"
	}
	if m.habitsStatus.Logged {
		return "Habits ✓"
	}
	return "Habits ○"
}

func (m Model) viewStatus() string {
	switch {
	case m.loading:
		return faintStyle.Render("  " + m.spinner.View() + "loading...")
	case m.errText != "":
		return dangerStyle.Render("  " + m.errText)
	case m.infoText != "":
		return okStyle.Render("  " + m.infoText)
	}
	return ""
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	header := ""
	switch m.state {
	case StateLogin:
		header = titleStyle.Render("Log in")
	case StateCompose:
		header = titleStyle.Render("New entry")
	case StateHabitsForm:
		if m.habitsForm != nil && m.habitsForm.EditID != "" {
			header = titleStyle.Render("Edit today's habits")
		} else {
			header = titleStyle.Render("Log today's habits")
		}
	case StateInviteSend:
		header = titleStyle.Render("Send invite")
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.form.View()))
}

func (m Model) viewEntry() string {
	e := m.viewingEntry
	lines := []string{
		titleStyle.Render(e.EntryTitle),
		faintStyle.Render("Written on " + sgtime.FormatOrdinal(e.CreatedAt)),
		"Mood: " + e.Mood.Label(),
	}
	if m.session.ShowEmotion && len(e.Emotions) > 0 {
		lines = append(lines, "Emotions: "+strings.Join(e.Emotions, ", "))
	}
	lines = append(lines, "", e.EntryText)
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewHabits() string {
	var lines []string
	if !m.statusKnown {
		lines = append(lines, faintStyle.Render("Checking today's habits..."))
	} else {
		switch {
		case m.habitsStatus.Logged && m.habitsStatus.Degraded:
			lines = append(lines, warnStyle.Render("Logged today (offline, going by the last local save)"))
		case m.habitsStatus.Logged:
			lines = append(lines, okStyle.Render("Logged today"))
		case m.habitsStatus.Degraded:
			lines = append(lines, warnStyle.Render("Not logged today (offline)"))
		default:
			lines = append(lines, "Not logged today. Press 'a' to log.")
		}
	}
	lines = append(lines, "")

	if len(m.habitsList) == 0 {
		lines = append(lines, faintStyle.Render("No habits logged yet."))
	}
	for _, r := range m.habitsList {
		lines = append(lines, fmt.Sprintf("%s  sleep %.1fh  water %.1fL  work %.1fh",
			faintStyle.Render(sgtime.FormatDate(r.CreatedAt)), r.SleepHours, r.WaterLitres, r.WorkHours))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewDashboard() string {
	from, to := windowBounds(m.dashboard.Window, constants.DefaultDashboardDays)
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Dashboard %s to %s",
			from.Format(constants.DateFormat), to.Format(constants.DateFormat))),
		"",
	}

	if m.session.IsCounsellor() {
		return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			append(lines, m.counsellorDashboardLines(from, to)...)...))
	}

	lines = append(lines, titleStyle.Render("Mood"))
	for _, row := range dashboard.MergeMoodSeries(from, to, m.dashboard.Mood) {
		if row.AvgMood == nil {
			lines = append(lines, fmt.Sprintf("%s      %s", faintStyle.Render(row.Date), faintStyle.Render("-")))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %5.2f %s",
			faintStyle.Render(row.Date), *row.AvgMood, barStyle.Render(moodBar(*row.AvgMood))))
	}

	lines = append(lines, "", titleStyle.Render("Emotions"), m.emotionTable.View())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) counsellorDashboardLines(from, to time.Time) []string {
	if len(m.dashboard.Clients) == 0 {
		return []string{faintStyle.Render("No linked clients yet.")}
	}

	subjects := make([]string, 0, len(m.dashboard.Clients))
	header := make([]string, 0, len(m.dashboard.Clients))
	for _, cl := range m.dashboard.Clients {
		subjects = append(subjects, cl.UserID)
		name := cl.Name
		if name == "" {
			name = cl.UserID
		}
		header = append(header, fmt.Sprintf("%5.5s", name))
	}

	lines := []string{titleStyle.Render("Mood        " + strings.Join(header, "  "))}
	for _, row := range dashboard.MergeMoodSeriesMulti(from, to, subjects, m.dashboard.Mood) {
		cells := make([]string, 0, len(subjects))
		for _, s := range subjects {
			if v := row.BySubject[s]; v != nil {
				cells = append(cells, fmt.Sprintf("%5.2f", *v))
			} else {
				cells = append(cells, "    -")
			}
		}
		lines = append(lines, faintStyle.Render(row.Date)+"  "+strings.Join(cells, "  "))
	}

	lines = append(lines, "", titleStyle.Render("Emotions"), m.emotionTable.View())
	return lines
}

// buildEmotionTable renders the fixed-vocabulary tally as a bubbles table,
// one column per subject on counsellor dashboards.
func buildEmotionTable(data models.Dashboard, counsellor bool) table.Model {
	if !counsellor {
		tally := dashboard.MergeEmotionTally(data.Emotions)
		scale := dashboard.RadarMax(tally)
		rows := make([]table.Row, 0, len(tally))
		for _, r := range tally {
			rows = append(rows, table.Row{r.Emotion, fmt.Sprintf("%d", r.Count), strings.Repeat("▇", scaled(r.Count, scale))})
		}
		return table.New(
			table.WithColumns([]table.Column{
				{Title: "Emotion", Width: 10},
				{Title: "Count", Width: 5},
				{Title: "", Width: 20},
			}),
			table.WithRows(rows),
			table.WithHeight(len(rows)),
		)
	}

	subjects := make([]string, 0, len(data.Clients))
	cols := []table.Column{{Title: "Emotion", Width: 10}}
	for _, cl := range data.Clients {
		subjects = append(subjects, cl.UserID)
		name := cl.Name
		if name == "" {
			name = cl.UserID
		}
		cols = append(cols, table.Column{Title: name, Width: 7})
	}

	tally := dashboard.MergeEmotionTallyMulti(subjects, data.Emotions)
	rows := make([]table.Row, 0, len(tally))
	for _, r := range tally {
		row := table.Row{r.Emotion}
		for _, s := range subjects {
			row = append(row, fmt.Sprintf("%d", r.BySubject[s]))
		}
		rows = append(rows, row)
	}
	return table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)))
}

func (m Model) viewConfirmArchive() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Archive this entry?"),
			faintStyle.Render("It disappears from lists but is not deleted."),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewConfirmDecision() string {
	if m.pending == nil {
		return ""
	}
	verb := "Approve"
	note := "An approved counsellor can see your journal and habit aggregates."
	if !m.pending.Approve {
		verb = "Reject"
		note = "The counsellor will not gain access."
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render(fmt.Sprintf("%s invite from %s?", verb, m.pending.Request.CounsellorUser)),
			faintStyle.Render(note),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

// windowBounds parses the server-reported window, falling back to a locally
// computed one.
func windowBounds(w models.DashboardWindow, days int) (time.Time, time.Time) {
	from, okFrom := sgtime.Normalize(w.From)
	to, okTo := sgtime.Normalize(w.To)
	if okFrom && okTo {
		return from, to
	}
	now := time.Now().In(sgtime.SG)
	return now.AddDate(0, 0, -(days - 1)), now
}

func moodBar(avg float64) string {
	n := int(avg + 0.5)
	if n < 1 {
		n = 1
	} else if n > 5 {
		n = 5
	}
	return strings.Repeat("█", n)
}

// scaled maps a count onto a 0..20 cell bar against the shared radar scale.
func scaled(count, scale int) int {
	if scale < 1 {
		scale = 1
	}
	n := count * 20 / scale
	if count > 0 && n == 0 {
		n = 1
	}
	return n
}
