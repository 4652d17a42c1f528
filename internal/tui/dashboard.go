package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/devtrack/internal/prefs"
	"github.com/sadopc/devtrack/internal/report"
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

type dashboardModel struct {
	tracker *tracker.Tracker
	prefs   *prefs.Prefs
	timer   timerModel
	width   int
	height  int

	summary    report.DashboardSummary
	goals      store.Goals
	ownGoals   bool // goals were set for the day, not taken from prefs
	activities []store.Activity

	formActive  bool
	form        *huh.Form
	formProject *string
}

func newDashboardModel(tr *tracker.Tracker, p *prefs.Prefs) dashboardModel {
	project := ""
	idle := time.Duration(p.Int(prefs.KeyIdleTimeout, 300)) * time.Second
	return dashboardModel{
		tracker:     tr,
		prefs:       p,
		timer:       newTimerModel(tr, idle),
		formProject: &project,
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	summary    report.DashboardSummary
	goals      store.Goals
	ownGoals   bool
	activities []store.Activity
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		date := today(d.tracker)
		summary := d.tracker.Reports().Dashboard(date)

		msg := dashboardDataMsg{
			summary:    summary,
			activities: d.tracker.Store().RecentActivities(5),
		}
		if summary.Goals != nil {
			msg.goals = *summary.Goals
			msg.ownGoals = true
		} else {
			msg.goals = d.prefs.DefaultGoals()
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.summary = msg.summary
		d.goals = msg.goals
		d.ownGoals = msg.ownGoals
		d.activities = msg.activities
		return d, nil

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			return d.showProjectForm()

		case key.Matches(msg, keys.Stop):
			return d.stopSession()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil

		case key.Matches(msg, keys.Goals):
			g := d.prefs.DefaultGoals()
			g.Date = today(d.tracker)
			d.tracker.SetGoals(g)
			return d, tea.Batch(d.loadData(), func() tea.Msg {
				return statusMsg{text: "Goals set for " + g.Date}
			})
		}
	}
	return d, nil
}

func (d dashboardModel) showProjectForm() (dashboardModel, tea.Cmd) {
	*d.formProject = ""
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project").Value(d.formProject).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("project name is required")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
	d.formActive = true
	return d, d.form.Init()
}

func (d dashboardModel) updateForm(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		d.formActive = false
		d.form = nil
		return d, nil
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}
	if d.form.State == huh.StateCompleted {
		d.formActive = false
		return d.startSession(strings.TrimSpace(*d.formProject))
	}
	return d, cmd
}

func (d dashboardModel) startSession(project string) (dashboardModel, tea.Cmd) {
	sess := d.timer.start(project)
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return sessionStartedMsg{session: sess} },
	)
}

func (d dashboardModel) stopSession() (dashboardModel, tea.Cmd) {
	sess, err := d.timer.stop()
	if err != nil {
		return d, errStatus(err)
	}
	if sess == nil {
		return d, nil
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return sessionEndedMsg{session: sess} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	if d.formActive && d.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Start Coding Session"), "", d.form.View())
		return focusPanelStyle.Width(w).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(w),
		d.renderTodayPanel(w),
		d.renderActivityPanel(w),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if !d.timer.running() {
		content := lipgloss.JoinVertical(lipgloss.Center,
			clockStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  NO SESSION"),
			mutedStyle.Render("Press s to start a coding session"),
		)
		return panelStyle.Width(w).Render(content)
	}

	timeStr := formatDuration(d.timer.currentElapsed())
	var timeDisplay, indicator string
	if d.timer.paused() {
		timeDisplay = clockPausedStyle.Width(w - 6).Render(timeStr)
		indicator = warningStyle.Render("⏸  PAUSED")
		if d.timer.isIdle {
			indicator = warningStyle.Render("⏸  IDLE")
		}
	} else {
		timeDisplay = clockCodingStyle.Width(w - 6).Render(timeStr)
		indicator = successStyle.Render("●  CODING")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		highlightStyle.Render(d.timer.projectName),
	)
	return focusPanelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	s := d.summary
	title := titleStyle.Render("Today")
	if !d.ownGoals {
		title += mutedStyle.Render("  (default goals, g to set)")
	}

	rows := []string{
		title,
		"",
		goalRow("Coding", formatMinutes(s.TotalTime), s.TotalTime, int64(d.goals.CodingTimeTarget)),
		goalRow("Commits", fmt.Sprint(s.Commits), int64(s.Commits), int64(d.goals.CommitsTarget)),
		goalRow("Tasks", fmt.Sprintf("%d/%d", s.TasksCompleted, s.TotalTasks), int64(s.TasksCompleted), int64(d.goals.TasksTarget)),
		"",
		mutedStyle.Render(fmt.Sprintf("  %d sessions  avg %s  %d lines", s.Sessions, formatMinutes(s.AverageSession), s.LinesOfCode)),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

const progressWidth = 20

// goalRow renders a label, the current value and a bar filled to value/target.
func goalRow(label, shown string, value, target int64) string {
	filled := progressWidth
	if target > 0 && value < target {
		filled = int(value * progressWidth / target)
	}
	bar := goalBarStyle.Render(strings.Repeat("█", filled)) +
		goalTrackStyle.Render(strings.Repeat("░", progressWidth-filled))
	mark := ""
	if target > 0 && value >= target {
		mark = goalMetStyle.Render(" ✓")
	}
	return fmt.Sprintf("  %-8s %s %s%s", label, bar, shown, mark)
}

func (d dashboardModel) renderActivityPanel(w int) string {
	title := titleStyle.Render("Recent Activity")
	if len(d.activities) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing yet"),
		))
	}

	rows := []string{title}
	for _, a := range d.activities {
		at := a.Timestamp.In(d.tracker.Store().Location()).Format("15:04")
		rows = append(rows, fmt.Sprintf("  %s  %-8s %s", mutedStyle.Render(at), a.Type, a.Description))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
