package tui

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/devtrack/internal/prefs"
	"github.com/sadopc/devtrack/internal/tracker"
)

// App is the root Bubble Tea model.
type App struct {
	tracker *tracker.Tracker
	prefs   *prefs.Prefs
	logger  *slog.Logger
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	tasks     tasksModel
	reports   reportsModel
	breaks    breaksModel
	settings  settingsModel

	help   help.Model
	status string
}

type Option func(*App)

// WithLogger sets the logger for failures that cannot be shown on screen.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

func NewApp(tr *tracker.Tracker, p *prefs.Prefs, opts ...Option) App {
	h := help.New()
	h.ShowAll = false

	a := App{
		tracker:    tr,
		prefs:      p,
		logger:     slog.Default(),
		activeView: viewDashboard,
		dashboard:  newDashboardModel(tr, p),
		tasks:      newTasksModel(tr),
		reports:    newReportsModel(tr),
		breaks:     newBreaksModel(tr, p),
		settings:   newSettingsModel(tr, p),
		help:       h,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		a.breaks.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.breaks.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewBreaks
			return a, a.breaks.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Ticks drive both the session timer and the break countdown.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.breaks, cmd = a.breaks.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case sessionStartedMsg:
		a.status = "Session started: " + msg.session.ProjectName
		return a, nil

	case sessionEndedMsg:
		a.status = "Session ended after " + formatSeconds(*msg.session.Duration)
		return a, nil

	case exportDoneMsg:
		a.status = "Saved " + filepath.Base(msg.path) + " (" + humanize.Bytes(uint64(msg.size)) + ")"
		a.exportPicking = false
		return a, a.settings.refresh()
	}

	return a.updateActiveView(msg)
}

// quit ends a running session so its duration is kept before exiting.
func (a App) quit() tea.Cmd {
	if a.dashboard.isRunning() {
		if _, err := a.dashboard.timer.stop(); err != nil {
			a.logger.Error("end session on quit", "session_id", a.dashboard.timer.sessionID, "error", err)
		}
	}
	return tea.Quit
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewBreaks:
		a.breaks, cmd = a.breaks.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.formActive
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewBreaks:
		return a.breaks.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	case viewBreaks:
		content = a.breaks.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, tabOnStyle.Render(name))
		} else {
			tabs = append(tabs, tabOffStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := brandStyle.Render("devtrack")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	indicator := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		indicator = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			indicator = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}
	if a.breaks.onBreak() {
		indicator += breakStyle(a.breaks.active.Type).Render(" ☕ " + formatCountdown(a.breaks.remaining))
	}

	left := footerStyle.Render(helpView)
	right := indicator + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// exportChoice is one entry of the export picker.
type exportChoice struct {
	label string
	run   func(tr *tracker.Tracker, date string) (string, error)
}

var exportChoices = func() []exportChoice {
	choices := []exportChoice{
		{"Full backup (JSON)", func(tr *tracker.Tracker, _ string) (string, error) { return tr.Backup() }},
		{"Daily snapshot (JSON)", func(tr *tracker.Tracker, _ string) (string, error) { return tr.DailySnapshot() }},
	}
	for _, kind := range tracker.ExportKinds {
		choices = append(choices, exportChoice{
			label: "Today's " + kind + " (CSV)",
			run: func(tr *tracker.Tracker, date string) (string, error) {
				return tr.ExportCSV(kind, date, date)
			},
		})
	}
	return choices
}()

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export"), ""}
	for i, c := range exportChoices {
		cursor := "  "
		style := rowStyle
		if i == a.exportCursor {
			cursor = "> "
			style = cursorRowStyle
		}
		rows = append(rows, style.Render(cursor+c.label))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  files go to "+a.tracker.Backups().Dir()))
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return focusPanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportChoices)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(choice int) tea.Cmd {
	tr := a.tracker
	c := exportChoices[choice]
	return func() tea.Msg {
		path, err := c.run(tr, today(tr))
		if err != nil {
			return statusMsg{text: "Export error: " + err.Error(), isError: true}
		}
		var size int64
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
		return exportDoneMsg{path: path, size: size}
	}
}
