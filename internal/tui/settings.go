package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/devtrack/internal/backup"
	"github.com/sadopc/devtrack/internal/prefs"
	"github.com/sadopc/devtrack/internal/tracker"
)

type settingsModel struct {
	prefs   *prefs.Prefs
	tracker *tracker.Tracker
	width   int
	height  int

	settings   []prefs.Setting
	files      []backup.File
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	breakShort    *string
	breakLong     *string
	goalCoding    *string
	goalCommits   *string
	goalTasks     *string
	retentionDays *string
	idleTimeout   *string
}

func newSettingsModel(tr *tracker.Tracker, p *prefs.Prefs) settingsModel {
	bs, bl, gc, gm, gt, rd, it := "", "", "", "", "", "", ""
	return settingsModel{
		prefs:         p,
		tracker:       tr,
		breakShort:    &bs,
		breakLong:     &bl,
		goalCoding:    &gc,
		goalCommits:   &gm,
		goalTasks:     &gt,
		retentionDays: &rd,
		idleTimeout:   &it,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []prefs.Setting
	files    []backup.File
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.prefs.All()
		return settingsDataMsg{settings: settings, files: s.tracker.Backups().Files()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.files = msg.files
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.breakShort = s.getVal(prefs.KeyBreakShort, "5")
	*s.breakLong = s.getVal(prefs.KeyBreakLong, "15")
	*s.goalCoding = s.getVal(prefs.KeyGoalCoding, "240")
	*s.goalCommits = s.getVal(prefs.KeyGoalCommits, "5")
	*s.goalTasks = s.getVal(prefs.KeyGoalTasks, "3")
	*s.retentionDays = s.getVal(prefs.KeyRetentionDays, "30")
	*s.idleTimeout = secsToMin(s.getVal(prefs.KeyIdleTimeout, "300"))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Coding goal (min/day)").Value(s.goalCoding).Validate(nonNegativeInt),
			huh.NewInput().Title("Commits goal").Value(s.goalCommits).Validate(nonNegativeInt),
			huh.NewInput().Title("Tasks goal").Value(s.goalTasks).Validate(nonNegativeInt),
		).Title("Daily goals"),
		huh.NewGroup(
			huh.NewInput().Title("Short break (min)").Value(s.breakShort).Validate(nonNegativeInt),
			huh.NewInput().Title("Long break (min)").Value(s.breakLong).Validate(nonNegativeInt),
			huh.NewInput().Title("Idle timeout (min)").Value(s.idleTimeout).Validate(nonNegativeInt),
			huh.NewInput().Title("Keep backups (days)").Value(s.retentionDays).Validate(nonNegativeInt),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func nonNegativeInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fmt.Errorf("%q is not a whole number", v)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, errStatus(err)
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return statusMsg{text: "Settings saved"} })
	}
	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := []struct{ key, value string }{
		{prefs.KeyBreakShort, *s.breakShort},
		{prefs.KeyBreakLong, *s.breakLong},
		{prefs.KeyGoalCoding, *s.goalCoding},
		{prefs.KeyGoalCommits, *s.goalCommits},
		{prefs.KeyGoalTasks, *s.goalTasks},
		{prefs.KeyRetentionDays, *s.retentionDays},
		{prefs.KeyIdleTimeout, minToSecs(*s.idleTimeout)},
	}
	for _, v := range values {
		if err := s.prefs.Set(v.key, v.value); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.prefs.Get(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
		s.renderFiles(w),
	)
}

const maxFilesShown = 8

func (s settingsModel) renderFiles(w int) string {
	title := titleStyle.Render("Backups") + "  " + mutedStyle.Render(s.tracker.Backups().Dir())
	if len(s.files) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("No backups yet. Press e to create one.")))
	}

	rows := []string{title}
	for i, f := range s.files {
		if i == maxFilesShown {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  ... %d more", len(s.files)-maxFilesShown)))
			break
		}
		rows = append(rows, fmt.Sprintf("  %-44s %8s  %s",
			f.Name, humanize.Bytes(uint64(f.Size)), mutedStyle.Render(humanize.Time(f.ModTime))))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	n, err := strconv.Atoi(v)
	if err != nil {
		return v
	}
	switch k {
	case prefs.KeyIdleTimeout:
		return fmt.Sprintf("%d min", n/60)
	case prefs.KeyBreakShort, prefs.KeyBreakLong:
		return fmt.Sprintf("%d min", n)
	case prefs.KeyGoalCoding:
		return formatMinutes(int64(n))
	case prefs.KeyRetentionDays:
		return fmt.Sprintf("%d days", n)
	}
	return v
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
