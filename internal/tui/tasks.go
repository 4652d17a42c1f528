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
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

type tasksModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	tasks  []store.Task
	cursor int
	offset int // days back from today

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle *string
	formDesc  *string
}

func newTasksModel(tr *tracker.Tracker) tasksModel {
	title, desc := "", ""
	return tasksModel{
		tracker:   tr,
		formTitle: &title,
		formDesc:  &desc,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type tasksDataMsg struct {
	tasks []store.Task
}

// date is the day being listed.
func (m tasksModel) date() string {
	d, err := store.ParseDate(today(m.tracker))
	if err != nil {
		return today(m.tracker)
	}
	return d.AddDate(0, 0, -m.offset).Format(store.DateLayout)
}

func (m tasksModel) refresh() tea.Cmd {
	date := m.date()
	return func() tea.Msg {
		return tasksDataMsg{tasks: m.tracker.Store().TasksForDate(date)}
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.offset++
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
				m.cursor = 0
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			return m.toggleSelected()
		case key.Matches(msg, keys.New):
			if m.offset != 0 {
				return m, func() tea.Msg {
					return statusMsg{text: "Tasks can only be added for today", isError: true}
				}
			}
			return m.showNewTaskForm()
		}
	}
	return m, nil
}

func (m tasksModel) toggleSelected() (tasksModel, tea.Cmd) {
	if len(m.tasks) == 0 {
		return m, nil
	}
	if _, err := m.tracker.ToggleTask(m.tasks[m.cursor].ID); err != nil {
		return m, errStatus(err)
	}
	return m, m.refresh()
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formDesc = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewText().Title("Description").Value(m.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.formActive = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		var desc *string
		if d := strings.TrimSpace(*m.formDesc); d != "" {
			desc = &d
		}
		m.tracker.AddTask(strings.TrimSpace(*m.formTitle), desc, false)
		return m, m.refresh()
	}
	return m, cmd
}

func (m tasksModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Task"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	date := m.date()
	label := date
	if m.offset == 0 {
		label = "Today"
	}
	title := titleStyle.Render("Tasks") + "  " + mutedStyle.Render(label)

	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
			"",
			mutedStyle.Render("  ←/→: change day"),
		)
		return panelStyle.Width(w).Render(content)
	}

	done := 0
	for _, t := range m.tasks {
		if t.Completed {
			done++
		}
	}

	rows := []string{title + mutedStyle.Render(fmt.Sprintf("  %d/%d done", done, len(m.tasks))), ""}
	loc := m.tracker.Store().Location()
	for i, t := range m.tasks {
		cursor := "  "
		style := rowStyle
		if i == m.cursor {
			cursor = "> "
			style = cursorRowStyle
		}
		check := mutedStyle.Render("[ ]")
		when := ""
		if t.Completed {
			check = successStyle.Render("[✓]")
			if t.CompletedAt != nil {
				when = mutedStyle.Render("  done " + t.CompletedAt.In(loc).Format(time.Kitchen))
			}
		}
		row := cursor + check + " " + style.Render(t.Title) + when
		if t.Description != nil && *t.Description != "" {
			row += "\n      " + mutedStyle.Render(*t.Description)
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  t/enter: toggle done  ←/→: change day"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
