package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/devtrack/internal/prefs"
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

type breaksModel struct {
	tracker *tracker.Tracker
	prefs   *prefs.Prefs
	width   int
	height  int

	active    *store.Break
	remaining time.Duration
	breakEnd  time.Time

	today []store.Break
}

func newBreaksModel(tr *tracker.Tracker, p *prefs.Prefs) breaksModel {
	return breaksModel{tracker: tr, prefs: p}
}

func (b *breaksModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

type breaksDataMsg struct {
	active []store.Break
	today  []store.Break
}

func (b breaksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		s := b.tracker.Store()
		return breaksDataMsg{active: s.ActiveBreaks(), today: s.BreaksForDate(today(b.tracker))}
	}
}

func (b breaksModel) onBreak() bool { return b.active != nil }

func (b breaksModel) update(msg tea.Msg) (breaksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case breaksDataMsg:
		b.today = msg.today
		if len(msg.active) > 0 {
			b = b.follow(msg.active[0])
		} else {
			b.active = nil
		}
		return b, nil

	case tickMsg:
		if b.active == nil {
			return b, nil
		}
		b.remaining = time.Until(b.breakEnd)
		if b.remaining <= 0 {
			return b.finish("Break over, back to work! \a")
		}
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Break):
			if b.active == nil {
				return b.start("short")
			}
		case key.Matches(msg, keys.LongBreak):
			if b.active == nil {
				return b.start("long")
			}
		case key.Matches(msg, keys.Stop):
			if b.active != nil {
				return b.finish("Break ended early")
			}
		}
	}
	return b, nil
}

// follow starts counting down brk, which may have been started elsewhere.
func (b breaksModel) follow(brk store.Break) breaksModel {
	end := brk.StartTime.Add(time.Duration(brk.Duration) * time.Minute)
	b.active = &brk
	b.breakEnd = time.Now().Add(end.Sub(b.tracker.Store().Now()))
	b.remaining = time.Until(b.breakEnd)
	return b
}

func (b breaksModel) start(kind string) (breaksModel, tea.Cmd) {
	mins := b.prefs.BreakMinutes(kind)
	brk := b.tracker.StartBreak(store.Break{
		Type:      kind,
		Duration:  mins,
		StartTime: b.tracker.Store().Now(),
		IsActive:  true,
	})
	b = b.follow(*brk)
	return b, tea.Batch(b.refresh(), func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%d minute %s break started", mins, kind)}
	})
}

func (b breaksModel) finish(status string) (breaksModel, tea.Cmd) {
	b.tracker.EndBreak(b.tracker.Store().Now())
	b.active = nil
	b.remaining = 0
	return b, tea.Batch(b.refresh(), func() tea.Msg {
		return statusMsg{text: status}
	})
}

func (b breaksModel) view() string {
	w := b.width - 4
	title := titleStyle.Render("Breaks")

	var timeDisplay, label, controls string
	if b.active == nil {
		short := b.prefs.BreakMinutes("short")
		timeDisplay = clockStyle.Width(w - 6).Render(formatCountdown(time.Duration(short) * time.Minute))
		label = mutedStyle.Render("Working")
		controls = mutedStyle.Render(fmt.Sprintf("b: short break (%dm)  B: long break (%dm)", short, b.prefs.BreakMinutes("long")))
	} else {
		style := breakStyle(b.active.Type)
		timeDisplay = style.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatCountdown(b.remaining))
		label = style.Bold(true).Render(strings.ToUpper(b.active.Type) + " BREAK")
		controls = mutedStyle.Render("x: end break")
	}

	top := lipgloss.JoinVertical(lipgloss.Center, title, "", timeDisplay, label, "", controls)
	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(top),
		b.renderHistory(w),
	)
}

func (b breaksModel) renderHistory(w int) string {
	title := titleStyle.Render("Today's Breaks")
	if len(b.today) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No breaks yet")))
	}

	loc := b.tracker.Store().Location()
	total := 0
	rows := []string{title}
	for _, brk := range b.today {
		total += brk.Duration
		status := successStyle.Render("✓")
		end := ""
		if brk.IsActive {
			status = breakStyle(brk.Type).Render("●")
		} else if brk.EndTime != nil {
			end = " - " + brk.EndTime.In(loc).Format("15:04")
		}
		rows = append(rows, fmt.Sprintf("  %s %s%-8s %-6s %dm", status, brk.StartTime.In(loc).Format("15:04"), end, brk.Type, brk.Duration))
	}
	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  %d breaks, %d minutes planned", len(b.today), total)))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
