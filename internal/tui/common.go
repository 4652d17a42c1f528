package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTasks
	viewReports
	viewBreaks
	viewSettings
)

var viewNames = []string{"Dashboard", "Tasks", "Reports", "Breaks", "Settings"}

// --- Messages ---

type sessionStartedMsg struct {
	session *store.Session
}

type sessionEndedMsg struct {
	session *store.Session
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
	size int64
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatMinutes(mins int64) string {
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

// today is the current date in the store's time zone.
func today(tr *tracker.Tracker) string {
	s := tr.Store()
	return s.Now().In(s.Location()).Format(store.DateLayout)
}
