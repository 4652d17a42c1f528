package tui

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/devtrack/internal/backup"
	"github.com/sadopc/devtrack/internal/prefs"
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

func newTestTracker(t *testing.T) (*tracker.Tracker, *prefs.Prefs) {
	t.Helper()
	p, err := prefs.OpenMemory()
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.New(store.WithClock(func() time.Time { return now }), store.WithLocation(time.UTC))
	return tracker.New(s, backup.New(t.TempDir(), logger), logger), p
}

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

// ============================================================
// Timer model
// ============================================================

func TestTimerStartStop(t *testing.T) {
	tr, _ := newTestTracker(t)

	tm := newTimerModel(tr, time.Minute)
	if tm.running() {
		t.Fatal("timer should start stopped")
	}

	sess := tm.start("devtrack")
	if !tm.running() || tm.paused() {
		t.Fatal("timer should be running after start")
	}
	if tm.sessionID != sess.ID || tm.projectName != "devtrack" {
		t.Fatal("session info not set")
	}
	if !sess.IsActive {
		t.Fatal("started session should be active")
	}

	ended, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if ended == nil || ended.IsActive || ended.Duration == nil || ended.EndTime == nil {
		t.Fatalf("unexpected ended session: %+v", ended)
	}
	if tm.running() {
		t.Fatal("timer should be stopped")
	}
	if len(tr.Store().ActiveSessions()) != 0 {
		t.Fatal("no session should remain active")
	}
}

func TestTimerStopWhenStopped(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Minute)

	sess, err := tm.stop()
	if err != nil {
		t.Fatal(err)
	}
	if sess != nil {
		t.Fatal("stop on stopped timer should return nil")
	}
}

func TestTimerDefaultIdleTimeout(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, 0)
	if tm.idleTimeout != 5*time.Minute {
		t.Fatalf("idle timeout = %v", tm.idleTimeout)
	}
}

func TestTimerPauseResume(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Minute)
	tm.start("devtrack")

	tm.pause()
	if !tm.paused() || !tm.running() {
		t.Fatal("paused timer should be paused but not stopped")
	}

	tm.resume()
	if tm.paused() || !tm.running() {
		t.Fatal("timer should be running after resume")
	}
}

func TestTimerPauseWhenStopped(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Minute)

	tm.pause()
	if tm.paused() {
		t.Fatal("should not be paused when stopped")
	}
	tm.toggle()
	if tm.running() {
		t.Fatal("toggle should not start a stopped timer")
	}
}

func TestTimerToggle(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Minute)
	tm.start("devtrack")

	tm.toggle()
	if !tm.paused() {
		t.Fatal("first toggle should pause")
	}
	tm.toggle()
	if tm.paused() {
		t.Fatal("second toggle should resume")
	}
}

func TestTimerElapsed(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Minute)
	if tm.currentElapsed() != 0 {
		t.Fatal("stopped timer should report 0")
	}

	tm.start("devtrack")
	tm.startTime = time.Now().Add(-10 * time.Second)
	if e := tm.currentElapsed(); e < 10*time.Second || e > 11*time.Second {
		t.Fatalf("elapsed = %v", e)
	}
}

func TestTimerElapsedWhilePaused(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Minute)
	tm.start("devtrack")
	tm.startTime = time.Now().Add(-20 * time.Second)
	tm.pause()
	tm.pausedAt = tm.startTime.Add(5 * time.Second)

	if e := tm.currentElapsed(); e != 5*time.Second {
		t.Fatalf("paused elapsed = %v, want 5s", e)
	}
}

func TestTimerIdleDetection(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Second)
	tm.start("devtrack")
	tm.lastActivity = time.Now().Add(-2 * time.Second)

	tm.tick()
	if !tm.isIdle || !tm.paused() {
		t.Fatal("timer should pause when idle")
	}

	tm.recordActivity()
	if tm.isIdle || tm.paused() {
		t.Fatal("activity should resume an idle timer")
	}
}

func TestTimerRecordActivityKeepsManualPause(t *testing.T) {
	tr, _ := newTestTracker(t)
	tm := newTimerModel(tr, time.Minute)
	tm.start("devtrack")
	tm.pause()

	tm.recordActivity()
	if !tm.paused() {
		t.Fatal("manual pause should survive activity")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{3*time.Hour + 5*time.Minute + 7*time.Second, "03:05:07"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
	if got := formatSeconds(3661); got != "01:01:01" {
		t.Fatalf("formatSeconds(3661) = %q", got)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0h 00m"},
		{45, "0h 45m"},
		{125, "2h 05m"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.in); got != tt.want {
			t.Fatalf("formatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Minute, "05:00"},
		{61 * time.Second, "01:01"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.d); got != tt.want {
			t.Fatalf("formatCountdown(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestToday(t *testing.T) {
	tr, _ := newTestTracker(t)
	if got := today(tr); got != "2024-01-15" {
		t.Fatalf("today = %q", got)
	}
}

func TestViewNames(t *testing.T) {
	expected := []string{"Dashboard", "Tasks", "Reports", "Breaks", "Settings"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
	if viewDashboard != 0 || viewTasks != 1 || viewReports != 2 || viewBreaks != 3 || viewSettings != 4 {
		t.Fatal("view state constants out of order")
	}
}

// ============================================================
// Dashboard model
// ============================================================

func TestDashboardInit(t *testing.T) {
	tr, p := newTestTracker(t)
	d := newDashboardModel(tr, p)

	if d.isRunning() || d.isPaused() || d.elapsed() != 0 {
		t.Fatal("dashboard timer should be idle initially")
	}
	if d.timer.idleTimeout != 300*time.Second {
		t.Fatalf("idle timeout = %v, want prefs default", d.timer.idleTimeout)
	}
}

func TestDashboardLoadDataUsesDefaultGoals(t *testing.T) {
	tr, p := newTestTracker(t)
	tr.AddTask("write docs", nil, true)

	d := newDashboardModel(tr, p)
	d, _ = d.update(d.loadData()())

	if d.ownGoals {
		t.Fatal("no goals were set for the day")
	}
	if d.goals.CodingTimeTarget != 240 || d.goals.CommitsTarget != 5 || d.goals.TasksTarget != 3 {
		t.Fatalf("unexpected default goals: %+v", d.goals)
	}
	if d.summary.TasksCompleted != 1 || len(d.activities) != 1 {
		t.Fatalf("summary not loaded: %+v", d.summary)
	}
}

func TestDashboardSetGoals(t *testing.T) {
	tr, p := newTestTracker(t)
	if err := p.Set(prefs.KeyGoalCommits, "8"); err != nil {
		t.Fatal(err)
	}
	d := newDashboardModel(tr, p)

	d, _ = d.update(runeKey("g"))
	g := tr.Store().GoalsForDate("2024-01-15")
	if g == nil || g.CommitsTarget != 8 {
		t.Fatalf("goals not stored: %+v", g)
	}

	d, _ = d.update(d.loadData()())
	if !d.ownGoals || d.goals.CommitsTarget != 8 {
		t.Fatalf("dashboard should show stored goals: %+v", d.goals)
	}
}

func TestDashboardStartStop(t *testing.T) {
	tr, p := newTestTracker(t)
	d := newDashboardModel(tr, p)

	d, _ = d.update(runeKey("s"))
	if !d.formActive {
		t.Fatal("start should ask for a project")
	}

	d.formActive = false
	d, _ = d.startSession("devtrack")
	if !d.isRunning() {
		t.Fatal("timer should be running")
	}
	if len(tr.Store().ActiveSessions()) != 1 {
		t.Fatal("session should be active in the store")
	}

	d, _ = d.update(runeKey("x"))
	if d.isRunning() {
		t.Fatal("timer should be stopped")
	}
	acts := tr.Store().RecentActivities(1)
	if acts[0].Description != "Ended coding session: devtrack" {
		t.Fatalf("activity = %q", acts[0].Description)
	}
}

func TestGoalRow(t *testing.T) {
	done := goalRow("Commits", "5", 5, 5)
	if !strings.Contains(done, "✓") || strings.Contains(done, "░") {
		t.Fatalf("met goal should be full: %q", done)
	}
	half := goalRow("Commits", "2", 2, 4)
	if strings.Count(half, "█") != progressWidth/2 {
		t.Fatalf("half goal should fill half the bar: %q", half)
	}
	none := goalRow("Tasks", "0", 0, 0)
	if strings.Contains(none, "✓") {
		t.Fatalf("zero target should not be marked: %q", none)
	}
}

// ============================================================
// Tasks model
// ============================================================

func TestTasksRefreshAndToggle(t *testing.T) {
	tr, _ := newTestTracker(t)
	tr.AddTask("first", nil, false)
	tr.AddTask("second", nil, false)

	m := newTasksModel(tr)
	m, _ = m.update(m.refresh()())
	if len(m.tasks) != 2 {
		t.Fatalf("tasks = %d", len(m.tasks))
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Fatalf("cursor = %d", m.cursor)
	}
	m, cmd := m.update(runeKey("t"))
	if cmd == nil {
		t.Fatal("toggle should refresh")
	}
	m, _ = m.update(cmd())
	if !m.tasks[1].Completed || m.tasks[0].Completed {
		t.Fatalf("wrong task toggled: %+v", m.tasks)
	}
}

func TestTasksChangeDay(t *testing.T) {
	tr, _ := newTestTracker(t)
	m := newTasksModel(tr)

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.date() != "2024-01-14" {
		t.Fatalf("date = %q", m.date())
	}
	_, cmd := m.update(runeKey("n"))
	if cmd == nil {
		t.Fatal("adding to a past day should report a status")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatalf("unexpected message %#v", msg)
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRight})
	if m.offset != 0 {
		t.Fatalf("offset = %d", m.offset)
	}
	m, _ = m.update(runeKey("n"))
	if !m.formActive {
		t.Fatal("n should open the task form today")
	}
}

// ============================================================
// Breaks model
// ============================================================

func TestBreaksStartAndFinish(t *testing.T) {
	tr, p := newTestTracker(t)
	b := newBreaksModel(tr, p)

	b, _ = b.update(runeKey("B"))
	if !b.onBreak() || b.active.Type != "long" || b.active.Duration != 15 {
		t.Fatalf("unexpected break: %+v", b.active)
	}
	if b.remaining <= 14*time.Minute {
		t.Fatalf("remaining = %v", b.remaining)
	}
	if len(tr.Store().ActiveBreaks()) != 1 {
		t.Fatal("break should be active in the store")
	}

	b, _ = b.update(runeKey("x"))
	if b.onBreak() {
		t.Fatal("break should be over")
	}
	if len(tr.Store().ActiveBreaks()) != 0 {
		t.Fatal("break should be ended in the store")
	}
}

func TestBreaksExpireOnTick(t *testing.T) {
	tr, p := newTestTracker(t)
	b := newBreaksModel(tr, p)
	b, _ = b.start("short")

	b.breakEnd = time.Now().Add(-time.Second)
	b, cmd := b.update(tickMsg(time.Now()))
	if b.onBreak() || cmd == nil {
		t.Fatal("expired break should end")
	}
}

func TestBreaksFollowExternalBreak(t *testing.T) {
	tr, p := newTestTracker(t)
	tr.StartBreak(store.Break{Type: "custom", Duration: 10, IsActive: true})

	b := newBreaksModel(tr, p)
	b, _ = b.update(b.refresh()())
	if !b.onBreak() || b.active.Type != "custom" {
		t.Fatalf("active break not picked up: %+v", b.active)
	}
	if len(b.today) != 1 {
		t.Fatalf("today = %d", len(b.today))
	}
}

// ============================================================
// Reports model
// ============================================================

func TestReportsRefresh(t *testing.T) {
	tr, _ := newTestTracker(t)
	dur := int64(3600)
	tr.StartSession(store.Session{ProjectName: "devtrack", Duration: &dur})

	r := newReportsModel(tr)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())
	if r.err != nil {
		t.Fatal(r.err)
	}
	if len(r.trend) != 7 || r.trend[6].Date != "2024-01-15" || r.trend[6].TotalTime != 60 {
		t.Fatalf("unexpected trend: %+v", r.trend)
	}
	if r.metrics.Daily.CodeQualityScore != 85 {
		t.Fatalf("unexpected metrics: %+v", r.metrics.Daily)
	}

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyLeft})
	if r.endDate() != "2024-01-08" {
		t.Fatalf("endDate = %q", r.endDate())
	}
	if out := r.view(); out == "" {
		t.Fatal("reports view rendered empty")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsConversions(t *testing.T) {
	if got := secsToMin("300"); got != "5" {
		t.Fatalf("secsToMin = %q", got)
	}
	if got := secsToMin("abc"); got != "abc" {
		t.Fatalf("secsToMin passthrough = %q", got)
	}
	if got := minToSecs("5"); got != "300" {
		t.Fatalf("minToSecs = %q", got)
	}
	if nonNegativeInt("3") != nil || nonNegativeInt("-1") == nil || nonNegativeInt("x") == nil {
		t.Fatal("nonNegativeInt accepted the wrong values")
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{prefs.KeyIdleTimeout, "300", "5 min"},
		{prefs.KeyBreakShort, "5", "5 min"},
		{prefs.KeyGoalCoding, "240", "4h 00m"},
		{prefs.KeyRetentionDays, "30", "30 days"},
		{prefs.KeyGoalCommits, "5", "5"},
		{prefs.KeyGoalTasks, "many", "many"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Fatalf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestSettingsSave(t *testing.T) {
	tr, p := newTestTracker(t)
	s := newSettingsModel(tr, p)
	s, _ = s.showForm()
	if *s.idleTimeout != "5" || *s.goalCoding != "240" {
		t.Fatalf("form not loaded: idle %q coding %q", *s.idleTimeout, *s.goalCoding)
	}

	*s.idleTimeout = "10"
	*s.breakShort = "7"
	if err := s.saveSettings(); err != nil {
		t.Fatal(err)
	}
	if p.Int(prefs.KeyIdleTimeout, 0) != 600 || p.BreakMinutes("short") != 7 {
		t.Fatal("settings not persisted")
	}

	s.formActive = false
	s, _ = s.update(s.refresh()())
	if len(s.settings) != 7 {
		t.Fatalf("settings = %d", len(s.settings))
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	tr, p := newTestTracker(t)
	app := NewApp(tr, p)
	app.width = 120
	app.height = 40
	return app
}

func TestQuitLogsSessionEndFailure(t *testing.T) {
	tr, p := newTestTracker(t)
	var buf strings.Builder
	app := NewApp(tr, p, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	app.dashboard, _ = app.dashboard.startSession("devtrack")
	// Replacing the store contents removes the running session.
	tr.Store().Import(store.Snapshot{})

	if cmd := app.quit(); cmd == nil {
		t.Fatal("quit should still return a command")
	}
	if !strings.Contains(buf.String(), "end session on quit") {
		t.Fatalf("expected failure to be logged, got %q", buf.String())
	}
}

func TestQuitEndsRunningSession(t *testing.T) {
	tr, p := newTestTracker(t)
	var buf strings.Builder
	app := NewApp(tr, p, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	app.dashboard, _ = app.dashboard.startSession("devtrack")
	app.quit()
	if n := len(tr.Store().ActiveSessions()); n != 0 {
		t.Fatalf("expected no active sessions after quit, got %d", n)
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("overlays should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app := newTestApp(t)
	for i := range viewNames {
		app.activeView = viewState(i)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < len(viewNames); i++ {
		m, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = m.(App)
	}
	if app.activeView != viewDashboard {
		t.Fatalf("tab should wrap around, got %d", app.activeView)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	tr, p := newTestTracker(t)
	app := NewApp(tr, p)
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t)
	m, _ := app.Update(statusMsg{text: "test status"})
	app = m.(App)
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppExportBackup(t *testing.T) {
	app := newTestApp(t)

	m, _ := app.Update(runeKey("e"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = m.(App)
	if app.exportPicking || cmd == nil {
		t.Fatal("enter should run the export")
	}
	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("export should finish with exportDoneMsg")
	}
	if !strings.Contains(done.path, "devtrack_backup_") || done.size == 0 {
		t.Fatalf("unexpected export: %+v", done)
	}
	if got := app.tracker.Backups().ListBackups(); len(got) != 1 {
		t.Fatalf("backups = %v", got)
	}
}

func TestExportChoices(t *testing.T) {
	if len(exportChoices) != 2+len(tracker.ExportKinds) {
		t.Fatalf("choices = %d", len(exportChoices))
	}
	app := newTestApp(t)
	msg := app.doExport(len(exportChoices) - 1)()
	if done, ok := msg.(exportDoneMsg); !ok || !strings.HasSuffix(done.path, ".csv") {
		t.Fatalf("unexpected message %#v", msg)
	}
}

// ============================================================
// Key bindings and styles
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"tabOn", func() string { return tabOnStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"focusPanel", func() string { return focusPanelStyle.Render("test") }},
		{"clockCoding", func() string { return clockCodingStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"goalBar", func() string { return goalBarStyle.Render("test") }},
		{"goalTrack", func() string { return goalTrackStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
	}
	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}

func TestDomainStyles(t *testing.T) {
	if got := breakStyle("long").GetForeground(); got != colorBreakLong {
		t.Fatalf("long break colour = %v", got)
	}
	for _, kind := range []string{"short", "custom"} {
		if got := breakStyle(kind).GetForeground(); got != colorBreakShort {
			t.Fatalf("%s break colour = %v", kind, got)
		}
	}

	priorities := []struct {
		priority string
		want     lipgloss.TerminalColor
	}{
		{"critical", colorCritical},
		{"high", colorHigh},
		{"medium", colorDim},
		{"low", colorDim},
	}
	for _, tt := range priorities {
		if got := priorityStyle(tt.priority).GetForeground(); got != tt.want {
			t.Fatalf("priority %s colour = %v, want %v", tt.priority, got, tt.want)
		}
	}

	scores := []struct {
		score int
		want  lipgloss.TerminalColor
	}{
		{100, colorCoding},
		{80, colorCoding},
		{79, colorPaused},
		{60, colorPaused},
		{59, colorDanger},
	}
	for _, tt := range scores {
		if got := scoreStyle(tt.score).GetForeground(); got != tt.want {
			t.Fatalf("score %d colour = %v, want %v", tt.score, got, tt.want)
		}
	}
}
