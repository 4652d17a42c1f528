package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/devtrack/internal/report"
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

type reportsModel struct {
	tracker *tracker.Tracker
	width   int
	height  int

	offset  int // weeks back from today
	trend   []report.DashboardSummary
	metrics report.EnhancedMetrics
	err     error

	chart barchart.Model
}

func newReportsModel(tr *tracker.Tracker) reportsModel {
	return reportsModel{
		tracker: tr,
		chart:   barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	trend   []report.DashboardSummary
	metrics report.EnhancedMetrics
	err     error
}

// endDate is the last day shown.
func (r reportsModel) endDate() string {
	d, err := store.ParseDate(today(r.tracker))
	if err != nil {
		return today(r.tracker)
	}
	return d.AddDate(0, 0, -7*r.offset).Format(store.DateLayout)
}

func (r reportsModel) refresh() tea.Cmd {
	date := r.endDate()
	return func() tea.Msg {
		engine := r.tracker.Reports()
		trend, err := engine.WeeklyTrend(date)
		if err != nil {
			return reportsDataMsg{err: err}
		}
		metrics, err := engine.EnhancedMetrics(date)
		return reportsDataMsg{trend: trend, metrics: metrics, err: err}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.trend = msg.trend
		r.metrics = msg.metrics
		r.err = msg.err
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 10
	if r.height > 36 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	coding := codingBarStyle
	var bars []barchart.BarData
	for _, day := range r.trend {
		label := day.Date
		if d, err := store.ParseDate(day.Date); err == nil {
			label = d.Format("Mon 02")
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  "coding",
				Value: float64(day.TotalTime) / 60,
				Style: coding,
			}},
		})
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.err != nil {
		return panelStyle.Width(w).Render(errorStyle.Render("Report error: " + r.err.Error()))
	}

	rangeLabel := ""
	if len(r.trend) > 0 {
		rangeLabel = mutedStyle.Render(fmt.Sprintf("%s to %s", r.trend[0].Date, r.trend[len(r.trend)-1].Date))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render("Coding hours"), "  ", rangeLabel)

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderTrendTable(w),
		)),
		panelStyle.Width(w).Render(r.renderMetrics()),
		mutedStyle.Render("  ←/→: previous/next week"),
	)
}

func (r reportsModel) renderTrendTable(w int) string {
	rows := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %9s %8s %8s %7s", "Date", "Coding", "Sessions", "Commits", "Tasks")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 50))),
	}
	for _, d := range r.trend {
		rows = append(rows, fmt.Sprintf("  %-12s %9s %8d %8d %7s",
			d.Date, formatMinutes(d.TotalTime), d.Sessions, d.Commits, fmt.Sprintf("%d/%d", d.TasksCompleted, d.TotalTasks)))
	}
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderMetrics() string {
	m := r.metrics
	col := lipgloss.NewStyle().Width(34)

	daily := col.Render(strings.Join([]string{
		titleStyle.Render("Day " + m.Daily.Date),
		fmt.Sprintf("  Code quality   %s", scoreText(m.Daily.CodeQualityScore)),
		fmt.Sprintf("  Test coverage  %s", scoreText(m.Daily.TestsCoverage)),
		fmt.Sprintf("  Performance    %s", scoreText(m.Daily.PerformanceScore)),
		fmt.Sprintf("  Lines +%d -%d", m.Daily.TotalLinesWritten, m.Daily.TotalLinesDeleted),
	}, "\n"))

	weekly := col.Render(strings.Join([]string{
		titleStyle.Render("Past week"),
		fmt.Sprintf("  Lines +%d -%d", m.Weekly.LinesWritten, m.Weekly.LinesDeleted),
		fmt.Sprintf("  Files modified %d", m.Weekly.FilesModified),
		fmt.Sprintf("  Bugs fixed %d  Features %d", m.Weekly.BugsFixed, m.Weekly.FeaturesAdded),
		fmt.Sprintf("  Avg quality %s", scoreText(m.Weekly.AvgQualityScore)),
	}, "\n"))

	issues := col.Render(strings.Join([]string{
		titleStyle.Render("Issues"),
		fmt.Sprintf("  %d total, %d open", m.Issues.Total, m.Issues.Open),
		fmt.Sprintf("  %d in progress, %d resolved", m.Issues.InProgress, m.Issues.Resolved),
		priorityStyle("critical").Render(fmt.Sprintf("  %d critical", m.Issues.Critical)) + priorityStyle("high").Render(fmt.Sprintf("  %d high", m.Issues.High)),
		"",
		titleStyle.Render("Productivity"),
		fmt.Sprintf("  %.1fh over %d sessions", m.Productivity.TotalHours, m.Productivity.TotalSessions),
		fmt.Sprintf("  %d lines/hour", m.Productivity.LinesPerHour),
		fmt.Sprintf("  %.1f features/week", m.Productivity.FeaturesPerWeek),
	}, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, daily, weekly, issues)
}

func scoreText(v int) string {
	return scoreStyle(v).Render(fmt.Sprintf("%3d%%", v))
}
