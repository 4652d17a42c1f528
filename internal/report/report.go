// Package report builds read-only summaries over the entity store.
package report

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sadopc/devtrack/internal/store"
)

// Source is the read side of the entity store used by the engine.
type Source interface {
	SessionsForDate(date string) []store.Session
	CommitsForDate(date string) []store.Commit
	CommitsForDateRange(start, end string) []store.Commit
	TasksForDate(date string) []store.Task
	GoalsForDate(date string) *store.Goals
	MetricsForDate(date string) *store.Metrics
	WeeklyMetrics(start, end string) []store.Metrics
	Issues() []store.Issue
}

type Engine struct {
	src Source
}

func New(src Source) *Engine {
	return &Engine{src: src}
}

type DashboardSummary struct {
	Date           string       `json:"-"`
	Sessions       int          `json:"sessions"`
	TotalTime      int64        `json:"totalTime"`      // minutes
	AverageSession int64        `json:"averageSession"` // minutes
	Commits        int          `json:"commits"`
	LinesOfCode    int          `json:"linesOfCode"`
	TasksCompleted int          `json:"tasksCompleted"`
	TotalTasks     int          `json:"totalTasks"`
	Goals          *store.Goals `json:"goals"`
}

// Dashboard summarises one day. The four inputs are fetched concurrently.
func (e *Engine) Dashboard(date string) DashboardSummary {
	var (
		wg       sync.WaitGroup
		sessions []store.Session
		commits  []store.Commit
		tasks    []store.Task
		goals    *store.Goals
	)
	wg.Add(4)
	go func() { defer wg.Done(); sessions = e.src.SessionsForDate(date) }()
	go func() { defer wg.Done(); commits = e.src.CommitsForDate(date) }()
	go func() { defer wg.Done(); tasks = e.src.TasksForDate(date) }()
	go func() { defer wg.Done(); goals = e.src.GoalsForDate(date) }()
	wg.Wait()

	total := totalDuration(sessions)
	d := DashboardSummary{
		Date:       date,
		Sessions:   len(sessions),
		TotalTime:  total / 60,
		Commits:    len(commits),
		TotalTasks: len(tasks),
		Goals:      goals,
	}
	if len(sessions) > 0 {
		d.AverageSession = total / int64(len(sessions)) / 60
	}
	for _, c := range commits {
		d.LinesOfCode += c.LinesChanged
	}
	for _, t := range tasks {
		if t.Completed {
			d.TasksCompleted++
		}
	}
	return d
}

// WeeklyTrend returns the dashboards of the seven days ending at date,
// oldest first.
func (e *Engine) WeeklyTrend(date string) ([]DashboardSummary, error) {
	end, err := store.ParseDate(date)
	if err != nil {
		return nil, err
	}
	out := make([]DashboardSummary, 0, 7)
	for i := 6; i >= 0; i-- {
		out = append(out, e.Dashboard(end.AddDate(0, 0, -i).Format(store.DateLayout)))
	}
	return out, nil
}

type WeeklyAggregate struct {
	LinesWritten        int `json:"linesWritten"`
	LinesDeleted        int `json:"linesDeleted"`
	FilesModified       int `json:"filesModified"`
	BugsFixed           int `json:"bugsFixed"`
	FeaturesAdded       int `json:"featuresAdded"`
	AvgQualityScore     int `json:"avgQualityScore"`
	AvgTestsCoverage    int `json:"avgTestsCoverage"`
	AvgPerformanceScore int `json:"avgPerformanceScore"`
}

type IssueStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Critical   int `json:"critical"`
	High       int `json:"high"`
}

type ProductivityStats struct {
	TotalSessions    int     `json:"totalSessions"`
	TotalHours       float64 `json:"totalHours"`
	AvgSessionLength int     `json:"avgSessionLength"` // minutes
	LinesPerHour     int     `json:"linesPerHour"`
	BugsPerDay       int     `json:"bugsPerDay"`
	FeaturesPerWeek  float64 `json:"featuresPerWeek"`
}

type EnhancedMetrics struct {
	Daily        store.Metrics     `json:"daily"`
	Weekly       WeeklyAggregate   `json:"weekly"`
	Issues       IssueStats        `json:"issues"`
	Productivity ProductivityStats `json:"productivity"`
}

// Scores assumed for a day without a stored metrics record.
const (
	defaultQualityScore     = 85
	defaultTestsCoverage    = 70
	defaultPerformanceScore = 80
)

// DefaultDailyMetrics is the record reported for a day with no stored
// metrics.
func DefaultDailyMetrics(date string) store.Metrics {
	return store.Metrics{
		Date:             date,
		CodeQualityScore: defaultQualityScore,
		TestsCoverage:    defaultTestsCoverage,
		PerformanceScore: defaultPerformanceScore,
	}
}

// EnhancedMetrics combines the daily record, a rollup of the preceding week,
// issue counts and session productivity for date.
func (e *Engine) EnhancedMetrics(date string) (EnhancedMetrics, error) {
	day, err := store.ParseDate(date)
	if err != nil {
		return EnhancedMetrics{}, fmt.Errorf("enhanced metrics: %w", err)
	}

	daily := DefaultDailyMetrics(date)
	if m := e.src.MetricsForDate(date); m != nil {
		daily = *m
	}

	weekStart := day.AddDate(0, 0, -7).Format(store.DateLayout)
	weekly := foldWeekly(e.src.WeeklyMetrics(weekStart, date))

	return EnhancedMetrics{
		Daily:        daily,
		Weekly:       weekly,
		Issues:       countIssues(e.src.Issues()),
		Productivity: productivity(e.src.SessionsForDate(date), daily, weekly),
	}, nil
}

// foldWeekly sums the counters and folds each score as round((acc+m)/2),
// starting from the default scores. Later records weigh more than earlier
// ones.
func foldWeekly(records []store.Metrics) WeeklyAggregate {
	agg := WeeklyAggregate{
		AvgQualityScore:     defaultQualityScore,
		AvgTestsCoverage:    defaultTestsCoverage,
		AvgPerformanceScore: defaultPerformanceScore,
	}
	for _, m := range records {
		agg.LinesWritten += m.TotalLinesWritten
		agg.LinesDeleted += m.TotalLinesDeleted
		agg.FilesModified += m.FilesModified
		agg.BugsFixed += m.BugsFixed
		agg.FeaturesAdded += m.FeaturesAdded
		agg.AvgQualityScore = roundHalfUp(float64(agg.AvgQualityScore+m.CodeQualityScore) / 2)
		agg.AvgTestsCoverage = roundHalfUp(float64(agg.AvgTestsCoverage+m.TestsCoverage) / 2)
		agg.AvgPerformanceScore = roundHalfUp(float64(agg.AvgPerformanceScore+m.PerformanceScore) / 2)
	}
	return agg
}

func countIssues(issues []store.Issue) IssueStats {
	st := IssueStats{Total: len(issues)}
	for _, is := range issues {
		switch is.Status {
		case store.IssueOpen:
			st.Open++
		case store.IssueInProgress:
			st.InProgress++
		case store.IssueResolved:
			st.Resolved++
		}
		switch is.Priority {
		case "critical":
			st.Critical++
		case "high":
			st.High++
		}
	}
	return st
}

func productivity(sessions []store.Session, daily store.Metrics, weekly WeeklyAggregate) ProductivityStats {
	hours := float64(totalDuration(sessions)) / 3600
	p := ProductivityStats{
		TotalSessions:   len(sessions),
		TotalHours:      hours,
		BugsPerDay:      daily.BugsFixed,
		FeaturesPerWeek: float64(weekly.FeaturesAdded) / 7,
	}
	if len(sessions) > 0 {
		p.AvgSessionLength = roundHalfUp(hours * 60 / float64(len(sessions)))
	}
	if hours > 0 {
		p.LinesPerHour = roundHalfUp(float64(daily.TotalLinesWritten) / hours)
	}
	return p
}

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type RangeSummary struct {
	TotalSessions    int   `json:"totalSessions"`
	TotalCommits     int   `json:"totalCommits"`
	TotalTasks       int   `json:"totalTasks"`
	CompletedTasks   int   `json:"completedTasks"`
	TotalCodingTime  int64 `json:"totalCodingTime"` // seconds
	TotalLinesOfCode int   `json:"totalLinesOfCode"`
}

type RangeExport struct {
	DateRange DateRange       `json:"dateRange"`
	Sessions  []store.Session `json:"sessions"`
	Commits   []store.Commit  `json:"commits"`
	Tasks     []store.Task    `json:"tasks"`
	Summary   RangeSummary    `json:"summary"`
}

// ExportRange collects sessions and tasks day by day over [start, end] and
// commits with a single range query.
func (e *Engine) ExportRange(start, end string) (RangeExport, error) {
	from, err := store.ParseDate(start)
	if err != nil {
		return RangeExport{}, fmt.Errorf("export range: %w", err)
	}
	to, err := store.ParseDate(end)
	if err != nil {
		return RangeExport{}, fmt.Errorf("export range: %w", err)
	}

	out := RangeExport{
		DateRange: DateRange{StartDate: start, EndDate: end},
		Sessions:  []store.Session{},
		Tasks:     []store.Task{},
		Commits:   e.src.CommitsForDateRange(start, end),
	}
	for d := from; !d.After(to); d = d.Add(24 * time.Hour) {
		day := d.Format(store.DateLayout)
		out.Sessions = append(out.Sessions, e.src.SessionsForDate(day)...)
		out.Tasks = append(out.Tasks, e.src.TasksForDate(day)...)
	}

	out.Summary = RangeSummary{
		TotalSessions:   len(out.Sessions),
		TotalCommits:    len(out.Commits),
		TotalTasks:      len(out.Tasks),
		TotalCodingTime: totalDuration(out.Sessions),
	}
	for _, t := range out.Tasks {
		if t.Completed {
			out.Summary.CompletedTasks++
		}
	}
	for _, c := range out.Commits {
		out.Summary.TotalLinesOfCode += c.LinesChanged
	}
	return out, nil
}

func totalDuration(sessions []store.Session) int64 {
	var total int64
	for _, s := range sessions {
		if s.Duration != nil {
			total += *s.Duration
		}
	}
	return total
}

// roundHalfUp rounds to the nearest integer with halves going up, so -2.5
// becomes -2.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
