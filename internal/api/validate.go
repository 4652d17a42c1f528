package api

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sadopc/devtrack/internal/store"
)

// validationError marks a request the client must fix; it maps to 400.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

func oneOf(field, v string, allowed []string) error {
	if !slices.Contains(allowed, v) {
		return invalid("%s must be one of %s", field, strings.Join(allowed, ", "))
	}
	return nil
}

func percent(field string, v *int) error {
	if v != nil && (*v < 0 || *v > 100) {
		return invalid("%s must be between 0 and 100", field)
	}
	return nil
}

func nonNegative(field string, v int) error {
	if v < 0 {
		return invalid("%s must not be negative", field)
	}
	return nil
}

func dateField(field, v string) error {
	if _, err := store.ParseDate(v); err != nil {
		return invalid("%s must be YYYY-MM-DD", field)
	}
	return nil
}

// maxExportDays bounds the span of a range export, which is walked day by day.
const maxExportDays = 5 * 366

// exportSpan rejects ranges longer than maxExportDays. A start after the end
// is an empty range and passes.
func exportSpan(start, end string) error {
	from, err := store.ParseDate(start)
	if err != nil {
		return invalid("startDate must be YYYY-MM-DD")
	}
	to, err := store.ParseDate(end)
	if err != nil {
		return invalid("endDate must be YYYY-MM-DD")
	}
	if to.After(from.AddDate(0, 0, maxExportDays)) {
		return invalid("export range must not exceed %d days", maxExportDays)
	}
	return nil
}

// first returns the first non-nil error.
func first(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func validateSession(in store.Session) error {
	return first(
		required("projectName", in.ProjectName),
		percent("productivity", &in.Productivity),
	)
}

func validateSessionPatch(p store.SessionPatch) error {
	if p.ProjectName != nil {
		if err := required("projectName", *p.ProjectName); err != nil {
			return err
		}
	}
	if p.Duration != nil && *p.Duration < 0 {
		return invalid("duration must not be negative")
	}
	return percent("productivity", p.Productivity)
}

func validateCommit(in store.Commit) error {
	return first(
		required("repository", in.Repository),
		required("message", in.Message),
		nonNegative("linesChanged", in.LinesChanged),
	)
}

type taskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

func validateTaskPatch(p store.TaskPatch) error {
	if p.Title != nil {
		return required("title", *p.Title)
	}
	return nil
}

func validateGoals(in store.Goals) error {
	return first(
		dateField("date", in.Date),
		nonNegative("codingTimeTarget", in.CodingTimeTarget),
		nonNegative("commitsTarget", in.CommitsTarget),
		nonNegative("tasksTarget", in.TasksTarget),
	)
}

func validateGitSync(in store.GitSync) error {
	return first(
		required("repository", in.Repository),
		required("branch", in.Branch),
		oneOf("action", in.Action, store.GitActions),
	)
}

func validateBreak(in store.Break) error {
	if err := oneOf("type", in.Type, store.BreakTypes); err != nil {
		return err
	}
	if in.Duration <= 0 {
		return invalid("duration must be positive")
	}
	return nil
}

func validateIssue(in store.Issue) error {
	if err := required("title", in.Title); err != nil {
		return err
	}
	for _, f := range []struct {
		name, v string
		allowed []string
	}{
		{"status", in.Status, store.IssueStatuses},
		{"priority", in.Priority, store.IssuePriorities},
		{"category", in.Category, store.IssueCategories},
	} {
		if f.v != "" {
			if err := oneOf(f.name, f.v, f.allowed); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateIssuePatch(p store.IssuePatch) error {
	if p.Title != nil {
		if err := required("title", *p.Title); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name    string
		v       *string
		allowed []string
	}{
		{"status", p.Status, store.IssueStatuses},
		{"priority", p.Priority, store.IssuePriorities},
		{"category", p.Category, store.IssueCategories},
	} {
		if f.v != nil {
			if err := oneOf(f.name, *f.v, f.allowed); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateMetrics(in store.MetricsInput) error {
	return first(
		dateField("date", in.Date),
		percent("codeQualityScore", in.CodeQualityScore),
		percent("testsCoverage", in.TestsCoverage),
		percent("performanceScore", in.PerformanceScore),
	)
}

func validateFileChange(in store.FileChange) error {
	return first(
		required("filePath", in.FilePath),
		required("repository", in.Repository),
		oneOf("changeType", in.ChangeType, store.FileChangeTypes),
	)
}
