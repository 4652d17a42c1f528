package prefs

import (
	"fmt"
	"strconv"

	"github.com/sadopc/devtrack/internal/store"
)

// Keys seeded by the first migration.
const (
	KeyBreakShort    = "break_short_minutes"
	KeyBreakLong     = "break_long_minutes"
	KeyGoalCoding    = "goal_coding_minutes"
	KeyGoalCommits   = "goal_commits"
	KeyGoalTasks     = "goal_tasks"
	KeyRetentionDays = "backup_retention_days"
	KeyIdleTimeout   = "idle_timeout" // seconds
)

type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (p *Prefs) Get(key string) (string, error) {
	var value string
	if err := p.db.Get(&value, `SELECT value FROM settings WHERE key = ?`, key); err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (p *Prefs) Set(key, value string) error {
	_, err := p.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (p *Prefs) All() ([]Setting, error) {
	settings := []Setting{}
	if err := p.db.Select(&settings, `SELECT key, value FROM settings ORDER BY key`); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Int returns the integer value of key, or fallback when it is missing or
// not a number.
func (p *Prefs) Int(key string, fallback int) int {
	v, err := p.Get(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// BreakMinutes returns the configured length of a short or long break.
// Custom breaks have no default and report 0.
func (p *Prefs) BreakMinutes(kind string) int {
	switch kind {
	case "short":
		return p.Int(KeyBreakShort, 5)
	case "long":
		return p.Int(KeyBreakLong, 15)
	}
	return 0
}

// DefaultGoals returns the daily targets used when a day has no goals of its
// own. Date is left empty.
func (p *Prefs) DefaultGoals() store.Goals {
	return store.Goals{
		CodingTimeTarget: p.Int(KeyGoalCoding, 240),
		CommitsTarget:    p.Int(KeyGoalCommits, 5),
		TasksTarget:      p.Int(KeyGoalTasks, 3),
	}
}
