// Package tracker is the command layer shared by the HTTP API and the
// terminal UI. Every command mutates the entity store and records the
// matching activity.
package tracker

import (
	"log/slog"

	"github.com/sadopc/devtrack/internal/backup"
	"github.com/sadopc/devtrack/internal/report"
	"github.com/sadopc/devtrack/internal/store"
)

// Publisher receives every activity recorded by the tracker.
type Publisher interface {
	Publish(a store.Activity)
}

type Tracker struct {
	store   *store.Store
	backups *backup.Manager
	reports *report.Engine
	logger  *slog.Logger
	pub     Publisher
}

type Option func(*Tracker)

// WithPublisher forwards recorded activities to p.
func WithPublisher(p Publisher) Option {
	return func(t *Tracker) { t.pub = p }
}

func New(s *store.Store, b *backup.Manager, logger *slog.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		store:   s,
		backups: b,
		reports: report.New(s),
		logger:  logger.With("component", "tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Store() *store.Store      { return t.store }
func (t *Tracker) Backups() *backup.Manager { return t.backups }
func (t *Tracker) Reports() *report.Engine  { return t.reports }

func (t *Tracker) record(kind, description string) {
	a := t.store.CreateActivity(kind, description)
	t.logger.Debug("activity", "type", kind, "description", description)
	if t.pub != nil {
		t.pub.Publish(*a)
	}
}
