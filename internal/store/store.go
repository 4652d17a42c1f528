package store

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrNotFound is returned by updates that target an unknown id.
var ErrNotFound = errors.New("not found")

// Store holds every entity collection in memory. All methods are safe for
// concurrent use; queries return copies.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	loc *time.Location

	sessions    map[int64]Session
	commits     map[int64]Commit
	tasks       map[int64]Task
	goals       map[string]Goals
	activities  map[int64]Activity
	gitSyncs    map[int64]GitSync
	breaks      map[int64]Break
	issues      map[int64]Issue
	metrics     map[string]Metrics
	fileChanges map[int64]FileChange

	sessionSeq    sequence
	commitSeq     sequence
	taskSeq       sequence
	goalsSeq      sequence
	activitySeq   sequence
	gitSyncSeq    sequence
	breakSeq      sequence
	issueSeq      sequence
	metricsSeq    sequence
	fileChangeSeq sequence
}

type Option func(*Store)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the calendar used by interval day matching.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

func New(opts ...Option) *Store {
	s := &Store{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

// Location returns the calendar used for interval day matching.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// reset empties every collection. Sequences are kept so ids are never reused.
func (s *Store) reset() {
	s.sessions = make(map[int64]Session)
	s.commits = make(map[int64]Commit)
	s.tasks = make(map[int64]Task)
	s.goals = make(map[string]Goals)
	s.activities = make(map[int64]Activity)
	s.gitSyncs = make(map[int64]GitSync)
	s.breaks = make(map[int64]Break)
	s.issues = make(map[int64]Issue)
	s.metrics = make(map[string]Metrics)
	s.fileChanges = make(map[int64]FileChange)
}

// sequence hands out ids for one entity type, starting at 1.
type sequence struct {
	last int64
}

func (q *sequence) take() int64 {
	q.last++
	return q.last
}

// advance makes sure the next id handed out is greater than id.
func (q *sequence) advance(id int64) {
	if id > q.last {
		q.last = id
	}
}

// collect returns copies of the values of m that satisfy keep, ordered by
// id.
func collect[K comparable, T cloner[T]](m map[K]T, id func(T) int64, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v.clone())
		}
	}
	slices.SortFunc(out, func(a, b T) int { return cmp.Compare(id(a), id(b)) })
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}
