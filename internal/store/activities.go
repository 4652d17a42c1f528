package store

import (
	"cmp"
	"slices"
)

// CreateActivity appends an entry to the activity log.
func (s *Store) CreateActivity(kind, description string) *Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := Activity{
		ID:          s.activitySeq.take(),
		Type:        kind,
		Description: description,
		Timestamp:   s.now(),
	}
	s.activities[a.ID] = a
	return &a
}

// RecentActivities returns up to limit activities, newest first. Entries
// sharing a timestamp are ordered by descending id.
func (s *Store) RecentActivities(limit int) []Activity {
	s.mu.RLock()
	out := collect(s.activities, activityID, nil)
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b Activity) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func activityID(a Activity) int64 { return a.ID }
