package store

import "time"

// CreateBreak stores a break. A zero StartTime defaults to now.
func (s *Store) CreateBreak(in Break) *Break {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	in.ID = s.breakSeq.take()
	if in.StartTime.IsZero() {
		in.StartTime = now
	}
	in.CreatedAt = now
	s.breaks[in.ID] = in.clone()
	return detach(in)
}

func (s *Store) ActiveBreaks() []Break {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.breaks, breakID, func(b Break) bool { return b.IsActive })
}

func (s *Store) BreaksForDate(date string) []Break {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := s.onDay(date, matchInterval)
	return collect(s.breaks, breakID, func(b Break) bool { return match(b.StartTime) })
}

// EndActiveBreak ends the active break with the lowest id. It returns nil and
// changes nothing when no break is active.
func (s *Store) EndActiveBreak(end time.Time) *Break {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := collect(s.breaks, breakID, func(b Break) bool { return b.IsActive })
	if len(active) == 0 {
		return nil
	}
	b := active[0]
	b.EndTime = timePtr(end)
	b.IsActive = false
	s.breaks[b.ID] = b
	return detach(b)
}

func breakID(b Break) int64 { return b.ID }
