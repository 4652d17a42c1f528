package store

// GoalsForDate returns the goals for date, or nil when none are set.
func (s *Store) GoalsForDate(date string) *Goals {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.goals[date]
	if !ok {
		return nil
	}
	return &g
}

// UpsertGoals inserts goals for in.Date, or overwrites the targets of the
// existing record keeping its id.
func (s *Store) UpsertGoals(in Goals) *Goals {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.goals[in.Date]; ok {
		in.ID = existing.ID
	} else {
		in.ID = s.goalsSeq.take()
	}
	s.goals[in.Date] = in
	return &in
}

func goalsID(g Goals) int64 { return g.ID }
