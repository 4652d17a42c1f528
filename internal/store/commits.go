package store

// CreateCommit records a commit. A zero Timestamp defaults to now, an empty
// branch to "main" and a non-positive file count to 1.
func (s *Store) CreateCommit(in Commit) *Commit {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = s.commitSeq.take()
	if in.Timestamp.IsZero() {
		in.Timestamp = s.now()
	}
	if in.Branch == "" {
		in.Branch = "main"
	}
	if in.FilesChanged <= 0 {
		in.FilesChanged = 1
	}
	s.commits[in.ID] = in.clone()
	return detach(in)
}

func (s *Store) CommitsForDate(date string) []Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := s.onDay(date, matchPrefix)
	return collect(s.commits, commitID, func(c Commit) bool { return match(c.Timestamp) })
}

// CommitsForDateRange returns commits whose UTC date lies in [start, end].
func (s *Store) CommitsForDateRange(start, end string) []Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.commits, commitID, func(c Commit) bool { return inRange(c.Timestamp, start, end) })
}

func commitID(c Commit) int64 { return c.ID }
