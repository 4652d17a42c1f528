package store

// CreateGitSync records a git action. There is no real git integration, so
// every sync is stored as successful.
func (s *Store) CreateGitSync(in GitSync) *GitSync {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = s.gitSyncSeq.take()
	in.Status = "success"
	in.CreatedAt = s.now()
	s.gitSyncs[in.ID] = in.clone()
	return detach(in)
}

func (s *Store) GitSyncsForDate(date string) []GitSync {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := s.onDay(date, matchInterval)
	return collect(s.gitSyncs, gitSyncID, func(g GitSync) bool { return match(g.CreatedAt) })
}

func gitSyncID(g GitSync) int64 { return g.ID }
