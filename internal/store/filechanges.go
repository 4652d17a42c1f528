package store

func (s *Store) CreateFileChange(in FileChange) *FileChange {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = s.fileChangeSeq.take()
	in.Timestamp = s.now()
	s.fileChanges[in.ID] = in.clone()
	return detach(in)
}

func (s *Store) FileChangesForDate(date string) []FileChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := s.onDay(date, matchInterval)
	return collect(s.fileChanges, fileChangeID, func(f FileChange) bool { return match(f.Timestamp) })
}

// FileChangesForSession returns the changes linked to sessionID. The session
// itself does not need to exist.
func (s *Store) FileChangesForSession(sessionID int64) []FileChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.fileChanges, fileChangeID, func(f FileChange) bool {
		return f.SessionID != nil && *f.SessionID == sessionID
	})
}

func fileChangeID(f FileChange) int64 { return f.ID }
