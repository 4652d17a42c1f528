package store

import "fmt"

// CreateSession stores a new coding session. A zero StartTime defaults to now.
func (s *Store) CreateSession(in Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.ID = s.sessionSeq.take()
	if in.StartTime.IsZero() {
		in.StartTime = s.now()
	}
	s.sessions[in.ID] = in.clone()
	return detach(in)
}

func (s *Store) UpdateSession(id int64, p SessionPatch) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("update session %d: %w", id, ErrNotFound)
	}
	if p.ProjectName != nil {
		sess.ProjectName = *p.ProjectName
	}
	if p.StartTime != nil {
		sess.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		sess.EndTime = timePtr(*p.EndTime)
	}
	if p.Duration != nil {
		d := *p.Duration
		sess.Duration = &d
	}
	if p.IsActive != nil {
		sess.IsActive = *p.IsActive
	}
	if p.LinesWritten != nil {
		sess.LinesWritten = *p.LinesWritten
	}
	if p.LinesDeleted != nil {
		sess.LinesDeleted = *p.LinesDeleted
	}
	if p.FilesModified != nil {
		sess.FilesModified = *p.FilesModified
	}
	if p.Productivity != nil {
		sess.Productivity = *p.Productivity
	}
	if p.Notes != nil {
		n := *p.Notes
		sess.Notes = &n
	}
	if p.Tags != nil {
		t := *p.Tags
		sess.Tags = &t
	}
	s.sessions[id] = sess
	return detach(sess), nil
}

func (s *Store) GetSession(id int64) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %d: %w", id, ErrNotFound)
	}
	return detach(sess), nil
}

func (s *Store) ActiveSessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.sessions, sessionID, func(x Session) bool { return x.IsActive })
}

func (s *Store) SessionsForDate(date string) []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := s.onDay(date, matchPrefix)
	return collect(s.sessions, sessionID, func(x Session) bool { return match(x.StartTime) })
}

func sessionID(x Session) int64 { return x.ID }
