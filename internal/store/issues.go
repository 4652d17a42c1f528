package store

import (
	"cmp"
	"fmt"
	"slices"
)

// CreateIssue stores an issue, defaulting to an open medium-priority bug.
func (s *Store) CreateIssue(in Issue) *Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	in.ID = s.issueSeq.take()
	if in.Status == "" {
		in.Status = IssueOpen
	}
	if in.Priority == "" {
		in.Priority = "medium"
	}
	if in.Category == "" {
		in.Category = "bug"
	}
	in.CreatedAt = now
	in.UpdatedAt = now
	in.ResolvedAt = nil
	if in.Status == IssueResolved {
		in.ResolvedAt = timePtr(now)
	}
	s.issues[in.ID] = in.clone()
	return detach(in)
}

// UpdateIssue merges p into the issue and bumps UpdatedAt. ResolvedAt is set
// whenever the patch sets the status to resolved and is never cleared.
func (s *Store) UpdateIssue(id int64, p IssuePatch) (*Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	is, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("update issue %d: %w", id, ErrNotFound)
	}
	now := s.now()
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setOptString := func(dst **string, v *string) {
		if v != nil {
			c := *v
			*dst = &c
		}
	}
	setOptInt := func(dst **int, v *int) {
		if v != nil {
			c := *v
			*dst = &c
		}
	}
	setString(&is.Title, p.Title)
	setOptString(&is.Description, p.Description)
	setString(&is.Status, p.Status)
	setString(&is.Priority, p.Priority)
	setString(&is.Category, p.Category)
	setOptString(&is.Assignee, p.Assignee)
	setOptString(&is.Repository, p.Repository)
	setOptString(&is.Branch, p.Branch)
	setOptInt(&is.LinesAffected, p.LinesAffected)
	setOptInt(&is.EstimatedHours, p.EstimatedHours)
	setOptInt(&is.ActualHours, p.ActualHours)
	setOptString(&is.Tags, p.Tags)

	is.UpdatedAt = now
	if p.Status != nil && *p.Status == IssueResolved {
		is.ResolvedAt = timePtr(now)
	}
	s.issues[id] = is
	return detach(is), nil
}

// Issues returns every issue, newest first.
func (s *Store) Issues() []Issue {
	s.mu.RLock()
	out := collect(s.issues, issueID, nil)
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b Issue) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (s *Store) IssuesForDate(date string) []Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := s.onDay(date, matchInterval)
	return collect(s.issues, issueID, func(is Issue) bool { return match(is.CreatedAt) })
}

func issueID(is Issue) int64 { return is.ID }
