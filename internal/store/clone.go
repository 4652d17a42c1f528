package store

import "time"

// cloner is implemented by every stored entity. clone returns a copy that
// shares no memory with the receiver.
type cloner[T any] interface {
	clone() T
}

// detach returns a pointer to an independent copy of v.
func detach[T cloner[T]](v T) *T {
	c := v.clone()
	return &c
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	t := *p
	return &t
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	n := *p
	return &n
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	n := *p
	return &n
}

func (x Session) clone() Session {
	x.EndTime = cloneTime(x.EndTime)
	x.Duration = cloneInt64(x.Duration)
	x.Notes = cloneString(x.Notes)
	x.Tags = cloneString(x.Tags)
	return x
}

func (x Commit) clone() Commit {
	x.CommitHash = cloneString(x.CommitHash)
	return x
}

func (x Task) clone() Task {
	x.Description = cloneString(x.Description)
	x.CompletedAt = cloneTime(x.CompletedAt)
	return x
}

func (x Goals) clone() Goals { return x }

func (x Activity) clone() Activity { return x }

func (x GitSync) clone() GitSync {
	x.CommitMessage = cloneString(x.CommitMessage)
	return x
}

func (x Break) clone() Break {
	x.EndTime = cloneTime(x.EndTime)
	return x
}

func (x Issue) clone() Issue {
	x.Description = cloneString(x.Description)
	x.Assignee = cloneString(x.Assignee)
	x.Repository = cloneString(x.Repository)
	x.Branch = cloneString(x.Branch)
	x.LinesAffected = cloneInt(x.LinesAffected)
	x.EstimatedHours = cloneInt(x.EstimatedHours)
	x.ActualHours = cloneInt(x.ActualHours)
	x.Tags = cloneString(x.Tags)
	x.ResolvedAt = cloneTime(x.ResolvedAt)
	return x
}

func (x Metrics) clone() Metrics { return x }

func (x FileChange) clone() FileChange {
	x.CommitID = cloneString(x.CommitID)
	x.SessionID = cloneInt64(x.SessionID)
	return x
}
