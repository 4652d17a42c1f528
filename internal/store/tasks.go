package store

import "fmt"

// CreateTask stores a task stamped with the current time. A task created
// already completed gets CompletedAt set as well.
func (s *Store) CreateTask(title string, description *string, completed bool) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := Task{
		ID:        s.taskSeq.take(),
		Title:     title,
		Completed: completed,
		Timestamp: now,
	}
	if description != nil {
		d := *description
		t.Description = &d
	}
	if completed {
		t.CompletedAt = timePtr(now)
	}
	s.tasks[t.ID] = t
	return detach(t)
}

// UpdateTask merges p into the task. CompletedAt is only set on the first
// incomplete to complete transition.
func (s *Store) UpdateTask(id int64, p TaskPatch) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	wasCompleted := t.Completed
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
		if *p.Completed && !wasCompleted && t.CompletedAt == nil {
			t.CompletedAt = timePtr(s.now())
		}
	}
	s.tasks[id] = t
	return detach(t), nil
}

func (s *Store) GetTask(id int64) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return detach(t), nil
}

func (s *Store) TasksForDate(date string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := s.onDay(date, matchPrefix)
	return collect(s.tasks, taskID, func(t Task) bool { return match(t.Timestamp) })
}

func taskID(t Task) int64 { return t.ID }
