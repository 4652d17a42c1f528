package tui

import (
	"time"

	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
)

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel drives one coding session. The session is created in the store
// on start and closed with its wall-clock duration on stop.
type timerModel struct {
	tracker *tracker.Tracker

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	projectName string
	sessionID   int64

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(tr *tracker.Tracker, idleTimeout time.Duration) timerModel {
	if idleTimeout <= 0 {
		idleTimeout = 5 * time.Minute
	}
	return timerModel{
		tracker:      tr,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  idleTimeout,
	}
}

func (t *timerModel) start(projectName string) *store.Session {
	sess := t.tracker.StartSession(store.Session{
		ProjectName: projectName,
		StartTime:   t.tracker.Store().Now(),
		IsActive:    true,
	})
	t.state = timerRunning
	t.startTime = time.Now()
	t.elapsed = 0
	t.pauseGap = 0
	t.projectName = projectName
	t.sessionID = sess.ID
	t.lastActivity = time.Now()
	t.isIdle = false
	return sess
}

func (t *timerModel) stop() (*store.Session, error) {
	if t.state == timerStopped {
		return nil, nil
	}
	sess, err := t.tracker.EndSession(t.sessionID, t.tracker.Store().Now())
	if err != nil {
		return nil, err
	}
	t.state = timerStopped
	t.elapsed = 0
	return sess, nil
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = time.Now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += time.Since(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = time.Now()
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state != timerRunning {
		return
	}
	t.elapsed = time.Since(t.startTime) - t.pauseGap
	if time.Since(t.lastActivity) > t.idleTimeout && !t.isIdle {
		t.isIdle = true
		t.pause()
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = time.Now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return time.Since(t.startTime) - t.pauseGap
}
