package tui

import (
	"time"

	"github.com/sadopc/smartbill/internal/model"
	"github.com/sadopc/smartbill/internal/store"
)

const timerAppName = "smartbill"

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel runs a manual stopwatch. Nothing is written until stop, which
// records one time entry covering the tracked interval minus pauses.
type timerModel struct {
	store *store.Store

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	title      string
	clientID   string
	clientName string

	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(s *store.Store) timerModel {
	return timerModel{
		store:        s,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  5 * time.Minute,
	}
}

func (t *timerModel) start(title, clientID, clientName string) {
	if title == "" {
		title = "Manual entry"
	}
	t.state = timerRunning
	t.startTime = time.Now()
	t.elapsed = 0
	t.pauseGap = 0
	t.title = title
	t.clientID = clientID
	t.clientName = clientName
	t.lastActivity = time.Now()
	t.isIdle = false
}

func (t *timerModel) stop() (*model.TimeEntry, error) {
	if t.state == timerStopped {
		return nil, nil
	}
	secs := int64(t.currentElapsed().Seconds())
	entry, err := t.store.AddEntry(model.TimeEntry{
		Timestamp:   t.startTime.Format(time.RFC3339),
		AppName:     timerAppName,
		WindowTitle: t.title,
		Duration:    max(secs, 0),
		ClientID:    t.clientID,
	})
	if err != nil {
		return nil, err
	}
	t.state = timerStopped
	t.elapsed = 0
	return entry, nil
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
	if t.state == timerRunning {
		t.elapsed = time.Since(t.startTime) - t.pauseGap

		if time.Since(t.lastActivity) > t.idleTimeout && !t.isIdle {
			t.isIdle = true
			t.pause()
		}
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = time.Now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
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
