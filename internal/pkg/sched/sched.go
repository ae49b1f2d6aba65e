// Package sched provides cancellable scheduled tasks with explicit ownership:
// whichever component starts a timer or ticker is responsible for stopping it
// on teardown or state reset, so no callback can mutate state after disposal.
package sched

import (
	"sync"
	"time"
)

// Timer is a one-shot scheduled task that can be cancelled before it fires.
type Timer struct {
	mu      sync.Mutex
	t       *time.Timer
	stopped bool
}

// After schedules fn to run once after d. Stop prevents the run if it has not
// started yet.
func After(d time.Duration, fn func()) *Timer {
	tm := &Timer{}
	tm.t = time.AfterFunc(d, func() {
		tm.mu.Lock()
		if tm.stopped {
			tm.mu.Unlock()
			return
		}
		tm.mu.Unlock()

		fn()
	})
	return tm
}

// Stop cancels the timer. Safe to call multiple times and after firing.
func (tm *Timer) Stop() {
	if tm == nil {
		return
	}

	tm.mu.Lock()
	tm.stopped = true
	tm.mu.Unlock()

	tm.t.Stop()
}

// Ticker runs fn repeatedly at a fixed interval until stopped.
type Ticker struct {
	stop chan struct{}
	once sync.Once
}

// Every schedules fn to run every d until Stop is called.
func Every(d time.Duration, fn func()) *Ticker {
	tk := &Ticker{stop: make(chan struct{})}

	go func() {
		t := time.NewTicker(d)
		defer t.Stop()

		for {
			select {
			case <-tk.stop:
				return
			case <-t.C:
				fn()
			}
		}
	}()

	return tk
}

// Stop cancels the ticker. Safe to call multiple times.
func (tk *Ticker) Stop() {
	if tk == nil {
		return
	}
	tk.once.Do(func() { close(tk.stop) })
}
