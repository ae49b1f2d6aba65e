// Package throttle implements the local resend cooldown: an escalating
// wall-clock countdown between accepted resend requests. This is a UX
// courtesy, not an enforcement mechanism; the identity service still rate
// limits on its side.
package throttle

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/campusconnect/loginflow/internal/pkg/sched"
)

// DefaultBase is the cooldown base used when the caller passes a non-positive
// duration. The k-th accepted resend starts a cooldown of base*(1+k), k
// counted from zero, so the schedule is 30s, 60s, 90s, ...
const DefaultBase = 30 * time.Second

// Throttle tracks the resend countdown, the accepted-attempt counter, and the
// in-flight guard for one challenge session.
type Throttle struct {
	mu        sync.Mutex
	base      time.Duration
	remaining int // seconds
	attempts  int
	sending   *atomic.Bool
	ticker    *sched.Ticker
	onTick    func(secondsRemaining int)
}

// New creates a throttle with the given cooldown base. onTick is invoked once
// per countdown change (including reaching zero) and may be nil.
func New(base time.Duration, onTick func(int)) *Throttle {
	if base <= 0 {
		base = DefaultBase
	}

	return &Throttle{
		base:    base,
		sending: atomic.NewBool(false),
		onTick:  onTick,
	}
}

// CanResend reports whether a resend request is currently permitted: no
// cooldown running and no request in flight. The first send after challenge
// issuance has no cooldown.
func (t *Throttle) CanResend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining == 0 && !t.sending.Load()
}

// BeginSend claims the in-flight slot. It returns false when a cooldown is
// running or another request is already in flight; the caller must then drop
// the trigger without any external call.
func (t *Throttle) BeginSend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining > 0 {
		return false
	}
	return t.sending.CompareAndSwap(false, true)
}

// Accept records that the collaborator accepted the resend: the attempt
// counter increments and the next cooldown starts at base*(1+attempts), using
// the count before this increment.
func (t *Throttle) Accept() {
	t.mu.Lock()

	t.sending.Store(false)
	t.remaining = int(t.base.Seconds()) * (1 + t.attempts)
	t.attempts++

	t.stopTickerLocked()
	t.ticker = sched.Every(time.Second, t.tick)

	remaining := t.remaining
	t.mu.Unlock()

	t.emit(remaining)
}

// Fail records that the collaborator rejected the resend. No cooldown starts
// and the attempt counter is untouched.
func (t *Throttle) Fail() {
	t.sending.Store(false)
}

// SecondsRemaining returns the current countdown value.
func (t *Throttle) SecondsRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Attempts returns how many resends were accepted this session.
func (t *Throttle) Attempts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Sending reports whether a resend request is in flight.
func (t *Throttle) Sending() bool {
	return t.sending.Load()
}

// Reset returns the throttle to its initial state: countdown stopped and
// zeroed, attempt counter cleared. Called when the flow goes back to the
// credentials step.
func (t *Throttle) Reset() {
	t.mu.Lock()
	t.stopTickerLocked()
	t.remaining = 0
	t.attempts = 0
	t.sending.Store(false)
	t.mu.Unlock()
}

// Stop cancels the countdown ticker. Owned-timer rule: whoever tears the
// session down calls Stop so no tick mutates state after disposal.
func (t *Throttle) Stop() {
	t.mu.Lock()
	t.stopTickerLocked()
	t.mu.Unlock()
}

func (t *Throttle) tick() {
	t.mu.Lock()

	if t.remaining == 0 {
		t.stopTickerLocked()
		t.mu.Unlock()
		return
	}

	t.remaining--
	if t.remaining == 0 {
		t.stopTickerLocked()
	}

	remaining := t.remaining
	t.mu.Unlock()

	t.emit(remaining)
}

func (t *Throttle) stopTickerLocked() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

func (t *Throttle) emit(remaining int) {
	if t.onTick != nil {
		t.onTick(remaining)
	}
}
