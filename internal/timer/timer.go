package timer

import (
	"sync"
	"time"
)

// Scheduler schedules a one-shot callback after a delay.
//
// Callers interested in the single-timer invariant must cancel the previously
// issued token before scheduling again; tokens themselves make that safe by
// being idempotent and callable after the callback already fired.
type Scheduler interface {
	ScheduleOnce(delay time.Duration, fn func()) *Token
}

// Token represents one scheduled callback and allows its cancellation.
type Token struct {
	// mu guards done and stop.
	mu sync.Mutex
	// done is set once the callback fired or the token was cancelled.
	done bool
	// stop releases the underlying timer resource, set by the scheduler.
	stop func()
}

// Cancel invalidates the token. It is idempotent, nil-safe and safe to call
// after the callback has already fired.
func (t *Token) Cancel() {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return
	}

	t.done = true

	if t.stop != nil {
		t.stop()
	}
}

// expire marks the token as fired and reports whether the callback should
// still run. A token cancelled before expiry wins the race.
func (t *Token) expire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return false
	}

	t.done = true

	return true
}

// Done reports whether the token has fired or been cancelled.
func (t *Token) Done() bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.done
}

// Real is the production Scheduler backed by the runtime timer wheel.
type Real struct{}

// NewReal returns a Scheduler that fires callbacks on real wall-clock delays.
func NewReal() *Real {
	return &Real{}
}

// ScheduleOnce arranges for fn to run once after the delay elapses.
// Cancelling the returned token before expiry suppresses the callback even
// when the underlying timer has already started firing.
func (*Real) ScheduleOnce(delay time.Duration, fn func()) *Token {
	token := &Token{}

	t := time.AfterFunc(delay, func() {
		if token.expire() {
			fn()
		}
	})

	token.mu.Lock()
	token.stop = func() { t.Stop() }
	token.mu.Unlock()

	return token
}
