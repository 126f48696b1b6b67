package timer

import (
	"sync"
	"time"
)

// Manual is a deterministic Scheduler for tests: callbacks never fire on
// their own, they run only when Fire is called.
type Manual struct {
	// mu guards the pending queue.
	mu sync.Mutex
	// pending holds scheduled callbacks in FIFO order.
	pending []*manualEntry
}

// manualEntry pairs a scheduled callback with its cancellation token.
type manualEntry struct {
	fn    func()
	token *Token
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// ScheduleOnce queues fn; the delay is recorded nowhere because firing is
// always explicit.
func (m *Manual) ScheduleOnce(_ time.Duration, fn func()) *Token {
	token := &Token{}

	m.mu.Lock()
	m.pending = append(m.pending, &manualEntry{fn: fn, token: token})
	m.mu.Unlock()

	return token
}

// Fire runs the oldest pending callback that has not been cancelled.
// It reports whether a callback actually ran.
func (m *Manual) Fire() bool {
	for {
		m.mu.Lock()

		if len(m.pending) == 0 {
			m.mu.Unlock()
			return false
		}

		entry := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		if entry.token.expire() {
			entry.fn()
			return true
		}
	}
}

// PendingCount returns the number of queued callbacks, cancelled ones included.
func (m *Manual) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.pending)
}
