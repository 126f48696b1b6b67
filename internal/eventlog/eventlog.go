package eventlog

import (
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// Log is the append-only audit trail of lifecycle events, newest entry
// first. Entries are immutable once created and are never evicted; unbounded
// growth is an accepted limitation of this design.
type Log struct {
	// mu guards entries.
	mu sync.RWMutex
	// entries holds the log, index 0 being the most recent.
	entries []domain.LogEntry
	// now stamps new entries.
	now func() time.Time
	// newID mints entry identifiers.
	newID func() string
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the timestamp source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}

// WithIDSource overrides the identifier source, used in tests.
func WithIDSource(newID func() string) Option {
	return func(l *Log) {
		if newID != nil {
			l.newID = newID
		}
	}
}

// New returns an empty log stamping entries with UUIDs and wall-clock time.
func New(opts ...Option) *Log {
	l := &Log{
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Append creates an entry and inserts it at the head of the log.
func (l *Log) Append(kind domain.EntryKind, message string) domain.LogEntry {
	entry := domain.LogEntry{
		ID:        l.newID(),
		Kind:      kind,
		Message:   message,
		Timestamp: l.now(),
	}

	l.mu.Lock()
	l.entries = append([]domain.LogEntry{entry}, l.entries...)
	l.mu.Unlock()

	return entry
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []domain.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return nil
	}

	entries := make([]domain.LogEntry, len(l.entries))
	copy(entries, l.entries)

	return entries
}

// Head returns the most recent entry, if any.
func (l *Log) Head() (domain.LogEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return domain.LogEntry{}, false
	}

	return l.entries[0], true
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}

// Restore replaces the log contents with persisted entries, preserving their
// ids and timestamps verbatim.
func (l *Log) Restore(entries []domain.LogEntry) {
	restored := make([]domain.LogEntry, len(entries))
	copy(restored, entries)

	l.mu.Lock()
	l.entries = restored
	l.mu.Unlock()
}
