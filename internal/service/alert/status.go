package alert

import (
	"context"
	"time"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
	"github.com/oshokin/panic-button/internal/formatter"
	"github.com/oshokin/panic-button/internal/logger"
)

// State returns the current status.
func (s *Service) State(ctx context.Context) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.DebugKV(ctx, "Alert state requested", "mode", s.mode.String())

	return s.statusLocked()
}

// statusLocked assembles the status view. Callers must hold s.mu.
func (s *Service) statusLocked() domain.Status {
	status := domain.Status{
		Mode:     s.mode,
		Sounding: s.sounding,
		Volume:   s.volume,
		Coords:   s.coords.Clone(),
		Note:     s.note,
	}

	if s.mode == domain.ModeCountingDown {
		countdown := s.countdown
		status.Countdown = &countdown
	}

	return status
}

// Log returns a copy of the event log, newest entry first.
func (s *Service) Log() []domain.LogEntry {
	return s.log.Entries()
}

// Message renders the shareable panic message. Once the alarm has
// activated, the message is stamped with the activation instant so
// repeated reads describe the same event.
func (s *Service) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.triggeredAt
	if at.IsZero() {
		at = time.Now()
	}

	return formatter.AlertMessage(at, s.coords, s.note)
}

// Snapshot returns the persisted view of the current state.
func (s *Service) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}
