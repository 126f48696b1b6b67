package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
	"github.com/oshokin/panic-button/internal/eventlog"
	"github.com/oshokin/panic-button/internal/location"
	"github.com/oshokin/panic-button/internal/logger"
	"github.com/oshokin/panic-button/internal/output"
	repo "github.com/oshokin/panic-button/internal/repository/state"
	"github.com/oshokin/panic-button/internal/timer"
)

// Service is the alert lifecycle state machine. It owns the current mode,
// the countdown, the pending timer token and the alarm output handle, and it
// is the only component allowed to mutate any of them.
//
// Every transition runs as one discrete step under the service mutex, so no
// two transitions ever interleave. Asynchronous collaborators (location
// fixes, persistence writes) re-enter through callbacks that re-validate the
// current mode before touching state they no longer govern.
type Service struct {
	// mu serialises all transitions.
	mu sync.Mutex
	// mode is the sole source of truth for side-effect gating.
	mode domain.Mode
	// countdown is the remaining ticks; meaningful only while counting down.
	countdown int
	// sounding tracks whether the service holds an active alarm output.
	sounding bool
	// volume is applied at the next alarm start, never retroactively.
	volume float64
	// note is the latest free-text note for the shareable message.
	note string
	// coords is the last-known-good position, never cleared automatically.
	coords *domain.Coordinate
	// triggeredAt is the instant of the latest alarm activation.
	triggeredAt time.Time
	// pending is the single in-flight countdown timer token.
	pending *timer.Token

	// log is the append-only audit trail.
	log *eventlog.Log
	// repo mirrors state to durable storage; nil disables persistence.
	repo repo.Repository
	// scheduler issues countdown ticks.
	scheduler timer.Scheduler
	// driver produces the audible alarm; owned exclusively by this service.
	driver output.Driver
	// provider fetches position fixes.
	provider location.Provider

	// countdownFrom is the initial countdown value.
	countdownFrom int
	// tickInterval is the delay between countdown ticks.
	tickInterval time.Duration
	// syncEffects forces persistence and location fetches to run inline,
	// used by tests that need deterministic ordering.
	syncEffects bool
	// ctx carries the scoped logger into timer and fetch callbacks.
	ctx context.Context
}

// Option configures a Service.
type Option func(*Service)

// WithScheduler overrides the countdown scheduler.
func WithScheduler(s timer.Scheduler) Option {
	return func(svc *Service) {
		if s != nil {
			svc.scheduler = s
		}
	}
}

// WithDriver overrides the alarm output driver.
func WithDriver(d output.Driver) Option {
	return func(svc *Service) {
		if d != nil {
			svc.driver = d
		}
	}
}

// WithProvider overrides the location provider.
func WithProvider(p location.Provider) Option {
	return func(svc *Service) {
		if p != nil {
			svc.provider = p
		}
	}
}

// WithLog overrides the event log, letting tests control ids and timestamps.
func WithLog(l *eventlog.Log) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// WithCountdown sets the number of countdown ticks.
func WithCountdown(ticks int) Option {
	return func(svc *Service) {
		if ticks > 0 {
			svc.countdownFrom = ticks
		}
	}
}

// WithTickInterval sets the delay between countdown ticks.
func WithTickInterval(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.tickInterval = d
		}
	}
}

// WithVolume sets the initial alarm volume.
func WithVolume(v float64) Option {
	return func(svc *Service) {
		if v >= 0 && v <= 1 {
			svc.volume = v
		}
	}
}

// WithSynchronousEffects runs persistence writes and location fetches inline
// instead of on background goroutines. Tests use it for deterministic
// assertions; production wiring never should.
func WithSynchronousEffects() Option {
	return func(svc *Service) {
		svc.syncEffects = true
	}
}

// ErrInvalidVolume is returned when a volume outside [0, 1] is submitted.
var ErrInvalidVolume = errors.New("volume must be between 0 and 1")

// defaultTickInterval is the countdown cadence.
const defaultTickInterval = time.Second

// defaultCountdown is the number of cancellation-window ticks.
const defaultCountdown = 3

// New builds the state machine, restoring persisted state when available.
// A snapshot with the triggered flag set restarts the alarm output so the
// handle invariant (output active iff triggered) holds across restarts.
func New(ctx context.Context, repository repo.Repository, opts ...Option) (*Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &Service{
		mode:          domain.ModeDisarmed,
		volume:        1,
		log:           eventlog.New(),
		repo:          repository,
		scheduler:     timer.NewReal(),
		driver:        output.NewBeeper(),
		provider:      &location.Static{},
		countdownFrom: defaultCountdown,
		tickInterval:  defaultTickInterval,
		ctx:           ctx,
	}

	for _, opt := range opts {
		opt(s)
	}

	if repository == nil {
		return s, nil
	}

	snapshot, err := repository.Load(ctx)

	switch {
	case err == nil:
		s.restore(ctx, snapshot)
	case errors.Is(err, repo.ErrNotFound):
		// First run, keep defaults.
	default:
		return nil, fmt.Errorf("load state: %w", err)
	}

	return s, nil
}

// restore applies a persisted snapshot. A pending countdown is never
// persisted, so the restored mode is one of Disarmed, Armed, Triggered.
func (s *Service) restore(ctx context.Context, snapshot *domain.Snapshot) {
	if snapshot == nil {
		return
	}

	s.mode = snapshot.Mode()
	s.coords = snapshot.Coords.Clone()
	s.log.Restore(snapshot.Logs)

	if snapshot.Volume > 0 && snapshot.Volume <= 1 {
		s.volume = snapshot.Volume
	}

	if s.mode == domain.ModeTriggered {
		s.startAlarm(ctx)
	}

	logger.InfoKV(ctx, "Alert state restored", "mode", s.mode.String(), "entries", s.log.Len())
}

// Arm enables trigger readiness. Valid only from Disarmed; any other mode is
// a silent no-op.
func (s *Service) Arm(ctx context.Context) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != domain.ModeDisarmed {
		return s.statusLocked()
	}

	s.armLocked(ctx)
	s.persistLocked(ctx)

	return s.statusLocked()
}

// armLocked performs the Armed transition and its side effects.
// Callers must hold s.mu.
func (s *Service) armLocked(ctx context.Context) {
	s.mode = domain.ModeArmed
	s.log.Append(domain.KindArmed, "Panic button armed")

	logger.Info(ctx, "Panic button armed")

	// Fire-and-forget; the result is applied out-of-band of this transition.
	s.fetchLocationLocked(ctx)
}

// Disarm returns the machine to Disarmed from any state, cancelling a
// pending countdown and silencing an active alarm.
func (s *Service) Disarm(ctx context.Context) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending.Cancel()
	s.pending = nil
	s.countdown = 0

	if s.mode == domain.ModeTriggered {
		s.stopAlarm()
		s.log.Append(domain.KindCancelled, "Alarm stopped")
	}

	s.mode = domain.ModeDisarmed
	s.log.Append(domain.KindDisarmed, "Panic button disarmed")

	logger.Info(ctx, "Panic button disarmed")

	s.persistLocked(ctx)

	return s.statusLocked()
}

// Trigger opens the cancellation countdown. From Disarmed it arms first,
// producing the armed entry as well. While counting down or triggered it is
// an idempotent no-op.
func (s *Service) Trigger(ctx context.Context) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case domain.ModeCountingDown, domain.ModeTriggered:
		return s.statusLocked()
	case domain.ModeDisarmed:
		s.armLocked(ctx)
	case domain.ModeArmed:
	}

	s.mode = domain.ModeCountingDown
	s.countdown = s.countdownFrom
	s.log.Append(domain.KindTriggered, fmt.Sprintf("Alert triggered, alarm in %ds", s.countdown))

	logger.InfoKV(ctx, "Countdown started", "seconds", s.countdown)

	s.scheduleTickLocked()
	s.persistLocked(ctx)

	return s.statusLocked()
}

// CancelCountdown aborts a running countdown and returns to Armed.
// Valid only while counting down.
func (s *Service) CancelCountdown(ctx context.Context) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != domain.ModeCountingDown {
		return s.statusLocked()
	}

	s.pending.Cancel()
	s.pending = nil
	s.countdown = 0
	s.mode = domain.ModeArmed
	s.log.Append(domain.KindCancelled, "Countdown cancelled")

	logger.Info(ctx, "Countdown cancelled")

	s.persistLocked(ctx)

	return s.statusLocked()
}

// Stop silences an active alarm. The triggered flag is cleared but the armed
// flag is left untouched, so the machine lands in Armed with a re-trigger
// possible. Valid only from Triggered.
func (s *Service) Stop(ctx context.Context) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != domain.ModeTriggered {
		return s.statusLocked()
	}

	s.stopAlarm()
	s.mode = domain.ModeArmed
	s.log.Append(domain.KindCancelled, "Alarm stopped")

	logger.Info(ctx, "Alarm stopped")

	s.persistLocked(ctx)

	return s.statusLocked()
}

// Note attaches free text to the alert, recorded in the log and included in
// the shareable message.
func (s *Service) Note(ctx context.Context, text string) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.note = text
	s.log.Append(domain.KindNote, text)

	s.persistLocked(ctx)

	return s.statusLocked()
}

// SetVolume stores the alarm volume. It applies at the next alarm start; an
// already sounding alarm keeps the volume it started with.
func (s *Service) SetVolume(ctx context.Context, volume float64) (domain.Status, error) {
	if volume < 0 || volume > 1 {
		return domain.Status{}, ErrInvalidVolume
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = volume
	s.persistLocked(ctx)

	return s.statusLocked(), nil
}

// tick handles one countdown step. A tick arriving after the mode moved on
// (cancel, disarm) is discarded.
func (s *Service) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != domain.ModeCountingDown {
		return
	}

	s.countdown--
	if s.countdown > 0 {
		s.scheduleTickLocked()
		return
	}

	// Mode is committed before the alarm and location side effects so no
	// observer ever sees a stale mode during them.
	s.countdown = 0
	s.mode = domain.ModeTriggered
	s.triggeredAt = time.Now()

	s.startAlarm(s.ctx)
	s.fetchLocationLocked(s.ctx)

	logger.Info(s.ctx, "Alarm activated")

	s.persistLocked(s.ctx)
}

// scheduleTickLocked arranges the next countdown tick, invalidating any
// prior token first so at most one timer is ever in flight.
// Callers must hold s.mu.
func (s *Service) scheduleTickLocked() {
	s.pending.Cancel()
	s.pending = s.scheduler.ScheduleOnce(s.tickInterval, s.tick)
}

// startAlarm starts the output driver. Failures are swallowed: the
// transition stands and the user sees a triggered state without sound.
func (s *Service) startAlarm(ctx context.Context) {
	if err := s.driver.Start(s.volume); err != nil {
		logger.DebugKV(ctx, "Alarm output unavailable", "error", err)
	}

	s.sounding = true
}

// stopAlarm releases the alarm output. Stop is idempotent on the driver, so
// this is safe on every exit path.
func (s *Service) stopAlarm() {
	s.driver.Stop()
	s.sounding = false
}

// fetchLocationLocked requests a single position fix. The result arrives on
// an independent callback that re-validates the mode: after a disarm the fix
// is still logged for audit completeness but no state is touched.
// Callers must hold s.mu.
func (s *Service) fetchLocationLocked(ctx context.Context) {
	fetch := func(ctx context.Context) {
		coord, err := s.provider.FetchOnce(ctx)
		s.applyLocation(ctx, coord, err)
	}

	if s.syncEffects {
		// Inline fetch must not deadlock on s.mu.
		s.mu.Unlock()
		fetch(ctx)
		s.mu.Lock()

		return
	}

	// The fetch must outlive the request that started it, so it runs under
	// the service lifetime context rather than the caller's.
	go fetch(s.ctx)
}

// applyLocation records the outcome of a position fix.
func (s *Service) applyLocation(ctx context.Context, coord *domain.Coordinate, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.log.Append(domain.KindLocation, "Location unavailable: access denied")
		logger.DebugKV(ctx, "Location fix failed", "error", err)
		s.persistLocked(ctx)

		return
	}

	s.log.Append(domain.KindLocation, "Location: "+coord.String())

	// A fix resolving after a disarm is logged above but must not mutate
	// state the callback no longer governs.
	if s.mode != domain.ModeDisarmed {
		s.coords = coord.Clone()
	}

	s.persistLocked(ctx)
}

// persistLocked mirrors the current state to the repository without blocking
// the transition. Failures are ignored; in-memory state stays authoritative.
// Callers must hold s.mu.
func (s *Service) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}

	snapshot := s.snapshotLocked()

	write := func(ctx context.Context) {
		if err := s.repo.Save(ctx, snapshot); err != nil {
			logger.DebugKV(ctx, "State persistence failed", "error", err)
		}
	}

	if s.syncEffects {
		write(ctx)
		return
	}

	// The write must survive the caller's request teardown, so it runs
	// under the service lifetime context rather than the caller's.
	go write(s.ctx)
}

// snapshotLocked builds the persisted view of the current state.
// Callers must hold s.mu.
func (s *Service) snapshotLocked() *domain.Snapshot {
	return &domain.Snapshot{
		Armed:     s.mode != domain.ModeDisarmed,
		Triggered: s.mode == domain.ModeTriggered,
		Volume:    s.volume,
		Logs:      s.log.Entries(),
		Coords:    s.coords.Clone(),
	}
}
