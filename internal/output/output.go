package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Driver produces the audible alarm signal and the one-shot haptic pulse.
//
// Both operations are idempotent: starting an already sounding alarm is a
// no-op and never creates a second output, stopping an idle driver does
// nothing. Volume is read at start time only and never applied retroactively
// to an active alarm.
type Driver interface {
	Start(volume float64) error
	Stop()
}

// KeepAwake is the keep-awake hint held while the alarm sounds.
// Implementations must tolerate unbalanced Release calls.
type KeepAwake interface {
	Acquire()
	Release()
}

// noopKeepAwake satisfies KeepAwake where no platform hint exists.
type noopKeepAwake struct{}

func (noopKeepAwake) Acquire() {}
func (noopKeepAwake) Release() {}

// defaultPulseInterval is the cadence of tone pulses while the alarm sounds.
const defaultPulseInterval = 500 * time.Millisecond

// bell is the terminal tone pulse.
const bell = "\a"

// Beeper is the default Driver. It emits a continuous tone as terminal bell
// pulses on a fixed cadence and fires a short burst once at start, standing
// in for the haptic pattern. Real alarm hardware is deliberately out of
// scope; anything that can sound for real implements Driver instead.
type Beeper struct {
	// mu guards the running state.
	mu sync.Mutex
	// out receives the tone pulses.
	out io.Writer
	// keepAwake is held while the alarm is sounding.
	keepAwake KeepAwake
	// pulse is the interval between tone pulses.
	pulse time.Duration
	// stop signals the pulse loop to exit; nil while idle.
	stop chan struct{}
	// done is closed by the pulse loop on exit.
	done chan struct{}
}

// BeeperOption configures a Beeper.
type BeeperOption func(*Beeper)

// WithWriter directs tone pulses to w instead of stdout.
func WithWriter(w io.Writer) BeeperOption {
	return func(b *Beeper) {
		if w != nil {
			b.out = w
		}
	}
}

// WithPulseInterval overrides the tone cadence.
func WithPulseInterval(d time.Duration) BeeperOption {
	return func(b *Beeper) {
		if d > 0 {
			b.pulse = d
		}
	}
}

// WithKeepAwake installs a platform keep-awake hint.
func WithKeepAwake(k KeepAwake) BeeperOption {
	return func(b *Beeper) {
		if k != nil {
			b.keepAwake = k
		}
	}
}

// NewBeeper returns a Beeper writing to stdout with the default cadence.
func NewBeeper(opts ...BeeperOption) *Beeper {
	b := &Beeper{
		out:       os.Stdout,
		keepAwake: noopKeepAwake{},
		pulse:     defaultPulseInterval,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Start begins the continuous tone and fires the haptic burst once.
// Calling Start while already sounding is a no-op. A volume of zero keeps
// the alarm silent but still active. On partial failure every acquired
// resource is released before returning.
func (b *Beeper) Start(volume float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stop != nil {
		return nil
	}

	volume = clampVolume(volume)

	b.keepAwake.Acquire()

	// One-shot burst at trigger time, not repeated.
	if volume > 0 {
		if _, err := io.WriteString(b.out, bell+bell); err != nil {
			b.keepAwake.Release()

			return fmt.Errorf("start alarm output: %w", err)
		}
	}

	b.stop = make(chan struct{})
	b.done = make(chan struct{})

	go b.loop(volume, b.stop, b.done)

	return nil
}

// Stop ends the tone and releases all held resources. Safe to call at any
// time, any number of times.
func (b *Beeper) Stop() {
	b.mu.Lock()

	if b.stop == nil {
		b.mu.Unlock()
		return
	}

	close(b.stop)

	done := b.done
	b.stop, b.done = nil, nil

	b.keepAwake.Release()
	b.mu.Unlock()

	<-done
}

// Sounding reports whether the alarm is currently active.
func (b *Beeper) Sounding() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.stop != nil
}

// loop emits tone pulses until told to stop.
func (b *Beeper) loop(volume float64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.pulse)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if volume > 0 {
				// Write failures leave the alarm formally active; the caller
				// sees a triggered state without sound.
				_, _ = io.WriteString(b.out, bell)
			}
		}
	}
}

// clampVolume confines v to [0, 1].
func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
