package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestReal_FiresOnce verifies the real scheduler runs the callback exactly once.
func TestReal_FiresOnce(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32

	done := make(chan struct{})
	token := NewReal().ScheduleOnce(time.Millisecond, func() {
		fired.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}

	require.EqualValues(t, 1, fired.Load())
	require.True(t, token.Done())

	// Cancel after fire is a safe no-op.
	token.Cancel()
	require.EqualValues(t, 1, fired.Load())
}

// TestReal_CancelSuppressesCallback verifies a cancelled token never runs.
func TestReal_CancelSuppressesCallback(t *testing.T) {
	t.Parallel()

	var fired atomic.Int32

	token := NewReal().ScheduleOnce(20*time.Millisecond, func() {
		fired.Add(1)
	})

	token.Cancel()
	token.Cancel() // Idempotent.

	time.Sleep(60 * time.Millisecond)
	require.EqualValues(t, 0, fired.Load())
}

// TestToken_NilSafe verifies nil tokens can be cancelled and inspected.
func TestToken_NilSafe(t *testing.T) {
	t.Parallel()

	var token *Token

	token.Cancel()
	require.True(t, token.Done())
}

// TestManual_FireRunsOldestLiveCallback verifies FIFO firing and cancellation skipping.
func TestManual_FireRunsOldestLiveCallback(t *testing.T) {
	t.Parallel()

	m := NewManual()

	var order []int

	first := m.ScheduleOnce(time.Second, func() { order = append(order, 1) })
	m.ScheduleOnce(time.Second, func() { order = append(order, 2) })

	first.Cancel()

	require.True(t, m.Fire())
	require.Equal(t, []int{2}, order)

	require.False(t, m.Fire())
	require.Zero(t, m.PendingCount())
}
