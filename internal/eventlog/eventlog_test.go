package eventlog

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// sequentialIDs returns an id source minting "1", "2", ...
func sequentialIDs() func() string {
	var n int

	return func() string {
		n++
		return strconv.Itoa(n)
	}
}

// TestLog_AppendNewestFirst verifies head insertion ordering.
func TestLog_AppendNewestFirst(t *testing.T) {
	t.Parallel()

	l := New(WithIDSource(sequentialIDs()))

	l.Append(domain.KindArmed, "armed")
	l.Append(domain.KindTriggered, "triggered")

	entries := l.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, domain.KindTriggered, entries[0].Kind)
	require.Equal(t, domain.KindArmed, entries[1].Kind)

	head, ok := l.Head()
	require.True(t, ok)
	require.Equal(t, "2", head.ID)
}

// TestLog_EntriesReturnsCopy verifies callers cannot mutate the log through the slice.
func TestLog_EntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	l := New()
	l.Append(domain.KindArmed, "armed")

	entries := l.Entries()
	entries[0].Message = "mutated"

	head, ok := l.Head()
	require.True(t, ok)
	require.Equal(t, "armed", head.Message)
}

// TestLog_Restore verifies persisted ids and timestamps survive verbatim.
func TestLog_Restore(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0).UTC()
	persisted := []domain.LogEntry{
		{ID: "b", Kind: domain.KindTriggered, Message: "triggered", Timestamp: ts},
		{ID: "a", Kind: domain.KindArmed, Message: "armed", Timestamp: ts.Add(-time.Second)},
	}

	l := New()
	l.Restore(persisted)

	require.Equal(t, persisted, l.Entries())
	require.Equal(t, 2, l.Len())

	// New appends keep stacking on top of restored history.
	l.Append(domain.KindDisarmed, "disarmed")
	head, ok := l.Head()
	require.True(t, ok)
	require.Equal(t, domain.KindDisarmed, head.Kind)
	require.Equal(t, 3, l.Len())
}

// TestLog_EmptyHead verifies Head on an empty log reports absence.
func TestLog_EmptyHead(t *testing.T) {
	t.Parallel()

	_, ok := New().Head()
	require.False(t, ok)
	require.Nil(t, New().Entries())
}
