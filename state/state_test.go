package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnboundSignallerIsNoOp(t *testing.T) {
	require.NotPanics(t, func() {
		Unbound.NotifyExternal()
		Unbound.NotifyInternal()
	})
}

func TestSignallerMarksCorrectBodyIndex(t *testing.T) {
	m := NewManager(3)
	m.Signaller(1).NotifyExternal()

	snap := m.Snapshot()
	require.False(t, snap.Modified(0))
	require.True(t, snap.Modified(1))
	require.False(t, snap.Modified(2))
}

func TestNotifyInternalAlsoCountsAsModified(t *testing.T) {
	m := NewManager(2)
	m.Signaller(0).NotifyInternal()

	snap := m.Snapshot()
	require.True(t, snap.Modified(0))
}

func TestGrowExtendsBitsetsWithoutLosingExistingState(t *testing.T) {
	m := NewManager(2)
	m.Signaller(1).NotifyExternal()
	m.Grow(5)

	snap := m.Snapshot()
	require.True(t, snap.Modified(1))
	require.False(t, snap.Modified(4))
}

func TestResetClearsAllBitsAndHydrationFlag(t *testing.T) {
	m := NewManager(2)
	m.Signaller(0).NotifyExternal()
	m.MarkHydrationModified()

	m.Reset()

	snap := m.Snapshot()
	require.False(t, snap.Modified(0))
	require.False(t, snap.HydrationModified)
}

func TestSnapshotDoesNotClearLiveState(t *testing.T) {
	m := NewManager(1)
	m.Signaller(0).NotifyExternal()

	_ = m.Snapshot()
	snapAgain := m.Snapshot()
	require.True(t, snapAgain.Modified(0), "Snapshot must be read-only")
}

func TestModifiedIsFalseForOutOfRangeIndex(t *testing.T) {
	snap := Snapshot{External: []bool{true}, Internal: []bool{}}
	require.False(t, snap.Modified(5))
}
