package ghost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestControlStateString(t *testing.T) {
	require := require.New(t)

	require.Equal("not-ready", ControlNotReady.String())
	require.Equal("released", ControlReleased.String())
	require.Equal("held", ControlHeld.String())
	require.Equal("unknown", ControlState(99).String())
}

func TestControlStateTransitions(t *testing.T) {
	require := require.New(t)

	t.Run("initial state", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)
		require.True(mgr.IsNotReady())
	})

	t.Run("connect then take control", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)

		require.NoError(mgr.ToReleased())
		require.True(mgr.IsReleased())

		require.NoError(mgr.ToHeld())
		require.True(mgr.IsHeld())
	})

	t.Run("cannot take control without connection", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)
		require.ErrorIs(mgr.ToHeld(), ErrInvalidTransition)
		require.True(mgr.IsNotReady())
	})

	t.Run("release returns control", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)
		require.NoError(mgr.ToReleased())
		require.NoError(mgr.ToHeld())

		require.NoError(mgr.ToReleased())
		require.True(mgr.IsReleased())
	})

	t.Run("disconnect from any state", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)
		require.NoError(mgr.ToReleased())
		require.NoError(mgr.ToHeld())

		mgr.ToNotReady()
		require.True(mgr.IsNotReady())

		// no-op when already not ready
		mgr.ToNotReady()
		require.True(mgr.IsNotReady())
	})

	t.Run("transitions are no-ops on same state", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)
		require.NoError(mgr.ToReleased())
		require.NoError(mgr.ToReleased())
		require.True(mgr.IsReleased())
	})
}

func TestControlStateHandlers(t *testing.T) {
	require := require.New(t)

	type change struct {
		prev ControlState
		next ControlState
	}

	var changes []change
	record := func(prev ControlState, next ControlState) {
		changes = append(changes, change{prev, next})
	}

	mgr := NewControlStateMgr(nil, record)
	require.NoError(mgr.ToReleased())
	require.NoError(mgr.ToHeld())
	mgr.ToNotReady()

	require.Equal([]change{
		{ControlNotReady, ControlReleased},
		{ControlReleased, ControlHeld},
		{ControlHeld, ControlNotReady},
	}, changes)
}

func TestControlStateWaitState(t *testing.T) {
	require := require.New(t)

	t.Run("already in desired state", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)
		require.NoError(mgr.WaitState(context.Background(), ControlNotReady))
	})

	t.Run("reaches state from another goroutine", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)

		go func() {
			time.Sleep(20 * time.Millisecond)
			_ = mgr.ToReleased()
			_ = mgr.ToHeld()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(mgr.WaitState(ctx, ControlHeld))
		require.True(mgr.IsHeld())
	})

	t.Run("context timeout", func(t *testing.T) {
		mgr := NewControlStateMgr(nil)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		err := mgr.WaitState(ctx, ControlHeld)
		require.ErrorIs(err, context.DeadlineExceeded)
	})
}
