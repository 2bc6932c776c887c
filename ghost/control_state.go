package ghost

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hotlab/go-ghost/logger"
)

// ControlState represents the stages of the remote-control lifecycle with the
// GHOST server.
type ControlState uint32

// Remote-control states.
const (
	// ControlNotReady indicates that no usable connection to the server
	// exists yet, or that it was torn down.
	ControlNotReady ControlState = iota
	// ControlReleased indicates an established connection without remote
	// control; the local operator owns the instrument.
	ControlReleased
	// ControlHeld indicates an established connection with remote control
	// taken via OVERRIDE.
	ControlHeld
)

// IsNotReady returns if the current state is not ready.
func (cs ControlState) IsNotReady() bool { return cs == ControlNotReady }

// IsReleased returns if the current state is connected without control.
func (cs ControlState) IsReleased() bool { return cs == ControlReleased }

// IsHeld returns if remote control is currently held.
func (cs ControlState) IsHeld() bool { return cs == ControlHeld }

// String returns string representation of the current state.
func (cs ControlState) String() string {
	switch cs {
	case ControlNotReady:
		return "not-ready"
	case ControlReleased:
		return "released"
	case ControlHeld:
		return "held"
	default:
		return "unknown"
	}
}

// ControlStateChangeHandler is invoked on every control state transition.
//
// Note: handlers run synchronously on the transitioning goroutine. Take care
// with long-running implementations.
type ControlStateChangeHandler func(prevState ControlState, newState ControlState)

// ControlStateMgr manages the remote-control state of a spectrometer session.
//
// It provides guarded state transitions, change notification and the ability
// to wait for a state. All methods are safe for concurrent use.
type ControlStateMgr struct {
	mu       sync.Mutex
	cond     *sync.Cond
	state    atomic.Uint32
	logger   logger.Logger
	handlers []ControlStateChangeHandler
}

// NewControlStateMgr creates a ControlStateMgr in the ControlNotReady state.
//
// It accepts optional handlers that will be invoked on state changes.
func NewControlStateMgr(l logger.Logger, handlers ...ControlStateChangeHandler) *ControlStateMgr {
	if l == nil {
		l = logger.GetLogger()
	}

	mgr := &ControlStateMgr{
		logger:   l,
		handlers: make([]ControlStateChangeHandler, 0, len(handlers)),
	}
	mgr.handlers = append(mgr.handlers, handlers...)

	mgr.state.Store(uint32(ControlNotReady))
	mgr.cond = sync.NewCond(&mgr.mu)

	return mgr
}

// State returns the current control state.
func (cs *ControlStateMgr) State() ControlState {
	return ControlState(cs.state.Load())
}

// AddHandler adds one or more handlers to be invoked on state changes.
func (cs *ControlStateMgr) AddHandler(handlers ...ControlStateChangeHandler) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.handlers = append(cs.handlers, handlers...)
}

// WaitState waits for the control state to reach the specified state or until
// the context is done. It returns nil if the desired state is reached, or the
// context error otherwise.
func (cs *ControlStateMgr) WaitState(ctx context.Context, state ControlState) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.State() == state {
		return nil
	}

	stopFunc := context.AfterFunc(ctx, func() {
		cs.cond.Broadcast()
	})
	defer stopFunc()

	for cs.State() != state {
		select {
		case <-ctx.Done():
			cs.logger.Debug("wait control state canceled", "cur_state", cs.State(), "desired_state", state)
			return ctx.Err()
		default:
			cs.cond.Wait()
		}
	}

	return nil
}

// ToNotReady transitions to ControlNotReady.
// This transition is allowed from any state and represents a disconnect or a
// reset of the session.
func (cs *ControlStateMgr) ToNotReady() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	curState := cs.State()
	if curState.IsNotReady() {
		return // Already in ControlNotReady, no need to transition
	}

	// change state before handlers run so observers see the final state
	cs.setState(ControlNotReady)

	cs.invokeHandlers(curState, ControlNotReady)
}

// ToReleased transitions to ControlReleased.
//
// The transition is allowed from ControlNotReady (connection established) and
// from ControlHeld (control returned to the local operator). If the state is
// already ControlReleased, the function is a no-op.
func (cs *ControlStateMgr) ToReleased() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	curState := cs.State()
	if curState.IsReleased() {
		return nil // No-op
	}

	cs.invokeHandlers(curState, ControlReleased)
	// change state after all handlers finished
	cs.setState(ControlReleased)

	return nil
}

// ToHeld transitions to ControlHeld after a successful OVERRIDE.
//
// The transition is only allowed from ControlReleased; taking control
// requires an established connection first. If the state is already
// ControlHeld, the function is a no-op.
//
// Returns nil on success, or ErrInvalidTransition otherwise.
func (cs *ControlStateMgr) ToHeld() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	curState := cs.State()
	if curState.IsHeld() {
		return nil // No-op
	}

	if !curState.IsReleased() {
		return ErrInvalidTransition
	}

	cs.invokeHandlers(curState, ControlHeld)
	// change state after all handlers finished
	cs.setState(ControlHeld)

	return nil
}

// IsNotReady returns if the current state is not ready.
func (cs *ControlStateMgr) IsNotReady() bool { return cs.State().IsNotReady() }

// IsReleased returns if the current state is connected without control.
func (cs *ControlStateMgr) IsReleased() bool { return cs.State().IsReleased() }

// IsHeld returns if remote control is currently held.
func (cs *ControlStateMgr) IsHeld() bool { return cs.State().IsHeld() }

// setState atomically sets the current state to newState. It also broadcasts
// a signal to any waiting goroutines.
func (cs *ControlStateMgr) setState(newState ControlState) {
	cs.state.Store(uint32(newState))
	cs.cond.Broadcast()
}

// invokeHandlers invokes all registered handlers with the previous and new states.
func (cs *ControlStateMgr) invokeHandlers(prevState ControlState, newState ControlState) {
	for _, handler := range cs.handlers {
		if handler != nil {
			handler(prevState, newState)
		}
	}
}
