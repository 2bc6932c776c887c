package brillouin

import "sync/atomic"

// acqState is the in-flight acquisition guard. A spectrometer runs at most
// one acquisition at a time; concurrent attempts must fail fast instead of
// interleaving START/SAVE sequences on the session.
type acqState struct {
	state atomic.Uint32
}

const (
	acqIdle uint32 = iota
	acqBusy
)

// tryAcquire attempts the idle to busy transition.
// It returns false when an acquisition is already in flight.
func (st *acqState) tryAcquire() bool {
	return st.state.CompareAndSwap(acqIdle, acqBusy)
}

// release returns the guard to idle.
func (st *acqState) release() {
	st.state.Store(acqIdle)
}

// busy reports whether an acquisition is in flight.
func (st *acqState) busy() bool {
	return st.state.Load() == acqBusy
}
