package brillouin

import "errors"

var (
	// ErrSessionNil indicates that a nil session was passed to New.
	ErrSessionNil = errors.New("brillouin: session is nil")

	// ErrInvalidClockFrequency indicates a non-positive drive clock
	// frequency.
	ErrInvalidClockFrequency = errors.New("brillouin: clock frequency must be positive")

	// ErrInvalidCycles indicates a non-positive acquisition cycle count.
	ErrInvalidCycles = errors.New("brillouin: cycle count must be positive")
)
