package ghost

import "errors"

// Connection and protocol errors.
var (
	// ErrConnConfigNil indicates that a nil connection config was provided.
	ErrConnConfigNil = errors.New("ghost: connection config is nil")

	// ErrConnClosed indicates that the connection is not established or was
	// closed during an exchange.
	ErrConnClosed = errors.New("ghost: connection closed")

	// ErrAlreadyConnected indicates that Connect was called on a session
	// whose transport is already established.
	ErrAlreadyConnected = errors.New("ghost: already connected")

	// ErrEmptyCommand indicates that an empty command was about to be sent.
	ErrEmptyCommand = errors.New("ghost: empty command")

	// ErrCommandTooLong indicates that a command exceeds the 80-character
	// limit the GHOST server accepts per line.
	ErrCommandTooLong = errors.New("ghost: command exceeds 80 characters")

	// ErrResponseTimeout indicates that a reply line was not received within
	// the per-line reply timeout.
	ErrResponseTimeout = errors.New("ghost: response timeout")
)

// Control state errors.
var (
	// ErrInvalidTransition is returned when an attempt is made to transition
	// the control state to an invalid state.
	ErrInvalidTransition = errors.New("ghost: invalid control state transition")
)

// Precondition errors.
var (
	// ErrNotInitialized indicates that an operation requires a completed
	// Initialize call first.
	ErrNotInitialized = errors.New("ghost: spectrometer not initialized")

	// ErrNoControl indicates that an operation requires remote control of the
	// GHOST server but control is not currently held.
	ErrNoControl = errors.New("ghost: remote control not held")

	// ErrBusy indicates that an acquisition is already in flight.
	ErrBusy = errors.New("ghost: acquisition in progress")
)

// Initialization and acquisition errors.
var (
	// ErrNoInstrument indicates that the GHOST server is running but reports
	// no spectrometer on its serial port.
	ErrNoInstrument = errors.New("ghost: no spectrometer connected")

	// ErrInvalidChannels indicates an unsupported MCA channel count.
	// The hardware accepts 256, 512 or 1024 channels.
	ErrInvalidChannels = errors.New("ghost: channel count must be 256, 512 or 1024")

	// ErrAcquisitionTimeout indicates that an acquisition did not reach the
	// idle state within its timeout window. No save is attempted.
	ErrAcquisitionTimeout = errors.New("ghost: acquisition timeout")

	// ErrRealtimeFailed indicates that the server rejected a realtime data
	// request.
	ErrRealtimeFailed = errors.New("ghost: realtime data request failed")
)
