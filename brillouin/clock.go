package brillouin

import (
	"fmt"
	"time"
)

// DefaultClockKHz is the TFP drive clock frequency the instrument ships
// with.
const DefaultClockKHz = 4

// clockCyclesPerScan is the number of drive clock cycles one full
// scan-and-retract pass of the interferometer stage takes.
const clockCyclesPerScan = 2460

// Waiting and timeout factors applied to the theoretical acquisition time.
// An acquisition never finishes earlier than 60% of its theoretical time, so
// polling before that floor only produces wasted STATUS round trips. The
// margin of 10 extra cycles absorbs scheduling jitter on the server side.
const (
	minWaitNumerator    = 6
	minWaitDenominator  = 10
	timeoutMarginCycles = 10
)

// ClockProfile derives all acquisition timing from the TFP drive clock
// frequency. With the stock 4 kHz clock one cycle takes 615 ms.
type ClockProfile struct {
	frequencyHz int
	cycleTime   time.Duration
}

// NewClockProfile builds a profile for the given drive clock frequency in
// kHz.
func NewClockProfile(frequencyKHz int) (ClockProfile, error) {
	if frequencyKHz <= 0 {
		return ClockProfile{}, fmt.Errorf("%w: got %d kHz", ErrInvalidClockFrequency, frequencyKHz)
	}

	hz := frequencyKHz * 1000

	return ClockProfile{
		frequencyHz: hz,
		cycleTime:   clockCyclesPerScan * time.Second / time.Duration(hz),
	}, nil
}

// FrequencyHz returns the drive clock frequency in Hz.
func (p ClockProfile) FrequencyHz() int { return p.frequencyHz }

// CycleTime returns the duration of a single scan-and-retract cycle.
func (p ClockProfile) CycleTime() time.Duration { return p.cycleTime }

// TheoreticalTime returns the nominal duration of an acquisition of the
// given number of cycles.
func (p ClockProfile) TheoreticalTime(cycles int) time.Duration {
	return time.Duration(cycles) * p.cycleTime
}

// MinWait returns the mandatory wait floor before status polling may start:
// 60% of the theoretical acquisition time.
func (p ClockProfile) MinWait(cycles int) time.Duration {
	return p.TheoreticalTime(cycles) * minWaitNumerator / minWaitDenominator
}

// TimeoutMargin returns the slack added on top of the theoretical time
// before an acquisition counts as timed out.
func (p ClockProfile) TimeoutMargin() time.Duration {
	return p.cycleTime * timeoutMarginCycles
}

// AcquireTimeout returns the total timeout window for an acquisition of the
// given number of cycles.
func (p ClockProfile) AcquireTimeout(cycles int) time.Duration {
	return p.TheoreticalTime(cycles) + p.TimeoutMargin()
}

func (p ClockProfile) String() string {
	return fmt.Sprintf("%dkHz clock, %s per cycle", p.frequencyHz/1000, p.cycleTime)
}
