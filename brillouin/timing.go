package brillouin

import "time"

// TimingRecorder receives one record per successful acquisition, carrying
// the saved filename, the cycle count and the measured wall time from START
// to SAVE.
//
// The timinglog package provides the CSV-backed implementation used by
// default; tests substitute their own.
type TimingRecorder interface {
	Record(filename string, cycles int, elapsed time.Duration) error
	Close() error
}

// TimingRecorderFactory builds a TimingRecorder rooted at the working
// directory handed to SetWorkingDirectory.
type TimingRecorderFactory func(dir string) (TimingRecorder, error)
