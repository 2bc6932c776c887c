package brillouin

import (
	"errors"
	"time"

	"github.com/hotlab/go-ghost/logger"
	"github.com/hotlab/go-ghost/timinglog"
)

// Default coordinator parameters.
const (
	// DefaultPollInterval is the sleep between STATUS polls and between the
	// floor-wait steps.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultPollRetries is the number of STATUS attempts per poll before
	// the poll gives up and assumes the instrument is still busy.
	DefaultPollRetries = 4
)

// Timings holds the fixed settle delays of the control sequences. The GHOST
// server needs short pauses between certain commands before it acts on the
// next one; the defaults mirror the instrument's observed behavior.
type Timings struct {
	// ControlSettle runs after OVERRIDE before the connection probe.
	ControlSettle time.Duration
	// ProbeSettle runs between the probe's OBSERVE and its STOP.
	ProbeSettle time.Duration
	// ProbeRecover runs after a successful probe before normal commands.
	ProbeRecover time.Duration
	// StopSettle runs after the initializing STOP before DELETE.
	StopSettle time.Duration
	// InitSettle runs after initialization completes.
	InitSettle time.Duration
	// DeleteSettle runs after the acquisition's buffer DELETE.
	DeleteSettle time.Duration
	// StartSettle runs after START before status polling begins.
	StartSettle time.Duration
}

// DefaultTimings returns the settle delays used against real hardware.
func DefaultTimings() Timings {
	return Timings{
		ControlSettle: 100 * time.Millisecond,
		ProbeSettle:   100 * time.Millisecond,
		ProbeRecover:  500 * time.Millisecond,
		StopSettle:    100 * time.Millisecond,
		InitSettle:    100 * time.Millisecond,
		DeleteSettle:  50 * time.Millisecond,
		StartSettle:   20 * time.Millisecond,
	}
}

// Config holds the coordinator configuration assembled by New from the
// functional options.
type Config struct {
	clockKHz        int
	pollInterval    time.Duration
	pollRetries     int
	timings         Timings
	recorderFactory TimingRecorderFactory
	logger          logger.Logger
}

func newConfig() *Config {
	return &Config{
		clockKHz:     DefaultClockKHz,
		pollInterval: DefaultPollInterval,
		pollRetries:  DefaultPollRetries,
		timings:      DefaultTimings(),
		recorderFactory: func(dir string) (TimingRecorder, error) {
			return timinglog.New(dir)
		},
		logger: logger.GetLogger(),
	}
}

// Option represents a functional option for configuring a Spectrometer.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error { return o.applyFunc(cfg) }

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{
		name:      name,
		applyFunc: f,
	}
}

// WithClockFrequency sets the TFP drive clock frequency in kHz, from which
// all acquisition timing derives.
// An error is returned if the frequency is not positive.
//
// The default value is 4 kHz.
func WithClockFrequency(kHz int) Option {
	return newOptFunc("WithClockFrequency", func(cfg *Config) error {
		if kHz <= 0 {
			return ErrInvalidClockFrequency
		}
		cfg.clockKHz = kHz

		return nil
	})
}

// WithPollInterval sets the sleep between STATUS polls and floor-wait steps.
// An error is returned if the interval is outside the valid range (1ms-5 seconds).
//
// The default value is 50 milliseconds.
func WithPollInterval(val time.Duration) Option {
	return newOptFunc("WithPollInterval", func(cfg *Config) error {
		if val < time.Millisecond || val > 5*time.Second {
			return errors.New("poll interval out of range [0.001, 5]")
		}
		cfg.pollInterval = val

		return nil
	})
}

// WithPollRetries sets the number of STATUS attempts per poll before the
// poll assumes the instrument is still busy.
// An error is returned if the count is outside the valid range (1-31).
//
// The default value is 4.
func WithPollRetries(n int) Option {
	return newOptFunc("WithPollRetries", func(cfg *Config) error {
		if n < 1 || n > 31 {
			return errors.New("poll retries out of range [1, 31]")
		}
		cfg.pollRetries = n

		return nil
	})
}

// WithTimings replaces the fixed settle delays of the control sequences.
// Tests use this to compress the sequences; against real hardware the
// defaults should stand.
// An error is returned if any delay is negative.
func WithTimings(t Timings) Option {
	return newOptFunc("WithTimings", func(cfg *Config) error {
		for _, d := range []time.Duration{
			t.ControlSettle, t.ProbeSettle, t.ProbeRecover,
			t.StopSettle, t.InitSettle, t.DeleteSettle, t.StartSettle,
		} {
			if d < 0 {
				return errors.New("settle delays must not be negative")
			}
		}
		cfg.timings = t

		return nil
	})
}

// WithTimingRecorder replaces the factory building the acquisition timing
// recorder when a working directory is set. A nil factory disables timing
// records.
//
// The default factory creates a CSV timing log via the timinglog package.
func WithTimingRecorder(f TimingRecorderFactory) Option {
	return newOptFunc("WithTimingRecorder", func(cfg *Config) error {
		cfg.recorderFactory = f

		return nil
	})
}

// WithLogger sets the logger for the coordinator.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
