package brillouin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hotlab/go-ghost/ghost"
	"github.com/hotlab/go-ghost/internal/pool"
	"github.com/hotlab/go-ghost/logger"
)

// requiredIdleCount is the number of consecutive idle status reports that
// confirm a finished acquisition. A single idle reading can be a stale
// report taken between two scan passes.
const requiredIdleCount = 2

// Spectrometer coordinates timed acquisitions on a Brillouin spectrometer
// through a GHOST server session.
//
// The coordinator owns the control lifecycle (connect, take control, probe,
// release) and the acquisition workflow (clear, start, wait for idle, save).
// It is safe for concurrent use; at most one acquisition runs at a time and
// concurrent attempts fail with ghost.ErrBusy.
type Spectrometer struct {
	cfg     *Config
	session ghost.Session
	clock   ClockProfile
	logger  logger.Logger

	ctrlState   *ghost.ControlStateMgr
	initialized atomic.Bool
	acquiring   acqState
	lastStatus  atomic.Pointer[ghost.StatusReport]

	recorderMu sync.Mutex
	recorder   TimingRecorder
}

// New creates a Spectrometer driving the given session.
//
// The session must be unconnected; Initialize establishes the connection.
func New(session ghost.Session, opts ...Option) (*Spectrometer, error) {
	if session == nil {
		return nil, ErrSessionNil
	}

	cfg := newConfig()
	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	clock, err := NewClockProfile(cfg.clockKHz)
	if err != nil {
		return nil, err
	}

	s := &Spectrometer{
		cfg:       cfg,
		session:   session,
		clock:     clock,
		logger:    cfg.logger,
		ctrlState: ghost.NewControlStateMgr(cfg.logger),
	}

	s.logger.Info("spectrometer coordinator created",
		"clock_khz", cfg.clockKHz, "cycle_time", clock.CycleTime())

	return s, nil
}

// Clock returns the timing profile derived from the drive clock frequency.
func (s *Spectrometer) Clock() ClockProfile { return s.clock }

// ControlState returns the current remote-control state.
func (s *Spectrometer) ControlState() ghost.ControlState { return s.ctrlState.State() }

// ControlStateMgr exposes the state manager for handlers and waiters.
func (s *Spectrometer) ControlStateMgr() *ghost.ControlStateMgr { return s.ctrlState }

// Initialized reports whether Initialize has completed successfully.
func (s *Spectrometer) Initialized() bool { return s.initialized.Load() }

// Acquiring reports whether an acquisition is currently in flight.
func (s *Spectrometer) Acquiring() bool { return s.acquiring.busy() }

// LastStatus returns the most recent parsed status report, or nil before the
// first successful status poll. Observers may call it from any goroutine
// without touching the session.
func (s *Spectrometer) LastStatus() *ghost.StatusReport { return s.lastStatus.Load() }

// Initialize connects to the GHOST server, takes remote control and verifies
// that a spectrometer is physically attached.
//
// The sequence follows the server's requirements: connect and sit out the
// welcome banner, take control with OVERRIDE, probe the hardware with a
// short OBSERVE/STOP exchange, then stop and clear the acquisition buffer.
// If the probe reports that the server cannot reach the instrument,
// Initialize tears the connection down and fails with ghost.ErrNoInstrument.
func (s *Spectrometer) Initialize(ctx context.Context) error {
	if s.initialized.Load() {
		return ghost.ErrAlreadyConnected
	}

	if err := s.session.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	_ = s.ctrlState.ToReleased()

	if err := s.initControl(ctx); err != nil {
		// No partial sessions: a failed initialization leaves neither
		// control nor connection behind.
		s.teardown()
		return err
	}

	if err := pool.Sleep(ctx, s.cfg.timings.InitSettle); err != nil {
		s.teardown()
		return err
	}

	s.initialized.Store(true)
	s.logger.Info("connection to GHOST server established")

	return nil
}

// initControl performs the post-connect part of Initialize: take control,
// probe the hardware, stop and clear.
func (s *Spectrometer) initControl(ctx context.Context) error {
	if _, err := s.session.SendRequest(ghost.TakeControl()); err != nil {
		return fmt.Errorf("take control: %w", err)
	}
	if err := s.ctrlState.ToHeld(); err != nil {
		return err
	}

	if err := pool.Sleep(ctx, s.cfg.timings.ControlSettle); err != nil {
		return err
	}

	attached, err := s.probeInstrument(ctx)
	if err != nil {
		return err
	}
	if !attached {
		s.logger.Error("no spectrometer connected, check the server's serial link")
		return ghost.ErrNoInstrument
	}

	if err := pool.Sleep(ctx, s.cfg.timings.ProbeRecover); err != nil {
		return err
	}

	// Stop any ongoing acquisition and clear leftover data.
	if err := s.session.SendFireAndForget(ghost.Stop()); err != nil {
		return err
	}
	if err := pool.Sleep(ctx, s.cfg.timings.StopSettle); err != nil {
		return err
	}
	if err := s.session.SendFireAndForget(ghost.DeleteData()); err != nil {
		return err
	}

	return nil
}

// probeInstrument checks that a spectrometer is physically attached to the
// server. OBSERVE is sent as a request here: with hardware attached the
// server starts scanning silently and the read runs into the reply timeout,
// without it an error reply naming the serial port arrives instead.
func (s *Spectrometer) probeInstrument(ctx context.Context) (bool, error) {
	attached := true

	resp, err := s.session.SendRequest(ghost.Observe())
	switch {
	case errors.Is(err, ghost.ErrResponseTimeout):
		// Silence means the scan started.
	case err != nil:
		return false, fmt.Errorf("probe: %w", err)
	default:
		attached = !resp.Contains(ghost.NoInstrumentMarker)
	}

	if err := pool.Sleep(ctx, s.cfg.timings.ProbeSettle); err != nil {
		return false, err
	}

	if err := s.session.SendFireAndForget(ghost.Stop()); err != nil {
		return false, fmt.Errorf("probe stop: %w", err)
	}

	return attached, nil
}

// teardown closes the session and resets all state after a failed
// initialization.
func (s *Spectrometer) teardown() {
	_ = s.session.Close()
	s.ctrlState.ToNotReady()
	s.initialized.Store(false)
}

// Close releases remote control and closes the connection.
//
// The connection always comes down, even when the RESTORE exchange fails;
// a release failure is reported after the transport is closed. Close is
// idempotent.
func (s *Spectrometer) Close() (err error) {
	defer func() {
		closeErr := s.session.Close()
		s.ctrlState.ToNotReady()
		s.initialized.Store(false)
		s.closeRecorder()
		if err == nil {
			err = closeErr
		}
	}()

	if s.ctrlState.IsHeld() {
		if _, rerr := s.session.SendRequest(ghost.ReleaseControl()); rerr != nil {
			s.logger.Error("failed to release remote control", "error", rerr)
			return fmt.Errorf("release control: %w", rerr)
		}
		_ = s.ctrlState.ToReleased()
	}

	return nil
}

// SetWorkingDirectory changes the server-side working directory for saved
// spectra and starts a fresh timing recorder rooted there.
func (s *Spectrometer) SetWorkingDirectory(dir string) error {
	if err := s.requireControl(); err != nil {
		return err
	}

	if err := s.session.SendFireAndForget(ghost.SetWorkingDir(dir)); err != nil {
		return err
	}

	if s.cfg.recorderFactory != nil {
		recorder, err := s.cfg.recorderFactory(dir)
		if err != nil {
			return fmt.Errorf("timing recorder: %w", err)
		}
		s.swapRecorder(recorder)
	}

	s.logger.Debug("working directory set", "dir", dir)

	return nil
}

// AcquireAndSave runs one complete acquisition: clear the buffer, start the
// given number of cycles, wait for the instrument to go idle and save the
// spectrum under filename in the server's working directory.
//
// The wait honors the mandatory floor of 60% of the theoretical acquisition
// time before polling begins, requires two consecutive idle reports to
// accept completion, and gives up after the theoretical time plus a ten
// cycle margin. On timeout no save is attempted and the call fails with
// ghost.ErrAcquisitionTimeout.
func (s *Spectrometer) AcquireAndSave(ctx context.Context, cycles int, filename string) error {
	if err := s.requireControl(); err != nil {
		return err
	}
	if cycles <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCycles, cycles)
	}

	if !s.acquiring.tryAcquire() {
		return ghost.ErrBusy
	}
	defer s.acquiring.release()

	timeout := s.clock.AcquireTimeout(cycles)
	s.logger.Info("starting acquisition",
		"cycles", cycles, "filename", filename,
		"theoretical", s.clock.TheoreticalTime(cycles), "timeout", timeout)

	// Clear previous data if any.
	if err := s.session.SendFireAndForget(ghost.DeleteData()); err != nil {
		return fmt.Errorf("clear buffer: %w", err)
	}
	if err := pool.Sleep(ctx, s.cfg.timings.DeleteSettle); err != nil {
		return err
	}

	start := time.Now()
	if err := s.session.SendFireAndForget(ghost.Start(cycles)); err != nil {
		return fmt.Errorf("start acquisition: %w", err)
	}
	if err := pool.Sleep(ctx, s.cfg.timings.StartSettle); err != nil {
		return err
	}

	done, err := s.waitForIdle(ctx, cycles, timeout)
	if err != nil {
		return err
	}
	if !done {
		return fmt.Errorf("%w: %d cycles not finished within %s",
			ghost.ErrAcquisitionTimeout, cycles, timeout)
	}

	if err := s.session.SendFireAndForget(ghost.Save(filename)); err != nil {
		return fmt.Errorf("save spectrum: %w", err)
	}
	elapsed := time.Since(start)

	s.logger.Debug("acquisition finished", "filename", filename, "elapsed", elapsed)

	return s.record(filename, cycles, elapsed)
}

// waitForIdle waits for the running acquisition to finish.
//
// Phase one sleeps out the mandatory floor without polling. Phase two polls
// the status at the configured interval until requiredIdleCount consecutive
// idle reports arrive; any busy report resets the count. The timeout is
// checked before each poll. It returns false on timeout and an error only
// for canceled contexts or failed exchanges.
func (s *Spectrometer) waitForIdle(ctx context.Context, cycles int, timeout time.Duration) (bool, error) {
	begin := time.Now()
	minWait := s.clock.MinWait(cycles)

	// Always wait for the minimum time before checking status.
	for time.Since(begin) < minWait {
		if err := pool.Sleep(ctx, s.cfg.pollInterval); err != nil {
			return false, err
		}
	}

	idleCount := 0
	for {
		if time.Since(begin) > timeout {
			s.logger.Warn("timeout waiting for acquisition",
				"cycles", cycles, "waited", time.Since(begin))
			return false, nil
		}

		busy, err := s.IsAcquiring(ctx)
		if err != nil {
			return false, err
		}

		if busy {
			idleCount = 0 // Reset counter on any busy report
		} else {
			idleCount++
			if idleCount >= requiredIdleCount {
				s.logger.Debug("acquisition finished",
					"consecutive_idle", requiredIdleCount, "waited", time.Since(begin))
				return true, nil
			}
		}

		if err := pool.Sleep(ctx, s.cfg.pollInterval); err != nil {
			return false, err
		}
	}
}

// IsAcquiring polls the server status and reports whether an acquisition is
// running.
//
// It retries the STATUS request when the reply lacks the report header
// within its first lines. When no attempt yields a usable report the poll
// reports busy: progressing on an unknown state could truncate a running
// acquisition, waiting longer is always safe.
func (s *Spectrometer) IsAcquiring(ctx context.Context) (bool, error) {
	if err := s.requireInitialized(); err != nil {
		return false, err
	}

	for attempt := 0; attempt < s.cfg.pollRetries; attempt++ {
		resp, err := s.session.SendRequest(ghost.Status())
		if err != nil {
			return false, err
		}

		if report, ok := ghost.ParseStatus(resp); ok {
			s.lastStatus.Store(&report)
			return !report.Idle, nil
		}

		if attempt < s.cfg.pollRetries-1 {
			s.logger.Debug("status report not found, retrying",
				"attempt", attempt+1, "max_retries", s.cfg.pollRetries)
			if err := pool.Sleep(ctx, s.cfg.pollInterval); err != nil {
				return false, err
			}
		}
	}

	s.logger.Error("could not get a valid status report, assuming busy")

	return true, nil
}

// SystemInfo queries the server's version and hardware details.
func (s *Spectrometer) SystemInfo() (map[string]string, error) {
	if err := s.requireInitialized(); err != nil {
		return nil, err
	}

	resp, err := s.session.SendRequest(ghost.SystemInfo())
	if err != nil {
		return nil, err
	}

	return ghost.ParseInfo(resp), nil
}

// RealtimeData fetches the current realtime spectrum data.
func (s *Spectrometer) RealtimeData() (ghost.Response, error) {
	if err := s.requireInitialized(); err != nil {
		return ghost.Response{}, err
	}

	resp, err := s.session.SendRequest(ghost.GetRealtime())
	if err != nil {
		return ghost.Response{}, err
	}

	if resp.Contains("Error") {
		s.logger.Error("realtime data request rejected", "reply", resp.String())
		return ghost.Response{}, fmt.Errorf("%w: %s", ghost.ErrRealtimeFailed, resp.String())
	}

	return resp, nil
}

// SetChannels selects the MCA channel count (256, 512 or 1024).
func (s *Spectrometer) SetChannels(n int) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}

	cmd, err := ghost.SetChannels(n)
	if err != nil {
		return err
	}

	if _, err := s.session.SendRequest(cmd); err != nil {
		return err
	}

	s.logger.Debug("channel count set", "channels", n)

	return nil
}

// SaveRawData stores the raw, uncorrected scan data under filename.
func (s *Spectrometer) SaveRawData(filename string) error {
	if err := s.requireInitialized(); err != nil {
		return err
	}

	if _, err := s.session.SendRequest(ghost.SaveRaw(filename)); err != nil {
		return err
	}

	s.logger.Debug("raw data saved", "filename", filename)

	return nil
}

// Chat shows a text message on the GHOST operator console.
func (s *Spectrometer) Chat(text string) (ghost.Response, error) {
	return s.request(ghost.Chat(text))
}

// HelpText returns the server's command overview.
func (s *Spectrometer) HelpText() (ghost.Response, error) {
	return s.request(ghost.Help())
}

// ShutterState returns the current shutter state.
func (s *Spectrometer) ShutterState() (ghost.Response, error) {
	return s.request(ghost.GetShutter())
}

// ScreenText returns the text shown on the server screen.
func (s *Spectrometer) ScreenText() (ghost.Response, error) {
	return s.request(ghost.ScreenText())
}

// ShowCurrent switches the server display to the current scan.
func (s *Spectrometer) ShowCurrent() (ghost.Response, error) {
	return s.request(ghost.ShowCurrent())
}

// WorkingDirectory queries the server-side working directory.
func (s *Spectrometer) WorkingDirectory() (ghost.Response, error) {
	return s.request(ghost.WorkingDir())
}

// Status runs one STATUS exchange and returns the parsed report.
// Unlike IsAcquiring it does not retry; garbled reports fail with ok=false.
func (s *Spectrometer) Status() (ghost.StatusReport, bool, error) {
	if err := s.requireInitialized(); err != nil {
		return ghost.StatusReport{}, false, err
	}

	resp, err := s.session.SendRequest(ghost.Status())
	if err != nil {
		return ghost.StatusReport{}, false, err
	}

	report, ok := ghost.ParseStatus(resp)
	if ok {
		s.lastStatus.Store(&report)
	}

	return report, ok, nil
}

// request is the shared passthrough for the thin query operations.
func (s *Spectrometer) request(cmd ghost.Command) (ghost.Response, error) {
	if err := s.requireInitialized(); err != nil {
		return ghost.Response{}, err
	}

	return s.session.SendRequest(cmd)
}

func (s *Spectrometer) requireInitialized() error {
	if !s.initialized.Load() {
		return ghost.ErrNotInitialized
	}

	return nil
}

func (s *Spectrometer) requireControl() error {
	if err := s.requireInitialized(); err != nil {
		return err
	}
	if !s.ctrlState.IsHeld() {
		return ghost.ErrNoControl
	}

	return nil
}

// record forwards the acquisition timing to the recorder, if any.
func (s *Spectrometer) record(filename string, cycles int, elapsed time.Duration) error {
	s.recorderMu.Lock()
	defer s.recorderMu.Unlock()

	if s.recorder == nil {
		return nil
	}

	if err := s.recorder.Record(filename, cycles, elapsed); err != nil {
		return fmt.Errorf("record timing: %w", err)
	}

	return nil
}

func (s *Spectrometer) swapRecorder(recorder TimingRecorder) {
	s.recorderMu.Lock()
	defer s.recorderMu.Unlock()

	if s.recorder != nil {
		_ = s.recorder.Close()
	}
	s.recorder = recorder
}

func (s *Spectrometer) closeRecorder() {
	s.recorderMu.Lock()
	defer s.recorderMu.Unlock()

	if s.recorder != nil {
		_ = s.recorder.Close()
		s.recorder = nil
	}
}
