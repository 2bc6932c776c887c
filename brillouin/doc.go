// Package brillouin provides a high-level coordinator for timed acquisitions
// on a Brillouin spectrometer driven by a GHOST server.
//
// The package builds on the ghost command set and a ghost.Session transport
// (usually ghosttcp) and adds the workflow knowledge the raw protocol lacks:
// how long an acquisition takes, how to confirm it finished and how to keep
// the instrument in a safe state across connect and disconnect.
//
// Key Features:
//   - Full initialization handshake: connect, take remote control, probe for
//     attached hardware and clear stale acquisition state.
//   - Clock-derived timing: the scan cycle time, the mandatory pre-poll wait
//     and the abort timeout all follow from the drive clock frequency.
//   - Debounced completion detection: an acquisition counts as finished only
//     after two consecutive idle status reports.
//   - Timed acquisition records: each saved spectrum can be logged with its
//     measured wall-clock duration through a TimingRecorder.
//   - Guaranteed release: Close always closes the transport, even when
//     handing back control fails.
//
// Usage Example:
//
//	cfg, _ := ghosttcp.NewConnectionConfig("127.0.0.1", 4000)
//	session, _ := ghosttcp.NewSession(cfg)
//
//	tfp, err := brillouin.New(session, brillouin.WithClockFrequency(4))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := tfp.Initialize(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer tfp.Close()
//
//	if err := tfp.SetWorkingDirectory("C:\\data\\run42"); err != nil {
//		log.Fatal(err)
//	}
//	if err := tfp.AcquireAndSave(ctx, 100, "sample_001"); err != nil {
//		log.Fatal(err)
//	}
package brillouin
