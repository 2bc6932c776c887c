// Package ghosttcp implements the ghost.Session interface over a persistent
// TCP connection to a GHOST spectrometer server.
//
// The GHOST server accepts one ASCII command line at a time and answers
// requests with reply text, so the session serializes every exchange and
// reads replies line by line under a per-line deadline. A reply ends at the
// first blank line, except for STATUS reports which end at the line carrying
// the END OF REPORT marker.
//
// Key Features:
//   - Connection Management: Dial with timeout and TCP keep-alive, followed
//     by the welcome-banner settle delay the server requires.
//   - Two Send Modes: Requests with reply collection and fire-and-forget
//     command writes, mirroring the server's two command kinds.
//   - Deadline-Based Reads: Every reply line must arrive within the
//     configured reply timeout; stalls surface as ghost.ErrResponseTimeout.
//   - Metrics: Atomic exchange counters plus a per-verb send counter that
//     observers may read while exchanges are in flight.
//
// Usage Example:
//
//	cfg, err := ghosttcp.NewConnectionConfig("127.0.0.1", 4000,
//	    ghosttcp.WithReplyTimeout(5*time.Second),
//	)
//	// ... handle error ...
//	session, err := ghosttcp.NewSession(cfg)
//	// ... handle error ...
//	if err := session.Connect(); err != nil {
//	    // ... handle error ...
//	}
//	defer session.Close()
//
//	reply, err := session.SendRequest(ghost.Status())
//	// ... handle error ...
//	report, ok := ghost.ParseStatus(reply)
//	_ = report
//	_ = ok
package ghosttcp
