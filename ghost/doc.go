// Package ghost defines the protocol layer for remote control of the GHOST
// spectrometer server shipped with TFP-1/TFP-2 tandem Fabry-Perot
// interferometers. The server listens on a TCP port and accepts short ASCII
// command lines; this package provides the command table, reply parsing, the
// error taxonomy and the remote-control state machine shared by all
// transports.
//
// Key Features:
//   - Command Table: Typed constructors for every documented server command,
//     with line-length validation before anything reaches the wire.
//   - Reply Parsing: Status report and INFO reply parsers, including the
//     bounded header scan used to classify garbled reports as unknown.
//   - Control State: A guarded state machine for the OVERRIDE/RESTORE
//     remote-control lifecycle with change handlers and waiters.
//   - Session Interface: The transport contract implemented by ghosttcp,
//     exposing requests and fire-and-forget sends as two explicit operations.
//
// The concrete TCP transport lives in the ghosttcp package; the acquisition
// workflow built on top of it lives in the brillouin package.
package ghost
