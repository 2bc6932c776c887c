package ghost

import "strings"

// Wire markers emitted by the GHOST server.
const (
	// EndOfReport terminates a STATUS reply. STATUS reports contain blank
	// lines, so the usual blank-line termination does not apply to them.
	EndOfReport = "END OF REPORT"

	// StatusHeader marks the header line of a status report.
	StatusHeader = "GHOST STATUS REPORT"

	// IdleMarker appears in the status header line while no acquisition is
	// running.
	IdleMarker = "IDLE"

	// NoInstrumentMarker appears in replies when the server has no serial
	// connection to the spectrometer hardware.
	NoInstrumentMarker = "Error : server cannot open serial port"
)

// statusScanWindow is the number of leading reply lines inspected for the
// status header. A header appearing later counts as not found.
const statusScanWindow = 5

// Response is the reply text of a single request, with the surrounding
// whitespace trimmed and lines separated by "\n".
type Response struct {
	raw string
}

// NewResponse builds a Response from raw reply text.
func NewResponse(raw string) Response {
	return Response{raw: strings.TrimSpace(raw)}
}

// String returns the trimmed reply text.
func (r Response) String() string { return r.raw }

// Lines splits the reply into its lines.
func (r Response) Lines() []string {
	if r.raw == "" {
		return nil
	}
	return strings.Split(r.raw, "\n")
}

// Empty reports whether the reply carried no text.
func (r Response) Empty() bool { return r.raw == "" }

// Contains reports whether the reply contains substr.
func (r Response) Contains(substr string) bool {
	return strings.Contains(r.raw, substr)
}

// StatusReport is the parsed header of a STATUS reply.
type StatusReport struct {
	// HeaderLine is the trimmed line containing the status header marker.
	HeaderLine string
	// Idle reports whether the header marks the server as idle.
	Idle bool
}

// ParseStatus scans the first lines of a STATUS reply for the status header.
//
// It returns the parsed report and true when the header was found within the
// scan window, or a zero report and false otherwise. Truncated or garbled
// replies therefore read as "status unknown", never as idle.
func ParseStatus(resp Response) (StatusReport, bool) {
	lines := resp.Lines()
	if len(lines) > statusScanWindow {
		lines = lines[:statusScanWindow]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.Contains(line, StatusHeader) {
			return StatusReport{
				HeaderLine: line,
				Idle:       strings.Contains(line, IdleMarker),
			}, true
		}
	}

	return StatusReport{}, false
}

// ParseInfo parses an INFO reply into key/value pairs.
//
// Each line is split on its first colon; lines without a colon are skipped.
func ParseInfo(resp Response) map[string]string {
	info := make(map[string]string)
	for _, line := range resp.Lines() {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return info
}
