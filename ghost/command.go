package ghost

import (
	"fmt"
	"strings"
)

// MaxCommandLen is the longest command line the GHOST server accepts,
// excluding the CRLF terminator.
const MaxCommandLen = 80

// Valid MCA channel counts accepted by the SET<n> command.
const (
	Channels256  = 256
	Channels512  = 512
	Channels1024 = 1024
)

// Command is a single ASCII command line addressed to the GHOST server.
//
// Each command carries a default reply mode: request commands make the server
// produce a reply, fire-and-forget commands do not. The session layer exposes
// both modes as explicit operations; the default mode only drives generic
// passthroughs such as a CLI "send" command.
type Command struct {
	text        string
	expectReply bool
}

// Text returns the wire text of the command without the CRLF terminator.
func (c Command) Text() string { return c.text }

// Verb returns the first token of the command, e.g. "START" for "START 10".
// Used as a stable key for per-verb metrics.
func (c Command) Verb() string {
	verb, _, _ := strings.Cut(c.text, " ")
	return verb
}

// ExpectsReply reports the default reply mode of the command.
func (c Command) ExpectsReply() bool { return c.expectReply }

// IsStatus reports whether this is the STATUS command, whose reply terminates
// on the END OF REPORT marker instead of a blank line.
func (c Command) IsStatus() bool { return c.text == "STATUS" }

func (c Command) String() string { return c.text }

// Validate checks the command against the server's line constraints.
// It must pass before any byte is written to the wire.
func (c Command) Validate() error {
	if c.text == "" {
		return ErrEmptyCommand
	}
	if len(c.text) > MaxCommandLen {
		return fmt.Errorf("%w: %d bytes", ErrCommandTooLong, len(c.text))
	}

	return nil
}

func request(text string) Command       { return Command{text: text, expectReply: true} }
func fireAndForget(text string) Command { return Command{text: text, expectReply: false} }

// Raw builds a command from its literal wire text. Most callers should use
// the typed constructors; Raw exists for passthrough tooling and vendor
// commands outside the acquisition vocabulary.
func Raw(text string, expectReply bool) Command {
	return Command{text: text, expectReply: expectReply}
}

// Chat sends a text message to the GHOST operator console.
func Chat(text string) Command {
	return request(fmt.Sprintf("CHAT \"%s\"", text))
}

// DeleteData discards the data held in the acquisition buffer.
func DeleteData() Command { return fireAndForget("DELETE") }

// GetRealtime requests the current realtime spectrum data.
func GetRealtime() Command { return request("GET_REALTIME") }

// GetShutter requests the current shutter state.
func GetShutter() Command { return request("GET_SHUTTER") }

// Help requests the server's command overview.
func Help() Command { return request("HELP") }

// Status requests the full status report. The reply ends with a line
// containing the END OF REPORT marker rather than a blank line.
func Status() Command { return request("STATUS") }

// Observe starts a free-running observation scan.
func Observe() Command { return fireAndForget("OBSERVE") }

// TakeControl requests remote control of the GHOST server (OVERRIDE).
func TakeControl() Command { return request("OVERRIDE") }

// ReleaseControl returns control to the local operator (RESTORE).
func ReleaseControl() Command { return request("RESTORE") }

// Save stores the acquired spectrum under name in the server's working
// directory.
func Save(name string) Command {
	return fireAndForget("SAVE " + name)
}

// SaveRaw stores the raw, uncorrected scan data under name.
func SaveRaw(name string) Command {
	return request("SAVERAW " + name)
}

// ShowCurrent switches the server display to the current scan.
func ShowCurrent() Command { return request("SET SHOW_CURRENT") }

// SetChannels selects the MCA channel count. The hardware accepts 256, 512
// or 1024 channels; other counts fail with ErrInvalidChannels.
func SetChannels(n int) (Command, error) {
	switch n {
	case Channels256, Channels512, Channels1024:
		return request(fmt.Sprintf("SET%d", n)), nil
	default:
		return Command{}, fmt.Errorf("%w: got %d", ErrInvalidChannels, n)
	}
}

// Start begins an acquisition of the given number of cycles.
func Start(cycles int) Command {
	return fireAndForget(fmt.Sprintf("START %d", cycles))
}

// Stop aborts any running acquisition or observation.
func Stop() Command { return fireAndForget("STOP") }

// ScreenText requests the text shown on the server screen.
func ScreenText() Command { return request("TEXT") }

// SetWorkingDir changes the server-side working directory for saved spectra.
func SetWorkingDir(dir string) Command {
	return fireAndForget("WDIR " + dir)
}

// WorkingDir queries the server-side working directory.
func WorkingDir() Command { return request("WDIR") }

// SystemInfo requests version and hardware details (INFO).
func SystemInfo() Command { return request("INFO") }
