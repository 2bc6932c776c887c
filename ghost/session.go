package ghost

// Session is a persistent command channel to a GHOST server.
//
// The two send operations reflect the two kinds of commands the server knows:
// requests, which the server answers with reply text, and fire-and-forget
// commands, which it executes silently. Implementations must serialize all
// sends; the server processes one command at a time and replies strictly in
// order, so there is never more than one exchange in flight.
type Session interface {
	// Connect establishes the transport and performs the post-connect settle
	// before the first command may be sent. Calling Connect on an already
	// connected session is an error.
	Connect() error

	// SendRequest writes cmd and reads the server's reply.
	//
	// The reply is read line by line; each line must arrive within the
	// configured reply timeout. A STATUS reply terminates on the line
	// containing the END OF REPORT marker, every other reply on the first
	// blank line.
	SendRequest(cmd Command) (Response, error)

	// SendFireAndForget writes cmd without reading a reply.
	SendFireAndForget(cmd Command) error

	// Connected reports whether the transport is currently established.
	Connected() bool

	// Close tears the transport down. It is idempotent.
	Close() error
}
