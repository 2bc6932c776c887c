package ghosttcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hotlab/go-ghost/ghost"
	"github.com/hotlab/go-ghost/internal/pool"
	"github.com/hotlab/go-ghost/logger"
)

// Session is a persistent TCP session with a GHOST server implementing
// ghost.Session.
//
// The server handles a single command at a time and replies strictly in
// order, so the session serializes all exchanges behind one mutex. Replies
// are read line by line with a fresh read deadline per line.
type Session struct {
	cfg     *ConnectionConfig
	logger  logger.Logger
	metrics *SessionMetrics

	// mu serializes exchanges and guards conn and reader.
	mu        sync.Mutex
	conn      net.Conn
	reader    *bufio.Reader
	connected atomic.Bool
}

var _ ghost.Session = (*Session)(nil)

// NewSession creates a session for the given configuration.
// The session is not connected yet; call Connect before sending commands.
func NewSession(cfg *ConnectionConfig) (*Session, error) {
	if cfg == nil {
		return nil, ghost.ErrConnConfigNil
	}

	return &Session{
		cfg:     cfg,
		logger:  cfg.logger,
		metrics: newSessionMetrics(),
	}, nil
}

// Metrics returns the session metrics.
func (s *Session) Metrics() *SessionMetrics { return s.metrics }

// UpdateConfigOptions applies configuration options to a live session.
// Only options marked as runtime-changeable are accepted; the update is
// serialized against in-flight exchanges and takes effect on the next one.
// Options are applied in order, an invalid option stops the update but
// leaves earlier ones applied.
func (s *Session) UpdateConfigOptions(opts ...ConnOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, opt := range opts {
		connOpt, ok := opt.(*connOptFunc)
		if !ok {
			return errors.New("invalid ConnOption type")
		}

		if !connOpt.runtime {
			return fmt.Errorf("option %s cannot be changed at runtime", connOpt.name)
		}

		if err := opt.apply(s.cfg); err != nil {
			return err
		}
	}

	return nil
}

// Connect dials the GHOST server and waits out the welcome delay. Commands
// may be sent as soon as Connect returns.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return ghost.ErrAlreadyConnected
	}

	addr := s.cfg.Addr()
	dialer := net.Dialer{
		Timeout:   s.cfg.connectTimeout,
		KeepAlive: s.cfg.keepAlive,
	}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		s.logger.Error("failed to connect to GHOST server", "address", addr, "error", err)
		return fmt.Errorf("ghost: connect %s: %w", addr, err)
	}

	s.conn = conn
	s.reader = bufio.NewReader(conn)
	s.connected.Store(true)
	s.metrics.incConnectCount()

	s.logger.Info("connected to GHOST server", "address", addr, "welcome_delay", s.cfg.welcomeDelay)

	// The server needs a settle period after accepting a client before it
	// processes commands.
	_ = pool.Sleep(context.Background(), s.cfg.welcomeDelay)

	return nil
}

// Connected reports whether the transport is currently established.
func (s *Session) Connected() bool {
	return s.connected.Load()
}

// SendRequest writes cmd and reads the server's reply.
//
// The reply is read line by line; each line must arrive within the reply
// timeout or the exchange fails with ghost.ErrResponseTimeout. A STATUS
// reply terminates on the END OF REPORT marker, every other reply on the
// first blank line.
func (s *Session) SendRequest(cmd ghost.Command) (ghost.Response, error) {
	if err := cmd.Validate(); err != nil {
		return ghost.Response{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ghost.Response{}, ghost.ErrConnClosed
	}

	if err := s.writeCommand(cmd); err != nil {
		return ghost.Response{}, err
	}
	s.metrics.incRequestCount()
	s.metrics.incVerbCount(cmd.Verb())

	raw, err := s.readReply(cmd.IsStatus())
	if err != nil {
		s.logger.Error("command reply failed", "command", cmd.Verb(), "error", err)
		return ghost.Response{}, fmt.Errorf("%s reply: %w", cmd.Verb(), err)
	}
	s.metrics.incReplyCount()

	resp := ghost.NewResponse(raw)
	s.logger.Debug("command reply received", "command", cmd.Verb(), "lines", len(resp.Lines()))

	return resp, nil
}

// SendFireAndForget writes cmd without reading a reply.
func (s *Session) SendFireAndForget(cmd ghost.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ghost.ErrConnClosed
	}

	if err := s.writeCommand(cmd); err != nil {
		return err
	}
	s.metrics.incFireAndForgetCount()
	s.metrics.incVerbCount(cmd.Verb())

	s.logger.Debug("command sent", "command", cmd.Verb())

	return nil
}

// Close tears the TCP connection down. It is idempotent and never blocks on
// server state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.reader = nil
	s.connected.Store(false)

	if err != nil {
		s.logger.Error("failed to close connection", "error", err)
		return fmt.Errorf("ghost: close: %w", err)
	}

	s.logger.Info("connection closed")

	return nil
}

// writeCommand writes the command line with its CRLF terminator.
// The caller must hold s.mu.
func (s *Session) writeCommand(cmd ghost.Command) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.ReplyTimeout())); err != nil {
		return fmt.Errorf("ghost: set write deadline: %w", err)
	}

	if _, err := s.conn.Write([]byte(cmd.Text() + "\r\n")); err != nil {
		s.logger.Error("failed to send command", "command", cmd.Verb(), "error", err)
		s.dropConn()
		return fmt.Errorf("%w: send %s: %v", ghost.ErrConnClosed, cmd.Verb(), err)
	}

	return nil
}

// readReply accumulates reply lines until the terminator for the command
// kind is seen. The caller must hold s.mu.
func (s *Session) readReply(isStatus bool) (string, error) {
	var reply strings.Builder

	for {
		line, err := s.readLine()
		if err != nil {
			return "", err
		}
		s.metrics.incReplyLineCount()

		if isStatus {
			reply.WriteString(line)
			reply.WriteByte('\n')
			if strings.Contains(line, ghost.EndOfReport) {
				return reply.String(), nil
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			return reply.String(), nil
		}
		reply.WriteString(line)
		reply.WriteByte('\n')
	}
}

// readLine reads one reply line with a fresh read deadline.
// The caller must hold s.mu.
func (s *Session) readLine() (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReplyTimeout())); err != nil {
		return "", fmt.Errorf("ghost: set read deadline: %w", err)
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			s.metrics.incReplyTimeoutCount()
			return "", fmt.Errorf("%w after %s", ghost.ErrResponseTimeout, s.cfg.ReplyTimeout())
		case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
			s.dropConn()
			return "", ghost.ErrConnClosed
		default:
			// resets and other fatal read errors leave the transport unusable
			s.dropConn()
			return "", fmt.Errorf("%w: read reply: %v", ghost.ErrConnClosed, err)
		}
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// dropConn closes and clears the transport after a fatal I/O error.
// The caller must hold s.mu.
func (s *Session) dropConn() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = nil
	s.reader = nil
	s.connected.Store(false)
}
