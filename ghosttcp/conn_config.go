package ghosttcp

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hotlab/go-ghost/ghost"
	"github.com/hotlab/go-ghost/logger"
)

// Default configuration values. The reply timeout and welcome delay follow
// the GHOST server behavior: replies stream line by line, and the server
// prints a welcome banner for a few seconds after accepting a client.
const (
	DefaultReplyTimeout   = 5 * time.Second
	DefaultConnectTimeout = 3 * time.Second
	DefaultWelcomeDelay   = 3 * time.Second
	DefaultKeepAlive      = 30 * time.Second
)

// ConnectionConfig represents the configuration parameters for a TCP session
// with a GHOST server.
type ConnectionConfig struct {
	mu sync.RWMutex

	// host specifies the host the GHOST server runs on. The server only
	// accepts local clients in its default setup, hence the loopback default
	// used by callers.
	host string

	// port specifies the TCP port the GHOST server listens on.
	port int

	// replyTimeout defines how long each reply line may take to arrive
	// before the exchange fails with ghost.ErrResponseTimeout.
	// Defaults to 5 seconds.
	replyTimeout time.Duration

	// connectTimeout defines the timeout for establishing the TCP
	// connection. Defaults to 3 seconds.
	connectTimeout time.Duration

	// welcomeDelay defines the settle time after connecting before the first
	// command may be sent. The server emits its welcome banner during this
	// window; commands sent earlier receive interleaved reply text.
	// Defaults to 3 seconds.
	welcomeDelay time.Duration

	// keepAlive defines the TCP keep-alive period. Zero disables keep-alive
	// probes. Defaults to 30 seconds.
	keepAlive time.Duration

	// logger provides a logger instance for session events and errors.
	logger logger.Logger
}

// NewConnectionConfig creates a new session configuration with the given
// host, port number, and optional functional options.
//
// It initializes a ConnectionConfig with default values and then applies the
// provided options to customize the configuration. See the documentation for
// ConnOption and the various WithXXX functions for available options.
//
// Returns a pointer to the initialized ConnectionConfig and an error if any
// occurred during the configuration process.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		replyTimeout:   DefaultReplyTimeout,
		connectTimeout: DefaultConnectTimeout,
		welcomeDelay:   DefaultWelcomeDelay,
		keepAlive:      DefaultKeepAlive,
		logger:         logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	if err := withPort(port).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// ReplyTimeout returns the per-line reply timeout.
func (cfg *ConnectionConfig) ReplyTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.replyTimeout
}

// WelcomeDelay returns the post-connect settle delay.
func (cfg *ConnectionConfig) WelcomeDelay() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.welcomeDelay
}

// Addr returns the host:port target of the configuration.
func (cfg *ConnectionConfig) Addr() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port))
}

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	runtime   bool
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error { return c.applyFunc(cfg) }

func newConnOptFunc(name string, runtime bool, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{
		name:      name,
		runtime:   runtime,
		applyFunc: f,
	}
}

// withHost sets the host of the GHOST server.
// It returns a ConnOption that validates the host and updates the configuration.
// An error is returned if the configuration is nil.
func withHost(host string) ConnOption {
	return newConnOptFunc("withHost", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ghost.ErrConnConfigNil
		}

		// Check if it's a valid IP address
		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		// If not an IP, check if it's a valid domain name
		host = strings.TrimPrefix(host, ".")
		host = strings.TrimSuffix(host, ".")
		if _, err := net.LookupHost(host); err == nil {
			cfg.host = host
			return nil
		}

		return errors.New("invalid host")
	})
}

// withPort sets the TCP port number of the GHOST server.
// It returns a ConnOption that validates the port number and updates the configuration.
// An error is returned if the port number is out of the valid range (1-65535) or if the configuration is nil.
func withPort(port int) ConnOption {
	return newConnOptFunc("withPort", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ghost.ErrConnConfigNil
		}

		if port < 1 || port > 65535 {
			return errors.New("port is out of range [1, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithReplyTimeout sets the per-line reply timeout.
// A reply line that does not arrive within this window fails the exchange
// with ghost.ErrResponseTimeout.
// An error is returned if the timeout is outside the valid range (100ms-120 seconds) or if the configuration is nil.
//
// The default value is 5 seconds.
//
// This option can be changed at runtime.
func WithReplyTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithReplyTimeout", true, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ghost.ErrConnConfigNil
		}

		if val < 100*time.Millisecond || val > 120*time.Second {
			return errors.New("reply timeout out of range [0.1, 120]")
		}
		cfg.replyTimeout = val

		return nil
	})
}

// WithConnectTimeout sets the timeout for establishing the TCP connection.
// An error is returned if the timeout is outside the valid range (100ms-30 seconds) or if the configuration is nil.
//
// The default value is 3 seconds.
//
// This option can't be changed at runtime.
func WithConnectTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithConnectTimeout", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ghost.ErrConnConfigNil
		}

		if val < 100*time.Millisecond || val > 30*time.Second {
			return errors.New("connect timeout out of range [0.1, 30]")
		}
		cfg.connectTimeout = val

		return nil
	})
}

// WithWelcomeDelay sets the settle time between establishing the connection
// and the first command. The GHOST server prints a welcome banner after
// accepting a client; commands sent during that window get their replies
// interleaved with banner text.
//
// A zero delay is accepted for tests and servers known not to emit a banner.
// An error is returned if the delay is negative, above 30 seconds, or if the
// configuration is nil.
//
// The default value is 3 seconds.
//
// This option can't be changed at runtime.
func WithWelcomeDelay(val time.Duration) ConnOption {
	return newConnOptFunc("WithWelcomeDelay", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ghost.ErrConnConfigNil
		}

		if val < 0 || val > 30*time.Second {
			return errors.New("welcome delay out of range [0, 30]")
		}
		cfg.welcomeDelay = val

		return nil
	})
}

// WithKeepAlive sets the TCP keep-alive period. A zero value disables
// keep-alive probes.
// An error is returned if the period is negative or if the configuration is nil.
//
// The default value is 30 seconds.
//
// This option can't be changed at runtime.
func WithKeepAlive(val time.Duration) ConnOption {
	return newConnOptFunc("WithKeepAlive", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ghost.ErrConnConfigNil
		}

		if val < 0 {
			return errors.New("keep-alive period must not be negative")
		}
		cfg.keepAlive = val

		return nil
	})
}

// WithLogger sets the logger for the session.
// It returns a ConnOption that updates the configuration with the provided logger.
// An error is returned if the configuration is nil.
//
// The default logger is the global logger instance.
//
// This option can't be changed at runtime.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", false, func(cfg *ConnectionConfig) error {
		if cfg == nil {
			return ghost.ErrConnConfigNil
		}

		cfg.logger = l

		return nil
	})
}
