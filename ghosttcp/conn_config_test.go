package ghosttcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConnectionConfig(t *testing.T) {
	require := require.New(t)

	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewConnectionConfig(testIP, 4000)
		require.NoError(err)
		require.Equal(DefaultReplyTimeout, cfg.ReplyTimeout())
		require.Equal(DefaultWelcomeDelay, cfg.WelcomeDelay())
		require.Equal("127.0.0.1:4000", cfg.Addr())
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg, err := NewConnectionConfig(testIP, 4000,
			WithReplyTimeout(time.Second),
			WithWelcomeDelay(0),
			WithConnectTimeout(500*time.Millisecond),
			WithKeepAlive(0),
		)
		require.NoError(err)
		require.Equal(time.Second, cfg.ReplyTimeout())
		require.Equal(time.Duration(0), cfg.WelcomeDelay())
	})

	t.Run("invalid host", func(t *testing.T) {
		_, err := NewConnectionConfig("not a host name", 4000)
		require.Error(err)
	})

	t.Run("invalid port", func(t *testing.T) {
		_, err := NewConnectionConfig(testIP, 0)
		require.Error(err)

		_, err = NewConnectionConfig(testIP, 70000)
		require.Error(err)
	})

	t.Run("out of range options", func(t *testing.T) {
		_, err := NewConnectionConfig(testIP, 4000, WithReplyTimeout(time.Millisecond))
		require.Error(err)

		_, err = NewConnectionConfig(testIP, 4000, WithWelcomeDelay(-time.Second))
		require.Error(err)

		_, err = NewConnectionConfig(testIP, 4000, WithConnectTimeout(time.Minute))
		require.Error(err)

		_, err = NewConnectionConfig(testIP, 4000, WithKeepAlive(-time.Second))
		require.Error(err)
	})
}
