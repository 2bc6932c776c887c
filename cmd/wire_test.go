package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/hotlab/go-ghost/logger"
)

func parsedRoot(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	root := newRootCmd()
	require.NoError(t, root.PersistentFlags().Parse(args))

	return root
}

func TestLoadSettings(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		require := require.New(t)

		set, err := loadSettings(parsedRoot(t))
		require.NoError(err)
		require.Equal("127.0.0.1", set.Host)
		require.Equal(4000, set.Port)
		require.Equal(4, set.ClockKHz)
		require.Equal("info", set.LogLevel)
	})

	t.Run("Flags", func(t *testing.T) {
		require := require.New(t)

		set, err := loadSettings(parsedRoot(t,
			"--host", "192.168.1.20", "--port", "4100", "--clock-khz", "2", "--log-level", "debug"))
		require.NoError(err)
		require.Equal("192.168.1.20", set.Host)
		require.Equal(4100, set.Port)
		require.Equal(2, set.ClockKHz)
		require.Equal("debug", set.LogLevel)
		require.Equal(logger.DebugLevel, logger.GetLogger().Level())
	})

	t.Run("Environment", func(t *testing.T) {
		require := require.New(t)

		t.Setenv("GHOSTCTL_PORT", "4500")
		t.Setenv("GHOSTCTL_CLOCK_KHZ", "8")

		set, err := loadSettings(parsedRoot(t))
		require.NoError(err)
		require.Equal(4500, set.Port)
		require.Equal(8, set.ClockKHz)
	})

	t.Run("Flags Beat Environment", func(t *testing.T) {
		require := require.New(t)

		t.Setenv("GHOSTCTL_PORT", "4500")

		set, err := loadSettings(parsedRoot(t, "--port", "4600"))
		require.NoError(err)
		require.Equal(4600, set.Port)
	})

	t.Run("Config File", func(t *testing.T) {
		require := require.New(t)

		path := filepath.Join(t.TempDir(), "ghostctl.toml")
		require.NoError(os.WriteFile(path, []byte("host = \"10.0.0.9\"\nport = 4700\n"), 0o644))

		set, err := loadSettings(parsedRoot(t, "--config", path))
		require.NoError(err)
		require.Equal("10.0.0.9", set.Host)
		require.Equal(4700, set.Port)
	})

	t.Run("Environment Beats Config File", func(t *testing.T) {
		require := require.New(t)

		path := filepath.Join(t.TempDir(), "ghostctl.toml")
		require.NoError(os.WriteFile(path, []byte("port = 4700\n"), 0o644))
		t.Setenv("GHOSTCTL_PORT", "4800")

		set, err := loadSettings(parsedRoot(t, "--config", path))
		require.NoError(err)
		require.Equal(4800, set.Port)
	})

	t.Run("Missing Config File", func(t *testing.T) {
		_, err := loadSettings(parsedRoot(t, "--config", filepath.Join(t.TempDir(), "missing.toml")))
		require.ErrorContains(t, err, "read config file")
	})

	t.Run("Invalid Log Level", func(t *testing.T) {
		_, err := loadSettings(parsedRoot(t, "--log-level", "verbose"))
		require.ErrorContains(t, err, "unknown log level")
	})
}
