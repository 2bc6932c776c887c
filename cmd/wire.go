package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hotlab/go-ghost/brillouin"
	"github.com/hotlab/go-ghost/ghosttcp"
	"github.com/hotlab/go-ghost/logger"
)

const (
	envPrefix  = "GHOSTCTL"
	configName = "ghostctl"
	configType = "toml"
)

// settings holds the configuration of one invocation, resolved in order:
// flag, environment variable, config file, default.
type settings struct {
	Host     string
	Port     int
	ClockKHz int
	LogLevel string
}

func registerRootFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default ghostctl.toml in the working directory)")
	pf.String("host", "127.0.0.1", "GHOST server host")
	pf.Int("port", 4000, "GHOST server TCP port")
	pf.Int("clock-khz", brillouin.DefaultClockKHz, "TFP drive clock frequency in kHz")
	pf.String("log-level", "info", "log level (debug, info, warn, error, fatal)")
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	cfg := viper.New()
	flags := cmd.Root().PersistentFlags()

	for key, name := range map[string]string{
		"host":      "host",
		"port":      "port",
		"clock_khz": "clock-khz",
		"log_level": "log-level",
	} {
		if err := cfg.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", name, err)
		}
	}

	cfg.SetEnvPrefix(envPrefix)
	cfg.AutomaticEnv()

	configFile, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		cfg.SetConfigFile(configFile)
		if err := cfg.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(".")
		if confDir, err := os.UserConfigDir(); err == nil {
			cfg.AddConfigPath(filepath.Join(confDir, "ghostctl"))
		}

		if err := cfg.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	set := &settings{
		Host:     cfg.GetString("host"),
		Port:     cfg.GetInt("port"),
		ClockKHz: cfg.GetInt("clock_khz"),
		LogLevel: cfg.GetString("log_level"),
	}

	if err := applyLogging(set.LogLevel); err != nil {
		return nil, err
	}

	return set, nil
}

// applyLogging installs the CLI's process logger: zerolog to stderr, keeping
// stdout free for command output.
func applyLogging(name string) error {
	var level logger.LogLevel
	switch strings.ToLower(name) {
	case "debug":
		level = logger.DebugLevel
	case "info":
		level = logger.InfoLevel
	case "warn":
		level = logger.WarnLevel
	case "error":
		level = logger.ErrorLevel
	case "fatal":
		level = logger.FatalLevel
	default:
		return fmt.Errorf("unknown log level %q", name)
	}

	logger.SetLogger(logger.NewZerolog(os.Stderr, level))

	return nil
}

// withSession connects a bare protocol session and runs fn over it. Queries
// that do not need remote control go through here and leave the local
// operator undisturbed.
func withSession(cmd *cobra.Command, fn func(*ghosttcp.Session) error) error {
	set, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	connCfg, err := ghosttcp.NewConnectionConfig(set.Host, set.Port)
	if err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	session, err := ghosttcp.NewSession(connCfg)
	if err != nil {
		return err
	}

	if err := session.Connect(); err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Error("failed to close session", "error", cerr)
		}
	}()

	return fn(session)
}

// withSpectrometer brings up a fully initialized acquisition coordinator,
// runs fn and always tears the session down afterwards.
func withSpectrometer(cmd *cobra.Command, fn func(*brillouin.Spectrometer) error) error {
	set, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	connCfg, err := ghosttcp.NewConnectionConfig(set.Host, set.Port)
	if err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	session, err := ghosttcp.NewSession(connCfg)
	if err != nil {
		return err
	}

	tfp, err := brillouin.New(session, brillouin.WithClockFrequency(set.ClockKHz))
	if err != nil {
		return err
	}

	if err := tfp.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("initialize spectrometer: %w", err)
	}
	defer func() {
		if cerr := tfp.Close(); cerr != nil {
			logger.Error("failed to close spectrometer session", "error", cerr)
		}
	}()

	return fn(tfp)
}
