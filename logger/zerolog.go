package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of rs/zerolog.
//
// It is offered as an alternative to the default slog backend for programs
// already standardized on zerolog sinks.
type ZerologLogger struct {
	mu     sync.Mutex
	logger zerolog.Logger
	level  LogLevel
}

// NewZerolog creates a zerolog-backed Logger writing to output.
// A nil output defaults to os.Stdout.
func NewZerolog(output io.Writer, level LogLevel) Logger {
	if output == nil {
		output = os.Stdout
	}

	inst := &ZerologLogger{
		logger: zerolog.New(output).With().Timestamp().Logger(),
	}
	inst.SetLevel(level)

	return inst
}

func (l *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) Fatal(msg string, keysAndValues ...any) {
	// zerolog's Fatal event calls os.Exit(1) after the write.
	l.logger.Fatal().Fields(keysAndValues).Msg(msg)
}

func (l *ZerologLogger) With(keyValues ...any) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &ZerologLogger{
		logger: l.logger.With().Fields(keyValues).Logger(),
		level:  l.level,
	}
}

func (l *ZerologLogger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.level
}

func (l *ZerologLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = level
	l.logger = l.logger.Level(toZerologLevel(level))
}

func toZerologLevel(level LogLevel) zerolog.Level {
	levelMap := map[LogLevel]zerolog.Level{
		DebugLevel: zerolog.DebugLevel,
		InfoLevel:  zerolog.InfoLevel,
		WarnLevel:  zerolog.WarnLevel,
		ErrorLevel: zerolog.ErrorLevel,
		FatalLevel: zerolog.FatalLevel,
	}
	if zl, ok := levelMap[level]; ok {
		return zl
	}
	return zerolog.ErrorLevel
}
