package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var baseLogger zerolog.Logger

func init() {
	// Sensible default so packages can log before InitLogging runs.
	baseLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// InitLogging configures the process-wide logger. When logFilePath is empty
// the logger keeps writing human-readable output to stderr; otherwise it
// appends JSON lines to the given file.
func InitLogging(logFilePath string) {
	if logFilePath == "" {
		return
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		ErrorLog(context.Background(), "failed to open log file %s, keeping stderr: %v", logFilePath, err)
		return
	}
	baseLogger = zerolog.New(f).With().Timestamp().Logger()
}

// SetLevel adjusts the global level from a string such as "debug" or "warn".
// Unknown values fall back to info.
func SetLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func DebugLog(ctx context.Context, format string, args ...interface{}) {
	baseLogger.Debug().Msg(formatMessage(format, args...))
}

func InfoLog(ctx context.Context, format string, args ...interface{}) {
	baseLogger.Info().Msg(formatMessage(format, args...))
}

func WarnLog(ctx context.Context, format string, args ...interface{}) {
	baseLogger.Warn().Msg(formatMessage(format, args...))
}

func ErrorLog(ctx context.Context, format string, args ...interface{}) {
	baseLogger.Error().Msg(formatMessage(format, args...))
}

func formatMessage(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
