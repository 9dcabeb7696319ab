package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logger    zerolog.Logger
	levelOnce sync.Once
)

// initLogger configures the zerolog backend from environment variables.
func initLogger() {
	levelOnce.Do(func() {
		level := zerolog.InfoLevel

		// DEBUG wins over LOG_LEVEL when set truthy.
		switch strings.ToLower(os.Getenv("DEBUG")) {
		case "1", "true", "yes", "on":
			level = zerolog.DebugLevel
		default:
			switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
			case "debug":
				level = zerolog.DebugLevel
			case "info":
				level = zerolog.InfoLevel
			case "warn", "warning":
				level = zerolog.WarnLevel
			case "error":
				level = zerolog.ErrorLevel
			}
		}

		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
		logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	})
}

// GetLevel returns the current log level as a string.
func GetLevel() string {
	initLogger()
	return logger.GetLevel().String()
}

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	initLogger()
	return logger.GetLevel() <= zerolog.DebugLevel
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug).
func Debug(format string, args ...interface{}) {
	initLogger()
	logger.Debug().Msgf(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	initLogger()
	logger.Info().Msgf(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	initLogger()
	logger.Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	initLogger()
	logger.Error().Msgf(format, args...)
}

// Fatal logs an error message and exits.
func Fatal(format string, args ...interface{}) {
	initLogger()
	logger.Fatal().Msgf(format, args...)
}
