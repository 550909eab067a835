package common

import (
	"testing"
)

func TestNewLoggerFromConfigConsoleOnly(t *testing.T) {
	logger := NewLoggerFromConfig(LoggingConfig{
		Level:   "debug",
		Outputs: []string{"console"},
	})
	if logger == nil || logger.ILogger == nil {
		t.Fatal("expected a usable logger")
	}
	logger.Debug().Str("key", "value").Msg("debug message")
}

func TestNewSilentLoggerDiscards(t *testing.T) {
	logger := NewSilentLogger()
	// Must not panic and must not write anywhere visible.
	logger.Info().Str("key", "value").Msg("swallowed")
	logger.Warn().Msg("also swallowed")
}

func TestWithCorrelationId(t *testing.T) {
	logger := NewSilentLogger()
	child := logger.WithCorrelationId("abc-123")
	if child == nil || child.ILogger == nil {
		t.Fatal("expected a child logger")
	}
	child.Info().Msg("correlated")
}

func TestNewLoggerFromConfigEmptyLevelDefaults(t *testing.T) {
	logger := NewLoggerFromConfig(LoggingConfig{Outputs: []string{"console"}})
	if logger == nil {
		t.Fatal("expected a logger with defaulted level")
	}
}
