package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const ServiceName = "lovecakes"

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger is used before configuration is loaded. It reads LOG_LEVEL
// directly.
func NewSlogLogger() *SlogLogger {
	return NewSlogLoggerWithLevel(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewSlogLoggerWithLevel writes JSON lines tagged with the service name.
// Source locations are only added at DEBUG.
func NewSlogLoggerWithLevel(w io.Writer, level string) *SlogLogger {
	logLevel := ParseLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	})

	return &SlogLogger{
		logger: slog.New(handler).With("service", ServiceName),
	}
}

func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (s *SlogLogger) Debug(msg string, args ...any) {
	s.logger.Debug(msg, args...)
}

func (s *SlogLogger) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

func (s *SlogLogger) Warn(msg string, args ...any) {
	s.logger.Warn(msg, args...)
}

func (s *SlogLogger) Error(msg string, args ...any) {
	s.logger.Error(msg, args...)
}
