// Package logger defines the structured logging contract used throughout the
// library and provides a zerolog-backed implementation.
package logger

import "time"

// Logger is the contract for structured logging. Implementations must be safe
// for concurrent use.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent
	Fatal() LogEvent
	WithContext(ctx any) Logger
	WithFields(fields map[string]any) Logger
}

// LogEvent is a structured log event under construction. Field methods return
// the event for chaining; Msg or Msgf sends it.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Float64(key string, value float64) LogEvent
	Bool(key string, value bool) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Time(key string, t time.Time) LogEvent
	Interface(key string, i any) LogEvent
}
