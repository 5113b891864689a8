package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// logEventAdapter adapts a zerolog event to the LogEvent interface.
type logEventAdapter struct {
	event *zerolog.Event
}

var _ LogEvent = (*logEventAdapter)(nil)

func (a *logEventAdapter) Msg(msg string) {
	a.event.Msg(msg)
}

func (a *logEventAdapter) Msgf(format string, args ...any) {
	a.event.Msgf(format, args...)
}

func (a *logEventAdapter) Err(err error) LogEvent {
	return &logEventAdapter{event: a.event.Err(err)}
}

func (a *logEventAdapter) Str(key, value string) LogEvent {
	return &logEventAdapter{event: a.event.Str(key, value)}
}

func (a *logEventAdapter) Int(key string, value int) LogEvent {
	return &logEventAdapter{event: a.event.Int(key, value)}
}

func (a *logEventAdapter) Int64(key string, value int64) LogEvent {
	return &logEventAdapter{event: a.event.Int64(key, value)}
}

func (a *logEventAdapter) Float64(key string, value float64) LogEvent {
	return &logEventAdapter{event: a.event.Float64(key, value)}
}

func (a *logEventAdapter) Bool(key string, value bool) LogEvent {
	return &logEventAdapter{event: a.event.Bool(key, value)}
}

func (a *logEventAdapter) Dur(key string, d time.Duration) LogEvent {
	return &logEventAdapter{event: a.event.Dur(key, d)}
}

func (a *logEventAdapter) Time(key string, t time.Time) LogEvent {
	return &logEventAdapter{event: a.event.Time(key, t)}
}

func (a *logEventAdapter) Interface(key string, i any) LogEvent {
	return &logEventAdapter{event: a.event.Interface(key, i)}
}
