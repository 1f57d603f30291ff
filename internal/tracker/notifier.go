package tracker

import (
	"time"

	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/rs/zerolog"
)

// Level is the severity of a user notification.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notification is a one-shot message surfaced to the user.
type Notification struct {
	Level   Level
	Kind    location.ErrorKind // only meaningful for LevelError
	Message string
	Time    time.Time
}

// Notifier delivers notifications to the user. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to the log. It is used when no interactive surface is attached.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(n Notification) {
	if n.Level == LevelError {
		l.logger.Error().Str("kind", n.Kind.String()).Msg(n.Message)
		return
	}
	l.logger.Info().Msg(n.Message)
}
