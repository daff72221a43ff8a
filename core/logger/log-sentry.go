package logger

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryLogger - wraps another logger and also sends every error line to Sentry.
// Sentry must already be initialised with sentry.Init, otherwise events are dropped
// by the SDK without complaint.
type SentryLogger struct {
	Logger ILogger
	Hub    *sentry.Hub
}

// NewSentryLogger - wraps the given logger, reporting through the current sentry hub
func NewSentryLogger(wrapped ILogger) *SentryLogger {
	return &SentryLogger{Logger: wrapped, Hub: sentry.CurrentHub()}
}

func (l *SentryLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if l.Logger != nil {
		l.Logger.Printf(level, format, a...)
	}

	if level == LogError {
		msg := fmt.Sprintf(format, a...)
		hub := l.Hub
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		hub.CaptureMessage(msg)
	}
}
func (l *SentryLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *SentryLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *SentryLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

// Flush - waits for queued events, tools call this before exiting
func (l *SentryLogger) Flush(timeout time.Duration) bool {
	hub := l.Hub
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return hub.Flush(timeout)
}
