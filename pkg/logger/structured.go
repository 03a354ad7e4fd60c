package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Fields type, used to pass to `WithFields`.
type Fields map[string]interface{}

// Entry wraps logrus.Entry to provide consistent interface
type Entry struct {
	*logrus.Entry
}

// WithFields adds multiple fields to log entries
func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{l.Logger.WithFields(logrus.Fields(fields))}
}

// WithField adds a single field to log entries
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{l.Logger.WithField(key, value)}
}

// WithComponent adds component field to log entries
func (l *Logger) WithComponent(component string) *Entry {
	return l.WithField("component", component)
}

// WithError adds error field to log entries
func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err.Error())
}

// WithRequestID adds request_id field to log entries
func (l *Logger) WithRequestID(requestID string) *Entry {
	return l.WithField("request_id", requestID)
}

// WithActor adds the acting user to log entries
func (l *Logger) WithActor(actor string) *Entry {
	return l.WithField("actor", actor)
}

// WithDuration adds duration field to log entries (for performance logging)
func (l *Logger) WithDuration(duration time.Duration) *Entry {
	return l.WithFields(Fields{
		"duration":    duration,
		"duration_ms": duration.Milliseconds(),
	})
}

// Entry methods for chaining additional fields
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return &Entry{e.Entry.WithField(key, value)}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{e.Entry.WithFields(logrus.Fields(fields))}
}

func (e *Entry) WithComponent(component string) *Entry {
	return e.WithField("component", component)
}

func (e *Entry) WithOperation(operation string) *Entry {
	return e.WithField("operation", operation)
}

func (e *Entry) WithModule(module string) *Entry {
	return e.WithField("module", module)
}

func (e *Entry) WithRequestID(requestID string) *Entry {
	return e.WithField("request_id", requestID)
}

func (e *Entry) WithActor(actor string) *Entry {
	return e.WithField("actor", actor)
}

func (e *Entry) WithDomain(domain string) *Entry {
	return e.WithField("domain", domain)
}

func (e *Entry) WithError(err error) *Entry {
	return e.WithField("error", err.Error())
}

// Critical logs at CRITICAL without exiting
func (e *Entry) Critical(args ...interface{}) {
	e.Entry.Log(logrus.FatalLevel, args...)
}

// Criticalf logs a formatted message at CRITICAL without exiting
func (e *Entry) Criticalf(format string, args ...interface{}) {
	e.Entry.Log(logrus.FatalLevel, fmt.Sprintf(format, args...))
}
