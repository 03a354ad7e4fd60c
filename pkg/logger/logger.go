package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with its place in the hierarchy
type Logger struct {
	*logrus.Logger
	name      string
	effective Level
}

// Name returns the dotted logger name
func (l *Logger) Name() string {
	return l.name
}

// EffectiveLevel returns the level resolved from the nearest configured ancestor
func (l *Logger) EffectiveLevel() Level {
	return l.effective
}

// IsEnabledFor reports whether a record at level would be emitted
func (l *Logger) IsEnabledFor(level Level) bool {
	return level >= l.effective
}

// LogAt logs args at one of our levels
func (l *Logger) LogAt(level Level, args ...interface{}) {
	l.Logger.Log(level.logrusLevel(), args...)
}

// Critical logs at CRITICAL. Unlike logrus' Fatal it never exits.
func (l *Logger) Critical(args ...interface{}) {
	l.Logger.Log(logrus.FatalLevel, args...)
}

// Criticalf logs a formatted message at CRITICAL
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.Logger.Log(logrus.FatalLevel, fmt.Sprintf(format, args...))
}

// NewLogger builds a Manager from config and returns its root logger along
// with the Manager, which the caller must close.
func NewLogger(config Config, opts ...Option) (*Logger, *Manager, error) {
	manager, err := NewManager(config, opts...)
	if err != nil {
		return nil, nil, err
	}
	return manager.GetRootLogger(), manager, nil
}

// GetDefaultLogger returns a stderr logger for use before the logging
// configuration has been loaded
func GetDefaultLogger() *Logger {
	logger, _, err := NewLogger(BootstrapConfig())
	if err != nil {
		l := logrus.New()
		return &Logger{Logger: l, name: RootLoggerName, effective: LevelInfo}
	}
	return logger
}
