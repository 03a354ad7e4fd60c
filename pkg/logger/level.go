package logger

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is a record severity. Higher values are more severe.
type Level int

const (
	LevelNotSet   Level = 0
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

var levelNames = map[Level]string{
	LevelNotSet:   "NOTSET",
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

// ParseLevel parses a level name, case-insensitively. WARN and FATAL are
// accepted as aliases of WARNING and CRITICAL.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "TRACE":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL", "FATAL":
		return LevelCritical, nil
	case "NOTSET", "":
		return LevelNotSet, nil
	}
	return LevelNotSet, fmt.Errorf("unknown log level %q", s)
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// logrusLevel maps a level onto the logrus scale. The mapping is strictly
// monotonic, so logrus' own IsLevelEnabled gate matches ours. CRITICAL uses
// FatalLevel purely as a label; records are always emitted through Entry.Log,
// which never exits the process.
func (l Level) logrusLevel() logrus.Level {
	switch {
	case l >= LevelCritical:
		return logrus.FatalLevel
	case l >= LevelError:
		return logrus.ErrorLevel
	case l >= LevelWarning:
		return logrus.WarnLevel
	case l >= LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// effectiveLogrusLevel is the logrus threshold for a logger whose effective
// level is l. NOTSET lets everything through.
func (l Level) effectiveLogrusLevel() logrus.Level {
	if l == LevelNotSet {
		return logrus.TraceLevel
	}
	return l.logrusLevel()
}

func levelFromLogrus(l logrus.Level) Level {
	switch l {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarning
	case logrus.InfoLevel:
		return LevelInfo
	default:
		return LevelDebug
	}
}
