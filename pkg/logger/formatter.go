package logger

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggerNameKey is the record field carrying the emitting logger's name.
const LoggerNameKey = "logger"

// DefaultTimeFormat renders asctime like "2024-05-01 13:45:12,345".
const DefaultTimeFormat = "2006-01-02 15:04:05,000"

// ANSI colors for level names on terminals
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorBoldRed = "\033[1;31m"
)

var patternToken = regexp.MustCompile(`%\((\w+)\)([-#+ 0]*\d*(?:\.\d+)?)([sdf])`)

type patternPart struct {
	literal string
	key     string
	flags   string
	verb    byte
}

// PatternFormatter renders records from a printf-style pattern such as
// "%(asctime)s - %(name)s - %(levelname)-8s - %(message)s". Record fields
// not referenced by the pattern are appended as key=value pairs.
type PatternFormatter struct {
	TimeFormat string
	Color      bool

	parts []patternPart
	keys  map[string]bool
}

// NewPatternFormatter compiles pattern
func NewPatternFormatter(pattern, timeFormat string, color bool) *PatternFormatter {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}

	f := &PatternFormatter{
		TimeFormat: timeFormat,
		Color:      color,
		keys:       map[string]bool{LoggerNameKey: true},
	}

	last := 0
	for _, loc := range patternToken.FindAllStringSubmatchIndex(pattern, -1) {
		if loc[0] > last {
			f.parts = append(f.parts, patternPart{literal: unescapePercent(pattern[last:loc[0]])})
		}
		key := pattern[loc[2]:loc[3]]
		f.parts = append(f.parts, patternPart{
			key:   key,
			flags: pattern[loc[4]:loc[5]],
			verb:  pattern[loc[6]],
		})
		f.keys[key] = true
		last = loc[1]
	}
	if last < len(pattern) {
		f.parts = append(f.parts, patternPart{literal: unescapePercent(pattern[last:])})
	}
	return f
}

// Format implements logrus.Formatter
func (f *PatternFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	level := levelFromLogrus(entry.Level)
	for _, part := range f.parts {
		if part.key == "" {
			b.WriteString(part.literal)
			continue
		}
		value := f.render(part, f.value(part.key, entry, level))
		if part.key == "levelname" && f.Color {
			value = levelColor(level) + value + colorReset
		}
		b.WriteString(value)
	}

	extra := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if !f.keys[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func (f *PatternFormatter) value(key string, entry *logrus.Entry, level Level) interface{} {
	switch key {
	case "asctime":
		return entry.Time.Format(f.TimeFormat)
	case "created":
		return float64(entry.Time.UnixNano()) / float64(time.Second)
	case "name":
		if name, ok := entry.Data[LoggerNameKey]; ok {
			return name
		}
		return RootLoggerName
	case "levelname":
		return level.String()
	case "levelno":
		return int(level)
	case "message":
		return entry.Message
	case "process":
		return os.Getpid()
	}
	if v, ok := entry.Data[key]; ok {
		return v
	}
	return ""
}

func (f *PatternFormatter) render(part patternPart, value interface{}) string {
	switch part.verb {
	case 'd':
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return fmt.Sprintf("%"+part.flags+"d", value)
		}
	case 'f':
		if v, ok := value.(float64); ok {
			return fmt.Sprintf("%"+part.flags+"f", v)
		}
	}
	return fmt.Sprintf("%"+stripPrecision(part.flags)+"v", value)
}

func stripPrecision(flags string) string {
	if i := strings.IndexByte(flags, '.'); i >= 0 {
		return flags[:i]
	}
	return flags
}

func unescapePercent(s string) string {
	return strings.ReplaceAll(s, "%%", "%")
}

func levelColor(level Level) string {
	switch {
	case level >= LevelCritical:
		return colorBoldRed
	case level >= LevelError:
		return colorRed
	case level >= LevelWarning:
		return colorYellow
	case level >= LevelInfo:
		return colorGreen
	default:
		return colorGray
	}
}

// newFormatter builds the logrus formatter for a sink. tty reports whether
// the sink writes to a terminal.
func newFormatter(cfg FormatterConfig, tty bool) logrus.Formatter {
	color := tty
	if cfg.Color != nil {
		color = *cfg.Color
	}

	switch strings.ToLower(cfg.Type) {
	case FormatJSON:
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = "2006-01-02T15:04:05.000Z07:00"
		}
		return &logrus.JSONFormatter{
			TimestampFormat: timeFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		}
	case FormatText:
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = "2006-01-02 15:04:05"
		}
		return &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timeFormat,
			ForceColors:     color,
			DisableColors:   !color,
		}
	default:
		return NewPatternFormatter(cfg.Format, cfg.TimeFormat, color)
	}
}

// discardFormatter is installed on the per-logger logrus instances whose
// output goes nowhere; sinks format records themselves.
type discardFormatter struct{}

func (discardFormatter) Format(*logrus.Entry) ([]byte, error) { return nil, nil }
