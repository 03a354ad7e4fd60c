package logger

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a logging configuration validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Validate checks the whole document and reports every problem at once.
func (c Config) Validate() error {
	var errs ValidationErrors
	add := func(field, value, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	for _, name := range sortedKeys(c.Formatters) {
		f := c.Formatters[name]
		field := "formatters." + name
		switch strings.ToLower(f.Type) {
		case "", FormatPattern, FormatJSON, FormatText:
		default:
			add(field+".type", f.Type, "unknown formatter type")
		}
	}

	for _, name := range sortedKeys(c.Handlers) {
		validateHandler(c, "handlers."+name, c.Handlers[name], add)
	}

	if c.Root != nil {
		validateLoggerRefs(c, "root", *c.Root, add)
	}

	flat, err := c.Flatten()
	if err != nil {
		add("loggers", "", err.Error())
	} else {
		for _, fl := range sortedLoggers(flat) {
			validateLoggerRefs(c, "loggers."+fl.Name, fl.Config, add)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHandler(c Config, field string, h HandlerConfig, add func(field, value, msg string)) {
	if _, err := ParseLevel(h.Level); err != nil {
		add(field+".level", h.Level, "invalid log level")
	}
	if h.Formatter != "" {
		if _, ok := c.Formatters[h.Formatter]; !ok {
			add(field+".formatter", h.Formatter, "unknown formatter")
		}
	}
	if h.BackupCount < 0 {
		add(field+".backup_count", fmt.Sprint(h.BackupCount), "backup count must not be negative")
	}

	switch normalizeClass(h.Class) {
	case ClassStream:
		switch strings.ToLower(h.Stream) {
		case "", "stdout", "stderr", "ext://sys.stdout", "ext://sys.stderr":
		default:
			add(field+".stream", h.Stream, "stream must be stdout or stderr")
		}
	case ClassRotatingFile:
		if h.Filename == "" {
			add(field+".filename", h.Filename, "filename is required")
		}
		if h.MaxBytes <= 0 {
			add(field+".max_bytes", fmt.Sprint(h.MaxBytes), "max bytes must be positive")
		}
	case ClassTimedRotatingFile:
		if h.Filename == "" {
			add(field+".filename", h.Filename, "filename is required")
		}
		if h.Interval <= 0 {
			add(field+".interval", fmt.Sprint(h.Interval), "interval must be positive")
		}
		if _, err := parseWhen(h.When); err != nil {
			add(field+".when", h.When, err.Error())
		}
	default:
		add(field+".class", h.Class, "unknown handler class")
	}
}

func validateLoggerRefs(c Config, field string, lc LoggerConfig, add func(field, value, msg string)) {
	if _, err := ParseLevel(lc.Level); err != nil {
		add(field+".level", lc.Level, "invalid log level")
	}
	for _, h := range lc.Handlers {
		if _, ok := c.Handlers[h]; !ok {
			add(field+".handlers", h, "unknown handler")
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
