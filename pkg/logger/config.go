package logger

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Handler classes
const (
	ClassStream            = "stream"
	ClassRotatingFile      = "rotating_file"
	ClassTimedRotatingFile = "timed_rotating_file"
)

// Formatter types
const (
	FormatPattern = "pattern"
	FormatJSON    = "json"
	FormatText    = "text"
)

// DefaultPattern is used by pattern formatters without an explicit format and
// by handlers that reference no formatter.
const DefaultPattern = "%(asctime)s - %(name)s - %(levelname)s - %(message)s"

// subKey holds the children of a logger in the configuration tree.
const subKey = "_sub"

// classAliases maps Python dictConfig handler classes onto ours so existing
// logger_config.yml files keep working.
var classAliases = map[string]string{
	"logging.StreamHandler":                     ClassStream,
	"logging.handlers.RotatingFileHandler":      ClassRotatingFile,
	"logging.handlers.TimedRotatingFileHandler": ClassTimedRotatingFile,
}

// Config represents the logging configuration document
type Config struct {
	Version    int                        `yaml:"version" json:"version"`
	BaseDir    string                     `yaml:"base_dir,omitempty" json:"base_dir,omitempty"`
	Formatters map[string]FormatterConfig `yaml:"formatters,omitempty" json:"formatters,omitempty"`
	Handlers   map[string]HandlerConfig   `yaml:"handlers,omitempty" json:"handlers,omitempty"`
	Root       *LoggerConfig              `yaml:"root,omitempty" json:"root,omitempty"`
	Loggers    map[string]LoggerConfig    `yaml:"loggers,omitempty" json:"loggers,omitempty"`
}

// FormatterConfig describes how records are rendered
type FormatterConfig struct {
	Type       string `yaml:"type,omitempty" json:"type,omitempty"`               // pattern, json, text
	Format     string `yaml:"format,omitempty" json:"format,omitempty"`           // pattern only
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"` // Go layout
	Color      *bool  `yaml:"color,omitempty" json:"color,omitempty"`             // nil: detect terminal
}

// HandlerConfig describes a sink
type HandlerConfig struct {
	Class       string `yaml:"class" json:"class"`
	Level       string `yaml:"level,omitempty" json:"level,omitempty"`
	Formatter   string `yaml:"formatter,omitempty" json:"formatter,omitempty"`
	ExactLevel  bool   `yaml:"exact_level,omitempty" json:"exact_level,omitempty"`
	Stream      string `yaml:"stream,omitempty" json:"stream,omitempty"`
	Filename    string `yaml:"filename,omitempty" json:"filename,omitempty"`
	MaxBytes    int64  `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"`
	BackupCount int    `yaml:"backup_count,omitempty" json:"backup_count,omitempty"`
	Compress    bool   `yaml:"compress,omitempty" json:"compress,omitempty"`
	When        string `yaml:"when,omitempty" json:"when,omitempty"`
	Interval    int    `yaml:"interval,omitempty" json:"interval,omitempty"`
	UTC         bool   `yaml:"utc,omitempty" json:"utc,omitempty"`
}

// LoggerConfig is one node of the logger tree. In YAML a node is either a
// mapping or a bare level name.
type LoggerConfig struct {
	Level     string                  `yaml:"level,omitempty" json:"level,omitempty"`
	Handlers  []string                `yaml:"handlers,omitempty" json:"handlers,omitempty"`
	Propagate *bool                   `yaml:"propagate,omitempty" json:"propagate,omitempty"`
	Sub       map[string]LoggerConfig `yaml:"_sub,omitempty" json:"_sub,omitempty"`
}

// UnmarshalYAML accepts the level shorthand `name: WARNING`.
func (lc *LoggerConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*lc = LoggerConfig{Level: node.Value}
		return nil
	}
	type plain LoggerConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*lc = LoggerConfig(p)
	return nil
}

// propagates reports the effective propagate flag
func (lc LoggerConfig) propagates() bool {
	return lc.Propagate == nil || *lc.Propagate
}

// DefaultConfig returns the platform logging layout: console output,
// warnings.log, hourly days.log and crashes.log under logs/.
func DefaultConfig() Config {
	noPropagate := false
	return Config{
		Version: 1,
		Formatters: map[string]FormatterConfig{
			"simple": {Type: FormatPattern, Format: DefaultPattern},
			"json":   {Type: FormatJSON},
		},
		Handlers: map[string]HandlerConfig{
			"console": {
				Class:     ClassStream,
				Stream:    "stdout",
				Level:     "DEBUG",
				Formatter: "simple",
			},
			"file": {
				Class:       ClassRotatingFile,
				Filename:    "logs/warnings.log",
				MaxBytes:    20000,
				BackupCount: 5,
				Level:       "WARNING",
				Formatter:   "simple",
			},
			"days_handler": {
				Class:       ClassTimedRotatingFile,
				Filename:    "logs/days.log",
				When:        "H",
				Interval:    1,
				BackupCount: 24,
				Level:       "INFO",
				Formatter:   "simple",
			},
			"crash_handler": {
				Class:       ClassRotatingFile,
				Filename:    "logs/crashes.log",
				MaxBytes:    20240,
				BackupCount: 3,
				Level:       "ERROR",
				Formatter:   "simple",
			},
		},
		Root: &LoggerConfig{Level: "DEBUG"},
		Loggers: map[string]LoggerConfig{
			"app": {
				Level:    "INFO",
				Handlers: []string{"console", "file", "days_handler"},
				Sub: map[string]LoggerConfig{
					"services":    {Level: "WARNING"},
					"middlewares": {Level: "INFO"},
				},
			},
			"crashes": {
				Level:     "ERROR",
				Handlers:  []string{"crash_handler", "console"},
				Propagate: &noPropagate,
			},
			"routes": {
				Level:     "INFO",
				Handlers:  []string{"console"},
				Propagate: &noPropagate,
			},
		},
	}
}

// BootstrapConfig returns a console-only configuration used before the real
// configuration has been loaded.
func BootstrapConfig() Config {
	return Config{
		Version: 1,
		Formatters: map[string]FormatterConfig{
			"simple": {Type: FormatPattern, Format: DefaultPattern},
		},
		Handlers: map[string]HandlerConfig{
			"console": {Class: ClassStream, Stream: "stderr", Level: "DEBUG", Formatter: "simple"},
		},
		Root: &LoggerConfig{Level: "INFO", Handlers: []string{"console"}},
	}
}

// flatLogger is a logger node after `_sub` flattening.
type flatLogger struct {
	Name   string
	Config LoggerConfig
}

// Flatten resolves the `_sub` tree into full dotted logger names.
func (c Config) Flatten() (map[string]LoggerConfig, error) {
	result := make(map[string]LoggerConfig)
	var dups []string

	var walk func(name string, lc LoggerConfig)
	walk = func(name string, lc LoggerConfig) {
		if _, exists := result[name]; exists {
			dups = append(dups, name)
		}
		own := lc
		own.Sub = nil
		result[name] = own
		for child, sub := range lc.Sub {
			walk(name+"."+child, sub)
		}
	}
	for name, lc := range c.Loggers {
		walk(name, lc)
	}

	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, fmt.Errorf("logger defined more than once: %s", strings.Join(dups, ", "))
	}
	return result, nil
}

// sortedLoggers returns the flattened loggers ordered by name, so parents are
// always created before their children.
func sortedLoggers(flat map[string]LoggerConfig) []flatLogger {
	out := make([]flatLogger, 0, len(flat))
	for name, lc := range flat {
		out = append(out, flatLogger{Name: name, Config: lc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizeClass(class string) string {
	if alias, ok := classAliases[class]; ok {
		return alias
	}
	return strings.ToLower(strings.TrimSpace(class))
}
