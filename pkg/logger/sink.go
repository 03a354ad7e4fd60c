package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Sink is a configured log output: a writer, a threshold and a formatter.
type Sink struct {
	name       string
	class      string
	level      Level
	exactLevel bool
	formatter  logrus.Formatter
	out        io.Writer
	rotator    Rotator // nil for streams
	mu         sync.Mutex
}

// SinkInfo describes a sink for introspection
type SinkInfo struct {
	Name       string    `json:"name"`
	Class      string    `json:"class"`
	Level      string    `json:"level"`
	ExactLevel bool      `json:"exact_level,omitempty"`
	Stats      *LogStats `json:"stats,omitempty"`
}

// Name returns the sink identifier
func (s *Sink) Name() string { return s.name }

// Level returns the sink threshold
func (s *Sink) Level() Level { return s.level }

// Accepts reports whether a record at level passes the sink's threshold.
func (s *Sink) Accepts(level Level) bool {
	if s.exactLevel {
		return level == s.level
	}
	return level >= s.level
}

// Emit formats entry and writes it out. Writes are serialized per sink.
func (s *Sink) Emit(entry *logrus.Entry) error {
	data, err := s.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to format record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.out.Write(data)
	return err
}

// Close releases the underlying file, if any
func (s *Sink) Close() error {
	if s.rotator != nil {
		return s.rotator.Close()
	}
	return nil
}

func (s *Sink) info() SinkInfo {
	info := SinkInfo{
		Name:       s.name,
		Class:      s.class,
		Level:      s.level.String(),
		ExactLevel: s.exactLevel,
	}
	if s.rotator != nil {
		stats := s.rotator.Stats()
		stats.Sink = s.name
		info.Stats = &stats
	}
	return info
}

// buildSink turns a validated handler configuration into a Sink. File sinks
// get their directory created here; the file itself is opened on first write.
func buildSink(name string, h HandlerConfig, cfg Config, o *options) (*Sink, error) {
	level, err := ParseLevel(h.Level)
	if err != nil {
		return nil, err
	}

	formatterCfg := FormatterConfig{Type: FormatPattern, Format: DefaultPattern}
	if h.Formatter != "" {
		formatterCfg = cfg.Formatters[h.Formatter]
	}

	sink := &Sink{
		name:       name,
		class:      normalizeClass(h.Class),
		level:      level,
		exactLevel: h.ExactLevel,
	}

	switch sink.class {
	case ClassStream:
		out := o.stdout
		if strings.HasSuffix(strings.ToLower(h.Stream), "stderr") {
			out = o.stderr
		}
		sink.out = out
		sink.formatter = newFormatter(formatterCfg, isTerminal(out))
		return sink, nil

	case ClassRotatingFile:
		filename, err := prepareLogFile(cfg.BaseDir, h.Filename)
		if err != nil {
			return nil, err
		}
		w, err := NewSizeRotatingWriter(SizeRotation{
			Filename:    filename,
			MaxBytes:    h.MaxBytes,
			BackupCount: h.BackupCount,
			Compress:    h.Compress,
			UTC:         h.UTC,
		})
		if err != nil {
			return nil, err
		}
		sink.out, sink.rotator = w, w

	case ClassTimedRotatingFile:
		filename, err := prepareLogFile(cfg.BaseDir, h.Filename)
		if err != nil {
			return nil, err
		}
		w, err := NewTimedRotatingWriter(TimedRotation{
			Filename:    filename,
			When:        h.When,
			Interval:    h.Interval,
			BackupCount: h.BackupCount,
			Compress:    h.Compress,
			UTC:         h.UTC,
			Now:         o.now,
		})
		if err != nil {
			return nil, err
		}
		sink.out, sink.rotator = w, w

	default:
		return nil, fmt.Errorf("unknown handler class %q", h.Class)
	}

	sink.formatter = newFormatter(formatterCfg, false)
	return sink, nil
}

// prepareLogFile resolves filename against baseDir and makes sure its
// directory exists.
func prepareLogFile(baseDir, filename string) (string, error) {
	if !filepath.IsAbs(filename) && baseDir != "" {
		filename = filepath.Join(baseDir, filename)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return "", fmt.Errorf("log file %s is a directory", filename)
	}
	return filename, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
