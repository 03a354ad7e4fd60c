package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	// ErrUnknownSink is returned when a sink name does not exist
	ErrUnknownSink = errors.New("unknown sink")
	// ErrNotFileSink is returned when rotating a sink that has no file
	ErrNotFileSink = errors.New("sink does not write to a file")
)

// Option customizes a Manager
type Option func(*options)

type options struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	hooks  []logrus.Hook
}

// WithStdout replaces os.Stdout for stream sinks
func WithStdout(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// WithStderr replaces os.Stderr for stream sinks, the last-resort sink and
// sink error reports
func WithStderr(w io.Writer) Option {
	return func(o *options) { o.stderr = w }
}

// WithClock overrides the clock used by timed rotating sinks
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithHooks adds logrus hooks to every logger, fired before routing
func WithHooks(hooks ...logrus.Hook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

// Manager owns the logger hierarchy and its sinks. It is created once at
// startup, handed to whatever needs a logger, and closed on exit.
type Manager struct {
	config     Config
	hierarchy  *hierarchy
	sinks      map[string]*Sink
	lastResort *Sink
	hooks      []logrus.Hook
	loggers    map[string]*Logger
	contexts   map[string]*Entry
	errors     *errorReporter
	errCounts  map[string]int
	countMu    sync.Mutex
	closed     bool
	mu         sync.RWMutex
}

// NewManager validates config and builds the hierarchy. Any configuration or
// file-system problem is returned; nothing is silently defaulted.
func NewManager(config Config, opts ...Option) (*Manager, error) {
	o := &options{
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	m := &Manager{
		config:    config,
		hierarchy: newHierarchy(),
		sinks:     make(map[string]*Sink),
		hooks:     append([]logrus.Hook{&PerformanceHook{}}, o.hooks...),
		loggers:   make(map[string]*Logger),
		contexts:  make(map[string]*Entry),
		errors:    newErrorReporter(o.stderr),
		errCounts: make(map[string]int),
		lastResort: &Sink{
			name:      "last_resort",
			class:     ClassStream,
			level:     LevelWarning,
			formatter: NewPatternFormatter("%(message)s", "", false),
			out:       o.stderr,
		},
	}

	for _, name := range sortedKeys(config.Handlers) {
		sink, err := buildSink(name, config.Handlers[name], config, o)
		if err != nil {
			m.closeSinks()
			return nil, fmt.Errorf("failed to set up handler %s: %w", name, err)
		}
		m.sinks[name] = sink
	}

	if err := m.buildHierarchy(); err != nil {
		m.closeSinks()
		return nil, err
	}

	return m, nil
}

func (m *Manager) buildHierarchy() error {
	h := m.hierarchy

	if m.config.Root != nil {
		level, _ := ParseLevel(m.config.Root.Level)
		if level != LevelNotSet {
			h.root.level = level
		}
		h.root.sinks = m.sinksFor(m.config.Root.Handlers)
	}

	flat, err := m.config.Flatten()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, fl := range sortedLoggers(flat) {
		level, _ := ParseLevel(fl.Config.Level)
		n := h.ensure(fl.Name)
		n.level = level
		n.sinks = m.sinksFor(fl.Config.Handlers)
		n.propagate = fl.Config.propagates()
		n.configured = true
	}
	h.resolve()
	return nil
}

func (m *Manager) sinksFor(names []string) []*Sink {
	sinks := make([]*Sink, 0, len(names))
	for _, name := range names {
		sinks = append(sinks, m.sinks[name])
	}
	return sinks
}

// GetLogger returns the logger called name. Names that are not configured
// inherit from their nearest configured ancestor; the first request for such
// a name is reported on the root logger.
func (m *Manager) GetLogger(name string) *Logger {
	name = strings.Trim(name, ".")
	if name == "" {
		name = RootLoggerName
	}

	m.mu.RLock()
	l, ok := m.loggers[name]
	m.mu.RUnlock()
	if ok {
		return l
	}

	n := m.hierarchy.lookup(name)

	m.mu.Lock()
	if l, ok = m.loggers[name]; ok {
		m.mu.Unlock()
		return l
	}
	l = m.newLogger(n)
	m.loggers[name] = l
	m.mu.Unlock()

	if !n.configured {
		parent := n.nearestConfigured()
		m.GetRootLogger().Warnf("logger %s level not found. Using level of '%s' (%s)",
			name, parent.name, n.effective)
	}
	return l
}

func (m *Manager) newLogger(n *node) *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(discardFormatter{})
	l.SetLevel(n.effective.effectiveLogrusLevel())
	for _, hook := range m.hooks {
		l.AddHook(hook)
	}
	l.AddHook(&dispatchHook{node: n, manager: m})

	return &Logger{Logger: l, name: n.name, effective: n.effective}
}

// GetRootLogger returns the root logger
func (m *Manager) GetRootLogger() *Logger {
	return m.GetLogger(RootLoggerName)
}

// ForComponent creates a logger for a specific component. The component name
// is also the logger name, so its level and sinks come from the hierarchy.
func (m *Manager) ForComponent(component string) *Entry {
	key := fmt.Sprintf("component:%s", component)

	m.mu.RLock()
	entry, exists := m.contexts[key]
	m.mu.RUnlock()
	if exists {
		return entry
	}

	entry = m.GetLogger(component).WithField("component", component)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.contexts[key]; ok {
		return existing
	}
	m.contexts[key] = entry
	return entry
}

// ForModule creates a logger for a component module, named "component.module"
func (m *Manager) ForModule(component, module string) *Entry {
	key := fmt.Sprintf("component:%s:module:%s", component, module)

	m.mu.RLock()
	entry, exists := m.contexts[key]
	m.mu.RUnlock()
	if exists {
		return entry
	}

	entry = m.GetLogger(joinName(component, module)).WithFields(Fields{
		"component": component,
		"module":    module,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.contexts[key]; ok {
		return existing
	}
	m.contexts[key] = entry
	return entry
}

// ForOperation creates a logger for a specific operation
func (m *Manager) ForOperation(component, module, operation string) *Entry {
	return m.GetLogger(joinName(component, module)).WithFields(Fields{
		"component": component,
		"module":    module,
		"operation": operation,
	})
}

// WithContext creates a logger with full context
func (m *Manager) WithContext(logCtx LogContext) *Entry {
	return m.GetLogger(joinName(logCtx.Component, logCtx.Module)).WithFields(logCtx.ToFields())
}

// WithGoContext creates a logger from Go context
func (m *Manager) WithGoContext(ctx context.Context) *Entry {
	return m.WithContext(FromContext(ctx))
}

func joinName(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return RootLoggerName
	}
	return strings.Join(nonEmpty, ".")
}

// LoggerInfo describes one node of the hierarchy
type LoggerInfo struct {
	Name           string   `json:"name"`
	Level          string   `json:"level"`
	EffectiveLevel string   `json:"effective_level"`
	Sinks          []string `json:"sinks,omitempty"`
	Propagate      bool     `json:"propagate"`
	Configured     bool     `json:"configured"`
}

// Loggers returns every known logger ordered by name, root first.
func (m *Manager) Loggers() []LoggerInfo {
	h := m.hierarchy
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]LoggerInfo, 0, len(h.nodes))
	for _, n := range h.nodes {
		info := LoggerInfo{
			Name:           n.name,
			Level:          n.level.String(),
			EffectiveLevel: n.effective.String(),
			Propagate:      n.propagate,
			Configured:     n.configured,
		}
		for _, s := range n.sinks {
			info.Sinks = append(info.Sinks, s.name)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Name == RootLoggerName {
			return infos[j].Name != RootLoggerName
		}
		if infos[j].Name == RootLoggerName {
			return false
		}
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Sinks describes every configured sink ordered by name
func (m *Manager) Sinks() []SinkInfo {
	infos := make([]SinkInfo, 0, len(m.sinks))
	for _, name := range sortedKeys(m.sinks) {
		infos = append(infos, m.sinks[name].info())
	}
	return infos
}

// Sink returns the named sink
func (m *Manager) Sink(name string) (*Sink, bool) {
	s, ok := m.sinks[name]
	return s, ok
}

// ErrorCounts returns the number of ERROR and CRITICAL records per logger
func (m *Manager) ErrorCounts() map[string]int {
	m.countMu.Lock()
	defer m.countMu.Unlock()

	counts := make(map[string]int, len(m.errCounts))
	for k, v := range m.errCounts {
		counts[k] = v
	}
	return counts
}

func (m *Manager) track(name string, level Level) {
	if level < LevelError {
		return
	}
	m.countMu.Lock()
	m.errCounts[name]++
	m.countMu.Unlock()
}

func (m *Manager) emit(s *Sink, record *logrus.Entry) {
	if err := s.Emit(record); err != nil {
		m.errors.report(s.name, err)
	}
}

// Close 关闭Manager及其资源
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.closeSinks()
}

func (m *Manager) closeSinks() error {
	var errs []error
	for _, name := range sortedKeys(m.sinks) {
		if err := m.sinks[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// RotateLog rotates the named file sink. An empty name rotates every file sink.
func (m *Manager) RotateLog(name string) error {
	if name != "" {
		s, ok := m.sinks[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSink, name)
		}
		if s.rotator == nil {
			return fmt.Errorf("%w: %s", ErrNotFileSink, name)
		}
		return s.rotator.Rotate()
	}

	var errs []error
	rotated := 0
	for _, sinkName := range sortedKeys(m.sinks) {
		s := m.sinks[sinkName]
		if s.rotator == nil {
			continue
		}
		rotated++
		if err := s.rotator.Rotate(); err != nil {
			errs = append(errs, err)
		}
	}
	if rotated == 0 {
		return fmt.Errorf("log rotation not available")
	}
	return errors.Join(errs...)
}

// RotateAll rotates every file sink
func (m *Manager) RotateAll() error {
	return m.RotateLog("")
}

// GetLogStats returns the statistics of every file sink
func (m *Manager) GetLogStats() []LogStats {
	var stats []LogStats
	for _, name := range sortedKeys(m.sinks) {
		s := m.sinks[name]
		if s.rotator == nil {
			continue
		}
		st := s.rotator.Stats()
		st.Sink = name
		stats = append(stats, st)
	}
	return stats
}

// LogStats 日志统计信息
type LogStats struct {
	Sink         string        `json:"sink"`
	CurrentFile  string        `json:"current_file"`
	CurrentSize  int64         `json:"current_size"`
	LastModified time.Time     `json:"last_modified"`
	Policy       string        `json:"policy"`
	MaxBytes     int64         `json:"max_bytes,omitempty"`
	When         string        `json:"when,omitempty"`
	Interval     time.Duration `json:"interval,omitempty"`
	NextRollover time.Time     `json:"next_rollover,omitempty"`
	MaxBackups   int           `json:"max_backups"`
	Compress     bool          `json:"compress"`
	Rotations    int           `json:"rotations"`
}

// FormatSize 格式化文件大小显示
func (ls *LogStats) FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// String 返回统计信息的字符串表示
func (ls *LogStats) String() string {
	var policy string
	if ls.Policy == "size" {
		policy = fmt.Sprintf("MaxBytes: %d", ls.MaxBytes)
	} else {
		policy = fmt.Sprintf("When: %s, Interval: %s", ls.When, ls.Interval)
	}
	return fmt.Sprintf(
		"Sink: %s, File: %s, Size: %s, %s, MaxBackups: %d, Compress: %t",
		ls.Sink,
		ls.CurrentFile,
		ls.FormatSize(ls.CurrentSize),
		policy,
		ls.MaxBackups,
		ls.Compress,
	)
}

// PerformanceHook tracks performance metrics
type PerformanceHook struct {
	// Threshold marks operations slower than this; zero means 5s
	Threshold time.Duration
}

func (h *PerformanceHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
	}
}

func (h *PerformanceHook) Fire(entry *logrus.Entry) error {
	threshold := h.Threshold
	if threshold == 0 {
		threshold = 5 * time.Second
	}
	if duration, exists := entry.Data["duration"]; exists {
		if d, ok := duration.(time.Duration); ok && d > threshold {
			entry.Data["performance_alert"] = "slow_operation"
		}
	}
	return nil
}

// errorReporter writes sink failures to stderr, at most a few per second.
type errorReporter struct {
	out        io.Writer
	limiter    *rate.Limiter
	suppressed int
	mu         sync.Mutex
}

func newErrorReporter(out io.Writer) *errorReporter {
	return &errorReporter{
		out:     out,
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (r *errorReporter) report(sink string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.limiter.Allow() {
		r.suppressed++
		return
	}
	if r.suppressed > 0 {
		fmt.Fprintf(r.out, "logging: sink %s: %v (%d earlier errors suppressed)\n", sink, err, r.suppressed)
		r.suppressed = 0
		return
	}
	fmt.Fprintf(r.out, "logging: sink %s: %v\n", sink, err)
}
