package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// backupTimeFormat is the timestamp lumberjack puts in backup names
const backupTimeFormat = "2006-01-02T15-04-05.000"

// noSizeLimit keeps lumberjack from rotating on its own (value is in MB).
// Rotation decisions are made by the writers below.
const noSizeLimit = 1 << 20

// Rotator is a concurrency-safe file writer that can be rotated on demand.
type Rotator interface {
	io.WriteCloser
	Rotate() error
	Stats() LogStats
}

var (
	_ Rotator = (*SizeRotatingWriter)(nil)
	_ Rotator = (*TimedRotatingWriter)(nil)
)

// SizeRotation configures a SizeRotatingWriter
type SizeRotation struct {
	Filename    string
	MaxBytes    int64
	BackupCount int
	Compress    bool
	UTC         bool
}

// SizeRotatingWriter rotates its file before a write would push it past
// MaxBytes. A single record larger than MaxBytes is still written whole.
type SizeRotatingWriter struct {
	lj        *lumberjack.Logger
	maxBytes  int64
	size      int64
	started   bool
	rotations int
	mu        sync.Mutex
}

// NewSizeRotatingWriter creates the writer. The file is not opened until the
// first write.
func NewSizeRotatingWriter(cfg SizeRotation) (*SizeRotatingWriter, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if cfg.MaxBytes <= 0 {
		return nil, fmt.Errorf("max bytes must be positive, got %d", cfg.MaxBytes)
	}
	if cfg.BackupCount < 0 {
		return nil, fmt.Errorf("backup count must not be negative, got %d", cfg.BackupCount)
	}

	return &SizeRotatingWriter{
		lj:       newLumberjack(cfg.Filename, cfg.BackupCount, cfg.Compress, cfg.UTC),
		maxBytes: cfg.MaxBytes,
	}, nil
}

// Write implements io.Writer
func (w *SizeRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		info, err := os.Stat(w.lj.Filename)
		switch {
		case err == nil:
			w.size = info.Size()
		case !os.IsNotExist(err):
			return 0, fmt.Errorf("failed to stat log file: %w", err)
		}
		w.started = true
	}

	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.lj.Write(p)
	w.size += int64(n)
	return n, err
}

// Rotate closes the current file, keeps it as a backup and starts a new one.
func (w *SizeRotatingWriter) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = true
	return w.rotate()
}

func (w *SizeRotatingWriter) rotate() error {
	if err := rollover(w.lj); err != nil {
		return err
	}
	w.size = 0
	w.rotations++
	return nil
}

// Close implements io.Closer
func (w *SizeRotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = false
	return w.lj.Close()
}

// Stats reports the current file state and rotation policy
func (w *SizeRotatingWriter) Stats() LogStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := LogStats{
		CurrentFile: w.lj.Filename,
		Policy:      "size",
		MaxBytes:    w.maxBytes,
		MaxBackups:  w.lj.MaxBackups,
		Compress:    w.lj.Compress,
		Rotations:   w.rotations,
	}
	fillFileStats(&stats)
	return stats
}

// TimedRotation configures a TimedRotatingWriter
type TimedRotation struct {
	Filename    string
	When        string // S, M, H, D, MIDNIGHT, W0-W6 (W0 is Monday)
	Interval    int
	BackupCount int
	Compress    bool
	UTC         bool

	// Now overrides the clock, for tests
	Now func() time.Time
}

// TimedRotatingWriter rotates its file once the rollover time has passed.
// The first rollover is measured from the existing file's modification time,
// or from the first write when there is no file yet.
type TimedRotatingWriter struct {
	lj         *lumberjack.Logger
	when       whenSpec
	interval   time.Duration
	utc        bool
	now        func() time.Time
	rolloverAt time.Time
	started    bool
	rotations  int
	mu         sync.Mutex
}

// NewTimedRotatingWriter creates the writer. The file is not opened until the
// first write.
func NewTimedRotatingWriter(cfg TimedRotation) (*TimedRotatingWriter, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", cfg.Interval)
	}
	if cfg.BackupCount < 0 {
		return nil, fmt.Errorf("backup count must not be negative, got %d", cfg.BackupCount)
	}
	when, err := parseWhen(cfg.When)
	if err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TimedRotatingWriter{
		lj:       newLumberjack(cfg.Filename, cfg.BackupCount, cfg.Compress, cfg.UTC),
		when:     when,
		interval: when.unit * time.Duration(cfg.Interval),
		utc:      cfg.UTC,
		now:      now,
	}, nil
}

// Write implements io.Writer
func (w *TimedRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if !w.started {
		base := now
		info, err := os.Stat(w.lj.Filename)
		switch {
		case err == nil:
			base = info.ModTime()
		case !os.IsNotExist(err):
			return 0, fmt.Errorf("failed to stat log file: %w", err)
		}
		w.rolloverAt = w.computeRollover(base)
		w.started = true
	}

	if !now.Before(w.rolloverAt) {
		if err := w.rotate(now); err != nil {
			return 0, err
		}
	}

	return w.lj.Write(p)
}

// Rotate forces a rollover now.
func (w *TimedRotatingWriter) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = true
	return w.rotate(w.now())
}

func (w *TimedRotatingWriter) rotate(now time.Time) error {
	if err := rollover(w.lj); err != nil {
		return err
	}
	w.rolloverAt = w.computeRollover(now)
	w.rotations++
	return nil
}

// Close implements io.Closer
func (w *TimedRotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = false
	return w.lj.Close()
}

// Stats reports the current file state and rotation policy
func (w *TimedRotatingWriter) Stats() LogStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	stats := LogStats{
		CurrentFile:  w.lj.Filename,
		Policy:       "time",
		When:         w.when.name,
		Interval:     w.interval,
		MaxBackups:   w.lj.MaxBackups,
		Compress:     w.lj.Compress,
		Rotations:    w.rotations,
		NextRollover: w.rolloverAt,
	}
	fillFileStats(&stats)
	return stats
}

func (w *TimedRotatingWriter) computeRollover(base time.Time) time.Time {
	loc := time.Local
	if w.utc {
		loc = time.UTC
	}
	t := base.In(loc)

	switch w.when.name {
	case "MIDNIGHT":
		return nextMidnight(t, 1)
	case "W":
		target := time.Weekday((w.when.weekday + 1) % 7)
		days := (int(target) - int(t.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return nextMidnight(t, days)
	default:
		return t.Add(w.interval)
	}
}

func nextMidnight(t time.Time, days int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, t.Location())
}

type whenSpec struct {
	name    string
	unit    time.Duration
	weekday int
}

// parseWhen parses a rollover unit. An empty value means hourly.
func parseWhen(when string) (whenSpec, error) {
	w := strings.ToUpper(strings.TrimSpace(when))
	switch w {
	case "S":
		return whenSpec{name: w, unit: time.Second}, nil
	case "M":
		return whenSpec{name: w, unit: time.Minute}, nil
	case "", "H":
		return whenSpec{name: "H", unit: time.Hour}, nil
	case "D":
		return whenSpec{name: w, unit: 24 * time.Hour}, nil
	case "MIDNIGHT":
		return whenSpec{name: w, unit: 24 * time.Hour}, nil
	}
	if len(w) == 2 && w[0] == 'W' {
		day, err := strconv.Atoi(w[1:])
		if err == nil && day >= 0 && day <= 6 {
			return whenSpec{name: "W", unit: 7 * 24 * time.Hour, weekday: day}, nil
		}
	}
	return whenSpec{}, fmt.Errorf("invalid rollover unit %q (want S, M, H, D, MIDNIGHT or W0-W6)", when)
}

func newLumberjack(filename string, backups int, compress, utc bool) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    noSizeLimit,
		MaxBackups: backups,
		Compress:   compress,
		LocalTime:  !utc,
	}
}

// rollover starts a new file. lumberjack treats MaxBackups == 0 as "keep
// everything", so with no backups wanted the file is truncated instead.
func rollover(lj *lumberjack.Logger) error {
	if lj.MaxBackups > 0 {
		awaitFreeBackupName(lj)
		if err := lj.Rotate(); err != nil {
			return fmt.Errorf("failed to rotate %s: %w", lj.Filename, err)
		}
		return nil
	}

	if err := lj.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", lj.Filename, err)
	}
	if err := os.Truncate(lj.Filename, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate %s: %w", lj.Filename, err)
	}
	return nil
}

// awaitFreeBackupName blocks until the backup name for the current
// millisecond is unused. lumberjack renames over an existing backup, so two
// rotations within one millisecond would otherwise lose the first one.
func awaitFreeBackupName(lj *lumberjack.Logger) {
	for {
		name := backupName(lj, time.Now())
		if !fileExists(name) && !fileExists(name+".gz") {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// backupName returns the name lumberjack gives a backup taken at t
func backupName(lj *lumberjack.Logger, t time.Time) string {
	if !lj.LocalTime {
		t = t.UTC()
	}
	dir, base := filepath.Split(lj.Filename)
	ext := filepath.Ext(base)
	return filepath.Join(dir, fmt.Sprintf("%s-%s%s", strings.TrimSuffix(base, ext), t.Format(backupTimeFormat), ext))
}

func fileExists(name string) bool {
	_, err := os.Lstat(name)
	return err == nil
}

func fillFileStats(stats *LogStats) {
	if info, err := os.Stat(stats.CurrentFile); err == nil {
		stats.CurrentSize = info.Size()
		stats.LastModified = info.ModTime()
	}
}
