package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	manager *Manager
	stdout  *syncBuffer
	stderr  *syncBuffer
	dir     string
}

func newTestManager(t *testing.T, config Config, opts ...Option) *testEnv {
	t.Helper()

	env := &testEnv{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		dir:    t.TempDir(),
	}
	config.BaseDir = env.dir

	opts = append([]Option{WithStdout(env.stdout), WithStderr(env.stderr)}, opts...)
	manager, err := NewManager(config, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	env.manager = manager
	return env
}

func (e *testEnv) readLog(t *testing.T, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(e.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return ""
	}
	require.NoError(t, err)
	return string(content)
}

func TestManager_EffectiveLevels(t *testing.T) {
	env := newTestManager(t, DefaultConfig())

	tests := []struct {
		name     string
		expected Level
	}{
		{"root", LevelDebug},
		{"app", LevelInfo},
		{"app.services", LevelWarning},
		{"app.services.tag_sw", LevelWarning},
		{"app.services.tag_sw.deep.child", LevelWarning},
		{"app.middlewares", LevelInfo},
		{"app.crud", LevelInfo},
		{"crashes", LevelError},
		{"routes", LevelInfo},
		{"unrelated", LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := env.manager.GetLogger(tt.name)
			assert.Equal(t, tt.expected, l.EffectiveLevel())
			assert.Equal(t, tt.name, l.Name())
		})
	}
}

func TestManager_InheritedLevelExample(t *testing.T) {
	env := newTestManager(t, DefaultConfig())
	l := env.manager.GetLogger("app.services.tag_sw")

	l.Info("tag switch info")
	l.Warn("tag switch warning")
	require.NoError(t, env.manager.Close())

	for _, out := range []string{
		env.stdout.String(),
		env.readLog(t, "logs/warnings.log"),
		env.readLog(t, "logs/days.log"),
	} {
		assert.Contains(t, out, "app.services.tag_sw - WARNING - tag switch warning")
		assert.NotContains(t, out, "tag switch info")
	}
	assert.NotContains(t, env.readLog(t, "logs/crashes.log"), "tag switch")

	// the unconfigured name is reported once, on the last-resort sink
	assert.Equal(t, 1, strings.Count(env.stderr.String(),
		"logger app.services.tag_sw level not found. Using level of 'app.services'"))
	env.manager.GetLogger("app.services.tag_sw")
	assert.Equal(t, 1, strings.Count(env.stderr.String(), "app.services.tag_sw level not found"))
}

func TestManager_Routing(t *testing.T) {
	env := newTestManager(t, DefaultConfig())
	m := env.manager

	m.GetLogger("app").Info("app info")
	m.GetLogger("app").Error("app error")
	m.GetLogger("app.middlewares").Debug("middleware debug")
	m.GetLogger("routes").Info("GET /maps 200")
	m.GetLogger("crashes").Error("boom")
	m.GetLogger("crashes").Warn("not severe enough")
	require.NoError(t, m.Close())

	stdout := env.stdout.String()
	warnings := env.readLog(t, "logs/warnings.log")
	days := env.readLog(t, "logs/days.log")
	crashes := env.readLog(t, "logs/crashes.log")

	assert.Contains(t, stdout, "app - INFO - app info")
	assert.Contains(t, stdout, "app - ERROR - app error")
	assert.Contains(t, stdout, "routes - INFO - GET /maps 200")
	assert.Contains(t, stdout, "crashes - ERROR - boom")
	assert.NotContains(t, stdout, "middleware debug")
	assert.NotContains(t, stdout, "not severe enough")

	assert.NotContains(t, warnings, "app info")
	assert.Contains(t, warnings, "app error")
	assert.Contains(t, days, "app info")
	assert.Contains(t, days, "app error")

	// propagate: false keeps these out of the app sinks
	assert.NotContains(t, warnings, "boom")
	assert.NotContains(t, days, "GET /maps")
	assert.Contains(t, crashes, "boom")
	assert.NotContains(t, crashes, "app error")

	// each sink sees a record at most once
	assert.Equal(t, 1, strings.Count(stdout, "app error"))
}

func TestManager_SinkLevelAndLoggerLevel(t *testing.T) {
	config := Config{
		Handlers: map[string]HandlerConfig{
			"all":    {Class: ClassStream, Stream: "stdout", Level: "DEBUG"},
			"errors": {Class: ClassStream, Stream: "stderr", Level: "ERROR"},
		},
		Root: &LoggerConfig{Level: "DEBUG"},
		Loggers: map[string]LoggerConfig{
			"svc": {Level: "INFO", Handlers: []string{"all", "errors"}},
		},
	}
	env := newTestManager(t, config)
	l := env.manager.GetLogger("svc")

	levels := []struct {
		level Level
		out   bool
		err   bool
	}{
		{LevelDebug, false, false},
		{LevelInfo, true, false},
		{LevelWarning, true, false},
		{LevelError, true, true},
		{LevelCritical, true, true},
	}

	for _, tt := range levels {
		msg := "record at " + tt.level.String()
		l.LogAt(tt.level, msg)
		assert.Equal(t, tt.out, strings.Contains(env.stdout.String(), msg), msg)
		assert.Equal(t, tt.err, strings.Contains(env.stderr.String(), msg), msg)
	}

	assert.True(t, l.IsEnabledFor(LevelInfo))
	assert.False(t, l.IsEnabledFor(LevelDebug))
}

func TestManager_CriticalDoesNotExit(t *testing.T) {
	env := newTestManager(t, DefaultConfig())

	env.manager.GetLogger("crashes").Critical("database unreachable")
	env.manager.ForComponent("crashes").Criticalf("retry %d failed", 3)
	require.NoError(t, env.manager.Close())

	crashes := env.readLog(t, "logs/crashes.log")
	assert.Contains(t, crashes, "CRITICAL - database unreachable")
	assert.Contains(t, crashes, "CRITICAL - retry 3 failed")
	assert.Equal(t, 2, env.manager.ErrorCounts()["crashes"])
}

func TestManager_ExactLevel(t *testing.T) {
	config := DefaultConfig()
	days := config.Handlers["days_handler"]
	days.ExactLevel = true
	config.Handlers["days_handler"] = days

	env := newTestManager(t, config)
	l := env.manager.GetLogger("app")
	l.Info("just info")
	l.Warn("a warning")
	require.NoError(t, env.manager.Close())

	content := env.readLog(t, "logs/days.log")
	assert.Contains(t, content, "just info")
	assert.NotContains(t, content, "a warning")
}

func TestManager_LastResort(t *testing.T) {
	env := newTestManager(t, Config{Root: &LoggerConfig{Level: "DEBUG"}})
	l := env.manager.GetLogger("orphan")

	l.Info("quiet")
	l.Error("loud")

	assert.NotContains(t, env.stderr.String(), "quiet")
	assert.Contains(t, env.stderr.String(), "loud")
	assert.Empty(t, env.stdout.String())
}

func TestManager_NewManager_Errors(t *testing.T) {
	t.Run("invalid configuration", func(t *testing.T) {
		config := DefaultConfig()
		file := config.Handlers["file"]
		file.MaxBytes = 0
		config.Handlers["file"] = file

		_, err := NewManager(config)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max bytes must be positive")
	})

	t.Run("log file is a directory", func(t *testing.T) {
		config := DefaultConfig()
		config.BaseDir = t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(config.BaseDir, "logs", "warnings.log"), 0755))

		_, err := NewManager(config, WithStdout(&bytes.Buffer{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})
}

func TestManager_CreatesLogDirectoryLazily(t *testing.T) {
	env := newTestManager(t, DefaultConfig())

	info, err := os.Stat(filepath.Join(env.dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// files are only opened on first write
	_, err = os.Stat(filepath.Join(env.dir, "logs", "crashes.log"))
	assert.True(t, os.IsNotExist(err))

	env.manager.GetLogger("crashes").Error("first")
	_, err = os.Stat(filepath.Join(env.dir, "logs", "crashes.log"))
	assert.NoError(t, err)
}

func TestManager_Loggers(t *testing.T) {
	env := newTestManager(t, DefaultConfig())
	env.manager.GetLogger("app.services.tag_sw")

	infos := env.manager.Loggers()
	require.NotEmpty(t, infos)
	assert.Equal(t, RootLoggerName, infos[0].Name)

	byName := make(map[string]LoggerInfo)
	for _, info := range infos {
		byName[info.Name] = info
	}

	app := byName["app"]
	assert.Equal(t, "INFO", app.Level)
	assert.Equal(t, []string{"console", "file", "days_handler"}, app.Sinks)
	assert.True(t, app.Configured)

	tagSw := byName["app.services.tag_sw"]
	assert.Equal(t, "NOTSET", tagSw.Level)
	assert.Equal(t, "WARNING", tagSw.EffectiveLevel)
	assert.False(t, tagSw.Configured)

	assert.False(t, byName["crashes"].Propagate)
}

func TestManager_SinksAndStats(t *testing.T) {
	env := newTestManager(t, DefaultConfig())

	sinks := env.manager.Sinks()
	require.Len(t, sinks, 4)
	assert.Equal(t, "console", sinks[0].Name)
	assert.Nil(t, sinks[0].Stats)

	stats := env.manager.GetLogStats()
	require.Len(t, stats, 3)
	assert.Equal(t, "crash_handler", stats[0].Sink)
	assert.Equal(t, int64(20240), stats[0].MaxBytes)
	assert.Equal(t, 3, stats[0].MaxBackups)
	assert.Equal(t, "days_handler", stats[1].Sink)
	assert.Equal(t, "H", stats[1].When)
	assert.Equal(t, time.Hour, stats[1].Interval)
	assert.Equal(t, 24, stats[1].MaxBackups)
	assert.Equal(t, "file", stats[2].Sink)
	assert.Equal(t, int64(20000), stats[2].MaxBytes)
	assert.Equal(t, 5, stats[2].MaxBackups)

	assert.Contains(t, stats[2].String(), "MaxBytes: 20000")
	assert.Equal(t, "19.5 KB", stats[2].FormatSize(20000))
	assert.Equal(t, "512 B", stats[2].FormatSize(512))
}

func TestManager_RotateLog(t *testing.T) {
	env := newTestManager(t, DefaultConfig())
	m := env.manager

	m.GetLogger("app").Warn("before rotation")
	require.NoError(t, m.RotateLog("file"))
	m.GetLogger("app").Warn("after rotation")

	assert.NotContains(t, env.readLog(t, "logs/warnings.log"), "before rotation")
	assert.Contains(t, env.readLog(t, "logs/warnings.log"), "after rotation")

	err := m.RotateLog("nope")
	assert.ErrorIs(t, err, ErrUnknownSink)

	assert.ErrorIs(t, m.RotateLog("console"), ErrNotFileSink)
	assert.NoError(t, m.RotateAll())
}

func TestManager_ContextLoggers(t *testing.T) {
	env := newTestManager(t, DefaultConfig())
	m := env.manager

	entry := m.ForModule("app", "services")
	assert.Same(t, entry, m.ForModule("app", "services"))
	entry.Warn("from module")
	assert.Contains(t, env.stdout.String(), "app.services - WARNING - from module component=app module=services")

	ctx := WithContext(context.Background(), LogContext{
		Component: "app",
		Module:    "middlewares",
		RequestID: "req-1",
		Actor:     "admin@example.com",
	})
	m.WithGoContext(ctx).Info("with context")
	assert.Contains(t, env.stdout.String(), "app.middlewares - INFO - with context")
	assert.Contains(t, env.stdout.String(), "request_id=req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	m.ForOperation("app", "services", "import").Warn("importing")
	assert.Contains(t, env.stdout.String(), "operation=import")
}

func TestManager_StartOperation(t *testing.T) {
	env := newTestManager(t, DefaultConfig())

	op := env.manager.StartOperation(context.Background(), "app", "middlewares", "entry_import").
		WithDomain("maps").
		WithActor("admin")
	op.Success("imported entries", Fields{"count": 12})
	op.Fail("import failed", fmt.Errorf("bad geometry"))

	out := env.stdout.String()
	assert.Contains(t, out, "imported entries")
	assert.Contains(t, out, "count=12")
	assert.Contains(t, out, "domain=maps")
	assert.Contains(t, out, "error=bad geometry")
	assert.Equal(t, "maps", FromContext(op.GetContext()).Domain)
	assert.Equal(t, 1, env.manager.ErrorCounts()["app.middlewares"])
}

func TestManager_PerformanceHook(t *testing.T) {
	env := newTestManager(t, DefaultConfig())

	env.manager.GetLogger("routes").WithDuration(6 * time.Second).Info("slow request")
	assert.Contains(t, env.stdout.String(), "performance_alert=slow_operation")
}

func TestManager_ExtraHooks(t *testing.T) {
	hook := &countingHook{}
	env := newTestManager(t, DefaultConfig(), WithHooks(hook))

	env.manager.GetLogger("app").Info("counted")
	env.manager.GetLogger("app").Debug("filtered before hooks")
	assert.Equal(t, 1, hook.count())
}

type countingHook struct {
	mu sync.Mutex
	n  int
}

func (h *countingHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *countingHook) Fire(*logrus.Entry) error {
	h.mu.Lock()
	h.n++
	h.mu.Unlock()
	return nil
}

func (h *countingHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

func TestManager_ConcurrentEmit(t *testing.T) {
	config := DefaultConfig()
	file := config.Handlers["file"]
	file.MaxBytes = 4000
	config.Handlers["file"] = file

	env := newTestManager(t, config)

	const workers, records = 16, 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			l := env.manager.GetLogger(fmt.Sprintf("app.services.worker%d", w))
			for i := 0; i < records; i++ {
				l.Warnf("worker %d record %d", w, i)
			}
		}(w)
	}
	wg.Wait()

	stats := env.manager.GetLogStats()
	var fileStats LogStats
	for _, s := range stats {
		if s.Sink == "file" {
			fileStats = s
		}
	}
	assert.Greater(t, fileStats.Rotations, 0)
	assert.LessOrEqual(t, fileStats.CurrentSize, int64(4000))

	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	assert.Len(t, lines, workers*records)
	for _, line := range lines {
		assert.Contains(t, line, " - WARNING - worker ")
	}
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	env := newTestManager(t, DefaultConfig())
	env.manager.GetLogger("app").Warn("something")

	assert.NoError(t, env.manager.Close())
	assert.NoError(t, env.manager.Close())
}

func TestGetDefaultLogger(t *testing.T) {
	logger := GetDefaultLogger()
	require.NotNil(t, logger)
	assert.Equal(t, RootLoggerName, logger.Name())
	assert.Equal(t, LevelInfo, logger.EffectiveLevel())
}
