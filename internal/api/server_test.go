package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oblo-platform/oblo/pkg/logger"
	"github.com/oblo-platform/oblo/pkg/types"
)

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

func testSettings() *types.Settings {
	return &types.Settings{
		Env:                    types.EnvTest,
		Host:                   "http://localhost:3000",
		Port:                   8000,
		BaseRouterPrefix:       "/api",
		TimingMiddlewareActive: true,
		CORSOtherOrigins:       "https://maps.example.com",
	}
}

func newTestServer(t *testing.T, settings *types.Settings) (*Server, *syncBuffer) {
	t.Helper()

	out := &syncBuffer{}
	cfg := logger.DefaultConfig()
	cfg.BaseDir = t.TempDir()

	logs, err := logger.NewManager(cfg, logger.WithStdout(out), logger.WithStderr(out))
	require.NoError(t, err)
	t.Cleanup(func() { logs.Close() })

	return NewServer("127.0.0.1:0", settings, logs), out
}

func decode(t *testing.T, body io.Reader, data interface{}) Response {
	t.Helper()
	resp := Response{Data: data}
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func serve(handler http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestServer_HealthEndpoints(t *testing.T) {
	server, _ := newTestServer(t, testSettings())
	handler := server.Handler()

	t.Run("health before start", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/health")
		require.Equal(t, http.StatusOK, w.Code)

		var health HealthStatus
		resp := decode(t, w.Body, &health)
		assert.True(t, resp.Success)
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, types.EnvTest, health.Env)
		assert.Equal(t, "starting", health.Components["api"].Status)
		assert.Equal(t, "4 sinks configured", health.Components["logging"].Message)
	})

	t.Run("liveness", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/health/live")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"alive"`)
	})

	t.Run("readiness before start", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("version", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/version")
		require.Equal(t, http.StatusOK, w.Code)

		var version APIVersion
		decode(t, w.Body, &version)
		assert.Equal(t, GetVersion(), version)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_LoggingEndpoints(t *testing.T) {
	server, out := newTestServer(t, testSettings())
	handler := server.Handler()

	t.Run("loggers", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/api/logging/loggers")
		require.Equal(t, http.StatusOK, w.Code)

		var list LoggerList
		decode(t, w.Body, &list)
		require.NotEmpty(t, list.Loggers)
		assert.Equal(t, len(list.Loggers), list.Total)
		assert.Equal(t, logger.RootLoggerName, list.Loggers[0].Name)

		levels := make(map[string]string)
		for _, l := range list.Loggers {
			levels[l.Name] = l.EffectiveLevel
		}
		assert.Equal(t, "WARNING", levels["app.services"])
		assert.Equal(t, "ERROR", levels["crashes"])
	})

	t.Run("sinks", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/api/logging/sinks")
		require.Equal(t, http.StatusOK, w.Code)

		var list SinkList
		decode(t, w.Body, &list)
		assert.Equal(t, 4, list.Total)

		names := make([]string, 0, len(list.Sinks))
		for _, s := range list.Sinks {
			names = append(names, s.Name)
		}
		assert.ElementsMatch(t, []string{"console", "file", "days_handler", "crash_handler"}, names)
	})

	t.Run("rotate", func(t *testing.T) {
		w := serve(handler, http.MethodPost, "/api/logging/sinks/file/rotate")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, out.String(), "Sink rotated")
	})

	t.Run("rotate unknown sink", func(t *testing.T) {
		w := serve(handler, http.MethodPost, "/api/logging/sinks/nope/rotate")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rotate stream sink", func(t *testing.T) {
		w := serve(handler, http.MethodPost, "/api/logging/sinks/console/rotate")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rotate needs POST", func(t *testing.T) {
		w := serve(handler, http.MethodGet, "/api/logging/sinks/file/rotate")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestServer_CustomPrefix(t *testing.T) {
	settings := testSettings()
	settings.BaseRouterPrefix = "/v2/"
	server, _ := newTestServer(t, settings)

	assert.Equal(t, http.StatusOK, serve(server.Handler(), http.MethodGet, "/v2/logging/loggers").Code)
	assert.Equal(t, http.StatusNotFound, serve(server.Handler(), http.MethodGet, "/api/logging/loggers").Code)
}

func TestServer_Middleware(t *testing.T) {
	server, out := newTestServer(t, testSettings())
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "https://maps.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "https://maps.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, out.String(), "routes - INFO - API request completed")
	assert.Regexp(t, `app\.middlewares - INFO - \[GET\] - /health/live : \d+ms`, out.String())
}

func TestServer_TimingDisabled(t *testing.T) {
	settings := testSettings()
	settings.TimingMiddlewareActive = false
	server, out := newTestServer(t, settings)

	serve(server.Handler(), http.MethodGet, "/health/live")
	assert.NotContains(t, out.String(), "[GET] - /health/live")
}

func TestServer_StartStop(t *testing.T) {
	server, out := newTestServer(t, testSettings())

	ctx := context.Background()
	require.NoError(t, server.Start(ctx))
	assert.Error(t, server.Start(ctx), "second start should fail")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/health/ready", server.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(stopCtx))
	require.NoError(t, server.Stop(stopCtx))

	assert.Contains(t, out.String(), "app.api - INFO - Component starting")
	assert.Contains(t, out.String(), "app.api - INFO - Component stopped")
}

func TestServer_StartBindError(t *testing.T) {
	first, _ := newTestServer(t, testSettings())
	require.NoError(t, first.Start(context.Background()))
	t.Cleanup(func() { first.Stop(context.Background()) })

	second, _ := newTestServer(t, testSettings())
	second.addr = first.Addr()
	assert.Error(t, second.Start(context.Background()))
}
