package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m), buf.String())
	return m
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Format: "json", Component: "api"}, &buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = context.WithValue(ctx, RoleKey, "student")
	assert.Equal(t, "trace-1", TraceIDFrom(ctx))

	l.WithContext(ctx).WithError(errors.New("boom")).Info("hello")
	m := decodeLine(t, &buf)
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "api", m["component"])
	assert.Equal(t, "trace-1", m["trace_id"])
	assert.Equal(t, "student", m["role"])
	assert.Equal(t, "boom", m["error"])

	// 空上下文返回原日志器
	assert.Same(t, l, l.WithContext(context.Background()))
}

func TestLogger_HTTPRequestLog(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Format: "json"}, &buf)

	l.HTTPRequestLog("GET", "/health", 200, 3*time.Millisecond, "127.0.0.1")
	m := decodeLine(t, &buf)
	assert.Equal(t, "INFO", m["level"])
	assert.Equal(t, float64(200), m["status"])
	assert.Equal(t, float64(3), m["duration_ms"])

	buf.Reset()
	l.HTTPRequestLog("POST", "/api/v1/student/login", 400, time.Millisecond, "127.0.0.1")
	assert.Equal(t, "WARN", decodeLine(t, &buf)["level"])

	buf.Reset()
	l.HTTPRequestLog("GET", "/api/v1/student/", 500, time.Millisecond, "127.0.0.1")
	assert.Equal(t, "ERROR", decodeLine(t, &buf)["level"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "warn", Format: "text"}, &buf)
	l.Info("hidden")
	l.Warn("shown")
	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestLogger_StdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Format: "json"}, &buf)
	l.StdLogger(slog.LevelError).Print("http: accept error")
	m := decodeLine(t, &buf)
	assert.Equal(t, "ERROR", m["level"])
	assert.Equal(t, "http: accept error", m["msg"])
}
