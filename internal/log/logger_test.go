package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestComponentTagging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf, Component: ComponentHTTP})
	assert.Equal(t, ComponentHTTP, logger.Component())

	logger.WithComponent(ComponentViews).Info("hello", FieldUsername, "alice")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentViews, rec[FieldComponent])
	assert.Equal(t, "alice", rec[FieldUsername])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("quiet")
	logger.Warn("loud")
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestMiddlewareCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "msg=inside")
	assert.Contains(t, buf.String(), "request_id=req_1")
}

func TestFromContextFallsBack(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	ctx := context.Background()

	sl.LogTransactionCreated(ctx, "alice", "Groceries", "-12.50€", "2024-05-02")
	out := buf.String()
	assert.Contains(t, out, "title=Groceries")
	assert.Contains(t, out, "day=2024-05-02")
	assert.Contains(t, out, "username=alice")

	buf.Reset()
	sl.LogError(ctx, "boom", errors.New("broken"), OpRender, nil)
	assert.Contains(t, buf.String(), "error=broken")
	assert.Contains(t, buf.String(), "operation=render")

	buf.Reset()
	r := httptest.NewRequest(http.MethodGet, "/transactions?new=1", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusBadGateway, 12, "192.0.2.1")
	assert.True(t, strings.HasPrefix(buf.String(), "time="))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status_code=502")
}
