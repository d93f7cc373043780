package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "prod")

	ctx := WithTraceID(context.Background(), "req-123")
	log.InfoContext(ctx, "login failed", "reason", "unknown email")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "login failed", rec["msg"])
	assert.Equal(t, "req-123", rec["trace_id"])
	assert.Equal(t, "unknown email", rec["reason"])
}

func TestNew_DevTextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "WARN", "dev").With("svc", "auth")

	log.Info("hidden")
	log.WarnContext(WithTraceID(context.Background(), "abc"), "shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "svc=auth")
	assert.Contains(t, out, "trace_id=abc")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestTraceID_Default(t *testing.T) {
	assert.Equal(t, "undefined", TraceID(context.Background()))
	assert.Equal(t, "x", TraceID(WithTraceID(context.Background(), "x")))
}
