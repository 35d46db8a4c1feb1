package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(zapcore.AddSync(&buf), "info", "json", "recipebox")

	log.Debug("hidden")
	log.Warn("import failed", zap.String("url", "https://example.com"))
	require.NoError(t, log.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "import failed", line["msg"])
	assert.Equal(t, "recipebox", line["service"])
	assert.Equal(t, "https://example.com", line["url"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(zapcore.AddSync(&buf), "debug", "console", "recipebox")
	log.Debug("parsing")

	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "parsing")
}

func TestHelpersUseGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := Log
	t.Cleanup(func() { Log = prev })

	Log = New(zapcore.AddSync(&buf), "info", "json", "svc")
	Info("hello")
	Debug("dropped")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.NotContains(t, buf.String(), "dropped")
}
