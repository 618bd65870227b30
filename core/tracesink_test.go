package core

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTraceSink("telemetry", LoggingConfig{Level: "warn", Format: "text"})
	sink.SetOutput(&buf)

	sink.Debug("hidden", nil)
	sink.Info("hidden", nil)
	sink.Warn("shown", nil)
	sink.Error("also shown", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "[ERROR]")
}

func TestTraceSinkJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTraceSink("telemetry", LoggingConfig{Level: "info", Format: "json"})
	sink.SetOutput(&buf)

	sink.Info("coordinator initialized", map[string]interface{}{
		"policy": "usage",
		"level":  "clobber attempt",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "coordinator initialized", entry["message"])
	assert.Equal(t, "telemetry", entry["component"])
	assert.Equal(t, "usage", entry["policy"])
	// Fields never clobber the core keys
	assert.Equal(t, "info", entry["level"])
}

func TestTraceSinkTextFieldOrdering(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTraceSink("telemetry", LoggingConfig{Level: "info", Format: "text"})
	sink.SetOutput(&buf)

	sink.Info("telemetry event", map[string]interface{}{
		"other":   "x",
		"event":   "ext/activate",
		"emitter": "pub.ext",
	})

	out := buf.String()
	assert.True(t, strings.Index(out, "event=") < strings.Index(out, "other="))
	assert.True(t, strings.Index(out, "emitter=") < strings.Index(out, "other="))
}

func TestTraceVisibilityGate(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTraceSink("telemetry", LoggingConfig{Level: "trace", Format: "text"})
	sink.SetOutput(&buf)

	assert.True(t, sink.TraceEnabled())

	// Trace output needs the visibility switch in addition to the level
	sink.Trace("invisible", nil)
	assert.Empty(t, buf.String())

	sink.SetVisible(true)
	sink.Trace("visible", nil)
	assert.Contains(t, buf.String(), "visible")

	sink.SetVisible(false)
	buf.Reset()
	sink.Trace("invisible again", nil)
	assert.Empty(t, buf.String())
}

func TestTraceSinkEnvironmentDetection(t *testing.T) {
	t.Run("kubernetes selects json", func(t *testing.T) {
		require.NoError(t, os.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1"))
		defer func() { _ = os.Unsetenv("KUBERNETES_SERVICE_HOST") }()

		sink := NewTraceSink("telemetry", LoggingConfig{})
		assert.Equal(t, "json", sink.format)
	})

	t.Run("debug env forces trace level", func(t *testing.T) {
		require.NoError(t, os.Setenv("TELHUB_DEBUG", "true"))
		defer func() { _ = os.Unsetenv("TELHUB_DEBUG") }()

		sink := NewTraceSink("telemetry", LoggingConfig{})
		assert.True(t, sink.TraceEnabled())
	})

	t.Run("explicit config wins over detection", func(t *testing.T) {
		require.NoError(t, os.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1"))
		defer func() { _ = os.Unsetenv("KUBERNETES_SERVICE_HOST") }()

		sink := NewTraceSink("telemetry", LoggingConfig{Format: "text"})
		assert.Equal(t, "text", sink.format)
	})
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTraceSink("telemetry", LoggingConfig{Level: "error", Format: "text"})
	sink.SetOutput(&buf)

	sink.Info("first", nil)
	assert.Empty(t, buf.String())

	sink.SetLevel("info")
	sink.Info("second", nil)
	assert.Contains(t, buf.String(), "second")
}
