package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDataSplitsByType(t *testing.T) {
	d := NewData(map[string]interface{}{
		"count":   3,
		"ratio":   0.5,
		"flag":    true,
		"label":   "hello",
		"weird":   struct{ X int }{1},
		"elapsed": int64(120),
	})

	assert.Equal(t, 3.0, d.Measurements["count"])
	assert.Equal(t, 0.5, d.Measurements["ratio"])
	assert.Equal(t, 120.0, d.Measurements["elapsed"])
	assert.Equal(t, "true", d.Properties["flag"])
	assert.Equal(t, "hello", d.Properties["label"])
	assert.Contains(t, d.Properties, "weird")
	assert.NotContains(t, d.Properties, "count")
}

func TestNewDataNil(t *testing.T) {
	d := NewData(nil)
	assert.Empty(t, d.Properties)
	assert.Empty(t, d.Measurements)
}

func TestRedaction(t *testing.T) {
	t.Run("paths are replaced with a marker", func(t *testing.T) {
		d := runPipeline(NewData(map[string]interface{}{
			"path":  "/Users/alice/secret.txt",
			"count": 3,
		}), nil, nil)

		assert.NotContains(t, d.Properties["path"], "alice")
		assert.Contains(t, d.Properties["path"], "<REDACTED: path>")
		// Measurements are pure numbers and pass through untouched
		assert.Equal(t, 3.0, d.Measurements["count"])
	})

	t.Run("credential assignments", func(t *testing.T) {
		got := redactValue("failed with token=abc123 during sync")
		assert.NotContains(t, got, "abc123")
		assert.Contains(t, got, "<REDACTED: secret>")
	})

	t.Run("email addresses", func(t *testing.T) {
		got := redactValue("user bob@example.com reported")
		assert.NotContains(t, got, "bob@example.com")
		assert.Contains(t, got, "<REDACTED: email>")
	})

	t.Run("windows paths", func(t *testing.T) {
		got := redactValue(`open failed: C:\Users\carol\project\main.go`)
		assert.NotContains(t, got, "carol")
		assert.Contains(t, got, "<REDACTED: path>")
	})

	t.Run("plain values survive", func(t *testing.T) {
		assert.Equal(t, "startup complete", redactValue("startup complete"))
	})
}

func TestMixinNeverOverwrites(t *testing.T) {
	d := runPipeline(
		NewData(map[string]interface{}{"foo": "1"}),
		map[string]string{"foo": "2", "bar": "1", "extra": "additional"},
		map[string]string{"foo": "3", "bar": "2", "common.machineid": "m"},
	)

	// Event data wins over additional properties, which win over builtins
	assert.Equal(t, "1", d.Properties["foo"])
	assert.Equal(t, "1", d.Properties["bar"])
	assert.Equal(t, "additional", d.Properties["extra"])
	assert.Equal(t, "m", d.Properties["common.machineid"])
}

func TestPipelineDoesNotMutateInput(t *testing.T) {
	in := Data{
		Properties:   map[string]string{"path": "/Users/alice/secret.txt"},
		Measurements: map[string]float64{},
	}
	out := runPipeline(in, nil, map[string]string{"common.product": "p"})

	assert.Equal(t, "/Users/alice/secret.txt", in.Properties["path"])
	assert.NotContains(t, in.Properties, "common.product")
	assert.True(t, strings.Contains(out.Properties["path"], "<REDACTED:"))
}
