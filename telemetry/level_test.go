package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelNone < LevelCrash)
	assert.True(t, LevelCrash < LevelError)
	assert.True(t, LevelError < LevelUsage)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "none", LevelNone.String())
	assert.Equal(t, "crash", LevelCrash.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "usage", LevelUsage.String())
	assert.Equal(t, "level(42)", Level(42).String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"none", LevelNone},
		{"off", LevelNone},
		{"false", LevelNone},
		{"crash", LevelCrash},
		{"error", LevelError},
		{"usage", LevelUsage},
		{"all", LevelUsage},
		{"on", LevelUsage},
		{"USAGE", LevelUsage},
		{"  error  ", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("bogus")
	assert.Error(t, err)
}
