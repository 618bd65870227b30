package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(50 * time.Millisecond)

	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow())
}
