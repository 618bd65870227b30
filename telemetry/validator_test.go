package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/telhub-io/telhub/core"
)

func TestValidateSender(t *testing.T) {
	t.Run("valid sender", func(t *testing.T) {
		assert.NoError(t, ValidateSender(newRecordingSender()))
	})

	t.Run("nil interface", func(t *testing.T) {
		err := ValidateSender(nil)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidSender))
	})

	t.Run("typed nil", func(t *testing.T) {
		var s *recordingSender
		err := ValidateSender(s)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrInvalidSender))
	})

	t.Run("noop sender passes", func(t *testing.T) {
		assert.NoError(t, ValidateSender(&core.NoOpSender{}))
	})
}
