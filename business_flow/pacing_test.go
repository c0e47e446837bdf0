package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/Kitsune/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacingDelay(t *testing.T) {
	t.Run("Fast", func(t *testing.T) {
		p := &models.Personality{ResponseSpeed: models.ResponseSpeedFast}
		assert.Equal(t, PacingFast, PacingDelay(p))
	})

	t.Run("Moderate", func(t *testing.T) {
		p := &models.Personality{ResponseSpeed: models.ResponseSpeedModerate}
		assert.Equal(t, PacingModerate, PacingDelay(p))
	})

	t.Run("Slow", func(t *testing.T) {
		p := &models.Personality{ResponseSpeed: models.ResponseSpeedSlow}
		assert.Equal(t, PacingSlow, PacingDelay(p))
	})

	t.Run("NilPersonalityDefaultsToModerate", func(t *testing.T) {
		assert.Equal(t, PacingModerate, PacingDelay(nil))
	})

	t.Run("UnknownSpeedDefaultsToModerate", func(t *testing.T) {
		p := &models.Personality{ResponseSpeed: "warp"}
		assert.Equal(t, PacingModerate, PacingDelay(p))
	})
}

func TestWaitPacing(t *testing.T) {
	t.Run("ElapsesNormally", func(t *testing.T) {
		start := time.Now()
		err := waitPacing(context.Background(), 10*time.Millisecond)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("CancelledContextReturnsEarly", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := waitPacing(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
