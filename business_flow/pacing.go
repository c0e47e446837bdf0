package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/Kitsune/models"
)

// Pacing delays between consecutive sends within one dispatch run. The delay
// models human typing cadence and doubles as a per-campaign rate limit.
const (
	PacingFast     = 2 * time.Second
	PacingModerate = 5 * time.Second
	PacingSlow     = 10 * time.Second
)

// PacingDelay maps a personality's response speed to the inter-message delay
func PacingDelay(p *models.Personality) time.Duration {
	if p == nil {
		return PacingModerate
	}
	switch p.ResponseSpeed {
	case models.ResponseSpeedFast:
		return PacingFast
	case models.ResponseSpeedSlow:
		return PacingSlow
	default:
		return PacingModerate
	}
}

// waitPacing sleeps for d without blocking anything but the calling run
func waitPacing(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
