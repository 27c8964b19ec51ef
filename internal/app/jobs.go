/**
 * @description
 * Scheduled job implementations for the request-service.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/letspay/request-service/internal/domain"
)

// Sweeper runs one expiry sweep cycle.
type Sweeper interface {
	SweepExpiredRequests(ctx context.Context) (*domain.SweepResult, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	sweeper Sweeper
	logger  *slog.Logger
}

// NewJobs creates a new Jobs runner.
func NewJobs(sweeper Sweeper, logger *slog.Logger) *Jobs {
	return &Jobs{
		sweeper: sweeper,
		logger:  logger,
	}
}

// RunExpirySweep is the scheduled entry point for the expiry sweep. The
// result is logged and discarded; a failed cycle applied no mutations, so the
// next firing simply picks the work up again.
func (j *Jobs) RunExpirySweep() {
	j.logger.Info("starting expiry sweep job")
	ctx := context.Background()

	result, err := j.sweeper.SweepExpiredRequests(ctx)
	if err != nil {
		j.logger.Error("expiry sweep failed", "error", err)
		return
	}

	j.logger.Info("expiry sweep job finished", "seen", result.Seen, "expired", result.Expired)
}
