package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type ForecastPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration, now time.Time) (int64, error)
}

type ForecastPurgeHandler struct {
	purger    ForecastPurger
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewForecastPurgeHandler(purger ForecastPurger, retention time.Duration, logger *zap.Logger) *ForecastPurgeHandler {
	return &ForecastPurgeHandler{
		purger:    purger,
		retention: retention,
		now:       time.Now,
		logger:    logger.Named("ForecastPurgeHandler"),
	}
}

func (h *ForecastPurgeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeForecastPurge {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	var p ForecastPurgePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			h.logger.Error("Failed to unmarshal payload for forecast purge task", zap.Error(err), zap.ByteString("payload", t.Payload()))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	retention := h.retention
	if p.RetentionOverride > 0 {
		retention = p.RetentionOverride
	}
	if retention <= 0 {
		h.logger.Warn("Forecast retention is not positive, skipping purge", zap.Duration("retention", retention))
		return nil
	}

	h.logger.Info("Processing forecast purge task...", zap.Duration("retention", retention))

	deleted, err := h.purger.PurgeOlderThan(ctx, retention, h.now().UTC())
	if err != nil {
		h.logger.Error("Forecast purge failed", zap.Error(err))
		return err
	}

	h.logger.Info("Forecast purge task finished", zap.Int64("deleted", deleted))
	return nil
}
