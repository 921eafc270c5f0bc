package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeForecastPurge = "forecast:purge"
)

type ForecastPurgePayload struct {
	// RetentionOverride replaces the configured retention when set.
	RetentionOverride time.Duration `json:"retention_override,omitempty"`
}

func NewForecastPurgeTask(payload ForecastPurgePayload, opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	uniqueOpt := asynq.Unique(1 * time.Hour)
	allOpts := append(opts, uniqueOpt)

	return asynq.NewTask(TypeForecastPurge, payloadBytes, allOpts...), nil
}
