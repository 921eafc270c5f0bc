package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type ListParams struct {
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, f *Forecast) error
	FindByID(ctx context.Context, id uuid.UUID) (*Forecast, error)
	List(ctx context.Context, params ListParams) ([]*Forecast, error)
	Count(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

var ErrCacheMiss = errors.New("forecast cache miss")

type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*Forecast, error)
	Set(ctx context.Context, f *Forecast) error
	Delete(ctx context.Context, id uuid.UUID) error
}
