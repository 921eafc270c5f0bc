package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/gdb-api/internal/domain/forecast"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const forecastKeyPrefix = "forecast:"

type cachedForecast struct {
	ID           uuid.UUID `json:"id"`
	Date         time.Time `json:"date"`
	TemperatureC int       `json:"temperatureC"`
	Summary      string    `json:"summary"`
	Outlook      string    `json:"outlook"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ForecastCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ forecast.Cache = (*ForecastCache)(nil)

func NewForecastCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *ForecastCache {
	return &ForecastCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("ForecastCache"),
	}
}

func forecastKey(id uuid.UUID) string {
	return forecastKeyPrefix + id.String()
}

func (c *ForecastCache) Get(ctx context.Context, id uuid.UUID) (*forecast.Forecast, error) {
	raw, err := c.client.Get(ctx, forecastKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, forecast.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get forecast: %w", err)
	}

	var cf cachedForecast
	if err := json.Unmarshal([]byte(raw), &cf); err != nil {
		c.logger.Warn("Discarding undecodable cache entry", zap.String("id", id.String()), zap.Error(err))
		return nil, forecast.ErrCacheMiss
	}

	return &forecast.Forecast{
		ID:           cf.ID,
		Date:         cf.Date,
		TemperatureC: cf.TemperatureC,
		Summary:      cf.Summary,
		Outlook:      forecast.Outlook(cf.Outlook),
		CreatedBy:    cf.CreatedBy,
		CreatedAt:    cf.CreatedAt,
	}, nil
}

func (c *ForecastCache) Set(ctx context.Context, f *forecast.Forecast) error {
	data, err := json.Marshal(cachedForecast{
		ID:           f.ID,
		Date:         f.Date,
		TemperatureC: f.TemperatureC,
		Summary:      f.Summary,
		Outlook:      string(f.Outlook),
		CreatedBy:    f.CreatedBy,
		CreatedAt:    f.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}

	if err := c.client.Set(ctx, forecastKey(f.ID), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set forecast: %w", err)
	}
	return nil
}

func (c *ForecastCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, forecastKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete forecast: %w", err)
	}
	return nil
}
