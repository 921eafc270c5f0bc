package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/makkenzo/gdb-api/internal/domain/forecast"
	"github.com/makkenzo/gdb-api/internal/handler/dto"
	"github.com/makkenzo/gdb-api/internal/mapper"
	"go.uber.org/zap"
)

type ForecastService struct {
	repo   forecast.Repository
	cache  forecast.Cache
	mapper *mapper.Mapper
	logger *zap.Logger
}

// NewForecastService wires the service; cache may be nil.
func NewForecastService(repo forecast.Repository, cache forecast.Cache, m *mapper.Mapper, logger *zap.Logger) *ForecastService {
	return &ForecastService{
		repo:   repo,
		cache:  cache,
		mapper: m,
		logger: logger.Named("ForecastService"),
	}
}

func (s *ForecastService) Create(ctx context.Context, req *dto.CreateForecastRequest, createdBy string) (*forecast.Forecast, error) {
	var f forecast.Forecast
	if err := s.mapper.Map(&f, req); err != nil {
		return nil, err
	}
	f.Date = f.Date.UTC()
	f.CreatedBy = createdBy

	if err := s.repo.Create(ctx, &f); err != nil {
		s.logger.Error("Failed to create forecast via repository", zap.Error(err))
		return nil, fmt.Errorf("repository error during forecast creation: %w", err)
	}

	s.logger.Info("Forecast created", zap.String("id", f.ID.String()), zap.String("created_by", createdBy))
	return &f, nil
}

// GetByID reads through the cache. Cache failures are logged and never fail the request.
func (s *ForecastService) GetByID(ctx context.Context, id uuid.UUID) (*forecast.Forecast, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, forecast.ErrCacheMiss):
			s.logger.Warn("Forecast cache read failed", zap.String("id", id.String()), zap.Error(err))
		}
	}

	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, f); err != nil {
			s.logger.Warn("Forecast cache write failed", zap.String("id", id.String()), zap.Error(err))
		}
	}
	return f, nil
}

func (s *ForecastService) List(ctx context.Context, params forecast.ListParams) ([]*forecast.Forecast, int64, error) {
	items, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("repository error during forecast list: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("repository error during forecast count: %w", err)
	}
	return items, total, nil
}

// PurgeOlderThan deletes forecasts dated before now minus retention.
func (s *ForecastService) PurgeOlderThan(ctx context.Context, retention time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("repository error during forecast purge: %w", err)
	}
	s.logger.Info("Purged stale forecasts", zap.Time("cutoff", cutoff), zap.Int64("deleted", deleted))
	return deleted, nil
}
