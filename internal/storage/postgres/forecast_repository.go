package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/makkenzo/gdb-api/internal/domain/forecast"
	"go.uber.org/zap"
)

// DBTX is the subset of *pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ForecastRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewForecastRepository(db DBTX, logger *zap.Logger) *ForecastRepository {
	return &ForecastRepository{
		db:     db,
		logger: logger.Named("ForecastRepository"),
	}
}

var _ forecast.Repository = (*ForecastRepository)(nil)

const forecastColumns = `id, date, temperature_c, summary, outlook, created_by, created_at`

func (r *ForecastRepository) Create(ctx context.Context, f *forecast.Forecast) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	query := `
        INSERT INTO forecasts (id, date, temperature_c, summary, outlook, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query,
		f.ID,
		f.Date,
		f.TemperatureC,
		f.Summary,
		string(f.Outlook),
		f.CreatedBy,
	).Scan(&f.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create forecast in database", zap.Error(err))
		return fmt.Errorf("database error on create forecast: %w", err)
	}

	r.logger.Info("Forecast created successfully", zap.String("id", f.ID.String()))
	return nil
}

func (r *ForecastRepository) FindByID(ctx context.Context, id uuid.UUID) (*forecast.Forecast, error) {
	query := `SELECT ` + forecastColumns + ` FROM forecasts WHERE id = $1`

	f, err := scanForecast(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, forecast.ErrForecastNotFound
		}
		r.logger.Error("Failed to find forecast by ID", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("database error on find forecast: %w", err)
	}
	return f, nil
}

func (r *ForecastRepository) List(ctx context.Context, params forecast.ListParams) ([]*forecast.Forecast, error) {
	query := `SELECT ` + forecastColumns + ` FROM forecasts
        ORDER BY date DESC, created_at DESC
        LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, params.Limit, params.Offset)
	if err != nil {
		r.logger.Error("Failed to query list of forecasts", zap.Error(err))
		return nil, fmt.Errorf("database error on list forecasts: %w", err)
	}
	defer rows.Close()

	forecasts := make([]*forecast.Forecast, 0, params.Limit)
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			r.logger.Error("Failed to scan forecast row during list", zap.Error(err))
			return nil, fmt.Errorf("database scan error during list: %w", err)
		}
		forecasts = append(forecasts, f)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating forecast rows", zap.Error(err))
		return nil, fmt.Errorf("database iteration error on list forecasts: %w", err)
	}

	return forecasts, nil
}

func (r *ForecastRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM forecasts`).Scan(&total); err != nil {
		r.logger.Error("Failed to count forecasts", zap.Error(err))
		return 0, fmt.Errorf("database error on count forecasts: %w", err)
	}
	return total, nil
}

func (r *ForecastRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM forecasts WHERE date < $1`, cutoff)
	if err != nil {
		r.logger.Error("Failed to delete old forecasts", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("database error on delete forecasts: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func scanForecast(row pgx.Row) (*forecast.Forecast, error) {
	var (
		f       forecast.Forecast
		outlook string
	)
	err := row.Scan(
		&f.ID,
		&f.Date,
		&f.TemperatureC,
		&f.Summary,
		&outlook,
		&f.CreatedBy,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Outlook = forecast.Outlook(outlook)
	return &f, nil
}
