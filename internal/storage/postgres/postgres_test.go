package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/domain/forecast"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolveConnectionString(t *testing.T) {
	t.Setenv("GDB_TEST_DSN", "postgres://from-env:5432/gdb")

	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		want    string
		wantErr error
	}{
		{
			name: "secret name points at environment variable",
			cfg:  config.DatabaseConfig{ConnectionStringSecretName: "GDB_TEST_DSN", URL: "postgres://fallback/gdb"},
			want: "postgres://from-env:5432/gdb",
		},
		{
			name: "secret name holds the DSN",
			cfg:  config.DatabaseConfig{ConnectionStringSecretName: "postgres://inline:5432/gdb"},
			want: "postgres://inline:5432/gdb",
		},
		{
			name: "unknown secret name falls back to url",
			cfg:  config.DatabaseConfig{ConnectionStringSecretName: "GDB_MISSING_DSN", URL: "postgres://fallback/gdb"},
			want: "postgres://fallback/gdb",
		},
		{
			name:    "nothing configured",
			cfg:     config.DatabaseConfig{},
			wantErr: ErrNoConnectionString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveConnectionString(&tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *ForecastRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewForecastRepository(mock, zap.NewNop())
}

func forecastRows(fs ...forecast.Forecast) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "date", "temperature_c", "summary", "outlook", "created_by", "created_at"})
	for _, f := range fs {
		rows.AddRow(f.ID, f.Date, f.TemperatureC, f.Summary, string(f.Outlook), f.CreatedBy, f.CreatedAt)
	}
	return rows
}

func TestForecastRepository_Create(t *testing.T) {
	mock, repo := newMockRepo(t)

	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f := &forecast.Forecast{
		Date:         time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		TemperatureC: 21,
		Summary:      "Mild",
		Outlook:      forecast.OutlookSunny,
		CreatedBy:    "user-1",
	}

	mock.ExpectQuery("INSERT INTO forecasts").
		WithArgs(pgxmock.AnyArg(), f.Date, 21, "Mild", "sunny", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	require.NoError(t, repo.Create(context.Background(), f))
	assert.NotEqual(t, uuid.Nil, f.ID)
	assert.Equal(t, createdAt, f.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForecastRepository_FindByID(t *testing.T) {
	want := forecast.Forecast{
		ID:           uuid.New(),
		Date:         time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		TemperatureC: -4,
		Summary:      "Freezing",
		Outlook:      forecast.OutlookSnowy,
		CreatedBy:    "user-1",
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM forecasts WHERE id").
			WithArgs(want.ID).
			WillReturnRows(forecastRows(want))

		got, err := repo.FindByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, *got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM forecasts WHERE id").
			WithArgs(want.ID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByID(context.Background(), want.ID)
		assert.ErrorIs(t, err, forecast.ErrForecastNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM forecasts WHERE id").
			WithArgs(want.ID).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByID(context.Background(), want.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, forecast.ErrForecastNotFound)
	})
}

func TestForecastRepository_ListAndCount(t *testing.T) {
	mock, repo := newMockRepo(t)

	a := forecast.Forecast{ID: uuid.New(), Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), TemperatureC: 30, Outlook: forecast.OutlookSunny}
	b := forecast.Forecast{ID: uuid.New(), Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), TemperatureC: 12, Outlook: forecast.OutlookRainy}

	mock.ExpectQuery("SELECT (.+) FROM forecasts").
		WithArgs(2, 4).
		WillReturnRows(forecastRows(a, b))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(6)))

	got, err := repo.List(context.Background(), forecast.ListParams{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, forecast.OutlookRainy, got[1].Outlook)

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForecastRepository_DeleteOlderThan(t *testing.T) {
	mock, repo := newMockRepo(t)
	cutoff := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM forecasts").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
