package repository_test

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/UnknownOlympus/waypoint/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recentPositionsQuery = `
		SELECT position_id, device_id, latitude, longitude, COALESCE(speed, 0), COALESCE(fix_time, archived_at), COALESCE(attributes::text, '')
		FROM positions
		WHERE device_id = $1
		ORDER BY fix_time DESC NULLS LAST, id DESC
		LIMIT $2;
	`

var positionColumns = []string{"position_id", "device_id", "latitude", "longitude", "speed", "fix_time", "attributes"}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("error - create table", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS positions").WillReturnError(assert.AnError)

		err = repo.EnsureSchema(ctx)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to create positions table")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - create table", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS positions").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))

		require.NoError(t, repo.EnsureSchema(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSavePositions(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	positions := []models.Position{
		{ID: 1, DeviceID: 3, Latitude: 50.45, Longitude: 30.52, Speed: 10, FixTime: time.Now()},
		{ID: 2, DeviceID: 4, Latitude: 49.84, Longitude: 24.03, Attributes: json.RawMessage(`{"ignition":false}`)},
	}

	t.Run("empty input skips the database", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		copied, err := repo.SavePositions(ctx, nil)

		require.NoError(t, err)
		assert.Zero(t, copied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - copy", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectCopyFrom(pgx.Identifier{"positions"}, positionColumns).WillReturnError(assert.AnError)

		copied, err := repo.SavePositions(ctx, positions)

		assert.Zero(t, copied)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to archive positions")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - copy", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectCopyFrom(pgx.Identifier{"positions"}, positionColumns).WillReturnResult(2)

		copied, err := repo.SavePositions(ctx, positions)

		require.NoError(t, err)
		assert.Equal(t, int64(2), copied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecentPositions(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	deviceID := int64(3)
	limit := 20
	columns := []string{"position_id", "device_id", "latitude", "longitude", "speed", "fix_time", "attributes"}
	fixTime := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("error - query", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(recentPositionsQuery)).
			WithArgs(deviceID, limit).
			WillReturnError(assert.AnError)

		positions, err := repo.RecentPositions(ctx, deviceID, limit)

		require.Nil(t, positions)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to query recent positions")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(recentPositionsQuery)).
			WithArgs(deviceID, limit).
			WillReturnRows(pgxmock.NewRows(columns).AddRow("bad", deviceID, 1.0, 2.0, 0.0, fixTime, ""))

		positions, err := repo.RecentPositions(ctx, deviceID, limit)

		require.Nil(t, positions)
		require.ErrorContains(t, err, "failed to scan position")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(recentPositionsQuery)).
			WithArgs(deviceID, limit).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(int64(1), deviceID, 1.0, 2.0, 0.0, fixTime, "").
				RowError(1, assert.AnError))

		positions, err := repo.RecentPositions(ctx, deviceID, limit)

		require.Nil(t, positions)
		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to read row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(recentPositionsQuery)).
			WithArgs(deviceID, limit).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(int64(9), deviceID, 50.45, 30.52, 12.0, fixTime, `{"ignition": true}`).
				AddRow(int64(8), deviceID, 50.44, 30.51, 0.0, fixTime.Add(-time.Minute), ""))

		positions, err := repo.RecentPositions(ctx, deviceID, limit)

		require.NoError(t, err)
		require.Len(t, positions, 2)
		assert.Equal(t, int64(9), positions[0].ID)
		assert.JSONEq(t, `{"ignition": true}`, string(positions[0].Attributes))
		assert.Nil(t, positions[1].Attributes)
		assert.True(t, positions[1].FixTime.Equal(fixTime.Add(-time.Minute)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
