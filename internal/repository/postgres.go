package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/jackc/pgx/v5"
)

const createPositionsTable = `
	CREATE TABLE IF NOT EXISTS positions (
		id BIGSERIAL PRIMARY KEY,
		position_id BIGINT NOT NULL,
		device_id BIGINT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		speed DOUBLE PRECISION,
		fix_time TIMESTAMPTZ,
		attributes JSONB,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS positions_device_fix_time_idx ON positions (device_id, fix_time DESC);
`

var positionColumns = []string{"position_id", "device_id", "latitude", "longitude", "speed", "fix_time", "attributes"}

// EnsureSchema creates the positions table and its index when they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createPositionsTable); err != nil {
		return fmt.Errorf("failed to create positions table: %w", err)
	}

	return nil
}

// SavePositions bulk-copies positions into the archive and returns the number of rows written.
func (r *Repository) SavePositions(ctx context.Context, positions []models.Position) (int64, error) {
	if len(positions) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(positions))
	for _, pos := range positions {
		var fixTime, attrs any
		if !pos.FixTime.IsZero() {
			fixTime = pos.FixTime
		}
		if len(pos.Attributes) > 0 {
			attrs = string(pos.Attributes)
		}
		rows = append(rows, []any{
			pos.ID, pos.DeviceID, pos.Latitude, pos.Longitude, pos.Speed, fixTime, attrs,
		})
	}

	copied, err := r.db.CopyFrom(ctx, pgx.Identifier{"positions"}, positionColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("failed to archive positions: %w", err)
	}

	r.log.DebugContext(ctx, "Positions archived", "rows", copied)

	return copied, nil
}

// RecentPositions returns the newest archived positions of a device, newest first.
func (r *Repository) RecentPositions(ctx context.Context, deviceID int64, limit int) ([]models.Position, error) {
	query := `
		SELECT position_id, device_id, latitude, longitude, COALESCE(speed, 0), COALESCE(fix_time, archived_at), COALESCE(attributes::text, '')
		FROM positions
		WHERE device_id = $1
		ORDER BY fix_time DESC NULLS LAST, id DESC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var (
			pos   models.Position
			attrs string
		)
		if errScan := rows.Scan(
			&pos.ID, &pos.DeviceID, &pos.Latitude, &pos.Longitude, &pos.Speed, &pos.FixTime, &attrs,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan position: %w", errScan)
		}
		if attrs != "" {
			pos.Attributes = []byte(attrs)
		}
		positions = append(positions, pos)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return positions, nil
}
