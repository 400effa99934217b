package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of *pgxpool.Pool used by the repository. pgxmock implements it in tests.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is the position archive contract.
type Interface interface {
	EnsureSchema(ctx context.Context) error
	SavePositions(ctx context.Context, positions []models.Position) (int64, error)
	RecentPositions(ctx context.Context, deviceID int64, limit int) ([]models.Position, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
