// Package store persists collected facilities, analysis snapshots, and the
// upstream API response cache behind one interface with SQLite and Postgres
// backends.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/padel-insights/market-cli/internal/model"
)

// Snapshot is one persisted analysis result: the full scored city table at a
// point in time.
type Snapshot struct {
	ID        string            `json:"id"`
	Cities    []model.CityStats `json:"cities"`
	CreatedAt time.Time         `json:"created_at"`
}

// FacilityFilter specifies criteria for listing facilities.
type FacilityFilter struct {
	City      string          `json:"city,omitempty"`
	CourtType model.CourtType `json:"court_type,omitempty"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Facilities
	UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error)
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error)
	UpdateCourtType(ctx context.Context, placeID string, courtType model.CourtType) error

	// Snapshots
	SaveSnapshot(ctx context.Context, cities []model.CityStats) (*Snapshot, error)
	LatestSnapshot(ctx context.Context) (*Snapshot, error)

	// API response cache
	GetCachedResponse(ctx context.Context, key string) ([]byte, error)
	SetCachedResponse(ctx context.Context, key string, data []byte, ttl time.Duration) error
	DeleteExpiredResponses(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the Postgres store depends on; pgxmock
// satisfies it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}
