package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/padel-insights/market-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	place_id     TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	address      TEXT NOT NULL,
	city         TEXT NOT NULL,
	postal_code  TEXT NOT NULL DEFAULT '',
	latitude     DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL,
	rating       DOUBLE PRECISION,
	review_count INTEGER NOT NULL DEFAULT 0,
	google_url   TEXT NOT NULL DEFAULT '',
	court_type   TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	collected_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	cities     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS api_cache (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	cache_key  TEXT NOT NULL UNIQUE,
	data       JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facilities_city ON facilities(city);
CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_api_cache_key ON api_cache(cache_key);
CREATE INDEX IF NOT EXISTS idx_api_cache_expires_at ON api_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	for _, f := range facilities {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO facilities (place_id, name, address, city, postal_code, latitude, longitude, rating, review_count, google_url, court_type, phone, website, collected_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (place_id) DO UPDATE SET
				name = EXCLUDED.name,
				address = EXCLUDED.address,
				city = EXCLUDED.city,
				postal_code = EXCLUDED.postal_code,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				rating = EXCLUDED.rating,
				review_count = EXCLUDED.review_count,
				google_url = EXCLUDED.google_url,
				phone = EXCLUDED.phone,
				website = EXCLUDED.website,
				collected_at = EXCLUDED.collected_at`,
			f.PlaceID, f.Name, f.Address, f.City, f.PostalCode, f.Latitude, f.Longitude,
			f.Rating, f.ReviewCount, f.GoogleURL, string(f.CourtType), f.Phone, f.Website, f.CollectedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert facility %s", f.PlaceID)
		}
	}
	return len(facilities), nil
}

func (s *PostgresStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query := `SELECT place_id, name, address, city, postal_code, latitude, longitude, rating, review_count, google_url, court_type, phone, website, collected_at
	          FROM facilities WHERE true`
	args := []any{}
	argIdx := 1

	if filter.City != "" {
		query += fmt.Sprintf(` AND city = $%d`, argIdx)
		args = append(args, filter.City)
		argIdx++
	}
	if filter.CourtType != model.CourtTypeUnknown {
		query += fmt.Sprintf(` AND court_type = $%d`, argIdx)
		args = append(args, string(filter.CourtType))
		argIdx++
	}
	query += ` ORDER BY city, name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list facilities")
	}
	defer rows.Close()

	var facilities []model.Facility
	for rows.Next() {
		var f model.Facility
		var courtType string
		if err := rows.Scan(&f.PlaceID, &f.Name, &f.Address, &f.City, &f.PostalCode,
			&f.Latitude, &f.Longitude, &f.Rating, &f.ReviewCount,
			&f.GoogleURL, &courtType, &f.Phone, &f.Website, &f.CollectedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan facility")
		}
		f.CourtType = model.CourtType(courtType)
		facilities = append(facilities, f)
	}
	return facilities, eris.Wrap(rows.Err(), "postgres: list facilities iterate")
}

func (s *PostgresStore) UpdateCourtType(ctx context.Context, placeID string, courtType model.CourtType) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE facilities SET court_type = $1 WHERE place_id = $2`,
		string(courtType), placeID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update court type %s", placeID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("facility not found: %s", placeID)
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, cities []model.CityStats) (*Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	citiesJSON, err := json.Marshal(cities)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal snapshot cities")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, cities, created_at) VALUES ($1, $2, $3)`,
		id, citiesJSON, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert snapshot")
	}

	return &Snapshot{ID: id, Cities: cities, CreatedAt: now}, nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	var citiesJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, cities, created_at FROM snapshots ORDER BY created_at DESC LIMIT 1`,
	).Scan(&snap.ID, &citiesJSON, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest snapshot")
	}
	if err := json.Unmarshal(citiesJSON, &snap.Cities); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal snapshot cities")
	}
	return &snap, nil
}

func (s *PostgresStore) GetCachedResponse(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM api_cache WHERE cache_key = $1 AND expires_at > now()
		 ORDER BY cached_at DESC LIMIT 1`,
		key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached response")
	}
	return data, nil
}

func (s *PostgresStore) SetCachedResponse(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	id := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_cache (id, cache_key, data, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (cache_key) DO UPDATE SET
			data = EXCLUDED.data,
			cached_at = EXCLUDED.cached_at,
			expires_at = EXCLUDED.expires_at`,
		id, key, data, now, expiresAt,
	)
	return eris.Wrap(err, "postgres: set cached response")
}

func (s *PostgresStore) DeleteExpiredResponses(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM api_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired responses")
	}
	return int(tag.RowsAffected()), nil
}
