package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/padel-insights/market-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS facilities (
	place_id     TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	address      TEXT NOT NULL,
	city         TEXT NOT NULL,
	postal_code  TEXT NOT NULL DEFAULT '',
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	rating       REAL,
	review_count INTEGER NOT NULL DEFAULT 0,
	google_url   TEXT NOT NULL DEFAULT '',
	court_type   TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	collected_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	cities     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS api_cache (
	id         TEXT PRIMARY KEY,
	cache_key  TEXT NOT NULL UNIQUE,
	data       TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_facilities_city ON facilities(city);
CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_api_cache_key ON api_cache(cache_key);
CREATE INDEX IF NOT EXISTS idx_api_cache_expires_at ON api_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertFacilities(ctx context.Context, facilities []model.Facility) (int, error) {
	if len(facilities) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	// court_type is intentionally not updated on conflict; enrichment owns
	// it and re-collection must not reset classified facilities.
	for _, f := range facilities {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO facilities (place_id, name, address, city, postal_code, latitude, longitude, rating, review_count, google_url, court_type, phone, website, collected_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(place_id) DO UPDATE SET
				name = excluded.name,
				address = excluded.address,
				city = excluded.city,
				postal_code = excluded.postal_code,
				latitude = excluded.latitude,
				longitude = excluded.longitude,
				rating = excluded.rating,
				review_count = excluded.review_count,
				google_url = excluded.google_url,
				phone = excluded.phone,
				website = excluded.website,
				collected_at = excluded.collected_at`,
			f.PlaceID, f.Name, f.Address, f.City, f.PostalCode, f.Latitude, f.Longitude,
			ratingArg(f.Rating), f.ReviewCount, f.GoogleURL, string(f.CourtType), f.Phone, f.Website, f.CollectedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert facility %s", f.PlaceID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return len(facilities), nil
}

func (s *SQLiteStore) ListFacilities(ctx context.Context, filter FacilityFilter) ([]model.Facility, error) {
	query := `SELECT place_id, name, address, city, postal_code, latitude, longitude, rating, review_count, google_url, court_type, phone, website, collected_at
	          FROM facilities WHERE 1=1`
	var args []any

	if filter.City != "" {
		query += ` AND city = ?`
		args = append(args, filter.City)
	}
	if filter.CourtType != model.CourtTypeUnknown {
		query += ` AND court_type = ?`
		args = append(args, string(filter.CourtType))
	}
	query += ` ORDER BY city, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list facilities")
	}
	defer rows.Close()

	var facilities []model.Facility
	for rows.Next() {
		var f model.Facility
		var rating sql.NullFloat64
		var courtType string
		if err := rows.Scan(&f.PlaceID, &f.Name, &f.Address, &f.City, &f.PostalCode,
			&f.Latitude, &f.Longitude, &rating, &f.ReviewCount,
			&f.GoogleURL, &courtType, &f.Phone, &f.Website, &f.CollectedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan facility")
		}
		if rating.Valid {
			r := rating.Float64
			f.Rating = &r
		}
		f.CourtType = model.CourtType(courtType)
		facilities = append(facilities, f)
	}
	return facilities, eris.Wrap(rows.Err(), "sqlite: list facilities iterate")
}

func (s *SQLiteStore) UpdateCourtType(ctx context.Context, placeID string, courtType model.CourtType) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE facilities SET court_type = ? WHERE place_id = ?`,
		string(courtType), placeID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update court type %s", placeID)
	}
	return checkRowsAffected(res, "facility", placeID)
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, cities []model.CityStats) (*Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	citiesJSON, err := json.Marshal(cities)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal snapshot cities")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, cities, created_at) VALUES (?, ?, ?)`,
		id, string(citiesJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}

	return &Snapshot{ID: id, Cities: cities, CreatedAt: now}, nil
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, cities, created_at FROM snapshots ORDER BY created_at DESC LIMIT 1`,
	)

	var snap Snapshot
	var citiesJSON string
	err := row.Scan(&snap.ID, &citiesJSON, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest snapshot")
	}
	if err := json.Unmarshal([]byte(citiesJSON), &snap.Cities); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal snapshot cities")
	}
	return &snap, nil
}

func (s *SQLiteStore) GetCachedResponse(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM api_cache WHERE cache_key = ? AND expires_at > datetime('now')
		 ORDER BY cached_at DESC LIMIT 1`,
		key,
	)

	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached response")
	}
	return []byte(data), nil
}

func (s *SQLiteStore) SetCachedResponse(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	id := uuid.New().String()
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_cache (id, cache_key, data, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
			data = excluded.data,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`,
		id, key, string(data), now, expiresAt,
	)
	return eris.Wrap(err, "sqlite: set cached response")
}

func (s *SQLiteStore) DeleteExpiredResponses(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM api_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired responses")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

func ratingArg(rating *float64) any {
	if rating == nil {
		return nil
	}
	return *rating
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
