// Package sqlite archives produced assessments so the latest one per
// location can be served without replaying the sink topic.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/couchcryptid/lagoon-weather-risk/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id          TEXT PRIMARY KEY,
	location    TEXT NOT NULL,
	target_date TEXT NOT NULL,
	alert_type  TEXT NOT NULL,
	assessed_at INTEGER NOT NULL,
	payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_location ON assessments (location, assessed_at DESC);
`

const upsertQuery = `
INSERT INTO assessments (id, location, target_date, alert_type, assessed_at, payload)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	alert_type  = excluded.alert_type,
	assessed_at = excluded.assessed_at,
	payload     = excluded.payload`

// Archive stores assessments in SQLite.
// It implements pipeline.BatchLoader.
type Archive struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the archive at path. ":memory:" gives a private
// in-memory archive.
func Open(path string, logger *slog.Logger) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// SQLite allows a single writer; an in-memory database is per connection.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Archive{db: db, logger: logger}, nil
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init archive schema: %w", err)
	}
	return nil
}

// LoadBatch upserts a batch of assessments in one transaction. Replayed
// assessments share an ID and overwrite the previous row.
func (a *Archive) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return fmt.Errorf("archive prepare: %w", err)
	}
	defer stmt.Close()

	for _, as := range assessments {
		payload, err := json.Marshal(as)
		if err != nil {
			return fmt.Errorf("archive %s: %w", as.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			as.ID, as.Location, as.TargetDate, as.AlertTypeOf(), as.AssessedAt.UnixNano(), string(payload),
		); err != nil {
			return fmt.Errorf("archive %s: %w", as.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive commit: %w", err)
	}
	a.logger.Debug("assessments archived", "batch_size", len(assessments))
	return nil
}

// Latest returns the most recently assessed entry for a location, or
// domain.ErrNotFound.
func (a *Archive) Latest(ctx context.Context, location string) (domain.Assessment, error) {
	var payload string
	err := a.db.QueryRowContext(ctx,
		`SELECT payload FROM assessments WHERE location = ? ORDER BY assessed_at DESC LIMIT 1`,
		location,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Assessment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("query latest assessment: %w", err)
	}

	var out domain.Assessment
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return domain.Assessment{}, fmt.Errorf("decode archived assessment: %w", err)
	}
	return out, nil
}

// Count returns the number of archived assessments.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return n, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}
