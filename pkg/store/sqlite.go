package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"glidecore/pkg/db"
)

// Store composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	StateStore
	FlightStore
	SourceStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Flights ---

func (s *SQLiteStore) SaveFlight(ctx context.Context, f *Flight) error {
	if f.ID == "" {
		return errors.New("store: flight without id")
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now()
	}
	query := `INSERT INTO flights (id, rules, score, distance, points, snapshot, started_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
				rules = excluded.rules, score = excluded.score, distance = excluded.distance,
				points = excluded.points, snapshot = excluded.snapshot, updated_at = excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query,
		f.ID, f.Rules, f.Score, f.Distance, f.Points, f.Snapshot,
		f.StartedAt.UTC(), f.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("save flight %s: %w", f.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetFlight(ctx context.Context, id string) (*Flight, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, rules, score, distance, points, snapshot, started_at, updated_at
		 FROM flights WHERE id = ?`, id)

	var f Flight
	err := row.Scan(&f.ID, &f.Rules, &f.Score, &f.Distance, &f.Points, &f.Snapshot, &f.StartedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get flight %s: %w", id, err)
	}
	return &f, nil
}

// ListFlights returns the most recently updated flights without their
// snapshots.
func (s *SQLiteStore) ListFlights(ctx context.Context, limit int) ([]Flight, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rules, score, distance, points, started_at, updated_at
		 FROM flights ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Flight
	for rows.Next() {
		var f Flight
		if err := rows.Scan(&f.ID, &f.Rules, &f.Score, &f.Distance, &f.Points, &f.StartedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteFlight(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM flights WHERE id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM thermal_sources WHERE flight_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Thermal sources ---

// SaveSources replaces the stored sources of a flight.
func (s *SQLiteStore) SaveSources(ctx context.Context, flightID string, sources []Source) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM thermal_sources WHERE flight_id = ?", flightID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO thermal_sources (flight_id, cell, lat, lon, ground_alt, seen_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, src := range sources {
		if _, err := stmt.ExecContext(ctx, flightID, src.Cell, src.Lat, src.Lon, src.GroundAlt, src.SeenAt); err != nil {
			return fmt.Errorf("save source %s: %w", src.Cell, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetSources(ctx context.Context, flightID string) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cell, lat, lon, ground_alt, seen_at FROM thermal_sources WHERE flight_id = ? ORDER BY seen_at`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Cell, &src.Lat, &src.Lon, &src.GroundAlt, &src.SeenAt); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
