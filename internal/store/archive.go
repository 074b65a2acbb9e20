package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/weather-station/internal/weather"
)

// Archive keeps the last good snapshot on disk so stale data survives a restart.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) the sqlite archive at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL,
		saved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Save replaces the archived snapshot.
func (a *Archive) Save(ctx context.Context, snap weather.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, data, saved_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the archived snapshot, or ErrNotFound if nothing was saved.
func (a *Archive) Load(ctx context.Context) (weather.Snapshot, error) {
	var data string
	err := a.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap weather.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return weather.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
