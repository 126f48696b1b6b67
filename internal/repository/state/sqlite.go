package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite" // Pure-Go sqlite driver.

	domain "github.com/oshokin/panic-button/internal/domain/alert"
)

// Persistence keys, one row per key in the kv table.
const (
	keyArmed     = "armed"
	keyTriggered = "triggered"
	keyVolume    = "volume"
	keyLogs      = "logs"
	keyCoords    = "coords"
)

// SQLiteRepository persists the alert snapshot as a key/value table in an
// embedded sqlite database. Values are stored in the same JSON shapes as the
// file backend, one key per row.
type SQLiteRepository struct {
	// db is the underlying database handle.
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and prepares
// the kv schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	// The driver serialises access through a single connection; more would
	// only contend on the file lock.
	db.SetMaxOpenConns(1)

	schema := `CREATE TABLE IF NOT EXISTS alert_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create state schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Load reads all persisted keys and assembles the snapshot.
func (r *SQLiteRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM alert_state`)
	if err != nil {
		return nil, fmt.Errorf("query state: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var (
		snapshot domain.Snapshot
		found    bool
	)

	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}

		found = true

		switch key {
		case keyArmed:
			snapshot.Armed = value == "true"
		case keyTriggered:
			snapshot.Triggered = value == "true"
		case keyVolume:
			volume, parseErr := strconv.ParseFloat(value, 64)
			if parseErr != nil {
				return nil, fmt.Errorf("parse volume: %w", parseErr)
			}

			snapshot.Volume = volume
		case keyLogs:
			if err = json.Unmarshal([]byte(value), &snapshot.Logs); err != nil {
				return nil, fmt.Errorf("decode logs: %w", err)
			}
		case keyCoords:
			var coord domain.Coordinate
			if err = json.Unmarshal([]byte(value), &coord); err != nil {
				return nil, fmt.Errorf("decode coords: %w", err)
			}

			snapshot.Coords = &coord
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state rows: %w", err)
	}

	if !found {
		return nil, ErrNotFound
	}

	return &snapshot, nil
}

// Save upserts every key in a single transaction. The coords key is removed
// when no coordinate is known yet.
func (r *SQLiteRepository) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return errSnapshotRequired
	}

	logs, err := json.Marshal(snapshot.Logs)
	if err != nil {
		return fmt.Errorf("encode logs: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	upsert := `INSERT INTO alert_state(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	pairs := [][2]string{
		{keyArmed, strconv.FormatBool(snapshot.Armed)},
		{keyTriggered, strconv.FormatBool(snapshot.Triggered)},
		{keyVolume, strconv.FormatFloat(snapshot.Volume, 'f', -1, 64)},
		{keyLogs, string(logs)},
	}

	for _, pair := range pairs {
		if _, err = tx.ExecContext(ctx, upsert, pair[0], pair[1]); err != nil {
			return fmt.Errorf("upsert %s: %w", pair[0], err)
		}
	}

	if snapshot.Coords != nil {
		coords, encodeErr := json.Marshal(snapshot.Coords)
		if encodeErr != nil {
			return fmt.Errorf("encode coords: %w", encodeErr)
		}

		if _, err = tx.ExecContext(ctx, upsert, keyCoords, string(coords)); err != nil {
			return fmt.Errorf("upsert coords: %w", err)
		}
	} else if _, err = tx.ExecContext(ctx, `DELETE FROM alert_state WHERE key = ?`, keyCoords); err != nil {
		return fmt.Errorf("clear coords: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit state transaction: %w", err)
	}

	return nil
}
