package database

import (
	"context"
	"database/sql"
	"strings"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Open returns a sqlite handle with foreign keys on and a busy timeout,
// so concurrent handlers queue on the write lock instead of erroring.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	// An in-memory database exists per connection; keep a single one so
	// every query sees the same schema.
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrapf(err, "ping %s", path)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		is_driver INTEGER NOT NULL DEFAULT 1,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		driver_id INTEGER NOT NULL REFERENCES users(id),
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		current_location TEXT NOT NULL DEFAULT '',
		current_coordinates TEXT NOT NULL DEFAULT '',
		pickup_location TEXT NOT NULL DEFAULT '',
		pickup_coordinates TEXT NOT NULL DEFAULT '',
		dropoff_location TEXT NOT NULL DEFAULT '',
		dropoff_coordinates TEXT NOT NULL DEFAULT '',
		current_cycle_used REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'planned',
		start_date TIMESTAMP NOT NULL,
		estimated_end_date TIMESTAMP NOT NULL,
		actual_end_date TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_driver ON trips(driver_id, status)`,
	`CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_id INTEGER NOT NULL UNIQUE REFERENCES trips(id),
		distance_miles REAL NOT NULL,
		duration_hours REAL NOT NULL,
		polyline TEXT NOT NULL,
		stops TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stops (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_id INTEGER NOT NULL REFERENCES trips(id),
		sequence INTEGER NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		duration_hours REAL NOT NULL DEFAULT 0,
		coordinates TEXT NOT NULL DEFAULT '',
		planned_arrival TIMESTAMP NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		actual_arrival TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stops_trip ON stops(trip_id, sequence)`,
	`CREATE TABLE IF NOT EXISTS eld_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_id INTEGER NOT NULL REFERENCES trips(id),
		event_type TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP,
		duration REAL NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		coordinates TEXT NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_eld_logs_trip ON eld_logs(trip_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_eld_logs_start ON eld_logs(start_time)`,
	`CREATE TABLE IF NOT EXISTS gps_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_id INTEGER NOT NULL REFERENCES trips(id),
		coordinates TEXT NOT NULL,
		speed_mph REAL NOT NULL DEFAULT 0,
		recorded_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gps_logs_trip ON gps_logs(trip_id, recorded_at)`,
}

// Migrate applies the schema. Statements are idempotent, so running it on
// every boot is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migration %d", i)
		}
	}

	return nil
}
