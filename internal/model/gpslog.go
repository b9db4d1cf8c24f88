package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// GPSLog is a raw position report from the vehicle.
type GPSLog struct {
	ID          int64     `json:"id"`
	TripID      int64     `json:"trip"`
	Coordinates string    `json:"coordinates"`
	SpeedMPH    float64   `json:"speed"`
	RecordedAt  time.Time `json:"recorded_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func CreateGPSLog(ctx context.Context, db *sql.DB, g *GPSLog) error {
	g.CreatedAt = time.Now().UTC()

	if g.RecordedAt.IsZero() {
		g.RecordedAt = g.CreatedAt
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO gps_logs (trip_id, coordinates, speed_mph, recorded_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		g.TripID, g.Coordinates, g.SpeedMPH, g.RecordedAt, g.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert gps log")
	}

	g.ID, err = res.LastInsertId()

	return errors.Wrap(err, "gps log id")
}

func ListGPSLogs(ctx context.Context, db *sql.DB, tripID int64) ([]*GPSLog, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, trip_id, coordinates, speed_mph, recorded_at, created_at
		 FROM gps_logs WHERE trip_id = ? ORDER BY recorded_at`, tripID)
	if err != nil {
		return nil, errors.Wrap(err, "list gps logs")
	}
	defer rows.Close()

	logs := []*GPSLog{}

	for rows.Next() {
		g := &GPSLog{}

		if err := rows.Scan(&g.ID, &g.TripID, &g.Coordinates, &g.SpeedMPH, &g.RecordedAt, &g.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan gps log")
		}

		logs = append(logs, g)
	}

	return logs, errors.Wrap(rows.Err(), "list gps logs")
}
