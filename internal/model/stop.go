package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Stop is one planned halt on a trip: pickup, break, rest, fuel or
// delivery. Completion is stamped by the driver en route.
type Stop struct {
	ID             int64      `json:"id"`
	TripID         int64      `json:"trip"`
	Sequence       int        `json:"sequence"`
	Location       string     `json:"location"`
	Reason         string     `json:"reason"`
	DurationHours  float64    `json:"duration"`
	Coordinates    string     `json:"coordinates"`
	PlannedArrival time.Time  `json:"planned_arrival"`
	Completed      bool       `json:"completed"`
	ActualArrival  *time.Time `json:"actual_arrival_time"`
}

func CreateStop(ctx context.Context, db *sql.DB, s *Stop) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO stops (trip_id, sequence, location, reason, duration_hours, coordinates,
			planned_arrival, completed, actual_arrival)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TripID, s.Sequence, s.Location, s.Reason, s.DurationHours, s.Coordinates,
		s.PlannedArrival, s.Completed, s.ActualArrival)
	if err != nil {
		return errors.Wrap(err, "insert stop")
	}

	s.ID, err = res.LastInsertId()

	return errors.Wrap(err, "stop id")
}

// GetStop loads a stop scoped to its trip, so stops of other trips read
// as missing.
func GetStop(ctx context.Context, db *sql.DB, id, tripID int64) (*Stop, error) {
	return scanStop(db.QueryRowContext(ctx,
		`SELECT id, trip_id, sequence, location, reason, duration_hours, coordinates,
			planned_arrival, completed, actual_arrival
		 FROM stops WHERE id = ? AND trip_id = ?`, id, tripID))
}

func ListStops(ctx context.Context, db *sql.DB, tripID int64) ([]*Stop, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, trip_id, sequence, location, reason, duration_hours, coordinates,
			planned_arrival, completed, actual_arrival
		 FROM stops WHERE trip_id = ? ORDER BY sequence`, tripID)
	if err != nil {
		return nil, errors.Wrap(err, "list stops")
	}
	defer rows.Close()

	stops := []*Stop{}

	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, err
		}

		stops = append(stops, s)
	}

	return stops, errors.Wrap(rows.Err(), "list stops")
}

// CompleteStop marks the stop done and stamps the arrival time.
func CompleteStop(ctx context.Context, db *sql.DB, s *Stop, at time.Time) error {
	s.Completed = true
	s.ActualArrival = &at

	_, err := db.ExecContext(ctx,
		`UPDATE stops SET completed = 1, actual_arrival = ? WHERE id = ?`, at, s.ID)

	return errors.Wrap(err, "complete stop")
}

func scanStop(row rowScanner) (*Stop, error) {
	s := &Stop{}

	var arrival sql.NullTime

	err := row.Scan(&s.ID, &s.TripID, &s.Sequence, &s.Location, &s.Reason,
		&s.DurationHours, &s.Coordinates, &s.PlannedArrival, &s.Completed, &arrival)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, errors.Wrap(err, "scan stop")
	}

	if arrival.Valid {
		s.ActualArrival = &arrival.Time
	}

	return s, nil
}
