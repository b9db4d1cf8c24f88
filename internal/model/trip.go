package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Trip statuses. A trip moves planned -> in_progress -> completed.
const (
	TripPlanned    = "planned"
	TripInProgress = "in_progress"
	TripCompleted  = "completed"
)

// Trip data model. Coordinates are "lat,lon" strings at this boundary and
// parsed only where the math needs numbers.
type Trip struct {
	ID                 int64      `json:"id"`
	DriverID           int64      `json:"driver"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	CurrentLocation    string     `json:"current_location"`
	CurrentCoordinates string     `json:"current_coordinates"`
	PickupLocation     string     `json:"pickup_location"`
	PickupCoordinates  string     `json:"pickup_coordinates"`
	DropoffLocation    string     `json:"dropoff_location"`
	DropoffCoordinates string     `json:"dropoff_coordinates"`
	CurrentCycleUsed   float64    `json:"current_cycle_used"`
	Status             string     `json:"status"`
	StartDate          time.Time  `json:"start_date"`
	EstimatedEndDate   time.Time  `json:"estimated_end_date"`
	ActualEndDate      *time.Time `json:"actual_end_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

const tripColumns = `id, driver_id, title, description, current_location, current_coordinates,
	pickup_location, pickup_coordinates, dropoff_location, dropoff_coordinates,
	current_cycle_used, status, start_date, estimated_end_date, actual_end_date,
	created_at, updated_at`

func CreateTrip(ctx context.Context, db *sql.DB, t *Trip) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if t.Status == "" {
		t.Status = TripPlanned
	}

	if t.StartDate.IsZero() {
		t.StartDate = now
	}

	if t.EstimatedEndDate.IsZero() {
		t.EstimatedEndDate = t.StartDate
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO trips (driver_id, title, description, current_location, current_coordinates,
			pickup_location, pickup_coordinates, dropoff_location, dropoff_coordinates,
			current_cycle_used, status, start_date, estimated_end_date, actual_end_date,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.DriverID, t.Title, t.Description, t.CurrentLocation, t.CurrentCoordinates,
		t.PickupLocation, t.PickupCoordinates, t.DropoffLocation, t.DropoffCoordinates,
		t.CurrentCycleUsed, t.Status, t.StartDate, t.EstimatedEndDate, t.ActualEndDate,
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "insert trip")
	}

	t.ID, err = res.LastInsertId()

	return errors.Wrap(err, "trip id")
}

// GetTrip loads a trip scoped to its driver; trips of other drivers are
// indistinguishable from missing ones.
func GetTrip(ctx context.Context, db *sql.DB, id, driverID int64) (*Trip, error) {
	return scanTrip(db.QueryRowContext(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = ? AND driver_id = ?`, id, driverID))
}

// ListTrips returns the driver's trips, optionally filtered by status.
func ListTrips(ctx context.Context, db *sql.DB, driverID int64, status string) ([]*Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = ?`
	args := []interface{}{driverID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}

	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list trips")
	}
	defer rows.Close()

	trips := []*Trip{}

	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}

		trips = append(trips, t)
	}

	return trips, errors.Wrap(rows.Err(), "list trips")
}

// ListAllTrips is the admin view, unscoped.
func ListAllTrips(ctx context.Context, db *sql.DB) ([]*Trip, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list all trips")
	}
	defer rows.Close()

	trips := []*Trip{}

	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}

		trips = append(trips, t)
	}

	return trips, errors.Wrap(rows.Err(), "list all trips")
}

func UpdateTrip(ctx context.Context, db *sql.DB, t *Trip) error {
	t.UpdatedAt = time.Now().UTC()

	_, err := db.ExecContext(ctx,
		`UPDATE trips SET title = ?, description = ?, current_location = ?, current_coordinates = ?,
			pickup_location = ?, pickup_coordinates = ?, dropoff_location = ?, dropoff_coordinates = ?,
			current_cycle_used = ?, status = ?, start_date = ?, estimated_end_date = ?,
			actual_end_date = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, t.CurrentLocation, t.CurrentCoordinates,
		t.PickupLocation, t.PickupCoordinates, t.DropoffLocation, t.DropoffCoordinates,
		t.CurrentCycleUsed, t.Status, t.StartDate, t.EstimatedEndDate,
		t.ActualEndDate, t.UpdatedAt, t.ID)

	return errors.Wrap(err, "update trip")
}

func scanTrip(row rowScanner) (*Trip, error) {
	t := &Trip{}

	var actualEnd sql.NullTime

	err := row.Scan(&t.ID, &t.DriverID, &t.Title, &t.Description, &t.CurrentLocation,
		&t.CurrentCoordinates, &t.PickupLocation, &t.PickupCoordinates,
		&t.DropoffLocation, &t.DropoffCoordinates, &t.CurrentCycleUsed, &t.Status,
		&t.StartDate, &t.EstimatedEndDate, &actualEnd, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, errors.Wrap(err, "scan trip")
	}

	if actualEnd.Valid {
		t.ActualEndDate = &actualEnd.Time
	}

	return t, nil
}
