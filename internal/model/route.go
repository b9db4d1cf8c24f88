package model

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Route is the planned route for a trip: ORS geometry plus the HOS stop
// plan, both stored as JSON.
type Route struct {
	ID            int64           `json:"id"`
	TripID        int64           `json:"trip"`
	DistanceMiles float64         `json:"distance"`
	DurationHours float64         `json:"duration"`
	Polyline      json.RawMessage `json:"route_polyline"`
	Stops         json.RawMessage `json:"stops"`
	CreatedAt     time.Time       `json:"created_at"`
}

func CreateRoute(ctx context.Context, db *sql.DB, r *Route) error {
	r.CreatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx,
		`INSERT INTO routes (trip_id, distance_miles, duration_hours, polyline, stops, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.TripID, r.DistanceMiles, r.DurationHours, string(r.Polyline), string(r.Stops), r.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert route")
	}

	r.ID, err = res.LastInsertId()

	return errors.Wrap(err, "route id")
}

func GetRouteByTrip(ctx context.Context, db *sql.DB, tripID int64) (*Route, error) {
	r := &Route{}

	var polyline, stops string

	err := db.QueryRowContext(ctx,
		`SELECT id, trip_id, distance_miles, duration_hours, polyline, stops, created_at
		 FROM routes WHERE trip_id = ?`, tripID).
		Scan(&r.ID, &r.TripID, &r.DistanceMiles, &r.DurationHours, &polyline, &stops, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, errors.Wrap(err, "scan route")
	}

	r.Polyline = json.RawMessage(polyline)
	r.Stops = json.RawMessage(stops)

	return r, nil
}
