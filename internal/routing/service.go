package routing

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spotterai/spotter/internal/hos"
	"github.com/spotterai/spotter/internal/model"
)

// Planner builds and persists the route, stop rows and initial ELD log
// timeline for a trip.
type Planner struct {
	DB    *sql.DB
	ORS   *ORSClient
	Rules hos.Rules
	Log   *zap.SugaredLogger
}

// PlanTrip fetches directions for the trip, runs the HOS stop planner
// and stores the route, its stops and the initial log sheet. Trip
// creation treats a planning failure as soft: the caller keeps the trip
// and simply has no route.
func (p *Planner) PlanTrip(ctx context.Context, trip *model.Trip) (*model.Route, error) {
	dirs, err := p.ORS.Directions(ctx, trip.PickupCoordinates, trip.DropoffCoordinates)
	if err != nil {
		return nil, errors.Wrapf(err, "directions for trip %d", trip.ID)
	}

	stops := p.Rules.PlanStops(dirs.DistanceMiles, dirs.DurationHours, trip.CurrentCycleUsed, dirs.Geometry)

	polyline, err := json.Marshal(dirs.Geometry)
	if err != nil {
		return nil, errors.Wrap(err, "marshal polyline")
	}

	stopsJSON, err := json.Marshal(stops)
	if err != nil {
		return nil, errors.Wrap(err, "marshal stops")
	}

	route := &model.Route{
		TripID:        trip.ID,
		DistanceMiles: dirs.DistanceMiles,
		DurationHours: dirs.DurationHours,
		Polyline:      polyline,
		Stops:         stopsJSON,
	}

	if err := model.CreateRoute(ctx, p.DB, route); err != nil {
		return nil, errors.Wrapf(err, "save route for trip %d", trip.ID)
	}

	if err := p.seedStops(ctx, trip, stops); err != nil {
		return nil, err
	}

	if err := p.seedLogs(ctx, trip, stops); err != nil {
		return nil, err
	}

	p.Log.Infow("planned route", "trip", trip.ID,
		"miles", route.DistanceMiles, "hours", route.DurationHours, "stops", len(stops))

	return route, nil
}

func (p *Planner) seedStops(ctx context.Context, trip *model.Trip, stops []hos.PlannedStop) error {
	for i, s := range stops {
		row := &model.Stop{
			TripID:         trip.ID,
			Sequence:       i,
			Location:       s.Location,
			Reason:         s.Reason,
			DurationHours:  s.Duration,
			Coordinates:    formatLatLon(s.Coordinates),
			PlannedArrival: trip.StartDate.Add(time.Duration(s.ElapsedHours * float64(time.Hour))),
		}

		if err := model.CreateStop(ctx, p.DB, row); err != nil {
			return errors.Wrapf(err, "seed stop %d for trip %d", i, trip.ID)
		}
	}

	return nil
}

func (p *Planner) seedLogs(ctx context.Context, trip *model.Trip, stops []hos.PlannedStop) error {
	for _, e := range hos.BuildLogTimeline(trip.StartDate, stops) {
		end := e.EndTime
		row := &model.ELDLog{
			TripID:      trip.ID,
			EventType:   e.EventType,
			StartTime:   e.StartTime,
			EndTime:     &end,
			Duration:    e.Duration,
			Location:    e.Location,
			Coordinates: e.Coordinates,
		}

		if err := model.CreateELDLog(ctx, p.DB, row); err != nil {
			return errors.Wrapf(err, "seed eld log for trip %d", trip.ID)
		}
	}

	return nil
}

// formatLatLon renders a [lon,lat] geometry point as the "lat,lon"
// string the models store.
func formatLatLon(lonLat []float64) string {
	if len(lonLat) < 2 {
		return ""
	}

	return strconv.FormatFloat(lonLat[1], 'f', -1, 64) + "," + strconv.FormatFloat(lonLat[0], 'f', -1, 64)
}
