// Package trips is the HTTP surface for trip planning and tracking:
// creation with route planning, lifecycle transitions, ELD and GPS
// logging, stop completion and the daily log sheet.
package trips

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spotterai/spotter/internal/auth"
	"github.com/spotterai/spotter/internal/errresponse"
	"github.com/spotterai/spotter/internal/model"
	"github.com/spotterai/spotter/internal/routing"
)

// Resource bundles what the trip endpoints need.
type Resource struct {
	DB      *sql.DB
	Planner *routing.Planner
	Log     *zap.SugaredLogger
}

// Routes mounts the trip resource. Everything here is driver-scoped.
func (rs *Resource) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", rs.CreateTrip)
	r.Get("/", rs.ListTrips)

	r.Route("/{tripID}", func(r chi.Router) {
		r.Use(rs.TripCtx) // Load the *Trip on the request context
		r.Get("/", rs.GetTrip)
		r.Put("/", rs.UpdateTrip)
		r.Post("/start", rs.StartTrip)
		r.Post("/log-eld", rs.LogELD)
		r.Post("/log-gps", rs.LogGPS)
		r.Post("/complete-stop/{stopID}", rs.CompleteStop)
		r.Get("/logs/{date}", rs.DailyLogs)
		r.Post("/change-status", rs.ChangeStatus)
	})

	return r
}

// CreateTrip persists the posted trip and plans its route. Planning is
// best-effort: a failed ORS call still creates the trip, the response
// just carries no route.
func (rs *Resource) CreateTrip(w http.ResponseWriter, r *http.Request) {
	data := &TripRequest{}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	claims := auth.ClaimsFromContext(r.Context())

	trip := data.Trip
	trip.DriverID = claims.UID
	trip.Status = model.TripPlanned

	if err := model.CreateTrip(r.Context(), rs.DB, trip); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	resp := NewTripResponse(trip)

	route, err := rs.Planner.PlanTrip(r.Context(), trip)
	if err != nil {
		rs.Log.Warnw("route planning failed", "trip", trip.ID, "err", err)
	} else {
		resp.Route = route
	}

	render.Status(r, http.StatusCreated)

	err = render.Render(w, r, resp)
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// ListTrips returns the caller's trips, optionally filtered by ?status=.
func (rs *Resource) ListTrips(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	trips, err := model.ListTrips(r.Context(), rs.DB, claims.UID, r.URL.Query().Get("status"))
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	if err := render.RenderList(w, r, NewTripListResponse(trips)); err != nil {
		err = render.Render(w, r, errresponse.ErrRender(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}
}

// GetTrip returns the trip with its route, stops and log sheet attached.
func (rs *Resource) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())
	resp := NewTripResponse(trip)

	if route, err := model.GetRouteByTrip(r.Context(), rs.DB, trip.ID); err == nil {
		resp.Route = route
	} else if !errors.Is(err, model.ErrNotFound) {
		rs.Log.Errorw("load route", "trip", trip.ID, "err", err)
	}

	stops, err := model.ListStops(r.Context(), rs.DB, trip.ID)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	logs, err := model.ListELDLogs(r.Context(), rs.DB, trip.ID)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	resp.Stops = stops
	resp.ELDLogs = logs

	if err := render.Render(w, r, resp); err != nil {
		err = render.Render(w, r, errresponse.ErrRender(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}
}

// UpdateTrip updates an existing trip. A transition to completed stamps
// the actual end date.
func (rs *Resource) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())
	wasCompleted := trip.Status == model.TripCompleted

	data := &TripRequest{Trip: trip}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	trip = data.Trip

	if trip.Status == model.TripCompleted && !wasCompleted {
		now := time.Now().UTC()
		trip.ActualEndDate = &now
	}

	if err := model.UpdateTrip(r.Context(), rs.DB, trip); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	err := render.Render(w, r, NewTripResponse(trip))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// StartTrip moves a planned trip to in_progress and opens the 1-hour
// on-duty pickup log entry.
func (rs *Resource) StartTrip(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())

	if trip.Status != model.TripPlanned {
		err := render.Render(w, r, errresponse.ErrInvalidRequest(errors.New("only planned trips can be started")))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	now := time.Now().UTC()
	trip.Status = model.TripInProgress
	trip.StartDate = now

	if err := model.UpdateTrip(r.Context(), rs.DB, trip); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	entry := &model.ELDLog{
		TripID:      trip.ID,
		EventType:   model.EventOnDuty,
		StartTime:   now,
		Duration:    1.0, // pickup service time
		Location:    trip.PickupLocation,
		Coordinates: trip.PickupCoordinates,
	}

	if err := model.CreateELDLog(r.Context(), rs.DB, entry); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	err := render.Render(w, r, NewTripResponse(trip))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// LogELD appends a validated ELD entry to an in-progress trip.
func (rs *Resource) LogELD(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())

	if trip.Status != model.TripInProgress {
		err := render.Render(w, r, errresponse.ErrInvalidRequest(errors.New("trip must be in progress to log ELD events")))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	data := &ELDLogRequest{}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	entry := data.ELDLog
	entry.TripID = trip.ID

	if err := model.CreateELDLog(r.Context(), rs.DB, entry); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	render.Status(r, http.StatusCreated)

	err := render.Render(w, r, NewELDLogResponse(entry))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// LogGPS appends a position report to an in-progress trip.
func (rs *Resource) LogGPS(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())

	if trip.Status != model.TripInProgress {
		err := render.Render(w, r, errresponse.ErrInvalidRequest(errors.New("trip must be in progress to log GPS data")))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	data := &GPSLogRequest{}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	point := data.GPSLog
	point.TripID = trip.ID

	if err := model.CreateGPSLog(r.Context(), rs.DB, point); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	render.Status(r, http.StatusCreated)

	err := render.Render(w, r, NewGPSLogResponse(point))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// CompleteStop marks a planned stop as reached.
func (rs *Resource) CompleteStop(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "stopID"), 10, 64)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrNotFound)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	stop, err := model.GetStop(r.Context(), rs.DB, id, trip.ID)
	if err != nil {
		err = render.Render(w, r, errresponse.ErrNotFound)
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	if err := model.CompleteStop(r.Context(), rs.DB, stop, time.Now().UTC()); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	err = render.Render(w, r, NewStopResponse(stop))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}

// DailyLogs returns the trip's log sheet for one YYYY-MM-DD day.
func (rs *Resource) DailyLogs(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())

	day, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(errors.New("invalid date format, use YYYY-MM-DD")))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	logs, err := model.ListELDLogsForDay(r.Context(), rs.DB, trip.ID, day, day.Add(24*time.Hour))
	if err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	if err := render.RenderList(w, r, NewELDLogListResponse(logs)); err != nil {
		err = render.Render(w, r, errresponse.ErrRender(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}
}

// ChangeStatus closes the driver's open duty-status entry and opens a
// new one, updating the trip's current position along the way.
func (rs *Resource) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	trip := TripFromContext(r.Context())

	if trip.Status != model.TripInProgress {
		err := render.Render(w, r, errresponse.ErrInvalidRequest(errors.New("trip must be in progress to change ELD status")))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	data := &ChangeStatusRequest{}
	if err := render.Bind(r, data); err != nil {
		err = render.Render(w, r, errresponse.ErrInvalidRequest(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	location := data.Location
	if location == "" {
		location = trip.CurrentLocation
	}

	coordinates := data.Coordinates
	if coordinates == "" {
		coordinates = trip.CurrentCoordinates
	}

	now := time.Now().UTC()

	latest, err := model.LatestELDLog(r.Context(), rs.DB, trip.ID)

	switch {
	case errors.Is(err, model.ErrNotFound):
		// First entry on this trip; nothing to close.
	case err != nil:
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	case latest.EventType == data.NewStatus:
		err = render.Render(w, r, &MessageResponse{Message: "Status is already '" + data.NewStatus + "'."})
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	case latest.EndTime == nil:
		if err := model.CloseELDLog(r.Context(), rs.DB, latest, now); err != nil {
			err = render.Render(w, r, errresponse.ErrInternal(err))
			if err != nil {
				rs.Log.Errorw(err.Error())
			}

			return
		}
	default:
		rs.Log.Warnw("latest log already closed", "trip", trip.ID, "log", latest.ID)
	}

	entry := &model.ELDLog{
		TripID:      trip.ID,
		EventType:   data.NewStatus,
		StartTime:   now,
		Location:    location,
		Coordinates: coordinates,
		Remarks:     data.Remarks,
	}

	if err := model.CreateELDLog(r.Context(), rs.DB, entry); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	trip.CurrentLocation = location
	trip.CurrentCoordinates = coordinates

	if err := model.UpdateTrip(r.Context(), rs.DB, trip); err != nil {
		err = render.Render(w, r, errresponse.ErrInternal(err))
		if err != nil {
			rs.Log.Errorw(err.Error())
		}

		return
	}

	render.Status(r, http.StatusCreated)

	err = render.Render(w, r, NewELDLogResponse(entry))
	if err != nil {
		rs.Log.Errorw(err.Error())
	}
}
