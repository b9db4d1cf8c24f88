package trips

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/spotterai/spotter/internal/model"
	"github.com/spotterai/spotter/internal/routing"
)

// TripRequest is the request payload for creating or updating a trip.
type TripRequest struct {
	*model.Trip

	// override read-only fields so clients cannot set them
	ProtectedID     int64      `json:"id"`
	ProtectedDriver int64      `json:"driver"`
	ProtectedEnd    *time.Time `json:"actual_end_date"`
}

func (p *TripRequest) Bind(r *http.Request) error {
	if p.Trip == nil {
		return errors.New("missing required trip fields")
	}

	if p.PickupCoordinates == "" || p.DropoffCoordinates == "" {
		return errors.New("pickup and dropoff coordinates are required")
	}

	if _, _, err := routing.ParseLatLon(p.PickupCoordinates); err != nil {
		return err
	}

	if _, _, err := routing.ParseLatLon(p.DropoffCoordinates); err != nil {
		return err
	}

	if p.CurrentCycleUsed < 0 || p.CurrentCycleUsed > 70 {
		return errors.New("current_cycle_used must be between 0 and 70")
	}

	if p.Status != "" && p.Status != model.TripPlanned && p.Status != model.TripInProgress && p.Status != model.TripCompleted {
		return errors.Errorf("invalid status %q", p.Status)
	}

	p.ProtectedID = 0
	p.ProtectedDriver = 0
	p.ProtectedEnd = nil

	return nil
}

// TripResponse is the response payload for a trip. Route is attached on
// creation when planning succeeded; stops and logs on detail reads.
type TripResponse struct {
	*model.Trip

	Route    *model.Route    `json:"route,omitempty"`
	Stops    []*model.Stop   `json:"stops,omitempty"`
	ELDLogs  []*model.ELDLog `json:"eld_logs,omitempty"`
	HasRoute bool            `json:"has_route"`
}

func NewTripResponse(t *model.Trip) *TripResponse {
	return &TripResponse{Trip: t}
}

func (p *TripResponse) Render(w http.ResponseWriter, r *http.Request) error {
	p.HasRoute = p.Route != nil

	return nil
}

func NewTripListResponse(trips []*model.Trip) []render.Renderer {
	list := []render.Renderer{}
	for _, t := range trips {
		list = append(list, NewTripResponse(t))
	}

	return list
}

// ELDLogRequest is the request payload for a manually logged ELD event.
type ELDLogRequest struct {
	*model.ELDLog

	ProtectedID int64 `json:"id"`
}

func (p *ELDLogRequest) Bind(r *http.Request) error {
	if p.ELDLog == nil {
		return errors.New("missing required log fields")
	}

	if !model.ValidEventType(p.EventType) {
		return errors.Errorf("invalid event_type %q", p.EventType)
	}

	if p.StartTime.IsZero() {
		return errors.New("start_time is required")
	}

	if p.EndTime != nil && !p.EndTime.After(p.StartTime) {
		return errors.New("end_time must be after start_time")
	}

	if p.EndTime != nil && p.Duration == 0 {
		p.Duration = p.EndTime.Sub(p.StartTime).Hours()
	}

	p.ProtectedID = 0

	return nil
}

type ELDLogResponse struct {
	*model.ELDLog
}

func NewELDLogResponse(l *model.ELDLog) *ELDLogResponse {
	return &ELDLogResponse{ELDLog: l}
}

func (p *ELDLogResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func NewELDLogListResponse(logs []*model.ELDLog) []render.Renderer {
	list := []render.Renderer{}
	for _, l := range logs {
		list = append(list, NewELDLogResponse(l))
	}

	return list
}

// GPSLogRequest is the request payload for a position report.
type GPSLogRequest struct {
	*model.GPSLog

	ProtectedID int64 `json:"id"`
}

func (p *GPSLogRequest) Bind(r *http.Request) error {
	if p.GPSLog == nil {
		return errors.New("missing required log fields")
	}

	if p.Coordinates == "" {
		return errors.New("coordinates are required")
	}

	if _, _, err := routing.ParseLatLon(p.Coordinates); err != nil {
		return err
	}

	if p.SpeedMPH < 0 {
		return errors.New("speed must not be negative")
	}

	p.ProtectedID = 0

	return nil
}

type GPSLogResponse struct {
	*model.GPSLog
}

func NewGPSLogResponse(g *model.GPSLog) *GPSLogResponse {
	return &GPSLogResponse{GPSLog: g}
}

func (p *GPSLogResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type StopResponse struct {
	*model.Stop
}

func NewStopResponse(s *model.Stop) *StopResponse {
	return &StopResponse{Stop: s}
}

func (p *StopResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// ChangeStatusRequest asks for a duty-status change on the active trip.
type ChangeStatusRequest struct {
	NewStatus   string `json:"new_status"`
	Location    string `json:"location"`
	Coordinates string `json:"coordinates"`
	Remarks     string `json:"remarks"`
}

func (p *ChangeStatusRequest) Bind(r *http.Request) error {
	if !model.ValidEventType(p.NewStatus) {
		return errors.Errorf("invalid status %q: choose from driving, on_duty, off_duty, sleeper_berth", p.NewStatus)
	}

	return nil
}

// MessageResponse is a plain informational message.
type MessageResponse struct {
	Message string `json:"message"`
}

func (p *MessageResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
