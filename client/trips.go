package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Trip mirrors the API's trip payload.
type Trip struct {
	ID                 int64      `json:"id"`
	Driver             int64      `json:"driver"`
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

	HasRoute bool      `json:"has_route"`
	Route    *Route    `json:"route,omitempty"`
	Stops    []*Stop   `json:"stops,omitempty"`
	ELDLogs  []*ELDLog `json:"eld_logs,omitempty"`
}

type Route struct {
	ID            int64           `json:"id"`
	Trip          int64           `json:"trip"`
	DistanceMiles float64         `json:"distance"`
	DurationHours float64         `json:"duration"`
	Polyline      json.RawMessage `json:"route_polyline"`
	Stops         json.RawMessage `json:"stops"`
}

type Stop struct {
	ID             int64      `json:"id"`
	Trip           int64      `json:"trip"`
	Sequence       int        `json:"sequence"`
	Location       string     `json:"location"`
	Reason         string     `json:"reason"`
	DurationHours  float64    `json:"duration"`
	Coordinates    string     `json:"coordinates"`
	PlannedArrival time.Time  `json:"planned_arrival"`
	Completed      bool       `json:"completed"`
	ActualArrival  *time.Time `json:"actual_arrival_time"`
}

type ELDLog struct {
	ID          int64      `json:"id"`
	Trip        int64      `json:"trip"`
	EventType   string     `json:"event_type"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Duration    float64    `json:"duration"`
	Location    string     `json:"location"`
	Coordinates string     `json:"coordinates"`
	Remarks     string     `json:"remarks"`
}

type GPSLog struct {
	ID          int64     `json:"id"`
	Trip        int64     `json:"trip"`
	Coordinates string    `json:"coordinates"`
	SpeedMPH    float64   `json:"speed"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// HOSStatus is the compliance document returned by /api/hos/status.
type HOSStatus struct {
	RemainingDrivingHours      float64   `json:"remaining_driving_hours"`
	RemainingDutyWindowHours   float64   `json:"remaining_duty_window_hours"`
	RemainingCycleHours        float64   `json:"remaining_cycle_hours"`
	TimeUntilBreakRequired     float64   `json:"time_until_break_required"`
	OnDutyToday                float64   `json:"on_duty_today"`
	DrivingToday               float64   `json:"driving_today"`
	CycleTotalHours            float64   `json:"cycle_total_hours"`
	ShiftStartTime             time.Time `json:"shift_start_time"`
	DrivingInShiftHours        float64   `json:"driving_in_shift_hours"`
	DutyWindowElapsedHours     float64   `json:"duty_window_elapsed_hours"`
	DrivingSinceLastBreakHours float64   `json:"driving_since_last_break_hours"`
	CheckTime                  time.Time `json:"check_time"`
	Violations                 []string  `json:"errors"`
}

// CreateTripParams creates a trip; coordinates are "lat,lon" strings.
type CreateTripParams struct {
	Title              string  `json:"title,omitempty"`
	Description        string  `json:"description,omitempty"`
	PickupLocation     string  `json:"pickup_location,omitempty"`
	PickupCoordinates  string  `json:"pickup_coordinates"`
	DropoffLocation    string  `json:"dropoff_location,omitempty"`
	DropoffCoordinates string  `json:"dropoff_coordinates"`
	CurrentCycleUsed   float64 `json:"current_cycle_used"`
}

func (c *Client) CreateTrip(params CreateTripParams) (*Trip, error) {
	t := &Trip{}
	if err := c.call(http.MethodPost, "/api/trips", params, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Trips lists the caller's trips; status may be empty.
func (c *Client) Trips(status string) ([]*Trip, error) {
	path := "/api/trips"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	trips := []*Trip{}
	if err := c.call(http.MethodGet, path, nil, &trips); err != nil {
		return nil, err
	}

	return trips, nil
}

func (c *Client) Trip(id int64) (*Trip, error) {
	t := &Trip{}
	if err := c.call(http.MethodGet, fmt.Sprintf("/api/trips/%d", id), nil, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (c *Client) StartTrip(id int64) (*Trip, error) {
	t := &Trip{}
	if err := c.call(http.MethodPost, fmt.Sprintf("/api/trips/%d/start", id), nil, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (c *Client) LogELD(tripID int64, entry ELDLog) (*ELDLog, error) {
	out := &ELDLog{}
	if err := c.call(http.MethodPost, fmt.Sprintf("/api/trips/%d/log-eld", tripID), entry, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) LogGPS(tripID int64, point GPSLog) (*GPSLog, error) {
	out := &GPSLog{}
	if err := c.call(http.MethodPost, fmt.Sprintf("/api/trips/%d/log-gps", tripID), point, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) CompleteStop(tripID, stopID int64) (*Stop, error) {
	s := &Stop{}
	if err := c.call(http.MethodPost, fmt.Sprintf("/api/trips/%d/complete-stop/%d", tripID, stopID), nil, s); err != nil {
		return nil, err
	}

	return s, nil
}

// ChangeStatusParams asks for a duty-status change.
type ChangeStatusParams struct {
	NewStatus   string `json:"new_status"`
	Location    string `json:"location,omitempty"`
	Coordinates string `json:"coordinates,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
}

func (c *Client) ChangeStatus(tripID int64, params ChangeStatusParams) (*ELDLog, error) {
	out := &ELDLog{}
	if err := c.call(http.MethodPost, fmt.Sprintf("/api/trips/%d/change-status", tripID), params, out); err != nil {
		return nil, err
	}

	return out, nil
}

// DailyLogs fetches the trip's log sheet for a YYYY-MM-DD day.
func (c *Client) DailyLogs(tripID int64, date string) ([]*ELDLog, error) {
	logs := []*ELDLog{}
	if err := c.call(http.MethodGet, fmt.Sprintf("/api/trips/%d/logs/%s", tripID, date), nil, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (c *Client) HOSStatus() (*HOSStatus, error) {
	s := &HOSStatus{}
	if err := c.call(http.MethodGet, "/api/hos/status", nil, s); err != nil {
		return nil, err
	}

	return s, nil
}
