package hos

import (
	"fmt"
	"time"
)

// TimelineEntry is one ELD log entry derived from the stop plan.
// Coordinates is a "lat,lon" string, empty for driving segments.
type TimelineEntry struct {
	EventType   string
	StartTime   time.Time
	EndTime     time.Time
	Duration    float64
	Location    string
	Coordinates string
}

// minimum driving gap worth logging, in hours
const minDrivingGap = 0.001

// BuildLogTimeline converts a stop plan into the initial ELD log entries
// for a trip departing at start: a driving entry for each positive gap
// between stops, then the stop entry itself with its duty status.
func BuildLogTimeline(start time.Time, stops []PlannedStop) []TimelineEntry {
	entries := []TimelineEntry{}
	current := start
	lastElapsed := 0.0

	for _, stop := range stops {
		if gap := stop.ElapsedHours - lastElapsed; gap > minDrivingGap {
			end := current.Add(hours(gap))
			entries = append(entries, TimelineEntry{
				EventType: EventDriving,
				StartTime: current,
				EndTime:   end,
				Duration:  gap,
				Location:  "En Route",
			})
			current = end
		}

		end := current.Add(hours(stop.Duration))
		entries = append(entries, TimelineEntry{
			EventType:   stopEventType(stop.Reason),
			StartTime:   current,
			EndTime:     end,
			Duration:    stop.Duration,
			Location:    stop.Location,
			Coordinates: formatCoordinates(stop.Coordinates),
		})

		current = end
		lastElapsed = stop.ElapsedHours + stop.Duration
	}

	return entries
}

// Duty statuses for use in TimelineEntry and Entry values. Kept in sync
// with the tracking model's event types.
const (
	EventDriving      = "driving"
	EventOnDuty       = "on_duty"
	EventOffDuty      = "off_duty"
	EventSleeperBerth = "sleeper_berth"
)

func stopEventType(reason string) string {
	switch reason {
	case ReasonPickup, ReasonDelivery, ReasonFueling:
		return EventOnDuty
	default:
		// Breaks and rest periods; sleeper berth would need driver input.
		return EventOffDuty
	}
}

// formatCoordinates renders a [lon,lat] geometry point as the "lat,lon"
// string used everywhere else in the API.
func formatCoordinates(lonLat []float64) string {
	if len(lonLat) < 2 {
		return ""
	}

	return fmt.Sprintf("%g,%g", lonLat[1], lonLat[0])
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
