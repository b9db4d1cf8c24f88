package hos

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuildLogTimeline(t *testing.T) {
	r := require.New(t)

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	stops := []PlannedStop{
		{Location: "Pickup Point", Reason: ReasonPickup, Duration: 1.0, Coordinates: []float64{-74, 40.5}, ElapsedHours: 0},
		{Location: "Stop Location (30-Minute Break)", Reason: ReasonBreak, Duration: 0.5, Coordinates: []float64{-80, 41}, ElapsedHours: 9},
		{Location: "Dropoff Point", Reason: ReasonDelivery, Duration: 1.0, Coordinates: []float64{-87.6, 41.8}, ElapsedHours: 9.5},
	}

	entries := BuildLogTimeline(start, stops)

	want := []TimelineEntry{
		{
			EventType:   EventOnDuty,
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
			Duration:    1.0,
			Location:    "Pickup Point",
			Coordinates: "40.5,-74",
		},
		{
			EventType: EventDriving,
			StartTime: start.Add(time.Hour),
			EndTime:   start.Add(9 * time.Hour),
			Duration:  8.0,
			Location:  "En Route",
		},
		{
			EventType:   EventOffDuty,
			StartTime:   start.Add(9 * time.Hour),
			EndTime:     start.Add(9*time.Hour + 30*time.Minute),
			Duration:    0.5,
			Location:    "Stop Location (30-Minute Break)",
			Coordinates: "41,-80",
		},
		{
			EventType:   EventOnDuty,
			StartTime:   start.Add(9*time.Hour + 30*time.Minute),
			EndTime:     start.Add(10*time.Hour + 30*time.Minute),
			Duration:    1.0,
			Location:    "Dropoff Point",
			Coordinates: "41.8,-87.6",
		},
	}

	r.Empty(cmp.Diff(want, entries))
}

func TestBuildLogTimelineContiguous(t *testing.T) {
	r := require.New(t)

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	stops := PropertyCarrying().PlanStops(1300, 20, 0, [][]float64{{0, 0}, {1, 1}})
	entries := BuildLogTimeline(start, stops)

	r.NotEmpty(entries)
	r.Equal(EventOnDuty, entries[0].EventType)

	for i := 1; i < len(entries); i++ {
		r.True(entries[i].StartTime.Equal(entries[i-1].EndTime),
			"entry %d must start when the previous one ends", i)
	}
}

func TestBuildLogTimelineFuelingIsOnDuty(t *testing.T) {
	r := require.New(t)

	entries := BuildLogTimeline(time.Now(), []PlannedStop{
		{Reason: ReasonFueling, Duration: 0.5, ElapsedHours: 0},
	})

	r.Len(entries, 1)
	r.Equal(EventOnDuty, entries[0].EventType)
}
