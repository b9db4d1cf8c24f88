package hos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ts(t time.Time) *time.Time { return &t }

func TestComputeStatusNoHistory(t *testing.T) {
	r := require.New(t)
	rules := PropertyCarrying()

	check := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s := rules.ComputeStatus(nil, check)

	r.Equal(11.0, s.RemainingDrivingHours)
	r.Equal(14.0, s.RemainingDutyWindowHours)
	r.Equal(70.0, s.RemainingCycleHours)
	r.Equal(8.0, s.TimeUntilBreakRequired)
	r.Equal(0.0, s.CycleTotalHours)
	r.Empty(s.Violations)
	r.True(s.ShiftStartTime.Equal(check))
}

func TestComputeStatusMidShift(t *testing.T) {
	r := require.New(t)
	rules := PropertyCarrying()

	check := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		// 14 hours off duty ending 10 hours before the check.
		{EventType: EventOffDuty, Start: check.Add(-24 * time.Hour), End: ts(check.Add(-10 * time.Hour))},
		// Driving for the last 9 hours, still at the wheel.
		{EventType: EventDriving, Start: check.Add(-9 * time.Hour)},
	}

	s := rules.ComputeStatus(entries, check)

	r.True(s.ShiftStartTime.Equal(check.Add(-10 * time.Hour)))
	r.Equal(9.0, s.DrivingInShiftHours)
	r.Equal(10.0, s.DutyWindowElapsedHours)
	r.Equal(2.0, s.RemainingDrivingHours)
	r.Equal(4.0, s.RemainingDutyWindowHours)
	r.Equal(9.0, s.CycleTotalHours)
	r.Equal(61.0, s.RemainingCycleHours)

	// No break since the shift started 10 hours ago.
	r.Equal(9.0, s.DrivingSinceLastBreakHours)
	r.Equal(0.0, s.TimeUntilBreakRequired)
	r.Contains(s.Violations, "Mandatory break required, currently driving.")

	// The check is at noon; all 9 driving hours fall on today.
	r.Equal(9.0, s.DrivingToday)
	r.Equal(9.0, s.OnDutyToday)
}

func TestComputeStatusBreakResetsCounter(t *testing.T) {
	r := require.New(t)
	rules := PropertyCarrying()

	check := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{EventType: EventSleeperBerth, Start: check.Add(-24 * time.Hour), End: ts(check.Add(-8 * time.Hour))},
		{EventType: EventDriving, Start: check.Add(-8 * time.Hour), End: ts(check.Add(-4 * time.Hour))},
		// 30-minute break after four hours of driving.
		{EventType: EventOffDuty, Start: check.Add(-4 * time.Hour), End: ts(check.Add(-210 * time.Minute))},
		{EventType: EventDriving, Start: check.Add(-210 * time.Minute)},
	}

	s := rules.ComputeStatus(entries, check)

	r.True(s.ShiftStartTime.Equal(check.Add(-8 * time.Hour)))
	r.Equal(7.5, s.DrivingInShiftHours)
	r.Equal(3.5, s.DrivingSinceLastBreakHours)
	r.Equal(4.5, s.TimeUntilBreakRequired)
	r.Empty(s.Violations)
}

func TestComputeStatusCycleLimit(t *testing.T) {
	r := require.New(t)
	rules := PropertyCarrying()

	check := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// 70 on-duty hours spread over the last week, currently resting.
	entries := []Entry{}
	for day := 7; day >= 1; day-- {
		start := check.Add(-time.Duration(day) * 24 * time.Hour)
		entries = append(entries,
			Entry{EventType: EventOnDuty, Start: start, End: ts(start.Add(10 * time.Hour))},
			Entry{EventType: EventOffDuty, Start: start.Add(10 * time.Hour), End: ts(start.Add(24 * time.Hour))},
		)
	}

	s := rules.ComputeStatus(entries, check)

	r.Equal(70.0, s.CycleTotalHours)
	r.Equal(0.0, s.RemainingCycleHours)
	r.Contains(s.Violations, "Cycle limit reached or exceeded.")

	// The last 14h off-duty block ended the previous shift.
	r.Equal(0.0, s.DrivingInShiftHours)
}

func TestComputeStatusOpenEntryClippedAtCheckTime(t *testing.T) {
	r := require.New(t)
	rules := PropertyCarrying()

	check := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{EventType: EventOffDuty, Start: check.Add(-30 * time.Hour), End: ts(check.Add(-2 * time.Hour))},
		{EventType: EventDriving, Start: check.Add(-2 * time.Hour)},
	}

	s := rules.ComputeStatus(entries, check)

	r.Equal(2.0, s.DrivingInShiftHours)
	r.Equal(9.0, s.RemainingDrivingHours)
	r.Equal(6.0, s.TimeUntilBreakRequired)
	r.Empty(s.Violations)
}
