package hos

import (
	"math"
	"time"
)

// Entry is the slice of an ELD log the calculator needs. A nil End means
// the entry is still open at the time of the check.
type Entry struct {
	EventType string
	Start     time.Time
	End       *time.Time
}

// Status is the compliance picture for a driver at CheckTime. Hour values
// are rounded to two decimals; remaining values never go below zero.
type Status struct {
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

// ComputeStatus calculates the driver's HOS status at checkTime from the
// driver's log entries. Entries must be sorted ascending by start time
// and contain only entries starting before checkTime.
func (r Rules) ComputeStatus(entries []Entry, checkTime time.Time) Status {
	cycleStart := checkTime.Add(-time.Duration(r.CycleDays) * 24 * time.Hour)

	// 70-hour/8-day cycle: on-duty time inside the lookback window.
	var cycleOnDuty time.Duration

	for _, e := range entries {
		if e.EventType != EventDriving && e.EventType != EventOnDuty {
			continue
		}

		if e.Start.Before(cycleStart) {
			continue
		}

		effStart := maxTime(e.Start, cycleStart)
		effEnd := clipEnd(e.End, checkTime)

		if effEnd.After(effStart) {
			cycleOnDuty += effEnd.Sub(effStart)
		}
	}

	cycleTotal := cycleOnDuty.Hours()

	// Shift start: scan backwards accumulating off-duty time until a
	// qualifying 10-hour rest is found; duty time resets the accumulator.
	var shiftStart time.Time

	accumOff := time.Duration(0)
	prevStart := checkTime

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		logEnd := clipEnd(e.End, prevStart)

		if e.EventType == EventOffDuty || e.EventType == EventSleeperBerth {
			accumOff += logEnd.Sub(e.Start)
			if accumOff >= hours(r.RestDuration) {
				shiftStart = logEnd

				break
			}
		} else {
			accumOff = 0
		}

		prevStart = e.Start

		if !e.Start.After(cycleStart) {
			// No qualifying rest inside the window; treat the window
			// edge as the shift start.
			shiftStart = cycleStart

			break
		}
	}

	var drivingInShift, windowElapsed float64

	if shiftStart.IsZero() {
		// No usable history; a fresh shift is available.
		shiftStart = checkTime
	} else {
		var driving time.Duration

		for _, e := range entries {
			if e.Start.Before(shiftStart) {
				continue
			}

			if e.EventType == EventDriving {
				if effEnd := clipEnd(e.End, checkTime); effEnd.After(e.Start) {
					driving += effEnd.Sub(e.Start)
				}
			}
		}

		drivingInShift = driving.Hours()
		windowElapsed = checkTime.Sub(shiftStart).Hours()
	}

	// Last qualifying 30-minute break within the shift.
	lastBreakEnd := shiftStart
	accumBreak := time.Duration(0)
	prevStart = checkTime

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Start.Before(shiftStart) {
			break
		}

		logEnd := clipEnd(e.End, prevStart)

		if e.EventType == EventOffDuty || e.EventType == EventSleeperBerth {
			accumBreak += logEnd.Sub(e.Start)
			if accumBreak >= hours(r.BreakDuration) {
				lastBreakEnd = logEnd

				break
			}
		} else {
			accumBreak = 0
		}

		prevStart = e.Start
	}

	var drivingSinceBreak time.Duration

	for _, e := range entries {
		if e.EventType != EventDriving || e.Start.Before(lastBreakEnd) {
			continue
		}

		if effEnd := clipEnd(e.End, checkTime); effEnd.After(e.Start) {
			drivingSinceBreak += effEnd.Sub(e.Start)
		}
	}

	drivingSinceBreakHours := drivingSinceBreak.Hours()

	// Today's totals.
	todayStart := time.Date(checkTime.Year(), checkTime.Month(), checkTime.Day(), 0, 0, 0, 0, checkTime.Location())

	var onDutyToday, drivingToday time.Duration

	for _, e := range entries {
		if e.End != nil && !e.End.After(todayStart) {
			continue
		}

		if e.EventType != EventDriving && e.EventType != EventOnDuty {
			continue
		}

		effStart := maxTime(e.Start, todayStart)
		effEnd := clipEnd(e.End, checkTime)

		if effEnd.After(effStart) {
			onDutyToday += effEnd.Sub(effStart)
			if e.EventType == EventDriving {
				drivingToday += effEnd.Sub(effStart)
			}
		}
	}

	s := Status{
		RemainingDrivingHours:      round2(clampZero(r.MaxDrivingPerShift - drivingInShift)),
		RemainingDutyWindowHours:   round2(clampZero(r.MaxDutyWindow - windowElapsed)),
		RemainingCycleHours:        round2(clampZero(r.CycleLimit - cycleTotal)),
		TimeUntilBreakRequired:     round2(clampZero(r.DrivingBeforeBreak - drivingSinceBreakHours)),
		OnDutyToday:                round2(onDutyToday.Hours()),
		DrivingToday:               round2(drivingToday.Hours()),
		CycleTotalHours:            round2(cycleTotal),
		ShiftStartTime:             shiftStart,
		DrivingInShiftHours:        round2(drivingInShift),
		DutyWindowElapsedHours:     round2(windowElapsed),
		DrivingSinceLastBreakHours: round2(drivingSinceBreakHours),
		CheckTime:                  checkTime,
		Violations:                 []string{},
	}

	if s.RemainingDrivingHours <= 0 {
		s.Violations = append(s.Violations, "Driving limit reached or exceeded.")
	}

	if s.RemainingDutyWindowHours <= 0 {
		s.Violations = append(s.Violations, "Duty window limit reached or exceeded.")
	}

	if s.RemainingCycleHours <= 0 {
		s.Violations = append(s.Violations, "Cycle limit reached or exceeded.")
	}

	if s.TimeUntilBreakRequired <= 0 && drivingSinceBreakHours > 0 {
		if last := latestEntry(entries); last != nil && last.EventType == EventDriving && last.End == nil {
			s.Violations = append(s.Violations, "Mandatory break required, currently driving.")
		} else {
			s.Violations = append(s.Violations, "Mandatory break required.")
		}
	}

	return s
}

func latestEntry(entries []Entry) *Entry {
	if len(entries) == 0 {
		return nil
	}

	return &entries[len(entries)-1]
}

func clipEnd(end *time.Time, at time.Time) time.Time {
	if end != nil && end.Before(at) {
		return *end
	}

	return at
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}

	return b
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}

	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
