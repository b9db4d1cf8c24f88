package hos

import "fmt"

// PlannedStop is one required halt along a route. Coordinates is a
// [lon,lat] point taken from the route geometry; ElapsedHours is trip
// time at which the stop begins, counted from departure.
type PlannedStop struct {
	Location     string    `json:"location"`
	Reason       string    `json:"reason"`
	Duration     float64   `json:"duration"`
	Coordinates  []float64 `json:"coordinates"`
	ElapsedHours float64   `json:"elapsed_time"`
}

// PlanStops simulates the trip and returns the stops the rules require,
// in order: the pickup, then driving segments cut at whichever limit
// binds first, with breaks, rests and fuel stops inserted, and finally
// the drop-off.
//
// distance is total trip miles, duration estimated driving hours (driving
// only), cycleUsed the hours already burned in the current cycle, and
// coords the route geometry as [lon,lat] points.
func (r Rules) PlanStops(distance, duration, cycleUsed float64, coords [][]float64) []PlannedStop {
	stops := []PlannedStop{}

	avgSpeed := 65.0 // mph fallback
	if duration > 0 {
		avgSpeed = distance / duration
	}

	remaining := distance
	elapsed := 0.0
	drivingInShift := 0.0
	drivingSinceBreak := 0.0
	dutyWindow := 0.0
	cycleHours := cycleUsed
	posIndex := 0

	stops = append(stops, PlannedStop{
		Location:     "Pickup Point",
		Reason:       ReasonPickup,
		Duration:     r.PickupDuration,
		Coordinates:  coordAt(coords, 0),
		ElapsedHours: elapsed,
	})
	elapsed += r.PickupDuration
	dutyWindow += r.PickupDuration
	cycleHours += r.PickupDuration

	// A forced stop normally unblocks the next segment. The one limit a
	// rest cannot relieve is the cycle; two forced stops in a row mean no
	// progress is possible and the plan ends at the delivery.
	prevForced := false

	for remaining > 0 {
		// Distance drivable before each limit binds.
		maxDist := minFloat(
			remaining,
			(r.MaxDrivingPerShift-drivingInShift)*avgSpeed,
			(r.MaxDutyWindow-dutyWindow)*avgSpeed,
			(r.DrivingBeforeBreak-drivingSinceBreak)*avgSpeed,
			(r.CycleLimit-cycleHours)*avgSpeed,
			r.FuelInterval,
		)

		if maxDist <= 0 {
			if prevForced {
				break
			}

			// A limit is already binding; force the matching stop and
			// re-evaluate.
			var reason string
			var stopDuration float64
			var resetShift bool

			switch {
			case drivingInShift >= r.MaxDrivingPerShift || dutyWindow >= r.MaxDutyWindow || cycleHours >= r.CycleLimit:
				reason = ReasonRest
				stopDuration = r.RestDuration
				resetShift = true
			case drivingSinceBreak >= r.DrivingBeforeBreak:
				reason = ReasonBreak
				stopDuration = r.BreakDuration
			default:
				// Numerically cornered with no limit hit; take a
				// minimal pause rather than spin.
				reason = ReasonBreak
				stopDuration = 0.1
			}

			stops = append(stops, PlannedStop{
				Location:     fmt.Sprintf("Stop Location (%s)", reason),
				Reason:       reason,
				Duration:     stopDuration,
				Coordinates:  coordAt(coords, posIndex),
				ElapsedHours: elapsed,
			})

			elapsed += stopDuration
			drivingSinceBreak = 0

			if resetShift {
				drivingInShift = 0
				dutyWindow = 0
			}

			prevForced = true

			continue
		}

		prevForced = false

		segTime := maxDist / avgSpeed
		drivingInShift += segTime
		drivingSinceBreak += segTime
		dutyWindow += segTime
		cycleHours += segTime
		elapsed += segTime
		remaining -= maxDist

		if distance > 0 {
			posIndex += int(maxDist / distance * float64(len(coords)))
			if posIndex > len(coords)-1 {
				posIndex = len(coords) - 1
			}
		}

		var reason string
		var stopDuration float64
		var resetShift, fueling bool

		switch {
		case drivingInShift >= r.MaxDrivingPerShift || dutyWindow >= r.MaxDutyWindow || cycleHours >= r.CycleLimit:
			reason = ReasonRest
			stopDuration = r.RestDuration
			resetShift = true
		case drivingSinceBreak >= r.DrivingBeforeBreak:
			reason = ReasonBreak
			stopDuration = r.BreakDuration
		case maxDist >= r.FuelInterval && remaining > 0:
			reason = ReasonFueling
			stopDuration = r.FuelDuration
			fueling = true
		}

		if reason == "" {
			continue
		}

		stops = append(stops, PlannedStop{
			Location:     fmt.Sprintf("Stop Location (%s)", reason),
			Reason:       reason,
			Duration:     stopDuration,
			Coordinates:  coordAt(coords, posIndex),
			ElapsedHours: elapsed,
		})

		elapsed += stopDuration

		if fueling {
			// Fueling is on-duty time; it burns window and cycle.
			dutyWindow += stopDuration
			cycleHours += stopDuration
		}

		drivingSinceBreak = 0

		if resetShift {
			drivingInShift = 0
			dutyWindow = 0
		}
	}

	stops = append(stops, PlannedStop{
		Location:     "Dropoff Point",
		Reason:       ReasonDelivery,
		Duration:     r.DropoffDuration,
		Coordinates:  coordAt(coords, len(coords)-1),
		ElapsedHours: elapsed,
	})

	return stops
}

func coordAt(coords [][]float64, i int) []float64 {
	if len(coords) == 0 {
		return nil
	}

	if i < 0 {
		i = 0
	}

	if i > len(coords)-1 {
		i = len(coords) - 1
	}

	return coords[i]
}

func minFloat(first float64, rest ...float64) float64 {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}

	return m
}
