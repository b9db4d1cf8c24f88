// Package hos implements the FMCSA Hours-of-Service rules for
// property-carrying drivers: stop planning along a route, conversion of a
// stop plan into an ELD log timeline, and the compliance status
// calculator. The package is pure computation; callers feed it route and
// log data and persist the results themselves.
package hos

// Rules is the HOS rule set the planner and calculator enforce.
type Rules struct {
	MaxDrivingPerShift float64 // hours of driving within one shift
	MaxDutyWindow      float64 // hours of the on-duty window
	DrivingBeforeBreak float64 // hours of driving before a mandatory break
	BreakDuration      float64 // hours, the mandatory break
	RestDuration       float64 // hours, off duty between shifts
	CycleLimit         float64 // on-duty hours in the rolling cycle
	CycleDays          int     // days in the rolling cycle
	FuelInterval       float64 // miles between fuel stops
	FuelDuration       float64 // hours per fuel stop
	PickupDuration     float64 // hours of on-duty time at pickup
	DropoffDuration    float64 // hours of on-duty time at drop-off
}

// PropertyCarrying returns the rule set for property-carrying drivers:
// 11h driving inside a 14h window, a 30-minute break after 8h of driving,
// 10h rest between shifts, and the 70-hour/8-day cycle. Fuel every 1000
// miles and one hour each for pickup and drop-off are operating
// assumptions, not regulation.
func PropertyCarrying() Rules {
	return Rules{
		MaxDrivingPerShift: 11,
		MaxDutyWindow:      14,
		DrivingBeforeBreak: 8,
		BreakDuration:      0.5,
		RestDuration:       10,
		CycleLimit:         70,
		CycleDays:          8,
		FuelInterval:       1000,
		FuelDuration:       0.5,
		PickupDuration:     1.0,
		DropoffDuration:    1.0,
	}
}

// Stop reasons produced by the planner.
const (
	ReasonPickup   = "Pickup"
	ReasonDelivery = "Delivery"
	ReasonFueling  = "Fueling"
	ReasonBreak    = "30-Minute Break"
	ReasonRest     = "10-Hour Rest Period"
)
