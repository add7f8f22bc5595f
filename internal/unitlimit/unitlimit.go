// Package unitlimit approximates the operating limits each unit had in
// historical dispatch.
//
// The recorded AVAILABILITY, INITIALMW and ramp rates are the starting
// point. Where the recorded dispatch target (TOTALCLEARED) lies outside
// them the limits are relaxed so the historical target stays feasible:
//
//  1. fast-start units outside their ramp window get the ramp rate that
//     reaches TOTALCLEARED in one interval
//  2. semi-dispatch-capped units use the offered MAXAVAIL as capacity when
//     it is below AVAILABILITY and not below TOTALCLEARED
//  3. capacity below the ramp-down floor is raised to the floor
package unitlimit

import (
	"math"
	"sort"
)

// IntervalMinutes is the dispatch interval length ramp rates are applied
// over.
const IntervalMinutes = 5.0

// intervalsPerHour converts an MW change over one interval into MW/h.
const intervalsPerHour = 60.0 / IntervalMinutes

// Condition is a unit's recorded state for one interval.
type Condition struct {
	Unit            string  `json:"unit"`
	InitialMW       float64 `json:"initial_mw"`
	Availability    float64 `json:"availability"`
	RampDownRate    float64 `json:"ramp_down_rate"`
	RampUpRate      float64 `json:"ramp_up_rate"`
	TotalCleared    float64 `json:"total_cleared"`
	DispatchMode    float64 `json:"dispatch_mode"`
	SemiDispatchCap float64 `json:"semi_dispatch_cap"`
}

// FastStart reports whether the unit was dispatched in a fast-start mode.
// An unrecorded mode (NaN) is not fast start, unlike a plain != 0 test.
func (c Condition) FastStart() bool {
	return !math.IsNaN(c.DispatchMode) && c.DispatchMode != 0
}

// Capped reports whether a semi-scheduled unit's output was capped by its
// dispatch target.
func (c Condition) Capped() bool {
	return c.SemiDispatchCap == 1
}

// RampMax is the highest output reachable in one interval at the recorded
// ramp-up rate.
func (c Condition) RampMax() float64 {
	return c.InitialMW + c.RampUpRate/intervalsPerHour
}

// RampMin is the lowest output reachable in one interval at the recorded
// ramp-down rate.
func (c Condition) RampMin() float64 {
	return c.InitialMW - c.RampDownRate/intervalsPerHour
}

// Limit is the resolved operating envelope of one unit.
type Limit struct {
	Unit          string  `json:"unit"`
	InitialOutput float64 `json:"initial_output"`
	Capacity      float64 `json:"capacity"`
	RampDownRate  float64 `json:"ramp_down_rate"`
	RampUpRate    float64 `json:"ramp_up_rate"`
}

// Resolve applies the relaxation rules to one unit. maxAvail is the unit's
// offered energy MAXAVAIL for the interval.
//
// The ramp-down floor uses the recorded ramp-down rate even when rule 1
// widened it, so a fast-start unit ramping down hard can still have its
// capacity raised to the recorded floor.
func Resolve(c Condition, maxAvail float64) Limit {
	l := Limit{
		Unit:          c.Unit,
		InitialOutput: c.InitialMW,
		Capacity:      c.Availability,
		RampDownRate:  c.RampDownRate,
		RampUpRate:    c.RampUpRate,
	}

	rampMax, rampMin := c.RampMax(), c.RampMin()
	if c.FastStart() && c.TotalCleared > rampMax {
		l.RampUpRate = (c.TotalCleared - c.InitialMW) * intervalsPerHour
	}
	if c.FastStart() && c.TotalCleared < rampMin {
		l.RampDownRate = (c.InitialMW - c.TotalCleared) * intervalsPerHour
	}

	if c.Capped() && maxAvail < l.Capacity && c.TotalCleared <= maxAvail {
		l.Capacity = maxAvail
	}

	if l.Capacity < rampMin {
		l.Capacity = rampMin
	}
	return l
}

// ResolveAll resolves every unit that has an energy offer; units with no
// offer are dropped. An offer with no MAXAVAIL (NaN) keeps the unit, and
// the semi-dispatch-cap rule then never applies to it. The result is
// ordered by unit id.
func ResolveAll(conditions []Condition, maxAvail map[string]float64) []Limit {
	out := make([]Limit, 0, len(conditions))
	for _, c := range conditions {
		avail, ok := maxAvail[c.Unit]
		if !ok {
			continue
		}
		out = append(out, Resolve(c, avail))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Unit < out[j].Unit })
	return out
}
