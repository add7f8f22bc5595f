package normalize

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/losses"
	"github.com/roach88/nemhist/internal/unitlimit"
)

// Bands is the number of price/volume bands in an offer.
const Bands = 10

// UnitInfo describes a dispatchable unit.
type UnitInfo struct {
	Unit            string  `json:"unit"`
	DispatchType    string  `json:"dispatch_type"`
	ConnectionPoint string  `json:"connection_point"`
	Region          string  `json:"region"`
	LossFactor      float64 `json:"loss_factor"`
}

// Bid is one unit's offer for one service, band 1 first.
type Bid struct {
	Unit    string         `json:"unit"`
	Service string         `json:"service"`
	Bands   [Bands]float64 `json:"bands"`
}

// Interconnector is an interconnector's direction and flow limits.
// Positive flow is from FromRegion to ToRegion.
type Interconnector struct {
	Interconnector string  `json:"interconnector"`
	ToRegion       string  `json:"to_region"`
	FromRegion     string  `json:"from_region"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
}

// BreakPoint is one segment boundary of an interconnector's loss model.
type BreakPoint struct {
	Interconnector string  `json:"interconnector"`
	LossSegment    int     `json:"loss_segment"`
	BreakPoint     float64 `json:"break_point"`
}

// UnitInfos reads DUDETAILSUMMARY. The loss factor is the product of the
// transmission and distribution loss factors.
func UnitInfos(rs ir.RecordSet) ([]UnitInfo, error) {
	out := make([]UnitInfo, 0, rs.Len())
	for _, r := range rs.Rows {
		dt, err := DispatchType(r.Text("DISPATCHTYPE"))
		if err != nil {
			return nil, fmt.Errorf("unit info %s: %w", r.Text("DUID"), err)
		}
		out = append(out, UnitInfo{
			Unit:            r.Text("DUID"),
			DispatchType:    dt,
			ConnectionPoint: r.Text("CONNECTIONPOINTID"),
			Region:          r.Text("REGIONID"),
			LossFactor:      r.Real("TRANSMISSIONLOSSFACTOR") * r.Real("DISTRIBUTIONLOSSFACTOR"),
		})
	}
	return out, nil
}

// VolumeBids reads BANDAVAIL1..10 from BIDPEROFFER_D.
func VolumeBids(rs ir.RecordSet) ([]Bid, error) {
	return bids(rs, "BANDAVAIL")
}

// PriceBids reads PRICEBAND1..10 from BIDDAYOFFER_D.
func PriceBids(rs ir.RecordSet) ([]Bid, error) {
	return bids(rs, "PRICEBAND")
}

func bids(rs ir.RecordSet, prefix string) ([]Bid, error) {
	out := make([]Bid, 0, rs.Len())
	for _, r := range rs.Rows {
		svc, err := Service(r.Text("BIDTYPE"))
		if err != nil {
			return nil, fmt.Errorf("bid %s: %w", r.Text("DUID"), err)
		}
		b := Bid{Unit: r.Text("DUID"), Service: svc}
		for i := range b.Bands {
			b.Bands[i] = r.Real(prefix + strconv.Itoa(i+1))
		}
		out = append(out, b)
	}
	return out, nil
}

// Interconnectors joins INTERCONNECTOR with INTERCONNECTORCONSTRAINT.
// Interconnectors missing from either side are dropped.
//
// ToRegion is REGIONFROM and FromRegion is REGIONTO, and Min is the negated
// IMPORTLIMIT while Max is EXPORTLIMIT.
func Interconnectors(interconnector, constraint ir.RecordSet) []Interconnector {
	type limits struct{ min, max float64 }
	byID := make(map[string]limits, constraint.Len())
	for _, r := range constraint.Rows {
		byID[r.Text("INTERCONNECTORID")] = limits{min: -r.Real("IMPORTLIMIT"), max: r.Real("EXPORTLIMIT")}
	}

	out := make([]Interconnector, 0, interconnector.Len())
	for _, r := range interconnector.Rows {
		id := r.Text("INTERCONNECTORID")
		lim, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, Interconnector{
			Interconnector: id,
			ToRegion:       r.Text("REGIONFROM"),
			FromRegion:     r.Text("REGIONTO"),
			Min:            lim.min,
			Max:            lim.max,
		})
	}
	return out
}

// LossCoefficients reads INTERCONNECTORCONSTRAINT.
func LossCoefficients(rs ir.RecordSet) []losses.Coefficients {
	out := make([]losses.Coefficients, 0, rs.Len())
	for _, r := range rs.Rows {
		out = append(out, losses.Coefficients{
			Interconnector:      r.Text("INTERCONNECTORID"),
			LossConstant:        r.Real("LOSSCONSTANT"),
			FlowCoefficient:     r.Real("LOSSFLOWCOEFFICIENT"),
			FromRegionLossShare: r.Real("FROMREGIONLOSSSHARE"),
		})
	}
	return out
}

// DemandCoefficients reads LOSSFACTORMODEL.
func DemandCoefficients(rs ir.RecordSet) []losses.DemandCoefficient {
	out := make([]losses.DemandCoefficient, 0, rs.Len())
	for _, r := range rs.Rows {
		out = append(out, losses.DemandCoefficient{
			Interconnector: r.Text("INTERCONNECTORID"),
			Region:         r.Text("REGIONID"),
			Coefficient:    r.Real("DEMANDCOEFFICIENT"),
		})
	}
	return out
}

// RegionalDemands reads DISPATCHREGIONSUM. The loss-function demand is
// INITIALSUPPLY plus DEMANDFORECAST.
func RegionalDemands(rs ir.RecordSet) []losses.RegionalDemand {
	out := make([]losses.RegionalDemand, 0, rs.Len())
	for _, r := range rs.Rows {
		out = append(out, losses.RegionalDemand{
			Region:             r.Text("REGIONID"),
			Demand:             r.Real("TOTALDEMAND"),
			LossFunctionDemand: r.Real("INITIALSUPPLY") + r.Real("DEMANDFORECAST"),
		})
	}
	return out
}

// BreakPoints reads LOSSMODEL. LOSSSEGMENT must hold an integer.
func BreakPoints(rs ir.RecordSet) ([]BreakPoint, error) {
	out := make([]BreakPoint, 0, rs.Len())
	for _, r := range rs.Rows {
		seg, err := parseSegment(r.Text("LOSSSEGMENT"))
		if err != nil {
			return nil, fmt.Errorf("break point %s: %w", r.Text("INTERCONNECTORID"), err)
		}
		out = append(out, BreakPoint{
			Interconnector: r.Text("INTERCONNECTORID"),
			LossSegment:    seg,
			BreakPoint:     r.Real("MWBREAKPOINT"),
		})
	}
	return out, nil
}

// parseSegment accepts "3" and integral decimals such as "3.0".
func parseSegment(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("loss segment %q is not an integer", s)
	}
	return int(f), nil
}

// UnitConditions reads DISPATCHLOAD.
func UnitConditions(rs ir.RecordSet) []unitlimit.Condition {
	out := make([]unitlimit.Condition, 0, rs.Len())
	for _, r := range rs.Rows {
		out = append(out, unitlimit.Condition{
			Unit:            r.Text("DUID"),
			InitialMW:       r.Real("INITIALMW"),
			Availability:    r.Real("AVAILABILITY"),
			RampDownRate:    r.Real("RAMPDOWNRATE"),
			RampUpRate:      r.Real("RAMPUPRATE"),
			TotalCleared:    r.Real("TOTALCLEARED"),
			DispatchMode:    r.Real("DISPATCHMODE"),
			SemiDispatchCap: r.Real("SEMIDISPATCHCAP"),
		})
	}
	return out
}

// MaxAvail returns each unit's energy MAXAVAIL from BIDPEROFFER_D.
// Ancillary-service offers are ignored.
func MaxAvail(rs ir.RecordSet) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range rs.Rows {
		if r.Text("BIDTYPE") != "ENERGY" {
			continue
		}
		out[r.Text("DUID")] = r.Real("MAXAVAIL")
	}
	return out
}
