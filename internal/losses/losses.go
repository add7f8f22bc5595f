// Package losses turns demand-dependent interconnector loss models into
// functions of flow alone.
//
// The loss factor of an interconnector is
//
//	loss_constant + flow_coefficient·flow + Σ demand_coefficient·demand
//
// For a single dispatch interval the demand terms are fixed, so they fold
// into the constant and losses become a quadratic in flow:
//
//	losses(flow) = (c − 1)·flow + (flow_coefficient / 2)·flow²
package losses

import (
	"sort"
)

// Coefficients are the static loss-model terms of one interconnector.
type Coefficients struct {
	Interconnector      string  `json:"interconnector"`
	LossConstant        float64 `json:"loss_constant"`
	FlowCoefficient     float64 `json:"flow_coefficient"`
	FromRegionLossShare float64 `json:"from_region_loss_share"`
}

// DemandCoefficient weights one region's demand in an interconnector's loss
// factor.
type DemandCoefficient struct {
	Interconnector string  `json:"interconnector"`
	Region         string  `json:"region"`
	Coefficient    float64 `json:"demand_coefficient"`
}

// RegionalDemand is a region's demand for one interval. LossFunctionDemand
// (initial supply plus demand forecast) is the term loss factors use.
type RegionalDemand struct {
	Region             string  `json:"region"`
	Demand             float64 `json:"demand"`
	LossFunctionDemand float64 `json:"loss_function_demand"`
}

// Function is the loss function of one interconnector with demand terms
// folded into Constant.
type Function struct {
	Interconnector      string  `json:"interconnector"`
	Constant            float64 `json:"constant"`
	FlowCoefficient     float64 `json:"flow_coefficient"`
	FromRegionLossShare float64 `json:"from_region_loss_share"`
}

// Losses returns the interconnector losses in MW at the given flow.
func (f Function) Losses(flow float64) float64 {
	return (f.Constant-1)*flow + (f.FlowCoefficient/2)*flow*flow
}

// Offset returns the demand-dependent part of each interconnector's loss
// constant. Coefficients whose region has no demand contribute nothing.
func Offset(demandCoefficients []DemandCoefficient, demand []RegionalDemand) map[string]float64 {
	byRegion := make(map[string]float64, len(demand))
	for _, d := range demand {
		byRegion[d.Region] = d.LossFunctionDemand
	}

	offsets := make(map[string]float64)
	for _, dc := range demandCoefficients {
		d, ok := byRegion[dc.Region]
		if !ok {
			continue
		}
		offsets[dc.Interconnector] += dc.Coefficient * d
	}
	return offsets
}

// Build returns one loss function per interconnector, ordered by
// interconnector id. An interconnector with no matching demand terms keeps
// its loss constant unchanged.
func Build(coefficients []Coefficients, demandCoefficients []DemandCoefficient, demand []RegionalDemand) []Function {
	offsets := Offset(demandCoefficients, demand)

	out := make([]Function, 0, len(coefficients))
	for _, c := range coefficients {
		out = append(out, Function{
			Interconnector:      c.Interconnector,
			Constant:            c.LossConstant + offsets[c.Interconnector],
			FlowCoefficient:     c.FlowCoefficient,
			FromRegionLossShare: c.FromRegionLossShare,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Interconnector < out[j].Interconnector
	})
	return out
}
