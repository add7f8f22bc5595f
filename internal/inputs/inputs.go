// Package inputs assembles the complete set of dispatch inputs for one
// interval from resolved table snapshots.
package inputs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/losses"
	"github.com/roach88/nemhist/internal/normalize"
	"github.com/roach88/nemhist/internal/unitlimit"
)

// Tables lists the snapshots Build resolves, in resolution order.
var Tables = []string{
	"DUDETAILSUMMARY",
	"BIDPEROFFER_D",
	"BIDDAYOFFER_D",
	"DISPATCHLOAD",
	"DISPATCHREGIONSUM",
	"INTERCONNECTOR",
	"INTERCONNECTORCONSTRAINT",
	"LOSSFACTORMODEL",
	"LOSSMODEL",
}

// Resolver returns the rows of a table in effect at an instant.
// *snapshot.Manager implements it.
type Resolver interface {
	Resolve(ctx context.Context, table string, at ir.Instant) (ir.RecordSet, error)
}

// Dispatch is every input of one dispatch interval.
type Dispatch struct {
	Interval        ir.Instant                 `json:"interval"`
	Units           []normalize.UnitInfo       `json:"units"`
	VolumeBids      []normalize.Bid            `json:"volume_bids"`
	PriceBids       []normalize.Bid            `json:"price_bids"`
	UnitLimits      []unitlimit.Limit          `json:"unit_limits"`
	RegionalDemand  []losses.RegionalDemand    `json:"regional_demand"`
	Interconnectors []normalize.Interconnector `json:"interconnectors"`
	LossFunctions   []losses.Function          `json:"loss_functions"`
	BreakPoints     []normalize.BreakPoint     `json:"break_points"`
}

// Builder builds Dispatch values from a Resolver.
type Builder struct {
	resolver Resolver
	logger   *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a builder.
func NewBuilder(r Resolver, opts ...Option) *Builder {
	b := &Builder{resolver: r, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves every table in Tables at the instant and derives the
// dispatch inputs from them.
func (b *Builder) Build(ctx context.Context, at ir.Instant) (*Dispatch, error) {
	snap := make(map[string]ir.RecordSet, len(Tables))
	for _, table := range Tables {
		rs, err := b.resolver.Resolve(ctx, table, at)
		if err != nil {
			return nil, fmt.Errorf("build inputs %s: %w", at, err)
		}
		snap[table] = rs
	}

	d := &Dispatch{Interval: at}
	var err error

	if d.Units, err = normalize.UnitInfos(snap["DUDETAILSUMMARY"]); err != nil {
		return nil, fmt.Errorf("build inputs %s: %w", at, err)
	}
	if d.VolumeBids, err = normalize.VolumeBids(snap["BIDPEROFFER_D"]); err != nil {
		return nil, fmt.Errorf("build inputs %s: %w", at, err)
	}
	if d.PriceBids, err = normalize.PriceBids(snap["BIDDAYOFFER_D"]); err != nil {
		return nil, fmt.Errorf("build inputs %s: %w", at, err)
	}
	if d.BreakPoints, err = normalize.BreakPoints(snap["LOSSMODEL"]); err != nil {
		return nil, fmt.Errorf("build inputs %s: %w", at, err)
	}

	d.UnitLimits = unitlimit.ResolveAll(
		normalize.UnitConditions(snap["DISPATCHLOAD"]),
		normalize.MaxAvail(snap["BIDPEROFFER_D"]),
	)

	d.RegionalDemand = normalize.RegionalDemands(snap["DISPATCHREGIONSUM"])
	d.Interconnectors = normalize.Interconnectors(snap["INTERCONNECTOR"], snap["INTERCONNECTORCONSTRAINT"])
	d.LossFunctions = losses.Build(
		normalize.LossCoefficients(snap["INTERCONNECTORCONSTRAINT"]),
		normalize.DemandCoefficients(snap["LOSSFACTORMODEL"]),
		d.RegionalDemand,
	)

	b.logger.Debug("inputs built",
		zap.Stringer("interval", at),
		zap.Int("units", len(d.Units)),
		zap.Int("unit_limits", len(d.UnitLimits)),
		zap.Int("interconnectors", len(d.Interconnectors)))
	return d, nil
}
