package snapshot

import (
	"fmt"

	"github.com/roach88/nemhist/internal/queryir"
	"github.com/roach88/nemhist/internal/store"
)

var (
	bySettlementDate = queryir.ExactTimestamp{Column: "SETTLEMENTDATE"}

	// Generic constraint data active in the interval, keyed by the constraint
	// solutions recorded in DISPATCHCONSTRAINT.
	byDispatchConstraint = queryir.ReferentialMatch{
		Reference:     "DISPATCHCONSTRAINT",
		ReferenceTime: "SETTLEMENTDATE",
		On: []queryir.ColumnPair{
			{Column: "GENCONID", RefColumn: "CONSTRAINTID"},
			{Column: "EFFECTIVEDATE", RefColumn: "GENCONID_EFFECTIVEDATE"},
			{Column: "VERSIONNO", RefColumn: "GENCONID_VERSIONNO"},
		},
	}

	// Interconnector parameters, restricted to interconnectors dispatched
	// in the interval.
	byInterconnectorInUse = queryir.EffectiveVersion{
		Keys:  []string{"INTERCONNECTORID"},
		Usage: &queryir.UsageFilter{Table: "DISPATCHINTERCONNECTORRES", Time: "SETTLEMENTDATE"},
	}
)

func bands(prefix string) []string {
	cols := make([]string, 10)
	for i := range cols {
		cols[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return cols
}

func columns(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultEntries returns the MMS tables needed to rebuild historical
// dispatch inputs.
//
// Appending tables hold 5-minute or daily data that accumulates month by
// month. Replacing tables are standing data; each monthly archive is a full
// copy, so the most recently ingested month wins.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Def: store.TableDef{
				Name: "BIDPEROFFER_D",
				Columns: columns(
					[]string{"INTERVAL_DATETIME", "DUID", "BIDTYPE"},
					bands("BANDAVAIL"),
					[]string{"MAXAVAIL", "ENABLEMENTMIN", "ENABLEMENTMAX", "LOWBREAKPOINT", "HIGHBREAKPOINT"},
				),
				PrimaryKey: []string{"INTERVAL_DATETIME", "DUID", "BIDTYPE"},
			},
			Discipline: store.Appending,
			Strategy:   queryir.ExactTimestamp{Column: "INTERVAL_DATETIME"},
		},
		{
			Def: store.TableDef{
				Name: "BIDDAYOFFER_D",
				Columns: columns(
					[]string{"SETTLEMENTDATE", "DUID", "BIDTYPE"},
					bands("PRICEBAND"),
					[]string{"T1", "T2", "T3", "T4", "MINIMUMLOAD"},
				),
				PrimaryKey: []string{"SETTLEMENTDATE", "DUID", "BIDTYPE"},
			},
			Discipline: store.Appending,
			Strategy:   queryir.MarketDay{Column: "SETTLEMENTDATE"},
		},
		{
			Def: store.TableDef{
				Name:       "DISPATCHREGIONSUM",
				Columns:    []string{"SETTLEMENTDATE", "REGIONID", "TOTALDEMAND", "DEMANDFORECAST", "INITIALSUPPLY"},
				PrimaryKey: []string{"SETTLEMENTDATE", "REGIONID"},
			},
			Discipline: store.Appending,
			Strategy:   bySettlementDate,
		},
		{
			Def: store.TableDef{
				Name: "DISPATCHLOAD",
				Columns: []string{"SETTLEMENTDATE", "DUID", "DISPATCHMODE", "AGCSTATUS", "INITIALMW",
					"TOTALCLEARED", "RAMPDOWNRATE", "RAMPUPRATE", "AVAILABILITY", "RAISEREGENABLEMENTMAX",
					"RAISEREGENABLEMENTMIN", "LOWERREGENABLEMENTMAX", "LOWERREGENABLEMENTMIN", "SEMIDISPATCHCAP"},
				PrimaryKey: []string{"SETTLEMENTDATE", "DUID"},
			},
			Discipline: store.Appending,
			Strategy:   bySettlementDate,
		},
		{
			Def: store.TableDef{
				Name:       "DISPATCHPRICE",
				Columns:    []string{"SETTLEMENTDATE", "REGIONID", "RRP"},
				PrimaryKey: []string{"SETTLEMENTDATE", "REGIONID"},
			},
			Discipline: store.Appending,
			Strategy:   bySettlementDate,
		},
		{
			Def: store.TableDef{
				Name: "DUDETAILSUMMARY",
				Columns: []string{"DUID", "START_DATE", "END_DATE", "DISPATCHTYPE", "CONNECTIONPOINTID",
					"REGIONID", "TRANSMISSIONLOSSFACTOR", "DISTRIBUTIONLOSSFACTOR"},
				PrimaryKey: []string{"START_DATE", "DUID"},
			},
			Discipline: store.Replacing,
			Strategy:   queryir.ValidityRange{Start: "START_DATE", End: "END_DATE"},
		},
		{
			Def: store.TableDef{
				Name:       "DUDETAIL",
				Columns:    []string{"DUID", "EFFECTIVEDATE", "VERSIONNO", "MAXCAPACITY"},
				PrimaryKey: []string{"DUID", "EFFECTIVEDATE", "VERSIONNO"},
			},
			Discipline: store.Replacing,
			Strategy:   queryir.EffectiveVersion{Keys: []string{"DUID"}},
		},
		{
			Def: store.TableDef{
				Name:       "DISPATCHCONSTRAINT",
				Columns:    []string{"SETTLEMENTDATE", "CONSTRAINTID", "RHS", "GENCONID_EFFECTIVEDATE", "GENCONID_VERSIONNO"},
				PrimaryKey: []string{"SETTLEMENTDATE", "CONSTRAINTID"},
			},
			Discipline: store.Appending,
			Strategy:   bySettlementDate,
		},
		{
			Def: store.TableDef{
				Name:       "GENCONDATA",
				Columns:    []string{"GENCONID", "EFFECTIVEDATE", "VERSIONNO", "CONSTRAINTTYPE", "GENERICCONSTRAINTWEIGHT"},
				PrimaryKey: []string{"GENCONID", "EFFECTIVEDATE", "VERSIONNO"},
			},
			Discipline: store.Replacing,
			Strategy:   byDispatchConstraint,
		},
		{
			Def: store.TableDef{
				Name:       "SPDREGIONCONSTRAINT",
				Columns:    []string{"REGIONID", "EFFECTIVEDATE", "VERSIONNO", "GENCONID", "BIDTYPE", "FACTOR"},
				PrimaryKey: []string{"REGIONID", "GENCONID", "EFFECTIVEDATE", "VERSIONNO", "BIDTYPE"},
			},
			Discipline: store.Replacing,
			Strategy:   byDispatchConstraint,
		},
		{
			Def: store.TableDef{
				Name:       "SPDCONNECTIONPOINTCONSTRAINT",
				Columns:    []string{"CONNECTIONPOINTID", "EFFECTIVEDATE", "VERSIONNO", "GENCONID", "BIDTYPE", "FACTOR"},
				PrimaryKey: []string{"CONNECTIONPOINTID", "GENCONID", "EFFECTIVEDATE", "VERSIONNO", "BIDTYPE"},
			},
			Discipline: store.Replacing,
			Strategy:   byDispatchConstraint,
		},
		{
			Def: store.TableDef{
				Name:       "SPDINTERCONNECTORCONSTRAINT",
				Columns:    []string{"INTERCONNECTORID", "EFFECTIVEDATE", "VERSIONNO", "GENCONID", "BIDTYPE", "FACTOR"},
				PrimaryKey: []string{"INTERCONNECTORID", "GENCONID", "EFFECTIVEDATE", "VERSIONNO", "BIDTYPE"},
			},
			Discipline: store.Replacing,
			Strategy:   byDispatchConstraint,
		},
		{
			Def: store.TableDef{
				Name:       "INTERCONNECTOR",
				Columns:    []string{"INTERCONNECTORID", "REGIONFROM", "REGIONTO"},
				PrimaryKey: []string{"INTERCONNECTORID"},
			},
			Discipline: store.Replacing,
			Strategy:   queryir.NoFilter{},
		},
		{
			Def: store.TableDef{
				Name: "INTERCONNECTORCONSTRAINT",
				Columns: []string{"INTERCONNECTORID", "EFFECTIVEDATE", "VERSIONNO", "FROMREGIONLOSSSHARE",
					"LOSSCONSTANT", "LOSSFLOWCOEFFICIENT", "IMPORTLIMIT", "EXPORTLIMIT"},
				PrimaryKey: []string{"INTERCONNECTORID", "EFFECTIVEDATE", "VERSIONNO"},
			},
			Discipline: store.Replacing,
			Strategy:   byInterconnectorInUse,
		},
		{
			Def: store.TableDef{
				Name:       "LOSSMODEL",
				Columns:    []string{"INTERCONNECTORID", "EFFECTIVEDATE", "VERSIONNO", "LOSSSEGMENT", "MWBREAKPOINT"},
				PrimaryKey: []string{"INTERCONNECTORID", "EFFECTIVEDATE", "VERSIONNO", "LOSSSEGMENT"},
			},
			Discipline: store.Replacing,
			Strategy:   byInterconnectorInUse,
		},
		{
			Def: store.TableDef{
				Name:       "LOSSFACTORMODEL",
				Columns:    []string{"INTERCONNECTORID", "EFFECTIVEDATE", "VERSIONNO", "REGIONID", "DEMANDCOEFFICIENT"},
				PrimaryKey: []string{"INTERCONNECTORID", "EFFECTIVEDATE", "VERSIONNO", "REGIONID"},
			},
			Discipline: store.Replacing,
			Strategy:   byInterconnectorInUse,
		},
		{
			Def: store.TableDef{
				Name:       "DISPATCHINTERCONNECTORRES",
				Columns:    []string{"INTERCONNECTORID", "SETTLEMENTDATE", "MWFLOW", "MWLOSSES"},
				PrimaryKey: []string{"INTERCONNECTORID", "SETTLEMENTDATE"},
			},
			Discipline: store.Appending,
			Strategy:   bySettlementDate,
		},
	}
}

// DefaultRegistry returns the validated registry of DefaultEntries.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultEntries()...)
	if err != nil {
		panic(fmt.Sprintf("default registry: %v", err))
	}
	return r
}
