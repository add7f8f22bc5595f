package queryir

// Column names shared by the versioned MMS tables.
const (
	EffectiveDateColumn = "EFFECTIVEDATE"
	VersionColumn       = "VERSIONNO"
)

// Strategy selects the rows of a table in effect at a dispatch instant.
//
// This is a sealed interface - only types in this package implement it.
type Strategy interface {
	strategyNode() // Marker method - seals interface to this package

	// Name identifies the strategy in logs and CLI output.
	Name() string
}

// ExactTimestamp returns rows whose Column equals the instant exactly
// (string equality on the canonical form).
//
// Used for 5-minute tables keyed by SETTLEMENTDATE or INTERVAL_DATETIME.
type ExactTimestamp struct {
	Column string
}

func (ExactTimestamp) strategyNode() {}

// Name implements Strategy.
func (ExactTimestamp) Name() string { return "exact_timestamp" }

// MarketDay returns rows whose Column holds the market day containing the
// instant: instants from 04:05:00 belong to their calendar day, instants up
// to 04:00:00 to the previous one.
type MarketDay struct {
	Column string
}

func (MarketDay) strategyNode() {}

// Name implements Strategy.
func (MarketDay) Name() string { return "market_day" }

// ValidityRange returns rows whose half-open interval [Start, End) contains
// the instant.
type ValidityRange struct {
	Start string
	End   string
}

func (ValidityRange) strategyNode() {}

// Name implements Strategy.
func (ValidityRange) Name() string { return "validity_range" }

// ColumnPair equates a column of the target table with a column of another
// table.
type ColumnPair struct {
	Column    string // target table column
	RefColumn string // reference table column
}

// ReferentialMatch first selects the rows of Reference whose ReferenceTime
// equals the instant, then returns target rows matching one of them on every
// pair in On. No reference rows at the instant means an empty result.
//
// Example (generic constraint data keyed by the constraints active in an
// interval):
//
//	ReferentialMatch{
//	  Reference:     "DISPATCHCONSTRAINT",
//	  ReferenceTime: "SETTLEMENTDATE",
//	  On: []ColumnPair{
//	    {Column: "GENCONID", RefColumn: "CONSTRAINTID"},
//	    {Column: "EFFECTIVEDATE", RefColumn: "GENCONID_EFFECTIVEDATE"},
//	    {Column: "VERSIONNO", RefColumn: "GENCONID_VERSIONNO"},
//	  },
//	}
type ReferentialMatch struct {
	Reference     string
	ReferenceTime string
	On            []ColumnPair
}

func (ReferentialMatch) strategyNode() {}

// Name implements Strategy.
func (ReferentialMatch) Name() string { return "referential_match" }

// UsageFilter restricts resolved keys to those present in Table at the
// instant. Table must carry the same key columns as the resolved table.
type UsageFilter struct {
	Table string
	Time  string
}

// EffectiveVersion resolves effective-dated, versioned records.
//
// For each distinct Keys tuple:
//  1. keep rows with EFFECTIVEDATE <= instant
//  2. per (key, EFFECTIVEDATE) keep the numerically highest VERSIONNO
//  3. per key keep the latest surviving EFFECTIVEDATE
//
// Every row of the table carrying the winning (key, EFFECTIVEDATE, VERSIONNO)
// is returned, so multi-row families (loss segments, region coefficients)
// come back whole. With Usage set, keys absent from the usage table at the
// instant are dropped even when a version resolves.
type EffectiveVersion struct {
	Keys  []string
	Usage *UsageFilter
}

func (EffectiveVersion) strategyNode() {}

// Name implements Strategy.
func (EffectiveVersion) Name() string { return "effective_version" }

// NoFilter returns the table unfiltered; the instant is ignored.
type NoFilter struct{}

func (NoFilter) strategyNode() {}

// Name implements Strategy.
func (NoFilter) Name() string { return "no_filter" }

// References returns the names of other tables the strategy reads.
func References(s Strategy) []string {
	switch st := s.(type) {
	case ReferentialMatch:
		return []string{st.Reference}
	case EffectiveVersion:
		if st.Usage != nil {
			return []string{st.Usage.Table}
		}
	}
	return nil
}
