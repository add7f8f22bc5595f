// Package queryir defines the point-in-time retrieval strategies as a small
// intermediate representation.
//
// A table is bound to exactly one Strategy when the snapshot registry is
// built. The strategy says how the rows "in effect" at a dispatch instant
// are selected; the querysql package turns it into one SQL statement.
//
//	[registry entry] → [Strategy] → [querysql] → SQL + params
//
// SEALED INTERFACE:
//
// Strategy is sealed using the marker method pattern, so backends can switch
// exhaustively:
//
//	switch s := strategy.(type) {
//	case ExactTimestamp:
//	case MarketDay:
//	case ValidityRange:
//	case ReferentialMatch:
//	case EffectiveVersion:
//	case NoFilter:
//	}
//
// STRATEGIES:
//
//	ExactTimestamp    Column = instant
//	MarketDay         Column = date(instant - 4h1s) 00:00:00
//	ValidityRange     Start <= instant AND End > instant
//	ReferentialMatch  rows matching reference rows stamped with the instant
//	EffectiveVersion  latest EFFECTIVEDATE <= instant, highest VERSIONNO within
//	                  it, optionally restricted to keys in use at the instant
//	NoFilter          every row
//
// Strategies are values with no state; resolving the same table at the same
// instant always yields the same rows.
package queryir
