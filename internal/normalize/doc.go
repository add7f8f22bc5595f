// Package normalize reshapes resolved MMS snapshots into the structures a
// dispatch model consumes.
//
// Upstream codes are translated through closed vocabularies: a code outside
// them fails with UNMAPPED_ENUM_VALUE rather than passing through.
//
//	dispatch type  GENERATOR → generator, LOAD → load
//	service        ENERGY → energy, RAISEREG → raise_reg, LOWERREG → lower_reg,
//	               RAISE6SEC → raise_6s, RAISE60SEC → raise_60s,
//	               RAISE5MIN → raise_5min, LOWER6SEC → lower_6s,
//	               LOWER60SEC → lower_60s, LOWER5MIN → lower_5min
package normalize
