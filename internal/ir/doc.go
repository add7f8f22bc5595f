// Package ir provides the record representation shared by every nemhist
// package: typed cell values, records, record sets, dispatch instants and
// the error taxonomy.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Cells are TEXT or REAL (IEEE-754 double); an empty archive cell is Null
//   - Instants use the market's canonical text form YYYY/MM/DD HH:MM:SS
//   - Record sets carry their column order so output is deterministic
package ir
