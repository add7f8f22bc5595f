// Package querysql compiles retrieval strategies to parameterized SQLite.
//
// Every strategy becomes exactly one SELECT statement. Multi-step plans
// (effective-version resolution) are expressed as a WITH query, so no
// intermediate relation outlives the statement or is visible to another
// caller.
//
// Rules every compiled statement follows:
//   - the instant and any value derived from it are bound parameters
//   - identifiers are checked against the MMS naming pattern before use
//   - ORDER BY the primary key with COLLATE BINARY, so results are
//     deterministic
package querysql
