// Package store provides SQLite-backed storage for MMS tables.
//
// The store owns every table and exposes three concerns:
//   - Table registry: DefineTable drops and recreates a table from a
//     TableDef, typing each column through the schema catalog
//   - Ingestion: ReplaceRecords (whole-table overwrite) and AppendRecords
//     (incremental, intervention rows discarded) write one projected record
//     set per call inside a single transaction
//   - Reads: QueryRecords runs one statement inside a read-only transaction
//     and returns an ir.RecordSet
//
// # Invariants
//
//   - Primary-key tuples are unique after every committed ingestion; a
//     violation rolls the whole call back and surfaces DUPLICATE_KEY
//   - Every committed ingestion is recorded in _ingest_log in the same
//     transaction, stamped with a UUIDv7 run id
//   - Identifiers are validated before being placed in SQL; values are
//     always parameterized
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single open connection: the store assumes a single writer
package store
