// Package snapshot is the entry point for ingesting monthly MMS archives and
// resolving point-in-time table snapshots.
//
// A Registry binds every table to its definition, ingestion discipline and
// retrieval strategy. The Manager owns a store, a fetcher and a registry:
//
//	Initialize  drop and recreate every registered table
//	Ingest      fetch one table for one period and apply its discipline
//	IngestAll   fetch many tables concurrently, write them one at a time
//	Resolve     return the rows of a table in effect at a dispatch instant
//
// Writes are single-writer: the Manager never issues two ingestion
// transactions at once. Resolution never mutates storage and two calls with
// the same table and instant against unchanged storage return identical rows.
package snapshot
