package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/nemhist/internal/ir"
)

// QueryRecords runs one statement inside a read-only transaction and returns
// its rows as a record set keyed by the statement's result column names.
//
// Returns an empty record set (not an error) when nothing matches.
func (s *Store) QueryRecords(ctx context.Context, query string, args ...any) (ir.RecordSet, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("query records: begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("query records: columns: %w", err)
	}

	rs := ir.NewRecordSet(columns...)
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return ir.RecordSet{}, fmt.Errorf("query records: scan: %w", err)
		}
		vals := make([]ir.Value, len(columns))
		for i, v := range raw {
			val, err := ir.FromDriver(v)
			if err != nil {
				return ir.RecordSet{}, fmt.Errorf("query records: column %s: %w", columns[i], err)
			}
			vals[i] = val
		}
		if err := rs.Append(vals...); err != nil {
			return ir.RecordSet{}, err
		}
	}

	if err := rows.Err(); err != nil {
		return ir.RecordSet{}, fmt.Errorf("query records: iterate: %w", err)
	}

	return rs, nil
}

// IngestRecord is one committed ingestion from the log.
type IngestRecord struct {
	RunID               string     `json:"run_id"`
	Table               string     `json:"table"`
	Period              Period     `json:"period"`
	Discipline          Discipline `json:"discipline"`
	Rows                int        `json:"rows"`
	SkippedIntervention int        `json:"skipped_intervention"`
	IngestedAt          time.Time  `json:"ingested_at"`
}

// IngestHistory returns logged ingestions, oldest first.
// An empty table name returns the history of every table.
func (s *Store) IngestHistory(ctx context.Context, table string) ([]IngestRecord, error) {
	query := `
		SELECT run_id, table_name, year, month, discipline, row_count, skipped_intervention, ingested_at
		FROM _ingest_log`
	var args []any
	if table != "" {
		query += " WHERE table_name = ?"
		args = append(args, table)
	}
	query += " ORDER BY run_id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ingest history: %w", err)
	}
	defer rows.Close()

	history := []IngestRecord{}
	for rows.Next() {
		var rec IngestRecord
		var discipline, ingestedAt string
		if err := rows.Scan(
			&rec.RunID, &rec.Table, &rec.Period.Year, &rec.Period.Month,
			&discipline, &rec.Rows, &rec.SkippedIntervention, &ingestedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ingest history: %w", err)
		}
		rec.Discipline = Discipline(discipline)
		rec.IngestedAt, err = time.Parse(time.RFC3339Nano, ingestedAt)
		if err != nil {
			return nil, fmt.Errorf("parse ingested_at %q: %w", ingestedAt, err)
		}
		history = append(history, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingest history: %w", err)
	}

	return history, nil
}
