package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/roach88/nemhist/internal/ir"
)

// InterventionColumn flags rows produced by a market intervention pass.
// Appending ingestion keeps only rows where it is zero.
const InterventionColumn = "INTERVENTION"

// Discipline selects how ingestion combines new data with existing content.
type Discipline string

const (
	// Replacing wholly replaces a table's content with one period's data.
	// Ingesting an older period regresses the table to that period.
	Replacing Discipline = "replace"

	// Appending adds one period's data to existing content. Each period is
	// expected to be ingested exactly once.
	Appending Discipline = "append"
)

// Period addresses one monthly archive.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Validate checks the month range.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("invalid period %04d-%02d: month out of range", p.Year, p.Month)
	}
	if p.Year < 1 {
		return fmt.Errorf("invalid period %04d-%02d: year out of range", p.Year, p.Month)
	}
	return nil
}

// String returns YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Fetcher supplies the raw record set of one table for one period.
// Implementations fail with SOURCE_UNAVAILABLE when the period cannot be
// supplied; the store propagates that error without retrying.
type Fetcher interface {
	Fetch(ctx context.Context, table string, year, month int) (ir.RecordSet, error)
}

// IngestResult summarizes one committed ingestion.
type IngestResult struct {
	RunID               string     `json:"run_id"`
	Table               string     `json:"table"`
	Period              Period     `json:"period"`
	Discipline          Discipline `json:"discipline"`
	Rows                int        `json:"rows"`
	SkippedIntervention int        `json:"skipped_intervention"`
}

// IngestSnapshot fetches a period and wholly replaces the table's content
// with it (Replacing discipline).
func (s *Store) IngestSnapshot(ctx context.Context, def TableDef, f Fetcher, year, month int) (IngestResult, error) {
	return s.fetchAndWrite(ctx, def, Replacing, f, Period{Year: year, Month: month})
}

// IngestPeriod fetches a period and appends it to the table's content
// (Appending discipline).
func (s *Store) IngestPeriod(ctx context.Context, def TableDef, f Fetcher, year, month int) (IngestResult, error) {
	return s.fetchAndWrite(ctx, def, Appending, f, Period{Year: year, Month: month})
}

func (s *Store) fetchAndWrite(ctx context.Context, def TableDef, d Discipline, f Fetcher, p Period) (IngestResult, error) {
	if err := p.Validate(); err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: %w", def.Name, err)
	}
	rs, err := f.Fetch(ctx, def.Name, p.Year, p.Month)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s %s: %w", def.Name, p, err)
	}
	return s.Write(ctx, def, d, p, rs)
}

// ReplaceRecords replaces the table's content with rs projected onto the
// table's columns.
func (s *Store) ReplaceRecords(ctx context.Context, def TableDef, p Period, rs ir.RecordSet) (IngestResult, error) {
	return s.Write(ctx, def, Replacing, p, rs)
}

// AppendRecords appends rs, minus intervention rows, projected onto the
// table's columns.
func (s *Store) AppendRecords(ctx context.Context, def TableDef, p Period, rs ir.RecordSet) (IngestResult, error) {
	return s.Write(ctx, def, Appending, p, rs)
}

// Write ingests an already-fetched record set under the given discipline.
//
// The projection, the optional delete, every insert and the ingestion log
// entry run in one transaction: either the whole record set is written with
// primary keys verified, or nothing is. A primary-key collision fails with
// DUPLICATE_KEY.
func (s *Store) Write(ctx context.Context, def TableDef, d Discipline, p Period, rs ir.RecordSet) (IngestResult, error) {
	if err := def.Validate(); err != nil {
		return IngestResult{}, fmt.Errorf("ingest: %w", err)
	}
	if d != Replacing && d != Appending {
		return IngestResult{}, fmt.Errorf("ingest %s: unknown discipline %q", def.Name, d)
	}

	skipped := 0
	if d == Appending && rs.HasColumn(InterventionColumn) {
		before := rs.Len()
		rs = rs.Filter(func(r ir.Record) bool { return r.Real(InterventionColumn) == 0 })
		skipped = before - rs.Len()
	}

	projected, err := rs.Project(def.Columns)
	if err != nil {
		var e *ir.Error
		if errors.As(err, &e) {
			e.Table = def.Name
		}
		return IngestResult{}, fmt.Errorf("ingest %s: %w", def.Name, err)
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: run id: %w", def.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: begin tx: %w", def.Name, err)
	}
	defer tx.Rollback() // No-op if committed

	if d == Replacing {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+def.Name); err != nil {
			return IngestResult{}, fmt.Errorf("ingest %s: clear: %w", def.Name, err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(def.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		def.Name, strings.Join(def.Columns, ", "), placeholders))
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: prepare: %w", def.Name, err)
	}
	defer stmt.Close()

	args := make([]any, len(def.Columns))
	for _, row := range projected.Rows {
		for i, v := range projected.Values(row) {
			args[i] = ir.ToDriver(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			if isKeyViolation(err) {
				return IngestResult{}, fmt.Errorf("ingest %s %s: %w", def.Name, p, ir.NewDuplicateKey(def.Name, err))
			}
			return IngestResult{}, fmt.Errorf("ingest %s: insert: %w", def.Name, err)
		}
	}

	result := IngestResult{
		RunID:               runID.String(),
		Table:               def.Name,
		Period:              p,
		Discipline:          d,
		Rows:                projected.Len(),
		SkippedIntervention: skipped,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO _ingest_log
		(run_id, table_name, year, month, discipline, row_count, skipped_intervention, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.RunID,
		result.Table,
		p.Year,
		p.Month,
		string(d),
		result.Rows,
		result.SkippedIntervention,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: log: %w", def.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: commit: %w", def.Name, err)
	}

	s.logger.Info("ingested",
		zap.String("table", def.Name),
		zap.String("period", p.String()),
		zap.String("discipline", string(d)),
		zap.Int("rows", result.Rows),
		zap.Int("skipped_intervention", skipped),
		zap.String("run_id", result.RunID))

	return result, nil
}

// isKeyViolation reports whether err is a SQLite primary-key or unique
// constraint failure.
func isKeyViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		se.ExtendedCode == sqlite3.ErrConstraintUnique
}
