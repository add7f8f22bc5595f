package snapshot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/nemhist/internal/catalog"
	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/querysql"
	"github.com/roach88/nemhist/internal/store"
)

// DefaultConcurrency bounds concurrent archive fetches in IngestAll.
const DefaultConcurrency = 4

// Manager ingests and resolves every registered table.
type Manager struct {
	store       *store.Store
	catalog     *catalog.Catalog
	fetcher     store.Fetcher
	registry    *Registry
	logger      *zap.Logger
	concurrency int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithConcurrency bounds concurrent fetches in IngestAll.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// NewManager creates a manager over an open store.
//
// Every registered column must be typed by the catalog; an untyped column
// fails with UNKNOWN_COLUMN here rather than at Initialize.
func NewManager(st *store.Store, cat *catalog.Catalog, f store.Fetcher, reg *Registry, opts ...Option) (*Manager, error) {
	if st == nil {
		return nil, fmt.Errorf("new manager: nil store")
	}
	if cat == nil {
		return nil, fmt.Errorf("new manager: nil catalog")
	}
	if reg == nil {
		return nil, fmt.Errorf("new manager: nil registry")
	}

	for _, e := range reg.Entries() {
		for _, col := range e.Def.Columns {
			if !cat.Has(col) {
				return nil, fmt.Errorf("new manager: %w", ir.NewUnknownColumn(e.Def.Name, col, "not in schema catalog"))
			}
		}
	}

	m := &Manager{
		store:       st,
		catalog:     cat,
		fetcher:     f,
		registry:    reg,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Registry returns the manager's registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Tables returns the registered table names in registration order.
func (m *Manager) Tables() []string {
	return m.registry.Names()
}

// Initialize drops and recreates every registered table.
// Calling it on a populated database empties every registered table.
func (m *Manager) Initialize(ctx context.Context) error {
	for _, e := range m.registry.Entries() {
		if err := m.store.DefineTable(ctx, m.catalog, e.Def); err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
	}
	m.logger.Info("tables initialized", zap.Int("tables", len(m.registry.entries)))
	return nil
}

// Ingest fetches one period of a table and applies the table's discipline.
func (m *Manager) Ingest(ctx context.Context, table string, year, month int) (store.IngestResult, error) {
	e, err := m.entry(table)
	if err != nil {
		return store.IngestResult{}, err
	}
	if m.fetcher == nil {
		return store.IngestResult{}, fmt.Errorf("ingest %s: no fetcher configured", table)
	}

	switch e.Discipline {
	case store.Replacing:
		return m.store.IngestSnapshot(ctx, e.Def, m.fetcher, year, month)
	default:
		return m.store.IngestPeriod(ctx, e.Def, m.fetcher, year, month)
	}
}

// IngestAll ingests one period for the named tables, or every registered
// table when none are named.
//
// Archives are fetched concurrently, bounded by the configured concurrency.
// Writes happen one table at a time, in the order named (registry order when
// none are named), after every fetch has succeeded. A failed fetch cancels
// the remaining fetches and nothing is written.
//
// Each table's write is its own transaction. If a write fails, tables
// written before it stay committed; the returned results list exactly those
// tables alongside the error.
func (m *Manager) IngestAll(ctx context.Context, year, month int, tables ...string) ([]store.IngestResult, error) {
	if m.fetcher == nil {
		return nil, fmt.Errorf("ingest all: no fetcher configured")
	}
	period := store.Period{Year: year, Month: month}
	if err := period.Validate(); err != nil {
		return nil, fmt.Errorf("ingest all: %w", err)
	}

	entries, err := m.selectEntries(tables)
	if err != nil {
		return nil, err
	}

	fetched := make([]ir.RecordSet, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, e := range entries {
		g.Go(func() error {
			start := time.Now()
			rs, err := m.fetcher.Fetch(gctx, e.Def.Name, year, month)
			if err != nil {
				return fmt.Errorf("ingest %s %s: %w", e.Def.Name, period, err)
			}
			m.logger.Debug("fetched",
				zap.String("table", e.Def.Name),
				zap.String("period", period.String()),
				zap.Int("rows", rs.Len()),
				zap.Duration("elapsed", time.Since(start)))
			fetched[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]store.IngestResult, 0, len(entries))
	for i, e := range entries {
		res, err := m.store.Write(ctx, e.Def, e.Discipline, period, fetched[i])
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Resolve returns the rows of a table in effect at the instant, ordered by
// primary key. An empty result is not an error.
func (m *Manager) Resolve(ctx context.Context, table string, at ir.Instant) (ir.RecordSet, error) {
	e, err := m.entry(table)
	if err != nil {
		return ir.RecordSet{}, err
	}

	query, args, err := querysql.Compile(e.Def, e.Strategy, at)
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("resolve %s: %w", table, err)
	}

	rs, err := m.store.QueryRecords(ctx, query, args...)
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("resolve %s at %s: %w", table, at, err)
	}

	m.logger.Debug("resolved",
		zap.String("table", table),
		zap.String("strategy", e.Strategy.Name()),
		zap.Stringer("at", at),
		zap.Int("rows", rs.Len()))
	return rs, nil
}

func (m *Manager) entry(table string) (Entry, error) {
	e, ok := m.registry.Lookup(table)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return e, nil
}

func (m *Manager) selectEntries(tables []string) ([]Entry, error) {
	if len(tables) == 0 {
		return m.registry.Entries(), nil
	}
	entries := make([]Entry, 0, len(tables))
	for _, name := range tables {
		e, err := m.entry(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
