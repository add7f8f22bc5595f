package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nemhist/internal/catalog"
	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/store"
	"github.com/roach88/nemhist/internal/testutil"
)

// testEnv is an initialized manager over an on-disk store.
type testEnv struct {
	ctx     context.Context
	store   *store.Store
	fetcher *testutil.FakeFetcher
	manager *Manager
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := testutil.NewFakeFetcher()
	m, err := NewManager(st, catalog.MustDefault(), f, DefaultRegistry(), opts...)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.Initialize(ctx))
	return &testEnv{ctx: ctx, store: st, fetcher: f, manager: m}
}

// fixture builds a record set in the shape of a monthly archive for a
// registered table. Unset columns are Null; INTERVENTION defaults to 0.
func fixture(table string, rows ...map[string]any) ir.RecordSet {
	e, ok := DefaultRegistry().Lookup(table)
	if !ok {
		panic("fixture: unknown table " + table)
	}
	cols := append(append([]string(nil), e.Def.Columns...), store.InterventionColumn)

	data := make([][]any, len(rows))
	for i, row := range rows {
		vals := make([]any, len(cols))
		for j, c := range cols {
			vals[j] = row[c]
		}
		if _, ok := row[store.InterventionColumn]; !ok {
			vals[len(cols)-1] = 0
		}
		data[i] = vals
	}
	return testutil.Records(cols, data...)
}

// load serves a fixture for January 2020 and ingests it.
func (e *testEnv) load(t *testing.T, table string, rows ...map[string]any) {
	t.Helper()
	e.fetcher.Set(table, 2020, 1, fixture(table, rows...))
	_, err := e.manager.Ingest(e.ctx, table, 2020, 1)
	require.NoError(t, err)
}

func (e *testEnv) resolve(t *testing.T, table, at string) ir.RecordSet {
	t.Helper()
	rs, err := e.manager.Resolve(e.ctx, table, ir.MustParseInstant(at))
	require.NoError(t, err)
	return rs
}
