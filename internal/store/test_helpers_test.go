package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/nemhist/internal/catalog"
)

// createTestStore creates a new on-disk store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// loadDef is a small DISPATCHLOAD-shaped table used across store tests.
var loadDef = TableDef{
	Name:       "DISPATCHLOAD",
	Columns:    []string{"SETTLEMENTDATE", "DUID", "INITIALMW"},
	PrimaryKey: []string{"SETTLEMENTDATE", "DUID"},
}

// unitDef is a DUDETAILSUMMARY-shaped table used for replace tests.
var unitDef = TableDef{
	Name:       "DUDETAILSUMMARY",
	Columns:    []string{"DUID", "START_DATE", "REGIONID"},
	PrimaryKey: []string{"START_DATE", "DUID"},
}

// defineTestTable materializes def with the default catalog.
func defineTestTable(t *testing.T, s *Store, def TableDef) {
	t.Helper()
	require.NoError(t, s.DefineTable(context.Background(), catalog.MustDefault(), def))
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	n, err := s.CountRows(context.Background(), table)
	require.NoError(t, err)
	return n
}
