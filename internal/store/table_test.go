package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nemhist/internal/catalog"
	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/testutil"
)

func TestDefineTable_CreatesTypedTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	defineTestTable(t, s, loadDef)

	exists, err := s.TableExists(ctx, "DISPATCHLOAD")
	require.NoError(t, err)
	assert.True(t, exists)

	rows, err := s.db.QueryContext(ctx, "SELECT name, type, pk FROM pragma_table_info('DISPATCHLOAD') ORDER BY cid")
	require.NoError(t, err)
	defer rows.Close()

	type colInfo struct {
		name, typ string
		pk        int
	}
	var got []colInfo
	for rows.Next() {
		var c colInfo
		require.NoError(t, rows.Scan(&c.name, &c.typ, &c.pk))
		got = append(got, c)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []colInfo{
		{"SETTLEMENTDATE", "TEXT", 1},
		{"DUID", "TEXT", 2},
		{"INITIALMW", "REAL", 0},
	}, got)
}

func TestDefineTable_DropsExistingContent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)

	_, err := s.AppendRecords(ctx, loadDef, Period{Year: 2020, Month: 1}, testutil.Records(loadDef.Columns,
		[]any{"2020/01/01 00:05:00", "UNIT1", 10.0},
	))
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, s, "DISPATCHLOAD"))

	defineTestTable(t, s, loadDef)
	assert.Equal(t, 0, countRows(t, s, "DISPATCHLOAD"))
}

func TestDefineTable_UnknownColumn(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)

	bad := TableDef{
		Name:       "DISPATCHLOAD",
		Columns:    []string{"SETTLEMENTDATE", "NOT_IN_CATALOG"},
		PrimaryKey: []string{"SETTLEMENTDATE"},
	}
	err := s.DefineTable(ctx, catalog.MustDefault(), bad)
	require.Error(t, err)
	assert.True(t, ir.IsUnknownColumn(err))

	var e *ir.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "NOT_IN_CATALOG", e.Column)
	assert.Equal(t, "DISPATCHLOAD", e.Table)

	// The existing table survives a failed definition.
	exists, err := s.TableExists(ctx, "DISPATCHLOAD")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTableDef_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     TableDef
		unknown bool
	}{
		{"bad table name", TableDef{Name: "A-B", Columns: []string{"DUID"}, PrimaryKey: []string{"DUID"}}, false},
		{"no columns", TableDef{Name: "A", PrimaryKey: []string{"DUID"}}, false},
		{"no primary key", TableDef{Name: "A", Columns: []string{"DUID"}}, false},
		{"duplicate column", TableDef{Name: "A", Columns: []string{"DUID", "DUID"}, PrimaryKey: []string{"DUID"}}, false},
		{"bad column name", TableDef{Name: "A", Columns: []string{"DU ID"}, PrimaryKey: []string{"DUID"}}, false},
		{"undeclared key", TableDef{Name: "A", Columns: []string{"DUID"}, PrimaryKey: []string{"BIDTYPE"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.unknown, ir.IsUnknownColumn(err))
		})
	}

	assert.NoError(t, loadDef.Validate())
	assert.True(t, loadDef.HasColumn("DUID"))
	assert.False(t, loadDef.HasColumn("RRP"))
}
