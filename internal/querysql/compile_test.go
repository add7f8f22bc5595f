package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/queryir"
	"github.com/roach88/nemhist/internal/store"
)

var at = ir.MustParseInstant("2020/01/02 04:00:00")

var loadDef = store.TableDef{
	Name:       "DISPATCHLOAD",
	Columns:    []string{"SETTLEMENTDATE", "DUID", "INITIALMW"},
	PrimaryKey: []string{"SETTLEMENTDATE", "DUID"},
}

var lossDef = store.TableDef{
	Name:       "LOSSMODEL",
	Columns:    []string{"EFFECTIVEDATE", "VERSIONNO", "INTERCONNECTORID", "LOSSSEGMENT", "MWBREAKPOINT"},
	PrimaryKey: []string{"EFFECTIVEDATE", "VERSIONNO", "INTERCONNECTORID", "LOSSSEGMENT"},
}

func TestCompile_ExactTimestamp(t *testing.T) {
	sql, params, err := Compile(loadDef, queryir.ExactTimestamp{Column: "SETTLEMENTDATE"}, at)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t.SETTLEMENTDATE AS SETTLEMENTDATE, t.DUID AS DUID, t.INITIALMW AS INITIALMW "+
			"FROM DISPATCHLOAD AS t WHERE t.SETTLEMENTDATE = ? "+
			"ORDER BY t.SETTLEMENTDATE COLLATE BINARY, t.DUID COLLATE BINARY",
		sql)
	assert.Equal(t, []any{"2020/01/02 04:00:00"}, params)
	assert.NotContains(t, sql, "2020")
}

func TestCompile_MarketDay(t *testing.T) {
	tests := []struct {
		instant string
		want    string
	}{
		{"2020/01/02 04:00:00", "2020/01/01 00:00:00"},
		{"2020/01/02 04:05:00", "2020/01/02 00:00:00"},
		{"2020/01/02 00:00:00", "2020/01/01 00:00:00"},
		{"2020/01/02 23:55:00", "2020/01/02 00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.instant, func(t *testing.T) {
			sql, params, err := Compile(loadDef, queryir.MarketDay{Column: "SETTLEMENTDATE"}, ir.MustParseInstant(tt.instant))
			require.NoError(t, err)
			assert.Contains(t, sql, "WHERE t.SETTLEMENTDATE = ?")
			assert.Equal(t, []any{tt.want}, params)
		})
	}
}

func TestCompile_ValidityRange(t *testing.T) {
	def := store.TableDef{
		Name:       "DUDETAILSUMMARY",
		Columns:    []string{"DUID", "START_DATE", "END_DATE"},
		PrimaryKey: []string{"START_DATE", "DUID"},
	}
	sql, params, err := Compile(def, queryir.ValidityRange{Start: "START_DATE", End: "END_DATE"}, at)
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE t.START_DATE <= ? AND t.END_DATE > ?")
	assert.Contains(t, sql, "ORDER BY t.START_DATE COLLATE BINARY, t.DUID COLLATE BINARY")
	assert.Equal(t, []any{at.String(), at.String()}, params)
}

func TestCompile_ReferentialMatch(t *testing.T) {
	def := store.TableDef{
		Name:       "GENCONDATA",
		Columns:    []string{"GENCONID", "EFFECTIVEDATE", "VERSIONNO", "CONSTRAINTTYPE"},
		PrimaryKey: []string{"GENCONID", "EFFECTIVEDATE", "VERSIONNO"},
	}
	s := queryir.ReferentialMatch{
		Reference:     "DISPATCHCONSTRAINT",
		ReferenceTime: "SETTLEMENTDATE",
		On: []queryir.ColumnPair{
			{Column: "GENCONID", RefColumn: "CONSTRAINTID"},
			{Column: "EFFECTIVEDATE", RefColumn: "GENCONID_EFFECTIVEDATE"},
			{Column: "VERSIONNO", RefColumn: "GENCONID_VERSIONNO"},
		},
	}
	sql, params, err := Compile(def, s, at)
	require.NoError(t, err)

	assert.Contains(t, sql, "INNER JOIN (SELECT DISTINCT CONSTRAINTID, GENCONID_EFFECTIVEDATE, GENCONID_VERSIONNO "+
		"FROM DISPATCHCONSTRAINT WHERE SETTLEMENTDATE = ?) AS ref")
	assert.Contains(t, sql, "ON t.GENCONID = ref.CONSTRAINTID AND t.EFFECTIVEDATE = ref.GENCONID_EFFECTIVEDATE AND t.VERSIONNO = ref.GENCONID_VERSIONNO")
	assert.Contains(t, sql, "ORDER BY t.GENCONID COLLATE BINARY")
	assert.Equal(t, []any{at.String()}, params)
}

func TestCompile_EffectiveVersion(t *testing.T) {
	sql, params, err := Compile(lossDef, queryir.EffectiveVersion{Keys: []string{"INTERCONNECTORID"}}, at)
	require.NoError(t, err)

	assert.Contains(t, sql, "WITH eligible AS (SELECT EFFECTIVEDATE, VERSIONNO, INTERCONNECTORID, LOSSSEGMENT, MWBREAKPOINT FROM LOSSMODEL WHERE EFFECTIVEDATE <= ?)")
	assert.Contains(t, sql, "MAX(CAST(VERSIONNO AS INTEGER)) AS VERSION FROM eligible GROUP BY INTERCONNECTORID, EFFECTIVEDATE")
	assert.Contains(t, sql, "latest_date AS (SELECT INTERCONNECTORID, MAX(EFFECTIVEDATE) AS EFFECTIVEDATE FROM eligible GROUP BY INTERCONNECTORID)")
	assert.Contains(t, sql, "CAST(t.VERSIONNO AS INTEGER) = cv.VERSION")
	assert.NotContains(t, sql, "in_use")
	assert.Contains(t, sql, "ORDER BY t.EFFECTIVEDATE COLLATE BINARY, t.VERSIONNO COLLATE BINARY, t.INTERCONNECTORID COLLATE BINARY, t.LOSSSEGMENT COLLATE BINARY")
	assert.Equal(t, []any{at.String()}, params)
}

func TestCompile_EffectiveVersionWithUsage(t *testing.T) {
	s := queryir.EffectiveVersion{
		Keys:  []string{"INTERCONNECTORID"},
		Usage: &queryir.UsageFilter{Table: "DISPATCHINTERCONNECTORRES", Time: "SETTLEMENTDATE"},
	}
	sql, params, err := Compile(lossDef, s, at)
	require.NoError(t, err)

	assert.Contains(t, sql, "in_use AS (SELECT DISTINCT INTERCONNECTORID FROM DISPATCHINTERCONNECTORRES WHERE SETTLEMENTDATE = ?)")
	assert.Contains(t, sql, "INNER JOIN in_use AS u ON t.INTERCONNECTORID = u.INTERCONNECTORID")
	assert.Equal(t, []any{at.String(), at.String()}, params)
}

func TestCompile_NoFilter(t *testing.T) {
	sql, params, err := Compile(loadDef, queryir.NoFilter{}, at)
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY")
	assert.Empty(t, params)
}

func TestCompile_Errors(t *testing.T) {
	t.Run("nil strategy", func(t *testing.T) {
		_, _, err := Compile(loadDef, nil, at)
		require.Error(t, err)
	})

	t.Run("zero instant", func(t *testing.T) {
		_, _, err := Compile(loadDef, queryir.NoFilter{}, ir.Instant{})
		require.Error(t, err)
	})

	t.Run("undeclared column", func(t *testing.T) {
		_, _, err := Compile(loadDef, queryir.ExactTimestamp{Column: "INTERVAL_DATETIME"}, at)
		require.Error(t, err)
		assert.True(t, ir.IsUnknownColumn(err))
	})

	t.Run("injected reference", func(t *testing.T) {
		_, _, err := Compile(loadDef, queryir.ReferentialMatch{
			Reference:     "X; DROP TABLE DISPATCHLOAD",
			ReferenceTime: "SETTLEMENTDATE",
			On:            []queryir.ColumnPair{{Column: "DUID", RefColumn: "DUID"}},
		}, at)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid identifier")
	})

	t.Run("unversioned table", func(t *testing.T) {
		_, _, err := Compile(loadDef, queryir.EffectiveVersion{Keys: []string{"DUID"}}, at)
		require.Error(t, err)
		assert.True(t, ir.IsUnknownColumn(err))
	})
}
