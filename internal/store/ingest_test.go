package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/testutil"
)

func unitArchive(rows ...[]any) ir.RecordSet {
	// Archives carry more columns than the table declares.
	return testutil.Records([]string{"DUID", "START_DATE", "END_DATE", "REGIONID"}, rows...)
}

func TestIngestSnapshot_IdempotentReplace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, unitDef)

	f := testutil.NewFakeFetcher().Set("DUDETAILSUMMARY", 2020, 1, unitArchive(
		[]any{"UNIT1", "2019/01/01 00:00:00", "2999/12/31 00:00:00", "NSW1"},
		[]any{"UNIT2", "2019/06/01 00:00:00", "2999/12/31 00:00:00", "VIC1"},
	))

	first, err := s.IngestSnapshot(ctx, unitDef, f, 2020, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Rows)
	assert.Equal(t, Replacing, first.Discipline)

	once, err := s.QueryRecords(ctx, "SELECT * FROM DUDETAILSUMMARY ORDER BY DUID")
	require.NoError(t, err)

	_, err = s.IngestSnapshot(ctx, unitDef, f, 2020, 1)
	require.NoError(t, err)

	twice, err := s.QueryRecords(ctx, "SELECT * FROM DUDETAILSUMMARY ORDER BY DUID")
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"DUID", "START_DATE", "REGIONID"}, twice.Columns)
}

func TestIngestSnapshot_OlderPeriodRegresses(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, unitDef)

	f := testutil.NewFakeFetcher().
		Set("DUDETAILSUMMARY", 2020, 1, unitArchive(
			[]any{"UNIT1", "2019/01/01 00:00:00", "2999/12/31 00:00:00", "NSW1"},
			[]any{"UNIT2", "2020/01/15 00:00:00", "2999/12/31 00:00:00", "VIC1"},
		)).
		Set("DUDETAILSUMMARY", 2019, 1, unitArchive(
			[]any{"UNIT1", "2019/01/01 00:00:00", "2999/12/31 00:00:00", "NSW1"},
		))

	_, err := s.IngestSnapshot(ctx, unitDef, f, 2020, 1)
	require.NoError(t, err)
	_, err = s.IngestSnapshot(ctx, unitDef, f, 2019, 1)
	require.NoError(t, err)

	rs, err := s.QueryRecords(ctx, "SELECT DUID FROM DUDETAILSUMMARY")
	require.NoError(t, err)
	assert.Equal(t, []string{"UNIT1"}, testutil.Column(rs, "DUID"))
}

func TestIngestPeriod_AppendAccumulates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)

	cols := []string{"SETTLEMENTDATE", "RUNNO", "DUID", "INTERVENTION", "INITIALMW"}
	f := testutil.NewFakeFetcher().
		Set("DISPATCHLOAD", 2020, 1, testutil.Records(cols,
			[]any{"2020/01/31 23:55:00", 1, "UNIT1", 0, 10.0},
			[]any{"2020/01/31 23:55:00", 1, "UNIT2", 0, 20.0},
			[]any{"2020/01/31 23:55:00", 1, "UNIT2", 1, 25.0},
		)).
		Set("DISPATCHLOAD", 2019, 12, testutil.Records(cols,
			[]any{"2019/12/31 23:55:00", 1, "UNIT1", 0, 5.0},
		))

	jan, err := s.IngestPeriod(ctx, loadDef, f, 2020, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, jan.Rows)
	assert.Equal(t, 1, jan.SkippedIntervention)

	// Periods may be ingested out of order.
	dec, err := s.IngestPeriod(ctx, loadDef, f, 2019, 12)
	require.NoError(t, err)
	assert.Equal(t, 1, dec.Rows)

	assert.Equal(t, 3, countRows(t, s, "DISPATCHLOAD"))

	rs, err := s.QueryRecords(ctx, "SELECT INITIALMW FROM DISPATCHLOAD WHERE DUID = 'UNIT2'")
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, 20.0, rs.Rows[0].Real("INITIALMW"))
}

func TestIngestPeriod_DuplicateKeyRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)

	f := testutil.NewFakeFetcher().Set("DISPATCHLOAD", 2020, 1, testutil.Records(loadDef.Columns,
		[]any{"2020/01/01 00:05:00", "UNIT1", 10.0},
		[]any{"2020/01/01 00:05:00", "UNIT2", 20.0},
	))

	_, err := s.IngestPeriod(ctx, loadDef, f, 2020, 1)
	require.NoError(t, err)

	_, err = s.IngestPeriod(ctx, loadDef, f, 2020, 1)
	require.Error(t, err)
	assert.True(t, ir.IsDuplicateKey(err))

	assert.Equal(t, 2, countRows(t, s, "DISPATCHLOAD"))

	history, err := s.IngestHistory(ctx, "DISPATCHLOAD")
	require.NoError(t, err)
	assert.Len(t, history, 1, "failed ingestion must not be logged")
}

func TestAppendRecords_DuplicateWithinBatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)

	_, err := s.AppendRecords(ctx, loadDef, Period{Year: 2020, Month: 1}, testutil.Records(loadDef.Columns,
		[]any{"2020/01/01 00:05:00", "UNIT1", 10.0},
		[]any{"2020/01/01 00:10:00", "UNIT1", 11.0},
		[]any{"2020/01/01 00:05:00", "UNIT1", 12.0},
	))
	require.Error(t, err)
	assert.True(t, ir.IsDuplicateKey(err))

	// Nothing from the failed batch is visible.
	assert.Equal(t, 0, countRows(t, s, "DISPATCHLOAD"))
}

func TestReplaceRecords_DuplicateKeepsPreviousContent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, unitDef)

	good := unitArchive([]any{"UNIT1", "2019/01/01 00:00:00", "2999/12/31 00:00:00", "NSW1"})
	_, err := s.ReplaceRecords(ctx, unitDef, Period{Year: 2020, Month: 1}, good)
	require.NoError(t, err)

	bad := unitArchive(
		[]any{"UNIT2", "2019/01/01 00:00:00", "2999/12/31 00:00:00", "NSW1"},
		[]any{"UNIT2", "2019/01/01 00:00:00", "2999/12/31 00:00:00", "VIC1"},
	)
	_, err = s.ReplaceRecords(ctx, unitDef, Period{Year: 2020, Month: 2}, bad)
	require.Error(t, err)
	assert.True(t, ir.IsDuplicateKey(err))

	rs, err := s.QueryRecords(ctx, "SELECT DUID FROM DUDETAILSUMMARY")
	require.NoError(t, err)
	assert.Equal(t, []string{"UNIT1"}, testutil.Column(rs, "DUID"))
}

func TestIngest_SourceUnavailablePropagates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)
	f := testutil.NewFakeFetcher()

	_, err := s.IngestPeriod(ctx, loadDef, f, 2020, 3)
	require.Error(t, err)
	assert.True(t, ir.IsSourceUnavailable(err))

	_, err = s.IngestSnapshot(ctx, unitDef, f, 2020, 3)
	assert.True(t, ir.IsSourceUnavailable(err))

	// Fetched exactly once per call: no retry at this layer.
	assert.Len(t, f.Calls(), 2)
}

func TestIngest_MissingArchiveColumn(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)

	_, err := s.AppendRecords(ctx, loadDef, Period{Year: 2020, Month: 1},
		testutil.Records([]string{"SETTLEMENTDATE", "DUID"}, []any{"2020/01/01 00:05:00", "UNIT1"}))
	require.Error(t, err)
	assert.True(t, ir.IsUnknownColumn(err))

	var e *ir.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "INITIALMW", e.Column)
	assert.Equal(t, "DISPATCHLOAD", e.Table)
}

func TestIngest_InvalidInputs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)
	f := testutil.NewFakeFetcher()

	_, err := s.IngestPeriod(ctx, loadDef, f, 2020, 13)
	assert.Error(t, err)
	assert.Empty(t, f.Calls(), "invalid period must not reach the fetcher")

	_, err = s.Write(ctx, loadDef, Discipline("merge"), Period{Year: 2020, Month: 1}, ir.NewRecordSet(loadDef.Columns...))
	assert.Error(t, err)
}

func TestIngestHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	defineTestTable(t, s, loadDef)
	defineTestTable(t, s, unitDef)

	_, err := s.AppendRecords(ctx, loadDef, Period{Year: 2020, Month: 1}, testutil.Records(loadDef.Columns,
		[]any{"2020/01/01 00:05:00", "UNIT1", 10.0},
	))
	require.NoError(t, err)
	_, err = s.ReplaceRecords(ctx, unitDef, Period{Year: 2020, Month: 2}, unitArchive(
		[]any{"UNIT1", "2019/01/01 00:00:00", "2999/12/31 00:00:00", "NSW1"},
	))
	require.NoError(t, err)

	all, err := s.IngestHistory(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "DISPATCHLOAD", all[0].Table)
	assert.Equal(t, Appending, all[0].Discipline)
	assert.Equal(t, Period{Year: 2020, Month: 1}, all[0].Period)
	assert.Equal(t, 1, all[0].Rows)
	assert.False(t, all[0].IngestedAt.IsZero())
	assert.Equal(t, "DUDETAILSUMMARY", all[1].Table)
	assert.Equal(t, Replacing, all[1].Discipline)

	units, err := s.IngestHistory(ctx, "DUDETAILSUMMARY")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, all[1].RunID, units[0].RunID)
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "2020-01", Period{Year: 2020, Month: 1}.String())
	assert.NoError(t, Period{Year: 2020, Month: 12}.Validate())
	assert.Error(t, Period{Year: 2020, Month: 0}.Validate())
	assert.Error(t, Period{Year: 0, Month: 1}.Validate())
}
