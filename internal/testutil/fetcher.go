package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/nemhist/internal/ir"
)

// FetchCall records one Fetch invocation.
type FetchCall struct {
	Table string
	Year  int
	Month int
}

// FakeFetcher serves canned record sets keyed by (table, year, month).
// Unknown periods fail with SOURCE_UNAVAILABLE, like a missing archive.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeFetcher struct {
	mu    sync.Mutex
	data  map[string]ir.RecordSet
	errs  map[string]error
	calls []FetchCall
}

// NewFakeFetcher creates an empty fetcher.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		data: make(map[string]ir.RecordSet),
		errs: make(map[string]error),
	}
}

func fetchKey(table string, year, month int) string {
	return fmt.Sprintf("%s/%04d/%02d", table, year, month)
}

// Set registers the record set returned for a period.
func (f *FakeFetcher) Set(table string, year, month int, rs ir.RecordSet) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[fetchKey(table, year, month)] = rs
	return f
}

// Fail makes Fetch return err for a period.
func (f *FakeFetcher) Fail(table string, year, month int, err error) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[fetchKey(table, year, month)] = err
	return f
}

// Fetch implements the archive-fetch contract.
func (f *FakeFetcher) Fetch(ctx context.Context, table string, year, month int) (ir.RecordSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, FetchCall{Table: table, Year: year, Month: month})

	if err := ctx.Err(); err != nil {
		return ir.RecordSet{}, ir.NewSourceUnavailable(table, year, month, err)
	}

	key := fetchKey(table, year, month)
	if err, ok := f.errs[key]; ok {
		return ir.RecordSet{}, err
	}
	rs, ok := f.data[key]
	if !ok {
		return ir.RecordSet{}, ir.NewSourceUnavailable(table, year, month, fmt.Errorf("no fixture"))
	}

	// Hand out a copy so callers cannot mutate the fixture.
	out := ir.NewRecordSet(rs.Columns...)
	for _, row := range rs.Rows {
		if err := out.Append(rs.Values(row)...); err != nil {
			return ir.RecordSet{}, err
		}
	}
	return out, nil
}

// Calls returns the recorded Fetch invocations in order.
func (f *FakeFetcher) Calls() []FetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FetchCall(nil), f.calls...)
}
