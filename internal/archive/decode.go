package archive

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/roach88/nemhist/internal/catalog"
	"github.com/roach88/nemhist/internal/ir"
)

// Decode unzips an archive and parses the first file it holds.
func Decode(data []byte, cat *catalog.Catalog) (ir.RecordSet, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("open zip: %w", err)
	}
	if len(zr.File) == 0 {
		return ir.RecordSet{}, fmt.Errorf("open zip: archive is empty")
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("open %s: %w", zr.File[0].Name, err)
	}
	defer rc.Close()

	rs, err := ParseCSV(rc, cat)
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("parse %s: %w", zr.File[0].Name, err)
	}
	return rs, nil
}

// ParseCSV reads one MMS CSV report.
//
// The first line is skipped, the second is the column header and the last
// line is a footer that is dropped. A nil catalog leaves every cell as text.
func ParseCSV(r io.Reader, cat *catalog.Catalog) (ir.RecordSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		return ir.RecordSet{}, fmt.Errorf("read report header: %w", err)
	}
	header, err := cr.Read()
	if err != nil {
		return ir.RecordSet{}, fmt.Errorf("read column header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	types := make([]catalog.ColumnType, len(header))
	for i, col := range header {
		types[i] = catalog.Text
		if cat == nil {
			continue
		}
		if typ, err := cat.Lookup(col); err == nil {
			types[i] = typ
		}
	}

	var lines [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ir.RecordSet{}, fmt.Errorf("read row %d: %w", len(lines)+1, err)
		}
		lines = append(lines, rec)
	}
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}

	rs := ir.NewRecordSet(header...)
	for n, rec := range lines {
		if len(rec) != len(header) {
			return ir.RecordSet{}, fmt.Errorf("row %d: got %d fields for %d columns", n+1, len(rec), len(header))
		}
		vals := make([]ir.Value, len(rec))
		for i, cell := range rec {
			v, err := typed(cell, types[i])
			if err != nil {
				return ir.RecordSet{}, fmt.Errorf("row %d column %s: %w", n+1, header[i], err)
			}
			vals[i] = v
		}
		if err := rs.Append(vals...); err != nil {
			return ir.RecordSet{}, err
		}
	}
	return rs, nil
}

func typed(cell string, typ catalog.ColumnType) (ir.Value, error) {
	if cell == "" {
		return ir.Null{}, nil
	}
	if typ != catalog.Real {
		return ir.Text(cell), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return nil, fmt.Errorf("parse number %q: %w", cell, err)
	}
	return ir.Real(f), nil
}
