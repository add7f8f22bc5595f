package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/nemhist/internal/ir"
	"github.com/roach88/nemhist/internal/queryir"
	"github.com/roach88/nemhist/internal/store"
)

// targetAlias qualifies the resolved table's columns in every statement.
const targetAlias = "t"

// Compile converts a strategy bound to a table into one SQL statement.
// Returns (sql, params, error).
func Compile(def store.TableDef, s queryir.Strategy, at ir.Instant) (string, []any, error) {
	if s == nil {
		return "", nil, fmt.Errorf("cannot compile nil strategy")
	}
	if err := def.Validate(); err != nil {
		return "", nil, fmt.Errorf("compile %s: %w", s.Name(), err)
	}
	if at.IsZero() {
		return "", nil, fmt.Errorf("compile %s: zero instant", s.Name())
	}

	switch st := s.(type) {
	case queryir.ExactTimestamp:
		return compileEquals(def, st.Column, at.String())
	case queryir.MarketDay:
		return compileEquals(def, st.Column, at.MarketDay().String())
	case queryir.ValidityRange:
		return compileValidityRange(def, st, at)
	case queryir.ReferentialMatch:
		return compileReferentialMatch(def, st, at)
	case queryir.EffectiveVersion:
		return compileEffectiveVersion(def, st, at)
	case queryir.NoFilter:
		return compileNoFilter(def)
	default:
		return "", nil, fmt.Errorf("unsupported strategy type: %T", s)
	}
}

// compileEquals selects rows whose column equals a single text value.
func compileEquals(def store.TableDef, column, value string) (string, []any, error) {
	if err := checkColumns(def, column); err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT %s FROM %s AS %s WHERE %s = ? ORDER BY %s",
		selectList(def),
		def.Name, targetAlias,
		qualify(targetAlias, column),
		orderBy(def),
	)
	return sql, []any{value}, nil
}

// compileValidityRange selects rows whose [start, end) interval contains
// the instant.
func compileValidityRange(def store.TableDef, st queryir.ValidityRange, at ir.Instant) (string, []any, error) {
	if err := checkColumns(def, st.Start, st.End); err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT %s FROM %s AS %s WHERE %s <= ? AND %s > ? ORDER BY %s",
		selectList(def),
		def.Name, targetAlias,
		qualify(targetAlias, st.Start),
		qualify(targetAlias, st.End),
		orderBy(def),
	)
	return sql, []any{at.String(), at.String()}, nil
}

// compileReferentialMatch joins the table against the reference rows
// stamped with the instant. DISTINCT keeps a target row from repeating when
// several reference rows carry the same key.
func compileReferentialMatch(def store.TableDef, st queryir.ReferentialMatch, at ir.Instant) (string, []any, error) {
	if len(st.On) == 0 {
		return "", nil, fmt.Errorf("compile %s: no column pairs", st.Name())
	}
	if err := store.ValidateIdentifier(st.Reference); err != nil {
		return "", nil, fmt.Errorf("compile %s: reference: %w", st.Name(), err)
	}
	if err := store.ValidateIdentifier(st.ReferenceTime); err != nil {
		return "", nil, fmt.Errorf("compile %s: reference time: %w", st.Name(), err)
	}

	refCols := make([]string, 0, len(st.On))
	conds := make([]string, 0, len(st.On))
	for _, p := range st.On {
		if err := checkColumns(def, p.Column); err != nil {
			return "", nil, err
		}
		if err := store.ValidateIdentifier(p.RefColumn); err != nil {
			return "", nil, fmt.Errorf("compile %s: reference column: %w", st.Name(), err)
		}
		refCols = append(refCols, p.RefColumn)
		conds = append(conds, fmt.Sprintf("%s = %s", qualify(targetAlias, p.Column), qualify("ref", p.RefColumn)))
	}

	sql := fmt.Sprintf(
		"SELECT %s FROM %s AS %s INNER JOIN (SELECT DISTINCT %s FROM %s WHERE %s = ?) AS ref ON %s ORDER BY %s",
		selectList(def),
		def.Name, targetAlias,
		strings.Join(refCols, ", "),
		st.Reference,
		st.ReferenceTime,
		strings.Join(conds, " AND "),
		orderBy(def),
	)
	return sql, []any{at.String()}, nil
}

// compileEffectiveVersion builds the versioned-record plan:
//
//	eligible         rows with EFFECTIVEDATE <= instant
//	latest_version   highest numeric VERSIONNO per (key, EFFECTIVEDATE)
//	latest_date      latest EFFECTIVEDATE per key
//	current_version  latest_version restricted to latest_date
//	in_use           keys present in the usage table at the instant (optional)
//
// The final select joins eligible rows back to current_version, returning
// every row of the winning (key, EFFECTIVEDATE, VERSIONNO) family.
func compileEffectiveVersion(def store.TableDef, st queryir.EffectiveVersion, at ir.Instant) (string, []any, error) {
	if len(st.Keys) == 0 {
		return "", nil, fmt.Errorf("compile %s: no key columns", st.Name())
	}
	if err := checkColumns(def, append([]string{queryir.EffectiveDateColumn, queryir.VersionColumn}, st.Keys...)...); err != nil {
		return "", nil, err
	}

	const (
		date    = queryir.EffectiveDateColumn
		version = queryir.VersionColumn
	)
	keys := strings.Join(st.Keys, ", ")
	params := []any{at.String()}

	var b strings.Builder
	fmt.Fprintf(&b, "WITH eligible AS (SELECT %s FROM %s WHERE %s <= ?), ",
		strings.Join(def.Columns, ", "), def.Name, date)
	fmt.Fprintf(&b, "latest_version AS (SELECT %s, %s, MAX(CAST(%s AS INTEGER)) AS VERSION FROM eligible GROUP BY %s, %s), ",
		keys, date, version, keys, date)
	fmt.Fprintf(&b, "latest_date AS (SELECT %s, MAX(%s) AS %s FROM eligible GROUP BY %s), ",
		keys, date, date, keys)
	fmt.Fprintf(&b, "current_version AS (SELECT %s, lv.%s, lv.VERSION FROM latest_version AS lv INNER JOIN latest_date AS ld ON %s)",
		qualifyAll("lv", st.Keys), date, joinOn("lv", "ld", append(append([]string(nil), st.Keys...), date)))

	if st.Usage != nil {
		if err := store.ValidateIdentifier(st.Usage.Table); err != nil {
			return "", nil, fmt.Errorf("compile %s: usage table: %w", st.Name(), err)
		}
		if err := store.ValidateIdentifier(st.Usage.Time); err != nil {
			return "", nil, fmt.Errorf("compile %s: usage time: %w", st.Name(), err)
		}
		fmt.Fprintf(&b, ", in_use AS (SELECT DISTINCT %s FROM %s WHERE %s = ?)",
			keys, st.Usage.Table, st.Usage.Time)
		params = append(params, at.String())
	}

	fmt.Fprintf(&b, " SELECT %s FROM eligible AS %s INNER JOIN current_version AS cv ON %s AND %s = cv.%s AND CAST(%s AS INTEGER) = cv.VERSION",
		selectList(def), targetAlias,
		joinOn(targetAlias, "cv", st.Keys),
		qualify(targetAlias, date), date,
		qualify(targetAlias, version),
	)
	if st.Usage != nil {
		fmt.Fprintf(&b, " INNER JOIN in_use AS u ON %s", joinOn(targetAlias, "u", st.Keys))
	}
	fmt.Fprintf(&b, " ORDER BY %s", orderBy(def))

	return b.String(), params, nil
}

// compileNoFilter returns the whole table.
func compileNoFilter(def store.TableDef) (string, []any, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s AS %s ORDER BY %s",
		selectList(def), def.Name, targetAlias, orderBy(def))
	return sql, nil, nil
}

// checkColumns rejects columns the table does not declare.
func checkColumns(def store.TableDef, columns ...string) error {
	for _, c := range columns {
		if !def.HasColumn(c) {
			return ir.NewUnknownColumn(def.Name, c, "strategy column not declared")
		}
	}
	return nil
}

// selectList returns the declared columns, qualified, aliased back to their
// bare names so result sets carry the declared column names.
func selectList(def store.TableDef) string {
	parts := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		parts[i] = fmt.Sprintf("%s AS %s", qualify(targetAlias, c), c)
	}
	return strings.Join(parts, ", ")
}

// orderBy orders by the primary key.
// COLLATE BINARY keeps text ordering independent of connection settings.
func orderBy(def store.TableDef) string {
	parts := make([]string, len(def.PrimaryKey))
	for i, c := range def.PrimaryKey {
		parts[i] = qualify(targetAlias, c) + " COLLATE BINARY"
	}
	return strings.Join(parts, ", ")
}

func qualify(alias, column string) string {
	return alias + "." + column
}

func qualifyAll(alias string, columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = qualify(alias, c)
	}
	return strings.Join(parts, ", ")
}

// joinOn equates each column between two aliases.
func joinOn(left, right string, columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s = %s", qualify(left, c), qualify(right, c))
	}
	return strings.Join(parts, " AND ")
}
