package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Aliases accepted for the coordinate columns, in resolution order.
var (
	LatitudeAliases  = []string{"lat", "latitude"}
	LongitudeAliases = []string{"lon", "longitude"}
)

// nullTokens are cell values treated as missing.
var nullTokens = map[string]struct{}{
	"":      {},
	"na":    {},
	"n/a":   {},
	"nan":   {},
	"-nan":  {},
	"null":  {},
	"none":  {},
	"#n/a":  {},
	"<na>":  {},
	"nil":   {},
	"-1.#q": {},
}

// Table is a row-oriented tabular dataset of raw string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// IsNull reports whether a raw cell represents a missing value.
func IsNull(cell string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(cell))]
	return ok
}

// NormalizeColumns lowercases and trims every column name.
func (t Table) NormalizeColumns() Table {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return Table{Columns: cols, Rows: t.Rows}
}

// Index returns the position of an exact column name, or -1.
func (t Table) Index(name string) int {
	return slices.Index(t.Columns, name)
}

// ColumnSelection names the three columns a point or grid conversion reads.
type ColumnSelection struct {
	Lat   string
	Lon   string
	Value string
}

// Names returns the selected columns in lat, lon, value order.
func (s ColumnSelection) Names() []string {
	return []string{s.Lat, s.Lon, s.Value}
}

// ResolveColumns finds the latitude and longitude columns by alias and checks
// that the value column exists. The table's columns must already be
// normalized; value is lowercased before lookup.
func ResolveColumns(t Table, value string) (ColumnSelection, error) {
	lat := firstPresent(t, LatitudeAliases)
	if lat == "" {
		return ColumnSelection{}, &MissingColumnError{Column: strings.Join(LatitudeAliases, "|"), Available: slices.Clone(t.Columns)}
	}
	lon := firstPresent(t, LongitudeAliases)
	if lon == "" {
		return ColumnSelection{}, &MissingColumnError{Column: strings.Join(LongitudeAliases, "|"), Available: slices.Clone(t.Columns)}
	}

	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || t.Index(value) < 0 {
		return ColumnSelection{}, &MissingColumnError{Column: value, Available: slices.Clone(t.Columns)}
	}
	return ColumnSelection{Lat: lat, Lon: lon, Value: value}, nil
}

func firstPresent(t Table, aliases []string) string {
	for _, a := range aliases {
		if t.Index(a) >= 0 {
			return a
		}
	}
	return ""
}

// Project restricts the table to the named columns (in the given order) and
// drops every row with a null in any of them. A name may repeat, e.g. when the
// value column is also a coordinate.
func (t Table) Project(names []string) (Table, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = t.Index(n)
		if idx[i] < 0 {
			return Table{}, &MissingColumnError{Column: n, Available: slices.Clone(t.Columns)}
		}
	}

	out := Table{Columns: dedupe(names)}
	keep := make([]int, len(out.Columns))
	for i, n := range out.Columns {
		keep[i] = t.Index(n)
	}

	for _, row := range t.Rows {
		if hasNull(row, idx) {
			continue
		}
		projected := make([]string, len(keep))
		for i, k := range keep {
			projected[i] = row[k]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}

func hasNull(row []string, idx []int) bool {
	for _, i := range idx {
		if i >= len(row) || IsNull(row[i]) {
			return true
		}
	}
	return false
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

// Float parses the named column of a row as a float64.
func (t Table) Float(row int, column string) (float64, error) {
	i := t.Index(column)
	if i < 0 {
		return 0, &MissingColumnError{Column: column, Available: slices.Clone(t.Columns)}
	}
	raw := strings.TrimSpace(t.Rows[row][i])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValueParseError{Column: column, Row: row, Value: raw}
	}
	return v, nil
}

// CheckNumeric verifies that every row with no null among columns holds a
// finite number in each of them. Rows with a null are skipped since Project
// drops them. Errors carry the row index of t itself, so calling it before
// Project and Sample reports the source row.
func (t Table) CheckNumeric(columns ...string) error {
	idx := make([]int, len(columns))
	for i, c := range columns {
		if idx[i] = t.Index(c); idx[i] < 0 {
			return &MissingColumnError{Column: c, Available: slices.Clone(t.Columns)}
		}
	}
	for row := range t.Rows {
		if hasNull(t.Rows[row], idx) {
			continue
		}
		for _, c := range columns {
			v, err := t.Float(row, c)
			if err != nil {
				return err
			}
			if !isFinite(v) {
				return &ValueParseError{Column: c, Row: row, Value: strings.TrimSpace(t.Rows[row][t.Index(c)])}
			}
		}
	}
	return nil
}

// Records converts the selected columns of every row to (lat, lon, value)
// records. Rows must already be free of nulls. Non-finite coordinates are
// rejected.
func (t Table) Records(sel ColumnSelection) ([]Record, error) {
	out := make([]Record, len(t.Rows))
	for i := range t.Rows {
		lat, err := t.Float(i, sel.Lat)
		if err != nil {
			return nil, err
		}
		if !isFinite(lat) {
			return nil, &ValueParseError{Column: sel.Lat, Row: i, Value: strings.TrimSpace(t.Rows[i][t.Index(sel.Lat)])}
		}
		lon, err := t.Float(i, sel.Lon)
		if err != nil {
			return nil, err
		}
		if !isFinite(lon) {
			return nil, &ValueParseError{Column: sel.Lon, Row: i, Value: strings.TrimSpace(t.Rows[i][t.Index(sel.Lon)])}
		}
		v, err := t.Float(i, sel.Value)
		if err != nil {
			return nil, err
		}
		out[i] = Record{Lat: lat, Lon: lon, Value: v}
	}
	return out, nil
}

// cellValue converts a raw cell to a JSON-friendly property: numbers become
// float64, everything else (including "inf") stays a string.
func cellValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return v
	}
	return raw
}
