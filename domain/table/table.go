// Package table holds the in-memory model for one uploaded tabular dataset.
//
// A Table is created once per upload, read by the statistics and chart
// stages, and discarded with the request that produced it. Cells are kept as
// the raw strings the parser saw; numeric extraction happens on demand so
// the preview can still show the original text.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is the inferred type of a column.
type DataType string

const (
	TypeNumeric DataType = "numeric"
	TypeText    DataType = "text"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
)

// FieldInfo describes a single column.
type FieldInfo struct {
	Name         string   `json:"name"`
	DataType     DataType `json:"data_type"`
	MissingCount int      `json:"missing_count"`
	UniqueCount  int      `json:"unique_count"`
}

// Table is an ordered set of named columns with rows aligned by position.
// Invariant: every row has exactly len(Fields) cells; an empty string marks
// a missing cell.
type Table struct {
	Fields []FieldInfo
	Rows   [][]string
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// FieldCount returns the number of columns.
func (t *Table) FieldCount() int { return len(t.Fields) }

// ColumnIndex returns the position of a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, f := range t.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Field returns the FieldInfo for a column by name.
func (t *Table) Field(name string) (FieldInfo, bool) {
	if i, ok := t.ColumnIndex(name); ok {
		return t.Fields[i], true
	}
	return FieldInfo{}, false
}

// NumericValues extracts the non-missing numeric values of a column in row
// order. Cells that do not parse as numbers are skipped like missing cells.
func (t *Table) NumericValues(name string) ([]float64, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}

	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// PairedValues extracts row-aligned (x, y) numeric pairs for two columns,
// keeping only rows where both cells are present and numeric.
func (t *Table) PairedValues(xName, yName string) (xs, ys []float64, err error) {
	xi, ok := t.ColumnIndex(xName)
	if !ok {
		return nil, nil, fmt.Errorf("column %q not found", xName)
	}
	yi, ok := t.ColumnIndex(yName)
	if !ok {
		return nil, nil, fmt.Errorf("column %q not found", yName)
	}

	for _, row := range t.Rows {
		xCell := strings.TrimSpace(row[xi])
		yCell := strings.TrimSpace(row[yi])
		if xCell == "" || yCell == "" {
			continue
		}
		x, xErr := strconv.ParseFloat(xCell, 64)
		y, yErr := strconv.ParseFloat(yCell, 64)
		if xErr != nil || yErr != nil {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys, nil
}

// Head returns the first n data rows for preview display.
func (t *Table) Head(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}
