package dataset

import (
	"fmt"

	"statlab/domain/table"
	"statlab/internal/errors"
)

// NumericColumns returns the names of numeric-typed columns in table order.
// An empty result means there is nothing to analyze and the caller must halt
// the pipeline with NO_NUMERIC_COLUMNS.
func NumericColumns(t *table.Table) []string {
	var names []string
	for _, f := range t.Fields {
		if f.DataType == table.TypeNumeric {
			names = append(names, f.Name)
		}
	}
	return names
}

// ValidateSelection checks a user's column selection against the table.
// Selection order is preserved; it becomes the statistics insertion order.
func ValidateSelection(t *table.Table, selected []string) ([]string, error) {
	numeric := NumericColumns(t)
	if len(numeric) == 0 {
		return nil, errors.NoNumericColumns()
	}
	if len(selected) == 0 {
		return nil, errors.NoColumnsSelected()
	}

	numericSet := make(map[string]bool, len(numeric))
	for _, name := range numeric {
		numericSet[name] = true
	}

	seen := make(map[string]bool, len(selected))
	for _, name := range selected {
		if seen[name] {
			return nil, errors.InvalidChartSpec(fmt.Sprintf("column %q selected more than once", name))
		}
		seen[name] = true

		if _, ok := t.ColumnIndex(name); !ok {
			return nil, errors.NotFound(fmt.Sprintf("column %q", name))
		}
		if !numericSet[name] {
			return nil, errors.InvalidChartSpec(fmt.Sprintf("column %q is not numeric", name))
		}
	}
	return selected, nil
}
