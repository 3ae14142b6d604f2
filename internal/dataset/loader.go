// Package dataset turns uploaded CSV bytes into domain tables and memoizes
// the parse result by file content so repeated renders reuse one Table.
package dataset

import (
	"bytes"
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"statlab/domain/table"
	"statlab/internal/errors"
)

// typeInferenceSampleSize caps how many rows are examined per column when
// inferring a column type.
const typeInferenceSampleSize = 100

// Load parses raw CSV bytes into a Table.
//
// Any structural problem (binary content, invalid UTF-8, ragged records) is
// reported as a LOAD_FAILURE; a file that parses but carries no data rows is
// an EMPTY_DATASET. Neither condition crashes the request.
func Load(content []byte) (*table.Table, error) {
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, errors.LoadFailure("the uploaded file is binary, not CSV text", nil)
	}
	if !utf8.Valid(content) {
		return nil, errors.LoadFailure("the uploaded file is not valid UTF-8 text", nil)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.LoadFailure("could not parse the file as CSV", err)
	}
	if len(records) == 0 {
		return nil, errors.EmptyDataset()
	}

	// First row is headers
	headers := records[0]
	dataRows := records[1:]
	if len(dataRows) == 0 {
		return nil, errors.EmptyDataset()
	}

	// Normalize cells; an empty (or whitespace-only) cell marks a missing value
	rows := make([][]string, len(dataRows))
	for i, record := range dataRows {
		row := make([]string, len(headers))
		for j := range headers {
			if j < len(record) {
				row[j] = strings.TrimSpace(record[j])
			}
		}
		rows[i] = row
	}

	fields := make([]table.FieldInfo, len(headers))
	for j, header := range headers {
		fields[j] = table.FieldInfo{
			Name:         strings.TrimSpace(header),
			DataType:     inferDataType(rows, j),
			MissingCount: countMissing(rows, j),
			UniqueCount:  countUnique(rows, j),
		}
	}

	return &table.Table{Fields: fields, Rows: rows}, nil
}

// inferDataType infers a column type from its sampled values. A column is
// numeric only when every non-missing sampled value parses as a number, so a
// stray label in a number column demotes it to text rather than silently
// dropping cells later.
func inferDataType(rows [][]string, colIndex int) table.DataType {
	sampleSize := typeInferenceSampleSize
	if len(rows) < sampleSize {
		sampleSize = len(rows)
	}

	allNumeric := true
	allBoolean := true
	allDates := true
	totalValues := 0

	for i := 0; i < sampleSize; i++ {
		value := rows[i][colIndex]
		if value == "" {
			continue
		}
		totalValues++

		if _, err := strconv.ParseFloat(value, 64); err != nil {
			allNumeric = false
		}
		if !isBooleanWord(value) {
			allBoolean = false
		}
		if !isLikelyDate(value) {
			allDates = false
		}
	}

	if totalValues == 0 {
		return table.TypeText
	}
	if allNumeric {
		return table.TypeNumeric
	}
	if allBoolean {
		return table.TypeBoolean
	}
	if allDates {
		return table.TypeDate
	}
	return table.TypeText
}

func isBooleanWord(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "yes", "no", "y", "n":
		return true
	}
	return false
}

var datePatterns = []*regexp.Regexp{
	// YYYY-MM-DD and YYYY/MM/DD
	regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`),
	// MM/DD/YYYY, DD/MM/YYYY, MM-DD-YYYY, DD-MM-YYYY
	regexp.MustCompile(`^\d{1,2}[-/]\d{1,2}[-/]\d{4}$`),
	// Month DD, YYYY
	regexp.MustCompile(`^[A-Za-z]{3,9} \d{1,2}, \d{4}$`),
	// DD Month YYYY
	regexp.MustCompile(`^\d{1,2} [A-Za-z]{3,9} \d{4}$`),
}

// isLikelyDate checks if a string value looks like a date
func isLikelyDate(value string) bool {
	for _, pattern := range datePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

func countMissing(rows [][]string, colIndex int) int {
	count := 0
	for _, row := range rows {
		if row[colIndex] == "" {
			count++
		}
	}
	return count
}

func countUnique(rows [][]string, colIndex int) int {
	seen := make(map[string]bool)
	for _, row := range rows {
		if row[colIndex] != "" {
			seen[row[colIndex]] = true
		}
	}
	return len(seen)
}
