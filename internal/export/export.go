// Package export serializes the statistics table into downloadable buffers.
// Producing the buffer is the whole job; the download action itself belongs
// to the UI boundary.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"statlab/internal/describe"
)

// Download contract constants.
const (
	CSVFilename = "statistical_summary.csv"
	CSVMimeType = "text/csv"

	XLSXFilename = "statistical_summary.xlsx"
	XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CSV serializes the statistics rows as UTF-8 comma-separated bytes: a
// header row, then one row per column. Numeric fields keep full precision;
// rounding is a display concern only.
func CSV(rows []describe.StatisticsRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"column"}, describe.Header...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Column)
		for _, v := range row.Values() {
			record = append(record, formatFull(v))
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %s: %w", row.Column, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatFull serializes a statistic at full precision. NaN is spelled out;
// strconv parses it back, so exports round-trip.
func formatFull(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// XLSX serializes the statistics rows as a spreadsheet, with each statistic
// column shaded on a blue gradient keyed to cell magnitude — the same
// gradient the statistics view shows.
func XLSX(rows []describe.StatisticsRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := setCell(f, sheet, 1, 1, "column"); err != nil {
		return nil, err
	}
	for j, name := range describe.Header {
		if err := setCell(f, sheet, j+2, 1, name); err != nil {
			return nil, err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	lows, highs := StatRanges(rows)
	for i, row := range rows {
		rowIdx := i + 2
		if err := setCell(f, sheet, 1, rowIdx, row.Column); err != nil {
			return nil, err
		}
		for j, v := range row.Values() {
			col := j + 2
			if math.IsNaN(v) {
				if err := setCell(f, sheet, col, rowIdx, "NaN"); err != nil {
					return nil, err
				}
				continue
			}
			if err := setCell(f, sheet, col, rowIdx, v); err != nil {
				return nil, err
			}

			fill := GradientHex(v, lows[j], highs[j])
			styleID, err := f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			})
			if err != nil {
				return nil, err
			}
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

// StatRanges computes the per-statistic min and max across rows, indexed
// like describe.Header. NaN cells are ignored; an all-NaN statistic yields
// NaN bounds.
func StatRanges(rows []describe.StatisticsRow) (lows, highs []float64) {
	n := len(describe.Header)
	lows = make([]float64, n)
	highs = make([]float64, n)
	for j := range lows {
		lows[j] = math.NaN()
		highs[j] = math.NaN()
	}

	for _, row := range rows {
		for j, v := range row.Values() {
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(lows[j]) || v < lows[j] {
				lows[j] = v
			}
			if math.IsNaN(highs[j]) || v > highs[j] {
				highs[j] = v
			}
		}
	}
	return lows, highs
}

// Sequential blue ramp endpoints (light to dark).
var (
	gradientLow  = [3]uint8{0xf7, 0xfb, 0xff}
	gradientHigh = [3]uint8{0x4a, 0x77, 0xb4}
)

// GradientHex maps a cell value to an "rrggbb" fill on the sequential blue
// ramp, normalized within [lo, hi]. A degenerate or unknown range lands
// mid-ramp.
func GradientHex(v, lo, hi float64) string {
	t := 0.5
	if !math.IsNaN(v) && !math.IsNaN(lo) && !math.IsNaN(hi) && hi > lo {
		t = (v - lo) / (hi - lo)
	}

	var rgb [3]uint8
	for i := range rgb {
		rgb[i] = uint8(math.Round(float64(gradientLow[i]) + t*(float64(gradientHigh[i])-float64(gradientLow[i]))))
	}
	return fmt.Sprintf("%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
