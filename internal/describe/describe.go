// Package describe computes per-column descriptive statistics: the classic
// five-number-plus-moments summary extended with skewness and excess
// kurtosis.
package describe

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"statlab/domain/table"
)

// StatisticsRow is the descriptive summary of one selected column. All
// fields are stored at full precision; rounding happens only at
// presentation. When Count is 0 every other field is NaN.
type StatisticsRow struct {
	Column   string  `json:"column"`
	Count    float64 `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	P25      float64 `json:"p25"`
	P50      float64 `json:"p50"`
	P75      float64 `json:"p75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// Values returns the row's statistics in header order, for serialization.
func (r StatisticsRow) Values() []float64 {
	return []float64{r.Count, r.Mean, r.Std, r.Min, r.P25, r.P50, r.P75, r.Max, r.Skewness, r.Kurtosis}
}

// Header is the statistic names in the order Values emits them.
var Header = []string{"count", "mean", "std", "min", "p25", "p50", "p75", "max", "skewness", "kurtosis"}

// Describe computes one StatisticsRow per selected column over the
// non-missing values, keyed by column name in selection order. The caller
// is responsible for validating the selection first.
func Describe(t *table.Table, selected []string) ([]StatisticsRow, error) {
	rows := make([]StatisticsRow, 0, len(selected))
	for _, name := range selected {
		values, err := t.NumericValues(name)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w", name, err)
		}
		rows = append(rows, describeColumn(name, values))
	}
	return rows, nil
}

func describeColumn(name string, values []float64) StatisticsRow {
	nan := math.NaN()
	row := StatisticsRow{
		Column: name,
		Count:  float64(len(values)),
		Mean:   nan, Std: nan, Min: nan,
		P25: nan, P50: nan, P75: nan,
		Max: nan, Skewness: nan, Kurtosis: nan,
	}
	if len(values) == 0 {
		return row
	}

	row.Mean, _ = stats.Mean(values)
	row.Min, _ = stats.Min(values)
	row.Max, _ = stats.Max(values)

	// Sample standard deviation (n-1 denominator); undefined for one value
	if len(values) > 1 {
		if std, err := stats.StandardDeviationSample(values); err == nil {
			row.Std = std
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	row.P25 = percentile(sorted, 25)
	row.P50 = percentile(sorted, 50)
	row.P75 = percentile(sorted, 75)

	row.Skewness = skewness(values)
	row.Kurtosis = kurtosis(values)
	return row
}

// skewness is the adjusted Fisher-Pearson standardized third moment. It is
// undefined (NaN) for fewer than 3 values, and gonum's division by the zero
// sample deviation yields NaN for a constant column.
func skewness(values []float64) float64 {
	if len(values) < 3 {
		return math.NaN()
	}
	return stat.Skew(values, nil)
}

// kurtosis is the bias-corrected excess kurtosis (normal = 0), undefined for
// fewer than 4 values or a constant column.
func kurtosis(values []float64) float64 {
	if len(values) < 4 {
		return math.NaN()
	}
	return stat.ExKurtosis(values, nil)
}

// percentile evaluates the p-th percentile (0..100) of pre-sorted values by
// linear interpolation between adjacent order statistics (the type-7
// definition used by dataframe libraries). Neither montanaflynn's rank-based
// Percentile nor gonum's empirical-CDF Quantile matches that definition, so
// the interpolation is done directly.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
