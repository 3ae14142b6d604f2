package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"statlab/domain/table"
	"statlab/internal/describe"
	"statlab/internal/errors"
)

const (
	// histogramBinCount is fixed regardless of column size.
	histogramBinCount = 20

	scatterAlpha   = 0x99 // ~0.6
	histogramAlpha = 0xcc // ~0.8
)

// Render draws the requested chart over the table and returns PNG bytes.
// The drawing canvas lives only inside this call: it is acquired per render
// and released on every exit path, including render errors.
func Render(t *table.Table, spec Spec) ([]byte, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	switch s := spec.(type) {
	case Scatter:
		return renderScatter(t, s)
	case Box:
		return renderBox(t, s)
	case Histogram:
		return renderHistogram(t, s)
	case SkewnessBar:
		return renderSkewnessBar(t, s)
	default:
		return nil, errors.InvalidChartSpec(fmt.Sprintf("unsupported chart kind %q", spec.Kind()))
	}
}

func renderScatter(t *table.Table, s Scatter) ([]byte, error) {
	xs, ys, err := t.PairedValues(s.X, s.Y)
	if err != nil {
		return nil, errors.Wrap(err, "scatter plot")
	}
	if len(xs) == 0 {
		return nil, errors.InvalidChartSpec("no complete (x, y) pairs to plot")
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", s.X, s.Y)
	p.X.Label.Text = s.X
	p.Y.Label.Text = s.Y
	p.Add(dashedGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, errors.Wrap(err, "scatter plot")
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Color = withAlpha(colorOrDefault(s.Color), scatterAlpha)
	p.Add(scatter)

	return writePNG(p, 8*vg.Inch, 6*vg.Inch)
}

func renderBox(t *table.Table, s Box) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Distribution of Selected Columns"
	p.Y.Label.Text = "Values"
	p.Add(dashedGrid())

	drawn := 0
	for i, name := range s.Columns {
		values, err := t.NumericValues(name)
		if err != nil {
			return nil, errors.Wrap(err, "box plot")
		}
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(24), float64(i), plotter.Values(values))
		if err != nil {
			return nil, errors.Wrap(err, "box plot")
		}
		p.Add(box)
		drawn++
	}
	if drawn == 0 {
		return nil, errors.InvalidChartSpec("no numeric values to plot")
	}
	p.NominalX(s.Columns...)

	return writePNG(p, 10*vg.Inch, 6*vg.Inch)
}

func renderHistogram(t *table.Table, s Histogram) ([]byte, error) {
	values, err := t.NumericValues(s.Column)
	if err != nil {
		return nil, errors.Wrap(err, "histogram")
	}
	if len(values) == 0 {
		return nil, errors.InvalidChartSpec(fmt.Sprintf("column %q has no numeric values", s.Column))
	}

	hist, err := buildHistogram(values, colorOrDefault(s.Color))
	if err != nil {
		return nil, errors.Wrap(err, "histogram")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", s.Column)
	p.X.Label.Text = s.Column
	p.Y.Label.Text = "Frequency"
	p.Add(dashedGrid())
	p.Add(hist)

	return writePNG(p, 8*vg.Inch, 6*vg.Inch)
}

// buildHistogram bins the raw values into histogramBinCount equal-width bins
// over the observed range; bar height is the frequency count.
func buildHistogram(values []float64, fill color.Color) (*plotter.Histogram, error) {
	hist, err := plotter.NewHist(plotter.Values(values), histogramBinCount)
	if err != nil {
		return nil, err
	}
	hist.FillColor = withAlpha(fill, histogramAlpha)
	hist.LineStyle.Color = color.White
	hist.LineStyle.Width = vg.Points(1)
	return hist, nil
}

func renderSkewnessBar(t *table.Table, s SkewnessBar) ([]byte, error) {
	rows, err := describe.Describe(t, s.Columns)
	if err != nil {
		return nil, errors.Wrap(err, "skewness chart")
	}

	names, skews := sortedSkewness(rows)
	if len(names) == 0 {
		return nil, errors.InvalidChartSpec("skewness is undefined for every selected column")
	}

	bars, err := plotter.NewBarChart(plotter.Values(skews), vg.Points(16))
	if err != nil {
		return nil, errors.Wrap(err, "skewness chart")
	}
	bars.Horizontal = true
	bars.Color = skewnessBarColor
	bars.LineStyle.Width = 0

	p := plot.New()
	p.Title.Text = "Skewness of Numerical Columns"
	p.X.Label.Text = "Skewness Value"
	p.Add(dashedGrid())
	p.Add(bars)
	p.NominalY(names...)

	// Vertical reference line at zero skewness
	zero, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: -0.5},
		{X: 0, Y: float64(len(names)) - 0.5},
	})
	if err != nil {
		return nil, errors.Wrap(err, "skewness chart")
	}
	zero.LineStyle.Color = color.Black
	zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(zero)

	return writePNG(p, 10*vg.Inch, 6*vg.Inch)
}

// sortedSkewness orders columns ascending by skewness. Columns whose
// skewness is undefined (NaN) carry no bar and are dropped.
func sortedSkewness(rows []describe.StatisticsRow) (names []string, skews []float64) {
	kept := make([]describe.StatisticsRow, 0, len(rows))
	for _, row := range rows {
		if !math.IsNaN(row.Skewness) {
			kept = append(kept, row)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Skewness < kept[j].Skewness
	})

	for _, row := range kept {
		names = append(names, row.Column)
		skews = append(skews, row.Skewness)
	}
	return names, skews
}

// dashedGrid mirrors the ggplot-style dashed grid overlay.
func dashedGrid() *plotter.Grid {
	grid := plotter.NewGrid()
	grid.Vertical.Color = color.Gray{Y: 0xb0}
	grid.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Color = color.Gray{Y: 0xb0}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	return grid
}

// writePNG renders the assembled plot to PNG bytes. The canvas WriterTo
// allocates is scoped to this call and released with it on every path.
func writePNG(p *plot.Plot, width, height vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, errors.Wrap(err, "render chart")
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "encode chart")
	}
	return buf.Bytes(), nil
}
