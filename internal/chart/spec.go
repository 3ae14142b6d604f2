// Package chart renders the four supported chart kinds as PNG artifacts.
// Each chart kind is its own spec variant carrying only the fields it needs;
// Render dispatches over the variant. A render is a fresh, stateless choice:
// there are no transitions between chart kinds within one request.
package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"statlab/internal/errors"
)

// Kind names a chart type as selected by the user.
type Kind string

const (
	KindScatter     Kind = "scatter"
	KindBox         Kind = "box"
	KindHistogram   Kind = "histogram"
	KindSkewnessBar Kind = "skewness-bar"
)

// Kinds lists the supported chart kinds in menu order.
var Kinds = []Kind{KindScatter, KindBox, KindHistogram, KindSkewnessBar}

// Spec is one render request. Implementations are the chart variants below.
type Spec interface {
	Kind() Kind
	validate() error
}

// Scatter plots each row's (x, y) pair as a point.
type Scatter struct {
	X, Y  string
	Color color.Color
}

func (Scatter) Kind() Kind { return KindScatter }

func (s Scatter) validate() error {
	if s.X == "" || s.Y == "" {
		return errors.InvalidChartSpec("scatter plot requires both an x and a y column")
	}
	if s.X == s.Y {
		return errors.InvalidChartSpec("scatter plot requires two distinct columns")
	}
	return nil
}

// Box draws one box-and-whisker glyph per selected column on a shared y-axis.
type Box struct {
	Columns []string
}

func (Box) Kind() Kind { return KindBox }

func (b Box) validate() error {
	if len(b.Columns) == 0 {
		return errors.NoColumnsSelected()
	}
	return nil
}

// Histogram bins one column's values into equal-width frequency bins.
type Histogram struct {
	Column string
	Color  color.Color
}

func (Histogram) Kind() Kind { return KindHistogram }

func (h Histogram) validate() error {
	if h.Column == "" {
		return errors.InvalidChartSpec("histogram requires exactly one selected column")
	}
	return nil
}

// SkewnessBar draws per-column skewness as horizontal bars sorted ascending.
type SkewnessBar struct {
	Columns []string
}

func (SkewnessBar) Kind() Kind { return KindSkewnessBar }

func (s SkewnessBar) validate() error {
	if len(s.Columns) == 0 {
		return errors.NoColumnsSelected()
	}
	return nil
}

// Default palette, matching the tool's classic colors.
var (
	DefaultAccentColor = color.NRGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff} // #1f77b4
	skewnessBarColor   = color.NRGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff} // #2ca02c
)

// ParseHexColor parses a "#rrggbb" user color. An empty string yields the
// default accent color.
func ParseHexColor(s string) (color.NRGBA, error) {
	if s == "" {
		return DefaultAccentColor, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q is not in #rrggbb form", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q is not in #rrggbb form", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// withAlpha overrides the alpha channel of a fill color.
func withAlpha(c color.Color, alpha uint8) color.NRGBA {
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	nrgba.A = alpha
	return nrgba
}

func colorOrDefault(c color.Color) color.Color {
	if c == nil {
		return DefaultAccentColor
	}
	return c
}
