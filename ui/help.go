package ui

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// helpMarkdown is the user guide served at /help. Kept as markdown so it can
// be edited without touching templates.
const helpMarkdown = `# Using the Data Analysis Tool

## Uploading data

Upload a CSV file from the home page. The first row is treated as the
header; every later row is a data row. Files that are not valid CSV, or
that contain a header but no data rows, are rejected with a message.

Identical files are recognized by content, so re-uploading the same file
returns instantly.

## Selecting columns

Only numerical columns can be analyzed. A column counts as numerical when
every non-missing value in it parses as a number. Pick one or more columns
with the checkboxes; by default the first two numerical columns are
selected.

## Statistics

For each selected column the table reports:

| Statistic | Meaning |
|-----------|---------|
| count     | non-missing values |
| mean      | arithmetic mean |
| std       | sample standard deviation |
| min / max | extremes |
| p25 / p50 / p75 | quartiles with linear interpolation |
| skewness  | adjusted Fisher-Pearson coefficient (needs at least 3 values) |
| kurtosis  | bias-corrected excess kurtosis (needs at least 4 values) |

Statistics that need more values than the column has are shown as NaN.
Missing cells are skipped, never treated as zero.

## Charts

- **Scatter** plots two distinct columns against each other.
- **Box** draws one box-and-whisker per selected column, outliers included.
- **Histogram** bins one column into 20 equal-width bins.
- **Skewness bar** compares per-column skewness, sorted ascending, with a
  reference line at zero.

## Export

The export button downloads the statistics table as
` + "`statistical_summary.csv`" + ` at full numeric precision. An XLSX
variant with the same gradient shading as the on-screen table is also
available.
`

// renderHelpHTML converts the help markdown into HTML for the help template.
func renderHelpHTML() template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := markdown.ToHTML([]byte(helpMarkdown), p, renderer)
	return template.HTML(out)
}

func (s *Server) handleHelp(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "help.html", gin.H{
		"Content": renderHelpHTML(),
	})
}
