package ui

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"statlab/internal/chart"
	"statlab/internal/dataset"
	"statlab/internal/describe"
	"statlab/internal/errors"
	"statlab/internal/export"
)

// previewRowCount is how many rows the dataset preview shows.
const previewRowCount = 10

// summaryView is the column summary object shown on the analysis page and
// returned by the summary endpoint.
type summaryView struct {
	TotalColumns     int      `json:"total_columns"`
	NumericalColumns []string `json:"numerical_columns"`
	SelectedColumns  []string `json:"selected_columns"`
}

type statsCell struct {
	Text string
	Fill string
}

type statsRowView struct {
	Column string
	Cells  []statsCell
}

type analysisView struct {
	Key        string
	Filename   string
	UploadedAt string

	PreviewColumns []string
	PreviewRows    [][]string

	SummaryJSON    string
	NumericColumns []string
	Selected       map[string]bool
	SelectedList   []string

	ChartKinds []chart.Kind
	Kind       string
	X          string
	Y          string
	Color      string
	ChartURL   string

	StatsHeader []string
	StatsRows   []statsRowView

	ErrorMessage   string
	WarningMessage string
}

type indexView struct {
	ErrorMessage string
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", indexView{})
}

// handleUpload accepts one CSV file, parses it through the content-keyed
// cache, and redirects to the analysis view. Every taxonomy failure is
// recovered here and rendered back on the upload page.
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.renderTemplate(c, http.StatusBadRequest, "index.html", indexView{
			ErrorMessage: "Please choose a CSV file to upload.",
		})
		return
	}

	if fileHeader.Size > s.config.Upload.MaxFileSize {
		s.renderTemplate(c, http.StatusBadRequest, "index.html", indexView{
			ErrorMessage: fmt.Sprintf("File exceeds the %d byte upload limit.", s.config.Upload.MaxFileSize),
		})
		return
	}
	if !isAllowedUpload(fileHeader.Header.Get("Content-Type"), fileHeader.Filename, s.config.Upload.AllowedTypes) {
		s.renderTemplate(c, http.StatusBadRequest, "index.html", indexView{
			ErrorMessage: "Only CSV files are accepted.",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.renderTemplate(c, http.StatusInternalServerError, "index.html", indexView{
			ErrorMessage: "Could not read the uploaded file.",
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.renderTemplate(c, http.StatusInternalServerError, "index.html", indexView{
			ErrorMessage: "Could not read the uploaded file.",
		})
		return
	}

	key, entry, err := s.cache.Put(content, fileHeader.Filename)
	if err != nil {
		s.logger.Warn("upload %s rejected: %v", fileHeader.Filename, err)
		s.renderTemplate(c, statusForError(err), "index.html", indexView{
			ErrorMessage: fmt.Sprintf("Error loading file: %v", err),
		})
		return
	}

	s.logger.Info("dataset %s uploaded as %s", entry.ID, key[:12])
	c.Redirect(http.StatusSeeOther, "/datasets/"+key)
}

func isAllowedUpload(mimeType, filename string, allowed []string) bool {
	for _, a := range allowed {
		if strings.HasPrefix(mimeType, a) {
			return true
		}
	}
	// Browsers are inconsistent about the CSV MIME type; fall back to the
	// file extension.
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// handleAnalysis renders the full analysis view: preview, column summary,
// chart controls, and the statistics table with its magnitude gradient.
func (s *Server) handleAnalysis(c *gin.Context) {
	entry, ok := s.cache.Get(c.Param("key"))
	if !ok {
		s.renderTemplate(c, http.StatusNotFound, "index.html", indexView{
			ErrorMessage: "That dataset is no longer available. Please upload it again.",
		})
		return
	}
	tbl := entry.Table

	view := analysisView{
		Key:            c.Param("key"),
		Filename:       entry.Filename,
		UploadedAt:     entry.UploadedAt.Format("2006-01-02 15:04:05"),
		PreviewColumns: tbl.ColumnNames(),
		PreviewRows:    tbl.Head(previewRowCount),
		ChartKinds:     chart.Kinds,
		Kind:           c.DefaultQuery("kind", string(chart.KindScatter)),
		X:              c.Query("x"),
		Y:              c.Query("y"),
		Color:          c.DefaultQuery("color", "#1f77b4"),
		StatsHeader:    describe.Header,
	}

	numeric := dataset.NumericColumns(tbl)
	if len(numeric) == 0 {
		view.ErrorMessage = errors.NoNumericColumns().Message
		s.renderTemplate(c, http.StatusBadRequest, "analysis.html", view)
		return
	}
	view.NumericColumns = numeric

	selected := c.QueryArray("cols")
	if len(selected) == 0 {
		if c.Query("applied") == "1" {
			// The user explicitly cleared the selection
			view.WarningMessage = errors.NoColumnsSelected().Message
			s.renderTemplate(c, http.StatusOK, "analysis.html", view)
			return
		}
		// Default selection: the first two numeric columns
		selected = numeric[:min(2, len(numeric))]
	}

	selected, err := dataset.ValidateSelection(tbl, selected)
	if err != nil {
		view.ErrorMessage = err.Error()
		s.renderTemplate(c, statusForError(err), "analysis.html", view)
		return
	}
	view.SelectedList = selected
	view.Selected = make(map[string]bool, len(selected))
	for _, name := range selected {
		view.Selected[name] = true
	}

	summary, _ := json.MarshalIndent(summaryView{
		TotalColumns:     tbl.FieldCount(),
		NumericalColumns: numeric,
		SelectedColumns:  selected,
	}, "", "  ")
	view.SummaryJSON = string(summary)

	if view.X == "" {
		view.X = selected[0]
	}
	if view.Y == "" && len(selected) > 1 {
		view.Y = selected[1]
	}
	view.ChartURL = chartURL(view.Key, view.Kind, selected, view.X, view.Y, view.Color)

	rows, err := describe.Describe(tbl, selected)
	if err != nil {
		view.ErrorMessage = err.Error()
		s.renderTemplate(c, statusForError(err), "analysis.html", view)
		return
	}
	view.StatsRows = statsTable(rows)

	s.renderTemplate(c, http.StatusOK, "analysis.html", view)
}

// statsTable formats statistics rows for display: two-decimal text plus a
// blue gradient fill keyed to the cell's magnitude within its statistic.
func statsTable(rows []describe.StatisticsRow) []statsRowView {
	lows, highs := export.StatRanges(rows)

	views := make([]statsRowView, 0, len(rows))
	for _, row := range rows {
		rv := statsRowView{Column: row.Column}
		for j, v := range row.Values() {
			text := "NaN"
			if !math.IsNaN(v) {
				text = fmt.Sprintf("%.2f", v)
			}
			rv.Cells = append(rv.Cells, statsCell{
				Text: text,
				Fill: export.GradientHex(v, lows[j], highs[j]),
			})
		}
		views = append(views, rv)
	}
	return views
}

func chartURL(key, kind string, cols []string, x, y, colorHex string) string {
	q := url.Values{}
	q.Set("kind", kind)
	for _, name := range cols {
		q.Add("cols", name)
	}
	if x != "" {
		q.Set("x", x)
	}
	if y != "" {
		q.Set("y", y)
	}
	if colorHex != "" {
		q.Set("color", colorHex)
	}
	return "/datasets/" + key + "/chart?" + q.Encode()
}

// handleSummary returns the column summary object as JSON.
func (s *Server) handleSummary(c *gin.Context) {
	entry, ok := s.cache.Get(c.Param("key"))
	if !ok {
		abortWithError(c, errors.NotFound("dataset"))
		return
	}

	numeric := dataset.NumericColumns(entry.Table)
	selected, err := dataset.ValidateSelection(entry.Table, c.QueryArray("cols"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaryView{
		TotalColumns:     entry.Table.FieldCount(),
		NumericalColumns: numeric,
		SelectedColumns:  selected,
	})
}

// handleStatistics returns the statistics rows as JSON, with undefined
// moments encoded as null (JSON has no NaN).
func (s *Server) handleStatistics(c *gin.Context) {
	entry, ok := s.cache.Get(c.Param("key"))
	if !ok {
		abortWithError(c, errors.NotFound("dataset"))
		return
	}

	selected, err := dataset.ValidateSelection(entry.Table, c.QueryArray("cols"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	rows, err := describe.Describe(entry.Table, selected)
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		item := map[string]interface{}{"column": row.Column}
		for j, v := range row.Values() {
			if math.IsNaN(v) {
				item[describe.Header[j]] = nil
			} else {
				item[describe.Header[j]] = v
			}
		}
		payload = append(payload, item)
	}
	c.JSON(http.StatusOK, payload)
}

// handleChart renders one chart as PNG. Each request is a fresh chart
// choice; nothing persists between renders.
func (s *Server) handleChart(c *gin.Context) {
	entry, ok := s.cache.Get(c.Param("key"))
	if !ok {
		abortWithError(c, errors.NotFound("dataset"))
		return
	}
	tbl := entry.Table

	fill, err := chart.ParseHexColor(c.Query("color"))
	if err != nil {
		abortWithError(c, errors.InvalidChartSpec(err.Error()))
		return
	}

	kind := chart.Kind(c.DefaultQuery("kind", string(chart.KindScatter)))
	cols := c.QueryArray("cols")

	spec, axisCols, err := buildSpec(kind, cols, c.Query("x"), c.Query("y"), c.Query("column"), fill)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if len(axisCols) > 0 {
		if _, err := dataset.ValidateSelection(tbl, axisCols); err != nil {
			abortWithError(c, err)
			return
		}
	}

	artifact, err := chart.Render(tbl, spec)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", artifact)
}

// buildSpec maps request parameters onto a chart variant, returning the
// columns whose numeric type must be validated before rendering.
func buildSpec(kind chart.Kind, cols []string, x, y, column string, fill color.NRGBA) (chart.Spec, []string, error) {
	switch kind {
	case chart.KindScatter:
		if x == "" || y == "" || x == y {
			// Render's own validation produces the message
			return chart.Scatter{X: x, Y: y, Color: fill}, nil, nil
		}
		return chart.Scatter{X: x, Y: y, Color: fill}, []string{x, y}, nil
	case chart.KindBox:
		return chart.Box{Columns: cols}, cols, nil
	case chart.KindHistogram:
		if column == "" && len(cols) == 1 {
			column = cols[0]
		}
		if column == "" {
			return nil, nil, errors.InvalidChartSpec("histogram requires exactly one selected column")
		}
		return chart.Histogram{Column: column, Color: fill}, []string{column}, nil
	case chart.KindSkewnessBar:
		return chart.SkewnessBar{Columns: cols}, cols, nil
	default:
		return nil, nil, errors.InvalidChartSpec(fmt.Sprintf("unknown chart kind %q", kind))
	}
}

// handleExport streams the statistics table as a download. CSV is the
// primary contract; XLSX carries the same table with gradient fills.
func (s *Server) handleExport(c *gin.Context) {
	entry, ok := s.cache.Get(c.Param("key"))
	if !ok {
		abortWithError(c, errors.NotFound("dataset"))
		return
	}

	selected, err := dataset.ValidateSelection(entry.Table, c.QueryArray("cols"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	rows, err := describe.Describe(entry.Table, selected)
	if err != nil {
		abortWithError(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		buf, err := export.CSV(rows)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename))
		c.Data(http.StatusOK, export.CSVMimeType, buf)
	case "xlsx":
		buf, err := export.XLSX(rows)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFilename))
		c.Data(http.StatusOK, export.XLSXMimeType, buf)
	default:
		abortWithError(c, errors.InvalidChartSpec("unsupported export format"))
	}
}

// abortWithError maps a taxonomy error to an HTTP status and JSON body.
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusForError(err), gin.H{
		"code":    errors.GetCode(err),
		"message": err.Error(),
	})
}

func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeLoadFailure, errors.CodeEmptyDataset,
		errors.CodeNoNumericColumns, errors.CodeNoColumnsSelected,
		errors.CodeInvalidChartSpec:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
