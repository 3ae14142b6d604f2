package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"statlab/internal/config"
)

const sampleCSV = "a,b,label\n1,2,x\n2,4,y\n3,6,z\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", GinMode: gin.TestMode},
		Upload: config.UploadConfig{
			MaxFileSize:  1 << 20,
			AllowedTypes: []string{"text/csv", "application/csv"},
		},
	}
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	return s
}

func uploadCSV(t *testing.T, s *Server, filename, content string) string {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile returned error: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/datasets", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect after upload, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/datasets/") {
		t.Fatalf("Unexpected redirect target %q", location)
	}
	return location
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestUploadAndAnalysisPage(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "sample.csv", sampleCSV)

	rec := get(s, location)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from analysis page, got %d", rec.Code)
	}
	page := rec.Body.String()
	for _, want := range []string{"sample.csv", "Data Preview", "Statistical Summary", "skewness"} {
		if !strings.Contains(page, want) {
			t.Errorf("Analysis page missing %q", want)
		}
	}
}

func TestUploadIsIdempotentByContent(t *testing.T) {
	s := newTestServer(t)
	first := uploadCSV(t, s, "one.csv", sampleCSV)
	second := uploadCSV(t, s, "renamed.csv", sampleCSV)
	if first != second {
		t.Errorf("Expected identical content to map to one dataset, got %q and %q", first, second)
	}
}

func TestUploadRejectsEmptyDataset(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "empty.csv")
	part.Write([]byte("a,b\n"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/datasets", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for header-only file, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no data rows") {
		t.Errorf("Expected the empty-dataset message, got: %s", rec.Body.String())
	}
}

func TestAnalysisUnknownDataset(t *testing.T) {
	s := newTestServer(t)
	rec := get(s, "/datasets/deadbeef")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown dataset, got %d", rec.Code)
	}
}

func TestAnalysisExplicitEmptySelection(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "sample.csv", sampleCSV)

	rec := get(s, location+"?applied=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "select at least one numerical column") {
		t.Error("Expected the no-columns-selected warning")
	}
}

func TestAnalysisNoNumericColumns(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "text.csv", "name,city\nann,berlin\nbob,oslo\n")

	rec := get(s, location)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no numerical columns") {
		t.Error("Expected the no-numeric-columns message")
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "sample.csv", sampleCSV)

	rec := get(s, location+"/summary?cols=a&cols=b")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary struct {
		TotalColumns     int      `json:"total_columns"`
		NumericalColumns []string `json:"numerical_columns"`
		SelectedColumns  []string `json:"selected_columns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if summary.TotalColumns != 3 {
		t.Errorf("Expected 3 total columns, got %d", summary.TotalColumns)
	}
	if len(summary.NumericalColumns) != 2 {
		t.Errorf("Expected 2 numerical columns, got %v", summary.NumericalColumns)
	}
	if len(summary.SelectedColumns) != 2 {
		t.Errorf("Expected 2 selected columns, got %v", summary.SelectedColumns)
	}
}

func TestStatisticsEndpointEncodesNaNAsNull(t *testing.T) {
	s := newTestServer(t)
	// Two data rows: skewness needs 3 values and kurtosis needs 4
	location := uploadCSV(t, s, "short.csv", "a\n1\n2\n")

	rec := get(s, location+"/statistics?cols=a")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected one statistics row, got %d", len(rows))
	}
	if rows[0]["mean"] != 1.5 {
		t.Errorf("Expected mean 1.5, got %v", rows[0]["mean"])
	}
	if v, present := rows[0]["skewness"]; !present || v != nil {
		t.Errorf("Expected skewness null, got %v", v)
	}
	if v, present := rows[0]["kurtosis"]; !present || v != nil {
		t.Errorf("Expected kurtosis null, got %v", v)
	}
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "sample.csv", sampleCSV)

	rec := get(s, location+"/chart?kind=scatter&x=a&y=b&cols=a&cols=b")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("Expected a PNG body")
	}
}

func TestChartEndpointRejectsBadSpec(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "sample.csv", sampleCSV)

	rec := get(s, location+"/chart?kind=scatter&x=a&y=a")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if payload["code"] != "INVALID_CHART_SPEC" {
		t.Errorf("Expected INVALID_CHART_SPEC, got %s", payload["code"])
	}
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "sample.csv", sampleCSV)

	rec := get(s, location+"/export?cols=a&cols=b")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "statistical_summary.csv") {
		t.Errorf("Expected the summary filename in Content-Disposition, got %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "column,count,mean,std,min,p25,p50,p75,max,skewness,kurtosis") {
		t.Errorf("Unexpected CSV header: %s", strings.SplitN(body, "\n", 2)[0])
	}
	if !strings.Contains(body, "\na,") || !strings.Contains(body, "\nb,") {
		t.Error("Expected one row per selected column")
	}
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t)
	location := uploadCSV(t, s, "sample.csv", sampleCSV)

	rec := get(s, location+"/export?format=xlsx&cols=a")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{'P', 'K'}) {
		t.Error("Expected a zip-packaged workbook")
	}
}

func TestHelpPage(t *testing.T) {
	s := newTestServer(t)
	rec := get(s, "/help")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Uploading data") {
		t.Error("Expected rendered help content")
	}
}
