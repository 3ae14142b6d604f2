// Package ui is the web surface: one gin server carrying the upload page,
// the analysis view, the chart/export endpoints, and the help page.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"statlab/internal"
	"statlab/internal/config"
	"statlab/internal/dataset"
)

//go:embed templates/*
var embeddedFiles embed.FS

// Server represents the web server for the statlab UI
type Server struct {
	router    *gin.Engine
	cache     *dataset.Cache
	config    *config.Config
	templates *template.Template
	logger    *internal.Logger
}

// NewServer creates the UI server with its routes and parsed templates.
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.Default(),
		cache:     dataset.NewCache(),
		config:    cfg,
		templates: templates,
		logger:    internal.DefaultLogger,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	// Pages
	s.router.GET("/", s.handleIndex)
	s.router.GET("/help", s.handleHelp)
	s.router.GET("/datasets/:key", s.handleAnalysis)

	// Upload
	s.router.POST("/datasets", s.handleUpload)

	// API endpoints
	s.router.GET("/datasets/:key/summary", s.handleSummary)
	s.router.GET("/datasets/:key/statistics", s.handleStatistics)
	s.router.GET("/datasets/:key/chart", s.handleChart)
	s.router.GET("/datasets/:key/export", s.handleExport)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := ":" + s.config.Server.Port
	s.logger.Info("starting statlab UI on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the handler, used by the HTTP tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Template helpers
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, templateName, data); err != nil {
		s.logger.Error("template %s: %v", templateName, err)
		c.String(http.StatusInternalServerError, "Template error")
	}
}
