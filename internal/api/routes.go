// Package api exposes the dashboard's HTTP surface.
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/spacesedan/moodboard/internal/history"
	"github.com/spacesedan/moodboard/internal/pipeline"
	"github.com/spacesedan/moodboard/internal/session"
)

// Handlers bundles the components the routes close over.
type Handlers struct {
	Pipeline *pipeline.Service
	Sessions *session.Manager
	History  history.Store
}

// RegisterRoutes wires the dashboard API onto e.
func RegisterRoutes(e *echo.Echo, h *Handlers) {
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1 := e.Group("/v1")

	v1.POST("/analyze", h.handleAnalyze)
	v1.POST("/files/extract", h.handleExtract)

	v1.GET("/results", h.handleResults)
	v1.GET("/results/stats", h.handleStats)
	v1.DELETE("/results", h.handleClearResults)

	v1.GET("/export/csv", h.handleExportCSV)
	v1.GET("/export/json", h.handleExportJSON)
	v1.GET("/export/report", h.handleExportReport)

	v1.POST("/history", h.handleSaveAnalysis)
	v1.GET("/history", h.handleListAnalyses)
	v1.GET("/history/:id", h.handleLoadAnalysis)
	v1.DELETE("/history/:id", h.handleDeleteAnalysis)
}
