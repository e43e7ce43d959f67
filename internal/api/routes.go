// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/metrics"
	"github.com/corpfin/dashboard/internal/storage"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Source    store.Source
	Loader    *dataset.Loader
	Activator DatasetActivator
	Store     storage.Store
	Trainer   TrainingManager
	Renderer  *charts.Renderer
	Metrics   *metrics.Metrics
	Page      PageSettings
	Version   string

	// UploadLimit caps dataset upload bodies, e.g. "64M"
	UploadLimit string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Data      DataHandler
	Charts    ChartHandler
	Summary   SummaryHandler
	Model     ModelHandler
	Datasets  DatasetHandler
	Dashboard DashboardHandler

	// Metrics serves the Prometheus exposition; nil disables /metrics
	Metrics http.Handler

	UploadLimit string
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = charts.NewRenderer(charts.Theme{}, "")
	}

	h := &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Source),
		Data:      NewDataHandler(deps.Source),
		Charts:    NewChartHandler(deps.Source, renderer),
		Summary:   NewSummaryHandler(deps.Source),
		Model:     NewModelHandler(deps.Source, deps.Trainer, renderer),
		Datasets:  NewDatasetHandler(deps.Store, deps.Loader, deps.Activator),
		Dashboard: NewDashboardHandler(deps.Source, renderer, deps.Page),

		UploadLimit: deps.UploadLimit,
	}
	if deps.Metrics != nil {
		h.Metrics = deps.Metrics.Handler()
	}
	return h
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Pages
	e.GET("/", handlers.Dashboard.HandleDashboard)
	e.GET("/charts/:name", handlers.Charts.HandleChartPage)

	if handlers.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(handlers.Metrics))
	}

	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Filtered data
	apiGroup.GET("/options", handlers.Data.HandleOptions)
	apiGroup.GET("/records", handlers.Data.HandleRecords)
	apiGroup.GET("/records/msgpack", handlers.Data.HandleRecordsMsgpack)
	apiGroup.GET("/records/export.csv", handlers.Data.HandleRecordsCSV)
	apiGroup.GET("/metrics", handlers.Data.HandleMetrics)

	// Charts
	apiGroup.GET("/charts", handlers.Charts.HandleCharts)
	apiGroup.GET("/charts/:name", handlers.Charts.HandleChart)

	// Summary table
	apiGroup.GET("/summary", handlers.Summary.HandleSummary)
	apiGroup.GET("/summary/export.xlsx", handlers.Summary.HandleSummaryXLSX)

	// Model training
	apiGroup.POST("/model", handlers.Model.HandleStartTraining)
	apiGroup.GET("/model/:jobId", handlers.Model.HandleJobStatus)

	// Uploaded datasets
	datasetGroup := apiGroup.Group("/datasets")
	var uploadMiddleware []echo.MiddlewareFunc
	if handlers.UploadLimit != "" {
		uploadMiddleware = append(uploadMiddleware, middleware.BodyLimit(handlers.UploadLimit))
	}
	datasetGroup.POST("", handlers.Datasets.HandleUploadDataset, uploadMiddleware...)
	datasetGroup.GET("", handlers.Datasets.HandleListDatasets)
	datasetGroup.POST("/:id/activate", handlers.Datasets.HandleActivateDataset)
	datasetGroup.DELETE("/:id", handlers.Datasets.HandleDeleteDataset)
}
