// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// DataHandler serves filter options, filtered records and metric cards
type DataHandler interface {
	HandleOptions(c echo.Context) error
	HandleRecords(c echo.Context) error
	HandleRecordsMsgpack(c echo.Context) error
	HandleRecordsCSV(c echo.Context) error
	HandleMetrics(c echo.Context) error
}

// ChartHandler serves chart datasets and standalone chart pages
type ChartHandler interface {
	HandleCharts(c echo.Context) error
	HandleChart(c echo.Context) error
	HandleChartPage(c echo.Context) error
}

// SummaryHandler serves the per-company summary table
type SummaryHandler interface {
	HandleSummary(c echo.Context) error
	HandleSummaryXLSX(c echo.Context) error
}

// ModelHandler handles EPS model training jobs
type ModelHandler interface {
	HandleStartTraining(c echo.Context) error
	HandleJobStatus(c echo.Context) error
}

// DatasetHandler handles uploaded dataset files
type DatasetHandler interface {
	HandleUploadDataset(c echo.Context) error
	HandleListDatasets(c echo.Context) error
	HandleActivateDataset(c echo.Context) error
	HandleDeleteDataset(c echo.Context) error
}

// DashboardHandler renders the HTML dashboard
type DashboardHandler interface {
	HandleDashboard(c echo.Context) error
}

// TrainingManager defines the interface for training job management
// This allows mocking in tests
type TrainingManager interface {
	Start(f models.Filter, fingerprint string, version int64, records []models.FinancialRecord) *models.TrainingJob
	Get(id string) (*models.TrainingJob, bool)
	Wait(ctx context.Context, id string) (*models.TrainingJob, error)
}

// DatasetActivator points the served dataset at a new file
type DatasetActivator interface {
	Swap(path string)
}
