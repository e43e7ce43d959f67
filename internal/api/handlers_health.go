// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/corpfin/dashboard/internal/store"
	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	source  store.Source
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, source store.Source) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		source:  source,
	}
}

// HandleHealth returns server health status. A dataset that fails to load
// reports "degraded" but still answers 200 so the process is not restarted.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"datasetVersion": int64(0),
		"rows":           0,
	}

	ds, err := h.source.All(c.Request().Context())
	if err != nil {
		resp["status"] = "degraded"
		resp["error"] = err.Error()
		return c.JSON(http.StatusOK, resp)
	}

	resp["datasetVersion"] = ds.Version
	resp["rows"] = ds.Len()
	return c.JSON(http.StatusOK, resp)
}
