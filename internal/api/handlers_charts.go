// handlers_charts.go - Chart datasets and standalone chart pages
package api

import (
	"bytes"
	"net/http"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/labstack/echo/v4"
)

// ChartHandlerImpl implements the ChartHandler interface
type ChartHandlerImpl struct {
	source   store.Source
	renderer *charts.Renderer
}

// NewChartHandler creates a new chart handler
func NewChartHandler(source store.Source, renderer *charts.Renderer) ChartHandler {
	return &ChartHandlerImpl{
		source:   source,
		renderer: renderer,
	}
}

// HandleCharts returns every dashboard chart for the selection along with the grid layout
func (h *ChartHandlerImpl) HandleCharts(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"filter": sel.Filter,
		"layout": charts.Layout,
		"charts": charts.BuildAll(sel.Records),
	})
}

// HandleChart returns one chart dataset
func (h *ChartHandlerImpl) HandleChart(c echo.Context) error {
	chart, err := h.build(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chart)
}

// HandleChartPage renders one chart as a standalone HTML page
func (h *ChartHandlerImpl) HandleChartPage(c echo.Context) error {
	chart, err := h.build(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, chart); err != nil {
		return NewInternalError("failed to render chart", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *ChartHandlerImpl) build(c echo.Context) (models.Chart, error) {
	name := c.Param("name")
	if name == "" {
		return models.Chart{}, NewValidationError("name")
	}

	sel, err := loadSelection(c, h.source)
	if err != nil {
		return models.Chart{}, err
	}

	chart, err := charts.Build(name, sel.Records)
	if err != nil {
		return models.Chart{}, mapError(err, "failed to build chart")
	}
	return chart, nil
}
