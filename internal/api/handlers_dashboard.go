// handlers_dashboard.go - Server-rendered dashboard page
package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/format"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/corpfin/dashboard/internal/summary"
	"github.com/corpfin/dashboard/internal/web"
	"github.com/labstack/echo/v4"
)

// PageSettings are the parts of the dashboard page that come from configuration.
type PageSettings struct {
	Title           string
	Icon            string
	Theme           web.Theme
	SidebarExpanded bool
	Wide            bool
	XSRF            bool
}

// DashboardHandlerImpl implements the DashboardHandler interface
type DashboardHandlerImpl struct {
	source   store.Source
	renderer *charts.Renderer
	settings PageSettings
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(source store.Source, renderer *charts.Renderer, settings PageSettings) DashboardHandler {
	return &DashboardHandlerImpl{
		source:   source,
		renderer: renderer,
		settings: settings,
	}
}

func (h *DashboardHandlerImpl) newPage() *web.Page {
	return &web.Page{
		Title:           h.settings.Title,
		Icon:            h.settings.Icon,
		Theme:           h.settings.Theme,
		AssetsHost:      h.renderer.AssetsHost(),
		ChartTheme:      h.renderer.ThemeName(),
		SidebarExpanded: h.settings.SidebarExpanded,
		Wide:            h.settings.Wide,
		XSRF:            h.settings.XSRF,
	}
}

// HandleDashboard renders the sidebar, metric cards, chart grid, model
// section and summary table for the selection.
func (h *DashboardHandlerImpl) HandleDashboard(c echo.Context) error {
	page := h.newPage()

	sel, err := loadSelection(c, h.source)
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return err
		}
		page.Error = apiErr.Message
		if apiErr.Code != CodeDataLoad && apiErr.Details != "" {
			page.Error = apiErr.Details
		}
		return h.render(c, apiErr.Status, page)
	}

	page.Options = sel.Options
	page.Filter = sel.Filter

	if len(sel.Records) == 0 {
		page.Notice = web.NoDataMessage
		return h.render(c, http.StatusOK, page)
	}

	for _, card := range format.KeyMetrics(sel.Records) {
		page.Cards = append(page.Cards, web.NewCard(card))
	}

	rows, err := h.panels(sel.Records)
	if err != nil {
		return NewInternalError("failed to render charts", err)
	}
	page.Rows = rows
	page.Summary = summary.Build(sel.Records)

	return h.render(c, http.StatusOK, page)
}

func (h *DashboardHandlerImpl) panels(records []models.FinancialRecord) ([][]web.Panel, error) {
	rows := make([][]web.Panel, 0, len(charts.Layout))
	for _, names := range charts.Layout {
		row := make([]web.Panel, 0, len(names))
		for _, name := range names {
			chart, err := charts.Build(name, records)
			if err != nil {
				return nil, err
			}
			opts, err := h.renderer.Options(chart)
			if err != nil {
				return nil, err
			}
			row = append(row, web.Panel{
				ID:      charts.ChartID(name),
				Title:   chart.Title,
				Height:  chart.Height,
				Options: opts,
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (h *DashboardHandlerImpl) render(c echo.Context, status int, page *web.Page) error {
	var buf bytes.Buffer
	if err := web.Render(&buf, page); err != nil {
		slog.Error("failed to render dashboard", "error", err)
		return NewInternalError("failed to render dashboard", err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}
