package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartHandler_HandleCharts(t *testing.T) {
	_, source := newTestSource(t)
	h := NewChartHandler(source, testRenderer())

	c, rec := newContext(http.MethodGet, "/api/charts")
	require.NoError(t, h.HandleCharts(c))

	var body struct {
		Layout [][]string     `json:"layout"`
		Charts []models.Chart `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, charts.Layout, body.Layout)
	require.Len(t, body.Charts, len(charts.Names()))
	for i, name := range charts.Names() {
		assert.Equal(t, name, body.Charts[i].Name)
	}
}

func TestChartHandler_HandleChart(t *testing.T) {
	_, source := newTestSource(t)
	h := NewChartHandler(source, testRenderer())

	c, rec := newContext(http.MethodGet, "/api/charts/revenue-by-company?companies=AAPL,MSFT")
	c.SetParamNames("name")
	c.SetParamValues(charts.NameRevenueByCompany)
	require.NoError(t, h.HandleChart(c))

	var chart models.Chart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Equal(t, charts.NameRevenueByCompany, chart.Name)
	assert.Equal(t, models.ChartBar, chart.Kind)
	assert.ElementsMatch(t, []string{"AAPL", "MSFT"}, chart.Categories)
}

func TestChartHandler_UnknownChart(t *testing.T) {
	_, source := newTestSource(t)
	h := NewChartHandler(source, testRenderer())

	c, _ := newContext(http.MethodGet, "/api/charts/pie-of-pies")
	c.SetParamNames("name")
	c.SetParamValues("pie-of-pies")
	requireAPIError(t, h.HandleChart(c), http.StatusNotFound, CodeNotFound)
}

func TestChartHandler_MissingName(t *testing.T) {
	_, source := newTestSource(t)
	h := NewChartHandler(source, testRenderer())

	c, _ := newContext(http.MethodGet, "/api/charts/")
	requireAPIError(t, h.HandleChart(c), http.StatusBadRequest, CodeValidation)
}

func TestChartHandler_HandleChartPage(t *testing.T) {
	_, source := newTestSource(t)
	h := NewChartHandler(source, testRenderer())

	c, rec := newContext(http.MethodGet, "/charts/eps-trends")
	c.SetParamNames("name")
	c.SetParamValues(charts.NameEPSTrends)
	require.NoError(t, h.HandleChartPage(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextHTML)
	assert.Contains(t, rec.Body.String(), "echarts.min.js")
	assert.Contains(t, rec.Body.String(), charts.ChartID(charts.NameEPSTrends))
}
