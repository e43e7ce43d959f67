package api

import (
	"net/http"
	"testing"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPageSettings() PageSettings {
	return PageSettings{
		Title:           "Corporate Financial Analysis & ML Dashboard",
		Icon:            "📊",
		Theme:           web.Theme{Primary: "#f5f5f5", Background: "#1a1a1a", SecondaryBackground: "#f5f5f5", Text: "#f5f5f5", Panel: "#2d2d2d"},
		SidebarExpanded: true,
		Wide:            true,
	}
}

func TestDashboardHandler_HandleDashboard(t *testing.T) {
	_, source := newTestSource(t)
	h := NewDashboardHandler(source, testRenderer(), testPageSettings())

	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, h.HandleDashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Corporate Financial Analysis &amp; ML Dashboard")
	assert.Contains(t, body, "metric-card")
	for _, name := range charts.Names() {
		assert.Contains(t, body, charts.ChartID(name))
	}
	assert.Contains(t, body, "Financial Data Summary")
	assert.Contains(t, body, "$325.0B")
	assert.NotContains(t, body, web.NoDataMessage)
}

func TestDashboardHandler_EmptySelection(t *testing.T) {
	_, source := newTestSource(t)
	h := NewDashboardHandler(source, testRenderer(), testPageSettings())

	c, rec := newContext(http.MethodGet, "/?companies=")
	require.NoError(t, h.HandleDashboard(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, web.NoDataMessage)
	assert.NotContains(t, body, "metric-card")
	assert.NotContains(t, body, "Financial Data Summary")
}

func TestDashboardHandler_LoadError(t *testing.T) {
	h := NewDashboardHandler(newBrokenSource(t), testRenderer(), testPageSettings())

	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, h.HandleDashboard(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), web.LoadErrorMessage)
}

func TestDashboardHandler_InvalidFilter(t *testing.T) {
	_, source := newTestSource(t)
	h := NewDashboardHandler(source, testRenderer(), testPageSettings())

	c, rec := newContext(http.MethodGet, "/?year_from=2021&year_to=2019")
	require.NoError(t, h.HandleDashboard(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "year_from 2021 is after year_to 2019")
}
