package api

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/corpfin/dashboard/internal/charts"
	"github.com/corpfin/dashboard/internal/dataset"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/corpfin/dashboard/internal/testutil"
	"github.com/corpfin/dashboard/internal/training"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// Rows selected by the default filter: six companies, 2018 through 2021.
const defaultRows = 6 * 4

func newTestSource(t *testing.T) (*dataset.Cache, store.Source) {
	t.Helper()
	path := testutil.WriteSampleCSV(t, t.TempDir())
	cache := dataset.NewCache(dataset.NewLoader(dataset.DefaultRules()), path)
	return cache, store.NewMemorySource(cache)
}

func newBrokenSource(t *testing.T) store.Source {
	t.Helper()
	cache := dataset.NewCache(nil, filepath.Join(t.TempDir(), "missing.csv"))
	return store.NewMemorySource(cache)
}

func testRenderer() *charts.Renderer {
	return charts.NewRenderer(charts.Theme{Background: "#2d2d2d", Text: "#f5f5f5"}, "")
}

func fixedReport() *models.ModelReport {
	return &models.ModelReport{
		Accuracy:         0.875,
		Features:         []string{"Revenue", "ROE"},
		SelectedFeatures: []string{"Revenue"},
		Importances:      []models.FeatureImportance{{Feature: "Revenue", Importance: 1}},
		TrainRows:        16,
		TestRows:         8,
	}
}

func newTestTrainer(t *testing.T) *training.Manager {
	t.Helper()
	mgr := training.NewManagerWithRunner(func(ctx context.Context, records []models.FinancialRecord) (*models.ModelReport, error) {
		return fixedReport(), nil
	}, nil)
	t.Cleanup(mgr.Close)
	return mgr
}

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func requireAPIError(t *testing.T, err error, status int, code string) *APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	require.Equal(t, status, apiErr.Status)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}
