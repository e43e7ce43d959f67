// query.go - Filter resolution shared by the data handlers
package api

import (
	"log/slog"

	"github.com/corpfin/dashboard/internal/filter"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/labstack/echo/v4"
)

// selection is the dataset, the filter parsed from the request and the rows it selects.
type selection struct {
	Dataset *models.Dataset
	Options models.FilterOptions
	Filter  models.Filter
	Records []models.FinancialRecord
}

// loadSelection resolves the request's query parameters against the active
// dataset. Missing parameters fall back to the dataset defaults.
func loadSelection(c echo.Context, source store.Source) (*selection, error) {
	ctx := c.Request().Context()

	ds, err := source.All(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load dataset", "error", err)
		return nil, NewDataLoadError(err)
	}

	opts := filter.Options(ds.Records)
	f, err := filter.FromQuery(c.QueryParams(), opts.Defaults)
	if err != nil {
		return nil, mapError(err, "invalid filter")
	}

	records, err := source.Records(ctx, f)
	if err != nil {
		return nil, NewInternalError("failed to query records", err)
	}

	return &selection{
		Dataset: ds,
		Options: opts,
		Filter:  f,
		Records: records,
	}, nil
}
