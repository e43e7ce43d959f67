// handlers_summary.go - Per-company summary table and spreadsheet export
package api

import (
	"bytes"
	"net/http"

	"github.com/corpfin/dashboard/internal/store"
	"github.com/corpfin/dashboard/internal/summary"
	"github.com/labstack/echo/v4"
)

const (
	// SummaryFilename is the attachment name of the XLSX export.
	SummaryFilename = "financial_summary.xlsx"

	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SummaryHandlerImpl implements the SummaryHandler interface
type SummaryHandlerImpl struct {
	source store.Source
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(source store.Source) SummaryHandler {
	return &SummaryHandlerImpl{source: source}
}

// HandleSummary returns the rounded per-company means and their display strings
func (h *SummaryHandlerImpl) HandleSummary(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary.Build(sel.Records))
}

// HandleSummaryXLSX downloads the summary table as a workbook
func (h *SummaryHandlerImpl) HandleSummaryXLSX(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := summary.WriteXLSX(&buf, summary.Build(sel.Records)); err != nil {
		return NewInternalError("failed to write workbook", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+SummaryFilename+`"`)
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}
