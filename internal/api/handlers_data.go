// handlers_data.go - Filter options, filtered records and metric cards
package api

import (
	"bytes"
	"net/http"

	"github.com/corpfin/dashboard/internal/format"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/store"
	"github.com/corpfin/dashboard/internal/summary"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// RecordsFilename is the attachment name of the CSV export.
const RecordsFilename = "financial_data.csv"

// DataHandlerImpl implements the DataHandler interface
type DataHandlerImpl struct {
	source store.Source
}

// NewDataHandler creates a new data handler
func NewDataHandler(source store.Source) DataHandler {
	return &DataHandlerImpl{source: source}
}

// recordsResponse is the body of the records endpoints.
type recordsResponse struct {
	Filter  models.Filter            `json:"filter" msgpack:"filter"`
	Version int64                    `json:"version" msgpack:"version"`
	Count   int                      `json:"count" msgpack:"count"`
	Records []models.FinancialRecord `json:"records" msgpack:"records"`
}

func newRecordsResponse(sel *selection) recordsResponse {
	records := sel.Records
	if records == nil {
		records = []models.FinancialRecord{}
	}
	return recordsResponse{
		Filter:  sel.Filter,
		Version: sel.Dataset.Version,
		Count:   len(records),
		Records: records,
	}
}

// HandleOptions returns the companies, industries and year range of the dataset
func (h *DataHandlerImpl) HandleOptions(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sel.Options)
}

// HandleRecords returns the filtered rows as JSON. Missing values are null.
func (h *DataHandlerImpl) HandleRecords(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newRecordsResponse(sel))
}

// HandleRecordsMsgpack returns the filtered rows encoded as msgpack
func (h *DataHandlerImpl) HandleRecordsMsgpack(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(newRecordsResponse(sel))
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleRecordsCSV downloads the filtered rows. The UTF-8 BOM is written
// unless bom=false so spreadsheet apps detect the encoding.
func (h *DataHandlerImpl) HandleRecordsCSV(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	opts := summary.CSVOptions{BOMPrefix: c.QueryParam("bom") != "false"}
	if err := summary.WriteRecordsCSV(&buf, sel.Records, opts); err != nil {
		return NewInternalError("failed to write csv", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+RecordsFilename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// HandleMetrics returns the key metric cards for the selection
func (h *DataHandlerImpl) HandleMetrics(c echo.Context) error {
	sel, err := loadSelection(c, h.source)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"filter": sel.Filter,
		"cards":  format.KeyMetrics(sel.Records),
	})
}
