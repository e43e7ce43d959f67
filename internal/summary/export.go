package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the summary table.
const SheetName = "Summary"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteXLSX writes the summary table as a workbook with a header row and the
// rounded numeric values. Missing values are left blank.
func WriteXLSX(w io.Writer, table models.SummaryTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, name := range table.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return fmt.Errorf("failed to write header %s: %w", name, err)
		}
	}

	for rowIdx, row := range table.Rows {
		values := []interface{}{
			row.Company,
			float64(row.Revenue),
			float64(row.NetIncome),
			float64(row.EPS),
			float64(row.MarketCap),
			float64(row.ROE),
			float64(row.ROA),
		}
		for colIdx, val := range values {
			if v, ok := val.(float64); ok && math.IsNaN(v) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(SheetName, cell, val); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowIdx, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// CSVOptions configures WriteRecordsCSV.
type CSVOptions struct {
	BOMPrefix bool // UTF-8 BOM so spreadsheet apps detect the encoding
}

// RecordHeaders are the CSV export columns: the normalized dataset header.
func RecordHeaders() []string {
	headers := []string{models.ColYear, models.ColCompany, models.ColIndustry}
	return append(headers, models.NumericColumns...)
}

// WriteRecordsCSV writes the records with normalized headers. Missing values
// are empty cells.
func WriteRecordsCSV(w io.Writer, records []models.FinancialRecord, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(RecordHeaders()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	row := make([]string, 3+len(models.NumericColumns))
	for i := range records {
		r := &records[i]
		row[0] = strconv.Itoa(r.Year)
		row[1] = r.Company
		row[2] = r.Industry
		for j, col := range models.NumericColumns {
			v := r.Value(col)
			if math.IsNaN(v) {
				row[3+j] = ""
				continue
			}
			row[3+j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
