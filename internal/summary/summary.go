// Package summary builds the per-company summary table and the spreadsheet
// and CSV exports of the filtered data.
package summary

import (
	"github.com/corpfin/dashboard/internal/format"
	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/stats"
)

// Columns are the summary table headers, in order.
var Columns = []string{
	models.ColCompany,
	models.ColRevenue,
	models.ColNetIncome,
	models.ColEPS,
	models.ColMarketCap,
	models.ColROE,
	models.ColROA,
}

// Build groups records by company, in ascending order, and averages each
// summary column. Means are rounded to two decimals before formatting.
func Build(records []models.FinancialRecord) models.SummaryTable {
	table := models.SummaryTable{
		Columns:   append([]string(nil), Columns...),
		Rows:      []models.SummaryRow{},
		Formatted: []models.FormattedSummaryRow{},
	}

	companies, _ := stats.GroupMeans(records, stats.ByCompany, models.ColRevenue)
	means := make(map[string]map[string]float64, len(Columns)-1)
	for _, col := range Columns[1:] {
		_, m := stats.GroupMeans(records, stats.ByCompany, col)
		means[col] = m
	}

	for _, company := range companies {
		get := func(col string) float64 {
			return format.Round(means[col][company], 2)
		}
		row := models.SummaryRow{
			Company:   company,
			Revenue:   models.Float(get(models.ColRevenue)),
			NetIncome: models.Float(get(models.ColNetIncome)),
			EPS:       models.Float(get(models.ColEPS)),
			MarketCap: models.Float(get(models.ColMarketCap)),
			ROE:       models.Float(get(models.ColROE)),
			ROA:       models.Float(get(models.ColROA)),
		}
		table.Rows = append(table.Rows, row)
		table.Formatted = append(table.Formatted, Format(row))
	}
	return table
}

// Format renders a summary row for display.
func Format(row models.SummaryRow) models.FormattedSummaryRow {
	return models.FormattedSummaryRow{
		Company:   row.Company,
		Revenue:   format.Billions(float64(row.Revenue)),
		NetIncome: format.Billions(float64(row.NetIncome)),
		EPS:       format.EPS(float64(row.EPS)),
		MarketCap: format.MarketCap(float64(row.MarketCap)),
		ROE:       format.Percent(float64(row.ROE)),
		ROA:       format.Percent(float64(row.ROA)),
	}
}
