package format

import (
	"math"
	"sort"
	"strconv"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/stats"
)

// Metric card titles.
const (
	TitleCompanies      = "Companies"
	TitleAvgRevenue     = "Avg Revenue"
	TitleTotalMarketCap = "Total Market Cap"
	TitleAvgEmployees   = "Avg Employees"
	TitleAvgEPS         = "Avg EPS"
)

// KeyMetrics builds the five cards shown above the charts. When the rows span
// more than one year, Avg Revenue and Avg EPS carry the change between the
// last two years present.
func KeyMetrics(records []models.FinancialRecord) []models.MetricCard {
	companies := make(map[string]struct{})
	for i := range records {
		companies[records[i].Company] = struct{}{}
	}

	revenue := stats.Mean(stats.Column(records, models.ColRevenue))
	marketCap := stats.Sum(stats.Column(records, models.ColMarketCap))
	employees := stats.Mean(stats.Column(records, models.ColEmployees))
	eps := stats.Mean(stats.Column(records, models.ColEPS))

	cards := []models.MetricCard{
		{Title: TitleCompanies, Value: strconv.Itoa(len(companies)), Raw: models.Float(len(companies))},
		{Title: TitleAvgRevenue, Value: Currency(revenue), Raw: models.Float(revenue)},
		{Title: TitleTotalMarketCap, Value: CurrencyBillions(marketCap), Raw: models.Float(marketCap)},
		{Title: TitleAvgEmployees, Value: Number(employees), Raw: models.Float(employees)},
		{Title: TitleAvgEPS, Value: EPS(eps), Raw: models.Float(eps)},
	}

	last, prev, ok := lastTwoYears(records)
	if ok {
		cards[1].Delta = yearOverYear(records, models.ColRevenue, prev, last)
		cards[4].Delta = yearOverYear(records, models.ColEPS, prev, last)
	}
	return cards
}

func lastTwoYears(records []models.FinancialRecord) (last, prev int, ok bool) {
	seen := make(map[int]struct{})
	for i := range records {
		seen[records[i].Year] = struct{}{}
	}
	if len(seen) < 2 {
		return 0, 0, false
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years[len(years)-1], years[len(years)-2], true
}

// yearOverYear is the percent change of the column mean from year a to b,
// nil when it cannot be computed.
func yearOverYear(records []models.FinancialRecord, col string, a, b int) *float64 {
	var before, after []float64
	for i := range records {
		switch records[i].Year {
		case a:
			before = append(before, records[i].Value(col))
		case b:
			after = append(after, records[i].Value(col))
		}
	}

	from, to := stats.Mean(before), stats.Mean(after)
	if missing(from) || missing(to) || from == 0 {
		return nil
	}
	d := Round((to-from)/math.Abs(from)*100, 1)
	return &d
}
