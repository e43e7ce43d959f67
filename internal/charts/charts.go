// Package charts turns filtered records into chart datasets and renders them
// with go-echarts.
package charts

import (
	"errors"
	"fmt"

	"github.com/corpfin/dashboard/internal/models"
)

// ErrUnknownChart is returned by Build for names not in the registry.
var ErrUnknownChart = errors.New("unknown chart")

// Chart names, as used in URLs.
const (
	NameRevenueByCompany      = "revenue-by-company"
	NameMarketCapDistribution = "market-cap-distribution"
	NameROEvsROA              = "roe-vs-roa"
	NameRevenueTrends         = "revenue-trends"
	NameIndustryPerformance   = "industry-performance"
	NameRatioDistribution     = "ratio-distribution"
	NameEmployeeCount         = "employee-count"
	NameProfitMargins         = "profit-margins"
	NameEPSTrends             = "eps-trends"
	NameCashFlow              = "cash-flow"
	NameFeatureImportance     = "feature-importance"
)

// Row heights in pixels.
const (
	HeightSmall = 300
	HeightLarge = 400
)

// Builder aggregates records into a chart.
type Builder func(records []models.FinancialRecord) models.Chart

var registry = map[string]Builder{
	NameRevenueByCompany:      RevenueByCompany,
	NameMarketCapDistribution: MarketCapDistribution,
	NameROEvsROA:              ROEvsROA,
	NameRevenueTrends:         RevenueTrends,
	NameIndustryPerformance:   IndustryPerformance,
	NameRatioDistribution:     RatioDistribution,
	NameEmployeeCount:         EmployeeCount,
	NameProfitMargins:         ProfitMargins,
	NameEPSTrends:             EPSTrends,
	NameCashFlow:              CashFlow,
}

// Layout is the dashboard grid, one slice per row.
var Layout = [][]string{
	{NameRevenueByCompany, NameMarketCapDistribution, NameROEvsROA},
	{NameRevenueTrends, NameIndustryPerformance},
	{NameRatioDistribution, NameEmployeeCount, NameProfitMargins},
	{NameEPSTrends, NameCashFlow},
}

// Names returns the registered chart names in layout order.
func Names() []string {
	var names []string
	for _, row := range Layout {
		names = append(names, row...)
	}
	return names
}

// Build runs the builder registered under name.
func Build(name string, records []models.FinancialRecord) (models.Chart, error) {
	b, ok := registry[name]
	if !ok {
		return models.Chart{}, fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}
	return b(records), nil
}

// BuildAll builds every registered chart in layout order.
func BuildAll(records []models.FinancialRecord) []models.Chart {
	names := Names()
	out := make([]models.Chart, 0, len(names))
	for _, name := range names {
		out = append(out, registry[name](records))
	}
	return out
}
