package charts

import (
	"math"
	"sort"
	"strconv"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/stats"
)

// Series colors.
const (
	ColorGreen  = "#00cc96"
	ColorRed    = "#ef553b"
	ColorOrange = "#ffa15a"
)

// RevenueByCompany is total revenue per company in billions, ascending.
func RevenueByCompany(records []models.FinancialRecord) models.Chart {
	groups := groupColumn(records, stats.ByCompany, models.ColRevenue)
	keys, values := sortedByValue(groups.keys, groups.reduce(stats.Sum), true)
	values = scale(values, 1.0/1000)

	return models.Chart{
		Name:       NameRevenueByCompany,
		Title:      "Revenue by Company",
		Kind:       models.ChartBar,
		Horizontal: true,
		XTitle:     "Revenue (Billions)",
		YTitle:     "Company",
		Height:     HeightSmall,
		Categories: keys,
		Series: []models.Series{{
			Name:   "Revenue",
			Values: models.Floats(values),
			Colors: colorScale(values, Viridis),
		}},
	}
}

// MarketCapDistribution is mean market cap per company.
func MarketCapDistribution(records []models.FinancialRecord) models.Chart {
	groups := groupColumn(records, stats.ByCompany, models.ColMarketCap)

	return models.Chart{
		Name:       NameMarketCapDistribution,
		Title:      "Market Cap Distribution",
		Kind:       models.ChartPie,
		Height:     HeightSmall,
		Categories: groups.keys,
		Series: []models.Series{{
			Name:   "Market Cap",
			Values: models.Floats(groups.reduce(stats.Mean)),
		}},
	}
}

// ROEvsROA plots every row with ROA on x and ROE on y, sized by market cap.
func ROEvsROA(records []models.FinancialRecord) models.Chart {
	byCompany := make(map[string][]models.Point)
	var companies []string
	for i := range records {
		r := &records[i]
		if math.IsNaN(r.ROA) || math.IsNaN(r.ROE) {
			continue
		}
		if _, ok := byCompany[r.Company]; !ok {
			companies = append(companies, r.Company)
		}
		byCompany[r.Company] = append(byCompany[r.Company], models.Point{
			X:     models.Float(r.ROA),
			Y:     models.Float(r.ROE),
			Size:  models.Float(r.MarketCap),
			Label: strconv.Itoa(r.Year),
		})
	}
	sort.Strings(companies)

	series := make([]models.Series, 0, len(companies))
	for _, c := range companies {
		series = append(series, models.Series{Name: c, Points: byCompany[c]})
	}

	return models.Chart{
		Name:   NameROEvsROA,
		Title:  "ROE vs ROA",
		Kind:   models.ChartScatter,
		XTitle: "ROA",
		YTitle: "ROE",
		Height: HeightSmall,
		Series: series,
	}
}

// RevenueTrends stacks mean revenue per company for every year, in billions.
// Missing (year, company) cells are zero.
func RevenueTrends(records []models.FinancialRecord) models.Chart {
	years, companies, cell := pivot(records, models.ColRevenue)

	series := make([]models.Series, 0, len(companies))
	for _, c := range companies {
		values := make([]float64, len(years))
		for i, y := range years {
			v := cell(y, c)
			if math.IsNaN(v) {
				v = 0
			}
			values[i] = v / 1000
		}
		series = append(series, models.Series{Name: c, Values: models.Floats(values)})
	}

	return models.Chart{
		Name:       NameRevenueTrends,
		Title:      "Revenue Trends Over Time",
		Kind:       models.ChartBar,
		BarMode:    models.BarModeStack,
		XTitle:     "Year",
		YTitle:     "Revenue (Billions)",
		Height:     HeightSmall,
		Categories: yearLabels(years),
		Series:     series,
	}
}

// IndustryPerformance compares mean revenue and net income per industry.
func IndustryPerformance(records []models.FinancialRecord) models.Chart {
	revenue := groupColumn(records, stats.ByIndustry, models.ColRevenue)
	income := groupColumn(records, stats.ByIndustry, models.ColNetIncome)

	incomeMeans := income.reduce(stats.Mean)
	incomeByKey := make(map[string]float64, len(income.keys))
	for i, k := range income.keys {
		incomeByKey[k] = incomeMeans[i]
	}

	keys, revSorted := sortedByValue(revenue.keys, revenue.reduce(stats.Mean), true)
	incSorted := make([]float64, len(keys))
	for i, k := range keys {
		incSorted[i] = incomeByKey[k]
	}

	return models.Chart{
		Name:       NameIndustryPerformance,
		Title:      "Performance by Industry",
		Kind:       models.ChartBar,
		Horizontal: true,
		BarMode:    models.BarModeGroup,
		XTitle:     "Amount (Billions)",
		YTitle:     "Industry",
		Height:     HeightSmall,
		Categories: keys,
		Series: []models.Series{
			{Name: "Revenue", Color: ColorGreen, Values: models.Floats(scale(revSorted, 1.0/1000))},
			{Name: "Net Income", Color: ColorRed, Values: models.Floats(scale(incSorted, 1.0/1000))},
		},
	}
}

// RatioDistribution summarizes current ratio and debt/equity as box plots.
func RatioDistribution(records []models.FinancialRecord) models.Chart {
	chart := models.Chart{
		Name:   NameRatioDistribution,
		Title:  "Financial Ratios Distribution",
		Kind:   models.ChartBox,
		XTitle: "Ratio_Type",
		YTitle: "Value",
		Height: HeightSmall,
	}

	for _, col := range []string{models.ColCurrentRatio, models.ColDebtEquityRatio} {
		b, ok := stats.BoxSummary(stats.Column(records, col))
		if !ok {
			continue
		}
		chart.Categories = append(chart.Categories, col)
		chart.Boxes = append(chart.Boxes, models.BoxStat{
			Name:       col,
			Count:      b.Count,
			Min:        models.Float(b.Min),
			LowerFence: models.Float(b.LowerFence),
			Q1:         models.Float(b.Q1),
			Median:     models.Float(b.Median),
			Q3:         models.Float(b.Q3),
			UpperFence: models.Float(b.UpperFence),
			Max:        models.Float(b.Max),
			Outliers:   models.Floats(b.Outliers),
		})
	}
	return chart
}

// EmployeeCount is mean head count per company, largest first.
func EmployeeCount(records []models.FinancialRecord) models.Chart {
	groups := groupColumn(records, stats.ByCompany, models.ColEmployees)
	keys, values := sortedByValue(groups.keys, groups.reduce(stats.Mean), false)

	return models.Chart{
		Name:       NameEmployeeCount,
		Title:      "Employee Count",
		Kind:       models.ChartBar,
		XTitle:     "Company",
		YTitle:     "Employees",
		Height:     HeightSmall,
		Categories: keys,
		Series: []models.Series{{
			Name:   "Employees",
			Values: models.Floats(values),
			Colors: colorScale(values, Blues),
		}},
	}
}

// ProfitMargins is mean net profit margin per company, ascending.
func ProfitMargins(records []models.FinancialRecord) models.Chart {
	groups := groupColumn(records, stats.ByCompany, models.ColNetProfitMargin)
	keys, values := sortedByValue(groups.keys, groups.reduce(stats.Mean), true)

	return models.Chart{
		Name:       NameProfitMargins,
		Title:      "Profit Margins",
		Kind:       models.ChartBar,
		Horizontal: true,
		XTitle:     "Net Profit Margin (%)",
		YTitle:     "Company",
		Height:     HeightSmall,
		Categories: keys,
		Series: []models.Series{{
			Name:   "Net Profit Margin",
			Values: models.Floats(values),
			Colors: colorScale(values, RdYlGn),
		}},
	}
}

// EPSTrends draws one line per company across the selected years. Years a
// company has no row for are gaps.
func EPSTrends(records []models.FinancialRecord) models.Chart {
	years, companies, cell := pivot(records, models.ColEPS)

	series := make([]models.Series, 0, len(companies))
	for _, c := range companies {
		values := make([]float64, len(years))
		for i, y := range years {
			values[i] = cell(y, c)
		}
		series = append(series, models.Series{Name: c, Values: models.Floats(values)})
	}

	return models.Chart{
		Name:       NameEPSTrends,
		Title:      "Earnings Per Share Trends",
		Kind:       models.ChartLine,
		XTitle:     "Year",
		YTitle:     "Earning_Per_Share",
		Height:     HeightLarge,
		Categories: yearLabels(years),
		Series:     series,
	}
}

// CashFlow compares mean operating, investing and financing cash flow per
// company, in billions.
func CashFlow(records []models.FinancialRecord) models.Chart {
	cols := []struct {
		col, name, color string
	}{
		{models.ColCashFlowOperating, "Operating", ColorGreen},
		{models.ColCashFlowInvesting, "Investing", ColorRed},
		{models.ColCashFlowFinancing, "Financial", ColorOrange},
	}

	chart := models.Chart{
		Name:    NameCashFlow,
		Title:   "Cash Flow Analysis",
		Kind:    models.ChartBar,
		BarMode: models.BarModeGroup,
		XTitle:  "Company",
		YTitle:  "Cash Flow (Billions)",
		Height:  HeightLarge,
	}
	for _, c := range cols {
		groups := groupColumn(records, stats.ByCompany, c.col)
		chart.Categories = groups.keys
		chart.Series = append(chart.Series, models.Series{
			Name:   c.name,
			Color:  c.color,
			Values: models.Floats(scale(groups.reduce(stats.Mean), 1.0/1000)),
		})
	}
	return chart
}

// FeatureImportance charts the trained model's importances over the
// selected features. A nil report gives an empty chart.
func FeatureImportance(report *models.ModelReport) models.Chart {
	chart := models.Chart{
		Name:       NameFeatureImportance,
		Title:      "Feature Importance for EPS Prediction",
		Kind:       models.ChartBar,
		Horizontal: true,
		XTitle:     "Importance",
		YTitle:     "Feature",
		Height:     HeightLarge,
	}
	if report == nil {
		return chart
	}

	values := make([]float64, len(report.Importances))
	for i, fi := range report.Importances {
		chart.Categories = append(chart.Categories, fi.Feature)
		v := fi.Importance
		if math.IsNaN(v) {
			v = 0
		}
		values[i] = v
	}
	chart.Series = []models.Series{{Name: "Importance", Values: models.Floats(values)}}
	return chart
}

// grouped holds one column's values split by a key; keys are sorted.
type grouped struct {
	keys   []string
	values map[string][]float64
}

func groupColumn(records []models.FinancialRecord, key func(*models.FinancialRecord) string, col string) grouped {
	g := grouped{values: make(map[string][]float64)}
	for i := range records {
		k := key(&records[i])
		if _, ok := g.values[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.values[k] = append(g.values[k], records[i].Value(col))
	}
	sort.Strings(g.keys)
	return g
}

// reduce applies fn to every group in key order.
func (g grouped) reduce(fn func([]float64) float64) []float64 {
	out := make([]float64, len(g.keys))
	for i, k := range g.keys {
		out[i] = fn(g.values[k])
	}
	return out
}

// sortedByValue orders keys by value, NaN last, ties by key.
func sortedByValue(keys []string, values []float64, ascending bool) ([]string, []float64) {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := values[idx[a]], values[idx[b]]
		switch {
		case math.IsNaN(va):
			return false
		case math.IsNaN(vb):
			return true
		case ascending:
			return va < vb
		default:
			return va > vb
		}
	})

	outKeys := make([]string, len(keys))
	outValues := make([]float64, len(keys))
	for i, j := range idx {
		outKeys[i] = keys[j]
		outValues[i] = values[j]
	}
	return outKeys, outValues
}

func scale(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}

// pivot indexes the mean of col by (year, company). Companies with no value
// at all are dropped.
func pivot(records []models.FinancialRecord, col string) (years []int, companies []string, cell func(year int, company string) float64) {
	type key struct {
		year    int
		company string
	}
	cells := make(map[key][]float64)
	yearSet := make(map[int]struct{})
	hasValue := make(map[string]bool)

	for i := range records {
		r := &records[i]
		k := key{r.Year, r.Company}
		v := r.Value(col)
		cells[k] = append(cells[k], v)
		yearSet[r.Year] = struct{}{}
		if !math.IsNaN(v) {
			hasValue[r.Company] = true
		}
	}

	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)
	for c := range hasValue {
		companies = append(companies, c)
	}
	sort.Strings(companies)

	cell = func(year int, company string) float64 {
		return stats.Mean(cells[key{year, company}])
	}
	return years, companies, cell
}

func yearLabels(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}
