// fixtures.go - Sample financial statements for tests
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/corpfin/dashboard/internal/models"
)

// SampleHeader is the raw header of the financial statements export,
// including the trailing space after Company.
const SampleHeader = "Year,Company ,Category,Market Cap(in B USD),Revenue,Gross Profit,Net Income," +
	"Earning Per Share,EBITDA,Share Holder Equity,Cash Flow from Operating,Cash Flow from Investing," +
	"Cash Flow from Financial Activities,Current Ratio,Debt/Equity Ratio,ROE,ROA,ROI,Net Profit Margin," +
	"Free Cash Flow per Share,Return on Tangible Equity,Number of Employees,Inflation Rate(in US)"

// Sample dataset bounds.
const (
	SampleMinYear = 2017
	SampleMaxYear = 2021
)

// SampleCompanies is the sorted list of companies in the sample.
var SampleCompanies = []string{"AAPL", "AMZN", "BCS", "GOOG", "INTC", "MSFT", "NVDA"}

// SampleIndustries is the sorted list of industries in the sample.
var SampleIndustries = []string{"BANK", "ELEC", "IT", "Logistics"}

type sampleCompany struct {
	name      string
	industry  string
	revenue   float64
	marketCap float64
	eps       float64
	employees float64
	roe       float64
	roa       float64
}

var sampleCompanies = []sampleCompany{
	{"AAPL", "IT", 260000, 1300, 3.0, 137000, 55, 17},
	{"AMZN", "Logistics", 280000, 900, 2.0, 800000, 20, 6},
	{"BCS", "BANK", 25000, 30, 0.8, 80000, 6, 0.4},
	{"GOOG", "IT", 160000, 900, 3.5, 120000, 18, 13},
	{"INTC", "ELEC", 72000, 200, 4.5, 110000, 25, 14},
	{"MSFT", "IT", 125000, 1100, 5.0, 150000, 40, 15},
	{"NVDA", "ELEC", 11000, 150, 1.5, 14000, 45, 30},
}

var sampleInflation = map[int]float64{2017: 2.13, 2018: 2.44, 2019: 1.81, 2020: 1.23, 2021: 4.70}

// SampleRecords returns the sample dataset, ordered by year then company.
// Values grow 10% a year. NVDA 2017 has no ROI.
func SampleRecords() []models.FinancialRecord {
	var out []models.FinancialRecord
	for year := SampleMinYear; year <= SampleMaxYear; year++ {
		g := 1 + 0.1*float64(year-SampleMinYear)
		for idx, c := range sampleCompanies {
			margin := 0.1 + 0.02*float64(idx)
			r := models.NewRecord(c.name, c.industry, year)
			r.MarketCap = round2(c.marketCap * g)
			r.Revenue = round2(c.revenue * g)
			r.GrossProfit = round2(c.revenue * g * 0.4)
			r.NetIncome = round2(c.revenue * g * margin)
			r.EPS = round2(c.eps * g)
			r.EBITDA = round2(c.revenue * g * 0.3)
			r.ShareholderEquity = round2(c.revenue * 0.5)
			r.CashFlowOperating = round2(c.revenue * g * 0.25)
			r.CashFlowInvesting = round2(-c.revenue * 0.1)
			r.CashFlowFinancing = round2(-c.revenue * 0.05)
			r.CurrentRatio = round2(1 + 0.2*float64(idx))
			r.DebtEquityRatio = round2(0.5 + 0.3*float64(idx) + 0.05*float64(year-SampleMinYear))
			r.ROE = c.roe
			r.ROA = c.roa
			r.ROI = c.roe / 2
			r.NetProfitMargin = round2(margin * 100)
			r.FreeCashFlowPerShare = round2(c.eps * g * 0.8)
			r.ReturnOnTangibleEquity = round2(c.roe * 1.1)
			r.Employees = math.Round(c.employees * g)
			r.InflationRate = sampleInflation[year]
			if c.name == "NVDA" && year == SampleMinYear {
				r.ROI = math.NaN()
			}
			out = append(out, r)
		}
	}
	return out
}

// SampleCSV renders SampleRecords in the raw export format.
func SampleCSV() string {
	var b strings.Builder
	b.WriteString(SampleHeader)
	b.WriteString("\n")
	for _, r := range SampleRecords() {
		b.WriteString(RecordLine(r))
		b.WriteString("\n")
	}
	return b.String()
}

// RecordLine renders one record as a raw CSV line. NaN becomes an empty cell.
func RecordLine(r models.FinancialRecord) string {
	cells := []string{strconv.Itoa(r.Year), r.Company, r.Industry}
	for _, col := range models.NumericColumns {
		v := r.Value(col)
		if math.IsNaN(v) {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(cells, ",")
}

// WriteSampleCSV writes the sample dataset into dir and returns its path.
func WriteSampleCSV(t testing.TB, dir string) string {
	t.Helper()
	return WriteCSV(t, dir, "financials.csv", SampleCSV())
}

// WriteCSV writes content to dir/name and returns the path.
func WriteCSV(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// FilterAll selects every row of the sample.
func FilterAll() models.Filter {
	return models.Filter{
		Companies:  append([]string(nil), SampleCompanies...),
		YearFrom:   SampleMinYear,
		YearTo:     SampleMaxYear,
		Industries: append([]string(nil), SampleIndustries...),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
