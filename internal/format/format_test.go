package format

import (
	"math"
	"testing"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 1500, want: "$1.5B"},
		{in: 1000, want: "$1.0B"},
		{in: 999.94, want: "$999.9M"},
		{in: 250, want: "$250.0M"},
		{in: 0, want: "$0.0M"},
		{in: 274050, want: "$274.1B"},
		{in: math.NaN(), want: "N/A"},
		{in: math.Inf(1), want: "N/A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.in), "Currency(%v)", tt.in)
	}
}

func TestCurrencyBillions(t *testing.T) {
	assert.Equal(t, "$4.6T", CurrencyBillions(4580))
	assert.Equal(t, "$930.0B", CurrencyBillions(930))
	assert.Equal(t, "N/A", CurrencyBillions(math.NaN()))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1.2M", Number(1234567))
	assert.Equal(t, "1.0M", Number(1e6))
	assert.Equal(t, "137.0K", Number(137000))
	assert.Equal(t, "999", Number(999))
	assert.Equal(t, "3", Number(2.5), "half rounds away from zero")
	assert.Equal(t, "N/A", Number(math.NaN()))
}

func TestEPSPercentDelta(t *testing.T) {
	assert.Equal(t, "$3.46", EPS(3.456))
	assert.Equal(t, "$-0.50", EPS(-0.5))
	assert.Equal(t, "12.3%", Percent(12.345))
	assert.Equal(t, "+5.0%", Delta(5))
	assert.Equal(t, "-2.5%", Delta(-2.5))
	assert.Equal(t, "", Delta(math.NaN()))
	assert.Equal(t, "$12.5B", Billions(12500))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675, 2))
	assert.Equal(t, -1.5, Round(-1.45, 1))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
}

func TestKeyMetrics(t *testing.T) {
	var records []models.FinancialRecord
	for _, r := range testutil.SampleRecords() {
		if r.Year >= 2020 && r.Company == "AAPL" {
			records = append(records, r)
		}
	}
	require.Len(t, records, 2)

	cards := KeyMetrics(records)
	require.Len(t, cards, 5)

	assert.Equal(t, TitleCompanies, cards[0].Title)
	assert.Equal(t, "1", cards[0].Value)
	assert.False(t, cards[0].HasDelta())

	// AAPL revenue 2020: 338000, 2021: 364000
	assert.Equal(t, "$351.0B", cards[1].Value)
	require.NotNil(t, cards[1].Delta)
	assert.InDelta(t, 7.7, *cards[1].Delta, 1e-9)
	assert.Equal(t, "green", cards[1].DeltaColor())

	// market cap 1690 + 1820
	assert.Equal(t, "$3.5T", cards[2].Value)
	assert.Equal(t, "185.0K", cards[3].Value)
	assert.Equal(t, "$4.05", cards[4].Value)
	assert.True(t, cards[4].HasDelta())
}

func TestKeyMetrics_SingleYearHasNoDelta(t *testing.T) {
	r := models.NewRecord("AAPL", "IT", 2020)
	r.Revenue = 100

	cards := KeyMetrics([]models.FinancialRecord{r})
	assert.Nil(t, cards[1].Delta)
	assert.Equal(t, "$100.0M", cards[1].Value)
	assert.Equal(t, "N/A", cards[4].Value)
	assert.Equal(t, "$0.0B", cards[2].Value)
}

func TestKeyMetrics_NegativeDelta(t *testing.T) {
	a := models.NewRecord("X", "IT", 2020)
	a.EPS = 2
	b := models.NewRecord("X", "IT", 2021)
	b.EPS = 1

	cards := KeyMetrics([]models.FinancialRecord{a, b})
	require.NotNil(t, cards[4].Delta)
	assert.Equal(t, -50.0, *cards[4].Delta)
	assert.Equal(t, "red", cards[4].DeltaColor())
	assert.Nil(t, cards[1].Delta, "revenue missing in both years")
}
