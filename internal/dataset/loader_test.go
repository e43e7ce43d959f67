package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Load(t *testing.T) {
	ds, err := NewLoader(nil).Load(strings.NewReader(testutil.SampleCSV()))
	require.NoError(t, err)

	assert.Len(t, ds.Records, len(testutil.SampleCompanies)*5)
	assert.Empty(t, ds.Errors)
	assert.Contains(t, ds.Columns, models.ColCompany)
	assert.Contains(t, ds.Columns, models.ColMarketCap)
	assert.Contains(t, ds.Columns, models.ColDebtEquityRatio)
	assert.Contains(t, ds.Columns, models.ColInflationRate)
	assert.NotContains(t, ds.Columns, "Company ")
	assert.NotContains(t, ds.Columns, "Category")

	first := ds.Records[0]
	assert.Equal(t, 2017, first.Year)
	assert.Equal(t, "AAPL", first.Company)
	assert.Equal(t, "IT", first.Industry)
	assert.InDelta(t, 1300, first.MarketCap, 1e-9)
	assert.InDelta(t, 260000, first.Revenue, 1e-9)
	assert.InDelta(t, 0.5, first.DebtEquityRatio, 1e-9)
	assert.InDelta(t, 2.13, first.InflationRate, 1e-9)

	want := testutil.SampleRecords()
	for i, rec := range ds.Records {
		assert.Equal(t, want[i].Company, rec.Company)
		assert.Equal(t, want[i].Year, rec.Year)
	}
}

func TestLoader_MissingCellsAreNaN(t *testing.T) {
	ds, err := NewLoader(nil).Load(strings.NewReader(testutil.SampleCSV()))
	require.NoError(t, err)

	var nvda *models.FinancialRecord
	for i := range ds.Records {
		if ds.Records[i].Company == "NVDA" && ds.Records[i].Year == 2017 {
			nvda = &ds.Records[i]
		}
	}
	require.NotNil(t, nvda)
	assert.True(t, math.IsNaN(nvda.ROI))
	assert.False(t, math.IsNaN(nvda.ROE))
}

func TestLoader_SkipsBadYears(t *testing.T) {
	csv := "Year,Company,Category,Revenue\n" +
		"2020,AAPL,IT,100\n" +
		"n/a,MSFT,IT,200\n" +
		"2021.0,GOOG,IT,1,234\n"

	_, err := NewLoader(nil).Load(strings.NewReader(csv))
	require.Error(t, err, "ragged rows are a CSV error")

	csv = "Year,Company,Category,Revenue\n" +
		"2020,AAPL,IT,100\n" +
		"n/a,MSFT,IT,200\n" +
		"2021.0,GOOG,IT,\"1,234\"\n"

	ds, err := NewLoader(nil).Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	require.Len(t, ds.Errors, 1)
	assert.Equal(t, 3, ds.Errors[0].Line)
	assert.Equal(t, 2021, ds.Records[1].Year)
	assert.InDelta(t, 1234, ds.Records[1].Revenue, 1e-9)
	assert.True(t, math.IsNaN(ds.Records[0].EPS), "absent columns stay NaN")
}

func TestLoader_MissingRequiredColumn(t *testing.T) {
	csv := "Year,Company,Revenue\n2020,AAPL,100\n"

	_, err := NewLoader(nil).Load(strings.NewReader(csv))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "Industry")
}

func TestLoader_LoadFile(t *testing.T) {
	path := testutil.WriteSampleCSV(t, t.TempDir())

	ds, err := NewLoader(nil).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, 35, ds.Len())

	_, err = NewLoader(nil).LoadFile(path + ".missing")
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		nan  bool
	}{
		{in: "12.5", want: 12.5},
		{in: " -3 ", want: -3},
		{in: "1,000,000", want: 1e6},
		{in: "", nan: true},
		{in: "abc", nan: true},
		{in: "NaN", nan: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseNumber(tt.in)
			if tt.nan {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
