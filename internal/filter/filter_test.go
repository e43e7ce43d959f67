package filter

import (
	"net/url"
	"testing"

	"github.com/corpfin/dashboard/internal/models"
	"github.com/corpfin/dashboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	records := testutil.SampleRecords()

	t.Run("all rows", func(t *testing.T) {
		got := Apply(records, testutil.FilterAll())
		require.Len(t, got, len(records))
		for i := range got {
			assert.Equal(t, records[i].Company, got[i].Company)
			assert.Equal(t, records[i].Year, got[i].Year)
		}
	})

	t.Run("conjunction of predicates", func(t *testing.T) {
		got := Apply(records, models.Filter{
			Companies:  []string{"AAPL", "NVDA", "BCS"},
			YearFrom:   2019,
			YearTo:     2020,
			Industries: []string{"IT", "ELEC"},
		})
		require.Len(t, got, 4)
		for _, r := range got {
			assert.Contains(t, []string{"AAPL", "NVDA"}, r.Company)
			assert.GreaterOrEqual(t, r.Year, 2019)
			assert.LessOrEqual(t, r.Year, 2020)
		}
		assert.Equal(t, "AAPL", got[0].Company)
		assert.Equal(t, 2019, got[0].Year)
		assert.Equal(t, "NVDA", got[1].Company)
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		f := testutil.FilterAll()
		f.YearFrom, f.YearTo = 2021, 2021
		assert.Len(t, Apply(records, f), len(testutil.SampleCompanies))
	})

	t.Run("empty selection matches nothing", func(t *testing.T) {
		f := testutil.FilterAll()
		f.Companies = nil
		assert.Empty(t, Apply(records, f))

		f = testutil.FilterAll()
		f.Industries = []string{}
		assert.Empty(t, Apply(records, f))
	})

	t.Run("unknown company", func(t *testing.T) {
		f := testutil.FilterAll()
		f.Companies = []string{"TSLA"}
		assert.NotNil(t, Apply(records, f))
		assert.Empty(t, Apply(records, f))
	})
}

func TestOptions(t *testing.T) {
	opts := Options(testutil.SampleRecords())

	assert.Equal(t, testutil.SampleCompanies, opts.Companies)
	assert.Equal(t, testutil.SampleIndustries, opts.Industries)
	assert.Equal(t, 2017, opts.MinYear)
	assert.Equal(t, 2021, opts.MaxYear)

	assert.Equal(t, []string{"AAPL", "AMZN", "BCS", "GOOG", "INTC", "MSFT"}, opts.Defaults.Companies)
	assert.Equal(t, 2018, opts.Defaults.YearFrom)
	assert.Equal(t, 2021, opts.Defaults.YearTo)
	assert.Equal(t, testutil.SampleIndustries, opts.Defaults.Industries)
}

func TestDefaults(t *testing.T) {
	t.Run("fewer than six companies", func(t *testing.T) {
		d := Defaults(models.FilterOptions{Companies: []string{"A", "B"}, MinYear: 2010, MaxYear: 2022})
		assert.Equal(t, []string{"A", "B"}, d.Companies)
		assert.Equal(t, 2018, d.YearFrom)
	})

	t.Run("clamps start year into range", func(t *testing.T) {
		d := Defaults(models.FilterOptions{Companies: []string{"A"}, MinYear: 2019, MaxYear: 2022})
		assert.Equal(t, 2019, d.YearFrom)

		d = Defaults(models.FilterOptions{Companies: []string{"A"}, MinYear: 2009, MaxYear: 2015})
		assert.Equal(t, 2015, d.YearFrom)
		assert.Equal(t, 2015, d.YearTo)
	})

	t.Run("does not alias options", func(t *testing.T) {
		opts := models.FilterOptions{Companies: []string{"A", "B"}, Industries: []string{"IT"}}
		d := Defaults(opts)
		d.Companies[0] = "Z"
		assert.Equal(t, "A", opts.Companies[0])
	})
}

func TestFingerprint(t *testing.T) {
	a := models.Filter{Companies: []string{"MSFT", "AAPL"}, YearFrom: 2018, YearTo: 2021, Industries: []string{"IT"}}
	b := models.Filter{Companies: []string{"AAPL", "MSFT", "AAPL"}, YearFrom: 2018, YearTo: 2021, Industries: []string{"IT"}}
	c := models.Filter{Companies: []string{"AAPL"}, YearFrom: 2018, YearTo: 2021, Industries: []string{"IT"}}
	d := a
	d.YearTo = 2020

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(d))
	assert.Len(t, Fingerprint(a), 40)
}

func TestFromQuery(t *testing.T) {
	defaults := models.Filter{
		Companies:  []string{"AAPL", "MSFT"},
		YearFrom:   2018,
		YearTo:     2021,
		Industries: []string{"IT"},
	}

	t.Run("absent parameters keep defaults", func(t *testing.T) {
		f, err := FromQuery(url.Values{}, defaults)
		require.NoError(t, err)
		assert.Equal(t, defaults, f)
	})

	t.Run("repeated and comma separated", func(t *testing.T) {
		q, _ := url.ParseQuery("companies=AAPL&companies=NVDA&industries=IT,%20ELEC&year_from=2019&year_to=2020")
		f, err := FromQuery(q, defaults)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "NVDA"}, f.Companies)
		assert.Equal(t, []string{"IT", "ELEC"}, f.Industries)
		assert.Equal(t, 2019, f.YearFrom)
		assert.Equal(t, 2020, f.YearTo)
	})

	t.Run("repeated values keep commas", func(t *testing.T) {
		q, _ := url.ParseQuery("companies=&companies=Berkshire%2C%20Inc.&industries=&industries=Bank")
		f, err := FromQuery(q, defaults)
		require.NoError(t, err)
		assert.Equal(t, []string{"Berkshire, Inc."}, f.Companies)
		assert.Equal(t, []string{"Bank"}, f.Industries)
	})

	t.Run("present but empty selects nothing", func(t *testing.T) {
		q, _ := url.ParseQuery("companies=")
		f, err := FromQuery(q, defaults)
		require.NoError(t, err)
		assert.Empty(t, f.Companies)
		assert.Equal(t, defaults.Industries, f.Industries)
	})

	t.Run("inverted range", func(t *testing.T) {
		q, _ := url.ParseQuery("year_from=2021&year_to=2019")
		_, err := FromQuery(q, defaults)
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("non numeric year", func(t *testing.T) {
		q, _ := url.ParseQuery("year_from=last")
		_, err := FromQuery(q, defaults)
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})
}
