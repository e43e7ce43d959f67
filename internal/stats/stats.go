// Package stats provides NaN-skipping aggregates over record columns.
package stats

import (
	"math"
	"sort"

	"github.com/corpfin/dashboard/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Present returns the non-NaN values of xs.
func Present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Column extracts col from every record, NaN included.
func Column(records []models.FinancialRecord, col string) []float64 {
	out := make([]float64, len(records))
	for i := range records {
		out[i] = records[i].Value(col)
	}
	return out
}

// Mean is the mean of the non-NaN values, NaN when there are none.
func Mean(xs []float64) float64 {
	xs = Present(xs)
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Sum is the sum of the non-NaN values, 0 when there are none.
func Sum(xs []float64) float64 {
	return floats.Sum(Present(xs))
}

// Median of the non-NaN values. An even count averages the two middle values.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Quantile returns the p-quantile of the non-NaN values using linear
// interpolation between closest ranks: h = (n-1)p.
func Quantile(xs []float64, p float64) float64 {
	sorted := Present(xs)
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// Box is a Tukey box summary.
type Box struct {
	Count                  int
	Min, Max               float64
	Q1, Median, Q3         float64
	LowerFence, UpperFence float64 // most extreme values within 1.5 IQR
	Outliers               []float64
}

// BoxSummary computes quartiles, whiskers and outliers of the non-NaN values.
// ok is false when there are no values.
func BoxSummary(xs []float64) (b Box, ok bool) {
	sorted := Present(xs)
	if len(sorted) == 0 {
		return Box{}, false
	}
	sort.Float64s(sorted)

	b.Count = len(sorted)
	b.Min = sorted[0]
	b.Max = sorted[len(sorted)-1]
	b.Q1 = quantileSorted(sorted, 0.25)
	b.Median = quantileSorted(sorted, 0.5)
	b.Q3 = quantileSorted(sorted, 0.75)

	iqr := b.Q3 - b.Q1
	lowLimit := b.Q1 - 1.5*iqr
	highLimit := b.Q3 + 1.5*iqr

	b.LowerFence = b.Max
	b.UpperFence = b.Min
	for _, x := range sorted {
		if x < lowLimit || x > highLimit {
			b.Outliers = append(b.Outliers, x)
			continue
		}
		if x < b.LowerFence {
			b.LowerFence = x
		}
		if x > b.UpperFence {
			b.UpperFence = x
		}
	}
	return b, true
}

// GroupMeans returns, per key, the NaN-skipping mean of col. keys lists the
// distinct keys sorted ascending.
func GroupMeans(records []models.FinancialRecord, key func(*models.FinancialRecord) string, col string) (keys []string, means map[string]float64) {
	groups := make(map[string][]float64)
	for i := range records {
		k := key(&records[i])
		groups[k] = append(groups[k], records[i].Value(col))
	}

	means = make(map[string]float64, len(groups))
	keys = make([]string, 0, len(groups))
	for k, xs := range groups {
		keys = append(keys, k)
		means[k] = Mean(xs)
	}
	sort.Strings(keys)
	return keys, means
}

// ByCompany is a GroupMeans key.
func ByCompany(r *models.FinancialRecord) string { return r.Company }

// ByIndustry is a GroupMeans key.
func ByIndustry(r *models.FinancialRecord) string { return r.Industry }
