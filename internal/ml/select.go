package ml

import "gonum.org/v1/gonum/stat"

// SelectFromModel keeps the features whose importance is at least the mean
// importance. It returns the kept column indices and the cutoff used.
func SelectFromModel(importances []float64) (support []int, cutoff float64) {
	if len(importances) == 0 {
		return nil, 0
	}
	cutoff = stat.Mean(importances, nil)
	for i, v := range importances {
		if v >= cutoff {
			support = append(support, i)
		}
	}
	return support, cutoff
}

// Columns projects X onto the given column indices.
func Columns(X [][]float64, cols []int) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		projected := make([]float64, len(cols))
		for j, c := range cols {
			projected[j] = row[c]
		}
		out[i] = projected
	}
	return out
}
