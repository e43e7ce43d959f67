package ml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable has an informative first column and a noise second column.
func separable(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{float64(i), float64(i % 3)}
		if i >= n/2 {
			y[i] = 1
		}
	}
	return X, y
}

func TestFitForest_Separable(t *testing.T) {
	X, y := separable(40)

	f, err := FitForest(context.Background(), X, y, ForestParams{Trees: 50, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 50, f.Trees())
	assert.GreaterOrEqual(t, f.Score(X, y), 0.9)
	assert.Equal(t, 0, f.Predict([]float64{0, 0}))
	assert.Equal(t, 1, f.Predict([]float64{39, 0}))

	imp := f.FeatureImportances()
	require.Len(t, imp, 2)
	assert.Greater(t, imp[0], imp[1])
	assert.InDelta(t, 1.0, imp[0]+imp[1], 1e-9)
}

func TestFitForest_Deterministic(t *testing.T) {
	X, y := separable(30)

	a, err := FitForest(context.Background(), X, y, ForestParams{Trees: 20, Seed: 7, Workers: 1})
	require.NoError(t, err)
	b, err := FitForest(context.Background(), X, y, ForestParams{Trees: 20, Seed: 7, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, a.FeatureImportances(), b.FeatureImportances())
	for _, row := range X {
		assert.Equal(t, a.PredictProba(row), b.PredictProba(row))
	}
}

func TestFitForest_DefaultTrees(t *testing.T) {
	X, y := separable(10)

	f, err := FitForest(context.Background(), X, y, ForestParams{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 100, f.Trees())
}

func TestFitForest_InvalidInput(t *testing.T) {
	_, err := FitForest(context.Background(), nil, nil, ForestParams{})
	assert.Error(t, err)

	_, err = FitForest(context.Background(), [][]float64{{1}}, []int{0, 1}, ForestParams{})
	assert.Error(t, err)
}

func TestFitForest_Canceled(t *testing.T) {
	X, y := separable(20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FitForest(ctx, X, y, ForestParams{Trees: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForest_SingleClass(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []int{0, 0, 0}

	f, err := FitForest(context.Background(), X, y, ForestParams{Trees: 5})
	require.NoError(t, err)

	assert.Equal(t, []float64{0}, f.FeatureImportances())
	assert.Equal(t, 1.0, f.Score(X, y))
}

func TestSelectFromModel(t *testing.T) {
	support, cutoff := SelectFromModel([]float64{0.1, 0.2, 0.7})
	assert.Equal(t, []int{2}, support)
	assert.InDelta(t, 1.0/3, cutoff, 1e-9)

	// equal importances all survive
	support, _ = SelectFromModel([]float64{0.25, 0.25, 0.25, 0.25})
	assert.Equal(t, []int{0, 1, 2, 3}, support)

	support, cutoff = SelectFromModel(nil)
	assert.Nil(t, support)
	assert.Equal(t, 0.0, cutoff)
}

func TestColumns(t *testing.T) {
	X := [][]float64{{1, 2, 3}, {4, 5, 6}}
	assert.Equal(t, [][]float64{{1, 3}, {4, 6}}, Columns(X, []int{0, 2}))
}

func TestTrainTestSplit(t *testing.T) {
	train, test := TrainTestSplit(35, 0.3, 42)

	assert.Len(t, test, 11)
	assert.Len(t, train, 24)

	seen := make(map[int]bool)
	for _, i := range append(append([]int(nil), train...), test...) {
		assert.False(t, seen[i], "index %d repeated", i)
		seen[i] = true
	}
	assert.Len(t, seen, 35)

	train2, test2 := TrainTestSplit(35, 0.3, 42)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)
}

func TestRows(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []int{0, 1, 0}

	xs, ys := Rows(X, y, []int{2, 0})
	assert.Equal(t, [][]float64{{3}, {1}}, xs)
	assert.Equal(t, []int{0, 0}, ys)
}
