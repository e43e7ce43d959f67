package ml

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func TestFitTree_SingleSplit(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []int{0, 0, 1, 1}

	tree := fitTree(X, y, allRows(4), 2, TreeParams{}, rand.New(rand.NewSource(1)))

	assert.Equal(t, 1, tree.Depth())
	assert.Equal(t, []float64{1, 0}, tree.PredictProba([]float64{1.5}))
	assert.Equal(t, []float64{0, 1}, tree.PredictProba([]float64{3.5}))
	// midpoint threshold
	assert.Equal(t, []float64{1, 0}, tree.PredictProba([]float64{2.5}))
	assert.Equal(t, []float64{0, 1}, tree.PredictProba([]float64{2.51}))

	imp, ok := tree.FeatureImportances()
	require.True(t, ok)
	assert.Equal(t, []float64{1}, imp)
}

func TestFitTree_SkipsConstantFeatures(t *testing.T) {
	X := [][]float64{{5, 1}, {5, 2}, {5, 3}, {5, 4}}
	y := []int{0, 0, 1, 1}

	for seed := int64(0); seed < 5; seed++ {
		tree := fitTree(X, y, allRows(4), 2, TreeParams{MaxFeatures: 1}, rand.New(rand.NewSource(seed)))
		imp, ok := tree.FeatureImportances()
		require.True(t, ok)
		assert.Equal(t, []float64{0, 1}, imp)
	}
}

func TestFitTree_PureNodeIsLeaf(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	y := []int{0, 0, 0}

	tree := fitTree(X, y, allRows(3), 2, TreeParams{}, rand.New(rand.NewSource(1)))

	assert.Equal(t, 0, tree.Depth())
	assert.Equal(t, []float64{1, 0}, tree.PredictProba([]float64{10}))
	imp, ok := tree.FeatureImportances()
	assert.False(t, ok)
	assert.Equal(t, []float64{0}, imp)
}

func TestFitTree_MaxDepth(t *testing.T) {
	// alternating labels need many splits
	X := make([][]float64, 16)
	y := make([]int, 16)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = i % 2
	}

	tree := fitTree(X, y, allRows(16), 2, TreeParams{MaxDepth: 2}, rand.New(rand.NewSource(1)))
	assert.LessOrEqual(t, tree.Depth(), 2)

	full := fitTree(X, y, allRows(16), 2, TreeParams{}, rand.New(rand.NewSource(1)))
	assert.Greater(t, full.Depth(), 2)
	for i, row := range X {
		p := full.PredictProba(row)
		assert.Equal(t, 1.0, p[y[i]], "row %d", i)
	}
}

func TestFitTree_BootstrapDuplicates(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []int{0, 0, 1, 1}

	tree := fitTree(X, y, []int{0, 0, 0, 3}, 2, TreeParams{}, rand.New(rand.NewSource(1)))

	assert.Equal(t, []float64{1, 0}, tree.PredictProba([]float64{1}))
	assert.Equal(t, []float64{0, 1}, tree.PredictProba([]float64{4}))
}

func TestGini(t *testing.T) {
	assert.Equal(t, 0.0, gini([]float64{4, 0}, 4))
	assert.Equal(t, 0.5, gini([]float64{2, 2}, 4))
	assert.Equal(t, 0.0, gini([]float64{0, 0}, 0))
}
