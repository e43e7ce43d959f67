package ml

import (
	"math"
	"math/rand"
)

// TrainTestSplit shuffles row indices with seed and puts ceil(testSize*n)
// rows in the test set.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int) {
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest > n {
		nTest = n
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest]
}

// Rows selects rows of X and y by index.
func Rows(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
