// Package ml implements the EPS performance classifier: a random forest used
// both for feature selection and for the final model.
package ml

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForestParams configures a random forest.
type ForestParams struct {
	Trees    int
	MaxDepth int   // 0 means unlimited
	Seed     int64 // per-tree seeds are drawn from this
	Workers  int   // concurrent tree fits, 0 means GOMAXPROCS
}

// Forest is a bagged ensemble of Gini trees considering sqrt(features)
// candidates per split.
type Forest struct {
	trees       []*Tree
	nClasses    int
	nFeatures   int
	importances []float64
}

// FitForest trains a forest on X (rows by features) and class labels y.
// Each tree draws its bootstrap sample and feature subsets from its own RNG,
// so the result does not depend on scheduling.
func FitForest(ctx context.Context, X [][]float64, y []int, params ForestParams) (*Forest, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, errors.New("ml: X and y must be non-empty and the same length")
	}
	if params.Trees <= 0 {
		params.Trees = 100
	}
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	nClasses := 0
	for _, c := range y {
		if c+1 > nClasses {
			nClasses = c + 1
		}
	}
	nFeatures := len(X[0])
	maxFeatures := int(math.Sqrt(float64(nFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	master := rand.New(rand.NewSource(params.Seed))
	seeds := make([]int64, params.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	f := &Forest{
		trees:     make([]*Tree, params.Trees),
		nClasses:  nClasses,
		nFeatures: nFeatures,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range f.trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			samples := make([]int, len(X))
			for j := range samples {
				samples[j] = rng.Intn(len(X))
			}
			f.trees[i] = fitTree(X, y, samples, nClasses, TreeParams{
				MaxDepth:    params.MaxDepth,
				MaxFeatures: maxFeatures,
			}, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	f.importances = f.averageImportances()
	return f, nil
}

// averageImportances is the mean of the per-tree importances over trees that
// split at least once, renormalized to sum to one.
func (f *Forest) averageImportances() []float64 {
	sum := make([]float64, f.nFeatures)
	used := 0
	for _, t := range f.trees {
		imp, ok := t.FeatureImportances()
		if !ok {
			continue
		}
		used++
		for i, v := range imp {
			sum[i] += v
		}
	}
	if used == 0 {
		return sum
	}

	total := 0.0
	for i := range sum {
		sum[i] /= float64(used)
		total += sum[i]
	}
	if total > 0 {
		for i := range sum {
			sum[i] /= total
		}
	}
	return sum
}

// FeatureImportances returns the mean decrease in impurity per feature.
func (f *Forest) FeatureImportances() []float64 {
	return append([]float64(nil), f.importances...)
}

// PredictProba averages the class probabilities of every tree.
func (f *Forest) PredictProba(row []float64) []float64 {
	out := make([]float64, f.nClasses)
	for _, t := range f.trees {
		for c, p := range t.PredictProba(row) {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(f.trees))
	}
	return out
}

// Predict returns the most probable class; ties go to the lower class.
func (f *Forest) Predict(row []float64) int {
	best, bestP := 0, -1.0
	for c, p := range f.PredictProba(row) {
		if p > bestP {
			best, bestP = c, p
		}
	}
	return best
}

// Score is the mean accuracy on X, y.
func (f *Forest) Score(X [][]float64, y []int) float64 {
	if len(X) == 0 {
		return math.NaN()
	}
	correct := 0
	for i, row := range X {
		if f.Predict(row) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

// Trees returns the number of fitted trees.
func (f *Forest) Trees() int {
	return len(f.trees)
}
