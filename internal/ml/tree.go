package ml

import (
	"math"
	"math/rand"
	"sort"
)

// TreeParams controls the growth of a single decision tree.
type TreeParams struct {
	MaxDepth    int // 0 grows until leaves are pure
	MaxFeatures int // features considered per split, 0 means all
}

type node struct {
	leaf      bool
	feature   int
	threshold float64
	left      int
	right     int
	proba     []float64
}

// Tree is a CART classification tree grown with the Gini criterion.
type Tree struct {
	nodes       []node
	nClasses    int
	importances []float64 // unnormalized weighted impurity decrease per feature
}

type treeBuilder struct {
	X        [][]float64
	y        []int
	nClasses int
	params   TreeParams
	rng      *rand.Rand
	total    float64
	tree     *Tree
}

// fitTree grows a tree over the rows listed in samples. Rows may repeat, as
// in a bootstrap sample.
func fitTree(X [][]float64, y []int, samples []int, nClasses int, params TreeParams, rng *rand.Rand) *Tree {
	nFeatures := 0
	if len(X) > 0 {
		nFeatures = len(X[0])
	}
	b := &treeBuilder{
		X:        X,
		y:        y,
		nClasses: nClasses,
		params:   params,
		rng:      rng,
		total:    float64(len(samples)),
		tree: &Tree{
			nClasses:    nClasses,
			importances: make([]float64, nFeatures),
		},
	}
	b.grow(samples, 0)
	return b.tree
}

func (b *treeBuilder) counts(samples []int) []float64 {
	c := make([]float64, b.nClasses)
	for _, s := range samples {
		c[b.y[s]]++
	}
	return c
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := c / n
		sum += p * p
	}
	return 1 - sum
}

// grow appends the subtree for samples and returns its node index.
func (b *treeBuilder) grow(samples []int, depth int) int {
	counts := b.counts(samples)
	n := float64(len(samples))
	impurity := gini(counts, n)

	idx := len(b.tree.nodes)
	b.tree.nodes = append(b.tree.nodes, node{leaf: true, proba: normalize(counts)})

	if impurity == 0 || len(samples) < 2 || (b.params.MaxDepth > 0 && depth >= b.params.MaxDepth) {
		return idx
	}

	split, ok := b.bestSplit(samples, counts, impurity)
	if !ok {
		return idx
	}

	var left, right []int
	for _, s := range samples {
		if b.X[s][split.feature] <= split.threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	b.tree.importances[split.feature] += n/b.total*impurity - split.childImpurity*n/b.total

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.nodes[idx] = node{
		feature:   split.feature,
		threshold: split.threshold,
		left:      l,
		right:     r,
		proba:     b.tree.nodes[idx].proba,
	}
	return idx
}

type candidate struct {
	feature       int
	threshold     float64
	childImpurity float64 // weighted impurity of the two children
}

// bestSplit scans a random subset of features. Like CART implementations
// that sample without replacement, constant features do not count toward
// the MaxFeatures budget.
func (b *treeBuilder) bestSplit(samples []int, parent []float64, impurity float64) (candidate, bool) {
	nFeatures := len(b.tree.importances)
	maxFeatures := b.params.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > nFeatures {
		maxFeatures = nFeatures
	}

	best := candidate{childImpurity: impurity}
	found := false
	visited := 0
	n := float64(len(samples))

	sorted := make([]int, len(samples))
	for _, f := range b.rng.Perm(nFeatures) {
		if visited >= maxFeatures {
			break
		}

		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.X[sorted[i]][f] < b.X[sorted[j]][f]
		})
		if b.X[sorted[0]][f] == b.X[sorted[len(sorted)-1]][f] {
			continue
		}
		visited++

		left := make([]float64, b.nClasses)
		right := append([]float64(nil), parent...)
		for i := 0; i < len(sorted)-1; i++ {
			cls := b.y[sorted[i]]
			left[cls]++
			right[cls]--

			lo, hi := b.X[sorted[i]][f], b.X[sorted[i+1]][f]
			if lo == hi {
				continue
			}
			nl := float64(i + 1)
			nr := n - nl
			child := (nl*gini(left, nl) + nr*gini(right, nr)) / n
			if child < best.childImpurity {
				best = candidate{feature: f, threshold: lo + (hi-lo)/2, childImpurity: child}
				found = true
			}
		}
	}
	return best, found
}

func normalize(counts []float64) []float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = c / total
	}
	return out
}

// PredictProba returns class probabilities for one row.
func (t *Tree) PredictProba(row []float64) []float64 {
	i := 0
	for !t.nodes[i].leaf {
		n := t.nodes[i]
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].proba
}

// Depth is the length of the longest root to leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.leaf {
			return 0
		}
		return 1 + int(math.Max(float64(walk(n.left)), float64(walk(n.right))))
	}
	return walk(0)
}

// FeatureImportances are the tree's impurity decreases normalized to sum to
// one. A tree that never split reports zeros and ok=false.
func (t *Tree) FeatureImportances() (imp []float64, ok bool) {
	total := 0.0
	for _, v := range t.importances {
		total += v
	}
	imp = make([]float64, len(t.importances))
	if len(t.nodes) <= 1 || total == 0 {
		return imp, false
	}
	for i, v := range t.importances {
		imp[i] = v / total
	}
	return imp, true
}
