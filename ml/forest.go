package ml

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
)

// TreeNode is one node of a flattened regression tree. Value holds the mean
// target of the samples that reached the node, which the explainer relies on.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	Samples    int     `json:"samples"`
	Gain       float64 `json:"gain"`
	IsLeaf     bool    `json:"is_leaf"`
}

// RegressionTree is a CART regression tree stored as a node array with the
// root at index 0.
type RegressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

type treeOptions struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
}

// Predict walks the tree for one encoded feature vector.
func (t *RegressionTree) Predict(x []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("tree not trained")
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(x) {
			return 0, errors.New("feature index out of range")
		}
		if x[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx <= 0 || idx >= len(t.Nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (t *RegressionTree) fit(X [][]float64, y []float64, indices []int, opts treeOptions, rnd *rand.Rand) {
	t.Nodes = t.Nodes[:0]
	t.build(X, y, indices, 0, opts, rnd)
}

// build appends a node for the given sample indices and returns its index.
func (t *RegressionTree) build(X [][]float64, y []float64, indices []int, depth int, opts treeOptions, rnd *rand.Rand) int {
	mean := meanTarget(y, indices)
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      mean,
		Samples:    len(indices),
		IsLeaf:     true,
	})

	if opts.maxDepth > 0 && depth >= opts.maxDepth {
		return idx
	}
	if len(indices) < opts.minSamplesSplit {
		return idx
	}

	feature, threshold, gain, ok := bestSplit(X, y, indices, opts, rnd)
	if !ok {
		return idx
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return idx
	}

	t.Nodes[idx].FeatureIdx = feature
	t.Nodes[idx].Threshold = threshold
	t.Nodes[idx].Gain = gain
	t.Nodes[idx].IsLeaf = false
	leftIdx := t.build(X, y, left, depth+1, opts, rnd)
	rightIdx := t.build(X, y, right, depth+1, opts, rnd)
	t.Nodes[idx].LeftChild = leftIdx
	t.Nodes[idx].RightChild = rightIdx
	return idx
}

// bestSplit scans candidate features for the threshold with the largest
// reduction in sum of squared errors.
func bestSplit(X [][]float64, y []float64, indices []int, opts treeOptions, rnd *rand.Rand) (int, float64, float64, bool) {
	featureCount := len(X[indices[0]])
	candidates := candidateFeatures(featureCount, opts.maxFeatures, rnd)

	parentSSE := sumSquaredError(y, indices)
	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 1e-12

	type pair struct {
		value  float64
		target float64
	}
	pairs := make([]pair, len(indices))

	for _, feature := range candidates {
		for i, idx := range indices {
			pairs[i] = pair{value: X[idx][feature], target: y[idx]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })

		var leftSum, leftSq float64
		totalSum, totalSq := 0.0, 0.0
		for _, p := range pairs {
			totalSum += p.target
			totalSq += p.target * p.target
		}

		n := float64(len(pairs))
		for i := 0; i < len(pairs)-1; i++ {
			leftSum += pairs[i].target
			leftSq += pairs[i].target * pairs[i].target
			if pairs[i].value == pairs[i+1].value {
				continue
			}
			nl := float64(i + 1)
			nr := n - nl
			leftSSE := leftSq - leftSum*leftSum/nl
			rightSum := totalSum - leftSum
			rightSSE := (totalSq - leftSq) - rightSum*rightSum/nr
			gain := parentSSE - leftSSE - rightSSE
			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = (pairs[i].value + pairs[i+1].value) / 2
			}
		}
	}

	if bestFeature == -1 {
		return -1, 0, 0, false
	}
	return bestFeature, bestThreshold, bestGain, true
}

func candidateFeatures(featureCount, maxFeatures int, rnd *rand.Rand) []int {
	if maxFeatures <= 0 || maxFeatures >= featureCount {
		all := make([]int, featureCount)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rnd.Perm(featureCount)
	return perm[:maxFeatures]
}

func meanTarget(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func sumSquaredError(y []float64, indices []int) float64 {
	mean := meanTarget(y, indices)
	var sse float64
	for _, i := range indices {
		d := y[i] - mean
		sse += d * d
	}
	return sse
}

// ForestConfig holds random forest hyperparameters. Zero values fall back to
// the defaults used by the trainer.
type ForestConfig struct {
	NEstimators     int   `json:"n_estimators"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MaxFeatures     int   `json:"max_features"`
	Seed            int64 `json:"seed"`
}

// RandomForestRegressor averages bootstrap-trained regression trees. Training
// is seeded per tree, so results are reproducible regardless of scheduling.
type RandomForestRegressor struct {
	Config ForestConfig      `json:"config"`
	Trees  []*RegressionTree `json:"trees"`
}

// NewRandomForestRegressor applies defaults to the config.
func NewRandomForestRegressor(cfg ForestConfig) *RandomForestRegressor {
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = 100
	}
	if cfg.MinSamplesSplit <= 0 {
		cfg.MinSamplesSplit = 2
	}
	return &RandomForestRegressor{Config: cfg}
}

// Fit trains the forest on encoded features.
func (rf *RandomForestRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("features empty")
	}
	if len(X) != len(y) {
		return errors.New("features and targets size mismatch")
	}

	n := len(X)
	opts := treeOptions{
		maxDepth:        rf.Config.MaxDepth,
		minSamplesSplit: rf.Config.MinSamplesSplit,
		maxFeatures:     rf.Config.MaxFeatures,
	}

	rf.Trees = make([]*RegressionTree, rf.Config.NEstimators)
	var wg sync.WaitGroup
	for t := 0; t < rf.Config.NEstimators; t++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()
			treeRand := rand.New(rand.NewSource(rf.Config.Seed + int64(treeIdx)))
			indices := make([]int, n)
			for i := range indices {
				indices[i] = treeRand.Intn(n)
			}
			tree := &RegressionTree{}
			tree.fit(X, y, indices, opts, treeRand)
			rf.Trees[treeIdx] = tree
		}(t)
	}
	wg.Wait()
	return nil
}

// Predict returns the forest mean for one encoded feature vector.
func (rf *RandomForestRegressor) Predict(x []float64) (float64, error) {
	if len(rf.Trees) == 0 {
		return 0, errors.New("model not trained")
	}
	var sum float64
	for _, tree := range rf.Trees {
		value, err := tree.Predict(x)
		if err != nil {
			return 0, err
		}
		sum += value
	}
	return sum / float64(len(rf.Trees)), nil
}

// ExpectedValue is the mean of the root values, the explainer baseline.
func (rf *RandomForestRegressor) ExpectedValue() float64 {
	if len(rf.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, tree := range rf.Trees {
		sum += tree.Nodes[0].Value
	}
	return sum / float64(len(rf.Trees))
}

// FeatureImportances sums split gains per feature across all trees and
// normalizes the result to sum to one.
func (rf *RandomForestRegressor) FeatureImportances(numFeatures int) []float64 {
	importances := make([]float64, numFeatures)
	for _, tree := range rf.Trees {
		for _, node := range tree.Nodes {
			if node.IsLeaf || node.FeatureIdx < 0 || node.FeatureIdx >= numFeatures {
				continue
			}
			importances[node.FeatureIdx] += node.Gain
		}
	}
	var total float64
	for _, v := range importances {
		total += v
	}
	if total > 0 {
		for i := range importances {
			importances[i] /= total
		}
	}
	return importances
}
