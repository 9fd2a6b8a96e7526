package ml

import (
	"errors"
	"math"
	"sort"
)

// Attribution is one feature's signed push on a single prediction.
type Attribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Importance is one feature's global, non-negative importance score.
type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// TreeExplainer produces per-prediction attributions and global importances
// from a trained forest. Local attributions follow the decision path: each
// split credits its feature with the change in node mean, so baseline plus
// the attribution sum reconstructs the raw prediction exactly.
type TreeExplainer struct {
	forest *RandomForestRegressor
	names  []string
}

// NewTreeExplainer wires an explainer to a trained forest and its
// post-encoding feature names.
func NewTreeExplainer(forest *RandomForestRegressor, featureNames []string) (*TreeExplainer, error) {
	if forest == nil || len(forest.Trees) == 0 {
		return nil, errors.New("forest not trained")
	}
	if len(featureNames) == 0 {
		return nil, errors.New("feature names required")
	}
	return &TreeExplainer{forest: forest, names: featureNames}, nil
}

// BaseValue is the explainer baseline: the forest's expected value over its
// training samples.
func (e *TreeExplainer) BaseValue() float64 {
	return e.forest.ExpectedValue()
}

// Attributions computes one signed contribution per transformed feature for
// the given encoded row.
func (e *TreeExplainer) Attributions(x []float64) ([]Attribution, error) {
	contribs := make([]float64, len(e.names))
	for _, tree := range e.forest.Trees {
		if err := pathContributions(tree, x, contribs); err != nil {
			return nil, err
		}
	}
	n := float64(len(e.forest.Trees))
	out := make([]Attribution, len(e.names))
	for i, name := range e.names {
		out[i] = Attribution{Feature: name, Value: contribs[i] / n}
	}
	return out, nil
}

// Importances returns the forest's intrinsic feature importances. They are
// independent of any single prediction and stable for a loaded artifact.
func (e *TreeExplainer) Importances() []Importance {
	scores := e.forest.FeatureImportances(len(e.names))
	out := make([]Importance, len(e.names))
	for i, name := range e.names {
		out[i] = Importance{Feature: name, Score: scores[i]}
	}
	return out
}

func pathContributions(tree *RegressionTree, x []float64, contribs []float64) error {
	if len(tree.Nodes) == 0 {
		return errors.New("tree not trained")
	}
	idx := 0
	for {
		node := tree.Nodes[idx]
		if node.IsLeaf {
			return nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(x) {
			return errors.New("feature index out of range")
		}
		next := node.LeftChild
		if x[node.FeatureIdx] > node.Threshold {
			next = node.RightChild
		}
		if next <= 0 || next >= len(tree.Nodes) {
			return errors.New("invalid tree state")
		}
		if node.FeatureIdx < len(contribs) {
			contribs[node.FeatureIdx] += tree.Nodes[next].Value - node.Value
		}
		idx = next
	}
}

// TopAttributions returns the n attributions with the largest magnitude,
// ordered by magnitude descending.
func TopAttributions(attrs []Attribution, n int) []Attribution {
	sorted := append([]Attribution(nil), attrs...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return math.Abs(sorted[a].Value) > math.Abs(sorted[b].Value)
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// TopImportances returns the n highest-scoring importances, descending.
func TopImportances(imps []Importance, n int) []Importance {
	sorted := append([]Importance(nil), imps...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Score > sorted[b].Score
	})
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
