package ml

import "testing"

func TestGridSearchPicksBest(t *testing.T) {
	X, y := regressionFixture()
	cfg := SearchConfig{
		Trees:           []int{5, 15},
		Depths:          []int{2, 6},
		Metric:          "mae",
		ValidationSplit: 0.25,
		Seed:            42,
	}
	result, err := GridSearch(X, y, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Iterations) != 4 {
		t.Fatalf("expected 4 iterations, got %d", len(result.Iterations))
	}
	for _, iter := range result.Iterations {
		if iter.Metric < result.Best.Metric {
			t.Fatalf("best %g is not minimal, found %g", result.Best.Metric, iter.Metric)
		}
	}
}

func TestGridSearchDeterministic(t *testing.T) {
	X, y := regressionFixture()
	cfg := SearchConfig{Trees: []int{10}, Depths: []int{3, 5}, Seed: 9}
	first, err := GridSearch(X, y, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GridSearch(X, y, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Best.Trees != second.Best.Trees || first.Best.MaxDepth != second.Best.MaxDepth {
		t.Fatal("identical seed picked different winners")
	}
}

func TestGridSearchEmptyGrid(t *testing.T) {
	X, y := regressionFixture()
	if _, err := GridSearch(X, y, SearchConfig{}); err == nil {
		t.Fatal("expected error for empty grid")
	}
}
