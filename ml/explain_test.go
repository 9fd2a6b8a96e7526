package ml

import (
	"math"
	"testing"
)

func trainedFixture(t *testing.T) (*RandomForestRegressor, []string) {
	t.Helper()
	X, y := regressionFixture()
	model := NewRandomForestRegressor(ForestConfig{NEstimators: 20, MaxDepth: 6, Seed: 42})
	if err := model.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model, []string{"signal", "noise"}
}

func TestAttributionsSumToPrediction(t *testing.T) {
	model, names := trainedFixture(t)
	explainer, err := NewTreeExplainer(model, names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, probe := range [][]float64{{2.5, 0}, {7.5, 1}, {10.5, 0}} {
		attrs, err := explainer.Attributions(probe)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sum := explainer.BaseValue()
		for _, attr := range attrs {
			sum += attr.Value
		}
		pred, err := model.Predict(probe)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(sum-pred) > 1e-9 {
			t.Fatalf("baseline + attributions = %g, prediction = %g", sum, pred)
		}
	}
}

func TestAttributionsRecomputedPerRow(t *testing.T) {
	model, names := trainedFixture(t)
	explainer, err := NewTreeExplainer(model, names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	low, err := explainer.Attributions([]float64{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	high, err := explainer.Attributions([]float64{12, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low[0].Value >= high[0].Value {
		t.Fatalf("signal attribution should grow with the feature: %g vs %g", low[0].Value, high[0].Value)
	}
}

func TestImportancesStableAcrossCalls(t *testing.T) {
	model, names := trainedFixture(t)
	explainer, err := NewTreeExplainer(model, names)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := explainer.Importances()
	second := explainer.Importances()
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("importances changed between calls on the same artifact")
		}
		if first[i].Score < 0 {
			t.Fatalf("importance %q is negative", first[i].Feature)
		}
	}
}

func TestTopAttributionsOrdering(t *testing.T) {
	attrs := []Attribution{
		{Feature: "a", Value: 0.1},
		{Feature: "b", Value: -2.5},
		{Feature: "c", Value: 1.2},
		{Feature: "d", Value: -0.3},
	}
	top := TopAttributions(attrs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Feature != "b" || top[1].Feature != "c" {
		t.Fatalf("unexpected ordering: %s, %s", top[0].Feature, top[1].Feature)
	}
	if len(attrs) != 4 || attrs[0].Feature != "a" {
		t.Fatal("input slice should not be reordered")
	}
}

func TestTopImportancesOrdering(t *testing.T) {
	imps := []Importance{
		{Feature: "a", Score: 0.2},
		{Feature: "b", Score: 0.5},
		{Feature: "c", Score: 0.3},
	}
	top := TopImportances(imps, 2)
	if top[0].Feature != "b" || top[1].Feature != "c" {
		t.Fatalf("unexpected ordering: %s, %s", top[0].Feature, top[1].Feature)
	}
}

func TestNewTreeExplainerRequiresTrainedForest(t *testing.T) {
	if _, err := NewTreeExplainer(NewRandomForestRegressor(ForestConfig{}), []string{"x"}); err == nil {
		t.Fatal("expected error for untrained forest")
	}
}
