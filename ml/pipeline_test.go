package ml

import (
	"path/filepath"
	"testing"
	"time"

	"gradecast/dataset"
)

func fittedPipeline(t *testing.T) *Pipeline {
	t.Helper()
	frame := buildTestFrame(t)
	enc, err := FitEncoder(frame, []string{"school", "sex"}, EncoderOptions{HandleUnknown: HandleUnknownIgnore})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	X, err := enc.TransformFrame(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y := []float64{14, 12, 9, 8}

	forest := NewRandomForestRegressor(ForestConfig{NEstimators: 10, MaxDepth: 4, Seed: 42})
	if err := forest.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &Pipeline{
		Encoder:   enc,
		Forest:    forest,
		Columns:   frame.Columns,
		Target:    dataset.TargetColumn,
		TrainedAt: time.Now().UTC(),
	}
}

func TestPipelineSaveLoadPredictsIdentically(t *testing.T) {
	pipeline := fittedPipeline(t)
	path := filepath.Join(t.TempDir(), "grade.model")
	if err := pipeline.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := LoadPipeline(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := dataset.NewRow()
	row.Cats["school"] = "GP"
	row.Cats["sex"] = "F"
	row.Nums["age"] = 17

	before, err := pipeline.PredictRow(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after, err := loaded.PredictRow(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before != after {
		t.Fatalf("loaded artifact predicts %g, original %g", after, before)
	}
}

func TestPipelineSaveRequiresTraining(t *testing.T) {
	p := &Pipeline{}
	if err := p.Save(filepath.Join(t.TempDir(), "empty.model")); err == nil {
		t.Fatal("expected error for untrained pipeline")
	}
}

func TestLoadPipelineMissingFile(t *testing.T) {
	if _, err := LoadPipeline(filepath.Join(t.TempDir(), "absent.model")); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestPipelineTransformSchemaMismatch(t *testing.T) {
	pipeline := fittedPipeline(t)
	row := dataset.NewRow()
	row.Cats["school"] = "GP"
	// sex and age missing entirely
	if _, err := pipeline.PredictRow(row); err == nil {
		t.Fatal("expected error for schema mismatch")
	}
}
