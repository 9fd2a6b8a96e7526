package db

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTrainingLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradecast.db")
	if err := InitDB(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer Close()

	first := TrainingRun{
		ModelName:  "random_forest",
		MAE:        1.1,
		RMSE:       1.6,
		R2:         0.82,
		DataPoints: 519,
		TrainedAt:  time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	second := first
	second.MAE = 0.9
	second.TrainedAt = first.TrainedAt.Add(24 * time.Hour)

	if err := SaveTrainingRun(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SaveTrainingRun(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	latest, err := LatestTrainingRun()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.MAE != 0.9 {
		t.Fatalf("expected most recent run, got MAE %g", latest.MAE)
	}

	runs, err := LoadTrainingLog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].TrainedAt.Before(runs[1].TrainedAt) {
		t.Fatal("runs not ordered most recent first")
	}
}

func TestSaveWithoutInit(t *testing.T) {
	Close()
	if err := SaveTrainingRun(TrainingRun{}); err == nil {
		t.Fatal("expected error before InitDB")
	}
}
