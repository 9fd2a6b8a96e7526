package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gradecast/dataset"
	"gradecast/db"
	"gradecast/ml"
)

func main() {
	dataPath := flag.String("data", "./data/student-mat.csv", "training CSV (semicolon separated)")
	modelPath := flag.String("model_path", "./models/grade_rf.json", "model artifact output path")
	dbPath := flag.String("db", "./data/gradecast.db", "training log database ('' to skip)")
	trees := flag.Int("trees", 100, "number of trees")
	maxDepth := flag.Int("max_depth", 0, "max tree depth (0 = unlimited)")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out fraction")
	seed := flag.Int64("seed", 42, "split and training seed")
	tune := flag.Bool("tune", false, "grid-search trees and depth before the final fit")
	flag.Parse()

	frame, err := dataset.Load(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded %d rows from %s", frame.Len(), *dataPath)

	issues, stats := dataset.NewValidator().Validate(frame)
	log.Printf("validation: %d/%d rows clean, %d flagged", stats.Passed, stats.TotalRows, stats.Flagged)
	for i, issue := range issues {
		if i >= 10 {
			log.Printf("... %d more issues", len(issues)-10)
			break
		}
		log.Printf("  line %d [%s]: %s", issue.Line, issue.Rule, issue.Message)
	}

	features, target, err := frame.SplitTarget(dataset.TargetColumn)
	if err != nil {
		log.Fatalf("failed to split target: %v", err)
	}

	trainIdx, testIdx := dataset.TrainTestSplit(features.Len(), *testRatio, *seed)
	trainFrame := features.Subset(trainIdx)
	testFrame := features.Subset(testIdx)
	trainY := gather(target, trainIdx)
	testY := gather(target, testIdx)

	encoder, err := ml.FitEncoder(trainFrame, dataset.CategoricalColumns, ml.EncoderOptions{
		HandleUnknown: ml.HandleUnknownIgnore,
	})
	if err != nil {
		log.Fatalf("failed to fit encoder: %v", err)
	}
	trainX, err := encoder.TransformFrame(trainFrame)
	if err != nil {
		log.Fatalf("failed to encode training rows: %v", err)
	}
	testX, err := encoder.TransformFrame(testFrame)
	if err != nil {
		log.Fatalf("failed to encode test rows: %v", err)
	}

	cfg := ml.ForestConfig{
		NEstimators: *trees,
		MaxDepth:    *maxDepth,
		Seed:        *seed,
	}
	if *tune {
		cfg = tuneConfig(trainX, trainY, cfg)
	}

	forest := ml.NewRandomForestRegressor(cfg)
	start := time.Now()
	if err := forest.Fit(trainX, trainY); err != nil {
		log.Fatalf("failed to train forest: %v", err)
	}
	log.Printf("trained %d trees in %s", cfg.NEstimators, time.Since(start).Round(time.Millisecond))

	metrics, err := ml.Evaluate(forest, testX, testY)
	if err != nil {
		log.Fatalf("failed to evaluate model: %v", err)
	}
	log.Printf("holdout: mae=%.4f rmse=%.4f r2=%.4f (n=%d)", metrics.MAE, metrics.RMSE, metrics.R2, metrics.DataPoints)

	pipeline := &ml.Pipeline{
		Encoder:   encoder,
		Forest:    forest,
		Columns:   dataset.FeatureColumns(),
		Target:    dataset.TargetColumn,
		TrainedAt: time.Now().UTC(),
	}
	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := pipeline.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	if *dbPath != "" {
		if err := recordRun(*dbPath, *modelPath, metrics); err != nil {
			log.Printf("warning: could not record training run: %v", err)
		}
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

func tuneConfig(trainX [][]float64, trainY []float64, cfg ml.ForestConfig) ml.ForestConfig {
	result, err := ml.GridSearch(trainX, trainY, ml.SearchConfig{
		Trees:  []int{50, 100, 200},
		Depths: []int{0, 5, 10, 15},
		Metric: "rmse",
		Seed:   cfg.Seed,
	})
	if err != nil {
		log.Printf("warning: grid search failed, keeping flags: %v", err)
		return cfg
	}
	log.Printf("grid search: best trees=%d max_depth=%d rmse=%.4f (%d combinations)",
		result.Best.Trees, result.Best.MaxDepth, result.Best.Metric, len(result.Iterations))
	cfg.NEstimators = result.Best.Trees
	cfg.MaxDepth = result.Best.MaxDepth
	return cfg
}

func recordRun(dbPath, modelPath string, metrics ml.RegressionMetrics) error {
	if err := db.InitDB(dbPath); err != nil {
		return err
	}
	defer db.Close()
	return db.SaveTrainingRun(db.TrainingRun{
		ModelName:  filepath.Base(modelPath),
		MAE:        metrics.MAE,
		RMSE:       metrics.RMSE,
		R2:         metrics.R2,
		DataPoints: metrics.DataPoints,
		TrainedAt:  time.Now().UTC(),
	})
}

func gather(values []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = values[idx]
	}
	return out
}
