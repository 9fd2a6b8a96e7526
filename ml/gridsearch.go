package ml

import (
	"errors"
	"fmt"
	"time"

	"gradecast/dataset"
)

// SearchConfig describes a hyperparameter grid search over the forest.
type SearchConfig struct {
	Trees           []int   `yaml:"trees"`            // candidate n_estimators
	Depths          []int   `yaml:"depths"`           // candidate max_depth values
	Metric          string  `yaml:"metric"`           // mae or rmse, minimized
	ValidationSplit float64 `yaml:"validation_split"` // held out from the training partition
	Seed            int64   `yaml:"seed"`
}

// SearchIteration records one evaluated parameter combination.
type SearchIteration struct {
	Trees    int           `json:"trees"`
	MaxDepth int           `json:"max_depth"`
	Metric   float64       `json:"metric"`
	Duration time.Duration `json:"duration"`
}

// SearchResult holds the winning combination plus all iterations.
type SearchResult struct {
	Best       SearchIteration   `json:"best"`
	Iterations []SearchIteration `json:"iterations"`
}

// GridSearch evaluates every trees x depth combination on a validation split
// carved from the given data and returns the combination minimizing the
// configured metric. The split and each candidate fit are seeded, so repeated
// searches over the same data pick the same winner.
func GridSearch(X [][]float64, y []float64, cfg SearchConfig) (*SearchResult, error) {
	if len(X) == 0 {
		return nil, errors.New("no training data")
	}
	if len(cfg.Trees) == 0 || len(cfg.Depths) == 0 {
		return nil, errors.New("empty parameter grid")
	}
	if cfg.ValidationSplit <= 0 || cfg.ValidationSplit >= 1 {
		cfg.ValidationSplit = 0.2
	}
	switch cfg.Metric {
	case "", "mae", "rmse":
	default:
		return nil, fmt.Errorf("unsupported search metric %q", cfg.Metric)
	}

	trainIdx, valIdx := dataset.TrainTestSplit(len(X), cfg.ValidationSplit, cfg.Seed)
	if len(valIdx) == 0 {
		return nil, errors.New("not enough data for a validation split")
	}
	trainX, trainY := gather(X, y, trainIdx)
	valX, valY := gather(X, y, valIdx)

	result := &SearchResult{}
	best := -1.0
	for _, trees := range cfg.Trees {
		for _, depth := range cfg.Depths {
			start := time.Now()
			model := NewRandomForestRegressor(ForestConfig{
				NEstimators: trees,
				MaxDepth:    depth,
				Seed:        cfg.Seed,
			})
			if err := model.Fit(trainX, trainY); err != nil {
				return nil, fmt.Errorf("fit trees=%d depth=%d: %w", trees, depth, err)
			}
			metrics, err := Evaluate(model, valX, valY)
			if err != nil {
				return nil, err
			}
			score := metrics.MAE
			if cfg.Metric == "rmse" {
				score = metrics.RMSE
			}
			iter := SearchIteration{
				Trees:    trees,
				MaxDepth: depth,
				Metric:   score,
				Duration: time.Since(start),
			}
			result.Iterations = append(result.Iterations, iter)
			if best < 0 || score < best {
				best = score
				result.Best = iter
			}
		}
	}
	return result, nil
}

func gather(X [][]float64, y []float64, indices []int) ([][]float64, []float64) {
	outX := make([][]float64, len(indices))
	outY := make([]float64, len(indices))
	for i, idx := range indices {
		outX[i] = X[idx]
		outY[i] = y[idx]
	}
	return outX, outY
}
