package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gradecast/dataset"
)

// Pipeline couples the fitted encoder with the fitted regressor. It is the
// only artifact shared between the trainer and the predictor; the predictor
// loads it once and never mutates it.
type Pipeline struct {
	Encoder   *Encoder               `json:"encoder"`
	Forest    *RandomForestRegressor `json:"forest"`
	Columns   []string               `json:"columns"` // feature columns at fit time, in order
	Target    string                 `json:"target"`
	TrainedAt time.Time              `json:"trained_at"`
}

// Transform encodes a feature row through the fitted preprocessor.
func (p *Pipeline) Transform(row dataset.Row) ([]float64, error) {
	if p.Encoder == nil {
		return nil, errors.New("pipeline has no encoder")
	}
	return p.Encoder.Transform(row)
}

// PredictRow transforms a row and returns the raw (unclamped) regression
// output.
func (p *Pipeline) PredictRow(row dataset.Row) (float64, error) {
	x, err := p.Transform(row)
	if err != nil {
		return 0, fmt.Errorf("transform: %w", err)
	}
	if p.Forest == nil {
		return 0, errors.New("pipeline has no regressor")
	}
	return p.Forest.Predict(x)
}

// FeatureNames returns the post-encoding feature names.
func (p *Pipeline) FeatureNames() []string {
	if p.Encoder == nil {
		return nil
	}
	return p.Encoder.FeatureNames()
}

// Save writes the pipeline artifact, overwriting any prior file at path.
func (p *Pipeline) Save(path string) error {
	if p.Encoder == nil || p.Forest == nil || len(p.Forest.Trees) == 0 {
		return errors.New("pipeline not trained")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadPipeline reads a pipeline artifact from disk.
func LoadPipeline(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var p Pipeline
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if p.Encoder == nil || p.Forest == nil || len(p.Forest.Trees) == 0 {
		return nil, errors.New("artifact is incomplete")
	}
	return &p, nil
}
