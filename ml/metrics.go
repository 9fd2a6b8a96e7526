package ml

import (
	"errors"
	"math"
)

// RegressionMetrics summarizes model quality on a held-out partition.
type RegressionMetrics struct {
	MAE        float64 `json:"mae"`
	RMSE       float64 `json:"rmse"`
	R2         float64 `json:"r2"`
	DataPoints int     `json:"data_points"`
}

// Evaluate scores the forest against held-out encoded features.
func Evaluate(model *RandomForestRegressor, X [][]float64, y []float64) (RegressionMetrics, error) {
	if len(X) == 0 {
		return RegressionMetrics{}, errors.New("no evaluation data")
	}
	if len(X) != len(y) {
		return RegressionMetrics{}, errors.New("features and targets size mismatch")
	}

	var absSum, sqSum, ySum float64
	for i, x := range X {
		pred, err := model.Predict(x)
		if err != nil {
			return RegressionMetrics{}, err
		}
		d := pred - y[i]
		absSum += math.Abs(d)
		sqSum += d * d
		ySum += y[i]
	}

	n := float64(len(y))
	mean := ySum / n
	var totalSq float64
	for _, v := range y {
		d := v - mean
		totalSq += d * d
	}

	r2 := 0.0
	if totalSq > 0 {
		r2 = 1 - sqSum/totalSq
	}

	return RegressionMetrics{
		MAE:        absSum / n,
		RMSE:       math.Sqrt(sqSum / n),
		R2:         r2,
		DataPoints: len(y),
	}, nil
}
