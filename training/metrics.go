package training

import (
	"fmt"
	"math"
)

// RegressionMetrics holds comprehensive regression evaluation metrics
type RegressionMetrics struct {
	MAE  float64 `json:"mae"`  // Mean Absolute Error
	MSE  float64 `json:"mse"`  // Mean Squared Error
	RMSE float64 `json:"rmse"` // Root Mean Squared Error
	R2   float64 `json:"r2"`   // R-squared
	NMAE float64 `json:"nmae"` // Normalized Mean Absolute Error
}

// CalculateRegressionMetrics computes comprehensive regression metrics.
// Mismatched or empty inputs yield zero metrics.
func CalculateRegressionMetrics(predictions, trueValues []float64) *RegressionMetrics {
	n := len(predictions)
	if n == 0 || n != len(trueValues) {
		return &RegressionMetrics{}
	}

	// Calculate mean of true values for R²
	meanTrue := 0.0
	for _, v := range trueValues {
		meanTrue += v
	}
	meanTrue /= float64(n)

	sumAbsErr := 0.0
	sumSqErr := 0.0
	sumSqTotal := 0.0
	minTrue := math.Inf(1)
	maxTrue := math.Inf(-1)

	for i, pred := range predictions {
		actual := trueValues[i]

		sumAbsErr += math.Abs(pred - actual)
		sumSqErr += (pred - actual) * (pred - actual)
		sumSqTotal += (actual - meanTrue) * (actual - meanTrue)

		minTrue = math.Min(minTrue, actual)
		maxTrue = math.Max(maxTrue, actual)
	}

	mae := sumAbsErr / float64(n)
	mse := sumSqErr / float64(n)

	// R² is left at zero for constant targets
	r2 := 0.0
	if sumSqTotal > 0 {
		r2 = 1.0 - (sumSqErr / sumSqTotal)
	}

	// Normalized MAE (scale by range)
	nmae := 0.0
	if maxTrue > minTrue {
		nmae = mae / (maxTrue - minTrue)
	}

	return &RegressionMetrics{
		MAE:  mae,
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		R2:   r2,
		NMAE: nmae,
	}
}

func (rm *RegressionMetrics) String() string {
	return fmt.Sprintf("MSE=%.6f RMSE=%.6f MAE=%.6f R2=%.4f", rm.MSE, rm.RMSE, rm.MAE, rm.R2)
}
