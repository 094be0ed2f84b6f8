package training

import (
	"fmt"
)

// Loss interface defines methods that all loss functions must implement
type Loss interface {
	Forward(predicted, target []float64) (float64, error)
	Backward(predicted, target []float64) ([]float64, error)
}

// MSELoss implements Mean Squared Error loss function
type MSELoss struct {
	reduction string // "mean" or "sum"
}

// NewMSELoss creates a new Mean Squared Error loss function
func NewMSELoss(reduction string) *MSELoss {
	if reduction == "" {
		reduction = "mean"
	}
	return &MSELoss{reduction: reduction}
}

// Forward computes the MSE loss: L = (1/N) * sum((y_pred - y_true)^2)
func (mse *MSELoss) Forward(predicted, target []float64) (float64, error) {
	if err := checkLossInputs(predicted, target); err != nil {
		return 0, err
	}

	sum := 0.0
	for i, p := range predicted {
		d := p - target[i]
		sum += d * d
	}

	if mse.reduction == "mean" {
		sum /= float64(len(predicted))
	}
	return sum, nil
}

// Backward computes dL/dy_pred = 2 * (y_pred - y_true), divided by N for
// the mean reduction.
func (mse *MSELoss) Backward(predicted, target []float64) ([]float64, error) {
	if err := checkLossInputs(predicted, target); err != nil {
		return nil, err
	}

	scale := 2.0
	if mse.reduction == "mean" {
		scale /= float64(len(predicted))
	}

	grad := make([]float64, len(predicted))
	for i, p := range predicted {
		grad[i] = scale * (p - target[i])
	}
	return grad, nil
}

func checkLossInputs(predicted, target []float64) error {
	if len(predicted) != len(target) {
		return fmt.Errorf("predicted and target must have the same length: %d vs %d", len(predicted), len(target))
	}
	if len(predicted) == 0 {
		return fmt.Errorf("loss of an empty batch is undefined")
	}
	return nil
}
