package optimizer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Optimizer defines the common interface for all optimizers.
// Parameters are updated in place; callers publish copies if other
// goroutines read them.
type Optimizer interface {
	// Step performs a single optimization step.
	// grads must match params in count and shape.
	Step(params, grads []*mat.Dense) error

	// GetStepCount returns the current optimization step number
	GetStepCount() uint64

	// UpdateLearningRate updates the learning rate
	UpdateLearningRate(lr float64)

	// GetName returns the optimizer name for logging
	GetName() string
}

// validateShapes ensures every gradient matches its parameter.
func validateShapes(params, grads []*mat.Dense) error {
	if len(params) != len(grads) {
		return fmt.Errorf("gradient count (%d) doesn't match parameter count (%d)", len(grads), len(params))
	}
	for i := range params {
		pr, pc := params[i].Dims()
		gr, gc := grads[i].Dims()
		if pr != gr || pc != gc {
			return fmt.Errorf("gradient %d has shape [%d %d], parameter has [%d %d]", i, gr, gc, pr, pc)
		}
	}
	return nil
}
