package optimizer

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SGDOptimizerState holds SGD hyperparameters and momentum buffers
type SGDOptimizerState struct {
	// Hyperparameters
	LearningRate float64
	Momentum     float64 // Momentum coefficient (0 for vanilla SGD)
	WeightDecay  float64 // L2 regularization coefficient
	Nesterov     bool    // Whether to use Nesterov momentum

	// Momentum buffers, allocated lazily on the first step when momentum > 0
	MomentumBuffers []*mat.Dense

	// Step tracking
	StepCount uint64
}

// SGDConfig holds configuration for SGD optimizer
type SGDConfig struct {
	LearningRate float64 `json:"learning_rate"`
	Momentum     float64 `json:"momentum"`
	WeightDecay  float64 `json:"weight_decay"`
	Nesterov     bool    `json:"nesterov"`
}

// DefaultSGDConfig returns default SGD optimizer configuration
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{
		LearningRate: 0.01,
		Momentum:     0.0,
		WeightDecay:  0.0,
		Nesterov:     false,
	}
}

// NewSGDOptimizer creates a new SGD optimizer
func NewSGDOptimizer(config SGDConfig) (*SGDOptimizerState, error) {
	if config.LearningRate < 0 {
		return nil, fmt.Errorf("learning rate cannot be negative: %f", config.LearningRate)
	}
	if config.Momentum < 0 {
		return nil, fmt.Errorf("momentum cannot be negative: %f", config.Momentum)
	}
	if config.Momentum > 1.0 {
		return nil, fmt.Errorf("momentum cannot be greater than 1.0: %f", config.Momentum)
	}
	if config.WeightDecay < 0 {
		return nil, fmt.Errorf("weight decay cannot be negative: %f", config.WeightDecay)
	}
	if config.Nesterov && config.Momentum == 0 {
		return nil, fmt.Errorf("nesterov momentum requires a momentum > 0")
	}

	return &SGDOptimizerState{
		LearningRate: config.LearningRate,
		Momentum:     config.Momentum,
		WeightDecay:  config.WeightDecay,
		Nesterov:     config.Nesterov,
	}, nil
}

// Step performs a single SGD optimization step:
//
//	g = grad + weight_decay * p
//	v = momentum * v + g              (momentum > 0)
//	g = g + momentum * v  (nesterov)  or  g = v
//	p = p - lr * g
func (sgd *SGDOptimizerState) Step(params, grads []*mat.Dense) error {
	if err := validateShapes(params, grads); err != nil {
		return err
	}

	if sgd.Momentum > 0 && sgd.MomentumBuffers == nil {
		sgd.MomentumBuffers = make([]*mat.Dense, len(params))
		for i, p := range params {
			r, c := p.Dims()
			sgd.MomentumBuffers[i] = mat.NewDense(r, c, nil)
		}
	}

	for i, p := range params {
		var g mat.Dense
		g.CloneFrom(grads[i])

		if sgd.WeightDecay > 0 {
			var decay mat.Dense
			decay.Scale(sgd.WeightDecay, p)
			g.Add(&g, &decay)
		}

		if sgd.Momentum > 0 {
			v := sgd.MomentumBuffers[i]
			v.Scale(sgd.Momentum, v)
			v.Add(v, &g)

			if sgd.Nesterov {
				var look mat.Dense
				look.Scale(sgd.Momentum, v)
				g.Add(&g, &look)
			} else {
				g.CloneFrom(v)
			}
		}

		g.Scale(sgd.LearningRate, &g)
		p.Sub(p, &g)
	}

	sgd.StepCount++
	return nil
}

// UpdateLearningRate updates the learning rate
func (sgd *SGDOptimizerState) UpdateLearningRate(newLR float64) {
	sgd.LearningRate = newLR
}

// GetStepCount returns the current step count
func (sgd *SGDOptimizerState) GetStepCount() uint64 {
	return sgd.StepCount
}

// GetName returns the optimizer name
func (sgd *SGDOptimizerState) GetName() string {
	return "SGD"
}
