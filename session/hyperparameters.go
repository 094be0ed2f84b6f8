package session

import (
	"fmt"
	"math"
	"strconv"
)

// Hyperparameters is the record a model is built from. The UI edits it
// through normalized control values in [0, 1].
type Hyperparameters struct {
	Size         int     `json:"size"`
	Depth        int     `json:"depth"`
	LearningRate float64 `json:"learning_rate"`
	Epochs       int     `json:"epochs"`
}

// DefaultHyperparameters returns the values a fresh session starts with.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Size:         1,
		Depth:        1,
		LearningRate: 1e-5,
		Epochs:       1,
	}
}

// SizeFromControl maps v to 1..101 units per layer.
func SizeFromControl(v float64) int {
	return int(math.Floor(v*100)) + 1
}

// DepthFromControl maps v to 1..11 hidden blocks.
func DepthFromControl(v float64) int {
	return int(math.Floor(v*10)) + 1
}

// LearningRateFromControl maps v log-uniformly onto [1e-5, 1].
func LearningRateFromControl(v float64) float64 {
	return math.Pow(10, v*5-5)
}

// EpochsFromControl maps v to 1..5000 epochs.
func EpochsFromControl(v float64) int {
	return int(math.Floor(v*4999)) + 1
}

// clampControl limits v to [0, 1].
func clampControl(v float64) (float64, error) {
	if math.IsNaN(v) {
		return 0, ErrInvalidControl
	}
	return math.Min(math.Max(v, 0), 1), nil
}

// SetSize sets Size from control value v.
func (h *Hyperparameters) SetSize(v float64) error {
	v, err := clampControl(v)
	if err != nil {
		return err
	}
	h.Size = SizeFromControl(v)
	return nil
}

// SetDepth sets Depth from control value v.
func (h *Hyperparameters) SetDepth(v float64) error {
	v, err := clampControl(v)
	if err != nil {
		return err
	}
	h.Depth = DepthFromControl(v)
	return nil
}

// SetLearningRate sets LearningRate from control value v.
func (h *Hyperparameters) SetLearningRate(v float64) error {
	v, err := clampControl(v)
	if err != nil {
		return err
	}
	h.LearningRate = LearningRateFromControl(v)
	return nil
}

// SetEpochs sets Epochs from control value v.
func (h *Hyperparameters) SetEpochs(v float64) error {
	v, err := clampControl(v)
	if err != nil {
		return err
	}
	h.Epochs = EpochsFromControl(v)
	return nil
}

// Validate reports a record no model can be built from.
func (h Hyperparameters) Validate() error {
	switch {
	case h.Size <= 0:
		return fmt.Errorf("%w: size %d", ErrInvalidHyperparameters, h.Size)
	case h.Depth < 0:
		return fmt.Errorf("%w: depth %d", ErrInvalidHyperparameters, h.Depth)
	case !(h.LearningRate > 0) || math.IsInf(h.LearningRate, 0):
		return fmt.Errorf("%w: learning rate %v", ErrInvalidHyperparameters, h.LearningRate)
	case h.Epochs <= 0:
		return fmt.Errorf("%w: epochs %d", ErrInvalidHyperparameters, h.Epochs)
	}
	return nil
}

// Display holds hyperparameters formatted for the value labels.
type Display struct {
	Size         string `json:"size"`
	Depth        string `json:"depth"`
	LearningRate string `json:"learning_rate"`
	Epochs       string `json:"epochs"`
}

// DisplayValues formats the record for display. The learning rate is shown
// with five decimals.
func (h Hyperparameters) DisplayValues() Display {
	return Display{
		Size:         strconv.Itoa(h.Size),
		Depth:        strconv.Itoa(h.Depth),
		LearningRate: fmt.Sprintf("%.5f", h.LearningRate),
		Epochs:       strconv.Itoa(h.Epochs),
	}
}
