package training

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tsawler/go-curvefit/engine"
	"github.com/tsawler/go-curvefit/layers"
	"github.com/tsawler/go-curvefit/optimizer"
)

// DefaultSeed is the random seed models are initialized with unless the
// configuration says otherwise.
const DefaultSeed int64 = 20060221

var (
	// ErrModelBusy is returned by Fit when another fit is already running on
	// the same model.
	ErrModelBusy = errors.New("model is already training")
	// ErrEmptyData is returned when a fit or evaluation receives no samples.
	ErrEmptyData = errors.New("no samples")
	// ErrLengthMismatch is returned when inputs and targets differ in length.
	ErrLengthMismatch = errors.New("inputs and targets differ in length")
)

// ModelConfig holds everything needed to build a Model. Construction is
// deterministic: equal configs produce equal initial weights.
type ModelConfig struct {
	Size         int     `json:"size"`          // Units per layer
	Depth        int     `json:"depth"`         // Hidden Linear+ReLU blocks after the input block
	LearningRate float64 `json:"learning_rate"` // SGD step size
	Epochs       int     `json:"epochs"`        // Full-batch epochs per Fit
	Seed         int64   `json:"seed"`          // Initialization seed

	// LogInterval is the number of epochs between loss log lines (0 disables)
	LogInterval int `json:"log_interval"`
	// PublishInterval rate-limits how often in-progress weights become
	// visible to Predict. The final weights are always published.
	PublishInterval time.Duration `json:"publish_interval"`
}

// DefaultModelConfig returns a small single-block network.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Size:            10,
		Depth:           0,
		LearningRate:    0.01,
		Epochs:          1000,
		Seed:            DefaultSeed,
		LogInterval:     100,
		PublishInterval: 10 * time.Millisecond,
	}
}

func validateModelConfig(config ModelConfig) error {
	if config.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", config.Size)
	}
	if config.Depth < 0 {
		return fmt.Errorf("depth must be non-negative, got %d", config.Depth)
	}
	if !(config.LearningRate > 0) || math.IsInf(config.LearningRate, 0) {
		return fmt.Errorf("learning rate must be positive and finite, got %v", config.LearningRate)
	}
	if config.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", config.Epochs)
	}
	if config.LogInterval < 0 {
		return fmt.Errorf("log interval must be non-negative, got %d", config.LogInterval)
	}
	return nil
}

// ProgressFunc receives the loss measured at the start of each epoch.
// It runs on the fitting goroutine.
type ProgressFunc func(epoch int, loss float64)

// FitResult summarizes a completed Fit.
type FitResult struct {
	Epochs    int           `json:"epochs"`
	FinalLoss float64       `json:"final_loss"`
	Duration  time.Duration `json:"duration"`
}

// ModelStats is a point-in-time view of a model's training progress.
type ModelStats struct {
	EpochsCompleted int     `json:"epochs_completed"`
	LastLoss        float64 `json:"last_loss"`
	Busy            bool    `json:"busy"`
}

// Model is a scalar regression network trained by full-batch gradient
// descent on the mean squared error.
//
// Fit runs on one goroutine at a time. Predict, Evaluate, Stats and IsBusy
// may be called from any goroutine, including while Fit is running.
type Model struct {
	config    ModelConfig
	spec      *layers.ModelSpec
	engine    *engine.CPUEngine
	optimizer optimizer.Optimizer

	busy       atomic.Bool
	epochsDone atomic.Int64
	lastLoss   atomic.Uint64 // math.Float64bits

	mu       sync.Mutex
	logger   *log.Logger
	progress ProgressFunc
}

// NewModel builds a model and initializes its weights from config.Seed.
func NewModel(config ModelConfig) (*Model, error) {
	if err := validateModelConfig(config); err != nil {
		return nil, fmt.Errorf("invalid model configuration: %w", err)
	}

	spec, err := layers.NewRegressionModelSpec(config.Size, config.Depth)
	if err != nil {
		return nil, fmt.Errorf("failed to compile model: %w", err)
	}

	cpu, err := engine.NewCPUEngine(spec, config.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	sgd, err := optimizer.NewSGDOptimizer(optimizer.SGDConfig{LearningRate: config.LearningRate})
	if err != nil {
		return nil, fmt.Errorf("failed to create optimizer: %w", err)
	}

	return &Model{
		config:    config,
		spec:      spec,
		engine:    cpu,
		optimizer: sgd,
		logger:    log.New(os.Stderr, "[training] ", log.LstdFlags),
	}, nil
}

// SetLogger replaces the logger used for epoch reports. A nil logger
// discards output.
func (m *Model) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m.mu.Lock()
	m.logger = logger
	m.mu.Unlock()
}

// OnProgress registers fn to be called after every epoch of subsequent fits.
func (m *Model) OnProgress(fn ProgressFunc) {
	m.mu.Lock()
	m.progress = fn
	m.mu.Unlock()
}

// Config returns the configuration the model was built with.
func (m *Model) Config() ModelConfig {
	return m.config
}

// Spec returns the compiled architecture.
func (m *Model) Spec() *layers.ModelSpec {
	return m.spec
}

// IsBusy reports whether a Fit is in progress.
func (m *Model) IsBusy() bool {
	return m.busy.Load()
}

// Stats returns the training progress so far.
func (m *Model) Stats() ModelStats {
	return ModelStats{
		EpochsCompleted: int(m.epochsDone.Load()),
		LastLoss:        math.Float64frombits(m.lastLoss.Load()),
		Busy:            m.busy.Load(),
	}
}

// Fit trains the model on (xs, ys) for the configured number of epochs.
// Every epoch uses the whole dataset as one batch. Numerically degenerate
// data is not an error; training simply proceeds.
func (m *Model) Fit(xs, ys []float64) (*FitResult, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d inputs, %d targets", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, ErrEmptyData
	}
	if !m.busy.CompareAndSwap(false, true) {
		return nil, ErrModelBusy
	}
	defer m.busy.Store(false)

	m.mu.Lock()
	logger, progress := m.logger, m.progress
	m.mu.Unlock()

	start := time.Now()
	x := engine.Column(xs)
	y := engine.Column(ys)

	// Work on a private copy; Predict only ever sees published snapshots.
	params := m.engine.Parameters().Clone()
	lastPublish := time.Now()

	loss := 0.0
	for epoch := 1; epoch <= m.config.Epochs; epoch++ {
		var grads *engine.Parameters
		loss, grads = m.engine.Gradients(params, x, y)

		if err := m.optimizer.Step(params.Tensors(), grads.Tensors()); err != nil {
			// Shapes come from the same engine, so this is a programming error.
			return nil, fmt.Errorf("optimizer step %d failed: %w", epoch, err)
		}

		if epoch == m.config.Epochs || time.Since(lastPublish) >= m.config.PublishInterval {
			m.engine.Publish(params.Clone())
			lastPublish = time.Now()
		}

		m.epochsDone.Store(int64(epoch))
		m.lastLoss.Store(math.Float64bits(loss))

		if progress != nil {
			progress(epoch, loss)
		}
		if m.config.LogInterval > 0 && epoch%m.config.LogInterval == 0 {
			logger.Printf("Epoch: %d; Error: %v", epoch, loss)
		}
	}

	return &FitResult{
		Epochs:    m.config.Epochs,
		FinalLoss: loss,
		Duration:  time.Since(start),
	}, nil
}

// Predict returns one prediction per input. It is safe to call while Fit
// runs; each call uses a single consistent set of weights.
func (m *Model) Predict(xs []float64) []float64 {
	return m.engine.Predict(xs)
}

// Evaluate returns the mean squared error on (xs, ys).
func (m *Model) Evaluate(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: %d inputs, %d targets", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return 0, ErrEmptyData
	}
	return NewMSELoss("mean").Forward(m.Predict(xs), ys)
}
