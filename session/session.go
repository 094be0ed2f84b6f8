package session

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/tsawler/go-curvefit/async"
	"github.com/tsawler/go-curvefit/training"
)

// Status is the controller state.
type Status int

const (
	Idle Status = iota
	Training
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Training:
		return "training"
	default:
		return "unknown"
	}
}

// Config controls how a Session builds and reports on its models.
type Config struct {
	Seed            int64         `json:"seed"`             // Model initialization seed
	ProbePoints     int           `json:"probe_points"`     // Points sampled by SamplePredictions
	LogInterval     int           `json:"log_interval"`     // Epochs between loss log lines
	PublishInterval time.Duration `json:"publish_interval"` // Minimum time between weight snapshots

	// LogOutput receives session and training logs; nil means os.Stderr.
	LogOutput io.Writer `json:"-"`

	// Fit trains a freshly built model on the background task; nil means
	// Model.Fit.
	Fit FitFunc `json:"-"`
}

// FitFunc trains model on the samples (xs, ys).
type FitFunc func(model *training.Model, xs, ys []float64) error

// DefaultConfig returns the configuration of the interactive trainer.
func DefaultConfig() Config {
	return Config{
		Seed:            training.DefaultSeed,
		ProbePoints:     1000,
		LogInterval:     100,
		PublishInterval: 10 * time.Millisecond,
	}
}

// Session owns the dataset, the hyperparameters and the current model, and
// runs at most one fit at a time on a background task.
//
// A Session is owned by a single goroutine (the render loop). Only the fit
// itself runs elsewhere, and it works on snapshots taken by Start.
type Session struct {
	config Config
	logger *log.Logger

	dataset *Dataset
	hyper   Hyperparameters

	status    Status
	model     *training.Model
	task      *async.Task
	collector *training.VisualizationCollector

	trainXs, trainYs []float64
	lastPredictions  []Sample
	lastMetrics      *training.RegressionMetrics

	// fit runs on the background task.
	fit FitFunc
}

func fitModel(model *training.Model, xs, ys []float64) error {
	_, err := model.Fit(xs, ys)
	return err
}

// New creates an idle session with an empty dataset and default
// hyperparameters.
func New(config Config) *Session {
	if config.ProbePoints <= 0 {
		config.ProbePoints = DefaultConfig().ProbePoints
	}
	if config.LogOutput == nil {
		config.LogOutput = os.Stderr
	}
	if config.Fit == nil {
		config.Fit = fitModel
	}

	return &Session{
		config:    config,
		logger:    log.New(config.LogOutput, "[session] ", log.LstdFlags),
		dataset:   NewDataset(),
		hyper:     DefaultHyperparameters(),
		status:    Idle,
		collector: training.NewVisualizationCollector("curvefit"),
		fit:       config.Fit,
	}
}

// Start launches a fit of a freshly initialized model on a snapshot of the
// dataset and hyperparameters. On refusal nothing changes.
func (s *Session) Start() error {
	if s.Poll() == Training {
		return ErrTraining
	}
	if !s.dataset.Balanced() {
		return ErrUnbalanced
	}
	if s.dataset.Len() == 0 {
		return ErrEmptyDataset
	}
	if err := s.hyper.Validate(); err != nil {
		return err
	}

	xs, ys := s.dataset.Snapshot()
	hp := s.hyper

	model, err := training.NewModel(training.ModelConfig{
		Size:            hp.Size,
		Depth:           hp.Depth,
		LearningRate:    hp.LearningRate,
		Epochs:          hp.Epochs,
		Seed:            s.config.Seed,
		LogInterval:     s.config.LogInterval,
		PublishInterval: s.config.PublishInterval,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHyperparameters, err)
	}
	model.SetLogger(log.New(s.config.LogOutput, "[training] ", log.LstdFlags))

	s.collector.Clear()
	model.OnProgress(s.collector.RecordEpoch)

	s.model = model
	s.trainXs, s.trainYs = xs, ys
	s.lastMetrics = nil
	s.status = Training
	fit := s.fit
	s.task = async.Go(func() error {
		return fit(model, xs, ys)
	})

	s.logger.Printf("training started: %d samples, size=%d depth=%d lr=%g epochs=%d",
		len(xs), hp.Size, hp.Depth, hp.LearningRate, hp.Epochs)
	return nil
}

// Poll checks the in-flight fit without blocking and returns the status.
// A finished fit moves the session back to Idle; the model and the last
// predictions are kept.
func (s *Session) Poll() Status {
	if s.status != Training || !s.task.Finished() {
		return s.status
	}

	s.status = Idle
	stats := s.task.Stats()
	if stats.Err != nil {
		s.logger.Printf("training failed after %s: %v", stats.Duration, stats.Err)
		return s.status
	}

	s.lastMetrics = training.CalculateRegressionMetrics(s.model.Predict(s.trainXs), s.trainYs)
	s.logger.Printf("training finished in %s: %s", stats.Duration.Round(time.Millisecond), s.lastMetrics)
	return s.status
}

// Status returns the current state, observing a completed fit first.
func (s *Session) Status() Status {
	return s.Poll()
}

// IsTraining reports whether a fit is running.
func (s *Session) IsTraining() bool {
	return s.Poll() == Training
}

// Wait blocks until the in-flight fit, if any, completes and returns its
// error.
func (s *Session) Wait() error {
	if s.task == nil {
		return nil
	}
	err := s.task.Wait()
	s.Poll()
	return err
}

// SamplePredictions evaluates the model at evenly spaced points spanning
// the dataset's x range and remembers the result. It returns nil when
// there is no model or no data. It is safe to call while a fit runs.
func (s *Session) SamplePredictions() []Sample {
	if s.model == nil {
		return nil
	}
	lo, hi, ok := s.dataset.Bounds()
	if !ok {
		return nil
	}

	probes := Linspace(lo, hi, s.config.ProbePoints)
	preds := s.model.Predict(probes)

	out := make([]Sample, len(probes))
	for i := range probes {
		out[i] = Sample{X: probes[i], Y: preds[i]}
	}
	s.lastPredictions = out
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	if lo == hi {
		for i := range out {
			out[i] = lo
		}
		return out
	}
	// Interpolating between the ends avoids hi-lo, which overflows for
	// large values of opposite sign.
	last := float64(n - 1)
	for i := range out {
		t := float64(i) / last
		out[i] = lo*(1-t) + hi*t
	}
	out[n-1] = hi
	return out
}

// AppendSample adds a "x,y" entry unless a fit is running.
func (s *Session) AppendSample(raw string) error {
	if s.IsTraining() {
		return ErrTraining
	}
	return s.dataset.Append(raw)
}

// RemoveLastSample deletes the newest sample unless a fit is running.
func (s *Session) RemoveLastSample() error {
	if s.IsTraining() {
		return ErrTraining
	}
	return s.dataset.RemoveLast()
}

// SetSize applies a size control value unless a fit is running.
func (s *Session) SetSize(v float64) error {
	if s.IsTraining() {
		return ErrTraining
	}
	return s.hyper.SetSize(v)
}

// SetDepth applies a depth control value unless a fit is running.
func (s *Session) SetDepth(v float64) error {
	if s.IsTraining() {
		return ErrTraining
	}
	return s.hyper.SetDepth(v)
}

// SetLearningRate applies a learning rate control value unless a fit is
// running.
func (s *Session) SetLearningRate(v float64) error {
	if s.IsTraining() {
		return ErrTraining
	}
	return s.hyper.SetLearningRate(v)
}

// SetEpochs applies an epochs control value unless a fit is running.
func (s *Session) SetEpochs(v float64) error {
	if s.IsTraining() {
		return ErrTraining
	}
	return s.hyper.SetEpochs(v)
}

// Dataset returns the session's dataset. Mutate it through the session's
// gated methods.
func (s *Session) Dataset() *Dataset {
	return s.dataset
}

// Hyperparameters returns a copy of the current record.
func (s *Session) Hyperparameters() Hyperparameters {
	return s.hyper
}

// Model returns the most recently started model, or nil.
func (s *Session) Model() *training.Model {
	return s.model
}

// LastPredictions returns the curve stored by the last SamplePredictions.
func (s *Session) LastPredictions() []Sample {
	return s.lastPredictions
}

// LastMetrics returns training-set metrics of the last completed fit, or
// nil.
func (s *Session) LastMetrics() *training.RegressionMetrics {
	return s.lastMetrics
}

// LossHistory returns the per-epoch loss of the current or last fit.
func (s *Session) LossHistory() []float64 {
	_, losses := s.collector.Losses()
	return losses
}

// Collector exposes the loss recorder for plot generation.
func (s *Session) Collector() *training.VisualizationCollector {
	return s.collector
}
