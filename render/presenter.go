package render

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tsawler/go-curvefit/session"
	"github.com/tsawler/go-curvefit/training"
)

// Presenter displays finished frames.
type Presenter interface {
	Present(f *Frame) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(f *Frame) error

// Present implements Presenter.
func (fn PresenterFunc) Present(f *Frame) error {
	return fn(f)
}

// MultiPresenter presents every frame to each presenter in turn and joins
// their errors.
type MultiPresenter []Presenter

// Present implements Presenter.
func (mp MultiPresenter) Present(f *Frame) error {
	var errs []error
	for _, p := range mp {
		if err := p.Present(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StreamPresenter writes each frame to a writer as a size-delimited
// protobuf Struct.
type StreamPresenter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStreamPresenter returns a presenter writing to w.
func NewStreamPresenter(w io.Writer) *StreamPresenter {
	return &StreamPresenter{w: w}
}

// Present implements Presenter.
func (sp *StreamPresenter) Present(f *Frame) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return WriteFrame(sp.w, f)
}

// SidecarPresenter forwards the regression fit and loss curve to the
// plotting sidecar while a fit runs, at most once per interval, as one
// batch. When the fit ends the final plots are sent one by one with
// retries. Sends happen in the background; a failed send is reported by
// the next Present.
type SidecarPresenter struct {
	service   *training.PlottingService
	collector *training.VisualizationCollector
	interval  time.Duration

	lastSend    time.Time
	wasTraining bool

	inflight atomic.Bool
	wg       sync.WaitGroup
	mu       sync.Mutex
	lastErr  error
}

// NewSidecarPresenter returns a presenter that sends plots through service.
func NewSidecarPresenter(service *training.PlottingService, collector *training.VisualizationCollector, interval time.Duration) *SidecarPresenter {
	return &SidecarPresenter{
		service:   service,
		collector: collector,
		interval:  interval,
	}
}

// Present implements Presenter.
func (sp *SidecarPresenter) Present(f *Frame) error {
	err := sp.takeError()

	finished := sp.wasTraining && !f.Training
	sp.wasTraining = f.Training
	if !f.Training && !finished {
		return err
	}
	if !finished && time.Since(sp.lastSend) < sp.interval {
		return err
	}
	if finished {
		// The final curve must not be dropped behind an older send.
		sp.wg.Wait()
		if err == nil {
			err = sp.takeError()
		}
	}
	if !sp.inflight.CompareAndSwap(false, true) {
		return err
	}
	sp.lastSend = time.Now()

	plots := []training.PlotData{
		sp.collector.GenerateRegressionFitPlot(dataPoints(f.Dataset), dataPoints(f.Predictions)),
		sp.collector.GenerateTrainingCurvesPlot(),
	}

	sp.wg.Add(1)
	go func() {
		defer sp.wg.Done()
		defer sp.inflight.Store(false)

		var sendErr error
		if finished {
			sendErr = sp.sendFinal(plots)
		} else {
			sendErr = sp.sendBatch(plots)
		}
		if sendErr != nil {
			sp.mu.Lock()
			sp.lastErr = sendErr
			sp.mu.Unlock()
		}
	}()

	return err
}

func (sp *SidecarPresenter) sendBatch(plots []training.PlotData) error {
	resp, err := sp.service.BatchSendPlots(plots)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plotting sidecar refused plots: %s", resp.Message)
	}
	return nil
}

func (sp *SidecarPresenter) sendFinal(plots []training.PlotData) error {
	var errs []error
	for _, plot := range plots {
		resp, err := sp.service.SendPlotDataWithRetry(plot)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !resp.Success {
			errs = append(errs, fmt.Errorf("plotting sidecar refused %s plot: %s", plot.PlotType, resp.Message))
		}
	}
	return errors.Join(errs...)
}

// Flush waits for an in-flight send and returns its error, if any.
func (sp *SidecarPresenter) Flush() error {
	sp.wg.Wait()
	return sp.takeError()
}

func (sp *SidecarPresenter) takeError() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	err := sp.lastErr
	sp.lastErr = nil
	return err
}

func dataPoints(samples []session.Sample) []training.DataPoint {
	out := make([]training.DataPoint, len(samples))
	for i, s := range samples {
		out[i] = training.DataPoint{X: s.X, Y: s.Y}
	}
	return out
}
