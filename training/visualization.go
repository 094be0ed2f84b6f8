package training

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// PlotType represents different types of plots that can be generated
type PlotType string

const (
	// TrainingCurves plots loss per epoch
	TrainingCurves PlotType = "training_curves"
	// RegressionFit plots the dataset against the model's prediction curve
	RegressionFit PlotType = "regression_fit"
)

// PlotData represents the universal JSON format for the sidecar plotting service
type PlotData struct {
	// Metadata
	PlotType  PlotType  `json:"plot_type"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	ModelName string    `json:"model_name"`

	// Data series
	Series []SeriesData `json:"series"`

	// Plot configuration
	Config PlotConfig `json:"config"`

	// Metrics metadata
	Metrics map[string]interface{} `json:"metrics,omitempty"`
}

// SeriesData represents a single data series in a plot
type SeriesData struct {
	Name  string                 `json:"name"`
	Type  string                 `json:"type"` // "line", "scatter"
	Data  []DataPoint            `json:"data"`
	Style map[string]interface{} `json:"style,omitempty"`
}

// DataPoint represents a single data point
type DataPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlotConfig contains plot-specific configuration
type PlotConfig struct {
	XAxisLabel  string `json:"x_axis_label"`
	YAxisLabel  string `json:"y_axis_label"`
	XAxisScale  string `json:"x_axis_scale"` // "linear", "log"
	YAxisScale  string `json:"y_axis_scale"` // "linear", "log"
	ShowLegend  bool   `json:"show_legend"`
	ShowGrid    bool   `json:"show_grid"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Interactive bool   `json:"interactive"`
}

// Points zips two coordinate sequences into data points; the shorter
// sequence bounds the result.
func Points(xs, ys []float64) []DataPoint {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	points := make([]DataPoint, n)
	for i := 0; i < n; i++ {
		points[i] = DataPoint{X: xs[i], Y: ys[i]}
	}
	return points
}

// finitePoints returns the points whose coordinates are both finite. A
// diverged fit produces NaN and Inf values, which JSON cannot carry.
func finitePoints(points []DataPoint) []DataPoint {
	out := make([]DataPoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// VisualizationCollector gathers per-epoch losses while a fit runs and turns
// them, together with the dataset and prediction curve, into plot data.
//
// Record methods are called from the fitting goroutine; everything else may
// be called concurrently from the render loop.
type VisualizationCollector struct {
	mu        sync.Mutex
	modelName string

	epochs []int
	losses []float64
}

// NewVisualizationCollector creates a new visualization collector
func NewVisualizationCollector(modelName string) *VisualizationCollector {
	return &VisualizationCollector{
		modelName: modelName,
	}
}

// RecordEpoch records the loss of one epoch. It has the ProgressFunc
// signature so it can be registered on a Model directly.
func (vc *VisualizationCollector) RecordEpoch(epoch int, loss float64) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.epochs = append(vc.epochs, epoch)
	vc.losses = append(vc.losses, loss)
}

// Losses returns copies of the recorded epochs and losses.
func (vc *VisualizationCollector) Losses() ([]int, []float64) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	epochs := make([]int, len(vc.epochs))
	copy(epochs, vc.epochs)
	losses := make([]float64, len(vc.losses))
	copy(losses, vc.losses)
	return epochs, losses
}

// GenerateTrainingCurvesPlot generates training curves plot data. Epochs
// whose loss is not finite are left out.
func (vc *VisualizationCollector) GenerateTrainingCurvesPlot() PlotData {
	epochs, losses := vc.Losses()

	data := make([]DataPoint, len(losses))
	for i, loss := range losses {
		data[i] = DataPoint{X: float64(epochs[i]), Y: loss}
	}
	data = finitePoints(data)

	return PlotData{
		PlotType:  TrainingCurves,
		Title:     fmt.Sprintf("Training Curves - %s", vc.modelName),
		Timestamp: time.Now(),
		ModelName: vc.modelName,
		Series: []SeriesData{
			{
				Name: "Training Loss",
				Type: "line",
				Data: data,
				Style: map[string]interface{}{
					"color":      "#FF6B6B",
					"line_width": 2,
				},
			},
		},
		Config: PlotConfig{
			XAxisLabel:  "Epoch",
			YAxisLabel:  "MSE",
			XAxisScale:  "linear",
			YAxisScale:  "log",
			ShowLegend:  true,
			ShowGrid:    true,
			Width:       800,
			Height:      600,
			Interactive: true,
		},
	}
}

// GenerateRegressionFitPlot draws the dataset as red dots and the sampled
// prediction curve as a blue line. Non-finite points are dropped.
func (vc *VisualizationCollector) GenerateRegressionFitPlot(dataset, predictions []DataPoint) PlotData {
	dataset = finitePoints(dataset)
	predictions = finitePoints(predictions)

	series := []SeriesData{
		{
			Name: "Data",
			Type: "scatter",
			Data: dataset,
			Style: map[string]interface{}{
				"color":  "#FF0000",
				"marker": "o",
			},
		},
	}
	if len(predictions) > 0 {
		series = append(series, SeriesData{
			Name: "Model",
			Type: "line",
			Data: predictions,
			Style: map[string]interface{}{
				"color":      "#0000FF",
				"line_width": 1,
			},
		})
	}

	return PlotData{
		PlotType:  RegressionFit,
		Title:     fmt.Sprintf("Regression Fit - %s", vc.modelName),
		Timestamp: time.Now(),
		ModelName: vc.modelName,
		Series:    series,
		Config: PlotConfig{
			XAxisLabel:  "x",
			YAxisLabel:  "y",
			XAxisScale:  "linear",
			YAxisScale:  "linear",
			ShowLegend:  false,
			ShowGrid:    false,
			Width:       640,
			Height:      480,
			Interactive: false,
		},
	}
}

// Clear resets all collected data
func (vc *VisualizationCollector) Clear() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.epochs = vc.epochs[:0]
	vc.losses = vc.losses[:0]
}
