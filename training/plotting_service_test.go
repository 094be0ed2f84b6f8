package training

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPlottingServiceConfig(t *testing.T) {
	config := DefaultPlottingServiceConfig()

	assert.Equal(t, "http://localhost:8080", config.BaseURL)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
}

func TestPlottingServiceEnableDisable(t *testing.T) {
	ps := NewPlottingService(DefaultPlottingServiceConfig())
	assert.False(t, ps.IsEnabled(), "service starts disabled")

	ps.Enable()
	assert.True(t, ps.IsEnabled())

	ps.Disable()
	assert.False(t, ps.IsEnabled())
}

func TestDisabledServiceDoesNotSend(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	config := DefaultPlottingServiceConfig()
	config.BaseURL = server.URL
	ps := NewPlottingService(config)

	resp, err := ps.SendPlotData(PlotData{PlotType: TrainingCurves})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	batch, err := ps.BatchSendPlots([]PlotData{{PlotType: TrainingCurves}})
	require.NoError(t, err)
	assert.False(t, batch.Success)

	assert.Error(t, ps.CheckHealth())
	assert.Zero(t, hits.Load())
}

// newMockPlotServer serves /api/plot, /api/batch-plot and /health. The
// first failures requests to /api/plot answer 500.
func newMockPlotServer(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/plot", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "go-curvefit", r.Header.Get("User-Agent"))

		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(PlottingResponse{Success: false, Message: "boom"})
			return
		}

		var plot PlotData
		if err := json.NewDecoder(r.Body).Decode(&plot); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(PlottingResponse{Success: false, Message: err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(PlottingResponse{
			Success: true,
			Message: string(plot.PlotType),
			PlotID:  "plot-1",
		})
	})
	mux.HandleFunc("/api/batch-plot", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Plots []PlotData `json:"plots"`
			Batch bool       `json:"batch"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.True(t, payload.Batch)

		_ = json.NewEncoder(w).Encode(BatchPlottingResponse{
			Success: true,
			BatchID: "batch-1",
			Summary: BatchSummary{TotalPlots: len(payload.Plots), Successful: len(payload.Plots)},
		})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &calls
}

func enabledService(baseURL string) *PlottingService {
	config := DefaultPlottingServiceConfig()
	config.BaseURL = baseURL
	config.Timeout = 5 * time.Second
	config.RetryDelay = time.Millisecond
	ps := NewPlottingService(config)
	ps.Enable()
	return ps
}

func TestSendPlotData(t *testing.T) {
	server, calls := newMockPlotServer(t, 0)
	ps := enabledService(server.URL)

	collector := NewVisualizationCollector("fit")
	collector.RecordEpoch(1, 0.5)

	resp, err := ps.SendPlotData(collector.GenerateTrainingCurvesPlot())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, string(TrainingCurves), resp.Message)
	assert.Equal(t, "plot-1", resp.PlotID)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSendPlotDataHTTPError(t *testing.T) {
	server, _ := newMockPlotServer(t, 1)
	ps := enabledService(server.URL)

	resp, err := ps.SendPlotData(PlotData{PlotType: RegressionFit})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	require.NotNil(t, resp)
	assert.Equal(t, "boom", resp.Message)
}

func TestSendPlotDataWithRetry(t *testing.T) {
	server, calls := newMockPlotServer(t, 2)
	ps := enabledService(server.URL)

	resp, err := ps.SendPlotDataWithRetry(PlotData{PlotType: RegressionFit})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.EqualValues(t, 3, calls.Load())
}

func TestSendPlotDataWithRetryGivesUp(t *testing.T) {
	server, calls := newMockPlotServer(t, 10)
	ps := enabledService(server.URL)

	_, err := ps.SendPlotDataWithRetry(PlotData{PlotType: RegressionFit})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.EqualValues(t, 3, calls.Load())
}

func TestBatchSendPlots(t *testing.T) {
	server, _ := newMockPlotServer(t, 0)
	ps := enabledService(server.URL)

	collector := NewVisualizationCollector("fit")
	plots := []PlotData{
		collector.GenerateTrainingCurvesPlot(),
		collector.GenerateRegressionFitPlot(Points([]float64{1}, []float64{2}), nil),
	}

	resp, err := ps.BatchSendPlots(plots)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "batch-1", resp.BatchID)
	assert.Equal(t, 2, resp.Summary.TotalPlots)
}

func TestBatchSendPlotsAfterDivergence(t *testing.T) {
	server, _ := newMockPlotServer(t, 0)
	ps := enabledService(server.URL)

	collector := NewVisualizationCollector("fit")
	collector.RecordEpoch(1, 3)
	collector.RecordEpoch(2, math.Inf(1))
	collector.RecordEpoch(3, math.NaN())

	plots := []PlotData{
		collector.GenerateRegressionFitPlot(
			Points([]float64{1, 2}, []float64{1, 2}),
			Points([]float64{1, 1.5, 2}, []float64{math.NaN(), 1.5, math.Inf(-1)})),
		collector.GenerateTrainingCurvesPlot(),
	}

	resp, err := ps.BatchSendPlots(plots)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Summary.TotalPlots)
}

func TestCheckHealth(t *testing.T) {
	server, _ := newMockPlotServer(t, 0)
	ps := enabledService(server.URL)
	assert.NoError(t, ps.CheckHealth())

	down := enabledService("http://127.0.0.1:1")
	assert.Error(t, down.CheckHealth())
}
