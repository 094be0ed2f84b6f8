package engine

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/tsawler/go-curvefit/layers"
)

func newTestEngine(t *testing.T, size, depth int, seed int64) *CPUEngine {
	t.Helper()
	spec, err := layers.NewRegressionModelSpec(size, depth)
	require.NoError(t, err)
	e, err := NewCPUEngine(spec, seed)
	require.NoError(t, err)
	return e
}

func TestNewCPUEngineRejectsInvalidSpec(t *testing.T) {
	_, err := NewCPUEngine(nil, 1)
	require.Error(t, err)

	spec, err := layers.NewModelBuilder([]int{layers.DynamicBatch, 1}).AddDense(3, true, "fc").Compile()
	require.NoError(t, err)
	_, err = NewCPUEngine(spec, 1)
	require.Error(t, err)
}

func TestInitializationIsSeeded(t *testing.T) {
	a := newTestEngine(t, 8, 2, 20060221)
	b := newTestEngine(t, 8, 2, 20060221)
	c := newTestEngine(t, 8, 2, 7)

	xs := []float64{-2, -0.5, 0, 0.5, 3}
	assert.Equal(t, a.Predict(xs), b.Predict(xs))
	assert.NotEqual(t, a.Predict(xs), c.Predict(xs))
}

func TestInitializationBounds(t *testing.T) {
	e := newTestEngine(t, 16, 1, 3)
	params := e.Parameters()
	require.Len(t, params.Weights, 3)

	for i, w := range params.Weights {
		in, _ := w.Dims()
		bound := 1 / math.Sqrt(float64(in))
		assert.LessOrEqual(t, mat.Max(w), bound, "layer %d", i)
		assert.GreaterOrEqual(t, mat.Min(w), -bound, "layer %d", i)
		assert.LessOrEqual(t, mat.Max(params.Biases[i]), bound, "layer %d", i)
	}
	assert.Equal(t, int(e.Spec().TotalParameters), params.Count())
}

func TestPredictShapes(t *testing.T) {
	e := newTestEngine(t, 4, 1, 1)

	assert.Empty(t, e.Predict(nil))
	assert.Len(t, e.Predict([]float64{1}), 1)
	assert.Len(t, e.Predict(make([]float64, 1000)), 1000)
}

func TestPredictDoesNotAliasInput(t *testing.T) {
	e := newTestEngine(t, 4, 1, 1)
	xs := []float64{1, 2, 3}
	e.Predict(xs)
	assert.Equal(t, []float64{1, 2, 3}, xs)
}

func TestGradientsMatchFiniteDifferences(t *testing.T) {
	e := newTestEngine(t, 3, 1, 11)
	x := Column([]float64{-1, 0.25, 0.7, 2})
	y := Column([]float64{1, 0.5, -0.3, 4})

	base := e.Parameters().Clone()
	_, grads := e.Gradients(base, x, y)

	tensors := base.Tensors()
	gradTensors := grads.Tensors()
	for ti, tensor := range tensors {
		rows, cols := tensor.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				original := tensor.At(i, j)
				lossAt := func(v float64) float64 {
					tensor.Set(i, j, v)
					loss, _ := e.Gradients(base, x, y)
					tensor.Set(i, j, original)
					return loss
				}
				numeric := fd.Derivative(lossAt, original, &fd.Settings{Formula: fd.Central})
				assert.InDelta(t, numeric, gradTensors[ti].At(i, j), 1e-5,
					"tensor %d element (%d,%d)", ti, i, j)
			}
		}
	}
}

func TestGradientsLoss(t *testing.T) {
	e := newTestEngine(t, 2, 0, 5)
	xs := []float64{0, 1}
	preds := e.Predict(xs)

	loss, _ := e.Gradients(e.Parameters(), Column(xs), Column(preds))
	assert.InDelta(t, 0, loss, 1e-12)

	shifted, _ := e.Gradients(e.Parameters(), Column(xs), Column([]float64{preds[0] + 1, preds[1] - 1}))
	assert.InDelta(t, 1, shifted, 1e-12)
}

func TestPublishIsVisibleToPredict(t *testing.T) {
	e := newTestEngine(t, 2, 0, 5)
	next := e.Parameters().Clone()
	for _, tensor := range next.Tensors() {
		tensor.Zero()
	}
	e.Publish(next)

	assert.Equal(t, []float64{0, 0}, e.Predict([]float64{-3, 3}))
}

func TestConcurrentPublishAndPredict(t *testing.T) {
	e := newTestEngine(t, 8, 2, 9)
	xs := make([]float64, 100)
	for i := range xs {
		xs[i] = float64(i) / 10
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		params := e.Parameters().Clone()
		for step := 0; step < 200; step++ {
			for _, tensor := range params.Tensors() {
				tensor.Scale(0.99, tensor)
			}
			e.Publish(params.Clone())
		}
	}()

	for i := 0; i < 200; i++ {
		assert.Len(t, e.Predict(xs), len(xs))
	}
	wg.Wait()
}
