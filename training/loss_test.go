package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSELossForward(t *testing.T) {
	predicted := []float64{1, 2, 3}
	target := []float64{1, 4, 0}

	mean, err := NewMSELoss("mean").Forward(predicted, target)
	require.NoError(t, err)
	assert.InDelta(t, 13.0/3.0, mean, 1e-12)

	sum, err := NewMSELoss("sum").Forward(predicted, target)
	require.NoError(t, err)
	assert.InDelta(t, 13.0, sum, 1e-12)

	// Empty reduction defaults to mean.
	def, err := NewMSELoss("").Forward(predicted, target)
	require.NoError(t, err)
	assert.Equal(t, mean, def)
}

func TestMSELossBackward(t *testing.T) {
	grad, err := NewMSELoss("mean").Backward([]float64{1, 2}, []float64{0, 4})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, -2}, grad, 1e-12)

	grad, err = NewMSELoss("sum").Backward([]float64{1, 2}, []float64{0, 4})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, -4}, grad, 1e-12)
}

func TestMSELossRejectsBadInputs(t *testing.T) {
	loss := NewMSELoss("mean")

	_, err := loss.Forward([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = loss.Forward(nil, nil)
	assert.Error(t, err)
	_, err = loss.Backward([]float64{1}, nil)
	assert.Error(t, err)
}

func TestCalculateRegressionMetrics(t *testing.T) {
	m := CalculateRegressionMetrics([]float64{1, 2, 3}, []float64{1, 2, 5})
	assert.InDelta(t, 2.0/3.0, m.MAE, 1e-12)
	assert.InDelta(t, 4.0/3.0, m.MSE, 1e-12)
	assert.InDelta(t, 1.1547005383792515, m.RMSE, 1e-12)
	// mean 8/3, SStot = 25/9+4/9+49/9 = 78/9, SSres = 4
	assert.InDelta(t, 1-4/(78.0/9.0), m.R2, 1e-12)
	assert.InDelta(t, (2.0/3.0)/4.0, m.NMAE, 1e-12)
	assert.Contains(t, m.String(), "MSE=1.333333")
}

func TestCalculateRegressionMetricsDegenerate(t *testing.T) {
	assert.Equal(t, &RegressionMetrics{}, CalculateRegressionMetrics(nil, nil))
	assert.Equal(t, &RegressionMetrics{}, CalculateRegressionMetrics([]float64{1}, []float64{1, 2}))

	constant := CalculateRegressionMetrics([]float64{1, 2}, []float64{3, 3})
	assert.Zero(t, constant.R2)
	assert.Zero(t, constant.NMAE)
}
