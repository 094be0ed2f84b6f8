package layers_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/go-curvefit/layers"
)

func TestLayerTypeString(t *testing.T) {
	assert.Equal(t, "Dense", layers.Dense.String())
	assert.Equal(t, "ReLU", layers.ReLU.String())
	assert.Equal(t, "Unknown", layers.LayerType(42).String())
}

func TestCompileEmptyModel(t *testing.T) {
	_, err := layers.NewModelBuilder([]int{layers.DynamicBatch, 1}).Compile()
	require.Error(t, err)
}

func TestCompileComputesShapesAndParameters(t *testing.T) {
	model, err := layers.NewModelBuilder([]int{layers.DynamicBatch, 1}).
		AddDense(4, true, "fc1").
		AddReLU("relu1").
		AddDense(1, false, "fc2").
		Compile()
	require.NoError(t, err)

	assert.True(t, model.Compiled)
	assert.Equal(t, []int{layers.DynamicBatch, 1}, model.OutputShape)
	// fc1: 1*4 + 4, fc2: 4*1
	assert.Equal(t, int64(12), model.TotalParameters)
	assert.Equal(t, [][]int{{1, 4}, {4}, {4, 1}}, model.ParameterShapes)
	assert.Equal(t, 4, model.Layers[2].InputSize())
	assert.False(t, model.Layers[2].UseBias())
}

func TestCompileRejectsBadDense(t *testing.T) {
	_, err := layers.NewModelBuilder([]int{layers.DynamicBatch, 1}).
		AddDense(0, true, "fc1").
		Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fc1")
}

func TestCompileDoesNotMutateBuilderLayers(t *testing.T) {
	builder := layers.NewModelBuilder([]int{layers.DynamicBatch, 1}).AddDense(3, true, "fc1")
	first, err := builder.Compile()
	require.NoError(t, err)
	second, err := builder.Compile()
	require.NoError(t, err)

	first.Layers[0].Parameters["input_size"] = 99
	assert.Equal(t, 1, second.Layers[0].InputSize())
}

func TestNewRegressionModelSpec(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		depth      int
		wantDense  int
		wantParams int64
	}{
		{"smallest", 1, 1, 3, 2 + 2 + 2},
		{"no hidden blocks", 10, 0, 2, 20 + 11},
		{"default slider", 51, 6, 8, 102 + 6*(51*51+51) + 52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := layers.NewRegressionModelSpec(tt.size, tt.depth)
			require.NoError(t, err)
			require.NoError(t, model.ValidateModelForCPUEngine())

			dense, relu := model.DenseLayers()
			assert.Len(t, dense, tt.wantDense)
			assert.Equal(t, tt.wantParams, model.TotalParameters)
			for i := range relu[:len(relu)-1] {
				assert.True(t, relu[i], "dense layer %d should be followed by ReLU", i)
			}
			assert.False(t, relu[len(relu)-1], "output head must be linear")
		})
	}
}

func TestNewRegressionModelSpecRejectsInvalid(t *testing.T) {
	_, err := layers.NewRegressionModelSpec(0, 1)
	assert.Error(t, err)
	_, err = layers.NewRegressionModelSpec(1, -1)
	assert.Error(t, err)
}

func TestValidateModelForCPUEngine(t *testing.T) {
	notCompiled := &layers.ModelSpec{}
	assert.Error(t, notCompiled.ValidateModelForCPUEngine())

	twoActivations, err := layers.NewModelBuilder([]int{layers.DynamicBatch, 1}).
		AddDense(2, true, "fc1").
		AddReLU("a").
		AddReLU("b").
		AddDense(1, true, "fc2").
		Compile()
	require.NoError(t, err)
	assert.Error(t, twoActivations.ValidateModelForCPUEngine())

	wideOutput, err := layers.NewModelBuilder([]int{layers.DynamicBatch, 1}).
		AddDense(2, true, "fc1").
		Compile()
	require.NoError(t, err)
	assert.Error(t, wideOutput.ValidateModelForCPUEngine())
}

func TestSummary(t *testing.T) {
	model, err := layers.NewRegressionModelSpec(2, 1)
	require.NoError(t, err)

	summary := model.Summary()
	assert.True(t, strings.HasPrefix(summary, "Model Summary:"))
	assert.Contains(t, summary, "Total Parameters: 13")
	assert.Contains(t, summary, "hidden1 (Dense)")

	assert.Equal(t, "Model not compiled", (&layers.ModelSpec{}).Summary())
}
