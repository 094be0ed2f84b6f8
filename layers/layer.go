package layers

import (
	"fmt"
	"strings"
)

// LayerType represents the type of neural network layer
type LayerType int

const (
	Dense LayerType = iota
	ReLU
)

func (lt LayerType) String() string {
	switch lt {
	case Dense:
		return "Dense"
	case ReLU:
		return "ReLU"
	default:
		return "Unknown"
	}
}

// DynamicBatch marks the batch dimension of a shape whose size is only known
// when data is fed through the model.
const DynamicBatch = -1

// LayerSpec defines layer configuration for the engine.
// This is pure configuration - no execution logic
type LayerSpec struct {
	Type       LayerType              `json:"type"`
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`

	// Shape information (computed during model compilation)
	InputShape  []int `json:"input_shape,omitempty"`
	OutputShape []int `json:"output_shape,omitempty"`

	// Parameter metadata (computed during model compilation)
	ParameterShapes [][]int `json:"parameter_shapes,omitempty"`
	ParameterCount  int64   `json:"parameter_count,omitempty"`
}

// InputSize returns the fan-in of a compiled Dense layer.
func (ls LayerSpec) InputSize() int {
	return getIntParam(ls.Parameters, "input_size", 0)
}

// OutputSize returns the fan-out of a Dense layer.
func (ls LayerSpec) OutputSize() int {
	return getIntParam(ls.Parameters, "output_size", 0)
}

// UseBias reports whether a Dense layer carries a bias vector.
func (ls LayerSpec) UseBias() bool {
	return getBoolParam(ls.Parameters, "use_bias", true)
}

// ModelSpec defines a complete neural network model as layer configuration
type ModelSpec struct {
	Layers []LayerSpec `json:"layers"`

	// Compiled model information
	TotalParameters int64   `json:"total_parameters"`
	ParameterShapes [][]int `json:"parameter_shapes"`
	InputShape      []int   `json:"input_shape"`
	OutputShape     []int   `json:"output_shape"`
	Compiled        bool    `json:"compiled"`
}

// ModelBuilder helps construct neural network models
type ModelBuilder struct {
	layers     []LayerSpec
	inputShape []int
	compiled   bool
}

// NewModelBuilder creates a new model builder
func NewModelBuilder(inputShape []int) *ModelBuilder {
	return &ModelBuilder{
		layers:     make([]LayerSpec, 0),
		inputShape: inputShape,
		compiled:   false,
	}
}

// AddLayer adds a layer to the model
func (mb *ModelBuilder) AddLayer(layer LayerSpec) *ModelBuilder {
	mb.layers = append(mb.layers, layer)
	mb.compiled = false // Invalidate compilation
	return mb
}

// AddDense adds a dense layer to the model
func (mb *ModelBuilder) AddDense(outputSize int, useBias bool, name string) *ModelBuilder {
	// Input size will be computed during compilation
	layer := LayerSpec{
		Type: Dense,
		Name: name,
		Parameters: map[string]interface{}{
			"output_size": outputSize,
			"use_bias":    useBias,
		},
	}
	return mb.AddLayer(layer)
}

// AddReLU adds a ReLU activation to the model
func (mb *ModelBuilder) AddReLU(name string) *ModelBuilder {
	layer := LayerSpec{
		Type:       ReLU,
		Name:       name,
		Parameters: map[string]interface{}{},
	}
	return mb.AddLayer(layer)
}

// Compile compiles the model and computes shapes and parameter counts
func (mb *ModelBuilder) Compile() (*ModelSpec, error) {
	if len(mb.layers) == 0 {
		return nil, fmt.Errorf("cannot compile empty model")
	}

	model := &ModelSpec{
		Layers:     make([]LayerSpec, len(mb.layers)),
		InputShape: mb.inputShape,
		Compiled:   false,
	}

	// Parameters maps are written during compilation, so each compile works
	// on its own copy.
	for i, layer := range mb.layers {
		params := make(map[string]interface{}, len(layer.Parameters)+1)
		for k, v := range layer.Parameters {
			params[k] = v
		}
		layer.Parameters = params
		model.Layers[i] = layer
	}

	currentShape := mb.inputShape
	var allParameterShapes [][]int
	totalParams := int64(0)

	for i := range model.Layers {
		layer := &model.Layers[i]

		layer.InputShape = make([]int, len(currentShape))
		copy(layer.InputShape, currentShape)

		outputShape, paramShapes, paramCount, err := mb.computeLayerInfo(layer, currentShape)
		if err != nil {
			return nil, fmt.Errorf("failed to compute layer %d (%s) info: %w", i, layer.Name, err)
		}

		layer.OutputShape = outputShape
		layer.ParameterShapes = paramShapes
		layer.ParameterCount = paramCount

		allParameterShapes = append(allParameterShapes, paramShapes...)
		totalParams += paramCount

		currentShape = outputShape
	}

	model.OutputShape = currentShape
	model.ParameterShapes = allParameterShapes
	model.TotalParameters = totalParams
	model.Compiled = true
	mb.compiled = true

	return model, nil
}

// computeLayerInfo computes output shape and parameter information for a layer
func (mb *ModelBuilder) computeLayerInfo(layer *LayerSpec, inputShape []int) ([]int, [][]int, int64, error) {
	switch layer.Type {
	case Dense:
		return mb.computeDenseInfo(layer, inputShape)
	case ReLU:
		return mb.computeActivationInfo(layer, inputShape)
	default:
		return nil, nil, 0, fmt.Errorf("unsupported layer type: %s", layer.Type.String())
	}
}

// computeDenseInfo computes dense layer information
func (mb *ModelBuilder) computeDenseInfo(layer *LayerSpec, inputShape []int) ([]int, [][]int, int64, error) {
	if len(inputShape) != 2 {
		return nil, nil, 0, fmt.Errorf("dense layer requires 2D input [batch, features]")
	}

	outputSize, ok := layer.Parameters["output_size"].(int)
	if !ok {
		return nil, nil, 0, fmt.Errorf("missing output_size parameter")
	}
	if outputSize <= 0 {
		return nil, nil, 0, fmt.Errorf("output_size must be positive, got %d", outputSize)
	}

	useBias := getBoolParam(layer.Parameters, "use_bias", true)

	inputSize := inputShape[1]
	layer.Parameters["input_size"] = inputSize

	outputShape := []int{inputShape[0], outputSize}

	var paramShapes [][]int
	paramCount := int64(0)

	// Weight matrix: [inputSize, outputSize]
	paramShapes = append(paramShapes, []int{inputSize, outputSize})
	paramCount += int64(inputSize * outputSize)

	if useBias {
		paramShapes = append(paramShapes, []int{outputSize})
		paramCount += int64(outputSize)
	}

	return outputShape, paramShapes, paramCount, nil
}

// computeActivationInfo computes activation layer information (no parameters)
func (mb *ModelBuilder) computeActivationInfo(layer *LayerSpec, inputShape []int) ([]int, [][]int, int64, error) {
	outputShape := make([]int, len(inputShape))
	copy(outputShape, inputShape)

	return outputShape, [][]int{}, 0, nil
}

// NewRegressionModelSpec compiles the scalar-in, scalar-out network used for
// curve fitting: an input block Linear(1, size)+ReLU, depth hidden blocks of
// Linear(size, size)+ReLU and a Linear(size, 1) head.
func NewRegressionModelSpec(size, depth int) (*ModelSpec, error) {
	if size <= 0 {
		return nil, fmt.Errorf("model size must be positive, got %d", size)
	}
	if depth < 0 {
		return nil, fmt.Errorf("model depth must be non-negative, got %d", depth)
	}

	builder := NewModelBuilder([]int{DynamicBatch, 1}).
		AddDense(size, true, "input").
		AddReLU("input_relu")
	for i := 0; i < depth; i++ {
		builder.
			AddDense(size, true, fmt.Sprintf("hidden%d", i+1)).
			AddReLU(fmt.Sprintf("hidden%d_relu", i+1))
	}
	builder.AddDense(1, true, "output")

	return builder.Compile()
}

// DenseLayers returns the compiled Dense layers in order, each paired with
// whether a ReLU follows it.
func (ms *ModelSpec) DenseLayers() ([]LayerSpec, []bool) {
	var dense []LayerSpec
	var relu []bool
	for _, layer := range ms.Layers {
		switch layer.Type {
		case Dense:
			dense = append(dense, layer)
			relu = append(relu, false)
		case ReLU:
			if len(relu) > 0 {
				relu[len(relu)-1] = true
			}
		}
	}
	return dense, relu
}

// ValidateModelForCPUEngine checks that the model is a chain of Dense layers
// with optional ReLU activations, scalar input and scalar output.
func (ms *ModelSpec) ValidateModelForCPUEngine() error {
	if !ms.Compiled {
		return fmt.Errorf("model not compiled")
	}

	if len(ms.Layers) == 0 {
		return fmt.Errorf("empty model")
	}

	if ms.Layers[0].Type != Dense {
		return fmt.Errorf("first layer must be Dense, got %s", ms.Layers[0].Type)
	}

	prevActivation := false
	for i, layer := range ms.Layers {
		switch layer.Type {
		case Dense:
			prevActivation = false
		case ReLU:
			if prevActivation {
				return fmt.Errorf("layer %d (%s): consecutive activations are not supported", i, layer.Name)
			}
			prevActivation = true
		default:
			return fmt.Errorf("layer %d (%s): unsupported layer type %s", i, layer.Name, layer.Type)
		}
	}

	if len(ms.InputShape) != 2 || ms.InputShape[1] != 1 {
		return fmt.Errorf("CPU engine requires input shape [batch, 1], got %v", ms.InputShape)
	}
	if len(ms.OutputShape) != 2 || ms.OutputShape[1] != 1 {
		return fmt.Errorf("CPU engine requires output shape [batch, 1], got %v", ms.OutputShape)
	}

	return nil
}

// Summary returns a human-readable model summary
func (ms *ModelSpec) Summary() string {
	if !ms.Compiled {
		return "Model not compiled"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Model Summary:\n")
	fmt.Fprintf(&sb, "Input Shape: %v\n", ms.InputShape)
	fmt.Fprintf(&sb, "Output Shape: %v\n", ms.OutputShape)
	fmt.Fprintf(&sb, "Total Parameters: %d\n", ms.TotalParameters)
	fmt.Fprintf(&sb, "Layers: %d\n\n", len(ms.Layers))

	for i, layer := range ms.Layers {
		fmt.Fprintf(&sb, "Layer %d: %s (%s)\n", i+1, layer.Name, layer.Type.String())
		fmt.Fprintf(&sb, "  Input:  %v\n", layer.InputShape)
		fmt.Fprintf(&sb, "  Output: %v\n", layer.OutputShape)
		fmt.Fprintf(&sb, "  Params: %d\n\n", layer.ParameterCount)
	}

	return sb.String()
}

func getIntParam(params map[string]interface{}, key string, defaultValue int) int {
	if val, ok := params[key].(int); ok {
		return val
	}
	return defaultValue
}

func getBoolParam(params map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := params[key].(bool); ok {
		return val
	}
	return defaultValue
}
