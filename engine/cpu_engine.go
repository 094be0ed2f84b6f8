package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/tsawler/go-curvefit/layers"
)

// Parameters holds the learnable tensors of a dense network: one weight
// matrix [in, out] and one bias row [1, out] per Dense layer.
//
// A Parameters value that has been published to a CPUEngine is never
// written again; writers work on a Clone.
type Parameters struct {
	Weights []*mat.Dense
	Biases  []*mat.Dense
}

// Clone returns a deep copy.
func (p *Parameters) Clone() *Parameters {
	out := &Parameters{
		Weights: make([]*mat.Dense, len(p.Weights)),
		Biases:  make([]*mat.Dense, len(p.Biases)),
	}
	for i := range p.Weights {
		out.Weights[i] = mat.DenseCopyOf(p.Weights[i])
		out.Biases[i] = mat.DenseCopyOf(p.Biases[i])
	}
	return out
}

// Tensors flattens the parameters as w0, b0, w1, b1, ... for optimizers.
func (p *Parameters) Tensors() []*mat.Dense {
	out := make([]*mat.Dense, 0, 2*len(p.Weights))
	for i := range p.Weights {
		out = append(out, p.Weights[i], p.Biases[i])
	}
	return out
}

// Count returns the number of scalar parameters.
func (p *Parameters) Count() int {
	n := 0
	for _, t := range p.Tensors() {
		r, c := t.Dims()
		n += r * c
	}
	return n
}

// CPUEngine runs forward and backward passes of a compiled Dense/ReLU model
// on the CPU.
//
// The engine keeps the current weights behind an atomic pointer. A training
// goroutine publishes a fresh snapshot after every optimizer step while other
// goroutines call Predict; every Predict reads exactly one snapshot, so a
// single forward pass never observes half-applied weights.
type CPUEngine struct {
	spec    *layers.ModelSpec
	relu    []bool
	current atomic.Pointer[Parameters]
}

// NewCPUEngine validates the model and initializes its parameters from a
// random source seeded with seed. Weights and biases of each Dense layer are
// drawn uniformly from (-1/sqrt(fan_in), 1/sqrt(fan_in)).
func NewCPUEngine(spec *layers.ModelSpec, seed int64) (*CPUEngine, error) {
	if spec == nil {
		return nil, fmt.Errorf("model spec cannot be nil")
	}
	if err := spec.ValidateModelForCPUEngine(); err != nil {
		return nil, fmt.Errorf("model not supported by CPU engine: %w", err)
	}

	dense, relu := spec.DenseLayers()
	rng := rand.New(rand.NewSource(seed))

	params := &Parameters{
		Weights: make([]*mat.Dense, len(dense)),
		Biases:  make([]*mat.Dense, len(dense)),
	}
	for i, layer := range dense {
		in, out := layer.InputSize(), layer.OutputSize()
		bound := 1 / math.Sqrt(float64(in))

		w := make([]float64, in*out)
		for j := range w {
			w[j] = (rng.Float64()*2 - 1) * bound
		}
		b := make([]float64, out)
		if layer.UseBias() {
			for j := range b {
				b[j] = (rng.Float64()*2 - 1) * bound
			}
		}

		params.Weights[i] = mat.NewDense(in, out, w)
		params.Biases[i] = mat.NewDense(1, out, b)
	}

	e := &CPUEngine{spec: spec, relu: relu}
	e.current.Store(params)
	return e, nil
}

// Spec returns the compiled model the engine runs.
func (e *CPUEngine) Spec() *layers.ModelSpec {
	return e.spec
}

// Parameters returns the currently published snapshot. Callers must not
// modify it; use Clone to obtain a writable copy.
func (e *CPUEngine) Parameters() *Parameters {
	return e.current.Load()
}

// Publish makes p the snapshot seen by subsequent Predict calls. p must not
// be modified afterwards.
func (e *CPUEngine) Publish(p *Parameters) {
	e.current.Store(p)
}

// Predict evaluates the network at each x using the current snapshot.
func (e *CPUEngine) Predict(xs []float64) []float64 {
	if len(xs) == 0 {
		return []float64{}
	}

	params := e.current.Load()
	out := e.Forward(params, Column(xs))

	ys := make([]float64, len(xs))
	mat.Col(ys, 0, out)
	return ys
}

// Forward runs x ([n, 1]) through the network with the given parameters and
// returns the output [n, 1].
func (e *CPUEngine) Forward(params *Parameters, x *mat.Dense) *mat.Dense {
	acts := e.forwardActivations(params, x)
	return acts[len(acts)-1]
}

// forwardActivations returns the input followed by every layer output.
func (e *CPUEngine) forwardActivations(params *Parameters, x *mat.Dense) []*mat.Dense {
	acts := make([]*mat.Dense, 0, len(params.Weights)+1)
	acts = append(acts, x)

	a := x
	for i, w := range params.Weights {
		var z mat.Dense
		z.Mul(a, w)

		bias := params.Biases[i]
		if e.relu[i] {
			z.Apply(func(_, j int, v float64) float64 {
				return math.Max(v+bias.At(0, j), 0)
			}, &z)
		} else {
			z.Apply(func(_, j int, v float64) float64 {
				return v + bias.At(0, j)
			}, &z)
		}

		a = &z
		acts = append(acts, a)
	}
	return acts
}

// Gradients computes the mean squared error of the network on (x, y) and
// its gradient with respect to every parameter. The returned gradients have
// the same layout as params.
func (e *CPUEngine) Gradients(params *Parameters, x, y *mat.Dense) (float64, *Parameters) {
	acts := e.forwardActivations(params, x)
	out := acts[len(acts)-1]
	n, _ := out.Dims()

	var diff mat.Dense
	diff.Sub(out, y)

	loss := 0.0
	for i := 0; i < n; i++ {
		d := diff.At(i, 0)
		loss += d * d
	}
	loss /= float64(n)

	// dL/dout = 2/n * (out - y)
	dz := mat.NewDense(n, 1, nil)
	dz.Scale(2/float64(n), &diff)

	grads := &Parameters{
		Weights: make([]*mat.Dense, len(params.Weights)),
		Biases:  make([]*mat.Dense, len(params.Biases)),
	}

	for l := len(params.Weights) - 1; l >= 0; l-- {
		var dw mat.Dense
		dw.Mul(acts[l].T(), dz)
		grads.Weights[l] = &dw

		_, cols := dz.Dims()
		db := mat.NewDense(1, cols, nil)
		for j := 0; j < cols; j++ {
			db.Set(0, j, mat.Sum(dz.ColView(j)))
		}
		grads.Biases[l] = db

		if l == 0 {
			break
		}

		var da mat.Dense
		da.Mul(dz, params.Weights[l].T())
		if e.relu[l-1] {
			prev := acts[l]
			da.Apply(func(i, j int, v float64) float64 {
				if prev.At(i, j) > 0 {
					return v
				}
				return 0
			}, &da)
		}
		dz = &da
	}

	return loss, grads
}

// Column copies values into an [n, 1] matrix. values must not be empty.
func Column(values []float64) *mat.Dense {
	data := make([]float64, len(values))
	copy(data, values)
	return mat.NewDense(len(values), 1, data)
}
