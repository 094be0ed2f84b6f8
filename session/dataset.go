package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sample is one labeled point.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dataset is the ordered collection of samples the user builds up. It is
// stored as two coordinate sequences that always have equal length once an
// operation returns.
//
// Dataset is not safe for concurrent use; the session owns it on a single
// goroutine and hands fits an immutable Snapshot.
type Dataset struct {
	xs []float64
	ys []float64
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Append parses raw as "x,y" and adds the sample. The x coordinate is pushed
// before the y coordinate is parsed; on any failure the longer sequence is
// trimmed so both stay paired. Fields after the second are ignored.
func (d *Dataset) Append(raw string) error {
	fields := strings.Split(raw, ",")

	x, err := parseCoordinate(fields[0])
	if err != nil {
		d.repair()
		return fmt.Errorf("%w %q: x: %v", ErrMalformedSample, raw, err)
	}
	d.xs = append(d.xs, x)

	if len(fields) < 2 {
		d.repair()
		return fmt.Errorf("%w %q: missing y", ErrMalformedSample, raw)
	}
	y, err := parseCoordinate(fields[1])
	if err != nil {
		d.repair()
		return fmt.Errorf("%w %q: y: %v", ErrMalformedSample, raw, err)
	}
	d.ys = append(d.ys, y)

	return nil
}

func parseCoordinate(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%v is not finite", v)
	}
	return v, nil
}

// repair drops the unmatched trailing coordinate, if any.
func (d *Dataset) repair() {
	switch {
	case len(d.xs) > len(d.ys):
		d.xs = d.xs[:len(d.xs)-1]
	case len(d.ys) > len(d.xs):
		d.ys = d.ys[:len(d.ys)-1]
	}
}

// RemoveLast deletes the most recently added sample.
func (d *Dataset) RemoveLast() error {
	if len(d.xs) == 0 || len(d.ys) == 0 {
		return ErrEmptyDataset
	}
	d.xs = d.xs[:len(d.xs)-1]
	d.ys = d.ys[:len(d.ys)-1]
	return nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return min(len(d.xs), len(d.ys))
}

// Balanced reports whether both coordinate sequences have the same length.
func (d *Dataset) Balanced() bool {
	return len(d.xs) == len(d.ys)
}

// Xs returns a copy of the x coordinates in insertion order.
func (d *Dataset) Xs() []float64 {
	return append([]float64(nil), d.xs...)
}

// Ys returns a copy of the y coordinates in insertion order.
func (d *Dataset) Ys() []float64 {
	return append([]float64(nil), d.ys...)
}

// Snapshot returns copies of both coordinate sequences. Later edits to the
// dataset do not affect them.
func (d *Dataset) Snapshot() ([]float64, []float64) {
	return d.Xs(), d.Ys()
}

// Samples returns the dataset as pairs.
func (d *Dataset) Samples() []Sample {
	out := make([]Sample, d.Len())
	for i := range out {
		out[i] = Sample{X: d.xs[i], Y: d.ys[i]}
	}
	return out
}

// Bounds returns the smallest and largest x. ok is false for an empty
// dataset.
func (d *Dataset) Bounds() (lo, hi float64, ok bool) {
	if len(d.xs) == 0 {
		return 0, 0, false
	}
	lo, hi = d.xs[0], d.xs[0]
	for _, x := range d.xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, true
}
