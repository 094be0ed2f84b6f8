package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tsawler/go-curvefit/session"
	"github.com/tsawler/go-curvefit/widgets"
)

// Frame is everything presented for one iteration of the loop.
type Frame struct {
	Number          int
	Training        bool
	Hyperparameters session.Display
	Dataset         []session.Sample
	Predictions     []session.Sample
	Ops             []DrawOp
}

// EncodeFrame converts a frame to a protobuf Struct with the keys frame,
// training, hyperparameters, dataset, predictions and ops.
func EncodeFrame(f *Frame) (*structpb.Struct, error) {
	ops := make([]interface{}, len(f.Ops))
	for i, op := range f.Ops {
		ops[i] = encodeOp(op)
	}

	s, err := structpb.NewStruct(map[string]interface{}{
		"frame":    f.Number,
		"training": f.Training,
		"hyperparameters": map[string]interface{}{
			"size":          f.Hyperparameters.Size,
			"depth":         f.Hyperparameters.Depth,
			"learning_rate": f.Hyperparameters.LearningRate,
			"epochs":        f.Hyperparameters.Epochs,
		},
		"dataset":     encodeSamples(f.Dataset),
		"predictions": encodeSamples(f.Predictions),
		"ops":         ops,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame %d: %w", f.Number, err)
	}
	return s, nil
}

func encodeSamples(samples []session.Sample) map[string]interface{} {
	xs := make([]interface{}, len(samples))
	ys := make([]interface{}, len(samples))
	for i, s := range samples {
		xs[i] = s.X
		ys[i] = s.Y
	}
	return map[string]interface{}{"x": xs, "y": ys}
}

func encodeOp(op DrawOp) map[string]interface{} {
	m := map[string]interface{}{
		"kind": string(op.Kind),
	}
	switch op.Kind {
	case OpFill:
		m["color"] = encodeColor(op.Color)
	case OpFillRect, OpStrokeRect:
		m["rect"] = encodeRect(op.Rect)
		m["color"] = encodeColor(op.Color)
		m["radius"] = op.Radius
		m["width"] = op.Width
	case OpText:
		m["text"] = op.Text
		m["at"] = []interface{}{op.At.X, op.At.Y}
		m["font"] = int(op.Font)
		m["color"] = encodeColor(op.Color)
	case OpPlot:
		m["rect"] = encodeRect(op.Rect)
	}
	return m
}

func encodeRect(r image.Rectangle) []interface{} {
	return []interface{}{r.Min.X, r.Min.Y, r.Dx(), r.Dy()}
}

func encodeColor(c color.RGBA) []interface{} {
	return []interface{}{int(c.R), int(c.G), int(c.B), int(c.A)}
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(s *structpb.Struct) (*Frame, error) {
	fields := s.GetFields()

	f := &Frame{
		Number:   int(fields["frame"].GetNumberValue()),
		Training: fields["training"].GetBoolValue(),
	}

	hp := fields["hyperparameters"].GetStructValue().GetFields()
	f.Hyperparameters = session.Display{
		Size:         hp["size"].GetStringValue(),
		Depth:        hp["depth"].GetStringValue(),
		LearningRate: hp["learning_rate"].GetStringValue(),
		Epochs:       hp["epochs"].GetStringValue(),
	}

	var err error
	if f.Dataset, err = decodeSamples(fields["dataset"]); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	if f.Predictions, err = decodeSamples(fields["predictions"]); err != nil {
		return nil, fmt.Errorf("predictions: %w", err)
	}

	for i, v := range fields["ops"].GetListValue().GetValues() {
		op, err := decodeOp(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		f.Ops = append(f.Ops, op)
	}
	return f, nil
}

func decodeSamples(v *structpb.Value) ([]session.Sample, error) {
	fields := v.GetStructValue().GetFields()
	xs := fields["x"].GetListValue().GetValues()
	ys := fields["y"].GetListValue().GetValues()
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%d x values, %d y values", len(xs), len(ys))
	}

	out := make([]session.Sample, len(xs))
	for i := range xs {
		out[i] = session.Sample{X: xs[i].GetNumberValue(), Y: ys[i].GetNumberValue()}
	}
	return out, nil
}

func decodeOp(s *structpb.Struct) (DrawOp, error) {
	fields := s.GetFields()
	op := DrawOp{Kind: OpKind(fields["kind"].GetStringValue())}

	switch op.Kind {
	case OpFill:
		op.Color = decodeColor(fields["color"])
	case OpFillRect, OpStrokeRect:
		op.Rect = decodeRect(fields["rect"])
		op.Color = decodeColor(fields["color"])
		op.Radius = int(fields["radius"].GetNumberValue())
		op.Width = int(fields["width"].GetNumberValue())
	case OpText:
		op.Text = fields["text"].GetStringValue()
		at := ints(fields["at"], 2)
		op.At = image.Pt(at[0], at[1])
		op.Font = widgets.Font(fields["font"].GetNumberValue())
		op.Color = decodeColor(fields["color"])
	case OpPlot:
		op.Rect = decodeRect(fields["rect"])
	default:
		return op, fmt.Errorf("unknown op kind %q", op.Kind)
	}
	return op, nil
}

func ints(v *structpb.Value, n int) []int {
	out := make([]int, n)
	for i, e := range v.GetListValue().GetValues() {
		if i >= n {
			break
		}
		out[i] = int(e.GetNumberValue())
	}
	return out
}

func decodeRect(v *structpb.Value) image.Rectangle {
	r := ints(v, 4)
	return image.Rect(r[0], r[1], r[0]+r[2], r[1]+r[3])
}

func decodeColor(v *structpb.Value) color.RGBA {
	c := ints(v, 4)
	return color.RGBA{uint8(c[0]), uint8(c[1]), uint8(c[2]), uint8(c[3])}
}

// WriteFrame encodes f and writes it to w as one size-delimited message.
func WriteFrame(w io.Writer, f *Frame) error {
	s, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	if _, err := protodelim.MarshalTo(w, s); err != nil {
		return fmt.Errorf("failed to write frame %d: %w", f.Number, err)
	}
	return nil
}

// FrameReader reads frames written by WriteFrame.
type FrameReader struct {
	r *bufio.Reader
}

// NewFrameReader wraps r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// Next returns the next frame, or io.EOF after the last one.
func (fr *FrameReader) Next() (*Frame, error) {
	var s structpb.Struct
	if err := protodelim.UnmarshalFrom(fr.r, &s); err != nil {
		return nil, err
	}
	return DecodeFrame(&s)
}
