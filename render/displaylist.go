package render

import (
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/tsawler/go-curvefit/widgets"
)

// OpKind names a drawing operation.
type OpKind string

const (
	OpFill       OpKind = "fill"
	OpFillRect   OpKind = "fill_rect"
	OpStrokeRect OpKind = "stroke_rect"
	OpText       OpKind = "text"
	OpPlot       OpKind = "plot"
)

// DrawOp is one recorded drawing operation.
type DrawOp struct {
	Kind   OpKind
	Rect   image.Rectangle
	At     image.Point
	Text   string
	Font   widgets.Font
	Color  color.RGBA
	Radius int
	Width  int
}

// DisplayList is a widgets.Surface that records operations instead of
// rasterizing them. Text is measured with fixed glyph metrics: every rune is
// half the font size wide.
type DisplayList struct {
	ops []DrawOp
}

// NewDisplayList returns an empty display list.
func NewDisplayList() *DisplayList {
	return &DisplayList{}
}

// Reset drops all recorded operations, keeping the allocation.
func (dl *DisplayList) Reset() {
	dl.ops = dl.ops[:0]
}

// Ops returns a copy of the recorded operations.
func (dl *DisplayList) Ops() []DrawOp {
	return append([]DrawOp(nil), dl.ops...)
}

// MeasureText implements widgets.TextMeasurer.
func (dl *DisplayList) MeasureText(text string, font widgets.Font) image.Point {
	size := int(font)
	return image.Pt(utf8.RuneCountInString(text)*size/2, size*3/4)
}

// Fill implements widgets.Surface.
func (dl *DisplayList) Fill(c color.RGBA) {
	dl.ops = append(dl.ops, DrawOp{Kind: OpFill, Color: c})
}

// FillRect implements widgets.Surface.
func (dl *DisplayList) FillRect(r image.Rectangle, c color.RGBA, radius int) {
	dl.ops = append(dl.ops, DrawOp{Kind: OpFillRect, Rect: r, Color: c, Radius: radius})
}

// StrokeRect implements widgets.Surface.
func (dl *DisplayList) StrokeRect(r image.Rectangle, c color.RGBA, width int) {
	dl.ops = append(dl.ops, DrawOp{Kind: OpStrokeRect, Rect: r, Color: c, Width: width})
}

// DrawText implements widgets.Surface.
func (dl *DisplayList) DrawText(text string, at image.Point, font widgets.Font, c color.RGBA) {
	dl.ops = append(dl.ops, DrawOp{Kind: OpText, At: at, Text: text, Font: font, Color: c})
}

// DrawPlot reserves r for the dataset/prediction plot.
func (dl *DisplayList) DrawPlot(r image.Rectangle) {
	dl.ops = append(dl.ops, DrawOp{Kind: OpPlot, Rect: r})
}
