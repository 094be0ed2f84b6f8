package widgets

import (
	"image"
	"image/color"
)

// Font selects one of the two text sizes used on screen.
type Font int

const (
	TitleFont Font = 32
	ValueFont Font = 16
)

// TextMeasurer reports the rendered size of text.
type TextMeasurer interface {
	MeasureText(text string, font Font) image.Point
}

// Surface receives drawing operations. Implementations decide how (or
// whether) they are rasterized.
type Surface interface {
	TextMeasurer
	Fill(c color.RGBA)
	FillRect(r image.Rectangle, c color.RGBA, radius int)
	StrokeRect(r image.Rectangle, c color.RGBA, width int)
	DrawText(text string, at image.Point, font Font, c color.RGBA)
}

// Palette
var (
	Background    = color.RGBA{54, 52, 55, 255}
	White         = color.RGBA{255, 255, 255, 255}
	ValueGrey     = color.RGBA{100, 100, 100, 255}
	Accent        = color.RGBA{1, 161, 255, 255}
	AccentPressed = color.RGBA{0, 99, 151, 255}
	TrackColor    = color.RGBA{29, 27, 30, 255}
)

// Dim returns c at half brightness, used for disabled widgets.
func Dim(c color.RGBA) color.RGBA {
	return color.RGBA{c.R / 2, c.G / 2, c.B / 2, c.A}
}

// Widget is an interactive element of the control panel.
type Widget interface {
	HandleEvent(ev Event)
	Update()
	Draw(s Surface)
	SetEnabled(enabled bool)
}

// Gate wraps fn so that it does nothing while busy reports true.
func Gate[T any](busy func() bool, fn func(T)) func(T) {
	return func(v T) {
		if busy() {
			return
		}
		fn(v)
	}
}

// GateAction is Gate for callbacks without an argument.
func GateAction(busy func() bool, fn func()) func() {
	return func() {
		if busy() {
			return
		}
		fn()
	}
}
