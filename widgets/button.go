package widgets

import (
	"image"
	"image/color"
)

// Button invokes its callback when pressed. It shows the pressed colour
// from a press inside it until the next non-press event.
type Button struct {
	rect    image.Rectangle
	radius  int
	label   string
	onClick func()

	buttonColor color.RGBA
	clickColor  color.RGBA
	textColor   color.RGBA

	color   color.RGBA
	enabled bool
}

// NewButton creates a w×h button at (x, y) with rounded corners.
func NewButton(x, y, w, h, radius int, label string, onClick func()) *Button {
	return &Button{
		rect:        image.Rect(x, y, x+w, y+h),
		radius:      radius,
		label:       label,
		onClick:     onClick,
		buttonColor: Accent,
		clickColor:  AccentPressed,
		textColor:   White,
		color:       Accent,
		enabled:     true,
	}
}

// HandleEvent implements Widget.
func (b *Button) HandleEvent(ev Event) {
	if !b.enabled {
		return
	}

	if ev.Type != PointerPress {
		b.color = b.buttonColor
		return
	}
	if ev.Pos.In(b.rect) {
		b.color = b.clickColor
		if b.onClick != nil {
			b.onClick()
		}
	}
}

// Update implements Widget.
func (b *Button) Update() {}

// Draw implements Widget.
func (b *Button) Draw(s Surface) {
	fill, text := b.color, b.textColor
	if !b.enabled {
		fill, text = Dim(fill), Dim(text)
	}

	s.FillRect(b.rect, fill, b.radius)

	size := s.MeasureText(b.label, TitleFont)
	center := b.rect.Min.Add(b.rect.Size().Div(2))
	s.DrawText(b.label, center.Sub(size.Div(2)), TitleFont, text)
}

// SetEnabled implements Widget.
func (b *Button) SetEnabled(enabled bool) {
	b.enabled = enabled
}

// Color returns the current fill colour.
func (b *Button) Color() color.RGBA {
	return b.color
}

// Label returns the button text.
func (b *Button) Label() string {
	return b.label
}
