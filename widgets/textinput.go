package widgets

import (
	"image"
	"image/color"
	"unicode/utf8"
)

// TextInput is a single-line text box. A press inside toggles focus, a
// press outside removes it. While focused, typed runes are appended,
// Backspace deletes the last rune and Enter submits the text and clears it.
type TextInput struct {
	rect     image.Rectangle
	minWidth int
	measure  TextMeasurer
	onSubmit func(string)

	colorInactive color.RGBA
	colorActive   color.RGBA
	textColor     color.RGBA

	text    string
	active  bool
	enabled bool
}

// NewTextInput creates a text box at (x, y) of size w×h. Its width grows
// with the text, never shrinking below w.
func NewTextInput(x, y, w, h int, measure TextMeasurer, onSubmit func(string)) *TextInput {
	return &TextInput{
		rect:          image.Rect(x, y, x+w, y+h),
		minWidth:      w,
		measure:       measure,
		onSubmit:      onSubmit,
		colorInactive: Accent,
		colorActive:   AccentPressed,
		textColor:     White,
		enabled:       true,
	}
}

// HandleEvent implements Widget.
func (ti *TextInput) HandleEvent(ev Event) {
	if !ti.enabled {
		return
	}

	switch ev.Type {
	case PointerPress:
		if ev.Pos.In(ti.rect) {
			ti.active = !ti.active
		} else {
			ti.active = false
		}
	case KeyPress:
		if !ti.active {
			return
		}
		switch ev.Key {
		case KeyEnter:
			text := ti.text
			ti.text = ""
			if ti.onSubmit != nil {
				ti.onSubmit(text)
			}
		case KeyBackspace:
			if _, size := utf8.DecodeLastRuneInString(ti.text); size > 0 {
				ti.text = ti.text[:len(ti.text)-size]
			}
		default:
			ti.text += string(ev.Rune)
		}
	}
}

// Update resizes the box to fit its text.
func (ti *TextInput) Update() {
	width := ti.minWidth
	if ti.measure != nil {
		width = max(width, ti.measure.MeasureText(ti.text, TitleFont).X+10)
	}
	ti.rect.Max.X = ti.rect.Min.X + width
}

// Draw implements Widget.
func (ti *TextInput) Draw(s Surface) {
	border, text := ti.colorInactive, ti.textColor
	if ti.active {
		border = ti.colorActive
	}
	if !ti.enabled {
		border, text = Dim(border), Dim(text)
	}

	s.DrawText(ti.text, ti.rect.Min.Add(image.Pt(5, 5)), TitleFont, text)
	s.StrokeRect(ti.rect, border, 2)
}

// SetEnabled implements Widget.
func (ti *TextInput) SetEnabled(enabled bool) {
	ti.enabled = enabled
}

// Text returns the text typed so far.
func (ti *TextInput) Text() string {
	return ti.text
}

// Active reports whether the box has keyboard focus.
func (ti *TextInput) Active() bool {
	return ti.active
}

// Bounds returns the box's current rectangle.
func (ti *TextInput) Bounds() image.Rectangle {
	return ti.rect
}
