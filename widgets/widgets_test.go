package widgets

import (
	"image"
	"image/color"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawOp struct {
	kind  string
	rect  image.Rectangle
	text  string
	at    image.Point
	color color.RGBA
}

// recordingSurface measures every rune as 10×20 pixels and records draws.
type recordingSurface struct {
	ops []drawOp
}

func (rs *recordingSurface) MeasureText(text string, font Font) image.Point {
	return image.Pt(10*utf8.RuneCountInString(text), 20)
}

func (rs *recordingSurface) Fill(c color.RGBA) {
	rs.ops = append(rs.ops, drawOp{kind: "fill", color: c})
}

func (rs *recordingSurface) FillRect(r image.Rectangle, c color.RGBA, radius int) {
	rs.ops = append(rs.ops, drawOp{kind: "fillrect", rect: r, color: c})
}

func (rs *recordingSurface) StrokeRect(r image.Rectangle, c color.RGBA, width int) {
	rs.ops = append(rs.ops, drawOp{kind: "strokerect", rect: r, color: c})
}

func (rs *recordingSurface) DrawText(text string, at image.Point, font Font, c color.RGBA) {
	rs.ops = append(rs.ops, drawOp{kind: "text", text: text, at: at, color: c})
}

func typeString(w Widget, s string) {
	for _, r := range s {
		w.HandleEvent(TypeRune(r))
	}
}

func TestTextInputFocusToggle(t *testing.T) {
	ti := NewTextInput(170, 45, 250, 32, &recordingSurface{}, nil)
	assert.False(t, ti.Active())

	ti.HandleEvent(Press(200, 60))
	assert.True(t, ti.Active())

	ti.HandleEvent(Press(200, 60))
	assert.False(t, ti.Active(), "second press inside toggles focus off")

	ti.HandleEvent(Press(200, 60))
	ti.HandleEvent(Press(10, 10))
	assert.False(t, ti.Active(), "press outside removes focus")
}

func TestTextInputTypingAndSubmit(t *testing.T) {
	var submitted []string
	ti := NewTextInput(170, 45, 250, 32, &recordingSurface{}, func(s string) {
		submitted = append(submitted, s)
	})

	typeString(ti, "ignored")
	assert.Empty(t, ti.Text(), "keys are ignored without focus")

	ti.HandleEvent(Press(171, 46))
	typeString(ti, "1,2x")
	ti.HandleEvent(Backspace())
	assert.Equal(t, "1,2", ti.Text())

	ti.HandleEvent(Enter())
	assert.Equal(t, []string{"1,2"}, submitted)
	assert.Empty(t, ti.Text())

	ti.HandleEvent(Backspace())
	assert.Empty(t, ti.Text())
}

func TestTextInputBackspaceRemovesWholeRune(t *testing.T) {
	ti := NewTextInput(0, 0, 100, 30, nil, nil)
	ti.HandleEvent(Press(1, 1))
	typeString(ti, "aé")
	ti.HandleEvent(Backspace())
	assert.Equal(t, "a", ti.Text())
}

func TestTextInputGrowsWithText(t *testing.T) {
	ti := NewTextInput(170, 45, 250, 32, &recordingSurface{}, nil)
	ti.HandleEvent(Press(171, 46))

	typeString(ti, "12345")
	ti.Update()
	assert.Equal(t, 250, ti.Bounds().Dx())

	typeString(ti, "67890123456789012345678901234")
	ti.Update()
	assert.Equal(t, 34*10+10, ti.Bounds().Dx())

	ti.HandleEvent(Enter())
	ti.Update()
	assert.Equal(t, 250, ti.Bounds().Dx())
}

func TestTextInputDraw(t *testing.T) {
	surface := &recordingSurface{}
	ti := NewTextInput(170, 45, 250, 32, surface, nil)
	ti.HandleEvent(Press(171, 46))
	typeString(ti, "3,4")
	ti.Draw(surface)

	require.Len(t, surface.ops, 2)
	assert.Equal(t, "3,4", surface.ops[0].text)
	assert.Equal(t, image.Pt(175, 50), surface.ops[0].at)
	assert.Equal(t, AccentPressed, surface.ops[1].color)
}

func TestButton(t *testing.T) {
	clicks := 0
	b := NewButton(340, 100, 75, 30, 10, "Del", func() { clicks++ })
	assert.Equal(t, Accent, b.Color())

	b.HandleEvent(Press(10, 10))
	assert.Equal(t, 0, clicks)
	assert.Equal(t, Accent, b.Color())

	b.HandleEvent(Press(350, 110))
	assert.Equal(t, 1, clicks)
	assert.Equal(t, AccentPressed, b.Color())

	b.HandleEvent(Press(10, 10))
	assert.Equal(t, AccentPressed, b.Color(), "a press outside keeps the colour")

	b.HandleEvent(Release(350, 110))
	assert.Equal(t, Accent, b.Color())
	assert.Equal(t, 1, clicks)
}

func TestButtonDrawCentersLabel(t *testing.T) {
	surface := &recordingSurface{}
	b := NewButton(450, 520, 100, 30, 10, "Train", nil)
	b.Draw(surface)

	require.Len(t, surface.ops, 2)
	assert.Equal(t, image.Rect(450, 520, 550, 550), surface.ops[0].rect)
	// centre (500, 535) minus half of 50×20
	assert.Equal(t, image.Pt(475, 525), surface.ops[1].at)
}

func TestSliderInitialHandle(t *testing.T) {
	s := NewSlider(350, 250, 200, nil)
	assert.Equal(t, image.Rect(343, 240, 358, 270), s.Handle())
	assert.Equal(t, image.Rect(350, 250, 550, 260), s.Track())
	assert.Equal(t, 0.0, s.Value())
}

func TestSliderDrag(t *testing.T) {
	var values []float64
	s := NewSlider(350, 250, 200, func(v float64) { values = append(values, v) })

	s.HandleEvent(Motion(450, 255, true))
	assert.Empty(t, values, "held button away from the handle does nothing")

	s.HandleEvent(Press(350, 255))
	s.HandleEvent(Motion(450, 300, true))
	s.HandleEvent(Motion(1000, 300, true))
	s.HandleEvent(Motion(0, 300, true))
	require.Equal(t, []float64{0, 0.5, 1, 0}, values)
	assert.Equal(t, 350, s.Handle().Min.X+handleWidth/2)

	s.HandleEvent(Release(0, 300))
	s.HandleEvent(Motion(500, 300, true))
	assert.Len(t, values, 4, "release ends the drag")
}

func TestSliderIgnoresKeys(t *testing.T) {
	called := false
	s := NewSlider(350, 250, 200, func(float64) { called = true })
	s.HandleEvent(TypeRune('a'))
	assert.False(t, called)
}

func TestDisabledWidgetsIgnoreEvents(t *testing.T) {
	calls := 0
	ti := NewTextInput(0, 0, 100, 30, nil, func(string) { calls++ })
	b := NewButton(0, 0, 100, 30, 10, "x", func() { calls++ })
	s := NewSlider(0, 50, 100, func(float64) { calls++ })

	for _, w := range []Widget{ti, b, s} {
		w.SetEnabled(false)
	}

	ti.HandleEvent(Press(1, 1))
	ti.HandleEvent(Enter())
	b.HandleEvent(Press(1, 1))
	s.HandleEvent(Press(0, 50))
	s.HandleEvent(Motion(50, 50, true))

	assert.Zero(t, calls)
	assert.False(t, ti.Active())

	surface := &recordingSurface{}
	b.Draw(surface)
	assert.Equal(t, Dim(Accent), surface.ops[0].color)
}

func TestGate(t *testing.T) {
	busy := true
	var got []float64
	fn := Gate(func() bool { return busy }, func(v float64) { got = append(got, v) })

	fn(0.25)
	busy = false
	fn(0.5)
	assert.Equal(t, []float64{0.5}, got)

	count := 0
	action := GateAction(func() bool { return busy }, func() { count++ })
	action()
	busy = true
	action()
	assert.Equal(t, 1, count)
}

func TestEventHelpers(t *testing.T) {
	assert.True(t, Press(1, 2).IsPointer())
	assert.True(t, Motion(1, 2, false).IsPointer())
	assert.False(t, Enter().IsPointer())
	assert.Equal(t, "KeyPress", Backspace().Type.String())
	assert.Equal(t, "Quit", Event{Type: Quit}.Type.String())
}
