package widgets

import (
	"image"
	"image/color"
)

const (
	handleWidth  = 15
	handleHeight = 30
	trackHeight  = 10
)

// Slider maps a horizontal handle position on a track to a value in
// [0, 1]. Dragging starts with the primary button held over the handle and
// lasts until the button is released.
type Slider struct {
	track    image.Rectangle
	handle   image.Rectangle
	onChange func(float64)

	handleColor color.RGBA
	trackColor  color.RGBA

	value    float64
	dragging bool
	enabled  bool
}

// NewSlider creates a slider whose track starts at (x, y) and is length
// pixels long. The handle starts at the track's left end.
func NewSlider(x, y, length int, onChange func(float64)) *Slider {
	s := &Slider{
		track:       image.Rect(x, y, x+length, y+trackHeight),
		onChange:    onChange,
		handleColor: Accent,
		trackColor:  TrackColor,
		enabled:     true,
	}
	s.placeHandle(x)
	return s
}

// placeHandle centres the handle horizontally on cx.
func (s *Slider) placeHandle(cx int) {
	minX := cx - handleWidth/2
	minY := s.track.Min.Y - (handleHeight-trackHeight)/2
	s.handle = image.Rect(minX, minY, minX+handleWidth, minY+handleHeight)
}

// HandleEvent implements Widget.
func (s *Slider) HandleEvent(ev Event) {
	if !s.enabled || !ev.IsPointer() {
		return
	}

	if !ev.Primary {
		s.dragging = false
		return
	}

	if ev.Pos.In(s.handle) {
		s.dragging = true
	}
	if !s.dragging {
		return
	}

	cx := min(max(ev.Pos.X, s.track.Min.X), s.track.Max.X)
	s.placeHandle(cx)
	s.value = float64(cx-s.track.Min.X) / float64(s.track.Dx())

	if s.onChange != nil {
		s.onChange(s.value)
	}
}

// Update implements Widget.
func (s *Slider) Update() {}

// Draw implements Widget.
func (s *Slider) Draw(surface Surface) {
	track, handle := s.trackColor, s.handleColor
	if !s.enabled {
		track, handle = Dim(track), Dim(handle)
	}
	surface.FillRect(s.track, track, 5)
	surface.FillRect(s.handle, handle, 20)
}

// SetEnabled implements Widget.
func (s *Slider) SetEnabled(enabled bool) {
	s.enabled = enabled
	if !enabled {
		s.dragging = false
	}
}

// Value returns the last value reported to the callback.
func (s *Slider) Value() float64 {
	return s.value
}

// Handle returns the handle's rectangle.
func (s *Slider) Handle() image.Rectangle {
	return s.handle
}

// Track returns the track's rectangle.
func (s *Slider) Track() image.Rectangle {
	return s.track
}
