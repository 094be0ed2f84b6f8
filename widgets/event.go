package widgets

import "image"

// EventType identifies what an Event describes.
type EventType int

const (
	PointerPress EventType = iota
	PointerRelease
	PointerMotion
	KeyPress
	Quit
)

func (et EventType) String() string {
	switch et {
	case PointerPress:
		return "PointerPress"
	case PointerRelease:
		return "PointerRelease"
	case PointerMotion:
		return "PointerMotion"
	case KeyPress:
		return "KeyPress"
	case Quit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Key identifies special keys of a KeyPress event.
type Key int

const (
	KeyRune Key = iota // Rune holds the typed character
	KeyEnter
	KeyBackspace
)

// Event is one input event delivered to widgets.
type Event struct {
	Type EventType

	// Pointer events
	Pos     image.Point // Pointer position
	Primary bool        // Primary button held when the event was produced

	// Key events
	Key  Key
	Rune rune
}

// IsPointer reports whether the event carries a pointer position.
func (e Event) IsPointer() bool {
	return e.Type == PointerPress || e.Type == PointerRelease || e.Type == PointerMotion
}

// Press returns a primary button press at (x, y).
func Press(x, y int) Event {
	return Event{Type: PointerPress, Pos: image.Pt(x, y), Primary: true}
}

// Release returns a primary button release at (x, y).
func Release(x, y int) Event {
	return Event{Type: PointerRelease, Pos: image.Pt(x, y)}
}

// Motion returns a pointer move to (x, y) with the primary button held or not.
func Motion(x, y int, primary bool) Event {
	return Event{Type: PointerMotion, Pos: image.Pt(x, y), Primary: primary}
}

// TypeRune returns a key event for r.
func TypeRune(r rune) Event {
	return Event{Type: KeyPress, Key: KeyRune, Rune: r}
}

// Enter returns an Enter key event.
func Enter() Event {
	return Event{Type: KeyPress, Key: KeyEnter}
}

// Backspace returns a Backspace key event.
func Backspace() Event {
	return Event{Type: KeyPress, Key: KeyBackspace}
}
