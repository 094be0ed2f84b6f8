package render

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/tsawler/go-curvefit/widgets"
)

// EventSource supplies input events. Poll never blocks: it returns the
// events that arrived since the last call and whether more may follow.
type EventSource interface {
	Poll() (events []widgets.Event, open bool)
}

// ScriptSource turns newline-separated commands into events:
//
//	type TEXT    one key event per rune of TEXT
//	enter        Enter key
//	backspace    Backspace key
//	click X Y    press at (X, Y), release on the next poll
//	press X Y    press at (X, Y); the primary button stays held
//	move X Y     pointer motion to (X, Y)
//	release      release the primary button
//	wait N       deliver nothing for N polls
//	quit         quit event
//
// Blank lines and lines starting with # are ignored.
type ScriptSource struct {
	commands chan string

	mu      sync.Mutex
	err     error
	line    int
	wait    int
	held    bool
	cursor  image.Point
	closed  bool
	pending []widgets.Event
}

// NewScriptSource starts reading commands from r in the background.
func NewScriptSource(r io.Reader) *ScriptSource {
	ss := &ScriptSource{commands: make(chan string, 256)}

	go func() {
		defer close(ss.commands)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			ss.commands <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			ss.setErr(fmt.Errorf("reading script: %w", err))
		}
	}()

	return ss
}

// Poll implements EventSource. A malformed command stops the script; the
// error is available from Err.
func (ss *ScriptSource) Poll() ([]widgets.Event, bool) {
	if ss.closed {
		return nil, false
	}
	if ss.wait > 0 {
		ss.wait--
		return nil, true
	}

	events := ss.pending
	ss.pending = nil
	for {
		select {
		case cmd, ok := <-ss.commands:
			if !ok {
				ss.closed = true
				return events, false
			}
			ss.line++
			evs, err := ss.parse(cmd)
			if err != nil {
				ss.setErr(fmt.Errorf("script line %d: %w", ss.line, err))
				ss.closed = true
				return events, false
			}
			events = append(events, evs...)
			if ss.wait > 0 || len(ss.pending) > 0 {
				return events, true
			}
		default:
			return events, true
		}
	}
}

// Err returns the error that ended the script, if any.
func (ss *ScriptSource) Err() error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.err
}

func (ss *ScriptSource) setErr(err error) {
	ss.mu.Lock()
	if ss.err == nil {
		ss.err = err
	}
	ss.mu.Unlock()
}

func (ss *ScriptSource) parse(line string) ([]widgets.Event, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "type":
		var events []widgets.Event
		for _, r := range arg {
			events = append(events, widgets.TypeRune(r))
		}
		return events, nil
	case "enter":
		return []widgets.Event{widgets.Enter()}, nil
	case "backspace":
		return []widgets.Event{widgets.Backspace()}, nil
	case "click", "press", "move":
		p, err := parsePoint(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		ss.cursor = p
		switch cmd {
		case "click":
			// The release waits for the next frame so the press is drawn.
			ss.pending = append(ss.pending, widgets.Release(p.X, p.Y))
			return []widgets.Event{widgets.Press(p.X, p.Y)}, nil
		case "press":
			ss.held = true
			return []widgets.Event{widgets.Press(p.X, p.Y)}, nil
		default:
			return []widgets.Event{widgets.Motion(p.X, p.Y, ss.held)}, nil
		}
	case "release":
		ss.held = false
		return []widgets.Event{widgets.Release(ss.cursor.X, ss.cursor.Y)}, nil
	case "wait":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("wait: invalid frame count %q", arg)
		}
		ss.wait = n
		return nil, nil
	case "quit":
		return []widgets.Event{{Type: widgets.Quit}}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func parsePoint(arg string) (image.Point, error) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return image.Point{}, fmt.Errorf("want X Y, got %q", arg)
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return image.Point{}, err
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(x, y), nil
}

// SliceSource replays fixed batches of events, one batch per poll.
type SliceSource struct {
	batches [][]widgets.Event
}

// NewSliceSource returns a source that yields batches in order.
func NewSliceSource(batches ...[]widgets.Event) *SliceSource {
	return &SliceSource{batches: batches}
}

// Poll implements EventSource.
func (s *SliceSource) Poll() ([]widgets.Event, bool) {
	if len(s.batches) == 0 {
		return nil, false
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, true
}
