package render

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/tsawler/go-curvefit/session"
	"github.com/tsawler/go-curvefit/widgets"
)

// LoopConfig controls the frame loop.
type LoopConfig struct {
	FPS int `json:"fps"` // Frames per second

	// LogOutput receives loop logs; nil means os.Stderr.
	LogOutput io.Writer `json:"-"`
}

// DefaultLoopConfig returns a 30 fps loop.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{FPS: 30}
}

// Loop drives one session: each frame it drains input, updates and draws
// the panel, samples the model while it trains and presents the result.
type Loop struct {
	config    LoopConfig
	session   *session.Session
	source    EventSource
	presenter Presenter
	logger    *log.Logger

	display     *DisplayList
	panel       *Panel
	frame       int
	wasTraining bool
	sourceOpen  bool
}

// NewLoop creates a loop over sess reading from source and presenting to
// presenter.
func NewLoop(config LoopConfig, sess *session.Session, source EventSource, presenter Presenter) (*Loop, error) {
	if config.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", config.FPS)
	}
	if sess == nil || source == nil || presenter == nil {
		return nil, fmt.Errorf("session, event source and presenter are required")
	}
	if config.LogOutput == nil {
		config.LogOutput = os.Stderr
	}

	display := NewDisplayList()
	return &Loop{
		config:     config,
		session:    sess,
		source:     source,
		presenter:  presenter,
		logger:     log.New(config.LogOutput, "[render] ", log.LstdFlags),
		display:    display,
		panel:      NewPanel(sess, display),
		sourceOpen: true,
	}, nil
}

// Panel returns the loop's widgets.
func (l *Loop) Panel() *Panel {
	return l.panel
}

// Run renders frames at the configured rate until ctx is cancelled, a quit
// event arrives, or the source is exhausted while no fit is running.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.config.FPS))
	defer ticker.Stop()

	l.logger.Printf("render loop started at %d fps", l.config.FPS)
	for {
		if l.Step() {
			l.logger.Printf("render loop stopped after %d frames", l.frame)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step renders a single frame. It reports whether the loop should stop.
func (l *Loop) Step() bool {
	l.frame++
	training := l.session.IsTraining()
	l.panel.SetEnabled(!training)

	model := l.session.Model()

	var events []widgets.Event
	if l.sourceOpen {
		events, l.sourceOpen = l.source.Poll()
	}
	for _, ev := range events {
		if ev.Type == widgets.Quit {
			return true
		}
		if !training {
			l.panel.HandleEvent(ev)
		}
	}

	l.panel.Update()

	l.display.Reset()
	l.display.Fill(widgets.Background)
	l.panel.Draw(l.display)

	// A fit started by this frame's events is sampled right away, even if it
	// already finished; one that just ended is sampled once more so the
	// final weights are shown.
	training = l.session.IsTraining()
	started := l.session.Model() != model
	if training || started || l.wasTraining {
		l.session.SamplePredictions()
	}
	l.wasTraining = training

	l.display.DrawPlot(PlotRect)

	frame := &Frame{
		Number:          l.frame,
		Training:        training,
		Hyperparameters: l.session.Hyperparameters().DisplayValues(),
		Dataset:         l.session.Dataset().Samples(),
		Predictions:     l.session.LastPredictions(),
		Ops:             l.display.Ops(),
	}
	if err := l.presenter.Present(frame); err != nil {
		l.logger.Printf("frame %d: %v", l.frame, err)
	}

	return !l.sourceOpen && !training
}
