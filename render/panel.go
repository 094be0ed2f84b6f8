package render

import (
	"image"

	"github.com/tsawler/go-curvefit/session"
	"github.com/tsawler/go-curvefit/widgets"
)

// Screen layout of the control panel.
const (
	WindowWidth  = 1280
	WindowHeight = 600

	sliderX      = 350
	sliderLength = 200
	valueX       = 500
)

// PlotRect is where the dataset and prediction curve are drawn.
var PlotRect = image.Rect(620, 50, 1260, 530)

type label struct {
	text string
	at   image.Point
}

var titleLabels = []label{
	{"Add Data: ", image.Pt(50, 50)},
	{"Model Size: ", image.Pt(50, 240)},
	{"Model Depth: ", image.Pt(50, 310)},
	{"Model Learning Rate: ", image.Pt(50, 380)},
	{"Model Epochs: ", image.Pt(50, 450)},
}

// Panel is the set of widgets that edit a session.
type Panel struct {
	Input        *widgets.TextInput
	Delete       *widgets.Button
	Size         *widgets.Slider
	Depth        *widgets.Slider
	LearningRate *widgets.Slider
	Epochs       *widgets.Slider
	Train        *widgets.Button

	session *session.Session
}

// NewPanel lays out the widgets and binds them to sess. Every callback is
// gated on the session being idle; refused operations are dropped silently.
func NewPanel(sess *session.Session, measure widgets.TextMeasurer) *Panel {
	busy := sess.IsTraining

	control := func(set func(float64) error) func(float64) {
		return widgets.Gate(busy, func(v float64) { _ = set(v) })
	}

	return &Panel{
		Input: widgets.NewTextInput(170, 45, 250, 32, measure,
			widgets.Gate(busy, func(text string) { _ = sess.AppendSample(text) })),
		Delete: widgets.NewButton(340, 100, 75, 30, 10, "Del",
			widgets.GateAction(busy, func() { _ = sess.RemoveLastSample() })),
		Size:         widgets.NewSlider(sliderX, 250, sliderLength, control(sess.SetSize)),
		Depth:        widgets.NewSlider(sliderX, 320, sliderLength, control(sess.SetDepth)),
		LearningRate: widgets.NewSlider(sliderX, 390, sliderLength, control(sess.SetLearningRate)),
		Epochs:       widgets.NewSlider(sliderX, 460, sliderLength, control(sess.SetEpochs)),
		Train: widgets.NewButton(450, 520, 100, 30, 10, "Train",
			widgets.GateAction(busy, func() { _ = sess.Start() })),
		session: sess,
	}
}

// Widgets returns the widgets in event delivery order.
func (p *Panel) Widgets() []widgets.Widget {
	return []widgets.Widget{p.Input, p.Delete, p.Size, p.Depth, p.LearningRate, p.Epochs, p.Train}
}

// SetEnabled enables or disables every widget.
func (p *Panel) SetEnabled(enabled bool) {
	for _, w := range p.Widgets() {
		w.SetEnabled(enabled)
	}
}

// HandleEvent delivers ev to every widget.
func (p *Panel) HandleEvent(ev widgets.Event) {
	for _, w := range p.Widgets() {
		w.HandleEvent(ev)
	}
}

// Update updates every widget.
func (p *Panel) Update() {
	for _, w := range p.Widgets() {
		w.Update()
	}
}

// Draw draws the labels, the current hyperparameter values and the widgets.
func (p *Panel) Draw(s widgets.Surface) {
	for _, l := range titleLabels {
		s.DrawText(l.text, l.at, widgets.TitleFont, widgets.White)
	}

	values := p.session.Hyperparameters().DisplayValues()
	s.DrawText(values.Size, image.Pt(valueX, 270), widgets.ValueFont, widgets.ValueGrey)
	s.DrawText(values.Depth, image.Pt(valueX, 340), widgets.ValueFont, widgets.ValueGrey)
	s.DrawText(values.LearningRate, image.Pt(valueX, 410), widgets.ValueFont, widgets.ValueGrey)
	s.DrawText(values.Epochs, image.Pt(valueX, 480), widgets.ValueFont, widgets.ValueGrey)

	for _, w := range p.Widgets() {
		w.Draw(s)
	}
}
