// Package axis draws scales as tick marks and tick labels.
//
// An axis sits on one side of a plot. Horizontal axes (top, bottom) are
// fixed in height and flexible in width; vertical axes (left, right) the
// reverse. The fixed dimension is computed from the tick length, the tick
// label padding, the measured tick labels and a gutter. Laying out an axis
// points its scale's range at the axis length, and every scale update
// re-renders the axis.
package axis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/drawer"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/fonts"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Orientations.
const (
	Top    = "top"
	Bottom = "bottom"
	Left   = "left"
	Right  = "right"
)

// Defaults, in pixels.
const (
	DefaultTickLength       = 5.0
	DefaultEndTickLength    = 5.0
	DefaultTickLabelPadding = 10.0
	DefaultGutter           = 15.0
	DefaultTickCount        = 10
)

// Node classes.
const (
	TickMarkClass    = "tick-mark"
	EndTickMarkClass = "end-tick-mark"
	TickLabelClass   = "tick-label"
	BaselineClass    = "baseline"
)

// Formatter turns a tick value into its label.
type Formatter func(v any) string

var fallbackMeasurer = surface.NewFontMeasurer(fonts.Sans)

// tick is one tick mark and its label, positioned along the axis.
type tick struct {
	value any
	pos   float64
	label string
	end   bool
}

// ticker is implemented by the concrete axes.
type ticker interface {
	component.Component
	ticks() []tick
	setRange(length float64)
}

// Axis is the machinery shared by Numeric, Category and Time.
type Axis struct {
	component.Base
	self ticker
	sc   scale.Scale

	orientation      string
	tickLength       float64
	endTickLength    float64
	tickLabelPadding float64
	gutter           float64
	showEndTicks     bool
	formatter        Formatter
	fontSize         float64

	handle   event.Handle
	baseline surface.Node
	marks    *drawer.Drawer
	labels   *drawer.Drawer
}

func validOrientation(o string) error {
	switch o {
	case Top, Bottom, Left, Right:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidOrientation, "unsupported axis orientation %q", o)
}

func (a *Axis) initAxis(self ticker, kind string, sc scale.Scale, orientation string) error {
	if err := validOrientation(orientation); err != nil {
		return err
	}
	a.Init(self, kind)
	a.self = self
	a.sc = sc
	a.orientation = orientation
	a.tickLength = DefaultTickLength
	a.endTickLength = DefaultEndTickLength
	a.tickLabelPadding = DefaultTickLabelPadding
	a.gutter = DefaultGutter
	a.fontSize = fonts.DefaultSize

	a.AddClass("axis")
	if a.Horizontal() {
		a.AddClass("x-axis")
	} else {
		a.AddClass("y-axis")
	}
	switch orientation {
	case Bottom:
		_ = a.SetYAlign("top")
	case Top:
		_ = a.SetYAlign("bottom")
	case Left:
		_ = a.SetXAlign("right")
	case Right:
		_ = a.SetXAlign("left")
	}

	a.handle = sc.OnUpdate(func(scale.Scale) { a.rescale() })
	a.OnAnchor(func() {
		a.baseline = a.Content().AppendChild("line")
		a.baseline.AddClass(BaselineClass)
		marks := a.Content().AppendChild("g")
		marks.AddClass(TickMarkClass + "-container")
		labels := a.Content().AppendChild("g")
		labels.AddClass(TickLabelClass + "-container")
		a.marks = drawer.New(marks, "line", TickMarkClass)
		a.labels = drawer.New(labels, "text", TickLabelClass)
	})
	a.OnRemove(func() { _ = a.sc.OffUpdate(a.handle) })
	return nil
}

// Scale returns the scale the axis draws.
func (a *Axis) Scale() scale.Scale { return a.sc }

// Orientation returns top, bottom, left or right.
func (a *Axis) Orientation() string { return a.orientation }

// Horizontal reports whether the axis runs along x.
func (a *Axis) Horizontal() bool { return a.orientation == Top || a.orientation == Bottom }

// FixedWidth is true for vertical axes.
func (a *Axis) FixedWidth() bool { return !a.Horizontal() }

// FixedHeight is true for horizontal axes.
func (a *Axis) FixedHeight() bool { return a.Horizontal() }

// TickLength returns the length of regular tick marks.
func (a *Axis) TickLength() float64 { return a.tickLength }

// SetTickLength sets the length of regular tick marks.
func (a *Axis) SetTickLength(l float64) error {
	if err := errors.ValidateNonNegative("tick length", l); err != nil {
		return err
	}
	a.tickLength = l
	a.Redraw()
	return nil
}

// EndTickLength returns the length of the end tick marks.
func (a *Axis) EndTickLength() float64 { return a.endTickLength }

// SetEndTickLength sets the length of the end tick marks.
func (a *Axis) SetEndTickLength(l float64) error {
	if err := errors.ValidateNonNegative("end tick length", l); err != nil {
		return err
	}
	a.endTickLength = l
	a.Redraw()
	return nil
}

// TickLabelPadding returns the space between tick marks and labels.
func (a *Axis) TickLabelPadding() float64 { return a.tickLabelPadding }

// SetTickLabelPadding sets the space between tick marks and labels.
func (a *Axis) SetTickLabelPadding(p float64) error {
	if err := errors.ValidateNonNegative("tick label padding", p); err != nil {
		return err
	}
	a.tickLabelPadding = p
	a.Redraw()
	return nil
}

// Gutter returns the space between the labels and the outer edge.
func (a *Axis) Gutter() float64 { return a.gutter }

// SetGutter sets the space between the labels and the outer edge.
func (a *Axis) SetGutter(g float64) error {
	if err := errors.ValidateNonNegative("gutter", g); err != nil {
		return err
	}
	a.gutter = g
	a.Redraw()
	return nil
}

// ShowEndTicks reports whether end tick marks are drawn at both ends of
// the axis.
func (a *Axis) ShowEndTicks() bool { return a.showEndTicks }

// SetShowEndTicks toggles the end tick marks.
func (a *Axis) SetShowEndTicks(on bool) {
	a.showEndTicks = on
	a.Redraw()
}

// SetFormatter replaces the tick label formatter. Nil restores the
// axis default.
func (a *Axis) SetFormatter(f Formatter) {
	a.formatter = f
	a.Redraw()
}

// format applies the formatter, or def when none is set.
func (a *Axis) format(v any, def func() string) string {
	if a.formatter != nil {
		return a.formatter(v)
	}
	return def()
}

// SetFontSize sets the tick label size in pixels.
func (a *Axis) SetFontSize(size float64) error {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "font size must be positive, got %v", size)
	}
	a.fontSize = size
	a.Redraw()
	return nil
}

func (a *Axis) measure(s string) surface.Rect {
	if c := a.Content(); c != nil {
		return c.Document().Measurer().Measure(s, a.fontSize)
	}
	return fallbackMeasurer.Measure(s, a.fontSize)
}

// markLength is the longest tick mark drawn.
func (a *Axis) markLength() float64 {
	if a.showEndTicks {
		return math.Max(a.tickLength, a.endTickLength)
	}
	return a.tickLength
}

// depth is the fixed dimension: marks, padding, the widest or tallest
// label and the gutter.
func (a *Axis) depth() float64 {
	var text float64
	for _, t := range a.self.ticks() {
		box := a.measure(t.label)
		if a.Horizontal() {
			text = math.Max(text, box.Height)
		} else {
			text = math.Max(text, box.Width)
		}
	}
	if a.Horizontal() && text == 0 {
		text = a.measure("0").Height
	}
	return a.markLength() + a.tickLabelPadding + text + a.gutter
}

// RequestedSpace asks for the computed depth in the fixed dimension and
// nothing in the other.
func (a *Axis) RequestedSpace(offeredWidth, offeredHeight float64) component.SpaceRequest {
	if a.Horizontal() {
		return a.Request(offeredWidth, offeredHeight, 0, a.depth())
	}
	return a.Request(offeredWidth, offeredHeight, a.depth(), 0)
}

// ComputeLayout places the axis and points the scale's range at its
// length.
func (a *Axis) ComputeLayout(x, y, width, height float64) {
	component.Place(a.self, x, y, width, height)
	if a.Horizontal() {
		a.self.setRange(a.Width())
	} else {
		a.self.setRange(a.Height())
	}
}

// rescale follows a scale update. A vertical axis whose labels no longer
// fit its width asks the tree for a new layout first.
func (a *Axis) rescale() {
	if !a.Renderable() {
		return
	}
	if !a.Horizontal() {
		if need := a.depth(); need > a.Width() || need < a.Width()-a.gutter {
			a.Redraw()
		}
	}
	if err := a.Render(); err != nil {
		a.Logger().Warn("axis render failed", "axis", a.ID(), "err", err)
	}
}

// endTicks returns marks at both ends of the axis.
func (a *Axis) endTicks() []tick {
	length := a.Width()
	if !a.Horizontal() {
		length = a.Height()
	}
	return []tick{{pos: 0, end: true}, {pos: length, end: true}}
}

// Render draws the baseline, the tick marks and the tick labels.
func (a *Axis) Render() error {
	if !a.Renderable() {
		return nil
	}
	w, h := a.Width(), a.Height()
	ticks := a.self.ticks()

	x1, y1, x2, y2 := 0.0, 0.0, 0.0, 0.0
	switch a.orientation {
	case Bottom:
		x2 = w
	case Top:
		x2, y1, y2 = w, h, h
	case Left:
		x1, x2, y2 = w, w, h
	case Right:
		y2 = h
	}
	a.baseline.SetAttr("x1", x1)
	a.baseline.SetAttr("y1", y1)
	a.baseline.SetAttr("x2", x2)
	a.baseline.SetAttr("y2", y2)

	marks := ticks
	if a.showEndTicks {
		marks = append(append([]tick(nil), ticks...), a.endTicks()...)
	}
	a.marks.SetKey(markKey)
	if _, err := a.marks.Draw(tickData(marks), a.markPlan()); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw tick marks of %s", a.ID())
	}
	for _, el := range a.marks.Bound() {
		if el.Datum.(tick).end {
			el.Node.AddClass(EndTickMarkClass)
		}
	}

	if _, err := a.labels.Draw(tickData(ticks), a.labelPlan()); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw tick labels of %s", a.ID())
	}
	for _, el := range a.labels.Bound() {
		el.Node.SetText(el.Datum.(tick).label)
		el.Node.SetStyle("font-size", surface.FormatValue(a.fontSize)+"px")
	}
	a.MarkRendered()
	return nil
}

func markKey(d any, i int) string {
	t := d.(tick)
	if t.end {
		return "end/" + strconv.Itoa(i)
	}
	return "tick/" + t.label
}

func tickData(ticks []tick) []any {
	out := make([]any, len(ticks))
	for i, t := range ticks {
		out[i] = t
	}
	return out
}

func (a *Axis) markPlan() drawer.Plan {
	w, h := a.Width(), a.Height()
	pos := func(d any, _ int) (any, error) { return d.(tick).pos, nil }
	length := func(d any) float64 {
		if d.(tick).end {
			return a.endTickLength
		}
		return a.tickLength
	}
	across := func(f func(l float64) float64) animator.Projector {
		return func(d any, _ int) (any, error) { return f(length(d)), nil }
	}

	m := animator.AttrMap{}
	switch a.orientation {
	case Bottom:
		m["x1"], m["x2"] = pos, pos
		m["y1"] = across(func(float64) float64 { return 0 })
		m["y2"] = across(func(l float64) float64 { return l })
	case Top:
		m["x1"], m["x2"] = pos, pos
		m["y1"] = across(func(float64) float64 { return h })
		m["y2"] = across(func(l float64) float64 { return h - l })
	case Left:
		m["y1"], m["y2"] = pos, pos
		m["x1"] = across(func(float64) float64 { return w })
		m["x2"] = across(func(l float64) float64 { return w - l })
	case Right:
		m["y1"], m["y2"] = pos, pos
		m["x1"] = across(func(float64) float64 { return 0 })
		m["x2"] = across(func(l float64) float64 { return l })
	}
	return drawer.Plan{{Name: "ticks", Attrs: m, Animator: animator.Null{}}}
}

func (a *Axis) labelPlan() drawer.Plan {
	w, h := a.Width(), a.Height()
	offset := a.markLength() + a.tickLabelPadding
	pos := func(d any, _ int) (any, error) { return d.(tick).pos, nil }
	fixed := func(v any) animator.Projector {
		return func(any, int) (any, error) { return v, nil }
	}

	m := animator.AttrMap{}
	switch a.orientation {
	case Bottom:
		m["x"], m["y"] = pos, fixed(offset)
		m["text-anchor"], m["dominant-baseline"] = fixed("middle"), fixed("hanging")
	case Top:
		m["x"], m["y"] = pos, fixed(h-offset)
		m["text-anchor"], m["dominant-baseline"] = fixed("middle"), fixed("auto")
	case Left:
		m["x"], m["y"] = fixed(w-offset), pos
		m["text-anchor"], m["dominant-baseline"] = fixed("end"), fixed("central")
	case Right:
		m["x"], m["y"] = fixed(offset), pos
		m["text-anchor"], m["dominant-baseline"] = fixed("start"), fixed("central")
	}
	m["visibility"] = func(d any, _ int) (any, error) {
		if a.overflows(d.(tick)) {
			return "hidden", nil
		}
		return "visible", nil
	}
	return drawer.Plan{{Name: "labels", Attrs: m, Animator: animator.Null{}}}
}

// overflows reports whether a label would reach past either end of the
// axis.
func (a *Axis) overflows(t tick) bool {
	box := a.measure(t.label)
	half, length := box.Width/2, a.Width()
	if !a.Horizontal() {
		half, length = box.Height/2, a.Height()
	}
	const eps = 1e-9
	return t.pos-half < -eps || t.pos+half > length+eps
}

// Labels returns the text of every drawn tick label, in tick order.
func (a *Axis) Labels() []string {
	if a.labels == nil {
		return nil
	}
	var out []string
	for _, el := range a.labels.Bound() {
		out = append(out, el.Datum.(tick).label)
	}
	return out
}

func sprint(v any) string { return fmt.Sprint(v) }
