package legend

import (
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

// Interpolated legend orientations.
const (
	Horizontal = "horizontal"
	Left       = "left"
	Right      = "right"
)

// DefaultSwatches is how many swatches sample the colour ramp.
const DefaultSwatches = 11

// Interpolated legend node classes.
const (
	RampSwatchClass = "legend-ramp-swatch"
	BoundClass      = "legend-bound"
)

// Swatch is one drawn sample of an interpolated colour scale.
type Swatch struct {
	Value  float64
	Color  string
	Bounds surface.Rect
}

type boundLabel struct {
	name   string
	text   string
	x, y   float64
	anchor string
}

// Interpolated draws an interpolated colour scale as a strip of swatches
// between its lower and upper domain bounds. A horizontal legend reads
// left to right with the bounds at either end; vertical legends put the
// upper bound on top and their labels on the named side.
type Interpolated struct {
	component.Base
	colors      *scale.InterpolatedColor
	handle      event.Handle
	orientation string
	expands     bool
	swatchCount int
	padding     float64
	fontSize    float64
	formatter   func(float64) string

	swatches *drawer.Drawer
	bounds   *drawer.Drawer
	last     []Swatch
}

// NewInterpolated creates a horizontal legend for an interpolated colour
// scale.
func NewInterpolated(colors *scale.InterpolatedColor) *Interpolated {
	l := &Interpolated{
		colors:      colors,
		orientation: Horizontal,
		swatchCount: DefaultSwatches,
		padding:     DefaultPadding,
		fontSize:    fonts.DefaultSize,
	}
	l.Init(l, "interpolated-legend")
	l.AddClass("legend")
	l.handle = colors.OnUpdate(func(scale.Scale) { l.rescale() })
	l.OnAnchor(func() {
		l.swatches = drawer.New(l.Content(), "rect", RampSwatchClass)
		l.bounds = drawer.New(l.Content(), "text", BoundClass)
	})
	l.OnRemove(func() { _ = l.colors.OffUpdate(l.handle) })
	return l
}

// Scale returns the colour scale.
func (l *Interpolated) Scale() *scale.InterpolatedColor { return l.colors }

// Orientation returns "horizontal", "left" or "right".
func (l *Interpolated) Orientation() string { return l.orientation }

// SetOrientation sets the layout: "horizontal", or "left" or "right" for
// a vertical strip with labels on that side.
func (l *Interpolated) SetOrientation(o string) error {
	switch o {
	case Horizontal, Left, Right:
	default:
		return errors.New(errors.ErrCodeInvalidOrientation, "unsupported interpolated legend orientation %q", o)
	}
	l.orientation = o
	l.Redraw()
	return nil
}

func (l *Interpolated) vertical() bool { return l.orientation != Horizontal }

// Expands reports whether the strip stretches along its length.
func (l *Interpolated) Expands() bool { return l.expands }

// SetExpands lets the strip take the space offered along its length.
func (l *Interpolated) SetExpands(on bool) {
	l.expands = on
	l.Redraw()
}

// SetSwatches sets how many swatches sample the ramp; at least two.
func (l *Interpolated) SetSwatches(n int) error {
	if n < 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "interpolated legend needs at least 2 swatches, got %d", n)
	}
	l.swatchCount = n
	l.Redraw()
	return nil
}

// SetFormatter sets how the bounds are labelled. Nil restores the scale's
// tick format.
func (l *Interpolated) SetFormatter(f func(float64) string) {
	l.formatter = f
	l.Redraw()
}

// FixedWidth is false only for expanding horizontal legends.
func (l *Interpolated) FixedWidth() bool { return !l.expands || l.vertical() }

// FixedHeight is false only for expanding vertical legends.
func (l *Interpolated) FixedHeight() bool { return !l.expands || !l.vertical() }

func (l *Interpolated) measure(s string) surface.Rect {
	if c := l.Content(); c != nil {
		return c.Document().Measurer().Measure(s, l.fontSize)
	}
	return fallbackMeasurer.Measure(s, l.fontSize)
}

func (l *Interpolated) label(x float64) string {
	if l.formatter != nil {
		return l.formatter(x)
	}
	return l.colors.FormatTick(x)
}

// natural returns the size of the legend with square swatches.
func (l *Interpolated) natural() (float64, float64) {
	lo, hi := l.colors.Domain()
	line := l.measure("Hg").Height
	w0, w1 := l.measure(l.label(lo)).Width, l.measure(l.label(hi)).Width
	n := float64(l.swatchCount)
	if l.vertical() {
		return l.padding + line + l.padding + math.Max(w0, w1) + l.padding, n*line + 2*l.padding
	}
	return l.padding + w0 + l.padding + n*line + l.padding + w1 + l.padding, line + 2*l.padding
}

// RequestedSpace is the size with square swatches.
func (l *Interpolated) RequestedSpace(offeredWidth, offeredHeight float64) component.SpaceRequest {
	w, h := l.natural()
	return l.Request(offeredWidth, offeredHeight, w, h)
}

// layout places the swatches and the bound labels in the allocated box.
// Expanding legends stretch their swatches along the strip.
func (l *Interpolated) layout() ([]Swatch, []boundLabel) {
	lo, hi := l.colors.Domain()
	line := l.measure("Hg").Height
	loText, hiText := l.label(lo), l.label(hi)
	w0, w1 := l.measure(loText).Width, l.measure(hiText).Width
	n := l.swatchCount
	natW, natH := l.natural()

	size := line
	if l.expands {
		if l.vertical() {
			size = math.Max(line, line+(l.Height()-natH)/float64(n))
		} else {
			size = math.Max(line, line+(l.Width()-natW)/float64(n))
		}
	}

	out := make([]Swatch, n)
	for i := range out {
		v := lo + (hi-lo)*float64(i)/float64(n-1)
		out[i] = Swatch{Value: v, Color: l.colors.Scale(v)}
	}

	p := l.padding
	if !l.vertical() {
		x0 := p + w0 + p
		for i := range out {
			out[i].Bounds = surface.Rect{X: x0 + float64(i)*size, Y: p, Width: size, Height: line}
		}
		mid := p + line/2
		return out, []boundLabel{
			{name: "lower", text: loText, x: p, y: mid, anchor: "start"},
			{name: "upper", text: hiText, x: x0 + float64(n)*size + p, y: mid, anchor: "start"},
		}
	}

	stripX, textX, anchor := p, p+line+p, "start"
	if l.orientation == Left {
		textW := math.Max(w0, w1)
		stripX, textX, anchor = p+textW+p, p+textW, "end"
	}
	for i := range out {
		// upper bound on top
		y := p + float64(n-1-i)*size
		out[i].Bounds = surface.Rect{X: stripX, Y: y, Width: line, Height: size}
	}
	return out, []boundLabel{
		{name: "lower", text: loText, x: textX, y: p + float64(n)*size - line/2, anchor: anchor},
		{name: "upper", text: hiText, x: textX, y: p + line/2, anchor: anchor},
	}
}

func (l *Interpolated) rescale() {
	if !l.Renderable() {
		return
	}
	if w, h := l.natural(); (l.FixedWidth() && w != l.Width()) || (l.FixedHeight() && h != l.Height()) {
		l.Redraw()
	}
	if err := l.Render(); err != nil {
		l.Logger().Warn("legend render failed", "legend", l.ID(), "err", err)
	}
}

// Render draws the swatches and the two bound labels.
func (l *Interpolated) Render() error {
	if !l.Renderable() {
		return nil
	}
	swatches, labels := l.layout()

	data := make([]any, len(swatches))
	for i, s := range swatches {
		data[i] = s
	}
	side := func(f func(surface.Rect) float64) animator.Projector {
		return func(d any, _ int) (any, error) { return f(d.(Swatch).Bounds), nil }
	}
	l.swatches.SetKey(func(_ any, i int) string { return strconv.Itoa(i) })
	plan := drawer.Plan{{Name: "swatches", Animator: animator.Null{}, Attrs: animator.AttrMap{
		"x":      side(func(r surface.Rect) float64 { return r.X }),
		"y":      side(func(r surface.Rect) float64 { return r.Y }),
		"width":  side(func(r surface.Rect) float64 { return r.Width }),
		"height": side(func(r surface.Rect) float64 { return r.Height }),
		"fill":   func(d any, _ int) (any, error) { return d.(Swatch).Color, nil },
	}}}
	if _, err := l.swatches.Draw(data, plan); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw legend %s", l.ID())
	}

	data = make([]any, len(labels))
	for i, b := range labels {
		data[i] = b
	}
	l.bounds.SetKey(func(d any, _ int) string { return d.(boundLabel).name })
	plan = drawer.Plan{{Name: "bounds", Animator: animator.Null{}, Attrs: animator.AttrMap{
		"x":                 func(d any, _ int) (any, error) { return d.(boundLabel).x, nil },
		"y":                 func(d any, _ int) (any, error) { return d.(boundLabel).y, nil },
		"text-anchor":       func(d any, _ int) (any, error) { return d.(boundLabel).anchor, nil },
		"dominant-baseline": func(any, int) (any, error) { return "central", nil },
		"data-bound":        func(d any, _ int) (any, error) { return d.(boundLabel).name, nil },
	}}}
	if _, err := l.bounds.Draw(data, plan); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw legend %s", l.ID())
	}
	for _, el := range l.bounds.Bound() {
		el.Node.SetText(el.Datum.(boundLabel).text)
		el.Node.SetStyle("font-size", surface.FormatValue(l.fontSize)+"px")
	}

	l.last = swatches
	l.MarkRendered()
	return nil
}

// Swatches returns the swatches drawn by the last render.
func (l *Interpolated) Swatches() []Swatch { return append([]Swatch(nil), l.last...) }

// ValueAt returns the value of the swatch under (x, y), in legend
// coordinates.
func (l *Interpolated) ValueAt(x, y float64) (float64, bool) {
	for _, s := range l.last {
		if s.Bounds.Contains(x, y) {
			return s.Value, true
		}
	}
	return math.NaN(), false
}
