package plot

import (
	"math"
	"slices"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Bar orientations.
const (
	Vertical   = "vertical"
	Horizontal = "horizontal"
)

// DefaultBarWidth is the bar thickness on scales without bands.
const DefaultBarWidth = 10.0

var barAlignments = map[string]map[string]float64{
	Vertical:   {"left": 0, "center": 0.5, "right": 1},
	Horizontal: {"top": 0, "middle": 0.5, "center": 0.5, "bottom": 1},
}

// Bar draws one rectangle per datum from the baseline to the value.
// Vertical bars take their position from x and their value from y;
// horizontal bars the reverse. On a banded position scale a bar fills
// and is centered in its band; otherwise it is barWidth thick and placed
// by the alignment.
type Bar struct {
	Plot
	stack   *stack
	cluster bool

	orientation string
	baseline    float64
	alignment   string
	barWidth    float64

	baselineKey string
	baselineOn  scale.Quantitative
}

// NewBar creates a bar plot with orientation "vertical" or "horizontal".
func NewBar(orientation string) (*Bar, error) {
	b := &Bar{}
	if err := b.initBar(b, "bar-plot", orientation); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bar) initBar(self variant, kind, orientation string) error {
	if _, ok := barAlignments[orientation]; !ok {
		return errors.New(errors.ErrCodeInvalidOrientation, "unsupported bar orientation %q", orientation)
	}
	b.orientation = orientation
	b.alignment = "center"
	b.barWidth = DefaultBarWidth
	b.initPlot(self, kind)
	b.baselineKey = "bar-baseline/" + b.ID()
	if b.stack != nil {
		b.stack.keyAttr, b.stack.valueAttr = b.positionAttr(), b.valueAttr()
	}
	_ = b.Project("fill", dataset.Constant(defaultColor), nil)
	b.OnRemove(func() { b.unregisterBaseline() })
	return nil
}

// Orientation returns "vertical" or "horizontal".
func (b *Bar) Orientation() string { return b.orientation }

func (b *Bar) positionAttr() string {
	if b.orientation == Horizontal {
		return "y"
	}
	return "x"
}

func (b *Bar) valueAttr() string {
	if b.orientation == Horizontal {
		return "x"
	}
	return "y"
}

// Baseline returns the value bars grow from.
func (b *Bar) Baseline() float64 { return b.baseline }

// SetBaseline sets the value bars grow from. It is always in the value
// domain and never padded.
func (b *Bar) SetBaseline(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "bar baseline must be finite, got %v", v)
	}
	b.baseline = v
	b.syncBaseline()
	b.rerender()
	return nil
}

// BarAlignment returns the alignment of bars on scales without bands.
func (b *Bar) BarAlignment() string { return b.alignment }

// SetBarAlignment sets where a bar sits relative to its position: "left",
// "center" or "right" for vertical bars and "top", "middle" or "bottom"
// for horizontal ones.
func (b *Bar) SetBarAlignment(a string) error {
	if _, ok := barAlignments[b.orientation][a]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported %s bar alignment %q", b.orientation, a)
	}
	b.alignment = a
	b.rerender()
	return nil
}

// BarWidth returns the bar thickness on scales without bands.
func (b *Bar) BarWidth() float64 { return b.barWidth }

// SetBarWidth sets the bar thickness on scales without bands.
func (b *Bar) SetBarWidth(w float64) error {
	if err := errors.ValidateNonNegative("bar width", w); err != nil {
		return err
	}
	b.barWidth = w
	b.rerender()
	return nil
}

func (b *Bar) syncBaseline() {
	q := b.quantitative(b.valueAttr())
	if b.baselineOn != nil && b.baselineOn != q {
		b.unregisterBaseline()
	}
	b.baselineOn = q
	if q != nil {
		d := q.Domainer()
		d.AddPaddingException(b.baselineKey, b.baseline)
		d.AddIncludedValue(b.baselineKey, b.baseline)
		q.RefreshDomain()
	}
}

func (b *Bar) unregisterBaseline() {
	if b.baselineOn == nil {
		return
	}
	d := b.baselineOn.Domainer()
	d.RemovePaddingException(b.baselineKey)
	d.RemoveIncludedValue(b.baselineKey)
	b.baselineOn.RefreshDomain()
	b.baselineOn = nil
}

func (b *Bar) positional() []string { return []string{b.positionAttr(), b.valueAttr()} }

func (b *Bar) projected(attr string) {
	if attr == b.valueAttr() {
		b.syncBaseline()
	}
	b.restack()
}

func (b *Bar) datasetsChanged() { b.restack() }

func (b *Bar) prepare() error {
	b.restack()
	return nil
}

func (b *Bar) restack() {
	if b.stack != nil {
		b.stack.compute(&b.Plot)
	}
}

func (b *Bar) extentAccessor(attr string, e *entry, acc dataset.Accessor) dataset.Accessor {
	if b.stack != nil && attr == b.valueAttr() {
		return b.stack.extentAccessor(e, acc)
	}
	return acc
}

// rect is a bar in plot coordinates.
type rect struct {
	x, y, width, height float64
	base                float64
}

// band returns where a bar starts across its position and how thick it is.
func (b *Bar) band(e *entry, r record) (float64, float64, error) {
	posAttr := b.positionAttr()
	pos, err := b.pixel(posAttr, e, r)
	if err != nil {
		return 0, 0, err
	}

	thick := b.barWidth
	start := pos - thick*barAlignments[b.orientation][b.alignment]
	if sc := b.ScaleOf(posAttr); sc != nil {
		if bw, ok := sc.BandWidth(); ok {
			thick = bw
			start = pos - bw/2
		}
	}
	if b.cluster && len(b.entries) > 0 {
		k := slices.Index(b.entries, e)
		thick /= float64(len(b.entries))
		start += float64(k) * thick
	}
	return start, thick, nil
}

// bar builds the rectangle spanning the pixel values value and base.
func (b *Bar) bar(start, thick, value, base float64) rect {
	lo, extent := math.Min(base, value), math.Abs(base-value)
	if b.orientation == Horizontal {
		return rect{x: lo, y: start, width: extent, height: thick, base: base}
	}
	return rect{x: start, y: lo, width: thick, height: extent, base: base}
}

func (b *Bar) geometry(e *entry, r record) (rect, error) {
	start, thick, err := b.band(e, r)
	if err != nil {
		return rect{}, err
	}

	valAttr := b.valueAttr()
	var value, base float64
	if b.stack != nil {
		top, off, err := b.stack.top(&b.Plot, e, r)
		if err != nil {
			return rect{}, err
		}
		value, base = b.position(valAttr, top), b.position(valAttr, off)
	} else {
		if value, err = b.pixel(valAttr, e, r); err != nil {
			return rect{}, err
		}
		base = b.position(valAttr, b.baseline)
	}
	return b.bar(start, thick, value, base), nil
}

func (b *Bar) point(e *entry, r record) (float64, float64, error) {
	g, err := b.geometry(e, r)
	if err != nil {
		return 0, 0, err
	}
	return g.x + g.width/2, g.y + g.height/2, nil
}

func (b *Bar) layers(e *entry, recs []record) ([]layer, error) {
	return []layer{b.barLayer(e, recs, b.geometry, nil)}, nil
}

// barLayer draws recs as rectangles placed by geom. extra adds or
// replaces attributes; attributes mapped to nil are not drawn.
func (b *Bar) barLayer(e *entry, recs []record, geom func(*entry, record) (rect, error), extra animator.AttrMap) layer {
	side := func(f func(rect) float64) animator.Projector {
		return func(d any, _ int) (any, error) {
			g, err := geom(e, d.(record))
			if err != nil {
				return nil, err
			}
			return f(g), nil
		}
	}
	main := b.attrs(e, "x", "y", "width", "height")
	main["x"] = side(func(g rect) float64 { return g.x })
	main["y"] = side(func(g rect) float64 { return g.y })
	main["width"] = side(func(g rect) float64 { return g.width })
	main["height"] = side(func(g rect) float64 { return g.height })
	for k, v := range extra {
		if v == nil {
			delete(main, k)
			continue
		}
		main[k] = v
	}

	reset := override(main, nil)
	if b.orientation == Horizontal {
		reset["x"] = side(func(g rect) float64 { return g.base })
		reset["width"] = constant(0.0)
	} else {
		reset["y"] = side(func(g rect) float64 { return g.base })
		reset["height"] = constant(0.0)
	}
	return layer{name: "bar", tag: "rect", data: joinData(recs), plan: b.plan(main, reset), key: recordKey}
}

// StackedBar stacks the bars of its datasets in dataset order: positive
// values upward from the baseline and negative values downward.
type StackedBar struct {
	Bar
}

// NewStackedBar creates a stacked bar plot.
func NewStackedBar(orientation string) (*StackedBar, error) {
	s := &StackedBar{}
	s.stack = newStack("", "")
	if err := s.initBar(s, "stacked-bar-plot", orientation); err != nil {
		return nil, err
	}
	return s, nil
}

// StackOffsets returns the stack offset of every datum of a dataset.
func (b *Bar) StackOffsets(key string) []float64 {
	e := b.entry(key)
	if e == nil || b.stack == nil {
		return nil
	}
	return append([]float64(nil), b.stack.offsets[e]...)
}

// ClusteredBar places the bars of its datasets side by side within each
// position, in dataset order.
type ClusteredBar struct {
	Bar
}

// NewClusteredBar creates a clustered bar plot.
func NewClusteredBar(orientation string) (*ClusteredBar, error) {
	c := &ClusteredBar{}
	c.cluster = true
	if err := c.initBar(c, "clustered-bar-plot", orientation); err != nil {
		return nil, err
	}
	return c, nil
}
