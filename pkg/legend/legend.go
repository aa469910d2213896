// Package legend draws the domain of a colour scale as rows of swatches
// and labels.
package legend

import (
	"fmt"
	"math"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/drawer"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/fonts"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// DefaultPadding surrounds the rows and separates entries in a row.
const DefaultPadding = 5.0

// Node classes.
const (
	EntryClass  = "legend-entry"
	SwatchClass = "legend-swatch"
	TextClass   = "legend-text"
)

var fallbackMeasurer = surface.NewFontMeasurer(fonts.Sans)

// Entry is one drawn legend row item.
type Entry struct {
	Value any
	Label string
	Color string

	// Bounds is the entry's box in legend coordinates.
	Bounds surface.Rect
}

// Legend is fixed in both dimensions: its size follows the colour
// scale's domain, the measured labels and the entries per row.
type Legend struct {
	component.Base
	colors     *scale.Color
	handle     event.Handle
	perRow     int
	padding    float64
	fontSize   float64
	formatter  func(any) string
	entries    *drawer.Drawer
	lastLayout []Entry
}

// New creates a legend for a colour scale with one entry per row.
func New(colors *scale.Color) *Legend {
	l := &Legend{colors: colors, perRow: 1, padding: DefaultPadding, fontSize: fonts.DefaultSize}
	l.Init(l, "legend")
	l.handle = colors.OnUpdate(func(scale.Scale) { l.rescale() })
	l.OnAnchor(func() { l.entries = drawer.New(l.Content(), "g", EntryClass) })
	l.OnRemove(func() { _ = l.colors.OffUpdate(l.handle) })
	return l
}

// Scale returns the colour scale.
func (l *Legend) Scale() *scale.Color { return l.colors }

// MaxEntriesPerRow returns how many entries share a row.
func (l *Legend) MaxEntriesPerRow() int { return l.perRow }

// SetMaxEntriesPerRow sets how many entries share a row. One gives a
// vertical legend; a large number a horizontal one.
func (l *Legend) SetMaxEntriesPerRow(n int) error {
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "entries per row must be at least 1, got %d", n)
	}
	l.perRow = n
	l.Redraw()
	return nil
}

// SetPadding sets the space around and between entries.
func (l *Legend) SetPadding(p float64) error {
	if err := errors.ValidateNonNegative("legend padding", p); err != nil {
		return err
	}
	l.padding = p
	l.Redraw()
	return nil
}

// SetFormatter sets how domain values are labelled. Nil restores
// fmt.Sprint.
func (l *Legend) SetFormatter(f func(any) string) {
	l.formatter = f
	l.Redraw()
}

// FixedWidth is always true.
func (l *Legend) FixedWidth() bool { return true }

// FixedHeight is always true.
func (l *Legend) FixedHeight() bool { return true }

func (l *Legend) measure(s string) surface.Rect {
	if c := l.Content(); c != nil {
		return c.Document().Measurer().Measure(s, l.fontSize)
	}
	return fallbackMeasurer.Measure(s, l.fontSize)
}

func (l *Legend) label(v any) string {
	if l.formatter != nil {
		return l.formatter(v)
	}
	return fmt.Sprint(v)
}

// layout computes every entry's box and the legend's size. A swatch is
// as wide as a line of text is tall.
func (l *Legend) layout() ([]Entry, float64, float64) {
	domain := l.colors.Domain()
	line := l.measure("Hg").Height
	out := make([]Entry, 0, len(domain))
	var width float64
	x, y := l.padding, l.padding
	for i, v := range domain {
		if i > 0 && i%l.perRow == 0 {
			x = l.padding
			y += line
		}
		text := l.label(v)
		w := line + l.measure(text).Width
		color, err := l.colors.Scale(v)
		if err != nil {
			color = "none"
		}
		out = append(out, Entry{Value: v, Label: text, Color: color, Bounds: surface.Rect{X: x, Y: y, Width: w, Height: line}})
		width = math.Max(width, x+w)
		x += w + l.padding
	}
	if len(out) == 0 {
		return out, 2 * l.padding, 2 * l.padding
	}
	rows := (len(out) + l.perRow - 1) / l.perRow
	return out, width + l.padding, float64(rows)*line + 2*l.padding
}

// RequestedSpace is the size of every entry plus padding.
func (l *Legend) RequestedSpace(offeredWidth, offeredHeight float64) component.SpaceRequest {
	_, w, h := l.layout()
	return l.Request(offeredWidth, offeredHeight, w, h)
}

func (l *Legend) rescale() {
	if !l.Renderable() {
		return
	}
	if _, w, h := l.layout(); w != l.Width() || h != l.Height() {
		l.Redraw()
	}
	if err := l.Render(); err != nil {
		l.Logger().Warn("legend render failed", "legend", l.ID(), "err", err)
	}
}

// Render draws one group per entry holding a circular swatch and the
// label.
func (l *Legend) Render() error {
	if !l.Renderable() {
		return nil
	}
	entries, _, _ := l.layout()
	data := make([]any, len(entries))
	for i, e := range entries {
		data[i] = e
	}
	l.entries.SetKey(func(d any, _ int) string { return fmt.Sprint(d.(Entry).Value) })
	plan := drawer.Plan{{Name: "entries", Animator: animator.Null{}, Attrs: animator.AttrMap{
		"data-value": func(d any, _ int) (any, error) { return d.(Entry).Label, nil },
	}}}
	if _, err := l.entries.Draw(data, plan); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw legend %s", l.ID())
	}

	for _, el := range l.entries.Bound() {
		e := el.Datum.(Entry)
		g := el.Node
		g.SetTranslate(e.Bounds.X, e.Bounds.Y)
		var swatch, text surface.Node
		if kids := g.Children(); len(kids) == 2 {
			swatch, text = kids[0], kids[1]
		} else {
			swatch = g.AppendChild("circle")
			swatch.AddClass(SwatchClass)
			text = g.AppendChild("text")
			text.AddClass(TextClass)
		}
		r := e.Bounds.Height / 2
		swatch.SetAttr("cx", r)
		swatch.SetAttr("cy", r)
		swatch.SetAttr("r", r*0.6)
		swatch.SetAttr("fill", e.Color)
		text.SetText(e.Label)
		text.SetAttr("x", e.Bounds.Height)
		text.SetAttr("y", r)
		text.SetAttr("dominant-baseline", "central")
		text.SetStyle("font-size", surface.FormatValue(l.fontSize)+"px")
	}
	l.lastLayout = entries
	l.MarkRendered()
	return nil
}

// Entries returns the entries drawn by the last render.
func (l *Legend) Entries() []Entry { return append([]Entry(nil), l.lastLayout...) }

// EntryAt returns the domain value of the entry under (x, y), in legend
// coordinates.
func (l *Legend) EntryAt(x, y float64) (any, bool) {
	for _, e := range l.lastLayout {
		if e.Bounds.Contains(x, y) {
			return e.Value, true
		}
	}
	return nil, false
}
