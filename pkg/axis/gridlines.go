package axis

import (
	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/drawer"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Gridlines draws a line across the component at every tick of an x
// and a y scale. Either scale may be nil. Gridlines take whatever space
// they are offered; they are usually placed in a Group with a plot.
type Gridlines struct {
	component.Base
	x, y      scale.Quantitative
	handles   map[scale.Quantitative]event.Handle
	tickCount int

	xLines *drawer.Drawer
	yLines *drawer.Drawer
}

// NewGridlines creates gridlines for x and y.
func NewGridlines(x, y scale.Quantitative) *Gridlines {
	g := &Gridlines{x: x, y: y, tickCount: DefaultTickCount, handles: make(map[scale.Quantitative]event.Handle)}
	g.Init(g, "gridlines")
	for _, sc := range []scale.Quantitative{x, y} {
		if sc == nil {
			continue
		}
		if _, ok := g.handles[sc]; ok {
			continue
		}
		g.handles[sc] = sc.OnUpdate(func(scale.Scale) { g.rerender() })
	}
	g.OnAnchor(func() {
		xg := g.Content().AppendChild("g")
		xg.AddClass("x-gridlines")
		yg := g.Content().AppendChild("g")
		yg.AddClass("y-gridlines")
		g.xLines = drawer.New(xg, "line", "gridline")
		g.yLines = drawer.New(yg, "line", "gridline")
	})
	g.OnRemove(func() {
		for sc, h := range g.handles {
			_ = sc.OffUpdate(h)
		}
	})
	return g
}

// SetTickCount sets the maximum number of lines per direction.
func (g *Gridlines) SetTickCount(n int) error {
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "tick count must be at least 1, got %d", n)
	}
	g.tickCount = n
	g.rerender()
	return nil
}

func (g *Gridlines) rerender() {
	if err := g.Render(); err != nil {
		g.Logger().Warn("gridlines render failed", "component", g.ID(), "err", err)
	}
}

func (g *Gridlines) positions(sc scale.Quantitative) []any {
	if sc == nil {
		return nil
	}
	var out []any
	for _, v := range sc.Ticks(g.tickCount) {
		out = append(out, sc.Position(v))
	}
	return out
}

// Render draws vertical lines at the x ticks and horizontal lines at the
// y ticks.
func (g *Gridlines) Render() error {
	if !g.Renderable() {
		return nil
	}
	w, h := g.Width(), g.Height()
	pos := func(d any, _ int) (any, error) { return d, nil }
	fixed := func(v float64) animator.Projector {
		return func(any, int) (any, error) { return v, nil }
	}

	vertical := animator.AttrMap{"x1": pos, "x2": pos, "y1": fixed(0), "y2": fixed(h)}
	if _, err := g.xLines.Draw(g.positions(g.x), drawer.Plan{{Name: "x", Attrs: vertical}}); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw x gridlines")
	}
	horizontal := animator.AttrMap{"y1": pos, "y2": pos, "x1": fixed(0), "x2": fixed(w)}
	if _, err := g.yLines.Draw(g.positions(g.y), drawer.Plan{{Name: "y", Attrs: horizontal}}); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw y gridlines")
	}
	g.MarkRendered()
	return nil
}
