package plot

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Rectangle draws one rectangle per datum, typically the cells of a heat
// map. Along each axis a rectangle spans from x to x2 (y to y2) when the
// second attribute is projected, and fills the band of x (y) otherwise.
// Category scales projected on x or y lose their padding so cells touch.
type Rectangle struct {
	Plot
}

// NewRectangle creates a rectangle plot.
func NewRectangle() *Rectangle {
	p := &Rectangle{}
	p.initPlot(p, "rectangle-plot")
	_ = p.Project("fill", dataset.Constant(defaultColor), nil)
	return p
}

func (p *Rectangle) positional() []string { return []string{"x", "y", "x2", "y2"} }

func (p *Rectangle) projected(attr string) {
	if attr != "x" && attr != "y" {
		return
	}
	if c, ok := p.ScaleOf(attr).(*scale.Category); ok {
		_ = c.SetInnerPadding(0)
		_ = c.SetOuterPadding(0)
	}
}

func (p *Rectangle) prepare() error {
	for _, attr := range []string{"x", "y"} {
		if _, ok := p.projections[attr+"2"]; ok {
			continue
		}
		sc := p.ScaleOf(attr)
		if sc == nil {
			continue
		}
		if _, ok := sc.BandWidth(); !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "rectangle plot %s needs %q projected or a banded %q scale", p.ID(), attr+"2", attr)
		}
	}
	return nil
}

// span returns the start and size of a rectangle along attr.
func (p *Rectangle) span(attr, attr2 string, e *entry, r record) (float64, float64, error) {
	a, err := p.pixel(attr, e, r)
	if err != nil {
		return 0, 0, err
	}
	if _, ok := p.projections[attr2]; ok {
		var b float64
		if p.ScaleOf(attr2) == nil && p.quantitative(attr) != nil {
			// an unscaled end shares the start's scale
			v, err := scale.ToFloat(p.raw(attr2, e, r))
			if err != nil {
				return 0, 0, err
			}
			b = p.position(attr, v)
		} else if b, err = p.pixel(attr2, e, r); err != nil {
			return 0, 0, err
		}
		return math.Min(a, b), math.Abs(a - b), nil
	}
	if sc := p.ScaleOf(attr); sc != nil {
		if bw, ok := sc.BandWidth(); ok {
			return a - bw/2, bw, nil
		}
	}
	return 0, 0, errors.New(errors.ErrCodeInvalidConfig, "rectangle plot %s needs %q projected or a banded %q scale", p.ID(), attr2, attr)
}

func (p *Rectangle) geometry(e *entry, r record) (rect, error) {
	x, w, err := p.span("x", "x2", e, r)
	if err != nil {
		return rect{}, err
	}
	y, h, err := p.span("y", "y2", e, r)
	if err != nil {
		return rect{}, err
	}
	return rect{x: x, y: y, width: w, height: h}, nil
}

func (p *Rectangle) point(e *entry, r record) (float64, float64, error) {
	g, err := p.geometry(e, r)
	if err != nil {
		return 0, 0, err
	}
	return g.x + g.width/2, g.y + g.height/2, nil
}

func (p *Rectangle) layers(e *entry, recs []record) ([]layer, error) {
	side := func(f func(rect) float64) animator.Projector {
		return func(d any, _ int) (any, error) {
			g, err := p.geometry(e, d.(record))
			if err != nil {
				return nil, err
			}
			return f(g), nil
		}
	}
	main := p.attrs(e, "x", "y", "x2", "y2", "width", "height")
	main["x"] = side(func(g rect) float64 { return g.x })
	main["y"] = side(func(g rect) float64 { return g.y })
	main["width"] = side(func(g rect) float64 { return g.width })
	main["height"] = side(func(g rect) float64 { return g.height })
	return []layer{{name: "cell", tag: "rect", data: joinData(recs), plan: p.plan(main, nil), key: recordKey}}, nil
}
