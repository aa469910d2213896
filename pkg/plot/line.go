package plot

import (
	"slices"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Line draws one path per dataset through its (x, y) points. The path
// breaks where data is missing.
type Line struct {
	Plot
}

// NewLine creates a line plot.
func NewLine() *Line {
	l := &Line{}
	l.initPlot(l, "line-plot")
	_ = l.Project("stroke", dataset.Constant(defaultColor), nil)
	_ = l.Project("stroke-width", dataset.Constant(2.0), nil)
	return l
}

func (l *Line) positional() []string { return []string{"x", "y"} }

func (l *Line) layers(e *entry, recs []record) ([]layer, error) {
	attrs, err := l.pathAttrs(e, recs, "x", "y")
	if err != nil {
		return nil, err
	}
	runs, err := l.runs(e, recs, func(r record) (float64, float64, error) { return l.point(e, r) })
	if err != nil {
		return nil, err
	}
	attrs["fill"] = constant("none")
	attrs["d"] = constant(linePath(runs))
	reset := override(attrs, map[string]any{"d": linePath(flatten(runs, l.baselinePixel()))})
	return []layer{{name: "line", tag: "path", data: []any{e.key}, plan: l.plan(attrs, reset)}}, nil
}

// pathAttrs evaluates every projection except the excluded ones on the
// first record, for attributes set once per path.
func (p *Plot) pathAttrs(e *entry, recs []record, exclude ...string) (animator.AttrMap, error) {
	m := animator.AttrMap{}
	for attr := range p.projections {
		if slices.Contains(exclude, attr) {
			continue
		}
		v, err := p.firstValue(attr, e, recs)
		if err != nil {
			return nil, err
		}
		if v != nil {
			m[attr] = constant(v)
		}
	}
	return m, nil
}

// runs maps each unbroken run of records to points.
func (p *Plot) runs(e *entry, recs []record, at func(record) (float64, float64, error)) ([][]point, error) {
	var out [][]point
	for _, seg := range segments(recs) {
		run := make([]point, 0, len(seg))
		for _, r := range seg {
			x, y, err := at(r)
			if err != nil {
				return nil, err
			}
			run = append(run, point{x, y})
		}
		out = append(out, run)
	}
	return out, nil
}

// baselinePixel is where lines and areas grow from: the y position of
// zero, or the bottom of the plot for scales without a zero.
func (p *Plot) baselinePixel() float64 {
	if q := p.quantitative("y"); q != nil && q.Kind() == scale.KindLinear {
		return q.Position(0)
	}
	return p.Height()
}

// flatten moves every point onto y.
func flatten(runs [][]point, y float64) [][]point {
	out := make([][]point, len(runs))
	for i, run := range runs {
		out[i] = make([]point, len(run))
		for j, pt := range run {
			out[i][j] = point{pt.x, y}
		}
	}
	return out
}
