package plot

import (
	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Area draws, per dataset, a filled band between y0 and y and a line
// along y. Until y0 is projected explicitly it is zero on the y scale,
// and zero is a padding exception there.
type Area struct {
	Plot
	stack *stack

	y0Default  bool
	internal   bool
	paddingKey string
	padded     scale.Quantitative
}

// NewArea creates an area plot.
func NewArea() *Area {
	a := &Area{}
	a.initArea(a, "area-plot")
	return a
}

func (a *Area) initArea(self variant, kind string) {
	a.initPlot(self, kind)
	a.paddingKey = "area-baseline/" + a.ID()
	a.y0Default = true
	a.internal = true
	_ = a.Project("y0", dataset.Constant(0.0), nil)
	a.internal = false
	_ = a.Project("fill", dataset.Constant(defaultColor), nil)
	_ = a.Project("fill-opacity", dataset.Constant(0.25), nil)
	_ = a.Project("stroke", dataset.Constant(defaultColor), nil)
}

func (a *Area) positional() []string { return []string{"x", "y", "y0"} }

func (a *Area) projected(attr string) {
	switch attr {
	case "y0":
		if !a.internal {
			a.y0Default = false
		}
	case "y":
		if a.y0Default {
			a.internal = true
			_ = a.Project("y0", dataset.Constant(0.0), a.ScaleOf("y"))
			a.internal = false
		}
		a.syncPaddingException()
	}
	if a.stack != nil {
		a.stack.compute(&a.Plot)
	}
}

// syncPaddingException keeps zero unpadded on the current y scale.
func (a *Area) syncPaddingException() {
	q := a.quantitative("y")
	if a.padded != nil && a.padded != q {
		a.padded.Domainer().RemovePaddingException(a.paddingKey)
		a.padded.RefreshDomain()
	}
	a.padded = q
	if q != nil && (a.y0Default || a.stack != nil) {
		q.Domainer().AddPaddingException(a.paddingKey, 0.0)
		q.RefreshDomain()
	}
}

func (a *Area) datasetsChanged() {
	if a.stack != nil {
		a.stack.compute(&a.Plot)
	}
}

func (a *Area) prepare() error {
	if a.stack != nil {
		a.stack.compute(&a.Plot)
	}
	return nil
}

func (a *Area) extentAccessor(attr string, e *entry, acc dataset.Accessor) dataset.Accessor {
	if a.stack == nil {
		return acc
	}
	switch attr {
	case "y":
		return a.stack.extentAccessor(e, acc)
	case "y0":
		return func(_ any, i int, _ *dataset.Dataset) any { return a.stack.offset(e, i) }
	}
	return acc
}

func (a *Area) top(e *entry, r record) (float64, float64, error) {
	x, err := a.pixel("x", e, r)
	if err != nil {
		return 0, 0, err
	}
	if a.stack == nil {
		y, err := a.pixel("y", e, r)
		return x, y, err
	}
	top, _, err := a.stack.top(&a.Plot, e, r)
	return x, a.position("y", top), err
}

func (a *Area) bottom(e *entry, r record) (float64, float64, error) {
	x, err := a.pixel("x", e, r)
	if err != nil {
		return 0, 0, err
	}
	if a.stack == nil {
		y, err := a.pixel("y0", e, r)
		return x, y, err
	}
	return x, a.position("y", a.stack.offset(e, r.index)), nil
}

func (a *Area) point(e *entry, r record) (float64, float64, error) { return a.top(e, r) }

func (a *Area) layers(e *entry, recs []record) ([]layer, error) {
	attrs, err := a.pathAttrs(e, recs, "x", "y", "y0")
	if err != nil {
		return nil, err
	}
	tops, err := a.runs(e, recs, func(r record) (float64, float64, error) { return a.top(e, r) })
	if err != nil {
		return nil, err
	}
	bottoms, err := a.runs(e, recs, func(r record) (float64, float64, error) { return a.bottom(e, r) })
	if err != nil {
		return nil, err
	}
	base := a.baselinePixel()

	band := animator.AttrMap{}
	stroke := animator.AttrMap{}
	for name, proj := range attrs {
		switch name {
		case "fill", "fill-opacity":
			band[name] = proj
		case "stroke", "stroke-width":
			stroke[name] = proj
		default:
			band[name] = proj
			stroke[name] = proj
		}
	}
	band["stroke"] = constant("none")
	band["d"] = constant(areaPath(tops, bottoms))
	stroke["fill"] = constant("none")
	stroke["d"] = constant(linePath(tops))

	flatTops := flatten(tops, base)
	return []layer{
		{
			name: "area",
			tag:  "path",
			data: []any{e.key},
			plan: a.plan(band, override(band, map[string]any{"d": areaPath(flatTops, flatten(bottoms, base))})),
		},
		{
			name: "line",
			tag:  "path",
			data: []any{e.key},
			plan: a.plan(stroke, override(stroke, map[string]any{"d": linePath(flatTops)})),
		},
	}, nil
}

// StackedArea stacks the areas of its datasets in dataset order. Datasets
// should share their x values.
type StackedArea struct {
	Area
}

// NewStackedArea creates a stacked area plot.
func NewStackedArea() *StackedArea {
	s := &StackedArea{}
	s.stack = newStack("x", "y")
	s.initArea(s, "stacked-area-plot")
	return s
}

// StackOffsets returns the stack offset of every datum of a dataset.
func (a *Area) StackOffsets(key string) []float64 {
	e := a.entry(key)
	if e == nil || a.stack == nil {
		return nil
	}
	return append([]float64(nil), a.stack.offsets[e]...)
}
