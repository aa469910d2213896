package plot

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Pie draws one sector per datum, sized by "value", around the center of
// the plot. "inner-radius" and "outer-radius" default to 0 and half the
// smaller side. Negative values are dropped with a warning.
type Pie struct {
	Plot
	colors *scale.Color
	angles map[*entry][]float64
}

// NewPie creates a pie plot.
func NewPie() *Pie {
	p := &Pie{colors: scale.NewColor(), angles: make(map[*entry][]float64)}
	p.initPlot(p, "pie-plot")
	return p
}

func (p *Pie) positional() []string { return []string{"value"} }

// ComputeLayout places the plot and centers the sectors.
func (p *Pie) ComputeLayout(x, y, width, height float64) {
	component.Place(p, x, y, width, height)
	if p.renderArea != nil {
		p.renderArea.SetTranslate(p.Width()/2, p.Height()/2)
	}
}

func (p *Pie) radii(e *entry, r record) (float64, float64, error) {
	inner, outer := 0.0, math.Min(p.Width(), p.Height())/2
	if _, ok := p.projections["inner-radius"]; ok {
		v, err := p.pixel("inner-radius", e, r)
		if err != nil {
			return 0, 0, err
		}
		inner = v
	}
	if _, ok := p.projections["outer-radius"]; ok {
		v, err := p.pixel("outer-radius", e, r)
		if err != nil {
			return 0, 0, err
		}
		outer = v
	}
	return inner, outer, nil
}

// sweep computes the start angle of every record and the total angle.
func (p *Pie) sweep(e *entry, recs []record) ([]record, error) {
	values := make([]float64, 0, len(recs))
	kept := recs[:0:0]
	total := 0.0
	for _, r := range recs {
		v, err := p.pixel("value", e, r)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(v) {
			continue
		}
		if v < 0 {
			p.Logger().Warn("negative pie value dropped", "plot", p.ID(), "dataset", e.key, "index", r.index, "value", v)
			continue
		}
		kept = append(kept, r)
		values = append(values, v)
		total += v
	}
	angles := make([]float64, len(e.ds.Data())+1)
	for i := range angles {
		angles[i] = math.NaN()
	}
	a := 0.0
	for i, r := range kept {
		angles[r.index] = a
		if total > 0 {
			a += values[i] / total * 2 * math.Pi
		}
	}
	angles[len(angles)-1] = a
	p.angles[e] = angles
	return kept, nil
}

// arc returns the start and end angle of a record.
func (p *Pie) arc(e *entry, r record) (float64, float64) {
	angles := p.angles[e]
	start := angles[r.index]
	end := angles[len(angles)-1]
	for j := r.index + 1; j < len(angles)-1; j++ {
		if !math.IsNaN(angles[j]) {
			end = angles[j]
			break
		}
	}
	return start, end
}

func (p *Pie) point(e *entry, r record) (float64, float64, error) {
	if _, ok := p.angles[e]; !ok {
		return math.NaN(), math.NaN(), nil
	}
	inner, outer, err := p.radii(e, r)
	if err != nil {
		return 0, 0, err
	}
	a0, a1 := p.arc(e, r)
	mid, rad := (a0+a1)/2, (inner+outer)/2
	return p.Width()/2 + rad*math.Sin(mid), p.Height()/2 - rad*math.Cos(mid), nil
}

func (p *Pie) layers(e *entry, recs []record) ([]layer, error) {
	kept, err := p.sweep(e, recs)
	if err != nil {
		return nil, err
	}
	main := p.attrs(e, "value", "inner-radius", "outer-radius")
	main["d"] = func(d any, _ int) (any, error) {
		r := d.(record)
		inner, outer, err := p.radii(e, r)
		if err != nil {
			return nil, err
		}
		a0, a1 := p.arc(e, r)
		return arcPath(inner, outer, a0, a1), nil
	}
	if _, ok := p.projections["fill"]; !ok {
		main["fill"] = func(d any, _ int) (any, error) {
			c, err := p.colors.Scale(d.(record).index)
			return c, err
		}
	}
	return []layer{{name: "arc", tag: "path", data: joinData(kept), plan: p.plan(main, nil), key: recordKey}}, nil
}
