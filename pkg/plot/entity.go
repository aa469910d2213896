package plot

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/surface"
)

// Entity is one drawn datum.
type Entity struct {
	DatasetKey string
	Datum      any
	Index      int
	// X and Y locate the datum in plot coordinates.
	X, Y float64
	Node surface.Node
}

// Entities returns every drawn datum in dataset order.
func (p *Plot) Entities() ([]Entity, error) {
	var out []Entity
	for _, e := range p.entries {
		recs, err := p.records(e)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			x, y, err := p.self.point(e, r)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			out = append(out, Entity{DatasetKey: e.key, Datum: r.value, Index: r.index, X: x, Y: y, Node: p.nodeFor(e, r.index)})
		}
	}
	return out, nil
}

// EntityNearest returns the drawn datum closest to (x, y), in plot
// coordinates.
func (p *Plot) EntityNearest(x, y float64) (Entity, bool) {
	entities, err := p.Entities()
	if err != nil {
		p.Logger().Warn("entity lookup failed", "plot", p.ID(), "err", err)
		return Entity{}, false
	}
	best, bestDist := -1, math.Inf(1)
	for i, ent := range entities {
		if d := math.Hypot(ent.X-x, ent.Y-y); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Entity{}, false
	}
	return entities[best], true
}

// nodeFor finds the node drawing index in the dataset's first layer. For
// path layers, which draw a whole dataset, that is the path.
func (p *Plot) nodeFor(e *entry, index int) surface.Node {
	if len(e.order) == 0 {
		return nil
	}
	bound := e.drawers[e.order[0]].Bound()
	for _, el := range bound {
		if r, ok := el.Datum.(record); ok && r.index == index {
			return el.Node
		}
	}
	if len(bound) > 0 {
		return bound[0].Node
	}
	return nil
}
