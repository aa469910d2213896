package axis

import (
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Category draws one tick and label per domain value, at the center of
// its band.
type Category struct {
	Axis
	cs *scale.Category
}

// NewCategory creates an axis for a category scale.
func NewCategory(sc *scale.Category, orientation string) (*Category, error) {
	a := &Category{cs: sc}
	if err := a.initAxis(a, "category-axis", sc, orientation); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Category) ticks() []tick {
	domain := a.cs.Domain()
	out := make([]tick, 0, len(domain))
	for _, v := range domain {
		pos, ok := a.cs.Scale(v)
		if !ok {
			continue
		}
		out = append(out, tick{value: v, pos: pos, label: a.format(v, func() string { return sprint(v) })})
	}
	return out
}

// Category ranges run top to bottom on vertical axes, like banded plots.
func (a *Category) setRange(length float64) { a.cs.SetRange(0, length) }
