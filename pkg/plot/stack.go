package plot

import (
	"fmt"
	"math"

	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// stack holds the offsets of stacked plots. Positive and negative values
// stack separately per key, in dataset order: the first dataset sits on
// the baseline.
type stack struct {
	keyAttr, valueAttr string
	offsets            map[*entry][]float64
}

func newStack(keyAttr, valueAttr string) *stack {
	return &stack{keyAttr: keyAttr, valueAttr: valueAttr, offsets: make(map[*entry][]float64)}
}

// compute recomputes every offset. Records with a missing value get a
// zero offset.
func (s *stack) compute(p *Plot) {
	pos := make(map[string]float64)
	neg := make(map[string]float64)
	s.offsets = make(map[*entry][]float64, len(p.entries))

	for _, e := range p.entries {
		data := e.ds.Data()
		values := make([]float64, len(data))
		keys := make([]string, len(data))
		allNegative := true
		for i, d := range data {
			r := record{value: d, index: i}
			keys[i] = fmt.Sprint(p.raw(s.keyAttr, e, r))
			v, err := scale.ToFloat(p.raw(s.valueAttr, e, r))
			if err != nil {
				v = math.NaN()
			}
			values[i] = v
			if v > 0 {
				allNegative = false
			}
		}

		offsets := make([]float64, len(data))
		for i, v := range values {
			k := keys[i]
			switch {
			case math.IsNaN(v):
			case v > 0 || (v == 0 && !allNegative):
				offsets[i] = pos[k]
				pos[k] += v
			default:
				offsets[i] = neg[k]
				neg[k] += v
			}
		}
		s.offsets[e] = offsets
	}

	if q := p.quantitative(s.valueAttr); q != nil {
		q.RefreshDomain()
	}
}

// offset returns the offset of the record at index i of e.
func (s *stack) offset(e *entry, i int) float64 {
	offsets := s.offsets[e]
	if i < 0 || i >= len(offsets) {
		return 0
	}
	return offsets[i]
}

// top returns offset + value in domain space.
func (s *stack) top(p *Plot, e *entry, r record) (float64, float64, error) {
	v, err := scale.ToFloat(p.raw(s.valueAttr, e, r))
	if err != nil {
		return 0, 0, err
	}
	off := s.offset(e, r.index)
	return off + v, off, nil
}

// extentAccessor shows the value scale stack tops instead of raw values.
func (s *stack) extentAccessor(e *entry, acc dataset.Accessor) dataset.Accessor {
	return func(d any, i int, ds *dataset.Dataset) any {
		v, err := scale.ToFloat(acc(d, i, ds))
		if err != nil {
			return nil
		}
		return v + s.offset(e, i)
	}
}
