package scale

import (
	"math"
)

// quantitative implements the domain, range and perspective handling of
// scales with a continuous numeric coordinate space.
type quantitative struct {
	base
	tf       Transform
	domainer *Domainer

	dmin, dmax float64
	r0, r1     float64
}

func (q *quantitative) initQuantitative(self Scale, tf Transform) {
	q.base.init(self, q.recompute)
	q.tf = tf
	q.domainer = NewDomainer()
	q.dmin, q.dmax = tf.DefaultExtent()
	q.r0, q.r1 = 0, 1
}

// extents returns the [min, max] of every perspective with at least one
// finite value. Values the transform rejects are skipped here; they
// surface as errors when a plot maps them.
func (q *quantitative) extents() [][2]float64 {
	var out [][2]float64
	for _, key := range q.keys {
		p := q.perspectives[key]
		min, max := math.Inf(1), math.Inf(-1)
		for i, d := range p.ds.Data() {
			f, err := q.tf.Coerce(p.acc(d, i, p.ds))
			if err != nil || !finite(f) {
				continue
			}
			min = math.Min(min, f)
			max = math.Max(max, f)
		}
		if min <= max {
			out = append(out, [2]float64{min, max})
		}
	}
	return out
}

func (q *quantitative) recompute() {
	min, max := q.domainer.ComputeDomain(q.extents(), q.tf)
	q.setExtent(min, max)
}

func (q *quantitative) setExtent(min, max float64) {
	if min == q.dmin && max == q.dmax {
		return
	}
	q.dmin, q.dmax = min, max
	q.broadcast()
}

// AutoDomain re-enables auto mode and recomputes the domain.
func (q *quantitative) AutoDomain() {
	q.auto = true
	q.recompute()
}

// RefreshDomain recomputes the domain if auto mode is active. Plots call
// it after changing the Domainer.
func (q *quantitative) RefreshDomain() {
	if q.auto {
		q.recompute()
	}
}

// Extent returns the numeric domain.
func (q *quantitative) Extent() (float64, float64) {
	return q.dmin, q.dmax
}

// SetExtent sets an explicit numeric domain and leaves auto mode.
func (q *quantitative) SetExtent(min, max float64) {
	q.auto = false
	q.setExtent(min, max)
}

// Range returns the output interval.
func (q *quantitative) Range() (float64, float64) {
	return q.r0, q.r1
}

// SetRange sets the output interval. The domain is unaffected.
func (q *quantitative) SetRange(a, b float64) {
	if a == q.r0 && b == q.r1 {
		return
	}
	q.r0, q.r1 = a, b
	q.broadcast()
}

// Float converts a domain value to the numeric coordinate space.
func (q *quantitative) Float(v any) (float64, error) {
	return q.tf.Coerce(v)
}

// Position maps a numeric coordinate into the range. A zero-width domain
// maps everything to the middle of the range.
func (q *quantitative) Position(x float64) float64 {
	f0, f1 := q.tf.Forward(q.dmin), q.tf.Forward(q.dmax)
	if f0 == f1 {
		return (q.r0 + q.r1) / 2
	}
	t := (q.tf.Forward(x) - f0) / (f1 - f0)
	return q.r0 + t*(q.r1-q.r0)
}

// Invert maps a range value back to a numeric coordinate.
func (q *quantitative) Invert(px float64) float64 {
	if q.r0 == q.r1 {
		return q.dmin
	}
	f0, f1 := q.tf.Forward(q.dmin), q.tf.Forward(q.dmax)
	t := (px - q.r0) / (q.r1 - q.r0)
	return q.tf.Inverse(f0 + t*(f1-f0))
}

// Map converts v and maps it into the range. Missing values map to NaN.
func (q *quantitative) Map(v any) (any, error) {
	x, err := q.tf.Coerce(v)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(x) {
		return math.NaN(), nil
	}
	return q.Position(x), nil
}

// BandWidth reports that quantitative scales have no bands.
func (q *quantitative) BandWidth() (float64, bool) {
	return 0, false
}

// Domainer returns the domain policy.
func (q *quantitative) Domainer() *Domainer {
	return q.domainer
}

// SetDomainer replaces the domain policy and recomputes in auto mode.
func (q *quantitative) SetDomainer(d *Domainer) {
	if d == nil {
		d = NewDomainer()
	}
	q.domainer = d
	q.RefreshDomain()
}

// Transform returns the coordinate transform.
func (q *quantitative) Transform() Transform {
	return q.tf
}
