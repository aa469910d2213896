package scale

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// DefaultPadding is the padding proportion used by Pad.
const DefaultPadding = 0.05

// DefaultNiceCount is the tick count targeted by Nice.
const DefaultNiceCount = 10

// Transform describes how a quantitative scale lays out its numeric
// coordinate space. The Domainer pads in transform space, so log scales
// pad by a proportion of decades rather than of raw values.
type Transform interface {
	Forward(x float64) float64
	Inverse(y float64) float64

	// Coerce converts a domain value (data, included values, padding
	// exceptions) into the numeric coordinate space.
	Coerce(v any) (float64, error)

	// DefaultExtent is the domain used when there is nothing to show.
	DefaultExtent() (min, max float64)

	// DegenerateSpan is the distance, in transform space, added on each
	// side of a zero-width domain.
	DegenerateSpan() float64

	// Nice widens [min, max] outward to round values for about count ticks.
	Nice(min, max float64, count int) (float64, float64)
}

// Combiner merges a non-empty list of [min, max] extents into one.
type Combiner func(extents [][2]float64) [2]float64

// Domainer reduces the extents of a scale's perspectives to one domain:
// merge, include explicit values, pad (honouring padding exceptions), and
// finally round to nice values.
//
// Included values and padding exceptions may be keyed, in which case a
// later call with the same key replaces the value, or unkeyed, in which
// case the value itself is the key.
type Domainer struct {
	padding    float64
	niceCount  int
	exceptions valueSet
	included   valueSet
	combine    Combiner
	equal      func(a, b float64) bool
}

// NewDomainer creates a Domainer that merges extents without padding or
// rounding.
func NewDomainer() *Domainer {
	return &Domainer{}
}

// Pad enables padding with DefaultPadding.
func (d *Domainer) Pad() *Domainer {
	d.padding = DefaultPadding
	return d
}

// SetPadding sets the total padding proportion; it is split evenly between
// both ends. 0 disables padding. The last call wins.
func (d *Domainer) SetPadding(p float64) error {
	if err := errors.ValidateNonNegative("padding proportion", p); err != nil {
		return err
	}
	d.padding = p
	return nil
}

// Padding returns the padding proportion.
func (d *Domainer) Padding() float64 {
	return d.padding
}

// Nice enables nice rounding with DefaultNiceCount ticks.
func (d *Domainer) Nice() *Domainer {
	d.niceCount = DefaultNiceCount
	return d
}

// SetNice sets the target tick count for nice rounding; count <= 0
// disables it.
func (d *Domainer) SetNice(count int) {
	if count < 0 {
		count = 0
	}
	d.niceCount = count
}

// AddPaddingException registers v under key. An end of the merged domain
// equal to an exception value is left unpadded.
func (d *Domainer) AddPaddingException(key string, v any) {
	d.exceptions.put(namedKey(key), v)
}

// AddPaddingExceptionValue registers an unkeyed exception.
func (d *Domainer) AddPaddingExceptionValue(v any) {
	d.exceptions.put(v, v)
}

// RemovePaddingException removes the exception registered under key.
func (d *Domainer) RemovePaddingException(key string) {
	d.exceptions.remove(namedKey(key))
}

// RemovePaddingExceptionValue removes an unkeyed exception.
func (d *Domainer) RemovePaddingExceptionValue(v any) {
	d.exceptions.remove(v)
}

// AddIncludedValue registers v under key; the domain always covers it.
func (d *Domainer) AddIncludedValue(key string, v any) {
	d.included.put(namedKey(key), v)
}

// AddIncludedValueValue registers an unkeyed included value.
func (d *Domainer) AddIncludedValueValue(v any) {
	d.included.put(v, v)
}

// RemoveIncludedValue removes the included value registered under key.
func (d *Domainer) RemoveIncludedValue(key string) {
	d.included.remove(namedKey(key))
}

// RemoveIncludedValueValue removes an unkeyed included value.
func (d *Domainer) RemoveIncludedValueValue(v any) {
	d.included.remove(v)
}

// SetCombiner replaces the default min-of-mins, max-of-maxes merge.
func (d *Domainer) SetCombiner(c Combiner) {
	d.combine = c
}

// SetEqual replaces the exact equality used to match padding exceptions
// and detect zero-width domains.
func (d *Domainer) SetEqual(eq func(a, b float64) bool) {
	d.equal = eq
}

func (d *Domainer) eq(a, b float64) bool {
	if d.equal != nil {
		return d.equal(a, b)
	}
	return a == b
}

// ComputeDomain merges extents into a domain. It has no side effects.
func (d *Domainer) ComputeDomain(extents [][2]float64, tf Transform) (float64, float64) {
	included := d.included.floats(tf)
	if len(extents) == 0 && len(included) == 0 {
		return tf.DefaultExtent()
	}

	min, max := math.Inf(1), math.Inf(-1)
	if len(extents) > 0 {
		if d.combine != nil {
			c := d.combine(extents)
			min, max = c[0], c[1]
		} else {
			for _, e := range extents {
				min = math.Min(min, e[0])
				max = math.Max(max, e[1])
			}
		}
	}
	for _, v := range included {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	min, max = d.pad(min, max, tf)
	if d.niceCount > 0 {
		min, max = tf.Nice(min, max, d.niceCount)
	}
	return min, max
}

func (d *Domainer) pad(min, max float64, tf Transform) (float64, float64) {
	if d.padding <= 0 {
		return min, max
	}
	if d.eq(min, max) {
		f := tf.Forward(min)
		if !finite(f) {
			return min, max
		}
		span := tf.DegenerateSpan()
		return tf.Inverse(f - span), tf.Inverse(f + span)
	}

	fmin, fmax := tf.Forward(min), tf.Forward(max)
	if !finite(fmin) || !finite(fmax) {
		return min, max
	}
	delta := (fmax - fmin) * d.padding / 2

	newMin, newMax := tf.Inverse(fmin-delta), tf.Inverse(fmax+delta)
	for _, e := range d.exceptions.floats(tf) {
		if d.eq(e, min) {
			newMin = min
		}
		if d.eq(e, max) {
			newMax = max
		}
	}
	return newMin, newMax
}

// namedKey separates caller keys from unkeyed values stored by value.
type namedKey string

// valueSet is an insertion-ordered map of domain values.
type valueSet struct {
	keys []any
	vals map[any]any
}

func (s *valueSet) put(k, v any) {
	if s.vals == nil {
		s.vals = make(map[any]any)
	}
	if _, ok := s.vals[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.vals[k] = v
}

func (s *valueSet) remove(k any) {
	if _, ok := s.vals[k]; !ok {
		return
	}
	delete(s.vals, k)
	for i, o := range s.keys {
		if o == k {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
}

// floats converts the stored values, dropping the ones tf cannot represent.
func (s *valueSet) floats(tf Transform) []float64 {
	out := make([]float64, 0, len(s.keys))
	for _, k := range s.keys {
		f, err := tf.Coerce(s.vals[k])
		if err == nil && finite(f) {
			out = append(out, f)
		}
	}
	return out
}
