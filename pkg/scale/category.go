package scale

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// Default band paddings, as proportions of one step.
const (
	DefaultInnerPadding = 0.3
	DefaultOuterPadding = 0.5
)

// Category is an ordinal scale dividing its range into equal bands.
// Scale returns the center of a value's band.
type Category struct {
	ordinal
	r0, r1       float64
	inner, outer float64
}

// NewCategory creates a category scale with range [0, 1].
func NewCategory() *Category {
	s := &Category{r0: 0, r1: 1, inner: DefaultInnerPadding, outer: DefaultOuterPadding}
	s.initOrdinal(s)
	return s
}

// Kind returns KindCategory.
func (s *Category) Kind() Kind { return KindCategory }

// Range returns the output interval.
func (s *Category) Range() (float64, float64) { return s.r0, s.r1 }

// SetRange sets the output interval.
func (s *Category) SetRange(a, b float64) {
	if a == s.r0 && b == s.r1 {
		return
	}
	s.r0, s.r1 = a, b
	s.broadcast()
}

// InnerPadding returns the gap between bands as a proportion of a step.
func (s *Category) InnerPadding() float64 { return s.inner }

// SetInnerPadding sets the gap between bands; p must be in [0, 1).
func (s *Category) SetInnerPadding(p float64) error {
	if err := errors.ValidateUnit("inner padding", p); err != nil {
		return err
	}
	s.inner = p
	s.broadcast()
	return nil
}

// OuterPadding returns the gap before the first and after the last band.
func (s *Category) OuterPadding() float64 { return s.outer }

// SetOuterPadding sets the outer gap as a proportion of a step; p must be
// non-negative.
func (s *Category) SetOuterPadding(p float64) error {
	if err := errors.ValidateNonNegative("outer padding", p); err != nil {
		return err
	}
	s.outer = p
	s.broadcast()
	return nil
}

// step returns the signed distance between consecutive band starts.
func (s *Category) step() float64 {
	n := float64(len(s.domain))
	denom := n - s.inner + 2*s.outer
	if n == 0 || denom <= 0 {
		return 0
	}
	return (s.r1 - s.r0) / denom
}

// BandWidth returns the width of one band.
func (s *Category) BandWidth() (float64, bool) {
	return math.Abs(s.step() * (1 - s.inner)), true
}

// StepWidth returns the distance between band centers.
func (s *Category) StepWidth() float64 {
	return math.Abs(s.step())
}

// Scale returns the center of v's band and whether v is in the domain.
func (s *Category) Scale(v any) (float64, bool) {
	i, ok, err := s.lookup(v)
	if err != nil || !ok {
		return math.NaN(), false
	}
	return s.center(i), true
}

func (s *Category) center(i int) float64 {
	step := s.step()
	start := s.r0 + step*(s.outer+float64(i))
	return start + step*(1-s.inner)/2
}

// Map maps v to its band center. nil is missing data; values outside the
// domain and non-comparable values are errors.
func (s *Category) Map(v any) (any, error) {
	if v == nil {
		return math.NaN(), nil
	}
	i, ok, err := s.lookup(v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupportedValue, "value %v is not in the category domain", v)
	}
	return s.center(i), nil
}

// Invert returns the domain value whose band center is closest to px.
func (s *Category) Invert(px float64) (any, bool) {
	if len(s.domain) == 0 {
		return nil, false
	}
	best, bestDist := 0, math.Inf(1)
	for i := range s.domain {
		if d := math.Abs(s.center(i) - px); d < bestDist {
			best, bestDist = i, d
		}
	}
	return s.domain[best], true
}

var _ Ordinal = (*Category)(nil)
