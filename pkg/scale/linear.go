package scale

import (
	"fmt"

	mscale "github.com/aclements/go-moremath/scale"
)

// linearTransform is the identity coordinate space.
type linearTransform struct{}

func (linearTransform) Forward(x float64) float64 { return x }
func (linearTransform) Inverse(y float64) float64 { return y }

func (linearTransform) Coerce(v any) (float64, error) { return toFloat(v) }

func (linearTransform) DefaultExtent() (float64, float64) { return 0, 1 }

func (linearTransform) DegenerateSpan() float64 { return 1 }

func (linearTransform) Nice(min, max float64, count int) (float64, float64) {
	if !finite(min) || !finite(max) || min >= max || count <= 0 {
		return min, max
	}
	ls := mscale.Linear{Min: min, Max: max}
	ls.Nice(mscale.TickOptions{Max: count})
	return ls.Min, ls.Max
}

// linearTicks returns at most count round values within [min, max].
func linearTicks(min, max float64, count int) []float64 {
	if count <= 0 {
		count = DefaultNiceCount
	}
	if min > max {
		min, max = max, min
	}
	if !finite(min) || !finite(max) {
		return nil
	}
	if min == max {
		return []float64{min}
	}
	ls := mscale.Linear{Min: min, Max: max}
	major, _ := ls.Ticks(mscale.TickOptions{Max: count})
	return major
}

// Linear is a quantitative scale with a linear mapping.
type Linear struct {
	quantitative
}

// NewLinear creates a linear scale with domain [0, 1] and range [0, 1].
func NewLinear() *Linear {
	s := &Linear{}
	s.initQuantitative(s, linearTransform{})
	return s
}

// Kind returns KindLinear.
func (s *Linear) Kind() Kind { return KindLinear }

// Domain returns the domain.
func (s *Linear) Domain() (float64, float64) { return s.Extent() }

// SetDomain sets an explicit domain and leaves auto mode.
func (s *Linear) SetDomain(min, max float64) { s.SetExtent(min, max) }

// Scale maps x into the range.
func (s *Linear) Scale(x float64) float64 { return s.Position(x) }

// Ticks returns at most count round values in the domain.
func (s *Linear) Ticks(count int) []float64 {
	return linearTicks(s.dmin, s.dmax, count)
}

// FormatTick formats a tick value.
func (s *Linear) FormatTick(x float64) string {
	return formatNumber(x)
}

// formatNumber prints x with up to six significant digits and without a
// negative zero.
func formatNumber(x float64) string {
	if x == 0 {
		return "0"
	}
	return fmt.Sprintf("%.6g", x)
}

var _ Quantitative = (*Linear)(nil)
