package scale

import (
	"math"

	mscale "github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// logTransform is a logarithmic coordinate space.
type logTransform struct {
	base float64
}

func (t logTransform) Forward(x float64) float64 {
	if t.base == 10 {
		return math.Log10(x)
	}
	return math.Log(x) / math.Log(t.base)
}

func (t logTransform) Inverse(y float64) float64 {
	return math.Pow(t.base, y)
}

func (logTransform) Coerce(v any) (float64, error) { return toFloat(v) }

func (t logTransform) DefaultExtent() (float64, float64) { return 1, t.base }

func (logTransform) DegenerateSpan() float64 { return 1 }

func (t logTransform) Nice(min, max float64, count int) (float64, float64) {
	if min <= 0 || !finite(min) || !finite(max) || min >= max || count <= 0 {
		return min, max
	}
	ls, err := mscale.NewLog(min, max, int(t.base))
	if err != nil {
		return min, max
	}
	ls.Nice(mscale.TickOptions{Max: count})
	return ls.Min, ls.Max
}

// Log is a quantitative scale with a logarithmic mapping. Non-positive
// values have no position and map to NaN or infinities.
type Log struct {
	quantitative
	logBase int
}

// NewLog creates a log scale in the given integer base (at least 2).
func NewLog(base int) (*Log, error) {
	if base < 2 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "log base must be at least 2, got %d", base)
	}
	s := &Log{logBase: base}
	s.initQuantitative(s, logTransform{base: float64(base)})
	return s, nil
}

// Kind returns KindLog.
func (s *Log) Kind() Kind { return KindLog }

// Base returns the logarithm base.
func (s *Log) Base() int { return s.logBase }

// Domain returns the domain.
func (s *Log) Domain() (float64, float64) { return s.Extent() }

// SetDomain sets an explicit domain and leaves auto mode.
func (s *Log) SetDomain(min, max float64) { s.SetExtent(min, max) }

// Scale maps x into the range.
func (s *Log) Scale(x float64) float64 { return s.Position(x) }

// Ticks returns at most count ticks at powers of the base and their
// multiples. Domains touching zero fall back to linear ticks.
func (s *Log) Ticks(count int) []float64 {
	min, max := s.dmin, s.dmax
	if min > max {
		min, max = max, min
	}
	if min <= 0 {
		return linearTicks(min, max, count)
	}
	if count <= 0 {
		count = DefaultNiceCount
	}
	if min == max {
		return []float64{min}
	}
	ls, err := mscale.NewLog(min, max, s.logBase)
	if err != nil {
		return linearTicks(min, max, count)
	}
	major, _ := ls.Ticks(mscale.TickOptions{Max: count})
	return major
}

// FormatTick formats a tick value.
func (s *Log) FormatTick(x float64) string {
	return formatNumber(x)
}

var _ Quantitative = (*Log)(nil)
