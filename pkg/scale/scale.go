// Package scale maps data values to pixel space.
//
// A scale owns a domain and a range and a set of perspectives: keyed
// (dataset, accessor) pairs registered by the plots that read it. In
// auto-domain mode the domain is always the Domainer's merge of every
// perspective's extent; setting an explicit domain leaves auto mode until
// AutoDomain is called again.
//
// Quantitative scales (Linear, Log, Time, InterpolatedColor) share the
// Domainer pipeline and work in a float64 coordinate space (time scales
// use Unix milliseconds). Ordinal scales (Category, Color) compute their
// domain as the unique union of perspective values.
//
// Plots never type-switch on scales: they ask Kind() or the BandWidth()
// capability once when a projection is bound.
package scale

import (
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/event"
)

// Kind tags the concrete scale family.
type Kind int

const (
	KindLinear Kind = iota
	KindLog
	KindTime
	KindCategory
	KindColor
	KindInterpolatedColor
)

var kindNames = [...]string{"linear", "log", "time", "category", "color", "interpolated-color"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Quantitative reports whether scales of this kind have a continuous domain.
func (k Kind) Quantitative() bool {
	return k == KindLinear || k == KindLog || k == KindTime || k == KindInterpolatedColor
}

// Scale is the capability shared by every scale kind.
type Scale interface {
	Kind() Kind

	// Map converts one domain value into a range value. Range values are
	// float64 pixels for positional scales and CSS colors for colour
	// scales. Unsupported value types are an error.
	Map(v any) (any, error)

	// BandWidth returns the pixel width of one band for banded scales.
	BandWidth() (float64, bool)

	AddPerspective(key string, ds *dataset.Dataset, acc dataset.Accessor)
	RemovePerspective(key string)
	HasPerspective(key string) bool

	// AutoDomain re-enables auto mode and recomputes the domain.
	AutoDomain()
	AutoDomainEnabled() bool

	OnUpdate(fn func(Scale)) event.Handle
	OffUpdate(h event.Handle) error
}

// Quantitative is implemented by scales with a numeric coordinate space.
type Quantitative interface {
	Scale

	// Float converts a domain value into the numeric coordinate space.
	// nil converts to NaN.
	Float(v any) (float64, error)

	// Position maps a numeric coordinate into the range.
	Position(x float64) float64

	// Invert maps a range value back to a numeric coordinate.
	Invert(px float64) float64

	Extent() (min, max float64)
	SetExtent(min, max float64)
	Range() (a, b float64)
	SetRange(a, b float64)

	Ticks(count int) []float64
	FormatTick(x float64) string

	Domainer() *Domainer
	SetDomainer(d *Domainer)
	Transform() Transform

	// RefreshDomain recomputes the domain if auto mode is active.
	RefreshDomain()
}

// Ordinal is implemented by scales with a discrete domain.
type Ordinal interface {
	Scale
	Domain() []any
	SetDomain(values ...any) error
}
