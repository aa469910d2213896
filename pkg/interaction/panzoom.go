package interaction

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// wheelFactor converts wheel deltas into zoom exponents.
const wheelFactor = 0.002

// PanZoom pans its scales while the pointer drags over a component and
// zooms them with the wheel. Either scale may be nil.
type PanZoom struct {
	base
	x, y scale.Quantitative

	minExtent map[scale.Quantitative]float64
	maxExtent map[scale.Quantitative]float64

	panning bool
	last    Point

	onPanEnd  event.Registry[struct{}]
	onZoomEnd event.Registry[struct{}]
}

// NewPanZoom creates a pan/zoom interaction over x and y.
func NewPanZoom(d *Dispatcher, x, y scale.Quantitative) *PanZoom {
	return &PanZoom{
		base:      base{disp: d},
		x:         x,
		y:         y,
		minExtent: make(map[scale.Quantitative]float64),
		maxExtent: make(map[scale.Quantitative]float64),
	}
}

// Attach starts listening on c.
func (z *PanZoom) Attach(c Target) error {
	return z.attach(c, map[string]func(surface.Event){
		surface.PointerDown: z.down,
		surface.PointerMove: z.move,
		surface.PointerUp:   z.up,
		surface.Wheel:       z.wheel,
	})
}

// Detach stops listening.
func (z *PanZoom) Detach() error {
	z.panning = false
	return z.detach()
}

// SetMinDomainExtent stops zooming in on s once its domain would be
// narrower than extent. Zero removes the limit.
func (z *PanZoom) SetMinDomainExtent(s scale.Quantitative, extent float64) error {
	return z.setLimit(z.minExtent, s, extent)
}

// SetMaxDomainExtent stops zooming out on s once its domain would be
// wider than extent. Zero removes the limit.
func (z *PanZoom) SetMaxDomainExtent(s scale.Quantitative, extent float64) error {
	return z.setLimit(z.maxExtent, s, extent)
}

func (z *PanZoom) setLimit(m map[scale.Quantitative]float64, s scale.Quantitative, extent float64) error {
	if s == nil || (s != z.x && s != z.y) {
		return errors.New(errors.ErrCodeNotRegistered, "scale is not controlled by this interaction")
	}
	if err := errors.ValidateNonNegative("domain extent", extent); err != nil {
		return err
	}
	if extent == 0 {
		delete(m, s)
		return nil
	}
	m[s] = extent
	return nil
}

// OnPanEnd registers fn for the end of a pan gesture.
func (z *PanZoom) OnPanEnd(fn func()) event.Handle {
	return z.onPanEnd.Subscribe(func(struct{}) { fn() })
}

// OffPanEnd removes a pan end listener.
func (z *PanZoom) OffPanEnd(h event.Handle) error { return z.onPanEnd.Unsubscribe(h) }

// OnZoomEnd registers fn for every applied zoom step.
func (z *PanZoom) OnZoomEnd(fn func()) event.Handle {
	return z.onZoomEnd.Subscribe(func(struct{}) { fn() })
}

// OffZoomEnd removes a zoom end listener.
func (z *PanZoom) OffZoomEnd(h event.Handle) error { return z.onZoomEnd.Unsubscribe(h) }

// Pan shifts both scales by a pixel offset. Content follows the pointer,
// so the domain moves against it.
func (z *PanZoom) Pan(dx, dy float64) {
	if z.x != nil {
		pan(z.x, dx)
	}
	if z.y != nil {
		pan(z.y, dy)
	}
}

func pan(s scale.Quantitative, d float64) {
	r0, r1 := s.Range()
	s.SetExtent(s.Invert(r0-d), s.Invert(r1-d))
}

// Zoom scales both domains by amount around a pixel center. Amounts below
// one zoom in. A scale whose new domain breaks its extent limits is left
// unchanged.
func (z *PanZoom) Zoom(amount float64, center Point) error {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom amount must be positive, got %v", amount)
	}
	if z.x != nil {
		z.zoom(z.x, amount, center.X)
	}
	if z.y != nil {
		z.zoom(z.y, amount, center.Y)
	}
	return nil
}

func (z *PanZoom) zoom(s scale.Quantitative, amount, c float64) {
	r0, r1 := s.Range()
	min, max := s.Invert(c-(c-r0)*amount), s.Invert(c-(c-r1)*amount)
	if min > max {
		min, max = max, min
	}
	span := max - min
	if lim, ok := z.minExtent[s]; ok && span < lim {
		return
	}
	if lim, ok := z.maxExtent[s]; ok && span > lim {
		return
	}
	s.SetExtent(min, max)
}

func (z *PanZoom) down(ev surface.Event) {
	p := z.local(ev)
	if !z.inside(p) {
		return
	}
	z.panning, z.last = true, p
}

func (z *PanZoom) move(ev surface.Event) {
	if !z.panning {
		return
	}
	p := z.local(ev)
	z.Pan(p.X-z.last.X, p.Y-z.last.Y)
	z.last = p
}

func (z *PanZoom) up(surface.Event) {
	if !z.panning {
		return
	}
	z.panning = false
	z.onPanEnd.Notify(struct{}{})
}

func (z *PanZoom) wheel(ev surface.Event) {
	p := z.local(ev)
	if !z.inside(p) {
		return
	}
	if err := z.Zoom(math.Pow(2, ev.DeltaY*wheelFactor), p); err != nil {
		z.disp.logger.Warn("zoom skipped", "err", err)
		return
	}
	z.onZoomEnd.Notify(struct{}{})
}
