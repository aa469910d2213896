package interaction

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/plot"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// DefaultDetectionRadius is how far from an entity the pointer may be and
// still hover it.
const DefaultDetectionRadius = 15.0

// EntityFinder is implemented by plots.
type EntityFinder interface {
	EntityNearest(x, y float64) (plot.Entity, bool)
}

// Hover reports the entity nearest the pointer while it is within the
// detection radius.
type Hover struct {
	base
	finder  EntityFinder
	radius  float64
	current *plot.Entity

	onOver event.Registry[plot.Entity]
	onOut  event.Registry[plot.Entity]
}

// NewHover creates a hover interaction.
func NewHover(d *Dispatcher) *Hover {
	return &Hover{base: base{disp: d}, radius: DefaultDetectionRadius}
}

// Attach starts tracking the pointer over c, which must be a plot.
func (h *Hover) Attach(c Target) error {
	finder, ok := c.(EntityFinder)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "%s %s has no entities to hover", c.Kind(), c.ID())
	}
	if err := h.attach(c, map[string]func(surface.Event){
		surface.PointerMove:  h.move,
		surface.PointerLeave: func(surface.Event) { h.out() },
	}); err != nil {
		return err
	}
	h.finder = finder
	return nil
}

// Detach stops tracking. A hovered entity is reported out first.
func (h *Hover) Detach() error {
	if h.target != nil {
		h.out()
	}
	h.finder = nil
	return h.detach()
}

// DetectionRadius returns the radius in pixels.
func (h *Hover) DetectionRadius() float64 { return h.radius }

// SetDetectionRadius sets the radius in pixels.
func (h *Hover) SetDetectionRadius(r float64) error {
	if err := errors.ValidateNonNegative("detection radius", r); err != nil {
		return err
	}
	h.radius = r
	return nil
}

// Current returns the hovered entity.
func (h *Hover) Current() (plot.Entity, bool) {
	if h.current == nil {
		return plot.Entity{}, false
	}
	return *h.current, true
}

// OnHoverOver registers fn for entities the pointer moves onto.
func (h *Hover) OnHoverOver(fn func(plot.Entity)) event.Handle { return h.onOver.Subscribe(fn) }

// OffHoverOver removes a hover over listener.
func (h *Hover) OffHoverOver(hd event.Handle) error { return h.onOver.Unsubscribe(hd) }

// OnHoverOut registers fn for entities the pointer leaves.
func (h *Hover) OnHoverOut(fn func(plot.Entity)) event.Handle { return h.onOut.Subscribe(fn) }

// OffHoverOut removes a hover out listener.
func (h *Hover) OffHoverOut(hd event.Handle) error { return h.onOut.Unsubscribe(hd) }

func (h *Hover) move(ev surface.Event) {
	p := h.local(ev)
	if !h.inside(p) {
		h.out()
		return
	}
	ent, ok := h.finder.EntityNearest(p.X, p.Y)
	if !ok || math.Hypot(ent.X-p.X, ent.Y-p.Y) > h.radius {
		h.out()
		return
	}
	if h.current != nil && h.current.DatasetKey == ent.DatasetKey && h.current.Index == ent.Index {
		return
	}
	h.out()
	h.current = &ent
	h.onOver.Notify(ent)
}

func (h *Hover) out() {
	if h.current == nil {
		return
	}
	prev := *h.current
	h.current = nil
	h.onOut.Notify(prev)
}
