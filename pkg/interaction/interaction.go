package interaction

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Point is a position in a component's local pixel space.
type Point struct {
	X, Y float64
}

// Target is a component interactions can attach to. Every component
// built on component.Base satisfies it.
type Target interface {
	component.Component
	Origin() (float64, float64)
	Width() float64
	Height() float64
	HitBox() surface.Node
	Content() surface.Node
}

// Interaction is attached to one component at a time.
type Interaction interface {
	Attach(c Target) error
	Detach() error
}

type subscription struct {
	eventType string
	handle    event.Handle
}

// base holds the attachment shared by all interactions.
type base struct {
	disp   *Dispatcher
	target Target
	subs   []subscription
}

// attach subscribes the handlers through the dispatcher.
func (b *base) attach(c Target, handlers map[string]func(surface.Event)) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "interaction needs a component")
	}
	if b.target != nil {
		return errors.New(errors.ErrCodeAlreadyAssigned, "interaction is already attached to %s %s", b.target.Kind(), b.target.ID())
	}
	if b.disp == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "interaction has no dispatcher")
	}
	for typ, fn := range handlers {
		h, err := b.disp.On(typ, fn)
		if err != nil {
			_ = b.detach()
			return err
		}
		b.subs = append(b.subs, subscription{eventType: typ, handle: h})
	}
	b.target = c
	return nil
}

// detach removes every subscription. Detaching an interaction that is not
// attached is an error.
func (b *base) detach() error {
	if b.target == nil && len(b.subs) == 0 {
		return errors.New(errors.ErrCodeNotRegistered, "interaction is not attached")
	}
	var errs []error
	for _, s := range b.subs {
		if err := b.disp.Off(s.eventType, s.handle); err != nil {
			errs = append(errs, err)
		}
	}
	b.subs = nil
	b.target = nil
	return errors.Join(errs...)
}

// Attached returns the component the interaction is attached to.
func (b *base) Attached() Target { return b.target }

// local translates document coordinates into the target's space.
func (b *base) local(ev surface.Event) Point {
	ox, oy := b.target.Origin()
	return Point{X: ev.X - ox, Y: ev.Y - oy}
}

// inside reports whether p lies within the target's bounds.
func (b *base) inside(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= b.target.Width() && p.Y <= b.target.Height()
}

// clamp moves p onto the nearest point within the target's bounds.
func (b *base) clamp(p Point) Point {
	return Point{
		X: math.Max(0, math.Min(b.target.Width(), p.X)),
		Y: math.Max(0, math.Min(b.target.Height(), p.Y)),
	}
}
