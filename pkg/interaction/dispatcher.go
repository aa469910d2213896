// Package interaction turns pointer and keyboard events into callbacks
// and scale changes.
//
// A Dispatcher listens once on a surface root and fans events out to the
// interactions attached through it. Interactions attach to a component,
// translate event coordinates into the component's local space and keep
// their own small state machines. Every interaction is detached
// explicitly; closing the dispatcher detaches the root listeners.
package interaction

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/surface"
)

var dispatchedTypes = []string{
	surface.PointerDown,
	surface.PointerMove,
	surface.PointerUp,
	surface.PointerLeave,
	surface.Wheel,
	surface.KeyDown,
	surface.KeyUp,
}

// Dispatcher is the event context shared by the interactions of one
// surface. It also tracks the last pointer position for keyboard
// interactions.
type Dispatcher struct {
	root      surface.Node
	handles   map[string]event.Handle
	listeners map[string]*event.Registry[surface.Event]
	logger    *log.Logger

	pointerX, pointerY float64
	pointerKnown       bool
	closed             bool
}

// NewDispatcher listens on root for every pointer and keyboard event type.
func NewDispatcher(root surface.Node) *Dispatcher {
	d := &Dispatcher{
		root:      root,
		handles:   make(map[string]event.Handle, len(dispatchedTypes)),
		listeners: make(map[string]*event.Registry[surface.Event], len(dispatchedTypes)),
		logger:    log.Default(),
	}
	for _, typ := range dispatchedTypes {
		d.listeners[typ] = &event.Registry[surface.Event]{}
		d.handles[typ] = root.On(typ, d.dispatch)
	}
	return d
}

// SetLogger replaces the logger.
func (d *Dispatcher) SetLogger(l *log.Logger) {
	if l != nil {
		d.logger = l
	}
}

func (d *Dispatcher) dispatch(ev surface.Event) {
	switch ev.Type {
	case surface.PointerDown, surface.PointerMove, surface.PointerUp, surface.Wheel:
		d.pointerX, d.pointerY, d.pointerKnown = ev.X, ev.Y, true
	case surface.PointerLeave:
		d.pointerKnown = false
	}
	if r, ok := d.listeners[ev.Type]; ok {
		r.Notify(ev)
	}
}

// Root returns the node the dispatcher listens on.
func (d *Dispatcher) Root() surface.Node { return d.root }

// Pointer returns the last known pointer position in document
// coordinates. ok is false before the first pointer event and after the
// pointer left the surface.
func (d *Dispatcher) Pointer() (x, y float64, ok bool) {
	return d.pointerX, d.pointerY, d.pointerKnown
}

// On registers fn for one event type.
func (d *Dispatcher) On(eventType string, fn func(surface.Event)) (event.Handle, error) {
	if d.closed {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "dispatcher is closed")
	}
	r, ok := d.listeners[eventType]
	if !ok {
		return 0, errors.New(errors.ErrCodeUnsupported, "event type %q is not dispatched", eventType)
	}
	return r.Subscribe(fn), nil
}

// Off removes a listener registered with On.
func (d *Dispatcher) Off(eventType string, h event.Handle) error {
	r, ok := d.listeners[eventType]
	if !ok {
		return errors.New(errors.ErrCodeNotRegistered, "event type %q is not dispatched", eventType)
	}
	return r.Unsubscribe(h)
}

// Listeners returns the number of listeners for an event type.
func (d *Dispatcher) Listeners(eventType string) int {
	if r, ok := d.listeners[eventType]; ok {
		return r.Len()
	}
	return 0
}

// Close detaches the dispatcher from the root. Interactions still
// attached stop receiving events. Closing twice is a no-op.
func (d *Dispatcher) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var errs []error
	for typ, h := range d.handles {
		if err := d.root.Off(h); err != nil {
			errs = append(errs, err)
		}
		delete(d.handles, typ)
	}
	return errors.Join(errs...)
}
