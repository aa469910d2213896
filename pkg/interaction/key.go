package interaction

import (
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Key reports key presses while the pointer is over a component. The
// pointer position comes from the dispatcher.
type Key struct {
	base
	byKey map[string]*event.Registry[string]
}

// NewKey creates a key interaction.
func NewKey(d *Dispatcher) *Key {
	return &Key{base: base{disp: d}, byKey: make(map[string]*event.Registry[string])}
}

// Attach starts listening for key presses over c.
func (k *Key) Attach(c Target) error {
	return k.attach(c, map[string]func(surface.Event){surface.KeyDown: k.keyDown})
}

// Detach stops listening.
func (k *Key) Detach() error { return k.detach() }

// OnKey registers fn for presses of key.
func (k *Key) OnKey(key string, fn func(key string)) event.Handle {
	r, ok := k.byKey[key]
	if !ok {
		r = &event.Registry[string]{}
		k.byKey[key] = r
	}
	return r.Subscribe(fn)
}

// OffKey removes a listener registered for key.
func (k *Key) OffKey(key string, h event.Handle) error {
	r, ok := k.byKey[key]
	if !ok {
		return errors.New(errors.ErrCodeNotRegistered, "no listeners for key %q", key)
	}
	return r.Unsubscribe(h)
}

func (k *Key) keyDown(ev surface.Event) {
	x, y, ok := k.disp.Pointer()
	if !ok || !k.inside(k.local(surface.Event{X: x, Y: y})) {
		return
	}
	if r, ok := k.byKey[ev.Key]; ok {
		r.Notify(ev.Key)
	}
}
