// Package event provides the subscription registry shared by datasets,
// scales and surface nodes.
//
// Subscribers are identified by an opaque Handle returned from Subscribe,
// never by function identity. Notification is synchronous and runs
// listeners in registration order. A Notify issued while the same registry
// is already dispatching is coalesced: it is replayed once the current
// dispatch returns, so a listener that re-triggers its own broadcaster
// cannot recurse.
package event

import (
	"github.com/matzehuels/stackplot/pkg/errors"
)

// Handle identifies one subscription.
type Handle uint64

// maxReplays bounds how often a re-entrant Notify is replayed before the
// registry gives up on a listener cycle that never settles.
const maxReplays = 16

// Registry holds listeners for values of type T.
//
// The zero value is ready to use. A Registry is not safe for concurrent use.
type Registry[T any] struct {
	next      Handle
	order     []Handle
	listeners map[Handle]func(T)

	dispatching bool
	pending     bool
	pendingArg  T
}

// Subscribe registers fn and returns its handle.
func (r *Registry[T]) Subscribe(fn func(T)) Handle {
	if r.listeners == nil {
		r.listeners = make(map[Handle]func(T))
	}
	r.next++
	h := r.next
	r.listeners[h] = fn
	r.order = append(r.order, h)
	return h
}

// Unsubscribe removes the listener registered under h.
// Removing a handle that is not registered is an error.
func (r *Registry[T]) Unsubscribe(h Handle) error {
	if _, ok := r.listeners[h]; !ok {
		return errors.New(errors.ErrCodeNotRegistered, "listener %d is not registered", h)
	}
	delete(r.listeners, h)
	for i, o := range r.order {
		if o == h {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Has reports whether h is registered.
func (r *Registry[T]) Has(h Handle) bool {
	_, ok := r.listeners[h]
	return ok
}

// Len returns the number of registered listeners.
func (r *Registry[T]) Len() int {
	return len(r.order)
}

// Notify calls every listener with v in registration order.
func (r *Registry[T]) Notify(v T) {
	if r.dispatching {
		r.pending = true
		r.pendingArg = v
		return
	}
	r.dispatching = true
	defer func() { r.dispatching = false }()

	for replay := 0; ; replay++ {
		// Listeners may unsubscribe during dispatch; iterate a snapshot.
		snapshot := append([]Handle(nil), r.order...)
		for _, h := range snapshot {
			if fn, ok := r.listeners[h]; ok {
				fn(v)
			}
		}
		if !r.pending || replay >= maxReplays {
			r.pending = false
			return
		}
		r.pending = false
		v = r.pendingArg
	}
}
