package scale

import (
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/event"
)

type perspective struct {
	ds  *dataset.Dataset
	acc dataset.Accessor
}

// datasetSub is one dataset subscription shared by every perspective
// reading that dataset.
type datasetSub struct {
	handle event.Handle
	refs   int
}

// base holds the state common to all scales: perspectives, the
// reference-counted dataset subscriptions and the update registry.
type base struct {
	self    Scale
	refresh func()

	keys         []string
	perspectives map[string]perspective
	subs         map[*dataset.Dataset]*datasetSub

	auto    bool
	updates event.Registry[Scale]
}

func (b *base) init(self Scale, refresh func()) {
	b.self = self
	b.refresh = refresh
	b.perspectives = make(map[string]perspective)
	b.subs = make(map[*dataset.Dataset]*datasetSub)
	b.auto = true
}

// AddPerspective registers ds under key. An existing perspective with the
// same key is replaced.
func (b *base) AddPerspective(key string, ds *dataset.Dataset, acc dataset.Accessor) {
	if _, ok := b.perspectives[key]; ok {
		b.dropPerspective(key)
	}
	b.keys = append(b.keys, key)
	b.perspectives[key] = perspective{ds: ds, acc: acc}

	sub, ok := b.subs[ds]
	if !ok {
		sub = &datasetSub{}
		sub.handle = ds.OnUpdate(func(*dataset.Dataset) {
			if b.auto {
				b.refresh()
			}
		})
		b.subs[ds] = sub
	}
	sub.refs++

	if b.auto {
		b.refresh()
	}
}

// RemovePerspective unregisters key. Unknown keys are ignored.
func (b *base) RemovePerspective(key string) {
	if _, ok := b.perspectives[key]; !ok {
		return
	}
	b.dropPerspective(key)
	if b.auto {
		b.refresh()
	}
}

func (b *base) dropPerspective(key string) {
	p := b.perspectives[key]
	delete(b.perspectives, key)
	for i, k := range b.keys {
		if k == key {
			b.keys = append(b.keys[:i:i], b.keys[i+1:]...)
			break
		}
	}
	if sub, ok := b.subs[p.ds]; ok {
		sub.refs--
		if sub.refs <= 0 {
			_ = p.ds.OffUpdate(sub.handle)
			delete(b.subs, p.ds)
		}
	}
}

// HasPerspective reports whether key is registered.
func (b *base) HasPerspective(key string) bool {
	_, ok := b.perspectives[key]
	return ok
}

// Perspectives returns the registered keys in registration order.
func (b *base) Perspectives() []string {
	return append([]string(nil), b.keys...)
}

// AutoDomainEnabled reports whether the domain tracks the perspectives.
func (b *base) AutoDomainEnabled() bool {
	return b.auto
}

// OnUpdate subscribes fn to domain and range changes.
func (b *base) OnUpdate(fn func(Scale)) event.Handle {
	return b.updates.Subscribe(fn)
}

// OffUpdate removes a subscription made with OnUpdate.
func (b *base) OffUpdate(h event.Handle) error {
	return b.updates.Unsubscribe(h)
}

func (b *base) broadcast() {
	b.updates.Notify(b.self)
}

// eachValue calls fn with every value of every perspective, in
// registration order.
func (b *base) eachValue(fn func(v any)) {
	for _, key := range b.keys {
		p := b.perspectives[key]
		for i, d := range p.ds.Data() {
			fn(p.acc(d, i, p.ds))
		}
	}
}
