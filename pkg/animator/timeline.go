package animator

import (
	"math"
	"slices"
	"time"

	"github.com/matzehuels/stackplot/pkg/surface"
)

type transitionKey struct {
	node surface.Node
	attr string
}

type transition struct {
	key      transitionKey
	to       any
	from     string
	started  bool
	start    time.Duration
	duration time.Duration
	ease     EaseFunc
}

type removal struct {
	node surface.Node
	at   time.Duration
}

// Timeline owns in-flight transitions. Time only moves when the caller
// calls Advance or Flush.
//
// Per node and attribute only the most recently scheduled transition
// survives: scheduling again cancels the pending one.
type Timeline struct {
	now         time.Duration
	transitions []*transition
	index       map[transitionKey]*transition
	removals    []removal
}

// NewTimeline returns an empty timeline at time zero.
func NewTimeline() *Timeline {
	return &Timeline{index: make(map[transitionKey]*transition)}
}

// Now returns the timeline's clock.
func (tl *Timeline) Now() time.Duration { return tl.now }

// Pending returns the number of transitions and removals not yet
// finished.
func (tl *Timeline) Pending() int { return len(tl.transitions) + len(tl.removals) }

// Schedule transitions node's attribute to value, starting delay from now
// and lasting duration. A zero delay and duration writes immediately.
func (tl *Timeline) Schedule(node surface.Node, attr string, value any, delay, duration time.Duration, ease EaseFunc) {
	key := transitionKey{node, attr}
	if old, ok := tl.index[key]; ok {
		tl.drop(old)
	}
	if delay <= 0 && duration <= 0 {
		node.SetAttr(attr, value)
		return
	}
	if ease == nil {
		ease = easings["linear"]
	}
	tr := &transition{key: key, to: value, start: tl.now + delay, duration: duration, ease: ease}
	tl.transitions = append(tl.transitions, tr)
	tl.index[key] = tr
}

// RemoveAt removes node from the surface delay from now.
func (tl *Timeline) RemoveAt(node surface.Node, delay time.Duration) {
	tl.removals = append(tl.removals, removal{node: node, at: tl.now + delay})
}

func (tl *Timeline) drop(tr *transition) {
	delete(tl.index, tr.key)
	tl.transitions = slices.DeleteFunc(tl.transitions, func(t *transition) bool { return t == tr })
}

// Advance moves the clock forward by d and writes every attribute value
// that changed.
func (tl *Timeline) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	tl.now += d

	var done []*transition
	for _, tr := range tl.transitions {
		if tl.now < tr.start {
			continue
		}
		if !tr.started {
			tr.from, _ = tr.key.node.Attr(tr.key.attr)
			tr.started = true
		}
		p := 1.0
		if tr.duration > 0 {
			p = math.Min(1, float64(tl.now-tr.start)/float64(tr.duration))
		}
		if p >= 1 {
			tr.key.node.SetAttr(tr.key.attr, tr.to)
			done = append(done, tr)
			continue
		}
		tr.key.node.SetAttr(tr.key.attr, interpolate(tr.key.attr, tr.from, tr.to, tr.ease(p)))
	}
	for _, tr := range done {
		tl.drop(tr)
	}

	tl.removals = slices.DeleteFunc(tl.removals, func(r removal) bool {
		if tl.now >= r.at {
			r.node.Remove()
			return true
		}
		return false
	})
}

// Flush advances to the end of the last pending transition or removal.
func (tl *Timeline) Flush() {
	end := tl.now
	for _, tr := range tl.transitions {
		end = max(end, tr.start+tr.duration)
	}
	for _, r := range tl.removals {
		end = max(end, r.at)
	}
	tl.Advance(end - tl.now)
}
