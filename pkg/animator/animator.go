// Package animator decides how and when drawn attributes reach their
// target values.
//
// An Animator receives a Join (the enter, update and exit partitions of a
// data join) and an AttrMap of projectors. Null writes every attribute
// immediately. Easing and IterativeDelay schedule transitions on a
// Timeline, which the caller advances; the most recent transition for a
// given node and attribute always wins.
package animator

import (
	"slices"
	"time"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Projector computes an attribute value for one datum.
type Projector func(d any, i int) (any, error)

// AttrMap maps attribute names to projectors.
type AttrMap map[string]Projector

// Names returns the attribute names in sorted order.
func (m AttrMap) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Element is one bound datum and the node drawing it.
type Element struct {
	Node  surface.Node
	Datum any
	Index int
}

// Join is the three-way partition produced by a data join.
type Join struct {
	Enter  []Element
	Update []Element
	Exit   []Element
}

// Live returns the entering and updating elements in index order.
func (j Join) Live() []Element {
	out := make([]Element, 0, len(j.Enter)+len(j.Update))
	out = append(out, j.Update...)
	out = append(out, j.Enter...)
	slices.SortStableFunc(out, func(a, b Element) int { return a.Index - b.Index })
	return out
}

// Animator applies an AttrMap to a Join.
type Animator interface {
	// Animate writes or schedules the attributes of every live element and
	// retires the exiting ones, starting start after the timeline's current
	// time. It returns the time the animation takes.
	Animate(tl *Timeline, j Join, attrs AttrMap, start time.Duration) (time.Duration, error)

	// TotalTime returns how long animating n elements takes.
	TotalTime(n int) time.Duration
}

// Null applies attributes immediately and removes exiting elements.
type Null struct{}

// Animate implements Animator. tl may be nil.
func (Null) Animate(tl *Timeline, j Join, attrs AttrMap, start time.Duration) (time.Duration, error) {
	values, err := project(j.Live(), attrs)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		if tl == nil {
			v.node.SetAttr(v.attr, v.value)
			continue
		}
		tl.Schedule(v.node, v.attr, v.value, start, 0, nil)
	}
	for _, e := range j.Exit {
		if tl == nil || start == 0 {
			e.Node.Remove()
			continue
		}
		tl.RemoveAt(e.Node, start)
	}
	return 0, nil
}

// TotalTime is always zero.
func (Null) TotalTime(int) time.Duration { return 0 }

type projected struct {
	node  surface.Node
	attr  string
	value any
	index int
}

// project evaluates every projector before anything is written, so a
// failing projector leaves the surface untouched.
func project(elems []Element, attrs AttrMap) ([]projected, error) {
	names := attrs.Names()
	out := make([]projected, 0, len(elems)*len(names))
	for _, e := range elems {
		for _, name := range names {
			v, err := attrs[name](e.Datum, e.Index)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "project %q for datum %d", name, e.Index)
			}
			out = append(out, projected{node: e.Node, attr: name, value: v, index: e.Index})
		}
	}
	return out, nil
}
