// Package drawer binds data to surface nodes.
//
// A Drawer owns the nodes drawn for one dataset. Draw joins new data
// against the nodes from the previous draw (by key, or by position when no
// key function is set), creates nodes for entering data, hands exiting
// nodes to the animator for removal, and then applies a Plan: an ordered
// list of Steps, each an AttrMap plus the Animator that applies it. Steps
// run back to back; each starts when the previous one's animation ends.
package drawer

import (
	"strconv"
	"time"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Step is one stage of a draw plan.
type Step struct {
	Name     string
	Attrs    animator.AttrMap
	Animator animator.Animator

	// EnterOnly restricts the step to entering elements.
	EnterOnly bool
}

// Plan is an ordered sequence of steps.
type Plan []Step

// KeyFunc identifies a datum across draws.
type KeyFunc func(d any, i int) string

// ApplyStep applies one step to a join, start after the timeline's current
// time, and returns how long the step takes. It reads and writes only the
// nodes in the join.
func ApplyStep(tl *animator.Timeline, j animator.Join, s Step, start time.Duration) (time.Duration, error) {
	a := s.Animator
	if a == nil {
		a = animator.Null{}
	}
	return a.Animate(tl, j, s.Attrs, start)
}

type entry struct {
	key   string
	node  surface.Node
	datum any
	index int
}

// Drawer draws one dataset as a set of nodes of one tag.
type Drawer struct {
	root     surface.Node
	tag      string
	class    string
	key      KeyFunc
	timeline *animator.Timeline

	entries []entry
	byKey   map[string]int
}

// New creates a drawer appending <tag> nodes with the class under root.
func New(root surface.Node, tag, class string) *Drawer {
	return &Drawer{root: root, tag: tag, class: class, byKey: make(map[string]int)}
}

// SetKey sets the join key. Nil restores positional keys.
func (d *Drawer) SetKey(fn KeyFunc) { d.key = fn }

// SetTimeline sets the timeline animated steps are scheduled on.
func (d *Drawer) SetTimeline(tl *animator.Timeline) { d.timeline = tl }

// Root returns the node the drawer appends to.
func (d *Drawer) Root() surface.Node { return d.root }

func (d *Drawer) keyOf(datum any, i int) string {
	if d.key == nil {
		return strconv.Itoa(i)
	}
	return d.key(datum, i)
}

// join partitions data against the current entries and updates them.
// Duplicate keys in data are treated as new elements.
func (d *Drawer) join(data []any) animator.Join {
	var j animator.Join
	next := make([]entry, 0, len(data))
	nextByKey := make(map[string]int, len(data))
	used := make(map[string]bool, len(data))

	for i, datum := range data {
		k := d.keyOf(datum, i)
		el := animator.Element{Datum: datum, Index: i}
		if pos, ok := d.byKey[k]; ok && !used[k] {
			used[k] = true
			el.Node = d.entries[pos].node
			j.Update = append(j.Update, el)
		} else {
			el.Node = d.root.AppendChild(d.tag)
			if d.class != "" {
				el.Node.AddClass(d.class)
			}
			j.Enter = append(j.Enter, el)
		}
		if _, dup := nextByKey[k]; !dup {
			nextByKey[k] = len(next)
		}
		next = append(next, entry{key: k, node: el.Node, datum: datum, index: i})
	}
	for _, e := range d.entries {
		if !used[e.key] {
			j.Exit = append(j.Exit, animator.Element{Node: e.node, Datum: e.datum, Index: e.index})
		}
	}
	d.entries, d.byKey = next, nextByKey
	return j
}

// Draw joins data and applies the plan. Exiting nodes are retired by the
// last step. It returns the total time the plan takes.
func (d *Drawer) Draw(data []any, plan Plan) (time.Duration, error) {
	j := d.join(data)
	var total time.Duration
	for i, s := range plan {
		sj := j
		if i < len(plan)-1 {
			sj.Exit = nil
		}
		if s.EnterOnly {
			sj.Update = nil
		}
		dt, err := ApplyStep(d.timeline, sj, s, total)
		if err != nil {
			return total, err
		}
		total += dt
	}
	if len(plan) == 0 {
		for _, e := range j.Exit {
			e.Node.Remove()
		}
	}
	return total, nil
}

// Elements returns the drawn nodes in data order.
func (d *Drawer) Elements() []surface.Node {
	out := make([]surface.Node, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.node
	}
	return out
}

// Bound returns every drawn node with its datum and index.
func (d *Drawer) Bound() []animator.Element {
	out := make([]animator.Element, len(d.entries))
	for i, e := range d.entries {
		out[i] = animator.Element{Node: e.node, Datum: e.datum, Index: e.index}
	}
	return out
}

// Remove deletes every node the drawer created.
func (d *Drawer) Remove() {
	for _, e := range d.entries {
		e.node.Remove()
	}
	d.entries = nil
	d.byKey = make(map[string]int)
}
