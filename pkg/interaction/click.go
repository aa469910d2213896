package interaction

import (
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// ClickState is the double-click detector's state.
type ClickState int

const (
	NotClicked ClickState = iota
	SingleClicked
	DoubleClicked
)

var clickStateNames = [...]string{"not clicked", "single clicked", "double clicked"}

func (s ClickState) String() string { return clickStateNames[s] }

// Click reports clicks and double clicks inside a component. A click is
// a press and release at the same point on the same node. Two clicks in
// a row at the same point on the same node are a double click; the
// second click is reported only as a double click.
type Click struct {
	base
	pressed    bool
	downPoint  Point
	downTarget surface.Node

	state      ClickState
	lastPoint  Point
	lastTarget surface.Node

	onClick       event.Registry[Point]
	onDoubleClick event.Registry[Point]
}

// NewClick creates a click interaction.
func NewClick(d *Dispatcher) *Click {
	return &Click{base: base{disp: d}}
}

// Attach starts listening for clicks on c.
func (c *Click) Attach(t Target) error {
	return c.attach(t, map[string]func(surface.Event){
		surface.PointerDown: c.down,
		surface.PointerUp:   c.up,
	})
}

// Detach stops listening and resets the detector.
func (c *Click) Detach() error {
	c.pressed, c.state = false, NotClicked
	return c.detach()
}

// State returns the detector's state.
func (c *Click) State() ClickState { return c.state }

// OnClick registers fn for single clicks.
func (c *Click) OnClick(fn func(Point)) event.Handle { return c.onClick.Subscribe(fn) }

// OffClick removes a click listener.
func (c *Click) OffClick(h event.Handle) error { return c.onClick.Unsubscribe(h) }

// OnDoubleClick registers fn for double clicks.
func (c *Click) OnDoubleClick(fn func(Point)) event.Handle { return c.onDoubleClick.Subscribe(fn) }

// OffDoubleClick removes a double click listener.
func (c *Click) OffDoubleClick(h event.Handle) error { return c.onDoubleClick.Unsubscribe(h) }

func (c *Click) down(ev surface.Event) {
	p := c.local(ev)
	if !c.inside(p) {
		c.pressed, c.state = false, NotClicked
		return
	}
	c.pressed, c.downPoint, c.downTarget = true, p, ev.Target
}

func (c *Click) up(ev surface.Event) {
	if !c.pressed {
		return
	}
	c.pressed = false
	p := c.local(ev)
	if p != c.downPoint || ev.Target != c.downTarget {
		c.state = NotClicked
		return
	}
	if c.state == SingleClicked && p == c.lastPoint && ev.Target == c.lastTarget {
		c.state = DoubleClicked
		c.onDoubleClick.Notify(p)
		return
	}
	c.state, c.lastPoint, c.lastTarget = SingleClicked, p, ev.Target
	c.onClick.Notify(p)
}
