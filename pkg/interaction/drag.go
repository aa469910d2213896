package interaction

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/surface"
)

type dragState int

const (
	dragIdle dragState = iota
	dragPressed
	dragMoving
)

// DragEvent carries the point a drag started at and where it is now.
type DragEvent struct {
	Start, End Point
}

// Drag reports pointer drags that start inside a component. Points are in
// the component's local space and, while constrained, clamped to its
// bounds. Releasing without moving is not a drag.
type Drag struct {
	base
	constrained bool
	state       dragState
	start       Point

	onStart event.Registry[Point]
	onDrag  event.Registry[DragEvent]
	onEnd   event.Registry[DragEvent]
}

// NewDrag creates a constrained drag interaction.
func NewDrag(d *Dispatcher) *Drag {
	return &Drag{base: base{disp: d}, constrained: true}
}

// Attach starts listening for drags on c.
func (g *Drag) Attach(c Target) error {
	return g.attach(c, map[string]func(surface.Event){
		surface.PointerDown: g.down,
		surface.PointerMove: g.move,
		surface.PointerUp:   g.up,
	})
}

// Detach stops listening.
func (g *Drag) Detach() error {
	g.state = dragIdle
	return g.detach()
}

// Constrained reports whether points are clamped to the component.
func (g *Drag) Constrained() bool { return g.constrained }

// SetConstrained toggles clamping.
func (g *Drag) SetConstrained(on bool) { g.constrained = on }

// Dragging reports whether a drag is in progress.
func (g *Drag) Dragging() bool { return g.state == dragMoving }

// OnDragStart registers fn for pointer presses inside the component.
func (g *Drag) OnDragStart(fn func(Point)) event.Handle { return g.onStart.Subscribe(fn) }

// OffDragStart removes a drag start listener.
func (g *Drag) OffDragStart(h event.Handle) error { return g.onStart.Unsubscribe(h) }

// OnDrag registers fn for every pointer move during a drag.
func (g *Drag) OnDrag(fn func(DragEvent)) event.Handle { return g.onDrag.Subscribe(fn) }

// OffDrag removes a drag listener.
func (g *Drag) OffDrag(h event.Handle) error { return g.onDrag.Unsubscribe(h) }

// OnDragEnd registers fn for the release that ends a drag.
func (g *Drag) OnDragEnd(fn func(DragEvent)) event.Handle { return g.onEnd.Subscribe(fn) }

// OffDragEnd removes a drag end listener.
func (g *Drag) OffDragEnd(h event.Handle) error { return g.onEnd.Unsubscribe(h) }

func (g *Drag) point(ev surface.Event) Point {
	p := g.local(ev)
	if g.constrained {
		p = g.clamp(p)
	}
	return p
}

func (g *Drag) down(ev surface.Event) {
	if g.state != dragIdle {
		return
	}
	p := g.local(ev)
	if !g.inside(p) {
		return
	}
	g.state, g.start = dragPressed, p
	g.onStart.Notify(p)
}

func (g *Drag) move(ev surface.Event) {
	if g.state == dragIdle {
		return
	}
	p := g.point(ev)
	if g.state == dragPressed && p == g.start {
		return
	}
	g.state = dragMoving
	g.onDrag.Notify(DragEvent{Start: g.start, End: p})
}

func (g *Drag) up(ev surface.Event) {
	moving := g.state == dragMoving
	g.state = dragIdle
	if moving {
		g.onEnd.Notify(DragEvent{Start: g.start, End: g.point(ev)})
	}
}

// Area is a box in a component's local space with ordered bounds.
type Area struct {
	XMin, XMax, YMin, YMax float64
}

func areaOf(a, b Point) Area {
	return Area{
		XMin: math.Min(a.X, b.X), XMax: math.Max(a.X, b.X),
		YMin: math.Min(a.Y, b.Y), YMax: math.Max(a.Y, b.Y),
	}
}

// Contains reports whether p lies inside the area, edges included.
func (a Area) Contains(p Point) bool {
	return p.X >= a.XMin && p.X <= a.XMax && p.Y >= a.YMin && p.Y <= a.YMax
}

// DefaultResizePadding is how close to an edge a press must be to grab it.
const DefaultResizePadding = 5.0

type edges struct{ left, right, top, bottom bool }

func (e edges) any() bool { return e.left || e.right || e.top || e.bottom }

// DragBox is a Drag that selects a rectangle. It draws the box as a
// "drag-box" rect in the component and reports the normalized area when
// the drag ends. A resizable box can be adjusted by dragging its edges.
type DragBox struct {
	*Drag
	resizable bool
	box       Area
	hasBox    bool
	grabbed   edges
	before    Area
	node      surface.Node

	onBoxEnd event.Registry[Area]
}

// NewDragBox creates a drag box interaction.
func NewDragBox(d *Dispatcher) *DragBox {
	b := &DragBox{Drag: NewDrag(d)}
	b.OnDragStart(b.started)
	b.OnDrag(func(ev DragEvent) { b.update(ev) })
	b.OnDragEnd(func(ev DragEvent) {
		b.update(ev)
		b.onBoxEnd.Notify(b.box)
	})
	return b
}

// Attach starts listening for drags on c.
func (b *DragBox) Attach(c Target) error {
	if err := b.Drag.Attach(c); err != nil {
		return err
	}
	if content := c.Content(); content != nil {
		b.node = content.AppendChild("rect")
		b.node.AddClass("drag-box")
		b.node.SetAttr("visibility", "hidden")
	}
	return nil
}

// Detach stops listening and removes the drawn box.
func (b *DragBox) Detach() error {
	if b.node != nil {
		b.node.Remove()
		b.node = nil
	}
	b.hasBox = false
	return b.Drag.Detach()
}

// SetResizable lets presses near the box's edges resize it.
func (b *DragBox) SetResizable(on bool) { b.resizable = on }

// Resizable reports whether the box can be resized.
func (b *DragBox) Resizable() bool { return b.resizable }

// Box returns the current box.
func (b *DragBox) Box() (Area, bool) { return b.box, b.hasBox }

// ClearBox hides the box.
func (b *DragBox) ClearBox() {
	b.hasBox = false
	if b.node != nil {
		b.node.SetAttr("visibility", "hidden")
	}
}

// OnBoxEnd registers fn for the area selected when a drag ends.
func (b *DragBox) OnBoxEnd(fn func(Area)) event.Handle { return b.onBoxEnd.Subscribe(fn) }

// OffBoxEnd removes a box end listener.
func (b *DragBox) OffBoxEnd(h event.Handle) error { return b.onBoxEnd.Unsubscribe(h) }

func (b *DragBox) started(p Point) {
	b.grabbed = edges{}
	if !b.resizable || !b.hasBox {
		return
	}
	const pad = DefaultResizePadding
	a := b.box
	withinY := p.Y >= a.YMin-pad && p.Y <= a.YMax+pad
	withinX := p.X >= a.XMin-pad && p.X <= a.XMax+pad
	b.grabbed = edges{
		left:   withinY && math.Abs(p.X-a.XMin) <= pad,
		right:  withinY && math.Abs(p.X-a.XMax) <= pad,
		top:    withinX && math.Abs(p.Y-a.YMin) <= pad,
		bottom: withinX && math.Abs(p.Y-a.YMax) <= pad,
	}
	b.before = a
}

func (b *DragBox) update(ev DragEvent) {
	if b.grabbed.any() {
		a := b.before
		dx, dy := ev.End.X-ev.Start.X, ev.End.Y-ev.Start.Y
		if b.grabbed.left {
			a.XMin += dx
		}
		if b.grabbed.right {
			a.XMax += dx
		}
		if b.grabbed.top {
			a.YMin += dy
		}
		if b.grabbed.bottom {
			a.YMax += dy
		}
		b.box = areaOf(Point{a.XMin, a.YMin}, Point{a.XMax, a.YMax})
	} else {
		b.box = areaOf(ev.Start, ev.End)
	}
	b.hasBox = true
	if b.node != nil {
		b.node.SetAttr("x", b.box.XMin)
		b.node.SetAttr("y", b.box.YMin)
		b.node.SetAttr("width", b.box.XMax-b.box.XMin)
		b.node.SetAttr("height", b.box.YMax-b.box.YMin)
		b.node.SetAttr("visibility", "visible")
	}
}
