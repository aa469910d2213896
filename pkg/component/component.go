// Package component implements the layout tree charts are built from.
//
// Every visual unit (plot, axis, legend, label, table, group) is a
// Component. Layout runs in two passes: RequestedSpace asks a component how
// much room it wants given an offer, and ComputeLayout hands it a concrete
// rectangle. Containers (Table, Group) run both passes over their children.
//
// Components share their state machine and alignment logic by embedding
// Base; the alignment arithmetic itself lives in the free function Place.
package component

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// SpaceRequest is a component's answer to a space offer.
type SpaceRequest struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	WantsWidth  bool    `json:"wants_width"`
	WantsHeight bool    `json:"wants_height"`
}

// State is a component's lifecycle stage.
type State int

const (
	Unanchored State = iota
	Anchored
	LaidOut
	Rendered
	Removed
)

var stateNames = [...]string{"unanchored", "anchored", "laid out", "rendered", "removed"}

func (s State) String() string { return stateNames[s] }

// Component is the capability every layout participant implements.
type Component interface {
	ID() string
	Kind() string
	State() State

	RequestedSpace(offeredWidth, offeredHeight float64) SpaceRequest
	ComputeLayout(x, y, width, height float64)
	Render() error

	Anchor(parent surface.Node) error
	Remove() error

	FixedWidth() bool
	FixedHeight() bool

	// Bounds returns the allocated rectangle relative to the parent.
	Bounds() surface.Rect

	base() *Base
}

// Container is a component holding child components.
type Container interface {
	Component
	Components() []Component
	removeChild(c Component)
}

var (
	xAlignments = map[string]float64{"left": 0, "center": 0.5, "right": 1}
	yAlignments = map[string]float64{"top": 0, "center": 0.5, "bottom": 1}
)

type tracked struct {
	node   surface.Node
	handle event.Handle
}

// Base carries the state shared by all components. Embed it and call Init
// from the constructor.
type Base struct {
	self   Component
	id     string
	kind   string
	state  State
	logger *log.Logger

	parentNode surface.Node
	parent     Container
	root       surface.Node
	content    surface.Node
	hitBox     surface.Node
	classes    []string

	xAlign, yAlign   string
	xOffset, yOffset float64
	minWidth         float64
	minHeight        float64
	rowWeight        *float64
	colWeight        *float64

	x, y, width, height float64

	isRoot        bool
	resizing      bool
	rootW, rootH  float64
	listeners     []tracked
	onRemove      []func()
	onAnchorHooks []func()
}

// Init prepares b for the component self of the given kind.
func (b *Base) Init(self Component, kind string) {
	b.self = self
	b.id = uuid.NewString()
	b.kind = kind
	b.xAlign, b.yAlign = "left", "top"
	b.logger = log.Default()
	b.classes = []string{"component", kind}
}

func (b *Base) base() *Base { return b }

// ID returns the component's unique identifier.
func (b *Base) ID() string { return b.id }

// Kind names the component variant, e.g. "table" or "bar-plot".
func (b *Base) Kind() string { return b.kind }

// State returns the lifecycle stage.
func (b *Base) State() State { return b.state }

// Logger returns the logger used for recoverable problems.
func (b *Base) Logger() *log.Logger { return b.logger }

// SetLogger replaces the logger.
func (b *Base) SetLogger(l *log.Logger) {
	if l != nil {
		b.logger = l
	}
}

// AddClass adds CSS classes to the component's root node.
func (b *Base) AddClass(names ...string) {
	b.classes = append(b.classes, names...)
	if b.root != nil {
		b.root.AddClass(names...)
	}
}

// XAlign returns the horizontal alignment.
func (b *Base) XAlign() string { return b.xAlign }

// YAlign returns the vertical alignment.
func (b *Base) YAlign() string { return b.yAlign }

// SetXAlign sets "left", "center" or "right".
func (b *Base) SetXAlign(a string) error {
	if _, ok := xAlignments[a]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported x alignment %q", a)
	}
	b.xAlign = a
	b.Redraw()
	return nil
}

// SetYAlign sets "top", "center" or "bottom".
func (b *Base) SetYAlign(a string) error {
	if _, ok := yAlignments[a]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported y alignment %q", a)
	}
	b.yAlign = a
	b.Redraw()
	return nil
}

// SetOffset shifts the component after alignment.
func (b *Base) SetOffset(x, y float64) {
	b.xOffset, b.yOffset = x, y
	b.Redraw()
}

// SetMinimumSize sets lower bounds on the requested size.
func (b *Base) SetMinimumSize(width, height float64) error {
	if err := errors.ValidateNonNegative("minimum width", width); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("minimum height", height); err != nil {
		return err
	}
	b.minWidth, b.minHeight = width, height
	b.Redraw()
	return nil
}

// MinimumSize returns the minimum size hints.
func (b *Base) MinimumSize() (float64, float64) { return b.minWidth, b.minHeight }

// SetWeights sets the share of free space the component's row and column
// claim in a table. Tables use them when the row or column has no
// explicit weight.
func (b *Base) SetWeights(row, col float64) error {
	if err := errors.ValidateNonNegative("row weight", row); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("column weight", col); err != nil {
		return err
	}
	b.rowWeight, b.colWeight = &row, &col
	b.Redraw()
	return nil
}

// Weights returns the weights set with SetWeights; ok is false if none.
func (b *Base) Weights() (row, col float64, ok bool) {
	if b.rowWeight == nil {
		return 0, 0, false
	}
	return *b.rowWeight, *b.colWeight, true
}

// FixedWidth reports whether the component refuses extra width.
func (b *Base) FixedWidth() bool { return false }

// FixedHeight reports whether the component refuses extra height.
func (b *Base) FixedHeight() bool { return false }

// RequestedSpace asks for the minimum size only.
func (b *Base) RequestedSpace(offeredWidth, offeredHeight float64) SpaceRequest {
	return b.Request(offeredWidth, offeredHeight, 0, 0)
}

// Request builds a SpaceRequest for a desired size, applying the minimum
// size hints. Flexible dimensions are clamped to the offer; fixed ones
// report their full need. Wants flags are set when the need exceeds the
// offer.
func (b *Base) Request(offeredWidth, offeredHeight, desiredWidth, desiredHeight float64) SpaceRequest {
	w := math.Max(desiredWidth, b.minWidth)
	h := math.Max(desiredHeight, b.minHeight)
	req := SpaceRequest{Width: w, Height: h, WantsWidth: w > offeredWidth, WantsHeight: h > offeredHeight}
	if !b.self.FixedWidth() {
		req.Width = math.Min(w, offeredWidth)
	}
	if !b.self.FixedHeight() {
		req.Height = math.Min(h, offeredHeight)
	}
	return req
}

// ComputeLayout places the component in the offered rectangle.
func (b *Base) ComputeLayout(x, y, width, height float64) {
	Place(b.self, x, y, width, height)
}

// Bounds returns the allocated rectangle relative to the parent.
func (b *Base) Bounds() surface.Rect {
	return surface.Rect{X: b.x, Y: b.y, Width: b.width, Height: b.height}
}

// Width returns the allocated width.
func (b *Base) Width() float64 { return b.width }

// Height returns the allocated height.
func (b *Base) Height() float64 { return b.height }

// Origin returns the component's origin in document coordinates.
func (b *Base) Origin() (float64, float64) {
	if b.root == nil {
		return b.x, b.y
	}
	return surface.Origin(b.root)
}

// Content returns the node components draw into. It is nil until the
// component is anchored.
func (b *Base) Content() surface.Node { return b.content }

// HitBox returns the transparent rectangle covering the component, the
// target of pointer events.
func (b *Base) HitBox() surface.Node { return b.hitBox }

// Node returns the component's root node.
func (b *Base) Node() surface.Node { return b.root }

// Parent returns the containing component, if any.
func (b *Base) Parent() Container { return b.parent }

// Anchored reports whether the component is attached to a surface.
func (b *Base) Anchored() bool { return b.state != Unanchored && b.state != Removed }

// Renderable reports whether the component has been laid out and can draw.
func (b *Base) Renderable() bool { return b.state == LaidOut || b.state == Rendered }

// Anchor attaches the component under parent. Anchoring again to the same
// parent is a no-op; anchoring to a different one is an error.
func (b *Base) Anchor(parent surface.Node) error {
	switch {
	case b.state == Removed:
		return errors.New(errors.ErrCodeInvalidConfig, "%s %s was removed and cannot be anchored again", b.kind, b.id)
	case b.state != Unanchored && b.parentNode == parent:
		return nil
	case b.state != Unanchored && b.parentNode != nil:
		return errors.New(errors.ErrCodeAlreadyAnchored, "%s %s is already anchored elsewhere", b.kind, b.id)
	case b.state != Unanchored:
		if err := parent.Adopt(b.root); err != nil {
			return err
		}
		b.parentNode = parent
		return nil
	}
	b.parentNode = parent
	b.root = parent.AppendChild("g")
	b.root.AddClass(b.classes...)
	b.root.SetAttr("id", b.id)
	b.hitBox = b.root.AppendChild("rect")
	b.hitBox.AddClass(surface.HitBoxClass)
	b.hitBox.SetAttr("fill", "none")
	b.content = b.root.AppendChild("g")
	b.content.AddClass("content")
	b.state = Anchored
	for _, fn := range b.onAnchorHooks {
		fn()
	}
	return nil
}

// OnAnchor registers fn to run each time the component is anchored. If
// the component is already anchored fn runs immediately.
func (b *Base) OnAnchor(fn func()) {
	b.onAnchorHooks = append(b.onAnchorHooks, fn)
	if b.Anchored() {
		fn()
	}
}

// OnRemove registers fn to run when the component is removed.
func (b *Base) OnRemove(fn func()) { b.onRemove = append(b.onRemove, fn) }

// Listen registers fn on a node and releases it when the component is
// removed.
func (b *Base) Listen(n surface.Node, eventType string, fn func(surface.Event)) event.Handle {
	h := n.On(eventType, fn)
	b.listeners = append(b.listeners, tracked{node: n, handle: h})
	return h
}

// Unlisten releases one listener registered with Listen.
func (b *Base) Unlisten(h event.Handle) error {
	for i, t := range b.listeners {
		if t.handle == h {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return t.node.Off(h)
		}
	}
	return errors.New(errors.ErrCodeNotRegistered, "listener %d is not registered on %s", h, b.id)
}

// Remove detaches the component, releases its listeners and drops it from
// its container. Removing twice is a no-op.
func (b *Base) Remove() error {
	if b.state == Removed {
		return nil
	}
	var errs []error
	for _, t := range b.listeners {
		if err := t.node.Off(t.handle); err != nil {
			errs = append(errs, err)
		}
	}
	b.listeners = nil
	for _, fn := range b.onRemove {
		fn()
	}
	if b.root != nil {
		b.root.Remove()
	}
	if b.parent != nil {
		b.parent.removeChild(b.self)
		b.parent = nil
	}
	b.state = Removed
	return errors.Join(errs...)
}

// Redraw re-runs layout and rendering from the root of the tree, if the
// tree was rendered with RenderTo. Otherwise it does nothing.
func (b *Base) Redraw() {
	top := b
	for top.parent != nil {
		top = top.parent.base()
	}
	if !top.isRoot || top.state == Removed {
		return
	}
	if err := Resize(top.self, top.rootW, top.rootH); err != nil {
		b.logger.Warn("redraw failed", "component", b.id, "err", err)
	}
}

// MarkRendered records a successful render.
func (b *Base) MarkRendered() {
	if b.Renderable() {
		b.state = Rendered
	}
}

func (b *Base) setParent(c Container) {
	b.parent = c
	if c != nil {
		b.isRoot = false
	}
}

// anchorUnder anchors the component under parent. A component anchored
// elsewhere has its nodes moved, keeping drawn marks and listeners.
func (b *Base) anchorUnder(parent surface.Node) error {
	if b.Anchored() && b.parentNode != nil && b.parentNode != parent {
		if err := parent.Adopt(b.root); err != nil {
			return err
		}
		b.parentNode = parent
		return nil
	}
	return b.self.Anchor(parent)
}

// detach takes the component's nodes off the surface without removing
// them. Anchor puts them back.
func (b *Base) detach() {
	if b.root != nil && b.parentNode != nil {
		b.root.Detach()
		b.parentNode = nil
	}
}
