// Package surface provides the retained-mode drawing surface charts render
// into.
//
// A Document is an in-memory tree of Elements that mirrors the subset of
// SVG the chart components use: groups, rects, circles, paths, lines and
// text. Components only see the Node interface, so the layout and drawing
// code never depends on how the tree is finally serialized. WriteSVG emits
// the tree as an SVG document; the raster subpackage turns it into PNG.
//
// Pointer and keyboard input arrives as already-normalized Events. Dispatch
// delivers an event to a target node and bubbles it up to the root;
// DispatchAt resolves the target by hit-testing the "hit-box" rectangles
// that components place over their bounds.
package surface

import (
	"github.com/matzehuels/stackplot/pkg/event"
)

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Event types.
const (
	PointerDown  = "pointerdown"
	PointerMove  = "pointermove"
	PointerUp    = "pointerup"
	PointerLeave = "pointerleave"
	Wheel        = "wheel"
	KeyDown      = "keydown"
	KeyUp        = "keyup"
)

// Event is a logical pointer or keyboard event. X and Y are in document
// coordinates.
type Event struct {
	Type   string
	X, Y   float64
	DeltaY float64
	Key    string

	// Target is the node the event was dispatched to. Listeners further up
	// the tree see the original target.
	Target Node
}

// HitBoxClass marks the rectangles DispatchAt tests against.
const HitBoxClass = "hit-box"

// Node is the drawing-surface capability used by components.
type Node interface {
	Tag() string
	Document() *Document
	Parent() Node
	Children() []Node

	// AppendChild creates a child element with the given tag.
	AppendChild(tag string) Node
	// Adopt moves child, with its subtree and listeners, to the end of this
	// node's children.
	Adopt(child Node) error
	// Detach takes the node out of its parent without removing it, so it
	// can be adopted again.
	Detach()

	SetAttr(name string, value any)
	Attr(name string) (string, bool)
	RemoveAttr(name string)
	SetStyle(name, value string)
	Style(name string) string
	SetText(s string)
	Text() string
	AddClass(names ...string)
	HasClass(name string) bool

	// SetTranslate positions the node relative to its parent.
	SetTranslate(x, y float64)
	Translate() (x, y float64)

	// Remove detaches the node and its subtree. Removing twice is a no-op.
	Remove()
	Removed() bool

	// MeasureText returns the bounding box of s set in this node's font.
	MeasureText(s string) Rect

	On(eventType string, fn func(Event)) event.Handle
	Off(h event.Handle) error
}

// Origin returns the document coordinates of n's local origin, the sum of
// the translations of n and its ancestors.
func Origin(n Node) (x, y float64) {
	for ; n != nil; n = n.Parent() {
		tx, ty := n.Translate()
		x += tx
		y += ty
	}
	return x, y
}
