package component

import (
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// RenderTo anchors c under node, lays it out in a width x height box at
// the origin and renders it. c becomes the root of its tree: later calls
// to Redraw anywhere in the tree re-run layout at this size.
func RenderTo(c Component, node surface.Node, width, height float64) error {
	if err := c.Anchor(node); err != nil {
		return err
	}
	b := c.base()
	b.isRoot = true
	return Resize(c, width, height)
}

// Resize re-runs layout and rendering of a root component at a new size.
func Resize(c Component, width, height float64) error {
	b := c.base()
	if !b.Anchored() {
		return errors.New(errors.ErrCodeNotAnchored, "%s %s must be anchored before layout", b.kind, b.id)
	}
	if b.resizing {
		return nil
	}
	b.resizing = true
	defer func() { b.resizing = false }()

	b.rootW, b.rootH = width, height
	c.ComputeLayout(0, 0, width, height)
	if err := c.Render(); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s %s", b.kind, b.id)
	}
	return nil
}

func renderChildren(b *Base, children []Component) error {
	if !b.Renderable() {
		return nil
	}
	var errs []error
	for _, c := range children {
		if err := c.Render(); err != nil {
			errs = append(errs, err)
		}
	}
	b.MarkRendered()
	return errors.Join(errs...)
}

func removeContainer(b *Base, children []Component) error {
	var errs []error
	for _, c := range children {
		if err := c.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := b.Remove(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Walk calls fn for c and every descendant, parents first.
func Walk(c Component, fn func(Component)) {
	fn(c)
	if ct, ok := c.(Container); ok {
		for _, child := range ct.Components() {
			Walk(child, fn)
		}
	}
}

// Description is a serializable snapshot of a laid-out tree.
type Description struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	State    string        `json:"state"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Children []Description `json:"children,omitempty"`
}

// Describe snapshots c and its descendants.
func Describe(c Component) Description {
	r := c.Bounds()
	d := Description{
		ID:     c.ID(),
		Kind:   c.Kind(),
		State:  c.State().String(),
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
	}
	if ct, ok := c.(Container); ok {
		for _, child := range ct.Components() {
			d.Children = append(d.Children, Describe(child))
		}
	}
	return d
}
