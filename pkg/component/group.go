package component

import (
	"math"
	"slices"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Group overlays its children in the same rectangle.
type Group struct {
	Base
	children []Component
}

// NewGroup creates a group of the given components.
func NewGroup(children ...Component) (*Group, error) {
	g := &Group{}
	g.Init(g, "group")
	for _, c := range children {
		if err := g.Add(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add appends c on top of the existing children.
func (g *Group) Add(c Component) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "cannot add nil to a group")
	}
	if slices.Contains(g.children, c) {
		return nil
	}
	b := c.base()
	if g.Anchored() {
		if err := b.anchorUnder(g.content); err != nil {
			return err
		}
	} else {
		b.detach()
	}
	if p := b.parent; p != nil {
		p.removeChild(c)
		p.base().Redraw()
	}
	g.children = append(g.children, c)
	b.setParent(g)
	g.Redraw()
	return nil
}

// Components returns the children, bottom first.
func (g *Group) Components() []Component { return slices.Clone(g.children) }

func (g *Group) removeChild(c Component) {
	if i := slices.Index(g.children, c); i >= 0 {
		g.children = slices.Delete(g.children, i, i+1)
		c.base().setParent(nil)
	}
}

// RequestedSpace is the elementwise maximum of the children's requests,
// bounded by the offer.
func (g *Group) RequestedSpace(offeredWidth, offeredHeight float64) SpaceRequest {
	req := SpaceRequest{Width: g.minWidth, Height: g.minHeight}
	for _, c := range g.children {
		r := c.RequestedSpace(offeredWidth, offeredHeight)
		req.Width = math.Max(req.Width, r.Width)
		req.Height = math.Max(req.Height, r.Height)
		req.WantsWidth = req.WantsWidth || r.WantsWidth
		req.WantsHeight = req.WantsHeight || r.WantsHeight
	}
	req.Width = math.Min(req.Width, offeredWidth)
	req.Height = math.Min(req.Height, offeredHeight)
	return req
}

// FixedWidth is true when every child is fixed-width.
func (g *Group) FixedWidth() bool {
	for _, c := range g.children {
		if !c.FixedWidth() {
			return false
		}
	}
	return true
}

// FixedHeight is true when every child is fixed-height.
func (g *Group) FixedHeight() bool {
	for _, c := range g.children {
		if !c.FixedHeight() {
			return false
		}
	}
	return true
}

// ComputeLayout places the group, then offers each child the whole
// rectangle.
func (g *Group) ComputeLayout(x, y, width, height float64) {
	Place(g, x, y, width, height)
	for _, c := range g.children {
		c.ComputeLayout(0, 0, g.width, g.height)
	}
}

// Anchor anchors the group and its children.
func (g *Group) Anchor(parent surface.Node) error {
	if err := g.Base.Anchor(parent); err != nil {
		return err
	}
	for _, c := range g.children {
		if err := c.Anchor(g.content); err != nil {
			return err
		}
	}
	return nil
}

// Render renders every child.
func (g *Group) Render() error { return renderChildren(&g.Base, g.Components()) }

// Remove removes the group and its children.
func (g *Group) Remove() error { return removeContainer(&g.Base, g.Components()) }
