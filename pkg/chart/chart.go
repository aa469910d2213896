// Package chart assembles components into common chart layouts.
//
// Standard is a 3x3 table. The center cell holds a group of plots and
// gridlines; the cells around it are slots for a title, axes and a legend:
//
//	       | title  |
//	yAxis  | center | legend
//	       | xAxis  |
//
// Each slot is filled at most once.
package chart

import (
	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/errors"
)

// Slot names a cell around the center of a Standard chart.
type Slot string

const (
	SlotTitle  Slot = "title"
	SlotYAxis  Slot = "y axis"
	SlotXAxis  Slot = "x axis"
	SlotLegend Slot = "legend"
)

var slotCells = map[Slot][2]int{
	SlotTitle:  {0, 1},
	SlotYAxis:  {1, 0},
	SlotXAxis:  {2, 1},
	SlotLegend: {1, 2},
}

// Standard is the title/axes/plot/legend template.
type Standard struct {
	*component.Table
	center *component.Group
	slots  map[Slot]component.Component
}

// NewStandard creates a chart whose center stacks the given components,
// first at the bottom.
func NewStandard(center ...component.Component) (*Standard, error) {
	g, err := component.NewGroup(center...)
	if err != nil {
		return nil, err
	}
	t, err := component.NewTable()
	if err != nil {
		return nil, err
	}
	if err := t.Add(g, 1, 1); err != nil {
		return nil, err
	}
	for i, w := range []float64{0, 1, 0} {
		if err := t.SetRowWeight(i, w); err != nil {
			return nil, err
		}
		if err := t.SetColWeight(i, w); err != nil {
			return nil, err
		}
	}
	t.AddClass("standard-chart")
	return &Standard{Table: t, center: g, slots: make(map[Slot]component.Component)}, nil
}

// Center returns the group holding plots and gridlines.
func (s *Standard) Center() *component.Group { return s.center }

// Slot returns the component in a slot, or nil.
func (s *Standard) Slot(name Slot) component.Component { return s.slots[name] }

// SetTitle fills the title slot.
func (s *Standard) SetTitle(c component.Component) error { return s.set(SlotTitle, c) }

// SetXAxis fills the slot below the center.
func (s *Standard) SetXAxis(c component.Component) error { return s.set(SlotXAxis, c) }

// SetYAxis fills the slot left of the center.
func (s *Standard) SetYAxis(c component.Component) error { return s.set(SlotYAxis, c) }

// SetLegend fills the slot right of the center.
func (s *Standard) SetLegend(c component.Component) error { return s.set(SlotLegend, c) }

func (s *Standard) set(name Slot, c component.Component) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "%s cannot be nil", name)
	}
	if prev, ok := s.slots[name]; ok {
		return errors.New(errors.ErrCodeAlreadyAssigned, "%s is already assigned to %s %s", name, prev.Kind(), prev.ID())
	}
	if s.Has(c) {
		return errors.New(errors.ErrCodeAlreadyAssigned, "%s %s is already in the chart", c.Kind(), c.ID())
	}
	cell := slotCells[name]
	if err := s.Add(c, cell[0], cell[1]); err != nil {
		return err
	}
	s.slots[name] = c
	return nil
}

// Clear empties a slot and removes its component.
func (s *Standard) Clear(name Slot) error {
	c, ok := s.slots[name]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "%s is empty", name)
	}
	delete(s.slots, name)
	return c.Remove()
}
