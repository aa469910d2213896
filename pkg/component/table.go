package component

import (
	"math"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Layout is the result of one table space negotiation.
type Layout struct {
	GuaranteedWidths     []float64 `json:"guaranteed_widths"`
	GuaranteedHeights    []float64 `json:"guaranteed_heights"`
	ColProportionalSpace []float64 `json:"col_proportional_space"`
	RowProportionalSpace []float64 `json:"row_proportional_space"`
	WantsWidth           bool      `json:"wants_width"`
	WantsHeight          bool      `json:"wants_height"`
	Iterations           int       `json:"iterations"`
}

// ColWidths returns the allocated column widths.
func (l Layout) ColWidths() []float64 { return addSlices(l.GuaranteedWidths, l.ColProportionalSpace) }

// RowHeights returns the allocated row heights.
func (l Layout) RowHeights() []float64 {
	return addSlices(l.GuaranteedHeights, l.RowProportionalSpace)
}

type guarantees struct {
	widths, heights         []float64
	wantsWidth, wantsHeight []bool
}

// Table lays out components in a grid. Rows and columns share free space
// in proportion to their weights.
type Table struct {
	Base
	rows         [][]Component
	nRows, nCols int

	rowWeights, colWeights map[int]float64
	rowMins, colMins       map[int]float64
	rowPadding, colPadding float64
}

// NewTable creates a table from a grid of components; nil cells stay
// empty.
func NewTable(rows ...[]Component) (*Table, error) {
	t := &Table{
		rowWeights: map[int]float64{},
		colWeights: map[int]float64{},
		rowMins:    map[int]float64{},
		colMins:    map[int]float64{},
	}
	t.Init(t, "table")
	for r, row := range rows {
		for c, comp := range row {
			if comp == nil {
				continue
			}
			if err := t.Add(comp, r, c); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// Size returns the grid dimensions.
func (t *Table) Size() (rows, cols int) { return t.nRows, t.nCols }

// Has reports whether c is in the table.
func (t *Table) Has(c Component) bool {
	_, _, ok := t.find(c)
	return ok
}

func (t *Table) find(c Component) (int, int, bool) {
	for r, row := range t.rows {
		for col, comp := range row {
			if comp == c {
				return r, col, true
			}
		}
	}
	return 0, 0, false
}

// ComponentAt returns the component in a cell, or nil.
func (t *Table) ComponentAt(row, col int) Component {
	if row < 0 || row >= t.nRows || col < 0 || col >= t.nCols {
		return nil
	}
	return t.rows[row][col]
}

// Add places c in a cell, growing the grid as needed. Adding a component
// the table already holds is a no-op. An occupied cell is an error.
func (t *Table) Add(c Component, row, col int) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "cannot add nil to a table cell")
	}
	if row < 0 || col < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "table cell (%d, %d) is out of range", row, col)
	}
	if t.Has(c) {
		return nil
	}
	if t.ComponentAt(row, col) != nil {
		return errors.New(errors.ErrCodeCellOccupied, "cell (%d, %d) is occupied", row, col)
	}
	b := c.base()
	if t.Anchored() {
		if err := b.anchorUnder(t.content); err != nil {
			return err
		}
	} else {
		b.detach()
	}
	if p := b.parent; p != nil {
		p.removeChild(c)
		p.base().Redraw()
	}
	t.grow(row+1, col+1)
	t.rows[row][col] = c
	b.setParent(t)
	t.Redraw()
	return nil
}

func (t *Table) grow(nRows, nCols int) {
	t.nRows = max(t.nRows, nRows)
	t.nCols = max(t.nCols, nCols)
	for len(t.rows) < t.nRows {
		t.rows = append(t.rows, nil)
	}
	for r := range t.rows {
		for len(t.rows[r]) < t.nCols {
			t.rows[r] = append(t.rows[r], nil)
		}
	}
}

// RemoveComponent takes c out of its cell without destroying it. Its nodes
// leave the surface until it is added somewhere again. The grid keeps its
// size.
func (t *Table) RemoveComponent(c Component) {
	if !t.Has(c) {
		return
	}
	t.removeChild(c)
	c.base().detach()
	t.Redraw()
}

func (t *Table) removeChild(c Component) {
	if r, col, ok := t.find(c); ok {
		t.rows[r][col] = nil
		c.base().setParent(nil)
	}
}

// Components returns the children in row-major order.
func (t *Table) Components() []Component {
	var out []Component
	for _, row := range t.rows {
		for _, c := range row {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func validWeight(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be a non-negative finite value, got %v", name, v)
	}
	return nil
}

// SetRowWeight sets the share of free height row r claims.
func (t *Table) SetRowWeight(r int, w float64) error {
	if err := validWeight("row weight", w); err != nil {
		return err
	}
	t.rowWeights[r] = w
	t.Redraw()
	return nil
}

// SetColWeight sets the share of free width column c claims.
func (t *Table) SetColWeight(c int, w float64) error {
	if err := validWeight("column weight", w); err != nil {
		return err
	}
	t.colWeights[c] = w
	t.Redraw()
	return nil
}

// SetRowMinimum sets the minimum height of row r.
func (t *Table) SetRowMinimum(r int, h float64) error {
	if err := validWeight("row minimum", h); err != nil {
		return err
	}
	t.rowMins[r] = h
	t.Redraw()
	return nil
}

// SetColMinimum sets the minimum width of column c.
func (t *Table) SetColMinimum(c int, w float64) error {
	if err := validWeight("column minimum", w); err != nil {
		return err
	}
	t.colMins[c] = w
	t.Redraw()
	return nil
}

// SetPadding sets the gaps between rows and between columns.
func (t *Table) SetPadding(row, col float64) error {
	if err := validWeight("row padding", row); err != nil {
		return err
	}
	if err := validWeight("column padding", col); err != nil {
		return err
	}
	t.rowPadding, t.colPadding = row, col
	t.Redraw()
	return nil
}

func (t *Table) column(c int) []Component {
	out := make([]Component, t.nRows)
	for r := range t.rows {
		out[r] = t.rows[r][c]
	}
	return out
}

// weights resolves the effective weight of every row or column: an
// explicit table weight, else the largest weight its components set,
// else 0 when every component is fixed and 1 otherwise.
func weights(n int, explicit map[int]float64, group func(int) []Component, fixed func(Component) bool, own func(Component) (float64, bool)) []float64 {
	out := make([]float64, n)
	for i := range out {
		if w, ok := explicit[i]; ok {
			out[i] = w
			continue
		}
		allFixed, set, best := true, false, 0.0
		for _, c := range group(i) {
			if c == nil {
				continue
			}
			if !fixed(c) {
				allFixed = false
			}
			if w, ok := own(c); ok {
				set, best = true, math.Max(best, w)
			}
		}
		switch {
		case set:
			out[i] = best
		case allFixed:
			out[i] = 0
		default:
			out[i] = 1
		}
	}
	return out
}

func (t *Table) rowWeightsResolved() []float64 {
	return weights(t.nRows, t.rowWeights, func(r int) []Component { return t.rows[r] },
		func(c Component) bool { return c.FixedHeight() },
		func(c Component) (float64, bool) { r, _, ok := c.base().Weights(); return r, ok })
}

func (t *Table) colWeightsResolved() []float64 {
	return weights(t.nCols, t.colWeights, t.column,
		func(c Component) bool { return c.FixedWidth() },
		func(c Component) (float64, bool) { _, col, ok := c.base().Weights(); return col, ok })
}

func (t *Table) maxIterations() int {
	return max(5, t.nRows+t.nCols)
}

// IterateLayout negotiates space for the grid within the offer.
func (t *Table) IterateLayout(availableWidth, availableHeight float64) Layout {
	return t.iterateLayout(availableWidth, availableHeight, false)
}

// iterateLayout runs the fixed-point negotiation. Fixed components are
// first given a half share so they have room to measure in; afterwards
// columns and rows that still want space get a small bonus weight. The
// loop stops when free space stops changing or after maxIterations.
func (t *Table) iterateLayout(availableWidth, availableHeight float64, final bool) Layout {
	width := availableWidth - t.colPadding*float64(max(t.nCols-1, 0))
	height := availableHeight - t.rowPadding*float64(max(t.nRows-1, 0))

	rowW := t.rowWeightsResolved()
	colW := t.colWeightsResolved()
	heuristic := func(ws []float64) []float64 {
		out := make([]float64, len(ws))
		for i, w := range ws {
			out[i] = w
			if w == 0 {
				out[i] = 0.5
			}
		}
		return out
	}
	colSpace := proportionalSpace(heuristic(colW), width)
	rowSpace := proportionalSpace(heuristic(rowW), height)
	gw := make([]float64, t.nCols)
	gh := make([]float64, t.nRows)

	var (
		g              guarantees
		wantsW, wantsH bool
		iterations     int
	)
	freeW, freeH := math.NaN(), math.NaN()
	for {
		g = t.determineGuarantees(addSlices(gw, colSpace), addSlices(gh, rowSpace), final)
		gw, gh = g.widths, g.heights
		wantsW, wantsH = anyTrue(g.wantsWidth), anyTrue(g.wantsHeight)

		lastW, lastH := freeW, freeH
		freeW = width - sum(gw)
		freeH = height - sum(gh)

		colSpace = proportionalSpace(bonus(colW, g.wantsWidth, wantsW), freeW)
		rowSpace = proportionalSpace(bonus(rowW, g.wantsHeight, wantsH), freeH)
		iterations++

		improveW := freeW > 0 && freeW != lastW
		improveH := freeH > 0 && freeH != lastH
		if !(improveW || improveH) || iterations >= t.maxIterations() {
			break
		}
	}

	return Layout{
		GuaranteedWidths:     gw,
		GuaranteedHeights:    gh,
		ColProportionalSpace: proportionalSpace(colW, math.Max(freeW, 0)),
		RowProportionalSpace: proportionalSpace(rowW, math.Max(freeH, 0)),
		WantsWidth:           wantsW,
		WantsHeight:          wantsH,
		Iterations:           iterations,
	}
}

// bonus adds a small weight to groups that still want space.
func bonus(ws []float64, wants []bool, active bool) []float64 {
	if !active {
		return ws
	}
	out := make([]float64, len(ws))
	for i := range ws {
		out[i] = ws[i]
		if wants[i] {
			out[i] += 0.1
		}
	}
	return out
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}

func (t *Table) determineGuarantees(offeredWidths, offeredHeights []float64, final bool) guarantees {
	g := guarantees{
		widths:      make([]float64, t.nCols),
		heights:     make([]float64, t.nRows),
		wantsWidth:  make([]bool, t.nCols),
		wantsHeight: make([]bool, t.nRows),
	}
	for c := range g.widths {
		g.widths[c] = t.colMins[c]
	}
	for r := range g.heights {
		g.heights[r] = t.rowMins[r]
	}
	for r, row := range t.rows {
		for c, comp := range row {
			if comp == nil {
				continue
			}
			req := comp.RequestedSpace(offeredWidths[c], offeredHeights[r])
			w, h := req.Width, req.Height
			if final {
				w = math.Min(w, offeredWidths[c])
				h = math.Min(h, offeredHeights[r])
			}
			g.widths[c] = math.Max(g.widths[c], w)
			g.heights[r] = math.Max(g.heights[r], h)
			g.wantsWidth[c] = g.wantsWidth[c] || req.WantsWidth || req.Width > offeredWidths[c]
			g.wantsHeight[r] = g.wantsHeight[r] || req.WantsHeight || req.Height > offeredHeights[r]
		}
	}
	return g
}

// RequestedSpace reports the guaranteed sizes plus padding.
func (t *Table) RequestedSpace(offeredWidth, offeredHeight float64) SpaceRequest {
	l := t.iterateLayout(offeredWidth, offeredHeight, false)
	w := sum(l.GuaranteedWidths) + t.colPadding*float64(max(t.nCols-1, 0))
	h := sum(l.GuaranteedHeights) + t.rowPadding*float64(max(t.nRows-1, 0))
	return SpaceRequest{
		Width:       math.Max(w, t.minWidth),
		Height:      math.Max(h, t.minHeight),
		WantsWidth:  l.WantsWidth,
		WantsHeight: l.WantsHeight,
	}
}

// FixedWidth is true when every component is fixed-width.
func (t *Table) FixedWidth() bool {
	for _, c := range t.Components() {
		if !c.FixedWidth() {
			return false
		}
	}
	return true
}

// FixedHeight is true when every component is fixed-height.
func (t *Table) FixedHeight() bool {
	for _, c := range t.Components() {
		if !c.FixedHeight() {
			return false
		}
	}
	return true
}

// ComputeLayout places the table and then every cell.
func (t *Table) ComputeLayout(x, y, width, height float64) {
	Place(t, x, y, width, height)
	l := t.iterateLayout(t.width, t.height, false)
	if sum(l.GuaranteedWidths) > t.width || sum(l.GuaranteedHeights) > t.height {
		l = t.iterateLayout(t.width, t.height, true)
	}
	colWidths, rowHeights := l.ColWidths(), l.RowHeights()

	cy := 0.0
	for r, row := range t.rows {
		cx := 0.0
		for c, comp := range row {
			if comp != nil {
				comp.ComputeLayout(cx, cy, colWidths[c], rowHeights[r])
			}
			cx += colWidths[c] + t.colPadding
		}
		cy += rowHeights[r] + t.rowPadding
	}
}

// Anchor anchors the table and then every child inside it.
func (t *Table) Anchor(parent surface.Node) error {
	if err := t.Base.Anchor(parent); err != nil {
		return err
	}
	for _, c := range t.Components() {
		if err := c.Anchor(t.content); err != nil {
			return err
		}
	}
	return nil
}

// Render renders every child.
func (t *Table) Render() error {
	return renderChildren(&t.Base, t.Components())
}

// Remove removes the table and all its children.
func (t *Table) Remove() error {
	return removeContainer(&t.Base, t.Components())
}
