package component

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// box is a component with a fixed desired size.
type box struct {
	Base
	w, h           float64
	fixedW, fixedH bool
	renders        int
}

func newBox(w, h float64, fixedW, fixedH bool) *box {
	b := &box{w: w, h: h, fixedW: fixedW, fixedH: fixedH}
	b.Init(b, "box")
	return b
}

func (b *box) RequestedSpace(ow, oh float64) SpaceRequest { return b.Request(ow, oh, b.w, b.h) }
func (b *box) FixedWidth() bool                            { return b.fixedW }
func (b *box) FixedHeight() bool                           { return b.fixedH }

func (b *box) Render() error {
	if !b.Renderable() {
		return nil
	}
	b.renders++
	b.MarkRendered()
	return nil
}

func testDoc() *surface.Document {
	return surface.NewDocument(400, 300, surface.WithMeasurer(surface.MonospaceMeasurer{CharWidth: 6, LineHeight: 10}))
}

func TestPlaceAlignment(t *testing.T) {
	tests := []struct {
		name           string
		xAlign, yAlign string
		offX, offY     float64
		want           surface.Rect
	}{
		{"top left", "left", "top", 0, 0, surface.Rect{X: 10, Y: 10, Width: 50, Height: 20}},
		{"center bottom", "center", "bottom", 0, 0, surface.Rect{X: 85, Y: 90, Width: 50, Height: 20}},
		{"right with offset", "right", "center", 3, -2, surface.Rect{X: 163, Y: 48, Width: 50, Height: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBox(50, 20, true, true)
			require.NoError(t, b.SetXAlign(tt.xAlign))
			require.NoError(t, b.SetYAlign(tt.yAlign))
			b.SetOffset(tt.offX, tt.offY)
			Place(b, 10, 10, 200, 100)
			assert.Equal(t, tt.want, b.Bounds())
		})
	}
}

func TestFlexibleTakesOffer(t *testing.T) {
	b := newBox(50, 20, false, false)
	Place(b, 0, 0, 200, 100)
	assert.Equal(t, surface.Rect{Width: 200, Height: 100}, b.Bounds())

	req := b.RequestedSpace(30, 100)
	assert.Equal(t, 30.0, req.Width, "flexible width is clamped to the offer")
	assert.True(t, req.WantsWidth)
}

func TestInvalidAlignment(t *testing.T) {
	b := newBox(1, 1, false, false)
	assert.True(t, errors.Is(b.SetXAlign("middle"), errors.ErrCodeInvalidConfig))
	assert.True(t, errors.Is(b.SetYAlign("left"), errors.ErrCodeInvalidConfig))
	assert.Equal(t, "left", b.XAlign())
}

func TestAnchor(t *testing.T) {
	doc := testDoc()
	other := doc.Root().AppendChild("g")
	b := newBox(1, 1, false, false)

	require.NoError(t, b.Anchor(doc.Root()))
	assert.Equal(t, Anchored, b.State())
	require.NoError(t, b.Anchor(doc.Root()), "re-anchoring to the same parent is a no-op")

	err := b.Anchor(other)
	assert.True(t, errors.Is(err, errors.ErrCodeAlreadyAnchored), "got %v", err)

	require.NoError(t, b.Remove())
	assert.Equal(t, Removed, b.State())
	assert.Error(t, b.Anchor(doc.Root()))
}

func TestRemoveReleasesListeners(t *testing.T) {
	doc := testDoc()
	b := newBox(1, 1, false, false)
	require.NoError(t, b.Anchor(doc.Root()))
	b.Listen(doc.Root(), surface.PointerDown, func(surface.Event) {})
	root := doc.Root().(*surface.Element)
	assert.Equal(t, 1, root.ListenerCount(surface.PointerDown))

	removed := false
	b.OnRemove(func() { removed = true })
	require.NoError(t, b.Remove())
	assert.Equal(t, 0, root.ListenerCount(surface.PointerDown))
	assert.True(t, removed)
	require.NoError(t, b.Remove(), "removing twice is a no-op")
}

func TestTableChartLayout(t *testing.T) {
	yAxis := newBox(40, 0, true, false)
	plot := newBox(0, 0, false, false)
	xAxis := newBox(0, 30, false, true)
	table, err := NewTable(
		[]Component{yAxis, plot},
		[]Component{nil, xAxis},
	)
	require.NoError(t, err)

	require.NoError(t, RenderTo(table, testDoc().Root(), 400, 300))
	assert.Equal(t, surface.Rect{X: 40, Y: 0, Width: 360, Height: 270}, plot.Bounds())
	assert.Equal(t, surface.Rect{X: 0, Y: 0, Width: 40, Height: 270}, yAxis.Bounds())
	assert.Equal(t, surface.Rect{X: 40, Y: 270, Width: 360, Height: 30}, xAxis.Bounds())
	assert.Equal(t, 1, plot.renders)
	assert.Equal(t, Rendered, table.State())
}

func TestTableLayoutConservation(t *testing.T) {
	tests := []struct {
		name      string
		widths    []float64
		fixed     []bool
		offered   float64
		wantTotal float64
	}{
		{"weighted column absorbs free space", []float64{50, 0, 20}, []bool{true, false, true}, 300, 300},
		{"all fixed keeps guarantees", []float64{50, 70}, []bool{true, true}, 300, 120},
		{"all flexible", []float64{10, 10, 10, 10}, []bool{false, false, false, false}, 123, 123},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]Component, len(tt.widths))
			for i, w := range tt.widths {
				row[i] = newBox(w, 10, tt.fixed[i], true)
			}
			table, err := NewTable(row)
			require.NoError(t, err)

			l := table.IterateLayout(tt.offered, 100)
			assert.LessOrEqual(t, sum(l.GuaranteedWidths), tt.offered)
			assert.InDelta(t, tt.wantTotal, sum(l.ColWidths()), 1e-9)
		})
	}
}

func TestTableIterationBound(t *testing.T) {
	var rows [][]Component
	for r := 0; r < 4; r++ {
		var row []Component
		for c := 0; c < 4; c++ {
			row = append(row, newBox(float64(10*(r+c)), float64(5*(r+1)), (r+c)%2 == 0, r%2 == 0))
		}
		rows = append(rows, row)
	}
	table, err := NewTable(rows...)
	require.NoError(t, err)

	for _, offer := range []float64{0, 10, 57, 300, 1000} {
		l := table.IterateLayout(offer, offer)
		assert.LessOrEqual(t, l.Iterations, 8, "offer %v", offer)
		for _, w := range l.ColWidths() {
			assert.False(t, math.IsNaN(w) || w < 0, "column width %v for offer %v", w, offer)
		}
	}
}

func TestTableCells(t *testing.T) {
	table, err := NewTable()
	require.NoError(t, err)
	a, b := newBox(1, 1, false, false), newBox(1, 1, false, false)

	require.NoError(t, table.Add(a, 2, 1))
	rows, cols := table.Size()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)

	err = table.Add(b, 2, 1)
	assert.True(t, errors.Is(err, errors.ErrCodeCellOccupied), "got %v", err)

	table.RemoveComponent(a)
	assert.Nil(t, table.ComponentAt(2, 1))
	require.NoError(t, table.Add(b, 2, 1))
	assert.Equal(t, Component(b), table.ComponentAt(2, 1))
}

func TestRemoveChildLeavesTable(t *testing.T) {
	a := newBox(1, 1, false, false)
	table, err := NewTable([]Component{a})
	require.NoError(t, err)
	require.NoError(t, RenderTo(table, testDoc().Root(), 100, 100))

	require.NoError(t, a.Remove())
	assert.False(t, table.Has(a))
}

func TestMoveBetweenTables(t *testing.T) {
	c := newBox(10, 10, true, true)
	a, err := NewTable([]Component{c})
	require.NoError(t, err)
	b, err := NewTable()
	require.NoError(t, err)
	g, err := NewGroup(a, b)
	require.NoError(t, err)
	require.NoError(t, RenderTo(g, testDoc().Root(), 100, 100))

	require.NoError(t, b.Add(c, 0, 0))
	assert.False(t, a.Has(c))
	assert.True(t, b.Has(c))
	assert.Same(t, b.Content(), c.Node().Parent())
	assert.Empty(t, a.Content().Children())
	assert.Equal(t, Rendered, c.State())
}

func TestMoveAcrossDocumentsKeepsComponent(t *testing.T) {
	c := newBox(10, 10, true, true)
	a, err := NewTable([]Component{c})
	require.NoError(t, err)
	require.NoError(t, RenderTo(a, testDoc().Root(), 100, 100))
	b, err := NewTable()
	require.NoError(t, err)
	require.NoError(t, RenderTo(b, testDoc().Root(), 100, 100))

	require.Error(t, b.Add(c, 0, 0))
	assert.True(t, a.Has(c))
	assert.False(t, b.Has(c))
	assert.Same(t, a.Content(), c.Node().Parent())
}

func TestRemoveComponentDetachesNodes(t *testing.T) {
	c := newBox(10, 10, true, true)
	a, err := NewTable([]Component{c})
	require.NoError(t, err)
	require.NoError(t, RenderTo(a, testDoc().Root(), 100, 100))

	a.RemoveComponent(c)
	assert.False(t, a.Has(c))
	assert.Nil(t, c.Node().Parent())
	assert.False(t, c.Node().Removed())

	b, err := NewTable()
	require.NoError(t, err)
	require.NoError(t, RenderTo(b, a.Node().Parent(), 100, 100))
	require.NoError(t, b.Add(c, 0, 0))
	assert.Same(t, b.Content(), c.Node().Parent())
}

func TestTableValidation(t *testing.T) {
	table, _ := NewTable()
	for name, err := range map[string]error{
		"row weight":  table.SetRowWeight(0, -1),
		"col weight":  table.SetColWeight(0, math.NaN()),
		"row minimum": table.SetRowMinimum(0, math.Inf(1)),
		"padding":     table.SetPadding(-1, 0),
	} {
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "%s: got %v", name, err)
	}
}

func TestTablePaddingAndMinimums(t *testing.T) {
	a, b := newBox(0, 0, false, false), newBox(0, 0, false, false)
	table, err := NewTable([]Component{a, b})
	require.NoError(t, err)
	require.NoError(t, table.SetPadding(0, 10))
	require.NoError(t, table.SetColMinimum(0, 120))
	require.NoError(t, table.SetColWeight(0, 0))

	table.ComputeLayout(0, 0, 300, 50)
	assert.Equal(t, 120.0, a.Bounds().Width)
	assert.Equal(t, 130.0, b.Bounds().X)
	assert.Equal(t, 170.0, b.Bounds().Width)
}

func TestGroup(t *testing.T) {
	a := newBox(30, 80, true, true)
	b := newBox(60, 20, true, true)
	g, err := NewGroup(a, b)
	require.NoError(t, err)

	req := g.RequestedSpace(50, 100)
	assert.Equal(t, SpaceRequest{Width: 50, Height: 80, WantsWidth: true}, req)
	assert.True(t, g.FixedWidth())

	g.ComputeLayout(0, 0, 200, 200)
	assert.Equal(t, 60.0, g.Bounds().Width)
	assert.Equal(t, surface.Rect{Width: 30, Height: 80}, a.Bounds())
}

func TestLabel(t *testing.T) {
	l := NewLabel("hello")
	require.NoError(t, l.SetPadding(2))
	doc := testDoc()
	require.NoError(t, l.Anchor(doc.Root()))

	req := l.RequestedSpace(400, 300)
	assert.Equal(t, 34.0, req.Width)
	assert.Equal(t, 14.0, req.Height)

	require.NoError(t, l.SetOrientation(Left))
	req = l.RequestedSpace(400, 300)
	assert.Equal(t, 14.0, req.Width)
	assert.Equal(t, 34.0, req.Height)

	assert.True(t, errors.Is(l.SetOrientation("up"), errors.ErrCodeInvalidOrientation))
	assert.True(t, errors.Is(l.SetWeights(1, 1), errors.ErrCodeWeightNotSettable))

	l.ComputeLayout(0, 0, 100, 100)
	require.NoError(t, l.Render())
	texts := surface.SelectTag(doc.Root(), "text")
	require.Len(t, texts, 1)
	assert.Equal(t, "hello", texts[0].Text())
	tr, _ := texts[0].Attr("transform")
	assert.Contains(t, tr, "rotate(-90)")
}

func TestRedrawRelayoutsTree(t *testing.T) {
	title := NewTitleLabel("abc")
	plot := newBox(0, 0, false, false)
	table, err := NewTable([]Component{title}, []Component{plot})
	require.NoError(t, err)
	require.NoError(t, RenderTo(table, testDoc().Root(), 300, 200))
	assert.Equal(t, 18.0, title.Bounds().Width)

	title.SetText("longer text")
	assert.Equal(t, 66.0, title.Bounds().Width)
	assert.Equal(t, 2, plot.renders)
}

func TestDescribe(t *testing.T) {
	a := newBox(0, 0, false, false)
	table, _ := NewTable([]Component{a})
	require.NoError(t, RenderTo(table, testDoc().Root(), 100, 50))

	d := Describe(table)
	assert.Equal(t, "table", d.Kind)
	require.Len(t, d.Children, 1)
	assert.Equal(t, "box", d.Children[0].Kind)
	assert.Equal(t, 100.0, d.Children[0].Width)
	assert.Equal(t, "rendered", d.Children[0].State)
}
