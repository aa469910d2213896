package legend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

func testDoc() *surface.Document {
	return surface.NewDocument(300, 300, surface.WithMeasurer(surface.MonospaceMeasurer{CharWidth: 6, LineHeight: 10}))
}

func fruit(t *testing.T) *scale.Color {
	t.Helper()
	c := scale.NewColor()
	require.NoError(t, c.SetDomain("apples", "kiwi", "fig"))
	return c
}

func TestRequestedSpace(t *testing.T) {
	tests := []struct {
		perRow int
		want   component.SpaceRequest
	}{
		{1, component.SpaceRequest{Width: 56, Height: 40}},
		{2, component.SpaceRequest{Width: 95, Height: 30}},
		{3, component.SpaceRequest{Width: 128, Height: 20}},
		{10, component.SpaceRequest{Width: 128, Height: 20}},
	}
	for _, tt := range tests {
		l := New(fruit(t))
		require.NoError(t, l.Anchor(testDoc().Root()))
		require.NoError(t, l.SetMaxEntriesPerRow(tt.perRow))
		assert.Equal(t, tt.want, l.RequestedSpace(300, 300), "entries per row %d", tt.perRow)
	}

	l := New(fruit(t))
	require.NoError(t, l.Anchor(testDoc().Root()))
	req := l.RequestedSpace(20, 20)
	assert.True(t, req.WantsWidth)
	assert.True(t, req.WantsHeight)
	assert.Equal(t, 56.0, req.Width, "fixed legends report their full width")
}

func TestRender(t *testing.T) {
	colors := fruit(t)
	l := New(colors)
	doc := testDoc()
	require.NoError(t, component.RenderTo(l, doc.Root(), 300, 300))

	entries := surface.Select(doc.Root(), EntryClass)
	require.Len(t, entries, 3)
	swatches := surface.Select(doc.Root(), SwatchClass)
	texts := surface.Select(doc.Root(), TextClass)
	require.Len(t, swatches, 3)
	require.Len(t, texts, 3)

	for i, v := range []string{"apples", "kiwi", "fig"} {
		want, err := colors.Scale(v)
		require.NoError(t, err)
		fill, _ := swatches[i].Attr("fill")
		assert.Equal(t, want, fill)
		assert.Equal(t, v, texts[i].Text())
	}
	_, y := entries[1].Translate()
	assert.Equal(t, 15.0, y, "second entry starts one line below the first")

	v, ok := l.EntryAt(10, 17)
	require.True(t, ok)
	assert.Equal(t, "kiwi", v)
	_, ok = l.EntryAt(200, 200)
	assert.False(t, ok)
}

func TestFollowsScale(t *testing.T) {
	colors := fruit(t)
	l := New(colors)
	doc := testDoc()
	require.NoError(t, component.RenderTo(l, doc.Root(), 300, 300))

	require.NoError(t, colors.SetDomain("apples", "kiwi", "fig", "plum"))
	assert.Len(t, surface.Select(doc.Root(), EntryClass), 4)
	assert.Equal(t, 50.0, l.Height(), "the tree was laid out again for the new row")

	require.NoError(t, l.Remove())
	require.NoError(t, colors.SetDomain("apples"))
	assert.Len(t, l.Entries(), 4, "a removed legend ignores its scale")
}

func TestFormatterAndValidation(t *testing.T) {
	l := New(fruit(t))
	l.SetFormatter(func(v any) string { return "* " + v.(string) })
	doc := testDoc()
	require.NoError(t, component.RenderTo(l, doc.Root(), 300, 300))
	assert.Equal(t, "* kiwi", l.Entries()[1].Label)

	err := l.SetMaxEntriesPerRow(0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
	err = l.SetPadding(-1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
	assert.Equal(t, 1, l.MaxEntriesPerRow())
}

func heat(t *testing.T) *scale.InterpolatedColor {
	t.Helper()
	s, err := scale.NewInterpolatedColor("blues")
	require.NoError(t, err)
	s.SetDomain(0, 100)
	return s
}

func TestInterpolatedRequestedSpace(t *testing.T) {
	tests := []struct {
		orientation string
		want        component.SpaceRequest
	}{
		{Horizontal, component.SpaceRequest{Width: 154, Height: 20}},
		{Left, component.SpaceRequest{Width: 43, Height: 120}},
		{Right, component.SpaceRequest{Width: 43, Height: 120}},
	}
	for _, tt := range tests {
		l := NewInterpolated(heat(t))
		require.NoError(t, l.Anchor(testDoc().Root()))
		require.NoError(t, l.SetOrientation(tt.orientation))
		assert.Equal(t, tt.want, l.RequestedSpace(300, 300), tt.orientation)
	}

	l := NewInterpolated(heat(t))
	err := l.SetOrientation("top")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidOrientation), "got %v", err)
	err = l.SetSwatches(1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)

	assert.True(t, l.FixedWidth())
	l.SetExpands(true)
	assert.False(t, l.FixedWidth(), "expanding horizontal legends take extra width")
	assert.True(t, l.FixedHeight())
	require.NoError(t, l.SetOrientation(Left))
	assert.True(t, l.FixedWidth())
	assert.False(t, l.FixedHeight(), "expanding vertical legends take extra height")
}

func TestInterpolatedRender(t *testing.T) {
	colors := heat(t)
	l := NewInterpolated(colors)
	doc := testDoc()
	require.NoError(t, component.RenderTo(l, doc.Root(), 300, 300))

	swatches := l.Swatches()
	require.Len(t, swatches, DefaultSwatches)
	rects := surface.Select(doc.Root(), RampSwatchClass)
	require.Len(t, rects, DefaultSwatches)
	for i, s := range swatches {
		assert.InDelta(t, float64(i)*10, s.Value, 1e-9)
		assert.Equal(t, colors.Scale(s.Value), s.Color)
		fill, _ := rects[i].Attr("fill")
		assert.Equal(t, s.Color, fill)
		assert.Equal(t, 16+float64(i)*10, s.Bounds.X)
	}

	bounds := surface.Select(doc.Root(), BoundClass)
	require.Len(t, bounds, 2)
	assert.Equal(t, "0", bounds[0].Text())
	assert.Equal(t, "100", bounds[1].Text())

	v, ok := l.ValueAt(37, 10)
	require.True(t, ok)
	assert.InDelta(t, 20, v, 1e-9)
	_, ok = l.ValueAt(2, 2)
	assert.False(t, ok)
}

func TestInterpolatedVertical(t *testing.T) {
	l := NewInterpolated(heat(t))
	require.NoError(t, l.SetOrientation(Right))
	l.SetFormatter(func(x float64) string { return "$" + surface.FormatValue(x) })
	doc := testDoc()
	require.NoError(t, component.RenderTo(l, doc.Root(), 300, 300))

	swatches := l.Swatches()
	assert.Equal(t, 105.0, swatches[0].Bounds.Y, "the lower bound sits at the bottom")
	assert.Equal(t, 5.0, swatches[len(swatches)-1].Bounds.Y)
	assert.Equal(t, 5.0, swatches[0].Bounds.X)

	bounds := surface.Select(doc.Root(), BoundClass)
	require.Len(t, bounds, 2)
	assert.Equal(t, "$0", bounds[0].Text())
	assert.Equal(t, "$100", bounds[1].Text())
	x, _ := bounds[1].Attr("x")
	assert.Equal(t, "20", x, "labels sit right of the strip")
}

func TestInterpolatedExpands(t *testing.T) {
	l := NewInterpolated(heat(t))
	l.SetExpands(true)
	doc := testDoc()
	require.NoError(t, component.RenderTo(l, doc.Root(), 300, 300))

	require.Greater(t, l.Width(), 154.0)
	swatches := l.Swatches()
	assert.Greater(t, swatches[0].Bounds.Width, 10.0)
	last := swatches[len(swatches)-1].Bounds
	assert.InDelta(t, l.Width(), last.X+last.Width+5+18+5, 1e-9, "the strip fills the width left by the labels")
}

func TestInterpolatedFollowsScale(t *testing.T) {
	colors := heat(t)
	l := NewInterpolated(colors)
	doc := testDoc()
	require.NoError(t, component.RenderTo(l, doc.Root(), 300, 300))

	colors.SetDomain(0, 1000)
	swatches := l.Swatches()
	assert.InDelta(t, 1000, swatches[len(swatches)-1].Value, 1e-9)
	assert.Equal(t, 160.0, l.Width(), "the tree was laid out again for the wider label")
	assert.Equal(t, "1000", surface.Select(doc.Root(), BoundClass)[1].Text())

	require.NoError(t, l.Remove())
	colors.SetDomain(0, 5)
	assert.InDelta(t, 1000, l.Swatches()[DefaultSwatches-1].Value, 1e-9, "a removed legend ignores its scale")
}
