package component

import "math"

// Place allocates c its rectangle inside the offered one. A fixed
// dimension shrinks to the component's request; the leftover space is
// split by the alignment proportion, then the offset is added.
func Place(c Component, x, y, width, height float64) {
	b := c.base()
	w, h := width, height
	if c.FixedWidth() || c.FixedHeight() {
		req := c.RequestedSpace(width, height)
		if c.FixedWidth() {
			w = math.Min(width, req.Width)
		}
		if c.FixedHeight() {
			h = math.Min(height, req.Height)
		}
	}
	b.width, b.height = math.Max(w, 0), math.Max(h, 0)
	b.x = x + (width-b.width)*xAlignments[b.xAlign] + b.xOffset
	b.y = y + (height-b.height)*yAlignments[b.yAlign] + b.yOffset

	if b.root != nil {
		b.root.SetTranslate(b.x, b.y)
		b.hitBox.SetAttr("width", b.width)
		b.hitBox.SetAttr("height", b.height)
	}
	if b.state == Anchored || b.state == Rendered {
		b.state = LaidOut
	}
}

// sum adds a slice.
func sum(xs []float64) float64 {
	t := 0.0
	for _, x := range xs {
		t += x
	}
	return t
}

func addSlices(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// proportionalSpace splits free space by weight. With zero total weight
// nothing is handed out.
func proportionalSpace(weights []float64, free float64) []float64 {
	out := make([]float64, len(weights))
	total := sum(weights)
	if total == 0 {
		return out
	}
	for i, w := range weights {
		out[i] = free * w / total
	}
	return out
}
