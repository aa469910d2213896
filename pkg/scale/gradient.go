package scale

import (
	"image/color"

	"github.com/aclements/go-gg/palette"
)

// gradient wraps palette.RGBGradient, which does not blend inside its
// first segment. A duplicated leading stop shifts every lookup one segment
// right so each real segment blends.
type gradient struct {
	g palette.RGBGradient
	n int
}

func newGradient(stops []color.RGBA) gradient {
	colors := make([]color.RGBA, 0, len(stops)+1)
	colors = append(colors, stops[0])
	colors = append(colors, stops...)
	return gradient{g: palette.RGBGradient{Colors: colors}, n: len(stops)}
}

// at returns the colour at t in [0, 1].
func (g gradient) at(t float64) color.Color {
	switch {
	case t <= 0 || g.n == 1:
		return g.g.Colors[0]
	case t >= 1:
		return g.g.Colors[g.n]
	}
	segments := float64(g.n - 1)
	return g.g.Map((t*segments + 1) / (segments + 1))
}
