package scale

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// Named categorical palettes.
var palettes = map[string][]string{
	"category10": {
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	},
	"category20": {
		"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
		"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
		"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
		"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
	},
	"plottable": {
		"#5279c7", "#fd373e", "#63c261", "#fad419", "#2c2b6f",
		"#ff7939", "#db2e65", "#99ce50", "#962565", "#06cccc",
	},
}

// DefaultPalette names the palette used by NewColor.
const DefaultPalette = "category10"

// Color is an ordinal scale mapping domain values to CSS hex colors.
// Values outside the domain get stable colors after the domain's own.
type Color struct {
	ordinal
	colors   []string
	implicit map[any]int
}

// NewColor creates a colour scale with the default palette.
func NewColor() *Color {
	s := &Color{colors: palettes[DefaultPalette], implicit: make(map[any]int)}
	s.initOrdinal(s)
	return s
}

// NewColorPalette creates a colour scale with a named palette.
func NewColorPalette(name string) (*Color, error) {
	colors, ok := palettes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown palette %q", name)
	}
	s := NewColor()
	s.colors = colors
	return s, nil
}

// Kind returns KindColor.
func (s *Color) Kind() Kind { return KindColor }

// BandWidth reports that colour scales have no bands.
func (s *Color) BandWidth() (float64, bool) { return 0, false }

// Colors returns the range.
func (s *Color) Colors() []string { return s.colors }

// SetColors sets the range. Every entry must be a hex color.
func (s *Color) SetColors(colors ...string) error {
	if len(colors) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "colour range cannot be empty")
	}
	for _, c := range colors {
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	s.colors = colors
	s.broadcast()
	return nil
}

// Scale returns the colour of v.
func (s *Color) Scale(v any) (string, error) {
	var (
		i, ok = 0, false
		err   error
	)
	if v != nil {
		i, ok, err = s.lookup(v)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		j, seen := s.implicit[v]
		if !seen {
			j = len(s.implicit)
			s.implicit[v] = j
		}
		i = len(s.domain) + j
	}
	return s.colors[i%len(s.colors)], nil
}

// Map returns the colour of v as a string.
func (s *Color) Map(v any) (any, error) {
	c, err := s.Scale(v)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var _ Ordinal = (*Color)(nil)

// ParseColor parses "#rgb" or "#rrggbb".
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, errors.New(errors.ErrCodeInvalidConfig, "invalid color %q", s)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.New(errors.ErrCodeInvalidConfig, "invalid color %q", s)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// FormatColor prints c as "#rrggbb".
func FormatColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// BlendColors interpolates between two hex colors in linear light. t is
// clamped to [0, 1]. ok is false if either color does not parse.
func BlendColors(from, to string, t float64) (string, bool) {
	a, err := ParseColor(from)
	if err != nil {
		return "", false
	}
	b, err := ParseColor(to)
	if err != nil {
		return "", false
	}
	t = math.Max(0, math.Min(1, t))
	return FormatColor(newGradient([]color.RGBA{a, b}).at(t)), true
}
