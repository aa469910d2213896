package surface

import (
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/stackplot/pkg/fonts"
)

// TextMeasurer computes text bounding boxes. Y is negative: the box starts
// at the ascent above the baseline.
type TextMeasurer interface {
	Measure(s string, size float64) Rect
}

// FontMeasurer measures text with a font family from the fonts package.
type FontMeasurer struct {
	Family string
}

// NewFontMeasurer returns a measurer for the family.
func NewFontMeasurer(family string) FontMeasurer {
	return FontMeasurer{Family: family}
}

// Measure implements TextMeasurer. If the family cannot be loaded the
// fixed 7x13 basic face is used instead.
func (m FontMeasurer) Measure(s string, size float64) Rect {
	face, err := fonts.Face(m.Family, size)
	if err != nil {
		face = basicfont.Face7x13
	}
	return measureFace(face, s)
}

func measureFace(face font.Face, s string) Rect {
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64
	descent := float64(metrics.Descent) / 64
	width := float64(font.MeasureString(face, s)) / 64
	return Rect{X: 0, Y: -ascent, Width: width, Height: ascent + descent}
}

// MonospaceMeasurer gives every rune the same width, independent of font
// size. Useful where exact metrics matter more than realism.
type MonospaceMeasurer struct {
	CharWidth  float64
	LineHeight float64
}

// Measure implements TextMeasurer.
func (m MonospaceMeasurer) Measure(s string, _ float64) Rect {
	return Rect{
		X:      0,
		Y:      -m.LineHeight * 0.8,
		Width:  float64(utf8.RuneCountInString(s)) * m.CharWidth,
		Height: m.LineHeight,
	}
}
