// Package raster renders a surface.Document to a bitmap.
//
// Shapes are rasterized by parsing the document's SVG with oksvg and
// filling it through a rasterx scanner. oksvg does not draw text, so text
// elements are drawn afterwards with the same font faces the document
// measured them with.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/fonts"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Options control rasterization.
type Options struct {
	// Scale multiplies the document size. Zero means 1.
	Scale float64

	// Background fills the image before drawing. Nil means white.
	Background color.Color
}

// Image rasterizes doc into an RGBA image.
func Image(doc *surface.Document, opts Options) (*image.RGBA, error) {
	k := opts.Scale
	if k <= 0 {
		k = 1
	}
	dw, dh := doc.Size()
	w, h := int(math.Ceil(dw*k)), int(math.Ceil(dh*k))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "cannot rasterize a %vx%v document", dw, dh)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc.SVG()), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parse svg")
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := opts.Background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	drawText(img, doc.Root(), k)
	return img, nil
}

// PNG rasterizes doc and writes it as PNG.
func PNG(w io.Writer, doc *surface.Document, opts Options) error {
	img, err := Image(doc, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "encode png")
	}
	return nil
}

func drawText(img *image.RGBA, root surface.Node, k float64) {
	for _, n := range surface.SelectTag(root, "text") {
		s := n.Text()
		if s == "" || rotated(n) {
			continue
		}
		size := fontSize(n) * k
		face, err := fonts.Face(fonts.Sans, size)
		if err != nil {
			continue
		}
		ox, oy := surface.Origin(n)
		x, _ := surface.AttrFloat(n, "x")
		y, _ := surface.AttrFloat(n, "y")
		px, py := (ox+x)*k, (oy+y)*k

		adv := float64(font.MeasureString(face, s)) / 64
		switch attr(n, "text-anchor") {
		case "middle":
			px -= adv / 2
		case "end":
			px -= adv
		}
		m := face.Metrics()
		ascent := float64(m.Ascent) / 64
		switch attr(n, "dominant-baseline") {
		case "central", "middle":
			py += ascent / 2
		case "hanging":
			py += ascent
		}

		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(textColor(n)),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6(py * 64)},
		}
		d.DrawString(s)
	}
}

func attr(n surface.Node, name string) string {
	v, _ := n.Attr(name)
	return v
}

func rotated(n surface.Node) bool {
	for ; n != nil; n = n.Parent() {
		if strings.Contains(attr(n, "transform"), "rotate") {
			return true
		}
	}
	return false
}

func fontSize(n surface.Node) float64 {
	for ; n != nil; n = n.Parent() {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(n.Style("font-size"), "px"), 64); err == nil && v > 0 {
			return v
		}
		if v, ok := surface.AttrFloat(n, "font-size"); ok && v > 0 {
			return v
		}
	}
	return fonts.DefaultSize
}

func textColor(n surface.Node) color.Color {
	if c, err := scale.ParseColor(attr(n, "fill")); err == nil {
		return c
	}
	return color.Black
}
