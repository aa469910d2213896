package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/matzehuels/stackplot/pkg/surface"
)

func TestImageFillsShapes(t *testing.T) {
	doc := surface.NewDocument(40, 20)
	r := doc.Root().AppendChild("rect")
	r.SetAttr("x", 0)
	r.SetAttr("y", 0)
	r.SetAttr("width", 20)
	r.SetAttr("height", 20)
	r.SetAttr("fill", "#ff0000")

	img, err := Image(doc, Options{})
	if err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("bounds = %v, want 40x20", b)
	}
	if got := color.RGBAModel.Convert(img.At(5, 10)).(color.RGBA); got.R < 200 || got.G > 50 {
		t.Errorf("pixel inside rect = %v, want red", got)
	}
	if got := color.RGBAModel.Convert(img.At(35, 10)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel outside rect = %v, want white", got)
	}
}

func TestPNGScale(t *testing.T) {
	doc := surface.NewDocument(30, 10)
	txt := doc.Root().AppendChild("text")
	txt.SetAttr("x", 2)
	txt.SetAttr("y", 8)
	txt.SetText("hi")

	var buf bytes.Buffer
	if err := PNG(&buf, doc, Options{Scale: 2}); err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 20 {
		t.Errorf("bounds = %v, want 60x20", b)
	}
}

func TestEmptyDocument(t *testing.T) {
	if _, err := Image(surface.NewDocument(0, 0), Options{}); err == nil {
		t.Error("Image() of an empty document should fail")
	}
}
