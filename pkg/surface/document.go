package surface

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/stackplot/pkg/fonts"
)

// Document owns a tree of Elements rooted at an <svg> element.
type Document struct {
	root          *Element
	width, height float64
	measurer      TextMeasurer
	fontFamily    string
	fontSize      float64
	embedFont     bool
}

// Option configures a Document.
type Option func(*Document)

// WithMeasurer replaces the text measurer.
func WithMeasurer(m TextMeasurer) Option { return func(d *Document) { d.measurer = m } }

// WithFontSize sets the default font size in pixels.
func WithFontSize(size float64) Option { return func(d *Document) { d.fontSize = size } }

// WithEmbeddedFont inlines the measuring font into the SVG output so
// viewers render text with the same metrics used for layout.
func WithEmbeddedFont() Option { return func(d *Document) { d.embedFont = true } }

// NewDocument creates an empty document of the given pixel size.
func NewDocument(width, height float64, opts ...Option) *Document {
	d := &Document{
		fontFamily: fonts.FallbackFontFamily,
		fontSize:   fonts.DefaultSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.measurer == nil {
		d.measurer = NewFontMeasurer(fonts.Sans)
	}
	d.root = newElement(d, nil, "svg")
	d.root.SetAttr("xmlns", "http://www.w3.org/2000/svg")
	d.SetSize(width, height)
	return d
}

// Root returns the <svg> element.
func (d *Document) Root() Node { return d.root }

// Size returns the document's pixel size.
func (d *Document) Size() (float64, float64) { return d.width, d.height }

// SetSize resizes the document.
func (d *Document) SetSize(width, height float64) {
	d.width, d.height = width, height
	d.root.SetAttr("width", width)
	d.root.SetAttr("height", height)
	d.root.SetAttr("viewBox", fmt.Sprintf("0 0 %s %s", FormatValue(width), FormatValue(height)))
}

// Measurer returns the document's text measurer.
func (d *Document) Measurer() TextMeasurer { return d.measurer }

// Dispatch delivers ev to target and then to each of its ancestors.
func (d *Document) Dispatch(target Node, ev Event) {
	if target == nil || target.Removed() {
		return
	}
	ev.Target = target
	for n := target; n != nil; n = n.Parent() {
		if el, ok := n.(*Element); ok {
			el.listeners.Notify(ev)
		}
	}
}

// DispatchAt dispatches ev to the node under (ev.X, ev.Y).
func (d *Document) DispatchAt(ev Event) {
	d.Dispatch(d.HitTest(ev.X, ev.Y), ev)
}

// HitTest returns the topmost hit-box element containing (x, y), or the
// root when there is none.
func (d *Document) HitTest(x, y float64) Node {
	var hit *Element
	var walk func(e *Element)
	walk = func(e *Element) {
		if e.HasClass(HitBoxClass) {
			if b, ok := e.bounds(); ok && b.Contains(x, y) {
				hit = e
			}
		}
		for _, c := range e.children {
			walk(c)
		}
	}
	walk(d.root)
	if hit == nil {
		return d.root
	}
	return hit
}

// Select returns the descendants of n carrying the class, in document
// order.
func Select(n Node, class string) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.HasClass(class) {
			out = append(out, c)
		}
		out = append(out, Select(c, class)...)
	}
	return out
}

// SelectTag returns the descendants of n with the tag, in document order.
func SelectTag(n Node, tag string) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Tag() == tag {
			out = append(out, c)
		}
		out = append(out, SelectTag(c, tag)...)
	}
	return out
}

// SVG returns the serialized document.
func (d *Document) SVG() []byte {
	var buf bytes.Buffer
	_ = d.WriteSVG(&buf)
	return buf.Bytes()
}

// WriteSVG serializes the document.
func (d *Document) WriteSVG(w io.Writer) error {
	bw := bufio.NewWriter(w)
	d.root.SetAttr("font-family", d.fontFamily)
	d.root.SetAttr("font-size", d.fontSize)
	writeElement(bw, d.root, 0, func() {
		if d.embedFont {
			fmt.Fprintf(bw, "  <defs><style>@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s); }</style></defs>\n",
				fonts.FontFamily, fonts.SansBase64())
		}
	})
	return bw.Flush()
}

func writeElement(w *bufio.Writer, e *Element, depth int, prelude func()) {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(e.tag)
	if len(e.classes) > 0 {
		writeAttr(w, "class", strings.Join(e.classes, " "))
	}
	for _, name := range e.attrNames {
		writeAttr(w, name, e.attrs[name])
	}
	if len(e.styleKeys) > 0 {
		parts := make([]string, len(e.styleKeys))
		for i, k := range e.styleKeys {
			parts[i] = k + ": " + e.styles[k]
		}
		writeAttr(w, "style", strings.Join(parts, "; "))
	}
	if len(e.children) == 0 && e.text == "" && prelude == nil {
		w.WriteString("/>\n")
		return
	}
	w.WriteByte('>')
	if e.text != "" {
		xml.EscapeText(w, []byte(e.text))
	}
	if len(e.children) > 0 || prelude != nil {
		w.WriteByte('\n')
		if prelude != nil {
			prelude()
		}
		for _, c := range e.children {
			writeElement(w, c, depth+1, nil)
		}
		w.WriteString(indent)
	}
	fmt.Fprintf(w, "</%s>\n", e.tag)
}

func writeAttr(w *bufio.Writer, name, value string) {
	w.WriteByte(' ')
	w.WriteString(name)
	w.WriteString(`="`)
	xml.EscapeText(w, []byte(value))
	w.WriteByte('"')
}
