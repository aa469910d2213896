package surface

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
)

// Element is the Document's Node implementation.
type Element struct {
	doc      *Document
	parent   *Element
	tag      string
	children []*Element

	attrNames []string
	attrs     map[string]string
	styleKeys []string
	styles    map[string]string
	classes   []string
	text      string

	tx, ty  float64
	removed bool

	listeners event.Registry[Event]
	types     map[event.Handle]string
}

func newElement(doc *Document, parent *Element, tag string) *Element {
	return &Element{
		doc:    doc,
		parent: parent,
		tag:    tag,
		attrs:  make(map[string]string),
		styles: make(map[string]string),
		types:  make(map[event.Handle]string),
	}
}

func (e *Element) Tag() string         { return e.tag }
func (e *Element) Document() *Document { return e.doc }

func (e *Element) Parent() Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

func (e *Element) AppendChild(tag string) Node {
	c := newElement(e.doc, e, tag)
	e.children = append(e.children, c)
	return c
}

func (e *Element) Adopt(child Node) error {
	c, ok := child.(*Element)
	switch {
	case !ok || c.doc != e.doc:
		return errors.New(errors.ErrCodeInvalidConfig, "cannot adopt a node from another document")
	case c.removed || e.removed:
		return errors.New(errors.ErrCodeInvalidConfig, "cannot adopt into or from a removed node")
	}
	for n := e; n != nil; n = n.parent {
		if n == c {
			return errors.New(errors.ErrCodeInvalidConfig, "cannot adopt an ancestor of %s", e.tag)
		}
	}
	c.Detach()
	c.parent = e
	e.children = append(e.children, c)
	return nil
}

func (e *Element) Detach() {
	if e.parent != nil {
		e.parent.children = slices.DeleteFunc(e.parent.children, func(x *Element) bool { return x == e })
		e.parent = nil
	}
}

func (e *Element) SetAttr(name string, value any) {
	if _, ok := e.attrs[name]; !ok {
		e.attrNames = append(e.attrNames, name)
	}
	e.attrs[name] = FormatValue(value)
}

func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) RemoveAttr(name string) {
	if _, ok := e.attrs[name]; !ok {
		return
	}
	delete(e.attrs, name)
	e.attrNames = slices.DeleteFunc(e.attrNames, func(n string) bool { return n == name })
}

func (e *Element) SetStyle(name, value string) {
	if value == "" {
		if _, ok := e.styles[name]; ok {
			delete(e.styles, name)
			e.styleKeys = slices.DeleteFunc(e.styleKeys, func(n string) bool { return n == name })
		}
		return
	}
	if _, ok := e.styles[name]; !ok {
		e.styleKeys = append(e.styleKeys, name)
	}
	e.styles[name] = value
}

func (e *Element) Style(name string) string { return e.styles[name] }

func (e *Element) SetText(s string) { e.text = s }
func (e *Element) Text() string     { return e.text }

func (e *Element) AddClass(names ...string) {
	for _, n := range names {
		if n != "" && !slices.Contains(e.classes, n) {
			e.classes = append(e.classes, n)
		}
	}
}

func (e *Element) HasClass(name string) bool { return slices.Contains(e.classes, name) }

// SetTranslate stores the offset and writes the matching transform
// attribute.
func (e *Element) SetTranslate(x, y float64) {
	e.tx, e.ty = x, y
	if x == 0 && y == 0 {
		e.RemoveAttr("transform")
		return
	}
	e.SetAttr("transform", fmt.Sprintf("translate(%s,%s)", FormatValue(x), FormatValue(y)))
}

func (e *Element) Translate() (float64, float64) { return e.tx, e.ty }

func (e *Element) Remove() {
	if e.removed {
		return
	}
	e.markRemoved()
	if e.parent != nil {
		e.parent.children = slices.DeleteFunc(e.parent.children, func(c *Element) bool { return c == e })
	}
}

func (e *Element) markRemoved() {
	e.removed = true
	for _, c := range e.children {
		c.markRemoved()
	}
}

func (e *Element) Removed() bool { return e.removed }

// MeasureText measures s with the font size in effect at this element.
func (e *Element) MeasureText(s string) Rect {
	return e.doc.measurer.Measure(s, e.fontSize())
}

func (e *Element) fontSize() float64 {
	for n := e; n != nil; n = n.parent {
		if v, ok := n.styles["font-size"]; ok {
			if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil && f > 0 {
				return f
			}
		}
	}
	return e.doc.fontSize
}

// On registers fn for events of the given type reaching this element,
// either as target or by bubbling.
func (e *Element) On(eventType string, fn func(Event)) event.Handle {
	h := e.listeners.Subscribe(func(ev Event) {
		if ev.Type == eventType {
			fn(ev)
		}
	})
	e.types[h] = eventType
	return h
}

// Off removes a listener. Unknown handles are an error.
func (e *Element) Off(h event.Handle) error {
	if err := e.listeners.Unsubscribe(h); err != nil {
		return err
	}
	delete(e.types, h)
	return nil
}

// ListenerCount returns the number of listeners registered for eventType.
func (e *Element) ListenerCount(eventType string) int {
	n := 0
	for _, t := range e.types {
		if t == eventType {
			n++
		}
	}
	return n
}

// bounds returns the element's box in document coordinates, from its
// x, y, width and height attributes.
func (e *Element) bounds() (Rect, bool) {
	w, okW := attrFloat(e, "width")
	h, okH := attrFloat(e, "height")
	if !okW || !okH {
		return Rect{}, false
	}
	ox, oy := Origin(e)
	x, _ := attrFloat(e, "x")
	y, _ := attrFloat(e, "y")
	return Rect{X: ox + x, Y: oy + y, Width: w, Height: h}, true
}

// FormatValue renders an attribute value. Floats are rounded to three
// decimals.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	r := math.Round(f*1000) / 1000
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// AttrFloat reads a numeric attribute from n.
func AttrFloat(n Node, name string) (float64, bool) {
	return attrFloat(n, name)
}

func attrFloat(n Node, name string) (float64, bool) {
	v, ok := n.Attr(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var _ Node = (*Element)(nil)
