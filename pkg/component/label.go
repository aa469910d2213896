package component

import (
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/fonts"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Label orientations.
const (
	Horizontal = "horizontal"
	Left       = "left"
	Right      = "right"
)

var fallbackMeasurer = surface.NewFontMeasurer(fonts.Sans)

// Label is a single line of text. Its size follows the text, so it is
// fixed in both dimensions and its weights cannot be set.
type Label struct {
	Base
	text        string
	orientation string
	padding     float64
	fontSize    float64
	textNode    surface.Node
}

// NewLabel creates a horizontal label.
func NewLabel(text string) *Label {
	l := &Label{text: text, orientation: Horizontal, fontSize: fonts.DefaultSize}
	l.Init(l, "label")
	return l
}

// NewTitleLabel creates a label styled as a chart title.
func NewTitleLabel(text string) *Label {
	l := NewLabel(text)
	l.fontSize = 16
	l.AddClass("title-label")
	return l
}

// NewAxisLabel creates a label styled as an axis caption.
func NewAxisLabel(text, orientation string) (*Label, error) {
	l := NewLabel(text)
	l.AddClass("axis-label")
	if err := l.SetOrientation(orientation); err != nil {
		return nil, err
	}
	return l, nil
}

// Text returns the label text.
func (l *Label) Text() string { return l.text }

// SetText replaces the text.
func (l *Label) SetText(s string) {
	l.text = s
	l.Redraw()
}

// Orientation returns the orientation.
func (l *Label) Orientation() string { return l.orientation }

// SetOrientation sets "horizontal", "left" or "right"; the latter two
// rotate the text.
func (l *Label) SetOrientation(o string) error {
	switch o {
	case Horizontal, Left, Right:
	default:
		return errors.New(errors.ErrCodeInvalidOrientation, "unsupported label orientation %q", o)
	}
	l.orientation = o
	l.Redraw()
	return nil
}

// SetPadding sets the space around the text.
func (l *Label) SetPadding(p float64) error {
	if err := errors.ValidateNonNegative("label padding", p); err != nil {
		return err
	}
	l.padding = p
	l.Redraw()
	return nil
}

// SetWeights always fails: a label's size is derived from its text.
func (l *Label) SetWeights(row, col float64) error {
	return errors.New(errors.ErrCodeWeightNotSettable, "label size is derived from its text; weights cannot be set")
}

// FixedWidth is always true.
func (l *Label) FixedWidth() bool { return true }

// FixedHeight is always true.
func (l *Label) FixedHeight() bool { return true }

func (l *Label) measure() surface.Rect {
	if l.content != nil {
		return l.content.Document().Measurer().Measure(l.text, l.fontSize)
	}
	return fallbackMeasurer.Measure(l.text, l.fontSize)
}

// RequestedSpace is the text box plus padding, rotated for vertical
// labels.
func (l *Label) RequestedSpace(offeredWidth, offeredHeight float64) SpaceRequest {
	box := l.measure()
	w, h := box.Width+2*l.padding, box.Height+2*l.padding
	if l.orientation != Horizontal {
		w, h = h, w
	}
	return l.Request(offeredWidth, offeredHeight, w, h)
}

// Render draws the text centered in the allocated box.
func (l *Label) Render() error {
	if !l.Renderable() {
		return nil
	}
	if l.textNode == nil {
		l.textNode = l.content.AppendChild("text")
		l.textNode.AddClass("label-text")
	}
	n := l.textNode
	n.SetText(l.text)
	n.SetStyle("font-size", surface.FormatValue(l.fontSize)+"px")
	n.SetAttr("text-anchor", "middle")
	n.SetAttr("dominant-baseline", "central")

	cx, cy := l.width/2, l.height/2
	switch l.orientation {
	case Horizontal:
		n.RemoveAttr("transform")
		n.SetAttr("x", cx)
		n.SetAttr("y", cy)
	default:
		angle := -90
		if l.orientation == Right {
			angle = 90
		}
		n.SetAttr("x", 0)
		n.SetAttr("y", 0)
		n.SetAttr("transform", "translate("+surface.FormatValue(cx)+","+surface.FormatValue(cy)+") rotate("+surface.FormatValue(angle)+")")
	}
	l.MarkRendered()
	return nil
}
