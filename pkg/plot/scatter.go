package plot

import "github.com/matzehuels/stackplot/pkg/dataset"

// Default scatter mark attributes.
const (
	DefaultRadius  = 5.0
	DefaultOpacity = 0.6
)

// Scatter draws one circle per datum at (x, y).
type Scatter struct {
	Plot
}

// NewScatter creates a scatter plot with radius, fill and opacity
// defaults.
func NewScatter() *Scatter {
	s := &Scatter{}
	s.initPlot(s, "scatter-plot")
	_ = s.Project("r", dataset.Constant(DefaultRadius), nil)
	_ = s.Project("fill", dataset.Constant(defaultColor), nil)
	_ = s.Project("opacity", dataset.Constant(DefaultOpacity), nil)
	return s
}

func (s *Scatter) positional() []string { return []string{"x", "y"} }

func (s *Scatter) layers(e *entry, recs []record) ([]layer, error) {
	main := s.attrs(e, "x", "y", "r")
	main["cx"] = s.pixelProjector("x", e)
	main["cy"] = s.pixelProjector("y", e)
	main["r"] = s.pixelProjector("r", e)
	return []layer{{
		name: "scatter-point",
		tag:  "circle",
		data: joinData(recs),
		plan: s.plan(main, override(main, map[string]any{"r": 0.0})),
		key:  recordKey,
	}}, nil
}
