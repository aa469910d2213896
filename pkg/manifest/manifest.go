// Package manifest reads TOML chart manifests and builds component trees
// from them.
//
// A manifest declares datasets, scales, plots, axes, gridlines and a
// legend. Build turns it into a chart.Standard ready to render:
//
//	title = "Revenue"
//
//	[data.sales]
//	path = "sales.csv"
//
//	[scales.x]
//	type = "category"
//
//	[scales.y]
//	type = "linear"
//	include = [0]
//
//	[[plots]]
//	type = "bar"
//	datasets = ["sales"]
//	attrs.x = { field = "month", scale = "x" }
//	attrs.y = { expr = "num(d[\"revenue\"]) / 1000", scale = "y" }
//
//	[axes.x]
//	scale = "x"
//
//	[axes.y]
//	scale = "y"
//	label = "kUSD"
//
// Dataset paths are resolved relative to the manifest's directory.
package manifest

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// Default canvas size when a manifest does not set one.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Scale types.
const (
	ScaleLinear            = "linear"
	ScaleLog               = "log"
	ScaleTime              = "time"
	ScaleCategory          = "category"
	ScaleColor             = "color"
	ScaleInterpolatedColor = "interpolated-color"
)

// Plot types.
const (
	PlotLine         = "line"
	PlotArea         = "area"
	PlotStackedArea  = "stacked-area"
	PlotScatter      = "scatter"
	PlotBar          = "bar"
	PlotStackedBar   = "stacked-bar"
	PlotClusteredBar = "clustered-bar"
	PlotPie          = "pie"
	PlotRectangle    = "rectangle"
	PlotWaterfall    = "waterfall"
)

var (
	scaleTypes = []string{ScaleLinear, ScaleLog, ScaleTime, ScaleCategory, ScaleColor, ScaleInterpolatedColor}
	plotTypes  = []string{PlotLine, PlotArea, PlotStackedArea, PlotScatter, PlotBar, PlotStackedBar, PlotClusteredBar, PlotPie, PlotRectangle, PlotWaterfall}
)

// Manifest is a decoded chart manifest.
type Manifest struct {
	Title   string  `toml:"title"`
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Animate bool    `toml:"animate"`

	Data      map[string]Data  `toml:"data"`
	Scales    map[string]Scale `toml:"scales"`
	Plots     []Plot           `toml:"plots"`
	Axes      Axes             `toml:"axes"`
	Gridlines *Gridlines       `toml:"gridlines"`
	Legend    *Legend          `toml:"legend"`

	// Dir is the directory dataset paths are relative to. Load sets it to
	// the manifest's directory.
	Dir string `toml:"-"`
}

// Data is one dataset: a file path or inline records.
type Data struct {
	Path    string           `toml:"path"`
	Records []map[string]any `toml:"records"`
}

// Scale declares one named scale. Which options apply depends on Type.
type Scale struct {
	Type string `toml:"type"`

	// Quantitative options. Domain holds [min, max] for linear, log, time
	// and interpolated-color scales and the category list otherwise.
	Domain  []any    `toml:"domain"`
	Base    int      `toml:"base"`
	Padding *float64 `toml:"padding"`
	Nice    int      `toml:"nice"`
	Include []any    `toml:"include"`

	// Ordinal options.
	InnerPadding *float64 `toml:"inner_padding"`
	OuterPadding *float64 `toml:"outer_padding"`
	Palette      string   `toml:"palette"`
	Colors       []string `toml:"colors"`

	Ramp string `toml:"ramp"`
}

// Plot declares one plot drawn in the chart's center.
type Plot struct {
	Type        string          `toml:"type"`
	Datasets    []string        `toml:"datasets"`
	Attrs       map[string]Attr `toml:"attrs"`
	Orientation string          `toml:"orientation"`
	BarWidth    float64         `toml:"bar_width"`
	Alignment   string          `toml:"alignment"`
	Baseline    *float64        `toml:"baseline"`
	Connectors  bool            `toml:"connectors"`
}

// Attr binds a plot attribute to exactly one of a field, a Go expression
// over d and i, or a constant value, optionally through a named scale.
type Attr struct {
	Field string `toml:"field"`
	Expr  string `toml:"expr"`
	Value any    `toml:"value"`
	Scale string `toml:"scale"`
}

// Axes holds the axis below the center and the axis to its left.
type Axes struct {
	X *Axis `toml:"x"`
	Y *Axis `toml:"y"`
}

// Axis declares an axis over a positional scale.
type Axis struct {
	Scale     string `toml:"scale"`
	Label     string `toml:"label"`
	TickCount int    `toml:"tick_count"`
	EndTicks  *bool  `toml:"end_ticks"`
}

// Gridlines names the scales gridlines follow. Either may be empty.
type Gridlines struct {
	X string `toml:"x"`
	Y string `toml:"y"`
}

// Legend declares a legend over a color scale, or a swatch strip over
// an interpolated-color scale. Orientation and Expands apply to strips.
type Legend struct {
	Scale            string `toml:"scale"`
	MaxEntriesPerRow int    `toml:"max_entries_per_row"`
	Orientation      string `toml:"orientation"`
	Expands          bool   `toml:"expands"`
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown manifest keys: %s", strings.Join(keys, ", "))
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read manifest %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.Dir = dirOf(path)
	return m, nil
}

// Validate fills defaults and checks that every reference resolves.
func (m *Manifest) Validate() error {
	if m.Width == 0 {
		m.Width = DefaultWidth
	}
	if m.Height == 0 {
		m.Height = DefaultHeight
	}
	if m.Width < 0 || m.Height < 0 {
		return invalid("size must be positive, got %gx%g", m.Width, m.Height)
	}

	for _, key := range sortedKeys(m.Data) {
		d := m.Data[key]
		if (d.Path == "") == (d.Records == nil) {
			return invalid("data.%s: set exactly one of path or records", key)
		}
	}
	for _, name := range sortedKeys(m.Scales) {
		if err := m.Scales[name].validate(name); err != nil {
			return err
		}
	}

	if len(m.Plots) == 0 {
		return invalid("manifest declares no plots")
	}
	for i, p := range m.Plots {
		if err := m.validatePlot(i, p); err != nil {
			return err
		}
	}

	for _, ax := range []struct {
		name string
		axis *Axis
	}{{"x", m.Axes.X}, {"y", m.Axes.Y}} {
		if ax.axis == nil {
			continue
		}
		kind, err := m.scaleType(ax.axis.Scale, "axes."+ax.name)
		if err != nil {
			return err
		}
		if kind == ScaleColor || kind == ScaleInterpolatedColor {
			return invalid("axes.%s: %s scale %q cannot carry an axis", ax.name, kind, ax.axis.Scale)
		}
		if ax.axis.TickCount < 0 {
			return invalid("axes.%s: tick_count must not be negative", ax.name)
		}
	}

	if g := m.Gridlines; g != nil {
		for _, ref := range []struct{ field, name string }{{"gridlines.x", g.X}, {"gridlines.y", g.Y}} {
			if ref.name == "" {
				continue
			}
			kind, err := m.scaleType(ref.name, ref.field)
			if err != nil {
				return err
			}
			if kind == ScaleCategory || kind == ScaleColor {
				return invalid("%s: gridlines need a quantitative scale, %q is %s", ref.field, ref.name, kind)
			}
		}
	}

	if l := m.Legend; l != nil {
		kind, err := m.scaleType(l.Scale, "legend")
		if err != nil {
			return err
		}
		if kind != ScaleColor && kind != ScaleInterpolatedColor {
			return invalid("legend: scale %q is %s, want color or interpolated-color", l.Scale, kind)
		}
		if l.MaxEntriesPerRow < 0 {
			return invalid("legend: max_entries_per_row must not be negative")
		}
	}
	return nil
}

func (s Scale) validate(name string) error {
	if !slices.Contains(scaleTypes, s.Type) {
		return invalid("scales.%s: unknown type %q (want one of %s)", name, s.Type, strings.Join(scaleTypes, ", "))
	}
	switch s.Type {
	case ScaleLinear, ScaleLog, ScaleTime, ScaleInterpolatedColor:
		if s.Domain != nil && len(s.Domain) != 2 {
			return invalid("scales.%s: domain needs [min, max], got %d values", name, len(s.Domain))
		}
	}
	if s.Padding != nil && *s.Padding < 0 {
		return invalid("scales.%s: padding must not be negative", name)
	}
	return nil
}

func (m *Manifest) validatePlot(i int, p Plot) error {
	where := fmt.Sprintf("plots[%d]", i)
	if !slices.Contains(plotTypes, p.Type) {
		return invalid("%s: unknown type %q (want one of %s)", where, p.Type, strings.Join(plotTypes, ", "))
	}
	if len(p.Datasets) == 0 {
		return invalid("%s: no datasets", where)
	}
	if p.Type == PlotWaterfall && len(p.Datasets) > 1 {
		return invalid("%s: waterfall plots take a single dataset, got %d", where, len(p.Datasets))
	}
	if p.Type == PlotWaterfall && p.Orientation != "" && p.Orientation != "vertical" {
		return invalid("%s: waterfall plots are vertical, got orientation %q", where, p.Orientation)
	}
	if p.Connectors && p.Type != PlotWaterfall {
		return invalid("%s: connectors apply to waterfall plots only", where)
	}
	for _, key := range p.Datasets {
		if _, ok := m.Data[key]; !ok {
			return invalid("%s: unknown dataset %q", where, key)
		}
	}
	for _, attr := range sortedKeys(p.Attrs) {
		a := p.Attrs[attr]
		set := 0
		for _, ok := range []bool{a.Field != "", a.Expr != "", a.Value != nil} {
			if ok {
				set++
			}
		}
		if set != 1 {
			return invalid("%s.attrs.%s: set exactly one of field, expr or value", where, attr)
		}
		if a.Scale != "" {
			if _, err := m.scaleType(a.Scale, where+".attrs."+attr); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manifest) scaleType(name, where string) (string, error) {
	if name == "" {
		return "", invalid("%s: scale is required", where)
	}
	s, ok := m.Scales[name]
	if !ok {
		return "", invalid("%s: unknown scale %q", where, name)
	}
	return s.Type, nil
}

// DataPaths returns the resolved paths of every file-backed dataset,
// sorted by dataset key.
func (m *Manifest) DataPaths() []string {
	var paths []string
	for _, key := range sortedKeys(m.Data) {
		if p := m.Data[key].Path; p != "" {
			paths = append(paths, m.resolve(p))
		}
	}
	return paths
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidManifest, format, args...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
