package manifest

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackplot/pkg/chart"
	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

const fruitManifest = `
title = "Fruit"
width = 400
height = 300

[data.apples]
records = [
  { month = "jan", sold = 3 },
  { month = "feb", sold = 7 },
]

[data.pears]
records = [
  { month = "jan", sold = 1 },
  { month = "feb", sold = 4 },
]

[scales.x]
type = "category"

[scales.y]
type = "linear"
include = [0]

[scales.fruit]
type = "color"
domain = ["apples", "pears"]

[[plots]]
type = "clustered-bar"
datasets = ["apples", "pears"]
attrs.x = { field = "month", scale = "x" }
attrs.y = { field = "sold", scale = "y" }

[axes.x]
scale = "x"
label = "Month"

[axes.y]
scale = "y"
tick_count = 4

[gridlines]
y = "y"

[legend]
scale = "fruit"
`

func TestParseDefaults(t *testing.T) {
	m, err := Parse([]byte(`
[data.d]
records = [{ x = 1 }]

[[plots]]
type = "scatter"
datasets = ["d"]
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, m.Width)
	assert.Equal(t, DefaultHeight, m.Height)
	assert.False(t, m.Animate)
}

func TestParseInvalid(t *testing.T) {
	const data = "[data.d]\nrecords = [{ x = 1 }]\n"
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"syntax", "title = ", "parse manifest"},
		{"unknown key", data + "colour = 'red'\n[[plots]]\ntype = 'line'\ndatasets = ['d']", "unknown manifest keys"},
		{"no plots", data, "no plots"},
		{"plot type", data + "[[plots]]\ntype = 'radar'\ndatasets = ['d']", "unknown type"},
		{"dataset", data + "[[plots]]\ntype = 'line'\ndatasets = ['e']", "unknown dataset"},
		{"binding", data + "[[plots]]\ntype = 'line'\ndatasets = ['d']\nattrs.x = { field = 'x', value = 1 }", "exactly one of field"},
		{"scale ref", data + "[[plots]]\ntype = 'line'\ndatasets = ['d']\nattrs.x = { field = 'x', scale = 'nope' }", "unknown scale"},
		{"scale type", data + "[scales.s]\ntype = 'sqrt'\n[[plots]]\ntype = 'line'\ndatasets = ['d']", "unknown type"},
		{"domain", data + "[scales.s]\ntype = 'linear'\ndomain = [1]\n[[plots]]\ntype = 'line'\ndatasets = ['d']", "domain needs"},
		{"data source", "[data.d]\npath = 'a.csv'\nrecords = [{ x = 1 }]\n[[plots]]\ntype = 'line'\ndatasets = ['d']", "exactly one of path"},
		{"legend scale", data + "[scales.s]\ntype = 'linear'\n[legend]\nscale = 's'\n[[plots]]\ntype = 'line'\ndatasets = ['d']", "want color"},
		{"waterfall datasets", data + "[[plots]]\ntype = 'waterfall'\ndatasets = ['d', 'd']", "single dataset"},
		{"waterfall orientation", data + "[[plots]]\ntype = 'waterfall'\norientation = 'horizontal'\ndatasets = ['d']", "vertical"},
		{"connectors", data + "[[plots]]\ntype = 'bar'\nconnectors = true\ndatasets = ['d']", "waterfall plots only"},
		{"axis scale", data + "[scales.s]\ntype = 'color'\n[axes.x]\nscale = 's'\n[[plots]]\ntype = 'line'\ndatasets = ['d']", "cannot carry an axis"},
		{"gridlines", data + "[scales.s]\ntype = 'category'\n[gridlines]\nx = 's'\n[[plots]]\ntype = 'line'\ndatasets = ['d']", "quantitative"},
		{"size", "width = -1\n" + data + "[[plots]]\ntype = 'line'\ndatasets = ['d']", "size must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuild(t *testing.T) {
	m, err := Parse([]byte(fruitManifest))
	require.NoError(t, err)

	c, err := m.Build(context.Background(), BuildOptions{})
	require.NoError(t, err)
	require.Len(t, c.Plots, 1)
	assert.Equal(t, 4, c.Rows())
	assert.Nil(t, c.Timeline)

	ys := c.Scales["y"].(scale.Quantitative)
	min, max := ys.Extent()
	assert.Equal(t, 0.0, min, "included value")
	assert.Equal(t, 7.0, max)
	assert.Equal(t, []any{"jan", "feb"}, c.Scales["x"].(*scale.Category).Domain())

	assert.NotNil(t, c.Root.Slot(chart.SlotTitle))
	assert.NotNil(t, c.Root.Slot(chart.SlotLegend))
	_, labelled := c.Root.Slot(chart.SlotXAxis).(*component.Table)
	assert.True(t, labelled, "a labelled axis is wrapped in a table")

	doc := surface.NewDocument(c.Width, c.Height, surface.WithMeasurer(surface.MonospaceMeasurer{CharWidth: 6, LineHeight: 10}))
	require.NoError(t, component.RenderTo(c.Root, doc.Root(), c.Width, c.Height))
	assert.Len(t, surface.Select(doc.Root(), "clustered-bar-plot"), 1)
	assert.Len(t, surface.Select(doc.Root(), "bar"), 4)
	assert.Len(t, surface.SelectTag(doc.Root(), "circle"), 2, "legend swatches")
}

func TestBuildAnimated(t *testing.T) {
	m, err := Parse([]byte(`
animate = true

[data.d]
records = [{ x = 1, y = 2 }]

[[plots]]
type = "scatter"
datasets = ["d"]
attrs.x = { field = "x" }
attrs.y = { field = "y" }
`))
	require.NoError(t, err)
	c, err := m.Build(context.Background(), BuildOptions{})
	require.NoError(t, err)
	assert.NotNil(t, c.Timeline)
}

func TestBuildResolvesRelativePaths(t *testing.T) {
	m, err := Parse([]byte(`
[data.d]
path = "sales.csv"

[data.abs]
path = "/data/other.csv"

[[plots]]
type = "line"
datasets = ["d", "abs"]
`))
	require.NoError(t, err)
	m.Dir = "/charts"

	var seen []string
	resolve := func(_ context.Context, path string) (*dataset.Dataset, error) {
		seen = append(seen, path)
		return dataset.New(nil, nil), nil
	}
	_, err = m.Build(context.Background(), BuildOptions{Resolve: resolve})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/other.csv", filepath.Join("/charts", "sales.csv")}, seen)
	assert.Equal(t, seen, m.DataPaths())
}

func TestLoadWithCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte("month,sold\njan,3\nfeb,5\nmar,2\n"), 0o644))
	path := filepath.Join(dir, "chart.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[data.sales]
path = "sales.csv"

[scales.x]
type = "category"

[scales.y]
type = "linear"

[[plots]]
type = "bar"
datasets = ["sales"]
attrs.x = { field = "month", scale = "x" }
attrs.y = { field = "sold", scale = "y" }
`), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	c, err := m.Build(context.Background(), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Datasets["sales"].Len())

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestBuildCanceled(t *testing.T) {
	m, err := Parse([]byte("[data.d]\npath = 'x.csv'\n[[plots]]\ntype = 'line'\ndatasets = ['d']"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Build(ctx, BuildOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeLoadFailed))
}

const exprManifest = `
[data.d]
records = [{ v = 1, name = "a" }, { v = 3, name = "b" }]

[scales.y]
type = "linear"

[[plots]]
type = "scatter"
datasets = ["d"]
attrs.x = { expr = "i" }
attrs.y = { expr = %q, scale = "y" }
`

func exprChart(t *testing.T, expr string, allow bool) (*Chart, error) {
	t.Helper()
	doc := strings.Replace(exprManifest, "%q", `"`+strings.ReplaceAll(expr, `"`, `\"`)+`"`, 1)
	m, err := Parse([]byte(doc))
	require.NoError(t, err)
	return m.Build(context.Background(), BuildOptions{AllowExpr: allow})
}

func TestExpressions(t *testing.T) {
	c, err := exprChart(t, `num(d["v"]) * 2`, true)
	require.NoError(t, err)
	min, max := c.Scales["y"].(scale.Quantitative).Extent()
	assert.Equal(t, 2.0, min)
	assert.Equal(t, 6.0, max)

	_, err = exprChart(t, `num(d["v"])`, false)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest))
	assert.Contains(t, err.Error(), "disabled")

	_, err = exprChart(t, `os.Getenv("HOME")`, true)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest), "os is not importable")

	_, err = exprChart(t, `num(`, true)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest))
}

func TestExprAccessor(t *testing.T) {
	c, err := newExprCompiler()
	require.NoError(t, err)

	tests := []struct {
		expr  string
		datum any
		want  any
	}{
		{`num(d["v"]) + 1`, map[string]any{"v": "41"}, 42.0},
		{`strings.ToUpper(str(d["name"]))`, map[string]any{"name": "pear"}, "PEAR"},
		{`math.Max(num(d["value"]), 10)`, 3.0, 10.0},
		{`i * 2`, nil, 6},
		{`d["missing"].(string)`, map[string]any{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			acc, err := c.Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, acc(tt.datum, 3, nil))
		})
	}
}

func TestExampleManifests(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*", "chart.toml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(filepath.Dir(path)), func(t *testing.T) {
			m, err := Load(path)
			require.NoError(t, err)
			c, err := m.Build(context.Background(), BuildOptions{AllowExpr: true})
			require.NoError(t, err)
			assert.NotEmpty(t, c.Plots)
		})
	}
}

func TestBuildGrowthExample(t *testing.T) {
	m, err := Load(filepath.Join("..", "..", "examples", "growth", "chart.toml"))
	require.NoError(t, err)
	c, err := m.Build(context.Background(), BuildOptions{AllowExpr: true})
	require.NoError(t, err)
	require.Len(t, c.Plots, 2)

	min, max := c.Scales["y"].(scale.Quantitative).Extent()
	assert.InDelta(t, 1000, min, 1e-9)
	assert.InDelta(t, 1000*math.Pow(1.08, 20), max, 1e-6)
}

func TestCompileBindsEachExpression(t *testing.T) {
	c, err := newExprCompiler()
	require.NoError(t, err)

	double, err := c.Compile(`i * 2`)
	require.NoError(t, err)
	triple, err := c.Compile(`i * 3`)
	require.NoError(t, err)

	assert.Equal(t, 8, double(nil, 4, nil))
	assert.Equal(t, 12, triple(nil, 4, nil))
}

func TestBuildHeatmapAndWaterfall(t *testing.T) {
	m, err := Parse([]byte(`
[data.cells]
records = [
  { x = "a", y = "p", v = 1 },
  { x = "b", y = "p", v = 4 },
  { x = "a", y = "q", v = 9 },
]

[data.flow]
records = [
  { step = "start", delta = 10 },
  { step = "costs", delta = -4 },
  { step = "end", delta = 6, total = true },
]

[scales.cx]
type = "category"
[scales.cy]
type = "category"
[scales.heat]
type = "interpolated-color"
ramp = "reds"
[scales.wx]
type = "category"
[scales.wy]
type = "linear"

[[plots]]
type = "rectangle"
datasets = ["cells"]
attrs.x = { field = "x", scale = "cx" }
attrs.y = { field = "y", scale = "cy" }
attrs.fill = { field = "v", scale = "heat" }

[[plots]]
type = "waterfall"
datasets = ["flow"]
connectors = true
attrs.x = { field = "step", scale = "wx" }
attrs.y = { field = "delta", scale = "wy" }
attrs.total = { field = "total" }

[legend]
scale = "heat"
orientation = "right"
`))
	require.NoError(t, err)
	c, err := m.Build(context.Background(), BuildOptions{})
	require.NoError(t, err)
	require.Len(t, c.Plots, 2)

	min, max := c.Scales["wy"].(scale.Quantitative).Extent()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 10.0, max)

	doc := surface.NewDocument(400, 300, surface.WithMeasurer(surface.MonospaceMeasurer{CharWidth: 6, LineHeight: 10}))
	require.NoError(t, component.RenderTo(c.Root, doc.Root(), 400, 300))
	assert.Len(t, surface.Select(doc.Root(), "cell"), 3)
	assert.Len(t, surface.Select(doc.Root(), "bar"), 3)
	assert.Len(t, surface.Select(doc.Root(), "connector"), 2)
	assert.Len(t, surface.Select(doc.Root(), "legend-ramp-swatch"), 11)
}
