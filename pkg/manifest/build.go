package manifest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/axis"
	"github.com/matzehuels/stackplot/pkg/chart"
	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/legend"
	"github.com/matzehuels/stackplot/pkg/plot"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/source"
)

// Resolver loads the dataset stored at path.
type Resolver func(ctx context.Context, path string) (*dataset.Dataset, error)

// BuildOptions configures Build.
type BuildOptions struct {
	// Resolve loads file-backed datasets. Defaults to source.Load.
	Resolve Resolver

	// AllowExpr enables expr accessors. Expressions run in an interpreter
	// limited to math, strconv, strings and time.
	AllowExpr bool

	Logger *log.Logger
}

// Chart is a built manifest.
type Chart struct {
	Root     *chart.Standard
	Width    float64
	Height   float64
	Scales   map[string]scale.Scale
	Datasets map[string]*dataset.Dataset
	Plots    []component.Component

	// Timeline drives plot transitions. It is nil unless the manifest
	// sets animate.
	Timeline *animator.Timeline
}

// Rows returns the total number of records across all datasets.
func (c *Chart) Rows() int {
	n := 0
	for _, ds := range c.Datasets {
		n += ds.Len()
	}
	return n
}

type plotter interface {
	component.Component
	Project(attr string, acc dataset.Accessor, sc scale.Scale) error
	AddDataset(key string, ds *dataset.Dataset) string
	SetAnimated(on bool)
	SetTimeline(tl *animator.Timeline)
	SetLogger(l *log.Logger)
}

type barConfig interface {
	SetBarWidth(w float64) error
	SetBarAlignment(a string) error
	SetBaseline(v float64) error
}

type tickCounter interface {
	SetTickCount(n int) error
}

type builder struct {
	m     *Manifest
	opts  BuildOptions
	exprs *exprCompiler
	out   *Chart
}

// Build loads the manifest's datasets and assembles its chart.
func (m *Manifest) Build(ctx context.Context, opts BuildOptions) (*Chart, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if opts.Resolve == nil {
		opts.Resolve = source.Load
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	b := &builder{m: m, opts: opts, out: &Chart{
		Width:    m.Width,
		Height:   m.Height,
		Scales:   make(map[string]scale.Scale, len(m.Scales)),
		Datasets: make(map[string]*dataset.Dataset, len(m.Data)),
	}}

	if err := b.loadData(ctx); err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(m.Scales) {
		sc, err := buildScale(m.Scales[name])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "scales.%s", name)
		}
		b.out.Scales[name] = sc
	}
	if m.Animate {
		b.out.Timeline = animator.NewTimeline()
	}

	var center []component.Component
	if m.Gridlines != nil {
		center = append(center, axis.NewGridlines(b.quantitative(m.Gridlines.X), b.quantitative(m.Gridlines.Y)))
	}
	for i, spec := range m.Plots {
		p, err := b.plot(spec)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "plots[%d]", i)
		}
		b.out.Plots = append(b.out.Plots, p)
		center = append(center, p)
	}

	root, err := chart.NewStandard(center...)
	if err != nil {
		return nil, err
	}
	b.out.Root = root
	if err := b.decorate(root); err != nil {
		return nil, err
	}

	opts.Logger.Debug("built chart", "plots", len(b.out.Plots), "scales", len(b.out.Scales), "rows", b.out.Rows())
	return b.out, nil
}

func (b *builder) loadData(ctx context.Context) error {
	for _, key := range sortedKeys(b.m.Data) {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeLoadFailed, err, "load data")
		}
		d := b.m.Data[key]
		if d.Path == "" {
			b.out.Datasets[key] = dataset.FromRecords(d.Records, nil)
			continue
		}
		ds, err := b.opts.Resolve(ctx, b.m.resolve(d.Path))
		if err != nil {
			return err
		}
		b.out.Datasets[key] = ds
	}
	return nil
}

func buildScale(s Scale) (scale.Scale, error) {
	switch s.Type {
	case ScaleLinear:
		sc := scale.NewLinear()
		return sc, configureQuantitative(sc, s)
	case ScaleLog:
		base := s.Base
		if base == 0 {
			base = 10
		}
		sc, err := scale.NewLog(base)
		if err != nil {
			return nil, err
		}
		return sc, configureQuantitative(sc, s)
	case ScaleTime:
		sc := scale.NewTime()
		return sc, configureQuantitative(sc, s)
	case ScaleInterpolatedColor:
		ramp := s.Ramp
		if ramp == "" {
			ramp = "reds"
		}
		sc, err := scale.NewInterpolatedColor(ramp)
		if err != nil {
			return nil, err
		}
		return sc, configureQuantitative(sc, s)
	case ScaleCategory:
		sc := scale.NewCategory()
		if s.InnerPadding != nil {
			if err := sc.SetInnerPadding(*s.InnerPadding); err != nil {
				return nil, err
			}
		}
		if s.OuterPadding != nil {
			if err := sc.SetOuterPadding(*s.OuterPadding); err != nil {
				return nil, err
			}
		}
		return sc, configureOrdinal(sc, s)
	case ScaleColor:
		sc := scale.NewColor()
		if s.Palette != "" {
			var err error
			if sc, err = scale.NewColorPalette(s.Palette); err != nil {
				return nil, err
			}
		}
		if len(s.Colors) > 0 {
			if err := sc.SetColors(s.Colors...); err != nil {
				return nil, err
			}
		}
		return sc, configureOrdinal(sc, s)
	}
	return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown scale type %q", s.Type)
}

func configureQuantitative(q scale.Quantitative, s Scale) error {
	d := q.Domainer()
	if s.Padding != nil {
		if err := d.SetPadding(*s.Padding); err != nil {
			return err
		}
	}
	if s.Nice > 0 {
		d.SetNice(s.Nice)
	}
	for i, v := range s.Include {
		d.AddIncludedValue(fmt.Sprintf("manifest/%d", i), v)
	}
	if len(s.Domain) == 2 {
		min, err := q.Float(s.Domain[0])
		if err != nil {
			return err
		}
		max, err := q.Float(s.Domain[1])
		if err != nil {
			return err
		}
		q.SetExtent(min, max)
		return nil
	}
	q.RefreshDomain()
	return nil
}

func configureOrdinal(o scale.Ordinal, s Scale) error {
	if len(s.Domain) == 0 {
		return nil
	}
	return o.SetDomain(s.Domain...)
}

func (b *builder) quantitative(name string) scale.Quantitative {
	if q, ok := b.out.Scales[name].(scale.Quantitative); ok {
		return q
	}
	return nil
}

func newPlot(spec Plot) (plotter, error) {
	orientation := spec.Orientation
	if orientation == "" {
		orientation = plot.Vertical
	}
	switch spec.Type {
	case PlotLine:
		return plot.NewLine(), nil
	case PlotArea:
		return plot.NewArea(), nil
	case PlotStackedArea:
		return plot.NewStackedArea(), nil
	case PlotScatter:
		return plot.NewScatter(), nil
	case PlotPie:
		return plot.NewPie(), nil
	case PlotBar:
		return plot.NewBar(orientation)
	case PlotStackedBar:
		return plot.NewStackedBar(orientation)
	case PlotClusteredBar:
		return plot.NewClusteredBar(orientation)
	case PlotRectangle:
		return plot.NewRectangle(), nil
	case PlotWaterfall:
		w := plot.NewWaterfall()
		w.SetConnectorsEnabled(spec.Connectors)
		return w, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown plot type %q", spec.Type)
}

func (b *builder) plot(spec Plot) (plotter, error) {
	p, err := newPlot(spec)
	if err != nil {
		return nil, err
	}
	p.SetLogger(b.opts.Logger)

	if bar, ok := p.(barConfig); ok {
		if spec.BarWidth != 0 {
			if err := bar.SetBarWidth(spec.BarWidth); err != nil {
				return nil, err
			}
		}
		if spec.Alignment != "" {
			if err := bar.SetBarAlignment(spec.Alignment); err != nil {
				return nil, err
			}
		}
		if spec.Baseline != nil {
			if err := bar.SetBaseline(*spec.Baseline); err != nil {
				return nil, err
			}
		}
	}

	for _, attr := range sortedKeys(spec.Attrs) {
		a := spec.Attrs[attr]
		acc, err := b.accessor(a)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "attrs.%s", attr)
		}
		var sc scale.Scale
		if a.Scale != "" {
			sc = b.out.Scales[a.Scale]
		}
		if err := p.Project(attr, acc, sc); err != nil {
			return nil, err
		}
	}
	for _, key := range spec.Datasets {
		p.AddDataset(key, b.out.Datasets[key])
	}
	if b.out.Timeline != nil {
		p.SetAnimated(true)
		p.SetTimeline(b.out.Timeline)
	}
	return p, nil
}

func (b *builder) accessor(a Attr) (dataset.Accessor, error) {
	switch {
	case a.Field != "":
		return dataset.Field(a.Field), nil
	case a.Expr != "":
		if !b.opts.AllowExpr {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "expressions are disabled")
		}
		if b.exprs == nil {
			c, err := newExprCompiler()
			if err != nil {
				return nil, err
			}
			b.exprs = c
		}
		return b.exprs.Compile(a.Expr)
	default:
		return dataset.Constant(a.Value), nil
	}
}

func (b *builder) decorate(root *chart.Standard) error {
	if b.m.Title != "" {
		if err := root.SetTitle(component.NewTitleLabel(b.m.Title)); err != nil {
			return err
		}
	}
	if ax := b.m.Axes.X; ax != nil {
		c, err := b.axis(ax, axis.Bottom, component.Horizontal)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "axes.x")
		}
		if err := root.SetXAxis(c); err != nil {
			return err
		}
	}
	if ax := b.m.Axes.Y; ax != nil {
		c, err := b.axis(ax, axis.Left, component.Left)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "axes.y")
		}
		if err := root.SetYAxis(c); err != nil {
			return err
		}
	}
	if l := b.m.Legend; l != nil {
		lg, err := b.legend(l)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "legend")
		}
		if err := root.SetLegend(lg); err != nil {
			return err
		}
	}
	return nil
}

// legend builds an entry legend for color scales and a swatch strip for
// interpolated-color scales.
func (b *builder) legend(spec *Legend) (component.Component, error) {
	switch sc := b.out.Scales[spec.Scale].(type) {
	case *scale.Color:
		lg := legend.New(sc)
		if spec.MaxEntriesPerRow > 0 {
			if err := lg.SetMaxEntriesPerRow(spec.MaxEntriesPerRow); err != nil {
				return nil, err
			}
		}
		return lg, nil
	case *scale.InterpolatedColor:
		lg := legend.NewInterpolated(sc)
		if spec.Orientation != "" {
			if err := lg.SetOrientation(spec.Orientation); err != nil {
				return nil, err
			}
		}
		lg.SetExpands(spec.Expands)
		return lg, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidManifest, "scale %q is not a color scale", spec.Scale)
}

// axis builds the axis for spec, wrapped in a table with its caption
// when it has a label.
func (b *builder) axis(spec *Axis, orientation, labelOrientation string) (component.Component, error) {
	var (
		a   component.Component
		err error
	)
	switch sc := b.out.Scales[spec.Scale].(type) {
	case *scale.Category:
		var c *axis.Category
		c, err = axis.NewCategory(sc, orientation)
		if c != nil {
			if spec.EndTicks != nil {
				c.SetShowEndTicks(*spec.EndTicks)
			}
			a = c
		}
	case *scale.Time:
		var t *axis.Time
		t, err = axis.NewTime(sc, orientation)
		if t != nil {
			if spec.EndTicks != nil {
				t.SetShowEndTicks(*spec.EndTicks)
			}
			a = t
		}
	case scale.Quantitative:
		var n *axis.Numeric
		n, err = axis.NewNumeric(sc, orientation)
		if n != nil {
			if spec.EndTicks != nil {
				n.SetShowEndTicks(*spec.EndTicks)
			}
			a = n
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidManifest, "scale %q cannot carry an axis", spec.Scale)
	}
	if err != nil {
		return nil, err
	}
	if spec.TickCount > 0 {
		if tc, ok := a.(tickCounter); ok {
			if err := tc.SetTickCount(spec.TickCount); err != nil {
				return nil, err
			}
		}
	}
	if spec.Label == "" {
		return a, nil
	}

	lbl, err := component.NewAxisLabel(spec.Label, labelOrientation)
	if err != nil {
		return nil, err
	}
	if labelOrientation == component.Horizontal {
		return component.NewTable([]component.Component{a}, []component.Component{lbl})
	}
	return component.NewTable([]component.Component{lbl, a})
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}

func dirOf(path string) string {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return filepath.Dir(path)
	}
	return dir
}
