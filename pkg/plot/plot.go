// Package plot binds datasets to visual marks.
//
// A Plot is a component holding an ordered list of keyed datasets and a
// set of projections: attribute name to accessor, optionally through a
// scale. Each scaled projection registers one perspective per dataset on
// its scale under the key "<plotID>/<datasetKey>/<attr>", so auto domains
// follow the plot's data. Rendering builds a draw plan per dataset and
// hands it to one drawer per dataset and layer.
//
// The variants (Scatter, Line, Area, Bar, StackedBar, StackedArea,
// ClusteredBar, Waterfall, Rectangle, Pie) embed Plot and supply the
// marks.
package plot

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/drawer"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/event"
	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Animation phases.
const (
	PhaseMain  = "main"
	PhaseReset = "reset"
)

// autoKeyPrefix marks generated dataset keys.
const autoKeyPrefix = "_"

// maxRepaints bounds how often a render repeats because the render itself
// changed a scale the plot depends on.
const maxRepaints = 3

const defaultColor = "#5279c7"

// record is a datum paired with its index in the dataset. Drawers join
// records so filtered data keeps its original index.
type record struct {
	value any
	index int
}

type projection struct {
	acc   dataset.Accessor
	scale scale.Scale
}

type scaleSub struct {
	handle event.Handle
	refs   int
}

// entry is one keyed dataset and the drawers drawing it.
type entry struct {
	key     string
	ds      *dataset.Dataset
	handle  event.Handle
	group   surface.Node
	drawers map[string]*drawer.Drawer
	order   []string
}

// layer is one kind of mark drawn for a dataset.
type layer struct {
	name string
	tag  string
	data []any
	plan drawer.Plan
	key  drawer.KeyFunc
}

// variant is the behaviour plot kinds add to Plot. Plot implements
// every hook as a no-op; variants override what they need.
type variant interface {
	component.Component

	// positional lists the attributes whose NaN drops a datum.
	positional() []string
	// prepare runs before each paint.
	prepare() error
	// layers builds the marks for one dataset from its valid records.
	layers(e *entry, recs []record) ([]layer, error)
	// point returns the pixel position of a record.
	point(e *entry, r record) (float64, float64, error)
	// extentAccessor returns the accessor a scale sees for attr.
	extentAccessor(attr string, e *entry, acc dataset.Accessor) dataset.Accessor
	// projected runs after a projection changes.
	projected(attr string)
	// datasetsChanged runs after datasets are added, removed, reordered
	// or updated.
	datasetsChanged()
}

// Plot is the machinery shared by all plot kinds.
type Plot struct {
	component.Base
	self variant

	entries []*entry
	nextKey int

	projections map[string]*projection
	scaleSubs   map[scale.Scale]*scaleSub

	animated   bool
	animators  map[string]animator.Animator
	timeline   *animator.Timeline
	renderArea surface.Node

	rendering bool
	pending   bool
}

func (p *Plot) initPlot(self variant, kind string) {
	p.Init(self, kind)
	p.AddClass("plot")
	p.self = self
	p.projections = make(map[string]*projection)
	p.scaleSubs = make(map[scale.Scale]*scaleSub)
	p.animators = map[string]animator.Animator{
		PhaseMain:  animator.NewIterativeDelay(),
		PhaseReset: animator.Null{},
	}
	p.OnAnchor(func() {
		p.renderArea = p.Content().AppendChild("g")
		p.renderArea.AddClass("render-area")
		for _, e := range p.entries {
			e.group, e.drawers, e.order = nil, nil, nil
		}
	})
	p.OnRemove(p.release)
}

func (p *Plot) positional() []string { return nil }
func (p *Plot) prepare() error       { return nil }
func (p *Plot) projected(string)     {}
func (p *Plot) datasetsChanged()     {}

func (p *Plot) layers(*entry, []record) ([]layer, error) { return nil, nil }

func (p *Plot) point(e *entry, r record) (float64, float64, error) {
	x, err := p.pixel("x", e, r)
	if err != nil {
		return 0, 0, err
	}
	y, err := p.pixel("y", e, r)
	return x, y, err
}

func (p *Plot) extentAccessor(_ string, _ *entry, acc dataset.Accessor) dataset.Accessor {
	return acc
}

// AddDataset appends ds under key and returns the key used. An empty key
// is generated as "_0", "_1", ... skipping keys in use. A key already in
// use is a warning and a no-op.
func (p *Plot) AddDataset(key string, ds *dataset.Dataset) string {
	switch {
	case key == "":
		for {
			key = autoKeyPrefix + strconv.Itoa(p.nextKey)
			p.nextKey++
			if p.entry(key) == nil {
				break
			}
		}
	case p.entry(key) != nil:
		p.Logger().Warn("dataset key already in use, ignoring", "plot", p.ID(), "key", key)
		return key
	case strings.HasPrefix(key, autoKeyPrefix):
		p.Logger().Warn("keys starting with "+autoKeyPrefix+" may collide with generated keys", "plot", p.ID(), "key", key)
	}

	e := &entry{key: key, ds: ds}
	e.handle = ds.OnUpdate(func(*dataset.Dataset) {
		p.self.datasetsChanged()
		p.rerender()
	})
	p.entries = append(p.entries, e)
	for _, attr := range p.scaledAttrs() {
		p.addPerspective(attr, e)
	}
	p.self.datasetsChanged()
	p.rerender()
	return key
}

// RemoveDataset removes the dataset under key and its marks. The order of
// the remaining datasets is unchanged.
func (p *Plot) RemoveDataset(key string) error {
	e := p.entry(key)
	if e == nil {
		return errors.New(errors.ErrCodeNotFound, "plot %s has no dataset %q", p.ID(), key)
	}
	p.dropEntry(e)
	p.entries = slices.DeleteFunc(p.entries, func(x *entry) bool { return x == e })
	p.self.datasetsChanged()
	p.rerender()
	return nil
}

func (p *Plot) dropEntry(e *entry) {
	for _, attr := range p.scaledAttrs() {
		p.projections[attr].scale.RemovePerspective(p.perspectiveKey(e.key, attr))
	}
	_ = e.ds.OffUpdate(e.handle)
	if e.group != nil {
		e.group.Remove()
	}
}

func (p *Plot) entry(key string) *entry {
	for _, e := range p.entries {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Dataset returns the dataset under key.
func (p *Plot) Dataset(key string) (*dataset.Dataset, bool) {
	if e := p.entry(key); e != nil {
		return e.ds, true
	}
	return nil, false
}

// Datasets returns the datasets in order.
func (p *Plot) Datasets() []*dataset.Dataset {
	out := make([]*dataset.Dataset, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.ds
	}
	return out
}

// DatasetKeys returns the dataset keys in order.
func (p *Plot) DatasetKeys() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.key
	}
	return out
}

// SetDatasetOrder reorders the datasets. keys must be a permutation of
// DatasetKeys.
func (p *Plot) SetDatasetOrder(keys ...string) error {
	if len(keys) != len(p.entries) {
		return errors.New(errors.ErrCodeInvalidConfig, "dataset order must list all %d keys", len(p.entries))
	}
	next := make([]*entry, 0, len(keys))
	for _, k := range keys {
		e := p.entry(k)
		if e == nil || slices.Contains(next, e) {
			return errors.New(errors.ErrCodeInvalidConfig, "dataset order %v is not a permutation of %v", keys, p.DatasetKeys())
		}
		next = append(next, e)
	}
	p.entries = next
	p.self.datasetsChanged()
	p.rerender()
	return nil
}

// Project binds attr to an accessor, optionally through sc. A previous
// projection of attr is replaced and its perspectives removed.
func (p *Plot) Project(attr string, acc dataset.Accessor, sc scale.Scale) error {
	if acc == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "projection %q needs an accessor", attr)
	}
	attr = strings.ToLower(attr)
	if old, ok := p.projections[attr]; ok && old.scale != nil {
		for _, e := range p.entries {
			old.scale.RemovePerspective(p.perspectiveKey(e.key, attr))
		}
		p.releaseScale(old.scale)
	}
	p.projections[attr] = &projection{acc: acc, scale: sc}
	if sc != nil {
		p.acquireScale(sc)
		for _, e := range p.entries {
			p.addPerspective(attr, e)
		}
	}
	p.self.projected(attr)
	p.rerender()
	return nil
}

// Projection returns the accessor and scale bound to attr.
func (p *Plot) Projection(attr string) (dataset.Accessor, scale.Scale, bool) {
	pr, ok := p.projections[strings.ToLower(attr)]
	if !ok {
		return nil, nil, false
	}
	return pr.acc, pr.scale, true
}

// ScaleOf returns the scale bound to attr, or nil.
func (p *Plot) ScaleOf(attr string) scale.Scale {
	if pr, ok := p.projections[attr]; ok {
		return pr.scale
	}
	return nil
}

func (p *Plot) perspectiveKey(datasetKey, attr string) string {
	return p.ID() + "/" + datasetKey + "/" + attr
}

func (p *Plot) addPerspective(attr string, e *entry) {
	pr := p.projections[attr]
	pr.scale.AddPerspective(p.perspectiveKey(e.key, attr), e.ds, p.self.extentAccessor(attr, e, pr.acc))
}

// scaledAttrs returns the projected attributes with a scale, sorted.
func (p *Plot) scaledAttrs() []string {
	var out []string
	for attr, pr := range p.projections {
		if pr.scale != nil {
			out = append(out, attr)
		}
	}
	slices.Sort(out)
	return out
}

func (p *Plot) acquireScale(sc scale.Scale) {
	sub, ok := p.scaleSubs[sc]
	if !ok {
		sub = &scaleSub{handle: sc.OnUpdate(func(scale.Scale) { p.rerender() })}
		p.scaleSubs[sc] = sub
	}
	sub.refs++
}

func (p *Plot) releaseScale(sc scale.Scale) {
	sub, ok := p.scaleSubs[sc]
	if !ok {
		return
	}
	sub.refs--
	if sub.refs <= 0 {
		_ = sc.OffUpdate(sub.handle)
		delete(p.scaleSubs, sc)
	}
}

// release drops every perspective and subscription the plot holds.
func (p *Plot) release() {
	for _, e := range p.entries {
		p.dropEntry(e)
	}
	for sc, sub := range p.scaleSubs {
		_ = sc.OffUpdate(sub.handle)
	}
	p.scaleSubs = make(map[scale.Scale]*scaleSub)
}

// Animated reports whether rendering animates.
func (p *Plot) Animated() bool { return p.animated }

// SetAnimated enables or disables animation.
func (p *Plot) SetAnimated(on bool) { p.animated = on }

// Animator returns the animator for a phase.
func (p *Plot) Animator(phase string) animator.Animator {
	if a, ok := p.animators[phase]; ok {
		return a
	}
	return animator.Null{}
}

// SetAnimator sets the animator for a phase.
func (p *Plot) SetAnimator(phase string, a animator.Animator) error {
	if a == nil {
		return errors.New(errors.ErrCodeInvalidConfig, "animator for phase %q cannot be nil", phase)
	}
	p.animators[phase] = a
	return nil
}

// Timeline returns the timeline animated renders schedule on, creating
// it on first use.
func (p *Plot) Timeline() *animator.Timeline {
	if p.timeline == nil {
		p.timeline = animator.NewTimeline()
	}
	return p.timeline
}

// SetTimeline shares a timeline, typically one per chart.
func (p *Plot) SetTimeline(tl *animator.Timeline) { p.timeline = tl }

// ComputeLayout places the plot and points its x and y scales at the new
// size: x spans [0, width] and y spans [height, 0], or [0, height] for
// banded y scales. The range change does not render; the render pass
// that follows layout does.
func (p *Plot) ComputeLayout(x, y, width, height float64) {
	component.Place(p.self, x, y, width, height)
	w, h := p.Width(), p.Height()

	p.rendering = true
	if r, ok := p.ScaleOf("x").(ranged); ok {
		r.SetRange(0, w)
	}
	if sc := p.ScaleOf("y"); sc != nil {
		if r, ok := sc.(ranged); ok {
			if _, band := sc.BandWidth(); band {
				r.SetRange(0, h)
			} else {
				r.SetRange(h, 0)
			}
		}
	}
	p.rendering, p.pending = false, false
}

type ranged interface {
	SetRange(a, b float64)
}

// Render draws every dataset. It is a no-op until the plot is laid out.
// A render that changes a scale the plot reads is repeated, a bounded
// number of times.
func (p *Plot) Render() error {
	if !p.Renderable() {
		return nil
	}
	if p.rendering {
		p.pending = true
		return nil
	}
	p.rendering = true
	defer func() { p.rendering = false }()

	for pass := 0; ; pass++ {
		p.pending = false
		if err := p.paint(); err != nil {
			return err
		}
		if !p.pending || pass+1 >= maxRepaints {
			break
		}
	}
	p.MarkRendered()
	return nil
}

func (p *Plot) rerender() {
	if err := p.Render(); err != nil {
		p.Logger().Warn("plot render failed", "plot", p.ID(), "err", err)
	}
}

func (p *Plot) paint() error {
	if err := p.self.prepare(); err != nil {
		return err
	}
	for _, e := range p.entries {
		recs, err := p.records(e)
		if err != nil {
			return err
		}
		layers, err := p.self.layers(e, recs)
		if err != nil {
			return err
		}
		if e.group == nil {
			e.group = p.renderArea.AppendChild("g")
			e.group.AddClass("dataset")
			e.group.SetAttr("data-key", e.key)
			e.drawers = make(map[string]*drawer.Drawer)
		}
		for _, l := range layers {
			d, ok := e.drawers[l.name]
			if !ok {
				d = drawer.New(e.group, l.tag, l.name)
				e.drawers[l.name] = d
				e.order = append(e.order, l.name)
			}
			d.SetKey(l.key)
			if p.animated {
				d.SetTimeline(p.Timeline())
			} else {
				d.SetTimeline(nil)
			}
			if _, err := d.Draw(l.data, l.plan); err != nil {
				return errors.Wrap(errors.ErrCodeRenderFailed, err, "draw dataset %q", e.key)
			}
		}
	}
	return nil
}

// records returns the dataset's data, without records whose positional
// attributes are NaN.
func (p *Plot) records(e *entry) ([]record, error) {
	attrs := p.self.positional()
	data := e.ds.Data()
	out := make([]record, 0, len(data))
next:
	for i, d := range data {
		r := record{value: d, index: i}
		for _, attr := range attrs {
			if _, ok := p.projections[attr]; !ok {
				continue
			}
			v, err := p.pixel(attr, e, r)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeUnsupportedValue, err, "dataset %q datum %d attribute %q", e.key, i, attr)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// recordKey joins records by dataset index.
func recordKey(d any, _ int) string { return strconv.Itoa(d.(record).index) }

// raw returns the accessor value of attr for r, or nil when attr is not
// projected.
func (p *Plot) raw(attr string, e *entry, r record) any {
	pr, ok := p.projections[attr]
	if !ok {
		return nil
	}
	return pr.acc(r.value, r.index, e.ds)
}

// value returns the projected value of attr for r: the accessor value
// mapped through the scale, if there is one.
func (p *Plot) value(attr string, e *entry, r record) (any, error) {
	pr, ok := p.projections[attr]
	if !ok {
		return nil, nil
	}
	v := pr.acc(r.value, r.index, e.ds)
	if pr.scale == nil {
		return v, nil
	}
	return pr.scale.Map(v)
}

// pixel returns the projected value of attr as a number. Unprojected
// attributes are NaN.
func (p *Plot) pixel(attr string, e *entry, r record) (float64, error) {
	if _, ok := p.projections[attr]; !ok {
		return math.NaN(), nil
	}
	v, err := p.value(attr, e, r)
	if err != nil {
		return 0, err
	}
	return scale.ToFloat(v)
}

// quantitative returns attr's scale if it is quantitative.
func (p *Plot) quantitative(attr string) scale.Quantitative {
	q, _ := p.ScaleOf(attr).(scale.Quantitative)
	return q
}

// position maps a numeric domain value through attr's quantitative scale,
// or returns it unchanged when there is none.
func (p *Plot) position(attr string, x float64) float64 {
	if q := p.quantitative(attr); q != nil {
		return q.Position(x)
	}
	return x
}

// attrs returns a projector for every projection except the excluded
// ones.
func (p *Plot) attrs(e *entry, exclude ...string) animator.AttrMap {
	m := animator.AttrMap{}
	for attr := range p.projections {
		if slices.Contains(exclude, attr) {
			continue
		}
		m[attr] = func(d any, _ int) (any, error) { return p.value(attr, e, d.(record)) }
	}
	return m
}

// pixelProjector projects attr as a number.
func (p *Plot) pixelProjector(attr string, e *entry) animator.Projector {
	return func(d any, _ int) (any, error) { return p.pixel(attr, e, d.(record)) }
}

// firstValue evaluates attr for the first record, for attributes that
// apply to a whole path.
func (p *Plot) firstValue(attr string, e *entry, recs []record) (any, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	return p.value(attr, e, recs[0])
}

// plan builds the draw plan: the main step, preceded by an enter-only
// reset step when animated.
func (p *Plot) plan(main, reset animator.AttrMap) drawer.Plan {
	if !p.animated {
		return drawer.Plan{{Name: PhaseMain, Attrs: main, Animator: animator.Null{}}}
	}
	var plan drawer.Plan
	if reset != nil {
		plan = append(plan, drawer.Step{Name: PhaseReset, Attrs: reset, Animator: p.Animator(PhaseReset), EnterOnly: true})
	}
	return append(plan, drawer.Step{Name: PhaseMain, Attrs: main, Animator: p.Animator(PhaseMain)})
}

// override copies m and replaces the given attributes with constants.
func override(m animator.AttrMap, values map[string]any) animator.AttrMap {
	out := make(animator.AttrMap, len(m)+len(values))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range values {
		out[k] = func(any, int) (any, error) { return v, nil }
	}
	return out
}

func constant(v any) animator.Projector {
	return func(any, int) (any, error) { return v, nil }
}

// joinData wraps records as drawer data.
func joinData(recs []record) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}
