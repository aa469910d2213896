package plot

import (
	"math"
	"strconv"

	"github.com/matzehuels/stackplot/pkg/animator"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Waterfall bar kinds, written to each bar's data-waterfall attribute.
const (
	WaterfallTotal   = "total"
	WaterfallGrowth  = "growth"
	WaterfallDecline = "decline"
)

// Waterfall draws a running total as vertical bars. Each bar spans from
// the previous subtotal to the new one. Data whose "total" projection is
// true are totals: they span from the baseline to their value, and the
// running total restarts from it. A waterfall draws a single dataset.
type Waterfall struct {
	Bar
	subtotals  []float64
	connectors bool
}

// NewWaterfall creates a waterfall plot.
func NewWaterfall() *Waterfall {
	w := &Waterfall{}
	// vertical is always a valid orientation
	_ = w.initBar(w, "waterfall-plot", Vertical)
	_ = w.Project("total", dataset.Constant(false), nil)
	return w
}

// AddDataset adds the plot's dataset. A second dataset is a warning and
// a no-op that returns "".
func (w *Waterfall) AddDataset(key string, ds *dataset.Dataset) string {
	if len(w.entries) > 0 {
		w.Logger().Warn("waterfall plots draw a single dataset, ignoring", "plot", w.ID(), "key", key)
		return ""
	}
	return w.Bar.AddDataset(key, ds)
}

// ConnectorsEnabled reports whether lines join consecutive bars.
func (w *Waterfall) ConnectorsEnabled() bool { return w.connectors }

// SetConnectorsEnabled draws or removes the lines joining each bar to the
// next at the level where the next one starts.
func (w *Waterfall) SetConnectorsEnabled(on bool) {
	w.connectors = on
	w.rerender()
}

// Subtotals returns the running total after each datum.
func (w *Waterfall) Subtotals() []float64 {
	return append([]float64(nil), w.subtotals...)
}

func (w *Waterfall) prepare() error {
	w.recompute()
	return nil
}

func (w *Waterfall) datasetsChanged() { w.recompute() }

func (w *Waterfall) projected(attr string) {
	w.Bar.projected(attr)
	w.recompute()
}

// recompute rebuilds the subtotals. Missing values carry the running
// total forward.
func (w *Waterfall) recompute() {
	w.subtotals = nil
	if len(w.entries) > 0 {
		e := w.entries[0]
		data := e.ds.Data()
		w.subtotals = make([]float64, len(data))
		running := 0.0
		for i, d := range data {
			r := record{value: d, index: i}
			v, err := scale.ToFloat(w.raw("y", e, r))
			switch {
			case err != nil || math.IsNaN(v):
			case w.isTotal(e, r):
				running = v
			default:
				running += v
			}
			w.subtotals[i] = running
		}
	}
	if q := w.quantitative("y"); q != nil {
		q.RefreshDomain()
	}
}

func (w *Waterfall) isTotal(e *entry, r record) bool {
	t, _ := w.raw("total", e, r).(bool)
	return t
}

func (w *Waterfall) subtotal(i int) float64 {
	if i < 0 || i >= len(w.subtotals) {
		return 0
	}
	return w.subtotals[i]
}

// level returns where the bar at index i starts and ends in the value
// domain.
func (w *Waterfall) level(e *entry, r record) (float64, float64) {
	if w.isTotal(e, r) {
		return w.baseline, w.subtotal(r.index)
	}
	return w.subtotal(r.index - 1), w.subtotal(r.index)
}

func (w *Waterfall) extentAccessor(attr string, _ *entry, acc dataset.Accessor) dataset.Accessor {
	if attr != "y" {
		return acc
	}
	return func(d any, i int, ds *dataset.Dataset) any {
		v, err := scale.ToFloat(acc(d, i, ds))
		if err != nil || math.IsNaN(v) {
			return nil
		}
		return w.subtotal(i)
	}
}

func (w *Waterfall) geometry(e *entry, r record) (rect, error) {
	start, thick, err := w.band(e, r)
	if err != nil {
		return rect{}, err
	}
	from, to := w.level(e, r)
	return w.bar(start, thick, w.position("y", to), w.position("y", from)), nil
}

func (w *Waterfall) point(e *entry, r record) (float64, float64, error) {
	g, err := w.geometry(e, r)
	if err != nil {
		return 0, 0, err
	}
	return g.x + g.width/2, g.y + g.height/2, nil
}

func (w *Waterfall) kind(e *entry, r record) string {
	from, to := w.level(e, r)
	switch {
	case w.isTotal(e, r):
		return WaterfallTotal
	case to < from:
		return WaterfallDecline
	default:
		return WaterfallGrowth
	}
}

// connector joins two consecutive bars.
type connector struct {
	prev, cur record
}

func (w *Waterfall) layers(e *entry, recs []record) ([]layer, error) {
	bars := w.barLayer(e, recs, w.geometry, animator.AttrMap{
		"total": nil,
		"data-waterfall": func(d any, _ int) (any, error) {
			return w.kind(e, d.(record)), nil
		},
	})

	var links []any
	if w.connectors {
		for i := 1; i < len(recs); i++ {
			links = append(links, connector{prev: recs[i-1], cur: recs[i]})
		}
	}
	end := func(f func(prev, cur rect, c connector) float64) animator.Projector {
		return func(d any, _ int) (any, error) {
			c := d.(connector)
			prev, err := w.geometry(e, c.prev)
			if err != nil {
				return nil, err
			}
			cur, err := w.geometry(e, c.cur)
			if err != nil {
				return nil, err
			}
			return f(prev, cur, c), nil
		}
	}
	atPrev := func(_, _ rect, c connector) float64 { return w.position("y", w.subtotal(c.prev.index)) }
	main := animator.AttrMap{
		"x1":     end(func(prev, _ rect, _ connector) float64 { return prev.x }),
		"x2":     end(func(_, cur rect, _ connector) float64 { return cur.x + cur.width }),
		"y1":     end(atPrev),
		"y2":     end(atPrev),
		"stroke": constant("#888888"),
	}
	key := func(d any, _ int) string { return strconv.Itoa(d.(connector).cur.index) }
	return []layer{bars, {name: "connector", tag: "line", data: links, plan: w.plan(main, nil), key: key}}, nil
}
