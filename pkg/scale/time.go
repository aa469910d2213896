package scale

import (
	"math"
	"time"
)

const msPerDay = float64(24 * time.Hour / time.Millisecond)

// timeTransform is a linear space of Unix milliseconds.
type timeTransform struct{}

func (timeTransform) Forward(x float64) float64 { return x }
func (timeTransform) Inverse(y float64) float64 { return y }

func (timeTransform) Coerce(v any) (float64, error) { return toMillis(v) }

func (timeTransform) DefaultExtent() (float64, float64) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	start := float64(day.UnixMilli())
	return start, start + msPerDay
}

func (timeTransform) DegenerateSpan() float64 { return msPerDay }

func (timeTransform) Nice(min, max float64, count int) (float64, float64) {
	if !finite(min) || !finite(max) || min >= max || count <= 0 {
		return min, max
	}
	iv := pickInterval(min, max, count)
	lo := iv.floor(fromMillis(min))
	hi := iv.floor(fromMillis(max))
	if float64(hi.UnixMilli()) < max {
		hi = iv.next(hi)
	}
	return float64(lo.UnixMilli()), float64(hi.UnixMilli())
}

// Time is a quantitative scale over instants.
type Time struct {
	quantitative
}

// NewTime creates a time scale spanning the current UTC day.
func NewTime() *Time {
	s := &Time{}
	s.initQuantitative(s, timeTransform{})
	return s
}

// Kind returns KindTime.
func (s *Time) Kind() Kind { return KindTime }

// Domain returns the domain.
func (s *Time) Domain() (time.Time, time.Time) {
	return fromMillis(s.dmin), fromMillis(s.dmax)
}

// SetDomain sets an explicit domain and leaves auto mode.
func (s *Time) SetDomain(start, end time.Time) {
	a, _ := toMillis(start)
	b, _ := toMillis(end)
	s.SetExtent(a, b)
}

// Scale maps t into the range.
func (s *Time) Scale(t time.Time) float64 {
	ms, _ := toMillis(t)
	return s.Position(ms)
}

// InvertTime maps a range value back to an instant.
func (s *Time) InvertTime(px float64) time.Time {
	return fromMillis(s.Invert(px))
}

// Ticks returns at most count calendar-aligned instants in the domain, as
// Unix milliseconds.
func (s *Time) Ticks(count int) []float64 {
	if count <= 0 {
		count = DefaultNiceCount
	}
	min, max := s.dmin, s.dmax
	if min > max {
		min, max = max, min
	}
	if !finite(min) || !finite(max) {
		return nil
	}
	if min == max {
		return []float64{min}
	}
	iv := pickInterval(min, max, count)
	var ticks []float64
	t := iv.floor(fromMillis(min))
	if float64(t.UnixMilli()) < min {
		t = iv.next(t)
	}
	for len(ticks) < 1000 {
		ms := float64(t.UnixMilli())
		if ms > max {
			break
		}
		ticks = append(ticks, ms)
		t = iv.next(t)
	}
	return ticks
}

// FormatTick formats a tick instant with a layout suited to the tick
// spacing of the current domain.
func (s *Time) FormatTick(x float64) string {
	iv := pickInterval(math.Min(s.dmin, s.dmax), math.Max(s.dmin, s.dmax), DefaultNiceCount)
	return fromMillis(x).Format(iv.layout)
}

var _ Quantitative = (*Time)(nil)

// interval is a tick spacing: a fixed duration or a number of calendar
// months.
type interval struct {
	d      time.Duration
	months int
	layout string
}

var intervals = []interval{
	{d: time.Second, layout: "15:04:05"},
	{d: 5 * time.Second, layout: "15:04:05"},
	{d: 15 * time.Second, layout: "15:04:05"},
	{d: 30 * time.Second, layout: "15:04:05"},
	{d: time.Minute, layout: "15:04"},
	{d: 5 * time.Minute, layout: "15:04"},
	{d: 15 * time.Minute, layout: "15:04"},
	{d: 30 * time.Minute, layout: "15:04"},
	{d: time.Hour, layout: "15:04"},
	{d: 3 * time.Hour, layout: "Jan 02 15:04"},
	{d: 6 * time.Hour, layout: "Jan 02 15:04"},
	{d: 12 * time.Hour, layout: "Jan 02 15:04"},
	{d: 24 * time.Hour, layout: "Jan 02"},
	{d: 2 * 24 * time.Hour, layout: "Jan 02"},
	{d: 7 * 24 * time.Hour, layout: "Jan 02"},
	{months: 1, layout: "Jan 2006"},
	{months: 3, layout: "Jan 2006"},
	{months: 6, layout: "Jan 2006"},
	{months: 12, layout: "2006"},
	{months: 24, layout: "2006"},
	{months: 60, layout: "2006"},
	{months: 120, layout: "2006"},
	{months: 600, layout: "2006"},
	{months: 1200, layout: "2006"},
}

func (iv interval) approxMillis() float64 {
	if iv.months == 0 {
		return float64(iv.d / time.Millisecond)
	}
	return float64(iv.months) * 30.436875 * msPerDay
}

func (iv interval) floor(t time.Time) time.Time {
	t = t.UTC()
	if iv.months == 0 {
		return t.Truncate(iv.d)
	}
	total := t.Year()*12 + int(t.Month()) - 1
	total -= ((total % iv.months) + iv.months) % iv.months
	return time.Date(total/12, time.Month(total%12+1), 1, 0, 0, 0, 0, time.UTC)
}

func (iv interval) next(t time.Time) time.Time {
	if iv.months == 0 {
		return t.Add(iv.d)
	}
	return t.AddDate(0, iv.months, 0)
}

// pickInterval returns the finest interval yielding at most count ticks
// over [min, max] milliseconds.
func pickInterval(min, max float64, count int) interval {
	span := max - min
	for _, iv := range intervals {
		if span/iv.approxMillis() <= float64(count) {
			return iv
		}
	}
	return intervals[len(intervals)-1]
}
