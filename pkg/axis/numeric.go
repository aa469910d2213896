package axis

import (
	"time"

	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/scale"
)

// Numeric draws a quantitative scale with round tick values.
type Numeric struct {
	Axis
	q         scale.Quantitative
	tickCount int
}

// NewNumeric creates an axis for a linear or log scale.
func NewNumeric(sc scale.Quantitative, orientation string) (*Numeric, error) {
	a := &Numeric{q: sc, tickCount: DefaultTickCount}
	if err := a.initAxis(a, "numeric-axis", sc, orientation); err != nil {
		return nil, err
	}
	return a, nil
}

// TickCount returns the maximum number of ticks.
func (a *Numeric) TickCount() int { return a.tickCount }

// SetTickCount sets the maximum number of ticks.
func (a *Numeric) SetTickCount(n int) error {
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "tick count must be at least 1, got %d", n)
	}
	a.tickCount = n
	a.Redraw()
	return nil
}

func (a *Numeric) ticks() []tick {
	values := a.q.Ticks(a.tickCount)
	out := make([]tick, len(values))
	for i, v := range values {
		out[i] = tick{
			value: v,
			pos:   a.q.Position(v),
			label: a.format(v, func() string { return a.q.FormatTick(v) }),
		}
	}
	return out
}

func (a *Numeric) setRange(length float64) {
	if a.Horizontal() {
		a.q.SetRange(0, length)
	} else {
		a.q.SetRange(length, 0)
	}
}

// Time draws a time scale with calendar-aligned ticks. Formatters receive
// time.Time values.
type Time struct {
	Axis
	ts        *scale.Time
	tickCount int
}

// NewTime creates an axis for a time scale.
func NewTime(sc *scale.Time, orientation string) (*Time, error) {
	a := &Time{ts: sc, tickCount: DefaultTickCount}
	if err := a.initAxis(a, "time-axis", sc, orientation); err != nil {
		return nil, err
	}
	return a, nil
}

// SetTickCount sets the maximum number of ticks.
func (a *Time) SetTickCount(n int) error {
	if n < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "tick count must be at least 1, got %d", n)
	}
	a.tickCount = n
	a.Redraw()
	return nil
}

func (a *Time) ticks() []tick {
	values := a.ts.Ticks(a.tickCount)
	out := make([]tick, len(values))
	for i, ms := range values {
		t := time.UnixMilli(int64(ms)).UTC()
		out[i] = tick{
			value: t,
			pos:   a.ts.Position(ms),
			label: a.format(t, func() string { return a.ts.FormatTick(ms) }),
		}
	}
	return out
}

func (a *Time) setRange(length float64) {
	if a.Horizontal() {
		a.ts.SetRange(0, length)
	} else {
		a.ts.SetRange(length, 0)
	}
}
