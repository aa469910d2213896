package animator

import (
	"math"
	"slices"
	"time"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// EaseFunc maps linear progress in [0, 1] to eased progress.
type EaseFunc func(t float64) float64

var easings = map[string]EaseFunc{
	"linear": func(t float64) float64 { return t },
	"quad-in-out": func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	},
	"cubic-in-out": func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	},
	"exp-out": func(t float64) float64 {
		if t >= 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*t)
	},
	"exp-in-out": func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		case t < 0.5:
			return math.Pow(2, 20*t-10) / 2
		default:
			return (2 - math.Pow(2, -20*t+10)) / 2
		}
	},
	"bounce": bounce,
}

func bounce(t float64) float64 {
	const n, d = 7.5625, 2.75
	switch {
	case t < 1/d:
		return n * t * t
	case t < 2/d:
		t -= 1.5 / d
		return n*t*t + 0.75
	case t < 2.5/d:
		t -= 2.25 / d
		return n*t*t + 0.9375
	default:
		t -= 2.625 / d
		return n*t*t + 0.984375
	}
}

// EasingModes lists the accepted easing names.
func EasingModes() []string {
	out := make([]string, 0, len(easings))
	for k := range easings {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Defaults for Easing and IterativeDelay.
const (
	DefaultStepDuration = 300 * time.Millisecond
	DefaultStepDelay    = 15 * time.Millisecond
	DefaultEasingMode   = "exp-out"
)

// Easing transitions every live element over the same duration.
// Exiting elements fade out and are removed when the animation ends.
type Easing struct {
	startDelay time.Duration
	duration   time.Duration
	mode       string
	ease       EaseFunc

	// Only IterativeDelay sets these. maxTotal <= 0 means unbounded.
	stepDelay time.Duration
	maxTotal  time.Duration
}

// NewEasing returns an Easing with a 300ms exp-out transition.
func NewEasing() *Easing {
	return &Easing{duration: DefaultStepDuration, mode: DefaultEasingMode, ease: easings[DefaultEasingMode]}
}

// StartDelay returns the delay before the first element starts.
func (a *Easing) StartDelay() time.Duration { return a.startDelay }

// SetStartDelay sets the start delay; negative values are rejected.
func (a *Easing) SetStartDelay(d time.Duration) error {
	if d < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "start delay must be non-negative, got %v", d)
	}
	a.startDelay = d
	return nil
}

// StepDuration returns the duration of one element's transition, clamped
// to the max total duration when one is set.
func (a *Easing) StepDuration() time.Duration {
	if a.maxTotal > 0 && a.duration > a.maxTotal {
		return a.maxTotal
	}
	return a.duration
}

// SetStepDuration sets the transition duration.
func (a *Easing) SetStepDuration(d time.Duration) error {
	if d < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "step duration must be non-negative, got %v", d)
	}
	a.duration = d
	return nil
}

// EasingMode returns the easing name.
func (a *Easing) EasingMode() string { return a.mode }

// SetEasingMode selects an easing by name.
func (a *Easing) SetEasingMode(mode string) error {
	f, ok := easings[mode]
	if !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown easing mode %q", mode)
	}
	a.mode, a.ease = mode, f
	return nil
}

// adjustedStepDelay shrinks the per-element delay so n elements fit in the
// max total duration.
func (a *Easing) adjustedStepDelay(n int) time.Duration {
	if a.stepDelay == 0 || a.maxTotal <= 0 {
		return a.stepDelay
	}
	window := max(a.maxTotal-a.StepDuration(), 0)
	return min(a.stepDelay, window/time.Duration(max(n-1, 1)))
}

// TotalTime implements Animator.
func (a *Easing) TotalTime(n int) time.Duration {
	return a.startDelay + a.adjustedStepDelay(n)*time.Duration(max(n-1, 0)) + a.StepDuration()
}

// Animate implements Animator.
func (a *Easing) Animate(tl *Timeline, j Join, attrs AttrMap, start time.Duration) (time.Duration, error) {
	live := j.Live()
	if tl == nil {
		return Null{}.Animate(nil, j, attrs, 0)
	}
	values, err := project(live, attrs)
	if err != nil {
		return 0, err
	}
	step := a.adjustedStepDelay(len(live))
	pos := make(map[int]int, len(live))
	for k, e := range live {
		pos[e.Index] = k
	}
	dur := a.StepDuration()
	for _, v := range values {
		delay := start + a.startDelay + step*time.Duration(pos[v.index])
		tl.Schedule(v.node, v.attr, v.value, delay, dur, a.ease)
	}

	total := a.TotalTime(len(live))
	for _, e := range j.Exit {
		tl.Schedule(e.Node, "opacity", 0.0, start+a.startDelay, dur, a.ease)
		tl.RemoveAt(e.Node, start+max(total, dur))
	}
	return total, nil
}

// IterativeDelay is an Easing that staggers element start times by index.
type IterativeDelay struct {
	Easing
}

// NewIterativeDelay returns an animator with a 15ms step delay and no
// limit on the total duration.
func NewIterativeDelay() *IterativeDelay {
	a := &IterativeDelay{Easing: *NewEasing()}
	a.stepDelay = DefaultStepDelay
	return a
}

// StepDelay returns the configured delay between consecutive elements.
func (a *IterativeDelay) StepDelay() time.Duration { return a.stepDelay }

// SetStepDelay sets the delay between consecutive elements.
func (a *IterativeDelay) SetStepDelay(d time.Duration) error {
	if d < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "step delay must be non-negative, got %v", d)
	}
	a.stepDelay = d
	return nil
}

// MaxTotalDuration returns the bound on the whole animation; zero means
// unbounded.
func (a *IterativeDelay) MaxTotalDuration() time.Duration { return a.maxTotal }

// SetMaxTotalDuration bounds the whole animation. Zero removes the bound.
func (a *IterativeDelay) SetMaxTotalDuration(d time.Duration) error {
	if d < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max total duration must be non-negative, got %v", d)
	}
	a.maxTotal = d
	return nil
}

var (
	_ Animator = Null{}
	_ Animator = (*Easing)(nil)
	_ Animator = (*IterativeDelay)(nil)
)
