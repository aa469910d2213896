package animator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/stackplot/pkg/scale"
	"github.com/matzehuels/stackplot/pkg/surface"
)

var numberRE = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// interpolate returns the value of attr at eased progress t between the
// attribute's starting text and its target. Numbers interpolate, hex
// colors blend, strings with the same shape interpolate their embedded
// numbers, and anything else switches at the end.
func interpolate(attr, from string, to any, t float64) any {
	target := surface.FormatValue(to)

	if f, ok := numeric(to); ok {
		a, err := strconv.ParseFloat(from, 64)
		if err != nil {
			a = missingStart(attr)
		}
		return a + (f-a)*t
	}
	if strings.HasPrefix(target, "#") && strings.HasPrefix(from, "#") {
		if c, ok := scale.BlendColors(from, target, t); ok {
			return c
		}
	}
	if s, ok := interpolateNumbers(from, target, t); ok {
		return s
	}
	return from
}

func missingStart(attr string) float64 {
	switch attr {
	case "opacity", "fill-opacity", "stroke-opacity":
		return 1
	}
	return 0
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// interpolateNumbers blends two strings such as paths or transforms whose
// non-numeric skeletons match.
func interpolateNumbers(from, to string, t float64) (string, bool) {
	if from == "" || numberRE.ReplaceAllString(from, "#") != numberRE.ReplaceAllString(to, "#") {
		return "", false
	}
	a := numberRE.FindAllString(from, -1)
	if len(a) == 0 {
		return "", false
	}
	i := 0
	out := numberRE.ReplaceAllStringFunc(to, func(s string) string {
		fb, _ := strconv.ParseFloat(s, 64)
		fa, _ := strconv.ParseFloat(a[i], 64)
		i++
		return surface.FormatValue(fa + (fb-fa)*t)
	})
	return out, true
}
