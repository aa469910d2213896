package scale

import (
	"math"
	"reflect"

	"github.com/matzehuels/stackplot/pkg/errors"
)

// ordinal holds a discrete domain with a value-to-index lookup.
type ordinal struct {
	base
	domain []any
	index  map[any]int
}

func (o *ordinal) initOrdinal(self Scale) {
	o.base.init(self, o.recompute)
	o.index = make(map[any]int)
}

func isComparable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Comparable()
}

// isNaN reports whether v is a floating-point NaN, which never equals
// itself and so can never be found in a domain.
func isNaN(v any) bool {
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// recompute sets the domain to the unique union of every perspective's
// values. Non-comparable, nil and NaN values are skipped.
func (o *ordinal) recompute() {
	seen := make(map[any]bool)
	var values []any
	o.eachValue(func(v any) {
		if !isComparable(v) || isNaN(v) || seen[v] {
			return
		}
		seen[v] = true
		values = append(values, v)
	})
	o.setDomain(values)
}

func (o *ordinal) setDomain(values []any) {
	if equalDomains(o.domain, values) {
		return
	}
	o.domain = values
	o.index = make(map[any]int, len(values))
	for i, v := range values {
		o.index[v] = i
	}
	o.broadcast()
}

func equalDomains(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AutoDomain re-enables auto mode and recomputes the domain.
func (o *ordinal) AutoDomain() {
	o.auto = true
	o.recompute()
}

// Domain returns the domain values. Callers must not modify the slice.
func (o *ordinal) Domain() []any {
	return o.domain
}

// SetDomain sets an explicit domain and leaves auto mode. Duplicate values
// are dropped; non-comparable values are an error.
func (o *ordinal) SetDomain(values ...any) error {
	seen := make(map[any]bool, len(values))
	unique := make([]any, 0, len(values))
	for _, v := range values {
		if !isComparable(v) {
			return errors.New(errors.ErrCodeUnsupportedValue, "ordinal domain value of type %T is not comparable", v)
		}
		if isNaN(v) {
			return errors.New(errors.ErrCodeUnsupportedValue, "ordinal domain value is NaN")
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	o.auto = false
	o.setDomain(unique)
	return nil
}

// lookup returns the index of v in the domain.
func (o *ordinal) lookup(v any) (int, bool, error) {
	if !isComparable(v) {
		return 0, false, errors.New(errors.ErrCodeUnsupportedValue, "cannot scale value of type %T on an ordinal scale", v)
	}
	i, ok := o.index[v]
	return i, ok, nil
}
