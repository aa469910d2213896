package dataset

import (
	"reflect"
)

// Accessor extracts one value from a record. i is the record's index
// within ds.
type Accessor func(d any, i int, ds *Dataset) any

// Field returns an accessor reading name from map records
// (map[string]any or map[string]string) or from an exported struct field.
// Records without the field yield nil.
func Field(name string) Accessor {
	return func(d any, _ int, _ *Dataset) any {
		switch r := d.(type) {
		case map[string]any:
			return r[name]
		case map[string]string:
			v, ok := r[name]
			if !ok {
				return nil
			}
			return v
		case nil:
			return nil
		}
		v := reflect.ValueOf(d)
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil
		}
		f := v.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil
		}
		return f.Interface()
	}
}

// Constant returns an accessor that always yields v.
func Constant(v any) Accessor {
	return func(any, int, *Dataset) any { return v }
}

// Index returns an accessor yielding the record's index.
func Index() Accessor {
	return func(_ any, i int, _ *Dataset) any { return i }
}

// Identity returns an accessor yielding the record itself.
func Identity() Accessor {
	return func(d any, _ int, _ *Dataset) any { return d }
}

// Values applies acc to every record of ds.
func (d *Dataset) Values(acc Accessor) []any {
	out := make([]any, len(d.data))
	for i, r := range d.data {
		out[i] = acc(r, i, d)
	}
	return out
}
