package manifest

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
)

// exprPackages are the standard library packages expressions may use.
var exprPackages = []string{"math/math", "strconv/strconv", "strings/strings", "time/time"}

// prelude defines the helpers available to every expression. num and str
// convert loosely typed record values; neither panics.
const prelude = `package main

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	_ = math.Abs
	_ = strings.TrimSpace
	_ = time.Parse
)

func num(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

func str(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
`

// exprFunc is the compiled form of an expression.
type exprFunc = func(d map[string]interface{}, i int) interface{}

// exprCompiler compiles accessor expressions in one interpreter. The
// interpreter is not safe for concurrent use, so compiled accessors share
// its lock.
type exprCompiler struct {
	mu sync.Mutex
	in *interp.Interpreter
	n  int
}

func newExprCompiler() (*exprCompiler, error) {
	in := interp.New(interp.Options{})
	symbols := interp.Exports{}
	for _, pkg := range exprPackages {
		symbols[pkg] = stdlib.Symbols[pkg]
	}
	if err := in.Use(symbols); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load expression symbols")
	}
	if _, err := in.Eval(prelude); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load expression prelude")
	}
	return &exprCompiler{in: in}, nil
}

// Compile turns a Go expression over d (the record as a map) and i (its
// index) into an accessor. Records that are not maps are visible as
// d["value"]. An expression that panics yields nil for that record.
func (c *exprCompiler) Compile(expr string) (dataset.Accessor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evaluating a bare func literal yields a pointer to the closure, so
	// each expression is bound to its own variable and read back by name.
	name := fmt.Sprintf("expr%d", c.n)
	c.n++
	src := fmt.Sprintf("var %s = func(d map[string]interface{}, i int) interface{} { return %s }", name, expr)
	if _, err := c.in.Eval(src); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "compile expression %q", expr)
	}
	v, err := c.in.Eval(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "compile expression %q", expr)
	}
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "expression %q is not a value", expr)
	}
	fn, ok := v.Interface().(exprFunc)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "expression %q has an unexpected type %s", expr, v.Type())
	}

	return func(d any, i int, _ *dataset.Dataset) (out any) {
		rec, ok := d.(map[string]any)
		if !ok {
			rec = map[string]any{"value": d}
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		defer func() {
			if recover() != nil {
				out = nil
			}
		}()
		return fn(rec, i)
	}, nil
}
