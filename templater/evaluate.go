package templater

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/convert"
)

// walker rebuilds a nested value bottom-up, rendering string leaves.
type walker struct {
	env  *Environment
	vars map[string]any
	opts renderOptions
	// containers on the path from the root to the current node
	path map[uintptr]struct{}
}

func (w *walker) eval(v any, depth int) (any, error) {
	if depth > constants.MaxEvaluateDepth {
		return nil, ErrMaxDepth
	}
	switch x := v.(type) {
	case string:
		return w.env.renderString(x, w.vars, w.opts)
	case nil, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x, nil
	case []any:
		if x == nil {
			return x, nil
		}
		leave, err := w.enter(x)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := make([]any, len(x))
		for i, item := range x {
			if out[i], err = w.eval(item, depth+1); err != nil {
				return nil, err
			}
		}
		return out, nil
	case map[string]any:
		if x == nil {
			return x, nil
		}
		leave, err := w.enter(x)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := make(map[string]any, len(x))
		for k, item := range x {
			if out[k], err = w.eval(item, depth+1); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *convert.Map:
		if x == nil {
			return x, nil
		}
		leave, err := w.enter(x)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := convert.NewMap()
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			item, err := w.eval(pair.Value, depth+1)
			if err != nil {
				return nil, err
			}
			out.Set(pair.Key, item)
		}
		return out, nil
	default:
		return w.evalReflect(v, depth)
	}
}

// evalReflect handles typed containers such as []string or
// []map[string]any, rebuilding them with their original type. Named string
// types are rendered and converted back. Arrays, structs, pointers and maps
// with non-string keys are returned as is.
func (w *walker) evalReflect(v any, depth int) (any, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		s, err := w.env.renderString(rv.String(), w.vars, w.opts)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(s).Convert(rv.Type()).Interface(), nil
	case reflect.Slice:
		if rv.IsNil() || rv.Type().Elem().Kind() == reflect.Uint8 {
			return v, nil
		}
		leave, err := w.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := w.eval(rv.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			if err := assign(out.Index(i), item); err != nil {
				return nil, err
			}
		}
		return out.Interface(), nil
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return v, nil
		}
		leave, err := w.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := w.eval(iter.Value().Interface(), depth+1)
			if err != nil {
				return nil, err
			}
			dst := reflect.New(rv.Type().Elem()).Elem()
			if err := assign(dst, item); err != nil {
				return nil, err
			}
			out.SetMapIndex(iter.Key(), dst)
		}
		return out.Interface(), nil
	default:
		return v, nil
	}
}

// assign stores v in dst, leaving dst zero for a nil v.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(dst.Type()) {
		return fmt.Errorf("cannot store %T in %s", v, dst.Type())
	}
	dst.Set(rv)
	return nil
}

// enter marks container c as being on the current path and returns the func
// that unmarks it.
func (w *walker) enter(c any) (func(), error) {
	ptr := reflect.ValueOf(c).Pointer()
	if ptr == 0 {
		return func() {}, nil
	}
	if _, ok := w.path[ptr]; ok {
		return nil, ErrCyclicValue
	}
	w.path[ptr] = struct{}{}
	return func() { delete(w.path, ptr) }, nil
}
