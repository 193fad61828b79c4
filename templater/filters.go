package templater

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/utils"
	pongo2 "github.com/flosch/pongo2/v6"
)

// Filter is a single-argument template filter.
type Filter func(value any) (any, error)

type filterDef struct {
	fn Filter
	// safe output is emitted verbatim even when autoescaping is on.
	safe bool
}

var filters = map[string]filterDef{
	constants.FilterJSString: {
		fn:   func(v any) (any, error) { return JSString(v) },
		safe: true,
	},
	constants.FilterLog2Floor: {
		fn: func(v any) (any, error) { return Log2Floor(v) },
	},
}

var jsEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `'`, `\'`)

// JSString serializes v as ASCII-only JSON and escapes the result so it can
// sit inside a quoted JavaScript string literal.
func JSString(v any) (string, error) {
	var b strings.Builder
	if err := writeASCIIJSON(&b, v, 0); err != nil {
		return "", fmt.Errorf("%s: %w", constants.FilterJSString, err)
	}
	return jsEscaper.Replace(b.String()), nil
}

// Log2Floor returns log2(v) truncated toward zero, so 10 gives 3 and 0.0001
// gives -13.
func Log2Floor(v any) (int, error) {
	f, ok := toFloat(v)
	if !ok || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrDomain, v)
	}
	return int(math.Log2(f)), nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// FilterNames returns the registered filter names in sorted order.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupFilter returns the named filter.
func LookupFilter(name string) (Filter, bool) {
	def, ok := filters[name]
	return def.fn, ok
}

// ApplyFilter calls the named filter on v.
func ApplyFilter(name string, v any) (any, error) {
	fn, ok := LookupFilter(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	return fn(v)
}

var registerOnce sync.Once

// registerFilters installs every filter into pongo2's process-wide registry.
func registerFilters() {
	registerOnce.Do(func() {
		for name, def := range filters {
			fn := pongoFilter(name, def)
			var err error
			if pongo2.FilterExists(name) {
				err = pongo2.ReplaceFilter(name, fn)
			} else {
				err = pongo2.RegisterFilter(name, fn)
			}
			if err != nil {
				utils.Error("register filter %s: %v", name, err)
			}
		}
	})
}

func pongoFilter(name string, def filterDef) pongo2.FilterFunction {
	return func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		out, err := def.fn(in.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		if def.safe {
			return pongo2.AsSafeValue(out), nil
		}
		return pongo2.AsValue(out), nil
	}
}
