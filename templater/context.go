package templater

import (
	"math"
	"reflect"
	"sync"

	"github.com/awantoch/contentkit/convert"
	pongo2 "github.com/flosch/pongo2/v6"
)

// orderedViews maps the plain copy of an ordered map, keyed by its map
// pointer, back to the ordered map it was copied from. Entries live for the
// duration of one render.
var orderedViews sync.Map

// orderedView returns the ordered map m was copied from, if m belongs to a
// render in progress.
func orderedView(m map[string]any) (*convert.Map, bool) {
	v, ok := orderedViews.Load(reflect.ValueOf(m).Pointer())
	if !ok {
		return nil, false
	}
	om, ok := v.(*convert.Map)
	return om, ok
}

// renderContext is the pongo2 view of one render's variables.
type renderContext struct {
	data  pongo2.Context
	views []uintptr
	// a variable holds a value that prints like a non-finite number
	nonFinite bool
}

func newRenderContext(vars map[string]any) *renderContext {
	rc := &renderContext{data: make(pongo2.Context, len(vars))}
	for k, v := range vars {
		// pongo2 resolves dotted lookups on built-in maps only.
		rc.data[k] = convert.ToPlain(v, rc.visit)
	}
	return rc
}

func (rc *renderContext) visit(src, dst any) {
	switch x := src.(type) {
	case *convert.Map:
		if m, ok := dst.(map[string]any); ok {
			p := reflect.ValueOf(m).Pointer()
			orderedViews.Store(p, x)
			rc.views = append(rc.views, p)
		}
	case string:
		rc.nonFinite = rc.nonFinite || isNonFiniteText(x)
	case float64:
		rc.nonFinite = rc.nonFinite || math.IsInf(x, 0) || math.IsNaN(x)
	case float32:
		f := float64(x)
		rc.nonFinite = rc.nonFinite || math.IsInf(f, 0) || math.IsNaN(f)
	}
}

func (rc *renderContext) release() {
	for _, p := range rc.views {
		orderedViews.Delete(p)
	}
	rc.views = nil
}
