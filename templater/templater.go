// Package templater renders template strings and templated documents with
// pongo2 and provides the js_string and log2_floor filters.
package templater

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/telemetry"
	"github.com/awantoch/contentkit/utils"
	pongo2 "github.com/flosch/pongo2/v6"
)

type renderOptions struct {
	autoescape bool
	strict     bool
}

// RenderOption configures a single render call.
type RenderOption func(*renderOptions)

// WithoutAutoescape renders values without HTML escaping.
func WithoutAutoescape() RenderOption {
	return func(o *renderOptions) { o.autoescape = false }
}

// WithStrictEvaluation returns evaluation failures as a *TemplateError of
// kind EvaluationError instead of constants.ContentParsingError.
func WithStrictEvaluation() RenderOption {
	return func(o *renderOptions) { o.strict = true }
}

func newRenderOptions(opts []RenderOption) renderOptions {
	o := renderOptions{autoescape: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var (
	stringEnvOnce sync.Once
	stringEnv     *Environment
)

// defaultEnvironment renders strings that never reference template files.
func defaultEnvironment() *Environment {
	stringEnvOnce.Do(func() {
		registerFilters()
		l := pongo2.MustNewLocalFileSystemLoader("")
		stringEnv = &Environment{
			set:        pongo2.NewSet(constants.DefaultServiceName+":strings", l),
			loader:     l,
			autoescape: true,
		}
	})
	return stringEnv
}

// ParseString renders tmpl against vars.
//
// Variables missing from vars render as empty strings. A template that
// cannot be parsed returns a *TemplateError of kind SyntaxError. A template
// that parses but fails while rendering returns constants.ContentParsingError
// and a nil error.
func ParseString(tmpl string, vars map[string]any, opts ...RenderOption) (string, error) {
	return defaultEnvironment().RenderString(tmpl, vars, opts...)
}

// EvaluateObject returns a copy of v with every string rendered by
// ParseString. v itself is never modified.
func EvaluateObject(v any, vars map[string]any, opts ...RenderOption) (any, error) {
	return defaultEnvironment().EvaluateObject(v, vars, opts...)
}

var errNonFinite = errors.New("expression produced a non-finite number")

// escapeMu guards pongo2's process-wide autoescape switch. Escaped renders
// share it; a raw render holds it exclusively while the switch is off.
var escapeMu sync.RWMutex

// outputWriter collects rendered chunks. pongo2 writes each printed value as
// its own chunk and formats infinities and NaN as below.
type outputWriter struct {
	buf         strings.Builder
	checkFinite bool
	err         error
}

func (w *outputWriter) Write(p []byte) (int, error) {
	if w.checkFinite && w.err == nil && isNonFiniteText(string(p)) {
		w.err = errNonFinite
	}
	return w.buf.Write(p)
}

func isNonFiniteText(s string) bool {
	return s == "+Inf" || s == "-Inf" || s == "NaN"
}

// execute runs tpl, turning engine panics and non-finite numeric output into
// evaluation errors. checkFinite is off when the template or its variables
// can legitimately print the non-finite spellings.
func execute(tpl *pongo2.Template, ctx pongo2.Context, o renderOptions, checkFinite bool) (out string, err error) {
	if o.autoescape {
		escapeMu.RLock()
		defer escapeMu.RUnlock()
	} else {
		escapeMu.Lock()
		pongo2.SetAutoescape(false)
		defer func() {
			pongo2.SetAutoescape(true)
			escapeMu.Unlock()
		}()
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("panic during evaluation: %v", r)
		}
	}()

	w := &outputWriter{checkFinite: checkFinite}
	if err := tpl.ExecuteWriterUnbuffered(ctx, w); err != nil {
		return "", err
	}
	if w.err != nil {
		return "", w.err
	}
	return w.buf.String(), nil
}

func observe(outcome string, start time.Time) {
	telemetry.ObserveRender(outcome, time.Since(start))
}

func logSoftFailure(err *TemplateError, vars map[string]any) {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	utils.Error("%s: %v (variables: %v)", constants.LogRenderSoftFailure, err, names)
}
