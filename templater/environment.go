package templater

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/awantoch/contentkit/config"
	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/loader"
	pongo2 "github.com/flosch/pongo2/v6"
)

// Environment is a pongo2 template set bound to one template location, with
// autoescaping on and every package filter installed.
type Environment struct {
	set        *pongo2.TemplateSet
	loader     pongo2.TemplateLoader
	searchPath []string
	autoescape bool
}

type envOptions struct {
	root   string
	loader pongo2.TemplateLoader
}

// EnvOption configures NewEnvironment.
type EnvOption func(*envOptions)

// WithRoot sets the directory a relative template dir is resolved against.
func WithRoot(root string) EnvOption {
	return func(o *envOptions) { o.root = root }
}

// WithLoader binds the environment to l instead of a filesystem directory.
func WithLoader(l pongo2.TemplateLoader) EnvOption {
	return func(o *envOptions) { o.loader = l }
}

// NewEnvironment builds an Environment for dir, resolved against the
// templates root when relative.
func NewEnvironment(dir string, opts ...EnvOption) (*Environment, error) {
	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}
	registerFilters()

	l := o.loader
	if l == nil {
		abs, err := config.ResolveDir(o.root, dir)
		if err != nil {
			return nil, err
		}
		fs, err := loader.NewFilesystem(abs)
		if err != nil {
			return nil, err
		}
		l = fs
	}

	var searchPath []string
	if sp, ok := l.(loader.SearchPather); ok {
		searchPath = sp.SearchPath()
	}
	return &Environment{
		set:        pongo2.NewSet(constants.DefaultServiceName+":"+dir, l),
		loader:     l,
		searchPath: searchPath,
		autoescape: true,
	}, nil
}

// NewEnvironmentFromConfig builds an Environment using the loader selected
// by cfg.Driver.
func NewEnvironmentFromConfig(ctx context.Context, cfg config.TemplatesConfig) (*Environment, error) {
	l, err := loader.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("template loader: %w", err)
	}
	return NewEnvironment(cfg.Dir, WithRoot(cfg.Root), WithLoader(l))
}

// Autoescape reports whether rendered values are HTML-escaped.
func (e *Environment) Autoescape() bool {
	return e.autoescape
}

// SearchPath returns the locations templates are loaded from.
func (e *Environment) SearchPath() []string {
	return append([]string(nil), e.searchPath...)
}

// Filters returns a copy of the filter registry keyed by name.
func (e *Environment) Filters() map[string]Filter {
	out := make(map[string]Filter, len(filters))
	for name, def := range filters {
		out[name] = def.fn
	}
	return out
}

// Filter returns the named filter.
func (e *Environment) Filter(name string) (Filter, bool) {
	return LookupFilter(name)
}

// RenderString renders tmpl against vars. Syntax errors are returned;
// evaluation errors yield constants.ContentParsingError.
func (e *Environment) RenderString(tmpl string, vars map[string]any, opts ...RenderOption) (string, error) {
	return e.renderString(tmpl, vars, newRenderOptions(opts))
}

// RenderTemplate loads the named template through the environment's loader
// and renders it like RenderString. Includes and extends inside it resolve
// relative to the template's own location.
func (e *Environment) RenderTemplate(name string, vars map[string]any, opts ...RenderOption) (string, error) {
	abs := e.loader.Abs("", name)
	r, err := e.loader.Get(abs)
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	compile := func() (*pongo2.Template, error) { return e.set.FromFile(abs) }
	return e.render(name, string(src), compile, vars, newRenderOptions(opts))
}

// EvaluateObject applies RenderString to every string inside v.
func (e *Environment) EvaluateObject(v any, vars map[string]any, opts ...RenderOption) (any, error) {
	w := &walker{
		env:  e,
		vars: vars,
		opts: newRenderOptions(opts),
		path: make(map[uintptr]struct{}),
	}
	return w.eval(v, 0)
}

func (e *Environment) renderString(src string, vars map[string]any, o renderOptions) (string, error) {
	compile := func() (*pongo2.Template, error) { return e.set.FromString(src) }
	return e.render(src, src, compile, vars, o)
}

// render compiles src with compile and executes it against vars. Text with no
// template delimiters is returned as is.
func (e *Environment) render(name, src string, compile func() (*pongo2.Template, error), vars map[string]any, o renderOptions) (string, error) {
	start := time.Now()
	if !hasTemplateSyntax(src) {
		observe(constants.OutcomeOK, start)
		return src, nil
	}
	tpl, err := compile()
	if err != nil {
		observe(constants.OutcomeSyntaxError, start)
		return "", &TemplateError{Kind: SyntaxError, Source: name, Err: err}
	}

	rc := newRenderContext(vars)
	defer rc.release()
	checkFinite := !rc.nonFinite && !strings.Contains(src, "Inf") && !strings.Contains(src, "NaN")
	out, err := execute(tpl, rc.data, o, checkFinite)
	if err != nil {
		observe(constants.OutcomeEvaluationError, start)
		te := &TemplateError{Kind: EvaluationError, Source: name, Err: err}
		if o.strict {
			return "", te
		}
		logSoftFailure(te, vars)
		return constants.ContentParsingError, nil
	}
	observe(constants.OutcomeOK, start)
	return out, nil
}

func hasTemplateSyntax(src string) bool {
	return strings.Contains(src, constants.VarOpen) ||
		strings.Contains(src, constants.TagOpen) ||
		strings.Contains(src, constants.CommentOpen)
}
