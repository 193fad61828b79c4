package templater

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awantoch/contentkit/config"
	"github.com/awantoch/contentkit/testutil"
)

// mapLoader serves templates from memory.
type mapLoader map[string]string

func (m mapLoader) Abs(base, name string) string {
	return path.Clean(name)
}

func (m mapLoader) Get(p string) (io.Reader, error) {
	src, ok := m[p]
	if !ok {
		return nil, fmt.Errorf("template %s not found", p)
	}
	return strings.NewReader(src), nil
}

func (m mapLoader) SearchPath() []string {
	return []string{"mem://"}
}

func newTemplatesDir(t *testing.T) string {
	t.Helper()
	return testutil.TemplatesRoot(t, "templates", map[string]string{
		"page.html":                   `<h1>{{ title }}</h1>{% include "footer.html" %}`,
		"footer.html":                 `<footer>{{ year }}</footer>`,
		"script.html":                 `var data = "{{ data|js_string }}";`,
		"broken.html":                 `{% for x in %}`,
		"divzero.html":                `{{ a/b }}`,
		"base.html":                   `<main>{% block body %}{% endblock %}</main>`,
		"child.html":                  `{% extends "base.html" %}{% block body %}{{ html }}{% endblock %}`,
		"emails/welcome.html":         `Hi {{ name }}{% include "parts/signature.html" %}`,
		"emails/parts/signature.html": ` -- {{ sender }}`,
	})
}

func TestNewEnvironment(t *testing.T) {
	root := newTemplatesDir(t)
	env, err := NewEnvironment("templates", WithRoot(root))
	require.NoError(t, err)

	assert.True(t, env.Autoescape())
	assert.Equal(t, []string{filepath.Join(root, "templates")}, env.SearchPath())

	registry := env.Filters()
	for _, name := range FilterNames() {
		f, ok := registry[name]
		require.True(t, ok, "filter %s missing", name)
		require.NotNil(t, f)

		f, ok = env.Filter(name)
		require.True(t, ok)
		_, err := f(10)
		require.NoError(t, err)
	}

	// The copy handed out must not alias the registry.
	delete(registry, "js_string")
	_, ok := env.Filter("js_string")
	assert.True(t, ok)
}

func TestNewEnvironment_AbsoluteDir(t *testing.T) {
	root := newTemplatesDir(t)
	abs := filepath.Join(root, "templates")
	env, err := NewEnvironment(abs, WithRoot("/somewhere/else"))
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, env.SearchPath())
}

func TestNewEnvironment_InvalidDir(t *testing.T) {
	_, err := NewEnvironment("missing", WithRoot(t.TempDir()))
	require.Error(t, err)
}

func TestEnvironment_RenderTemplate(t *testing.T) {
	env, err := NewEnvironment("templates", WithRoot(newTemplatesDir(t)))
	require.NoError(t, err)

	out, err := env.RenderTemplate("page.html", map[string]any{"title": "<Home>", "year": 2026})
	require.NoError(t, err)
	assert.Equal(t, "<h1>&lt;Home&gt;</h1><footer>2026</footer>", out)

	out, err = env.RenderTemplate("script.html", map[string]any{"data": []any{"a", 2}})
	require.NoError(t, err)
	assert.Equal(t, `var data = "[\"a\", 2]";`, out)

	out, err = env.RenderTemplate("divzero.html", map[string]any{"a": 1, "b": 0})
	require.NoError(t, err)
	assert.Equal(t, "[CONTENT PARSING ERROR]", out)

	_, err = env.RenderTemplate("broken.html", nil)
	require.Error(t, err)
	assert.True(t, IsSyntaxError(err))
	assert.Contains(t, err.Error(), "broken.html")

	_, err = env.RenderTemplate("nope.html", nil)
	require.Error(t, err)
	assert.False(t, IsSyntaxError(err))
}

func TestEnvironment_RenderTemplate_RelativeIncludes(t *testing.T) {
	env, err := NewEnvironment("templates", WithRoot(newTemplatesDir(t)))
	require.NoError(t, err)

	out, err := env.RenderTemplate("emails/welcome.html", map[string]any{"name": "Ada", "sender": "<ops>"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada -- &lt;ops&gt;", out)

	out, err = env.RenderTemplate("emails/welcome.html", map[string]any{"name": "Ada", "sender": "<ops>"}, WithoutAutoescape())
	require.NoError(t, err)
	assert.Equal(t, "Hi Ada -- <ops>", out)
}

func TestEnvironment_RenderTemplate_Extends(t *testing.T) {
	env, err := NewEnvironment("templates", WithRoot(newTemplatesDir(t)))
	require.NoError(t, err)

	vars := map[string]any{"html": "<i>x</i>"}
	out, err := env.RenderTemplate("child.html", vars)
	require.NoError(t, err)
	assert.Equal(t, "<main>&lt;i&gt;x&lt;/i&gt;</main>", out)

	out, err = env.RenderTemplate("child.html", vars, WithoutAutoescape())
	require.NoError(t, err)
	assert.Equal(t, "<main><i>x</i></main>", out)
}

func TestEnvironment_WithLoader(t *testing.T) {
	env, err := NewEnvironment("ignored", WithLoader(mapLoader{
		"greeting.txt": "Hello {{ name }}",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"mem://"}, env.SearchPath())

	out, err := env.RenderTemplate("greeting.txt", map[string]any{"name": "S3"})
	require.NoError(t, err)
	assert.Equal(t, "Hello S3", out)

	out, err = env.RenderString("{{ n|log2_floor }}", map[string]any{"n": 1024})
	require.NoError(t, err)
	assert.Equal(t, "10", out)
}

func TestNewEnvironmentFromConfig(t *testing.T) {
	root := newTemplatesDir(t)
	env, err := NewEnvironmentFromConfig(context.Background(), config.TemplatesConfig{
		Root: root,
		Dir:  "templates",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "templates")}, env.SearchPath())

	out, err := env.RenderTemplate("footer.html", map[string]any{"year": 1999})
	require.NoError(t, err)
	assert.Equal(t, "<footer>1999</footer>", out)

	_, err = NewEnvironmentFromConfig(context.Background(), config.TemplatesConfig{Driver: "ftp"})
	require.Error(t, err)
}
