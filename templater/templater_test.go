package templater

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awantoch/contentkit/convert"
)

func TestParseString(t *testing.T) {
	cases := []struct {
		name string
		tmpl string
		vars map[string]any
		want string
	}{
		{"simple", "{{test}}", map[string]any{"test": "hi"}, "hi"},
		{"some missing", "{{test}} and {{test2}}", map[string]any{"test2": "hi"}, " and hi"},
		{"all missing", "{{test}} and {{test2}}", map[string]any{}, " and "},
		{"nil vars", "{{test}} and {{test2}}", nil, " and "},
		{"no params", "no params", map[string]any{"param": "hi"}, "no params"},
		{"int param", "int {{i}}", map[string]any{"i": 2}, "int 2"},
		{"spaces", "Hello {{ name }}!", map[string]any{"name": "Go"}, "Hello Go!"},
		{"dotted", "{{ page.title }}", map[string]any{"page": map[string]any{"title": "Home"}}, "Home"},
		{"builtin filter", "{{ name|upper }}", map[string]any{"name": "go"}, "GO"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ParseString(tc.tmpl, tc.vars)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestParseString_SyntaxError(t *testing.T) {
	_, err := ParseString("{{", map[string]any{"a": 3, "b": 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse template string: {{")
	assert.True(t, IsSyntaxError(err))
	assert.False(t, IsEvaluationError(err))

	var te *TemplateError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, SyntaxError, te.Kind)
	assert.Equal(t, "{{", te.Source)
	assert.NotNil(t, te.Unwrap())

	_, err = ParseString("{% if %}", nil)
	assert.True(t, IsSyntaxError(err))
}

func TestParseString_EvaluationError(t *testing.T) {
	out, err := ParseString("{{ a/b }}", map[string]any{"a": 1, "b": 0})
	require.NoError(t, err)
	assert.Equal(t, "[CONTENT PARSING ERROR]", out)

	out, err = ParseString("{{ n|log2_floor }}", map[string]any{"n": -4})
	require.NoError(t, err)
	assert.Equal(t, "[CONTENT PARSING ERROR]", out)
}

func TestParseString_NonFiniteResult(t *testing.T) {
	cases := []struct {
		name string
		tmpl string
		vars map[string]any
	}{
		{"positive infinity", "{{ a/b }}", map[string]any{"a": 1.5, "b": 0}},
		{"negative infinity", "x={{ a/b }}", map[string]any{"a": -1.5, "b": 0}},
		{"nan", "{{ b/c }}", map[string]any{"b": 0.0, "c": 0}},
		{"inside loop", "{% for d in ds %}{{ 1.0/d }};{% endfor %}", map[string]any{"ds": []any{1, 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ParseString(tc.tmpl, tc.vars)
			require.NoError(t, err)
			assert.Equal(t, "[CONTENT PARSING ERROR]", out)
		})
	}
}

func TestParseString_NonFiniteVariablesPrint(t *testing.T) {
	out, err := ParseString("{{ s }} {{ f }}", map[string]any{"s": "NaN", "f": math.Inf(1)})
	require.NoError(t, err)
	assert.Equal(t, "NaN +Inf", out)

	out, err = ParseString(`{{ "NaN" }}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "NaN", out)

	out, err = ParseString("{{ a/b }}", map[string]any{"a": 3.0, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, "1.500000", out)
}

func TestParseString_Strict(t *testing.T) {
	_, err := ParseString("{{ a/b }}", map[string]any{"a": 1.5, "b": 0}, WithStrictEvaluation())
	require.Error(t, err)
	assert.True(t, IsEvaluationError(err))
	assert.ErrorIs(t, err, errNonFinite)

	_, err = ParseString("{{ n|log2_floor }}", map[string]any{"n": 0}, WithStrictEvaluation())
	assert.True(t, IsEvaluationError(err))

	out, err := ParseString("{{ n|log2_floor }}", map[string]any{"n": 8}, WithStrictEvaluation())
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	_, err = ParseString("{{", nil, WithStrictEvaluation())
	assert.True(t, IsSyntaxError(err))
}

func TestParseString_PlainText(t *testing.T) {
	for _, tmpl := range []string{"", "plain } text {", "100% done", "NaN"} {
		out, err := ParseString(tmpl, map[string]any{"x": 1})
		require.NoError(t, err)
		assert.Equal(t, tmpl, out)
	}

	out, err := ParseString("a{# note #}b", nil)
	require.NoError(t, err)
	assert.Equal(t, "ab", out)
}

func TestParseString_OrderedMapInJSString(t *testing.T) {
	inner := convert.NewMap()
	inner.Set("y", true)
	inner.Set("b", nil)
	o := convert.NewMap()
	o.Set("z", 1)
	o.Set("a", 2)
	o.Set("m", inner)

	out, err := ParseString("{{ o|js_string }}", map[string]any{"o": o})
	require.NoError(t, err)
	assert.Equal(t, `{\"z\": 1, \"a\": 2, \"m\": {\"y\": true, \"b\": null}}`, out)

	out, err = ParseString("{{ o.m|js_string }}", map[string]any{"o": o})
	require.NoError(t, err)
	assert.Equal(t, `{\"y\": true, \"b\": null}`, out)

	// Plain maps keep sorted keys.
	out, err = ParseString("{{ p|js_string }}", map[string]any{"p": map[string]any{"z": 1, "a": 2}})
	require.NoError(t, err)
	assert.Equal(t, `{\"a\": 2, \"z\": 1}`, out)
}

func TestParseString_AutoescapeConcurrent(t *testing.T) {
	vars := map[string]any{"x": "<b>"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			out, err := ParseString("{{ x }}", vars)
			assert.NoError(t, err)
			assert.Equal(t, "&lt;b&gt;", out)
		}()
		go func() {
			defer wg.Done()
			out, err := ParseString("{{ x }}", vars, WithoutAutoescape())
			assert.NoError(t, err)
			assert.Equal(t, "<b>", out)
		}()
	}
	wg.Wait()

	out, err := ParseString("{{ x }}", vars)
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;", out)
}

func TestParseString_Autoescape(t *testing.T) {
	vars := map[string]any{"x": "<b>"}

	out, err := ParseString("{{ x }}", vars)
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;", out)

	out, err = ParseString("{{ x }}", vars, WithoutAutoescape())
	require.NoError(t, err)
	assert.Equal(t, "<b>", out)
}

func TestParseString_Filters(t *testing.T) {
	out, err := ParseString(`var s = "{{ v|js_string }}";`, map[string]any{"v": "a"})
	require.NoError(t, err)
	assert.Equal(t, `var s = "\"a\"";`, out)

	out, err = ParseString("{{ 10|log2_floor }} {{ f|log2_floor }}", map[string]any{"f": 0.0001})
	require.NoError(t, err)
	assert.Equal(t, "3 -13", out)

	out, err = ParseString("{{ missing|js_string }}", nil)
	require.NoError(t, err)
	assert.Equal(t, "null", out)
}

func TestParseString_DoesNotMutateVars(t *testing.T) {
	vars := map[string]any{"page": map[string]any{"title": "Home"}}
	_, err := ParseString("{{ page.title }}", vars)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"page": map[string]any{"title": "Home"}}, vars)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "syntax error", SyntaxError.String())
	assert.Equal(t, "evaluation error", EvaluationError.String())
	assert.Equal(t, "unknown error", ErrorKind(0).String())

	err := &TemplateError{Kind: EvaluationError, Source: "{{ x }}", Err: ErrDomain}
	assert.True(t, IsEvaluationError(err))
	assert.ErrorIs(t, err, ErrDomain)
	assert.Contains(t, err.Error(), "unable to evaluate template string: {{ x }}")
}
