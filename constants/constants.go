package constants

// ============================================================================
// TEMPLATING
// ============================================================================

// ContentParsingError is returned in place of rendered output when a template
// parses but fails while being evaluated.
const ContentParsingError = "[CONTENT PARSING ERROR]"

// Filter Names
const (
	FilterJSString  = "js_string"
	FilterLog2Floor = "log2_floor"
)

// Template Delimiters
const (
	VarOpen     = "{{"
	TagOpen     = "{%"
	CommentOpen = "{#"
)

// Evaluation Limits
const (
	// MaxEvaluateDepth bounds container nesting walked by the object evaluator.
	MaxEvaluateDepth = 512
)

// Render Outcomes (metric label values)
const (
	OutcomeOK              = "ok"
	OutcomeSyntaxError     = "syntax_error"
	OutcomeEvaluationError = "evaluation_error"
)

// ============================================================================
// JSON
// ============================================================================

// JSON Formatting
const (
	JSONIndent        = "  "
	JSONItemSeparator = ", "
	JSONKeySeparator  = ": "
	JSONNull          = "null"
)
