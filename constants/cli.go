package constants

// CLI Commands and Subcommands
const (
	CmdRoot    = "tmpl"
	CmdRender  = "render"
	CmdEval    = "eval"
	CmdFilter  = "filter"
	CmdFilters = "filters"
	CmdServe   = "serve"
)

// CLI Short Descriptions
const (
	DescRoot    = "Render templates and evaluate templated documents"
	DescRender  = "Render a template string or a named template file"
	DescEval    = "Evaluate every string in a JSON/YAML document as a template"
	DescFilter  = "Apply a named filter to a JSON value"
	DescFilters = "List registered template filters"
	DescServe   = "Serve the templating HTTP API"
)

// CLI Error Messages
const (
	ErrReadStdinFailed  = "failed to read from stdin: %w"
	ErrReadFileFailed   = "failed to read %s: %w"
	ErrDecodeVarsFailed = "failed to decode variables: %w"
	ErrVarsNotMapping   = "variables must be a mapping, got %T"
	ErrMarshalFailed    = "failed to marshal result: %w"
)

// CLI Exit Codes
const (
	ExitBadInput        = 1
	ExitConfig          = 2
	ExitSyntaxError     = 3
	ExitFilterError     = 4
	ExitEvaluationError = 5
)
