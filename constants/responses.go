package constants

// HTTP Response Messages
const (
	ResponseInvalidRequestBody = "invalid request body"
	ResponseUnknownFilter      = "unknown filter"
	ResponseInternalError      = "internal error"
	ResponseHealthy            = "ok"
)

// Log Messages
const (
	LogFailedEncodeResponse = "failed to encode response"
	LogRenderSoftFailure    = "template evaluation failed"
)

// Request Field Errors
const (
	ResponseMissingTemplate = "missing template"
	ResponseBodyNotObject   = "request body must be a JSON object"
	ResponseFieldNotString  = "field %q must be a string"
	ResponseFieldNotBool    = "field %q must be a boolean"
	ResponseFieldNotMapping = "field %q must be an object"
)
