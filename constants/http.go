package constants

import "time"

// Content Types
const (
	ContentTypeJSON = "application/json"
)

// HTTP Headers
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
)

// HTTP Routes
const (
	RouteRender   = "POST /render"
	RouteEvaluate = "POST /evaluate"
	RouteFilters  = "GET /filters"
	RouteFilter   = "POST /filters/{name}"
	RouteHealth   = "GET /healthz"
	RouteMetrics  = "GET /metrics"
)

// Server Defaults
const (
	DefaultHTTPHost        = "localhost"
	DefaultHTTPPort        = 8080
	DefaultShutdownTimeout = 10 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	MaxRequestBodyBytes    = 1 << 20
)

// CORS
const (
	HeaderCORSOrigin   = "Access-Control-Allow-Origin"
	HeaderCORSMethods  = "Access-Control-Allow-Methods"
	HeaderCORSHeaders  = "Access-Control-Allow-Headers"
	CORSAllowAll       = "*"
	CORSAllowedMethods = "GET, POST, OPTIONS"
	CORSAllowedHeaders = "Content-Type, X-Request-ID"
)
