package constants

// Configuration Files
const (
	ConfigFileName = "contentkit.config.json"
	ConfigSchemaID = "contentkit.config.schema.json"
)

// Template Drivers
const (
	TemplateDriverFilesystem = "filesystem"
	TemplateDriverS3         = "s3"
)

// Environment Variables
const (
	EnvDebug         = "CONTENTKIT_DEBUG"
	EnvTemplatesRoot = "CONTENTKIT_TEMPLATES_ROOT"
	EnvTemplatesDir  = "CONTENTKIT_TEMPLATES_DIR"
	EnvHTTPPort      = "CONTENTKIT_HTTP_PORT"
	EnvLogLevel      = "CONTENTKIT_LOG_LEVEL"
)

// Tracing Exporters
const (
	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"
	DefaultServiceName    = "contentkit"
	DefaultOTLPEndpoint   = "localhost:4318"
)

// Logger Modes
const (
	LogModeProduction = "production"
	LogModeDebug      = "debug"
)
