package config

import "github.com/awantoch/contentkit/constants"

// Default paths and levels for contentkit.
const (
	// DefaultConfigPath is where the CLI looks for a config file.
	DefaultConfigPath = constants.ConfigFileName
	// DefaultTemplatesDir is the template directory relative to the templates root.
	DefaultTemplatesDir = "templates"
	// DefaultLogLevel is the internal logger level.
	DefaultLogLevel = "info"
)
