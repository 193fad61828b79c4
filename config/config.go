package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/utils"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON string

var configErrors = utils.NewErrorWrapper("config")

type Config struct {
	Templates TemplatesConfig `json:"templates"`
	HTTP      HTTPConfig      `json:"http"`
	Log       LogConfig       `json:"log"`
	Tracing   *TracingConfig  `json:"tracing,omitempty"`
}

// TemplatesConfig locates the template files an environment is bound to.
type TemplatesConfig struct {
	// Root anchors a relative Dir. Empty means the working directory.
	Root   string `json:"root,omitempty"`
	Dir    string `json:"dir,omitempty"`
	Driver string `json:"driver,omitempty"`
	Bucket string `json:"bucket,omitempty"`
	Region string `json:"region,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

type HTTPConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type LogConfig struct {
	Level string `json:"level"`
}

// TracingConfig selects the OpenTelemetry exporter ("stdout", "otlp" or
// empty for none).
type TracingConfig struct {
	ServiceName string `json:"service_name,omitempty"`
	Exporter    string `json:"exporter,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
}

// ResolvedDir returns the absolute template directory.
func (t TemplatesConfig) ResolvedDir() (string, error) {
	return ResolveDir(t.Root, t.Dir)
}

// ResolveDir joins dir onto root unless dir is already absolute.
func ResolveDir(root, dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	if root == "" {
		root = "."
	}
	return filepath.Abs(filepath.Join(root, dir))
}

// Addr returns host:port for net.Listen.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a JSON or YAML config file, validates it against the
// embedded schema, then applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, configErrors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes config bytes. ext selects YAML for ".yaml"/".yml", JSON
// otherwise.
func Parse(data []byte, ext string) (*Config, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		data = converted
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate checks a decoded JSON document against the config schema.
func Validate(doc any) error {
	schema, err := jsonschema.CompileString(constants.ConfigSchemaID, schemaJSON)
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}

// ApplyEnv overrides fields from CONTENTKIT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(constants.EnvTemplatesRoot); v != "" {
		c.Templates.Root = v
	}
	if v := os.Getenv(constants.EnvTemplatesDir); v != "" {
		c.Templates.Dir = v
	}
	if v := os.Getenv(constants.EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(constants.EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", constants.EnvHTTPPort, err)
		}
		c.HTTP.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Templates.Dir == "" {
		c.Templates.Dir = DefaultTemplatesDir
	}
	if c.Templates.Driver == "" {
		c.Templates.Driver = constants.TemplateDriverFilesystem
	}
	if c.HTTP.Host == "" {
		c.HTTP.Host = constants.DefaultHTTPHost
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = constants.DefaultHTTPPort
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Tracing != nil && c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = constants.DefaultServiceName
	}
}
