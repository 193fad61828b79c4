// Package loader provides pongo2 template loaders for the supported template
// drivers.
package loader

import (
	"context"

	"github.com/awantoch/contentkit/config"
	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/utils"
	pongo2 "github.com/flosch/pongo2/v6"
)

var loaderErrors = utils.NewErrorWrapper("template loader")

// SearchPather is implemented by loaders that can describe where they look.
type SearchPather interface {
	SearchPath() []string
}

// New returns the loader selected by cfg.Driver.
func New(ctx context.Context, cfg config.TemplatesConfig) (pongo2.TemplateLoader, error) {
	switch cfg.Driver {
	case "", constants.TemplateDriverFilesystem:
		dir, err := cfg.ResolvedDir()
		if err != nil {
			return nil, err
		}
		return NewFilesystem(dir)
	case constants.TemplateDriverS3:
		return NewS3Loader(ctx, cfg.Bucket, cfg.Region, cfg.Prefix)
	default:
		return nil, loaderErrors.Failf("unsupported template driver %q", cfg.Driver)
	}
}
