package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/observability"
	"github.com/matzehuels/stackplot/pkg/surface/raster"
)

// LayoutDump is the JSON artifact: the document size and the bounds of
// every component.
type LayoutDump struct {
	Width  float64               `json:"width"`
	Height float64               `json:"height"`
	Root   component.Description `json:"root"`
}

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l *Layout, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
		}
		data, err := renderFormat(l, format, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(l *Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return l.Document.SVG(), nil
	case FormatPNG:
		var buf bytes.Buffer
		if err := raster.PNG(&buf, l.Document, raster.Options{Scale: opts.Scale}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(LayoutDump{
			Width:  l.Width,
			Height: l.Height,
			Root:   component.Describe(l.Chart.Root),
		}, "", "  ")
	}
	return nil, ValidateFormat(format)
}
