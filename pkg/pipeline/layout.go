package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/dataset"
	"github.com/matzehuels/stackplot/pkg/errors"
	"github.com/matzehuels/stackplot/pkg/manifest"
	"github.com/matzehuels/stackplot/pkg/observability"
	"github.com/matzehuels/stackplot/pkg/source"
	"github.com/matzehuels/stackplot/pkg/surface"
)

// Layout is a built chart laid out on a document.
type Layout struct {
	Chart    *manifest.Chart
	Document *surface.Document
	Width    float64
	Height   float64
}

// Components counts the components in the chart's tree.
func (l *Layout) Components() int {
	n := 0
	component.Walk(l.Chart.Root, func(component.Component) { n++ })
	return n
}

// BuildLayout loads the manifest's datasets, builds its component tree and
// renders it onto a new document. Animated charts are flushed to their
// final frame.
func BuildLayout(ctx context.Context, in *Input, opts Options) (l *Layout, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, len(in.Manifest.Plots))
	defer func() { hooks.OnLayoutComplete(ctx, time.Since(start), err) }()

	c, err := in.Manifest.Build(ctx, manifest.BuildOptions{
		Resolve:   loadWithHooks,
		AllowExpr: opts.AllowExpr,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	w, h := c.Width, c.Height
	if opts.Width > 0 {
		w = opts.Width
	}
	if opts.Height > 0 {
		h = opts.Height
	}
	var docOpts []surface.Option
	if opts.EmbedFont {
		docOpts = append(docOpts, surface.WithEmbeddedFont())
	}
	doc := surface.NewDocument(w, h, docOpts...)
	if err := component.RenderTo(c.Root, doc.Root(), w, h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "lay out chart")
	}
	if c.Timeline != nil {
		c.Timeline.Flush()
	}
	return &Layout{Chart: c, Document: doc, Width: w, Height: h}, nil
}

func loadWithHooks(ctx context.Context, path string) (*dataset.Dataset, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLoadStart(ctx, path)
	ds, err := source.Load(ctx, path)
	rows := 0
	if ds != nil {
		rows = ds.Len()
	}
	hooks.OnLoadComplete(ctx, path, rows, time.Since(start), err)
	return ds, err
}
