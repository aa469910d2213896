// Package pipeline turns chart manifests into rendered artifacts.
//
// The pipeline is shared by the CLI and the HTTP server so both produce
// byte-identical output for the same inputs.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read and validate the manifest and hash every input it names
//  2. Layout: Load datasets, build the component tree and lay it out on a
//     document of the requested size
//  3. Render: Serialize the document as SVG, PNG or a JSON layout dump
//
// Each stage can be run on its own or as part of Runner.Execute, which
// caches artifacts by the hash of the manifest and its data files.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ManifestPath: "chart.toml",
//	    Formats:      []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	in, err := pipeline.Parse(ctx, opts)
//	l, err := pipeline.BuildLayout(ctx, in, opts)
//	artifacts, err := pipeline.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackplot/pkg/cache"
	"github.com/matzehuels/stackplot/pkg/errors"
)

const (
	// DefaultScale is the PNG pixel density relative to the document size.
	DefaultScale = 2.0

	// MaxSize bounds the requested width and height in pixels.
	MaxSize = 8192.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON}

// Options configures a pipeline run. It supports JSON for server requests.
type Options struct {
	// Manifest is the manifest source. When empty it is read from
	// ManifestPath.
	Manifest     []byte `json:"-"`
	ManifestPath string `json:"manifest_path,omitempty"`

	// BaseDir resolves relative dataset paths. It defaults to the
	// directory of ManifestPath, or the working directory.
	BaseDir string `json:"base_dir,omitempty"`

	// Width and Height override the manifest's canvas size when set.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Formats   []string `json:"formats,omitempty"`
	Scale     float64  `json:"scale,omitempty"`
	EmbedFont bool     `json:"embed_font,omitempty"`
	AllowExpr bool     `json:"allow_expr,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// InputHash is the content hash of the manifest and its data files.
	InputHash string

	// Layout is the laid-out chart. It is nil when every artifact came
	// from the cache.
	Layout *Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Components int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Manifest) == 0 && o.ManifestPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "manifest or manifest path is required")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for _, v := range []struct {
		name  string
		value float64
	}{{"width", o.Width}, {"height", o.Height}, {"scale", o.Scale}} {
		if err := errors.ValidateNonNegative(v.name, v.value); err != nil {
			return err
		}
	}
	if o.Width > MaxSize || o.Height > MaxSize {
		return errors.New(errors.ErrCodeInvalidConfig, "size %gx%g exceeds %g", o.Width, o.Height, MaxSize)
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Width: o.Width, Height: o.Height}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
