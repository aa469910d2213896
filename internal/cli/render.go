package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackplot/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file (single format) or base path
	formats string // comma-separated output formats
	noCache bool
	quiet   bool
	pipe    pipeline.Options
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [chart.toml]",
		Short: "Render a chart manifest to SVG, PNG or JSON",
		Long: `Render a chart manifest to SVG, PNG or a JSON layout dump.

Data files named by the manifest are resolved relative to the manifest's
directory. Outputs are cached by the content of the manifest and its data
files, so re-rendering an unchanged chart is instant.

Without an argument in an interactive terminal, render offers the manifests
in the current directory to pick from.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeManifest,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			} else {
				picked, err := pickManifest(".")
				if err != nil {
					return err
				}
				input = picked
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.pipe.Width, "width", 0, "override the manifest width")
	cmd.Flags().Float64Var(&opts.pipe.Height, "height", 0, "override the manifest height")
	cmd.Flags().Float64Var(&opts.pipe.Scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().BoolVar(&opts.pipe.EmbedFont, "embed-font", false, "embed the bundled font in SVG output")
	cmd.Flags().BoolVar(&opts.pipe.AllowExpr, "allow-expr", false, "evaluate expr attributes in the manifest")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.pipe.Refresh, "refresh", false, "re-render even if cached")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, input string, opts renderOpts) error {
	opts.pipe.ManifestPath = input
	opts.pipe.Formats = parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(opts.pipe.Formats); err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	toStdout := opts.output == "-"
	var spinner *Spinner
	if !opts.quiet && !toStdout {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(input)))
		spinner.Start()
	}

	result, err := runner.Execute(ctx, opts.pipe)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError(fmt.Sprintf("Failed to render %s", filepath.Base(input)))
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}

	if toStdout {
		if len(opts.pipe.Formats) != 1 {
			return fmt.Errorf("writing to stdout needs exactly one format")
		}
		_, err := stdout.Write(result.Artifacts[opts.pipe.Formats[0]])
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.pipe.Formats, opts.output, input)
	if err != nil {
		return err
	}

	if opts.quiet {
		return nil
	}
	printSuccess("Rendered %s", filepath.Base(input))
	printStats(result.Stats.Rows, result.Stats.Components, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	printNextStep("Inspect the layout", fmt.Sprintf("%s layout %s", appName, input))
	return nil
}

// writeArtifacts writes each artifact next to the input, or to output, and
// returns the written paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	single := len(formats) == 1 && output != "" && filepath.Ext(output) != ""
	base := basePath(output, input)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + "." + format
		if single {
			path = output
		}
		if err := writeFile(path, artifacts[format]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = out.Write(data)
	return err
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	for _, f := range pipeline.ValidFormats {
		if ext == "."+f {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// openOutput opens path for writing, or returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
