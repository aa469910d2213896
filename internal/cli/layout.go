package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackplot/pkg/component"
	"github.com/matzehuels/stackplot/pkg/pipeline"
)

// layoutCommand creates the layout command for inspecting component bounds.
func (c *CLI) layoutCommand() *cobra.Command {
	var asJSON bool
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "layout [chart.toml]",
		Short: "Print the component tree of a chart",
		Long: `Lay out a chart manifest and print every component with the space it
was given. Use --json for the same dump that 'render -f json' produces.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeManifest,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ManifestPath = args[0]
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), opts, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "override the manifest width")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "override the manifest height")
	cmd.Flags().BoolVar(&opts.AllowExpr, "allow-expr", false, "evaluate expr attributes in the manifest")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, w io.Writer, opts pipeline.Options, asJSON bool) error {
	opts.Logger = loggerFromContext(ctx)
	prog := newProgress(opts.Logger)

	in, err := pipeline.Parse(ctx, opts)
	if err != nil {
		return err
	}
	l, err := pipeline.BuildLayout(ctx, in, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d components", l.Components()))

	desc := component.Describe(l.Chart.Root)
	if asJSON {
		data, err := json.MarshalIndent(pipeline.LayoutDump{Width: l.Width, Height: l.Height, Root: desc}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	_, err = fmt.Fprintln(w, layoutTree(desc))
	return err
}

var (
	styleTreeKind   = lipgloss.NewStyle().Foreground(colorCyan)
	styleTreeBounds = lipgloss.NewStyle().Foreground(colorGray)
)

// layoutTree renders d as an indented tree of kinds and bounds.
func layoutTree(d component.Description) *tree.Tree {
	t := tree.Root(describeLine(d)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, child := range d.Children {
		if len(child.Children) == 0 {
			t.Child(describeLine(child))
			continue
		}
		t.Child(layoutTree(child))
	}
	return t
}

func describeLine(d component.Description) string {
	return styleTreeKind.Render(d.Kind) + " " +
		styleTreeBounds.Render(fmt.Sprintf("%.0fx%.0f at (%.0f, %.0f)", d.Width, d.Height, d.X, d.Y))
}
