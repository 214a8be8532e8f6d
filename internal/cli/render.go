package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file path (or base path for multiple outputs)
	formats []string // output formats: "svg", "png", "pdf", "dot", "json"
	noCache bool
	draw    nodelink.Options
}

// renderCommand creates the render command for drawing finished layouts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		noLabels   bool
		opts       renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Draw a finished layout as SVG, PNG, PDF or DOT",
		Long: `Draw a finished layout as SVG, PNG, PDF or DOT.

Nodes are pinned at the positions stored in layout.json and drawn with
Graphviz; routed links follow their routes. PDF output needs rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			opts.draw.Labels = !noLabels
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format only)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output formats: svg (default), png, pdf, dot, json")
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "draw nodes without labels")
	cmd.Flags().BoolVar(&opts.draw.HideGroups, "no-groups", false, "do not draw group boxes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	for _, f := range opts.formats {
		if !nodelink.ValidFormats[f] {
			return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, dot, json)", f)
		}
	}
	if opts.output != "" && len(opts.formats) > 1 {
		return fmt.Errorf("--output needs a single format, got %d", len(opts.formats))
	}

	res, err := graph.ReadResultFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var written []string
	for _, format := range opts.formats {
		data, err := runner.Render(ctx, res, format, opts.draw)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		suffix := format
		if format == nodelink.FormatJSON {
			// graph.json and graph.layout.json are likely inputs.
			suffix = "render.json"
		}
		path := outputPath(opts.output, input, suffix)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("rendered", "format", format, "bytes", len(data), "path", path)
		written = append(written, path)
	}

	printSuccess("Rendered %d file(s)", len(written))
	for _, p := range written {
		printFile(p)
	}
	return nil
}
