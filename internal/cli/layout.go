package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cola/pkg/graph"
)

// layoutCommand creates the layout command for computing graph layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a constrained layout for a graph",
		Long: `Compute a constrained layout for a graph.

The layout command reads a graph.json file with nodes, links, groups and
constraints and writes the computed positions as layout.json. The result
can be drawn with 'render', or routed later with 'route'.

Options come from --config (TOML) and are overridden by flags.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd.Flags())

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts graph.Options, output string, noCache bool) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	if opts.Route.Enabled && !opts.AvoidOverlaps {
		printWarning("Routing without --avoid-overlaps: overlapping nodes may be routed through")
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	out, err := runner.Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := outputPath(output, input, "layout.json")
	if err := graph.WriteResultFile(out.Result, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	c.Logger.Debug("layout written", "path", path, "stress", out.Result.Stress, "run", out.Result.RunID)

	printSuccess("Layout complete")
	printFile(path)
	printStats(out.Stats, out.CacheHit)
	printNewline()
	printNextStep("Render", "cola render "+path)

	return nil
}
