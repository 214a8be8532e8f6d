package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cola/pkg/core/layout"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/pipeline"
)

// routeCommand creates the route command, which routes the links of an
// existing layout around its nodes.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		output    string
		margin    float64
		arrowHead float64
	)

	cmd := &cobra.Command{
		Use:   "route [layout.json]",
		Short: "Route the links of a finished layout around its nodes",
		Long: `Route the links of a finished layout around its nodes.

Links are drawn as shortest paths through a visibility graph over the node
corners, expanded by --margin. Node positions are not changed. The routed
layout replaces the input unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ro := graph.RouteOptions{Enabled: true, Margin: margin}
			if cmd.Flags().Changed("arrow-head") {
				ro.ArrowHead = &arrowHead
			}
			return c.runRoute(cmd.Context(), args[0], output, ro)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().Float64Var(&margin, "margin", graph.DefaultRouteMargin, "clearance around node corners")
	cmd.Flags().Float64Var(&arrowHead, "arrow-head", layout.DefaultArrowHead, "gap left before the target for an arrowhead")

	return cmd
}

func (c *CLI) runRoute(ctx context.Context, input, output string, ro graph.RouteOptions) error {
	res, err := graph.ReadResultFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	prog := newProgress(c.Logger)
	routed, stats, err := pipeline.Route(ctx, res, ro, c.Logger)
	if err != nil {
		return fmt.Errorf("route links: %w", err)
	}
	prog.done(fmt.Sprintf("Routed %d links", stats.RoutedLinks))

	path := output
	if path == "" {
		path = input
	}
	if err := graph.WriteResultFile(routed, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Routing complete")
	printFile(path)
	printStats(stats, false)
	return nil
}
