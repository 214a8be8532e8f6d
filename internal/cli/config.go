package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/cola/pkg/graph"
)

// layoutFlags holds the layout options shared by layout, watch and serve.
// Flags override values read from --config.
type layoutFlags struct {
	config        string
	avoidOverlaps bool
	linkDistance  float64
	linkLengths   string
	flow          string
	iterations    string
	powerGraph    bool
	route         bool
	routeMargin   float64
}

func (f *layoutFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.config, "config", "", "TOML file with layout options")
	fs.BoolVar(&f.avoidOverlaps, "avoid-overlaps", false, "keep node boxes from overlapping")
	fs.Float64Var(&f.linkDistance, "link-distance", 0, "ideal link length (default 20)")
	fs.StringVar(&f.linkLengths, "link-lengths", "", "link length model: constant, symmetric-diff, jaccard")
	fs.StringVar(&f.flow, "flow", "", "directed flow as axis:separation, e.g. y:40")
	fs.StringVar(&f.iterations, "iterations", "", "iterations per phase, e.g. 10,15,20,0")
	fs.BoolVar(&f.powerGraph, "power-graph", false, "group nodes by power graph decomposition")
	fs.BoolVar(&f.route, "route", false, "route links around nodes")
	fs.Float64Var(&f.routeMargin, "route-margin", 0, "corner margin for routing")
}

// options loads --config and applies the flags that were set on cmd.
func (f *layoutFlags) options(cmd *cobra.Command) (graph.Options, error) {
	var opts graph.Options
	if f.config != "" {
		o, err := graph.LoadOptions(f.config)
		if err != nil {
			return graph.Options{}, err
		}
		opts = o
	}

	changed := cmd.Flags().Changed
	if changed("avoid-overlaps") {
		opts.AvoidOverlaps = f.avoidOverlaps
	}
	if changed("link-distance") {
		opts.LinkDistance = f.linkDistance
	}
	if changed("link-lengths") {
		opts.LinkLengths = f.linkLengths
	}
	if changed("flow") {
		opts.Flow = f.flow
	}
	if changed("iterations") {
		its, err := graph.ParseIterations(f.iterations)
		if err != nil {
			return graph.Options{}, err
		}
		opts.Iterations = its
	}
	if changed("power-graph") {
		opts.PowerGraph = f.powerGraph
	}
	if changed("route") {
		opts.Route.Enabled = f.route
	}
	if changed("route-margin") {
		opts.Route.Margin = f.routeMargin
	}
	return opts, nil
}
