package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cola/pkg/core/layout"
	"github.com/matzehuels/cola/pkg/graph"
)

// Route routes the links of a finished layout without moving any node.
// Existing routes are replaced.
func Route(ctx context.Context, res graph.Result, ro graph.RouteOptions, logger *log.Logger) (graph.Result, Stats, error) {
	var stats Stats
	if err := ctx.Err(); err != nil {
		return graph.Result{}, stats, err
	}
	g := res.Graph()
	// Groups only matter to the descent; routing goes around nodes.
	g.Groups = nil

	l, _, err := Build(g, graph.Options{}, logger, nil)
	if err != nil {
		return graph.Result{}, stats, err
	}
	if err := l.Start(layout.StartOptions{}); err != nil {
		return graph.Result{}, stats, err
	}
	routes, err := routeAll(ctx, l, ro, &stats)
	if err != nil {
		return graph.Result{}, stats, err
	}

	out := res
	out.SetRoutes(routes)
	stats.NodeCount, stats.LinkCount, stats.GroupCount = len(res.Nodes), len(res.Links), len(res.Groups)
	return out, stats, nil
}
