package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cola/pkg/core/geom"
	"github.com/matzehuels/cola/pkg/core/layout"
	"github.com/matzehuels/cola/pkg/core/powergraph"
	"github.com/matzehuels/cola/pkg/errors"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/observability"
)

// Build converts g and opts into a layout ready to Start.
func Build(g graph.Graph, opts graph.Options, logger *log.Logger, observer layout.Observer) (*layout.Layout, layout.StartOptions, error) {
	cfg, start, err := opts.Config()
	if err != nil {
		return nil, layout.StartOptions{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout options")
	}
	lg, err := graph.ToLayout(g)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "graph")
		}
		return nil, layout.StartOptions{}, err
	}

	lopts := []layout.Option{}
	if logger != nil {
		lopts = append(lopts, layout.WithLogger(logger))
	}
	if observer != nil {
		lopts = append(lopts, layout.WithObserver(observer))
	}
	l, err := layout.New(lg, cfg, lopts...)
	if err != nil {
		return nil, layout.StartOptions{}, err
	}
	return l, start, nil
}

// Compute runs a layout without caching. It reports to the layout and
// route observability hooks.
func Compute(ctx context.Context, g graph.Graph, opts graph.Options, logger *log.Logger) (graph.Result, Stats, error) {
	if err := ctx.Err(); err != nil {
		return graph.Result{}, Stats{}, err
	}
	begin := time.Now()
	hooks := observability.Layout()
	obs := &hookObserver{ctx: ctx, hooks: hooks}

	l, start, err := Build(g, opts, logger, obs)
	if err != nil {
		return graph.Result{}, Stats{}, err
	}
	lg := l.Graph()
	hooks.OnLayoutStart(ctx, len(lg.Nodes), len(lg.Links))

	res, stats, err := run(ctx, l, start, g, opts, obs)
	stats.LayoutTime = time.Since(begin) - stats.RouteTime
	hooks.OnLayoutComplete(ctx, res.Stress, stats.LayoutTime, err)
	if err != nil {
		return graph.Result{}, stats, err
	}
	return res, stats, nil
}

func run(ctx context.Context, l *layout.Layout, start layout.StartOptions, src graph.Graph, opts graph.Options, obs *hookObserver) (graph.Result, Stats, error) {
	var stats Stats
	var pg *powergraph.Result

	if opts.PowerGraph {
		groups, err := l.PowerGraphGroups()
		if err != nil {
			return graph.Result{}, stats, err
		}
		pg = &groups
	}

	if err := l.Start(start); err != nil {
		return graph.Result{}, stats, err
	}
	obs.finish()
	if err := ctx.Err(); err != nil {
		return graph.Result{}, stats, err
	}

	res := graph.NewResult(l, src)
	if pg != nil {
		res.SetPowerGraph(*pg)
	}
	stats.NodeCount, stats.LinkCount, stats.GroupCount = len(res.Nodes), len(res.Links), len(res.Groups)

	if opts.Route.Enabled {
		routes, err := routeAll(ctx, l, opts.Route, &stats)
		if err != nil {
			return graph.Result{}, stats, err
		}
		res.SetRoutes(routes)
	}
	return res, stats, nil
}

func routeAll(ctx context.Context, l *layout.Layout, ro graph.RouteOptions, stats *Stats) ([][]geom.Point, error) {
	hooks := observability.Route()

	begin := time.Now()
	if err := l.PrepareEdgeRouting(ro.MarginOrDefault()); err != nil {
		return nil, err
	}
	vg := l.VisibilityGraph()
	hooks.OnPrepare(ctx, len(vg.Vertices()), vg.EdgeCount(), time.Since(begin))

	routed := time.Now()
	routes, err := l.RouteAll(ro.ArrowHeadOrDefault())
	hooks.OnRoute(ctx, len(routes), time.Since(routed), err)
	stats.RouteTime = time.Since(begin)
	if err != nil {
		return nil, err
	}
	for _, r := range routes {
		if r != nil {
			stats.RoutedLinks++
		}
	}
	return routes, nil
}

// hookObserver forwards phase timings to observability.LayoutHooks.
type hookObserver struct {
	layout.NopObserver

	ctx   context.Context
	hooks observability.LayoutHooks

	active     bool
	phase      layout.Phase
	iterations int
	began      time.Time
}

func (o *hookObserver) OnPhaseStart(e layout.PhaseEvent) {
	o.finish()
	o.active, o.phase, o.iterations, o.began = true, e.Phase, e.Iterations, time.Now()
}

// finish reports the phase in progress, if any.
func (o *hookObserver) finish() {
	if !o.active {
		return
	}
	o.hooks.OnPhase(o.ctx, o.phase.String(), o.iterations, time.Since(o.began))
	o.active = false
}
