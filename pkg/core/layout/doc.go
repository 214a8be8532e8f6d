// Package layout positions graphs under constraints.
//
// A [Layout] owns a copy of the input [Graph]. [Layout.Start] derives the
// ideal distance between every pair of nodes from the links, then runs
// stress majorization in four phases, each skipped when its iteration
// count is zero:
//
//  1. Unconstrained: plain stress descent. With groups, positions are
//     seeded from an auxiliary layout in which each group is a node.
//  2. User constraints: separation and alignment constraints, plus flow
//     constraints when [Config.Flow] is set.
//  3. All constraints: the above plus non-overlap and group containment
//     when [Config.AvoidOverlaps] is set.
//  4. Grid snap: nodes are pulled towards the centres of a grid sized by
//     the first node.
//
// Disconnected components are packed into shelves after the second and
// the last phase, unless [Config.HandleDisconnected] is off.
//
// # Driving a layout
//
// Start blocks until all phases are done. With
// [StartOptions.KeepRunning] the layout keeps some energy (alpha) and a
// caller may continue it one step at a time:
//
//	l, err := layout.New(g, layout.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	opts := layout.DefaultStartOptions()
//	opts.KeepRunning = true
//	if err := l.Start(opts); err != nil {
//	    return err
//	}
//	for {
//	    st, err := l.Tick()
//	    if err != nil || st != layout.StatusRunning {
//	        break
//	    }
//	    draw(l.Positions())
//	}
//
// [Layout.Stop] ends the run at the next tick and [Layout.Resume] restarts
// it. [Layout.Run] ticks until the run ends or its context is done. An
// [Observer] passed with [WithObserver] hears about phases and ticks.
//
// # Routing
//
// After Start, [Layout.PrepareEdgeRouting] builds a visibility graph over
// the node rectangles and [Layout.RouteEdge] returns an obstacle avoiding
// polyline for a link. Ticking discards the visibility graph.
//
// # Errors
//
// Invalid input is rejected by [New] and [Layout.Configure] with
// INVALID_INPUT or INVALID_CONFIG before anything is changed. Constraints
// that cannot be satisfied together fail the phase with
// INFEASIBLE_CONSTRAINTS.
//
// A Layout is not safe for concurrent use.
package layout
