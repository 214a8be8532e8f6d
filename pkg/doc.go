// Package pkg provides the libraries behind cola, a constrained graph
// layout engine.
//
// # Overview
//
// cola places the nodes of a node-link graph in the plane by stress
// majorization: linked nodes settle at their ideal link lengths while
// separation and alignment constraints, non-overlap of node boxes and
// hierarchical groups are enforced by projecting every step onto the
// feasible region. The pkg directory is organized into four areas:
//
//  1. [core] - The layout engine (distances, descent, projection, routing)
//  2. [graph] - Serialization types for graphs, options and results
//  3. [pipeline] - Orchestration (layout, route, render) with caching
//  4. [render] - Drawing finished layouts with Graphviz
//
// # Architecture
//
// The typical data flow through cola:
//
//	graph.json + options.toml
//	         ↓
//	    [graph] package (decode, resolve node IDs)
//	         ↓
//	    [core/layout] package (phases, ticks, packing)
//	         ↓
//	    [core/router] package (optional edge routing)
//	         ↓
//	    layout.json → [render/nodelink] → SVG/PNG/PDF/DOT
//
// # Quick Start
//
// Lay out a small graph with non-overlapping nodes:
//
//	import (
//	    "github.com/matzehuels/cola/pkg/core/layout"
//	)
//
//	g := layout.Graph{
//	    Nodes: []layout.Node{{Width: 30, Height: 20}, {Width: 30, Height: 20}},
//	    Links: []layout.Link{{Source: 0, Target: 1}},
//	}
//	cfg := layout.DefaultConfig()
//	cfg.AvoidOverlaps = true
//
//	l, _ := layout.New(g, cfg)
//	_ = l.Start(layout.DefaultStartOptions())
//	fmt.Println(l.Positions())
//
// # Main Packages
//
// ## Core Engine
//
// [core/distance] - All-pairs shortest paths and the symmetric-difference
// and Jaccard link length models.
//
// [core/descent] - Stress majorization by gradient descent with
// Runge-Kutta steps, locks and grid snapping.
//
// [core/vpsc] - The variable placement with separation constraints solver
// and the overlap constraint generators.
//
// [core/flow] - Separation constraints that make links point along an axis.
//
// [core/powergraph] - Power graph decomposition: groups of nodes with shared
// neighbours and the power edges between them.
//
// [core/router] - Visibility graph over node corners and shortest-path edge
// routing.
//
// [core/layout] - The layout controller tying the above together with
// start, tick, resume and stop.
//
// [core/geom] - Points, rectangles and line intersection helpers.
//
// ## Serialization
//
// [graph] - JSON node-link format for input graphs and results, and TOML
// layout options.
//
// ## Infrastructure
//
// [pipeline] - Layout, route and render used by the CLI and the HTTP server.
// Ensures consistent behavior across all entry points.
//
// [cache] - File, Redis and null caches for layouts and rendered artifacts.
//
// [errors] - Structured error codes shared by the library, CLI and server.
//
// [observability] - Hooks for layout, routing, cache and server metrics.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/vpsc/...          # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core
// [core/distance]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/distance
// [core/descent]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/descent
// [core/vpsc]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/vpsc
// [core/flow]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/flow
// [core/powergraph]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/powergraph
// [core/router]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/router
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/layout
// [core/geom]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/core/geom
// [graph]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cola/pkg/observability
package pkg
