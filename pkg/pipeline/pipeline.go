// Package pipeline runs layouts for the CLI and the HTTP server.
//
// This package wires the layout engine to caching, logging and the
// observability hooks so that every entry point computes layouts the same
// way.
//
// # Stages
//
//  1. Layout: convert the graph, optionally group it into a power graph,
//     run the constrained descent, and optionally route every link
//  2. Render: draw a finished layout in one of the nodelink formats
//
// Both stages are cached by content hash. Layouts are keyed by the graph
// and the options; artifacts are keyed by the layout and the format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	out, err := runner.Layout(ctx, g, graph.Options{AvoidOverlaps: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, err := runner.Render(ctx, out.Result, "svg", nodelink.Options{})
package pipeline

import (
	"time"

	"github.com/matzehuels/cola/pkg/graph"
)

// Output is the outcome of [Runner.Layout].
type Output struct {
	// Result is the finished layout.
	Result graph.Result

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit is true when Result came from the cache.
	CacheHit bool
}

// Stats contains layout statistics.
type Stats struct {
	NodeCount   int
	LinkCount   int
	GroupCount  int
	LayoutTime  time.Duration
	RouteTime   time.Duration
	RoutedLinks int
}
