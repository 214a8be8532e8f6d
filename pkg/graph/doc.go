// Package graph provides serialization types for layout input and output.
//
// This package defines the canonical wire format for cola's graph data,
// used for JSON files, API requests and responses, and caching.
//
// # Architecture
//
// The package sits at the serialization boundary between the layout engine
// and external formats:
//
//   - [Graph], [Result], [Options]: Serialization types (this package)
//   - pkg/core/layout.Graph: Internal layout input
//   - pkg/core/layout.Config: Internal tunables
//
// Use [ToLayout]/[FromLayout] and [Options.Config] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. Link ends are node indices or node
// IDs; positions are optional:
//
//	{
//	  "nodes": [{"id": "a", "width": 30, "height": 20}, {"id": "b", "x": 100, "y": 0}],
//	  "links": [{"source": "a", "target": "b"}],
//	  "groups": [{"leaves": [0, 1], "padding": 10}],
//	  "constraints": [{"type": "separation", "axis": "y", "left": 0, "right": 1, "gap": 40}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.json")   // File → Graph
//	lg, _ := graph.ToLayout(g)                  // Graph → layout.Graph
//	data, _ := graph.MarshalGraph(g)            // Graph → []byte
//
// # Result Serialization
//
// A [Result] holds final node centres, group bounds, optional edge routes
// and power edges:
//
//	res := graph.NewResult(l, g)
//	res.SetRoutes(routes)
//	graph.WriteResultFile(res, "layout.json")
//
// # Options
//
// [Options] carries the layout configuration in TOML files and API
// requests. See [LoadOptions].
package graph
