// Package nodelink draws finished layouts as node-link diagrams.
//
// # Overview
//
// The layout engine decides where nodes go; Graphviz only draws them.
// [ToDOT] emits a neato graph where every node is pinned with
// pos="x,y!" and sized in inches, so Graphviz keeps the computed
// positions. Groups become dashed boxes drawn beneath their members, and
// routed links carry their polyline as a pos spline.
//
// # Usage
//
//	dot := nodelink.ToDOT(result, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [Render] dispatches on a format name ("svg", "png", "pdf", "dot",
// "json") and is what the CLI and the server call.
//
// # Coordinates
//
// Layout coordinates are treated as points (1/72 inch) with y growing
// downwards. Graphviz has y growing upwards, so ToDOT negates y.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process
// rendering. PDF output goes through SVG and requires librsvg.
package nodelink
