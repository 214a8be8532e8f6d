// Package render turns finished layouts into images.
//
// # Overview
//
// The [nodelink] subpackage draws a positioned [graph.Result] with
// Graphviz, pinning every node where the layout put it. This package holds
// the format conversion shared by renderers.
//
// # Format Conversion
//
// [ToPDF] converts SVG to PDF using the external rsvg-convert tool (from
// librsvg):
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/cola/pkg/render/nodelink
// [graph.Result]: github.com/matzehuels/cola/pkg/graph.Result
package render
