package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/render"
)

// pointsPerInch converts layout units to Graphviz sizes.
const pointsPerInch = 72.0

// Output formats understood by [Render].
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Options configures node-link diagram rendering.
type Options struct {
	// Labels shows node labels. When false, nodes are drawn empty.
	Labels bool

	// HideGroups skips the group boxes.
	HideGroups bool
}

// ToDOT converts a finished layout to Graphviz DOT for the neato engine.
// Nodes are pinned at their computed centres.
func ToDOT(r graph.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  outputorder=nodesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	if !opts.HideGroups {
		for i, g := range r.Groups {
			if g.Bounds.Width == 0 && g.Bounds.Height == 0 {
				continue
			}
			cx := g.Bounds.X + g.Bounds.Width/2
			cy := g.Bounds.Y + g.Bounds.Height/2
			fmt.Fprintf(&buf, "  %q [%s];\n", groupID(i), strings.Join([]string{
				`label=""`,
				`style="rounded,dashed"`,
				"color=grey",
				pinAttr(cx, cy),
				sizeAttrs(g.Bounds.Width, g.Bounds.Height),
			}, ", "))
		}
		if len(r.Groups) > 0 {
			buf.WriteString("\n")
		}
	}

	for i, n := range r.Nodes {
		label := ""
		if opts.Labels {
			label = n.DisplayLabel()
		}
		attrs := []string{fmt.Sprintf("label=%q", label), pinAttr(n.X, n.Y), sizeAttrs(n.Width, n.Height)}
		if n.Fixed {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(i), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, lk := range r.Links {
		var attrs []string
		if i < len(r.Routes) && len(r.Routes[i]) >= 2 {
			attrs = append(attrs, fmt.Sprintf("pos=%q", splinePos(r.Routes[i])))
		}
		if lk.Source.Index == lk.Target.Index {
			attrs = append(attrs, "dir=none")
		}
		fmt.Fprintf(&buf, "  %q -> %q", nodeID(lk.Source.Index), nodeID(lk.Target.Index))
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(i int) string  { return "n" + strconv.Itoa(i) }
func groupID(i int) string { return "g" + strconv.Itoa(i) }

func pinAttr(x, y float64) string {
	return fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(-y))
}

func sizeAttrs(w, h float64) string {
	return fmt.Sprintf("width=%s, height=%s", fmtFloat(w/pointsPerInch), fmtFloat(h/pointsPerInch))
}

// splinePos writes a polyline as a Graphviz spline: every segment becomes
// a cubic with both control points on the segment end.
func splinePos(route []graph.Point) string {
	parts := []string{fmtPoint(route[0])}
	for _, p := range route[1:] {
		parts = append(parts, fmtPoint(p), fmtPoint(p), fmtPoint(p))
	}
	return strings.Join(parts, " ")
}

func fmtPoint(p graph.Point) string {
	return fmtFloat(p.X) + "," + fmtFloat(-p.Y)
}

func fmtFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG with the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderGraphviz(ctx, dot, graphviz.PNG)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Render produces the named format for a finished layout.
func Render(ctx context.Context, r graph.Result, format string, opts Options) ([]byte, error) {
	if format == FormatJSON {
		return graph.MarshalResult(r)
	}
	dot := ToDOT(r, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPNG:
		return RenderPNG(ctx, dot)
	case FormatPDF:
		return RenderPDF(ctx, dot)
	default:
		return nil, fmt.Errorf("unsupported format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
