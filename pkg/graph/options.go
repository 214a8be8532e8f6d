package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cola/pkg/core/layout"
)

// =============================================================================
// Options - Layout Configuration Files
// =============================================================================

// Options is the file and wire form of the layout configuration. Zero
// values fall back to layout.DefaultConfig and layout.DefaultStartOptions.
//
// A TOML file looks like:
//
//	avoid_overlaps = true
//	link_distance = 60
//	flow = "y:40"
//	iterations = [10, 15, 20, 0]
//
//	[route]
//	enabled = true
//	margin = 4
type Options struct {
	AvoidOverlaps        bool        `toml:"avoid_overlaps" json:"avoid_overlaps,omitempty"`
	HandleDisconnected   *bool       `toml:"handle_disconnected" json:"handle_disconnected,omitempty"`
	LinkDistance         float64     `toml:"link_distance" json:"link_distance,omitempty"`
	LinkLengths          string      `toml:"link_lengths" json:"link_lengths,omitempty"`
	IdealLinkLength      float64     `toml:"ideal_link_length" json:"ideal_link_length,omitempty"`
	LinkLengthWeight     float64     `toml:"link_length_weight" json:"link_length_weight,omitempty"`
	ConvergenceThreshold float64     `toml:"convergence_threshold" json:"convergence_threshold,omitempty"`
	DefaultNodeSize      float64     `toml:"default_node_size" json:"default_node_size,omitempty"`
	GroupCompactness     float64     `toml:"group_compactness" json:"group_compactness,omitempty"`
	CanvasWidth          float64     `toml:"canvas_width" json:"canvas_width,omitempty"`
	CanvasHeight         float64     `toml:"canvas_height" json:"canvas_height,omitempty"`
	Flow                 string      `toml:"flow" json:"flow,omitempty"`
	Iterations           []int       `toml:"iterations" json:"iterations,omitempty"`
	DistanceMatrix       [][]float64 `toml:"distance_matrix" json:"distance_matrix,omitempty"`

	PowerGraph bool         `toml:"power_graph" json:"power_graph,omitempty"`
	Route      RouteOptions `toml:"route" json:"route,omitempty"`
}

// RouteOptions controls edge routing after the layout.
type RouteOptions struct {
	Enabled   bool     `toml:"enabled" json:"enabled,omitempty"`
	Margin    float64  `toml:"margin" json:"margin,omitempty"`
	ArrowHead *float64 `toml:"arrow_head" json:"arrow_head,omitempty"`
}

// DefaultRouteMargin is the corner margin used when routing is enabled
// without one.
const DefaultRouteMargin = 4

// LoadOptions reads options from a TOML file.
func LoadOptions(path string) (Options, error) {
	var o Options
	md, err := toml.DecodeFile(path, &o)
	if err != nil {
		return Options{}, fmt.Errorf("read %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Options{}, fmt.Errorf("read %s: unknown key %q", path, undec[0].String())
	}
	return o, nil
}

// ParseFlow parses "axis:separation", for example "y:40".
func ParseFlow(s string) (layout.Axis, float64, error) {
	axis, sep, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("flow %q: want axis:separation", s)
	}
	a, err := layout.ParseAxis(axis)
	if err != nil {
		return 0, 0, err
	}
	v, err := strconv.ParseFloat(sep, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("flow %q: %w", s, err)
	}
	return a, v, nil
}

// ParseIterations parses a comma-separated list of up to four phase
// iteration counts.
func ParseIterations(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 4 {
		return nil, fmt.Errorf("iterations %q: at most four phases", s)
	}
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("iterations %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// Config returns the layout configuration and phase counts.
func (o Options) Config() (layout.Config, layout.StartOptions, error) {
	cfg := layout.DefaultConfig()
	cfg.AvoidOverlaps = o.AvoidOverlaps
	if o.HandleDisconnected != nil {
		cfg.HandleDisconnected = *o.HandleDisconnected
	}
	setIf(&cfg.LinkDistance, o.LinkDistance)
	setIf(&cfg.ConvergenceThreshold, o.ConvergenceThreshold)
	setIf(&cfg.DefaultNodeSize, o.DefaultNodeSize)
	setIf(&cfg.GroupCompactness, o.GroupCompactness)
	setIf(&cfg.CanvasWidth, o.CanvasWidth)
	setIf(&cfg.CanvasHeight, o.CanvasHeight)

	ideal, w := o.IdealLinkLength, o.LinkLengthWeight
	if ideal == 0 {
		ideal = cfg.LinkDistance
	}
	if w == 0 {
		w = cfg.LinkLengthWeight
	}
	switch o.LinkLengths {
	case "", layout.LinkLengthConstant.String():
	case layout.LinkLengthSymmetricDiff.String():
		cfg = cfg.SymmetricDiffLinkLengths(ideal, w)
	case layout.LinkLengthJaccard.String():
		cfg = cfg.JaccardLinkLengths(ideal, w)
	default:
		return layout.Config{}, layout.StartOptions{}, fmt.Errorf("unknown link lengths %q", o.LinkLengths)
	}

	if o.Flow != "" {
		axis, sep, err := ParseFlow(o.Flow)
		if err != nil {
			return layout.Config{}, layout.StartOptions{}, err
		}
		cfg = cfg.FlowLayout(axis, sep)
	}
	cfg.DistanceMatrix = o.DistanceMatrix

	start := layout.DefaultStartOptions()
	if len(o.Iterations) > 4 {
		return layout.Config{}, layout.StartOptions{}, fmt.Errorf("at most four phase iteration counts, got %d", len(o.Iterations))
	}
	phases := []*int{&start.Unconstrained, &start.UserConstraint, &start.AllConstraints, &start.GridSnap}
	for i, n := range o.Iterations {
		*phases[i] = n
	}
	return cfg, start, nil
}

// ArrowHeadOrDefault returns the configured arrowhead clearance.
func (o RouteOptions) ArrowHeadOrDefault() float64 {
	if o.ArrowHead != nil {
		return *o.ArrowHead
	}
	return layout.DefaultArrowHead
}

// MarginOrDefault returns the configured corner margin.
func (o RouteOptions) MarginOrDefault() float64 {
	if o.Margin > 0 {
		return o.Margin
	}
	return DefaultRouteMargin
}

func setIf(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
