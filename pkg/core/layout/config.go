package layout

import (
	"math"

	"github.com/matzehuels/cola/pkg/errors"
)

// LinkLengthMode selects how ideal link lengths are derived.
type LinkLengthMode int

const (
	// LinkLengthConstant uses Link.Length, LinkLength or LinkDistance.
	LinkLengthConstant LinkLengthMode = iota

	// LinkLengthSymmetricDiff lengthens links between nodes whose
	// neighbourhoods differ.
	LinkLengthSymmetricDiff

	// LinkLengthJaccard lengthens links between nodes whose
	// neighbourhoods overlap.
	LinkLengthJaccard
)

func (m LinkLengthMode) String() string {
	switch m {
	case LinkLengthSymmetricDiff:
		return "symmetric-diff"
	case LinkLengthJaccard:
		return "jaccard"
	default:
		return "constant"
	}
}

// FlowConfig orders linked nodes along an axis.
type FlowConfig struct {
	Axis Axis

	// Separation is the minimum gap from source to target.
	Separation float64

	// SeparationFunc, when set, overrides Separation per link.
	SeparationFunc func(Link) float64
}

// Config holds the layout tunables.
type Config struct {
	// AvoidOverlaps keeps node and group rectangles apart in the
	// all-constraints and grid-snap phases.
	AvoidOverlaps bool

	// HandleDisconnected packs disconnected components side by side.
	HandleDisconnected bool

	// LinkDistance is the ideal length of a link.
	LinkDistance float64

	// LinkLength, when set, gives the ideal length of each link instead of
	// LinkDistance. Link.Length overrides both.
	LinkLength func(Link) float64

	// LinkType, when set, gives the power graph type of each link instead
	// of Link.Type.
	LinkType func(Link) int

	LinkLengthMode   LinkLengthMode
	IdealLinkLength  float64
	LinkLengthWeight float64

	// ConvergenceThreshold stops a phase once stress changes by less than
	// this fraction, and ends ticking once alpha falls below it.
	ConvergenceThreshold float64

	// DefaultNodeSize stands in for unsized nodes when packing and grid
	// snapping.
	DefaultNodeSize float64

	// GroupCompactness pulls each group's boundaries together.
	GroupCompactness float64

	CanvasWidth, CanvasHeight float64

	Flow *FlowConfig

	// DistanceMatrix, when set, replaces the distances derived from the
	// links. It must be n by n.
	DistanceMatrix [][]float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HandleDisconnected:   true,
		LinkDistance:         20,
		IdealLinkLength:      1,
		LinkLengthWeight:     1,
		ConvergenceThreshold: 1e-2,
		DefaultNodeSize:      10,
		GroupCompactness:     1e-6,
		CanvasWidth:          1,
		CanvasHeight:         1,
	}
}

// FlowLayout returns a copy of c ordering links along axis with a minimum
// separation of sep.
func (c Config) FlowLayout(axis Axis, sep float64) Config {
	c.Flow = &FlowConfig{Axis: axis, Separation: sep}
	return c
}

// SymmetricDiffLinkLengths returns a copy of c using the symmetric
// difference heuristic.
func (c Config) SymmetricDiffLinkLengths(ideal, w float64) Config {
	c.LinkLengthMode = LinkLengthSymmetricDiff
	c.IdealLinkLength, c.LinkLengthWeight = ideal, w
	return c
}

// JaccardLinkLengths returns a copy of c using the Jaccard heuristic.
func (c Config) JaccardLinkLengths(ideal, w float64) Config {
	c.LinkLengthMode = LinkLengthJaccard
	c.IdealLinkLength, c.LinkLengthWeight = ideal, w
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"link distance", c.LinkDistance},
		{"convergence threshold", c.ConvergenceThreshold},
		{"default node size", c.DefaultNodeSize},
	}
	for _, p := range positive {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %v", p.name, p.v)
		}
	}
	nonNeg := []struct {
		name string
		v    float64
	}{
		{"group compactness", c.GroupCompactness},
		{"canvas width", c.CanvasWidth},
		{"canvas height", c.CanvasHeight},
		{"ideal link length", c.IdealLinkLength},
		{"link length weight", c.LinkLengthWeight},
	}
	for _, p := range nonNeg {
		if err := errors.ValidateNonNegative(p.name, p.v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid %s", p.name)
		}
	}
	switch c.LinkLengthMode {
	case LinkLengthConstant, LinkLengthSymmetricDiff, LinkLengthJaccard:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown link length mode %d", c.LinkLengthMode)
	}
	if f := c.Flow; f != nil {
		if f.Axis != AxisX && f.Axis != AxisY {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown flow axis %d", f.Axis)
		}
		if err := errors.ValidateFinite("flow separation", f.Separation); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid flow separation")
		}
	}
	return nil
}
