package layout

import (
	stderrors "errors"

	"github.com/matzehuels/cola/pkg/core/geom"
	"github.com/matzehuels/cola/pkg/core/router"
	"github.com/matzehuels/cola/pkg/errors"
)

// DefaultArrowHead is the arrowhead clearance routes leave at their end.
const DefaultArrowHead = 5

// PrepareEdgeRouting builds the visibility graph over the current node
// rectangles, with corners pushed out by margin. Any later tick discards
// it.
func (l *Layout) PrepareEdgeRouting(margin float64) error {
	if !l.started {
		return errors.New(errors.ErrCodeNotReady, "prepare edge routing before start")
	}
	obstacles := make([]geom.Rect, len(l.graph.Nodes))
	for i, nd := range l.graph.Nodes {
		obstacles[i] = nd.Bounds()
	}
	vg, err := router.NewVisibilityGraph(obstacles, margin)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "prepare edge routing")
	}
	l.vg = vg
	l.logger.Debug("visibility graph ready", "vertices", len(vg.Vertices()), "edges", vg.EdgeCount())
	return nil
}

// VisibilityGraph returns the prepared routing graph, or nil.
func (l *Layout) VisibilityGraph() *router.VisibilityGraph { return l.vg }

// RouteEdge returns the route of link i: a polyline from the source
// boundary around the other nodes to arrowHead short of the target
// boundary. PrepareEdgeRouting must have been called since the last tick.
func (l *Layout) RouteEdge(i int, arrowHead float64) ([]geom.Point, error) {
	if l.vg == nil {
		return nil, errors.New(errors.ErrCodeNotReady, "edge routing is not prepared")
	}
	if err := errors.ValidateIndex("link", i, len(l.graph.Links)); err != nil {
		return nil, err
	}
	lk := l.graph.Links[i]
	if lk.Source == lk.Target {
		return nil, errors.New(errors.ErrCodeUnsupported, "link %d is a self loop", i)
	}
	route, err := l.vg.Route(lk.Source, lk.Target, arrowHead)
	if err != nil {
		code := errors.ErrCodeInternal
		if stderrors.Is(err, router.ErrNoRoute) {
			code = errors.ErrCodeInvalidInput
		}
		return nil, errors.Wrap(code, err, "route link %d", i)
	}
	return route, nil
}

// RouteAll routes every link. Self loops get a nil route.
func (l *Layout) RouteAll(arrowHead float64) ([][]geom.Point, error) {
	routes := make([][]geom.Point, len(l.graph.Links))
	for i, lk := range l.graph.Links {
		if lk.Source == lk.Target {
			continue
		}
		r, err := l.RouteEdge(i, arrowHead)
		if err != nil {
			return nil, err
		}
		routes[i] = r
	}
	return routes, nil
}
