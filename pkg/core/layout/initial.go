package layout

// flatIdealLength is the ideal link length of the auxiliary layout that
// seeds grouped graphs.
const flatIdealLength = 5

// initialGroupLayout seeds x and y for a grouped graph with an
// unconstrained layout in which every group is a plain node linked to its
// members.
func (l *Layout) initialGroupLayout(iterations int, x, y []float64) error {
	n := len(l.graph.Nodes)
	flat := Graph{
		Nodes: make([]Node, n+len(l.graph.Groups)),
		Links: make([]Link, 0, len(l.graph.Links)),
	}
	for _, lk := range l.graph.Links {
		flat.Links = append(flat.Links, Link{Source: lk.Source, Target: lk.Target})
	}
	for k, g := range l.graph.Groups {
		for _, v := range g.Leaves {
			flat.Links = append(flat.Links, Link{Source: n + k, Target: v})
		}
		for _, c := range g.Groups {
			flat.Links = append(flat.Links, Link{Source: n + k, Target: n + c})
		}
	}

	cfg := DefaultConfig().SymmetricDiffLinkLengths(flatIdealLength, 1)
	cfg.LinkDistance = l.cfg.LinkDistance
	cfg.ConvergenceThreshold = 1e-4
	cfg.CanvasWidth, cfg.CanvasHeight = l.cfg.CanvasWidth, l.cfg.CanvasHeight
	sub, err := New(flat, cfg, WithLogger(l.logger))
	if err != nil {
		return err
	}
	if err := sub.Start(StartOptions{Unconstrained: iterations, CenterGraph: true}); err != nil {
		return err
	}
	for i, p := range sub.Positions()[:n] {
		x[i], y[i] = p.X, p.Y
	}
	return nil
}
