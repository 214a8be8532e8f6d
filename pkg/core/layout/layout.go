package layout

import (
	stderrors "errors"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cola/pkg/core/descent"
	"github.com/matzehuels/cola/pkg/core/distance"
	"github.com/matzehuels/cola/pkg/core/flow"
	"github.com/matzehuels/cola/pkg/core/geom"
	"github.com/matzehuels/cola/pkg/core/router"
	"github.com/matzehuels/cola/pkg/core/vpsc"
	"github.com/matzehuels/cola/pkg/errors"
)

const (
	// resumeAlpha is the energy a resumed layout restarts with.
	resumeAlpha = 0.1

	// groupIdealDistance is the ideal gap between a group's min and max
	// boundary variables.
	groupIdealDistance = 0.1

	// repelOnly marks pairs that push apart when too close but never pull
	// together.
	repelOnly = 2

	snapStrength = 1000
)

// StartOptions sets the iteration count of each phase of Start. A count of
// 0 skips the phase.
type StartOptions struct {
	Unconstrained  int
	UserConstraint int
	AllConstraints int
	GridSnap       int

	// KeepRunning leaves the layout with energy to continue under Tick.
	KeepRunning bool

	// CenterGraph moves the packed result to the centre of the canvas.
	CenterGraph bool
}

// DefaultStartOptions returns the phase counts used by the CLI.
func DefaultStartOptions() StartOptions {
	return StartOptions{
		Unconstrained:  10,
		UserConstraint: 15,
		AllConstraints: 20,
		CenterGraph:    true,
	}
}

// Layout positions a graph. It is not safe for concurrent use: the
// goroutine that calls Start also drives Tick.
type Layout struct {
	cfg      Config
	graph    Graph
	logger   *log.Logger
	observer Observer

	descent *descent.Descent
	proj    *projection
	dist    *distance.Result
	pins    [][2]float64

	started bool
	stopped bool
	alpha   float64
	stress  float64

	vg *router.VisibilityGraph
}

// New validates g and cfg and returns a layout over a copy of g. Links
// given by node ID are resolved here. If g has links but no nodes, nodes
// are created for every index the links use.
func New(g Graph, cfg Config, opts ...Option) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gc := g.clone()
	if err := gc.ResolveLinks(); err != nil {
		return nil, err
	}
	if len(gc.Nodes) == 0 {
		gc.synthesizeNodes()
	}
	if err := validateGraph(&gc); err != nil {
		return nil, err
	}
	if cfg.DistanceMatrix != nil {
		if err := errors.ValidateMatrix(cfg.DistanceMatrix, len(gc.Nodes)); err != nil {
			return nil, err
		}
	}
	l := &Layout{
		cfg:      cfg,
		graph:    gc,
		logger:   log.New(io.Discard),
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Config returns the current configuration.
func (l *Layout) Config() Config { return l.cfg }

// Configure replaces the configuration. It takes effect at the next Start.
func (l *Layout) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DistanceMatrix != nil {
		if err := errors.ValidateMatrix(cfg.DistanceMatrix, len(l.graph.Nodes)); err != nil {
			return err
		}
	}
	l.cfg = cfg
	return nil
}

// Graph returns a copy of the graph with current positions and group
// bounds.
func (l *Layout) Graph() Graph { return l.graph.clone() }

// Alpha returns the current energy. A layout with zero alpha is at rest.
func (l *Layout) Alpha() float64 { return l.alpha }

// Stress returns the stress after the last phase or tick.
func (l *Layout) Stress() float64 { return l.stress }

// Positions returns the node centres.
func (l *Layout) Positions() []geom.Point {
	ps := make([]geom.Point, len(l.graph.Nodes))
	for i, n := range l.graph.Nodes {
		ps[i] = geom.Point{X: n.X, Y: n.Y}
	}
	return ps
}

func (l *Layout) linkLength(lk Link) float64 {
	switch {
	case lk.Length > 0:
		return lk.Length
	case l.cfg.LinkLength != nil:
		return l.cfg.LinkLength(lk)
	default:
		return l.cfg.LinkDistance
	}
}

// linkLengths returns the ideal length of every link.
func (l *Layout) linkLengths() []float64 {
	n := len(l.graph.Nodes)
	var heuristic []float64
	if l.cfg.LinkLengthMode != LinkLengthConstant {
		edges := make([]distance.Edge, len(l.graph.Links))
		for i, lk := range l.graph.Links {
			edges[i] = distance.Edge{Source: lk.Source, Target: lk.Target}
		}
		if l.cfg.LinkLengthMode == LinkLengthJaccard {
			heuristic = distance.JaccardLengths(n, edges, l.cfg.LinkLengthWeight)
		} else {
			heuristic = distance.SymmetricDiffLengths(n, edges, l.cfg.LinkLengthWeight)
		}
	}
	out := make([]float64, len(l.graph.Links))
	for i, lk := range l.graph.Links {
		if heuristic != nil && lk.Length <= 0 {
			out[i] = l.cfg.IdealLinkLength * heuristic[i]
			continue
		}
		out[i] = l.linkLength(lk)
	}
	return out
}

// axisConstraints translates the user and flow constraints to descent
// variables.
func (l *Layout) axisConstraints() []axisConstraint {
	var cs []axisConstraint
	for _, c := range l.graph.Constraints {
		switch c.Type {
		case Separation:
			cs = append(cs, axisConstraint{axis: c.Axis, left: c.Left, right: c.Right, gap: c.Gap, equality: c.Equality})
		case Alignment:
			base := c.Offsets[0]
			for _, o := range c.Offsets[1:] {
				cs = append(cs, axisConstraint{axis: c.Axis, left: base.Node, right: o.Node, gap: o.Offset - base.Offset, equality: true})
			}
		}
	}
	if f := l.cfg.Flow; f != nil {
		edges := make([]flow.Edge, len(l.graph.Links))
		for i, lk := range l.graph.Links {
			edges[i] = flow.Edge{Source: lk.Source, Target: lk.Target}
		}
		gap := flow.Constant(f.Separation)
		if f.SeparationFunc != nil {
			gap = func(i int) float64 { return f.SeparationFunc(l.graph.Links[i]) }
		}
		for _, c := range flow.Constraints(len(l.graph.Nodes), edges, gap) {
			cs = append(cs, axisConstraint{axis: f.Axis, left: c.Left, right: c.Right, gap: c.Gap})
		}
	}
	return cs
}

// weights builds the ideal distances and pair weights over n nodes and
// the group boundary variables that follow them.
func (l *Layout) weights() (d, g [][]float64, err error) {
	n, ng := len(l.graph.Nodes), len(l.graph.Groups)
	N := n + 2*ng

	var dm [][]float64
	l.dist = nil
	if l.cfg.DistanceMatrix != nil {
		dm = l.cfg.DistanceMatrix
	} else {
		lengths := l.linkLengths()
		edges := make([]distance.Edge, len(l.graph.Links))
		for i, lk := range l.graph.Links {
			edges[i] = distance.Edge{Source: lk.Source, Target: lk.Target, Length: lengths[i]}
		}
		res, err := distance.Matrix(n, edges, l.cfg.LinkDistance)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "computing distances")
		}
		l.dist, dm = res, res.D
	}

	d, g = square(N), square(N)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d[i][j] = dm[i][j]
			if i != j {
				g[i][j] = repelOnly
			}
		}
	}
	for _, lk := range l.graph.Links {
		if lk.Source == lk.Target {
			continue
		}
		w := lk.Weight
		if w == 0 {
			w = 1
		}
		g[lk.Source][lk.Target], g[lk.Target][lk.Source] = w, w
	}
	for k := 0; k < ng; k++ {
		i := n + 2*k
		g[i][i+1], g[i+1][i] = l.cfg.GroupCompactness, l.cfg.GroupCompactness
		d[i][i+1], d[i+1][i] = groupIdealDistance, groupIdealDistance
	}
	return d, g, nil
}

// initialWeights lets every connected pair attract during the first
// phases while disconnected pairs keep repelling only.
func (l *Layout) initialWeights(g [][]float64) [][]float64 {
	n := len(l.graph.Nodes)
	g1 := square(len(g))
	for i := range g {
		for j := range g[i] {
			v := g[i][j]
			switch {
			case i >= n || j >= n || v == 0:
			case l.dist != nil && !l.dist.Connected(i, j):
				v = repelOnly
			default:
				v = math.Min(v, 1)
			}
			g1[i][j] = v
		}
	}
	return g1
}

func square(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// Start runs the phases: unconstrained, user constraints, packing, all
// constraints, grid snap, packing. It blocks until they are done.
func (l *Layout) Start(opts StartOptions) error {
	for _, p := range []struct {
		name string
		n    int
	}{
		{PhaseUnconstrained.String(), opts.Unconstrained},
		{PhaseUserConstraints.String(), opts.UserConstraint},
		{PhaseAllConstraints.String(), opts.AllConstraints},
		{PhaseGridSnap.String(), opts.GridSnap},
	} {
		if err := errors.ValidateIterations(p.name, p.n); err != nil {
			return err
		}
	}
	begin := time.Now()
	nodes, groups := l.graph.Nodes, l.graph.Groups
	n, N := len(nodes), len(nodes)+2*len(groups)
	if n == 0 {
		l.started, l.stopped, l.alpha = true, false, 0
		return nil
	}

	d, g, err := l.weights()
	if err != nil {
		return err
	}

	cx, cy := l.cfg.CanvasWidth/2, l.cfg.CanvasHeight/2
	x, y := make([]float64, N), make([]float64, N)
	l.pins = make([][2]float64, n)
	for i := range nodes {
		if !nodes[i].Positioned {
			nodes[i].X, nodes[i].Y, nodes[i].Positioned = cx, cy, true
		}
		x[i], y[i] = nodes[i].X, nodes[i].Y
		l.pins[i] = [2]float64{x[i], y[i]}
	}

	de := descent.New([2][]float64{x, y}, d, l.initialWeights(g))
	de.Threshold = l.cfg.ConvergenceThreshold
	l.descent, l.proj, l.vg = de, nil, nil
	l.lockFixed()
	l.logger.Debug("starting layout", "nodes", n, "links", len(l.graph.Links), "groups", len(groups))

	l.phase(PhaseUnconstrained, opts.Unconstrained)
	if len(groups) > 0 && opts.Unconstrained > 0 {
		if err := l.initialGroupLayout(opts.Unconstrained, x, y); err != nil {
			return err
		}
	} else if err := l.run(PhaseUnconstrained, opts.Unconstrained); err != nil {
		return err
	}

	cs := l.axisConstraints()
	if len(cs) > 0 {
		l.proj = newProjection(nodes, l.pins, groups, cs, false)
		de.Project = l.proj
	}
	l.phase(PhaseUserConstraints, opts.UserConstraint)
	if err := l.run(PhaseUserConstraints, opts.UserConstraint); err != nil {
		return err
	}

	l.pack(opts.CenterGraph)

	if l.cfg.AvoidOverlaps {
		makeFeasible(nodes, l.graph.Constraints, x, y)
		l.proj = newProjection(nodes, l.pins, groups, cs, true)
		l.proj.initGroupVariables(x, y)
		de.Project = l.proj
	}
	de.G = g
	l.phase(PhaseAllConstraints, opts.AllConstraints)
	if err := l.run(PhaseAllConstraints, opts.AllConstraints); err != nil {
		return err
	}

	if opts.GridSnap > 0 {
		de.SnapStrength = snapStrength
		de.SnapGridSize = nodes[0].Width
		if de.SnapGridSize == 0 {
			de.SnapGridSize = l.cfg.DefaultNodeSize
		}
		de.NumGridSnapNodes = n
		de.ScaleSnapByMaxH = n != N
		g0 := square(N)
		for i := range g {
			for j := range g[i] {
				if i >= n || j >= n {
					g0[i][j] = g[i][j]
				}
			}
		}
		de.G = g0
		l.phase(PhaseGridSnap, opts.GridSnap)
		if err := l.run(PhaseGridSnap, opts.GridSnap); err != nil {
			return err
		}
	}

	l.pack(opts.CenterGraph)
	l.syncPositions()
	l.stress = de.ComputeStress()

	l.started, l.stopped, l.alpha = true, false, 0
	if opts.KeepRunning {
		l.Resume()
	}
	l.logger.Info("layout complete", "stress", l.stress, "duration", time.Since(begin))
	return nil
}

func (l *Layout) phase(p Phase, iterations int) {
	if iterations > 0 {
		l.observer.OnPhaseStart(PhaseEvent{Phase: p, Iterations: iterations})
	}
}

func (l *Layout) run(p Phase, iterations int) error {
	if iterations == 0 {
		return nil
	}
	begin := time.Now()
	stress, err := l.descent.Run(iterations)
	if err != nil {
		return projectionError(err, p.String())
	}
	l.stress = stress
	l.logger.Debug("phase done", "phase", p, "iterations", iterations, "stress", stress, "duration", time.Since(begin))
	return nil
}

func projectionError(err error, during string) error {
	if stderrors.Is(err, vpsc.ErrUnsatisfiable) {
		return errors.Wrap(errors.ErrCodeInfeasible, err, "%s", during)
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "%s", during)
}

// lockFixed pins every fixed node at its starting position.
func (l *Layout) lockFixed() {
	l.descent.Locks.Clear()
	for i, nd := range l.graph.Nodes {
		if nd.Fixed {
			l.descent.Locks.Add(i, l.pins[i])
		}
	}
}

// syncPositions copies the descent positions into the nodes and refreshes
// group bounds.
func (l *Layout) syncPositions() {
	x, y := l.descent.X[0], l.descent.X[1]
	for i := range l.graph.Nodes {
		l.graph.Nodes[i].X, l.graph.Nodes[i].Y = x[i], y[i]
	}
	if len(l.graph.Groups) == 0 {
		return
	}
	p := l.proj
	if p == nil {
		p = newProjection(l.graph.Nodes, l.pins, l.graph.Groups, nil, false)
	}
	for k, b := range p.groupBounds(x, y) {
		l.graph.Groups[k].Bounds = b
	}
}
