package layout

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/cola/pkg/core/geom"
	"github.com/matzehuels/cola/pkg/errors"
)

func mustNew(t *testing.T, g Graph, cfg Config, opts ...Option) *Layout {
	t.Helper()
	l, err := New(g, cfg, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return l
}

func mustStart(t *testing.T, l *Layout, opts StartOptions) {
	t.Helper()
	if err := l.Start(opts); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
}

func dist(ps []geom.Point, i, j int) float64 {
	return math.Hypot(ps[i].X-ps[j].X, ps[i].Y-ps[j].Y)
}

func TestTwoNodesReachLinkDistance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LinkDistance = 50
	g := Graph{
		Nodes: []Node{{X: 0, Y: 0, Positioned: true}, {X: 10, Y: 0, Positioned: true}},
		Links: []Link{{Source: 0, Target: 1}},
	}
	l := mustNew(t, g, cfg)
	mustStart(t, l, StartOptions{Unconstrained: 50, AllConstraints: 50})

	if got := dist(l.Positions(), 0, 1); math.Abs(got-50) > 1e-3 {
		t.Errorf("distance = %v, want 50", got)
	}
}

func TestCoincidentNodesEndUpApart(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AvoidOverlaps = true
	g := Graph{Nodes: make([]Node, 4)}
	for i := range g.Nodes {
		g.Nodes[i].Width, g.Nodes[i].Height = 30, 30
	}
	l := mustNew(t, g, cfg)
	mustStart(t, l, DefaultStartOptions())

	nodes := l.Graph().Nodes
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].Bounds().Overlaps(nodes[j].Bounds()) {
				t.Errorf("nodes %d and %d overlap: %v %v", i, j, nodes[i].Bounds(), nodes[j].Bounds())
			}
		}
	}
}

func TestProjectionRemovesOverlaps(t *testing.T) {
	nodes := []Node{
		{Width: 10, Height: 10},
		{Width: 10, Height: 10},
		{Width: 10, Height: 10},
	}
	x := []float64{0, 4, 2}
	y := []float64{0, 1, 6}
	p := newProjection(nodes, make([][2]float64, 3), nil, nil, true)

	x0, y0 := append([]float64(nil), x...), append([]float64(nil), y...)
	if err := p.ProjectX(x0, y0, x); err != nil {
		t.Fatalf("ProjectX() error: %v", err)
	}
	if err := p.ProjectY(x, y0, y); err != nil {
		t.Fatalf("ProjectY() error: %v", err)
	}
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			a := geom.Centered(x[i], y[i], 10, 10)
			b := geom.Centered(x[j], y[j], 10, 10)
			if a.OverlapX(b) > 1e-6 && a.OverlapY(b) > 1e-6 {
				t.Errorf("rectangles %d and %d still overlap: %v %v", i, j, a, b)
			}
		}
	}
}

func TestFlowCycleHasNoConstraints(t *testing.T) {
	cfg := DefaultConfig().FlowLayout(AxisY, 20)
	g := Graph{Links: []Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}, {Source: 2, Target: 0}}}
	l := mustNew(t, g, cfg)

	if cs := l.axisConstraints(); len(cs) != 0 {
		t.Errorf("axisConstraints() = %v, want none", cs)
	}
	mustStart(t, l, DefaultStartOptions())
}

func TestFlowChainIsOrdered(t *testing.T) {
	cfg := DefaultConfig().FlowLayout(AxisY, 20)
	g := Graph{Links: []Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}}}
	l := mustNew(t, g, cfg)
	mustStart(t, l, DefaultStartOptions())

	ps := l.Positions()
	for _, lk := range g.Links {
		if gap := ps[lk.Target].Y - ps[lk.Source].Y; gap < 20-1e-6 {
			t.Errorf("link %v: y gap = %v, want >= 20", lk, gap)
		}
	}
}

func TestDisconnectedComponentsArePacked(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LinkDistance = 30
	g := Graph{Links: []Link{
		{Source: 0, Target: 1}, {Source: 1, Target: 2}, {Source: 2, Target: 0},
		{Source: 3, Target: 4}, {Source: 4, Target: 5}, {Source: 5, Target: 3},
	}}
	l := mustNew(t, g, cfg)
	mustStart(t, l, DefaultStartOptions())

	nodes := l.Graph().Nodes
	box := func(c []int) geom.Rect {
		b := geom.EmptyRect()
		for _, i := range c {
			b = b.Union(geom.Centered(nodes[i].X, nodes[i].Y, cfg.DefaultNodeSize, cfg.DefaultNodeSize))
		}
		return b
	}
	if a, b := box([]int{0, 1, 2}), box([]int{3, 4, 5}); a.Overlaps(b) {
		t.Errorf("component boxes overlap: %v %v", a, b)
	}
	ps := l.Positions()
	for _, lk := range g.Links {
		if d := dist(ps, lk.Source, lk.Target); math.Abs(d-30) > 30*0.15 {
			t.Errorf("link %v length = %v, want about 30", lk, d)
		}
	}
}

func TestPackingKeepsConstraintsAcrossComponents(t *testing.T) {
	g := Graph{
		Nodes: make([]Node, 4),
		Links: []Link{{Source: 0, Target: 1}, {Source: 2, Target: 3}},
		Constraints: []Constraint{
			{Type: Separation, Axis: AxisX, Left: 0, Right: 2, Gap: 100},
			{Type: Alignment, Axis: AxisY, Offsets: []Offset{{Node: 1}, {Node: 3}}},
		},
	}
	l := mustNew(t, g, DefaultConfig())
	mustStart(t, l, DefaultStartOptions())

	ps := l.Positions()
	if gap := ps[2].X - ps[0].X; gap < 100-1e-4 {
		t.Errorf("x2-x0 = %v, want >= 100", gap)
	}
	if d := math.Abs(ps[3].Y - ps[1].Y); d > 1e-4 {
		t.Errorf("|y3-y1| = %v, want 0", d)
	}
}

func TestStartIsDeterministic(t *testing.T) {
	g := Graph{
		Nodes: []Node{{Width: 20, Height: 10}, {Width: 20, Height: 10}, {Width: 20, Height: 10}, {Width: 20, Height: 10}},
		Links: []Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}, {Source: 2, Target: 3}, {Source: 0, Target: 2}},
	}
	cfg := DefaultConfig()
	cfg.AvoidOverlaps = true

	run := func() []geom.Point {
		l := mustNew(t, g, cfg)
		mustStart(t, l, DefaultStartOptions())
		return l.Positions()
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Errorf("positions differ between runs:\n%v\n%v", a, b)
	}
}

func TestFixedNodeStays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LinkDistance = 50
	g := Graph{
		Nodes: []Node{{X: 0, Y: 0, Positioned: true, Fixed: true}, {X: 10, Y: 0, Positioned: true}},
		Links: []Link{{Source: 0, Target: 1}},
	}
	l := mustNew(t, g, cfg)
	mustStart(t, l, StartOptions{Unconstrained: 200, AllConstraints: 200})

	ps := l.Positions()
	if d := math.Hypot(ps[0].X, ps[0].Y); d > 1 {
		t.Errorf("fixed node moved %v from its pin", d)
	}
	if got := dist(ps, 0, 1); math.Abs(got-50) > 1 {
		t.Errorf("distance = %v, want 50", got)
	}
}

func TestUserConstraintsHold(t *testing.T) {
	g := Graph{
		Nodes: []Node{{Width: 10, Height: 10}, {Width: 10, Height: 10}, {Width: 10, Height: 10}},
		Links: []Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}},
		Constraints: []Constraint{
			{Type: Separation, Axis: AxisX, Left: 0, Right: 1, Gap: 40},
			{Type: Alignment, Axis: AxisX, Offsets: []Offset{{Node: 1}, {Node: 2, Offset: 5}}},
		},
	}
	l := mustNew(t, g, DefaultConfig())
	mustStart(t, l, DefaultStartOptions())

	ps := l.Positions()
	if gap := ps[1].X - ps[0].X; gap < 40-1e-6 {
		t.Errorf("x gap 0->1 = %v, want >= 40", gap)
	}
	if off := ps[2].X - ps[1].X; math.Abs(off-5) > 1e-6 {
		t.Errorf("alignment offset = %v, want 5", off)
	}
}

func TestGroupBoundsContainMembers(t *testing.T) {
	g := Graph{
		Nodes: []Node{{Width: 10, Height: 10}, {Width: 10, Height: 10}, {Width: 10, Height: 10}},
		Links: []Link{{Source: 0, Target: 1}, {Source: 1, Target: 2}},
		Groups: []Group{{Leaves: []int{0, 1}, Padding: 4}},
	}
	cfg := DefaultConfig()
	cfg.AvoidOverlaps = true
	l := mustNew(t, g, cfg)
	mustStart(t, l, DefaultStartOptions())

	out := l.Graph()
	b := out.Groups[0].Bounds
	if b.IsEmpty() {
		t.Fatal("group bounds not set")
	}
	for _, i := range out.Groups[0].Leaves {
		nb := out.Nodes[i].Bounds()
		if nb.MinX < b.MinX || nb.MaxX > b.MaxX || nb.MinY < b.MinY || nb.MaxY > b.MaxY {
			t.Errorf("node %d %v outside group %v", i, nb, b)
		}
	}
}

func TestNewValidation(t *testing.T) {
	bad := DefaultConfig()
	bad.LinkDistance = 0

	tests := []struct {
		name string
		g    Graph
		cfg  Config
		code errors.Code
	}{
		{"BadConfig", Graph{}, bad, errors.ErrCodeInvalidConfig},
		{"LinkOutOfRange", Graph{Nodes: make([]Node, 2), Links: []Link{{Source: 0, Target: 2}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"UnknownID", Graph{Nodes: []Node{{ID: "a"}}, Links: []Link{{SourceID: "a", TargetID: "b"}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"DuplicateID", Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"NegativeWidth", Graph{Nodes: []Node{{Width: -1}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"EmptyGroup", Graph{Nodes: make([]Node, 1), Groups: []Group{{}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"TwoParents", Graph{Nodes: make([]Node, 1), Groups: []Group{{Leaves: []int{0}}, {Leaves: []int{0}}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"GroupCycle", Graph{Nodes: make([]Node, 1), Groups: []Group{{Leaves: []int{0}, Groups: []int{1}}, {Groups: []int{0}}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"SelfSeparation", Graph{Nodes: make([]Node, 1), Constraints: []Constraint{{Left: 0, Right: 0}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
		{"EmptyAlignment", Graph{Nodes: make([]Node, 1), Constraints: []Constraint{{Type: Alignment}}}, DefaultConfig(), errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.g, tt.cfg)
			if err == nil {
				t.Fatal("New() error = nil")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestNewRejectsBadMatrix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DistanceMatrix = [][]float64{{0, 1}, {2, 0}}
	_, err := New(Graph{Nodes: make([]Node, 2)}, cfg)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("New() error = %v, want INVALID_INPUT", err)
	}
}

func TestResolveLinksByID(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Links: []Link{{SourceID: "c", TargetID: "a"}, {Source: 1, TargetID: "c"}},
	}
	l := mustNew(t, g, DefaultConfig())
	got := l.Graph().Links
	if got[0].Source != 2 || got[0].Target != 0 || got[1].Source != 1 || got[1].Target != 2 {
		t.Errorf("resolved links = %v", got)
	}
	if g.Links[0].Source != 0 {
		t.Error("New() modified the caller's graph")
	}
}

func TestNodesFromLinks(t *testing.T) {
	l := mustNew(t, Graph{Links: []Link{{Source: 0, Target: 3}}}, DefaultConfig())
	if n := len(l.Graph().Nodes); n != 4 {
		t.Errorf("len(Nodes) = %d, want 4", n)
	}
}

func TestEmptyGraph(t *testing.T) {
	l := mustNew(t, Graph{}, DefaultConfig())
	mustStart(t, l, DefaultStartOptions())
	if st, err := l.Tick(); err != nil || st != StatusConverged {
		t.Errorf("Tick() = %v, %v, want converged", st, err)
	}
}

func TestTickLifecycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LinkDistance = 50
	g := Graph{
		Nodes: []Node{{X: 0, Y: 0, Positioned: true}, {X: 10, Y: 0, Positioned: true}},
		Links: []Link{{Source: 0, Target: 1}},
	}
	l := mustNew(t, g, cfg)

	if _, err := l.Tick(); errors.GetCode(err) != errors.ErrCodeNotReady {
		t.Errorf("Tick() before Start error = %v, want NOT_READY", err)
	}

	mustStart(t, l, StartOptions{Unconstrained: 10, KeepRunning: true})
	if l.Alpha() != resumeAlpha {
		t.Errorf("Alpha() = %v, want %v", l.Alpha(), resumeAlpha)
	}
	if st, err := l.Tick(); err != nil || st != StatusRunning {
		t.Errorf("Tick() = %v, %v, want running", st, err)
	}

	l.Stop()
	if st, err := l.Tick(); err != nil || st != StatusStopped {
		t.Errorf("Tick() after Stop = %v, %v, want stopped", st, err)
	}
	if l.Alpha() != 0 {
		t.Errorf("Alpha() after Stop = %v, want 0", l.Alpha())
	}

	l.Resume()
	st, err := l.Run(context.Background())
	if err != nil || st != StatusConverged {
		t.Errorf("Run() = %v, %v, want converged", st, err)
	}
	if got := dist(l.Positions(), 0, 1); math.Abs(got-50) > 1e-2 {
		t.Errorf("distance = %v, want 50", got)
	}
}

func TestRunCancelled(t *testing.T) {
	l := mustNew(t, Graph{Links: []Link{{Source: 0, Target: 1}}}, DefaultConfig())
	mustStart(t, l, StartOptions{Unconstrained: 5, KeepRunning: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Run(ctx); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

type recorder struct {
	phases    []Phase
	ticks     int
	converged int
}

func (r *recorder) OnPhaseStart(e PhaseEvent) { r.phases = append(r.phases, e.Phase) }
func (r *recorder) OnTick(TickEvent)          { r.ticks++ }
func (r *recorder) OnConverged(TickEvent)     { r.converged++ }

func TestObserver(t *testing.T) {
	rec := &recorder{}
	l := mustNew(t, Graph{Links: []Link{{Source: 0, Target: 1}}}, DefaultConfig(), WithObserver(rec))
	mustStart(t, l, StartOptions{Unconstrained: 5, AllConstraints: 5, GridSnap: 2, KeepRunning: true})

	want := []Phase{PhaseUnconstrained, PhaseAllConstraints, PhaseGridSnap}
	if !reflect.DeepEqual(rec.phases, want) {
		t.Errorf("phases = %v, want %v", rec.phases, want)
	}
	if _, err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rec.ticks == 0 || rec.converged != 1 {
		t.Errorf("ticks = %d, converged = %d, want >0 and 1", rec.ticks, rec.converged)
	}
}

func TestInfeasibleConstraints(t *testing.T) {
	g := Graph{
		Nodes: make([]Node, 2),
		Constraints: []Constraint{
			{Axis: AxisX, Left: 0, Right: 1, Gap: 10, Equality: true},
			{Axis: AxisX, Left: 1, Right: 0, Gap: 10, Equality: true},
		},
	}
	l := mustNew(t, g, DefaultConfig())
	err := l.Start(StartOptions{UserConstraint: 5})
	if errors.GetCode(err) != errors.ErrCodeInfeasible {
		t.Errorf("Start() error = %v, want INFEASIBLE_CONSTRAINTS", err)
	}
}

func TestRouting(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{X: 0, Y: 0, Positioned: true, Width: 10, Height: 10, Fixed: true},
			{X: 50, Y: 0, Positioned: true, Width: 20, Height: 20, Fixed: true},
			{X: 100, Y: 0, Positioned: true, Width: 10, Height: 10, Fixed: true},
		},
		Links: []Link{{Source: 0, Target: 2}, {Source: 1, Target: 1}},
	}
	l := mustNew(t, g, DefaultConfig())

	if err := l.PrepareEdgeRouting(5); errors.GetCode(err) != errors.ErrCodeNotReady {
		t.Errorf("PrepareEdgeRouting() before Start error = %v, want NOT_READY", err)
	}
	mustStart(t, l, StartOptions{})
	if _, err := l.RouteEdge(0, DefaultArrowHead); errors.GetCode(err) != errors.ErrCodeNotReady {
		t.Errorf("RouteEdge() before prepare error = %v, want NOT_READY", err)
	}
	if err := l.PrepareEdgeRouting(5); err != nil {
		t.Fatalf("PrepareEdgeRouting() error: %v", err)
	}
	if l.VisibilityGraph() == nil {
		t.Fatal("VisibilityGraph() = nil after prepare")
	}

	route, err := l.RouteEdge(0, DefaultArrowHead)
	if err != nil {
		t.Fatalf("RouteEdge() error: %v", err)
	}
	if len(route) != 4 {
		t.Errorf("len(route) = %d, want 4: %v", len(route), route)
	}
	if _, err := l.RouteEdge(1, DefaultArrowHead); errors.GetCode(err) != errors.ErrCodeUnsupported {
		t.Errorf("RouteEdge(self loop) error = %v, want UNSUPPORTED", err)
	}
	if _, err := l.RouteEdge(5, DefaultArrowHead); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("RouteEdge(5) error = %v, want INVALID_INPUT", err)
	}

	routes, err := l.RouteAll(DefaultArrowHead)
	if err != nil {
		t.Fatalf("RouteAll() error: %v", err)
	}
	if routes[1] != nil || len(routes[0]) != 4 {
		t.Errorf("RouteAll() = %v", routes)
	}
}

func TestTickInvalidatesRouting(t *testing.T) {
	l := mustNew(t, Graph{Links: []Link{{Source: 0, Target: 1}}}, DefaultConfig())
	mustStart(t, l, StartOptions{Unconstrained: 5, KeepRunning: true})
	if err := l.PrepareEdgeRouting(2); err != nil {
		t.Fatalf("PrepareEdgeRouting() error: %v", err)
	}
	if st, _ := l.Tick(); st != StatusRunning {
		t.Fatalf("Tick() = %v, want running", st)
	}
	if _, err := l.RouteEdge(0, 0); errors.GetCode(err) != errors.ErrCodeNotReady {
		t.Errorf("RouteEdge() after tick error = %v, want NOT_READY", err)
	}
}

func TestPowerGraphGroups(t *testing.T) {
	// Complete bipartite K(2,3): every left node links to every right node.
	var links []Link
	for _, s := range []int{0, 1} {
		for _, d := range []int{2, 3, 4} {
			links = append(links, Link{Source: s, Target: d})
		}
	}
	l := mustNew(t, Graph{Links: links}, DefaultConfig())
	mustStart(t, l, StartOptions{Unconstrained: 5})

	res, err := l.PowerGraphGroups()
	if err != nil {
		t.Fatalf("PowerGraphGroups() error: %v", err)
	}
	if len(res.PowerEdges) != 1 {
		t.Errorf("len(PowerEdges) = %d, want 1", len(res.PowerEdges))
	}
	groups := l.Graph().Groups
	if len(groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(groups))
	}
	for i, g := range groups {
		if g.Padding != powerGroupPadding {
			t.Errorf("Groups[%d].Padding = %v, want %v", i, g.Padding, powerGroupPadding)
		}
	}
	if _, err := l.Tick(); errors.GetCode(err) != errors.ErrCodeNotReady {
		t.Errorf("Tick() after regrouping error = %v, want NOT_READY", err)
	}
	mustStart(t, l, DefaultStartOptions())
}

func TestLinkLengths(t *testing.T) {
	// In a triangle every pair of endpoints differs in one neighbour each.
	g := Graph{Links: []Link{{Source: 0, Target: 1}, {Source: 0, Target: 2}, {Source: 1, Target: 2, Length: 7}}}

	cfg := DefaultConfig()
	cfg.LinkLength = func(lk Link) float64 { return float64(10 * (lk.Target + 1)) }
	got := mustNew(t, g, cfg).linkLengths()
	if want := []float64{20, 30, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("linkLengths() = %v, want %v", got, want)
	}

	cfg = DefaultConfig().SymmetricDiffLinkLengths(10, 1)
	for i, v := range mustNew(t, g, cfg).linkLengths()[:2] {
		if v < 10 {
			t.Errorf("symmetric difference length %d = %v, want >= 10", i, v)
		}
	}
}

func TestConfigure(t *testing.T) {
	l := mustNew(t, Graph{Nodes: make([]Node, 2)}, DefaultConfig())
	bad := DefaultConfig()
	bad.ConvergenceThreshold = -1
	if err := l.Configure(bad); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("Configure() error = %v, want INVALID_CONFIG", err)
	}
	cfg := DefaultConfig()
	cfg.AvoidOverlaps = true
	if err := l.Configure(cfg); err != nil {
		t.Fatalf("Configure() error: %v", err)
	}
	if !l.Config().AvoidOverlaps {
		t.Error("Configure() did not take effect")
	}
}

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in      string
		want    Axis
		wantErr bool
	}{
		{"x", AxisX, false},
		{"Y", AxisY, false},
		{"z", AxisX, true},
	}
	for _, tt := range tests {
		got, err := ParseAxis(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAxis(%q) = %v, %v", tt.in, got, err)
		}
	}
}
