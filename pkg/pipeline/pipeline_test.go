package pipeline

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cola/pkg/cache"
	"github.com/matzehuels/cola/pkg/errors"
	"github.com/matzehuels/cola/pkg/graph"
	"github.com/matzehuels/cola/pkg/observability"
	"github.com/matzehuels/cola/pkg/render/nodelink"
)

func ptr(v float64) *float64 { return &v }

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.New(io.Discard))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func twoNodes() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", X: ptr(0), Y: ptr(0)},
			{ID: "b", X: ptr(10), Y: ptr(0)},
		},
		Links: []graph.Link{{Source: graph.Endpoint{ID: "a"}, Target: graph.Endpoint{ID: "b"}}},
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner(nil, nil, nil) = %+v, want defaults", r)
	}
}

func TestLayout(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	opts := graph.Options{LinkDistance: 50, Iterations: []int{50, 0, 50}}

	out, err := r.Layout(ctx, twoNodes(), opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if out.CacheHit {
		t.Error("first Layout() should miss the cache")
	}
	if out.Result.RunID == "" {
		t.Error("Layout() should set a run ID")
	}
	if out.Stats.NodeCount != 2 || out.Stats.LinkCount != 1 {
		t.Errorf("Stats = %+v, want 2 nodes and 1 link", out.Stats)
	}
	a, b := out.Result.Nodes[0], out.Result.Nodes[1]
	if d := math.Hypot(a.X-b.X, a.Y-b.Y); math.Abs(d-50) > 1e-2 {
		t.Errorf("distance = %v, want 50", d)
	}

	again, err := r.Layout(ctx, twoNodes(), opts)
	if err != nil {
		t.Fatalf("second Layout() error: %v", err)
	}
	if !again.CacheHit {
		t.Error("second Layout() should hit the cache")
	}
	if again.Result.RunID != out.Result.RunID {
		t.Errorf("cached RunID = %q, want %q", again.Result.RunID, out.Result.RunID)
	}

	opts.LinkDistance = 80
	other, err := r.Layout(ctx, twoNodes(), opts)
	if err != nil {
		t.Fatalf("Layout() with new options error: %v", err)
	}
	if other.CacheHit {
		t.Error("changed options should miss the cache")
	}
}

func TestLayoutErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, log.New(io.Discard))

	tests := []struct {
		name string
		g    graph.Graph
		opts graph.Options
		code errors.Code
	}{
		{"bad flow", twoNodes(), graph.Options{Flow: "z:10"}, errors.ErrCodeInvalidConfig},
		{"bad link lengths", twoNodes(), graph.Options{LinkLengths: "cosine"}, errors.ErrCodeInvalidConfig},
		{
			"unknown node",
			graph.Graph{
				Nodes: []graph.Node{{ID: "a"}},
				Links: []graph.Link{{Source: graph.Endpoint{ID: "a"}, Target: graph.Endpoint{ID: "zz"}}},
			},
			graph.Options{},
			errors.ErrCodeInvalidInput,
		},
		{
			"contradictory constraints",
			graph.Graph{
				Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
				Constraints: []graph.Constraint{
					{Axis: "x", Left: 0, Right: 1, Gap: 10, Equality: true},
					{Axis: "x", Left: 1, Right: 0, Gap: 10, Equality: true},
				},
			},
			graph.Options{},
			errors.ErrCodeInfeasible,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Layout(ctx, tt.g, tt.opts)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Layout() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLayoutRoutes(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{
			{X: ptr(0), Y: ptr(0), Width: 10, Height: 10, Fixed: true},
			{X: ptr(50), Y: ptr(0), Width: 20, Height: 20, Fixed: true},
			{X: ptr(100), Y: ptr(0), Width: 10, Height: 10, Fixed: true},
		},
		Links: []graph.Link{
			{Source: graph.Endpoint{Index: 0}, Target: graph.Endpoint{Index: 2}},
			{Source: graph.Endpoint{Index: 1}, Target: graph.Endpoint{Index: 1}},
		},
	}
	opts := graph.Options{
		Iterations: []int{0, 0, 0, 0},
		Route:      graph.RouteOptions{Enabled: true, Margin: 5},
	}

	res, stats, err := Compute(context.Background(), g, opts, nil)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(res.Routes) != 2 {
		t.Fatalf("len(Routes) = %d, want 2", len(res.Routes))
	}
	if len(res.Routes[0]) != 4 {
		t.Errorf("len(Routes[0]) = %d, want 4", len(res.Routes[0]))
	}
	if res.Routes[1] != nil {
		t.Errorf("self loop route = %v, want nil", res.Routes[1])
	}
	if stats.RoutedLinks != 1 {
		t.Errorf("RoutedLinks = %d, want 1", stats.RoutedLinks)
	}
}

func TestLayoutPowerGraph(t *testing.T) {
	var links []graph.Link
	for _, s := range []int{0, 1} {
		for _, d := range []int{2, 3, 4} {
			links = append(links, graph.Link{Source: graph.Endpoint{Index: s}, Target: graph.Endpoint{Index: d}})
		}
	}
	res, stats, err := Compute(context.Background(), graph.Graph{Links: links}, graph.Options{PowerGraph: true}, nil)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(res.PowerEdges) != 1 {
		t.Errorf("len(PowerEdges) = %d, want 1", len(res.PowerEdges))
	}
	if stats.GroupCount != 2 || len(res.Groups) != 2 {
		t.Errorf("groups = %d (stats %d), want 2", len(res.Groups), stats.GroupCount)
	}
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Compute(ctx, twoNodes(), graph.Options{}, nil); err != context.Canceled {
		t.Errorf("Compute() error = %v, want context.Canceled", err)
	}
}

type recordingHooks struct {
	observability.NoopLayoutHooks
	starts, completes int
	phases            []string
}

func (h *recordingHooks) OnLayoutStart(context.Context, int, int) { h.starts++ }
func (h *recordingHooks) OnPhase(_ context.Context, phase string, _ int, _ time.Duration) {
	h.phases = append(h.phases, phase)
}
func (h *recordingHooks) OnLayoutComplete(context.Context, float64, time.Duration, error) {
	h.completes++
}

func TestLayoutHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	if _, _, err := Compute(context.Background(), twoNodes(), graph.Options{Iterations: []int{5, 0, 5}}, nil); err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if hooks.starts != 1 || hooks.completes != 1 {
		t.Errorf("starts=%d completes=%d, want 1 each", hooks.starts, hooks.completes)
	}
	want := []string{"unconstrained", "all-constraints"}
	if strings.Join(hooks.phases, ",") != strings.Join(want, ",") {
		t.Errorf("phases = %v, want %v", hooks.phases, want)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	out, err := r.Layout(ctx, twoNodes(), graph.Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}

	dot, err := r.Render(ctx, out.Result, nodelink.FormatDOT, nodelink.Options{Labels: true})
	if err != nil {
		t.Fatalf("Render(dot) error: %v", err)
	}
	if !strings.Contains(string(dot), `label="a"`) {
		t.Errorf("Render(dot) missing label:\n%s", dot)
	}

	cached, err := r.Render(ctx, out.Result, nodelink.FormatDOT, nodelink.Options{Labels: true})
	if err != nil || string(cached) != string(dot) {
		t.Errorf("cached Render(dot) = %q, %v", cached, err)
	}

	if _, err := r.Render(ctx, out.Result, "gif", nodelink.Options{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(gif) error = %v, want INVALID_FORMAT", err)
	}
}

// readOnlyCache misses on every Get and rejects every Set.
type readOnlyCache struct{ cache.NullCache }

func (readOnlyCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New(errors.ErrCodeInternal, "cache is read-only")
}

func TestCacheWriteFailuresAreLogged(t *testing.T) {
	ctx := context.Background()
	var buf strings.Builder
	r := NewRunner(readOnlyCache{}, nil, log.New(&buf))

	out, err := r.Layout(ctx, twoNodes(), graph.Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if _, err := r.Render(ctx, out.Result, nodelink.FormatDOT, nodelink.Options{}); err != nil {
		t.Fatalf("Render(dot) error: %v", err)
	}
	for _, want := range []string{"layout cache write failed", "artifact cache write failed"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRouteExistingResult(t *testing.T) {
	res := graph.Result{
		Nodes: []graph.PlacedNode{
			{X: 0, Y: 0, Width: 10, Height: 10},
			{X: 50, Y: 0, Width: 20, Height: 20},
			{X: 100, Y: 0, Width: 10, Height: 10},
		},
		Links: []graph.Link{{Source: graph.Endpoint{Index: 0}, Target: graph.Endpoint{Index: 2}}},
	}

	routed, stats, err := Route(context.Background(), res, graph.RouteOptions{Enabled: true, Margin: 5}, nil)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}
	if len(routed.Routes) != 1 || len(routed.Routes[0]) != 4 {
		t.Errorf("Routes = %v, want one route of 4 points", routed.Routes)
	}
	for i, n := range routed.Nodes {
		if n.X != res.Nodes[i].X || n.Y != res.Nodes[i].Y {
			t.Errorf("node %d moved to (%v, %v)", i, n.X, n.Y)
		}
	}
	if stats.RoutedLinks != 1 {
		t.Errorf("RoutedLinks = %d, want 1", stats.RoutedLinks)
	}
	if res.Routes != nil {
		t.Error("Route() should not modify its input")
	}
}
