package cli

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cola/pkg/graph"
)

const testGraph = `{
  "nodes": [
    {"id": "a", "x": 0, "y": 0, "width": 10, "height": 10},
    {"id": "b", "x": 30, "y": 0, "width": 10, "height": 10},
    {"id": "c", "x": 0, "y": 30, "width": 10, "height": 10}
  ],
  "links": [
    {"source": "a", "target": "b"},
    {"source": "b", "target": "c"}
  ]
}`

func writeTestGraph(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(testGraph), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func executeCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(&bytes.Buffer{}, log.ErrorLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	want := []string{"layout", "route", "render", "watch", "powergraph", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLayoutFlagsOptions(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "options.toml")
	toml := "link_distance = 60\nflow = \"y:40\"\n\n[route]\nenabled = true\n"
	if err := os.WriteFile(cfg, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	var flags layoutFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd.Flags())
	if err := cmd.Flags().Parse([]string{
		"--config", cfg,
		"--link-distance", "80",
		"--iterations", "5,0,5",
		"--avoid-overlaps",
	}); err != nil {
		t.Fatal(err)
	}

	opts, err := flags.options(cmd)
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}
	if opts.LinkDistance != 80 {
		t.Errorf("LinkDistance = %v, want flag override 80", opts.LinkDistance)
	}
	if opts.Flow != "y:40" {
		t.Errorf("Flow = %q, want value from config", opts.Flow)
	}
	if !opts.Route.Enabled {
		t.Error("Route.Enabled should come from config")
	}
	if !opts.AvoidOverlaps {
		t.Error("AvoidOverlaps should be set by flag")
	}
	if len(opts.Iterations) != 3 || opts.Iterations[0] != 5 || opts.Iterations[1] != 0 {
		t.Errorf("Iterations = %v, want [5 0 5]", opts.Iterations)
	}
}

func TestLayoutFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad iterations", []string{"--iterations", "1,x"}},
		{"too many phases", []string{"--iterations", "1,2,3,4,5"}},
		{"missing config", []string{"--config", "/does/not/exist.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags layoutFlags
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd.Flags())
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			if _, err := flags.options(cmd); err == nil {
				t.Error("options() should fail")
			}
		})
	}
}

func TestLayoutAndRenderCommands(t *testing.T) {
	input := writeTestGraph(t)
	dir := filepath.Dir(input)

	if err := executeCLI(t, "layout", input, "--link-distance", "40", "--route"); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	layoutPath := filepath.Join(dir, "graph.layout.json")
	res, err := graph.ReadResultFile(layoutPath)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if len(res.Nodes) != 3 || res.RunID == "" {
		t.Errorf("layout result = %+v, want 3 nodes and a run ID", res)
	}
	if len(res.Routes) != 2 {
		t.Errorf("len(Routes) = %d, want 2", len(res.Routes))
	}
	a, b := res.Nodes[0], res.Nodes[1]
	if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < 20 || d > 60 {
		t.Errorf("linked distance = %v, want near 40", d)
	}

	if err := executeCLI(t, "render", layoutPath, "-f", "dot"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "graph.dot"))
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), `label="a"`) || !strings.Contains(string(dot), `"n0" -> "n1"`) {
		t.Errorf("unexpected DOT output:\n%s", dot)
	}

	if err := executeCLI(t, "render", layoutPath, "-f", "gif"); err == nil {
		t.Error("render -f gif should fail")
	}
	if err := executeCLI(t, "render", layoutPath, "-f", "dot,json", "-o", "x"); err == nil {
		t.Error("render with -o and two formats should fail")
	}
}

func TestRouteCommand(t *testing.T) {
	dir := t.TempDir()
	res := graph.Result{
		Nodes: []graph.PlacedNode{
			{X: 0, Y: 0, Width: 10, Height: 10},
			{X: 50, Y: 0, Width: 20, Height: 20},
			{X: 100, Y: 0, Width: 10, Height: 10},
		},
		Links: []graph.Link{{Source: graph.Endpoint{Index: 0}, Target: graph.Endpoint{Index: 2}}},
	}
	input := filepath.Join(dir, "in.layout.json")
	if err := graph.WriteResultFile(res, input); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "routed.json")

	if err := executeCLI(t, "route", input, "-o", output, "--margin", "5"); err != nil {
		t.Fatalf("route error: %v", err)
	}
	routed, err := graph.ReadResultFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(routed.Routes) != 1 || len(routed.Routes[0]) != 4 {
		t.Errorf("Routes = %v, want one route of 4 points", routed.Routes)
	}
}

func TestPowerGraphCommand(t *testing.T) {
	dir := t.TempDir()
	var links []graph.Link
	for _, s := range []int{0, 1} {
		for _, d := range []int{2, 3, 4} {
			links = append(links, graph.Link{Source: graph.Endpoint{Index: s}, Target: graph.Endpoint{Index: d}})
		}
	}
	input := filepath.Join(dir, "k23.json")
	if err := graph.WriteGraphFile(graph.Graph{Nodes: make([]graph.Node, 5), Links: links}, input); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "grouped.json")

	if err := executeCLI(t, "powergraph", input, "-o", output); err != nil {
		t.Fatalf("powergraph error: %v", err)
	}
	g, err := graph.ReadGraphFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Groups) != 2 {
		t.Errorf("len(Groups) = %d, want 2", len(g.Groups))
	}
}

func TestCachePathCommand(t *testing.T) {
	xdg := t.TempDir()
	c := New(&bytes.Buffer{}, log.ErrorLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	t.Setenv("XDG_CACHE_HOME", xdg)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out.String()), filepath.Join(xdg, "cola"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}
