package layout_test

import (
	"fmt"
	"math"

	"github.com/matzehuels/cola/pkg/core/layout"
)

func ExampleLayout() {
	cfg := layout.DefaultConfig()
	cfg.LinkDistance = 50

	g := layout.Graph{
		Nodes: []layout.Node{
			{ID: "a", X: 0, Y: 0, Positioned: true},
			{ID: "b", X: 10, Y: 0, Positioned: true},
		},
		Links: []layout.Link{{SourceID: "a", TargetID: "b"}},
	}
	l, err := layout.New(g, cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := l.Start(layout.StartOptions{Unconstrained: 50, AllConstraints: 50}); err != nil {
		fmt.Println(err)
		return
	}
	ps := l.Positions()
	fmt.Printf("%.1f\n", math.Hypot(ps[1].X-ps[0].X, ps[1].Y-ps[0].Y))
	// Output: 50.0
}
