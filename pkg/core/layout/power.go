package layout

import (
	"github.com/matzehuels/cola/pkg/core/powergraph"
	"github.com/matzehuels/cola/pkg/errors"
)

// powerGroupPadding is the padding of groups found by PowerGraphGroups.
const powerGroupPadding = 1

// PowerGraphGroups groups nodes with shared neighbours and installs the
// groups as the layout's groups, keeping existing groups as they are.
// Start must be called again before ticking or routing.
func (l *Layout) PowerGraphGroups() (powergraph.Result, error) {
	n := len(l.graph.Nodes)
	links := make([]powergraph.Link, len(l.graph.Links))
	for i, lk := range l.graph.Links {
		t := lk.Type
		if l.cfg.LinkType != nil {
			t = l.cfg.LinkType(lk)
		}
		links[i] = powergraph.Link{Source: lk.Source, Target: lk.Target, Type: t}
	}

	var root *powergraph.Hierarchy
	if len(l.graph.Groups) > 0 {
		root = l.hierarchy()
	}
	res, err := powergraph.GetGroups(n, links, root)
	if err != nil {
		return powergraph.Result{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "power graph")
	}

	old := l.graph.Groups
	groups := make([]Group, len(res.Groups))
	for i, pg := range res.Groups {
		g := Group{
			Leaves:  append([]int(nil), pg.Leaves...),
			Groups:  append([]int(nil), pg.Groups...),
			Padding: powerGroupPadding,
		}
		if pg.Predefined >= 0 {
			g.Padding, g.Stiffness = old[pg.Predefined].Padding, old[pg.Predefined].Stiffness
		}
		groups[i] = g
	}
	l.graph.Groups = groups
	l.proj, l.vg, l.started = nil, nil, false
	l.logger.Debug("power graph groups", "groups", len(groups), "power edges", len(res.PowerEdges), "links", len(links))
	return res, nil
}

// hierarchy converts the layout's groups to a power graph hierarchy whose
// IDs are group indices.
func (l *Layout) hierarchy() *powergraph.Hierarchy {
	hs := make([]*powergraph.Hierarchy, len(l.graph.Groups))
	for k, g := range l.graph.Groups {
		hs[k] = &powergraph.Hierarchy{ID: k, Leaves: append([]int(nil), g.Leaves...)}
	}
	hasParent := make([]bool, len(hs))
	for k, g := range l.graph.Groups {
		for _, c := range g.Groups {
			hs[k].Groups = append(hs[k].Groups, hs[c])
			hasParent[c] = true
		}
	}
	root := &powergraph.Hierarchy{ID: -1}
	for k, h := range hs {
		if !hasParent[k] {
			root.Groups = append(root.Groups, h)
		}
	}
	return root
}
