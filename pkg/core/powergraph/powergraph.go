package powergraph

import (
	"errors"
	"fmt"
)

// ErrNodeIndex is returned for a link or group member outside [0, n).
var ErrNodeIndex = errors.New("powergraph: node index out of range")

// Link is a typed directed link between node indices.
type Link struct {
	Source, Target int
	Type           int
}

// Hierarchy is a predefined grouping to merge within. ID is reported back
// in Group.Predefined.
type Hierarchy struct {
	ID     int
	Leaves []int
	Groups []*Hierarchy
}

// Group is a power node: a set of leaves (node indices) and nested groups
// (indices into Result.Groups).
type Group struct {
	Leaves []int
	Groups []int

	// Predefined is the Hierarchy.ID this group came from, or -1 for a
	// group created by merging.
	Predefined int
}

// Endpoint is either a node or a group.
type Endpoint struct {
	Group bool
	Index int
}

func (e Endpoint) String() string {
	if e.Group {
		return fmt.Sprintf("g%d", e.Index)
	}
	return fmt.Sprintf("%d", e.Index)
}

// PowerEdge is a link between nodes or groups standing in for every link
// between their members.
type PowerEdge struct {
	Source, Target Endpoint
	Type           int
}

// Result is the compressed graph.
type Result struct {
	// Groups holds every power node. Children always follow their parent.
	Groups []Group

	// Root lists the top-level leaves and groups.
	Root Group

	PowerEdges []PowerEdge
}

type rawEdge struct {
	source, target, typ int
}

// configuration is the state of the greedy merge.
type configuration struct {
	modules []*module
	roots   []*moduleSet
	r       int
	nextPre int
}

func newConfiguration(n int, links []Link, root *Hierarchy) (*configuration, error) {
	c := &configuration{modules: make([]*module, n)}
	if root != nil {
		seen := make([]bool, n)
		top, err := c.initModulesFromGroup(root, seen)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if !seen[i] {
				c.modules[i] = newModule(i)
				top.add(c.modules[i])
			}
		}
	} else {
		top := newModuleSet()
		c.roots = append(c.roots, top)
		for i := 0; i < n; i++ {
			c.modules[i] = newModule(i)
			top.add(c.modules[i])
		}
	}
	for _, l := range links {
		if l.Source < 0 || l.Source >= n || l.Target < 0 || l.Target >= n {
			return nil, fmt.Errorf("%w: link %d->%d", ErrNodeIndex, l.Source, l.Target)
		}
		if l.Source == l.Target {
			continue
		}
		s, t := c.modules[l.Source], c.modules[l.Target]
		s.outgoing.add(l.Type, t)
		t.incoming.add(l.Type, s)
	}
	for _, m := range c.modules {
		c.r += m.outgoing.count()
	}
	return c, nil
}

func (c *configuration) initModulesFromGroup(h *Hierarchy, seen []bool) (*moduleSet, error) {
	set := newModuleSet()
	c.roots = append(c.roots, set)
	for _, leaf := range h.Leaves {
		if leaf < 0 || leaf >= len(c.modules) {
			return nil, fmt.Errorf("%w: group member %d", ErrNodeIndex, leaf)
		}
		m := newModule(leaf)
		c.modules[leaf] = m
		seen[leaf] = true
		set.add(m)
	}
	for _, child := range h.Groups {
		children, err := c.initModulesFromGroup(child, seen)
		if err != nil {
			return nil, err
		}
		c.nextPre--
		m := newModule(c.nextPre)
		m.children = children
		m.predefined = child.ID
		set.add(m)
	}
	return set, nil
}

// nEdges returns the edge count after merging a and b.
func (c *configuration) nEdges(a, b *module) int {
	in := a.incoming.intersection(b.incoming)
	out := a.outgoing.intersection(b.outgoing)
	return c.r - in.count() - out.count()
}

// merge replaces a and b in roots[k] with a new module owning the links
// they share.
func (c *configuration) merge(a, b *module, k int) *module {
	in := a.incoming.intersection(b.incoming)
	out := a.outgoing.intersection(b.outgoing)
	m := newModule(len(c.modules))
	m.outgoing, m.incoming = out, in
	m.children.add(a)
	m.children.add(b)
	c.modules = append(c.modules, m)

	out.forAll(func(ms *moduleSet, lt int) {
		ms.forAll(func(n *module) {
			n.incoming.add(lt, m)
			n.incoming.remove(lt, a)
			n.incoming.remove(lt, b)
			a.outgoing.remove(lt, n)
			b.outgoing.remove(lt, n)
		})
	})
	in.forAll(func(ms *moduleSet, lt int) {
		ms.forAll(func(n *module) {
			n.outgoing.add(lt, m)
			n.outgoing.remove(lt, a)
			n.outgoing.remove(lt, b)
			a.incoming.remove(lt, n)
			b.incoming.remove(lt, n)
		})
	})
	c.r -= in.count() + out.count()
	c.roots[k].remove(a)
	c.roots[k].remove(b)
	c.roots[k].add(m)
	return m
}

// greedyMerge performs the single best merge in the first root set that
// has one and reports whether it did.
func (c *configuration) greedyMerge() bool {
	for k, root := range c.roots {
		ms := root.modules()
		if len(ms) < 2 {
			continue
		}
		var ba, bb *module
		best := 0
		for i := 0; i < len(ms)-1; i++ {
			for j := i + 1; j < len(ms); j++ {
				if n := c.nEdges(ms[i], ms[j]); ba == nil || n < best {
					ba, bb, best = ms[i], ms[j], n
				}
			}
		}
		if best >= c.r {
			continue
		}
		c.merge(ba, bb, k)
		return true
	}
	return false
}

func (c *configuration) toGroups(ms *moduleSet, g *Group, groups *[]*Group) {
	ms.forAll(func(m *module) {
		if m.isLeaf() && !m.isPredefined() {
			g.Leaves = append(g.Leaves, m.id)
			return
		}
		target := g
		if !m.isIsland() || m.isPredefined() {
			m.gid = len(*groups)
			ng := &Group{Predefined: m.predefined}
			g.Groups = append(g.Groups, m.gid)
			*groups = append(*groups, ng)
			target = ng
		}
		c.toGroups(m.children, target, groups)
	})
}

func (c *configuration) allEdges(ms *moduleSet, es []rawEdge) []rawEdge {
	ms.forAll(func(m *module) {
		es = m.edges(es)
		es = c.allEdges(m.children, es)
	})
	return es
}

func (c *configuration) endpoint(id int) Endpoint {
	if m := c.modules[id]; m.gid >= 0 {
		return Endpoint{Group: true, Index: m.gid}
	}
	return Endpoint{Index: id}
}

// GetGroups compresses the graph of n nodes and links. root, when not
// nil, is a predefined grouping that merging must respect; nodes it does
// not mention join its top level.
func GetGroups(n int, links []Link, root *Hierarchy) (Result, error) {
	c, err := newConfiguration(n, links, root)
	if err != nil {
		return Result{}, err
	}
	for c.greedyMerge() {
	}

	var groups []*Group
	top := &Group{Predefined: -1}
	c.toGroups(c.roots[0], top, &groups)

	res := Result{Root: *top, Groups: make([]Group, len(groups))}
	for i, g := range groups {
		res.Groups[i] = *g
	}
	for _, e := range c.allEdges(c.roots[0], nil) {
		res.PowerEdges = append(res.PowerEdges, PowerEdge{
			Source: c.endpoint(e.source),
			Target: c.endpoint(e.target),
			Type:   e.typ,
		})
	}
	return res, nil
}

// EdgeCount returns the number of links the result draws, which never
// exceeds the number of distinct input links.
func (r Result) EdgeCount() int { return len(r.PowerEdges) }
