package powergraph

import "sort"

// module is a node, or a set of modules merged into a power node.
type module struct {
	id       int
	outgoing *linkSets
	incoming *linkSets
	children *moduleSet

	// predefined is the caller's group id for modules with a negative id.
	predefined int
	gid        int
}

func newModule(id int) *module {
	return &module{
		id:         id,
		outgoing:   newLinkSets(),
		incoming:   newLinkSets(),
		children:   newModuleSet(),
		predefined: -1,
		gid:        -1,
	}
}

func (m *module) isLeaf() bool       { return m.children.count() == 0 }
func (m *module) isIsland() bool     { return m.outgoing.count() == 0 && m.incoming.count() == 0 }
func (m *module) isPredefined() bool { return m.id < 0 }

func (m *module) edges(es []rawEdge) []rawEdge {
	m.outgoing.forAll(func(ms *moduleSet, lt int) {
		ms.forAll(func(t *module) {
			es = append(es, rawEdge{source: m.id, target: t.id, typ: lt})
		})
	})
	return es
}

// moduleSet is a set of modules iterated in ascending id order.
type moduleSet struct {
	table map[int]*module
}

func newModuleSet() *moduleSet { return &moduleSet{table: map[int]*module{}} }

func (s *moduleSet) count() int       { return len(s.table) }
func (s *moduleSet) add(m *module)    { s.table[m.id] = m }
func (s *moduleSet) remove(m *module) { delete(s.table, m.id) }

func (s *moduleSet) contains(id int) bool {
	_, ok := s.table[id]
	return ok
}

func (s *moduleSet) forAll(f func(*module)) {
	for _, m := range s.sorted() {
		f(m)
	}
}

func (s *moduleSet) sorted() []*module {
	ids := make([]int, 0, len(s.table))
	for id := range s.table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*module, len(ids))
	for i, id := range ids {
		out[i] = s.table[id]
	}
	return out
}

func (s *moduleSet) intersection(o *moduleSet) *moduleSet {
	r := newModuleSet()
	for id, m := range s.table {
		if o.contains(id) {
			r.table[id] = m
		}
	}
	return r
}

// modules returns the members that may take part in a merge.
func (s *moduleSet) modules() []*module {
	var vs []*module
	s.forAll(func(m *module) {
		if !m.isPredefined() {
			vs = append(vs, m)
		}
	})
	return vs
}

// linkSets groups a module's neighbours by link type.
type linkSets struct {
	sets map[int]*moduleSet
	n    int
}

func newLinkSets() *linkSets { return &linkSets{sets: map[int]*moduleSet{}} }

func (l *linkSets) count() int { return l.n }

func (l *linkSets) add(lt int, m *module) {
	s, ok := l.sets[lt]
	if !ok {
		s = newModuleSet()
		l.sets[lt] = s
	}
	if s.contains(m.id) {
		return
	}
	s.add(m)
	l.n++
}

func (l *linkSets) remove(lt int, m *module) {
	s, ok := l.sets[lt]
	if !ok || !s.contains(m.id) {
		return
	}
	s.remove(m)
	if s.count() == 0 {
		delete(l.sets, lt)
	}
	l.n--
}

func (l *linkSets) types() []int {
	lts := make([]int, 0, len(l.sets))
	for lt := range l.sets {
		lts = append(lts, lt)
	}
	sort.Ints(lts)
	return lts
}

func (l *linkSets) forAll(f func(ms *moduleSet, lt int)) {
	for _, lt := range l.types() {
		f(l.sets[lt], lt)
	}
}

func (l *linkSets) intersection(o *linkSets) *linkSets {
	r := newLinkSets()
	l.forAll(func(ms *moduleSet, lt int) {
		os, ok := o.sets[lt]
		if !ok {
			return
		}
		i := ms.intersection(os)
		if n := i.count(); n > 0 {
			r.sets[lt] = i
			r.n += n
		}
	})
	return r
}
