package descent

import "sort"

// Locks pins nodes to positions during descent.
type Locks struct {
	pos map[int][2]float64
}

// Add pins node i at p, replacing any earlier lock.
func (l *Locks) Add(i int, p [2]float64) {
	if l.pos == nil {
		l.pos = map[int][2]float64{}
	}
	l.pos[i] = p
}

// Clear removes every lock.
func (l *Locks) Clear() { l.pos = nil }

// IsEmpty reports whether no node is locked.
func (l *Locks) IsEmpty() bool { return len(l.pos) == 0 }

// Len returns the number of locked nodes.
func (l *Locks) Len() int { return len(l.pos) }

// Apply calls f for every lock in ascending node order.
func (l *Locks) Apply(f func(i int, p [2]float64)) {
	ids := make([]int, 0, len(l.pos))
	for i := range l.pos {
		ids = append(ids, i)
	}
	sort.Ints(ids)
	for _, i := range ids {
		f(i, l.pos[i])
	}
}
