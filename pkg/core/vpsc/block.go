package vpsc

// Block is a set of variables held at fixed relative offsets by active
// constraints. It moves as one.
type Block struct {
	vars []*Variable
	posn float64
	ps   positionStats
	ind  int
}

func newBlock(v *Variable) *Block {
	v.offset = 0
	b := &Block{ps: positionStats{scale: v.Scale}}
	b.addVariable(v)
	return b
}

func (b *Block) addVariable(v *Variable) {
	v.block = b
	b.vars = append(b.vars, v)
	b.ps.addVariable(v)
	b.posn = b.ps.posn()
}

// updateWeightedPosition recomputes the block position from scratch.
func (b *Block) updateWeightedPosition() {
	b.ps.ab, b.ps.ad, b.ps.a2 = 0, 0, 0
	for _, v := range b.vars {
		b.ps.addVariable(v)
	}
	b.posn = b.ps.posn()
}

// computeLM computes Lagrange multipliers for the active constraints in
// the spanning tree rooted at v and returns the derivative of the cost
// with respect to v's subtree.
func (b *Block) computeLM(v, u *Variable, post func(*Constraint)) float64 {
	dfdv := v.dfdv()
	v.visitNeighbours(u, func(c *Constraint, next *Variable) {
		d := b.computeLM(next, v, post)
		if next == c.Right {
			dfdv += d * c.Left.Scale
			c.lm = d
		} else {
			dfdv += d * c.Right.Scale
			c.lm = -d
		}
		post(c)
	})
	return dfdv / v.Scale
}

func (b *Block) populateSplitBlock(v, prev *Variable) {
	v.visitNeighbours(prev, func(c *Constraint, next *Variable) {
		if next == c.Right {
			next.offset = v.offset + c.Gap
		} else {
			next.offset = v.offset - c.Gap
		}
		b.addVariable(next)
		b.populateSplitBlock(next, v)
	})
}

// findMinLM returns the non-equality active constraint with the smallest
// Lagrange multiplier, or nil.
func (b *Block) findMinLM() *Constraint {
	var m *Constraint
	b.computeLM(b.vars[0], nil, func(c *Constraint) {
		if !c.Equality && (m == nil || c.lm < m.lm) {
			m = c
		}
	})
	return m
}

// findMinLMBetween returns the splittable constraint on the active path
// from lv to rv with the smallest multiplier, or nil.
func (b *Block) findMinLMBetween(lv, rv *Variable) *Constraint {
	b.computeLM(lv, nil, func(*Constraint) {})
	var m *Constraint
	b.findPath(lv, nil, rv, func(c *Constraint, next *Variable) {
		if !c.Equality && c.Right == next && (m == nil || c.lm < m.lm) {
			m = c
		}
	})
	return m
}

func (b *Block) findPath(v, prev, to *Variable, visit func(*Constraint, *Variable)) bool {
	found := false
	v.visitNeighbours(prev, func(c *Constraint, next *Variable) {
		if !found && (next == to || b.findPath(next, v, to, visit)) {
			found = true
			visit(c, next)
		}
	})
	return found
}

// isActiveDirectedPathBetween reports whether u reaches v following active
// constraints left to right.
func (b *Block) isActiveDirectedPathBetween(u, v *Variable) bool {
	if u == v {
		return true
	}
	for i := len(u.cOut) - 1; i >= 0; i-- {
		c := u.cOut[i]
		if c.active && b.isActiveDirectedPathBetween(c.Right, v) {
			return true
		}
	}
	return false
}

// splitAt deactivates c and returns the two blocks on either side of it.
func splitAt(c *Constraint) (*Block, *Block) {
	c.active = false
	return createSplitBlock(c.Left), createSplitBlock(c.Right)
}

func createSplitBlock(start *Variable) *Block {
	b := newBlock(start)
	b.populateSplitBlock(start, nil)
	return b
}

// splitBetween splits the block on the path between vl and vr. ok is false
// when no constraint on that path may be split.
func (b *Block) splitBetween(vl, vr *Variable) (c *Constraint, lb, rb *Block, ok bool) {
	c = b.findMinLMBetween(vl, vr)
	if c == nil {
		return nil, nil, nil, false
	}
	lb, rb = splitAt(c)
	return c, lb, rb, true
}

// mergeAcross absorbs o into b along c, shifting o's offsets by dist.
func (b *Block) mergeAcross(o *Block, c *Constraint, dist float64) {
	c.active = true
	for _, v := range o.vars {
		v.offset += dist
		b.addVariable(v)
	}
	b.posn = b.ps.posn()
}

func (b *Block) cost() float64 {
	sum := 0.0
	for _, v := range b.vars {
		d := v.Position() - v.DesiredPosition
		sum += d * d * v.Weight
	}
	return sum
}

// blocks is the current partition of the solver's variables.
type blocks struct {
	list []*Block
}

func newBlocks(vs []*Variable) *blocks {
	bs := &blocks{list: make([]*Block, len(vs))}
	for i, v := range vs {
		b := newBlock(v)
		b.ind = i
		bs.list[i] = b
	}
	return bs
}

func (bs *blocks) cost() float64 {
	sum := 0.0
	for _, b := range bs.list {
		sum += b.cost()
	}
	return sum
}

func (bs *blocks) insert(b *Block) {
	b.ind = len(bs.list)
	bs.list = append(bs.list, b)
}

func (bs *blocks) remove(b *Block) {
	last := len(bs.list) - 1
	swap := bs.list[last]
	bs.list = bs.list[:last]
	if b != swap {
		bs.list[b.ind] = swap
		swap.ind = b.ind
	}
}

// merge joins the blocks on either side of c, folding the smaller block
// into the larger.
func (bs *blocks) merge(c *Constraint) {
	l, r := c.Left.block, c.Right.block
	dist := c.Right.offset - c.Left.offset - c.Gap
	if len(l.vars) < len(r.vars) {
		r.mergeAcross(l, c, dist)
		bs.remove(l)
	} else {
		l.mergeAcross(r, c, -dist)
		bs.remove(r)
	}
}

func (bs *blocks) updateBlockPositions() {
	for _, b := range bs.list {
		b.updateWeightedPosition()
	}
}

// split breaks every block along its most negative multiplier and appends
// the deactivated constraints to inactive.
func (bs *blocks) split(inactive []*Constraint) []*Constraint {
	bs.updateBlockPositions()
	snapshot := append([]*Block(nil), bs.list...)
	for _, b := range snapshot {
		c := b.findMinLM()
		if c == nil || c.lm >= LagrangianTolerance {
			continue
		}
		owner := c.Left.block
		lb, rb := splitAt(c)
		bs.insert(lb)
		bs.insert(rb)
		bs.remove(owner)
		inactive = append(inactive, c)
	}
	return inactive
}
