package ir

// Dominators is the dominator tree of a CFG, computed with the
// iterative RPO fixed-point of Cooper, Harvey and Kennedy. Node 0 (the
// entry in RPO) is its own immediate dominator.
type Dominators struct {
	cfg  *CFG
	idom []int
}

// NewDominators computes the dominator tree.
func NewDominators(cfg *CFG) *Dominators {
	n := cfg.Len()
	idom := make([]int, n)
	for i := range idom {
		idom[i] = -1
	}
	if n > 0 {
		idom[0] = 0
	}

	intersect := func(a, b int) int {
		for a != b {
			for a > b {
				a = idom[a]
			}
			for b > a {
				b = idom[b]
			}
		}
		return a
	}

	changed := true
	for changed {
		changed = false
		for i := 1; i < n; i++ {
			newIdom := -1
			for _, p := range cfg.Predecessors(i) {
				if idom[p] < 0 {
					continue
				}
				if newIdom < 0 {
					newIdom = p
				} else {
					newIdom = intersect(newIdom, p)
				}
			}
			if newIdom >= 0 && idom[i] != newIdom {
				idom[i] = newIdom
				changed = true
			}
		}
	}

	return &Dominators{cfg: cfg, idom: idom}
}

// CFG returns the underlying control-flow graph.
func (d *Dominators) CFG() *CFG { return d.cfg }

// Scope returns the underlying snapshot.
func (d *Dominators) Scope() *Scope { return d.cfg.scope }

// ImmediateDominator returns the immediate dominator of bb; the entry
// block returns itself.
func (d *Dominators) ImmediateDominator(bb *BasicBlock) *BasicBlock {
	i := d.cfg.scope.IndexOf(bb)
	if i < 0 || d.idom[i] < 0 {
		return nil
	}
	return d.cfg.scope.Block(d.idom[i])
}

// Dominates reports whether a dominates b (reflexively).
func (d *Dominators) Dominates(a, b *BasicBlock) bool {
	ai := d.cfg.scope.IndexOf(a)
	bi := d.cfg.scope.IndexOf(b)
	if ai < 0 || bi < 0 {
		return false
	}
	for bi > ai {
		bi = d.idom[bi]
	}
	return bi == ai
}

// ImmediateCommonDominator walks up the tree to the closest block
// dominating both a and b.
func (d *Dominators) ImmediateCommonDominator(a, b *BasicBlock) *BasicBlock {
	ai := d.cfg.scope.IndexOf(a)
	bi := d.cfg.scope.IndexOf(b)
	if ai < 0 || bi < 0 {
		return nil
	}
	for ai != bi {
		for ai > bi {
			ai = d.idom[ai]
		}
		for bi > ai {
			bi = d.idom[bi]
		}
	}
	return d.cfg.scope.Block(ai)
}
