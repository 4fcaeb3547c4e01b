package ir

// CFG is the control-flow graph of a scope: one node per reachable
// block with predecessor and successor lists as RPO indices.
type CFG struct {
	scope *Scope
	succs [][]int
	preds [][]int
}

// NewCFG derives the control-flow graph from a scope snapshot.
func NewCFG(s *Scope) *CFG {
	n := s.Len()
	cfg := &CFG{
		scope: s,
		succs: make([][]int, n),
		preds: make([][]int, n),
	}
	for i := 0; i < n; i++ {
		for _, succ := range s.Block(i).Successors() {
			j := s.IndexOf(succ)
			cfg.succs[i] = append(cfg.succs[i], j)
			cfg.preds[j] = append(cfg.preds[j], i)
		}
	}
	return cfg
}

// Scope returns the underlying snapshot.
func (c *CFG) Scope() *Scope { return c.scope }

// Len returns the node count.
func (c *CFG) Len() int { return len(c.succs) }

// Successors returns the successor indices of node i.
func (c *CFG) Successors(i int) []int { return c.succs[i] }

// Predecessors returns the predecessor indices of node i.
func (c *CFG) Predecessors(i int) []int { return c.preds[i] }
