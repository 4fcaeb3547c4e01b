package ir

import (
	"fmt"
)

// Scope is a frozen, deterministically ordered snapshot of a method's
// reachable blocks. Analyses operate on scopes, never on live
// builders; mutating the method afterwards makes the scope stale.
// Blocks are ordered in reverse post-order: same input, same order.
type Scope struct {
	method *Method
	gen    uint64
	blocks []*BasicBlock
	index  map[*BasicBlock]int
}

// NewScope snapshots the reachable blocks of m. It fails when a
// builder is still live or when a reachable block carries a transient
// builder terminator.
func NewScope(m *Method) (*Scope, error) {
	if m.builderLive.Load() {
		return nil, fmt.Errorf("%w: method %s has a live builder", ErrInvalidState, m.name)
	}

	marker := m.ctx.NextMarker()
	var post []*BasicBlock

	// Iterative DFS; each frame walks its successors in terminator
	// order through a cursor, so the first successor is visited first
	// and the order is reproducible.
	type frame struct {
		bb   *BasicBlock
		next int
	}
	stack := []frame{{bb: m.entry}}
	m.entry.marker = marker
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := top.bb.Successors()
		if top.next < len(succs) {
			succ := succs[top.next]
			top.next++
			if succ.marker != marker {
				succ.marker = marker
				stack = append(stack, frame{bb: succ})
			}
			continue
		}
		post = append(post, top.bb)
		stack = stack[:len(stack)-1]
	}

	blocks := make([]*BasicBlock, len(post))
	index := make(map[*BasicBlock]int, len(post))
	for i, bb := range post {
		ri := len(post) - 1 - i
		blocks[ri] = bb
	}
	for i, bb := range blocks {
		index[bb] = i
		if t := bb.Terminator(); t != nil && t.Kind() == KindBuilderTerminator {
			return nil, fmt.Errorf("%w: block %s still carries a builder terminator",
				ErrInvalidState, bb.name)
		}
	}

	return &Scope{method: m, gen: m.gen, blocks: blocks, index: index}, nil
}

// Method returns the snapshotted method.
func (s *Scope) Method() *Method { return s.method }

// Len returns the number of reachable blocks.
func (s *Scope) Len() int { return len(s.blocks) }

// Block returns the i-th block in reverse post-order.
func (s *Scope) Block(i int) *BasicBlock { return s.blocks[i] }

// Blocks returns the reachable blocks in reverse post-order. The
// returned slice aliases internal storage and must not be modified.
func (s *Scope) Blocks() []*BasicBlock { return s.blocks }

// IndexOf returns the RPO index of bb, or -1 when bb is unreachable.
func (s *Scope) IndexOf(bb *BasicBlock) int {
	if i, ok := s.index[bb]; ok {
		return i
	}
	return -1
}

// Stale reports whether the method mutated after the snapshot was
// taken. Consumers must rebuild stale scopes.
func (s *Scope) Stale() bool { return s.gen != s.method.gen }
