package ir

import (
	"sync/atomic"

	"ignis/internal/source"
	"ignis/internal/types"
)

// Method is the top-level container of an IR graph: ordered function
// parameters, a return type, the entry block and the blocks created
// for it that have not been merged away or pruned. A method's graph is mutated only while exactly one Builder
// is live.
type Method struct {
	ctx        *Context
	id         NodeID
	name       string
	returnType types.TypeID
	span       source.Span

	params ParamList
	entry  *BasicBlock
	blocks []*BasicBlock

	// gen counts CFG mutations; predecessor caches and scopes check it
	// for staleness.
	gen uint64

	// consts interns primitive and null values per (kind, type,
	// payload) so repeated constants share one node.
	consts map[constKey]*Value

	builderLive atomic.Bool
}

type constKey struct {
	kind ValueKind
	typ  types.TypeID
	c    Const
}

// ID returns the context-unique node id of the method.
func (m *Method) ID() NodeID { return m.id }

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Context returns the owning IR context.
func (m *Method) Context() *Context { return m.ctx }

// ReturnType returns the declared return type handle.
func (m *Method) ReturnType() types.TypeID { return m.returnType }

// Span returns the source linkage of the method.
func (m *Method) Span() source.Span { return m.span }

// SetSpan attaches source linkage.
func (m *Method) SetSpan(sp source.Span) { m.span = sp }

// Params returns the function parameter list.
func (m *Method) Params() *ParamList { return &m.params }

// EntryBlock returns the entry basic block.
func (m *Method) EntryBlock() *BasicBlock { return m.entry }

// Blocks returns the blocks created for the method, in creation order.
// Blocks merged away by MergeBlock or dropped by PruneUnreachable are
// no longer listed; other unreachable blocks stay. Reachability is an
// analysis concern; see Scope.
func (m *Method) Blocks() []*BasicBlock { return m.blocks }

// Generation returns the CFG mutation counter.
func (m *Method) Generation() uint64 { return m.gen }

func (m *Method) bumpGeneration() { m.gen++ }

// createBlock allocates a block and registers it with the method.
func (m *Method) createBlock(name string) *BasicBlock {
	bb := &BasicBlock{
		id:     m.ctx.newNodeID(),
		method: m,
		name:   name,
	}
	bb.params.owner = bb
	m.blocks = append(m.blocks, bb)
	m.bumpGeneration()
	return bb
}

// detachBlock removes a merged-away block from the method list.
func (m *Method) detachBlock(bb *BasicBlock) {
	for i, b := range m.blocks {
		if b == bb {
			m.blocks = append(m.blocks[:i], m.blocks[i+1:]...)
			break
		}
	}
	m.bumpGeneration()
}

// refreshPredecessors recomputes the predecessor sets of every block
// from the current terminators.
func (m *Method) refreshPredecessors() {
	for _, bb := range m.blocks {
		bb.preds = bb.preds[:0]
		bb.predsGen = m.gen
	}
	for _, bb := range m.blocks {
		for _, succ := range bb.Successors() {
			if !containsBlock(succ.preds, bb) {
				succ.preds = append(succ.preds, bb)
			}
		}
	}
}

func containsBlock(set []*BasicBlock, bb *BasicBlock) bool {
	for _, b := range set {
		if b == bb {
			return true
		}
	}
	return false
}

// allocateParameter creates a function parameter; its block is nil.
func (m *Method) allocateParameter(typ types.TypeID, name string) *Value {
	return &Value{
		id:     m.ctx.newNodeID(),
		kind:   KindParameter,
		owner:  m,
		typ:    typ,
		name:   name,
		sealed: true,
	}
}

func (m *Method) parameterOwnerMethod() *Method { return m }
