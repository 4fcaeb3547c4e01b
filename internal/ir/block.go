package ir

import (
	"ignis/internal/source"
	"ignis/internal/types"
)

// BasicBlock is a straight-line sequence of non-terminator values plus
// a parameter list and exactly one terminator. Every value whose Block
// is this block appears in the body, the parameter list, or is the
// terminator.
type BasicBlock struct {
	id     NodeID
	method *Method
	name   string
	span   source.Span

	params ParamList
	body   []ValueRef
	term   *Value

	// marker is stamped by traversals; see Context.NextMarker.
	marker uint64

	// preds caches the predecessor set; predsGen records the CFG
	// generation it was computed at.
	preds    []*BasicBlock
	predsGen uint64
}

// ID returns the context-unique node id of the block.
func (bb *BasicBlock) ID() NodeID { return bb.id }

// Name returns the debug name.
func (bb *BasicBlock) Name() string { return bb.name }

// Method returns the containing method.
func (bb *BasicBlock) Method() *Method { return bb.method }

// Span returns the sequence point of the block.
func (bb *BasicBlock) Span() source.Span { return bb.span }

// Params returns the block parameter list.
func (bb *BasicBlock) Params() *ParamList { return &bb.params }

// Body returns the non-terminator value references in program order.
// The returned slice aliases internal storage and must not be
// modified.
func (bb *BasicBlock) Body() []ValueRef { return bb.body }

// Terminator returns the block terminator, nil while the block is
// still under construction.
func (bb *BasicBlock) Terminator() *Value {
	if bb.term == nil {
		return nil
	}
	return bb.term.Resolved()
}

// Terminated reports whether a terminator has been installed.
func (bb *BasicBlock) Terminated() bool { return bb.term != nil }

// Successors returns the destination blocks of the terminator's
// targets, in target order. A return terminator yields an empty set.
func (bb *BasicBlock) Successors() []*BasicBlock {
	t := bb.Terminator()
	if t == nil {
		return nil
	}
	targets := TerminatorTargets(t)
	out := make([]*BasicBlock, 0, len(targets))
	for _, tgt := range targets {
		out = append(out, tgt.DestinationBlock())
	}
	return out
}

// Predecessors returns every block whose terminator reaches this one.
// The set is cached and recomputed when the method's CFG generation
// moves.
func (bb *BasicBlock) Predecessors() []*BasicBlock {
	m := bb.method
	if bb.predsGen == m.gen {
		return bb.preds
	}
	m.refreshPredecessors()
	return bb.preds
}

// HasSideEffects reports whether any body value is side-effecting.
func (bb *BasicBlock) HasSideEffects() bool {
	for _, ref := range bb.body {
		v := ref.Resolve()
		if v != nil && v.HasSideEffects() {
			return true
		}
	}
	return false
}

// compactBody returns the body with replaced and removed values
// dropped, preserving relative order. removed may be nil.
func (bb *BasicBlock) compactBody(removed map[*Value]struct{}) []ValueRef {
	out := make([]ValueRef, 0, len(bb.body))
	for _, ref := range bb.body {
		v := ref.Direct()
		if v == nil || v.IsReplaced() {
			continue
		}
		if removed != nil {
			if _, ok := removed[v]; ok {
				continue
			}
		}
		out = append(out, ref)
	}
	return out
}

// allocateParameter creates a block parameter owned by this block.
func (bb *BasicBlock) allocateParameter(typ types.TypeID, name string) *Value {
	return &Value{
		id:     bb.method.ctx.newNodeID(),
		kind:   KindParameter,
		block:  bb,
		typ:    typ,
		name:   name,
		sealed: true,
	}
}

func (bb *BasicBlock) parameterOwnerMethod() *Method { return bb.method }
