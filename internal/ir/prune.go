package ir

import (
	"fmt"
)

// RedirectEdge rewires one branch target of this block's terminator to
// a new destination, substituting the given argument tuple. The tuple
// must match the new destination's parameters; the usual arity check
// runs at validation.
func (bld *BlockBuilder) RedirectEdge(target *Value, dest *BasicBlock, args []*Value) error {
	if target == nil || target.Kind() != KindBranchTarget {
		return fmt.Errorf("%w: redirect needs a branch target", ErrInvalidArgument)
	}
	if target.Block() != bld.bb {
		return fmt.Errorf("%w: target %s does not leave block %s", ErrInvalidArgument, target, bld.bb.name)
	}
	if err := bld.checkDestination(dest); err != nil {
		return err
	}
	ops := make([]ValueRef, len(args))
	for i, a := range args {
		if a == nil {
			return fmt.Errorf("%w: nil redirect argument %d", ErrInvalidArgument, i)
		}
		ops[i] = Ref(a)
	}
	target.dest = dest
	target.operands = ops
	bld.bb.method.bumpGeneration()
	return nil
}

// PruneUnreachable detaches every block that cannot be reached from
// the entry and reports how many were dropped.
func (b *Builder) PruneUnreachable() int {
	m := b.m
	marker := m.ctx.NextMarker()
	stack := []*BasicBlock{m.entry}
	m.entry.marker = marker
	for len(stack) > 0 {
		bb := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, succ := range bb.Successors() {
			if succ.marker != marker {
				succ.marker = marker
				stack = append(stack, succ)
			}
		}
	}

	kept := m.blocks[:0]
	dropped := 0
	for _, bb := range m.blocks {
		if bb.marker == marker {
			kept = append(kept, bb)
			continue
		}
		bb.body = nil
		bb.term = nil
		dropped++
	}
	m.blocks = kept
	if dropped > 0 {
		m.bumpGeneration()
	}
	return dropped
}
