package ir

import (
	"fmt"

	"ignis/internal/types"
)

// setTerminator installs t, replacing the previous terminator if any,
// and registers the given target builders by destination.
func (bld *BlockBuilder) setTerminator(t *Value, tbs []*TargetBuilder) error {
	old := bld.bb.term
	bld.bb.term = t
	bld.targets = make(map[*BasicBlock]*TargetBuilder, len(tbs))
	for _, tb := range tbs {
		bld.targets[tb.Destination()] = tb
	}
	if old != nil && !old.IsReplaced() {
		if err := old.Replace(t); err != nil {
			return err
		}
	}
	bld.bb.method.bumpGeneration()
	return nil
}

// Targets returns the target-builder registry of the current
// terminator, keyed by destination block.
func (bld *BlockBuilder) Targets() map[*BasicBlock]*TargetBuilder {
	return bld.targets
}

// AddBranchArgument appends a block argument on the edge to dest. The
// edge must belong to the current terminator.
func (bld *BlockBuilder) AddBranchArgument(dest *BasicBlock, v *Value) error {
	tb, ok := bld.targets[dest]
	if !ok {
		return fmt.Errorf("%w: block %s has no edge to %s", ErrInvalidArgument, bld.bb.name, dest.name)
	}
	return tb.AddArgument(v)
}

// CreateReturn installs a return terminator. v must be nil for a void
// method and match the return type otherwise.
func (bld *BlockBuilder) CreateReturn(v *Value) (*Value, error) {
	m := bld.bb.method
	in := m.ctx.typesIn
	if in.IsVoid(m.returnType) {
		if v != nil {
			return nil, fmt.Errorf("%w: return with value in void method %s", ErrInvalidArgument, m.name)
		}
		t := bld.newValue(KindReturn, in.Builtins().Void)
		return t, bld.setTerminator(t, nil)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: return without value in method %s", ErrInvalidArgument, m.name)
	}
	if v.Type() != m.returnType {
		return nil, fmt.Errorf("%w: return of %s in method %s returning %s",
			ErrInvalidArgument, v, m.name, in.String(m.returnType))
	}
	t := bld.newValue(KindReturn, in.Builtins().Void, Ref(v))
	return t, bld.setTerminator(t, []*TargetBuilder{})
}

// CreateBranch installs an unconditional branch to dest and returns
// the terminator together with the edge's target builder, open for
// block arguments.
func (bld *BlockBuilder) CreateBranch(dest *BasicBlock) (*Value, *TargetBuilder, error) {
	if err := bld.checkDestination(dest); err != nil {
		return nil, nil, err
	}
	tb := newTargetBuilder(bld.bb, dest)
	t := bld.newValue(KindUnconditionalBranch, bld.voidType(), Ref(tb.Target()))
	return t, tb, bld.setTerminator(t, []*TargetBuilder{tb})
}

// CreateConditionalBranch installs a two-target branch on cond, which
// must be an i1.
func (bld *BlockBuilder) CreateConditionalBranch(cond *Value, trueDest, falseDest *BasicBlock) (*Value, error) {
	if cond == nil {
		return nil, fmt.Errorf("%w: nil branch condition", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if cond.Type() != in.Builtins().Int1 {
		return nil, fmt.Errorf("%w: branch condition %s is not i1", ErrInvalidArgument, cond)
	}
	if err := bld.checkDestination(trueDest); err != nil {
		return nil, err
	}
	if err := bld.checkDestination(falseDest); err != nil {
		return nil, err
	}
	tt := newTargetBuilder(bld.bb, trueDest)
	ft := newTargetBuilder(bld.bb, falseDest)
	t := bld.newValue(KindConditionalBranch, bld.voidType(),
		Ref(cond), Ref(tt.Target()), Ref(ft.Target()))
	return t, bld.setTerminator(t, []*TargetBuilder{tt, ft})
}

// CreateSwitchBranch installs a multi-target branch on an integer
// selector. Target 0 is the default. A switch with exactly two targets
// canonicalizes at construction into a conditional branch on
// selector == 0, with the true edge to target 0.
func (bld *BlockBuilder) CreateSwitchBranch(selector *Value, dests []*BasicBlock) (*Value, error) {
	if selector == nil {
		return nil, fmt.Errorf("%w: nil switch selector", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if !in.IsInteger(selector.Type()) {
		return nil, fmt.Errorf("%w: switch selector %s is not an integer", ErrInvalidArgument, selector)
	}
	if len(dests) < 1 {
		return nil, fmt.Errorf("%w: switch needs at least one target", ErrInvalidArgument)
	}
	for _, d := range dests {
		if err := bld.checkDestination(d); err != nil {
			return nil, err
		}
	}
	if len(dests) == 2 {
		zero := bld.CreateInt(selector.Type(), 0)
		cond, err := bld.CreateCompare(CmpEq, selector, zero)
		if err != nil {
			return nil, err
		}
		return bld.CreateConditionalBranch(cond, dests[0], dests[1])
	}
	tbs := make([]*TargetBuilder, 0, len(dests))
	ops := make([]ValueRef, 0, len(dests)+1)
	ops = append(ops, Ref(selector))
	for _, d := range dests {
		tb := newTargetBuilder(bld.bb, d)
		tbs = append(tbs, tb)
		ops = append(ops, Ref(tb.Target()))
	}
	t := bld.newValue(KindSwitchBranch, bld.voidType(), ops...)
	return t, bld.setTerminator(t, tbs)
}

// CreateBuilderTerminator installs the transient construction
// terminator with the given successors. It must be replaced by a real
// terminator before any analysis runs; NewScope rejects methods that
// still carry one.
func (bld *BlockBuilder) CreateBuilderTerminator(dests ...*BasicBlock) (*Value, error) {
	tbs := make([]*TargetBuilder, 0, len(dests))
	ops := make([]ValueRef, 0, len(dests))
	for _, d := range dests {
		if err := bld.checkDestination(d); err != nil {
			return nil, err
		}
		tb := newTargetBuilder(bld.bb, d)
		tbs = append(tbs, tb)
		ops = append(ops, Ref(tb.Target()))
	}
	t := bld.newValue(KindBuilderTerminator, bld.voidType(), ops...)
	return t, bld.setTerminator(t, tbs)
}

func (bld *BlockBuilder) voidType() types.TypeID {
	return bld.bb.method.ctx.typesIn.Builtins().Void
}

func (bld *BlockBuilder) checkDestination(dest *BasicBlock) error {
	if dest == nil {
		return fmt.Errorf("%w: nil branch destination", ErrInvalidArgument)
	}
	if dest.method != bld.bb.method {
		return fmt.Errorf("%w: destination %s belongs to method %s",
			ErrInvalidArgument, dest.name, dest.method.name)
	}
	return nil
}

// SplitBlock cuts the block at v. Body values after v (after-or-
// including when keepValue is false) move into a fresh block along
// with the terminator; the old block branches unconditionally to the
// new one. The new block's builder is returned.
func (bld *BlockBuilder) SplitBlock(v *Value, keepValue bool) (*BlockBuilder, error) {
	at := -1
	for i, ref := range bld.bb.body {
		if ref.Direct() == v {
			at = i
			break
		}
	}
	if at < 0 {
		return nil, fmt.Errorf("%w: split point %s is not in block %s", ErrInvalidArgument, v, bld.bb.name)
	}
	cut := at
	if keepValue {
		cut = at + 1
	}

	m := bld.bb.method
	next := m.createBlock(bld.bb.name + ".split")
	next.span = bld.bb.span

	moved := make([]ValueRef, len(bld.bb.body)-cut)
	copy(moved, bld.bb.body[cut:])
	bld.bb.body = bld.bb.body[:cut]
	for _, ref := range moved {
		if dv := ref.Direct(); dv != nil {
			dv.block = next
		}
	}
	next.body = moved

	// The terminator migrates with its target edges.
	next.term = bld.bb.term
	bld.bb.term = nil
	if next.term != nil {
		next.term.block = next
		for _, tgt := range TerminatorTargets(next.term) {
			tgt.block = next
		}
	}
	nextBld := bld.b.Block(next)
	nextBld.targets, bld.targets = bld.targets, make(map[*BasicBlock]*TargetBuilder)
	nextBld.pos = len(next.body)

	if _, _, err := bld.CreateBranch(next); err != nil {
		return nil, err
	}
	bld.pos = len(bld.bb.body)
	return nextBld, nil
}

// MergeBlock appends other's compacted body to this block, re-parents
// the moved values, and takes over other's terminator; other detaches
// from the method. When mergeParams is true other's parameters are
// appended after this block's own and renumbered, so positional
// conflicts cannot arise; when false the caller must have replaced or
// abandoned them. other must be terminated and must not be the entry
// block or this block.
func (bld *BlockBuilder) MergeBlock(other *BasicBlock, mergeParams bool) error {
	bb := bld.bb
	switch {
	case other == nil:
		return fmt.Errorf("%w: nil merge source", ErrInvalidArgument)
	case other == bb:
		return fmt.Errorf("%w: cannot merge %s into itself", ErrInvalidArgument, bb.name)
	case other.method != bb.method:
		return fmt.Errorf("%w: merge source %s belongs to method %s",
			ErrInvalidArgument, other.name, other.method.name)
	case other == bb.method.entry:
		return fmt.Errorf("%w: cannot merge away the entry block", ErrInvalidArgument)
	case !other.Terminated():
		return fmt.Errorf("%w: merge source %s has no terminator", ErrInvalidState, other.name)
	}

	otherBld := bld.b.Block(other)
	body := other.compactBody(otherBld.removed)
	for _, ref := range body {
		if dv := ref.Direct(); dv != nil {
			dv.block = bb
		}
	}
	bb.body = append(bb.body, body...)

	if mergeParams {
		bb.params.AppendFrom(&other.params)
	}

	old := bb.term
	bb.term = other.term
	bb.term.block = bb
	for _, tgt := range TerminatorTargets(bb.term) {
		tgt.block = bb
	}
	if old != nil && !old.IsReplaced() {
		if err := old.Replace(bb.term); err != nil {
			return err
		}
	}
	bld.targets = otherBld.targets
	otherBld.targets = make(map[*BasicBlock]*TargetBuilder)

	other.body = nil
	other.term = nil
	bb.method.detachBlock(other)
	bld.pos = len(bb.body)
	return nil
}
