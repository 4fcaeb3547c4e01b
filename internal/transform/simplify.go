package transform

import (
	"ignis/internal/ir"
)

// SimplifyBranches performs control-flow cleanup on a method:
//
//  1. Forward edges through trivial branch blocks (no body, no
//     parameters, unconditional branch), collapsing chains.
//  2. Drop blocks that became unreachable.
type SimplifyBranches struct{}

func (SimplifyBranches) Name() string { return "simplify-branches" }

func (SimplifyBranches) Apply(m *ir.Method) (bool, error) {
	b, err := m.NewBuilder()
	if err != nil {
		return false, err
	}

	// Phase 1: resolve each trivial block to its final target,
	// following chains but stopping on cycles.
	type redirect struct {
		dest *ir.BasicBlock
		args []*ir.Value
	}
	redirects := make(map[*ir.BasicBlock]redirect)
	for _, bb := range m.Blocks() {
		if !isTrivialBranchBlock(bb) {
			continue
		}
		seen := map[*ir.BasicBlock]struct{}{bb: {}}
		cur := bb
		for {
			next := cur.Successors()[0]
			if _, cycle := seen[next]; cycle || !isTrivialBranchBlock(next) {
				target := ir.TerminatorTargets(cur.Terminator())[0]
				redirects[bb] = redirect{dest: next, args: ir.TargetArguments(target)}
				break
			}
			seen[next] = struct{}{}
			cur = next
		}
	}

	// Phase 2: rewire every edge into a trivial block.
	changed := false
	for _, bb := range m.Blocks() {
		t := bb.Terminator()
		if t == nil {
			continue
		}
		if _, trivial := redirects[bb]; trivial {
			continue
		}
		bld := b.Block(bb)
		for _, target := range ir.TerminatorTargets(t) {
			r, ok := redirects[target.DestinationBlock()]
			if !ok || r.dest == target.DestinationBlock() {
				continue
			}
			if err := bld.RedirectEdge(target, r.dest, r.args); err != nil {
				b.Abandon()
				return false, err
			}
			changed = true
		}
	}

	// Phase 3: the forwarded blocks (and anything else that lost its
	// last predecessor) drop out.
	if b.PruneUnreachable() > 0 {
		changed = true
	}

	if err := b.Dispose(); err != nil {
		return changed, err
	}
	return changed, nil
}

// isTrivialBranchBlock reports whether bb only forwards control: no
// body, no parameters, an argument-less unconditional branch, and not
// the entry block.
func isTrivialBranchBlock(bb *ir.BasicBlock) bool {
	if bb == bb.Method().EntryBlock() {
		return false
	}
	if len(bb.Body()) != 0 || bb.Params().Len() != 0 {
		return false
	}
	t := bb.Terminator()
	if t == nil || t.Kind() != ir.KindUnconditionalBranch {
		return false
	}
	// Forwarding an edge that carries arguments would move their
	// evaluation point above the block they dominate.
	return ir.TerminatorTargets(t)[0].NumOperands() == 0
}
