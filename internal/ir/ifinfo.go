package ir

// IfVariable pairs one exit-block parameter with the two values the
// diamond arms feed it.
type IfVariable struct {
	Param      *Value
	TrueValue  *Value
	FalseValue *Value
}

// IfInfo describes one recognized high-level if: an entry block ending
// in a conditional branch, the two arm blocks, and the join block the
// arms branch to.
type IfInfo struct {
	Condition *Value
	Entry     *BasicBlock
	IfBlock   *BasicBlock
	ElseBlock *BasicBlock
	ExitBlock *BasicBlock
}

// IsSimple reports whether the if is a plain diamond: the entry
// branches directly to the two arms, each arm is single-entry and
// branches only to the exit.
func (info *IfInfo) IsSimple() bool {
	if info.IfBlock == info.ExitBlock || info.ElseBlock == info.ExitBlock {
		return false
	}
	if info.IfBlock == info.ElseBlock {
		return false
	}
	for _, arm := range []*BasicBlock{info.IfBlock, info.ElseBlock} {
		succs := arm.Successors()
		if len(succs) != 1 || succs[0] != info.ExitBlock {
			return false
		}
		if len(arm.Predecessors()) != 1 {
			return false
		}
	}
	return true
}

// armTargetTo returns the branch target through which arm reaches
// dest, nil when there is none.
func armTargetTo(arm, dest *BasicBlock) *Value {
	t := arm.Terminator()
	if t == nil {
		return nil
	}
	for _, tgt := range TerminatorTargets(t) {
		if tgt.DestinationBlock() == dest {
			return tgt
		}
	}
	return nil
}

// Variables pairs the exit block's parameters positionally with the
// branch arguments supplied by the two arms. It requires a simple if.
func (info *IfInfo) Variables() []IfVariable {
	tt := armTargetTo(info.IfBlock, info.ExitBlock)
	ft := armTargetTo(info.ElseBlock, info.ExitBlock)
	if tt == nil || ft == nil {
		return nil
	}
	params := info.ExitBlock.Params()
	out := make([]IfVariable, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		if i >= tt.NumOperands() || i >= ft.NumOperands() {
			break
		}
		out = append(out, IfVariable{
			Param:      params.At(i),
			TrueValue:  tt.Operand(i),
			FalseValue: ft.Operand(i),
		})
	}
	return out
}

// IfInfos is the result of sweeping a dominator tree for high-level if
// patterns: every block with exactly two predecessors whose common
// immediate dominator has two successors and ends in a conditional
// branch. The recorded arms are that branch's targets, which need not
// be the exit's predecessors; IsSimple checks the diamond shape.
type IfInfos struct {
	dom   *Dominators
	infos []IfInfo
}

// NewIfInfos recognizes if patterns over a dominator tree.
func NewIfInfos(dom *Dominators) *IfInfos {
	s := dom.Scope()
	res := &IfInfos{dom: dom}
	for i := 0; i < s.Len(); i++ {
		exit := s.Block(i)
		preds := exit.Predecessors()
		if len(preds) != 2 {
			continue
		}
		entry := dom.ImmediateCommonDominator(preds[0], preds[1])
		if entry == nil || len(entry.Successors()) != 2 {
			continue
		}
		t := entry.Terminator()
		if t == nil || t.Kind() != KindConditionalBranch {
			continue
		}
		res.infos = append(res.infos, IfInfo{
			Condition: Condition(t),
			Entry:     entry,
			IfBlock:   TrueTarget(t).DestinationBlock(),
			ElseBlock: FalseTarget(t).DestinationBlock(),
			ExitBlock: exit,
		})
	}
	return res
}

// Infos returns the recognized patterns in RPO order of their exit
// blocks.
func (r *IfInfos) Infos() []IfInfo { return r.infos }
