package ir

import (
	"fmt"
)

// TerminatorTargets returns the branch-target operands of a
// terminator, in edge order. Return terminators have none.
func TerminatorTargets(t *Value) []*Value {
	switch t.Kind() {
	case KindReturn:
		return nil
	case KindUnconditionalBranch:
		return []*Value{t.Operand(0)}
	case KindConditionalBranch:
		return []*Value{t.Operand(1), t.Operand(2)}
	case KindSwitchBranch:
		out := make([]*Value, 0, t.NumOperands()-1)
		for i := 1; i < t.NumOperands(); i++ {
			out = append(out, t.Operand(i))
		}
		return out
	case KindBuilderTerminator:
		out := make([]*Value, 0, t.NumOperands())
		for i := 0; i < t.NumOperands(); i++ {
			out = append(out, t.Operand(i))
		}
		return out
	}
	return nil
}

// ReturnValue returns the argument of a return terminator, nil for a
// void return.
func ReturnValue(t *Value) *Value {
	if t.Kind() != KindReturn || t.NumOperands() == 0 {
		return nil
	}
	return t.Operand(0)
}

// Condition returns the boolean argument of a conditional branch.
func Condition(t *Value) *Value {
	if t.Kind() != KindConditionalBranch {
		return nil
	}
	return t.Operand(0)
}

// TrueTarget returns the taken-edge target of a conditional branch.
func TrueTarget(t *Value) *Value {
	if t.Kind() != KindConditionalBranch {
		return nil
	}
	return t.Operand(1)
}

// FalseTarget returns the fall-through target of a conditional branch.
func FalseTarget(t *Value) *Value {
	if t.Kind() != KindConditionalBranch {
		return nil
	}
	return t.Operand(2)
}

// SwitchSelector returns the integer argument of a switch branch.
func SwitchSelector(t *Value) *Value {
	if t.Kind() != KindSwitchBranch {
		return nil
	}
	return t.Operand(0)
}

// TargetArguments returns the block arguments a branch target supplies
// to its destination's parameters, positionally matched.
func TargetArguments(target *Value) []*Value {
	out := make([]*Value, 0, target.NumOperands())
	for i := 0; i < target.NumOperands(); i++ {
		out = append(out, target.Operand(i))
	}
	return out
}

// TargetBuilder accumulates the block-argument tuple of one branch
// edge. Every edge owns its own target node; two terminators never
// share one. Arguments are appended as they become known and the node
// is sealed when construction of the predecessor finishes.
type TargetBuilder struct {
	target *Value
	sealed bool
}

// newTargetBuilder creates an unsealed branch-target value bound to a
// destination block.
func newTargetBuilder(from *BasicBlock, dest *BasicBlock) *TargetBuilder {
	t := &Value{
		id:    from.method.ctx.newNodeID(),
		kind:  KindBranchTarget,
		block: from,
		typ:   from.method.ctx.typesIn.Builtins().Void,
		dest:  dest,
	}
	return &TargetBuilder{target: t}
}

// Target returns the branch-target value under construction.
func (tb *TargetBuilder) Target() *Value { return tb.target }

// Destination returns the destination block of the edge.
func (tb *TargetBuilder) Destination() *BasicBlock { return tb.target.dest }

// AddArgument appends a block argument for the next destination
// parameter slot.
func (tb *TargetBuilder) AddArgument(v *Value) error {
	if v == nil {
		return fmt.Errorf("%w: nil branch argument", ErrInvalidArgument)
	}
	if tb.sealed {
		return fmt.Errorf("%w: branch target %s is sealed", ErrInvalidState, tb.target)
	}
	return tb.target.appendOperand(Ref(v))
}

// Seal freezes the argument tuple. Sealing twice is an error.
func (tb *TargetBuilder) Seal() error {
	if tb.sealed {
		return fmt.Errorf("%w: branch target %s already sealed", ErrInvalidState, tb.target)
	}
	tb.sealed = true
	tb.target.sealed = true
	return nil
}
