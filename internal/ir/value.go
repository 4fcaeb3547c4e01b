package ir

import (
	"fmt"

	"ignis/internal/types"
)

// ValueKind enumerates value kinds in the IR.
type ValueKind uint8

const (
	// KindInvalid is the zero kind and never appears in a built graph.
	KindInvalid ValueKind = iota
	// KindParameter represents a function or block parameter.
	KindParameter
	// KindPrimitive represents a typed constant.
	KindPrimitive
	// KindNull represents the null value of a type.
	KindNull
	// KindUnary represents a unary arithmetic operation.
	KindUnary
	// KindBinary represents a binary arithmetic operation.
	KindBinary
	// KindCompare represents a comparison producing an i1.
	KindCompare
	// KindConvert represents a numeric conversion.
	KindConvert
	// KindLoad represents a memory load through an address.
	KindLoad
	// KindStore represents a memory store through an address.
	KindStore
	// KindCall represents a call of another method.
	KindCall
	// KindPredicate represents select(condition, trueValue, falseValue).
	KindPredicate
	// KindReturn is the return terminator.
	KindReturn
	// KindUnconditionalBranch is the single-target branch terminator.
	KindUnconditionalBranch
	// KindConditionalBranch is the two-target branch terminator.
	KindConditionalBranch
	// KindSwitchBranch is the multi-target branch terminator; target 0
	// is the default.
	KindSwitchBranch
	// KindBuilderTerminator is a transient terminator used only while a
	// block is under construction. It must be replaced before any
	// analysis runs.
	KindBuilderTerminator
	// KindBranchTarget is the edge object between a terminator and a
	// destination block, carrying the block-argument tuple.
	KindBranchTarget
)

// IsTerminator reports whether the kind exits a block.
func (k ValueKind) IsTerminator() bool {
	switch k {
	case KindReturn, KindUnconditionalBranch, KindConditionalBranch,
		KindSwitchBranch, KindBuilderTerminator:
		return true
	}
	return false
}

// HasSideEffects reports whether values of this kind are observable
// beyond their result.
func (k ValueKind) HasSideEffects() bool {
	switch k {
	case KindStore, KindCall:
		return true
	}
	return false
}

// Prefix returns the short mnemonic used by dumps and debug output.
func (k ValueKind) Prefix() string {
	switch k {
	case KindParameter:
		return "param"
	case KindPrimitive:
		return "const"
	case KindNull:
		return "null"
	case KindUnary:
		return "unary"
	case KindBinary:
		return "binary"
	case KindCompare:
		return "cmp"
	case KindConvert:
		return "conv"
	case KindLoad:
		return "load"
	case KindStore:
		return "store"
	case KindCall:
		return "call"
	case KindPredicate:
		return "pred"
	case KindReturn:
		return "ret"
	case KindUnconditionalBranch:
		return "branch"
	case KindConditionalBranch:
		return "branch.if"
	case KindSwitchBranch:
		return "switch"
	case KindBuilderTerminator:
		return "branch.builder"
	case KindBranchTarget:
		return "target"
	}
	return "invalid"
}

func (k ValueKind) String() string { return k.Prefix() }

// UnaryKind enumerates unary operators.
type UnaryKind uint8

const (
	UnaryNeg UnaryKind = iota
	UnaryNot
)

func (k UnaryKind) String() string {
	if k == UnaryNot {
		return "not"
	}
	return "neg"
}

// BinaryKind enumerates binary arithmetic operators.
type BinaryKind uint8

const (
	BinAdd BinaryKind = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
)

func (k BinaryKind) String() string {
	switch k {
	case BinAdd:
		return "add"
	case BinSub:
		return "sub"
	case BinMul:
		return "mul"
	case BinDiv:
		return "div"
	case BinRem:
		return "rem"
	case BinAnd:
		return "and"
	case BinOr:
		return "or"
	case BinXor:
		return "xor"
	case BinShl:
		return "shl"
	case BinShr:
		return "shr"
	}
	return "?"
}

// CompareKind enumerates comparison operators.
type CompareKind uint8

const (
	CmpEq CompareKind = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

func (k CompareKind) String() string {
	switch k {
	case CmpEq:
		return "eq"
	case CmpNe:
		return "ne"
	case CmpLt:
		return "lt"
	case CmpLe:
		return "le"
	case CmpGt:
		return "gt"
	case CmpGe:
		return "ge"
	}
	return "?"
}

// ConstKind discriminates primitive payloads.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
)

// Const is the payload of a primitive value.
type Const struct {
	Kind       ConstKind
	IntValue   int64
	FloatValue float64
}

func (c Const) String() string {
	if c.Kind == ConstFloat {
		return fmt.Sprintf("%g", c.FloatValue)
	}
	return fmt.Sprintf("%d", c.IntValue)
}

// Value is a node of the IR graph. The kind tag selects which payload
// fields are meaningful. Operands are frozen once the value is sealed;
// the only mutation permitted afterwards is Replace.
type Value struct {
	id       NodeID
	kind     ValueKind
	block    *BasicBlock // nil for function parameters and constants
	typ      types.TypeID
	operands []ValueRef
	sealed   bool

	replacement *Value

	// owner is the method a block-less value (function parameter or
	// constant) belongs to; block values reach their method through the
	// parent block instead.
	owner *Method

	// payloads, selected by kind
	index  int         // KindParameter: position in the owner list
	name   string      // KindParameter: debug name
	dest   *BasicBlock // KindBranchTarget: destination block
	unary  UnaryKind   // KindUnary
	binary BinaryKind  // KindBinary
	cmp    CompareKind // KindCompare
	konst  Const       // KindPrimitive
	callee *Method     // KindCall
}

// ID returns the context-unique node id.
func (v *Value) ID() NodeID { return v.id }

// Kind returns the kind tag.
func (v *Value) Kind() ValueKind { return v.kind }

// Block returns the basic block owning this value. It is nil for
// function parameters and constants.
func (v *Value) Block() *BasicBlock { return v.block }

// Type returns the result type handle.
func (v *Value) Type() types.TypeID { return v.typ }

// IsSealed reports whether the operand list is frozen.
func (v *Value) IsSealed() bool { return v.sealed }

// IsReplaced reports whether the value has been replaced.
func (v *Value) IsReplaced() bool { return v.replacement != nil }

// NumOperands returns the operand count.
func (v *Value) NumOperands() int { return len(v.operands) }

// Operand resolves the i-th operand through replacement chains.
func (v *Value) Operand(i int) *Value { return v.operands[i].Resolve() }

// OperandRef returns the i-th operand reference as stored.
func (v *Value) OperandRef(i int) ValueRef { return v.operands[i] }

// Operands returns the stored operand references. The returned slice
// aliases internal storage and must not be modified.
func (v *Value) Operands() []ValueRef { return v.operands }

// Seal freezes the operand list. Constructors that know their operands
// up front seal immediately; parameters and branch targets accumulate
// operands first. Sealing an already sealed value with the identical
// operand slice is a no-op.
func (v *Value) Seal(operands []ValueRef) error {
	if v.sealed {
		if len(operands) == len(v.operands) {
			same := true
			for i := range operands {
				if operands[i] != v.operands[i] {
					same = false
					break
				}
			}
			if same {
				return nil
			}
		}
		return fmt.Errorf("%w: value %s already sealed", ErrInvalidState, v)
	}
	v.operands = operands
	v.sealed = true
	return nil
}

// appendOperand is construction-only growth for parameters and branch
// targets.
func (v *Value) appendOperand(r ValueRef) error {
	if v.sealed {
		return fmt.Errorf("%w: cannot append operand to sealed value %s", ErrInvalidState, v)
	}
	v.operands = append(v.operands, r)
	return nil
}

// Replace redirects every reference to v towards other. The
// replacement is monotone: it cannot be cleared, and replacing an
// already replaced value is only legal when the chains meet at the
// same resolved target.
func (v *Value) Replace(other *Value) error {
	if other == nil {
		return fmt.Errorf("%w: replacement target is nil", ErrInvalidArgument)
	}
	if other.Resolved() == v {
		return fmt.Errorf("%w: replacement of %s forms a cycle", ErrInvalidArgument, v)
	}
	if v.block != nil && other.block != nil && v.block.method != other.block.method {
		return fmt.Errorf("%w: replacement target %s belongs to a different method", ErrInvalidArgument, other)
	}
	if v.replacement != nil {
		if v.Resolved() == other.Resolved() {
			return nil
		}
		return fmt.Errorf("%w: value %s is already replaced", ErrInvalidState, v)
	}
	v.replacement = other
	return nil
}

// DirectTarget returns the immediate replacement, or v itself when not
// replaced.
func (v *Value) DirectTarget() *Value {
	if v.replacement == nil {
		return v
	}
	return v.replacement
}

// Resolved follows the replacement chain to its end, shortening the
// chain on the way so later resolutions are O(1).
func (v *Value) Resolved() *Value {
	if v.replacement == nil {
		return v
	}
	root := v
	for root.replacement != nil {
		root = root.replacement
	}
	for cur := v; cur != root; {
		next := cur.replacement
		cur.replacement = root
		cur = next
	}
	return root
}

// Parameter payload accessors.

// Index returns the position of a parameter in its owner list.
func (v *Value) Index() int { return v.index }

// Name returns the debug name of a parameter.
func (v *Value) Name() string { return v.name }

// DestinationBlock returns the destination of a branch target.
func (v *Value) DestinationBlock() *BasicBlock { return v.dest }

// UnaryOp returns the operator of a unary value.
func (v *Value) UnaryOp() UnaryKind { return v.unary }

// BinaryOp returns the operator of a binary value.
func (v *Value) BinaryOp() BinaryKind { return v.binary }

// CompareOp returns the operator of a compare value.
func (v *Value) CompareOp() CompareKind { return v.cmp }

// ConstValue returns the payload of a primitive value.
func (v *Value) ConstValue() Const { return v.konst }

// Callee returns the target method of a call value.
func (v *Value) Callee() *Method { return v.callee }

// HasSideEffects reports whether the value is observable beyond its
// result.
func (v *Value) HasSideEffects() bool { return v.kind.HasSideEffects() }

// String renders the debug form "<type> <reference>".
func (v *Value) String() string {
	var tn string
	if m := v.method(); m != nil {
		tn = m.ctx.typesIn.String(v.typ)
	} else {
		tn = fmt.Sprintf("t%d", v.typ)
	}
	return fmt.Sprintf("%s %%%d", tn, v.id)
}

// method walks to the owning method, via the parent block for block
// values and via the parameter owner for function parameters.
func (v *Value) method() *Method {
	if v.block != nil {
		return v.block.method
	}
	return v.owner
}
