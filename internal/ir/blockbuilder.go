package ir

import (
	"fmt"

	"ignis/internal/source"
	"ignis/internal/types"
)

// BlockBuilder mutates one basic block. It holds an insertion cursor,
// a schedule of pending removals, and the registry of branch-target
// builders of the current terminator, keyed by destination block.
type BlockBuilder struct {
	b  *Builder
	bb *BasicBlock

	// pos is the body index the next value is inserted at.
	pos     int
	removed map[*Value]struct{}
	targets map[*BasicBlock]*TargetBuilder
}

// Block returns the block under mutation.
func (bld *BlockBuilder) Block() *BasicBlock { return bld.bb }

// MethodBuilder returns the owning method builder.
func (bld *BlockBuilder) MethodBuilder() *Builder { return bld.b }

// SetSpan attaches a sequence point to the block.
func (bld *BlockBuilder) SetSpan(sp source.Span) { bld.bb.span = sp }

// AddParameter appends a block parameter.
func (bld *BlockBuilder) AddParameter(typ types.TypeID, name string) *Value {
	return bld.bb.params.Add(typ, name)
}

// SetupInsertPosition places the cursor immediately after v.
func (bld *BlockBuilder) SetupInsertPosition(v *Value) error {
	for i, ref := range bld.bb.body {
		if ref.Direct() == v {
			bld.pos = i + 1
			return nil
		}
	}
	return fmt.Errorf("%w: value %s is not in block %s", ErrInvalidArgument, v, bld.bb.name)
}

// SetInsertPositionToEnd places the cursor after the last body value.
func (bld *BlockBuilder) SetInsertPositionToEnd() {
	bld.pos = len(bld.bb.body)
}

// InsertAtBeginning moves v, which must already be in this block's
// body, to the front. The cursor does not move past the previous head.
func (bld *BlockBuilder) InsertAtBeginning(v *Value) error {
	for i, ref := range bld.bb.body {
		if ref.Direct() == v {
			copy(bld.bb.body[1:i+1], bld.bb.body[:i])
			bld.bb.body[0] = ref
			if bld.pos <= i {
				bld.pos++
			}
			return nil
		}
	}
	return fmt.Errorf("%w: value %s is not in block %s", ErrInvalidArgument, v, bld.bb.name)
}

// Remove schedules v for removal; the body compacts on PerformRemoval
// or on builder disposal.
func (bld *BlockBuilder) Remove(v *Value) {
	if bld.removed == nil {
		bld.removed = make(map[*Value]struct{})
	}
	bld.removed[v] = struct{}{}
}

// PerformRemoval compacts the body, dropping scheduled and replaced
// values while preserving relative order. The cursor moves to the end.
func (bld *BlockBuilder) PerformRemoval() {
	bld.performRemoval()
}

func (bld *BlockBuilder) performRemoval() {
	bld.bb.body = bld.bb.compactBody(bld.removed)
	bld.removed = nil
	bld.pos = len(bld.bb.body)
}

// Clear drops every non-terminator value.
func (bld *BlockBuilder) Clear() {
	bld.bb.body = nil
	bld.removed = nil
	bld.pos = 0
}

// add inserts a newly created value at the cursor and advances it.
func (bld *BlockBuilder) add(v *Value) *Value {
	body := bld.bb.body
	if bld.pos >= len(body) {
		bld.bb.body = append(body, Ref(v))
	} else {
		body = append(body, ValueRef{})
		copy(body[bld.pos+1:], body[bld.pos:])
		body[bld.pos] = Ref(v)
		bld.bb.body = body
	}
	bld.pos++
	return v
}

func (bld *BlockBuilder) newValue(kind ValueKind, typ types.TypeID, ops ...ValueRef) *Value {
	return &Value{
		id:       bld.bb.method.ctx.newNodeID(),
		kind:     kind,
		block:    bld.bb,
		typ:      typ,
		operands: ops,
		sealed:   true,
	}
}

// Constant creation delegates to the method builder; constants are
// shared across blocks.

// CreatePrimitive returns the interned constant of the given payload.
func (bld *BlockBuilder) CreatePrimitive(typ types.TypeID, c Const) *Value {
	return bld.b.CreatePrimitive(typ, c)
}

// CreateInt returns an integer constant.
func (bld *BlockBuilder) CreateInt(typ types.TypeID, v int64) *Value {
	return bld.b.CreateInt(typ, v)
}

// CreateFloat returns a floating-point constant.
func (bld *BlockBuilder) CreateFloat(typ types.TypeID, v float64) *Value {
	return bld.b.CreateFloat(typ, v)
}

// CreateNull returns the null value of a type.
func (bld *BlockBuilder) CreateNull(typ types.TypeID) *Value {
	return bld.b.CreateNull(typ)
}

// CreateUnary inserts a unary arithmetic value.
func (bld *BlockBuilder) CreateUnary(op UnaryKind, v *Value) (*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if !in.IsPrimitive(v.Type()) {
		return nil, fmt.Errorf("%w: unary %s on non-primitive %s", ErrInvalidArgument, op, v)
	}
	val := bld.newValue(KindUnary, v.Type(), Ref(v))
	val.unary = op
	return bld.add(val), nil
}

// CreateBinary inserts a binary arithmetic value. Both operands must
// share one primitive type.
func (bld *BlockBuilder) CreateBinary(op BinaryKind, left, right *Value) (*Value, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if !in.IsPrimitive(left.Type()) || left.Type() != right.Type() {
		return nil, fmt.Errorf("%w: binary %s on mismatched operands %s, %s",
			ErrInvalidArgument, op, left, right)
	}
	val := bld.newValue(KindBinary, left.Type(), Ref(left), Ref(right))
	val.binary = op
	return bld.add(val), nil
}

// CreateCompare inserts a comparison producing an i1.
func (bld *BlockBuilder) CreateCompare(op CompareKind, left, right *Value) (*Value, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if !in.IsPrimitive(left.Type()) || left.Type() != right.Type() {
		return nil, fmt.Errorf("%w: compare %s on mismatched operands %s, %s",
			ErrInvalidArgument, op, left, right)
	}
	val := bld.newValue(KindCompare, in.Builtins().Int1, Ref(left), Ref(right))
	val.cmp = op
	return bld.add(val), nil
}

// CreateConvert inserts a numeric conversion.
func (bld *BlockBuilder) CreateConvert(v *Value, typ types.TypeID) (*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if !in.IsPrimitive(v.Type()) || !in.IsPrimitive(typ) {
		return nil, fmt.Errorf("%w: convert between non-primitives", ErrInvalidArgument)
	}
	return bld.add(bld.newValue(KindConvert, typ, Ref(v))), nil
}

// CreateLoad inserts a load of typ through addr.
func (bld *BlockBuilder) CreateLoad(addr *Value, typ types.TypeID) (*Value, error) {
	if addr == nil {
		return nil, fmt.Errorf("%w: nil address", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if in.Builtins().Ptr != addr.Type() {
		return nil, fmt.Errorf("%w: load address %s is not a pointer", ErrInvalidArgument, addr)
	}
	return bld.add(bld.newValue(KindLoad, typ, Ref(addr))), nil
}

// CreateStore inserts a store of v through addr.
func (bld *BlockBuilder) CreateStore(addr, v *Value) (*Value, error) {
	if addr == nil || v == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if in.Builtins().Ptr != addr.Type() {
		return nil, fmt.Errorf("%w: store address %s is not a pointer", ErrInvalidArgument, addr)
	}
	return bld.add(bld.newValue(KindStore, in.Builtins().Void, Ref(addr), Ref(v))), nil
}

// CreateCall inserts a call of callee. Argument count and types must
// match the callee's function parameters.
func (bld *BlockBuilder) CreateCall(callee *Method, args ...*Value) (*Value, error) {
	if callee == nil {
		return nil, fmt.Errorf("%w: nil callee", ErrInvalidArgument)
	}
	if len(args) != callee.params.Len() {
		return nil, fmt.Errorf("%w: call of %s with %d arguments, want %d",
			ErrInvalidArgument, callee.name, len(args), callee.params.Len())
	}
	ops := make([]ValueRef, 0, len(args))
	for i, a := range args {
		if a == nil {
			return nil, fmt.Errorf("%w: nil call argument %d", ErrInvalidArgument, i)
		}
		if a.Type() != callee.params.At(i).Type() {
			return nil, fmt.Errorf("%w: call argument %d has type %s, want %s",
				ErrInvalidArgument, i, a, callee.params.At(i))
		}
		ops = append(ops, Ref(a))
	}
	val := bld.newValue(KindCall, callee.returnType, ops...)
	val.callee = callee
	return bld.add(val), nil
}

// CreatePredicate inserts select(condition, trueValue, falseValue).
func (bld *BlockBuilder) CreatePredicate(cond, trueValue, falseValue *Value) (*Value, error) {
	if cond == nil || trueValue == nil || falseValue == nil {
		return nil, fmt.Errorf("%w: nil operand", ErrInvalidArgument)
	}
	in := bld.bb.method.ctx.typesIn
	if cond.Type() != in.Builtins().Int1 {
		return nil, fmt.Errorf("%w: predicate condition %s is not i1", ErrInvalidArgument, cond)
	}
	if trueValue.Type() != falseValue.Type() {
		return nil, fmt.Errorf("%w: predicate arms differ: %s vs %s",
			ErrInvalidArgument, trueValue, falseValue)
	}
	return bld.add(bld.newValue(KindPredicate, trueValue.Type(),
		Ref(cond), Ref(trueValue), Ref(falseValue))), nil
}
