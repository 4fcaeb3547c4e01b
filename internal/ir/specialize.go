package ir

import (
	"fmt"
)

// SpecializeCall inlines a call: the block splits at the call, the
// callee's scope is rebuilt into fresh blocks with its parameters
// bound to the call's arguments, the callee entry is wired to this
// block and every callee exit to the post-split tail. The call value
// is replaced by the single exit's return value, or by a new tail
// parameter fed by all exits.
func (bld *BlockBuilder) SpecializeCall(call *Value, scope *Scope) error {
	if call == nil || call.Kind() != KindCall {
		return fmt.Errorf("%w: specialization needs a call value", ErrInvalidArgument)
	}
	if call.Block() != bld.bb {
		return fmt.Errorf("%w: call %s is not in block %s", ErrInvalidArgument, call, bld.bb.name)
	}
	callee := call.Callee()
	if scope == nil || scope.Method() != callee {
		return fmt.Errorf("%w: scope does not describe callee %s", ErrIncompatible, callee.name)
	}
	if callee == bld.bb.method {
		return fmt.Errorf("%w: cannot specialize a self-call", ErrIncompatible)
	}
	if callee.params.Len() != call.NumOperands() {
		return fmt.Errorf("%w: callee %s expects %d parameters, call has %d arguments",
			ErrIncompatible, callee.name, callee.params.Len(), call.NumOperands())
	}

	tail, err := bld.SplitBlock(call, true)
	if err != nil {
		return err
	}

	in := bld.bb.method.ctx.typesIn
	voidReturn := in.IsVoid(callee.returnType)

	type exit struct {
		bld *BlockBuilder
		val *Value
	}
	var exits []exit

	r := NewRebuilder(bld.b)
	for i, p := range callee.params.Values() {
		r.MapValue(p, call.Operand(i))
	}
	r.OnReturn(func(dst *BlockBuilder, returnValue *Value) error {
		exits = append(exits, exit{bld: dst, val: returnValue})
		return nil
	})
	if err := r.Rebuild(scope); err != nil {
		return err
	}
	if len(exits) == 0 {
		return fmt.Errorf("%w: callee %s has no return", ErrIncompatible, callee.name)
	}

	// Route this block into the rebuilt entry instead of the tail.
	entry := r.RebuiltBlock(callee.EntryBlock())
	if _, _, err := bld.CreateBranch(entry.Block()); err != nil {
		return err
	}

	// Wire every callee exit to the tail and retire the call value.
	switch {
	case voidReturn:
		for _, e := range exits {
			if _, _, err := e.bld.CreateBranch(tail.Block()); err != nil {
				return err
			}
		}
		if err := call.Replace(bld.b.CreateNull(callee.returnType)); err != nil {
			return err
		}
	case len(exits) == 1:
		if _, _, err := exits[0].bld.CreateBranch(tail.Block()); err != nil {
			return err
		}
		if err := call.Replace(exits[0].val); err != nil {
			return err
		}
	default:
		result := tail.AddParameter(callee.returnType, callee.name+".result")
		for _, e := range exits {
			_, tb, err := e.bld.CreateBranch(tail.Block())
			if err != nil {
				return err
			}
			if err := tb.AddArgument(e.val); err != nil {
				return err
			}
		}
		if err := call.Replace(result); err != nil {
			return err
		}
	}

	// The call compacts away with the replaced values on disposal.
	bld.Remove(call)
	return nil
}
