package ir

import (
	"fmt"
)

// Rebuilder clones a scope's graph into another method, remapping
// every operand through an explicit value map. Call specialization and
// method cloning are built on top of it.
type Rebuilder struct {
	target *Builder
	values map[*Value]*Value
	blocks map[*BasicBlock]*BlockBuilder

	// onReturn, when set, handles source return terminators instead of
	// cloning them; call specialization uses it to route callee exits
	// into the post-split tail.
	onReturn func(dst *BlockBuilder, returnValue *Value) error
}

// OnReturn installs a handler replacing the cloning of return
// terminators. The handler receives the destination block builder and
// the remapped return value (nil for void).
func (r *Rebuilder) OnReturn(fn func(dst *BlockBuilder, returnValue *Value) error) {
	r.onReturn = fn
}

// NewRebuilder creates a rebuilder writing into target.
func NewRebuilder(target *Builder) *Rebuilder {
	return &Rebuilder{
		target: target,
		values: make(map[*Value]*Value),
		blocks: make(map[*BasicBlock]*BlockBuilder),
	}
}

// MapValue seeds the remapping: every operand reference to src resolves
// to dst in the rebuilt graph. Function parameters of the source must
// be seeded this way before Rebuild.
func (r *Rebuilder) MapValue(src, dst *Value) {
	r.values[src.Resolved()] = dst
}

// MapBlock routes a source block into an existing destination builder
// instead of a fresh block. Mapping the source entry onto the target's
// entry turns Rebuild into a whole-method clone.
func (r *Rebuilder) MapBlock(src *BasicBlock, dst *BlockBuilder) {
	r.blocks[src] = dst
}

// RebuiltBlock returns the destination builder of a source block.
func (r *Rebuilder) RebuiltBlock(src *BasicBlock) *BlockBuilder {
	return r.blocks[src]
}

// RebuiltValue returns the destination value of a source value.
func (r *Rebuilder) RebuiltValue(src *Value) *Value {
	return r.values[src.Resolved()]
}

func (r *Rebuilder) mapOperand(v *Value) (*Value, error) {
	v = v.Resolved()
	if d, ok := r.values[v]; ok {
		return d, nil
	}
	// Constants are shared and interned on demand in the target.
	switch v.Kind() {
	case KindPrimitive:
		return r.target.CreatePrimitive(v.Type(), v.ConstValue()), nil
	case KindNull:
		return r.target.CreateNull(v.Type()), nil
	}
	return nil, fmt.Errorf("%w: rebuild mapping does not cover %s", ErrIncompatible, v)
}

// Rebuild clones every block of scope into the target method: blocks
// and their parameters first, then bodies in reverse post-order, then
// terminators with remapped branch arguments.
func (r *Rebuilder) Rebuild(scope *Scope) error {
	// Pass 1: blocks and block parameters.
	for _, src := range scope.Blocks() {
		dst, ok := r.blocks[src]
		if !ok {
			dst = r.target.CreateBlock(src.Name())
			dst.SetSpan(src.Span())
			r.blocks[src] = dst
		}
		for _, p := range src.Params().Values() {
			r.values[p] = dst.AddParameter(p.Type(), p.Name())
		}
	}

	// Pass 2: bodies. RPO guarantees operand definitions are cloned
	// before their uses; the only back edges run through block
	// parameters, which pass 1 created.
	for _, src := range scope.Blocks() {
		dst := r.blocks[src]
		for _, ref := range src.Body() {
			v := ref.Resolve()
			if v == nil || v.IsReplaced() {
				continue
			}
			cloned, err := r.rebuildValue(dst, v)
			if err != nil {
				return err
			}
			r.values[v] = cloned
		}
	}

	// Pass 3: terminators and branch arguments.
	for _, src := range scope.Blocks() {
		if err := r.rebuildTerminator(r.blocks[src], src); err != nil {
			return err
		}
	}
	return nil
}

func (r *Rebuilder) rebuildValue(dst *BlockBuilder, v *Value) (*Value, error) {
	op := func(i int) (*Value, error) { return r.mapOperand(v.Operand(i)) }

	switch v.Kind() {
	case KindUnary:
		a, err := op(0)
		if err != nil {
			return nil, err
		}
		return dst.CreateUnary(v.UnaryOp(), a)
	case KindBinary:
		a, err := op(0)
		if err != nil {
			return nil, err
		}
		b, err := op(1)
		if err != nil {
			return nil, err
		}
		return dst.CreateBinary(v.BinaryOp(), a, b)
	case KindCompare:
		a, err := op(0)
		if err != nil {
			return nil, err
		}
		b, err := op(1)
		if err != nil {
			return nil, err
		}
		return dst.CreateCompare(v.CompareOp(), a, b)
	case KindConvert:
		a, err := op(0)
		if err != nil {
			return nil, err
		}
		return dst.CreateConvert(a, v.Type())
	case KindLoad:
		a, err := op(0)
		if err != nil {
			return nil, err
		}
		return dst.CreateLoad(a, v.Type())
	case KindStore:
		a, err := op(0)
		if err != nil {
			return nil, err
		}
		b, err := op(1)
		if err != nil {
			return nil, err
		}
		return dst.CreateStore(a, b)
	case KindCall:
		args := make([]*Value, v.NumOperands())
		for i := range args {
			a, err := op(i)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return dst.CreateCall(v.Callee(), args...)
	case KindPredicate:
		c, err := op(0)
		if err != nil {
			return nil, err
		}
		t, err := op(1)
		if err != nil {
			return nil, err
		}
		f, err := op(2)
		if err != nil {
			return nil, err
		}
		return dst.CreatePredicate(c, t, f)
	}
	return nil, fmt.Errorf("%w: cannot rebuild %s value %s", ErrIncompatible, v.Kind(), v)
}

func (r *Rebuilder) rebuildTerminator(dst *BlockBuilder, src *BasicBlock) error {
	t := src.Terminator()
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case KindReturn:
		var rv *Value
		if v := ReturnValue(t); v != nil {
			mapped, err := r.mapOperand(v)
			if err != nil {
				return err
			}
			rv = mapped
		}
		if r.onReturn != nil {
			return r.onReturn(dst, rv)
		}
		_, err := dst.CreateReturn(rv)
		return err
	case KindUnconditionalBranch:
		target := TerminatorTargets(t)[0]
		_, tb, err := dst.CreateBranch(r.blocks[target.DestinationBlock()].Block())
		if err != nil {
			return err
		}
		return r.rebuildArguments(tb, target)
	case KindConditionalBranch:
		cond, err := r.mapOperand(Condition(t))
		if err != nil {
			return err
		}
		tt, ft := TrueTarget(t), FalseTarget(t)
		if _, err := dst.CreateConditionalBranch(cond,
			r.blocks[tt.DestinationBlock()].Block(),
			r.blocks[ft.DestinationBlock()].Block()); err != nil {
			return err
		}
		if err := r.rebuildArguments(dst.targets[r.blocks[tt.DestinationBlock()].Block()], tt); err != nil {
			return err
		}
		return r.rebuildArguments(dst.targets[r.blocks[ft.DestinationBlock()].Block()], ft)
	case KindSwitchBranch:
		sel, err := r.mapOperand(SwitchSelector(t))
		if err != nil {
			return err
		}
		targets := TerminatorTargets(t)
		dests := make([]*BasicBlock, len(targets))
		for i, tgt := range targets {
			dests[i] = r.blocks[tgt.DestinationBlock()].Block()
		}
		if _, err := dst.CreateSwitchBranch(sel, dests); err != nil {
			return err
		}
		for i, tgt := range targets {
			if err := r.rebuildArguments(dst.targets[dests[i]], tgt); err != nil {
				return err
			}
		}
		return nil
	case KindBuilderTerminator:
		return fmt.Errorf("%w: cannot rebuild a builder terminator", ErrInvalidState)
	}
	return fmt.Errorf("%w: unknown terminator %s", ErrInternal, t)
}

func (r *Rebuilder) rebuildArguments(tb *TargetBuilder, srcTarget *Value) error {
	if tb == nil {
		return fmt.Errorf("%w: rebuilt edge lost its target builder", ErrInternal)
	}
	for _, arg := range TargetArguments(srcTarget) {
		mapped, err := r.mapOperand(arg)
		if err != nil {
			return err
		}
		if err := tb.AddArgument(mapped); err != nil {
			return err
		}
	}
	return nil
}

// CloneMethod rebuilds scope into the method under dst with an
// identity parameter mapping: fresh function parameters with the same
// types and names, the source entry mapped onto dst's entry block. The
// result is isomorphic to the source.
func CloneMethod(scope *Scope, dst *Builder) error {
	if dst.Method() == scope.Method() {
		return fmt.Errorf("%w: cannot clone a method into itself", ErrIncompatible)
	}
	r := NewRebuilder(dst)
	for _, p := range scope.Method().Params().Values() {
		r.MapValue(p, dst.AddParameter(p.Type(), p.Name()))
	}
	r.MapBlock(scope.Method().EntryBlock(), dst.EntryBlock())
	return r.Rebuild(scope)
}
