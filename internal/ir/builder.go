package ir

import (
	"fmt"

	"ignis/internal/types"
)

// Builder is the single mutation handle of a method. At most one live
// builder per method is enforced by an acquire/release handshake:
// NewBuilder acquires, Dispose (or Abandon) releases.
//
// Dispose commits the pending protocol steps: outstanding branch
// targets are sealed, replaced parameters are dropped together with
// the positionally matching branch-target arguments, and scheduled
// body removals are applied. Abandon releases the method without
// committing any of the pending steps.
type Builder struct {
	m        *Method
	blocks   map[*BasicBlock]*BlockBuilder
	disposed bool
}

// NewBuilder acquires the method for mutation.
func (m *Method) NewBuilder() (*Builder, error) {
	if !m.builderLive.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: method %s already has a live builder", ErrInvalidState, m.name)
	}
	return &Builder{
		m:      m,
		blocks: make(map[*BasicBlock]*BlockBuilder),
	}, nil
}

// Method returns the method under mutation.
func (b *Builder) Method() *Method { return b.m }

// EntryBlock returns the block builder of the entry block.
func (b *Builder) EntryBlock() *BlockBuilder { return b.Block(b.m.entry) }

// CreateBlock creates a fresh block and returns its builder.
func (b *Builder) CreateBlock(name string) *BlockBuilder {
	return b.Block(b.m.createBlock(name))
}

// Block returns the (memoized) builder of bb.
func (b *Builder) Block(bb *BasicBlock) *BlockBuilder {
	if bld, ok := b.blocks[bb]; ok {
		return bld
	}
	bld := &BlockBuilder{
		b:       b,
		bb:      bb,
		pos:     len(bb.body),
		targets: make(map[*BasicBlock]*TargetBuilder),
	}
	b.blocks[bb] = bld
	return bld
}

// AddParameter appends a function parameter.
func (b *Builder) AddParameter(typ types.TypeID, name string) *Value {
	return b.m.params.Add(typ, name)
}

// InsertParameter prepends a function parameter, renumbering the rest.
func (b *Builder) InsertParameter(typ types.TypeID, name string) *Value {
	return b.m.params.InsertFront(typ, name)
}

// CreatePrimitive returns the interned constant of the given type and
// payload. Constants belong to the method, not to a block.
func (b *Builder) CreatePrimitive(typ types.TypeID, c Const) *Value {
	return b.m.internConst(KindPrimitive, typ, c)
}

// CreateInt returns an integer constant.
func (b *Builder) CreateInt(typ types.TypeID, v int64) *Value {
	return b.CreatePrimitive(typ, Const{Kind: ConstInt, IntValue: v})
}

// CreateFloat returns a floating-point constant.
func (b *Builder) CreateFloat(typ types.TypeID, v float64) *Value {
	return b.CreatePrimitive(typ, Const{Kind: ConstFloat, FloatValue: v})
}

// CreateNull returns the null value of a type.
func (b *Builder) CreateNull(typ types.TypeID) *Value {
	return b.m.internConst(KindNull, typ, Const{})
}

// Dispose commits pending edits and releases the method. The builder
// is unusable afterwards.
func (b *Builder) Dispose() error {
	if b.disposed {
		return fmt.Errorf("%w: builder for %s already disposed", ErrInvalidState, b.m.name)
	}
	b.disposed = true

	// Seal every branch target still under construction.
	for _, bld := range b.blocks {
		for _, tb := range bld.targets {
			if !tb.sealed {
				if err := tb.Seal(); err != nil {
					return err
				}
			}
		}
	}

	// Drop replaced block parameters together with the positionally
	// matching arguments of every branch target reaching the block.
	dropped := make(map[*BasicBlock][]int)
	for _, bb := range b.m.blocks {
		if idx := bb.params.replacedIndices(); len(idx) > 0 {
			dropped[bb] = idx
		}
	}
	if len(dropped) > 0 {
		for _, bb := range b.m.blocks {
			t := bb.Terminator()
			if t == nil {
				continue
			}
			for _, target := range TerminatorTargets(t) {
				idx, ok := dropped[target.DestinationBlock()]
				if !ok {
					continue
				}
				target.operands = dropArgumentSlots(target.operands, idx)
			}
		}
		for bb := range dropped {
			bb.params.PerformRemoval()
		}
	}
	b.m.params.PerformRemoval()

	// Apply scheduled body removals and compact away replaced values.
	for _, bld := range b.blocks {
		bld.performRemoval()
	}

	b.m.bumpGeneration()
	b.m.builderLive.Store(false)
	return nil
}

// Abandon releases the method without committing pending removals or
// argument drops.
func (b *Builder) Abandon() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.m.builderLive.Store(false)
}

// dropArgumentSlots removes the operand slots named by ascending
// indices. A dropped argument and a replaced parameter leave in
// lock-step so positional correspondence survives.
func dropArgumentSlots(ops []ValueRef, idx []int) []ValueRef {
	out := ops[:0]
	j := 0
	for i, op := range ops {
		if j < len(idx) && idx[j] == i {
			j++
			continue
		}
		out = append(out, op)
	}
	return out
}

// internConst returns the shared constant node for (kind, typ, c).
func (m *Method) internConst(kind ValueKind, typ types.TypeID, c Const) *Value {
	if m.consts == nil {
		m.consts = make(map[constKey]*Value)
	}
	key := constKey{kind: kind, typ: typ, c: c}
	if v, ok := m.consts[key]; ok {
		return v
	}
	v := &Value{
		id:     m.ctx.newNodeID(),
		kind:   kind,
		owner:  m,
		typ:    typ,
		konst:  c,
		sealed: true,
	}
	m.consts[key] = v
	return v
}
