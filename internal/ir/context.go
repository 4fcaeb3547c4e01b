package ir

import (
	"fmt"
	"sync"
	"sync/atomic"

	"fortio.org/safecast"

	"ignis/internal/types"
)

// NodeID uniquely identifies a node inside a Context. IDs are assigned
// monotonically and never reused.
type NodeID uint32

// NoNodeID marks the absence of a node.
const NoNodeID NodeID = 0

// Context owns every value of a set of methods under compilation. It
// hands out node ids and traversal markers atomically so distinct
// methods can be built and rewritten from distinct goroutines.
type Context struct {
	ids     atomic.Uint64
	markers atomic.Uint64

	typesIn *types.Interner

	mu      sync.Mutex
	methods []*Method
}

// NewContext creates a context bound to a type interner.
func NewContext(typesIn *types.Interner) *Context {
	if typesIn == nil {
		typesIn = types.NewInterner()
	}
	return &Context{typesIn: typesIn}
}

// Types returns the type interner the context was created with.
func (ctx *Context) Types() *types.Interner {
	return ctx.typesIn
}

// newNodeID allocates the next node id.
func (ctx *Context) newNodeID() NodeID {
	raw := ctx.ids.Add(1)
	id, err := safecast.Conv[uint32](raw)
	if err != nil {
		panic(fmt.Errorf("ir: node id overflow: %w", err))
	}
	return NodeID(id)
}

// NextMarker allocates a fresh traversal marker. A traversal stamps
// visited blocks with its marker instead of allocating a visited set.
func (ctx *Context) NextMarker() uint64 {
	return ctx.markers.Add(1)
}

// Declare registers a new method with the given name and return type.
// The entry block is created along with the method.
func (ctx *Context) Declare(name string, returnType types.TypeID) *Method {
	m := &Method{
		ctx:        ctx,
		id:         ctx.newNodeID(),
		name:       name,
		returnType: returnType,
	}
	m.params.owner = m
	m.entry = m.createBlock(name + ".entry")
	ctx.mu.Lock()
	ctx.methods = append(ctx.methods, m)
	ctx.mu.Unlock()
	return m
}

// Methods returns all declared methods in declaration order.
func (ctx *Context) Methods() []*Method {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	out := make([]*Method, len(ctx.methods))
	copy(out, ctx.methods)
	return out
}
