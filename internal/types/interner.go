package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types every method uses.
type Builtins struct {
	Invalid TypeID
	Void    TypeID
	Int1    TypeID
	Int8    TypeID
	Int16   TypeID
	Int32   TypeID
	Int64   TypeID
	Float16 TypeID
	Float32 TypeID
	Float64 TypeID
	Ptr     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// It is immutable after the descriptors have been interned and safe
// for concurrent readers.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 16),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Void = in.Intern(Type{Kind: KindVoid})
	in.builtins.Int1 = in.Intern(MakeInt(Width1))
	in.builtins.Int8 = in.Intern(MakeInt(Width8))
	in.builtins.Int16 = in.Intern(MakeInt(Width16))
	in.builtins.Int32 = in.Intern(MakeInt(Width32))
	in.builtins.Int64 = in.Intern(MakeInt(Width64))
	in.builtins.Float16 = in.Intern(MakeFloat(Width16))
	in.builtins.Float32 = in.Intern(MakeFloat(Width32))
	in.builtins.Float64 = in.Intern(MakeFloat(Width64))
	in.builtins.Ptr = in.Intern(Type{Kind: KindPtr, Width: Width64})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// IsVoid reports whether id is the void type.
func (in *Interner) IsVoid(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindVoid
}

// IsPrimitive reports whether id is a machine primitive (integer or float).
func (in *Interner) IsPrimitive(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && (tt.Kind == KindInt || tt.Kind == KindFloat)
}

// IsInteger reports whether id is an integer primitive of any width.
func (in *Interner) IsInteger(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindInt
}

// IsFloat reports whether id is a floating-point primitive.
func (in *Interner) IsFloat(id TypeID) bool {
	tt, ok := in.Lookup(id)
	return ok && tt.Kind == KindFloat
}

// Bits returns the bit width of a primitive, 0 otherwise.
func (in *Interner) Bits(id TypeID) int {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindInt && tt.Kind != KindFloat) {
		return 0
	}
	return int(tt.Width)
}

// Basic classifies a TypeID into its machine value category.
func (in *Interner) Basic(id TypeID) BasicValueType {
	tt, ok := in.Lookup(id)
	if !ok {
		return BasicNone
	}
	switch tt.Kind {
	case KindInt:
		switch tt.Width {
		case Width1:
			return BasicInt1
		case Width8:
			return BasicInt8
		case Width16:
			return BasicInt16
		case Width32:
			return BasicInt32
		case Width64:
			return BasicInt64
		}
	case KindFloat:
		switch tt.Width {
		case Width16:
			return BasicFloat16
		case Width32:
			return BasicFloat32
		case Width64:
			return BasicFloat64
		}
	}
	return BasicNone
}

// String renders a TypeID in the form used by IR dumps.
func (in *Interner) String(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return fmt.Sprintf("i%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", tt.Width)
	case KindPtr:
		return "ptr"
	}
	return tt.Kind.String()
}
