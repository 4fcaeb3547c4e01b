package types

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindInt
	KindFloat
	KindPtr
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPtr:
		return "ptr"
	}
	return "unknown"
}

// Width is the bit width of a primitive type.
type Width uint8

const (
	Width1  Width = 1
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Type is a structural type descriptor. Descriptors are value types;
// identity comes from the interner.
type Type struct {
	Kind  Kind
	Width Width
}

// MakeInt builds an integer descriptor of the given width.
func MakeInt(w Width) Type {
	return Type{Kind: KindInt, Width: w}
}

// MakeFloat builds a floating-point descriptor of the given width.
func MakeFloat(w Width) Type {
	return Type{Kind: KindFloat, Width: w}
}

// BasicValueType classifies primitive types for consumers that switch
// over machine value categories rather than TypeIDs.
type BasicValueType uint8

const (
	BasicNone BasicValueType = iota
	BasicInt1
	BasicInt8
	BasicInt16
	BasicInt32
	BasicInt64
	BasicFloat16
	BasicFloat32
	BasicFloat64
)

func (b BasicValueType) String() string {
	switch b {
	case BasicInt1:
		return "i1"
	case BasicInt8:
		return "i8"
	case BasicInt16:
		return "i16"
	case BasicInt32:
		return "i32"
	case BasicInt64:
		return "i64"
	case BasicFloat16:
		return "f16"
	case BasicFloat32:
		return "f32"
	case BasicFloat64:
		return "f64"
	}
	return "none"
}

// IsInt reports whether the category is an integer one.
func (b BasicValueType) IsInt() bool {
	return b >= BasicInt1 && b <= BasicInt64
}

// IsFloat reports whether the category is a floating-point one.
func (b BasicValueType) IsFloat() bool {
	return b >= BasicFloat16 && b <= BasicFloat64
}
