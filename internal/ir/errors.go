package ir

import "errors"

// Error taxonomy for the IR core. All failures returned by builders,
// analyses and transformations wrap one of these sentinels so callers
// can classify with errors.Is.
var (
	// ErrInvalidArgument reports a caller-supplied value violating a
	// documented precondition (nil operand, out-of-range index,
	// incompatible types on return or branch).
	ErrInvalidArgument = errors.New("ir: invalid argument")

	// ErrInvalidState reports an operation on a disposed builder, a
	// replaced value, a sealed target, or a builder terminator that
	// escaped construction.
	ErrInvalidState = errors.New("ir: invalid state")

	// ErrIncompatible reports a rebuild whose parameter mapping does
	// not cover the source method, or a scope/method mismatch on call
	// specialization.
	ErrIncompatible = errors.New("ir: incompatible")

	// ErrInternal reports an invariant violation that construction
	// should have prevented.
	ErrInternal = errors.New("ir: internal error")
)
