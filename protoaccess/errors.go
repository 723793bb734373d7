package protoaccess

import "errors"

var (
	// ErrUnknownField indicates a field name or number that the message
	// descriptor does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotSingular indicates a singular-only operation on a repeated or map
	// field.
	ErrNotSingular = errors.New("field is not singular")
	// ErrNotRepeated indicates a repeated-only operation on a singular or map
	// field.
	ErrNotRepeated = errors.New("field is not repeated")
	// ErrNotMap indicates a map-only operation on a singular or repeated field.
	ErrNotMap = errors.New("field is not a map")
	// ErrTypeMismatch indicates a value whose kind, enum type or message type
	// does not match what the field declares.
	ErrTypeMismatch = errors.New("value does not match field type")
	// ErrWrongMessage indicates a message that is not of the type that declares
	// the field.
	ErrWrongMessage = errors.New("field does not belong to message")
	// ErrIndexOutOfRange indicates a list index outside the bounds of a
	// repeated field.
	ErrIndexOutOfRange = errors.New("index out of range")
)
