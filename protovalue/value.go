// Package protovalue provides Value, a closed tagged union that can hold any
// single element of a protobuf field: a scalar of any width, a string, a byte
// slice, an enum value or a message.
//
// Scalar, string and bytes variants own their data. The enum variant holds a
// reference into the immutable enum descriptor that declared it, so copying
// such a Value never copies schema data. The message variant holds a message
// instance; use Clone to get an independent deep copy.
//
// Values are immutable once constructed. Extraction methods come in two
// flavors: a panicking form (e.g. Int32) for callers that have already checked
// the kind, and a Try form (e.g. TryInt32) that returns ErrKindMismatch.
package protovalue

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// ErrKindMismatch is returned by the Try* extraction methods when the value
// does not hold the requested kind.
var ErrKindMismatch = errors.New("value kind mismatch")

// Kind identifies which variant a Value holds.
type Kind int

const (
	InvalidKind Kind = iota
	BoolKind
	Int32Kind
	Int64Kind
	Uint32Kind
	Uint64Kind
	Float32Kind
	Float64Kind
	StringKind
	BytesKind
	EnumKind
	MessageKind
)

var kindNames = [...]string{
	InvalidKind: "invalid",
	BoolKind:    "bool",
	Int32Kind:   "int32",
	Int64Kind:   "int64",
	Uint32Kind:  "uint32",
	Uint64Kind:  "uint64",
	Float32Kind: "float32",
	Float64Kind: "float64",
	StringKind:  "string",
	BytesKind:   "bytes",
	EnumKind:    "enum",
	MessageKind: "message",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// KindOf returns the value kind used to hold elements of a field with the
// given declared type. Several wire types share a value kind: int32, sint32
// and sfixed32 are all held as Int32Kind, for example.
func KindOf(k protoreflect.Kind) Kind {
	switch k {
	case protoreflect.BoolKind:
		return BoolKind
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return Int32Kind
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return Int64Kind
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return Uint32Kind
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return Uint64Kind
	case protoreflect.FloatKind:
		return Float32Kind
	case protoreflect.DoubleKind:
		return Float64Kind
	case protoreflect.StringKind:
		return StringKind
	case protoreflect.BytesKind:
		return BytesKind
	case protoreflect.EnumKind:
		return EnumKind
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return MessageKind
	default:
		return InvalidKind
	}
}

// Value holds a single field element. The zero value is invalid.
type Value struct {
	kind Kind
	// num holds bools, integers, enum numbers and the bits of floats
	num uint64
	// ref holds a string, []byte, protoreflect.EnumDescriptor or proto.Message
	ref any
}

func OfBool(b bool) Value {
	var n uint64
	if b {
		n = 1
	}
	return Value{kind: BoolKind, num: n}
}

func OfInt32(i int32) Value {
	return Value{kind: Int32Kind, num: uint64(int64(i))}
}

func OfInt64(i int64) Value {
	return Value{kind: Int64Kind, num: uint64(i)}
}

func OfUint32(u uint32) Value {
	return Value{kind: Uint32Kind, num: uint64(u)}
}

func OfUint64(u uint64) Value {
	return Value{kind: Uint64Kind, num: u}
}

func OfFloat32(f float32) Value {
	return Value{kind: Float32Kind, num: uint64(math.Float32bits(f))}
}

func OfFloat64(f float64) Value {
	return Value{kind: Float64Kind, num: math.Float64bits(f)}
}

func OfString(s string) Value {
	return Value{kind: StringKind, ref: s}
}

// OfBytes returns a bytes value holding a copy of b.
func OfBytes(b []byte) Value {
	var cp []byte
	if b != nil {
		cp = make([]byte, len(b))
		copy(cp, b)
	}
	return Value{kind: BytesKind, ref: cp}
}

// OfEnum returns an enum value that refers to the given declared value. The
// descriptor is referenced, not copied.
func OfEnum(ev protoreflect.EnumValueDescriptor) Value {
	if ev == nil {
		panic("protovalue: nil enum value descriptor")
	}
	ed, ok := ev.Parent().(protoreflect.EnumDescriptor)
	if !ok {
		panic(fmt.Sprintf("protovalue: enum value %s has no parent enum", ev.FullName()))
	}
	return Value{kind: EnumKind, num: uint64(int64(ev.Number())), ref: ed}
}

// OfEnumNumber returns an enum value of the given enum type. The number need
// not be one of the enum's declared values, which open enums allow.
func OfEnumNumber(ed protoreflect.EnumDescriptor, n protoreflect.EnumNumber) Value {
	if ed == nil {
		panic("protovalue: nil enum descriptor")
	}
	return Value{kind: EnumKind, num: uint64(int64(n)), ref: ed}
}

// OfMessage returns a message value. The value takes ownership of m: once it
// is installed into a field, the field and the caller share the instance.
func OfMessage(m proto.Message) Value {
	if m == nil {
		panic("protovalue: nil message")
	}
	return Value{kind: MessageKind, ref: m}
}

// Kind returns which variant v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v holds anything. The zero Value is invalid.
func (v Value) IsValid() bool {
	return v.kind != InvalidKind
}

func (v Value) check(k Kind) error {
	if v.kind != k {
		return fmt.Errorf("%w: value is %v, not %v", ErrKindMismatch, v.kind, k)
	}
	return nil
}

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

func (v Value) Bool() bool       { return must(v.TryBool()) }
func (v Value) Int32() int32     { return must(v.TryInt32()) }
func (v Value) Int64() int64     { return must(v.TryInt64()) }
func (v Value) Uint32() uint32   { return must(v.TryUint32()) }
func (v Value) Uint64() uint64   { return must(v.TryUint64()) }
func (v Value) Float32() float32 { return must(v.TryFloat32()) }
func (v Value) Float64() float64 { return must(v.TryFloat64()) }
func (v Value) String() string   { return v.format() }

// Str returns the string held by v. It panics if v is not a string. (String
// is reserved for the fmt.Stringer rendering of any kind.)
func (v Value) Str() string { return must(v.TryString()) }

// Bytes returns the byte slice held by v. The slice must not be modified.
func (v Value) Bytes() []byte { return must(v.TryBytes()) }

// Enum returns the declared enum value held by v. It returns nil if v holds
// an enum number that its enum type does not declare.
func (v Value) Enum() protoreflect.EnumValueDescriptor { return must(v.TryEnum()) }

func (v Value) EnumNumber() protoreflect.EnumNumber { return must(v.TryEnumNumber()) }

func (v Value) EnumDescriptor() protoreflect.EnumDescriptor {
	if err := v.check(EnumKind); err != nil {
		panic(err)
	}
	return v.ref.(protoreflect.EnumDescriptor)
}

func (v Value) Message() proto.Message { return must(v.TryMessage()) }

func (v Value) TryBool() (bool, error) {
	if err := v.check(BoolKind); err != nil {
		return false, err
	}
	return v.num != 0, nil
}

func (v Value) TryInt32() (int32, error) {
	if err := v.check(Int32Kind); err != nil {
		return 0, err
	}
	return int32(int64(v.num)), nil
}

func (v Value) TryInt64() (int64, error) {
	if err := v.check(Int64Kind); err != nil {
		return 0, err
	}
	return int64(v.num), nil
}

func (v Value) TryUint32() (uint32, error) {
	if err := v.check(Uint32Kind); err != nil {
		return 0, err
	}
	return uint32(v.num), nil
}

func (v Value) TryUint64() (uint64, error) {
	if err := v.check(Uint64Kind); err != nil {
		return 0, err
	}
	return v.num, nil
}

func (v Value) TryFloat32() (float32, error) {
	if err := v.check(Float32Kind); err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v.num)), nil
}

func (v Value) TryFloat64() (float64, error) {
	if err := v.check(Float64Kind); err != nil {
		return 0, err
	}
	return math.Float64frombits(v.num), nil
}

func (v Value) TryString() (string, error) {
	if err := v.check(StringKind); err != nil {
		return "", err
	}
	return v.ref.(string), nil
}

func (v Value) TryBytes() ([]byte, error) {
	if err := v.check(BytesKind); err != nil {
		return nil, err
	}
	return v.ref.([]byte), nil
}

func (v Value) TryEnum() (protoreflect.EnumValueDescriptor, error) {
	if err := v.check(EnumKind); err != nil {
		return nil, err
	}
	ed := v.ref.(protoreflect.EnumDescriptor)
	return ed.Values().ByNumber(protoreflect.EnumNumber(int64(v.num))), nil
}

func (v Value) TryEnumNumber() (protoreflect.EnumNumber, error) {
	if err := v.check(EnumKind); err != nil {
		return 0, err
	}
	return protoreflect.EnumNumber(int64(v.num)), nil
}

func (v Value) TryMessage() (proto.Message, error) {
	if err := v.check(MessageKind); err != nil {
		return nil, err
	}
	return v.ref.(proto.Message), nil
}

// Clone returns a copy of v that shares no mutable state with it. Bytes are
// copied and messages are deep-copied. Enum values still refer to the same
// (immutable) enum descriptor.
func (v Value) Clone() Value {
	switch v.kind {
	case BytesKind:
		return OfBytes(v.ref.([]byte))
	case MessageKind:
		return Value{kind: MessageKind, ref: proto.Clone(v.ref.(proto.Message))}
	default:
		return v
	}
}

func (v Value) format() string {
	switch v.kind {
	case BoolKind:
		return strconv.FormatBool(v.num != 0)
	case Int32Kind, Int64Kind:
		return strconv.FormatInt(int64(v.num), 10)
	case Uint32Kind, Uint64Kind:
		return strconv.FormatUint(v.num, 10)
	case Float32Kind:
		return strconv.FormatFloat(float64(math.Float32frombits(uint32(v.num))), 'g', -1, 32)
	case Float64Kind:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64)
	case StringKind:
		return strconv.Quote(v.ref.(string))
	case BytesKind:
		return fmt.Sprintf("%q", v.ref.([]byte))
	case EnumKind:
		if ev := v.Enum(); ev != nil {
			return string(ev.Name())
		}
		return strconv.FormatInt(int64(v.num), 10)
	case MessageKind:
		return "{" + prototext.MarshalOptions{}.Format(v.ref.(proto.Message)) + "}"
	default:
		return "<invalid>"
	}
}
