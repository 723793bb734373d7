package protovalue

import (
	"bytes"
	"cmp"
	"math"
	"strings"

	"google.golang.org/protobuf/proto"
)

// Equal reports whether a and b hold structurally equal values. Values of
// different kinds are never equal. Floating point NaNs are considered equal to
// one another so that values can be used in table-driven comparisons. Enum
// values are equal when they belong to the same enum type (by full name) and
// have the same number. Messages are compared with proto.Equal.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case InvalidKind:
		return true
	case Float32Kind:
		x, y := math.Float32frombits(uint32(a.num)), math.Float32frombits(uint32(b.num))
		return x == y || (x != x && y != y)
	case Float64Kind:
		x, y := math.Float64frombits(a.num), math.Float64frombits(b.num)
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case StringKind:
		return a.ref.(string) == b.ref.(string)
	case BytesKind:
		return bytes.Equal(a.ref.([]byte), b.ref.([]byte))
	case EnumKind:
		return a.num == b.num && a.EnumDescriptor().FullName() == b.EnumDescriptor().FullName()
	case MessageKind:
		return proto.Equal(a.ref.(proto.Message), b.ref.(proto.Message))
	default:
		return a.num == b.num
	}
}

// Equal reports whether v and other are equal, per the Equal function.
func (v Value) Equal(other Value) bool {
	return Equal(v, other)
}

// Compare returns a negative number, zero, or a positive number when a sorts
// before, the same as, or after b. Values are first ordered by kind. Within a
// kind, numbers and strings use their natural order (false before true, NaN
// before all other floats), enums order by enum full name then number, and
// messages order by full name and then by their deterministic binary encoding.
//
// Compare(a, b) == 0 exactly when Equal(a, b), except for messages whose
// encodings differ only in ways proto.Equal ignores.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case InvalidKind:
		return 0
	case BoolKind, Uint32Kind, Uint64Kind:
		return cmp.Compare(a.num, b.num)
	case Int32Kind, Int64Kind:
		return cmp.Compare(int64(a.num), int64(b.num))
	case Float32Kind:
		return cmp.Compare(math.Float32frombits(uint32(a.num)), math.Float32frombits(uint32(b.num)))
	case Float64Kind:
		return cmp.Compare(math.Float64frombits(a.num), math.Float64frombits(b.num))
	case StringKind:
		return strings.Compare(a.ref.(string), b.ref.(string))
	case BytesKind:
		return bytes.Compare(a.ref.([]byte), b.ref.([]byte))
	case EnumKind:
		if c := strings.Compare(string(a.EnumDescriptor().FullName()), string(b.EnumDescriptor().FullName())); c != 0 {
			return c
		}
		return cmp.Compare(int64(a.num), int64(b.num))
	case MessageKind:
		return compareMessages(a.ref.(proto.Message), b.ref.(proto.Message))
	default:
		return 0
	}
}

func compareMessages(a, b proto.Message) int {
	an, bn := a.ProtoReflect().Descriptor().FullName(), b.ProtoReflect().Descriptor().FullName()
	if c := strings.Compare(string(an), string(bn)); c != 0 {
		return c
	}
	if proto.Equal(a, b) {
		return 0
	}
	opts := proto.MarshalOptions{Deterministic: true, AllowPartial: true}
	ab, _ := opts.MarshalAppend(nil, a)
	bb, _ := opts.MarshalAppend(nil, b)
	return bytes.Compare(ab, bb)
}
