package protovalue

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// FromReflect converts a runtime value of the given field into a Value. The
// field's declared type (not its cardinality) determines the result, so for a
// list element pass the list field and for a map value pass fd.MapValue().
//
// Bytes are copied. Message values are not: the result refers to the same
// message as v.
func FromReflect(fd protoreflect.FieldDescriptor, v protoreflect.Value) Value {
	switch KindOf(fd.Kind()) {
	case BoolKind:
		return OfBool(v.Bool())
	case Int32Kind:
		return OfInt32(int32(v.Int()))
	case Int64Kind:
		return OfInt64(v.Int())
	case Uint32Kind:
		return OfUint32(uint32(v.Uint()))
	case Uint64Kind:
		return OfUint64(v.Uint())
	case Float32Kind:
		return OfFloat32(float32(v.Float()))
	case Float64Kind:
		return OfFloat64(v.Float())
	case StringKind:
		return OfString(v.String())
	case BytesKind:
		return OfBytes(v.Bytes())
	case EnumKind:
		return OfEnumNumber(fd.Enum(), v.Enum())
	case MessageKind:
		return OfMessage(v.Message().Interface())
	default:
		panic(fmt.Sprintf("protovalue: field %s has unsupported kind %v", fd.FullName(), fd.Kind()))
	}
}

// FromMapKey converts a map key into a Value. The given field must be the
// key field of a map entry (i.e. fd.MapKey() for the map field).
func FromMapKey(keyField protoreflect.FieldDescriptor, k protoreflect.MapKey) Value {
	return FromReflect(keyField, k.Value())
}

// Reflect converts v into a runtime value. It panics if v is invalid. A bytes
// value is copied, so storing the result in a message does not share v's
// buffer with the message.
func (v Value) Reflect() protoreflect.Value {
	switch v.kind {
	case BoolKind:
		return protoreflect.ValueOfBool(v.num != 0)
	case Int32Kind:
		return protoreflect.ValueOfInt32(v.Int32())
	case Int64Kind:
		return protoreflect.ValueOfInt64(v.Int64())
	case Uint32Kind:
		return protoreflect.ValueOfUint32(v.Uint32())
	case Uint64Kind:
		return protoreflect.ValueOfUint64(v.num)
	case Float32Kind:
		return protoreflect.ValueOfFloat32(v.Float32())
	case Float64Kind:
		return protoreflect.ValueOfFloat64(v.Float64())
	case StringKind:
		return protoreflect.ValueOfString(v.ref.(string))
	case BytesKind:
		b := v.ref.([]byte)
		if b == nil {
			return protoreflect.ValueOfBytes(nil)
		}
		return protoreflect.ValueOfBytes(append([]byte{}, b...))
	case EnumKind:
		return protoreflect.ValueOfEnum(v.EnumNumber())
	case MessageKind:
		return protoreflect.ValueOfMessage(v.ref.(proto.Message).ProtoReflect())
	default:
		panic("protovalue: cannot convert invalid value")
	}
}

// MapKey converts v into a map key. Only bool, integer and string values can
// be map keys; it panics for any other kind.
func (v Value) MapKey() protoreflect.MapKey {
	switch v.kind {
	case BoolKind, Int32Kind, Int64Kind, Uint32Kind, Uint64Kind, StringKind:
		return v.Reflect().MapKey()
	default:
		panic(fmt.Sprintf("protovalue: %v value cannot be a map key", v.kind))
	}
}
