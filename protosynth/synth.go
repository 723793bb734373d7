// Package protosynth synthesizes plausible field values from descriptors
// alone, for code that needs to exercise every field of a schema (tests,
// sample-message generators). The synthesized values depend only on the
// schema, never on a live message.
package protosynth

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

// ValueForKind returns the value synthesized for fields of the given scalar
// type. Enum, message and group kinds have no schema-independent value and
// result in an error.
func ValueForKind(k protoreflect.Kind) (protovalue.Value, error) {
	switch k {
	case protoreflect.DoubleKind:
		return protovalue.OfFloat64(11), nil
	case protoreflect.FloatKind:
		return protovalue.OfFloat32(12), nil
	case protoreflect.Int32Kind, protoreflect.Sfixed32Kind, protoreflect.Sint32Kind:
		return protovalue.OfInt32(13), nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protovalue.OfUint32(14), nil
	case protoreflect.Int64Kind, protoreflect.Sfixed64Kind, protoreflect.Sint64Kind:
		return protovalue.OfInt64(13), nil
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return protovalue.OfUint64(14), nil
	case protoreflect.BoolKind:
		return protovalue.OfBool(true), nil
	case protoreflect.StringKind:
		return protovalue.OfString("aa"), nil
	case protoreflect.BytesKind:
		return protovalue.OfBytes([]byte("bb")), nil
	default:
		return protovalue.Value{}, fmt.Errorf("cannot generate value for type %v", k)
	}
}

// ValueForField returns a value for the given field (for repeated fields, an
// element; for map fields, a map value). Enums use their first declared
// value. Messages are new empty instances.
func ValueForField(fd *protoaccess.FieldDescriptor) protovalue.Value {
	switch fd.DeclaredType() {
	case protoreflect.EnumKind:
		return protovalue.OfEnum(fd.EnumDescriptor().Values().Get(0))
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return protovalue.OfMessage(fd.MessageDescriptor().NewInstance())
	default:
		v, err := ValueForKind(fd.DeclaredType())
		if err != nil {
			panic(err)
		}
		return v
	}
}

// KeyForField returns a key for the given map field. It panics if fd is not
// a map field.
func KeyForField(fd *protoaccess.FieldDescriptor) protovalue.Value {
	key := fd.MapKey()
	if key == nil {
		panic(fmt.Errorf("%w: %s is %v", protoaccess.ErrNotMap, fd.FullName(), fd.Cardinality()))
	}
	v, err := ValueForKind(key.Kind())
	if err != nil {
		panic(err)
	}
	return v
}

// Populate fills in every field of m: singular fields are set, repeated
// fields get one more element and map fields get an entry for the
// synthesized key. Oneof members are set in declaration order, so the last
// member of each oneof wins. Nested messages are left empty.
func Populate(m protoaccess.Message) {
	for _, fd := range protoaccess.DescriptorOf(m).Fields() {
		switch fd.Cardinality() {
		case protoaccess.Singular:
			fd.SetSingularField(m, ValueForField(fd))
		case protoaccess.Repeated:
			fd.MutRepeated(m).Push(ValueForField(fd))
		case protoaccess.Map:
			fd.MutMap(m).Insert(KeyForField(fd), ValueForField(fd))
		}
	}
}
