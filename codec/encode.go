package codec

import (
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

// Marshal returns the binary encoding of m. Fields are written in field
// number order and map entries in ascending key order, so the output is
// deterministic. Unknown fields are not preserved.
func Marshal(m protoaccess.Message) ([]byte, error) {
	var cb Buffer
	if err := cb.encodeFields(m); err != nil {
		return nil, err
	}
	return cb.Bytes(), nil
}

// EncodeMessage writes the given message to the buffer, prefixed with its
// length (the way embedded messages are encoded).
func (cb *Buffer) EncodeMessage(m protoaccess.Message) error {
	var nested Buffer
	if err := nested.encodeFields(m); err != nil {
		return err
	}
	cb.EncodeRawBytes(nested.Bytes())
	return nil
}

func (cb *Buffer) encodeFields(m protoaccess.Message) error {
	for _, fd := range fieldsByNumber(protoaccess.DescriptorOf(m)) {
		if err := cb.EncodeField(fd, m); err != nil {
			return err
		}
	}
	return nil
}

func fieldsByNumber(desc *protoaccess.MessageDescriptor) []*protoaccess.FieldDescriptor {
	fields := slices.Clone(desc.Fields())
	slices.SortFunc(fields, func(a, b *protoaccess.FieldDescriptor) int {
		return int(a.Number()) - int(b.Number())
	})
	return fields
}

// EncodeField writes the given field of m to the buffer, including tags.
// Nothing is written if the field is absent. Repeated fields are packed
// when the field is declared packed.
func (cb *Buffer) EncodeField(fd *protoaccess.FieldDescriptor, m protoaccess.Message) error {
	if !fd.HasField(m) {
		return nil
	}
	var err error
	switch fd.Cardinality() {
	case protoaccess.Map:
		keyFd, valFd := fd.MapKey(), fd.MapValue()
		fd.GetMap(m).Range(func(k, v protovalue.Value) bool {
			var entry Buffer
			if err = entry.encodeElement(keyFd, k); err != nil {
				return false
			}
			if err = entry.encodeElement(valFd, v); err != nil {
				return false
			}
			cb.EncodeTagAndWireType(fd.Number(), protowire.BytesType)
			cb.EncodeRawBytes(entry.Bytes())
			return true
		})
	case protoaccess.Repeated:
		elem := fd.Unwrap()
		if elem.IsPacked() {
			var packed Buffer
			fd.GetRepeated(m).Range(func(_ int, v protovalue.Value) bool {
				err = packed.encodeValue(elem, v)
				return err == nil
			})
			cb.EncodeTagAndWireType(fd.Number(), protowire.BytesType)
			cb.EncodeRawBytes(packed.Bytes())
			break
		}
		fd.GetRepeated(m).Range(func(_ int, v protovalue.Value) bool {
			err = cb.encodeElement(elem, v)
			return err == nil
		})
	default:
		err = cb.encodeElement(fd.Unwrap(), fd.GetSingularFieldOrDefault(m))
	}
	return err
}

// encodeElement writes a single value of the given field, with its tag.
func (cb *Buffer) encodeElement(fd protoreflect.FieldDescriptor, v protovalue.Value) error {
	switch fd.Kind() {
	case protoreflect.GroupKind:
		cb.EncodeTagAndWireType(fd.Number(), protowire.StartGroupType)
		if err := cb.encodeFields(v.Message()); err != nil {
			return err
		}
		cb.EncodeTagAndWireType(fd.Number(), protowire.EndGroupType)
		return nil
	case protoreflect.MessageKind:
		cb.EncodeTagAndWireType(fd.Number(), protowire.BytesType)
		return cb.EncodeMessage(v.Message())
	default:
		cb.EncodeTagAndWireType(fd.Number(), wireType(fd.Kind()))
		return cb.encodeValue(fd, v)
	}
}

// encodeValue writes a scalar value of the given field, without a tag.
func (cb *Buffer) encodeValue(fd protoreflect.FieldDescriptor, v protovalue.Value) error {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		cb.EncodeVarint(protowire.EncodeBool(v.Bool()))
	case protoreflect.EnumKind:
		cb.EncodeVarint(uint64(v.EnumNumber()))
	case protoreflect.Int32Kind:
		cb.EncodeVarint(uint64(v.Int32()))
	case protoreflect.Sint32Kind:
		cb.EncodeVarint(protowire.EncodeZigZag(int64(v.Int32())))
	case protoreflect.Uint32Kind:
		cb.EncodeVarint(uint64(v.Uint32()))
	case protoreflect.Int64Kind:
		cb.EncodeVarint(uint64(v.Int64()))
	case protoreflect.Sint64Kind:
		cb.EncodeVarint(protowire.EncodeZigZag(v.Int64()))
	case protoreflect.Uint64Kind:
		cb.EncodeVarint(v.Uint64())
	case protoreflect.Sfixed32Kind:
		cb.EncodeFixed32(uint32(v.Int32()))
	case protoreflect.Fixed32Kind:
		cb.EncodeFixed32(v.Uint32())
	case protoreflect.FloatKind:
		cb.EncodeFixed32(math.Float32bits(v.Float32()))
	case protoreflect.Sfixed64Kind:
		cb.EncodeFixed64(uint64(v.Int64()))
	case protoreflect.Fixed64Kind:
		cb.EncodeFixed64(v.Uint64())
	case protoreflect.DoubleKind:
		cb.EncodeFixed64(math.Float64bits(v.Float64()))
	case protoreflect.StringKind:
		str := v.Str()
		if enforceUTF8(fd) && !utf8.ValidString(str) {
			return fmt.Errorf("%s: %w", fd.FullName(), ErrInvalidUTF8)
		}
		cb.EncodeRawBytes([]byte(str))
	case protoreflect.BytesKind:
		cb.EncodeRawBytes(v.Bytes())
	default:
		return fmt.Errorf("unrecognized field type: %v", fd.Kind())
	}
	return nil
}

func wireType(k protoreflect.Kind) protowire.Type {
	switch k {
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return protowire.Fixed32Type
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return protowire.Fixed64Type
	case protoreflect.StringKind, protoreflect.BytesKind, protoreflect.MessageKind:
		return protowire.BytesType
	case protoreflect.GroupKind:
		return protowire.StartGroupType
	default:
		return protowire.VarintType
	}
}
