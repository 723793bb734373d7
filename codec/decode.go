package codec

import (
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

// ErrUnexpectedEndGroup is returned when an end-group tag does not close
// the group currently being decoded.
var ErrUnexpectedEndGroup = errors.New("proto: unexpected end group")

// ErrRecursionLimit is returned when messages and groups are nested more
// deeply than protowire.DefaultRecursionLimit.
var ErrRecursionLimit = errors.New("proto: exceeded maximum recursion depth")

// ErrInvalidUTF8 is returned when a string field that requires valid UTF-8
// holds anything else.
var ErrInvalidUTF8 = errors.New("proto: string field contains invalid UTF-8")

// Unmarshal parses the binary encoding in data and merges it into m.
// Singular fields that appear in data replace those in m, repeated fields
// are appended to and map entries are inserted. Fields that m's type does
// not declare, and fields whose wire type does not match their declaration,
// are skipped.
func Unmarshal(data []byte, m protoaccess.Message) error {
	return NewBuffer(data).decodeFields(m, 0, protowire.DefaultRecursionLimit)
}

// DecodeMessage reads a length-delimited message from the buffer and merges
// it into m.
func (cb *Buffer) DecodeMessage(m protoaccess.Message) error {
	return cb.decodeMessage(m, protowire.DefaultRecursionLimit)
}

func (cb *Buffer) decodeMessage(m protoaccess.Message, depth int) error {
	b, err := cb.DecodeRawBytes(false)
	if err != nil {
		return err
	}
	return NewBuffer(b).decodeFields(m, 0, depth)
}

// decodeFields reads fields into m until the input is exhausted or, if
// group is non-zero, until the matching end-group tag. depth is the number
// of further levels of nesting allowed below m.
func (cb *Buffer) decodeFields(m protoaccess.Message, group protowire.Number, depth int) error {
	if depth < 0 {
		return ErrRecursionLimit
	}
	desc := protoaccess.DescriptorOf(m)
	for !cb.EOF() {
		num, typ, err := cb.DecodeTagAndWireType()
		if err != nil {
			return err
		}
		if typ == protowire.EndGroupType {
			if group != 0 && num == group {
				return nil
			}
			return fmt.Errorf("%w: field %d", ErrUnexpectedEndGroup, num)
		}
		fd := desc.FindFieldByNumber(num)
		if fd == nil {
			if err := cb.SkipField(num, typ); err != nil {
				return err
			}
			continue
		}
		if err := cb.decodeField(m, fd, typ, depth); err != nil {
			if errors.Is(err, ErrRecursionLimit) {
				return err
			}
			return fmt.Errorf("%s: %w", fd.FullName(), err)
		}
	}
	if group != 0 {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (cb *Buffer) decodeField(m protoaccess.Message, fd *protoaccess.FieldDescriptor, typ protowire.Type, depth int) error {
	elem := fd.Unwrap()
	switch fd.Cardinality() {
	case protoaccess.Map:
		if typ != protowire.BytesType {
			return cb.SkipField(fd.Number(), typ)
		}
		b, err := cb.DecodeRawBytes(false)
		if err != nil {
			return err
		}
		key, val, err := decodeMapEntry(fd, b, depth)
		if err != nil {
			return err
		}
		return fd.MutMap(m).TryInsert(key, val)

	case protoaccess.Repeated:
		if typ == protowire.BytesType && isPackable(elem.Kind()) {
			b, err := cb.DecodeRawBytes(false)
			if err != nil {
				return err
			}
			list := fd.MutRepeated(m)
			packed := NewBuffer(b)
			for !packed.EOF() {
				v, err := packed.decodeScalar(elem, wireType(elem.Kind()))
				if err != nil {
					return err
				}
				if err := list.TryPush(v); err != nil {
					return err
				}
			}
			return nil
		}
		if typ != wireType(elem.Kind()) {
			return cb.SkipField(fd.Number(), typ)
		}
		switch elem.Kind() {
		case protoreflect.MessageKind:
			return cb.decodeMessage(fd.MutRepeated(m).PushMessage(), depth-1)
		case protoreflect.GroupKind:
			return cb.decodeFields(fd.MutRepeated(m).PushMessage(), fd.Number(), depth-1)
		}
		v, err := cb.decodeScalar(elem, typ)
		if err != nil {
			return err
		}
		return fd.MutRepeated(m).TryPush(v)

	default:
		if typ != wireType(elem.Kind()) {
			return cb.SkipField(fd.Number(), typ)
		}
		switch elem.Kind() {
		case protoreflect.MessageKind:
			return cb.decodeMessage(fd.MutMessage(m), depth-1)
		case protoreflect.GroupKind:
			return cb.decodeFields(fd.MutMessage(m), fd.Number(), depth-1)
		}
		v, err := cb.decodeScalar(elem, typ)
		if err != nil {
			return err
		}
		return fd.TrySetSingularField(m, v)
	}
}

func isPackable(k protoreflect.Kind) bool {
	switch wireType(k) {
	case protowire.VarintType, protowire.Fixed32Type, protowire.Fixed64Type:
		return true
	default:
		return false
	}
}

// decodeMapEntry parses one map entry. Missing keys and values take their
// zero values.
func decodeMapEntry(fd *protoaccess.FieldDescriptor, b []byte, depth int) (key, val protovalue.Value, err error) {
	keyFd, valFd := fd.MapKey(), fd.MapValue()
	key = protovalue.FromReflect(keyFd, keyFd.Default())
	var valMsg protoaccess.Message
	if valFd.Message() != nil {
		valMsg = fd.MessageDescriptor().NewInstance()
		val = protovalue.OfMessage(valMsg)
	} else {
		val = protovalue.FromReflect(valFd, valFd.Default())
	}

	entry := NewBuffer(b)
	for !entry.EOF() {
		num, typ, err := entry.DecodeTagAndWireType()
		if err != nil {
			return key, val, err
		}
		switch {
		case num == keyFd.Number() && typ == wireType(keyFd.Kind()):
			key, err = entry.decodeScalar(keyFd, typ)
		case num == valFd.Number() && typ == wireType(valFd.Kind()):
			if valMsg != nil {
				err = entry.decodeMessage(valMsg, depth-1)
			} else {
				val, err = entry.decodeScalar(valFd, typ)
			}
		default:
			err = entry.SkipField(num, typ)
		}
		if err != nil {
			return key, val, err
		}
	}
	return key, val, nil
}

// decodeScalar reads a single non-message value of the given field, whose
// tag has already been read.
func (cb *Buffer) decodeScalar(fd protoreflect.FieldDescriptor, typ protowire.Type) (protovalue.Value, error) {
	switch typ {
	case protowire.VarintType:
		x, err := cb.DecodeVarint()
		if err != nil {
			return protovalue.Value{}, err
		}
		switch fd.Kind() {
		case protoreflect.BoolKind:
			return protovalue.OfBool(protowire.DecodeBool(x)), nil
		case protoreflect.EnumKind:
			return protovalue.OfEnumNumber(fd.Enum(), protoreflect.EnumNumber(int32(x))), nil
		case protoreflect.Int32Kind:
			return protovalue.OfInt32(int32(x)), nil
		case protoreflect.Sint32Kind:
			return protovalue.OfInt32(int32(protowire.DecodeZigZag(x & math.MaxUint32))), nil
		case protoreflect.Uint32Kind:
			return protovalue.OfUint32(uint32(x)), nil
		case protoreflect.Int64Kind:
			return protovalue.OfInt64(int64(x)), nil
		case protoreflect.Sint64Kind:
			return protovalue.OfInt64(protowire.DecodeZigZag(x)), nil
		case protoreflect.Uint64Kind:
			return protovalue.OfUint64(x), nil
		}
	case protowire.Fixed32Type:
		x, err := cb.DecodeFixed32()
		if err != nil {
			return protovalue.Value{}, err
		}
		switch fd.Kind() {
		case protoreflect.Sfixed32Kind:
			return protovalue.OfInt32(int32(x)), nil
		case protoreflect.Fixed32Kind:
			return protovalue.OfUint32(x), nil
		case protoreflect.FloatKind:
			return protovalue.OfFloat32(math.Float32frombits(x)), nil
		}
	case protowire.Fixed64Type:
		x, err := cb.DecodeFixed64()
		if err != nil {
			return protovalue.Value{}, err
		}
		switch fd.Kind() {
		case protoreflect.Sfixed64Kind:
			return protovalue.OfInt64(int64(x)), nil
		case protoreflect.Fixed64Kind:
			return protovalue.OfUint64(x), nil
		case protoreflect.DoubleKind:
			return protovalue.OfFloat64(math.Float64frombits(x)), nil
		}
	case protowire.BytesType:
		b, err := cb.DecodeRawBytes(false)
		if err != nil {
			return protovalue.Value{}, err
		}
		switch fd.Kind() {
		case protoreflect.StringKind:
			if enforceUTF8(fd) && !utf8.Valid(b) {
				return protovalue.Value{}, ErrInvalidUTF8
			}
			return protovalue.OfString(string(b)), nil
		case protoreflect.BytesKind:
			return protovalue.OfBytes(b), nil
		}
	}
	return protovalue.Value{}, fmt.Errorf("cannot decode %v field from wire type %v", fd.Kind(), typ)
}

// enforceUTF8 reports whether string values of fd must be valid UTF-8:
// proto3 strings, and strings under editions unless utf8_validation is NONE.
func enforceUTF8(fd protoreflect.FieldDescriptor) bool {
	if fd.Syntax() == protoreflect.Editions {
		if v, ok := fd.(interface{ EnforceUTF8() bool }); ok {
			return v.EnforceUTF8()
		}
		return true
	}
	return fd.Syntax() == protoreflect.Proto3
}
