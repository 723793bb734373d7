package main

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

// parseScalar parses text as a value for fd, which must not be a message
// field. Strings may be given bare or double-quoted. Enums may be given by
// value name or by number.
func parseScalar(fd protoreflect.FieldDescriptor, text string) (protovalue.Value, error) {
	v, err := parseKind(fd, text)
	if err != nil {
		return protovalue.Value{}, fmt.Errorf("%w: %q is not a valid %v for %s: %v",
			protoaccess.ErrTypeMismatch, text, fd.Kind(), fd.FullName(), err)
	}
	return v, nil
}

func parseKind(fd protoreflect.FieldDescriptor, text string) (protovalue.Value, error) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		b, err := strconv.ParseBool(text)
		return protovalue.OfBool(b), err
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		i, err := strconv.ParseInt(text, 0, 32)
		return protovalue.OfInt32(int32(i)), err
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		i, err := strconv.ParseInt(text, 0, 64)
		return protovalue.OfInt64(i), err
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		u, err := strconv.ParseUint(text, 0, 32)
		return protovalue.OfUint32(uint32(u)), err
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		u, err := strconv.ParseUint(text, 0, 64)
		return protovalue.OfUint64(u), err
	case protoreflect.FloatKind:
		f, err := strconv.ParseFloat(text, 32)
		return protovalue.OfFloat32(float32(f)), err
	case protoreflect.DoubleKind:
		f, err := strconv.ParseFloat(text, 64)
		return protovalue.OfFloat64(f), err
	case protoreflect.StringKind:
		return protovalue.OfString(unquote(text)), nil
	case protoreflect.BytesKind:
		return protovalue.OfBytes([]byte(unquote(text))), nil
	case protoreflect.EnumKind:
		ed := fd.Enum()
		if ev := ed.Values().ByName(protoreflect.Name(text)); ev != nil {
			return protovalue.OfEnum(ev), nil
		}
		n, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return protovalue.Value{}, fmt.Errorf("no value named %q in %s", text, ed.FullName())
		}
		return protovalue.OfEnumNumber(ed, protoreflect.EnumNumber(n)), nil
	default:
		return protovalue.Value{}, fmt.Errorf("unsupported kind %v", fd.Kind())
	}
}

// parseValue parses text as a value for elem, which is the field (or map
// value field) that declares the type. Messages are given in text format
// and are instantiated from desc.
func parseValue(elem protoreflect.FieldDescriptor, desc *protoaccess.MessageDescriptor, text string) (protovalue.Value, error) {
	if desc == nil {
		return parseScalar(elem, text)
	}
	m := desc.NewInstance()
	body := strings.TrimSpace(text)
	if strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}") {
		body = body[1 : len(body)-1]
	}
	if err := prototext.Unmarshal([]byte(body), m); err != nil {
		return protovalue.Value{}, fmt.Errorf("%w: %s: %v", protoaccess.ErrTypeMismatch, desc.FullName(), err)
	}
	return protovalue.OfMessage(m), nil
}

func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		if s, err := strconv.Unquote(text); err == nil {
			return s
		}
	}
	return text
}
