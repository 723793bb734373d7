package protoaccess

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protovalue"
)

// Accessor binds one field descriptor to that field's storage in messages.
// The set of implementations is closed: every Accessor is exactly one of
// *SingularAccessor, *RepeatedAccessor or *MapAccessor, matching the field's
// cardinality. Accessors hold no mutable state.
type Accessor interface {
	// Field returns the field this accessor is bound to.
	Field() protoreflect.FieldDescriptor
	// Cardinality returns the cardinality of the field.
	Cardinality() Cardinality
	// HasField reports whether the field is present in m. For repeated and
	// map fields, that means non-empty.
	HasField(m Message) bool
	// ClearField removes the field from m.
	ClearField(m Message)

	isAccessor()
}

func newAccessor(fd protoreflect.FieldDescriptor) Accessor {
	switch cardinalityOf(fd) {
	case Map:
		return &MapAccessor{fd: fd}
	case Repeated:
		return &RepeatedAccessor{fd: fd}
	default:
		return &SingularAccessor{fd: fd}
	}
}

// reflectOf returns the reflective view of m, after verifying it is a
// message of the given type.
func reflectOf(md protoreflect.MessageDescriptor, m Message) (protoreflect.Message, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil message, expecting %s", ErrWrongMessage, md.FullName())
	}
	msg := m.ProtoReflect()
	if msg.Descriptor() != md {
		return nil, fmt.Errorf("%w: message is %s, expecting %s", ErrWrongMessage, msg.Descriptor().FullName(), md.FullName())
	}
	return msg, nil
}

func mustReflect(fd protoreflect.FieldDescriptor, m Message) protoreflect.Message {
	msg, err := reflectOf(fd.ContainingMessage(), m)
	if err != nil {
		panic(err)
	}
	return msg
}

// checkValue verifies that v can be stored in (an element of) fd.
func checkValue(fd protoreflect.FieldDescriptor, v protovalue.Value) error {
	want := protovalue.KindOf(fd.Kind())
	if v.Kind() != want {
		return fmt.Errorf("%w: %s requires %v value, got %v", ErrTypeMismatch, fd.FullName(), want, v.Kind())
	}
	switch want {
	case protovalue.EnumKind:
		if got := v.EnumDescriptor().FullName(); got != fd.Enum().FullName() {
			return fmt.Errorf("%w: %s requires enum %s, got %s", ErrTypeMismatch, fd.FullName(), fd.Enum().FullName(), got)
		}
	case protovalue.MessageKind:
		if got := v.Message().ProtoReflect().Descriptor().FullName(); got != fd.Message().FullName() {
			return fmt.Errorf("%w: %s requires message %s, got %s", ErrTypeMismatch, fd.FullName(), fd.Message().FullName(), got)
		}
	}
	return nil
}

// storageValue converts v, which has already been checked, into a value that
// can be stored in fd. Message values are stored as-is when their concrete type
// matches what the field holds. Otherwise (for example, a dynamic message
// bound for a field of a generated message) the message is transcoded into a
// new instance created by newElem.
func storageValue(fd protoreflect.FieldDescriptor, v protovalue.Value, newElem func() protoreflect.Value) (protoreflect.Value, error) {
	if v.Kind() != protovalue.MessageKind {
		return v.Reflect(), nil
	}
	src := v.Message().ProtoReflect()
	dst := newElem().Message()
	if dst.Type() == src.Type() {
		return protoreflect.ValueOfMessage(src), nil
	}
	data, err := proto.MarshalOptions{AllowPartial: true}.Marshal(src.Interface())
	if err != nil {
		return protoreflect.Value{}, fmt.Errorf("%w: cannot convert value for %s: %v", ErrTypeMismatch, fd.FullName(), err)
	}
	if err := (proto.UnmarshalOptions{AllowPartial: true, Merge: true}).Unmarshal(data, dst.Interface()); err != nil {
		return protoreflect.Value{}, fmt.Errorf("%w: cannot convert value for %s: %v", ErrTypeMismatch, fd.FullName(), err)
	}
	return protoreflect.ValueOfMessage(dst), nil
}

func checkMessageKind(fd protoreflect.FieldDescriptor) error {
	if fd.Message() == nil {
		return fmt.Errorf("%w: %s is %v, not a message", ErrTypeMismatch, fd.FullName(), fd.Kind())
	}
	return nil
}

// SingularAccessor is the accessor for fields that hold zero or one value.
type SingularAccessor struct {
	fd protoreflect.FieldDescriptor
}

var _ Accessor = (*SingularAccessor)(nil)

func (a *SingularAccessor) isAccessor() {}

func (a *SingularAccessor) Field() protoreflect.FieldDescriptor {
	return a.fd
}

func (a *SingularAccessor) Cardinality() Cardinality {
	return Singular
}

// HasField reports whether the field is present. For fields with explicit
// presence, this is whether a value has been set. For fields with implicit
// presence (non-optional scalars in proto3), this is whether the value
// differs from the default.
func (a *SingularAccessor) HasField(m Message) bool {
	return mustReflect(a.fd, m).Has(a.fd)
}

func (a *SingularAccessor) ClearField(m Message) {
	mustReflect(a.fd, m).Clear(a.fd)
}

// Get returns the field's value, or its default if it is absent. It never
// modifies m. For an absent message field, the result is a new empty
// instance that is not attached to m. For a present message field, the
// result refers to the field's live message.
func (a *SingularAccessor) Get(m Message) protovalue.Value {
	msg := mustReflect(a.fd, m)
	if a.fd.Message() != nil && !msg.Has(a.fd) {
		return protovalue.OfMessage(msg.NewField(a.fd).Message().Interface())
	}
	return protovalue.FromReflect(a.fd, msg.Get(a.fd))
}

// Set installs v as the field's value, establishing presence (except that,
// for implicit-presence fields, a default value reads back as absent). It
// panics if v does not match the field's type.
func (a *SingularAccessor) Set(m Message, v protovalue.Value) {
	if err := a.TrySet(m, v); err != nil {
		panic(err)
	}
}

// TrySet is like Set, except it returns an error instead of panicking. On
// error, m is not modified.
func (a *SingularAccessor) TrySet(m Message, v protovalue.Value) error {
	msg, err := reflectOf(a.fd.ContainingMessage(), m)
	if err != nil {
		return err
	}
	if err := checkValue(a.fd, v); err != nil {
		return err
	}
	pv, err := storageValue(a.fd, v, func() protoreflect.Value { return msg.NewField(a.fd) })
	if err != nil {
		return err
	}
	msg.Set(a.fd, pv)
	return nil
}

// GetMessage returns the message held by a message field. If the field is
// absent, the result is a read-only empty message. The result must not be
// modified; use MutMessage for that.
func (a *SingularAccessor) GetMessage(m Message) Message {
	if err := checkMessageKind(a.fd); err != nil {
		panic(err)
	}
	return mustReflect(a.fd, m).Get(a.fd).Message().Interface()
}

// MutMessage returns the live message held by a message field, first
// installing an empty one if the field is absent. Changes made to the result
// are changes to m.
func (a *SingularAccessor) MutMessage(m Message) Message {
	if err := checkMessageKind(a.fd); err != nil {
		panic(err)
	}
	return mustReflect(a.fd, m).Mutable(a.fd).Message().Interface()
}

// RepeatedAccessor is the accessor for fields that hold an ordered list of
// values.
type RepeatedAccessor struct {
	fd protoreflect.FieldDescriptor
}

var _ Accessor = (*RepeatedAccessor)(nil)

func (a *RepeatedAccessor) isAccessor() {}

func (a *RepeatedAccessor) Field() protoreflect.FieldDescriptor {
	return a.fd
}

func (a *RepeatedAccessor) Cardinality() Cardinality {
	return Repeated
}

// HasField reports whether the list is non-empty.
func (a *RepeatedAccessor) HasField(m Message) bool {
	return a.Len(m) > 0
}

func (a *RepeatedAccessor) ClearField(m Message) {
	mustReflect(a.fd, m).Clear(a.fd)
}

// Len returns the number of elements in the list.
func (a *RepeatedAccessor) Len(m Message) int {
	msg := mustReflect(a.fd, m)
	if !msg.Has(a.fd) {
		return 0
	}
	return msg.Get(a.fd).List().Len()
}

// Get returns a read-only view of the list. It does not copy the list.
func (a *RepeatedAccessor) Get(m Message) RepeatedView {
	return RepeatedView{fd: a.fd, msg: mustReflect(a.fd, m)}
}

// Mut returns a mutable view of the list.
func (a *RepeatedAccessor) Mut(m Message) MutRepeatedView {
	return MutRepeatedView{RepeatedView{fd: a.fd, msg: mustReflect(a.fd, m), mutable: true}}
}

// MapAccessor is the accessor for map fields.
type MapAccessor struct {
	fd protoreflect.FieldDescriptor
}

var _ Accessor = (*MapAccessor)(nil)

func (a *MapAccessor) isAccessor() {}

func (a *MapAccessor) Field() protoreflect.FieldDescriptor {
	return a.fd
}

func (a *MapAccessor) Cardinality() Cardinality {
	return Map
}

// HasField reports whether the map is non-empty.
func (a *MapAccessor) HasField(m Message) bool {
	return a.Len(m) > 0
}

func (a *MapAccessor) ClearField(m Message) {
	mustReflect(a.fd, m).Clear(a.fd)
}

// Len returns the number of entries in the map.
func (a *MapAccessor) Len(m Message) int {
	msg := mustReflect(a.fd, m)
	if !msg.Has(a.fd) {
		return 0
	}
	return msg.Get(a.fd).Map().Len()
}

// Get returns a read-only view of the map. It does not copy the map.
func (a *MapAccessor) Get(m Message) MapView {
	return MapView{fd: a.fd, msg: mustReflect(a.fd, m)}
}

// Mut returns a mutable view of the map.
func (a *MapAccessor) Mut(m Message) MutMapView {
	return MutMapView{MapView{fd: a.fd, msg: mustReflect(a.fd, m), mutable: true}}
}
