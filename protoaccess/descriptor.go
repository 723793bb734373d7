package protoaccess

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protoaccess/protovalue"
)

// Message is the capability a concrete message type needs in order to be
// accessed reflectively. Generated message types and dynamicpb messages both
// qualify: ProtoReflect reports the message's descriptor and exposes its
// storage keyed by field descriptor.
type Message = proto.Message

// Cardinality says how many values a field holds.
type Cardinality int

const (
	// Singular fields hold zero or one value.
	Singular Cardinality = iota
	// Repeated fields hold an ordered list of values.
	Repeated
	// Map fields hold values indexed by unique keys.
	Map
)

func (c Cardinality) String() string {
	switch c {
	case Singular:
		return "singular"
	case Repeated:
		return "repeated"
	case Map:
		return "map"
	default:
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
}

func cardinalityOf(fd protoreflect.FieldDescriptor) Cardinality {
	switch {
	case fd.IsMap():
		return Map
	case fd.IsList():
		return Repeated
	default:
		return Singular
	}
}

// Registry caches MessageDescriptors, so that the accessors for a message
// type are bound only once. It is safe for concurrent use. The zero value is
// ready to use.
type Registry struct {
	mu    sync.RWMutex
	descs map[descKey]*MessageDescriptor
}

// descKey identifies a message descriptor together with the concrete type
// used to create new instances. The type is nil for dynamic messages.
type descKey struct {
	md protoreflect.MessageDescriptor
	mt protoreflect.MessageType
}

var defaultRegistry Registry

// DescriptorOf returns the descriptor for the given message, using a shared
// package-level registry.
func DescriptorOf(m Message) *MessageDescriptor {
	return defaultRegistry.DescriptorOf(m)
}

// Describe returns a descriptor for messages of the given type, using a
// shared package-level registry. New instances created from the result are
// dynamic messages.
func Describe(md protoreflect.MessageDescriptor) *MessageDescriptor {
	return defaultRegistry.Describe(md)
}

// DescriptorOf returns the descriptor for the given message. If the message
// is of a generated type, NewInstance on the result (and on the descriptors
// of its message-typed fields) creates instances of the generated types.
func (r *Registry) DescriptorOf(m Message) *MessageDescriptor {
	msg := m.ProtoReflect()
	return r.describe(msg.Descriptor(), concreteType(msg))
}

// Describe returns a descriptor for messages of the given type. New
// instances created from the result are dynamic messages.
func (r *Registry) Describe(md protoreflect.MessageDescriptor) *MessageDescriptor {
	return r.describe(md, nil)
}

func (r *Registry) describe(md protoreflect.MessageDescriptor, mt protoreflect.MessageType) *MessageDescriptor {
	key := descKey{md: md, mt: mt}
	r.mu.RLock()
	d := r.descs[key]
	r.mu.RUnlock()
	if d != nil {
		return d
	}

	d = newMessageDescriptor(r, md, mt)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.descs[key]; existing != nil {
		// another goroutine beat us to it
		return existing
	}
	if r.descs == nil {
		r.descs = map[descKey]*MessageDescriptor{}
	}
	r.descs[key] = d
	return d
}

// concreteType returns the type of msg, or nil if msg is a dynamic message.
func concreteType(msg protoreflect.Message) protoreflect.MessageType {
	if _, ok := msg.Interface().(*dynamicpb.Message); ok {
		return nil
	}
	return msg.Type()
}

// MessageDescriptor describes a message type and holds the accessors for all
// of its fields. It wraps a protoreflect.MessageDescriptor, which is consumed
// read-only. It is immutable and safe to share across goroutines.
type MessageDescriptor struct {
	reg      *Registry
	md       protoreflect.MessageDescriptor
	mt       protoreflect.MessageType
	fields   []*FieldDescriptor
	byName   map[protoreflect.Name]*FieldDescriptor
	byNumber map[protoreflect.FieldNumber]*FieldDescriptor
}

func newMessageDescriptor(reg *Registry, md protoreflect.MessageDescriptor, mt protoreflect.MessageType) *MessageDescriptor {
	flds := md.Fields()
	d := &MessageDescriptor{
		reg:      reg,
		md:       md,
		mt:       mt,
		fields:   make([]*FieldDescriptor, flds.Len()),
		byName:   make(map[protoreflect.Name]*FieldDescriptor, flds.Len()),
		byNumber: make(map[protoreflect.FieldNumber]*FieldDescriptor, flds.Len()),
	}
	for i, length := 0, flds.Len(); i < length; i++ {
		fld := flds.Get(i)
		f := &FieldDescriptor{
			owner: d,
			fd:    fld,
			card:  cardinalityOf(fld),
			acc:   newAccessor(fld),
		}
		d.fields[i] = f
		d.byName[fld.Name()] = f
		d.byNumber[fld.Number()] = f
	}
	return d
}

// Unwrap returns the underlying descriptor.
func (d *MessageDescriptor) Unwrap() protoreflect.MessageDescriptor {
	return d.md
}

func (d *MessageDescriptor) Name() protoreflect.Name {
	return d.md.Name()
}

func (d *MessageDescriptor) FullName() protoreflect.FullName {
	return d.md.FullName()
}

func (d *MessageDescriptor) String() string {
	return string(d.md.FullName())
}

// Fields returns all fields of the message, in declaration order. The
// returned slice must not be modified.
func (d *MessageDescriptor) Fields() []*FieldDescriptor {
	return d.fields
}

// FindFieldByName returns the field with the given name, or nil if there is
// no such field.
func (d *MessageDescriptor) FindFieldByName(name string) *FieldDescriptor {
	return d.byName[protoreflect.Name(name)]
}

// FindFieldByNumber returns the field with the given number, or nil if there
// is no such field.
func (d *MessageDescriptor) FindFieldByNumber(num protoreflect.FieldNumber) *FieldDescriptor {
	return d.byNumber[num]
}

// FieldByName returns the field with the given name. It panics if there is
// no such field: asking for a field the schema doesn't have is a caller bug.
func (d *MessageDescriptor) FieldByName(name string) *FieldDescriptor {
	f := d.FindFieldByName(name)
	if f == nil {
		panic(fmt.Errorf("%w: %s has no field named %q", ErrUnknownField, d.md.FullName(), name))
	}
	return f
}

// FieldByNumber returns the field with the given number. It panics if there
// is no such field.
func (d *MessageDescriptor) FieldByNumber(num protoreflect.FieldNumber) *FieldDescriptor {
	f := d.FindFieldByNumber(num)
	if f == nil {
		panic(fmt.Errorf("%w: %s has no field with number %d", ErrUnknownField, d.md.FullName(), num))
	}
	return f
}

// NewInstance returns a new, empty message of this type. If the descriptor
// came from a generated message, the result has that generated type.
// Otherwise it is a dynamic message.
func (d *MessageDescriptor) NewInstance() Message {
	if d.mt != nil {
		return d.mt.New().Interface()
	}
	return dynamicpb.NewMessage(d.md)
}

// WhichOneof returns the field of the named oneof that is set in m, or nil
// if none of them is. It panics if the message declares no such oneof.
func (d *MessageDescriptor) WhichOneof(m Message, name string) *FieldDescriptor {
	od := d.md.Oneofs().ByName(protoreflect.Name(name))
	if od == nil {
		panic(fmt.Errorf("%w: %s has no oneof named %q", ErrUnknownField, d.md.FullName(), name))
	}
	msg, err := reflectOf(d.md, m)
	if err != nil {
		panic(err)
	}
	if fd := msg.WhichOneof(od); fd != nil {
		return d.byNumber[fd.Number()]
	}
	return nil
}

// FieldDescriptor describes one field of a message and is bound to the
// accessor for that field. It wraps a protoreflect.FieldDescriptor, which is
// consumed read-only.
type FieldDescriptor struct {
	owner *MessageDescriptor
	fd    protoreflect.FieldDescriptor
	card  Cardinality
	acc   Accessor

	nestedOnce sync.Once
	nested     *MessageDescriptor
}

// Unwrap returns the underlying descriptor.
func (f *FieldDescriptor) Unwrap() protoreflect.FieldDescriptor {
	return f.fd
}

// Owner returns the descriptor of the message that declares this field.
func (f *FieldDescriptor) Owner() *MessageDescriptor {
	return f.owner
}

func (f *FieldDescriptor) Name() string {
	return string(f.fd.Name())
}

func (f *FieldDescriptor) FullName() protoreflect.FullName {
	return f.fd.FullName()
}

func (f *FieldDescriptor) Number() protoreflect.FieldNumber {
	return f.fd.Number()
}

func (f *FieldDescriptor) String() string {
	return string(f.fd.FullName())
}

// Cardinality reports whether the field is singular, repeated or a map.
func (f *FieldDescriptor) Cardinality() Cardinality {
	return f.card
}

// Accessor returns the accessor bound to this field.
func (f *FieldDescriptor) Accessor() Accessor {
	return f.acc
}

// DeclaredType returns the field's declared type. For map fields, this is
// the type of the map's values.
func (f *FieldDescriptor) DeclaredType() protoreflect.Kind {
	return f.elem().Kind()
}

// ValueKind returns the kind of protovalue.Value that holds the field's
// elements (or, for map fields, the map's values).
func (f *FieldDescriptor) ValueKind() protovalue.Kind {
	return protovalue.KindOf(f.DeclaredType())
}

// MapKey returns the key field of a map entry. It returns nil for fields that
// are not maps.
func (f *FieldDescriptor) MapKey() protoreflect.FieldDescriptor {
	return f.fd.MapKey()
}

// MapValue returns the value field of a map entry. It returns nil for fields
// that are not maps.
func (f *FieldDescriptor) MapValue() protoreflect.FieldDescriptor {
	return f.fd.MapValue()
}

// EnumDescriptor returns the enum type of an enum field (or the enum type of
// a map field's values). It returns nil for other fields.
func (f *FieldDescriptor) EnumDescriptor() protoreflect.EnumDescriptor {
	return f.elem().Enum()
}

// MessageDescriptor returns the message type of a message field (or the
// message type of a map field's values). It returns nil for other fields.
//
// The descriptor is resolved on first use, so recursive schemas are fine.
func (f *FieldDescriptor) MessageDescriptor() *MessageDescriptor {
	f.nestedOnce.Do(func() {
		md := f.elem().Message()
		if md == nil {
			return
		}
		f.nested = f.owner.reg.describe(md, f.nestedType())
	})
	return f.nested
}

// elem returns the descriptor that declares the type of this field's values.
func (f *FieldDescriptor) elem() protoreflect.FieldDescriptor {
	if f.card == Map {
		return f.fd.MapValue()
	}
	return f.fd
}

// nestedType finds the concrete type of this field's message values, when
// the owning message has a concrete type.
func (f *FieldDescriptor) nestedType() protoreflect.MessageType {
	if f.owner.mt == nil {
		return nil
	}
	parent := f.owner.mt.New()
	var v protoreflect.Value
	switch f.card {
	case Map:
		v = parent.NewField(f.fd).Map().NewValue()
	case Repeated:
		v = parent.NewField(f.fd).List().NewElement()
	default:
		v = parent.NewField(f.fd)
	}
	return concreteType(v.Message())
}

// Default returns the schema-declared default of a singular field. For
// message fields, this is a new empty instance. It panics for repeated and map
// fields, which have no default.
func (f *FieldDescriptor) Default() protovalue.Value {
	if f.card != Singular {
		panic(fmt.Errorf("%w: %s is %v", ErrNotSingular, f.fd.FullName(), f.card))
	}
	switch f.fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return protovalue.OfMessage(f.MessageDescriptor().NewInstance())
	case protoreflect.EnumKind:
		if ev := f.fd.DefaultEnumValue(); ev != nil {
			return protovalue.OfEnum(ev)
		}
		return protovalue.OfEnumNumber(f.fd.Enum(), f.fd.Default().Enum())
	default:
		return protovalue.FromReflect(f.fd, f.fd.Default())
	}
}
