package protoaccess

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protovalue"
)

func (f *FieldDescriptor) singular() (*SingularAccessor, error) {
	if a, ok := f.acc.(*SingularAccessor); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s is %v", ErrNotSingular, f.fd.FullName(), f.card)
}

func (f *FieldDescriptor) repeated() (*RepeatedAccessor, error) {
	if a, ok := f.acc.(*RepeatedAccessor); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s is %v", ErrNotRepeated, f.fd.FullName(), f.card)
}

func (f *FieldDescriptor) mapAccessor() (*MapAccessor, error) {
	if a, ok := f.acc.(*MapAccessor); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s is %v", ErrNotMap, f.fd.FullName(), f.card)
}

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}
	return t
}

// HasField reports whether the field is present in m. For singular fields,
// this follows the schema's presence rules. For repeated and map fields, it
// reports whether the field is non-empty.
func (f *FieldDescriptor) HasField(m Message) bool {
	return f.acc.HasField(m)
}

// ClearField removes the field from m.
func (f *FieldDescriptor) ClearField(m Message) {
	f.acc.ClearField(m)
}

// LenField returns the number of elements in a repeated field or the number
// of entries in a map field. It panics for singular fields.
func (f *FieldDescriptor) LenField(m Message) int {
	switch a := f.acc.(type) {
	case *RepeatedAccessor:
		return a.Len(m)
	case *MapAccessor:
		return a.Len(m)
	default:
		panic(fmt.Errorf("%w: %s is %v", ErrNotRepeated, f.fd.FullName(), f.card))
	}
}

// GetSingularFieldOrDefault returns the value of a singular field, or its
// default if absent. It does not modify m. It panics for repeated and map
// fields.
func (f *FieldDescriptor) GetSingularFieldOrDefault(m Message) protovalue.Value {
	return must(f.singular()).Get(m)
}

// TryGetSingularFieldOrDefault is like GetSingularFieldOrDefault, except it
// returns an error instead of panicking when the field is not singular or
// does not belong to m.
func (f *FieldDescriptor) TryGetSingularFieldOrDefault(m Message) (protovalue.Value, error) {
	a, err := f.singular()
	if err != nil {
		return protovalue.Value{}, err
	}
	if _, err := reflectOf(f.fd.ContainingMessage(), m); err != nil {
		return protovalue.Value{}, err
	}
	return a.Get(m), nil
}

// SetSingularField sets the value of a singular field. It panics if the field
// is not singular or if v does not match the field's type.
func (f *FieldDescriptor) SetSingularField(m Message, v protovalue.Value) {
	must(f.singular()).Set(m, v)
}

// TrySetSingularField is like SetSingularField, except it returns an error
// instead of panicking. On error, m is not modified.
func (f *FieldDescriptor) TrySetSingularField(m Message, v protovalue.Value) error {
	a, err := f.singular()
	if err != nil {
		return err
	}
	return a.TrySet(m, v)
}

// GetMessage returns the message held by a singular message field, or a
// read-only empty message if absent.
func (f *FieldDescriptor) GetMessage(m Message) Message {
	return must(f.singular()).GetMessage(m)
}

// MutMessage returns the live message held by a singular message field,
// installing an empty one first if absent.
func (f *FieldDescriptor) MutMessage(m Message) Message {
	return must(f.singular()).MutMessage(m)
}

// GetRepeated returns a read-only view of a repeated field. It panics for
// singular and map fields.
func (f *FieldDescriptor) GetRepeated(m Message) RepeatedView {
	return must(f.repeated()).Get(m)
}

// MutRepeated returns a mutable view of a repeated field. It panics for
// singular and map fields.
func (f *FieldDescriptor) MutRepeated(m Message) MutRepeatedView {
	return must(f.repeated()).Mut(m)
}

// GetMap returns a read-only view of a map field. It panics for singular and
// repeated fields.
func (f *FieldDescriptor) GetMap(m Message) MapView {
	return must(f.mapAccessor()).Get(m)
}

// MutMap returns a mutable view of a map field. It panics for singular and
// repeated fields.
func (f *FieldDescriptor) MutMap(m Message) MutMapView {
	return must(f.mapAccessor()).Mut(m)
}

// The typed getters below return the value of a singular field, or its
// default if absent. Each panics if the field is not singular or does not
// hold values of the requested kind.

func (f *FieldDescriptor) GetBool(m Message) bool {
	return f.GetSingularFieldOrDefault(m).Bool()
}

func (f *FieldDescriptor) GetInt32(m Message) int32 {
	return f.GetSingularFieldOrDefault(m).Int32()
}

func (f *FieldDescriptor) GetInt64(m Message) int64 {
	return f.GetSingularFieldOrDefault(m).Int64()
}

func (f *FieldDescriptor) GetUint32(m Message) uint32 {
	return f.GetSingularFieldOrDefault(m).Uint32()
}

func (f *FieldDescriptor) GetUint64(m Message) uint64 {
	return f.GetSingularFieldOrDefault(m).Uint64()
}

func (f *FieldDescriptor) GetFloat32(m Message) float32 {
	return f.GetSingularFieldOrDefault(m).Float32()
}

func (f *FieldDescriptor) GetFloat64(m Message) float64 {
	return f.GetSingularFieldOrDefault(m).Float64()
}

func (f *FieldDescriptor) GetString(m Message) string {
	return f.GetSingularFieldOrDefault(m).Str()
}

func (f *FieldDescriptor) GetBytes(m Message) []byte {
	return f.GetSingularFieldOrDefault(m).Bytes()
}

// GetEnum returns the enum number held by a singular enum field.
func (f *FieldDescriptor) GetEnum(m Message) protoreflect.EnumNumber {
	return f.GetSingularFieldOrDefault(m).EnumNumber()
}
