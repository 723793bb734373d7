// Package protoaccess provides descriptor-driven access to the fields of a
// protobuf message, for code that only learns a message's schema at run time:
// serializers, debuggers, diffing tools and generic dispatchers.
//
// A caller starts from a message and asks for its descriptor with
// DescriptorOf. Each FieldDescriptor of that MessageDescriptor is bound, when
// the descriptor is built, to exactly one Accessor. The accessor's variant
// matches the field's cardinality:
//
//   - *SingularAccessor: HasField, GetSingularFieldOrDefault, SetSingularField,
//     plus GetMessage and MutMessage for message-typed fields.
//   - *RepeatedAccessor: LenField, GetRepeated and MutRepeated, which hand out
//     a RepeatedView or MutRepeatedView over the field's live list.
//   - *MapAccessor: LenField, GetMap and MutMap, which hand out a MapView or
//     MutMapView over the field's live map.
//
// Values cross the API as protovalue.Value. Storage inside the message is
// reached through the message's protoreflect.Message, keyed by the field
// descriptor itself; name lookups happen once, when the caller picks a
// FieldDescriptor.
//
// # Errors
//
// Operations that do not fit the field are caller bugs: calling a singular
// operation on a repeated or map field (or the reverse), passing a value whose
// kind or type does not match the field, or passing a message of the wrong
// type. The plain methods panic with an error wrapping one of the sentinel
// errors below, and the Try variants return that error instead. Either way,
// the check happens before any storage is modified. A field simply being
// absent is not an error: HasField reports false and
// GetSingularFieldOrDefault returns the field's default.
//
// # Concurrency
//
// Descriptors are immutable once built and may be shared freely across
// goroutines. Messages are not synchronized: reads (HasField, the Get
// methods and read-only views) need a shared hold on the message, and writes
// (the Set methods, Mut methods and mutable views) need an exclusive one for
// as long as the returned view is used. Views must not be retained after the
// hold that produced them ends.
package protoaccess
