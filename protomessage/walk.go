// Package protomessage provides traversals over message values that go
// through field accessors, so they work the same for generated and dynamic
// messages.
package protomessage

import (
	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

// Walk traverses the given root message, iterating through its fields and
// through all values in maps and lists, calling the given action for all
// message values encountered. The given action is called for root first
// before being called for any contained message values.
//
// The path provided to the callback is the sequence of field numbers,
// list indices, and map keys that identifies the location of the given
// message. It is empty when called for the root message. The types of
// values in the slice will be protoreflect.FieldNumber, int (an index
// into a list field), or protovalue.Value (indicating which entry in a
// map field). Fields are visited in declaration order and map entries in
// ascending key order.
//
// If the callback returns false, the traversal is terminated and the
// callback will not be invoked again.
func Walk(root protoaccess.Message, action func(path []any, m protoaccess.Message) bool) {
	walk(root, make([]any, 0, 8), action)
}

func walk(root protoaccess.Message, path []any, action func(path []any, m protoaccess.Message) bool) bool {
	if !action(path, root) {
		return false
	}
	for _, field := range protoaccess.DescriptorOf(root).Fields() {
		if field.ValueKind() != protovalue.MessageKind || !field.HasField(root) {
			continue
		}
		path = append(path, field.Number())
		ok := true
		switch field.Cardinality() {
		case protoaccess.Repeated:
			field.GetRepeated(root).Range(func(i int, val protovalue.Value) bool {
				path = append(path, i)
				ok = walk(val.Message(), path, action)
				path = path[:len(path)-1] // pop index
				return ok
			})
		case protoaccess.Map:
			field.GetMap(root).Range(func(key, val protovalue.Value) bool {
				path = append(path, key)
				ok = walk(val.Message(), path, action)
				path = path[:len(path)-1] // pop entry key
				return ok
			})
		default:
			ok = walk(field.GetMessage(root), path, action)
		}
		path = path[:len(path)-1] // pop field number
		if !ok {
			return false
		}
	}
	return true
}

// WalkFields traverses every present field of root and of the messages
// nested in it, calling action for each value: once for a singular field,
// once per element of a repeated field, and once per entry of a map field.
// Message values are reported before the fields inside them. The path has
// the same form as the path given by Walk, and identifies the value itself
// (so it ends with the index or key for list elements and map entries).
//
// If the callback returns false, the traversal is terminated.
func WalkFields(root protoaccess.Message, action func(path []any, field *protoaccess.FieldDescriptor, val protovalue.Value) bool) {
	walkFields(root, make([]any, 0, 8), action)
}

func walkFields(root protoaccess.Message, path []any, action func(path []any, field *protoaccess.FieldDescriptor, val protovalue.Value) bool) bool {
	visit := func(field *protoaccess.FieldDescriptor, val protovalue.Value) bool {
		if !action(path, field, val) {
			return false
		}
		if val.Kind() == protovalue.MessageKind {
			return walkFields(val.Message(), path, action)
		}
		return true
	}
	for _, field := range protoaccess.DescriptorOf(root).Fields() {
		if !field.HasField(root) {
			continue
		}
		path = append(path, field.Number())
		ok := true
		switch field.Cardinality() {
		case protoaccess.Repeated:
			field.GetRepeated(root).Range(func(i int, val protovalue.Value) bool {
				path = append(path, i)
				ok = visit(field, val)
				path = path[:len(path)-1]
				return ok
			})
		case protoaccess.Map:
			field.GetMap(root).Range(func(key, val protovalue.Value) bool {
				path = append(path, key)
				ok = visit(field, val)
				path = path[:len(path)-1]
				return ok
			})
		default:
			ok = visit(field, field.GetSingularFieldOrDefault(root))
		}
		path = path[:len(path)-1]
		if !ok {
			return false
		}
	}
	return true
}
