package protoresolve

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Resolver finds descriptors by file path, name, number or type URL. All
// Find methods return an error wrapping protoregistry.NotFound when the
// element is unknown.
type Resolver interface {
	FindFileByPath(path string) (protoreflect.FileDescriptor, error)
	RangeFiles(fn func(protoreflect.FileDescriptor) bool)
	FindDescriptorByName(name protoreflect.FullName) (protoreflect.Descriptor, error)
	FindMessageByName(name protoreflect.FullName) (protoreflect.MessageDescriptor, error)
	FindMessageByURL(url string) (protoreflect.MessageDescriptor, error)
	FindEnumByName(name protoreflect.FullName) (protoreflect.EnumDescriptor, error)
	FindExtensionByName(name protoreflect.FullName) (protoreflect.ExtensionDescriptor, error)
	FindExtensionByNumber(message protoreflect.FullName, number protoreflect.FieldNumber) (protoreflect.ExtensionDescriptor, error)
	// AsTypeResolver returns a view of the resolver that returns types
	// instead of descriptors.
	AsTypeResolver() TypeResolver
}

// TypeResolver finds message, enum and extension types. It can be used as
// the Resolver of protojson and prototext options.
type TypeResolver interface {
	protoregistry.MessageTypeResolver
	protoregistry.ExtensionTypeResolver
	FindEnumByName(name protoreflect.FullName) (protoreflect.EnumType, error)
}

// ExtensionType returns a [protoreflect.ExtensionType] for the given descriptor.
// If the given descriptor implements [protoreflect.ExtensionTypeDescriptor], then
// the corresponding type is returned. Otherwise, a dynamic extension type is
// returned.
func ExtensionType(ext protoreflect.ExtensionDescriptor) protoreflect.ExtensionType {
	if xtd, ok := ext.(protoreflect.ExtensionTypeDescriptor); ok {
		return xtd.Type()
	}
	return dynamicpb.NewExtensionType(ext)
}

// TypeNameFromURL extracts the fully-qualified type name from the given URL.
// The URL is one that could be used with a google.protobuf.Any message. The
// last path component is the fully-qualified name.
func TypeNameFromURL(url string) protoreflect.FullName {
	pos := strings.LastIndexByte(url, '/')
	return protoreflect.FullName(url[pos+1:])
}

// dynTypeResolver implements TypeResolver over a Resolver, creating
// dynamic types for the descriptors it finds.
type dynTypeResolver struct {
	res Resolver
}

func (d dynTypeResolver) FindExtensionByName(name protoreflect.FullName) (protoreflect.ExtensionType, error) {
	ext, err := d.res.FindExtensionByName(name)
	if err != nil {
		return nil, err
	}
	return ExtensionType(ext), nil
}

func (d dynTypeResolver) FindExtensionByNumber(message protoreflect.FullName, number protoreflect.FieldNumber) (protoreflect.ExtensionType, error) {
	ext, err := d.res.FindExtensionByNumber(message, number)
	if err != nil {
		return nil, err
	}
	return ExtensionType(ext), nil
}

func (d dynTypeResolver) FindMessageByName(name protoreflect.FullName) (protoreflect.MessageType, error) {
	msg, err := d.res.FindMessageByName(name)
	if err != nil {
		return nil, err
	}
	return dynamicpb.NewMessageType(msg), nil
}

func (d dynTypeResolver) FindMessageByURL(url string) (protoreflect.MessageType, error) {
	return d.FindMessageByName(TypeNameFromURL(url))
}

func (d dynTypeResolver) FindEnumByName(name protoreflect.FullName) (protoreflect.EnumType, error) {
	en, err := d.res.FindEnumByName(name)
	if err != nil {
		return nil, err
	}
	return dynamicpb.NewEnumType(en), nil
}
