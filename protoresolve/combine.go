package protoresolve

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// Combine returns a resolver that iterates through the given resolvers to find elements.
// The first resolver given is the first one checked, so will always be the preferred resolver.
// When that returns a protoregistry.NotFound error, the next resolver will be checked, and so on.
// Any other error stops the search.
//
// RangeFiles emits the files of the first resolver first. Files whose path was
// already emitted are skipped.
func Combine(res ...Resolver) Resolver {
	return combined(res)
}

type combined []Resolver

// find returns the result of the first resolver that does not report
// protoregistry.NotFound.
func find[T any](c combined, what string, fn func(Resolver) (T, error)) (T, error) {
	for _, res := range c {
		v, err := fn(res)
		if errors.Is(err, protoregistry.NotFound) {
			continue
		}
		return v, err
	}
	var zero T
	return zero, fmt.Errorf("%s: %w", what, protoregistry.NotFound)
}

func (c combined) FindFileByPath(path string) (protoreflect.FileDescriptor, error) {
	return find(c, path, func(res Resolver) (protoreflect.FileDescriptor, error) {
		return res.FindFileByPath(path)
	})
}

func (c combined) RangeFiles(f func(protoreflect.FileDescriptor) bool) {
	observed := map[string]struct{}{}
	for _, res := range c {
		keepGoing := true
		res.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
			if _, ok := observed[fd.Path()]; ok {
				return true
			}
			observed[fd.Path()] = struct{}{}
			keepGoing = f(fd)
			return keepGoing
		})
		if !keepGoing {
			return
		}
	}
}

func (c combined) FindDescriptorByName(name protoreflect.FullName) (protoreflect.Descriptor, error) {
	return find(c, string(name), func(res Resolver) (protoreflect.Descriptor, error) {
		return res.FindDescriptorByName(name)
	})
}

func (c combined) FindMessageByName(name protoreflect.FullName) (protoreflect.MessageDescriptor, error) {
	return find(c, string(name), func(res Resolver) (protoreflect.MessageDescriptor, error) {
		return res.FindMessageByName(name)
	})
}

func (c combined) FindMessageByURL(url string) (protoreflect.MessageDescriptor, error) {
	return find(c, url, func(res Resolver) (protoreflect.MessageDescriptor, error) {
		return res.FindMessageByURL(url)
	})
}

func (c combined) FindEnumByName(name protoreflect.FullName) (protoreflect.EnumDescriptor, error) {
	return find(c, string(name), func(res Resolver) (protoreflect.EnumDescriptor, error) {
		return res.FindEnumByName(name)
	})
}

func (c combined) FindExtensionByName(name protoreflect.FullName) (protoreflect.ExtensionDescriptor, error) {
	return find(c, string(name), func(res Resolver) (protoreflect.ExtensionDescriptor, error) {
		return res.FindExtensionByName(name)
	})
}

func (c combined) FindExtensionByNumber(message protoreflect.FullName, number protoreflect.FieldNumber) (protoreflect.ExtensionDescriptor, error) {
	what := fmt.Sprintf("extension %d of %s", number, message)
	return find(c, what, func(res Resolver) (protoreflect.ExtensionDescriptor, error) {
		return res.FindExtensionByNumber(message, number)
	})
}

func (c combined) AsTypeResolver() TypeResolver {
	return dynTypeResolver{res: c}
}
