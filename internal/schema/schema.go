// Package schema loads message schemas at run time, either by compiling
// .proto sources or by reading a compiled protoset (a serialized
// google.protobuf.FileDescriptorSet).
package schema

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Compile compiles the given .proto files, which are resolved relative to
// the given import paths. Standard imports (like "google/protobuf/any.proto")
// are always available. The result contains the compiled files and all of
// their transitive imports.
func Compile(ctx context.Context, importPaths []string, files ...string) (*protoregistry.Files, error) {
	return compile(ctx, &protocompile.SourceResolver{ImportPaths: importPaths}, files)
}

// CompileSources is like Compile, except the .proto sources are supplied in
// memory, keyed by path.
func CompileSources(ctx context.Context, sources map[string]string, files ...string) (*protoregistry.Files, error) {
	return compile(ctx, &protocompile.SourceResolver{
		Accessor: protocompile.SourceAccessorFromMap(sources),
	}, files)
}

func compile(ctx context.Context, resolver protocompile.Resolver, files []string) (*protoregistry.Files, error) {
	compiler := &protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	fds, err := compiler.Compile(ctx, files...)
	if err != nil {
		return nil, err
	}
	reg := &protoregistry.Files{}
	for _, fd := range fds {
		if err := register(reg, fd); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// register adds fd and its imports to reg, imports first.
func register(reg *protoregistry.Files, fd protoreflect.FileDescriptor) error {
	if _, err := reg.FindFileByPath(fd.Path()); err == nil {
		return nil
	}
	imports := fd.Imports()
	for i, length := 0, imports.Len(); i < length; i++ {
		if err := register(reg, imports.Get(i).FileDescriptor); err != nil {
			return err
		}
	}
	return reg.RegisterFile(fd)
}

// LoadProtoset loads the compiled protoset file at the given path.
func LoadProtoset(path string) (*protoregistry.Files, error) {
	var fds descriptorpb.FileDescriptorSet
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	bb, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if err = proto.Unmarshal(bb, &fds); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return protodesc.NewFiles(&fds)
}

// FindMessage returns the message with the given fully-qualified name.
func FindMessage(files *protoregistry.Files, name string) (protoreflect.MessageDescriptor, error) {
	d, err := files.FindDescriptorByName(protoreflect.FullName(name))
	if err != nil {
		return nil, fmt.Errorf("message %q: %w", name, err)
	}
	md, ok := d.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%q is not a message", name)
	}
	return md, nil
}
