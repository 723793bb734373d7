package protoresolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/jhump/protoaccess/protoresolve"
)

func TestCombine(t *testing.T) {
	res := protoresolve.Combine(registry(t, "a.proto"), registry(t, "shadow.proto"))

	// the first resolver wins
	md, err := res.FindMessageByName("a.Thing")
	require.NoError(t, err)
	assert.Equal(t, "a.proto", md.ParentFile().Path())
	assert.Equal(t, 0, md.Fields().Len())

	md, err = res.FindMessageByName("a.Only")
	require.NoError(t, err)
	assert.Equal(t, "shadow.proto", md.ParentFile().Path())

	md, err = res.FindMessageByURL("type.googleapis.com/a.Only")
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("a.Only"), md.FullName())

	d, err := res.FindDescriptorByName("a.Only")
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("a.Only"), d.FullName())

	fd, err := res.FindFileByPath("shadow.proto")
	require.NoError(t, err)
	assert.Equal(t, "shadow.proto", fd.Path())

	ext, err := res.FindExtensionByNumber("a.Base", 100)
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("a.ext_a"), ext.FullName())

	_, err = res.FindMessageByName("a.Nope")
	assert.ErrorIs(t, err, protoregistry.NotFound)
	assert.ErrorContains(t, err, "a.Nope")

	_, err = res.FindExtensionByNumber("a.Base", 150)
	assert.ErrorIs(t, err, protoregistry.NotFound)
}

func TestCombine_StopsOnOtherErrors(t *testing.T) {
	res := protoresolve.Combine(registry(t, "a.proto"), registry(t, "shadow.proto"))
	// a.Kind is an enum in a.proto, so the message of that name in
	// shadow.proto is never reached
	_, err := res.FindMessageByName("a.Kind")
	assert.ErrorContains(t, err, "is an enum, not a message")
	assert.NotErrorIs(t, err, protoregistry.NotFound)

	_, err = res.FindEnumByName("a.Only")
	assert.ErrorContains(t, err, "is a message, not an enum")
}

func TestCombine_RangeFiles(t *testing.T) {
	res := protoresolve.Combine(registry(t, "a.proto"), registry(t, "dup.proto"), registry(t, "shadow.proto"))
	var paths []string
	res.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		paths = append(paths, fd.Path())
		return true
	})
	assert.ElementsMatch(t, []string{"a.proto", "dup.proto", "shadow.proto"}, paths)

	var count int
	res.RangeFiles(func(protoreflect.FileDescriptor) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestCombine_TypeResolver(t *testing.T) {
	types := protoresolve.Combine(registry(t, "a.proto"), registry(t, "shadow.proto")).AsTypeResolver()
	mt, err := types.FindMessageByURL("type.googleapis.com/a.Only")
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FullName("a.Only"), mt.Descriptor().FullName())

	xt, err := types.FindExtensionByName("a.Holder.nested_ext")
	require.NoError(t, err)
	assert.Equal(t, protoreflect.FieldNumber(102), xt.TypeDescriptor().Number())
}
