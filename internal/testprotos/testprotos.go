// Package testprotos holds the schemas used by tests. They are compiled from
// source when first needed, and messages are created as dynamic messages.
package testprotos

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/jhump/protoaccess/internal/schema"
)

// Sources maps file names to the .proto sources of the test schemas.
var Sources = map[string]string{
	"test_reflect.proto":  testReflectProto,
	"test_reflect3.proto": testReflect3Proto,
}

const testReflectProto = `
syntax = "proto2";

package test_reflect;

enum TestEnum {
  UNKNOWN = 0;
  ONE = 1;
  TWO = 2;
}

message SubM {
  optional int32 n = 1;
  optional string label = 2;
}

message M {
  optional SubM sub_m = 1;
  repeated SubM subs = 2;
  map<string, SubM> sub_map = 3;
}

message TestTypesSingular {
  optional double double_field = 1;
  optional float float_field = 2;
  optional int32 int32_field = 3;
  optional int64 int64_field = 4;
  optional uint32 uint32_field = 5;
  optional uint64 uint64_field = 6;
  optional sint32 sint32_field = 7;
  optional sint64 sint64_field = 8;
  optional fixed32 fixed32_field = 9;
  optional fixed64 fixed64_field = 10;
  optional sfixed32 sfixed32_field = 11;
  optional sfixed64 sfixed64_field = 12;
  optional bool bool_field = 13;
  optional string string_field = 14;
  optional bytes bytes_field = 15;
  optional TestEnum enum_field = 16;
  optional SubM message_field = 17;
}

message TestTypesRepeated {
  repeated double double_field = 1;
  repeated float float_field = 2;
  repeated int32 int32_field = 3;
  repeated int64 int64_field = 4;
  repeated uint32 uint32_field = 5;
  repeated uint64 uint64_field = 6;
  repeated sint32 sint32_field = 7;
  repeated sint64 sint64_field = 8;
  repeated fixed32 fixed32_field = 9;
  repeated fixed64 fixed64_field = 10;
  repeated sfixed32 sfixed32_field = 11;
  repeated sfixed64 sfixed64_field = 12;
  repeated bool bool_field = 13;
  repeated string string_field = 14;
  repeated bytes bytes_field = 15;
  repeated TestEnum enum_field = 16;
  repeated SubM message_field = 17;
}

message TestTypesRepeatedPacked {
  repeated double double_field = 1 [packed = true];
  repeated float float_field = 2 [packed = true];
  repeated int32 int32_field = 3 [packed = true];
  repeated int64 int64_field = 4 [packed = true];
  repeated uint32 uint32_field = 5 [packed = true];
  repeated uint64 uint64_field = 6 [packed = true];
  repeated sint32 sint32_field = 7 [packed = true];
  repeated sint64 sint64_field = 8 [packed = true];
  repeated fixed32 fixed32_field = 9 [packed = true];
  repeated fixed64 fixed64_field = 10 [packed = true];
  repeated sfixed32 sfixed32_field = 11 [packed = true];
  repeated sfixed64 sfixed64_field = 12 [packed = true];
  repeated bool bool_field = 13 [packed = true];
  repeated TestEnum enum_field = 16 [packed = true];
}

message TestTypesMap {
  map<int32, int32> int32_field = 1;
  map<int64, int64> int64_field = 2;
  map<uint32, uint32> uint32_field = 3;
  map<uint64, uint64> uint64_field = 4;
  map<sint32, sint32> sint32_field = 5;
  map<sint64, sint64> sint64_field = 6;
  map<fixed32, fixed32> fixed32_field = 7;
  map<fixed64, fixed64> fixed64_field = 8;
  map<sfixed32, sfixed32> sfixed32_field = 9;
  map<sfixed64, sfixed64> sfixed64_field = 10;
  map<bool, bool> bool_field = 11;
  map<string, string> string_field = 12;
  map<string, bytes> bytes_field = 13;
  map<string, TestEnum> enum_field = 14;
  map<string, SubM> message_field = 15;
  map<int32, double> double_field = 16;
  map<int32, float> float_field = 17;
}

message WithDefaults {
  optional int32 i = 1 [default = 7];
  optional string s = 2 [default = "hi"];
  optional TestEnum e = 3 [default = TWO];
  optional bool b = 4 [default = true];
  optional double d = 5 [default = 2.5];
  optional bytes raw = 6 [default = "xyz"];
}

message WithOneof {
  oneof choice {
    string a = 1;
    int32 b = 2;
    SubM c = 3;
  }
  optional int32 other = 4;
}

message Recursive {
  optional Recursive child = 1;
  optional int32 depth = 2;
  repeated Recursive children = 3;
  map<string, Recursive> named = 4;
}

message WithGroup {
  optional group Item = 1 {
    optional int32 x = 2;
    optional string y = 3;
  }
  repeated group Entry = 4 {
    optional int32 z = 5;
  }
}
`

const testReflect3Proto = `
syntax = "proto3";

package test_reflect3;

import "test_reflect.proto";

enum Color {
  COLOR_UNSPECIFIED = 0;
  RED = 1;
  GREEN = 2;
}

message Scalars {
  int32 i = 1;
  string s = 2;
  bytes b = 3;
  Color color = 4;
  optional int64 explicit = 5;
  test_reflect.SubM sub = 6;
  repeated int32 packed = 7;
  repeated string names = 8;
  map<string, int64> counts = 9;
  double d = 10;
  bool flag = 11;
}
`

var files = sync.OnceValues(func() (*protoregistry.Files, error) {
	return schema.CompileSources(context.Background(), Sources, "test_reflect.proto", "test_reflect3.proto")
})

// Files returns the compiled test schemas.
func Files(t testing.TB) *protoregistry.Files {
	t.Helper()
	reg, err := files()
	require.NoError(t, err)
	return reg
}

// Message returns the descriptor for the test message with the given
// fully-qualified name.
func Message(t testing.TB, name string) protoreflect.MessageDescriptor {
	t.Helper()
	md, err := schema.FindMessage(Files(t), name)
	require.NoError(t, err)
	return md
}

// New returns a new, empty dynamic message of the given type.
func New(t testing.TB, name string) *dynamicpb.Message {
	t.Helper()
	return dynamicpb.NewMessage(Message(t, name))
}
