package protovalue_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/jhump/protoaccess/protovalue"
)

func TestKindOf(t *testing.T) {
	testCases := map[protoreflect.Kind]protovalue.Kind{
		protoreflect.BoolKind:     protovalue.BoolKind,
		protoreflect.Int32Kind:    protovalue.Int32Kind,
		protoreflect.Sint32Kind:   protovalue.Int32Kind,
		protoreflect.Sfixed32Kind: protovalue.Int32Kind,
		protoreflect.Int64Kind:    protovalue.Int64Kind,
		protoreflect.Sint64Kind:   protovalue.Int64Kind,
		protoreflect.Sfixed64Kind: protovalue.Int64Kind,
		protoreflect.Uint32Kind:   protovalue.Uint32Kind,
		protoreflect.Fixed32Kind:  protovalue.Uint32Kind,
		protoreflect.Uint64Kind:   protovalue.Uint64Kind,
		protoreflect.Fixed64Kind:  protovalue.Uint64Kind,
		protoreflect.FloatKind:    protovalue.Float32Kind,
		protoreflect.DoubleKind:   protovalue.Float64Kind,
		protoreflect.StringKind:   protovalue.StringKind,
		protoreflect.BytesKind:    protovalue.BytesKind,
		protoreflect.EnumKind:     protovalue.EnumKind,
		protoreflect.MessageKind:  protovalue.MessageKind,
		protoreflect.GroupKind:    protovalue.MessageKind,
	}
	for k, expected := range testCases {
		assert.Equal(t, expected, protovalue.KindOf(k), "kind %v", k)
	}
	assert.Equal(t, protovalue.InvalidKind, protovalue.KindOf(0))
}

func TestExtraction(t *testing.T) {
	enumVal := descriptorpb.FieldDescriptorProto_TYPE_STRING.Descriptor().Values().ByNumber(
		protoreflect.EnumNumber(descriptorpb.FieldDescriptorProto_TYPE_STRING))
	msg := wrapperspb.String("abc")

	testCases := []struct {
		name  string
		val   protovalue.Value
		kind  protovalue.Kind
		check func(t *testing.T, v protovalue.Value)
	}{
		{"bool", protovalue.OfBool(true), protovalue.BoolKind, func(t *testing.T, v protovalue.Value) {
			assert.True(t, v.Bool())
		}},
		{"int32", protovalue.OfInt32(-13), protovalue.Int32Kind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, int32(-13), v.Int32())
		}},
		{"int64", protovalue.OfInt64(math.MinInt64), protovalue.Int64Kind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, int64(math.MinInt64), v.Int64())
		}},
		{"uint32", protovalue.OfUint32(math.MaxUint32), protovalue.Uint32Kind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, uint32(math.MaxUint32), v.Uint32())
		}},
		{"uint64", protovalue.OfUint64(math.MaxUint64), protovalue.Uint64Kind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, uint64(math.MaxUint64), v.Uint64())
		}},
		{"float32", protovalue.OfFloat32(12.5), protovalue.Float32Kind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, float32(12.5), v.Float32())
		}},
		{"float64", protovalue.OfFloat64(-11.25), protovalue.Float64Kind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, -11.25, v.Float64())
		}},
		{"string", protovalue.OfString("aa"), protovalue.StringKind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, "aa", v.Str())
		}},
		{"bytes", protovalue.OfBytes([]byte("bb")), protovalue.BytesKind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, []byte("bb"), v.Bytes())
		}},
		{"enum", protovalue.OfEnum(enumVal), protovalue.EnumKind, func(t *testing.T, v protovalue.Value) {
			assert.Equal(t, enumVal, v.Enum())
			assert.Equal(t, protoreflect.EnumNumber(9), v.EnumNumber())
			assert.Equal(t, enumVal.Parent(), v.EnumDescriptor())
		}},
		{"message", protovalue.OfMessage(msg), protovalue.MessageKind, func(t *testing.T, v protovalue.Value) {
			assert.Same(t, msg, v.Message())
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.val.IsValid())
			require.Equal(t, tc.kind, tc.val.Kind())
			tc.check(t, tc.val)
			// every other extraction fails
			if tc.kind != protovalue.BoolKind {
				_, err := tc.val.TryBool()
				require.ErrorIs(t, err, protovalue.ErrKindMismatch)
				require.Panics(t, func() { tc.val.Bool() })
			}
			if tc.kind != protovalue.StringKind {
				_, err := tc.val.TryString()
				require.ErrorIs(t, err, protovalue.ErrKindMismatch)
			}
			if tc.kind != protovalue.MessageKind {
				_, err := tc.val.TryMessage()
				require.ErrorIs(t, err, protovalue.ErrKindMismatch)
			}
			if tc.kind != protovalue.Int64Kind {
				_, err := tc.val.TryInt64()
				require.ErrorIs(t, err, protovalue.ErrKindMismatch)
			}
		})
	}

	var zero protovalue.Value
	assert.False(t, zero.IsValid())
	assert.Equal(t, protovalue.InvalidKind, zero.Kind())
	assert.Equal(t, "<invalid>", zero.String())
}

func TestOfBytesCopies(t *testing.T) {
	b := []byte("abc")
	v := protovalue.OfBytes(b)
	b[0] = 'x'
	assert.Equal(t, []byte("abc"), v.Bytes())

	c := v.Clone()
	assert.True(t, protovalue.Equal(v, c))
	c.Bytes()[0] = 'y'
	assert.Equal(t, []byte("abc"), v.Bytes())
}

func TestReflectCopiesBytes(t *testing.T) {
	v := protovalue.OfBytes([]byte("abc"))
	msg := &wrapperspb.BytesValue{}
	fd := msg.ProtoReflect().Descriptor().Fields().ByName("value")
	msg.ProtoReflect().Set(fd, v.Reflect())
	require.Equal(t, []byte("abc"), msg.GetValue())

	msg.Value[0] = 'x'
	assert.Equal(t, []byte("abc"), v.Bytes())
	v.Reflect().Bytes()[1] = 'y'
	assert.Equal(t, []byte("abc"), v.Bytes())
}

func TestEqual(t *testing.T) {
	nan32 := float32(math.NaN())
	testCases := []struct {
		name  string
		a, b  protovalue.Value
		equal bool
	}{
		{"same ints", protovalue.OfInt32(1), protovalue.OfInt32(1), true},
		{"different ints", protovalue.OfInt32(1), protovalue.OfInt32(2), false},
		{"different kinds", protovalue.OfInt32(1), protovalue.OfInt64(1), false},
		{"signed vs unsigned", protovalue.OfInt32(1), protovalue.OfUint32(1), false},
		{"nan32", protovalue.OfFloat32(nan32), protovalue.OfFloat32(nan32), true},
		{"nan64", protovalue.OfFloat64(math.NaN()), protovalue.OfFloat64(math.NaN()), true},
		{"zeros", protovalue.OfFloat64(0), protovalue.OfFloat64(math.Copysign(0, -1)), true},
		{"strings", protovalue.OfString("a"), protovalue.OfString("a"), true},
		{"string vs bytes", protovalue.OfString("a"), protovalue.OfBytes([]byte("a")), false},
		{"nil vs empty bytes", protovalue.OfBytes(nil), protovalue.OfBytes([]byte{}), true},
		{"messages", protovalue.OfMessage(wrapperspb.Int32(3)), protovalue.OfMessage(wrapperspb.Int32(3)), true},
		{"different messages", protovalue.OfMessage(wrapperspb.Int32(3)), protovalue.OfMessage(wrapperspb.Int32(4)), false},
		{"invalid", protovalue.Value{}, protovalue.Value{}, true},
		{"invalid vs valid", protovalue.Value{}, protovalue.OfBool(false), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, protovalue.Equal(tc.a, tc.b))
			assert.Equal(t, tc.equal, protovalue.Equal(tc.b, tc.a))
			assert.Equal(t, tc.equal, tc.a.Equal(tc.b))
		})
	}
}

func TestEnumEquality(t *testing.T) {
	ed := descriptorpb.FieldDescriptorProto_TYPE_STRING.Descriptor()
	other := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Descriptor()

	a := protovalue.OfEnum(ed.Values().ByNumber(9))
	b := protovalue.OfEnumNumber(ed, 9)
	c := protovalue.OfEnumNumber(other, 9)
	assert.True(t, protovalue.Equal(a, b))
	assert.False(t, protovalue.Equal(a, c))
	assert.Equal(t, "TYPE_STRING", a.String())

	unknown := protovalue.OfEnumNumber(ed, 1000)
	assert.Nil(t, unknown.Enum())
	assert.Equal(t, protoreflect.EnumNumber(1000), unknown.EnumNumber())
	assert.Equal(t, "1000", unknown.String())
}

func TestCompare(t *testing.T) {
	ordered := []protovalue.Value{
		protovalue.OfBool(false),
		protovalue.OfBool(true),
		protovalue.OfInt32(-5),
		protovalue.OfInt32(3),
		protovalue.OfInt64(-100),
		protovalue.OfUint32(7),
		protovalue.OfUint64(math.MaxUint64),
		protovalue.OfFloat32(float32(math.NaN())),
		protovalue.OfFloat32(-1),
		protovalue.OfFloat64(2),
		protovalue.OfString("a"),
		protovalue.OfString("b"),
		protovalue.OfBytes([]byte{0}),
		protovalue.OfBytes([]byte{0, 1}),
		protovalue.OfMessage(wrapperspb.Int32(1)),
		protovalue.OfMessage(wrapperspb.Int32(2)),
	}
	for i := range ordered {
		for j := range ordered {
			c := protovalue.Compare(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Negative(t, c, "compare(%v, %v)", ordered[i], ordered[j])
			case i > j:
				assert.Positive(t, c, "compare(%v, %v)", ordered[i], ordered[j])
			default:
				assert.Zero(t, c, "compare(%v, %v)", ordered[i], ordered[j])
			}
		}
	}
}

func TestCloneMessage(t *testing.T) {
	orig := wrapperspb.String("abc")
	v := protovalue.OfMessage(orig)
	c := v.Clone()
	require.True(t, protovalue.Equal(v, c))
	require.NotSame(t, orig, c.Message())
	c.Message().(*wrapperspb.StringValue).Value = "def"
	assert.Equal(t, "abc", orig.GetValue())
	assert.False(t, protovalue.Equal(v, c))
}

func TestString(t *testing.T) {
	assert.Equal(t, "true", protovalue.OfBool(true).String())
	assert.Equal(t, "-3", protovalue.OfInt64(-3).String())
	assert.Equal(t, "14", protovalue.OfUint32(14).String())
	assert.Equal(t, "12.5", protovalue.OfFloat32(12.5).String())
	assert.Equal(t, `"aa"`, protovalue.OfString("aa").String())
	assert.Equal(t, `"bb"`, protovalue.OfBytes([]byte("bb")).String())
	assert.Equal(t, "[10, 20, 30]", protovalue.Values{
		protovalue.OfInt32(10), protovalue.OfInt32(20), protovalue.OfInt32(30),
	}.String())
}

func TestListsEqual(t *testing.T) {
	a := protovalue.Values{protovalue.OfString("x"), protovalue.OfString("y")}
	b := protovalue.Values{protovalue.OfString("x"), protovalue.OfString("y")}
	c := protovalue.Values{protovalue.OfString("y"), protovalue.OfString("x")}
	assert.True(t, protovalue.ListsEqual(a, b))
	assert.True(t, a.Equal(b))
	assert.False(t, protovalue.ListsEqual(a, c))
	assert.False(t, protovalue.ListsEqual(a, a[:1]))
	assert.True(t, protovalue.ListsEqual(protovalue.Values{}, protovalue.Values(nil)))
}

func TestEntriesEqual(t *testing.T) {
	a := []protovalue.Entry{
		{Key: protovalue.OfString("b"), Value: protovalue.OfInt32(2)},
		{Key: protovalue.OfString("a"), Value: protovalue.OfInt32(1)},
	}
	b := []protovalue.Entry{
		{Key: protovalue.OfString("a"), Value: protovalue.OfInt32(1)},
		{Key: protovalue.OfString("b"), Value: protovalue.OfInt32(2)},
	}
	c := []protovalue.Entry{
		{Key: protovalue.OfString("a"), Value: protovalue.OfInt32(1)},
		{Key: protovalue.OfString("b"), Value: protovalue.OfInt32(3)},
	}
	assert.True(t, protovalue.EntriesEqual(a, b))
	assert.False(t, protovalue.EntriesEqual(a, c))
	assert.False(t, protovalue.EntriesEqual(a, b[:1]))
	// input order is left alone
	assert.Equal(t, "b", a[0].Key.Str())
	assert.Equal(t, `{"a": 1, "b": 2}`, protovalue.FormatEntries(a))
}

func TestReflectRoundTrip(t *testing.T) {
	md := (&descriptorpb.FieldDescriptorProto{}).ProtoReflect().Descriptor()
	fields := md.Fields()
	msg := &descriptorpb.FieldDescriptorProto{
		Name:           proto.String("foo"),
		Number:         proto.Int32(5),
		Type:           descriptorpb.FieldDescriptorProto_TYPE_BYTES.Enum(),
		Options:        &descriptorpb.FieldOptions{Deprecated: proto.Bool(true)},
		Proto3Optional: proto.Bool(true),
	}
	m := msg.ProtoReflect()
	for _, name := range []protoreflect.Name{"name", "number", "type", "options", "proto3_optional"} {
		fd := fields.ByName(name)
		v := protovalue.FromReflect(fd, m.Get(fd))
		require.Equal(t, protovalue.KindOf(fd.Kind()), v.Kind(), "field %s", name)
		back := v.Reflect()
		require.True(t, back.Equal(m.Get(fd)), "field %s", name)
	}
	assert.Equal(t, "TYPE_BYTES", protovalue.FromReflect(fields.ByName("type"), m.Get(fields.ByName("type"))).String())
}

func TestMapKey(t *testing.T) {
	assert.Equal(t, "abc", protovalue.OfString("abc").MapKey().String())
	assert.Equal(t, int64(-4), protovalue.OfInt32(-4).MapKey().Int())
	assert.Equal(t, true, protovalue.OfBool(true).MapKey().Bool())
	assert.Panics(t, func() { protovalue.OfFloat64(1).MapKey() })
	assert.Panics(t, func() { protovalue.OfBytes(nil).MapKey() })
}
