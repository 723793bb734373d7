package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhump/protoaccess/internal/testprotos"
	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

func TestParsePath(t *testing.T) {
	testCases := []struct {
		path     string
		expected []pathSegment
	}{
		{"n", []pathSegment{{field: "n"}}},
		{"sub_m.n", []pathSegment{{field: "sub_m"}, {field: "n"}}},
		{"subs[2].label", []pathSegment{{field: "subs", subscript: "2", indexed: true}, {field: "label"}}},
		{"subs[]", []pathSegment{{field: "subs", indexed: true}}},
		{`sub_map["a.b[c]"].n`, []pathSegment{{field: "sub_map", subscript: `"a.b[c]"`, indexed: true}, {field: "n"}}},
		{"counts[ k ]", []pathSegment{{field: "counts", subscript: "k", indexed: true}}},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			segs, err := parsePath(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, segs)
		})
	}

	for _, bad := range []string{"", ".n", "sub_m.", "subs[1", `sub_map["a]`, "subs[1]x", "a..b"} {
		_, err := parsePath(bad)
		assert.ErrorIs(t, err, errBadPath, "%q", bad)
	}
}

func TestParseAssignments(t *testing.T) {
	assigns, err := parseAssignments([]string{`sub_map["a=b"].n=1`, "sub_m.label=x=y", "sub_map[k=v]=n: 2"})
	require.NoError(t, err)
	require.Len(t, assigns, 3)
	assert.Equal(t, []pathSegment{{field: "sub_map", subscript: `"a=b"`, indexed: true}, {field: "n"}}, assigns[0].path)
	assert.Equal(t, "1", assigns[0].value)
	assert.Equal(t, []pathSegment{{field: "sub_m"}, {field: "label"}}, assigns[1].path)
	assert.Equal(t, "x=y", assigns[1].value)
	assert.Equal(t, []pathSegment{{field: "sub_map", subscript: "k=v", indexed: true}}, assigns[2].path)
	assert.Equal(t, "n: 2", assigns[2].value)

	m := testprotos.New(t, "test_reflect.M")
	require.NoError(t, assign(m, assigns[0].path, assigns[0].value))
	res, err := resolve(m, assigns[0].path)
	require.NoError(t, err)
	assert.Equal(t, "1", res.String())

	for _, bad := range []string{"sub_m.n", `sub_map["a=b"]`, "subs[=1", "=1"} {
		_, err := parseAssignments([]string{bad})
		assert.ErrorIs(t, err, errUsage, "%q", bad)
	}
}

func TestAssignAndResolve(t *testing.T) {
	m := testprotos.New(t, "test_reflect.M")
	for path, value := range map[string]string{
		"sub_m.n":        "5",
		"sub_m.label":    `"quoted \"label\""`,
		`sub_map["x"].n`: "7",
		"sub_map[y]":     "{n: 8 label: 'eight'}",
		"subs[]":         "n: 1",
	} {
		segs, err := parsePath(path)
		require.NoError(t, err)
		require.NoError(t, assign(m, segs, value), path)
	}
	segs, err := parsePath("subs[0].label")
	require.NoError(t, err)
	require.NoError(t, assign(m, segs, "first"))

	get := func(path string) string {
		segs, err := parsePath(path)
		require.NoError(t, err)
		res, err := resolve(m, segs)
		require.NoError(t, err, path)
		return res.String()
	}
	assert.Equal(t, "5", get("sub_m.n"))
	assert.Equal(t, `"quoted \"label\""`, get("sub_m.label"))
	assert.Equal(t, "7", get(`sub_map["x"].n`))
	assert.Equal(t, "8", get("sub_map[y].n"))
	assert.Equal(t, `"eight"`, get(`sub_map["y"].label`))
	assert.Equal(t, `"first"`, get("subs[0].label"))
	assert.Equal(t, "1", get("subs[0].n"))

	res, err := resolve(m, []pathSegment{{field: "subs"}})
	require.NoError(t, err)
	assert.IsType(t, protoaccess.RepeatedView{}, res)
	res, err = resolve(m, []pathSegment{{field: "sub_map"}})
	require.NoError(t, err)
	assert.IsType(t, protoaccess.MapView{}, res)
}

func TestResolve_Defaults(t *testing.T) {
	m := testprotos.New(t, "test_reflect.WithDefaults")
	for path, expected := range map[string]string{"i": "7", "s": `"hi"`, "e": "TWO", "b": "true"} {
		segs, err := parsePath(path)
		require.NoError(t, err)
		res, err := resolve(m, segs)
		require.NoError(t, err)
		v, ok := res.(protovalue.Value)
		require.True(t, ok)
		assert.Equal(t, expected, v.String(), path)
	}
}

func TestAssign_Scalars(t *testing.T) {
	m := testprotos.New(t, "test_reflect3.Scalars")
	desc := protoaccess.DescriptorOf(m)
	for path, value := range map[string]string{
		"i":         "-3",
		"color":     "GREEN",
		"explicit":  "0x10",
		"flag":      "true",
		"d":         "1.5",
		"b":         "raw",
		"packed[]":  "4",
		"names[]":   "bob",
		"counts[k]": "9",
	} {
		segs, err := parsePath(path)
		require.NoError(t, err)
		require.NoError(t, assign(m, segs, value), path)
	}
	assert.Equal(t, int32(-3), desc.FieldByName("i").GetInt32(m))
	assert.Equal(t, int32(2), int32(desc.FieldByName("color").GetEnum(m)))
	assert.Equal(t, int64(16), desc.FieldByName("explicit").GetInt64(m))
	assert.True(t, desc.FieldByName("flag").GetBool(m))
	assert.Equal(t, 1.5, desc.FieldByName("d").GetFloat64(m))
	assert.Equal(t, []byte("raw"), desc.FieldByName("b").GetBytes(m))
	assert.True(t, desc.FieldByName("packed").GetRepeated(m).Equal(protovalue.Values{protovalue.OfInt32(4)}))
	v, ok := desc.FieldByName("counts").GetMap(m).Get(protovalue.OfString("k"))
	require.True(t, ok)
	assert.Equal(t, int64(9), v.Int64())

	// enums by number, including numbers not declared by the open enum
	segs, err := parsePath("color")
	require.NoError(t, err)
	require.NoError(t, assign(m, segs, "5"))
	assert.Equal(t, int32(5), int32(desc.FieldByName("color").GetEnum(m)))

	// replace by index
	segs, err = parsePath("packed[0]")
	require.NoError(t, err)
	require.NoError(t, assign(m, segs, "6"))
	assert.Equal(t, int32(6), desc.FieldByName("packed").GetRepeated(m).Get(0).Int32())
}

func TestAssign_Errors(t *testing.T) {
	m := testprotos.New(t, "test_reflect.M")
	testCases := []struct {
		path, value string
		target      error
	}{
		{"nope", "1", protoaccess.ErrUnknownField},
		{"sub_m.nope", "1", protoaccess.ErrUnknownField},
		{"sub_m.n", "abc", protoaccess.ErrTypeMismatch},
		{"sub_m.n", "99999999999", protoaccess.ErrTypeMismatch},
		{"sub_m", "n: 'x'", protoaccess.ErrTypeMismatch},
		{"subs[3].n", "1", protoaccess.ErrIndexOutOfRange},
		{"subs[0]", "n: 1", protoaccess.ErrIndexOutOfRange},
		{"subs", "n: 1", errBadPath},
		{"subs.n", "1", errBadPath},
		{"sub_map", "n: 1", errBadPath},
		{"sub_m[0]", "n: 1", errBadPath},
		{"sub_m.n.x", "1", errBadPath},
		{"subs[x].n", "1", errBadPath},
	}
	for _, tc := range testCases {
		segs, err := parsePath(tc.path)
		require.NoError(t, err)
		assert.ErrorIs(t, assign(m, segs, tc.value), tc.target, "%s=%s", tc.path, tc.value)
	}
}

func TestResolve_Errors(t *testing.T) {
	m := testprotos.New(t, "test_reflect.M")
	for _, path := range []string{"nope", "subs[0]", "sub_map[a]", "sub_m.n.x", "subs.n", "sub_m[1]"} {
		segs, err := parsePath(path)
		require.NoError(t, err)
		_, err = resolve(m, segs)
		assert.Error(t, err, path)
	}
}
