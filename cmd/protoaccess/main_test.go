package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maruel/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/jhump/protoaccess/internal/testprotos"
	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

type testApp struct {
	*subcommands.DefaultApplication
	out, err bytes.Buffer
}

func (a *testApp) GetOut() io.Writer { return &a.out }
func (a *testApp) GetErr() io.Writer { return &a.err }

// run runs the command line and returns its exit code with what it wrote
// to stdout and stderr.
func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	app := &testApp{DefaultApplication: application}
	code := subcommands.Run(app, args)
	return code, app.out.String(), app.err.String()
}

// writeSources writes the test schemas to a new directory and returns it.
func writeSources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range testprotos.Sources {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}

func writeProtoset(t *testing.T) string {
	t.Helper()
	var fds descriptorpb.FileDescriptorSet
	testprotos.Files(t).RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		fds.File = append(fds.File, protodesc.ToFileDescriptorProto(fd))
		return true
	})
	data, err := proto.Marshal(&fds)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.protoset")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFields(t *testing.T) {
	dir := writeSources(t)
	code, out, errOut := run(t, "fields", "-I", dir, "-proto", "test_reflect.proto", "test_reflect.M")
	require.Equal(t, 0, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"NUMBER", "NAME", "CARDINALITY", "TYPE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "sub_m", "singular", "test_reflect.SubM"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "subs", "repeated", "test_reflect.SubM"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"3", "sub_map", "map", "map<string,", "test_reflect.SubM>"}, strings.Fields(lines[3]))
}

func TestFields_Protoset(t *testing.T) {
	code, out, errOut := run(t, "fields", "-protoset", writeProtoset(t), "test_reflect3.Scalars")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "test_reflect3.Color")
	assert.Contains(t, out, "map<string, int64>")
}

func TestSampleSetGet(t *testing.T) {
	dir := writeSources(t)
	schema := []string{"-I", dir, "-proto", "test_reflect3.proto"}
	work := t.TempDir()
	sample := filepath.Join(work, "sample.bin")
	edited := filepath.Join(work, "edited.bin")

	code, _, errOut := run(t, append(append([]string{"sample"}, schema...), "-o", sample, "test_reflect3.Scalars")...)
	require.Equal(t, 0, code, errOut)

	code, _, errOut = run(t, append(append([]string{"set"}, schema...),
		"-o", edited, "test_reflect3.Scalars", sample,
		"i=42", "color=RED", "names[]=extra", "counts[z]=3", "sub.label=nested")...)
	require.Equal(t, 0, code, errOut)

	data, err := os.ReadFile(edited)
	require.NoError(t, err)
	m := testprotos.New(t, "test_reflect3.Scalars")
	require.NoError(t, proto.Unmarshal(data, m))
	desc := protoaccess.DescriptorOf(m)
	assert.Equal(t, int32(42), desc.FieldByName("i").GetInt32(m))
	assert.Equal(t, 2, desc.FieldByName("names").LenField(m))
	v, ok := desc.FieldByName("counts").GetMap(m).Get(protovalue.OfString("z"))
	require.True(t, ok)
	assert.Equal(t, int64(3), v.Int64())

	for path, expected := range map[string]string{
		"i":         "42",
		"color":     "RED",
		"names[1]":  `"extra"`,
		"sub.label": `"nested"`,
		"counts[z]": "3",
	} {
		code, out, errOut := run(t, append(append([]string{"get"}, schema...), "test_reflect3.Scalars", edited, path)...)
		require.Equal(t, 0, code, errOut)
		assert.Equal(t, expected+"\n", out, path)
	}

	// failed assignments write nothing
	failed := filepath.Join(work, "failed.bin")
	code, _, errOut = run(t, append(append([]string{"set"}, schema...),
		"-o", failed, "test_reflect3.Scalars", sample, "i=1", "nope=2")...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown field")
	assert.NoFileExists(t, failed)
}

func TestSample_Text(t *testing.T) {
	dir := writeSources(t)
	code, out, errOut := run(t, "sample", "-I", dir, "-proto", "test_reflect.proto", "-format", "text", "test_reflect.WithDefaults")
	require.Equal(t, 0, code, errOut)

	m := testprotos.New(t, "test_reflect.WithDefaults")
	require.NoError(t, prototext.Unmarshal([]byte(out), m))
	for _, fd := range protoaccess.DescriptorOf(m).Fields() {
		assert.True(t, fd.HasField(m), fd.Name())
	}
}

func TestDump(t *testing.T) {
	m := testprotos.New(t, "test_reflect.M")
	desc := protoaccess.DescriptorOf(m)
	n := desc.FieldByName("sub_m").MessageDescriptor().FieldByName("n")
	n.SetSingularField(desc.FieldByName("sub_m").MutMessage(m), protovalue.OfInt32(1))
	n.SetSingularField(desc.FieldByName("subs").MutRepeated(m).PushMessage(), protovalue.OfInt32(2))
	n.SetSingularField(desc.FieldByName("sub_map").MutMap(m).MutMessage(protovalue.OfString("k")), protovalue.OfInt32(3))
	input := filepath.Join(t.TempDir(), "m.json")
	data, err := protojson.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(input, data, 0o644))

	code, out, errOut := run(t, "dump", "-I", writeSources(t), "-proto", "test_reflect.proto", "-format", "json", "test_reflect.M", input)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "sub_m.n: 1\nsubs[0].n: 2\nsub_map[\"k\"].n: 3\n", out)
}

func TestDiff(t *testing.T) {
	dir := writeSources(t)
	work := t.TempDir()
	write := func(name, text string) string {
		path := filepath.Join(work, name)
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
		return path
	}
	a := write("a.txt", `sub_m: { n: 1 } subs: { n: 2 }`)
	b := write("b.txt", `sub_m: { n: 5 } sub_map: { key: "x" value: { } }`)
	same := write("same.txt", `sub_m { n: 1 } subs { n: 2 }`)
	schema := []string{"-I", dir, "-proto", "test_reflect.proto", "-format", "text"}

	code, out, errOut := run(t, append(append([]string{"diff"}, schema...), "test_reflect.M", a, b)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "messages differ")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "~ sub_m.n: 1 -> 5", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "- subs[0]: {"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], `+ sub_map["x"]: {`), lines[2])

	code, out, errOut = run(t, append(append([]string{"diff"}, schema...), "test_reflect.M", a, same)...)
	assert.Equal(t, 0, code, errOut)
	assert.Empty(t, out)
}

func TestConfigFile(t *testing.T) {
	dir := writeSources(t)
	cfgPath := filepath.Join(dir, "protoaccess.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
import_paths = ["."]
proto_files = ["test_reflect.proto"]
format = "text"
`), 0o644))

	code, out, errOut := run(t, "sample", "-config", cfgPath, "test_reflect.SubM")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "label:")

	// flags override the file
	code, out, errOut = run(t, "sample", "-config", cfgPath, "-format", "json", "test_reflect.SubM")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"label":`)
}

func TestLogging(t *testing.T) {
	dir := writeSources(t)
	code, _, errOut := run(t, "fields", "-I", dir, "-proto", "test_reflect.proto", "-log-level", "debug", "test_reflect.SubM")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "compiled sources")
	assert.Contains(t, errOut, "resolved message type")
	assert.Contains(t, errOut, "app=protoaccess")

	t.Setenv(envLogLevel, "info")
	code, _, errOut = run(t, "fields", "-I", dir, "-proto", "test_reflect.proto", "test_reflect.SubM")
	require.Equal(t, 0, code, errOut)
	assert.NotContains(t, errOut, "compiled sources")
	assert.Contains(t, errOut, "resolved message type")

	// the flag wins over the environment
	code, _, errOut = run(t, "fields", "-I", dir, "-proto", "test_reflect.proto", "-log-level", "error", "test_reflect.SubM")
	require.Equal(t, 0, code, errOut)
	assert.Empty(t, errOut)
}

func TestErrors(t *testing.T) {
	dir := writeSources(t)
	schema := []string{"-I", dir, "-proto", "test_reflect.proto"}
	testCases := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no schema", []string{"fields", "test_reflect.M"}, 2, "no schema"},
		{"missing args", append([]string{"get"}, schema...), 2, "want <message>"},
		{"bad format", append(append([]string{"fields"}, schema...), "-format", "xml", "test_reflect.M"), 2, "unknown format"},
		{"bad path", append(append([]string{"get"}, schema...), "test_reflect.M", "-", "subs["), 2, "invalid field path"},
		{"unknown message", append(append([]string{"fields"}, schema...), "test_reflect.Nope"), 1, "test_reflect.Nope"},
		{"missing input", append(append([]string{"dump"}, schema...), "test_reflect.M", filepath.Join(dir, "nope.bin")), 1, "nope.bin"},
		{"two stdins", append(append([]string{"diff"}, schema...), "test_reflect.M", "-", "-"), 2, "stdin"},
		{"bad import", []string{"fields", "-I", dir, "-proto", "missing.proto", "test_reflect.M"}, 1, "missing.proto"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, errOut := run(t, tc.args...)
			assert.Equal(t, tc.code, code)
			assert.Contains(t, errOut, tc.msg)
		})
	}
}

func TestGet_Stdin(t *testing.T) {
	m := testprotos.New(t, "test_reflect.SubM")
	protoaccess.DescriptorOf(m).FieldByName("label").SetSingularField(m, protovalue.OfString("piped"))
	data, err := proto.Marshal(m)
	require.NoError(t, err)

	saved := stdin
	stdin = bytes.NewReader(data)
	t.Cleanup(func() { stdin = saved })

	code, out, errOut := run(t, "get", "-I", writeSources(t), "-proto", "test_reflect.proto", "test_reflect.SubM", "-", "label")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "\"piped\"\n", out)
}

const anySource = `syntax = "proto3";
package p;
import "google/protobuf/any.proto";
message Outer {
  google.protobuf.Any a = 1;
}
message Inner {
  int32 n = 1;
}
`

func TestGet_AnyJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.proto"), []byte(anySource), 0o644))
	input := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"a": {"@type": "type.googleapis.com/p.Inner", "n": 5}}`), 0o644))
	schema := []string{"-I", dir, "-proto", "p.proto", "-format", "json"}

	code, out, errOut := run(t, append(append([]string{"get"}, schema...), "p.Outer", input, "a.type_url")...)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "\"type.googleapis.com/p.Inner\"\n", out)

	code, out, errOut = run(t, append(append([]string{"get"}, schema...), "p.Outer", input, "a")...)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"@type"`)
	assert.Contains(t, out, `"type.googleapis.com/p.Inner"`)
	assert.Contains(t, out, `"n"`)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a": {"@type": "type.googleapis.com/p.Missing"}}`), 0o644))
	code, _, errOut = run(t, append(append([]string{"dump"}, schema...), "p.Outer", bad)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "p.Missing")
}
