package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "protoaccess.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
import_paths = ["protos", "/abs/protos", " "]
proto_files = ["a.proto", " b.proto "]
protosets = ["out/all.protoset"]
format = "JSON"
log_level = "debug"
`)
	dir := filepath.Dir(path)
	cfg := defaultConfig()
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, []string{filepath.Join(dir, "protos"), "/abs/protos"}, cfg.ImportPaths)
	assert.Equal(t, []string{"a.proto", "b.proto"}, cfg.ProtoFiles)
	assert.Equal(t, []string{filepath.Join(dir, "out/all.protoset")}, cfg.Protosets)
	assert.Equal(t, formatJSON, cfg.Format)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoadConfig_KeepsUndefined(t *testing.T) {
	path := writeConfig(t, `format = "text"`)
	cfg := defaultConfig()
	cfg.ProtoFiles = []string{"keep.proto"}
	require.NoError(t, loadConfig(path, &cfg))
	assert.Equal(t, formatText, cfg.Format)
	assert.Equal(t, zerolog.WarnLevel, cfg.LogLevel)
	assert.Equal(t, []string{"keep.proto"}, cfg.ProtoFiles)
}

func TestLoadConfig_Errors(t *testing.T) {
	testCases := map[string]string{
		"bad format":  `format = "yaml"`,
		"bad level":   `log_level = "loud"`,
		"unknown key": `colour = "red"`,
		"bad syntax":  `format = `,
	}
	for name, contents := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			assert.Error(t, loadConfig(writeConfig(t, contents), &cfg))
		})
	}

	cfg := defaultConfig()
	assert.Error(t, loadConfig(filepath.Join(t.TempDir(), "missing.toml"), &cfg))
}

func TestParseFormat(t *testing.T) {
	for in, expected := range map[string]format{"binary": formatBinary, " Json ": formatJSON, "TEXT": formatText} {
		f, err := parseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, expected, f)
	}
	_, err := parseFormat("xml")
	assert.Error(t, err)
}
