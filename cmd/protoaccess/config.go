package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// format is the encoding used for messages read and written by the command.
type format string

const (
	formatBinary format = "binary"
	formatJSON   format = "json"
	formatText   format = "text"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(strings.TrimSpace(s))); f {
	case formatBinary, formatJSON, formatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want binary, json or text)", s)
	}
}

// config holds the settings shared by all subcommands.
type config struct {
	ImportPaths []string
	ProtoFiles  []string
	Protosets   []string
	Format      format
	LogLevel    zerolog.Level
}

func defaultConfig() config {
	return config{
		Format:   formatBinary,
		LogLevel: zerolog.WarnLevel,
	}
}

type fileConfig struct {
	ImportPaths []string `toml:"import_paths"`
	ProtoFiles  []string `toml:"proto_files"`
	Protosets   []string `toml:"protosets"`
	Format      string   `toml:"format"`
	LogLevel    string   `toml:"log_level"`
}

// loadConfig applies the settings in the TOML file at path to cfg. Import
// paths and protosets are resolved relative to the file's directory.
func loadConfig(path string, cfg *config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	dir := filepath.Dir(path)

	if meta.IsDefined("import_paths") {
		cfg.ImportPaths = resolvePaths(dir, raw.ImportPaths)
	}

	if meta.IsDefined("proto_files") {
		cfg.ProtoFiles = normalize(raw.ProtoFiles)
	}

	if meta.IsDefined("protosets") {
		cfg.Protosets = resolvePaths(dir, raw.Protosets)
	}

	if meta.IsDefined("format") {
		f, err := parseFormat(raw.Format)
		if err != nil {
			return fmt.Errorf("parse format: %w", err)
		}
		cfg.Format = f
	}

	if meta.IsDefined("log_level") {
		lvl, err := zerolog.ParseLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}

	return nil
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		v := strings.TrimSpace(s)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func resolvePaths(dir string, in []string) []string {
	out := normalize(in)
	for i, p := range out {
		if !filepath.IsAbs(p) {
			out[i] = filepath.Join(dir, p)
		}
	}
	return out
}
