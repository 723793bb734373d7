package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/maruel/subcommands"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"github.com/jhump/protoaccess/internal/schema"
	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protoresolve"
)

// errUsage marks errors caused by bad command-line arguments.
var errUsage = errors.New("bad arguments")

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// commonRun holds the flags and state shared by all subcommands.
type commonRun struct {
	subcommands.CommandRunBase

	configPath  string
	importPaths stringList
	protoFiles  stringList
	protosets   stringList
	format      string
	logLevel    string

	cfg config
	log zerolog.Logger
	// types resolves google.protobuf.Any contents and extensions in JSON
	// and text input and output. It is set by loadSchemas.
	types protoresolve.TypeResolver
}

func (r *commonRun) registerBaseFlags() {
	r.log = zerolog.Nop()
	r.Flags.StringVar(&r.configPath, "config", "", "TOML file with default settings.")
	r.Flags.Var(&r.importPaths, "I", "Import path for .proto files. May be repeated.")
	r.Flags.Var(&r.protoFiles, "proto", "A .proto file to compile, relative to an import path. May be repeated.")
	r.Flags.Var(&r.protosets, "protoset", "A compiled protoset (FileDescriptorSet) file. May be repeated.")
	r.Flags.StringVar(&r.format, "format", "", "Message encoding for input and output: binary, json or text.")
	r.Flags.StringVar(&r.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
}

// envLogLevel names the environment variable that sets the log level.
const envLogLevel = "PROTOACCESS_LOG_LEVEL"

// setup computes the effective configuration and creates the logger. Flags
// take precedence over the environment, which takes precedence over the
// config file.
func (r *commonRun) setup(a subcommands.Application, env subcommands.Env) error {
	cfg := defaultConfig()
	if r.configPath != "" {
		if err := loadConfig(r.configPath, &cfg); err != nil {
			return err
		}
	}
	if len(r.importPaths) > 0 {
		cfg.ImportPaths = r.importPaths
	}
	if len(r.protoFiles) > 0 {
		cfg.ProtoFiles = r.protoFiles
	}
	if len(r.protosets) > 0 {
		cfg.Protosets = r.protosets
	}
	if r.format != "" {
		f, err := parseFormat(r.format)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		cfg.Format = f
	}
	logLevel := r.logLevel
	if v := env[envLogLevel]; logLevel == "" && v.Exists {
		logLevel = v.Value
	}
	if logLevel != "" {
		lvl, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		cfg.LogLevel = lvl
	}
	r.cfg = cfg
	r.log = newLogger(a.GetErr(), cfg.LogLevel)
	return nil
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(w),
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "protoaccess").Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// done reports err, if any, and returns the process exit code.
func (r *commonRun) done(a subcommands.Application, err error) int {
	if err == nil {
		return 0
	}
	r.log.Debug().Err(err).Msg("command failed")
	_, _ = fmt.Fprintf(a.GetErr(), "protoaccess: %v\n", err)
	if errors.Is(err, errUsage) {
		return 2
	}
	return 1
}

// loadSchemas compiles the configured .proto files and reads the configured
// protosets. Each source is loaded concurrently. The returned resolver
// searches the compiled sources first and then the protosets in order.
func (r *commonRun) loadSchemas(ctx context.Context) (protoresolve.Resolver, error) {
	if len(r.cfg.ProtoFiles) == 0 && len(r.cfg.Protosets) == 0 {
		return nil, fmt.Errorf("%w: no schema given; use -proto or -protoset", errUsage)
	}
	results := make([]*protoregistry.Files, len(r.cfg.Protosets)+1)
	grp, ctx := errgroup.WithContext(ctx)
	if len(r.cfg.ProtoFiles) > 0 {
		grp.Go(func() error {
			start := time.Now()
			files, err := schema.Compile(ctx, r.cfg.ImportPaths, r.cfg.ProtoFiles...)
			if err != nil {
				return err
			}
			r.log.Debug().Strs("files", r.cfg.ProtoFiles).Dur("took", time.Since(start)).Msg("compiled sources")
			results[0] = files
			return nil
		})
	}
	for i, path := range r.cfg.Protosets {
		i, path := i, path
		grp.Go(func() error {
			files, err := schema.LoadProtoset(path)
			if err != nil {
				return err
			}
			r.log.Debug().Str("protoset", path).Int("files", files.NumFiles()).Msg("loaded protoset")
			results[i+1] = files
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	var regs []protoresolve.Resolver
	for _, files := range results {
		if files == nil {
			continue
		}
		reg, err := protoresolve.FromFiles(files)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	res := protoresolve.Combine(regs...)
	r.types = res.AsTypeResolver()
	return res, nil
}

// describe finds the named message type.
func describe(res protoresolve.Resolver, name string) (*protoaccess.MessageDescriptor, error) {
	md, err := res.FindMessageByName(protoreflect.FullName(strings.TrimPrefix(name, ".")))
	if err != nil {
		if errors.Is(err, protoregistry.NotFound) {
			return nil, fmt.Errorf("message %q: %w", name, protoregistry.NotFound)
		}
		return nil, err
	}
	return protoaccess.Describe(md), nil
}

// loadMessageType sets up the command and resolves the named message type.
func (r *commonRun) loadMessageType(ctx context.Context, a subcommands.Application, env subcommands.Env, name string) (*protoaccess.MessageDescriptor, error) {
	if err := r.setup(a, env); err != nil {
		return nil, err
	}
	res, err := r.loadSchemas(ctx)
	if err != nil {
		return nil, err
	}
	desc, err := describe(res, name)
	if err != nil {
		return nil, err
	}
	r.log.Info().Str("message", string(desc.FullName())).Int("fields", len(desc.Fields())).Msg("resolved message type")
	return desc, nil
}
