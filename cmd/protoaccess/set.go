package main

import (
	"context"
	"fmt"

	"github.com/maruel/subcommands"
)

const cmdSetUsage = `set [flags] <message> <input> <path>=<value>...

  message: fully-qualified name of the input's message type.
  input: file holding the message, or "-" for stdin.
  path: field path. Use "field[]" to append to a repeated field.
  value: the new value. Enums may be given by name or number and messages
    in text format.
`

var cmdSet = &subcommands.Command{
	UsageLine: cmdSetUsage,
	ShortDesc: "sets values at field paths and writes the result.",
	LongDesc: `Sets values at field paths and writes the updated message. Missing
intermediate messages are created. Assignments are applied in order and
none are written unless all succeed.`,
	CommandRun: func() subcommands.CommandRun {
		r := &setRun{}
		r.registerBaseFlags()
		r.Flags.StringVar(&r.output, "o", "", "Output file. Defaults to stdout.")
		return r
	},
}

type setRun struct {
	commonRun
	output string
}

type assignment struct {
	path  []pathSegment
	value string
}

func parseAssignments(args []string) ([]assignment, error) {
	assigns := make([]assignment, 0, len(args))
	for _, arg := range args {
		path, value, ok := cutAssignment(arg)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not of the form <path>=<value>", errUsage, arg)
		}
		segs, err := parsePath(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		assigns = append(assigns, assignment{path: segs, value: value})
	}
	return assigns, nil
}

func (r *setRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) < 3 {
		return r.done(a, fmt.Errorf("%w: want <message> <input> <path>=<value>...", errUsage))
	}
	assigns, err := parseAssignments(args[2:])
	if err != nil {
		return r.done(a, err)
	}
	desc, err := r.loadMessageType(context.Background(), a, env, args[0])
	if err != nil {
		return r.done(a, err)
	}
	m, err := r.readMessage(args[1], desc)
	if err != nil {
		return r.done(a, err)
	}
	for i, as := range assigns {
		if err := assign(m, as.path, as.value); err != nil {
			return r.done(a, fmt.Errorf("%s: %w", args[2+i], err))
		}
		r.log.Debug().Str("assignment", args[2+i]).Msg("applied")
	}
	return r.done(a, r.writeOutput(a.GetOut(), r.output, m))
}
