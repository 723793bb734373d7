package main

import (
	"context"
	"fmt"

	"github.com/maruel/subcommands"

	"github.com/jhump/protoaccess/protovalue"
)

const cmdGetUsage = `get [flags] <message> <input> <path>

  message: fully-qualified name of the input's message type.
  input: file holding the message, or "-" for stdin.
  path: field path, such as "sub_m.n", "subs[0]" or "sub_map[\"k\"]".
`

var cmdGet = &subcommands.Command{
	UsageLine: cmdGetUsage,
	ShortDesc: "prints the value at a field path.",
	LongDesc: `Prints the value at a field path. Absent singular fields print their
default value. Repeated and map fields without a subscript print all of
their elements.`,
	CommandRun: func() subcommands.CommandRun {
		r := &getRun{}
		r.registerBaseFlags()
		return r
	},
}

type getRun struct {
	commonRun
}

func (r *getRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 3 {
		return r.done(a, fmt.Errorf("%w: want <message> <input> <path>", errUsage))
	}
	path, err := parsePath(args[2])
	if err != nil {
		return r.done(a, fmt.Errorf("%w: %v", errUsage, err))
	}
	desc, err := r.loadMessageType(context.Background(), a, env, args[0])
	if err != nil {
		return r.done(a, err)
	}
	m, err := r.readMessage(args[1], desc)
	if err != nil {
		return r.done(a, err)
	}
	res, err := resolve(m, path)
	if err != nil {
		return r.done(a, err)
	}
	if v, ok := res.(protovalue.Value); ok && v.Kind() == protovalue.MessageKind && r.cfg.Format != formatBinary {
		return r.done(a, r.writeMessage(a.GetOut(), v.Message()))
	}
	_, err = fmt.Fprintln(a.GetOut(), res)
	return r.done(a, err)
}
