package main

import (
	"context"
	"fmt"
	"io"

	"github.com/maruel/subcommands"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protomessage"
	"github.com/jhump/protoaccess/protovalue"
)

const cmdDumpUsage = `dump [flags] <message> <input>

  message: fully-qualified name of the input's message type.
  input: file holding the message, or "-" for stdin.
`

var cmdDump = &subcommands.Command{
	UsageLine: cmdDumpUsage,
	ShortDesc: "prints every present value with its field path.",
	LongDesc: `Prints every present value in the message, one per line, with its
field path. Nested messages are expanded instead of printed whole.`,
	CommandRun: func() subcommands.CommandRun {
		r := &dumpRun{}
		r.registerBaseFlags()
		return r
	},
}

type dumpRun struct {
	commonRun
}

func (r *dumpRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 2 {
		return r.done(a, fmt.Errorf("%w: want <message> <input>", errUsage))
	}
	desc, err := r.loadMessageType(context.Background(), a, env, args[0])
	if err != nil {
		return r.done(a, err)
	}
	m, err := r.readMessage(args[1], desc)
	if err != nil {
		return r.done(a, err)
	}
	return r.done(a, dump(a.GetOut(), m))
}

func dump(w io.Writer, m protoaccess.Message) error {
	root := protoaccess.DescriptorOf(m)
	var err error
	protomessage.WalkFields(m, func(path []any, _ *protoaccess.FieldDescriptor, val protovalue.Value) bool {
		if val.Kind() == protovalue.MessageKind {
			return true
		}
		_, err = fmt.Fprintf(w, "%s: %v\n", protomessage.FormatPath(root, path), val)
		return err == nil
	})
	return err
}
