package main

import (
	"context"
	"fmt"

	"github.com/maruel/subcommands"

	"github.com/jhump/protoaccess/protosynth"
)

const cmdSampleUsage = `sample [flags] <message>

  message: fully-qualified name of a message type in the schema.
`

var cmdSample = &subcommands.Command{
	UsageLine: cmdSampleUsage,
	ShortDesc: "writes a message with every field populated.",
	LongDesc: `Writes a message of the given type with a synthesized value in every
field. Useful as a starting point for "set".`,
	CommandRun: func() subcommands.CommandRun {
		r := &sampleRun{}
		r.registerBaseFlags()
		r.Flags.StringVar(&r.output, "o", "", "Output file. Defaults to stdout.")
		return r
	},
}

type sampleRun struct {
	commonRun
	output string
}

func (r *sampleRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 1 {
		return r.done(a, fmt.Errorf("%w: want <message>", errUsage))
	}
	desc, err := r.loadMessageType(context.Background(), a, env, args[0])
	if err != nil {
		return r.done(a, err)
	}
	m := desc.NewInstance()
	protosynth.Populate(m)
	return r.done(a, r.writeOutput(a.GetOut(), r.output, m))
}
