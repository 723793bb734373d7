package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/maruel/subcommands"

	"github.com/jhump/protoaccess/protoaccess"
)

const cmdFieldsUsage = `fields [flags] <message>

  message: fully-qualified name of a message type in the schema.
`

var cmdFields = &subcommands.Command{
	UsageLine: cmdFieldsUsage,
	ShortDesc: "lists the fields of a message type.",
	LongDesc:  "Lists the fields of a message type with their numbers, cardinalities and types.",
	CommandRun: func() subcommands.CommandRun {
		r := &fieldsRun{}
		r.registerBaseFlags()
		return r
	},
}

type fieldsRun struct {
	commonRun
}

func (r *fieldsRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 1 {
		return r.done(a, fmt.Errorf("%w: want <message>", errUsage))
	}
	desc, err := r.loadMessageType(context.Background(), a, env, args[0])
	if err != nil {
		return r.done(a, err)
	}
	return r.done(a, printFields(a.GetOut(), desc))
}

func printFields(w io.Writer, desc *protoaccess.MessageDescriptor) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NUMBER\tNAME\tCARDINALITY\tTYPE")
	for _, fd := range desc.Fields() {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%v\t%s\n", fd.Number(), fd.Name(), fd.Cardinality(), typeName(fd))
	}
	return tw.Flush()
}

// typeName renders the declared type of fd the way it is written in a
// .proto file.
func typeName(fd *protoaccess.FieldDescriptor) string {
	if fd.Cardinality() == protoaccess.Map {
		return fmt.Sprintf("map<%v, %s>", fd.MapKey().Kind(), elemTypeName(fd))
	}
	return elemTypeName(fd)
}

func elemTypeName(fd *protoaccess.FieldDescriptor) string {
	if md := fd.MessageDescriptor(); md != nil {
		return string(md.FullName())
	}
	if ed := fd.EnumDescriptor(); ed != nil {
		return string(ed.FullName())
	}
	return fd.DeclaredType().String()
}
