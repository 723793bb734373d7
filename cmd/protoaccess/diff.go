package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/maruel/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protodiff"
)

// errDifferent is returned by diff when the messages are not equal, so
// that the command exits non-zero.
var errDifferent = errors.New("messages differ")

const cmdDiffUsage = `diff [flags] <message> <a> <b>

  message: fully-qualified name of the inputs' message type.
  a, b: files holding the messages to compare. At most one may be "-".
`

var cmdDiff = &subcommands.Command{
	UsageLine: cmdDiffUsage,
	ShortDesc: "prints the differences between two messages.",
	LongDesc: `Prints the differences between two messages of the same type, one per
line. Lines start with "+" for values only in b, "-" for values only in a
and "~" for values that changed. Exits with status 1 if they differ.`,
	CommandRun: func() subcommands.CommandRun {
		r := &diffRun{}
		r.registerBaseFlags()
		return r
	},
}

type diffRun struct {
	commonRun
}

func (r *diffRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 3 {
		return r.done(a, fmt.Errorf("%w: want <message> <a> <b>", errUsage))
	}
	if args[1] == "-" && args[2] == "-" {
		return r.done(a, fmt.Errorf("%w: only one input may be stdin", errUsage))
	}
	ctx := context.Background()
	desc, err := r.loadMessageType(ctx, a, env, args[0])
	if err != nil {
		return r.done(a, err)
	}
	var left, right protoaccess.Message
	grp, _ := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		left, err = r.readMessage(args[1], desc)
		return err
	})
	grp.Go(func() error {
		var err error
		right, err = r.readMessage(args[2], desc)
		return err
	})
	if err := grp.Wait(); err != nil {
		return r.done(a, err)
	}
	return r.done(a, printDiff(a.GetOut(), left, right))
}

func printDiff(w io.Writer, left, right protoaccess.Message) error {
	diffs := protodiff.Diff(left, right)
	if len(diffs) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, protodiff.Format(diffs)); err != nil {
		return err
	}
	return fmt.Errorf("%w: %d difference(s)", errDifferent, len(diffs))
}
