// Command protoaccess inspects and edits protobuf messages using only their
// schemas, loaded from .proto sources or compiled protosets.
package main

import (
	"os"

	"github.com/maruel/subcommands"
)

var application = &subcommands.DefaultApplication{
	Name:  "protoaccess",
	Title: "Reads, edits and compares protobuf messages of any type known to a schema.",
	Commands: []*subcommands.Command{
		subcommands.CmdHelp,
		cmdDiff,
		cmdDump,
		cmdFields,
		cmdGet,
		cmdSample,
		cmdSet,
	},
	EnvVars: map[string]subcommands.EnvVarDefinition{
		envLogLevel: {
			ShortDesc: "Log level used when -log-level is not given.",
		},
	},
}

func main() {
	os.Exit(subcommands.Run(application, nil))
}
