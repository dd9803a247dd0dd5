// Command flo tracks and reconciles personal investment portfolio records.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/hmehl/folio/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	sub := make(map[string]*complete.Command)
	for _, c := range cmd.Commands {
		commander.Register(c, "")
		sub[c.Name()] = &complete.Command{Args: predict.Files("*")}
	}
	// No-op unless the shell invokes it for completion.
	complete.Complete("flo", &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"store-file": predict.Files("*.jsonl"),
			"currency":   predict.Set{"USD", "EUR", "GBP"},
		},
	})

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
