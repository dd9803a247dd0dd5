package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and rewrites the store file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `flo fmt

  Validates and rewrites the store file. Records are decoded, sorted and
  written back in a canonical JSONL form, so two stores with the same
  content produce byte-identical files and diff cleanly under version
  control.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load store: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeStore(store); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not write store: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Formatted %s\n", *storeFile)
	return subcommands.ExitSuccess
}
