// Package cmd implements the CLI application to reconcile portfolio records.
package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/hmehl/folio"
)

// Commands lists every subcommand the binary registers.
// A main package iterates it to Register, then Execute the user-selected one.
var Commands = []subcommands.Command{
	subcommands.HelpCommand(),
	subcommands.FlagsCommand(),
	subcommands.CommandsCommand(),
	&importCmd{},
	&snapshotsCmd{},
	&compareCmd{},
	&reconcileCmd{},
	&lotsCmd{},
	&sellCmd{},
	&splitCmd{},
	&mapCmd{},
	&txCmd{},
	&fmtCmd{},
	&topicCmd{},
	&assistCmd{},
}

// as a CLI application it has a very short lived lifecycle, so it is ok to use global variables.

var storeFile = flag.String("store-file", "folio.jsonl", "Path to the store file (JSONL format)")
var currency = flag.String("currency", "USD", "Reporting currency for amounts whose source carries none")

func appConfig() folio.Config {
	cfg := folio.DefaultConfig()
	cfg.Currency = *currency
	return cfg
}

// DecodeStore loads the store from the app store file. A missing file
// yields an empty store, so every command works on a fresh directory.
func DecodeStore() (*folio.Store, error) {
	return folio.LoadStore(*storeFile, appConfig())
}

// EncodeStore writes the store back to the app store file.
func EncodeStore(s *folio.Store) error {
	return folio.SaveStore(*storeFile, s)
}
