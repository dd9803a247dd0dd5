package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/hmehl/folio"
	"github.com/hmehl/folio/renderer"
)

type lotsCmd struct {
	account string
	symbol  string
	open    bool
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list tax lots and their remaining shares" }
func (*lotsCmd) Usage() string {
	return `flo lots -account <name> [-symbol <ticker>] [-open]

  Lists the tax lots of an account with their remaining shares, per-share
  cost and status.

Usage Examples:
# All lots of the ira account.
$ flo lots -account ira

# Only AAPL lots still holding shares.
$ flo lots -account ira -symbol aapl -open
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account to list lots for.")
	f.StringVar(&c.symbol, "symbol", "", "Restrict to one symbol.")
	f.BoolVar(&c.open, "open", false, "Only lots with remaining shares.")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}

	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	symbol := folio.NormalizeSymbol(c.symbol)
	var lots []*folio.Lot
	for _, l := range store.LotBook().AllLots() {
		if l.Account != c.account {
			continue
		}
		if symbol != "" && l.Symbol != symbol {
			continue
		}
		if c.open && l.Status == folio.LotClosed {
			continue
		}
		lots = append(lots, l)
	}

	printMarkdown(renderer.RenderLots(c.account, lots))
	return subcommands.ExitSuccess
}
