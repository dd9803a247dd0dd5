package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/hmehl/folio"
)

type splitCmd struct {
	account string
	symbol  string
	ratio   string
	date    string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "apply a stock split to a security's lots" }
func (*splitCmd) Usage() string {
	return `flo split -account <name> -symbol <ticker> -ratio <n:m> [-d <date>]

  Adjusts every lot of the security for a stock split. Share counts are
  multiplied by n/m and per-share prices divided by it; cost basis and
  realized gains are unchanged. Either every lot is adjusted or none is.

Usage Examples:
# A 2-for-1 split doubles the shares.
$ flo split -account ira -symbol aapl -ratio 2:1

# A 1-for-10 reverse split.
$ flo split -account ira -symbol aapl -ratio 1:10
`
}

func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account holding the security.")
	f.StringVar(&c.symbol, "symbol", "", "Symbol being split.")
	f.StringVar(&c.ratio, "ratio", "", "Split ratio as n:m, new shares per old.")
	f.StringVar(&c.date, "d", "", "Split date. Defaults to today.")
}

func (c *splitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.symbol == "" || c.ratio == "" {
		fmt.Fprintln(os.Stderr, "Error: -account, -symbol and -ratio are required.")
		return subcommands.ExitUsageError
	}

	numerator, denominator, err := parseRatio(c.ratio)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	on := folio.Today()
	if c.date != "" {
		if on, err = folio.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	symbol := folio.NormalizeSymbol(c.symbol)
	id := folio.NewSecurityID(c.account, symbol)
	if err := store.LotBook().ApplySplit(id, numerator, denominator, on); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := EncodeStore(store); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Applied %d:%d split to %s on %s, %s shares remaining\n",
		numerator, denominator, id, on, store.LotBook().TotalRemaining(id))
	return subcommands.ExitSuccess
}

func parseRatio(s string) (numerator, denominator int64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid ratio %q, expected n:m", s)
	}
	if numerator, err = strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	if denominator, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	return numerator, denominator, nil
}
