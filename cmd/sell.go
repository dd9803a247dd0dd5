package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/hmehl/folio"
)

type sellCmd struct {
	account  string
	symbol   string
	quantity float64
	price    float64
	date     string
	method   string
	lots     string
	memo     string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale and consume lots" }
func (*sellCmd) Usage() string {
	return `flo sell -account <name> -symbol <ticker> -quantity <n> -price <p> [-d <date>] [-method fifo|lifo|specific] [-lots <id,...>]

  Records a sale and consumes open lots in the chosen order, locking in
  the realized gain of each consumed lot. A sale larger than the open
  lots is recorded with the shortfall reported, never silently clamped.

Usage Examples:
# Sell 50 shares first-in first-out.
$ flo sell -account ira -symbol aapl -quantity 50 -price 180.50

# Sell against two chosen lots.
$ flo sell -account ira -symbol aapl -quantity 50 -price 180.50 -method specific -lots ira/AAPL#1,ira/AAPL#3
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account the sale belongs to.")
	f.StringVar(&c.symbol, "symbol", "", "Symbol being sold.")
	f.Float64Var(&c.quantity, "quantity", 0, "Number of shares sold.")
	f.Float64Var(&c.price, "price", 0, "Proceeds per share.")
	f.StringVar(&c.date, "d", "", "Sale date. Defaults to today.")
	f.StringVar(&c.method, "method", "", "Lot consumption order (fifo, lifo, specific). Defaults to the store's method.")
	f.StringVar(&c.lots, "lots", "", "Comma-separated lot IDs for -method specific.")
	f.StringVar(&c.memo, "memo", "", "Free-form note recorded with the sale.")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.symbol == "" {
		fmt.Fprintln(os.Stderr, "Error: -account and -symbol are required.")
		return subcommands.ExitUsageError
	}

	on := folio.Today()
	if c.date != "" {
		var err error
		on, err = folio.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	method := store.Config().LotMethod
	if c.method != "" {
		method, err = folio.ParseLotMethod(c.method)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	var specific []string
	if c.lots != "" {
		for _, id := range strings.Split(c.lots, ",") {
			specific = append(specific, strings.TrimSpace(id))
		}
	}

	symbol := folio.NormalizeSymbol(c.symbol)
	quantity := folio.Q(c.quantity)
	price := folio.M(c.price, store.Config().Currency)

	result, err := store.LotBook().ConsumeSale(
		folio.NewSecurityID(c.account, symbol),
		folio.Sale{Date: on, Quantity: quantity, Price: price, Memo: c.memo},
		method, specific...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	store.AddTransactions(folio.Transaction{
		Account:  c.account,
		Date:     on,
		Type:     folio.TxSell,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Amount:   price.Mul(quantity),
		Memo:     c.memo,
	})
	if err := EncodeStore(store); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderSale(symbol, result))
	return subcommands.ExitSuccess
}

// renderSale formats the outcome of a consumed sale as markdown.
func renderSale(symbol string, result folio.SaleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sale of %s\n\n", symbol)
	b.WriteString("| Lot | Date | Shares | Cost basis | Proceeds | Gain |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, a := range result.Allocations {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			a.LotID, a.Date, a.Quantity, a.CostBasis, a.Proceeds, a.Gain)
	}
	fmt.Fprintf(&b, "\nRealized gain: %s on proceeds of %s.\n", result.Gain, result.Proceeds)
	if !result.Unfilled.IsZero() {
		fmt.Fprintf(&b, "\n**Warning:** %s shares exceed the open lots and remain unassigned.\n", result.Unfilled)
	}
	return b.String()
}
