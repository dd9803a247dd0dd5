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

type txCmd struct {
	account string
	symbol  string
	start   string
	date    string
	head    int
	tail    int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions in the store" }
func (*txCmd) Usage() string {
	return `flo tx [-account <name>] [-symbol <ticker>] [-s <start_date>] [-d <end_date>] [-head <n>] [-tail <n>]

  Lists transactions, with options for filtering and limiting the output.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account to list. All accounts by default.")
	f.StringVar(&c.symbol, "symbol", "", "Restrict to one symbol, mappings applied.")
	f.StringVar(&c.start, "s", "", "The start date for a custom range, exclusive.")
	f.StringVar(&c.date, "d", "", "The end date for the range, inclusive.")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	transactions, err := c.filter(store)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.head > 0 && len(transactions) > c.head {
		transactions = transactions[:c.head]
	}
	if c.tail > 0 && len(transactions) > c.tail {
		transactions = transactions[len(transactions)-c.tail:]
	}

	printMarkdown(renderTransactions(transactions))
	return subcommands.ExitSuccess
}

func (c *txCmd) filter(store *folio.Store) ([]folio.Transaction, error) {
	from := folio.Date{}
	if c.start != "" {
		var err error
		if from, err = folio.ParseDate(c.start); err != nil {
			return nil, fmt.Errorf("parsing start date: %w", err)
		}
	}
	to := folio.Today()
	if c.date != "" {
		var err error
		if to, err = folio.ParseDate(c.date); err != nil {
			return nil, fmt.Errorf("parsing end date: %w", err)
		}
	}

	var transactions []folio.Transaction
	switch {
	case c.symbol != "":
		if c.account == "" {
			return nil, fmt.Errorf("-symbol requires -account")
		}
		// A transaction recorded under an old identity still belongs to
		// the symbol it trades as today: FB legs answer a META query,
		// and a query for FB resolves to META first.
		mappings := store.Mappings()
		target := mappings.Terminal(c.symbol, to)
		for _, tx := range store.TransactionsByAccount(c.account) {
			if tx.Symbol != "" && mappings.Terminal(tx.Symbol, to) == target {
				transactions = append(transactions, tx)
			}
		}
	case c.account != "":
		transactions = store.TransactionsByAccount(c.account)
	default:
		transactions = store.Transactions()
	}

	if c.start == "" && c.date == "" {
		return transactions, nil
	}
	kept := transactions[:0:0]
	for _, tx := range transactions {
		if tx.Date.After(from) && !tx.Date.After(to) {
			kept = append(kept, tx)
		}
	}
	return kept, nil
}

func renderTransactions(transactions []folio.Transaction) string {
	if len(transactions) == 0 {
		return "No transactions.\n"
	}
	var b strings.Builder
	b.WriteString("# Transactions\n\n")
	b.WriteString("| Date | Account | Type | Symbol | Quantity | Price | Amount | Memo |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, tx := range transactions {
		memo := tx.Memo
		if tx.Interpolated {
			memo = strings.TrimSpace("(interpolated) " + memo)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			tx.Date, tx.Account, tx.Type, tx.Symbol, tx.Quantity, tx.Price, tx.Amount, memo)
	}
	return b.String()
}
