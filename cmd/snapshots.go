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

type snapshotsCmd struct {
	account string
}

func (*snapshotsCmd) Name() string     { return "snapshots" }
func (*snapshotsCmd) Synopsis() string { return "list the recorded account snapshots" }
func (*snapshotsCmd) Usage() string {
	return `flo snapshots [-account <name>]

  Lists the dated snapshots on record, with position counts and account
  totals.
`
}

func (c *snapshotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account to list. All accounts by default.")
}

func (c *snapshotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	accounts := store.Accounts()
	if c.account != "" {
		accounts = []string{c.account}
	}

	var snapshots []folio.Snapshot
	for _, account := range accounts {
		snapshots = append(snapshots, store.Snapshots(account)...)
	}

	printMarkdown(renderSnapshots(snapshots))
	return subcommands.ExitSuccess
}

func renderSnapshots(snapshots []folio.Snapshot) string {
	if len(snapshots) == 0 {
		return "No snapshots.\n"
	}
	var b strings.Builder
	b.WriteString("# Snapshots\n\n")
	b.WriteString("| Account | Date | Positions | Market value | Gain | Source |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range snapshots {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
			s.Account, s.Date, len(s.Positions), s.Total.MarketValue, s.Total.Gain, s.SourceFile)
	}
	return b.String()
}
