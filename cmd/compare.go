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

type compareCmd struct {
	account string
	from    string
	to      string
	record  bool
}

func (*compareCmd) Name() string     { return "compare" }
func (*compareCmd) Synopsis() string { return "compare two snapshots of an account" }
func (*compareCmd) Usage() string {
	return `flo compare -account <name> [-from <date>] [-to <date>] [-record-mappings]

  Classifies every position change between two snapshots of an account:
  additions, removals, quantity changes and inferred ticker changes.
  Without -from/-to the two most recent snapshots are compared.

Usage Examples:
# What changed in the ira account between the last two imports?
$ flo compare -account ira

# Record inferred ticker changes as symbol mappings.
$ flo compare -account ira -record-mappings
`
}

func (c *compareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account to compare.")
	f.StringVar(&c.from, "from", "", "Older snapshot date. Defaults to the second most recent.")
	f.StringVar(&c.to, "to", "", "Newer snapshot date. Defaults to the most recent.")
	f.BoolVar(&c.record, "record-mappings", false, "Record unambiguous inferred ticker changes as symbol mappings.")
}

func (c *compareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}

	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	older, newer, err := snapshotPair(store, c.account, c.from, c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	cs, err := folio.Compare(older, newer, store.Config())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderComparison(cs))

	if c.record {
		recorded := 0
		for _, tc := range cs.TickerChanges {
			if tc.Ambiguous {
				continue
			}
			store.AddMapping(folio.SymbolMapping{
				OldSymbol: tc.OldSymbol,
				NewSymbol: tc.NewSymbol,
				Effective: newer.Date,
				Action:    folio.ActionRename,
				Memo:      fmt.Sprintf("inferred from snapshots %s and %s", older.Date, newer.Date),
			})
			recorded++
		}
		if recorded > 0 {
			if err := EncodeStore(store); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitFailure
			}
		}
		fmt.Printf("Recorded %d symbol mappings\n", recorded)
	}

	return subcommands.ExitSuccess
}

// snapshotPair resolves the two snapshots a comparison runs over. Empty
// dates fall back to the account's two most recent snapshots.
func snapshotPair(store *folio.Store, account, from, to string) (older, newer folio.Snapshot, err error) {
	snapshots := store.Snapshots(account)
	if len(snapshots) < 2 && (from == "" || to == "") {
		return older, newer, fmt.Errorf("account %q has %d snapshots, two are needed", account, len(snapshots))
	}

	if to == "" {
		newer = snapshots[len(snapshots)-1]
	} else {
		on, perr := folio.ParseDate(to)
		if perr != nil {
			return older, newer, fmt.Errorf("parsing -to date: %w", perr)
		}
		var ok bool
		if newer, ok = store.SnapshotOn(account, on); !ok {
			return older, newer, fmt.Errorf("account %q has no snapshot on %s", account, on)
		}
	}

	if from == "" {
		older = snapshots[len(snapshots)-2]
	} else {
		on, perr := folio.ParseDate(from)
		if perr != nil {
			return older, newer, fmt.Errorf("parsing -from date: %w", perr)
		}
		var ok bool
		if older, ok = store.SnapshotOn(account, on); !ok {
			return older, newer, fmt.Errorf("account %q has no snapshot on %s", account, on)
		}
	}

	return older, newer, nil
}
