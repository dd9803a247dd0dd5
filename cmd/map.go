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

type mapCmd struct {
	old    string
	new    string
	date   string
	action string
	memo   string
}

func (*mapCmd) Name() string     { return "map" }
func (*mapCmd) Synopsis() string { return "record or list symbol mappings" }
func (*mapCmd) Usage() string {
	return `flo map [-old <ticker> -new <ticker> -date <date> [-action rename|merger|spinoff]]

  Records a symbol mapping: on and after the effective date the old
  symbol trades as the new one. Without flags, lists the known mappings.

Usage Examples:
# Facebook became Meta.
$ flo map -old FB -new META -date 2022-06-09 -action rename

# What mappings are known?
$ flo map
`
}

func (c *mapCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.old, "old", "", "Symbol before the change.")
	f.StringVar(&c.new, "new", "", "Symbol after the change.")
	f.StringVar(&c.date, "date", "", "Effective date of the change.")
	f.StringVar(&c.action, "action", "rename", "Reason for the change (rename, merger, spinoff).")
	f.StringVar(&c.memo, "memo", "", "Free-form note recorded with the mapping.")
}

func (c *mapCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.old == "" && c.new == "" {
		printMarkdown(renderMappings(store.Mappings().All()))
		return subcommands.ExitSuccess
	}

	if c.old == "" || c.new == "" || c.date == "" {
		fmt.Fprintln(os.Stderr, "Error: -old, -new and -date are required to record a mapping.")
		return subcommands.ExitUsageError
	}
	effective, err := folio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitFailure
	}
	action, err := parseAction(c.action)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	m := folio.SymbolMapping{
		OldSymbol: folio.NormalizeSymbol(c.old),
		NewSymbol: folio.NormalizeSymbol(c.new),
		Effective: effective,
		Action:    action,
		Memo:      c.memo,
	}
	store.AddMapping(m)
	if err := EncodeStore(store); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded mapping %s\n", m)
	return subcommands.ExitSuccess
}

func parseAction(s string) (folio.MappingAction, error) {
	switch folio.MappingAction(strings.ToLower(strings.TrimSpace(s))) {
	case folio.ActionRename:
		return folio.ActionRename, nil
	case folio.ActionMerger:
		return folio.ActionMerger, nil
	case folio.ActionSplit:
		return folio.ActionSplit, nil
	default:
		return "", fmt.Errorf("unknown mapping action %q", s)
	}
}

func renderMappings(mappings []folio.SymbolMapping) string {
	if len(mappings) == 0 {
		return "No symbol mappings recorded.\n"
	}
	var b strings.Builder
	b.WriteString("# Symbol mappings\n\n")
	b.WriteString("| Old | New | Effective | Action | Memo |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, m := range mappings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			m.OldSymbol, m.NewSymbol, m.Effective, m.Action, m.Memo)
	}
	return b.String()
}
