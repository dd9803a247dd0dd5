package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/hmehl/folio"
	"github.com/hmehl/folio/renderer"
	"google.golang.org/genai"
)

const assistModel = "gemini-2.5-pro"

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `flo assist [question...]

  Starts an interactive session with an AI assistant primed with the
  store's accounts and current reconciliation findings. The assistant
  only ever reads the store; recording anything stays a manual step.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := DecodeStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: assistInstruction(store)}}},
	}
	chat, err := client.Chats.Create(ctx, assistModel, config, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting chat:", err)
		return subcommands.ExitFailure
	}

	initial := ""
	if f.NArg() > 0 {
		initial = strings.Join(f.Args(), " ")
	}
	if err := assistLoop(ctx, chat, os.Stdin, initial); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// assistInstruction primes the assistant with everything it may talk
// about: the reconciliation reports of every account. The store itself
// is never exposed; the assistant explains findings, it cannot fix them.
func assistInstruction(store *folio.Store) string {
	var b strings.Builder
	b.WriteString(`You are a careful bookkeeping assistant for a personal investment
portfolio. You explain reconciliation findings, suggest which flo
commands would resolve them, and answer questions about the reports
below. You never invent holdings or transactions that are not in the
reports. When unsure, say so.

Current reports:

`)
	for _, account := range store.Accounts() {
		findings, suggestions := reconcileAccount(store, account, true)
		var on folio.Date
		if latest, ok := store.LatestSnapshot(account); ok {
			on = latest.Date
		}
		b.WriteString(renderer.RenderReconciliation(
			renderer.NewReconciliation(account, on, findings, suggestions)))
		b.WriteString("\n")
	}
	return b.String()
}

// assistLoop is the REPL: prompts are read from r, answers rendered as
// markdown. 'bye' or EOF ends the session.
func assistLoop(ctx context.Context, chat *genai.Chat, r io.Reader, initial string) error {
	fmt.Println("Welcome to flo assist. Type 'bye' to exit.")
	reader := bufio.NewReader(r)

	input := initial
	for {
		if input == "" {
			fmt.Print("assist> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			input = strings.TrimSpace(line)
			if input == "" {
				continue
			}
		}
		if input == "bye" {
			return nil
		}

		resp, err := chat.Send(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no response from the assistant")
		}
		printMarkdown(resp.Candidates[0].Content.Parts[0].Text)
		input = ""
	}
}
