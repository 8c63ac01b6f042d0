// ABOUTME: CLI command to ask a question against the indexed corpus
// ABOUTME: Prints the answer with citations, or JSON with --format json
package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HelloJC24/BNGCIA/internal/retriever"
	"github.com/HelloJC24/BNGCIA/internal/store"
)

var askUser string

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the corpus",
		Long: `Ask a question and get an answer grounded in the indexed corpus.

Answers cite the source documents they were drawn from. Questions with
the same --user share conversation context, so follow-ups work.

Examples:
  bngcia ask "What services does BNGC offer?"
  bngcia ask --user alice "How much does a website cost?"
  bngcia ask --format json "Where is BNGC located?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askUser, "user", "anonymous", "User identifier for conversation continuity")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.svc.Reload(); err != nil {
		if errors.Is(err, store.ErrCorpusNotFound) {
			return fmt.Errorf("no corpus available: run 'bngcia build' first")
		}
		return fmt.Errorf("loading corpus: %w", err)
	}

	answer, err := a.svc.Ask(args[0], askUser)
	if err != nil {
		if errors.Is(err, retriever.ErrNoCorpus) {
			return fmt.Errorf("no corpus available: run 'bngcia build' first")
		}
		return fmt.Errorf("answering: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer.Answer)
	if len(answer.Citations) > 0 && !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
		for _, c := range answer.Citations {
			fmt.Fprintf(cmd.OutOrStdout(), "  %.2f  %s\n", c.Score, c.URL)
		}
	}
	return nil
}
