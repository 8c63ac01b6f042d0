// ABOUTME: CLI command to view or clear a user's conversation history
// ABOUTME: Shows recent turns oldest first; --clear forgets the history
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	historyUser  string
	historyLimit int
	historyClear bool
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "View or clear conversation history",
		Long: `View the recent conversation history for a user, oldest first.

With --clear the stored history is deleted instead.

Examples:
  bngcia history --user alice
  bngcia history --user alice --limit 4
  bngcia history --user alice --clear`,
		RunE: runHistory,
	}

	cmd.Flags().StringVar(&historyUser, "user", "anonymous", "User identifier")
	cmd.Flags().IntVar(&historyLimit, "limit", 10, "Maximum turns to show")
	cmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the stored history")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if historyClear {
		if err := a.svc.ClearHistory(historyUser); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "History cleared for %s\n", historyUser)
		}
		return nil
	}

	if err := validatePositiveInt(historyLimit, "limit"); err != nil {
		return err
	}

	turns, err := a.svc.History(historyUser, historyLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(turns, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(turns) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No history for %s\n", historyUser)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "WHEN\tROLE\tMESSAGE\n")
	fmt.Fprintf(w, "----\t----\t-------\n")
	for _, turn := range turns {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			formatTime(turn.Timestamp),
			turn.Role,
			truncate(turn.Content, 70))
	}
	w.Flush()
	return nil
}
