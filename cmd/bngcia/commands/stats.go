// ABOUTME: CLI command to show corpus statistics
// ABOUTME: Reports chunk counts, character totals, and source URLs
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HelloJC24/BNGCIA/internal/store"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Long: `Show statistics for the stored corpus.

Examples:
  bngcia stats
  bngcia stats --format json`,
		RunE: runStats,
	}

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.svc.Stats()
	if err != nil {
		if errors.Is(err, store.ErrCorpusNotFound) {
			return fmt.Errorf("no corpus available: run 'bngcia build' first")
		}
		return fmt.Errorf("reading corpus: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Chunks:\t%d\n", stats.Chunks)
	fmt.Fprintf(w, "Sources:\t%d\n", stats.UniqueURLs)
	fmt.Fprintf(w, "Characters:\t%d\n", stats.TotalChars)
	fmt.Fprintf(w, "Avg chunk:\t%d chars\n", stats.AvgChunkChars)
	fmt.Fprintf(w, "Built:\t%s\n", formatTime(stats.BuiltAt))
	w.Flush()

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSource URLs:")
		for _, u := range stats.URLs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", truncate(u, 80))
		}
	}
	return nil
}
