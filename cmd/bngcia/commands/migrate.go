// ABOUTME: CLI command to migrate a local corpus file into the KV store
// ABOUTME: Accepts the current envelope format and the legacy bare array
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HelloJC24/BNGCIA/internal/store"
)

var migrateFrom string

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate a local corpus file into the KV store",
		Long: `Migrate a corpus from a local JSON file into the KV store.

Older corpus files written as a bare chunk array are accepted; their
header is reconstructed from the records.

Examples:
  bngcia migrate --from corpus_local.json`,
		RunE: runMigrate,
	}

	cmd.Flags().StringVar(&migrateFrom, "from", "corpus_local.json", "Path to the local corpus file")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	src := store.NewFileStore(migrateFrom, a.logger)
	n, err := store.Migrate(src, a.store)
	if err != nil {
		return fmt.Errorf("migrating corpus: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d chunks from %s\n", n, migrateFrom)
	}
	return nil
}
