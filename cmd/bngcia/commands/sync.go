// ABOUTME: Sync commands for Charm cloud synchronization
// ABOUTME: Shows connection info and triggers a manual sync
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization with Charm cloud.

The corpus and conversation histories sync automatically across devices
linked to the same Charm account.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())

	return cmd
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Host: %s\n", a.cfg.CharmHost)
			fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", a.cfg.CharmDBName)
			fmt.Fprintf(cmd.OutOrStdout(), "Auto-sync: %t\n", a.cfg.AutoSync)
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Sync with the cloud immediately",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.kv.Sync(); err != nil {
				return fmt.Errorf("syncing: %w", err)
			}
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
			}
			return nil
		},
	}
}
