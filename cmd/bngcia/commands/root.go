// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Provides --verbose, --quiet, and --format shared by all commands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
██████╗ ███╗   ██╗ ██████╗  ██████╗██╗ █████╗
██╔══██╗████╗  ██║██╔════╝ ██╔════╝██║██╔══██╗
██████╔╝██╔██╗ ██║██║  ███╗██║     ██║███████║
██╔══██╗██║╚██╗██║██║   ██║██║     ██║██╔══██║
██████╔╝██║ ╚████║╚██████╔╝╚██████╗██║██║  ██║
╚═════╝ ╚═╝  ╚═══╝ ╚═════╝  ╚═════╝╚═╝╚═╝  ╚═╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bngcia",
		Short: "Retrieval-augmented question answering over the BNGC corpus",
		Long: banner + `
BNGCIA answers questions from an embedded document corpus with source
citations, keeping per-user conversation context across questions.

Build a corpus from local documents, ask questions against it, and run
the MCP server so LLM agents can use the same tools.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
