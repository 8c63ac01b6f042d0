// ABOUTME: CLI command to build the corpus from a directory of documents
// ABOUTME: Chunks, embeds, stores, and reports the resulting corpus
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HelloJC24/BNGCIA/internal/source"
	"github.com/HelloJC24/BNGCIA/internal/store"
)

var (
	buildDir string
	buildOut string
)

// NewBuildCmd creates the build command
func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the corpus from local documents",
		Long: `Build the corpus from a directory of .txt, .md, and .pdf documents.

Every document is chunked, embedded, and stored; the previous corpus is
replaced in one step. With --out the corpus is written to a local JSON
file instead of the KV store (useful for inspection and migration).

Examples:
  bngcia build --dir ./docs
  bngcia build --dir ./docs --out corpus_local.json`,
		RunE: runBuild,
	}

	cmd.Flags().StringVar(&buildDir, "dir", "", "Directory containing source documents")
	cmd.Flags().StringVar(&buildOut, "out", "", "Write the corpus to this JSON file instead of the KV store")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	builder := a.builder
	if buildOut != "" {
		builder = a.builderFor(store.NewFileStore(buildOut, a.logger))
	}

	c, err := builder.Build(source.NewDir(buildDir, a.logger))
	if err != nil {
		return fmt.Errorf("building corpus: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(store.StatsFor(c), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Corpus built: %d chunks (%d-dimensional embeddings)\n",
			c.Len(), c.Header.EmbeddingDim)
		if buildOut != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Written to %s\n", buildOut)
		}
	}
	return nil
}
