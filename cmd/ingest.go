package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestSourceID string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Add text files to the local document store",
	Long: `ingest reads plain text files, chunks them and stores them in the
embedded document store so the local and hybrid retrieval paths have
something to answer from. Requires docstore.enabled and an embedding
API key in the config.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cfg.DocStore.Enabled = true

		a := buildApp(cfg)
		defer a.close()

		if a.docs == nil {
			return fmt.Errorf("document store unavailable; check docstore config and embedding API key")
		}

		ctx := context.Background()
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			sourceID := ingestSourceID
			if sourceID == "" {
				sourceID = filepath.Base(path)
			}

			if err := a.docs.AddDocument(ctx, sourceID, "", string(data)); err != nil {
				return fmt.Errorf("failed to ingest %s: %w", path, err)
			}
			fmt.Printf("ingested %s as %q\n", path, sourceID)
		}

		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSourceID, "source-id", "",
		"Source id to store documents under (default: file name)")
	rootCmd.AddCommand(ingestCmd)
}
