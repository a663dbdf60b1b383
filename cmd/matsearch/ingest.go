package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/usecase/ingest"
)

func newIngestCmd(env *string) *cobra.Command {
	var (
		batchSize int
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed catalog products and upsert them into the vector index",
		Long: `Derives one product per item code from the catalog transactions, embeds every
product whose text changed since the last run and upserts the vectors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batchSize < 0 {
				return fmt.Errorf("--batch-size must not be negative")
			}
			a, err := newApp(cmd.Context(), *env)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.ingest.Run(cmd.Context(), ingest.Options{PageSize: batchSize, Force: force})
			if err != nil {
				a.logger.Error("Ingest failed", zap.Error(err))
				return fmt.Errorf("ingest: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]int{
				"totalProcessed": summary.TotalProcessed,
				"totalStored":    summary.TotalStored,
				"totalSkipped":   summary.TotalSkipped,
			})
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Products read per catalog page (0 uses ingest.page_size)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-embed products whose text is unchanged")
	return cmd
}
