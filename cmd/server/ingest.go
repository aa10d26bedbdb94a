package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	applog "github.com/ontariodoctor/backend/internal/infrastructure/log"
	"github.com/ontariodoctor/backend/internal/wire"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.json> [file.json...]",
	Short: "Chunk, embed and index documents from JSON files",
	Long: `Each file holds {"documents":[{"text","title","url","source","section"}]}.
Files are ingested in order; the first failure stops the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner, cleanup, err := wire.InitializeIngest()
		if err != nil {
			return fmt.Errorf("initialize ingest: %w", err)
		}
		defer cleanup()

		totals, err := runner.IngestFiles(ctx, args)
		if err != nil {
			return err
		}

		applog.GetLogger().Info("Ingest finished",
			"files", len(args),
			"documents", totals.IngestedCount,
			"chunks", totals.ChunkCount,
		)
		fmt.Fprintf(cmd.OutOrStdout(), "ingested %d documents into %d chunks\n", totals.IngestedCount, totals.ChunkCount)
		return nil
	},
}
