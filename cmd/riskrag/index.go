package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riskrag/config"
	"riskrag/internal/index"
)

func indexCMD(cfgPath *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or refresh the BM25 snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if force && cfg.Corpus.SnapshotPath != "" {
				if err := os.Remove(cfg.Corpus.SnapshotPath); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove snapshot: %w", err)
				}
			}
			store := index.NewStore(cfg.Corpus.Path, cfg.Corpus.SnapshotPath, cfg.Corpus.ChunkSize, cfg.Corpus.ChunkOverlap)
			if err := store.BuildOrLoad(); err != nil {
				return err
			}
			fmt.Printf("index ready: %d passages\n", len(store.Passages()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "rebuild even if a snapshot exists")
	return cmd
}
