package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riskrag/config"
	"riskrag/internal/index"
	"riskrag/internal/provider"
	"riskrag/internal/provider/ollama"
	"riskrag/internal/provider/openai"
	"riskrag/internal/rag"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:   "riskrag",
		Short: "Grounded QA over a risk-policy document",
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default ./config/config.yaml)")

	root.AddCommand(serveCMD(&cfgPath), askCMD(&cfgPath), searchCMD(&cfgPath), indexCMD(&cfgPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newPipeline wires config, index and backends. Index build/load failure is
// the one fatal initialization error.
func newPipeline(cfgPath string) (*rag.Pipeline, *config.Config, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	store := index.NewStore(cfg.Corpus.Path, cfg.Corpus.SnapshotPath, cfg.Corpus.ChunkSize, cfg.Corpus.ChunkOverlap)
	if err := store.BuildOrLoad(); err != nil {
		return nil, nil, err
	}

	var local, remote provider.Generator
	if cfg.Ollama.BaseURL != "" {
		local = ollama.New(cfg.Ollama)
	}
	if cfg.OpenAI.APIKey != "" {
		remote = openai.New(cfg.OpenAI)
	}

	return rag.New(cfg, store, local, remote), cfg, nil
}
