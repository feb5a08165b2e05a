package main

import (
	"github.com/spf13/cobra"

	"riskrag/internal/server"
)

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, cfg, err := newPipeline(*cfgPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Address
			}
			return server.Run(pipeline, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
