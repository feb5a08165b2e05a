package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func askCMD(cfgPath *string) *cobra.Command {
	var mode string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question against the policy document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, _, err := newPipeline(*cfgPath)
			if err != nil {
				return err
			}
			env := pipeline.Ask(cmd.Context(), strings.Join(args, " "), mode)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(env)
			}

			fmt.Println(env.Respuesta)
			if env.GateReason != nil {
				fmt.Printf("\n[%s]\n", *env.GateReason)
			}
			if len(env.Fuentes) > 0 {
				fmt.Printf("\nFuentes consultadas (%d):\n", len(env.Fuentes))
				for i, f := range env.Fuentes {
					if len(f) > 200 {
						f = f[:200] + "..."
					}
					fmt.Printf("%d. %s\n", i+1, f)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "force strategy: baseline|local|llm")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full answer envelope as JSON")
	return cmd
}

func searchCMD(cfgPath *string) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Browse similar passages without generating an answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, _, err := newPipeline(*cfgPath)
			if err != nil {
				return err
			}
			records := pipeline.SearchRecords(strings.Join(args, " "), k)
			if len(records) == 0 {
				fmt.Println("sin resultados")
				return nil
			}
			for _, r := range records {
				text := r.Text
				if len(text) > 200 {
					text = text[:200] + "..."
				}
				fmt.Printf("[%d] score=%.4f %s\n", r.ChunkID, r.Score, text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&k, "k", 3, "number of passages")
	return cmd
}
