package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	extractOutput string
	extractJSON   bool
	extractMode   string
	extractVerify bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>...",
	Short: "Extract coaching staff from known directory URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cfg, nil, nil, pipelineOptions{
			mode:   extractMode,
			verify: extractVerify,
		})
		if err != nil {
			return err
		}

		recs, err := p.Extract(cmd.Context(), args)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		return emitRecords(stdout, stderr, recs, extractJSON, extractOutput)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "write records to this CSV file")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print records as JSON")
	extractCmd.Flags().StringVar(&extractMode, "mode", "", "extraction mode: llm, search, or direct (default from config)")
	extractCmd.Flags().BoolVar(&extractVerify, "verify", false, "clear contacts that do not appear on the source page")
	rootCmd.AddCommand(extractCmd)
}
