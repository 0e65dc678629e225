package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/export"
	"github.com/sells-group/coach-directory/internal/model"
)

var (
	runOutput  string
	runCSV     bool
	runJSON    bool
	runNoCache bool
	runMode    string
	runVerify  bool
)

var runCmd = &cobra.Command{
	Use:   "run <school> <sport>",
	Short: "Build the coaching staff directory for one school and sport",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		q := model.Query{School: args[0], Sport: args[1]}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		disc, err := buildDiscoverer(cfg)
		if err != nil {
			return err
		}
		p, err := buildPipeline(cfg, st, disc, pipelineOptions{
			mode:    runMode,
			noCache: runNoCache,
			verify:  runVerify,
		})
		if err != nil {
			return err
		}

		result, err := p.Run(ctx, q)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		zap.L().Info("run finished",
			zap.String("run_id", result.RunID),
			zap.Int("records", len(result.Records)),
			zap.Bool("from_cache", result.FromCache),
		)

		out := runOutput
		if out == "" && runCSV {
			out = export.Filename(q.School, q.Sport)
		}
		if runJSON {
			if err := saveRecords(stderr, result.Records, out); err != nil {
				return err
			}
			return writeJSON(stdout, result)
		}
		return emitRecords(stdout, stderr, result.Records, false, out)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write records to this CSV file")
	runCmd.Flags().BoolVar(&runCSV, "csv", false, "write records to <school>_<sport>_coaches.csv")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the full run result as JSON")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "ignore cached results for this query")
	runCmd.Flags().StringVar(&runMode, "mode", "", "extraction mode: llm, search, or direct (default from config)")
	runCmd.Flags().BoolVar(&runVerify, "verify", false, "clear contacts that do not appear on the source page")
	rootCmd.AddCommand(runCmd)
}
