package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/coach-directory/internal/model"
	"github.com/sells-group/coach-directory/internal/normalize"
	"github.com/sells-group/coach-directory/internal/parse"
	"github.com/sells-group/coach-directory/internal/validate"
)

var (
	parseSource string
	parseJSON   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a saved model response offline",
	Long:  "Runs the response parser, validator and normalizer over a saved response. Use - to read stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		parser, err := buildParser(cfg)
		if err != nil {
			return err
		}
		v, err := buildValidator(cfg)
		if err != nil {
			return err
		}

		recs := parseResponse(text, parseSource, parser, v, cfg.Pipeline.HardCap)
		return emitRecords(stdout, stderr, recs, parseJSON, "")
	},
}

// parseResponse is the offline path: parse, validate, normalize.
func parseResponse(text, source string, p *parse.Parser, v *validate.Validator, hardCap int) []model.CoachRecord {
	raw := v.Filter(p.Parse(text, source))
	return normalize.Records(raw, hardCap)
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), eris.Wrap(err, "read stdin")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", path)
	}
	return string(b), nil
}

func init() {
	parseCmd.Flags().StringVar(&parseSource, "source", "", "source URL recorded on each record")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print records as JSON")
	rootCmd.AddCommand(parseCmd)
}
