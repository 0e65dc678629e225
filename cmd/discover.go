package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/coach-directory/internal/model"
)

var discoverJSON bool

var discoverCmd = &cobra.Command{
	Use:   "discover <school> <sport>",
	Short: "List candidate staff directory URLs without extracting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		disc, err := buildDiscoverer(cfg)
		if err != nil {
			return err
		}

		urls, err := disc.Discover(cmd.Context(), model.Query{School: args[0], Sport: args[1]})
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		if discoverJSON {
			if urls == nil {
				urls = []string{}
			}
			return writeJSON(stdout, urls)
		}
		if len(urls) == 0 {
			_, _ = fmt.Fprintln(stderr, "No candidate URLs found.")
			return nil
		}
		for _, u := range urls {
			_, _ = fmt.Fprintln(stdout, u)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "print URLs as a JSON array")
	rootCmd.AddCommand(discoverCmd)
}
