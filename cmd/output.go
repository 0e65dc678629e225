package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/coach-directory/internal/export"
	"github.com/sells-group/coach-directory/internal/model"
)

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// recordMaps converts records to their flat wire mapping so every key is
// present even when empty.
func recordMaps(recs []model.CoachRecord) []map[string]string {
	out := make([]map[string]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Map())
	}
	return out
}

// formatRecords writes a table of records to w.
func formatRecords(out io.Writer, recs []model.CoachRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPOSITION\tEMAIL\tPHONE\tTWITTER")
	_, _ = fmt.Fprintln(w, "----\t--------\t-----\t-----\t-------")
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Name, r.Position, r.Email, r.Phone, r.SocialHandle)
	}
	_ = w.Flush()
}

const emptyWarning = "Warning: no coaching staff records found."

// saveRecords writes a CSV when csvPath is set and warns on an empty list.
// An empty list is not an error.
func saveRecords(errOut io.Writer, recs []model.CoachRecord, csvPath string) error {
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(errOut, emptyWarning)
	}
	if csvPath == "" {
		return nil
	}
	if err := export.WriteFile(csvPath, recs); err != nil {
		return eris.Wrap(err, "write csv")
	}
	_, _ = fmt.Fprintf(errOut, "Wrote %d records to %s\n", len(recs), csvPath)
	return nil
}

// emitRecords prints records as a table or JSON and optionally writes a CSV.
func emitRecords(out, errOut io.Writer, recs []model.CoachRecord, asJSON bool, csvPath string) error {
	if err := saveRecords(errOut, recs, csvPath); err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, recordMaps(recs))
	}
	if len(recs) > 0 {
		formatRecords(out, recs)
	}
	return nil
}

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)
