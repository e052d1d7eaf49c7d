package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/pulsedcm/pulsedcm/internal/engine"
)

type PrintOptions struct {
	NoColor bool
	// Verbose adds field counts per file.
	Verbose bool
}

// PrintOutcomes reports each file of a run: successes on w, failures and
// unprocessed files on errW.
func PrintOutcomes(w, errW io.Writer, res engine.Result, opts PrintOptions) {
	for _, o := range res.Outcomes {
		switch o.Status {
		case engine.StatusOK:
			if opts.Verbose {
				fmt.Fprintf(w, "Original Length: %d -> New Length: %d\n", o.FieldsBefore, o.FieldsAfter)
			}
			fmt.Fprintf(w, "%s to: %s\n", paint("Wrote successfully", green, opts.NoColor), o.Output)
		case engine.StatusPreviewed:
			if opts.Verbose {
				fmt.Fprintf(w, "Original Length: %d -> New Length: %d\n", o.FieldsBefore, o.FieldsAfter)
			}
		case engine.StatusFailed:
			fmt.Fprintf(errW, "%s: %s: %v\n", paint("error", red, opts.NoColor), o.Input, o.Err)
		case engine.StatusSkipped:
			fmt.Fprintf(errW, "%s: %s: not processed\n", paint("skipped", yellow, opts.NoColor), o.Input)
		}
	}
}

// PrintSummary writes the run footer and, when files failed, a table of them.
func PrintSummary(w io.Writer, res engine.Result, opts PrintOptions) error {
	other := len(res.Outcomes) - res.Succeeded() - res.Failed()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d (written: %d, failed: %d, other: %d)\n", len(res.Outcomes), res.Succeeded(), res.Failed(), other)
	if res.Workers > 0 {
		fmt.Fprintf(w, "Workers: %d\n", res.Workers)
	}
	if res.Duration > 0 {
		fmt.Fprintf(w, "Duration: %.2fs\n", res.Duration.Seconds())
	}
	if res.Failed() == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("File", "Error")
	for _, o := range res.Outcomes {
		if o.Status != engine.StatusFailed {
			continue
		}
		if err := table.Append([]string{o.Input, o.Err.Error()}); err != nil {
			return err
		}
	}
	return table.Render()
}

const (
	red    = "31"
	green  = "32"
	yellow = "33"
)

func paint(s, code string, noColor bool) string {
	if noColor {
		return s
	}
	return "\x1b[1;" + code + "m" + s + "\x1b[0m"
}
