package pulsedcm

import (
	"fmt"

	"github.com/pulsedcm/pulsedcm/internal/engine"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/tags"
	"github.com/spf13/cobra"
)

var (
	flagTagsPath      string
	flagTagsJSON      string
	flagTagsCSV       string
	flagWithPixelData bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "tags [all|short|KEYWORD,...]",
		Short: "List the metadata fields of DICOM files",
		Long: "List the metadata fields of DICOM files. 'all' lists every field, 'short' lists\n" +
			"PatientName, StudyDate, Modality and SeriesDescription, anything else is read as\n" +
			"a comma-separated list of field keywords (case-insensitive).",
		Args: cobra.MaximumNArgs(1),
		RunE: runTags,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagTagsPath, "path", "p", ".", "file or directory to read")
	cmd.Flags().StringVar(&flagTagsJSON, "json", "", "export the fields as JSON to this file")
	cmd.Flags().StringVar(&flagTagsCSV, "csv", "", "export the fields as CSV to this file")
	cmd.Flags().BoolVar(&flagWithPixelData, "with-pixel-data", false, "also parse pixel data")
}

func runTags(cmd *cobra.Command, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	lcfg, gcfg := loadConfigs(flagTagsPath)
	noColor := !useColor(stdout, pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor))

	kind := ""
	if len(args) == 1 {
		kind = args[0]
	}
	files, err := engine.ListFiles(flagTagsPath, engine.Filter{
		Include: pickString("", lcfg.Include, gcfg.Include),
		Exclude: pickString("", lcfg.Exclude, gcfg.Exclude),
	})
	if err != nil {
		return err
	}
	store := record.DICOMStore{WithPixelData: flagWithPixelData}
	got, err := tags.Collect(cmd.Context(), files, store, tags.ParseSelector(kind), pickInt(flagJobs, lcfg.Jobs, gcfg.Jobs))
	if err != nil {
		return err
	}

	if flagTagsJSON == "" && flagTagsCSV == "" {
		return tags.Print(stdout, got, noColor)
	}

	failed := false
	for _, f := range got {
		if f.Err != nil {
			failed = true
			fmt.Fprintf(stderr, "%s: %s: %v\n", paint("error", "31", noColor), f.Path, f.Err)
		}
	}
	entries := tags.Entries(got)
	for _, exp := range []struct {
		path   string
		format tags.Format
	}{{flagTagsJSON, tags.JSON}, {flagTagsCSV, tags.CSV}} {
		if exp.path == "" {
			continue
		}
		p, err := tags.Export(exp.path, exp.format, entries)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s saved %s as %s\n", paint("Successfully", "32", noColor), exp.format, p)
	}
	if failed {
		return errFilesFailed
	}
	return nil
}
