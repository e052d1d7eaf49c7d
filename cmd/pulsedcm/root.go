package pulsedcm

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJobs    int
	flagVerbose bool
	flagNoColor bool

	version = "0.1.0"
)

// errFilesFailed signals that the command ran but some files could not be
// processed. The per-file errors have already been printed.
var errFilesFailed = errors.New("some files failed")

// rootCmd is the base Cobra command for the pulsedcm CLI.
var rootCmd = &cobra.Command{
	Use:           "pulsedcm",
	Short:         "De-identify DICOM files",
	Long:          "pulsedcm strips or masks patient identifying fields from DICOM files using cumulative basic, moderate and strict policies.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the pulsedcm CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFilesFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagJobs, "jobs", 0, "worker count (0 = one per CPU)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show warnings and per-file field counts")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
}
