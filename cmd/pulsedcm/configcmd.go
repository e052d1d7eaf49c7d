package pulsedcm

import (
	"fmt"
	"strings"

	"github.com/pulsedcm/pulsedcm/internal/anon"
	"github.com/pulsedcm/pulsedcm/internal/config"
	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/spf13/cobra"
)

var (
	cfgOutput  string
	cfgAction  string
	cfgPolicy  string
	cfgOut     string
	cfgJobs    int
	cfgNoColor bool
	cfgExclude string
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .pulsedcm.yml with default options",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".pulsedcm.yml", "output file path")
	initCmd.Flags().StringVar(&cfgAction, "action", "zero", "default action: replace | zero | remove")
	initCmd.Flags().StringVar(&cfgPolicy, "policy", "basic", "default policy: basic | moderate | strict")
	initCmd.Flags().StringVar(&cfgOut, "out", "", "default output directory")
	initCmd.Flags().IntVar(&cfgJobs, "jobs", 0, "worker count (0 = one per CPU)")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().StringVar(&cfgExclude, "exclude", "", "comma-separated exclude globs")
	registerPolicyFlags(initCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	action, err := anon.ParseAction(cfgAction)
	if err != nil {
		return err
	}
	sev, err := policy.ParseSeverity(cfgPolicy)
	if err != nil {
		return err
	}
	fc := config.FileConfig{
		Action:  strPtr(action.String()),
		Policy:  strPtr(sev.String()),
		Out:     optStrPtr(cfgOut),
		Jobs:    intPtr(cfgJobs),
		NoColor: boolPtr(cfgNoColor),
		Exclude: optStrPtr(cfgExclude),
	}
	if err := config.Save(cfgOutput, fc); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func boolPtr(v bool) *bool { return &v }
