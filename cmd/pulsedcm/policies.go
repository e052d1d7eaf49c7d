package pulsedcm

import (
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/types"
	"github.com/spf13/cobra"
)

var flagPoliciesPolicy string

func init() {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List the fields covered by each policy, in tag order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sev := policy.Strict
			if flagPoliciesPolicy != "" {
				s, err := policy.ParseSeverity(flagPoliciesPolicy)
				if err != nil {
					return err
				}
				sev = s
			}
			fields := policy.Fields(sev)
			sort.Slice(fields, func(i, j int) bool { return fields[i].Less(fields[j]) })
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Tag", "Name", "Since")
			for _, t := range fields {
				if err := table.Append([]string{t.String(), record.Name(t), introducedIn(t).String()}); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d fields in the %s policy\n", len(fields), sev)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagPoliciesPolicy, "policy", "", "only list basic | moderate | strict (default strict, which includes all)")
	registerPolicyFlags(cmd)
	rootCmd.AddCommand(cmd)
}

// introducedIn returns the lowest severity covering t.
func introducedIn(t types.Tag) policy.Severity {
	for _, s := range policy.All {
		if policy.Contains(s, t) {
			return s
		}
	}
	return policy.Strict
}
