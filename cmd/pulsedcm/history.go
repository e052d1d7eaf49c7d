package pulsedcm

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pulsedcm/pulsedcm/internal/audit"
	"github.com/spf13/cobra"
)

var (
	flagHistoryAudit string
	flagHistoryLimit int
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show runs recorded in the audit log, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().StringVar(&flagHistoryAudit, "audit", "", "audit log to read (default: the audit path from config)")
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "number of runs to show (0 = all)")
	rootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	lcfg, gcfg := loadConfigs(".")
	p := pickString(flagHistoryAudit, lcfg.Audit, gcfg.Audit)
	if p == "" {
		return errors.New("no audit log configured; pass --audit or set audit in the config")
	}
	log := audit.NewAuditLog(p)
	runs, err := log.LoadHistory()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintf(out, "no runs recorded in %s\n", log.Path())
		return nil
	}
	if flagHistoryLimit > 0 && len(runs) > flagHistoryLimit {
		runs = runs[:flagHistoryLimit]
	}

	table := tablewriter.NewWriter(out)
	table.Header("Time", "Run", "Policy", "Action", "Mode", "Files", "Written", "Failed", "Skipped")
	for _, r := range runs {
		mode := r.Mode
		if r.Dry {
			mode += " (dry)"
		}
		row := []string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			shortID(r.RunID),
			r.Policy,
			r.Action,
			mode,
			strconv.Itoa(r.Files),
			strconv.Itoa(r.Written),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
