package pulsedcm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/pulsedcm/pulsedcm/internal/anon"
	"github.com/pulsedcm/pulsedcm/internal/audit"
	"github.com/pulsedcm/pulsedcm/internal/engine"
	"github.com/pulsedcm/pulsedcm/internal/logging"
	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagAnoPath     string
	flagAction      string
	flagPolicy      string
	flagOut         string
	flagDry         bool
	flagPreviewOnly bool
	flagInclude     string
	flagExclude     string
	flagAudit       string
)

func init() {
	cmd := &cobra.Command{
		Use:   "ano",
		Short: "Anonymize DICOM files in place or into an output directory",
		Args:  cobra.NoArgs,
		RunE:  runAno,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagAnoPath, "path", "p", ".", "file or directory to process")
	cmd.Flags().StringVar(&flagAction, "action", "", "replace | zero | remove (default zero)")
	cmd.Flags().StringVar(&flagPolicy, "policy", "", "basic | moderate | strict (default basic)")
	cmd.Flags().StringVar(&flagOut, "out", "", "existing output directory (default: overwrite inputs after confirmation)")
	cmd.Flags().BoolVarP(&flagDry, "dry", "d", false, "preview the first file instead of writing it")
	cmd.Flags().BoolVar(&flagPreviewOnly, "preview-only", false, "stop after the dry-run preview")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().StringVar(&flagAudit, "audit", "", "append a JSON line describing the run to this file")
	registerPolicyFlags(cmd)
}

func runAno(cmd *cobra.Command, _ []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	lcfg, gcfg := loadConfigs(flagAnoPath)

	action, err := anon.ParseAction(orDefault(pickString(flagAction, lcfg.Action, gcfg.Action), "zero"))
	if err != nil {
		return err
	}
	sev, err := policy.ParseSeverity(orDefault(pickString(flagPolicy, lcfg.Policy, gcfg.Policy), "basic"))
	if err != nil {
		return err
	}
	verbose := pickBool(flagVerbose, lcfg.Verbose, gcfg.Verbose)
	noColor := !useColor(stdout, pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor))

	log, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	files, err := engine.ListFiles(flagAnoPath, engine.Filter{
		Include: pickString(flagInclude, lcfg.Include, gcfg.Include),
		Exclude: pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(stderr, "no .dcm files found under %s\n", flagAnoPath)
		return nil
	}
	log.Debugw("starting", "files", len(files), "policy", sev.String(), "action", action.String())

	auditPath := pickString(flagAudit, lcfg.Audit, gcfg.Audit)
	cfg := engine.Config{
		Files:       files,
		Severity:    sev,
		Action:      action,
		Out:         pickString(flagOut, lcfg.Out, gcfg.Out),
		Dry:         flagDry,
		PreviewOnly: flagPreviewOnly,
		Jobs:        pickInt(flagJobs, lcfg.Jobs, gcfg.Jobs),
		Store:       record.DICOMStore{WithPixelData: true},
		Confirm:     askYesNo(cmd.InOrStdin(), stdout),
		Logger:      log,
		PreviewOut:  stdout,
		NoColor:     noColor,
		Digest:      auditPath != "",
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	res, err := engine.Run(ctx, cfg)
	if errors.Is(err, engine.ErrAborted) {
		fmt.Fprintln(stderr, "Aborted, no file was written")
		return err
	}
	if err != nil {
		return fmt.Errorf("ano: %w", err)
	}

	opts := report.PrintOptions{NoColor: noColor, Verbose: verbose}
	report.PrintOutcomes(stdout, stderr, res, opts)
	if verbose || res.Failed() > 0 {
		if err := report.PrintSummary(stdout, res, opts); err != nil {
			return err
		}
	}

	if auditPath != "" {
		rec := audit.CreateRunRecord(sev, action, cfg.Dry || cfg.PreviewOnly, res)
		if err := audit.NewAuditLog(auditPath).LogRun(rec); err != nil {
			log.Errorw("audit log not written", "path", auditPath, "error", err)
		}
	}

	if n := res.Skipped(); n > 0 || ctx.Err() != nil {
		return fmt.Errorf("interrupted, %d file(s) not processed: %w", n, context.Canceled)
	}
	if res.Failed() > 0 {
		return errFilesFailed
	}
	return nil
}
