package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/pulsedcm/pulsedcm/internal/anon"
	"github.com/pulsedcm/pulsedcm/internal/output"
	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/pulsedcm/pulsedcm/internal/preview"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"go.uber.org/zap"
)

// ErrAborted is returned when the user declines to overwrite the inputs.
var ErrAborted = errors.New("aborted: overwrite not confirmed")

// Config controls a batch run.
type Config struct {
	Files    []string
	Severity policy.Severity
	Action   anon.Action
	// Out is the requested output directory; empty means overwrite inputs.
	Out string
	// Dry previews the first file instead of writing it.
	Dry bool
	// PreviewOnly stops after the preview. It implies Dry.
	PreviewOnly bool
	// Jobs is the requested worker count; 0 picks one per CPU.
	Jobs    int
	Store   record.Store
	Confirm output.Confirmer
	Logger  *zap.SugaredLogger
	// PreviewOut receives the dry-run rendering.
	PreviewOut io.Writer
	NoColor    bool
	// Digest records xxhash digests of inputs and outputs on each Outcome.
	Digest bool
}

// Status is the per-file result of a run.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusSkipped
	StatusPreviewed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusPreviewed:
		return "previewed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome describes what happened to one input file.
type Outcome struct {
	Input        string
	Output       string
	Status       Status
	Err          error
	Warnings     int
	FieldsBefore int
	FieldsAfter  int
	InputDigest  string
	OutputDigest string
}

// Result contains per-file outcomes in input order and run statistics.
type Result struct {
	Outcomes []Outcome
	Mode     output.Mode
	Workers  int
	Duration time.Duration
}

// Succeeded counts written files.
func (r Result) Succeeded() int { return r.count(StatusOK) }

// Failed counts files that could not be processed.
func (r Result) Failed() int { return r.count(StatusFailed) }

// Skipped counts files left untouched because the run was cancelled.
func (r Result) Skipped() int { return r.count(StatusSkipped) }

func (r Result) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Run de-identifies cfg.Files. Per-file problems are reported in the result;
// the returned error is reserved for conditions that stop the whole batch.
func Run(ctx context.Context, cfg Config) (Result, error) {
	started := time.Now()
	if cfg.Store == nil {
		cfg.Store = record.DICOMStore{WithPixelData: true}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.PreviewOut == nil {
		cfg.PreviewOut = io.Discard
	}
	if cfg.PreviewOnly {
		cfg.Dry = true
	}

	var res Result
	files := cfg.Files
	if cfg.Dry && len(files) > 0 {
		res.Outcomes = append(res.Outcomes, previewFile(cfg, files[0]))
		files = files[1:]
	}
	if cfg.PreviewOnly || len(files) == 0 {
		res.Duration = time.Since(started)
		return res, nil
	}

	decisions := make([]output.Decision, len(files))
	for i, f := range files {
		decisions[i] = output.Resolve(f, cfg.Out)
	}
	output.MarkCollisions(files, decisions)
	for i, d := range decisions {
		cfg.Logger.Debugw("output resolved", "file", files[i], "kind", d.Kind.String(), "path", d.Path, "reason", d.Reason)
	}
	res.Mode = output.Settle(decisions, cfg.Confirm)
	if res.Mode == output.Aborted {
		res.Duration = time.Since(started)
		return res, ErrAborted
	}

	size := PoolSize(cfg.Jobs, len(files), runtime.NumCPU())
	p, err := newPool(size)
	if err != nil {
		return res, fmt.Errorf("worker pool: %w", err)
	}
	res.Workers = size

	outs := make([]Outcome, len(files))
	for i, f := range files {
		outs[i] = Outcome{Input: f, Status: StatusSkipped}
	}
	p.run(ctx, len(files), func(_ context.Context, i int) {
		outs[i] = processFile(cfg, files[i], decisions[i])
	})

	res.Outcomes = append(res.Outcomes, outs...)
	res.Duration = time.Since(started)
	return res, nil
}

func previewFile(cfg Config, in string) Outcome {
	o := Outcome{Input: in, Status: StatusPreviewed}
	if cfg.Digest {
		o.InputDigest = fileDigest(in)
	}
	rec, err := cfg.Store.Open(in)
	if err != nil {
		o.Status, o.Err = StatusFailed, err
		return o
	}
	rows, st := preview.Build(rec, cfg.Severity, cfg.Action, cfg.Logger.With("file", in))
	o.Warnings, o.FieldsBefore, o.FieldsAfter = st.Warnings(), st.Before, st.After
	if err := preview.Render(cfg.PreviewOut, rows, preview.Options{NoColor: cfg.NoColor}); err != nil {
		o.Status, o.Err = StatusFailed, fmt.Errorf("render preview: %w", err)
	}
	return o
}

func processFile(cfg Config, in string, d output.Decision) Outcome {
	o := Outcome{Input: in, Status: StatusFailed}
	if d.Kind == output.Invalid {
		o.Err = errors.New(d.Reason)
		return o
	}
	if cfg.Digest {
		o.InputDigest = fileDigest(in)
	}
	rec, err := cfg.Store.Open(in)
	if err != nil {
		o.Err = err
		return o
	}
	st := anon.ApplyPolicy(rec, cfg.Severity, cfg.Action, cfg.Logger.With("file", in))
	o.Warnings, o.FieldsBefore, o.FieldsAfter = st.Warnings(), st.Before, st.After
	if err := rec.Write(d.Path); err != nil {
		o.Err = err
		return o
	}
	o.Output, o.Status = d.Path, StatusOK
	if cfg.Digest {
		o.OutputDigest = fileDigest(d.Path)
	}
	return o
}

// fileDigest hashes the file at p; unreadable files hash as empty.
func fileDigest(p string) string {
	b, err := os.ReadFile(p)
	if err != nil {
		return fastHash(nil)
	}
	return fastHash(b)
}

func fastHash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}
