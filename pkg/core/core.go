package core

import (
	"context"

	"github.com/pulsedcm/pulsedcm/internal/anon"
	"github.com/pulsedcm/pulsedcm/internal/engine"
	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/tags"
	"github.com/pulsedcm/pulsedcm/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config   = engine.Config
	Result   = engine.Result
	Outcome  = engine.Outcome
	Filter   = engine.Filter
	Severity = policy.Severity
	Action   = anon.Action
	Tag      = types.Tag
	Entry    = types.Entry
)

const (
	Basic    = policy.Basic
	Moderate = policy.Moderate
	Strict   = policy.Strict

	Zero    = anon.Zero
	Replace = anon.Replace
	Remove  = anon.Remove
)

var (
	ErrAborted  = engine.ErrAborted
	ErrPoolSize = engine.ErrPoolSize
)

// Run is the stable entrypoint for other programs.
func Run(ctx context.Context, cfg Config) (Result, error) {
	return engine.Run(ctx, cfg)
}

// ListFiles returns the DICOM files under root.
func ListFiles(root string, f Filter) ([]string, error) {
	return engine.ListFiles(root, f)
}

// Fields returns the tags covered by a policy.
func Fields(s Severity) []Tag { return policy.Fields(s) }

// Tags reads the fields selected by selector ("all", "short" or keywords)
// from files. Unreadable files are skipped.
func Tags(ctx context.Context, files []string, selector string, jobs int) ([]Entry, error) {
	got, err := tags.Collect(ctx, files, record.DICOMStore{}, tags.ParseSelector(selector), jobs)
	if err != nil {
		return nil, err
	}
	return tags.Entries(got), nil
}
