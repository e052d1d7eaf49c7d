// Package tags lists and exports the metadata fields of records.
package tags

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pulsedcm/pulsedcm/internal/engine"
	"github.com/pulsedcm/pulsedcm/internal/preview"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/types"
)

// Selector picks which fields of a record are listed.
type Selector struct {
	All      bool
	Short    bool
	Keywords []string
}

// ShortTags are listed by the "short" selector, in this order.
var ShortTags = []types.Tag{
	{Group: 0x0010, Element: 0x0010}, // PatientName
	{Group: 0x0008, Element: 0x0020}, // StudyDate
	{Group: 0x0008, Element: 0x0060}, // Modality
	{Group: 0x0008, Element: 0x103E}, // SeriesDescription
}

// ParseSelector accepts "all", "short" or a comma separated list of field
// keywords. An empty string selects everything.
func ParseSelector(s string) Selector {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return Selector{All: true}
	case "short":
		return Selector{Short: true}
	}
	var kws []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, strings.ToLower(k))
		}
	}
	return Selector{Keywords: kws}
}

// Select filters rec according to sel.
func Select(rec record.Record, sel Selector) []record.Element {
	switch {
	case sel.All:
		return rec.Elements()
	case sel.Short:
		var out []record.Element
		for _, t := range ShortTags {
			if el, ok := rec.Lookup(t); ok {
				out = append(out, el)
			}
		}
		return out
	}
	want := make(map[string]bool, len(sel.Keywords))
	for _, k := range sel.Keywords {
		want[strings.ToLower(k)] = true
	}
	var out []record.Element
	for _, el := range rec.Elements() {
		if want[strings.ToLower(el.Name)] {
			out = append(out, el)
		}
	}
	return out
}

// File holds the selected fields of one record, or the error that prevented
// reading it.
type File struct {
	Path     string
	Elements []record.Element
	Err      error
}

// Collect reads every file on a bounded pool. Results keep the order of
// files.
func Collect(ctx context.Context, files []string, store record.Store, sel Selector, jobs int) ([]File, error) {
	out := make([]File, len(files))
	for i, f := range files {
		out[i] = File{Path: f, Err: context.Canceled}
	}
	err := engine.ForEach(ctx, jobs, len(files), runtime.NumCPU(), func(_ context.Context, i int) {
		rec, err := store.Open(files[i])
		if err != nil {
			out[i] = File{Path: files[i], Err: err}
			return
		}
		out[i] = File{Path: files[i], Elements: Select(rec, sel)}
	})
	if err != nil {
		return nil, fmt.Errorf("collect tags: %w", err)
	}
	return out, nil
}

// Print writes a header per file followed by its colorized fields. Files that
// could not be read are reported inline.
func Print(w io.Writer, files []File, noColor bool) error {
	for _, f := range files {
		if _, err := fmt.Fprintf(w, "[%s]----\n", f.Path); err != nil {
			return err
		}
		if f.Err != nil {
			if _, err := fmt.Fprintf(w, "Can't open file: %v\n", f.Err); err != nil {
				return err
			}
			continue
		}
		if err := preview.Render(w, preview.Rows(f.Elements), preview.Options{NoColor: noColor}); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Entries flattens files into export rows. Unreadable files are omitted.
func Entries(files []File) []types.Entry {
	var out []types.Entry
	for _, f := range files {
		for _, el := range f.Elements {
			out = append(out, types.Entry{
				Filename: f.Path,
				Name:     el.Name,
				Tag:      fmt.Sprintf("(%04X %04X)", el.Tag.Group, el.Tag.Element),
				VR:       el.VR,
				Value:    el.Value,
			})
		}
	}
	return out
}
