package core

import (
	"encoding/json"
	"io"

	"github.com/pulsedcm/pulsedcm/internal/tags"
)

// MarshalEntries writes entries in the layout of `pulsedcm tags --json`.
func MarshalEntries(w io.Writer, entries []Entry) error {
	return tags.Encode(w, tags.JSON, entries)
}

// MarshalEntriesCSV writes entries in the layout of `pulsedcm tags --csv`.
func MarshalEntriesCSV(w io.Writer, entries []Entry) error {
	return tags.Encode(w, tags.CSV, entries)
}

// UnmarshalEntries reads entries written by MarshalEntries.
func UnmarshalEntries(r io.Reader) ([]Entry, error) {
	var es []Entry
	if err := json.NewDecoder(r).Decode(&es); err != nil {
		return nil, err
	}
	return es, nil
}
