package tags

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pulsedcm/pulsedcm/internal/types"
)

// Format is an export file format.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
)

// ExportPath adds the format extension when p has none and, when the target
// already exists, suffixes the stem with the unix time so nothing is
// overwritten.
func ExportPath(p string, f Format, now time.Time) string {
	if filepath.Ext(p) == "" {
		p += "." + string(f)
	}
	if _, err := os.Stat(p); err != nil {
		return p
	}
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(filepath.Base(p), ext)
	return filepath.Join(filepath.Dir(p), fmt.Sprintf("%s_%d%s", stem, now.Unix(), ext))
}

// Export writes entries to p in format f and returns the path actually used.
func Export(p string, f Format, entries []types.Entry) (string, error) {
	target := ExportPath(p, f, time.Now())
	fh, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	err = Encode(fh, f, entries)
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	return target, nil
}

// Encode writes entries to w in format f.
func Encode(w io.Writer, f Format, entries []types.Entry) error {
	switch f {
	case JSON:
		return writeJSON(w, entries)
	case CSV:
		return writeCSV(w, entries)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func writeJSON(out io.Writer, entries []types.Entry) error {
	if entries == nil {
		entries = []types.Entry{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func writeCSV(out io.Writer, entries []types.Entry) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"filename", "name", "tag", "vr", "value"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Filename, e.Name, e.Tag, e.VR, e.Value}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
