package engine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pulsedcm/pulsedcm/internal/ignore"
)

// ListFiles returns the record files under root in lexical order. root may
// be a single file, which is returned as is when it passes the filter.
// Paths listed in a .pulsedcmignore at the root of a directory walk are
// skipped.
func ListFiles(root string, f Filter) ([]string, error) {
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	if !st.IsDir() {
		if !f.allows(filepath.Base(root)) {
			return nil, nil
		}
		return []string{root}, nil
	}

	ign, _ := ignore.Load(filepath.Join(root, ignore.FileName))
	var out []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isRecordFile(d.Name()) {
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		if !f.allows(rel) || ign.Match(rel) {
			return nil
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}
