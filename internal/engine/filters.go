package engine

import (
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"__MACOSX":     true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name] || strings.HasPrefix(name, ".git")
}

// isRecordFile reports whether name carries the .dcm extension, ignoring case.
func isRecordFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".dcm")
}

// Filter narrows ListFiles with comma separated doublestar globs matched
// against the path relative to the walk root.
type Filter struct {
	Include string
	Exclude string
}

func (f Filter) allows(relPath string) bool {
	rp := filepath.ToSlash(relPath)
	if inc := parseGlobsList(f.Include); len(inc) > 0 && !matchAnyGlob(rp, inc) {
		return false
	}
	if exc := parseGlobsList(f.Exclude); len(exc) > 0 && matchAnyGlob(rp, exc) {
		return false
	}
	return true
}

func parseGlobsList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p, trimGlobPrefix(p))
		}
	}
	return out
}

func matchAnyGlob(pathToMatch string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, pathToMatch); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(pathToMatch)); ok {
			return true
		}
	}
	return false
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
