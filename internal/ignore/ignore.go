// Package ignore reads .pulsedcmignore files: one glob per line, '#' starts a
// comment and a trailing '/' matches a directory and everything below it.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the root of a walk.
const FileName = ".pulsedcmignore"

type Matcher struct {
	dirs  []string
	globs []string
}

// Load parses the ignore file at path. A missing file yields an empty
// matcher along with the error.
func Load(path string) (Matcher, error) {
	var m Matcher
	f, err := os.Open(path)
	if err != nil {
		return m, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, "/") {
			m.dirs = append(m.dirs, strings.Trim(line, "/"))
			continue
		}
		m.globs = append(m.globs, line)
	}
	return m, sc.Err()
}

// Match reports whether the slash separated path rel, relative to the walk
// root, is ignored.
func (m Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	for _, d := range m.dirs {
		for i := range parts[:len(parts)-1] {
			if ok, _ := doublestar.Match(d, strings.Join(parts[:i+1], "/")); ok {
				return true
			}
			if parts[i] == d {
				return true
			}
		}
	}
	for _, g := range m.globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, parts[len(parts)-1]); ok {
			return true
		}
	}
	return false
}
