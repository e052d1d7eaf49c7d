package pulsedcm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pulsedcm/pulsedcm/internal/config"
	"github.com/pulsedcm/pulsedcm/internal/output"
	"golang.org/x/term"
)

// loadConfigs returns the local config next to target and the global one.
// Missing files yield empty configs.
func loadConfigs(target string) (local, global config.FileConfig) {
	abs, _ := filepath.Abs(target)
	root := abs
	if st, err := os.Stat(abs); err == nil && !st.IsDir() {
		root = filepath.Dir(abs)
	}
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	}
	if c, err := config.LoadLocal(root); err == nil {
		local = c
	}
	return local, global
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// useColor reports whether w is a terminal and color was not disabled.
func useColor(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// askYesNo prompts on out and reads one answer from in. A closed input
// counts as no.
func askYesNo(in io.Reader, out io.Writer) output.Confirmer {
	r := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

func paint(s, code string, noColor bool) string {
	if noColor {
		return s
	}
	return "\x1b[1;" + code + "m" + s + "\x1b[0m"
}
