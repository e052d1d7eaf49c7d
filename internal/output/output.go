// Package output decides where each processed record is written.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// Kind classifies a per-file destination.
type Kind int

const (
	// OverwriteInPlace replaces the input file and needs confirmation.
	OverwriteInPlace Kind = iota
	// WriteIntoDirectory places the result in a target directory.
	WriteIntoDirectory
	// Invalid means no write may be attempted for the file.
	Invalid
)

func (k Kind) String() string {
	switch k {
	case OverwriteInPlace:
		return "overwrite"
	case WriteIntoDirectory:
		return "directory"
	default:
		return "invalid"
	}
}

// Decision is the destination of one input file.
type Decision struct {
	Kind Kind
	// Path is the final file path; empty when Kind is Invalid.
	Path string
	// Reason explains an Invalid decision.
	Reason string
}

// Resolve decides the destination of input given the requested output.
// An empty request means overwriting the input.
func Resolve(input, requested string) Decision {
	if requested == "" {
		return Decision{Kind: OverwriteInPlace, Path: input}
	}
	in := absClean(input)
	req := absClean(requested)

	st, err := os.Stat(requested)
	switch {
	case err != nil:
		return Decision{Kind: Invalid, Reason: "output directory does not exist"}
	case st.IsDir() && req == filepath.Dir(in):
		return Decision{Kind: OverwriteInPlace, Path: input}
	case st.IsDir():
		return Decision{Kind: WriteIntoDirectory, Path: filepath.Join(requested, filepath.Base(input))}
	case req == in:
		return Decision{Kind: OverwriteInPlace, Path: input}
	default:
		return Decision{Kind: Invalid, Reason: "output path shouldn't be a file"}
	}
}

// MarkCollisions turns every decision whose destination was already claimed
// by an earlier input into an Invalid one. inputs and decisions are parallel.
func MarkCollisions(inputs []string, decisions []Decision) {
	claimed := make(map[string]string, len(decisions))
	for i, d := range decisions {
		if d.Kind == Invalid {
			continue
		}
		key := absClean(d.Path)
		if first, ok := claimed[key]; ok {
			decisions[i] = Decision{Kind: Invalid, Reason: fmt.Sprintf("output collides with %s", first)}
			continue
		}
		claimed[key] = inputs[i]
	}
}

func absClean(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return filepath.Clean(p)
}

// Mode is the batch-wide output decision, settled once before any write.
type Mode int

const (
	DirectoryTarget Mode = iota
	ConfirmedOverwrite
	Aborted
)

func (m Mode) String() string {
	switch m {
	case DirectoryTarget:
		return "directory"
	case ConfirmedOverwrite:
		return "overwrite"
	default:
		return "aborted"
	}
}

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// OverwritePrompt is the question asked before overwriting inputs.
const OverwritePrompt = "? No out specified confirm to overwrite actual files"

// Settle asks for confirmation at most once. Declining, or having no way to
// ask, aborts the whole batch: overwriting is all or nothing.
func Settle(decisions []Decision, confirm Confirmer) Mode {
	for _, d := range decisions {
		if d.Kind != OverwriteInPlace {
			continue
		}
		if confirm != nil && confirm(OverwritePrompt) {
			return ConfirmedOverwrite
		}
		return Aborted
	}
	return DirectoryTarget
}
