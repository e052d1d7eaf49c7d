// Package anon applies de-identification actions to the fields of a record.
//
// Actions never fail: a field that is missing or that the record refuses to
// mutate is reported as a warning on the supplied logger and processing
// continues with the next field. The substituted literals are the same for
// every value representation, so numeric and date fields end up holding
// text; downstream consumers rely on these exact sentinels.
package anon

import (
	"fmt"
	"strings"

	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/types"
	"go.uber.org/zap"
)

// Action is the mutation applied to every field of a policy.
type Action int

const (
	Zero Action = iota
	Replace
	Remove
)

// Literals written by Zero and Replace.
const (
	ZeroLiteral    = "0"
	ReplaceLiteral = "Anonymized"
)

func (a Action) String() string {
	switch a {
	case Zero:
		return "zero"
	case Replace:
		return "replace"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction maps a user supplied name to an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replace":
		return Replace, nil
	case "zero":
		return Zero, nil
	case "remove":
		return Remove, nil
	default:
		return Zero, fmt.Errorf("invalid action %q: should be either 'replace', 'remove' or 'zero'", s)
	}
}

// Status is the per-field result of Apply.
type Status int

const (
	Applied Status = iota
	Missing
	Failed
)

// Apply mutates rec in place. It emits exactly one warning when the field is
// absent or cannot be changed.
func Apply(rec record.Record, t types.Tag, a Action, log *zap.SugaredLogger) Status {
	if _, ok := rec.Lookup(t); !ok {
		log.Warnw("field not found, ignored", "tag", t.String())
		return Missing
	}
	switch a {
	case Zero, Replace:
		lit := ZeroLiteral
		if a == Replace {
			lit = ReplaceLiteral
		}
		if err := rec.SetValue(t, lit); err != nil {
			log.Warnw("couldn't replace field", "tag", t.String(), "error", err)
			return Failed
		}
	case Remove:
		if !rec.Remove(t) {
			log.Warnw("couldn't remove field", "tag", t.String())
			return Failed
		}
	default:
		log.Warnw("unknown action, field left untouched", "tag", t.String(), "action", a.String())
		return Failed
	}
	return Applied
}

// Stats summarizes ApplyPolicy.
type Stats struct {
	Applied int
	Missing int
	Failed  int
	// Before and After count the record fields around the transformation.
	Before int
	After  int
}

// Warnings is the number of fields that were reported instead of changed.
func (s Stats) Warnings() int { return s.Missing + s.Failed }

// ApplyPolicy applies a to every field of severity sev.
func ApplyPolicy(rec record.Record, sev policy.Severity, a Action, log *zap.SugaredLogger) Stats {
	st := Stats{Before: rec.Len()}
	for _, t := range policy.Fields(sev) {
		switch Apply(rec, t, a, log) {
		case Applied:
			st.Applied++
		case Missing:
			st.Missing++
		case Failed:
			st.Failed++
		}
	}
	st.After = rec.Len()
	return st
}
