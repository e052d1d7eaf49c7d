// Package recordtest provides an in-memory Record and a JSON-backed Store for
// tests that should not depend on DICOM encoding.
package recordtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/types"
)

// Record keeps elements in insertion order.
type Record struct {
	els []record.Element
	// RefuseRemove makes Remove report failure for the listed tags.
	RefuseRemove map[types.Tag]bool
	// RefuseSet makes SetValue fail for the listed tags.
	RefuseSet map[types.Tag]bool
}

// New builds a record from elements.
func New(els ...record.Element) *Record {
	return &Record{els: append([]record.Element(nil), els...)}
}

func (r *Record) find(t types.Tag) int {
	for i, e := range r.els {
		if e.Tag == t {
			return i
		}
	}
	return -1
}

func (r *Record) Lookup(t types.Tag) (record.Element, bool) {
	i := r.find(t)
	if i < 0 {
		return record.Element{}, false
	}
	return r.els[i], true
}

func (r *Record) SetValue(t types.Tag, literal string) error {
	i := r.find(t)
	if i < 0 {
		return fmt.Errorf("%s: %w", t, record.ErrNotFound)
	}
	if r.RefuseSet[t] {
		return errors.New("refused")
	}
	r.els[i].Value = literal
	return nil
}

func (r *Record) Remove(t types.Tag) bool {
	i := r.find(t)
	if i < 0 || r.RefuseRemove[t] {
		return false
	}
	r.els = append(r.els[:i:i], r.els[i+1:]...)
	return true
}

func (r *Record) Elements() []record.Element {
	return append([]record.Element(nil), r.els...)
}

func (r *Record) Len() int { return len(r.els) }

func (r *Record) Clone() record.Record {
	cp := New(r.els...)
	cp.RefuseRemove = r.RefuseRemove
	cp.RefuseSet = r.RefuseSet
	return cp
}

func (r *Record) Write(path string) error {
	b, err := json.MarshalIndent(r.els, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("%w: %w", record.ErrWrite, err)
	}
	return nil
}

// Store reads records written by Record.Write or WriteFile.
type Store struct{}

func (Store) Open(path string) (record.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrRead, err)
	}
	var els []record.Element
	if err := json.Unmarshal(b, &els); err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrRead, err)
	}
	return New(els...), nil
}

// WriteFile stores els at path in the Store format.
func WriteFile(tb testing.TB, path string, els ...record.Element) {
	tb.Helper()
	if err := New(els...).Write(path); err != nil {
		tb.Fatalf("write record: %v", err)
	}
}

// Sample returns a small record with patient and study fields.
func Sample() []record.Element {
	return []record.Element{
		{Tag: types.Tag{Group: 0x0008, Element: 0x0020}, VR: "DA", Name: "StudyDate", Value: "20240102"},
		{Tag: types.Tag{Group: 0x0008, Element: 0x0060}, VR: "CS", Name: "Modality", Value: "CT"},
		{Tag: types.Tag{Group: 0x0008, Element: 0x0080}, VR: "LO", Name: "InstitutionName", Value: "General Hospital"},
		{Tag: types.Tag{Group: 0x0010, Element: 0x0010}, VR: "PN", Name: "PatientName", Value: "John Doe"},
		{Tag: types.Tag{Group: 0x0010, Element: 0x0020}, VR: "LO", Name: "PatientID", Value: "12345"},
		{Tag: types.Tag{Group: 0x0028, Element: 0x0010}, VR: "US", Name: "Rows", Value: "512"},
		{Tag: types.Tag{Group: 0x7FE0, Element: 0x0010}, VR: "OW", Name: "PixelData", Value: types.BinaryValue},
	}
}
