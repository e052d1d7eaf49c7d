// Package record exposes DICOM files as mutable bags of tagged fields. The
// rest of the tool only sees the Store and Record interfaces; the DICOM
// encoding itself is handled by github.com/suyashkumar/dicom.
package record

import (
	"errors"

	"github.com/pulsedcm/pulsedcm/internal/types"
)

var (
	// ErrRead wraps any failure to open or parse a record.
	ErrRead = errors.New("read error")
	// ErrWrite wraps any failure to serialize a record to disk.
	ErrWrite = errors.New("write error")
	// ErrNotFound is returned when mutating a field the record does not carry.
	ErrNotFound = errors.New("field not found")
)

// Element is a rendered view of one field.
type Element struct {
	Tag   types.Tag
	VR    string
	Name  string
	Value string
}

// Record is an in-memory, mutable record.
type Record interface {
	Lookup(t types.Tag) (Element, bool)
	SetValue(t types.Tag, literal string) error
	Remove(t types.Tag) bool
	Elements() []Element
	Len() int
	// Clone returns an independent copy; mutations on either side are not
	// visible to the other.
	Clone() Record
	Write(path string) error
}

// Store opens records from disk.
type Store interface {
	Open(path string) (Record, error)
}
