package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pulsedcm/pulsedcm/internal/types"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

const metaGroup = 0x0002

// textVRs are the value representations encoded as character strings.
var textVRs = map[string]bool{
	"AE": true, "AS": true, "CS": true, "DA": true, "DS": true, "DT": true,
	"IS": true, "LO": true, "LT": true, "PN": true, "SH": true, "ST": true,
	"TM": true, "UC": true, "UI": true, "UR": true, "UT": true,
}

// DICOMStore opens DICOM Part 10 files.
type DICOMStore struct {
	// WithPixelData keeps pixel data in memory. It must be set whenever the
	// record is written back, otherwise the image would be lost.
	WithPixelData bool
}

// Open parses the file at path. Errors wrap ErrRead and leave naming the
// file to the caller.
func (s DICOMStore) Open(path string) (Record, error) {
	var opts []dicom.ParseOption
	if !s.WithPixelData {
		opts = append(opts, dicom.SkipPixelData())
	}
	ds, err := dicom.ParseFile(path, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return &dicomRecord{ds: ds}, nil
}

type dicomRecord struct {
	ds dicom.Dataset
}

func toTag(t types.Tag) tag.Tag {
	return tag.Tag{Group: t.Group, Element: t.Element}
}

func fromTag(t tag.Tag) types.Tag {
	return types.Tag{Group: t.Group, Element: t.Element}
}

func (r *dicomRecord) index(t types.Tag) int {
	want := toTag(t)
	for i, e := range r.ds.Elements {
		if e.Tag == want {
			return i
		}
	}
	return -1
}

func (r *dicomRecord) Lookup(t types.Tag) (Element, bool) {
	i := r.index(t)
	if i < 0 {
		return Element{}, false
	}
	return render(r.ds.Elements[i]), true
}

func (r *dicomRecord) SetValue(t types.Tag, literal string) error {
	i := r.index(t)
	if i < 0 {
		return fmt.Errorf("%s: %w", t, ErrNotFound)
	}
	el := r.ds.Elements[i]
	if el.Value != nil {
		switch el.Value.ValueType() {
		case dicom.Sequences, dicom.SequenceItem, dicom.PixelData:
			return fmt.Errorf("%s: value is not primitive", t)
		}
	}
	if !textVRs[el.RawValueRepresentation] {
		return fmt.Errorf("%s: %s value cannot hold text", t, el.RawValueRepresentation)
	}
	v, err := dicom.NewValue([]string{literal})
	if err != nil {
		return fmt.Errorf("%s: %w", t, err)
	}
	cp := *el
	cp.Value = v
	r.ds.Elements[i] = &cp
	return nil
}

func (r *dicomRecord) Remove(t types.Tag) bool {
	i := r.index(t)
	if i < 0 {
		return false
	}
	r.ds.Elements = append(r.ds.Elements[:i:i], r.ds.Elements[i+1:]...)
	return true
}

// Elements lists the dataset fields, leaving out the file meta group.
func (r *dicomRecord) Elements() []Element {
	out := make([]Element, 0, len(r.ds.Elements))
	for _, e := range r.ds.Elements {
		if e.Tag.Group == metaGroup {
			continue
		}
		out = append(out, render(e))
	}
	return out
}

func (r *dicomRecord) Len() int {
	n := 0
	for _, e := range r.ds.Elements {
		if e.Tag.Group != metaGroup {
			n++
		}
	}
	return n
}

func (r *dicomRecord) Clone() Record {
	els := make([]*dicom.Element, len(r.ds.Elements))
	for i, e := range r.ds.Elements {
		cp := *e
		els[i] = &cp
	}
	return &dicomRecord{ds: dicom.Dataset{Elements: els}}
}

// Write serializes the record next to path and renames it into place, so a
// failed write never leaves a truncated file behind.
func (r *dicomRecord) Write(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer os.Remove(tmp.Name())

	// Replacement literals ignore the declared VR, so the writer must not
	// verify it.
	err = dicom.Write(tmp, r.ds, dicom.SkipVRVerification(), dicom.SkipValueTypeVerification())
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Name returns the dictionary keyword of t, or "Unknown".
func Name(t types.Tag) string {
	info, err := tag.Find(toTag(t))
	if err != nil || info.Name == "" {
		return types.UnknownName
	}
	return info.Name
}

func render(e *dicom.Element) Element {
	t := fromTag(e.Tag)
	return Element{
		Tag:   t,
		VR:    e.RawValueRepresentation,
		Name:  Name(t),
		Value: renderValue(e.Value),
	}
}

func renderValue(v dicom.Value) string {
	if v == nil {
		return ""
	}
	switch v.ValueType() {
	case dicom.Strings:
		if ss, ok := v.GetValue().([]string); ok {
			parts := make([]string, len(ss))
			for i, s := range ss {
				parts[i] = strings.TrimRight(s, " \x00")
			}
			return strings.Join(parts, "\\")
		}
	case dicom.Ints:
		if ns, ok := v.GetValue().([]int); ok {
			parts := make([]string, len(ns))
			for i, n := range ns {
				parts[i] = strconv.Itoa(n)
			}
			return strings.Join(parts, "\\")
		}
	case dicom.Floats:
		if fs, ok := v.GetValue().([]float64); ok {
			parts := make([]string, len(fs))
			for i, f := range fs {
				parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
			}
			return strings.Join(parts, "\\")
		}
	}
	return types.BinaryValue
}
