package types

import "fmt"

// Tag identifies a metadata field of a record by its (group, element) pair.
type Tag struct {
	Group   uint16
	Element uint16
}

// String renders the tag as (GGGG,EEEE).
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
}

// Less orders tags by group, then element.
func (t Tag) Less(o Tag) bool {
	if t.Group == o.Group {
		return t.Element < o.Element
	}
	return t.Group < o.Group
}

// Class is the display sensitivity of a field. It only drives presentation
// and does not depend on the selected policy.
type Class string

const (
	ClassPHI     Class = "phi"
	ClassWarning Class = "warning"
	ClassUnknown Class = "unknown"
	ClassNormal  Class = "normal"
)

// Placeholders used when a field has no displayable value or name.
const (
	BinaryValue = "[Binary]"
	UnknownName = "Unknown"
)

// Entry is one exported metadata row of a record.
type Entry struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	VR       string `json:"vr"`
	Value    string `json:"value"`
}
