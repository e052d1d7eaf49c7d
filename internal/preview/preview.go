// Package preview renders what a record would look like after
// de-identification without touching the file on disk.
package preview

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/pulsedcm/pulsedcm/internal/anon"
	"github.com/pulsedcm/pulsedcm/internal/policy"
	"github.com/pulsedcm/pulsedcm/internal/record"
	"github.com/pulsedcm/pulsedcm/internal/types"
	"go.uber.org/zap"
)

// Row is one field of the previewed record.
type Row struct {
	Tag   types.Tag
	VR    string
	Name  string
	Value string
	Class types.Class
}

// Build applies the policy to a clone of rec and lists the result. rec itself
// is left untouched.
func Build(rec record.Record, sev policy.Severity, a anon.Action, log *zap.SugaredLogger) ([]Row, anon.Stats) {
	cp := rec.Clone()
	st := anon.ApplyPolicy(cp, sev, a, log)
	return Rows(cp.Elements()), st
}

// Rows classifies elements for display.
func Rows(els []record.Element) []Row {
	out := make([]Row, 0, len(els))
	for _, e := range els {
		out = append(out, Row{
			Tag:   e.Tag,
			VR:    e.VR,
			Name:  e.Name,
			Value: e.Value,
			Class: Classify(e.Tag, e.Name, e.Value),
		})
	}
	return out
}

var phiTags = map[types.Tag]bool{
	{0x0010, 0x0010}: true, // PatientName
	{0x0010, 0x0020}: true, // PatientID
	{0x0010, 0x0030}: true, // PatientBirthDate
	{0x0010, 0x0032}: true, // PatientBirthTime
	{0x0010, 0x0040}: true, // PatientSex
	{0x0010, 0x1000}: true, // OtherPatientIDs
	{0x0010, 0x1001}: true, // OtherPatientNames
	{0x0010, 0x1005}: true, // PatientBirthName
	{0x0010, 0x1060}: true, // PatientMotherBirthName
	{0x0010, 0x2154}: true, // PatientTelephoneNumbers
	{0x0010, 0x2180}: true, // Occupation
	{0x0010, 0x1040}: true, // PatientAddress
	{0x0038, 0x0300}: true, // CurrentPatientLocation
	{0x0038, 0x0400}: true, // PatientInstitutionResidence
}

var warningTags = map[types.Tag]bool{
	{0x0008, 0x0050}: true, // AccessionNumber
	{0x0008, 0x0080}: true, // InstitutionName
	{0x0008, 0x0081}: true, // InstitutionAddress
	{0x0008, 0x0090}: true, // ReferringPhysicianName
	{0x0008, 0x0092}: true, // ReferringPhysicianAddress
	{0x0008, 0x0094}: true, // ReferringPhysicianTelephoneNumbers
	{0x0008, 0x1010}: true, // StationName
	{0x0008, 0x1040}: true, // InstitutionalDepartmentName
	{0x0008, 0x1050}: true, // PerformingPhysicianName
	{0x0008, 0x1070}: true, // OperatorsName
	{0x0008, 0x1030}: true, // StudyDescription
	{0x0008, 0x103E}: true, // SeriesDescription
	{0x0018, 0x1000}: true, // DeviceSerialNumber
	{0x0018, 0x1030}: true, // ProtocolName
}

// Classify returns the display class of a field. It is independent of the
// selected policy.
func Classify(t types.Tag, name, value string) types.Class {
	switch {
	case phiTags[t]:
		return types.ClassPHI
	case warningTags[t]:
		return types.ClassWarning
	case value == types.BinaryValue || name == types.UnknownName:
		return types.ClassUnknown
	default:
		return types.ClassNormal
	}
}

// Options controls rendering.
type Options struct {
	NoColor bool
}

type palette struct {
	tag   map[types.Class]lipgloss.Style
	grey  lipgloss.Style
	plain lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	grey := r.NewStyle().Foreground(lipgloss.Color("8"))
	return palette{
		tag: map[types.Class]lipgloss.Style{
			types.ClassPHI:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			types.ClassWarning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
			types.ClassUnknown: grey,
			types.ClassNormal:  r.NewStyle().Bold(true),
		},
		grey:  grey,
		plain: r.NewStyle(),
	}
}

// Render writes one line per row: (GGGG,EEEE) VR Name Value.
func Render(w io.Writer, rows []Row, opts Options) error {
	var p palette
	if !opts.NoColor {
		p = newPalette(w)
	}
	for _, r := range rows {
		tag := r.Tag.String()
		rest := fmt.Sprintf("%-2s %-30s %s", r.VR, r.Name, r.Value)
		if !opts.NoColor {
			tag = p.tag[r.Class].Render(tag)
			if r.Class == types.ClassUnknown || r.Value == types.BinaryValue || r.Name == types.UnknownName {
				rest = p.grey.Render(rest)
			} else {
				rest = p.plain.Render(rest)
			}
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", tag, rest); err != nil {
			return err
		}
	}
	return nil
}
