// Package policy holds the de-identification catalog: which fields each
// severity level acts upon. Levels cascade, so every field of a looser level
// is also part of the stricter ones. The catalog is computed once at package
// init and never changes afterwards; it is safe to share between goroutines.
package policy

import (
	"fmt"
	"strings"

	"github.com/pulsedcm/pulsedcm/internal/types"
)

// Severity selects how aggressively records are de-identified.
type Severity int

const (
	Basic Severity = iota
	Moderate
	Strict
)

// All lists the severities from loosest to strictest.
var All = []Severity{Basic, Moderate, Strict}

func (s Severity) String() string {
	switch s {
	case Basic:
		return "basic"
	case Moderate:
		return "moderate"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity maps a user supplied name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return Basic, nil
	case "moderate":
		return Moderate, nil
	case "strict":
		return Strict, nil
	default:
		return Basic, fmt.Errorf("invalid policy %q: should be either 'basic', 'moderate' or 'strict'", s)
	}
}

// Directly identifying fields: patient demographics, institution contacts,
// device and operator identifiers, free text.
var basicFields = []types.Tag{
	{0x0010, 0x0010}, // PatientName
	{0x0010, 0x0020}, // PatientID
	{0x0010, 0x0030}, // PatientBirthDate
	{0x0010, 0x0040}, // PatientSex
	{0x0010, 0x1000}, // OtherPatientIDs
	{0x0010, 0x1001}, // OtherPatientNames
	{0x0010, 0x1040}, // PatientAddress
	{0x0010, 0x2160}, // EthnicGroup
	{0x0010, 0x4000}, // PatientComments
	{0x0008, 0x0090}, // ReferringPhysicianName
	{0x0008, 0x0050}, // AccessionNumber
	{0x0008, 0x0080}, // InstitutionName
	{0x0008, 0x0081}, // InstitutionAddress
	{0x0008, 0x1040}, // InstitutionalDepartmentName
	{0x0008, 0x1010}, // StationName
	{0x0038, 0x0010}, // AdmissionID
	{0x0032, 0x1032}, // RequestingPhysician
	{0x0032, 0x1060}, // RequestedProcedureDescription
	{0x0032, 0x1064}, // RequestedProcedureCodeSequence
	{0x0040, 0x1001}, // RequestedProcedureID
	{0x0040, 0x1003}, // RequestedProcedurePriority
	{0x0040, 0x1400}, // RequestedProcedureComments
	{0x0008, 0x009C}, // ConsultingPhysicianName
	{0x0010, 0x1060}, // PatientMotherBirthName
	{0x0040, 0x0243}, // PerformedLocation
	{0x0040, 0x0242}, // PerformedStationName
	{0x0040, 0x0254}, // PerformedProcedureStepDescription
	{0x0018, 0x1000}, // DeviceSerialNumber
	{0x0020, 0x4000}, // ImageComments
	{0x4008, 0x0114}, // PhysicianApprovingInterpretation
}

// Acquisition timestamps and equipment/protocol fields.
var moderateFields = []types.Tag{
	{0x0008, 0x0020}, // StudyDate
	{0x0008, 0x0021}, // SeriesDate
	{0x0008, 0x0022}, // AcquisitionDate
	{0x0008, 0x0023}, // ContentDate
	{0x0008, 0x0030}, // StudyTime
	{0x0008, 0x0031}, // SeriesTime
	{0x0008, 0x0032}, // AcquisitionTime
	{0x0008, 0x0033}, // ContentTime
	{0x0018, 0x0015}, // BodyPartExamined
	{0x0018, 0x5100}, // PatientPosition
	{0x0008, 0x1070}, // OperatorsName
	{0x0018, 0x1010}, // SecondaryCaptureDeviceID
	{0x0018, 0x1050}, // SpatialResolution
	{0x0018, 0x1051},
}

// Study/series instance identifiers and remaining provenance fields.
var strictFields = []types.Tag{
	{0x0020, 0x000D}, // StudyInstanceUID
	{0x0020, 0x000E}, // SeriesInstanceUID
	{0x0008, 0x0018}, // SOPInstanceUID
	{0x0018, 0x1000}, // DeviceSerialNumber
	{0x0018, 0x1002}, // DeviceUID
	{0x0008, 0x0070}, // Manufacturer
	{0x0008, 0x1011},
	{0x0008, 0x1070}, // OperatorsName
	{0x0018, 0x1004}, // PlateID
	{0x0018, 0x1020}, // SoftwareVersions
	{0x0018, 0x1030}, // ProtocolName
	{0x0040, 0xA730}, // ContentSequence
	{0x0008, 0x1090}, // ManufacturerModelName
	{0x0008, 0x0060}, // Modality
	{0x0010, 0x1020}, // PatientSize
	{0x0010, 0x1030}, // PatientWeight
	{0x0010, 0x21B0}, // AdditionalPatientHistory
	{0x0040, 0xA124}, // UID
}

type entry struct {
	fields []types.Tag
	set    map[types.Tag]struct{}
}

var catalog = build()

func build() map[Severity]entry {
	out := make(map[Severity]entry, len(All))
	var acc []types.Tag
	seen := map[types.Tag]struct{}{}
	for i, extra := range [][]types.Tag{basicFields, moderateFields, strictFields} {
		for _, t := range extra {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			acc = append(acc, t)
		}
		set := make(map[types.Tag]struct{}, len(seen))
		for t := range seen {
			set[t] = struct{}{}
		}
		out[All[i]] = entry{fields: append([]types.Tag(nil), acc...), set: set}
	}
	return out
}

// Fields returns the ordered, deduplicated field set of a severity.
// The returned slice is a copy; callers may modify it freely.
func Fields(s Severity) []types.Tag {
	e, ok := catalog[s]
	if !ok {
		return nil
	}
	return append([]types.Tag(nil), e.fields...)
}

// Contains reports whether t is acted upon at severity s.
func Contains(s Severity, t types.Tag) bool {
	_, ok := catalog[s].set[t]
	return ok
}
