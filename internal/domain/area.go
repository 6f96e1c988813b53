package domain

import "strings"

// Area is one of the organisation's geographic partitions.
type Area string

const (
	AreaNord  Area = "Nord"
	AreaSued  Area = "Süd"
	AreaMitte Area = "Mitte"
	// AreaUnknown is used for employees whose record carries no usable area.
	AreaUnknown Area = ""
)

// NormalizeArea collapses a free-form area string from an employee record or
// a shift definition into the canonical set. Unrecognised input returns
// AreaUnknown; the planner then skips the area preference for that employee.
func NormalizeArea(s string) Area {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nord", "nordkreis":
		return AreaNord
	case "süd", "sued", "südkreis", "suedkreis":
		return AreaSued
	case "mitte":
		return AreaMitte
	default:
		return AreaUnknown
	}
}
