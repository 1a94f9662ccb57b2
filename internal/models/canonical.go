package models

import "strings"

// Common variants of object type names seen in legacy flat files, mapped
// to their canonical form.
var canonicalTypeNames = map[string]string{
	"vehicle":    "Vehicle",
	"vehicles":   "Vehicle",
	"veh":        "Vehicle",
	"facility":   "Facility",
	"facilities": "Facility",
	"fac":        "Facility",
	"other":      "Other",
	"equipment":  "Other",
}

// CanonicalTypeName normalises a raw object type name. Unknown values pass
// through trimmed but otherwise unchanged.
func CanonicalTypeName(v string) string {
	t := strings.TrimSpace(v)
	if c, ok := canonicalTypeNames[strings.ToLower(t)]; ok {
		return c
	}
	return t
}
