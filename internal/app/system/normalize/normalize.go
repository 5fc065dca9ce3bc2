// Package normalize cleans user-typed identifiers before they are sent to
// the ERP or used as history filters.
package normalize

import "strings"

// DocName trims a document name and collapses inner runs of whitespace, so
// "  WO-0001 " and "WO-0001" name the same record.
func DocName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Workstation normalizes a workstation name the same way as DocName.
// Workstation names are case sensitive in the ERP and keep their case.
func Workstation(s string) string {
	return DocName(s)
}

// Action normalizes an action filter value by trimming whitespace and
// converting to lowercase.
func Action(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
