// Package utils provides the shared logger constructor and the snippet
// truncation helper.
package utils

// Truncate returns s cut to maxLen bytes with "..." appended when cut.
// A zero or negative maxLen returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
